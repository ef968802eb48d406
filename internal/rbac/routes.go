package rbac

import "strings"

// RouteRule maps a URL path prefix to the capabilities that unlock it.
// Holding any one of Capabilities is sufficient.
type RouteRule struct {
	Prefix       string       `json:"prefix"`
	Label        string       `json:"label"`
	Capabilities []Capability `json:"capabilities"`
}

// routeRules is matched in order; the first prefix match wins.
var routeRules = []RouteRule{
	{Prefix: "/admin/users", Label: "Users", Capabilities: []Capability{CanManageUsers}},
	{Prefix: "/admin/roles", Label: "Roles", Capabilities: []Capability{CanManageRoles}},
	{Prefix: "/admin/posts", Label: "Posts", Capabilities: []Capability{CanManagePosts, CanEditAnyPost, CanCreatePosts}},
	{Prefix: "/admin/categories", Label: "Categories", Capabilities: []Capability{CanManageCategories}},
	{Prefix: "/admin/tags", Label: "Tags", Capabilities: []Capability{CanManageTags}},
	{Prefix: "/admin/comments", Label: "Comments", Capabilities: []Capability{CanManageComments, CanModerateComments}},
	{Prefix: "/admin/media", Label: "Media", Capabilities: []Capability{CanManageMedia, CanUploadMedia}},
	{Prefix: "/admin/menus", Label: "Menus", Capabilities: []Capability{CanManageMenus}},
	{Prefix: "/admin/settings", Label: "Settings", Capabilities: []Capability{CanManageSettings}},
	{Prefix: "/admin/analytics", Label: "Analytics", Capabilities: []Capability{CanViewAnalytics}},
	{Prefix: "/dashboard", Label: "Dashboard", Capabilities: []Capability{CanAccessDashboard}},
}

// RouteRules returns a copy of the route permission table in match order.
func RouteRules() []RouteRule {
	out := make([]RouteRule, len(routeRules))
	for i, rule := range routeRules {
		out[i] = rule.clone()
	}
	return out
}

// RuleFor returns the first rule whose prefix matches pathname.
func RuleFor(pathname string) (RouteRule, bool) {
	for _, rule := range routeRules {
		if strings.HasPrefix(pathname, rule.Prefix) {
			return rule.clone(), true
		}
	}
	return RouteRule{}, false
}

// HasRouteAccess reports whether the assignment may reach pathname. Paths
// without a configured rule are denied here; callers decide whether another
// check (such as HasRole) may still admit the request.
func HasRouteAccess(assignment, pathname string) bool {
	if assignment == "" {
		return false
	}
	rule, ok := RuleFor(pathname)
	if !ok {
		return false
	}
	return rule.allows(assignment)
}

func (r RouteRule) allows(assignment string) bool {
	for _, candidate := range strings.Split(assignment, AssignmentSeparator) {
		for _, c := range r.Capabilities {
			if granted(Role(candidate), c) {
				return true
			}
		}
	}
	return false
}

func (r RouteRule) clone() RouteRule {
	caps := make([]Capability, len(r.Capabilities))
	copy(caps, r.Capabilities)
	r.Capabilities = caps
	return r
}
