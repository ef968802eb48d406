package rbac

// NavItem is an admin navigation entry the current user may open.
type NavItem struct {
	Label string `json:"label"`
	Path  string `json:"path"`
}

// Navigation lists the route table entries reachable by assignment, in
// table order.
func Navigation(assignment string) []NavItem {
	items := make([]NavItem, 0, len(routeRules))
	for _, rule := range routeRules {
		if HasRouteAccess(assignment, rule.Prefix) {
			items = append(items, NavItem{Label: rule.Label, Path: rule.Prefix})
		}
	}
	return items
}
