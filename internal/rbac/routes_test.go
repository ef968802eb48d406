package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasRouteAccess(t *testing.T) {
	cases := []struct {
		assignment string
		path       string
		want       bool
	}{
		{"user", "/admin/posts", false},
		{"author", "/admin/posts", true},
		{"author", "/admin/posts/42/edit", true},
		{"author", "/admin/media", true},
		{"author", "/admin/comments", false},
		{"moderator", "/admin/comments", true},
		{"editor", "/admin/users", false},
		{"admin", "/admin/users", true},
		{"admin", "/admin/roles", false},
		{"super-admin", "/admin/roles", true},
		{"user", "/dashboard", false},
		{"moderator", "/dashboard", true},
		{"user,author", "/dashboard/stats", true},
		{"super-admin", "/admin/unknown", false},
		{"super-admin", "/admin", false},
		{"", "/dashboard", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, HasRouteAccess(tc.assignment, tc.path), "%q -> %s", tc.assignment, tc.path)
	}
}

func TestRuleForReturnsConfiguredRule(t *testing.T) {
	rule, ok := RuleFor("/admin/posts/new")
	require.True(t, ok)
	assert.Equal(t, "/admin/posts", rule.Prefix)
	assert.Equal(t, []Capability{CanManagePosts, CanEditAnyPost, CanCreatePosts}, rule.Capabilities)

	_, ok = RuleFor("/blog")
	assert.False(t, ok)
}

func TestRuleForFirstMatchWins(t *testing.T) {
	saved := routeRules
	t.Cleanup(func() { routeRules = saved })
	routeRules = []RouteRule{
		{Prefix: "/admin/post", Label: "Post", Capabilities: []Capability{CanManageUsers}},
		{Prefix: "/admin/posts", Label: "Posts", Capabilities: []Capability{CanCreatePosts}},
	}

	rule, ok := RuleFor("/admin/posts/new")
	require.True(t, ok)
	assert.Equal(t, "/admin/post", rule.Prefix)
	assert.False(t, HasRouteAccess("author", "/admin/posts/new"))
	assert.True(t, HasRouteAccess("admin", "/admin/posts/new"))

	routeRules[0], routeRules[1] = routeRules[1], routeRules[0]
	rule, ok = RuleFor("/admin/posts/new")
	require.True(t, ok)
	assert.Equal(t, "/admin/posts", rule.Prefix)
	assert.True(t, HasRouteAccess("author", "/admin/posts/new"))
}

func TestRouteRulesReferenceKnownCapabilities(t *testing.T) {
	for _, rule := range RouteRules() {
		require.NotEmpty(t, rule.Capabilities, rule.Prefix)
		for _, c := range rule.Capabilities {
			assert.True(t, c.Valid(), "%s references %s", rule.Prefix, c)
		}
	}
}

func TestRouteRulesReturnsCopy(t *testing.T) {
	rules := RouteRules()
	rules[0].Capabilities[0] = CanAccessDashboard

	assert.False(t, HasRouteAccess("author", "/admin/users"))
}

func TestNavigation(t *testing.T) {
	nav := Navigation("moderator")
	assert.Equal(t, []NavItem{
		{Label: "Comments", Path: "/admin/comments"},
		{Label: "Dashboard", Path: "/dashboard"},
	}, nav)

	assert.Empty(t, Navigation("user"))
	assert.Len(t, Navigation("super-admin"), len(RouteRules()))
}
