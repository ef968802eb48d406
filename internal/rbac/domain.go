package rbac

// Role identifies a category of user. The set is closed; see Roles.
type Role string

// Registered roles. No hierarchy is encoded: each role's capabilities are
// listed independently in the permission matrix.
const (
	RoleSuperAdmin Role = "super-admin"
	RoleAdmin      Role = "admin"
	RoleEditor     Role = "editor"
	RoleAuthor     Role = "author"
	RoleModerator  Role = "moderator"
	RoleUser       Role = "user"
)

// DefaultRole is assigned to newly created accounts.
const DefaultRole = RoleUser

// AdminRoles may reach admin paths that have no route rule of their own.
var AdminRoles = []Role{RoleSuperAdmin, RoleAdmin}

var registry = []Role{
	RoleSuperAdmin,
	RoleAdmin,
	RoleEditor,
	RoleAuthor,
	RoleModerator,
	RoleUser,
}

// Roles returns every registered role, highest first by convention.
func Roles() []Role {
	out := make([]Role, len(registry))
	copy(out, registry)
	return out
}

// Valid reports whether r is a registered role. Matching is exact.
func (r Role) Valid() bool {
	for _, known := range registry {
		if r == known {
			return true
		}
	}
	return false
}

func (r Role) String() string { return string(r) }

// Capability names a boolean permission that a role may grant.
type Capability string

// Capabilities known to the permission matrix.
const (
	CanManageUsers      Capability = "canManageUsers"
	CanManageRoles      Capability = "canManageRoles"
	CanAccessDashboard  Capability = "canAccessDashboard"
	CanCreatePosts      Capability = "canCreatePosts"
	CanEditOwnPosts     Capability = "canEditOwnPosts"
	CanEditAnyPost      Capability = "canEditAnyPost"
	CanDeleteOwnPosts   Capability = "canDeleteOwnPosts"
	CanDeleteAnyPost    Capability = "canDeleteAnyPost"
	CanPublishPosts     Capability = "canPublishPosts"
	CanManagePosts      Capability = "canManagePosts"
	CanManageCategories Capability = "canManageCategories"
	CanManageTags       Capability = "canManageTags"
	CanManageComments   Capability = "canManageComments"
	CanModerateComments Capability = "canModerateComments"
	CanManageMedia      Capability = "canManageMedia"
	CanUploadMedia      Capability = "canUploadMedia"
	CanManageMenus      Capability = "canManageMenus"
	CanManageSettings   Capability = "canManageSettings"
	CanViewAnalytics    Capability = "canViewAnalytics"
)

var capabilities = []Capability{
	CanManageUsers,
	CanManageRoles,
	CanAccessDashboard,
	CanCreatePosts,
	CanEditOwnPosts,
	CanEditAnyPost,
	CanDeleteOwnPosts,
	CanDeleteAnyPost,
	CanPublishPosts,
	CanManagePosts,
	CanManageCategories,
	CanManageTags,
	CanManageComments,
	CanModerateComments,
	CanManageMedia,
	CanUploadMedia,
	CanManageMenus,
	CanManageSettings,
	CanViewAnalytics,
}

// Capabilities returns the full capability key set every role must specify.
func Capabilities() []Capability {
	out := make([]Capability, len(capabilities))
	copy(out, capabilities)
	return out
}

// Valid reports whether c is a known capability.
func (c Capability) Valid() bool {
	for _, known := range capabilities {
		if c == known {
			return true
		}
	}
	return false
}

func (c Capability) String() string { return string(c) }
