package rbac

// rolePermissions is the permission matrix. Every role lists every
// capability; a role missing from the table grants nothing.
var rolePermissions = map[Role]map[Capability]bool{
	RoleSuperAdmin: {
		CanManageUsers:      true,
		CanManageRoles:      true,
		CanAccessDashboard:  true,
		CanCreatePosts:      true,
		CanEditOwnPosts:     true,
		CanEditAnyPost:      true,
		CanDeleteOwnPosts:   true,
		CanDeleteAnyPost:    true,
		CanPublishPosts:     true,
		CanManagePosts:      true,
		CanManageCategories: true,
		CanManageTags:       true,
		CanManageComments:   true,
		CanModerateComments: true,
		CanManageMedia:      true,
		CanUploadMedia:      true,
		CanManageMenus:      true,
		CanManageSettings:   true,
		CanViewAnalytics:    true,
	},
	RoleAdmin: {
		CanManageUsers:      true,
		CanManageRoles:      false,
		CanAccessDashboard:  true,
		CanCreatePosts:      true,
		CanEditOwnPosts:     true,
		CanEditAnyPost:      true,
		CanDeleteOwnPosts:   true,
		CanDeleteAnyPost:    true,
		CanPublishPosts:     true,
		CanManagePosts:      true,
		CanManageCategories: true,
		CanManageTags:       true,
		CanManageComments:   true,
		CanModerateComments: true,
		CanManageMedia:      true,
		CanUploadMedia:      true,
		CanManageMenus:      true,
		CanManageSettings:   true,
		CanViewAnalytics:    true,
	},
	RoleEditor: {
		CanManageUsers:      false,
		CanManageRoles:      false,
		CanAccessDashboard:  true,
		CanCreatePosts:      true,
		CanEditOwnPosts:     true,
		CanEditAnyPost:      true,
		CanDeleteOwnPosts:   true,
		CanDeleteAnyPost:    true,
		CanPublishPosts:     true,
		CanManagePosts:      true,
		CanManageCategories: true,
		CanManageTags:       true,
		CanManageComments:   true,
		CanModerateComments: true,
		CanManageMedia:      true,
		CanUploadMedia:      true,
		CanManageMenus:      false,
		CanManageSettings:   false,
		CanViewAnalytics:    true,
	},
	RoleAuthor: {
		CanManageUsers:      false,
		CanManageRoles:      false,
		CanAccessDashboard:  true,
		CanCreatePosts:      true,
		CanEditOwnPosts:     true,
		CanEditAnyPost:      false,
		CanDeleteOwnPosts:   true,
		CanDeleteAnyPost:    false,
		CanPublishPosts:     false,
		CanManagePosts:      false,
		CanManageCategories: false,
		CanManageTags:       false,
		CanManageComments:   false,
		CanModerateComments: false,
		CanManageMedia:      false,
		CanUploadMedia:      true,
		CanManageMenus:      false,
		CanManageSettings:   false,
		CanViewAnalytics:    false,
	},
	RoleModerator: {
		CanManageUsers:      false,
		CanManageRoles:      false,
		CanAccessDashboard:  true,
		CanCreatePosts:      false,
		CanEditOwnPosts:     false,
		CanEditAnyPost:      false,
		CanDeleteOwnPosts:   false,
		CanDeleteAnyPost:    false,
		CanPublishPosts:     false,
		CanManagePosts:      false,
		CanManageCategories: false,
		CanManageTags:       false,
		CanManageComments:   true,
		CanModerateComments: true,
		CanManageMedia:      false,
		CanUploadMedia:      false,
		CanManageMenus:      false,
		CanManageSettings:   false,
		CanViewAnalytics:    false,
	},
	RoleUser: {
		CanManageUsers:      false,
		CanManageRoles:      false,
		CanAccessDashboard:  false,
		CanCreatePosts:      false,
		CanEditOwnPosts:     false,
		CanEditAnyPost:      false,
		CanDeleteOwnPosts:   false,
		CanDeleteAnyPost:    false,
		CanPublishPosts:     false,
		CanManagePosts:      false,
		CanManageCategories: false,
		CanManageTags:       false,
		CanManageComments:   false,
		CanModerateComments: false,
		CanManageMedia:      false,
		CanUploadMedia:      false,
		CanManageMenus:      false,
		CanManageSettings:   false,
		CanViewAnalytics:    false,
	},
}

// Permissions returns a copy of the matrix row for role. ok is false when
// the role is not in the matrix.
func Permissions(role Role) (map[Capability]bool, bool) {
	row, ok := rolePermissions[role]
	if !ok {
		return nil, false
	}
	out := make(map[Capability]bool, len(row))
	for c, granted := range row {
		out[c] = granted
	}
	return out, true
}

// Matrix returns a deep copy of the whole permission matrix.
func Matrix() map[Role]map[Capability]bool {
	out := make(map[Role]map[Capability]bool, len(rolePermissions))
	for role := range rolePermissions {
		out[role], _ = Permissions(role)
	}
	return out
}

func granted(role Role, c Capability) bool {
	return rolePermissions[role][c]
}
