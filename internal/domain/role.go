package domain

// Role tags carried by users. SUPER_ADMIN, ADMIN and CONTENT_WRITER see and
// mutate everything the assignment checks allow; the two production roles
// are listing-scoped to their own assignments.
const (
	RoleSuperAdmin      = "SUPER_ADMIN"
	RoleAdmin           = "ADMIN"
	RoleContentWriter   = "CONTENT_WRITER"
	RoleContentDesigner = "CONTENT_DESIGNER"
	RoleVideoEditor     = "VIDEO_EDITOR"
)

// AssigneeField names one of the single-assignee references on a content
// item. Used by the visibility table to say which field gets forced to the
// viewing user.
type AssigneeField string

const (
	AssigneeCD      AssigneeField = "assignedCD"
	AssigneeCW      AssigneeField = "assignedCW"
	AssigneeVE      AssigneeField = "assignedVE"
	AssigneeAddedBy AssigneeField = "addedBy"
)

// VisibilityRule restricts listings for one production role: the named
// assignee field is forced to the viewer and only the listed content types
// are visible, overriding whatever the caller asked for.
type VisibilityRule struct {
	Assignee     AssigneeField
	ContentTypes []ContentType
}

// unscopedRoles see listings without a role overlay.
var unscopedRoles = []string{RoleSuperAdmin, RoleAdmin, RoleContentWriter}

// roleVisibility is the role -> (forced assignee field, allowed content
// types) table. Checked in order so a user holding several production roles
// gets the first matching rule.
var roleVisibility = []struct {
	Role string
	Rule VisibilityRule
}{
	{RoleContentDesigner, VisibilityRule{AssigneeCD, []ContentType{ContentTypePoster, ContentTypeBoth}}},
	{RoleVideoEditor, VisibilityRule{AssigneeVE, []ContentType{ContentTypeVideo, ContentTypeBoth}}},
}

// creatorOnly scopes a user holding none of the known roles to content they
// created themselves. The upstream system left such users unscoped, which
// looked like an oversight rather than a policy.
var creatorOnly = VisibilityRule{Assignee: AssigneeAddedBy}

// VisibilityFor returns the listing restriction for the user, or nil when
// the user may see everything.
func VisibilityFor(u *User) *VisibilityRule {
	if u.HasAnyRole(unscopedRoles...) {
		return nil
	}
	for _, entry := range roleVisibility {
		if u.HasRole(entry.Role) {
			rule := entry.Rule
			return &rule
		}
	}
	rule := creatorOnly
	return &rule
}
