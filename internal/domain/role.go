package domain

import "fmt"

type Role string

const (
	RoleSuperAdmin     Role = "super_admin"
	RoleProjectManager Role = "project_manager"
	RoleTeamLeader     Role = "team_leader"
	RoleEmployee       Role = "employee"
)

// ParseRole validates a role string against the closed set of roles.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleSuperAdmin, RoleProjectManager, RoleTeamLeader, RoleEmployee:
		return r, nil
	}
	return "", fmt.Errorf("%w: unknown role %q", ErrValidation, s)
}

// Action is an operation on other users' timesheets that is gated by role.
// Owner-only actions (submit, editing one's own week) are not in this table.
type Action string

const (
	ActionViewPending   Action = "view_pending"
	ActionViewSubmitted Action = "view_submitted"
	ActionViewAny       Action = "view_any"
	ActionApprove       Action = "approve"
	ActionReject        Action = "reject"
)

// permissions is the single authorization table for reviewer actions.
// team_leader may see weeks that left draft but may not decide on them.
var permissions = map[Role]map[Action]bool{
	RoleSuperAdmin: {
		ActionViewPending:   true,
		ActionViewSubmitted: true,
		ActionViewAny:       true,
		ActionApprove:       true,
		ActionReject:        true,
	},
	RoleProjectManager: {
		ActionViewPending:   true,
		ActionViewSubmitted: true,
		ActionViewAny:       true,
		ActionApprove:       true,
		ActionReject:        true,
	},
	RoleTeamLeader: {
		ActionViewPending:   true,
		ActionViewSubmitted: true,
	},
	RoleEmployee: {},
}

// Allowed reports whether role may perform action.
func Allowed(role Role, action Action) bool {
	return permissions[role][action]
}

// Authorize returns ErrPermission when role may not perform action.
func Authorize(role Role, action Action) error {
	if Allowed(role, action) {
		return nil
	}
	return fmt.Errorf("%w: role %s may not %s", ErrPermission, role, action)
}
