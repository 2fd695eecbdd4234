// Package authz is the single policy-evaluation point for the API. Every
// handler asks the Checker whether a principal may perform an action on a
// resource; no route carries its own role branching.
package authz

import (
	"github.com/nexora-edu/learning-service/internal/models"
)

type Action string

const (
	ActionUserCreate     Action = "user:create"
	ActionUserList       Action = "user:list"
	ActionUserApprove    Action = "user:approve"
	ActionUserChangeRole Action = "user:change_role"
	ActionUserDeactivate Action = "user:deactivate"
	ActionUserSetPoints  Action = "user:set_points"
	ActionUserAddPoints  Action = "user:add_points"
	ActionUserStats      Action = "user:stats"

	ActionTaskCreate Action = "task:create"
	ActionTaskUpdate Action = "task:update"
	ActionTaskDelete Action = "task:delete"
	ActionTaskSubmit Action = "task:submit"
	ActionTaskReview Action = "task:review"

	ActionQuizCreate  Action = "quiz:create"
	ActionQuizUpdate  Action = "quiz:update"
	ActionQuizDelete  Action = "quiz:delete"
	ActionQuizAttempt Action = "quiz:attempt"

	ActionModuleCreate Action = "module:create"
	ActionModuleUpdate Action = "module:update"
	ActionModuleDelete Action = "module:delete"

	ActionPerformanceViewAll Action = "performance:view_all"
	ActionPerformanceExport  Action = "performance:export"
)

// Principal is the authenticated caller.
type Principal struct {
	ID   uint
	Role models.UserRole
}

// Resource describes the target of an action. OwnerID carries the creator of
// content resources; TargetUserID carries the user a directory action aims at.
type Resource struct {
	Kind         string
	ID           uint
	OwnerID      uint
	TargetUserID uint
}

// RolePermissions is the default policy table.
var RolePermissions = map[models.UserRole][]Action{
	models.RoleStudent: {
		ActionTaskSubmit,
		ActionQuizAttempt,
		ActionUserAddPoints,
	},
	models.RoleTeacher: {
		ActionUserList,
		ActionUserStats,
		ActionUserSetPoints,
		ActionUserAddPoints,
		ActionTaskCreate,
		ActionTaskUpdate,
		ActionTaskDelete,
		ActionTaskReview,
		ActionQuizCreate,
		ActionQuizUpdate,
		ActionQuizDelete,
		ActionModuleCreate,
		ActionModuleUpdate,
		ActionModuleDelete,
		ActionPerformanceViewAll,
		ActionPerformanceExport,
	},
	models.RoleAdmin: {
		"*",
	},
}

type Checker struct {
	rolePermissions map[models.UserRole][]Action
}

func NewChecker(rp map[models.UserRole][]Action) *Checker {
	if rp == nil {
		rp = RolePermissions
	}
	return &Checker{rolePermissions: rp}
}

// Can evaluates (principal, action, resource) against the policy.
func (c *Checker) Can(p Principal, action Action, res Resource) bool {
	// Self-modification of role or active flag is always rejected, even for
	// admins acting on themselves.
	switch action {
	case ActionUserChangeRole, ActionUserDeactivate:
		if res.TargetUserID == p.ID {
			return false
		}
	}

	if !c.hasPermission(p.Role, action) {
		return false
	}

	// Students may credit points only to themselves (game results); staff may
	// credit anyone.
	if action == ActionUserAddPoints && p.Role == models.RoleStudent {
		return res.TargetUserID == p.ID
	}

	// Ownership rules on content updates: creator or admin. Deletion of
	// tasks is intentionally open to any teacher; the permission table
	// already granted it above.
	switch action {
	case ActionTaskUpdate, ActionQuizUpdate, ActionQuizDelete, ActionModuleUpdate:
		if p.Role == models.RoleAdmin {
			return true
		}
		return res.OwnerID == p.ID
	}

	return true
}

// ScopeToSelf reports whether reads by this principal must be limited to
// their own records (performance queries).
func (c *Checker) ScopeToSelf(p Principal) bool {
	return !c.hasPermission(p.Role, ActionPerformanceViewAll)
}

func (c *Checker) hasPermission(role models.UserRole, action Action) bool {
	perms, ok := c.rolePermissions[role]
	if !ok {
		return false
	}
	for _, perm := range perms {
		if perm == "*" || perm == action {
			return true
		}
	}
	return false
}
