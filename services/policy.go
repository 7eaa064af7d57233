package services

import (
	"wms-audit/models"
)

type Role string

const (
	RoleAdmin        Role = "admin"
	RoleAuditManager Role = "audit_manager"
	RoleAuditUser    Role = "audit_user"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleAuditManager, RoleAuditUser:
		return true
	}
	return false
}

type Capability string

const (
	CapManageTeam        Capability = "team.manage"
	CapViewTeam          Capability = "team.view"
	CapCreateSession     Capability = "session.create"
	CapViewSession       Capability = "session.view"
	CapTransitionSession Capability = "session.transition"
	CapFinalizeSession   Capability = "session.finalize"
	CapRecordCount       Capability = "verification.record"
	CapViewReport        Capability = "report.view"
)

// policy is the single capability table every service checks against.
var policy = map[Capability][]Role{
	CapManageTeam:        {RoleAdmin, RoleAuditManager},
	CapViewTeam:          {RoleAdmin, RoleAuditManager},
	CapCreateSession:     {RoleAdmin, RoleAuditManager},
	CapViewSession:       {RoleAdmin, RoleAuditManager, RoleAuditUser},
	CapTransitionSession: {RoleAdmin, RoleAuditManager},
	CapFinalizeSession:   {RoleAdmin, RoleAuditManager},
	CapRecordCount:       {RoleAdmin, RoleAuditManager, RoleAuditUser},
	CapViewReport:        {RoleAdmin, RoleAuditManager, RoleAuditUser},
}

// Actor is the authenticated caller as supplied by the identity provider.
type Actor struct {
	UserID uint
	Role   Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

func (a Actor) Can(c Capability) bool {
	for _, r := range policy[c] {
		if r == a.Role {
			return true
		}
	}
	return false
}

func authorize(a Actor, c Capability) error {
	if a.UserID == 0 || !a.Can(c) {
		return newError(KindAuthorization, "role %q is not allowed to perform %s", a.Role, c)
	}
	return nil
}

// authorizeWarehouse checks that a manager acts on a warehouse they manage.
// Admins act on any warehouse; audit users are scoped by team assignment instead.
func authorizeWarehouse(a Actor, w *models.Warehouse) error {
	if a.IsAdmin() || a.Role == RoleAuditUser {
		return nil
	}
	if w.AuditManagerID == nil || *w.AuditManagerID != a.UserID {
		return newError(KindAuthorization, "user %d does not manage warehouse %s", a.UserID, w.Code)
	}
	return nil
}
