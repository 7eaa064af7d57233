package services

import (
	"errors"

	"wms-audit/models"
	"wms-audit/repositories"
	"wms-audit/types"

	"gorm.io/gorm"
)

func loadSession(db *gorm.DB, id types.SnowflakeID) (*models.AuditSession, error) {
	session, err := repositories.NewAuditSessionRepository(db).GetByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, newError(KindNotFound, "audit session %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	if session.Warehouse == nil {
		warehouse, err := repositories.NewWarehouseRepository(db).GetByID(session.WarehouseID)
		if err != nil {
			return nil, err
		}
		session.Warehouse = warehouse
	}
	return session, nil
}

func loadWarehouse(db *gorm.DB, id uint) (*models.Warehouse, error) {
	warehouse, err := repositories.NewWarehouseRepository(db).GetByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, newError(KindNotFound, "warehouse %d not found", id)
	}
	return warehouse, err
}

// authorizeSessionAccess scopes reads: managers see the warehouses they manage and
// audit users the warehouses they are assigned to.
func authorizeSessionAccess(db *gorm.DB, actor Actor, session *models.AuditSession) error {
	switch actor.Role {
	case RoleAdmin:
		return nil
	case RoleAuditManager:
		return authorizeWarehouse(actor, session.Warehouse)
	default:
		return requireAssignment(db, actor, session)
	}
}

// requireAssignment checks the caller holds an active team assignment for the
// session's warehouse. Admins are exempt.
func requireAssignment(db *gorm.DB, actor Actor, session *models.AuditSession) error {
	if actor.IsAdmin() {
		return nil
	}
	assigned, err := repositories.NewAuditTeamRepository(db).IsAssigned(actor.UserID, session.WarehouseID)
	if err != nil {
		return err
	}
	if !assigned {
		return newError(KindAuthorization, "user %d is not assigned to warehouse %d", actor.UserID, session.WarehouseID)
	}
	return nil
}
