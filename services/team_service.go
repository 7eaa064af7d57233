package services

import (
	"context"
	"errors"
	"time"

	"wms-audit/config"
	"wms-audit/models"
	"wms-audit/repositories"
	"wms-audit/types"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// TeamService maintains which audit users may verify which warehouse.
type TeamService struct {
	db  *gorm.DB
	log *logrus.Logger
	now func() time.Time
}

func NewTeamService(db *gorm.DB, log *logrus.Logger) *TeamService {
	return &TeamService{db: db, log: log, now: func() time.Time { return time.Now().UTC() }}
}

type AssignTeamMemberInput struct {
	ManagerID   uint
	AuditUserID uint
	WarehouseID uint
}

func (s *TeamService) AssignTeamMember(ctx context.Context, actor Actor, in AssignTeamMemberInput) (*models.AuditTeamAssignment, error) {
	if err := authorize(actor, CapManageTeam); err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && actor.UserID != in.ManagerID {
		return nil, newError(KindAuthorization, "audit managers can only assign members to their own team")
	}

	var assignment *models.AuditTeamAssignment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		warehouse, err := repositories.NewWarehouseRepository(tx).GetByID(in.WarehouseID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return newError(KindNotFound, "warehouse %d not found", in.WarehouseID)
		}
		if err != nil {
			return err
		}
		if warehouse.AuditManagerID == nil || *warehouse.AuditManagerID != in.ManagerID {
			return newError(KindAuthorization, "user %d does not manage warehouse %s", in.ManagerID, warehouse.Code)
		}

		member, err := repositories.NewUserRepository(tx).GetByID(in.AuditUserID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return newError(KindNotFound, "user %d not found", in.AuditUserID)
		}
		if err != nil {
			return err
		}
		if role := Role(member.Role); role != RoleAuditUser && role != RoleAuditManager {
			return newError(KindValidation, "user %s has role %q and cannot join an audit team", member.Username, member.Role)
		}

		teamRepo := repositories.NewAuditTeamRepository(tx)
		_, err = teamRepo.FindActive(in.AuditUserID, in.WarehouseID)
		if err == nil {
			return newError(KindConflict, "user %s is already assigned to warehouse %s", member.Username, warehouse.Code)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		assignment = &models.AuditTeamAssignment{
			AuditUserID:    in.AuditUserID,
			WarehouseID:    in.WarehouseID,
			AuditManagerID: in.ManagerID,
			ActiveKey:      models.ActiveAssignmentKey,
			IsActive:       true,
			CreatedBy:      actor.UserID,
		}
		return teamRepo.Create(assignment)
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, newError(KindConflict, "user %d is already assigned to warehouse %d", in.AuditUserID, in.WarehouseID)
	}
	if err != nil {
		s.logFailure("AssignTeamMember", in, err)
		return nil, err
	}
	return assignment, nil
}

// RemoveTeamMember deactivates an assignment. The row is kept so completed sessions
// still resolve who verified them.
func (s *TeamService) RemoveTeamMember(ctx context.Context, actor Actor, assignmentID types.SnowflakeID) (*models.AuditTeamAssignment, error) {
	if err := authorize(actor, CapManageTeam); err != nil {
		return nil, err
	}

	var assignment *models.AuditTeamAssignment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		teamRepo := repositories.NewAuditTeamRepository(tx)
		var err error
		assignment, err = teamRepo.GetByID(assignmentID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return newError(KindNotFound, "assignment %s not found", assignmentID)
		}
		if err != nil {
			return err
		}
		if !actor.IsAdmin() && assignment.AuditManagerID != actor.UserID {
			return newError(KindAuthorization, "assignment %s belongs to another manager", assignmentID)
		}

		now := s.now()
		affected, err := teamRepo.Deactivate(assignmentID, actor.UserID, now)
		if err != nil {
			return err
		}
		if affected == 0 {
			return newError(KindConflict, "assignment %s is already inactive", assignmentID)
		}

		assignment.IsActive = false
		assignment.ActiveKey = assignmentID.String()
		assignment.DeactivatedBy = &actor.UserID
		assignment.DeactivatedAt = &now
		return nil
	})
	if err != nil {
		s.logFailure("RemoveTeamMember", assignmentID, err)
		return nil, err
	}
	return assignment, nil
}

type ListTeamInput struct {
	ManagerID   uint
	WarehouseID *uint
	ActiveOnly  bool
}

func (s *TeamService) ListTeam(ctx context.Context, actor Actor, in ListTeamInput) ([]models.AuditTeamAssignment, error) {
	if err := authorize(actor, CapViewTeam); err != nil {
		return nil, err
	}
	// Admins without a manager filter see every team.
	if in.ManagerID == 0 && !actor.IsAdmin() {
		in.ManagerID = actor.UserID
	}
	if !actor.IsAdmin() && in.ManagerID != actor.UserID {
		return nil, newError(KindAuthorization, "audit managers can only list their own team")
	}

	return repositories.NewAuditTeamRepository(s.db.WithContext(ctx)).List(repositories.TeamFilter{
		ManagerID:   in.ManagerID,
		WarehouseID: in.WarehouseID,
		ActiveOnly:  in.ActiveOnly,
	})
}

// ListAssignedWarehouses returns the warehouses the audit user currently verifies.
// Audit users may only ask about themselves.
func (s *TeamService) ListAssignedWarehouses(ctx context.Context, actor Actor, auditUserID uint) ([]models.Warehouse, error) {
	if err := authorize(actor, CapViewSession); err != nil {
		return nil, err
	}
	if actor.Role == RoleAuditUser && actor.UserID != auditUserID {
		return nil, newError(KindAuthorization, "audit users can only list their own warehouses")
	}

	return repositories.NewAuditTeamRepository(s.db.WithContext(ctx)).ListAssignedWarehouses(auditUserID)
}

func (s *TeamService) logFailure(funcName string, data any, err error) {
	if KindOf(err) != "" {
		return
	}
	config.LogError(s.log, "team", funcName, "transaction", data, err)
}
