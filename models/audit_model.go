package models

import (
	"time"

	"wms-audit/controllers/idgen"
	"wms-audit/types"

	"gorm.io/gorm"
)

type AuditStatus string

const (
	AuditStatusOpen           AuditStatus = "open"
	AuditStatusInProgress     AuditStatus = "in_progress"
	AuditStatusReconciliation AuditStatus = "reconciliation"
	AuditStatusCompleted      AuditStatus = "completed"
	AuditStatusCancelled      AuditStatus = "cancelled"
)

func (s AuditStatus) IsValid() bool {
	switch s {
	case AuditStatusOpen, AuditStatusInProgress, AuditStatusReconciliation, AuditStatusCompleted, AuditStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further change to the session or its rows is allowed.
func (s AuditStatus) IsTerminal() bool {
	return s == AuditStatusCompleted || s == AuditStatusCancelled
}

type VerificationStatus string

const (
	VerificationPending VerificationStatus = "pending"
	// VerificationConfirmed is accepted on read for legacy rows but never written.
	VerificationConfirmed VerificationStatus = "confirmed"
	VerificationComplete  VerificationStatus = "complete"
	VerificationShort     VerificationStatus = "short"
	VerificationExcess    VerificationStatus = "excess"
)

func (s VerificationStatus) IsValid() bool {
	switch s {
	case VerificationPending, VerificationConfirmed, VerificationComplete, VerificationShort, VerificationExcess:
		return true
	}
	return false
}

// AuditTeamAssignment lets an audit user verify items of a warehouse under a manager.
// ActiveKey is "active" while the assignment is active and the assignment id once it
// is deactivated, so the unique index allows one active row per user and warehouse
// while keeping every historical row.
type AuditTeamAssignment struct {
	ID             types.SnowflakeID `json:"id" gorm:"primaryKey;autoIncrement:false"`
	AuditUserID    uint              `json:"audit_user_id" gorm:"not null;uniqueIndex:idx_audit_team_active,priority:1"`
	AuditUser      *User             `json:"audit_user,omitempty" gorm:"foreignKey:AuditUserID"`
	WarehouseID    uint              `json:"warehouse_id" gorm:"not null;uniqueIndex:idx_audit_team_active,priority:2;index"`
	Warehouse      *Warehouse        `json:"warehouse,omitempty" gorm:"foreignKey:WarehouseID"`
	ActiveKey      string            `json:"-" gorm:"size:32;not null;uniqueIndex:idx_audit_team_active,priority:3"`
	AuditManagerID uint              `json:"audit_manager_id" gorm:"not null;index"`
	IsActive       bool              `json:"is_active" gorm:"not null"`
	CreatedBy      uint              `json:"created_by"`
	DeactivatedBy  *uint             `json:"deactivated_by"`
	DeactivatedAt  *time.Time        `json:"deactivated_at"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

const ActiveAssignmentKey = "active"

func (a *AuditTeamAssignment) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == 0 {
		a.ID = types.SnowflakeID(idgen.GenerateID())
	}
	return
}

type AuditSession struct {
	ID            types.SnowflakeID   `json:"id" gorm:"primaryKey;autoIncrement:false"`
	AuditCode     string              `json:"audit_code" gorm:"size:20;not null;unique"`
	Title         string              `json:"title" gorm:"size:200;not null"`
	WarehouseID   uint                `json:"warehouse_id" gorm:"not null;index"`
	Warehouse     *Warehouse          `json:"warehouse,omitempty" gorm:"foreignKey:WarehouseID"`
	StartDate     time.Time           `json:"start_date"`
	EndDate       time.Time           `json:"end_date"`
	Status        AuditStatus         `json:"status" gorm:"size:20;not null;index"`
	Notes         string              `json:"notes"`
	CreatedBy     uint                `json:"created_by"`
	CompletedBy   *uint               `json:"completed_by"`
	CompletedAt   *time.Time          `json:"completed_at"`
	CancelledBy   *uint               `json:"cancelled_by"`
	CancelledAt   *time.Time          `json:"cancelled_at"`
	CancelReason  string              `json:"cancel_reason"`
	Version       int                 `json:"version" gorm:"not null;default:1"`
	Verifications []AuditVerification `json:"verifications,omitempty" gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

func (s *AuditSession) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == 0 {
		s.ID = types.SnowflakeID(idgen.GenerateID())
	}
	return
}

// AuditVerification is one snapshot line of a session. SystemQuantity is write-once:
// gorm never includes it in an UPDATE.
type AuditVerification struct {
	ID               types.SnowflakeID  `json:"id" gorm:"primaryKey;autoIncrement:false"`
	SessionID        types.SnowflakeID  `json:"session_id" gorm:"not null;uniqueIndex:idx_audit_verification_serial,priority:1"`
	SerialNumber     int                `json:"serial_number" gorm:"not null;uniqueIndex:idx_audit_verification_serial,priority:2"`
	ItemID           uint               `json:"item_id" gorm:"not null;index"`
	Item             *Product           `json:"item,omitempty" gorm:"foreignKey:ItemID"`
	BatchNumber      *string            `json:"batch_number" gorm:"size:50"`
	SystemQuantity   int                `json:"system_quantity" gorm:"not null;<-:create"`
	PhysicalQuantity *int               `json:"physical_quantity"`
	Discrepancy      *int               `json:"discrepancy"`
	Status           VerificationStatus `json:"status" gorm:"size:20;not null;index"`
	ConfirmedBy      *uint              `json:"confirmed_by"`
	Confirmer        *User              `json:"confirmer,omitempty" gorm:"foreignKey:ConfirmedBy"`
	ConfirmedAt      *time.Time         `json:"confirmed_at"`
	Notes            string             `json:"notes"`
	Version          int                `json:"version" gorm:"not null;default:1"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

func (v *AuditVerification) BeforeCreate(tx *gorm.DB) (err error) {
	if v.ID == 0 {
		v.ID = types.SnowflakeID(idgen.GenerateID())
	}
	return
}
