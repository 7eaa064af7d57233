package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"wms-audit/config"
	"wms-audit/controllers/helpers"
	"wms-audit/events"
	"wms-audit/models"
	"wms-audit/repositories"
	"wms-audit/types"

	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

const (
	historyTypeAuditSession = "audit_session"
	auditCodeLockKey        = "audit-code"
	maxAuditCodeAttempts    = 5
)

// AuditSessionService owns the audit lifecycle:
//
//	open -> in_progress -> reconciliation -> completed
//	open | in_progress | reconciliation -> cancelled
//
// Every transition is a compare-and-swap on status inside one transaction, so of two
// racing transitions exactly one wins and the other gets KindInvalidState.
type AuditSessionService struct {
	db     *gorm.DB
	locker Locker
	bus    *events.Bus
	log    *logrus.Logger
	now    func() time.Time
}

func NewAuditSessionService(db *gorm.DB, locker Locker, bus *events.Bus, log *logrus.Logger) *AuditSessionService {
	if locker == nil {
		locker = NoopLocker()
	}
	return &AuditSessionService{
		db:     db,
		locker: locker,
		bus:    bus,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

type CreateSessionInput struct {
	WarehouseID  uint
	Title        string
	StartDate    time.Time
	EndDate      time.Time
	Notes        string
	AllowOverlap bool
}

// CreateSession opens a session and snapshots the warehouse's current on-hand
// quantities into pending verification rows. The snapshot is the fixed baseline of
// the audit; later ledger movements never touch it.
func (s *AuditSessionService) CreateSession(ctx context.Context, actor Actor, in CreateSessionInput) (*models.AuditSession, error) {
	if err := authorize(actor, CapCreateSession); err != nil {
		return nil, err
	}
	in.Title = strings.TrimSpace(in.Title)
	switch {
	case in.WarehouseID == 0:
		return nil, newError(KindValidation, "warehouse is required")
	case in.Title == "":
		return nil, newError(KindValidation, "title is required")
	case in.StartDate.IsZero() || in.EndDate.IsZero():
		return nil, newError(KindValidation, "start and end dates are required")
	case in.EndDate.Before(in.StartDate):
		return nil, newError(KindValidation, "end date %s is before start date %s",
			in.EndDate.Format("2006-01-02"), in.StartDate.Format("2006-01-02"))
	}

	release, err := s.locker.Acquire(ctx, auditCodeLockKey)
	if err != nil {
		return nil, err
	}
	defer release()

	var session *models.AuditSession
	for attempt := 1; ; attempt++ {
		session, err = s.createSnapshot(ctx, actor, in)
		if errors.Is(err, gorm.ErrDuplicatedKey) && attempt < maxAuditCodeAttempts {
			continue
		}
		break
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, newError(KindConflict, "could not allocate a unique audit code, please retry")
	}
	if err != nil {
		s.logFailure("CreateSession", in, err)
		return nil, err
	}

	s.bus.Publish(ctx, events.SessionTransitioned{
		SessionID:   session.ID,
		AuditCode:   session.AuditCode,
		WarehouseID: session.WarehouseID,
		To:          models.AuditStatusOpen,
		ActorID:     actor.UserID,
		At:          session.CreatedAt,
	})
	return session, nil
}

func (s *AuditSessionService) createSnapshot(ctx context.Context, actor Actor, in CreateSessionInput) (*models.AuditSession, error) {
	var session *models.AuditSession
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		warehouse, err := loadWarehouse(tx, in.WarehouseID)
		if err != nil {
			return err
		}
		if err := authorizeWarehouse(actor, warehouse); err != nil {
			return err
		}

		sessionRepo := repositories.NewAuditSessionRepository(tx)
		if !in.AllowOverlap {
			overlapping, err := sessionRepo.CountOverlapping(in.WarehouseID, in.StartDate, in.EndDate)
			if err != nil {
				return err
			}
			if overlapping > 0 {
				return newError(KindConflict, "warehouse %s already has %d unfinished audit session(s) in this period",
					warehouse.Code, overlapping)
			}
		}

		now := s.now()
		code, err := NextAuditCode(sessionRepo, now)
		if err != nil {
			return err
		}

		lines, err := repositories.NewInventoryRepository(tx).GetOnHandByWarehouse(in.WarehouseID)
		if err != nil {
			return err
		}

		session = &models.AuditSession{
			AuditCode:   code,
			Title:       in.Title,
			WarehouseID: in.WarehouseID,
			StartDate:   in.StartDate,
			EndDate:     in.EndDate,
			Status:      models.AuditStatusOpen,
			Notes:       in.Notes,
			CreatedBy:   actor.UserID,
			Version:     1,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := sessionRepo.Create(session); err != nil {
			return err
		}

		rows := make([]models.AuditVerification, 0, len(lines))
		for i, line := range lines {
			var batch *string
			if line.BatchNumber != "" {
				b := line.BatchNumber
				batch = &b
			}
			rows = append(rows, models.AuditVerification{
				SessionID:      session.ID,
				SerialNumber:   i + 1,
				ItemID:         line.ItemID,
				BatchNumber:    batch,
				SystemQuantity: line.Quantity,
				Status:         models.VerificationPending,
				Version:        1,
			})
		}
		if err := repositories.NewAuditVerificationRepository(tx).CreateBatch(rows); err != nil {
			return err
		}

		session.Warehouse = warehouse
		return helpers.InsertTransactionHistory(tx, code, string(models.AuditStatusOpen), historyTypeAuditSession,
			fmt.Sprintf("snapshot of %d line(s)", len(rows)), actor.UserID)
	})
	return session, err
}

type RecordCountInput struct {
	SessionID        types.SnowflakeID
	VerificationID   types.SnowflakeID
	PhysicalQuantity int
	Notes            string
	// ExpectedVersion, when set, rejects the write if the row changed since the
	// caller last read it.
	ExpectedVersion *int
}

// RecordPhysicalCount stores a verifier's count and classifies the row immediately.
// The first count moves an open session to in_progress.
func (s *AuditSessionService) RecordPhysicalCount(ctx context.Context, actor Actor, in RecordCountInput) (*models.AuditVerification, error) {
	if err := authorize(actor, CapRecordCount); err != nil {
		return nil, err
	}
	if in.PhysicalQuantity < 0 {
		return nil, newError(KindValidation, "physical quantity cannot be negative")
	}

	var (
		row          *models.AuditVerification
		session      *models.AuditSession
		transitioned bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		session, err = loadSession(tx, in.SessionID)
		if err != nil {
			return err
		}
		if err := requireAssignment(tx, actor, session); err != nil {
			return err
		}

		now := s.now()
		sessionRepo := repositories.NewAuditSessionRepository(tx)
		// Locks the session row for the rest of the transaction and rejects counts
		// on sessions that left the counting states.
		affected, err := sessionRepo.CompareAndSwapStatus(in.SessionID,
			[]models.AuditStatus{models.AuditStatusOpen},
			map[string]interface{}{"status": string(models.AuditStatusInProgress), "updated_at": now})
		if err != nil {
			return err
		}
		transitioned = affected == 1
		if !transitioned {
			affected, err = sessionRepo.Touch(in.SessionID, models.AuditStatusInProgress, now)
			if err != nil {
				return err
			}
			if affected == 0 {
				current, err := sessionRepo.GetStatus(in.SessionID)
				if err != nil {
					return err
				}
				return newError(KindInvalidState, "session %s is %s; physical counts are closed", session.AuditCode, current)
			}
		}

		verificationRepo := repositories.NewAuditVerificationRepository(tx)
		row, err = verificationRepo.GetInSession(in.SessionID, in.VerificationID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return newError(KindNotFound, "verification %s not found in session %s", in.VerificationID, session.AuditCode)
		}
		if err != nil {
			return err
		}
		if in.ExpectedVersion != nil && *in.ExpectedVersion != row.Version {
			return newError(KindConflict, "verification %s was modified (version %d, expected %d)",
				in.VerificationID, row.Version, *in.ExpectedVersion)
		}

		quantity := in.PhysicalQuantity
		status, discrepancy := Classify(row.SystemQuantity, &quantity)
		entry := repositories.CountEntry{
			PhysicalQuantity: quantity,
			Discrepancy:      *discrepancy,
			Status:           status,
			ConfirmedBy:      actor.UserID,
			ConfirmedAt:      now,
			Notes:            strings.TrimSpace(in.Notes),
		}
		affected, err = verificationRepo.ApplyCount(row.ID, row.Version, entry)
		if err != nil {
			return err
		}
		if affected == 0 {
			return newError(KindConflict, "verification %s was modified concurrently, please reload", in.VerificationID)
		}

		row.PhysicalQuantity = &entry.PhysicalQuantity
		row.Discrepancy = &entry.Discrepancy
		row.Status = entry.Status
		row.ConfirmedBy = &entry.ConfirmedBy
		row.ConfirmedAt = &entry.ConfirmedAt
		row.Notes = entry.Notes
		row.Version++
		row.UpdatedAt = now

		if transitioned {
			return helpers.InsertTransactionHistory(tx, session.AuditCode, string(models.AuditStatusInProgress),
				historyTypeAuditSession, "first physical count recorded", actor.UserID)
		}
		return nil
	})
	if err != nil {
		s.logFailure("RecordPhysicalCount", in, err)
		return nil, err
	}

	if transitioned {
		s.bus.Publish(ctx, events.SessionTransitioned{
			SessionID:   session.ID,
			AuditCode:   session.AuditCode,
			WarehouseID: session.WarehouseID,
			From:        models.AuditStatusOpen,
			To:          models.AuditStatusInProgress,
			ActorID:     actor.UserID,
			At:          row.UpdatedAt,
		})
	}
	s.bus.Publish(ctx, events.VerificationRecorded{
		SessionID:        session.ID,
		AuditCode:        session.AuditCode,
		VerificationID:   row.ID,
		SerialNumber:     row.SerialNumber,
		PhysicalQuantity: *row.PhysicalQuantity,
		Discrepancy:      *row.Discrepancy,
		Status:           row.Status,
		RecordedBy:       actor.UserID,
		RecordedAt:       row.UpdatedAt,
	})
	return row, nil
}

type transition struct {
	name       string
	capability Capability
	from       []models.AuditStatus
	to         models.AuditStatus
	reason     string
	// check runs inside the transaction after the status has been validated.
	check   func(tx *gorm.DB, session *models.AuditSession) error
	updates func(now time.Time) map[string]interface{}
}

// StartSession explicitly moves an open session to in_progress.
func (s *AuditSessionService) StartSession(ctx context.Context, actor Actor, sessionID types.SnowflakeID) (*models.AuditSession, error) {
	return s.apply(ctx, actor, sessionID, transition{
		name:       "StartSession",
		capability: CapTransitionSession,
		from:       []models.AuditStatus{models.AuditStatusOpen},
		to:         models.AuditStatusInProgress,
	})
}

// AdvanceToReconciliation requires every row to carry a physical quantity.
func (s *AuditSessionService) AdvanceToReconciliation(ctx context.Context, actor Actor, sessionID types.SnowflakeID) (*models.AuditSession, error) {
	return s.apply(ctx, actor, sessionID, transition{
		name:       "AdvanceToReconciliation",
		capability: CapTransitionSession,
		from:       []models.AuditStatus{models.AuditStatusOpen, models.AuditStatusInProgress},
		to:         models.AuditStatusReconciliation,
		check: func(tx *gorm.DB, session *models.AuditSession) error {
			pending, err := repositories.NewAuditVerificationRepository(tx).CountPending(session.ID)
			if err != nil {
				return err
			}
			if pending > 0 {
				e := newError(KindIncomplete, "%d item(s) of session %s still have no physical count", pending, session.AuditCode)
				e.PendingCount = int(pending)
				return e
			}
			return nil
		},
	})
}

// CompleteSession finalizes a reconciled session and locks it permanently.
func (s *AuditSessionService) CompleteSession(ctx context.Context, actor Actor, sessionID types.SnowflakeID) (*models.AuditSession, error) {
	return s.apply(ctx, actor, sessionID, transition{
		name:       "CompleteSession",
		capability: CapFinalizeSession,
		from:       []models.AuditStatus{models.AuditStatusReconciliation},
		to:         models.AuditStatusCompleted,
		updates: func(now time.Time) map[string]interface{} {
			return map[string]interface{}{"completed_by": actor.UserID, "completed_at": now}
		},
	})
}

// CancelSession abandons a session from any non-terminal state.
func (s *AuditSessionService) CancelSession(ctx context.Context, actor Actor, sessionID types.SnowflakeID, reason string) (*models.AuditSession, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		if err := authorize(actor, CapFinalizeSession); err != nil {
			return nil, err
		}
		return nil, newError(KindValidation, "a cancellation reason is required")
	}
	return s.apply(ctx, actor, sessionID, transition{
		name:       "CancelSession",
		capability: CapFinalizeSession,
		from:       []models.AuditStatus{models.AuditStatusOpen, models.AuditStatusInProgress, models.AuditStatusReconciliation},
		to:         models.AuditStatusCancelled,
		reason:     reason,
		updates: func(now time.Time) map[string]interface{} {
			return map[string]interface{}{"cancelled_by": actor.UserID, "cancelled_at": now, "cancel_reason": reason}
		},
	})
}

func (s *AuditSessionService) apply(ctx context.Context, actor Actor, sessionID types.SnowflakeID, t transition) (*models.AuditSession, error) {
	if err := authorize(actor, t.capability); err != nil {
		return nil, err
	}

	var (
		session *models.AuditSession
		from    models.AuditStatus
		at      time.Time
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		session, err = loadSession(tx, sessionID)
		if err != nil {
			return err
		}
		if err := authorizeWarehouse(actor, session.Warehouse); err != nil {
			return err
		}
		if !slices.Contains(t.from, session.Status) {
			return invalidTransition(session, session.Status, t.to)
		}
		if t.check != nil {
			if err := t.check(tx, session); err != nil {
				return err
			}
		}

		at = s.now()
		updates := map[string]interface{}{"status": string(t.to), "updated_at": at}
		if t.updates != nil {
			for k, v := range t.updates(at) {
				updates[k] = v
			}
		}

		// The swap is pinned to the status last seen so from is the state actually left.
		// A count may move the session open -> in_progress in between; the swap is then
		// retried from the new status while it is still a valid source.
		sessionRepo := repositories.NewAuditSessionRepository(tx)
		from = session.Status
		for {
			affected, err := sessionRepo.CompareAndSwapStatus(sessionID, []models.AuditStatus{from}, updates)
			if err != nil {
				return err
			}
			if affected == 1 {
				break
			}
			current, err := sessionRepo.GetStatus(sessionID)
			if err != nil {
				return err
			}
			if current == from || !slices.Contains(t.from, current) {
				return invalidTransition(session, current, t.to)
			}
			from = current
		}

		if session, err = loadSession(tx, sessionID); err != nil {
			return err
		}

		detail := fmt.Sprintf("%s -> %s", from, t.to)
		if t.reason != "" {
			detail += ": " + t.reason
		}
		return helpers.InsertTransactionHistory(tx, session.AuditCode, string(t.to), historyTypeAuditSession, detail, actor.UserID)
	})
	if err != nil {
		s.logFailure(t.name, sessionID, err)
		return nil, err
	}

	s.bus.Publish(ctx, events.SessionTransitioned{
		SessionID:   session.ID,
		AuditCode:   session.AuditCode,
		WarehouseID: session.WarehouseID,
		From:        from,
		To:          t.to,
		ActorID:     actor.UserID,
		Reason:      t.reason,
		At:          at,
	})
	return session, nil
}

func invalidTransition(session *models.AuditSession, current, to models.AuditStatus) error {
	return newError(KindInvalidState, "session %s is %s and cannot move to %s", session.AuditCode, current, to)
}

type SessionDetail struct {
	Session *models.AuditSession `json:"session"`
	Summary Summary              `json:"summary"`
}

func (s *AuditSessionService) GetSession(ctx context.Context, actor Actor, sessionID types.SnowflakeID) (*SessionDetail, error) {
	if err := authorize(actor, CapViewSession); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	session, err := loadSession(db, sessionID)
	if err != nil {
		return nil, err
	}
	if err := authorizeSessionAccess(db, actor, session); err != nil {
		return nil, err
	}

	rows, err := repositories.NewAuditVerificationRepository(db).ListBySession(sessionID, nil)
	if err != nil {
		return nil, err
	}
	return &SessionDetail{Session: session, Summary: Summarize(rows)}, nil
}

type ListSessionsInput struct {
	WarehouseID *uint
	Status      *models.AuditStatus
}

func (s *AuditSessionService) ListSessions(ctx context.Context, actor Actor, in ListSessionsInput) ([]models.AuditSession, error) {
	if err := authorize(actor, CapViewSession); err != nil {
		return nil, err
	}
	if in.Status != nil && !in.Status.IsValid() {
		return nil, newError(KindValidation, "unknown session status %q", *in.Status)
	}

	db := s.db.WithContext(ctx)
	filter := repositories.SessionFilter{Status: in.Status}

	var visible []uint
	var err error
	switch actor.Role {
	case RoleAdmin:
		if in.WarehouseID != nil {
			filter.WarehouseIDs = []uint{*in.WarehouseID}
		}
		return repositories.NewAuditSessionRepository(db).List(filter)
	case RoleAuditManager:
		visible, err = repositories.NewWarehouseRepository(db).IDsManagedBy(actor.UserID)
	default:
		visible, err = repositories.NewAuditTeamRepository(db).AssignedWarehouseIDs(actor.UserID)
	}
	if err != nil {
		return nil, err
	}

	filter.Restricted = true
	filter.WarehouseIDs = visible
	if in.WarehouseID != nil {
		filter.WarehouseIDs = nil
		if slices.Contains(visible, *in.WarehouseID) {
			filter.WarehouseIDs = []uint{*in.WarehouseID}
		}
	}
	return repositories.NewAuditSessionRepository(db).List(filter)
}

func (s *AuditSessionService) ListVerifications(ctx context.Context, actor Actor, sessionID types.SnowflakeID, status *models.VerificationStatus) ([]models.AuditVerification, error) {
	if err := authorize(actor, CapViewSession); err != nil {
		return nil, err
	}
	if status != nil && !status.IsValid() {
		return nil, newError(KindValidation, "unknown verification status %q", *status)
	}

	db := s.db.WithContext(ctx)
	session, err := loadSession(db, sessionID)
	if err != nil {
		return nil, err
	}
	if err := authorizeSessionAccess(db, actor, session); err != nil {
		return nil, err
	}
	return repositories.NewAuditVerificationRepository(db).ListBySession(sessionID, status)
}

// GetSummary returns the session's aggregates without the session itself.
func (s *AuditSessionService) GetSummary(ctx context.Context, actor Actor, sessionID types.SnowflakeID) (Summary, error) {
	rows, err := s.ListVerifications(ctx, actor, sessionID, nil)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(rows), nil
}

func (s *AuditSessionService) logFailure(funcName string, data any, err error) {
	if KindOf(err) != "" {
		return
	}
	config.LogError(s.log, "audit_session", funcName, "transaction", data, err)
}
