package services

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"wms-audit/database"
	"wms-audit/events"
	"wms-audit/migration"
	"wms-audit/models"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a private in-memory database. A single connection keeps every
// handle on the same database and serializes concurrent transactions.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, migration.Migrate(db))
	return db
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type eventRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *eventRecorder) handle(_ context.Context, e events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *eventRecorder) transitions() []events.SessionTransitioned {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []events.SessionTransitioned
	for _, e := range r.events {
		if st, ok := e.(events.SessionTransitioned); ok {
			out = append(out, st)
		}
	}
	return out
}

func (r *eventRecorder) recorded() []events.VerificationRecorded {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []events.VerificationRecorded
	for _, e := range r.events {
		if vr, ok := e.(events.VerificationRecorded); ok {
			out = append(out, vr)
		}
	}
	return out
}

// fixture is the seeded demo warehouse CKY with the auditor assigned to it, plus an
// audit user who is not on the team.
type fixture struct {
	db        *gorm.DB
	warehouse models.Warehouse

	admin    Actor
	manager  Actor
	site     Actor
	auditor  Actor
	outsider Actor

	teams    *TeamService
	sessions *AuditSessionService
	reports  *AuditReportService
	recorder *eventRecorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	require.NoError(t, database.RunSeeders(db))

	users, err := database.SeedUsers(db)
	require.NoError(t, err)
	outsider := models.User{Username: "outsider", Name: "Outside Auditor", Role: string(RoleAuditUser), IsActive: true}
	require.NoError(t, db.Create(&outsider).Error)

	var warehouse models.Warehouse
	require.NoError(t, db.Where("code = ?", "CKY").First(&warehouse).Error)

	log := quietLogger()
	recorder := &eventRecorder{}
	bus := events.NewBus()
	bus.Subscribe(recorder.handle)

	f := &fixture{
		db:        db,
		warehouse: warehouse,
		admin:     Actor{UserID: users["admin"].ID, Role: RoleAdmin},
		manager:   Actor{UserID: users["manager"].ID, Role: RoleAuditManager},
		site:      Actor{UserID: users["site"].ID, Role: RoleAuditManager},
		auditor:   Actor{UserID: users["auditor"].ID, Role: RoleAuditUser},
		outsider:  Actor{UserID: outsider.ID, Role: RoleAuditUser},
		teams:     NewTeamService(db, log),
		sessions:  NewAuditSessionService(db, nil, bus, log),
		reports:   NewAuditReportService(db),
		recorder:  recorder,
	}

	_, err = f.teams.AssignTeamMember(context.Background(), f.manager, AssignTeamMemberInput{
		ManagerID:   f.manager.UserID,
		AuditUserID: f.auditor.UserID,
		WarehouseID: warehouse.ID,
	})
	require.NoError(t, err)
	return f
}

var (
	periodStart = time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	periodEnd   = time.Date(2026, 10, 3, 0, 0, 0, 0, time.UTC)
)

func (f *fixture) createSession(t *testing.T) *models.AuditSession {
	t.Helper()
	session, err := f.sessions.CreateSession(context.Background(), f.manager, CreateSessionInput{
		WarehouseID:  f.warehouse.ID,
		Title:        "Q4 cycle count",
		StartDate:    periodStart,
		EndDate:      periodEnd,
		AllowOverlap: true,
	})
	require.NoError(t, err)
	return session
}

func (f *fixture) rows(t *testing.T, session *models.AuditSession) []models.AuditVerification {
	t.Helper()
	rows, err := f.sessions.ListVerifications(context.Background(), f.manager, session.ID, nil)
	require.NoError(t, err)
	return rows
}

// countAll records the given quantities in serial order as the auditor.
func (f *fixture) countAll(t *testing.T, session *models.AuditSession, quantities ...int) {
	t.Helper()
	rows := f.rows(t, session)
	require.Len(t, rows, len(quantities))
	for i, row := range rows {
		_, err := f.sessions.RecordPhysicalCount(context.Background(), f.auditor, RecordCountInput{
			SessionID:        session.ID,
			VerificationID:   row.ID,
			PhysicalQuantity: quantities[i],
		})
		require.NoError(t, err)
	}
}

// newWarehouse creates a warehouse managed by manager holding one stock line per
// quantity, each for a fresh product.
func (f *fixture) newWarehouse(t *testing.T, code string, quantities ...int) models.Warehouse {
	t.Helper()
	w := models.Warehouse{Code: code, Name: "Warehouse " + code, AuditManagerID: &f.manager.UserID}
	require.NoError(t, f.db.Create(&w).Error)

	for i, qty := range quantities {
		p := models.Product{ItemCode: code + "-" + string(rune('A'+i)), ItemName: "Item " + string(rune('A'+i)), Uom: "PCS"}
		require.NoError(t, f.db.Create(&p).Error)
		require.NoError(t, f.db.Create(&models.Inventory{WarehouseID: w.ID, ItemID: p.ID, QtyOnhand: qty}).Error)
	}

	_, err := f.teams.AssignTeamMember(context.Background(), f.manager, AssignTeamMemberInput{
		ManagerID:   f.manager.UserID,
		AuditUserID: f.auditor.UserID,
		WarehouseID: w.ID,
	})
	require.NoError(t, err)
	return w
}
