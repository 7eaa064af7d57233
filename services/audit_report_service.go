package services

import (
	"context"
	"errors"
	"strconv"
	"time"

	"wms-audit/models"
	"wms-audit/repositories"
	"wms-audit/types"

	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

type ReportType string

const (
	ReportPhysicalEntry ReportType = "physical-entry"
	ReportVariance      ReportType = "variance"
	ReportFinalAudit    ReportType = "final-audit"
)

func (t ReportType) IsValid() bool {
	switch t {
	case ReportPhysicalEntry, ReportVariance, ReportFinalAudit:
		return true
	}
	return false
}

const (
	notEnteredLabel  = "Not Entered"
	noReasonProvided = "No reason provided"
)

type ReportHeader struct {
	AuditCode     string             `json:"audit_code"`
	Title         string             `json:"title"`
	WarehouseCode string             `json:"warehouse_code"`
	WarehouseName string             `json:"warehouse_name"`
	StartDate     time.Time          `json:"start_date"`
	EndDate       time.Time          `json:"end_date"`
	Status        models.AuditStatus `json:"status"`
	GeneratedAt   time.Time          `json:"generated_at"`
}

type PhysicalEntryRow struct {
	SerialNumber     int        `json:"serial_number"`
	ItemCode         string     `json:"item_code"`
	ItemName         string     `json:"item_name"`
	BatchNumber      string     `json:"batch_number"`
	PhysicalQuantity *int       `json:"physical_quantity"`
	PhysicalDisplay  string     `json:"physical_display"`
	ConfirmedBy      string     `json:"confirmed_by"`
	ConfirmedAt      *time.Time `json:"confirmed_at"`
	Notes            string     `json:"notes"`
}

type PhysicalEntryReport struct {
	Header ReportHeader       `json:"header"`
	Rows   []PhysicalEntryRow `json:"rows"`
}

type VarianceRow struct {
	SerialNumber     int    `json:"serial_number"`
	ItemCode         string `json:"item_code"`
	ItemName         string `json:"item_name"`
	BatchNumber      string `json:"batch_number"`
	SystemQuantity   int    `json:"system_quantity"`
	PhysicalQuantity int    `json:"physical_quantity"`
	Discrepancy      int    `json:"discrepancy"`
	Variance         int    `json:"variance"`
	Reason           string `json:"reason"`
}

type VarianceSummary struct {
	TotalVariances int `json:"total_variances"`
	ShortCount     int `json:"short_count"`
	ExcessCount    int `json:"excess_count"`
}

type VarianceReport struct {
	Header  ReportHeader    `json:"header"`
	Short   []VarianceRow   `json:"short"`
	Excess  []VarianceRow   `json:"excess"`
	Summary VarianceSummary `json:"summary"`
}

type FinalAuditRow struct {
	SerialNumber     int                       `json:"serial_number"`
	ItemCode         string                    `json:"item_code"`
	ItemName         string                    `json:"item_name"`
	BatchNumber      string                    `json:"batch_number"`
	SystemQuantity   int                       `json:"system_quantity"`
	PhysicalQuantity *int                      `json:"physical_quantity"`
	Variance         *int                      `json:"variance"`
	Status           models.VerificationStatus `json:"status"`
	VerifiedBy       string                    `json:"verified_by"`
	Notes            string                    `json:"notes"`
}

type SignatureSlot struct {
	Role string `json:"role"`
	Name string `json:"name"`
}

type FinalAuditReport struct {
	Header     ReportHeader    `json:"header"`
	Rows       []FinalAuditRow `json:"rows"`
	Summary    Summary         `json:"summary"`
	Signatures []SignatureSlot `json:"signatures"`
}

// AuditReportService compiles read-only report documents from a session.
type AuditReportService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewAuditReportService(db *gorm.DB) *AuditReportService {
	return &AuditReportService{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Compile dispatches on the report type and returns one of the *Report structs.
func (s *AuditReportService) Compile(ctx context.Context, actor Actor, sessionID types.SnowflakeID, reportType ReportType) (any, error) {
	switch reportType {
	case ReportPhysicalEntry:
		return s.PhysicalEntryReport(ctx, actor, sessionID)
	case ReportVariance:
		return s.VarianceReport(ctx, actor, sessionID)
	case ReportFinalAudit:
		return s.FinalAuditReport(ctx, actor, sessionID)
	}
	return nil, newError(KindValidation, "unknown report type %q", reportType)
}

func (s *AuditReportService) PhysicalEntryReport(ctx context.Context, actor Actor, sessionID types.SnowflakeID) (*PhysicalEntryReport, error) {
	session, rows, err := s.load(ctx, actor, sessionID, ReportPhysicalEntry,
		models.AuditStatusReconciliation, models.AuditStatusCompleted)
	if err != nil {
		return nil, err
	}

	report := &PhysicalEntryReport{Header: s.header(session), Rows: make([]PhysicalEntryRow, 0, len(rows))}
	for _, row := range rows {
		entry := PhysicalEntryRow{
			SerialNumber:     row.SerialNumber,
			ItemCode:         itemCode(row),
			ItemName:         itemName(row),
			BatchNumber:      batchNumber(row),
			PhysicalQuantity: row.PhysicalQuantity,
			PhysicalDisplay:  notEnteredLabel,
			ConfirmedBy:      userName(row.Confirmer),
			ConfirmedAt:      row.ConfirmedAt,
			Notes:            row.Notes,
		}
		if row.PhysicalQuantity != nil {
			entry.PhysicalDisplay = strconv.Itoa(*row.PhysicalQuantity)
		}
		report.Rows = append(report.Rows, entry)
	}
	return report, nil
}

// VarianceReport lists only rows whose physical count differs from the snapshot,
// split into short and excess, each numbered from 1.
func (s *AuditReportService) VarianceReport(ctx context.Context, actor Actor, sessionID types.SnowflakeID) (*VarianceReport, error) {
	session, rows, err := s.load(ctx, actor, sessionID, ReportVariance,
		models.AuditStatusReconciliation, models.AuditStatusCompleted)
	if err != nil {
		return nil, err
	}

	report := &VarianceReport{Header: s.header(session), Short: []VarianceRow{}, Excess: []VarianceRow{}}
	for _, row := range rows {
		status, discrepancy := Classify(row.SystemQuantity, row.PhysicalQuantity)
		if status != models.VerificationShort && status != models.VerificationExcess {
			continue
		}

		line := VarianceRow{
			ItemCode:         itemCode(row),
			ItemName:         itemName(row),
			BatchNumber:      batchNumber(row),
			SystemQuantity:   row.SystemQuantity,
			PhysicalQuantity: *row.PhysicalQuantity,
			Discrepancy:      *discrepancy,
			Variance:         abs(*discrepancy),
			Reason:           row.Notes,
		}
		if line.Reason == "" {
			line.Reason = noReasonProvided
		}

		if status == models.VerificationShort {
			line.SerialNumber = len(report.Short) + 1
			report.Short = append(report.Short, line)
		} else {
			line.SerialNumber = len(report.Excess) + 1
			report.Excess = append(report.Excess, line)
		}
	}

	report.Summary = VarianceSummary{
		TotalVariances: len(report.Short) + len(report.Excess),
		ShortCount:     len(report.Short),
		ExcessCount:    len(report.Excess),
	}
	return report, nil
}

func (s *AuditReportService) FinalAuditReport(ctx context.Context, actor Actor, sessionID types.SnowflakeID) (*FinalAuditReport, error) {
	session, rows, err := s.load(ctx, actor, sessionID, ReportFinalAudit, models.AuditStatusCompleted)
	if err != nil {
		return nil, err
	}

	report := &FinalAuditReport{
		Header:  s.header(session),
		Rows:    make([]FinalAuditRow, 0, len(rows)),
		Summary: Summarize(rows),
	}
	for _, row := range rows {
		status, discrepancy := Classify(row.SystemQuantity, row.PhysicalQuantity)
		report.Rows = append(report.Rows, FinalAuditRow{
			SerialNumber:     row.SerialNumber,
			ItemCode:         itemCode(row),
			ItemName:         itemName(row),
			BatchNumber:      batchNumber(row),
			SystemQuantity:   row.SystemQuantity,
			PhysicalQuantity: row.PhysicalQuantity,
			Variance:         discrepancy,
			Status:           status,
			VerifiedBy:       userName(row.Confirmer),
			Notes:            row.Notes,
		})
	}

	signatures, err := s.signatures(ctx, session)
	if err != nil {
		return nil, err
	}
	report.Signatures = signatures
	return report, nil
}

func (s *AuditReportService) load(ctx context.Context, actor Actor, sessionID types.SnowflakeID, reportType ReportType, allowed ...models.AuditStatus) (*models.AuditSession, []models.AuditVerification, error) {
	if err := authorize(actor, CapViewReport); err != nil {
		return nil, nil, err
	}

	db := s.db.WithContext(ctx)
	session, err := loadSession(db, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if err := authorizeSessionAccess(db, actor, session); err != nil {
		return nil, nil, err
	}
	if !slices.Contains(allowed, session.Status) {
		return nil, nil, newError(KindReportNotAvailable, "%s report is not available while session %s is %s",
			reportType, session.AuditCode, session.Status)
	}

	rows, err := repositories.NewAuditVerificationRepository(db).ListBySession(sessionID, nil)
	if err != nil {
		return nil, nil, err
	}
	slices.SortStableFunc(rows, func(a, b models.AuditVerification) int {
		return a.SerialNumber - b.SerialNumber
	})
	return session, rows, nil
}

// signatures pre-fills the audit manager slot with whoever completed the session,
// falling back to the warehouse's audit manager.
func (s *AuditReportService) signatures(ctx context.Context, session *models.AuditSession) ([]SignatureSlot, error) {
	db := s.db.WithContext(ctx)
	warehouse, err := repositories.NewWarehouseRepository(db).GetByID(session.WarehouseID)
	if err != nil {
		return nil, err
	}

	auditManager := userName(warehouse.AuditManager)
	if session.CompletedBy != nil {
		completer, err := repositories.NewUserRepository(db).GetByID(*session.CompletedBy)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if err == nil {
			auditManager = userName(completer)
		}
	}

	return []SignatureSlot{
		{Role: "Audit Manager", Name: auditManager},
		{Role: "Warehouse Manager", Name: userName(warehouse.Manager)},
	}, nil
}

func (s *AuditReportService) header(session *models.AuditSession) ReportHeader {
	h := ReportHeader{
		AuditCode:   session.AuditCode,
		Title:       session.Title,
		StartDate:   session.StartDate,
		EndDate:     session.EndDate,
		Status:      session.Status,
		GeneratedAt: s.now(),
	}
	if session.Warehouse != nil {
		h.WarehouseCode = session.Warehouse.Code
		h.WarehouseName = session.Warehouse.Name
	}
	return h
}

func itemCode(row models.AuditVerification) string {
	if row.Item == nil {
		return ""
	}
	return row.Item.ItemCode
}

func itemName(row models.AuditVerification) string {
	if row.Item == nil {
		return ""
	}
	return row.Item.ItemName
}

func batchNumber(row models.AuditVerification) string {
	if row.BatchNumber == nil {
		return ""
	}
	return *row.BatchNumber
}

func userName(u *models.User) string {
	if u == nil {
		return ""
	}
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
