package controllers

import (
	"context"
	"time"

	"wms-audit/models"
	"wms-audit/services"
	"wms-audit/types"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const dateLayout = "2006-01-02"

type AuditSessionController struct {
	Service *services.AuditSessionService
	Log     *logrus.Logger
}

func NewAuditSessionController(service *services.AuditSessionService, log *logrus.Logger) *AuditSessionController {
	return &AuditSessionController{Service: service, Log: log}
}

func (c *AuditSessionController) CreateSession(ctx *fiber.Ctx) error {
	var input struct {
		WarehouseID  uint   `json:"warehouse_id" validate:"required"`
		Title        string `json:"title" validate:"required,max=200"`
		StartDate    string `json:"start_date" validate:"required"`
		EndDate      string `json:"end_date" validate:"required"`
		Notes        string `json:"notes"`
		AllowOverlap bool   `json:"allow_overlap"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return badRequest(ctx, "Invalid request body", err)
	}
	if err := validate.Struct(input); err != nil {
		return badRequest(ctx, "Validation failed", err)
	}

	start, err := time.Parse(dateLayout, input.StartDate)
	if err != nil {
		return badRequest(ctx, "start_date must be YYYY-MM-DD", err)
	}
	end, err := time.Parse(dateLayout, input.EndDate)
	if err != nil {
		return badRequest(ctx, "end_date must be YYYY-MM-DD", err)
	}

	session, err := c.Service.CreateSession(ctx.UserContext(), actorFrom(ctx), services.CreateSessionInput{
		WarehouseID:  input.WarehouseID,
		Title:        input.Title,
		StartDate:    start,
		EndDate:      end,
		Notes:        input.Notes,
		AllowOverlap: input.AllowOverlap,
	})
	if err != nil {
		return fail(ctx, c.Log, "CreateSession", err)
	}
	return ok(ctx, fiber.StatusCreated, "Audit session created", session)
}

func (c *AuditSessionController) ListSessions(ctx *fiber.Ctx) error {
	warehouseID, err := optionalUint(ctx, "warehouse_id")
	if err != nil {
		return badRequest(ctx, err.Error(), nil)
	}
	input := services.ListSessionsInput{WarehouseID: warehouseID}
	if raw := ctx.Query("status"); raw != "" {
		status := models.AuditStatus(raw)
		input.Status = &status
	}

	sessions, err := c.Service.ListSessions(ctx.UserContext(), actorFrom(ctx), input)
	if err != nil {
		return fail(ctx, c.Log, "ListSessions", err)
	}
	return ok(ctx, fiber.StatusOK, "Audit sessions retrieved", sessions)
}

func (c *AuditSessionController) GetSession(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return badRequest(ctx, "Invalid session id", err)
	}

	detail, err := c.Service.GetSession(ctx.UserContext(), actorFrom(ctx), id)
	if err != nil {
		return fail(ctx, c.Log, "GetSession", err)
	}
	return ok(ctx, fiber.StatusOK, "Audit session retrieved", detail)
}

func (c *AuditSessionController) GetSummary(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return badRequest(ctx, "Invalid session id", err)
	}

	summary, err := c.Service.GetSummary(ctx.UserContext(), actorFrom(ctx), id)
	if err != nil {
		return fail(ctx, c.Log, "GetSummary", err)
	}
	return ok(ctx, fiber.StatusOK, "Audit summary retrieved", summary)
}

func (c *AuditSessionController) ListVerifications(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return badRequest(ctx, "Invalid session id", err)
	}
	var status *models.VerificationStatus
	if raw := ctx.Query("status"); raw != "" {
		s := models.VerificationStatus(raw)
		status = &s
	}

	rows, err := c.Service.ListVerifications(ctx.UserContext(), actorFrom(ctx), id, status)
	if err != nil {
		return fail(ctx, c.Log, "ListVerifications", err)
	}
	return ok(ctx, fiber.StatusOK, "Verifications retrieved", rows)
}

func (c *AuditSessionController) RecordPhysicalCount(ctx *fiber.Ctx) error {
	sessionID, err := paramID(ctx, "id")
	if err != nil {
		return badRequest(ctx, "Invalid session id", err)
	}
	verificationID, err := paramID(ctx, "verificationId")
	if err != nil {
		return badRequest(ctx, "Invalid verification id", err)
	}

	var input struct {
		PhysicalQuantity *int   `json:"physical_quantity" validate:"required,min=0"`
		Notes            string `json:"notes" validate:"max=1000"`
		ExpectedVersion  *int   `json:"expected_version"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return badRequest(ctx, "Invalid request body", err)
	}
	if err := validate.Struct(input); err != nil {
		return badRequest(ctx, "Validation failed", err)
	}

	row, err := c.Service.RecordPhysicalCount(ctx.UserContext(), actorFrom(ctx), services.RecordCountInput{
		SessionID:        sessionID,
		VerificationID:   verificationID,
		PhysicalQuantity: *input.PhysicalQuantity,
		Notes:            input.Notes,
		ExpectedVersion:  input.ExpectedVersion,
	})
	if err != nil {
		return fail(ctx, c.Log, "RecordPhysicalCount", err)
	}
	return ok(ctx, fiber.StatusOK, "Physical count recorded", row)
}

func (c *AuditSessionController) StartSession(ctx *fiber.Ctx) error {
	return c.transition(ctx, "StartSession", "Audit session started", c.Service.StartSession)
}

func (c *AuditSessionController) AdvanceToReconciliation(ctx *fiber.Ctx) error {
	return c.transition(ctx, "AdvanceToReconciliation", "Audit session moved to reconciliation", c.Service.AdvanceToReconciliation)
}

func (c *AuditSessionController) CompleteSession(ctx *fiber.Ctx) error {
	return c.transition(ctx, "CompleteSession", "Audit session completed", c.Service.CompleteSession)
}

func (c *AuditSessionController) CancelSession(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return badRequest(ctx, "Invalid session id", err)
	}
	var input struct {
		Reason string `json:"reason" validate:"required"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return badRequest(ctx, "Invalid request body", err)
	}
	if err := validate.Struct(input); err != nil {
		return badRequest(ctx, "Validation failed", err)
	}

	session, err := c.Service.CancelSession(ctx.UserContext(), actorFrom(ctx), id, input.Reason)
	if err != nil {
		return fail(ctx, c.Log, "CancelSession", err)
	}
	return ok(ctx, fiber.StatusOK, "Audit session cancelled", session)
}

type transitionFunc func(ctx context.Context, actor services.Actor, id types.SnowflakeID) (*models.AuditSession, error)

func (c *AuditSessionController) transition(ctx *fiber.Ctx, funcName, message string, fn transitionFunc) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return badRequest(ctx, "Invalid session id", err)
	}

	session, err := fn(ctx.UserContext(), actorFrom(ctx), id)
	if err != nil {
		return fail(ctx, c.Log, funcName, err)
	}
	return ok(ctx, fiber.StatusOK, message, session)
}
