package controllers

import (
	"strconv"

	"wms-audit/services"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type AuditTeamController struct {
	Service *services.TeamService
	Log     *logrus.Logger
}

func NewAuditTeamController(service *services.TeamService, log *logrus.Logger) *AuditTeamController {
	return &AuditTeamController{Service: service, Log: log}
}

func (c *AuditTeamController) AssignTeamMember(ctx *fiber.Ctx) error {
	var input struct {
		ManagerID   uint `json:"manager_id" validate:"required"`
		AuditUserID uint `json:"audit_user_id" validate:"required"`
		WarehouseID uint `json:"warehouse_id" validate:"required"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return badRequest(ctx, "Invalid request body", err)
	}
	if err := validate.Struct(input); err != nil {
		return badRequest(ctx, "Validation failed", err)
	}

	assignment, err := c.Service.AssignTeamMember(ctx.UserContext(), actorFrom(ctx), services.AssignTeamMemberInput{
		ManagerID:   input.ManagerID,
		AuditUserID: input.AuditUserID,
		WarehouseID: input.WarehouseID,
	})
	if err != nil {
		return fail(ctx, c.Log, "AssignTeamMember", err)
	}
	return ok(ctx, fiber.StatusCreated, "Team member assigned", assignment)
}

func (c *AuditTeamController) RemoveTeamMember(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return badRequest(ctx, "Invalid assignment id", err)
	}

	assignment, err := c.Service.RemoveTeamMember(ctx.UserContext(), actorFrom(ctx), id)
	if err != nil {
		return fail(ctx, c.Log, "RemoveTeamMember", err)
	}
	return ok(ctx, fiber.StatusOK, "Team member removed", assignment)
}

func (c *AuditTeamController) ListTeam(ctx *fiber.Ctx) error {
	managerID, err := optionalUint(ctx, "manager_id")
	if err != nil {
		return badRequest(ctx, err.Error(), nil)
	}
	warehouseID, err := optionalUint(ctx, "warehouse_id")
	if err != nil {
		return badRequest(ctx, err.Error(), nil)
	}

	input := services.ListTeamInput{WarehouseID: warehouseID, ActiveOnly: ctx.QueryBool("active_only", false)}
	if managerID != nil {
		input.ManagerID = *managerID
	}

	team, err := c.Service.ListTeam(ctx.UserContext(), actorFrom(ctx), input)
	if err != nil {
		return fail(ctx, c.Log, "ListTeam", err)
	}
	return ok(ctx, fiber.StatusOK, "Team retrieved", team)
}

func (c *AuditTeamController) ListAssignedWarehouses(ctx *fiber.Ctx) error {
	userID, err := strconv.ParseUint(ctx.Params("userId"), 10, 0)
	if err != nil || userID == 0 {
		return badRequest(ctx, "Invalid user id", err)
	}

	warehouses, err := c.Service.ListAssignedWarehouses(ctx.UserContext(), actorFrom(ctx), uint(userID))
	if err != nil {
		return fail(ctx, c.Log, "ListAssignedWarehouses", err)
	}
	return ok(ctx, fiber.StatusOK, "Warehouses retrieved", warehouses)
}
