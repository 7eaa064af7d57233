package controllers

import (
	"errors"
	"strconv"

	"wms-audit/config"
	"wms-audit/services"
	"wms-audit/types"

	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

var validate = validator.New()

var kindStatus = map[services.ErrorKind]int{
	services.KindAuthorization:      fiber.StatusForbidden,
	services.KindInvalidState:       fiber.StatusConflict,
	services.KindIncomplete:         fiber.StatusUnprocessableEntity,
	services.KindConflict:           fiber.StatusConflict,
	services.KindReportNotAvailable: fiber.StatusConflict,
	services.KindNotFound:           fiber.StatusNotFound,
	services.KindValidation:         fiber.StatusBadRequest,
}

// actorFrom reads the identity the auth middleware stored in locals.
func actorFrom(ctx *fiber.Ctx) services.Actor {
	userID, _ := ctx.Locals("userID").(uint)
	role, _ := ctx.Locals("role").(string)
	return services.Actor{UserID: userID, Role: services.Role(role)}
}

func ok(ctx *fiber.Ctx, status int, message string, data interface{}) error {
	return ctx.Status(status).JSON(fiber.Map{
		"success": true,
		"message": message,
		"data":    data,
	})
}

func badRequest(ctx *fiber.Ctx, message string, err error) error {
	body := fiber.Map{"success": false, "message": message, "error_kind": services.KindValidation}
	if err != nil {
		body["error"] = err.Error()
	}
	return ctx.Status(fiber.StatusBadRequest).JSON(body)
}

// fail maps a service error onto the response envelope. Unexpected errors are logged
// and hidden behind a generic 500.
func fail(ctx *fiber.Ctx, log *logrus.Logger, funcName string, err error) error {
	var e *services.Error
	if errors.As(err, &e) {
		body := fiber.Map{"success": false, "message": e.Message, "error_kind": e.Kind}
		if e.Kind == services.KindIncomplete {
			body["pending_count"] = e.PendingCount
		}
		return ctx.Status(kindStatus[e.Kind]).JSON(body)
	}

	config.LogError(log, "controllers", funcName, ctx.Path(), nil, err)
	return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"success": false,
		"message": "Internal server error",
	})
}

func paramID(ctx *fiber.Ctx, name string) (types.SnowflakeID, error) {
	return types.ParseSnowflakeID(ctx.Params(name))
}

// optionalUint parses a query parameter; an empty value is nil.
func optionalUint(ctx *fiber.Ctx, name string) (*uint, error) {
	raw := ctx.Query(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(raw, 10, 0)
	if err != nil || v == 0 {
		return nil, errors.New(name + " must be a positive integer")
	}
	id := uint(v)
	return &id, nil
}
