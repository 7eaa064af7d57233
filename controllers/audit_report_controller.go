package controllers

import (
	"errors"
	"fmt"

	"wms-audit/renderer"
	"wms-audit/services"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type AuditReportController struct {
	Service *services.AuditReportService
	Log     *logrus.Logger
}

func NewAuditReportController(service *services.AuditReportService, log *logrus.Logger) *AuditReportController {
	return &AuditReportController{Service: service, Log: log}
}

func (c *AuditReportController) GetReport(ctx *fiber.Ctx) error {
	report, err := c.compile(ctx)
	if err != nil {
		return err
	}
	if report == nil {
		return nil
	}
	return ok(ctx, fiber.StatusOK, "Report generated", report)
}

// ExportReport renders the report as a download, excel unless ?format= says otherwise.
func (c *AuditReportController) ExportReport(ctx *fiber.Ctx) error {
	format := renderer.Format(ctx.Query("format", string(renderer.FormatExcel)))

	report, err := c.compile(ctx)
	if err != nil || report == nil {
		return err
	}

	file, err := renderer.Render(format, report)
	if errors.Is(err, renderer.ErrUnsupportedFormat) {
		return badRequest(ctx, fmt.Sprintf("Export format %q is not supported", format), nil)
	}
	if err != nil {
		return fail(ctx, c.Log, "ExportReport", err)
	}

	ctx.Set("Content-Type", file.ContentType)
	ctx.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, file.Name))
	return ctx.Status(fiber.StatusOK).Send(file.Body)
}

// compile writes the error response itself and returns a nil report in that case.
func (c *AuditReportController) compile(ctx *fiber.Ctx) (any, error) {
	id, err := paramID(ctx, "id")
	if err != nil {
		return nil, badRequest(ctx, "Invalid session id", err)
	}
	reportType := services.ReportType(ctx.Params("type"))
	if !reportType.IsValid() {
		return nil, badRequest(ctx, fmt.Sprintf("Unknown report type %q", reportType), nil)
	}

	report, err := c.Service.Compile(ctx.UserContext(), actorFrom(ctx), id, reportType)
	if err != nil {
		return nil, fail(ctx, c.Log, "Compile", err)
	}
	return report, nil
}
