package routes

import (
	"wms-audit/config"
	"wms-audit/controllers"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupHealthRoutes(app *fiber.App, db *gorm.DB) {
	app.Get(config.MAIN_ROUTES+"/health", func(ctx *fiber.Ctx) error {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx.UserContext())
		}
		if err != nil {
			return ctx.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"success": false,
				"message": "database unavailable",
			})
		}
		return ctx.JSON(fiber.Map{"success": true, "message": "ok"})
	})
}

func SetupAuditTeamRoutes(app *fiber.App, auth fiber.Handler, controller *controllers.AuditTeamController) {
	api := app.Group(config.MAIN_ROUTES+"/audit-teams", auth)
	api.Post("/", controller.AssignTeamMember)
	api.Get("/", controller.ListTeam)
	api.Get("/users/:userId/warehouses", controller.ListAssignedWarehouses)
	api.Delete("/:id", controller.RemoveTeamMember)
}

func SetupAuditSessionRoutes(app *fiber.App, auth fiber.Handler, sessions *controllers.AuditSessionController, reports *controllers.AuditReportController) {
	api := app.Group(config.MAIN_ROUTES+"/audit-sessions", auth)
	api.Post("/", sessions.CreateSession)
	api.Get("/", sessions.ListSessions)
	api.Get("/:id", sessions.GetSession)
	api.Get("/:id/summary", sessions.GetSummary)
	api.Get("/:id/verifications", sessions.ListVerifications)
	api.Put("/:id/verifications/:verificationId", sessions.RecordPhysicalCount)
	api.Post("/:id/start", sessions.StartSession)
	api.Post("/:id/reconcile", sessions.AdvanceToReconciliation)
	api.Post("/:id/complete", sessions.CompleteSession)
	api.Post("/:id/cancel", sessions.CancelSession)
	api.Get("/:id/reports/:type", reports.GetReport)
	api.Get("/:id/reports/:type/export", reports.ExportReport)
}
