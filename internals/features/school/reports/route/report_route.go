package route

import (
	"github.com/gofiber/fiber/v2"

	"kindergarten_backend/internals/constants"
	"kindergarten_backend/internals/features/school/reports/controller"
	authMiddleware "kindergarten_backend/internals/middlewares/auth"
)

func ReportRoutes(app fiber.Router, ctrl *controller.ReportController, requireAuth fiber.Handler) {
	reports := app.Group("/api/reports", requireAuth)
	team := authMiddleware.OnlyRoles(constants.RoleErrorTeam("reports"), constants.TeamRoles...)

	reports.Get("/", ctrl.GetReports)
	reports.Get("/export", ctrl.ExportReports)
	reports.Get("/:childId", ctrl.GetReportsByChild)

	reports.Post("/", team, ctrl.CreateReport)
	reports.Put("/:id", team, ctrl.UpdateReport)
	reports.Delete("/:id", team, ctrl.DeleteReport)
}
