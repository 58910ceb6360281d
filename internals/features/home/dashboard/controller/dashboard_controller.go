package controller

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"kindergarten_backend/internals/features/home/dashboard/service"
	helper "kindergarten_backend/internals/helpers"
	"kindergarten_backend/internals/logger"
)

type DashboardController struct {
	Svc *service.DashboardService
}

func NewDashboardController(svc *service.DashboardService) *DashboardController {
	return &DashboardController{Svc: svc}
}

// GET /api/dashboard/stats
func (dc *DashboardController) GetStats(c *fiber.Ctx) error {
	stats, err := dc.Svc.Stats(c.UserContext())
	if err != nil {
		logger.FromCtx(c).Error("dashboard stats", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to compute stats")
	}
	return helper.JsonOK(c, "ok", stats)
}
