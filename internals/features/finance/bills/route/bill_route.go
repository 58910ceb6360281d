package route

import (
	"github.com/gofiber/fiber/v2"

	"kindergarten_backend/internals/constants"
	"kindergarten_backend/internals/features/finance/bills/controller"
	authMiddleware "kindergarten_backend/internals/middlewares/auth"
)

func BillRoutes(app fiber.Router, ctrl *controller.BillController, requireAuth fiber.Handler) {
	bills := app.Group("/api/bills", requireAuth)
	staff := authMiddleware.OnlyRoles(constants.RoleErrorStaff("bills"), constants.StaffAndAbove...)

	bills.Get("/", ctrl.GetBills)
	bills.Get("/export", ctrl.ExportBills)
	bills.Get("/:id", ctrl.GetBill)
	bills.Post("/:id/pay", ctrl.PayBill)

	bills.Post("/", staff, ctrl.CreateBill)
	bills.Put("/:id", staff, ctrl.UpdateBill)
	bills.Delete("/:id", staff, ctrl.DeleteBill)
}

// PaymentRoutes: webhook publik, tanpa auth.
func PaymentRoutes(app fiber.Router, ctrl *controller.BillController) {
	app.Post("/api/payments/midtrans/notification", ctrl.MidtransNotification)
}
