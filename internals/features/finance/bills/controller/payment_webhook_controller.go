package controller

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"kindergarten_backend/internals/features/finance/bills/service"
	helper "kindergarten_backend/internals/helpers"
	"kindergarten_backend/internals/logger"
	"kindergarten_backend/internals/realtime"
)

type midtransNotif struct {
	TransactionStatus string `json:"transaction_status"` // capture, settlement, pending, deny, cancel, expire, ...
	StatusCode        string `json:"status_code"`
	SignatureKey      string `json:"signature_key"`
	OrderID           string `json:"order_id"`
	GrossAmount       string `json:"gross_amount"`
	PaymentType       string `json:"payment_type"`
	FraudStatus       string `json:"fraud_status"`
	TransactionID     string `json:"transaction_id"`
}

// POST /api/payments/midtrans/notification (publik, diverifikasi signature)
func (bc *BillController) MidtransNotification(c *fiber.Ctx) error {
	var notif midtransNotif
	if err := c.BodyParser(&notif); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid payload")
	}
	if bc.Gateway == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "Payment gateway not configured")
	}
	if !service.VerifySignature(notif.OrderID, notif.StatusCode, notif.GrossAmount, bc.Gateway.ServerKey(), notif.SignatureKey) {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid signature")
	}

	log := logger.FromCtx(c).With(zap.String("order_id", notif.OrderID), zap.String("transaction_status", notif.TransactionStatus))
	m, err := bc.Repo.FindByOrderID(c.UserContext(), notif.OrderID)
	if err != nil {
		if helper.IsNotFound(err) {
			// balas 200 supaya Midtrans tidak retry terus
			log.Warn("midtrans notification for unknown order")
			return c.JSON(fiber.Map{"status": "ignored", "reason": "bill not found"})
		}
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch bill")
	}

	status, paid := service.MapMidtransStatus(m.BillStatus, notif.TransactionStatus, notif.FraudStatus)
	m.BillStatus = status
	if paid && m.BillPaidAt == nil {
		now := bc.Now().In(time.UTC)
		m.BillPaidAt = &now
	}
	if err := bc.Repo.Save(c.UserContext(), m); err != nil {
		log.Error("midtrans notification save", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to update bill")
	}
	log.Info("midtrans notification applied", zap.String("bill_status", status))
	bc.publish(realtime.ActionUpdated, m)

	return c.JSON(fiber.Map{
		"status":             "ok",
		"bill_id":            m.BillID,
		"bill_status":        m.BillStatus,
		"transaction_status": notif.TransactionStatus,
	})
}
