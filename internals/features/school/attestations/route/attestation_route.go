package route

import (
	"github.com/gofiber/fiber/v2"

	"kindergarten_backend/internals/features/school/attestations/controller"
)

func AttestationRoutes(app fiber.Router, ctrl *controller.AttestationController, requireAuth fiber.Handler) {
	att := app.Group("/api/attestation", requireAuth)
	att.Get("/:childId", ctrl.GetAttestation)
	att.Get("/:childId/pdf", ctrl.GetAttestationPDF)

	app.Get("/api/public/attestations/verify", ctrl.VerifyAttestation)
}
