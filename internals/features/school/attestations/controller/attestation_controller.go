package controller

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"kindergarten_backend/internals/features/school/attestations/service"
	childModel "kindergarten_backend/internals/features/school/children/model"
	classModel "kindergarten_backend/internals/features/school/classes/model"
	helper "kindergarten_backend/internals/helpers"
	"kindergarten_backend/internals/helpers/dbtime"
	"kindergarten_backend/internals/logger"
)

type ChildFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*childModel.ChildModel, error)
}

type ClassFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*classModel.ClassModel, error)
}

type AttestationController struct {
	Children ChildFinder
	Classes  ClassFinder
	Signer   *service.Signer
	Now      func() time.Time
}

func NewAttestationController(children ChildFinder, classes ClassFinder, signer *service.Signer) *AttestationController {
	return &AttestationController{Children: children, Classes: classes, Signer: signer, Now: dbtime.Now}
}

func (ac *AttestationController) findChild(ctx context.Context, raw string) (*childModel.ChildModel, error) {
	id, err := helper.ParseUUIDParam(raw, "child id")
	if err != nil {
		return nil, err
	}
	m, err := ac.Children.FindByID(ctx, id)
	if err != nil {
		if helper.IsNotFound(err) {
			return nil, fiber.NewError(fiber.StatusNotFound, "Child not found")
		}
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch child")
	}
	return m, nil
}

func (ac *AttestationController) build(c *fiber.Ctx) (*service.Attestation, error) {
	child, err := ac.findChild(c.UserContext(), c.Params("childId"))
	if err != nil {
		return nil, err
	}
	if helper.IsParentRequest(c) {
		uid, err := helper.GetUserIDFromToken(c)
		if err != nil {
			return nil, err
		}
		if !child.HasParent(uid.String()) {
			return nil, fiber.NewError(fiber.StatusForbidden, "You may only access your own children")
		}
	}

	parents := []string(child.ChildParentIDs)
	if parents == nil {
		parents = []string{}
	}
	a := &service.Attestation{
		ChildID:         child.ChildID,
		ChildName:       child.ChildName,
		ClassID:         child.ChildClassID,
		ParentIDs:       parents,
		InscriptionDate: dbtime.FormatDate(child.ChildCreatedAt),
		Message:         service.MessageFor(child.ChildName),
	}
	if child.ChildClassID != nil && ac.Classes != nil {
		if cls, err := ac.Classes.FindByID(c.UserContext(), *child.ChildClassID); err == nil {
			a.ClassName = cls.ClassName
		}
	}
	return a, nil
}

// GET /api/attestation/:childId
func (ac *AttestationController) GetAttestation(c *fiber.Ctx) error {
	a, err := ac.build(c)
	if err != nil {
		return err
	}
	return helper.JsonOK(c, a.Message, a)
}

// GET /api/attestation/:childId/pdf
func (ac *AttestationController) GetAttestationPDF(c *fiber.Ctx) error {
	a, err := ac.build(c)
	if err != nil {
		return err
	}
	pdf, err := service.RenderPDF(*a, ac.Signer.VerifyURL(a.ChildID, a.InscriptionDate), ac.Now())
	if err != nil {
		logger.FromCtx(c).Error("render attestation", zap.String("child_id", a.ChildID.String()), zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to render attestation")
	}
	c.Attachment("attestation-" + helper.Slugify(a.ChildName, 60) + ".pdf")
	c.Set(fiber.HeaderContentType, "application/pdf")
	return c.Send(pdf)
}

// GET /api/public/attestations/verify?child=&sig=
func (ac *AttestationController) VerifyAttestation(c *fiber.Ctx) error {
	sig := strings.TrimSpace(c.Query("sig"))
	if sig == "" {
		return fiber.NewError(fiber.StatusBadRequest, "sig is required")
	}
	child, err := ac.findChild(c.UserContext(), c.Query("child"))
	if err != nil {
		if fe, ok := err.(*fiber.Error); ok && fe.Code == fiber.StatusNotFound {
			return helper.JsonOK(c, "Attestation invalid", fiber.Map{"valid": false})
		}
		return err
	}
	date := dbtime.FormatDate(child.ChildCreatedAt)
	if !ac.Signer.Verify(child.ChildID, date, sig) {
		return helper.JsonOK(c, "Attestation invalid", fiber.Map{"valid": false})
	}
	return helper.JsonOK(c, "Attestation valid", fiber.Map{
		"valid":           true,
		"childName":       child.ChildName,
		"inscriptionDate": date,
	})
}
