package controller

import (
	"github.com/gofiber/fiber/v2"

	classDTO "kindergarten_backend/internals/features/school/classes/dto"
	"kindergarten_backend/internals/features/school/classes/service"
	helper "kindergarten_backend/internals/helpers"
)

type ClassController struct {
	Svc *service.ClassService
}

func NewClassController(svc *service.ClassService) *ClassController {
	return &ClassController{Svc: svc}
}

// GET /api/classes
func (cc *ClassController) GetClasses(c *fiber.Ctx) error {
	list, err := cc.Svc.List(c.UserContext())
	if err != nil {
		return err
	}
	return helper.JsonList(c, "ok", classDTO.FromModels(list), nil)
}

// GET /api/classes/:id
func (cc *ClassController) GetClass(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c.Params("id"), "class id")
	if err != nil {
		return err
	}
	m, err := cc.Svc.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return helper.JsonOK(c, "", classDTO.FromModel(m))
}

// POST /api/classes
func (cc *ClassController) CreateClass(c *fiber.Ctx) error {
	var req classDTO.CreateClassRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	req.Normalize()
	if ok, err := helper.Validate(c, &req); !ok {
		return err
	}
	m, err := cc.Svc.Create(c.UserContext(), req)
	if err != nil {
		return err
	}
	return helper.JsonCreated(c, "Class created", classDTO.FromModel(m))
}

// PUT /api/classes/:id
// childrenIds/teacherIds yang tidak dikirim = tidak berubah.
func (cc *ClassController) UpdateClass(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c.Params("id"), "class id")
	if err != nil {
		return err
	}
	var req classDTO.UpdateClassRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	req.Normalize()
	if req.IsEmpty() {
		return fiber.NewError(fiber.StatusBadRequest, "No data to update")
	}
	if ok, err := helper.Validate(c, &req); !ok {
		return err
	}
	m, err := cc.Svc.Update(c.UserContext(), id, req)
	if err != nil {
		return err
	}
	return helper.JsonUpdated(c, "Class updated", classDTO.FromModel(m))
}

// DELETE /api/classes/:id
func (cc *ClassController) DeleteClass(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c.Params("id"), "class id")
	if err != nil {
		return err
	}
	if err := cc.Svc.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return helper.JsonDeleted(c, "Class deleted", fiber.Map{"id": id})
}
