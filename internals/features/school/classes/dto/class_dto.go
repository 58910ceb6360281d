package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	classModel "kindergarten_backend/internals/features/school/classes/model"
	helper "kindergarten_backend/internals/helpers"
)

type CreateClassRequest struct {
	Name        string   `json:"name" validate:"required,min=1,max=120"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=2000"`
	Teacher     *string  `json:"teacher,omitempty" validate:"omitempty,max=120"`
	ChildrenIDs []string `json:"childrenIds,omitempty" validate:"omitempty,dive,uuid"`
	TeacherIDs  []string `json:"teacherIds,omitempty" validate:"omitempty,dive,required"`
}

func (r *CreateClassRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Description = trimPtr(r.Description)
	r.Teacher = trimPtr(r.Teacher)
	r.ChildrenIDs = helper.ParseIDList(r.ChildrenIDs)
	r.TeacherIDs = helper.ParseIDList(r.TeacherIDs)
	// teacherIds default ke [teacher]
	if len(r.TeacherIDs) == 0 && r.Teacher != nil && *r.Teacher != "" {
		r.TeacherIDs = []string{*r.Teacher}
	}
}

func (r *CreateClassRequest) ToModel() *classModel.ClassModel {
	return &classModel.ClassModel{
		ClassName:        r.Name,
		ClassDescription: r.Description,
		ClassTeacher:     r.Teacher,
		ClassChildrenIDs: pq.StringArray(nonNil(r.ChildrenIDs)),
		ClassTeacherIDs:  pq.StringArray(nonNil(r.TeacherIDs)),
	}
}

// UpdateClassRequest: nil = tidak diubah.
type UpdateClassRequest struct {
	Name        *string   `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	Description *string   `json:"description,omitempty" validate:"omitempty,max=2000"`
	Teacher     *string   `json:"teacher,omitempty" validate:"omitempty,max=120"`
	ChildrenIDs *[]string `json:"childrenIds,omitempty" validate:"omitempty,dive,uuid"`
	TeacherIDs  *[]string `json:"teacherIds,omitempty"`
}

func (r *UpdateClassRequest) Normalize() {
	r.Name = trimPtr(r.Name)
	r.Description = trimPtr(r.Description)
	r.Teacher = trimPtr(r.Teacher)
	if r.ChildrenIDs != nil {
		v := nonNil(helper.ParseIDList(*r.ChildrenIDs))
		r.ChildrenIDs = &v
	}
	if r.TeacherIDs != nil {
		v := nonNil(helper.ParseIDList(*r.TeacherIDs))
		r.TeacherIDs = &v
	} else if r.Teacher != nil && *r.Teacher != "" {
		v := []string{*r.Teacher}
		r.TeacherIDs = &v
	}
}

func (r *UpdateClassRequest) IsEmpty() bool {
	return r.Name == nil && r.Description == nil && r.Teacher == nil && r.ChildrenIDs == nil && r.TeacherIDs == nil
}

// Apply returns a copy of m with the patch applied.
func (r *UpdateClassRequest) Apply(m classModel.ClassModel) classModel.ClassModel {
	if r.Name != nil {
		m.ClassName = *r.Name
	}
	if r.Description != nil {
		m.ClassDescription = r.Description
	}
	if r.Teacher != nil {
		m.ClassTeacher = r.Teacher
	}
	if r.ChildrenIDs != nil {
		m.ClassChildrenIDs = append(pq.StringArray{}, (*r.ChildrenIDs)...)
	}
	if r.TeacherIDs != nil {
		m.ClassTeacherIDs = append(pq.StringArray{}, (*r.TeacherIDs)...)
	}
	return m
}

type ClassResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Teacher     string    `json:"teacher"`
	ChildrenIDs []string  `json:"childrenIds"`
	TeacherIDs  []string  `json:"teacherIds"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func FromModel(m *classModel.ClassModel) ClassResponse {
	return ClassResponse{
		ID:          m.ClassID,
		Name:        m.ClassName,
		Description: deref(m.ClassDescription),
		Teacher:     deref(m.ClassTeacher),
		ChildrenIDs: nonNil(m.ClassChildrenIDs),
		TeacherIDs:  nonNil(m.ClassTeacherIDs),
		CreatedAt:   m.ClassCreatedAt,
		UpdatedAt:   m.ClassUpdatedAt,
	}
}

func FromModels(list []classModel.ClassModel) []ClassResponse {
	out := make([]ClassResponse, 0, len(list))
	for i := range list {
		out = append(out, FromModel(&list[i]))
	}
	return out
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func trimPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	return &v
}
