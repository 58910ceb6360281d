package dto

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	reportModel "kindergarten_backend/internals/features/school/reports/model"
	"kindergarten_backend/internals/helpers/dbtime"
)

type CreateReportRequest struct {
	ChildID string `json:"childId" validate:"required,uuid"`
	Date    string `json:"date" validate:"required"`
	Type    string `json:"type" validate:"required,oneof=daily weekly monthly"`
	Content string `json:"content" validate:"required,max=10000"`
}

func (r *CreateReportRequest) Normalize() {
	r.ChildID = strings.TrimSpace(r.ChildID)
	r.Date = strings.TrimSpace(r.Date)
	r.Type = strings.ToLower(strings.TrimSpace(r.Type))
	r.Content = strings.TrimSpace(r.Content)
}

func (r *CreateReportRequest) ToModel(author *uuid.UUID) (*reportModel.ReportModel, error) {
	date, err := dbtime.ParseDate(r.Date)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return &reportModel.ReportModel{
		ReportID:       uuid.New(),
		ReportChildID:  uuid.MustParse(r.ChildID),
		ReportDate:     date,
		ReportType:     r.Type,
		ReportContent:  r.Content,
		ReportAuthorID: author,
	}, nil
}

type UpdateReportRequest struct {
	Date    *string `json:"date,omitempty"`
	Type    *string `json:"type,omitempty" validate:"omitempty,oneof=daily weekly monthly"`
	Content *string `json:"content,omitempty" validate:"omitempty,min=1,max=10000"`
}

func (r *UpdateReportRequest) Normalize() {
	if r.Date != nil {
		v := strings.TrimSpace(*r.Date)
		r.Date = &v
	}
	if r.Type != nil {
		v := strings.ToLower(strings.TrimSpace(*r.Type))
		r.Type = &v
	}
	if r.Content != nil {
		v := strings.TrimSpace(*r.Content)
		r.Content = &v
	}
}

func (r *UpdateReportRequest) IsEmpty() bool {
	return r.Date == nil && r.Type == nil && r.Content == nil
}

func (r *UpdateReportRequest) Apply(m *reportModel.ReportModel) error {
	if r.Date != nil {
		d, err := dbtime.ParseDate(*r.Date)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		m.ReportDate = d
	}
	if r.Type != nil {
		m.ReportType = *r.Type
	}
	if r.Content != nil {
		m.ReportContent = *r.Content
	}
	return nil
}

type ReportResponse struct {
	ID        uuid.UUID  `json:"id"`
	ChildID   uuid.UUID  `json:"childId"`
	Date      string     `json:"date"`
	Type      string     `json:"type"`
	Content   string     `json:"content"`
	AuthorID  *uuid.UUID `json:"authorId,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func FromModel(m *reportModel.ReportModel) ReportResponse {
	return ReportResponse{
		ID:        m.ReportID,
		ChildID:   m.ReportChildID,
		Date:      dbtime.FormatDate(m.ReportDate),
		Type:      m.ReportType,
		Content:   m.ReportContent,
		AuthorID:  m.ReportAuthorID,
		CreatedAt: m.ReportCreatedAt,
		UpdatedAt: m.ReportUpdatedAt,
	}
}

func FromModels(list []reportModel.ReportModel) []ReportResponse {
	out := make([]ReportResponse, 0, len(list))
	for i := range list {
		out = append(out, FromModel(&list[i]))
	}
	return out
}
