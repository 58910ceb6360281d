package dto

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/lib/pq"

	childModel "kindergarten_backend/internals/features/school/children/model"
	helper "kindergarten_backend/internals/helpers"
)

// IDList menerima array JSON atau string "a,b,c".
type IDList []string

func (l *IDList) UnmarshalJSON(b []byte) error {
	var arr []string
	if err := json.Unmarshal(b, &arr); err == nil {
		*l = helper.ParseIDList(arr)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return errors.New("parentIds must be an array or a comma-separated string")
	}
	*l = helper.ParseIDList(s)
	return nil
}

// formIDs gabungkan nilai multipart yang berulang (parentIds=a&parentIds=b) dan CSV.
func formIDs(values []string) IDList {
	return helper.ParseIDList(strings.Join(values, ","))
}

func formAge(raw string) (*int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "age must be a number")
	}
	return &n, nil
}

/* ===================== CREATE ===================== */

type CreateChildRequest struct {
	Name              string  `json:"name" validate:"required,max=120"`
	Age               *int    `json:"age" validate:"required,gte=0,lte=12"`
	ClassID           string  `json:"classId" validate:"required,uuid"`
	ParentIDs         IDList  `json:"parentIds"`
	Image             *string `json:"image,omitempty"`
	Health            *string `json:"health,omitempty" validate:"omitempty,max=2000"`
	HealthRecordImage *string `json:"healthRecordImage,omitempty"`
	GuardianAuthImage *string `json:"guardianAuthImage,omitempty"`
}

// FromForm mengisi request dari multipart; file upload ditangani controller.
func (r *CreateChildRequest) FromForm(form map[string][]string) error {
	first := func(k string) string {
		if v := form[k]; len(v) > 0 {
			return v[0]
		}
		return ""
	}
	age, err := formAge(first("age"))
	if err != nil {
		return err
	}
	r.Name = first("name")
	r.Age = age
	r.ClassID = first("classId")
	r.ParentIDs = formIDs(form["parentIds"])
	for key, dst := range map[string]**string{
		"image":             &r.Image,
		"health":            &r.Health,
		"healthRecordImage": &r.HealthRecordImage,
		"guardianAuthImage": &r.GuardianAuthImage,
	} {
		if v, ok := form[key]; ok && len(v) > 0 {
			s := v[0]
			*dst = &s
		}
	}
	return nil
}

func (r *CreateChildRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.ClassID = strings.TrimSpace(r.ClassID)
	r.ParentIDs = helper.ParseIDList([]string(r.ParentIDs))
	r.Health = trimPtr(r.Health)
}

func (r *CreateChildRequest) ToModel() *childModel.ChildModel {
	return &childModel.ChildModel{
		ChildID:        uuid.New(),
		ChildName:      r.Name,
		ChildAge:       *r.Age,
		ChildParentIDs: pq.StringArray(r.ParentIDs),
		ChildHealth:    r.Health,
	}
}

/* ===================== UPDATE ===================== */

// UpdateChildRequest: nil = tidak diubah; classId "" = keluar dari kelas.
type UpdateChildRequest struct {
	Name              *string `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	Age               *int    `json:"age,omitempty" validate:"omitempty,gte=0,lte=12"`
	ClassID           *string `json:"classId,omitempty" validate:"omitempty,uuid"`
	ParentIDs         *IDList `json:"parentIds,omitempty"`
	Image             *string `json:"image,omitempty"`
	Health            *string `json:"health,omitempty" validate:"omitempty,max=2000"`
	HealthRecordImage *string `json:"healthRecordImage,omitempty"`
	GuardianAuthImage *string `json:"guardianAuthImage,omitempty"`

	// diisi controller kalau ada file upload
	Uploaded map[string]bool `json:"-"`
}

func (r *UpdateChildRequest) FromForm(form map[string][]string) error {
	get := func(k string) *string {
		if v, ok := form[k]; ok && len(v) > 0 {
			s := v[0]
			return &s
		}
		return nil
	}
	if raw := get("age"); raw != nil {
		age, err := formAge(*raw)
		if err != nil {
			return err
		}
		r.Age = age
	}
	r.Name = get("name")
	r.ClassID = get("classId")
	if v, ok := form["parentIds"]; ok {
		ids := formIDs(v)
		r.ParentIDs = &ids
	}
	r.Image = get("image")
	r.Health = get("health")
	r.HealthRecordImage = get("healthRecordImage")
	r.GuardianAuthImage = get("guardianAuthImage")
	return nil
}

func (r *UpdateChildRequest) Normalize() {
	r.Name = trimPtr(r.Name)
	r.ClassID = trimPtr(r.ClassID)
	r.Health = trimPtr(r.Health)
	if r.ParentIDs != nil {
		ids := IDList(helper.ParseIDList([]string(*r.ParentIDs)))
		r.ParentIDs = &ids
	}
}

// ValidationTarget: classId "" valid (lepas kelas), jadi divalidasi tanpa itu.
func (r *UpdateChildRequest) ValidationTarget() *UpdateChildRequest {
	cp := *r
	if cp.ClassID != nil && *cp.ClassID == "" {
		cp.ClassID = nil
	}
	return &cp
}

func (r *UpdateChildRequest) IsEmpty() bool {
	return r.Name == nil && r.Age == nil && r.ClassID == nil && r.ParentIDs == nil &&
		r.Image == nil && r.Health == nil && r.HealthRecordImage == nil && r.GuardianAuthImage == nil &&
		len(r.Uploaded) == 0
}

// Apply mengubah field non-kelas; class_id diurus lewat sinkronisasi kelas.
func (r *UpdateChildRequest) Apply(m *childModel.ChildModel) {
	if r.Name != nil {
		m.ChildName = *r.Name
	}
	if r.Age != nil {
		m.ChildAge = *r.Age
	}
	if r.ParentIDs != nil {
		m.ChildParentIDs = pq.StringArray(*r.ParentIDs)
	}
	if r.Health != nil {
		m.ChildHealth = r.Health
	}
}

/* ===================== RESPONSE ===================== */

type ChildResponse struct {
	ID                uuid.UUID  `json:"id"`
	Name              string     `json:"name"`
	Age               int        `json:"age"`
	ClassID           *uuid.UUID `json:"classId"`
	ParentIDs         []string   `json:"parentIds"`
	Image             *string    `json:"image"`
	Health            *string    `json:"health"`
	HealthRecordImage *string    `json:"healthRecordImage"`
	GuardianAuthImage *string    `json:"guardianAuthImage"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

func FromModel(m *childModel.ChildModel) ChildResponse {
	parents := []string(m.ChildParentIDs)
	if parents == nil {
		parents = []string{}
	}
	return ChildResponse{
		ID:                m.ChildID,
		Name:              m.ChildName,
		Age:               m.ChildAge,
		ClassID:           m.ChildClassID,
		ParentIDs:         parents,
		Image:             m.ChildImage,
		Health:            m.ChildHealth,
		HealthRecordImage: m.ChildHealthRecordImage,
		GuardianAuthImage: m.ChildGuardianAuthImage,
		CreatedAt:         m.ChildCreatedAt,
		UpdatedAt:         m.ChildUpdatedAt,
	}
}

func FromModels(list []childModel.ChildModel) []ChildResponse {
	out := make([]ChildResponse, 0, len(list))
	for i := range list {
		out = append(out, FromModel(&list[i]))
	}
	return out
}

func trimPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	return &v
}
