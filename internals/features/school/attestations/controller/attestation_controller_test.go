package controller

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kindergarten_backend/internals/constants"
	"kindergarten_backend/internals/features/school/attestations/service"
	childModel "kindergarten_backend/internals/features/school/children/model"
	childRepo "kindergarten_backend/internals/features/school/children/repository"
	classModel "kindergarten_backend/internals/features/school/classes/model"
	classRepo "kindergarten_backend/internals/features/school/classes/repository"
	helper "kindergarten_backend/internals/helpers"
	"kindergarten_backend/internals/helpers/dbtime"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type fixture struct {
	app    *fiber.App
	child  childModel.ChildModel
	parent uuid.UUID
	signer *service.Signer
}

func setup(t *testing.T) *fixture {
	t.Helper()
	classes := classRepo.NewMemoryClassRepository()
	cls := &classModel.ClassModel{ClassName: "Petite Section"}
	require.NoError(t, classes.Create(context.Background(), cls))

	f := &fixture{parent: uuid.New(), signer: service.NewSigner("test-secret", "http://kg.test")}
	f.child = childModel.ChildModel{ChildName: "Lina", ChildAge: 4, ChildClassID: &cls.ClassID, ChildParentIDs: pq.StringArray{f.parent.String()}}
	children := childRepo.NewMemoryChildRepository()
	require.NoError(t, children.Create(context.Background(), &f.child))

	ctrl := NewAttestationController(children, classes, f.signer)
	ctrl.Now = func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }

	f.app = fiber.New(fiber.Config{ErrorHandler: func(c *fiber.Ctx, err error) error {
		code, msg := helper.FromFiberError(err)
		return helper.JsonError(c, code, msg)
	}})
	f.app.Get("/api/public/attestations/verify", ctrl.VerifyAttestation)
	f.app.Use(func(c *fiber.Ctx) error {
		role := c.Get("X-Test-Role", constants.RoleStaff)
		uid := uuid.NewString()
		if role == constants.RoleParent {
			uid = c.Get("X-Test-User", f.parent.String())
		}
		c.Locals(helper.LocUserID, uid)
		c.Locals(helper.LocUserRole, role)
		return c.Next()
	})
	f.app.Get("/api/attestation/:childId", ctrl.GetAttestation)
	f.app.Get("/api/attestation/:childId/pdf", ctrl.GetAttestationPDF)
	return f
}

func (f *fixture) get(t *testing.T, path string, headers map[string]string) (int, envelope, []byte) {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	var env envelope
	_ = json.Unmarshal(raw, &env)
	return resp.StatusCode, env, raw
}

func TestGetAttestation(t *testing.T) {
	f := setup(t)
	code, env, _ := f.get(t, "/api/attestation/"+f.child.ChildID.String(), nil)
	require.Equal(t, fiber.StatusOK, code)

	var a service.Attestation
	require.NoError(t, json.Unmarshal(env.Data, &a))
	assert.Equal(t, "Lina", a.ChildName)
	assert.Equal(t, "Attestation d'inscription pour l'enfant Lina", a.Message)
	assert.Equal(t, "Petite Section", a.ClassName)
	assert.Equal(t, []string{f.parent.String()}, a.ParentIDs)
	assert.Equal(t, dbtime.FormatDate(f.child.ChildCreatedAt), a.InscriptionDate)

	code, env, _ = f.get(t, "/api/attestation/"+uuid.NewString(), nil)
	assert.Equal(t, fiber.StatusNotFound, code)
	assert.Equal(t, "Child not found", env.Message)

	code, _, _ = f.get(t, "/api/attestation/not-a-uuid", nil)
	assert.Equal(t, fiber.StatusBadRequest, code)
}

func TestAttestationParentScope(t *testing.T) {
	f := setup(t)
	path := "/api/attestation/" + f.child.ChildID.String()

	code, _, _ := f.get(t, path, map[string]string{"X-Test-Role": constants.RoleParent})
	assert.Equal(t, fiber.StatusOK, code)

	code, _, _ = f.get(t, path, map[string]string{"X-Test-Role": constants.RoleParent, "X-Test-User": uuid.NewString()})
	assert.Equal(t, fiber.StatusForbidden, code)
}

func TestAttestationPDFAndVerify(t *testing.T) {
	f := setup(t)
	code, _, raw := f.get(t, "/api/attestation/"+f.child.ChildID.String()+"/pdf", nil)
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "%PDF-", string(raw[:5]))

	verify := f.signer.VerifyURL(f.child.ChildID, dbtime.FormatDate(f.child.ChildCreatedAt))
	u, err := url.Parse(verify)
	require.NoError(t, err)

	code, env, _ := f.get(t, u.RequestURI(), nil)
	require.Equal(t, fiber.StatusOK, code)
	var out struct {
		Valid     bool   `json:"valid"`
		ChildName string `json:"childName"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &out))
	assert.True(t, out.Valid)
	assert.Equal(t, "Lina", out.ChildName)

	code, env, _ = f.get(t, "/api/public/attestations/verify?child="+f.child.ChildID.String()+"&sig=abcd", nil)
	require.Equal(t, fiber.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &out))
	assert.False(t, out.Valid)

	code, env, _ = f.get(t, "/api/public/attestations/verify?child="+uuid.NewString()+"&sig=abcd", nil)
	require.Equal(t, fiber.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &out))
	assert.False(t, out.Valid)

	code, _, _ = f.get(t, "/api/public/attestations/verify?child="+f.child.ChildID.String(), nil)
	assert.Equal(t, fiber.StatusBadRequest, code)
}
