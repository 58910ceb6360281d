package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kindergarten_backend/internals/constants"
	childDTO "kindergarten_backend/internals/features/school/children/dto"
	childModel "kindergarten_backend/internals/features/school/children/model"
	childRepo "kindergarten_backend/internals/features/school/children/repository"
	classDTO "kindergarten_backend/internals/features/school/classes/dto"
	classRepo "kindergarten_backend/internals/features/school/classes/repository"
	classService "kindergarten_backend/internals/features/school/classes/service"
	uModel "kindergarten_backend/internals/features/users/user/model"
	userRepo "kindergarten_backend/internals/features/users/user/repository"
	helper "kindergarten_backend/internals/helpers"
	"kindergarten_backend/internals/helpers/export"
	"kindergarten_backend/internals/helpers/storage"
	authMiddleware "kindergarten_backend/internals/middlewares/auth"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type fixture struct {
	app      *fiber.App
	children *childRepo.MemoryChildRepository
	classes  *classService.ClassService
	uploads  string
	parent   uModel.UserModel
	classA   uuid.UUID
	classB   uuid.UUID
	saveErr  error
}

// failingSaves makes Save return *err while it is set.
type failingSaves struct {
	*childRepo.MemoryChildRepository
	err *error
}

func (r failingSaves) Save(ctx context.Context, m *childModel.ChildModel) error {
	if *r.err != nil {
		return *r.err
	}
	return r.MemoryChildRepository.Save(ctx, m)
}

func setup(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{uploads: t.TempDir()}
	f.parent = uModel.UserModel{ID: uuid.New(), Name: "Ibu Rina", Email: "rina@test.io", Role: constants.RoleParent, IsActive: true}

	f.children = childRepo.NewMemoryChildRepository()
	cRepo := classRepo.NewMemoryClassRepository()
	cRepo.OnSetChildClass = f.children.SetClass
	f.classes = classService.NewClassService(cRepo, nil)
	users := userRepo.NewMemoryUserRepository(f.parent)

	for i, name := range []string{"Kelas A", "Kelas B"} {
		m, err := f.classes.Create(context.Background(), classDTO.CreateClassRequest{Name: name})
		require.NoError(t, err)
		if i == 0 {
			f.classA = m.ClassID
		} else {
			f.classB = m.ClassID
		}
	}

	blob := storage.NewLocalStorage(f.uploads, "http://api.test/uploads")
	ctrl := NewChildController(failingSaves{f.children, &f.saveErr}, f.classes, users, blob, nil)

	f.app = fiber.New(fiber.Config{ErrorHandler: func(c *fiber.Ctx, err error) error {
		code, msg := helper.FromFiberError(err)
		return helper.JsonError(c, code, msg)
	}})
	// header X-Test-Role mensimulasikan auth middleware
	f.app.Use(func(c *fiber.Ctx) error {
		role := c.Get("X-Test-Role", constants.RoleAdmin)
		uid := uuid.NewString()
		if role == constants.RoleParent {
			uid = f.parent.ID.String()
		}
		c.Locals(helper.LocUserID, uid)
		c.Locals(helper.LocUserRole, role)
		return c.Next()
	})
	team := authMiddleware.OnlyRoles(constants.RoleErrorTeam("children management"), constants.TeamRoles...)
	staff := authMiddleware.OnlyRoles(constants.RoleErrorStaff("children management"), constants.StaffAndAbove...)
	f.app.Get("/api/children", ctrl.GetChildren)
	f.app.Get("/api/children/export", team, ctrl.ExportChildren)
	f.app.Post("/api/children/import", staff, ctrl.ImportChildren)
	f.app.Get("/api/children/:id", ctrl.GetChild)
	f.app.Get("/api/children/:id/parents", ctrl.GetChildParents)
	f.app.Post("/api/children", team, ctrl.CreateChild)
	f.app.Put("/api/children/:id", team, ctrl.UpdateChild)
	f.app.Delete("/api/children/:id", staff, ctrl.DeleteChild)
	return f
}

func (f *fixture) do(t *testing.T, method, path, body, role string) (int, envelope) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	return f.send(t, req, role)
}

func (f *fixture) send(t *testing.T, req *http.Request, role string) (int, envelope) {
	t.Helper()
	if role != "" {
		req.Header.Set("X-Test-Role", role)
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	var env envelope
	_ = json.Unmarshal(raw, &env)
	return resp.StatusCode, env
}

func (f *fixture) create(t *testing.T, body string) childDTO.ChildResponse {
	t.Helper()
	code, env := f.do(t, "POST", "/api/children", body, "")
	require.Equal(t, fiber.StatusCreated, code, env.Message)
	var out childDTO.ChildResponse
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func (f *fixture) classChildren(t *testing.T, id uuid.UUID) []string {
	t.Helper()
	m, err := f.classes.Get(context.Background(), id)
	require.NoError(t, err)
	return m.ClassChildrenIDs
}

func multipartBody(t *testing.T, fields map[string]string, fileField, fileName string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if fileField != "" {
		fw, err := w.CreateFormFile(fileField, fileName)
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8))))
	return buf.Bytes()
}

func TestCreateChildEnrollsInClass(t *testing.T) {
	f := setup(t)
	p2 := uuid.NewString()
	child := f.create(t, `{"name":" Amina ","age":4,"classId":"`+f.classA.String()+`","parentIds":" `+f.parent.ID.String()+` , ,`+p2+`"}`)

	assert.Equal(t, "Amina", child.Name)
	assert.Equal(t, []string{f.parent.ID.String(), p2}, child.ParentIDs)
	require.NotNil(t, child.ClassID)
	assert.Equal(t, f.classA, *child.ClassID)
	assert.Equal(t, []string{child.ID.String()}, f.classChildren(t, f.classA))
}

func TestCreateChildErrors(t *testing.T) {
	f := setup(t)
	tests := []struct {
		name string
		body string
		role string
		want int
		msg  string
	}{
		{name: "missing age", body: `{"name":"A","classId":"` + f.classA.String() + `"}`, want: fiber.StatusUnprocessableEntity},
		{name: "missing class", body: `{"name":"A","age":3}`, want: fiber.StatusUnprocessableEntity},
		{name: "unknown class", body: `{"name":"A","age":3,"classId":"` + uuid.NewString() + `"}`, want: fiber.StatusNotFound, msg: "Class not found"},
		{name: "bad parentIds", body: `{"name":"A","age":3,"classId":"` + f.classA.String() + `","parentIds":5}`, want: fiber.StatusBadRequest},
		{name: "parent forbidden", body: `{"name":"A","age":3,"classId":"` + f.classA.String() + `"}`, role: constants.RoleParent, want: fiber.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := f.do(t, "POST", "/api/children", tt.body, tt.role)
			assert.Equal(t, tt.want, code)
			if tt.msg != "" {
				assert.Equal(t, tt.msg, env.Message)
			}
		})
	}
	n, _ := f.children.Count(context.Background())
	assert.Zero(t, n)
}

func TestParentScoping(t *testing.T) {
	f := setup(t)
	mine := f.create(t, `{"name":"Mine","age":4,"classId":"`+f.classA.String()+`","parentIds":["`+f.parent.ID.String()+`"]}`)
	other := f.create(t, `{"name":"Other","age":5,"classId":"`+f.classA.String()+`"}`)

	code, env := f.do(t, "GET", "/api/children?parentId="+uuid.NewString(), "", constants.RoleParent)
	require.Equal(t, fiber.StatusOK, code)
	var list []childDTO.ChildResponse
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, mine.ID, list[0].ID)

	code, _ = f.do(t, "GET", "/api/children/"+other.ID.String(), "", constants.RoleParent)
	assert.Equal(t, fiber.StatusForbidden, code)

	code, env = f.do(t, "GET", "/api/children/"+mine.ID.String()+"/parents", "", constants.RoleParent)
	require.Equal(t, fiber.StatusOK, code)
	assert.Contains(t, string(env.Data), "rina@test.io")

	code, env = f.do(t, "GET", "/api/children?classId="+f.classA.String(), "", "")
	require.Equal(t, fiber.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list, 2)

	code, env = f.do(t, "GET", "/api/children/"+uuid.NewString(), "", "")
	assert.Equal(t, fiber.StatusNotFound, code)
	assert.Equal(t, "Child not found", env.Message)
}

func TestUpdateChild(t *testing.T) {
	f := setup(t)
	child := f.create(t, `{"name":"Budi","age":4,"classId":"`+f.classA.String()+`"}`)
	path := "/api/children/" + child.ID.String()

	code, env := f.do(t, "PUT", path, `{}`, "")
	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Equal(t, "No data to update", env.Message)

	code, env = f.do(t, "PUT", path, `{"age":5,"classId":"`+f.classB.String()+`"}`, constants.RoleTeacher)
	require.Equal(t, fiber.StatusOK, code, env.Message)
	var updated childDTO.ChildResponse
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, 5, updated.Age)
	assert.Equal(t, "Budi", updated.Name)
	assert.Empty(t, f.classChildren(t, f.classA))
	assert.Equal(t, []string{child.ID.String()}, f.classChildren(t, f.classB))

	code, _ = f.do(t, "PUT", path, `{"classId":""}`, "")
	require.Equal(t, fiber.StatusOK, code)
	assert.Empty(t, f.classChildren(t, f.classB))
	stored, err := f.children.FindByID(context.Background(), child.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.ChildClassID)

	code, _ = f.do(t, "PUT", path, `{"classId":"`+uuid.NewString()+`"}`, "")
	assert.Equal(t, fiber.StatusNotFound, code)
}

func TestUpdateChildSaveFailureKeepsClass(t *testing.T) {
	f := setup(t)
	child := f.create(t, `{"name":"Budi","age":4,"classId":"`+f.classA.String()+`"}`)
	f.saveErr = errors.New("connection reset")

	code, _ := f.do(t, "PUT", "/api/children/"+child.ID.String(), `{"name":"Budi S","classId":"`+f.classB.String()+`"}`, "")
	assert.Equal(t, fiber.StatusInternalServerError, code)

	assert.Equal(t, []string{child.ID.String()}, f.classChildren(t, f.classA))
	assert.Empty(t, f.classChildren(t, f.classB))
	stored, err := f.children.FindByID(context.Background(), child.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ChildClassID)
	assert.Equal(t, f.classA, *stored.ChildClassID)
	assert.Equal(t, "Budi", stored.ChildName)
}

func TestMultipartCreateAndDelete(t *testing.T) {
	f := setup(t)
	body, ct := multipartBody(t, map[string]string{
		"name":      "Citra",
		"age":       "3",
		"classId":   f.classA.String(),
		"parentIds": f.parent.ID.String(),
	}, "image", "citra.png", pngBytes(t))
	req := httptest.NewRequest("POST", "/api/children", body)
	req.Header.Set("Content-Type", ct)
	code, env := f.send(t, req, "")
	require.Equal(t, fiber.StatusCreated, code, env.Message)

	var child childDTO.ChildResponse
	require.NoError(t, json.Unmarshal(env.Data, &child))
	require.NotNil(t, child.Image)
	assert.True(t, strings.HasPrefix(*child.Image, "http://api.test/uploads/children/"), *child.Image)

	stored := filepath.Join(f.uploads, strings.TrimPrefix(*child.Image, "http://api.test/uploads/"))
	_, err := os.Stat(stored)
	require.NoError(t, err)

	body, ct = multipartBody(t, map[string]string{
		"name":    "Dodi",
		"age":     "3",
		"classId": f.classA.String(),
	}, "guardianAuthImage", "bad.gif", []byte("GIF89a"))
	req = httptest.NewRequest("POST", "/api/children", body)
	req.Header.Set("Content-Type", ct)
	code, env = f.send(t, req, "")
	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Equal(t, "Only .jpeg, .jpg and .png files are allowed", env.Message)
	assert.Equal(t, []string{child.ID.String()}, f.classChildren(t, f.classA))

	code, _ = f.do(t, "DELETE", "/api/children/"+child.ID.String(), "", constants.RoleTeacher)
	assert.Equal(t, fiber.StatusForbidden, code)
	code, _ = f.do(t, "DELETE", "/api/children/"+child.ID.String(), "", constants.RoleStaff)
	require.Equal(t, fiber.StatusOK, code)

	assert.Empty(t, f.classChildren(t, f.classA))
	_, err = os.Stat(stored)
	assert.True(t, os.IsNotExist(err))
}

func TestImportAndExport(t *testing.T) {
	f := setup(t)
	data, err := export.WriteXLSX(export.Table{
		Title:   "Children",
		Columns: []export.Column{{Header: "name"}, {Header: "age"}, {Header: "classId"}, {Header: "parentIds"}},
		Rows: [][]string{
			{"Dewi", "4", f.classA.String(), f.parent.ID.String()},
			{"", "4", f.classA.String(), ""},
			{"Eko", "lima", f.classA.String(), ""},
			{"Fajar", "5", uuid.NewString(), ""},
		},
	})
	require.NoError(t, err)

	body, ct := multipartBody(t, nil, "file", "children.xlsx", data)
	req := httptest.NewRequest("POST", "/api/children/import", body)
	req.Header.Set("Content-Type", ct)
	code, env := f.send(t, req, "")
	require.Equal(t, fiber.StatusOK, code, env.Message)

	var res struct {
		Imported int              `json:"imported"`
		Errors   []ImportRowError `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, 1, res.Imported)
	require.Len(t, res.Errors, 3)
	assert.Equal(t, 3, res.Errors[0].Row)
	assert.Equal(t, "age must be a number", res.Errors[1].Error)
	assert.Equal(t, "Class not found", res.Errors[2].Error)
	assert.Len(t, f.classChildren(t, f.classA), 1)

	req = httptest.NewRequest("GET", "/api/children/export?format=pdf", nil)
	code, _ = f.send(t, req, "")
	assert.Equal(t, fiber.StatusOK, code)

	req = httptest.NewRequest("GET", "/api/children/export", nil)
	code, _ = f.send(t, req, constants.RoleParent)
	assert.Equal(t, fiber.StatusForbidden, code)
}
