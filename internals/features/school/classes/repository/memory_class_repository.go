package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	classModel "kindergarten_backend/internals/features/school/classes/model"
)

// MemoryClassRepository keeps classes and a child→class map in memory.
// Transaction snapshots both and restores them when fn fails.
type MemoryClassRepository struct {
	mu         *sync.Mutex
	classes    map[uuid.UUID]classModel.ClassModel
	childClass map[string]uuid.UUID

	// OnSetChildClass mirrors class_id writes into a child store.
	OnSetChildClass func(childIDs []string, classID *uuid.UUID)
	// FailSave makes Save fail for that class id (rollback tests).
	FailSave map[uuid.UUID]error
}

func NewMemoryClassRepository() *MemoryClassRepository {
	return &MemoryClassRepository{
		mu:         &sync.Mutex{},
		classes:    map[uuid.UUID]classModel.ClassModel{},
		childClass: map[string]uuid.UUID{},
		FailSave:   map[uuid.UUID]error{},
	}
}

func cloneClass(m classModel.ClassModel) classModel.ClassModel {
	m.ClassChildrenIDs = append(pq.StringArray{}, m.ClassChildrenIDs...)
	m.ClassTeacherIDs = append(pq.StringArray{}, m.ClassTeacherIDs...)
	return m
}

func (r *MemoryClassRepository) Transaction(ctx context.Context, fn func(tx ClassRepository) error) error {
	r.mu.Lock()
	classes := make(map[uuid.UUID]classModel.ClassModel, len(r.classes))
	for k, v := range r.classes {
		classes[k] = cloneClass(v)
	}
	childClass := make(map[string]uuid.UUID, len(r.childClass))
	for k, v := range r.childClass {
		childClass[k] = v
	}
	r.mu.Unlock()

	if err := fn(r); err != nil {
		r.mu.Lock()
		touched := make([]string, 0, len(r.childClass))
		for child := range r.childClass {
			if _, ok := childClass[child]; !ok {
				touched = append(touched, child)
			}
		}
		r.classes, r.childClass = classes, childClass
		r.mu.Unlock()
		if r.OnSetChildClass != nil {
			// kembalikan class_id anak ke kondisi awal
			r.OnSetChildClass(touched, nil)
			for child, class := range childClass {
				c := class
				r.OnSetChildClass([]string{child}, &c)
			}
		}
		return err
	}
	return nil
}

func (r *MemoryClassRepository) List(context.Context) ([]classModel.ClassModel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]classModel.ClassModel, 0, len(r.classes))
	for _, c := range r.classes {
		out = append(out, cloneClass(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClassName < out[j].ClassName })
	return out, nil
}

func (r *MemoryClassRepository) FindByID(_ context.Context, id uuid.UUID) (*classModel.ClassModel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.classes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c = cloneClass(c)
	return &c, nil
}

func (r *MemoryClassRepository) Create(_ context.Context, m *classModel.ClassModel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.ClassID == uuid.Nil {
		m.ClassID = uuid.New()
	}
	now := time.Now()
	m.ClassCreatedAt, m.ClassUpdatedAt = now, now
	r.classes[m.ClassID] = cloneClass(*m)
	return nil
}

func (r *MemoryClassRepository) Save(_ context.Context, m *classModel.ClassModel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.FailSave[m.ClassID]; err != nil {
		return err
	}
	m.ClassUpdatedAt = time.Now()
	r.classes[m.ClassID] = cloneClass(*m)
	return nil
}

func (r *MemoryClassRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.classes[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.classes, id)
	return nil
}

func (r *MemoryClassRepository) Count(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.classes)), nil
}

func (r *MemoryClassRepository) filter(keep func(classModel.ClassModel) bool) []classModel.ClassModel {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []classModel.ClassModel{}
	for _, c := range r.classes {
		if keep(c) {
			out = append(out, cloneClass(c))
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}

func (r *MemoryClassRepository) FindByChild(_ context.Context, childID string) ([]classModel.ClassModel, error) {
	return r.filter(func(c classModel.ClassModel) bool { return contains(c.ClassChildrenIDs, childID) }), nil
}

func (r *MemoryClassRepository) FindByTeacher(_ context.Context, teacherID string) ([]classModel.ClassModel, error) {
	return r.filter(func(c classModel.ClassModel) bool { return contains(c.ClassTeacherIDs, teacherID) }), nil
}

func (r *MemoryClassRepository) ChildIDsInClass(_ context.Context, classID uuid.UUID) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []string{}
	for child, class := range r.childClass {
		if class == classID {
			out = append(out, child)
		}
	}
	sort.Strings(out)
	return out, nil
}

// ChildClass returns the class a child is assigned to.
func (r *MemoryClassRepository) ChildClass(childID string) (uuid.UUID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.childClass[childID]
	return id, ok
}

func (r *MemoryClassRepository) SetChildClass(_ context.Context, childIDs []string, classID *uuid.UUID) error {
	r.mu.Lock()
	for _, id := range childIDs {
		if classID == nil {
			delete(r.childClass, id)
		} else {
			r.childClass[id] = *classID
		}
	}
	r.mu.Unlock()
	if r.OnSetChildClass != nil {
		r.OnSetChildClass(childIDs, classID)
	}
	return nil
}

func (r *MemoryClassRepository) ClearClass(ctx context.Context, classID uuid.UUID) error {
	ids, _ := r.ChildIDsInClass(ctx, classID)
	return r.SetChildClass(ctx, ids, nil)
}
