package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	childModel "kindergarten_backend/internals/features/school/children/model"
)

// MemoryChildRepository backs tests. SetClass is meant to be plugged into
// the class repository's OnSetChildClass hook.
type MemoryChildRepository struct {
	mu       sync.Mutex
	children map[uuid.UUID]childModel.ChildModel
}

func NewMemoryChildRepository(seed ...childModel.ChildModel) *MemoryChildRepository {
	r := &MemoryChildRepository{children: map[uuid.UUID]childModel.ChildModel{}}
	for _, m := range seed {
		m := m
		_ = r.Create(context.Background(), &m)
	}
	return r
}

func cloneChild(m childModel.ChildModel) childModel.ChildModel {
	m.ChildParentIDs = append(pq.StringArray{}, m.ChildParentIDs...)
	if m.ChildClassID != nil {
		id := *m.ChildClassID
		m.ChildClassID = &id
	}
	return m
}

func (r *MemoryChildRepository) List(_ context.Context, f ChildFilter) ([]childModel.ChildModel, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := strings.ToLower(strings.TrimSpace(f.Name))
	var all []childModel.ChildModel
	for _, c := range r.children {
		if name != "" && !strings.Contains(strings.ToLower(c.ChildName), name) {
			continue
		}
		if f.ClassID != nil && (c.ChildClassID == nil || *c.ChildClassID != *f.ClassID) {
			continue
		}
		if f.ParentID != "" && !c.HasParent(f.ParentID) {
			continue
		}
		all = append(all, cloneChild(c))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ChildName < all[j].ChildName })
	total := int64(len(all))
	if f.Offset >= len(all) {
		return []childModel.ChildModel{}, total, nil
	}
	all = all[f.Offset:]
	if f.Limit > 0 && f.Limit < len(all) {
		all = all[:f.Limit]
	}
	return all, total, nil
}

func (r *MemoryChildRepository) FindByID(_ context.Context, id uuid.UUID) (*childModel.ChildModel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.children[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c = cloneChild(c)
	return &c, nil
}

func (r *MemoryChildRepository) FindByIDs(_ context.Context, ids []string) ([]childModel.ChildModel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []childModel.ChildModel{}
	for _, raw := range ids {
		id, err := uuid.Parse(raw)
		if err != nil {
			continue
		}
		if c, ok := r.children[id]; ok {
			out = append(out, cloneChild(c))
		}
	}
	return out, nil
}

func (r *MemoryChildRepository) Create(_ context.Context, m *childModel.ChildModel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.ChildID == uuid.Nil {
		m.ChildID = uuid.New()
	}
	now := time.Now()
	m.ChildCreatedAt, m.ChildUpdatedAt = now, now
	r.children[m.ChildID] = cloneChild(*m)
	return nil
}

func (r *MemoryChildRepository) Save(_ context.Context, m *childModel.ChildModel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev, ok := r.children[m.ChildID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	next := cloneChild(*m)
	next.ChildClassID = prev.ChildClassID
	next.ChildCreatedAt = prev.ChildCreatedAt
	next.ChildUpdatedAt = time.Now()
	r.children[m.ChildID] = next
	return nil
}

func (r *MemoryChildRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.children[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.children, id)
	return nil
}

func (r *MemoryChildRepository) Count(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.children)), nil
}

func (r *MemoryChildRepository) IDsByParent(_ context.Context, parentID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []string{}
	for id, c := range r.children {
		if c.HasParent(parentID) {
			out = append(out, id.String())
		}
	}
	sort.Strings(out)
	return out, nil
}

// SetClass mirrors children.class_id writes done by the class repository.
func (r *MemoryChildRepository) SetClass(childIDs []string, classID *uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, raw := range childIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			continue
		}
		c, ok := r.children[id]
		if !ok {
			continue
		}
		if classID == nil {
			c.ChildClassID = nil
		} else {
			cid := *classID
			c.ChildClassID = &cid
		}
		r.children[id] = c
	}
}
