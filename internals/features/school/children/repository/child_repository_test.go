package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"kindergarten_backend/internals/databases/dbtest"
	childModel "kindergarten_backend/internals/features/school/children/model"
)

func names(list []childModel.ChildModel) []string {
	out := make([]string, 0, len(list))
	for _, c := range list {
		out = append(out, c.ChildName)
	}
	return out
}

func TestMemoryChildList(t *testing.T) {
	ctx := context.Background()
	classID := uuid.New()
	repo := NewMemoryChildRepository(
		childModel.ChildModel{ChildName: "Citra", ChildAge: 5, ChildParentIDs: pq.StringArray{"p1"}},
		childModel.ChildModel{ChildName: "Amira", ChildAge: 4, ChildParentIDs: pq.StringArray{"p1", "p2"}},
		childModel.ChildModel{ChildName: "Bagas", ChildAge: 6, ChildParentIDs: pq.StringArray{"p3"}},
	)
	ids, err := repo.IDsByParent(ctx, "p3")
	require.NoError(t, err)
	require.Len(t, ids, 1)
	repo.SetClass(ids, &classID)

	tests := []struct {
		name   string
		filter ChildFilter
		want   []string
		total  int64
	}{
		{"all sorted by name", ChildFilter{}, []string{"Amira", "Bagas", "Citra"}, 3},
		{"name is case-insensitive", ChildFilter{Name: " AMI "}, []string{"Amira"}, 1},
		{"parent", ChildFilter{ParentID: "p1"}, []string{"Amira", "Citra"}, 2},
		{"class", ChildFilter{ClassID: &classID}, []string{"Bagas"}, 1},
		{"page", ChildFilter{Offset: 1, Limit: 1}, []string{"Bagas"}, 3},
		{"offset past end", ChildFilter{Offset: 9}, []string{}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, total, err := repo.List(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(got))
			assert.Equal(t, tt.total, total)
		})
	}
}

func TestMemoryChildSaveKeepsClass(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryChildRepository()
	m := &childModel.ChildModel{ChildName: "Amira", ChildAge: 4, ChildParentIDs: pq.StringArray{"p1"}}
	require.NoError(t, repo.Create(ctx, m))

	classID := uuid.New()
	repo.SetClass([]string{m.ChildID.String()}, &classID)

	m.ChildName = "Amira Z"
	m.ChildClassID = nil
	require.NoError(t, repo.Save(ctx, m))

	got, err := repo.FindByID(ctx, m.ChildID)
	require.NoError(t, err)
	assert.Equal(t, "Amira Z", got.ChildName)
	require.NotNil(t, got.ChildClassID)
	assert.Equal(t, classID, *got.ChildClassID)

	// hasil FindByID tidak boleh berbagi slice dengan store
	got.ChildParentIDs[0] = "hacked"
	again, _ := repo.FindByID(ctx, m.ChildID)
	assert.Equal(t, "p1", again.ChildParentIDs[0])
}

func TestMemoryChildNotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryChildRepository()
	_, err := repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.ErrorIs(t, repo.Save(ctx, &childModel.ChildModel{ChildID: uuid.New()}), gorm.ErrRecordNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, uuid.New()), gorm.ErrRecordNotFound)

	found, err := repo.FindByIDs(ctx, []string{"not-a-uuid", uuid.NewString()})
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestGormChildListSQL(t *testing.T) {
	rec := dbtest.DryRun(t)
	repo := NewChildRepository(rec.DB)
	classID := uuid.New()

	_, _, _ = repo.List(context.Background(), ChildFilter{Name: "ami", ClassID: &classID, ParentID: "p1", Limit: 10})
	sql := rec.Joined()
	assert.Contains(t, sql, `FROM "children"`)
	assert.Contains(t, sql, "child_name ILIKE '%ami%'")
	assert.Contains(t, sql, "child_class_id = '"+classID.String()+"'")
	assert.Contains(t, sql, "'p1' = ANY(child_parent_ids)")
	assert.Contains(t, sql, `"children"."child_deleted_at" IS NULL`)
}

func TestGormChildSaveSkipsClassColumn(t *testing.T) {
	rec := dbtest.DryRun(t)
	repo := NewChildRepository(rec.DB)
	classID := uuid.New()

	m := &childModel.ChildModel{ChildID: uuid.New(), ChildName: "Amira", ChildAge: 4, ChildClassID: &classID}
	_ = repo.Save(context.Background(), m)
	sql := rec.Last()
	assert.Contains(t, sql, `UPDATE "children" SET`)
	assert.Contains(t, sql, "'Amira'")
	assert.NotContains(t, sql, "child_class_id")
	assert.NotContains(t, sql, "child_created_at")
}

func TestGormChildQueriesSQL(t *testing.T) {
	rec := dbtest.DryRun(t)
	repo := NewChildRepository(rec.DB)
	ctx := context.Background()

	_, _ = repo.IDsByParent(ctx, "p9")
	sql := rec.Last()
	assert.Contains(t, sql, "SELECT child_id::text FROM")
	assert.Contains(t, sql, "'p9' = ANY(child_parent_ids)")

	a, b := uuid.NewString(), uuid.NewString()
	_, _ = repo.FindByIDs(ctx, []string{a, b})
	assert.Contains(t, rec.Last(), "child_id::text IN ('"+a+"','"+b+"')")

	id := uuid.New()
	err := repo.Delete(ctx, id)
	// dry run tidak menyentuh baris apa pun
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	sql = rec.Last()
	assert.Contains(t, sql, `UPDATE "children" SET "child_deleted_at"=`)
	assert.Contains(t, sql, "child_id = '"+id.String()+"'")

	_ = repo.Create(ctx, &childModel.ChildModel{ChildName: "Bagas", ChildAge: 5, ChildParentIDs: pq.StringArray{"p1"}})
	sql = rec.Last()
	assert.Contains(t, sql, `INSERT INTO "children"`)
	assert.Contains(t, sql, `{"p1"}`)
}
