package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kindergarten_backend/internals/databases/dbtest"
	notifModel "kindergarten_backend/internals/features/notifications/notifications/model"
)

func TestMemoryNotificationList(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryNotificationRepository()
	base := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	for i, title := range []string{"satu", "dua", "tiga"} {
		require.NoError(t, repo.Create(ctx, &notifModel.NotificationModel{
			NotificationTitle:  title,
			NotificationBody:   "isi",
			NotificationSentAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	titles := func(offset, limit int) []string {
		list, total, err := repo.List(ctx, offset, limit)
		require.NoError(t, err)
		assert.EqualValues(t, 3, total)
		out := []string{}
		for _, n := range list {
			out = append(out, n.NotificationTitle)
		}
		return out
	}
	assert.Equal(t, []string{"tiga", "dua", "satu"}, titles(0, 0))
	assert.Equal(t, []string{"dua"}, titles(1, 1))
	assert.Equal(t, []string{}, titles(5, 10))

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
}

func TestGormNotificationSQL(t *testing.T) {
	rec := dbtest.DryRun(t)
	repo := NewNotificationRepository(rec.DB)
	ctx := context.Background()

	_, _ = repo.Count(ctx)
	assert.Contains(t, rec.Last(), `SELECT count(*) FROM "notifications"`)

	_ = repo.Create(ctx, &notifModel.NotificationModel{
		NotificationTitle:  "Libur",
		NotificationBody:   "Sekolah libur besok",
		NotificationTokens: []string{"tok-1"},
		NotificationSentAt: time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC),
	})
	sql := rec.Last()
	assert.Contains(t, sql, `INSERT INTO "notifications"`)
	assert.Contains(t, sql, "'Libur'")
	assert.Contains(t, sql, `{"tok-1"}`)
}
