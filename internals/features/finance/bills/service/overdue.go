package service

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	billRepo "kindergarten_backend/internals/features/finance/bills/repository"
	"kindergarten_backend/internals/helpers/dbtime"
	"kindergarten_backend/internals/logger"
	"kindergarten_backend/internals/metrics"
)

const OverdueSweepSpec = "@hourly"

// RunOverdueSweep logs unpaid bills past their due date and updates the
// bills_overdue gauge.
func RunOverdueSweep(ctx context.Context, repo billRepo.BillRepository, now time.Time) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	list, err := repo.ListOverdue(ctx, dbtime.StartOfDay(now))
	if err != nil {
		logger.GetLogger().Error("[BILLS] overdue sweep failed", zap.Error(err))
		return 0, err
	}
	metrics.BillsOverdue.Set(float64(len(list)))
	for _, b := range list {
		logger.GetLogger().Warn("[BILLS] overdue",
			zap.String("bill_id", b.BillID.String()),
			zap.String("child_id", b.BillChildID.String()),
			zap.String("due_date", dbtime.FormatDate(b.BillDueDate)),
			zap.Float64("amount", b.BillAmount),
		)
	}
	return len(list), nil
}

func RegisterOverdueSweep(c *cron.Cron, repo billRepo.BillRepository) (cron.EntryID, error) {
	return c.AddFunc(OverdueSweepSpec, func() {
		_, _ = RunOverdueSweep(context.Background(), repo, dbtime.Now())
	})
}
