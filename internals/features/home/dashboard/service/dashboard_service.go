package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"kindergarten_backend/internals/constants"
	billRepo "kindergarten_backend/internals/features/finance/bills/repository"
	"kindergarten_backend/internals/features/home/dashboard/dto"
	"kindergarten_backend/internals/helpers/cache"
	"kindergarten_backend/internals/logger"
	"kindergarten_backend/internals/realtime"
)

const (
	StatsCacheKey = "dashboard:stats"
	StatsTTL      = 60 * time.Second
)

type Counter interface {
	Count(ctx context.Context) (int64, error)
}

type RoleCounter interface {
	CountByRole(ctx context.Context, role string) (int64, error)
}

type BillStatser interface {
	Stats(ctx context.Context) (billRepo.BillStats, error)
}

type Sources struct {
	Children      Counter
	Classes       Counter
	Users         RoleCounter
	Bills         BillStatser
	Notifications Counter
	Messages      Counter
}

type DashboardService struct {
	src   Sources
	cache cache.Cache
	now   func() time.Time
}

func NewDashboardService(src Sources, c cache.Cache) *DashboardService {
	if c == nil {
		c = cache.NewMemory()
	}
	return &DashboardService{src: src, cache: c, now: time.Now}
}

// Stats: dari cache kalau ada, kalau tidak hitung ulang lalu simpan 60 detik.
func (s *DashboardService) Stats(ctx context.Context) (*dto.StatsResponse, error) {
	var cached dto.StatsResponse
	if ok, err := s.cache.Get(ctx, StatsCacheKey, &cached); err == nil && ok {
		return &cached, nil
	} else if err != nil {
		logger.FromContext(ctx).Warn("dashboard cache read failed", zap.Error(err))
	}

	out, err := s.compute(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, StatsCacheKey, out, StatsTTL); err != nil {
		logger.FromContext(ctx).Warn("dashboard cache write failed", zap.Error(err))
	}
	return out, nil
}

func (s *DashboardService) compute(ctx context.Context) (*dto.StatsResponse, error) {
	out := &dto.StatsResponse{GeneratedAt: s.now().UTC()}
	g, ctx := errgroup.WithContext(ctx)

	count := func(dst *int64, c Counter) {
		g.Go(func() (err error) {
			*dst, err = c.Count(ctx)
			return err
		})
	}
	count(&out.Children, s.src.Children)
	count(&out.Classes, s.src.Classes)
	count(&out.Notifications, s.src.Notifications)
	count(&out.Messages, s.src.Messages)
	g.Go(func() (err error) {
		out.Parents, err = s.src.Users.CountByRole(ctx, constants.RoleParent)
		return err
	})
	g.Go(func() (err error) {
		out.Teachers, err = s.src.Users.CountByRole(ctx, constants.RoleTeacher)
		return err
	})
	g.Go(func() error {
		st, err := s.src.Bills.Stats(ctx)
		if err != nil {
			return err
		}
		out.BillsPaid, out.BillsUnpaid, out.UnpaidAmount = st.Paid, st.Unpaid, st.UnpaidAmount
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *DashboardService) Invalidate(ctx context.Context) error {
	return s.cache.Delete(ctx, StatsCacheKey)
}

// Publish makes the service a realtime.Publisher so writes on counted topics drop the cache.
func (s *DashboardService) Publish(ev realtime.Event) {
	switch ev.Topic {
	case constants.TopicBills, constants.TopicChildren, constants.TopicUsers, constants.TopicClasses,
		constants.TopicNotifications, constants.TopicMessages:
	default:
		return
	}
	// update hanya mengubah angka untuk status bill dan role/aktif user
	if ev.Action == realtime.ActionUpdated && ev.Topic != constants.TopicBills && ev.Topic != constants.TopicUsers {
		return
	}
	if err := s.Invalidate(context.Background()); err != nil {
		logger.GetLogger().Warn("dashboard cache invalidate failed", zap.String("topic", ev.Topic), zap.Error(err))
	}
}
