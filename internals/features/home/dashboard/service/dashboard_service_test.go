package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kindergarten_backend/internals/constants"
	billModel "kindergarten_backend/internals/features/finance/bills/model"
	billRepo "kindergarten_backend/internals/features/finance/bills/repository"
	msgModel "kindergarten_backend/internals/features/notifications/messages/model"
	msgRepo "kindergarten_backend/internals/features/notifications/messages/repository"
	notifRepo "kindergarten_backend/internals/features/notifications/notifications/repository"
	childModel "kindergarten_backend/internals/features/school/children/model"
	childRepo "kindergarten_backend/internals/features/school/children/repository"
	classModel "kindergarten_backend/internals/features/school/classes/model"
	classRepo "kindergarten_backend/internals/features/school/classes/repository"
	uModel "kindergarten_backend/internals/features/users/user/model"
	userRepo "kindergarten_backend/internals/features/users/user/repository"
	"kindergarten_backend/internals/helpers/cache"
	"kindergarten_backend/internals/realtime"
)

type fixture struct {
	svc      *DashboardService
	children *childRepo.MemoryChildRepository
	bills    *billRepo.MemoryBillRepository
}

func setup(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	users := userRepo.NewMemoryUserRepository(
		uModel.UserModel{ID: uuid.New(), Email: "p1@test.io", Role: constants.RoleParent, IsActive: true},
		uModel.UserModel{ID: uuid.New(), Email: "p2@test.io", Role: constants.RoleParent, IsActive: true},
		uModel.UserModel{ID: uuid.New(), Email: "t1@test.io", Role: constants.RoleTeacher, IsActive: true},
		uModel.UserModel{ID: uuid.New(), Email: "a1@test.io", Role: constants.RoleAdmin, IsActive: true},
	)
	classes := classRepo.NewMemoryClassRepository()
	require.NoError(t, classes.Create(ctx, &classModel.ClassModel{ClassName: "A"}))
	children := childRepo.NewMemoryChildRepository(
		childModel.ChildModel{ChildName: "Lina", ChildAge: 4, ChildParentIDs: pq.StringArray{}},
	)
	bills := billRepo.NewMemoryBillRepository(
		billModel.BillModel{BillStatus: constants.BillStatusPaid, BillAmount: 100, BillDueDate: time.Now()},
		billModel.BillModel{BillStatus: constants.BillStatusUnpaid, BillAmount: 250, BillDueDate: time.Now()},
		billModel.BillModel{BillStatus: constants.BillStatusUnpaid, BillAmount: 50, BillDueDate: time.Now()},
	)
	msgs := msgRepo.NewMemoryMessageRepository()
	require.NoError(t, msgs.Create(ctx, &msgModel.MessageModel{MessageRole: constants.RoleParent, MessageRecipient: constants.RecipientAll, MessageBody: "hi"}))

	svc := NewDashboardService(Sources{
		Children:      children,
		Classes:       classes,
		Users:         users,
		Bills:         bills,
		Notifications: notifRepo.NewMemoryNotificationRepository(),
		Messages:      msgs,
	}, cache.NewMemory())
	return &fixture{svc: svc, children: children, bills: bills}
}

func TestStats(t *testing.T) {
	f := setup(t)
	st, err := f.svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), st.Children)
	assert.Equal(t, int64(2), st.Parents)
	assert.Equal(t, int64(1), st.Teachers)
	assert.Equal(t, int64(1), st.Classes)
	assert.Equal(t, int64(1), st.BillsPaid)
	assert.Equal(t, int64(2), st.BillsUnpaid)
	assert.InDelta(t, 300.0, st.UnpaidAmount, 0.001)
	assert.Equal(t, int64(0), st.Notifications)
	assert.Equal(t, int64(1), st.Messages)
}

func TestStatsCachedUntilInvalidated(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	_, err := f.svc.Stats(ctx)
	require.NoError(t, err)

	require.NoError(t, f.children.Create(ctx, &childModel.ChildModel{ChildName: "Omar", ChildAge: 5}))
	st, err := f.svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), st.Children, "served from cache")

	f.svc.Publish(realtime.Event{Topic: constants.TopicReports, Action: realtime.ActionCreated})
	st, _ = f.svc.Stats(ctx)
	assert.Equal(t, int64(1), st.Children, "reports do not invalidate")

	f.svc.Publish(realtime.Event{Topic: constants.TopicChildren, Action: realtime.ActionCreated})
	st, _ = f.svc.Stats(ctx)
	assert.Equal(t, int64(2), st.Children)
}

func TestBillUpdateInvalidates(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	_, err := f.svc.Stats(ctx)
	require.NoError(t, err)

	list, _, err := f.bills.List(ctx, billRepo.BillFilter{Status: constants.BillStatusUnpaid})
	require.NoError(t, err)
	b := list[0]
	b.BillStatus = constants.BillStatusPaid
	require.NoError(t, f.bills.Save(ctx, &b))

	f.svc.Publish(realtime.Event{Topic: constants.TopicBills, Action: realtime.ActionUpdated, ID: b.BillID.String()})
	st, err := f.svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), st.BillsPaid)
	assert.Equal(t, int64(1), st.BillsUnpaid)
}

type failingCounter struct{}

func (failingCounter) Count(context.Context) (int64, error) { return 0, errors.New("db down") }

func TestStatsError(t *testing.T) {
	f := setup(t)
	f.svc.src.Classes = failingCounter{}
	_, err := f.svc.Stats(context.Background())
	assert.Error(t, err)
}
