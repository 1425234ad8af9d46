package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/GTDGit/bakery_api/internal/models"
	"github.com/GTDGit/bakery_api/internal/repository"
)

type fakeSettings struct {
	s   models.StoreSettings
	err error
}

func (f fakeSettings) Get(context.Context) (models.StoreSettings, error) { return f.s, f.err }

type mockBatchWriter struct{ mock.Mock }

func (m *mockBatchWriter) CreateBatch(ctx context.Context, products []models.Product, job *models.ImportJob, event *models.OutboxEvent) error {
	return m.Called(ctx, products, job, event).Error(0)
}

type mockDeliverer struct{ mock.Mock }

func (m *mockDeliverer) DeliverByID(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockOutbox struct{ mock.Mock }

func (m *mockOutbox) ClaimDue(ctx context.Context, limit int, lease time.Duration) ([]models.OutboxEvent, error) {
	args := m.Called(ctx, limit, lease)
	return args.Get(0).([]models.OutboxEvent), args.Error(1)
}

func (m *mockOutbox) ClaimByID(ctx context.Context, id string, lease time.Duration) (*models.OutboxEvent, error) {
	args := m.Called(ctx, id, lease)
	ev, _ := args.Get(0).(*models.OutboxEvent)
	return ev, args.Error(1)
}

func (m *mockOutbox) MarkDone(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockOutbox) ScheduleRetry(ctx context.Context, id string, next time.Time, lastErr string) error {
	return m.Called(ctx, id, next, lastErr).Error(0)
}

func (m *mockOutbox) MarkFailed(ctx context.Context, id string, lastErr string) error {
	return m.Called(ctx, id, lastErr).Error(0)
}

type mockFanout struct{ mock.Mock }

func (m *mockFanout) FanOutToAllUsers(ctx context.Context, eventID string, n models.Notification) (int64, error) {
	args := m.Called(ctx, eventID, n)
	return args.Get(0).(int64), args.Error(1)
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) Publish(ctx context.Context, topic, key string, event any) error {
	return m.Called(ctx, topic, key, event).Error(0)
}

func (m *mockPublisher) Close() error { return nil }

type mockOrders struct{ mock.Mock }

func (m *mockOrders) Create(ctx context.Context, o *models.Order) error {
	return m.Called(ctx, o).Error(0)
}

func (m *mockOrders) GetByID(ctx context.Context, id string) (*models.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*models.Order)
	return o, args.Error(1)
}

func (m *mockOrders) GetByRef(ctx context.Context, ref string) (*models.Order, error) {
	args := m.Called(ctx, ref)
	o, _ := args.Get(0).(*models.Order)
	return o, args.Error(1)
}

func (m *mockOrders) List(ctx context.Context, f repository.OrderFilter) ([]models.Order, int, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]models.Order), args.Int(1), args.Error(2)
}

func (m *mockOrders) ListByUser(ctx context.Context, userID string, page, limit int) ([]models.Order, int, error) {
	args := m.Called(ctx, userID, page, limit)
	return args.Get(0).([]models.Order), args.Int(1), args.Error(2)
}

func (m *mockOrders) UpdateStatus(ctx context.Context, id string, from, to models.OrderStatus, steps models.TrackingSteps) error {
	return m.Called(ctx, id, from, to, steps).Error(0)
}

func (m *mockOrders) UpdateTracking(ctx context.Context, id string, steps models.TrackingSteps) error {
	return m.Called(ctx, id, steps).Error(0)
}

func (m *mockOrders) CountByStatus(ctx context.Context) (map[models.OrderStatus]int, error) {
	args := m.Called(ctx)
	counts, _ := args.Get(0).(map[models.OrderStatus]int)
	return counts, args.Error(1)
}

type fakeProducts map[string]*models.Product

func (f fakeProducts) GetByIDs(_ context.Context, ids []string) (map[string]*models.Product, error) {
	out := map[string]*models.Product{}
	for _, id := range ids {
		if p, ok := f[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

type mockPromos struct{ mock.Mock }

func (m *mockPromos) GetByCode(ctx context.Context, code string) (*models.PromoCode, error) {
	args := m.Called(ctx, code)
	p, _ := args.Get(0).(*models.PromoCode)
	return p, args.Error(1)
}

type recordingNotifications struct {
	created []*models.Notification
}

func (r *recordingNotifications) Create(_ context.Context, n *models.Notification) error {
	r.created = append(r.created, n)
	return nil
}

type recordingNotifier struct {
	ordersCreated  int
	statusChanges  int
	importsJob     string
	importsCount   int
	customRequests int
}

func (r *recordingNotifier) NotifyOrderCreated(*models.Order)       { r.ordersCreated++ }
func (r *recordingNotifier) NotifyOrderStatusChanged(*models.Order) { r.statusChanges++ }
func (r *recordingNotifier) NotifyProductsImported(jobID string, count int) {
	r.importsJob, r.importsCount = jobID, count
}
func (r *recordingNotifier) NotifyCustomRequestCreated(*models.CustomRequest) { r.customRequests++ }
