package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/bakery_api/internal/events"
	"github.com/GTDGit/bakery_api/internal/models"
	"github.com/GTDGit/bakery_api/internal/utils"
)

var fanoutNow = time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

func newFanout() (*FanoutService, *mockOutbox, *mockFanout, *mockPublisher) {
	o, f, p := &mockOutbox{}, &mockFanout{}, &mockPublisher{}
	svc := NewFanoutService(o, f, p)
	svc.now = func() time.Time { return fanoutNow }
	return svc, o, f, p
}

func importedEvent(attempts int) models.OutboxEvent {
	return models.OutboxEvent{
		ID:       "ev-1",
		Kind:     models.OutboxProductsImported,
		Payload:  []byte(`{"importJobId":"job-1","count":2,"productIds":["p1","p2"]}`),
		Status:   models.OutboxPending,
		Attempts: attempts,
	}
}

func TestRetryDelay(t *testing.T) {
	tests := []struct {
		failed int
		want   time.Duration
		ok     bool
	}{
		{0, 30 * time.Second, true},
		{1, time.Minute, true},
		{2, 5 * time.Minute, true},
		{3, 30 * time.Minute, true},
		{4, 2 * time.Hour, true},
		{5, 0, false},
	}
	for _, tt := range tests {
		got, ok := retryDelay(tt.failed)
		assert.Equal(t, tt.want, got, "failed=%d", tt.failed)
		assert.Equal(t, tt.ok, ok, "failed=%d", tt.failed)
	}
}

func TestFanoutService_DeliverWritesNotificationsAndPublishes(t *testing.T) {
	svc, _, f, p := newFanout()
	f.On("FanOutToAllUsers", mock.Anything, "ev-1", mock.MatchedBy(func(n models.Notification) bool {
		return n.Type == models.NotificationNewProducts && n.Message == "2 new products just came out of the oven. Take a look!"
	})).Return(int64(3), nil)
	p.On("Publish", mock.Anything, events.TopicProductsImported, "job-1", mock.AnythingOfType("events.ProductsImported")).Return(nil)

	ev := importedEvent(0)
	require.NoError(t, svc.Deliver(context.Background(), &ev))
	f.AssertExpectations(t)
	p.AssertExpectations(t)
}

func TestFanoutService_DeliverUnknownKind(t *testing.T) {
	svc, _, _, _ := newFanout()
	err := svc.Deliver(context.Background(), &models.OutboxEvent{ID: "ev-1", Kind: "order.refunded"})
	assert.Error(t, err)
}

func TestFanoutService_ProcessDue(t *testing.T) {
	svc, o, f, p := newFanout()
	first := importedEvent(0)
	second := importedEvent(2)
	second.ID = "ev-2"
	last := importedEvent(5)
	last.ID = "ev-3"

	o.On("ClaimDue", mock.Anything, 10, claimLease).Return([]models.OutboxEvent{first, second, last}, nil)
	f.On("FanOutToAllUsers", mock.Anything, "ev-1", mock.Anything).Return(int64(2), nil)
	f.On("FanOutToAllUsers", mock.Anything, "ev-2", mock.Anything).Return(int64(0), errors.New("timeout"))
	f.On("FanOutToAllUsers", mock.Anything, "ev-3", mock.Anything).Return(int64(0), errors.New("timeout"))
	p.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	o.On("MarkDone", mock.Anything, "ev-1").Return(nil)
	o.On("ScheduleRetry", mock.Anything, "ev-2", fanoutNow.Add(5*time.Minute), mock.AnythingOfType("string")).Return(nil)
	o.On("MarkFailed", mock.Anything, "ev-3", mock.AnythingOfType("string")).Return(nil)

	done, err := svc.ProcessDue(context.Background(), 10)

	require.NoError(t, err)
	assert.Equal(t, 1, done)
	o.AssertExpectations(t)
}

func TestFanoutService_PublishFailureIsRetried(t *testing.T) {
	svc, o, f, p := newFanout()
	ev := importedEvent(0)
	o.On("ClaimByID", mock.Anything, "ev-1", claimLease).Return(&ev, nil)
	f.On("FanOutToAllUsers", mock.Anything, "ev-1", mock.Anything).Return(int64(2), nil)
	p.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("breaker open"))
	o.On("ScheduleRetry", mock.Anything, "ev-1", fanoutNow.Add(30*time.Second), mock.AnythingOfType("string")).Return(nil)

	err := svc.DeliverByID(context.Background(), "ev-1")

	assert.Error(t, err)
	o.AssertExpectations(t)
	o.AssertNotCalled(t, "MarkDone", mock.Anything, mock.Anything)
}

func TestFanoutService_DeliverByIDAlreadyClaimed(t *testing.T) {
	svc, o, f, _ := newFanout()
	o.On("ClaimByID", mock.Anything, "ev-1", claimLease).Return(nil, utils.ErrNotFound)

	require.NoError(t, svc.DeliverByID(context.Background(), "ev-1"))
	f.AssertNotCalled(t, "FanOutToAllUsers", mock.Anything, mock.Anything, mock.Anything)
}
