package notification

import (
	"context"
	"errors"
	"testing"

	"vendora/internal/models"

	"github.com/stretchr/testify/mock"
)

type MockOutboxRepository struct {
	mock.Mock
}

func (m *MockOutboxRepository) FetchPending(ctx context.Context, limit int) ([]models.NotificationEvent, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.NotificationEvent), args.Error(1)
}

func (m *MockOutboxRepository) MarkDelivered(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOutboxRepository) MarkFailed(ctx context.Context, id uint, reason string) error {
	args := m.Called(ctx, id, reason)
	return args.Error(0)
}

type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Dispatch(ctx context.Context, event *models.NotificationEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func TestWorker_Drain(t *testing.T) {
	t.Run("delivered events are marked, failed ones requeued", func(t *testing.T) {
		batch := []models.NotificationEvent{
			{ID: 1, EventID: "e1", Type: "deposit.approved", Status: models.OutboxStatusProcessing},
			{ID: 2, EventID: "e2", Type: "points.credited", Status: models.OutboxStatusProcessing},
		}

		repo := new(MockOutboxRepository)
		repo.On("FetchPending", mock.Anything, 50).Return(batch, nil)
		repo.On("MarkDelivered", mock.Anything, uint(1)).Return(nil)
		repo.On("MarkFailed", mock.Anything, uint(2), "webhook down").Return(nil)

		dispatcher := new(MockDispatcher)
		dispatcher.On("Dispatch", mock.Anything, &batch[0]).Return(nil)
		dispatcher.On("Dispatch", mock.Anything, &batch[1]).Return(errors.New("webhook down"))

		w := NewWorker(repo, dispatcher, nil)
		w.drain(context.Background())

		repo.AssertExpectations(t)
		dispatcher.AssertExpectations(t)
	})

	t.Run("one failure does not stop the batch", func(t *testing.T) {
		batch := []models.NotificationEvent{
			{ID: 1, EventID: "e1", Status: models.OutboxStatusProcessing},
			{ID: 2, EventID: "e2", Status: models.OutboxStatusProcessing},
		}

		repo := new(MockOutboxRepository)
		repo.On("FetchPending", mock.Anything, 50).Return(batch, nil)
		repo.On("MarkFailed", mock.Anything, uint(1), "boom").Return(nil)
		repo.On("MarkDelivered", mock.Anything, uint(2)).Return(nil)

		dispatcher := new(MockDispatcher)
		dispatcher.On("Dispatch", mock.Anything, &batch[0]).Return(errors.New("boom"))
		dispatcher.On("Dispatch", mock.Anything, &batch[1]).Return(nil)

		w := NewWorker(repo, dispatcher, nil)
		w.drain(context.Background())

		repo.AssertExpectations(t)
	})

	t.Run("fetch error is swallowed", func(t *testing.T) {
		repo := new(MockOutboxRepository)
		repo.On("FetchPending", mock.Anything, 50).Return(nil, errors.New("db down"))

		w := NewWorker(repo, new(MockDispatcher), nil)
		w.drain(context.Background())

		repo.AssertExpectations(t)
	})
}
