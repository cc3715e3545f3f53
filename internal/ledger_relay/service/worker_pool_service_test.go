package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jar-backoffice/internal/domain/outbox"
	"github.com/jar-backoffice/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockProjectionService struct {
	mock.Mock
}

func (m *MockProjectionService) Project(ctx context.Context, event *outbox.LedgerEvent) error {
	return m.Called(ctx, event).Error(0)
}

func TestWorkerPoolProjectionService_Project(t *testing.T) {
	tests := []struct {
		name          string
		result        error
		expectedError string
	}{
		{name: "successful projection"},
		{name: "projection error", result: errors.New("projection error"), expectedError: "projection error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := &MockProjectionService{}
			svc, err := NewWorkerPoolProjectionService(base, WorkerPoolConfig{Size: 2}, newTestLogger())
			require.NoError(t, err)
			defer svc.Shutdown()

			event := newEvent(shared.EventLedgerEntryRecorded)
			base.On("Project", mock.Anything, mock.MatchedBy(func(e *outbox.LedgerEvent) bool {
				return e.EventID == event.EventID
			})).Return(tt.result).Once()

			err = svc.Project(context.Background(), event)
			if tt.expectedError != "" {
				assert.ErrorContains(t, err, tt.expectedError)
			} else {
				assert.NoError(t, err)
			}
			base.AssertExpectations(t)
		})
	}
}

// slowProjection tracks how many projections run at once
type slowProjection struct {
	running atomic.Int32
	peak    atomic.Int32
}

func (s *slowProjection) Project(ctx context.Context, event *outbox.LedgerEvent) error {
	n := s.running.Add(1)
	for {
		peak := s.peak.Load()
		if n <= peak || s.peak.CompareAndSwap(peak, n) {
			break
		}
	}
	time.Sleep(10 * time.Millisecond)
	s.running.Add(-1)
	return nil
}

func TestWorkerPoolProjectionService_BoundsConcurrency(t *testing.T) {
	base := &slowProjection{}
	svc, err := NewWorkerPoolProjectionService(base, WorkerPoolConfig{Size: 3}, newTestLogger())
	require.NoError(t, err)
	defer svc.Shutdown()
	assert.Equal(t, 3, svc.Capacity())

	var wg sync.WaitGroup
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, svc.Project(context.Background(), newEvent(shared.EventLedgerEntryRecorded)))
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, base.peak.Load(), int32(3))
	assert.GreaterOrEqual(t, base.peak.Load(), int32(1))
}

func TestWorkerPoolProjectionService_CanceledContext(t *testing.T) {
	block := make(chan struct{})
	base := &MockProjectionService{}
	base.On("Project", mock.Anything, mock.Anything).Run(func(mock.Arguments) { <-block }).Return(nil)

	svc, err := NewWorkerPoolProjectionService(base, WorkerPoolConfig{Size: 1}, newTestLogger())
	require.NoError(t, err)
	defer svc.Shutdown()
	defer close(block)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err = svc.Project(ctx, newEvent(shared.EventLedgerEntryRecorded))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
