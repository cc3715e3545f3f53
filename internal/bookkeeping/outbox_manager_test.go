package bookkeeping

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jar-backoffice/internal/domain/ledger"
	"github.com/jar-backoffice/internal/domain/outbox"
	"github.com/jar-backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOutboxRepo struct {
	mock.Mock
}

func (m *MockOutboxRepo) Create(ctx context.Context, message *outbox.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MockOutboxRepo) GetPending(ctx context.Context, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *MockOutboxRepo) UpdateStatus(ctx context.Context, id int64, status shared.OutboxStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockOutboxRepo) IncrementAttempts(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOutboxRepo) WithTx(tx pgx.Tx) outbox.Repository {
	args := m.Called(tx)
	return args.Get(0).(outbox.Repository)
}

func TestOutboxManager_CreateOutboxEntry(t *testing.T) {
	entry := &ledger.Entry{
		ID:            7,
		OwnerID:       1,
		CustomerID:    42,
		Credit:        decimal.NewFromInt(500),
		Debit:         decimal.Zero,
		BalanceBefore: decimal.Zero,
		BalanceAfter:  decimal.NewFromInt(500),
		Remark:        shared.RemarkNewSales,
	}

	tests := []struct {
		name          string
		eventType     shared.EventType
		setupMocks    func(mockRepo *MockOutboxRepo)
		errorContains string
	}{
		{
			name:      "recorded event is queued as pending",
			eventType: shared.EventLedgerEntryRecorded,
			setupMocks: func(mockRepo *MockOutboxRepo) {
				mockRepo.On("WithTx", mock.Anything).Return(mockRepo)
				mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(msg *outbox.Message) bool {
					if msg.Status != shared.OutboxStatusPending || msg.EntryID != 7 || msg.OwnerID != 1 {
						return false
					}
					event, err := msg.Event()
					return err == nil &&
						event.Type == shared.EventLedgerEntryRecorded &&
						event.CorrelationID == "corr1" &&
						event.Entry.BalanceAfter.Equal(decimal.NewFromInt(500))
				})).Return(nil)
			},
		},
		{
			name:      "deleted event keeps its type",
			eventType: shared.EventLedgerEntryDeleted,
			setupMocks: func(mockRepo *MockOutboxRepo) {
				mockRepo.On("WithTx", mock.Anything).Return(mockRepo)
				mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(msg *outbox.Message) bool {
					return msg.EventType == shared.EventLedgerEntryDeleted
				})).Return(nil)
			},
		},
		{
			name:      "repository failure is wrapped",
			eventType: shared.EventLedgerEntryRecorded,
			setupMocks: func(mockRepo *MockOutboxRepo) {
				mockRepo.On("WithTx", mock.Anything).Return(mockRepo)
				mockRepo.On("Create", mock.Anything, mock.Anything).Return(errors.New("db error"))
			},
			errorContains: "db error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &MockOutboxRepo{}
			manager := NewOutboxManager(mockRepo, newTestLogger())
			tt.setupMocks(mockRepo)

			err := manager.CreateOutboxEntry(context.Background(), nil, tt.eventType, entry, "corr1")

			if tt.errorContains != "" {
				require.Error(t, err)
				assert.True(t, strings.Contains(err.Error(), tt.errorContains),
					"Expected error to contain '%s', got '%s'", tt.errorContains, err.Error())
			} else {
				assert.NoError(t, err)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}
