package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jar-backoffice/internal/domain/ledger"
	"github.com/jar-backoffice/internal/domain/outbox"
	"github.com/jar-backoffice/internal/domain/shared"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutboxRepository_Create(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &OutboxRepository{querier: mock, logger: newTestLogger()}
	entry := &ledger.Entry{ID: 9, OwnerID: 1, CustomerID: 42, Credit: decimal.NewFromInt(500)}
	message, err := outbox.NewLedgerMessage(shared.EventLedgerEntryRecorded, entry, "corr-1")
	require.NoError(t, err)

	mock.ExpectQuery(`INSERT INTO ledger_outbox`).
		WithArgs(message.EventID, shared.EventLedgerEntryRecorded, int64(1), int64(9), message.Payload,
			shared.OutboxStatusPending, 0, message.CreatedAt).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(100)))

	require.NoError(t, repo.Create(ctx, message))
	assert.Equal(t, int64(100), message.ID)

	mock.ExpectQuery(`INSERT INTO ledger_outbox`).WithArgs(anyArgs(8)...).WillReturnError(errors.New("duplicate key"))
	assert.ErrorContains(t, repo.Create(ctx, message), "failed to create outbox message")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_GetPending(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &OutboxRepository{querier: mock, logger: newTestLogger()}
	entry := &ledger.Entry{ID: 9, OwnerID: 1, CustomerID: 42}
	message, err := outbox.NewLedgerMessage(shared.EventLedgerEntryDeleted, entry, "")
	require.NoError(t, err)
	columns := []string{"id", "event_id", "event_type", "owner_id", "entry_id", "payload", "status",
		"attempts", "created_at", "last_attempt_at"}

	mock.ExpectQuery(`FROM ledger_outbox WHERE status = \$1 ORDER BY id ASC LIMIT \$2`).
		WithArgs(shared.OutboxStatusPending, 50).
		WillReturnRows(pgxmock.NewRows(columns).AddRow(int64(100), message.EventID, shared.EventLedgerEntryDeleted,
			int64(1), int64(9), message.Payload, shared.OutboxStatusPending, 2, message.CreatedAt, (*time.Time)(nil)))

	messages, err := repo.GetPending(ctx, 50)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, 2, messages[0].Attempts)

	event, err := messages[0].Event()
	require.NoError(t, err)
	assert.Equal(t, "1:42", event.PartitionKey())

	mock.ExpectQuery(`FROM ledger_outbox`).WithArgs(shared.OutboxStatusPending, 50).WillReturnError(errors.New("boom"))
	_, err = repo.GetPending(ctx, 50)
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_StatusAndAttempts(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &OutboxRepository{querier: mock, logger: newTestLogger()}

	mock.ExpectExec(`UPDATE ledger_outbox SET status = \$1`).
		WithArgs(shared.OutboxStatusProcessed, pgxmock.AnyArg(), int64(100)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	assert.NoError(t, repo.UpdateStatus(ctx, 100, shared.OutboxStatusProcessed))

	mock.ExpectExec(`UPDATE ledger_outbox SET status = \$1`).
		WithArgs(shared.OutboxStatusFailedToPublish, pgxmock.AnyArg(), int64(101)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	assert.ErrorIs(t, repo.UpdateStatus(ctx, 101, shared.OutboxStatusFailedToPublish), outbox.ErrMessageNotFound{ID: 101})

	mock.ExpectExec(`SET attempts = attempts \+ 1`).WithArgs(pgxmock.AnyArg(), int64(100)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	assert.NoError(t, repo.IncrementAttempts(ctx, 100))

	assert.NoError(t, mock.ExpectationsWereMet())
}
