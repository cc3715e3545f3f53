package bookkeeping

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jar-backoffice/internal/domain/customer"
	"github.com/jar-backoffice/internal/domain/ledger"
	"github.com/jar-backoffice/internal/domain/shared"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

// fakeTx tracks what must be undone or released when the transaction ends.
// The embedded interface is nil; the chainer only passes the tx through.
type fakeTx struct {
	pgx.Tx
	inserted []int64
	deleted  []int64
	onEnd    []func()
}

// fakeTxRunner commits by keeping writes and rolls back by reverting them.
// Row locks are released only after that, like Postgres.
type fakeTxRunner struct {
	store *ledgerStore
}

func (r *fakeTxRunner) ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx := &fakeTx{}
	err := fn(tx)
	if err != nil {
		r.store.revert(tx)
	}
	for i := len(tx.onEnd) - 1; i >= 0; i-- {
		tx.onEnd[i]()
	}
	return err
}

type lockKey struct {
	ownerID    int64
	customerID int64
}

type customerTable struct {
	mu      sync.Mutex
	locks   map[lockKey]*sync.Mutex
	known   map[lockKey]bool
	lockErr error
}

func newCustomerTable(customers ...lockKey) *customerTable {
	t := &customerTable{locks: map[lockKey]*sync.Mutex{}, known: map[lockKey]bool{}}
	for _, k := range customers {
		t.known[k] = true
	}
	return t
}

type fakeCustomerRepo struct {
	customer.Repository
	table *customerTable
	tx    *fakeTx
}

func (r *fakeCustomerRepo) WithTx(tx pgx.Tx) customer.Repository {
	return &fakeCustomerRepo{table: r.table, tx: tx.(*fakeTx)}
}

func (r *fakeCustomerRepo) LockForUpdate(ctx context.Context, ownerID, id int64) (*customer.Customer, error) {
	key := lockKey{ownerID, id}

	r.table.mu.Lock()
	if r.table.lockErr != nil {
		err := r.table.lockErr
		r.table.mu.Unlock()
		return nil, err
	}
	if !r.table.known[key] {
		r.table.mu.Unlock()
		return nil, customer.ErrCustomerNotFound{OwnerID: ownerID, CustomerID: id}
	}
	rowLock, ok := r.table.locks[key]
	if !ok {
		rowLock = &sync.Mutex{}
		r.table.locks[key] = rowLock
	}
	r.table.mu.Unlock()

	rowLock.Lock()
	r.tx.onEnd = append(r.tx.onEnd, rowLock.Unlock)
	return &customer.Customer{ID: id, OwnerID: ownerID, IsActive: true}, nil
}

type ledgerStore struct {
	mu        sync.Mutex
	nextID    int64
	entries   []*ledger.Entry
	latestErr error
	createErr error
}

func (s *ledgerStore) revert(tx *fakeTx) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range tx.deleted {
		for _, e := range s.entries {
			if e.ID == id {
				e.IsDeleted = false
			}
		}
	}
	if len(tx.inserted) == 0 {
		return
	}
	drop := map[int64]bool{}
	for _, id := range tx.inserted {
		drop[id] = true
	}
	kept := s.entries[:0]
	for _, e := range s.entries {
		if !drop[e.ID] {
			kept = append(kept, e)
		}
	}
	s.entries = kept
}

// chain returns copies of a customer's live entries in insertion order
func (s *ledgerStore) chain(ownerID, customerID int64) []ledger.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []ledger.Entry
	for _, e := range s.entries {
		if e.OwnerID == ownerID && e.CustomerID == customerID && !e.IsDeleted {
			out = append(out, *e)
		}
	}
	return out
}

type fakeLedgerRepo struct {
	store *ledgerStore
	tx    *fakeTx
}

func (r *fakeLedgerRepo) WithTx(tx pgx.Tx) ledger.Repository {
	return &fakeLedgerRepo{store: r.store, tx: tx.(*fakeTx)}
}

func (r *fakeLedgerRepo) Create(ctx context.Context, entry *ledger.Entry) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if r.store.createErr != nil {
		return r.store.createErr
	}
	r.store.nextID++
	entry.ID = r.store.nextID
	stored := *entry
	r.store.entries = append(r.store.entries, &stored)
	if r.tx != nil {
		r.tx.inserted = append(r.tx.inserted, entry.ID)
	}
	return nil
}

func (r *fakeLedgerRepo) GetLatestActive(ctx context.Context, ownerID, customerID int64) (*ledger.Entry, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if r.store.latestErr != nil {
		return nil, r.store.latestErr
	}
	for i := len(r.store.entries) - 1; i >= 0; i-- {
		e := r.store.entries[i]
		if e.OwnerID == ownerID && e.CustomerID == customerID && !e.IsDeleted {
			found := *e
			return &found, nil
		}
	}
	return nil, nil
}

func (r *fakeLedgerRepo) GetByID(ctx context.Context, ownerID, id int64) (*ledger.Entry, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, e := range r.store.entries {
		if e.ID == id && e.OwnerID == ownerID && !e.IsDeleted {
			found := *e
			return &found, nil
		}
	}
	return nil, ledger.ErrEntryNotFound{EntryID: id}
}

func (r *fakeLedgerRepo) ListByCustomer(ctx context.Context, ownerID, customerID int64, limit, offset int) ([]*ledger.Entry, error) {
	var out []*ledger.Entry
	for _, e := range r.store.chain(ownerID, customerID) {
		e := e
		out = append(out, &e)
	}
	if offset >= len(out) {
		return []*ledger.Entry{}, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeLedgerRepo) CountByCustomer(ctx context.Context, ownerID, customerID int64) (int64, error) {
	return int64(len(r.store.chain(ownerID, customerID))), nil
}

func (r *fakeLedgerRepo) SoftDelete(ctx context.Context, ownerID, id int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, e := range r.store.entries {
		if e.ID == id && e.OwnerID == ownerID && !e.IsDeleted {
			e.IsDeleted = true
			if r.tx != nil {
				r.tx.deleted = append(r.tx.deleted, id)
			}
			return nil
		}
	}
	return ledger.ErrEntryNotFound{EntryID: id}
}

type queuedEvent struct {
	eventType shared.EventType
	entry     ledger.Entry
}

type fakeOutbox struct {
	mu     sync.Mutex
	events []queuedEvent
	err    error
}

func (o *fakeOutbox) CreateOutboxEntry(ctx context.Context, tx pgx.Tx, eventType shared.EventType, entry *ledger.Entry, correlationID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.err != nil {
		return o.err
	}
	o.events = append(o.events, queuedEvent{eventType: eventType, entry: *entry})
	return nil
}

func (o *fakeOutbox) snapshot() []queuedEvent {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]queuedEvent(nil), o.events...)
}
