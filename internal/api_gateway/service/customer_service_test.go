package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jar-backoffice/internal/data/cache"
	"github.com/jar-backoffice/internal/domain/customer"
	"github.com/jar-backoffice/internal/domain/location"
	"github.com/jar-backoffice/internal/domain/sequence"
)

type customerFixture struct {
	tx      *stubTxRunner
	repo    *MockCustomerRepo
	seq     *MockSequenceRepo
	cache     *MockListCache
	locations *MockLocationRepo
	service   CustomerService
}

func newCustomerFixture() *customerFixture {
	f := &customerFixture{
		tx:    &stubTxRunner{},
		repo:  new(MockCustomerRepo),
		seq:   new(MockSequenceRepo),
		cache:     new(MockListCache),
		locations: new(MockLocationRepo),
	}
	f.service = NewCustomerService(newTestLogger(), f.tx, f.repo, f.seq, f.locations, f.cache, testClock)
	return f
}

func TestCustomerService_CreateCustomer(t *testing.T) {
	ctx := context.Background()
	actor := int64(9)
	caller := Caller{OwnerID: 4, ActorID: &actor, CorrelationID: "corr"}

	t.Run("assigns code and invalidates cache", func(t *testing.T) {
		f := newCustomerFixture()
		f.seq.On("Next", ctx, int64(4), sequence.Customers).Return(int64(12), nil).Once()
		f.repo.On("Create", ctx, mock.MatchedBy(func(c *customer.Customer) bool {
			return c.Code == "CID00000012" && c.OwnerID == 4 && c.Name == "Asha"
		})).Return(nil).Once()
		f.cache.On("Invalidate", ctx, cache.KindCustomers, int64(4)).Return(nil).Once()

		c, err := f.service.CreateCustomer(ctx, caller, CustomerInput{Name: "  Asha ", Phone: "98"})

		require.NoError(t, err)
		assert.Equal(t, "CID00000012", c.Code)
		assert.Equal(t, &actor, c.AddedBy)
		assert.True(t, c.IsActive)
		assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), c.AddedDate)
		f.repo.AssertExpectations(t)
		f.seq.AssertExpectations(t)
		f.cache.AssertExpectations(t)
	})

	t.Run("inactive on request", func(t *testing.T) {
		f := newCustomerFixture()
		inactive := false
		f.seq.On("Next", ctx, int64(4), sequence.Customers).Return(int64(1), nil).Once()
		f.repo.On("Create", ctx, mock.Anything).Return(nil).Once()
		f.cache.On("Invalidate", ctx, cache.KindCustomers, int64(4)).Return(errors.New("redis down")).Once()

		c, err := f.service.CreateCustomer(ctx, caller, CustomerInput{Name: "Ravi", IsActive: &inactive})

		require.NoError(t, err, "cache failures never fail the write")
		assert.False(t, c.IsActive)
	})

	t.Run("location of the owner", func(t *testing.T) {
		f := newCustomerFixture()
		ward := int64(5)
		f.locations.On("GetByID", ctx, int64(4), ward).Return(&location.Location{ID: ward, OwnerID: 4}, nil).Once()
		f.seq.On("Next", ctx, int64(4), sequence.Customers).Return(int64(2), nil).Once()
		f.repo.On("Create", ctx, mock.MatchedBy(func(c *customer.Customer) bool {
			return c.LocationID != nil && *c.LocationID == ward
		})).Return(nil).Once()
		f.cache.On("Invalidate", ctx, cache.KindCustomers, int64(4)).Return(nil).Once()

		_, err := f.service.CreateCustomer(ctx, caller, CustomerInput{Name: "Ravi", LocationID: &ward})

		require.NoError(t, err)
		f.locations.AssertExpectations(t)
	})

	t.Run("location of another owner", func(t *testing.T) {
		f := newCustomerFixture()
		foreign := int64(6)
		f.locations.On("GetByID", ctx, int64(4), foreign).Return(nil, location.ErrLocationNotFound{LocationID: foreign}).Once()

		_, err := f.service.CreateCustomer(ctx, caller, CustomerInput{Name: "Ravi", LocationID: &foreign})

		assert.ErrorIs(t, err, location.ErrLocationNotFound{LocationID: foreign})
		assert.True(t, IsNotFound(err))
		assert.Zero(t, f.tx.calls, "no serial is taken for a rejected location")
		f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("empty name", func(t *testing.T) {
		f := newCustomerFixture()

		_, err := f.service.CreateCustomer(ctx, caller, CustomerInput{Name: " "})

		assert.ErrorIs(t, err, customer.ErrEmptyName)
		assert.Zero(t, f.tx.calls)
	})

	t.Run("insert failure leaves cache alone", func(t *testing.T) {
		f := newCustomerFixture()
		f.seq.On("Next", ctx, int64(4), sequence.Customers).Return(int64(3), nil).Once()
		f.repo.On("Create", ctx, mock.Anything).Return(errors.New("unique violation")).Once()

		_, err := f.service.CreateCustomer(ctx, caller, CustomerInput{Name: "Ravi"})

		require.Error(t, err)
		f.cache.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestCustomerService_ActiveCustomers(t *testing.T) {
	ctx := context.Background()
	list := []*customer.Customer{{ID: 1, Name: "Asha"}}

	t.Run("cache hit skips the database", func(t *testing.T) {
		f := newCustomerFixture()
		f.cache.On("GetCustomers", ctx, int64(4)).Return(list, true, nil).Once()

		got, err := f.service.ActiveCustomers(ctx, 4)

		require.NoError(t, err)
		assert.Equal(t, list, got)
		f.repo.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("miss loads and fills", func(t *testing.T) {
		f := newCustomerFixture()
		f.cache.On("GetCustomers", ctx, int64(4)).Return(nil, false, nil).Once()
		f.repo.On("List", ctx, int64(4), customer.ListFilter{ActiveOnly: true}, activeListLimit, 0).Return(list, nil).Once()
		f.cache.On("SetCustomers", ctx, int64(4), list).Return(nil).Once()

		got, err := f.service.ActiveCustomers(ctx, 4)

		require.NoError(t, err)
		assert.Equal(t, list, got)
		f.cache.AssertExpectations(t)
	})

	t.Run("cache error falls through", func(t *testing.T) {
		f := newCustomerFixture()
		f.cache.On("GetCustomers", ctx, int64(4)).Return(nil, false, errors.New("timeout")).Once()
		f.repo.On("List", ctx, int64(4), customer.ListFilter{ActiveOnly: true}, activeListLimit, 0).Return(list, nil).Once()
		f.cache.On("SetCustomers", ctx, int64(4), list).Return(errors.New("timeout")).Once()

		got, err := f.service.ActiveCustomers(ctx, 4)

		require.NoError(t, err)
		assert.Equal(t, list, got)
	})
}

func TestCustomerService_ListCustomers(t *testing.T) {
	ctx := context.Background()
	f := newCustomerFixture()
	filter := customer.ListFilter{Search: "as"}
	f.repo.On("List", ctx, int64(4), filter, 20, 40).Return([]*customer.Customer{{ID: 1}}, nil).Once()
	f.repo.On("Count", ctx, int64(4), filter).Return(int64(41), nil).Once()

	list, total, err := f.service.ListCustomers(ctx, 4, filter, 3, 20)

	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, int64(41), total)
}

func TestCustomerService_UpdateCustomer(t *testing.T) {
	ctx := context.Background()

	t.Run("keeps code and added date", func(t *testing.T) {
		f := newCustomerFixture()
		added := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
		existing := &customer.Customer{ID: 5, OwnerID: 4, Code: "CID00000005", Name: "Old", IsActive: true, AddedDate: added}
		f.repo.On("GetByID", ctx, int64(4), int64(5)).Return(existing, nil).Once()
		f.repo.On("Update", ctx, existing).Return(nil).Once()
		f.cache.On("Invalidate", ctx, cache.KindCustomers, int64(4)).Return(nil).Once()

		inactive := false
		c, err := f.service.UpdateCustomer(ctx, 4, 5, CustomerInput{Name: "New", Address: "Lane 2", IsActive: &inactive})

		require.NoError(t, err)
		assert.Equal(t, "New", c.Name)
		assert.Equal(t, "Lane 2", c.Address)
		assert.Equal(t, "CID00000005", c.Code)
		assert.Equal(t, added, c.AddedDate)
		assert.False(t, c.IsActive)
	})

	t.Run("foreign customer", func(t *testing.T) {
		f := newCustomerFixture()
		f.repo.On("GetByID", ctx, int64(4), int64(5)).
			Return(nil, customer.ErrCustomerNotFound{OwnerID: 4, CustomerID: 5}).Once()

		_, err := f.service.UpdateCustomer(ctx, 4, 5, CustomerInput{Name: "New"})

		assert.True(t, IsNotFound(err))
	})

	t.Run("moved to a foreign location", func(t *testing.T) {
		f := newCustomerFixture()
		foreign := int64(6)
		f.repo.On("GetByID", ctx, int64(4), int64(5)).Return(&customer.Customer{ID: 5, OwnerID: 4, Name: "Old"}, nil).Once()
		f.locations.On("GetByID", ctx, int64(4), foreign).Return(nil, location.ErrLocationNotFound{LocationID: foreign}).Once()

		_, err := f.service.UpdateCustomer(ctx, 4, 5, CustomerInput{Name: "Old", LocationID: &foreign})

		assert.ErrorIs(t, err, location.ErrLocationNotFound{})
		f.repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestCustomerService_DeleteCustomer(t *testing.T) {
	ctx := context.Background()

	t.Run("deleted", func(t *testing.T) {
		f := newCustomerFixture()
		f.repo.On("SoftDelete", ctx, int64(4), int64(5)).Return(nil).Once()
		f.cache.On("Invalidate", ctx, cache.KindCustomers, int64(4)).Return(nil).Once()

		require.NoError(t, f.service.DeleteCustomer(ctx, 4, 5))
		f.cache.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		f := newCustomerFixture()
		f.repo.On("SoftDelete", ctx, int64(4), int64(5)).
			Return(customer.ErrCustomerNotFound{OwnerID: 4, CustomerID: 5}).Once()

		err := f.service.DeleteCustomer(ctx, 4, 5)

		assert.ErrorIs(t, err, customer.ErrCustomerNotFound{})
		f.cache.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything, mock.Anything)
	})
}
