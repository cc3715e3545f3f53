// Package location holds the delivery areas an owner groups customers and expenses by.
package location

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

var (
	ErrEmptyName     = errors.New("location name cannot be empty")
	ErrDuplicateName = errors.New("a location with this name already exists")
	ErrInvalidOwner  = errors.New("owner id must be positive")
)

type Location struct {
	ID        int64     `json:"id"`
	OwnerID   int64     `json:"owner_id"`
	Name      string    `json:"name"`
	IsDeleted bool      `json:"is_deleted"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewLocation(ownerID int64, name string) (*Location, error) {
	if ownerID <= 0 {
		return nil, ErrInvalidOwner
	}
	l := &Location{OwnerID: ownerID}
	if err := l.Rename(name); err != nil {
		return nil, err
	}
	l.CreatedAt = l.UpdatedAt
	return l, nil
}

func (l *Location) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	l.Name = name
	l.UpdatedAt = time.Now()
	return nil
}

// Repository defines location persistence. Names are unique per owner among live rows, ignoring case.
type Repository interface {
	Create(ctx context.Context, l *Location) error
	GetByID(ctx context.Context, ownerID, id int64) (*Location, error)
	List(ctx context.Context, ownerID int64, search string, limit, offset int) ([]*Location, error)
	Count(ctx context.Context, ownerID int64, search string) (int64, error)
	Update(ctx context.Context, l *Location) error
	SoftDelete(ctx context.Context, ownerID, id int64) error
	WithTx(tx pgx.Tx) Repository
}

// ErrLocationNotFound covers missing, deleted and foreign locations
type ErrLocationNotFound struct {
	LocationID int64
}

func (e ErrLocationNotFound) Error() string {
	return "location not found: " + strconv.FormatInt(e.LocationID, 10)
}

func (e ErrLocationNotFound) Is(target error) bool {
	t, ok := target.(ErrLocationNotFound)
	if !ok {
		return false
	}
	return t.LocationID == 0 || t.LocationID == e.LocationID
}
