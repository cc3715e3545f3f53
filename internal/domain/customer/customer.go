package customer

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrEmptyName     = errors.New("customer name cannot be empty")
	ErrInvalidOwner  = errors.New("owner id must be positive")
	ErrInvalidSerial = errors.New("customer serial must be positive")
)

// Customer is a buyer scoped to one owner (tenant)
type Customer struct {
	ID         int64     `json:"id"`
	OwnerID    int64     `json:"owner_id"`
	Code       string    `json:"code"`
	Name       string    `json:"name"`
	Phone      string    `json:"phone"`
	Email      string    `json:"email"`
	Address    string    `json:"address"`
	LocationID *int64    `json:"location_id,omitempty"`
	AddedBy    *int64    `json:"added_by,omitempty"`
	IsActive   bool      `json:"is_active"`
	IsDeleted  bool      `json:"is_deleted"`
	AddedDate  time.Time `json:"added_date"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewCustomer builds an active customer. Code is assigned later from the owner's sequence.
func NewCustomer(ownerID int64, name, phone, email, address string, locationID, addedBy *int64, addedDate time.Time) (*Customer, error) {
	if ownerID <= 0 {
		return nil, ErrInvalidOwner
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	now := time.Now()
	return &Customer{
		OwnerID:    ownerID,
		Name:       name,
		Phone:      strings.TrimSpace(phone),
		Email:      strings.TrimSpace(email),
		Address:    strings.TrimSpace(address),
		LocationID: locationID,
		AddedBy:    addedBy,
		IsActive:   true,
		AddedDate:  addedDate,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// FormatCode renders the owner-local serial as CID00000001.
func FormatCode(serial int64) (string, error) {
	if serial <= 0 {
		return "", ErrInvalidSerial
	}
	return fmt.Sprintf("CID%08d", serial), nil
}

// Usable reports whether ledger entries and sales may reference the customer
func (c *Customer) Usable() bool {
	return !c.IsDeleted
}
