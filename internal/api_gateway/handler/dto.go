package handler

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// RawAmount holds the client's amount text, quoted or not, so the ledger parser decides validity
type RawAmount string

func (a *RawAmount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*a = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = RawAmount(s)
		return nil
	}
	*a = RawAmount(b)
	return nil
}

func (a RawAmount) String() string { return string(a) }

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=10" binding:"min=1,max=100"`
}

// DateRangeQuery scopes listings and reports. Dates are YYYY-MM-DD and default to today.
type DateRangeQuery struct {
	From       string `form:"from"`
	To         string `form:"to"`
	CustomerID *int64 `form:"customer_id" binding:"omitempty,min=1"`
	LocationID *int64 `form:"location_id" binding:"omitempty,min=1"`
}

type CustomerRequest struct {
	Name       string `json:"name" binding:"required"`
	Phone      string `json:"phone"`
	Email      string `json:"email" binding:"omitempty,email"`
	Address    string `json:"address"`
	LocationID *int64 `json:"location_id" binding:"omitempty,min=1"`
	IsActive   *bool  `json:"is_active"`
	AddedDate  string `json:"added_date"`
}

type CustomerListQuery struct {
	PaginationParams
	Search     string `form:"search"`
	LocationID *int64 `form:"location_id" binding:"omitempty,min=1"`
	ActiveOnly bool   `form:"active"`
}

type ProductRequest struct {
	Name         string          `json:"name" binding:"required"`
	Description  string          `json:"description"`
	Rate         decimal.Decimal `json:"rate"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	Quantity     int64           `json:"quantity" binding:"min=0"`
	Unit         string          `json:"unit"`
	TaxRate      decimal.Decimal `json:"tax_rate"`
}

type SaleItemRequest struct {
	ProductID int64            `json:"product_id" binding:"required,min=1"`
	Quantity  decimal.Decimal  `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
	TaxRate   *decimal.Decimal `json:"tax_rate"`
	Remark    string           `json:"remark"`
}

type SaleRequest struct {
	CustomerID       int64             `json:"customer_id" binding:"required,min=1"`
	SaleDate         string            `json:"sale_date"`
	Items            []SaleItemRequest `json:"items" binding:"required,min=1,dive"`
	AdditionalCharge decimal.Decimal   `json:"additional_charge"`
	JarsOut          int               `json:"jars_out" binding:"min=0"`
	JarsIn           int               `json:"jars_in" binding:"min=0"`
	AmountPaid       decimal.Decimal   `json:"amount_paid"`
	Remark           string            `json:"remark"`
}

// PaymentRequest keeps the amount as the raw client value so it parses exactly
type PaymentRequest struct {
	CustomerID  int64       `json:"customer_id" binding:"required,min=1"`
	SaleID      *int64      `json:"sale_id" binding:"omitempty,min=1"`
	PaymentDate string      `json:"payment_date"`
	Amount      RawAmount   `json:"amount"`
	Remark      string      `json:"remark"`
}

type LedgerEntryRequest struct {
	Kind   string    `json:"kind" binding:"required"`
	Amount RawAmount `json:"amount"`
	Remark string    `json:"remark"`
}

// NameRequest creates or renames a location or an expense group
type NameRequest struct {
	Name string `json:"name" binding:"required"`
}

type SearchQuery struct {
	PaginationParams
	Search string `form:"search"`
}

type ExpenseRequest struct {
	GroupID     int64     `json:"group_id" binding:"required,min=1"`
	LocationID  *int64    `json:"location_id" binding:"omitempty,min=1"`
	ExpenseDate string    `json:"expense_date"`
	Amount      RawAmount `json:"amount"`
	Description string    `json:"description" binding:"max=255"`
}

type ExpenseListQuery struct {
	PaginationParams
	DateRangeQuery
	GroupID *int64 `form:"group_id" binding:"omitempty,min=1"`
}

type JarRequest struct {
	CustomerID  int64  `json:"customer_id" binding:"required,min=1"`
	InJar       int    `json:"in_jar" binding:"min=0"`
	OutJar      int    `json:"out_jar" binding:"min=0"`
	CounterDate string `json:"counter_date"`
	Remark      string `json:"remark"`
}

// BalanceResponse is a customer's current running balance
type BalanceResponse struct {
	CustomerID int64           `json:"customer_id"`
	Balance    decimal.Decimal `json:"balance"`
	JarsHeld   *int64          `json:"jars_held,omitempty"`
}

type PaymentResponse struct {
	Payment interface{} `json:"payment"`
	Entry   interface{} `json:"ledger_entry"`
}
