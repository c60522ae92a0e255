package models

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"auto_service_backend/internal/money"
)

// ArchiveState is the two-state archival flag of an order.
type ArchiveState string

const (
	ArchiveActive   ArchiveState = "ACTIVE"
	ArchiveArchived ArchiveState = "ARCHIVED"
)

// ArchiveStateFromFlag maps the stored is_archived column.
// Only an explicit true is archived; NULL and false are active.
func ArchiveStateFromFlag(flag sql.NullBool) ArchiveState {
	if flag.Valid && flag.Bool {
		return ArchiveArchived
	}
	return ArchiveActive
}

// Flag is the value written to is_archived.
func (s ArchiveState) Flag() bool {
	return s == ArchiveArchived
}

// Order is a work ticket for one client/vehicle visit.
type Order struct {
	ID              int64        `json:"id"`
	ClientID        int64        `json:"client_id"`
	CarID           int64        `json:"car_id"`
	Km              *int64       `json:"km,omitempty"`
	EmployeeName    *string      `json:"employee_name,omitempty"`
	IsPaid          bool         `json:"is_paid"`
	ArchiveState    ArchiveState `json:"archive_state"`
	ArchivedAt      *time.Time   `json:"archived_at,omitempty"`
	ServiceDuration *int64       `json:"service_duration,omitempty"` // seconds on the lift
	CreatedAt       time.Time    `json:"created_at"`

	Client  *Client     `json:"client,omitempty"`
	Vehicle *Vehicle    `json:"car,omitempty"`
	Items   []OrderItem `json:"order_items"`
}

// IsArchived reports whether the order is in the archive.
func (o *Order) IsArchived() bool {
	return o.ArchiveState == ArchiveArchived
}

// OrderItem is one serviced line on an order.
type OrderItem struct {
	ID          int64           `json:"id" db:"id"`
	OrderID     int64           `json:"order_id" db:"order_id"`
	ServiceName string          `json:"service_name" db:"service_name"`
	Description *string         `json:"description,omitempty" db:"description"`
	Quantity    int64           `json:"quantity" db:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price" db:"unit_price"`
	LaborCost   decimal.Decimal `json:"labor_cost" db:"labor_cost"`
	PartsCost   decimal.Decimal `json:"parts_cost" db:"parts_cost"`
	Parts       PartList        `json:"parts_json" db:"parts_json"`
}

// Totals is the line breakdown taken from the stored money columns. A line
// without parts or labor is priced as a whole and counts as labor.
func (i OrderItem) Totals() money.Totals {
	total := decimal.NewFromInt(i.Quantity).Mul(i.UnitPrice)
	labor := i.LaborCost
	if len(i.Parts) == 0 && labor.IsZero() {
		labor = total
	}
	return money.Totals{
		LaborCost: labor,
		PartsCost: i.PartsCost,
		PartsSold: money.LineTotals(decimal.Zero, i.Parts.Amounts()).PartsSold,
		Total:     total,
		Profit:    total.Sub(i.PartsCost),
	}
}

// Part is a component consumed by a line item.
type Part struct {
	Name      string          `json:"name"`
	Quantity  decimal.Decimal `json:"quantity"`
	BuyPrice  decimal.Decimal `json:"buy_price"`
	SellPrice decimal.Decimal `json:"sell_price"`
}

// PartList is stored as JSONB; an empty list is stored as NULL.
type PartList []Part

// Amounts converts the list for money.LineTotals.
func (p PartList) Amounts() []money.PartAmount {
	out := make([]money.PartAmount, 0, len(p))
	for _, part := range p {
		out = append(out, money.PartAmount{
			Quantity:  part.Quantity,
			BuyPrice:  part.BuyPrice,
			SellPrice: part.SellPrice,
		})
	}
	return out
}

// Value implements driver.Valuer.
func (p PartList) Value() (driver.Value, error) {
	if len(p) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encoding parts: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (p *PartList) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*p = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("parts_json: unsupported column type")
	}
	if len(raw) == 0 || string(raw) == "null" {
		*p = nil
		return nil
	}
	var parts PartList
	if err := json.Unmarshal(raw, &parts); err != nil {
		return fmt.Errorf("decoding parts: %w", err)
	}
	*p = parts
	return nil
}

// OrderFilters narrows order listings. Zero values mean "no filter".
type OrderFilters struct {
	ClientID *int64
	CarID    *int64
	From     *time.Time
	To       *time.Time
}

// ArchiveInfo is the slim projection the archival sweep reads.
type ArchiveInfo struct {
	ID           int64
	CreatedAt    time.Time
	ArchiveState ArchiveState
}
