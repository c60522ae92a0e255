// Package liftboard tracks which order occupies each of the shop's lift bays.
// The board is advisory workstation state; the database stays the source of truth.
package liftboard

import (
	"errors"
	"time"

	"auto_service_backend/internal/models"
)

// SlotCount is the number of physical bays.
const SlotCount = 3

// StorageKey is the key the board is persisted under.
const StorageKey = "autoservice_lifts_v2"

var (
	ErrInvalidSlot     = errors.New("lift slot does not exist")
	ErrSlotOccupied    = errors.New("lift slot is occupied")
	ErrSlotEmpty       = errors.New("lift slot is empty")
	ErrAlreadyAssigned = errors.New("order is already on a lift")
)

// Slot is an occupied bay.
type Slot struct {
	OrderID   int64     `json:"orderId"`
	StartTime time.Time `json:"startTime"`
}

// Board is the fixed set of bays; a nil entry is an empty bay.
// Methods return a new board and never modify the receiver's slots.
type Board [SlotCount]*Slot

// ValidSlot reports whether i names a bay.
func ValidSlot(i int) bool {
	return i >= 0 && i < SlotCount
}

// At returns the slot at i, or nil when it is empty or out of range.
func (b Board) At(i int) *Slot {
	if !ValidSlot(i) {
		return nil
	}
	return b[i]
}

// Assign puts orderID on bay i starting at start.
func (b Board) Assign(i int, orderID int64, start time.Time) (Board, error) {
	if !ValidSlot(i) {
		return b, ErrInvalidSlot
	}
	if b[i] != nil {
		return b, ErrSlotOccupied
	}
	if _, ok := b.SlotOf(orderID); ok {
		return b, ErrAlreadyAssigned
	}
	b[i] = &Slot{OrderID: orderID, StartTime: start}
	return b, nil
}

// Release empties bay i and returns what it held with the whole seconds it was occupied.
func (b Board) Release(i int, now time.Time) (Board, Slot, int64, error) {
	if !ValidSlot(i) {
		return b, Slot{}, 0, ErrInvalidSlot
	}
	if b[i] == nil {
		return b, Slot{}, 0, ErrSlotEmpty
	}
	held := *b[i]
	b[i] = nil
	return b, held, Elapsed(held.StartTime, now), nil
}

// SlotOf finds the bay holding orderID.
func (b Board) SlotOf(orderID int64) (int, bool) {
	for i, s := range b {
		if s != nil && s.OrderID == orderID {
			return i, true
		}
	}
	return -1, false
}

// Occupied counts the bays holding an order.
func (b Board) Occupied() int {
	n := 0
	for _, s := range b {
		if s != nil {
			n++
		}
	}
	return n
}

// normalize drops entries that cannot name an order.
func (b Board) normalize() Board {
	for i, s := range b {
		if s != nil && s.OrderID <= 0 {
			b[i] = nil
		}
	}
	return b
}

// ResolvedSlot is a bay joined with its order.
type ResolvedSlot struct {
	Slot  Slot
	Order *models.Order
}

// Resolve joins each bay with its order by ID. A bay whose order is not in
// orders resolves to nil; the stored entry is left as is.
func Resolve(b Board, orders []models.Order) [SlotCount]*ResolvedSlot {
	byID := make(map[int64]*models.Order, len(orders))
	for i := range orders {
		byID[orders[i].ID] = &orders[i]
	}
	var out [SlotCount]*ResolvedSlot
	for i, s := range b {
		if s == nil {
			continue
		}
		if o, ok := byID[s.OrderID]; ok {
			out[i] = &ResolvedSlot{Slot: *s, Order: o}
		}
	}
	return out
}
