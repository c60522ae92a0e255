package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"auto_service_backend/internal/liftboard"
	"auto_service_backend/internal/metrics"
	"auto_service_backend/internal/models"
	"auto_service_backend/internal/money"
	"auto_service_backend/pkg/utils"
)

// LiftView is one bay as shown on the lift board.
type LiftView struct {
	Slot           int           `json:"slot"`
	Occupied       bool          `json:"occupied"`
	Order          *models.Order `json:"order,omitempty"`
	StartTime      *time.Time    `json:"start_time,omitempty"`
	ElapsedSeconds int64         `json:"elapsed_seconds"`
	Totals         *money.Totals `json:"totals,omitempty"`
}

// CompletedService is the result of marking a bay done.
type CompletedService struct {
	Slot            int   `json:"slot"`
	OrderID         int64 `json:"order_id"`
	DurationSeconds int64 `json:"service_duration"`
}

// LiftService runs orders through the shop's lift bays.
type LiftService interface {
	ListLifts(ctx context.Context) ([]LiftView, error)
	StartService(ctx context.Context, slot int, draft OrderDraft) (*LiftView, error)
	CompleteService(ctx context.Context, slot int) (*CompletedService, error)
	// SlotState returns a copy of what slot holds, or nil for an empty bay.
	SlotState(ctx context.Context, slot int) (*liftboard.Slot, error)
	Subscribe() (<-chan liftboard.Board, func())
}

type liftService struct {
	board  liftboard.Store
	orders OrderService
	clock  liftboard.Clock

	// startMu holds the bay check, order creation and assignment together.
	startMu sync.Mutex
}

func NewLiftService(board liftboard.Store, orders OrderService, clock liftboard.Clock) LiftService {
	if clock == nil {
		clock = liftboard.SystemClock()
	}
	return &liftService{board: board, orders: orders, clock: clock}
}

func (s *liftService) ListLifts(ctx context.Context) ([]LiftView, error) {
	board, err := s.board.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load lift board: %w", err)
	}

	var found []models.Order
	for _, slot := range board {
		if slot == nil {
			continue
		}
		order, err := s.orders.GetOrderByID(ctx, slot.OrderID)
		if err != nil {
			if errors.Is(err, ErrOrderNotFound) {
				continue
			}
			return nil, err
		}
		found = append(found, *order)
	}

	now := s.clock.Now()
	resolved := liftboard.Resolve(board, found)
	views := make([]LiftView, liftboard.SlotCount)
	occupied := 0
	for i, r := range resolved {
		views[i] = LiftView{Slot: i}
		if r == nil {
			continue
		}
		occupied++
		start := r.Slot.StartTime
		totals := OrderBreakdown(r.Order)
		views[i].Occupied = true
		views[i].Order = r.Order
		views[i].StartTime = &start
		views[i].ElapsedSeconds = liftboard.Elapsed(start, now)
		views[i].Totals = &totals
	}
	metrics.LiftsOccupied.Set(float64(occupied))
	return views, nil
}

// StartService creates the order and puts it on slot. The start time is taken
// when the order is created. If the bay cannot be assigned the new order is
// deleted again.
func (s *liftService) StartService(ctx context.Context, slot int, draft OrderDraft) (*LiftView, error) {
	if !liftboard.ValidSlot(slot) {
		return nil, liftboard.ErrInvalidSlot
	}
	s.startMu.Lock()
	defer s.startMu.Unlock()

	board, err := s.board.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load lift board: %w", err)
	}
	if board.At(slot) != nil {
		return nil, liftboard.ErrSlotOccupied
	}

	start := s.clock.Now()
	order, err := s.orders.CreateOrder(ctx, draft)
	if err != nil {
		return nil, err
	}

	board, err = s.board.Update(ctx, func(b liftboard.Board) (liftboard.Board, error) {
		return b.Assign(slot, order.ID, start)
	})
	if err != nil {
		fields := map[string]interface{}{"order_id": order.ID, "slot": slot}
		if delErr := s.orders.DeleteOrder(ctx, order.ID); delErr != nil && !errors.Is(delErr, ErrOrderNotFound) {
			utils.LogError(delErr, "Lift assignment failed and the new order could not be removed", fields)
		} else {
			utils.LogWarn("Lift assignment failed, new order removed", fields)
		}
		return nil, err
	}
	metrics.LiftsOccupied.Set(float64(board.Occupied()))

	totals := OrderBreakdown(order)
	return &LiftView{
		Slot:      slot,
		Occupied:  true,
		Order:     order,
		StartTime: &start,
		Totals:    &totals,
	}, nil
}

// CompleteService stores the elapsed time on the order and frees the bay.
// If the duration cannot be stored the bay stays occupied. A bay whose order
// was deleted is freed and ErrOrderNotFound is returned.
func (s *liftService) CompleteService(ctx context.Context, slot int) (*CompletedService, error) {
	if !liftboard.ValidSlot(slot) {
		return nil, liftboard.ErrInvalidSlot
	}
	board, err := s.board.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load lift board: %w", err)
	}
	held := board.At(slot)
	if held == nil {
		return nil, liftboard.ErrSlotEmpty
	}

	elapsed := liftboard.Elapsed(held.StartTime, s.clock.Now())
	recordErr := s.orders.RecordServiceDuration(ctx, held.OrderID, elapsed)
	if recordErr != nil && !errors.Is(recordErr, ErrOrderNotFound) {
		return nil, recordErr
	}

	orderID := held.OrderID
	board, err = s.board.Update(ctx, func(b liftboard.Board) (liftboard.Board, error) {
		cur := b.At(slot)
		if cur == nil || cur.OrderID != orderID {
			return b, liftboard.ErrSlotEmpty
		}
		next, _, _, err := b.Release(slot, s.clock.Now())
		return next, err
	})
	if err != nil {
		return nil, err
	}
	metrics.LiftsOccupied.Set(float64(board.Occupied()))

	if recordErr != nil {
		utils.LogWarn("Lift held an order that no longer exists", map[string]interface{}{
			"order_id": orderID,
			"slot":     slot,
		})
		return nil, recordErr
	}
	metrics.ServiceDurationSeconds.Observe(float64(elapsed))
	return &CompletedService{Slot: slot, OrderID: orderID, DurationSeconds: elapsed}, nil
}

func (s *liftService) SlotState(ctx context.Context, slot int) (*liftboard.Slot, error) {
	if !liftboard.ValidSlot(slot) {
		return nil, liftboard.ErrInvalidSlot
	}
	board, err := s.board.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load lift board: %w", err)
	}
	held := board.At(slot)
	if held == nil {
		return nil, nil
	}
	cp := *held
	return &cp, nil
}

func (s *liftService) Subscribe() (<-chan liftboard.Board, func()) {
	return s.board.Subscribe()
}
