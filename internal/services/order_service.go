package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"auto_service_backend/internal/models"
	"auto_service_backend/internal/repositories"
	"auto_service_backend/internal/timeutil"
	"auto_service_backend/pkg/utils"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrValidation    = errors.New("validation error")
)

// ArchiveFilter selects which side of the archive a listing shows.
type ArchiveFilter string

const (
	ArchiveFilterActive   ArchiveFilter = "active"
	ArchiveFilterArchived ArchiveFilter = "archived"
	ArchiveFilterAll      ArchiveFilter = "all"
)

// ParseArchiveFilter maps a query value, defaulting to active orders.
func ParseArchiveFilter(s string) ArchiveFilter {
	switch ArchiveFilter(s) {
	case ArchiveFilterArchived, ArchiveFilterAll:
		return ArchiveFilter(s)
	}
	return ArchiveFilterActive
}

// OrderQuery is the listing request shared by orders, dashboard and invoices.
type OrderQuery struct {
	Archive  ArchiveFilter
	From     *time.Time
	To       *time.Time
	ClientID *int64
	CarID    *int64
}

// InvoiceQuery adds free-text search and paging to an OrderQuery.
type InvoiceQuery struct {
	OrderQuery
	Search   string
	Page     int
	PageSize int
}

// OrderService defines the order lifecycle operations.
type OrderService interface {
	CreateOrder(ctx context.Context, draft OrderDraft) (*models.Order, error)
	UpdateOrder(ctx context.Context, orderID int64, draft OrderDraft) (*models.Order, error)
	GetOrderByID(ctx context.Context, orderID int64) (*models.Order, error)
	GetOrders(ctx context.Context, q OrderQuery) ([]models.Order, error)
	DeleteOrder(ctx context.Context, orderID int64) error

	SetOrderPaid(ctx context.Context, orderID int64, paid bool) (*models.Order, error)
	RecordServiceDuration(ctx context.Context, orderID int64, seconds int64) error

	ArchiveOldOrders(ctx context.Context) (int64, error)
	UnarchiveOrder(ctx context.Context, orderID int64) (*models.Order, error)

	GetOrderDraft(ctx context.Context, orderID int64) (*OrderDraft, error)
	GetDashboard(ctx context.Context, q OrderQuery) (models.DashboardStats, error)
	GetInvoices(ctx context.Context, q InvoiceQuery) (models.Page[models.Order], error)
}

type orderService struct {
	orderRepo   repositories.OrderRepository
	clientRepo  repositories.ClientRepository
	vehicleRepo repositories.VehicleRepository
	catalogRepo repositories.CatalogRepository
	now         func() time.Time
}

// NewOrderService creates a new instance of OrderService.
func NewOrderService(
	or repositories.OrderRepository,
	cr repositories.ClientRepository,
	vr repositories.VehicleRepository,
	cat repositories.CatalogRepository,
) OrderService {
	return &orderService{
		orderRepo:   or,
		clientRepo:  cr,
		vehicleRepo: vr,
		catalogRepo: cat,
		now:         timeutil.Now,
	}
}

// checkReferences verifies the client exists and owns the vehicle.
func (s *orderService) checkReferences(ctx context.Context, draft OrderDraft) error {
	if _, err := s.clientRepo.GetClientByID(ctx, draft.ClientID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("%w: client %d does not exist", ErrValidation, draft.ClientID)
		}
		return fmt.Errorf("failed to load client: %w", err)
	}
	vehicle, err := s.vehicleRepo.GetVehicleByID(ctx, draft.CarID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("%w: vehicle %d does not exist", ErrValidation, draft.CarID)
		}
		return fmt.Errorf("failed to load vehicle: %w", err)
	}
	if vehicle.ClientID != draft.ClientID {
		return fmt.Errorf("%w: vehicle %d does not belong to client %d", ErrValidation, draft.CarID, draft.ClientID)
	}
	return nil
}

func (s *orderService) CreateOrder(ctx context.Context, draft OrderDraft) (*models.Order, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, draft); err != nil {
		return nil, err
	}

	order := &models.Order{
		ClientID:     draft.ClientID,
		CarID:        draft.CarID,
		Km:           draft.Km,
		EmployeeName: utils.TrimPtr(draft.EmployeeName),
		IsPaid:       false,
		ArchiveState: models.ArchiveActive,
		Items:        draft.BuildLineItems(),
	}

	id, err := s.orderRepo.CreateOrder(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	return s.GetOrderByID(ctx, id)
}

func (s *orderService) UpdateOrder(ctx context.Context, orderID int64, draft OrderDraft) (*models.Order, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, draft); err != nil {
		return nil, err
	}

	order := &models.Order{
		ID:           orderID,
		ClientID:     draft.ClientID,
		CarID:        draft.CarID,
		Km:           draft.Km,
		EmployeeName: utils.TrimPtr(draft.EmployeeName),
		Items:        draft.BuildLineItems(),
	}
	if err := s.orderRepo.ReplaceOrder(ctx, order); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to update order: %w", err)
	}
	return s.GetOrderByID(ctx, orderID)
}

func (s *orderService) GetOrderByID(ctx context.Context, orderID int64) (*models.Order, error) {
	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order by ID: %w", err)
	}
	return order, nil
}

// GetOrders loads orders and applies the archive filter after the data-access
// boundary has mapped every stored flag to an ArchiveState.
func (s *orderService) GetOrders(ctx context.Context, q OrderQuery) ([]models.Order, error) {
	from, to := DayBounds(q.From, q.To)
	orders, err := s.orderRepo.GetOrders(ctx, models.OrderFilters{
		ClientID: q.ClientID,
		CarID:    q.CarID,
		From:     from,
		To:       to,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get orders: %w", err)
	}
	switch q.Archive {
	case ArchiveFilterAll:
		return orders, nil
	case ArchiveFilterArchived:
		return FilterArchived(orders), nil
	default:
		return FilterActive(orders), nil
	}
}

func (s *orderService) DeleteOrder(ctx context.Context, orderID int64) error {
	if err := s.orderRepo.DeleteOrder(ctx, orderID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("failed to delete order: %w", err)
	}
	return nil
}

func (s *orderService) SetOrderPaid(ctx context.Context, orderID int64, paid bool) (*models.Order, error) {
	if err := s.orderRepo.SetPaid(ctx, orderID, paid); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to update payment status: %w", err)
	}
	return s.GetOrderByID(ctx, orderID)
}

func (s *orderService) RecordServiceDuration(ctx context.Context, orderID int64, seconds int64) error {
	if seconds < 0 {
		seconds = 0
	}
	if err := s.orderRepo.SetServiceDuration(ctx, orderID, seconds); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("failed to record service duration: %w", err)
	}
	return nil
}

// ArchiveDue reports whether an order is still active and was created on an
// earlier local day than now. A missing flag counts as active.
func ArchiveDue(info models.ArchiveInfo, now time.Time) bool {
	return info.ArchiveState != models.ArchiveArchived && timeutil.DateKey(info.CreatedAt) < timeutil.DateKey(now)
}

// ArchiveOldOrders archives every active order created before today.
func (s *orderService) ArchiveOldOrders(ctx context.Context) (int64, error) {
	infos, err := s.orderRepo.GetArchiveInfo(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load orders for archiving: %w", err)
	}
	now := s.now()

	var ids []int64
	for _, info := range infos {
		if ArchiveDue(info, now) {
			ids = append(ids, info.ID)
		}
	}
	if len(ids) == 0 {
		return 0, nil
	}
	n, err := s.orderRepo.ArchiveOrders(ctx, ids, now)
	if err != nil {
		return 0, fmt.Errorf("failed to archive orders: %w", err)
	}
	return n, nil
}

func (s *orderService) UnarchiveOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	if err := s.orderRepo.UnarchiveOrder(ctx, orderID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to unarchive order: %w", err)
	}
	return s.GetOrderByID(ctx, orderID)
}

func (s *orderService) GetOrderDraft(ctx context.Context, orderID int64) (*OrderDraft, error) {
	order, err := s.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	catalog, err := s.catalogRepo.GetServices(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load service catalog: %w", err)
	}
	draft := DraftFromOrder(order, catalog)
	return &draft, nil
}

func (s *orderService) GetDashboard(ctx context.Context, q OrderQuery) (models.DashboardStats, error) {
	orders, err := s.GetOrders(ctx, q)
	if err != nil {
		return models.DashboardStats{}, err
	}
	return CalculateDashboardStats(orders), nil
}

func (s *orderService) GetInvoices(ctx context.Context, q InvoiceQuery) (models.Page[models.Order], error) {
	orders, err := s.GetOrders(ctx, q.OrderQuery)
	if err != nil {
		return models.Page[models.Order]{}, err
	}
	return Paginate(SearchOrders(orders, q.Search), q.Page, q.PageSize), nil
}
