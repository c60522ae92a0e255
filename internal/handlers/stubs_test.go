package handlers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"auto_service_backend/internal/liftboard"
	"auto_service_backend/internal/maintenance"
	"auto_service_backend/internal/models"
	"auto_service_backend/internal/services"
)

type stubOrderService struct {
	mu       sync.Mutex
	orders   map[int64]*models.Order
	nextID   int64
	lastQ    services.OrderQuery
	lastInvQ services.InvoiceQuery
	err      error
}

func newStubOrderService(orders ...models.Order) *stubOrderService {
	s := &stubOrderService{orders: map[int64]*models.Order{}, nextID: 100}
	for i := range orders {
		o := orders[i]
		s.orders[o.ID] = &o
	}
	return s
}

func (s *stubOrderService) get(id int64) (*models.Order, error) {
	if s.err != nil {
		return nil, s.err
	}
	o, ok := s.orders[id]
	if !ok {
		return nil, services.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (s *stubOrderService) CreateOrder(_ context.Context, d services.OrderDraft) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if s.err != nil {
		return nil, s.err
	}
	s.nextID++
	o := &models.Order{ID: s.nextID, ClientID: d.ClientID, CarID: d.CarID, Items: d.BuildLineItems(), ArchiveState: models.ArchiveActive}
	s.orders[o.ID] = o
	return s.get(o.ID)
}

func (s *stubOrderService) UpdateOrder(_ context.Context, id int64, d services.OrderDraft) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := d.Validate(); err != nil {
		return nil, err
	}
	o, err := s.get(id)
	if err != nil {
		return nil, err
	}
	o.Items = d.BuildLineItems()
	s.orders[id] = o
	return o, nil
}

func (s *stubOrderService) GetOrderByID(_ context.Context, id int64) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(id)
}

func (s *stubOrderService) GetOrders(_ context.Context, q services.OrderQuery) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastQ = q
	if s.err != nil {
		return nil, s.err
	}
	var out []models.Order
	for _, o := range s.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (s *stubOrderService) DeleteOrder(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.get(id); err != nil {
		return err
	}
	delete(s.orders, id)
	return nil
}

func (s *stubOrderService) SetOrderPaid(_ context.Context, id int64, paid bool) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.get(id); err != nil {
		return nil, err
	}
	s.orders[id].IsPaid = paid
	return s.get(id)
}

func (s *stubOrderService) RecordServiceDuration(_ context.Context, id int64, seconds int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.get(id); err != nil {
		return err
	}
	s.orders[id].ServiceDuration = &seconds
	return nil
}

func (s *stubOrderService) ArchiveOldOrders(context.Context) (int64, error) {
	return 2, s.err
}

func (s *stubOrderService) UnarchiveOrder(ctx context.Context, id int64) (*models.Order, error) {
	return s.GetOrderByID(ctx, id)
}

func (s *stubOrderService) GetOrderDraft(ctx context.Context, id int64) (*services.OrderDraft, error) {
	o, err := s.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	d := services.DraftFromOrder(o, nil)
	return &d, nil
}

func (s *stubOrderService) GetDashboard(ctx context.Context, q services.OrderQuery) (models.DashboardStats, error) {
	orders, err := s.GetOrders(ctx, q)
	if err != nil {
		return models.DashboardStats{}, err
	}
	return services.CalculateDashboardStats(orders), nil
}

func (s *stubOrderService) GetInvoices(ctx context.Context, q services.InvoiceQuery) (models.Page[models.Order], error) {
	s.mu.Lock()
	s.lastInvQ = q
	s.mu.Unlock()
	orders, err := s.GetOrders(ctx, q.OrderQuery)
	if err != nil {
		return models.Page[models.Order]{}, err
	}
	return services.Paginate(services.SearchOrders(orders, q.Search), q.Page, q.PageSize), nil
}

type stubLiftService struct {
	held    *liftboard.Slot
	err     error
	updates chan liftboard.Board
}

func (s *stubLiftService) ListLifts(context.Context) ([]services.LiftView, error) {
	views := make([]services.LiftView, liftboard.SlotCount)
	for i := range views {
		views[i].Slot = i
	}
	return views, s.err
}

func (s *stubLiftService) StartService(_ context.Context, slot int, d services.OrderDraft) (*services.LiftView, error) {
	if s.err != nil {
		return nil, s.err
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &services.LiftView{Slot: slot, Occupied: true}, nil
}

func (s *stubLiftService) CompleteService(_ context.Context, slot int) (*services.CompletedService, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &services.CompletedService{Slot: slot, OrderID: 7, DurationSeconds: 125}, nil
}

func (s *stubLiftService) SlotState(context.Context, int) (*liftboard.Slot, error) {
	return s.held, s.err
}

func (s *stubLiftService) Subscribe() (<-chan liftboard.Board, func()) {
	if s.updates != nil {
		return s.updates, func() {}
	}
	ch := make(chan liftboard.Board)
	var once sync.Once
	return ch, func() { once.Do(func() { close(ch) }) }
}

type stubCatalogService struct {
	names map[string]bool
}

func (s *stubCatalogService) GetServices(context.Context) ([]models.Service, error) {
	return nil, nil
}

func (s *stubCatalogService) CreateService(_ context.Context, req services.CreateCatalogEntryRequest) (*models.Service, error) {
	if s.names[req.Name] {
		return nil, services.ErrCatalogEntryExists
	}
	s.names[req.Name] = true
	return &models.Service{ID: int64(len(s.names)), Name: req.Name}, nil
}

func (s *stubCatalogService) DeleteService(_ context.Context, id int64) error {
	if id != 1 {
		return services.ErrCatalogEntryNotFound
	}
	return nil
}

func (s *stubCatalogService) GetEmployees(context.Context) ([]models.Employee, error) {
	return []models.Employee{{ID: 1, Name: "Besnik"}}, nil
}

func (s *stubCatalogService) CreateEmployee(_ context.Context, req services.CreateCatalogEntryRequest) (*models.Employee, error) {
	return &models.Employee{ID: 2, Name: req.Name}, nil
}

func (s *stubCatalogService) DeleteEmployee(context.Context, int64) error {
	return fmt.Errorf("connection reset")
}

type stubLogService struct {
	created []services.CreateLogRequest
	emails  []string
	queries []services.LogQuery
}

func (s *stubLogService) CreateLog(_ context.Context, req services.CreateLogRequest, email string) (*models.DailyLog, error) {
	if req.Description == models.AutoReportMarker {
		return nil, fmt.Errorf("%w: reserved", services.ErrValidation)
	}
	s.created = append(s.created, req)
	s.emails = append(s.emails, email)
	return &models.DailyLog{ID: 1, LogDate: req.LogDate, Description: req.Description}, nil
}

func (s *stubLogService) GetLogs(_ context.Context, q services.LogQuery) ([]models.DailyLog, error) {
	s.queries = append(s.queries, q)
	return nil, nil
}

func (s *stubLogService) DeleteLog(_ context.Context, id int64) error {
	if id != 1 {
		return services.ErrLogNotFound
	}
	return nil
}

type stubRunner struct {
	forced []bool
	err    error
}

func (r *stubRunner) RunAll(_ context.Context, force bool) (maintenance.RunResult, error) {
	r.forced = append(r.forced, force)
	return maintenance.RunResult{Archive: maintenance.SweepResult{ArchivedCount: 3}}, r.err
}

func sampleOrder(id int64) models.Order {
	desc := "Filter (1x)"
	return models.Order{
		ID:           id,
		ClientID:     1,
		CarID:        1,
		ArchiveState: models.ArchiveActive,
		CreatedAt:    time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC),
		Client:       &models.Client{ID: 1, FullName: "Arben Krasniqi"},
		Vehicle:      &models.Vehicle{ID: 1, Make: "VW", Model: "Golf", LicensePlate: "01-234-AB"},
		Items: []models.OrderItem{{
			ServiceName: "Ndërrim vaji",
			Description: &desc,
			Quantity:    1,
			UnitPrice:   decimal.NewFromInt(35),
			LaborCost:   decimal.NewFromInt(20),
			PartsCost:   decimal.NewFromInt(5),
			Parts:       models.PartList{{Name: "Filter", Quantity: decimal.NewFromInt(1), BuyPrice: decimal.NewFromInt(5), SellPrice: decimal.NewFromInt(15)}},
		}},
	}
}
