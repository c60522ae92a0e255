package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"auto_service_backend/internal/models"
	"auto_service_backend/internal/repositories"
)

var errStoreDown = errors.New("store unavailable")

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[int64]*models.Order
	nextID int64
	now    func() time.Time

	failCreate   bool
	failDuration bool
}

func newFakeOrderRepo(now func() time.Time) *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[int64]*models.Order), now: now}
}

func copyOrder(o *models.Order) models.Order {
	out := *o
	out.Items = append([]models.OrderItem(nil), o.Items...)
	return out
}

// put stores o as is and returns its id.
func (r *fakeOrderRepo) put(o models.Order) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o.ID == 0 {
		r.nextID++
		o.ID = r.nextID
	} else if o.ID > r.nextID {
		r.nextID = o.ID
	}
	if o.ArchiveState == "" {
		o.ArchiveState = models.ArchiveActive
	}
	r.orders[o.ID] = &o
	return o.ID
}

func (r *fakeOrderRepo) CreateOrder(_ context.Context, order *models.Order) (int64, error) {
	if r.failCreate {
		return 0, errStoreDown
	}
	o := copyOrder(order)
	o.ID = 0
	o.CreatedAt = r.now()
	for i := range o.Items {
		o.Items[i].ID = int64(i + 1)
	}
	order.ID = r.put(o)
	return order.ID, nil
}

func (r *fakeOrderRepo) ReplaceOrder(_ context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.orders[order.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	cur.ClientID = order.ClientID
	cur.CarID = order.CarID
	cur.Km = order.Km
	cur.EmployeeName = order.EmployeeName
	cur.Items = append([]models.OrderItem(nil), order.Items...)
	return nil
}

func (r *fakeOrderRepo) GetOrderByID(_ context.Context, id int64) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	out := copyOrder(o)
	return &out, nil
}

func (r *fakeOrderRepo) GetOrders(_ context.Context, f models.OrderFilters) ([]models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Order
	for _, o := range r.orders {
		if f.ClientID != nil && o.ClientID != *f.ClientID {
			continue
		}
		if f.CarID != nil && o.CarID != *f.CarID {
			continue
		}
		if f.From != nil && o.CreatedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && o.CreatedAt.After(*f.To) {
			continue
		}
		out = append(out, copyOrder(o))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *fakeOrderRepo) DeleteOrder(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.orders, id)
	return nil
}

func (r *fakeOrderRepo) SetPaid(_ context.Context, id int64, paid bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return repositories.ErrNotFound
	}
	o.IsPaid = paid
	return nil
}

func (r *fakeOrderRepo) SetServiceDuration(_ context.Context, id int64, seconds int64) error {
	if r.failDuration {
		return errStoreDown
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return repositories.ErrNotFound
	}
	o.ServiceDuration = &seconds
	return nil
}

func (r *fakeOrderRepo) GetArchiveInfo(_ context.Context) ([]models.ArchiveInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.ArchiveInfo
	for _, o := range r.orders {
		out = append(out, models.ArchiveInfo{ID: o.ID, CreatedAt: o.CreatedAt, ArchiveState: o.ArchiveState})
	}
	return out, nil
}

func (r *fakeOrderRepo) ArchiveOrders(_ context.Context, ids []int64, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, id := range ids {
		o, ok := r.orders[id]
		if !ok || o.IsArchived() {
			continue
		}
		o.ArchiveState = models.ArchiveArchived
		ts := at
		o.ArchivedAt = &ts
		n++
	}
	return n, nil
}

func (r *fakeOrderRepo) UnarchiveOrder(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return repositories.ErrNotFound
	}
	o.ArchiveState = models.ArchiveActive
	o.ArchivedAt = nil
	return nil
}

type fakeClientRepo struct {
	clients map[int64]*models.Client
	nextID  int64
}

func newFakeClientRepo(clients ...models.Client) *fakeClientRepo {
	r := &fakeClientRepo{clients: make(map[int64]*models.Client)}
	for _, c := range clients {
		c := c
		r.clients[c.ID] = &c
		if c.ID > r.nextID {
			r.nextID = c.ID
		}
	}
	return r
}

func (r *fakeClientRepo) CreateClient(_ context.Context, c *models.Client) (int64, error) {
	r.nextID++
	c.ID = r.nextID
	cp := *c
	r.clients[c.ID] = &cp
	return c.ID, nil
}

func (r *fakeClientRepo) GetClientByID(_ context.Context, id int64) (*models.Client, error) {
	c, ok := r.clients[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeClientRepo) GetClients(_ context.Context, page, pageSize int, term string) ([]models.Client, int, error) {
	var all []models.Client
	for _, c := range r.clients {
		if term == "" || strings.Contains(strings.ToLower(c.FullName), strings.ToLower(term)) {
			all = append(all, *c)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	p := Paginate(all, page, pageSize)
	return p.Data, p.Total, nil
}

func (r *fakeClientRepo) UpdateClient(_ context.Context, c *models.Client) error {
	if _, ok := r.clients[c.ID]; !ok {
		return repositories.ErrNotFound
	}
	cp := *c
	r.clients[c.ID] = &cp
	return nil
}

func (r *fakeClientRepo) DeleteClient(_ context.Context, id int64) error {
	if _, ok := r.clients[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.clients, id)
	return nil
}

type fakeVehicleRepo struct {
	vehicles map[int64]*models.Vehicle
	nextID   int64
}

func newFakeVehicleRepo(vehicles ...models.Vehicle) *fakeVehicleRepo {
	r := &fakeVehicleRepo{vehicles: make(map[int64]*models.Vehicle)}
	for _, v := range vehicles {
		v := v
		r.vehicles[v.ID] = &v
		if v.ID > r.nextID {
			r.nextID = v.ID
		}
	}
	return r
}

func (r *fakeVehicleRepo) CreateVehicle(_ context.Context, v *models.Vehicle) (int64, error) {
	r.nextID++
	v.ID = r.nextID
	cp := *v
	r.vehicles[v.ID] = &cp
	return v.ID, nil
}

func (r *fakeVehicleRepo) GetVehicleByID(_ context.Context, id int64) (*models.Vehicle, error) {
	v, ok := r.vehicles[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (r *fakeVehicleRepo) GetVehicles(_ context.Context, clientID *int64) ([]models.Vehicle, error) {
	var out []models.Vehicle
	for _, v := range r.vehicles {
		if clientID == nil || v.ClientID == *clientID {
			out = append(out, *v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeVehicleRepo) UpdateVehicle(_ context.Context, v *models.Vehicle) error {
	if _, ok := r.vehicles[v.ID]; !ok {
		return repositories.ErrNotFound
	}
	cp := *v
	r.vehicles[v.ID] = &cp
	return nil
}

func (r *fakeVehicleRepo) DeleteVehicle(_ context.Context, id int64) error {
	if _, ok := r.vehicles[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.vehicles, id)
	return nil
}

type fakeCatalogRepo struct {
	services  []models.Service
	employees []models.Employee
}

func (r *fakeCatalogRepo) GetServices(context.Context) ([]models.Service, error) {
	return r.services, nil
}

func (r *fakeCatalogRepo) CreateService(_ context.Context, name string) (*models.Service, error) {
	for _, s := range r.services {
		if s.Name == name {
			return nil, repositories.ErrDuplicateKey
		}
	}
	s := models.Service{ID: int64(len(r.services) + 1), Name: name}
	r.services = append(r.services, s)
	return &s, nil
}

func (r *fakeCatalogRepo) DeleteService(_ context.Context, id int64) error {
	for i, s := range r.services {
		if s.ID == id {
			r.services = append(r.services[:i], r.services[i+1:]...)
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (r *fakeCatalogRepo) GetEmployees(context.Context) ([]models.Employee, error) {
	return r.employees, nil
}

func (r *fakeCatalogRepo) CreateEmployee(_ context.Context, name string) (*models.Employee, error) {
	e := models.Employee{ID: int64(len(r.employees) + 1), Name: name}
	r.employees = append(r.employees, e)
	return &e, nil
}

func (r *fakeCatalogRepo) DeleteEmployee(_ context.Context, id int64) error {
	for i, e := range r.employees {
		if e.ID == id {
			r.employees = append(r.employees[:i], r.employees[i+1:]...)
			return nil
		}
	}
	return repositories.ErrNotFound
}

type fakeDailyLogRepo struct {
	logs   []models.DailyLog
	nextID int64
}

func (r *fakeDailyLogRepo) CreateLog(_ context.Context, entry *models.DailyLog) (int64, error) {
	r.nextID++
	entry.ID = r.nextID
	r.logs = append(r.logs, *entry)
	return entry.ID, nil
}

func (r *fakeDailyLogRepo) GetLogs(_ context.Context, from, to string) ([]models.DailyLog, error) {
	var out []models.DailyLog
	for _, l := range r.logs {
		if from != "" && l.LogDate < from {
			continue
		}
		if to != "" && l.LogDate > to {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func (r *fakeDailyLogRepo) DeleteLog(_ context.Context, id int64) error {
	for i, l := range r.logs {
		if l.ID == id {
			r.logs = append(r.logs[:i], r.logs[i+1:]...)
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (r *fakeDailyLogRepo) GetAutoReportDates(context.Context) (map[string]bool, error) {
	out := make(map[string]bool)
	for _, l := range r.logs {
		if l.IsAutoReport() {
			out[l.LogDate] = true
		}
	}
	return out, nil
}
