package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auto_service_backend/internal/models"
)

var now0 = time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

type orderFixture struct {
	svc     OrderService
	orders  *fakeOrderRepo
	catalog *fakeCatalogRepo
	now     time.Time
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	f := &orderFixture{now: now0}
	clock := func() time.Time { return f.now }
	f.orders = newFakeOrderRepo(clock)
	f.catalog = &fakeCatalogRepo{services: []models.Service{{ID: 1, Name: "Ndërrim vaji"}}}
	clients := newFakeClientRepo(models.Client{ID: 1, FullName: "Arben Krasniqi"}, models.Client{ID: 2, FullName: "Drita Berisha"})
	vehicles := newFakeVehicleRepo(models.Vehicle{ID: 1, ClientID: 1, Make: "VW"}, models.Vehicle{ID: 2, ClientID: 2, Make: "Audi"})

	svc := NewOrderService(f.orders, clients, vehicles, f.catalog)
	svc.(*orderService).now = clock
	f.svc = svc
	return f
}

func TestOrderService_CreateOrder_ScenarioA(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	order, err := f.svc.CreateOrder(ctx, oilChangeDraft())
	require.NoError(t, err)
	assert.NotZero(t, order.ID)
	assert.False(t, order.IsPaid)
	assert.Equal(t, models.ArchiveActive, order.ArchiveState)
	require.Len(t, order.Items, 1)

	breakdown := OrderBreakdown(order)
	assertDec(t, "10", breakdown.PartsCost)
	assertDec(t, "30", breakdown.PartsSold)
	assertDec(t, "50", breakdown.Total)
	assertDec(t, "40", breakdown.Profit)

	assertDec(t, "50", CalculateOrderTotal(order))
	assertDec(t, "40", CalculateOrderProfit(order))
}

func TestOrderService_ScenarioB_EmptyOrder(t *testing.T) {
	f := newOrderFixture(t)
	id := f.orders.put(models.Order{ClientID: 1, CarID: 1, CreatedAt: now0})

	order, err := f.svc.GetOrderByID(context.Background(), id)
	require.NoError(t, err)
	assertDec(t, "0", CalculateOrderTotal(order))
	assertDec(t, "0", CalculateOrderProfit(order))
}

func TestOrderService_CreateOrder_Rejects(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateOrder(ctx, NewOrderDraft(1, 2))
	assert.ErrorIs(t, err, ErrValidation, "vehicle of another client")

	_, err = f.svc.CreateOrder(ctx, NewOrderDraft(99, 1))
	assert.ErrorIs(t, err, ErrValidation, "unknown client")

	_, err = f.svc.CreateOrder(ctx, NewOrderDraft(1, 99))
	assert.ErrorIs(t, err, ErrValidation, "unknown vehicle")

	f.orders.failCreate = true
	_, err = f.svc.CreateOrder(ctx, NewOrderDraft(1, 1))
	assert.ErrorIs(t, err, errStoreDown)
	assert.Empty(t, f.orders.orders)
}

func TestOrderService_UpdateOrder_ReplacesItems(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	order, err := f.svc.CreateOrder(ctx, oilChangeDraft().AddService().SetLaborCost(1, dec("5")))
	require.NoError(t, err)
	require.Len(t, order.Items, 2)

	draft, err := f.svc.GetOrderDraft(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, draft.Services[0].ServiceID, "linked to catalog by name")

	edited := draft.RemoveService(1).SetLaborCost(0, dec("30"))
	updated, err := f.svc.UpdateOrder(ctx, order.ID, edited)
	require.NoError(t, err)
	require.Len(t, updated.Items, 1)
	assertDec(t, "60", CalculateOrderTotal(updated))

	_, err = f.svc.UpdateOrder(ctx, 404, edited)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestOrderService_SetPaidAndDelete(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	order, err := f.svc.CreateOrder(ctx, oilChangeDraft())
	require.NoError(t, err)

	paid, err := f.svc.SetOrderPaid(ctx, order.ID, true)
	require.NoError(t, err)
	assert.True(t, paid.IsPaid)
	assert.Equal(t, models.ArchiveActive, paid.ArchiveState)

	require.NoError(t, f.svc.DeleteOrder(ctx, order.ID))
	_, err = f.svc.GetOrderByID(ctx, order.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)
	assert.ErrorIs(t, f.svc.DeleteOrder(ctx, order.ID), ErrOrderNotFound)
}

func TestOrderService_ArchiveOldOrders(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	old := f.orders.put(models.Order{ClientID: 1, CarID: 1, CreatedAt: now0.Add(-25 * time.Hour)})
	lastNight := f.orders.put(models.Order{ClientID: 1, CarID: 1, CreatedAt: time.Date(2026, 3, 9, 23, 30, 0, 0, time.UTC)})
	recent := f.orders.put(models.Order{ClientID: 1, CarID: 1, CreatedAt: time.Date(2026, 3, 10, 0, 15, 0, 0, time.UTC)})
	f.orders.put(models.Order{ClientID: 1, CarID: 1, CreatedAt: now0.Add(-48 * time.Hour), ArchiveState: models.ArchiveArchived})

	n, err := f.svc.ArchiveOldOrders(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	o, _ := f.svc.GetOrderByID(ctx, lastNight)
	assert.True(t, o.IsArchived(), "yesterday's order is archived even if under 24h old")

	o, _ = f.svc.GetOrderByID(ctx, old)
	assert.True(t, o.IsArchived())
	require.NotNil(t, o.ArchivedAt)
	assert.True(t, o.ArchivedAt.Equal(now0))

	o, _ = f.svc.GetOrderByID(ctx, recent)
	assert.False(t, o.IsArchived())

	n, err = f.svc.ArchiveOldOrders(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	restored, err := f.svc.UnarchiveOrder(ctx, old)
	require.NoError(t, err)
	assert.False(t, restored.IsArchived())
	assert.Nil(t, restored.ArchivedAt)
}

func TestArchiveDue(t *testing.T) {
	now := time.Date(2026, 3, 10, 2, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		info models.ArchiveInfo
		want bool
	}{
		{"yesterday evening", models.ArchiveInfo{CreatedAt: time.Date(2026, 3, 9, 23, 30, 0, 0, time.UTC), ArchiveState: models.ArchiveActive}, true},
		{"missing flag", models.ArchiveInfo{CreatedAt: time.Date(2026, 3, 9, 23, 30, 0, 0, time.UTC)}, true},
		{"today", models.ArchiveInfo{CreatedAt: time.Date(2026, 3, 10, 0, 5, 0, 0, time.UTC), ArchiveState: models.ArchiveActive}, false},
		{"already archived", models.ArchiveInfo{CreatedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC), ArchiveState: models.ArchiveArchived}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ArchiveDue(tt.info, now))
		})
	}
}

func TestOrderService_GetOrders_ArchiveFilter(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	f.orders.put(models.Order{ClientID: 1, CarID: 1, CreatedAt: now0})
	f.orders.put(models.Order{ClientID: 1, CarID: 1, CreatedAt: now0, ArchiveState: models.ArchiveArchived})

	active, err := f.svc.GetOrders(ctx, OrderQuery{Archive: ParseArchiveFilter("")})
	require.NoError(t, err)
	assert.Len(t, active, 1)

	archived, err := f.svc.GetOrders(ctx, OrderQuery{Archive: ArchiveFilterArchived})
	require.NoError(t, err)
	assert.Len(t, archived, 1)

	all, err := f.svc.GetOrders(ctx, OrderQuery{Archive: ArchiveFilterAll})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestOrderService_DashboardAndInvoices(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	for i := 0; i < 12; i++ {
		_, err := f.svc.CreateOrder(ctx, oilChangeDraft())
		require.NoError(t, err)
	}
	yesterday := now0.AddDate(0, 0, -1)
	f.orders.put(models.Order{ClientID: 2, CarID: 2, CreatedAt: yesterday})

	today := now0
	stats, err := f.svc.GetDashboard(ctx, OrderQuery{From: &today, To: &today})
	require.NoError(t, err)
	assert.Equal(t, 12, stats.OrderCount)
	assert.Equal(t, 12, stats.PendingOrders)
	assertDec(t, "600", stats.TotalRevenue)
	assertDec(t, "480", stats.NetProfit)

	page, err := f.svc.GetInvoices(ctx, InvoiceQuery{Page: 2})
	require.NoError(t, err)
	assert.Equal(t, 13, page.Total)
	assert.Len(t, page.Data, 3)
	assert.Equal(t, DefaultPageSize, page.PageSize)
}

func TestOrderService_RecordServiceDuration(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	id := f.orders.put(models.Order{ClientID: 1, CarID: 1, CreatedAt: now0})

	require.NoError(t, f.svc.RecordServiceDuration(ctx, id, 90))
	o, _ := f.svc.GetOrderByID(ctx, id)
	require.NotNil(t, o.ServiceDuration)
	assert.Equal(t, int64(90), *o.ServiceDuration)

	assert.ErrorIs(t, f.svc.RecordServiceDuration(ctx, 404, 1), ErrOrderNotFound)
}
