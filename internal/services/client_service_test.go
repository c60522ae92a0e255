package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auto_service_backend/internal/models"
)

func newClientFixture() (ClientService, *fakeOrderRepo) {
	orders := newFakeOrderRepo(func() time.Time { return now0 })
	clients := newFakeClientRepo(models.Client{ID: 1, FullName: "Arben Krasniqi"})
	vehicles := newFakeVehicleRepo(models.Vehicle{ID: 1, ClientID: 1, Make: "VW"}, models.Vehicle{ID: 2, ClientID: 1, Make: "Audi"})
	return NewClientService(clients, vehicles, orders), orders
}

func TestClientService_CreateClient(t *testing.T) {
	svc, _ := newClientFixture()
	ctx := context.Background()

	phone := " 044 123 456 "
	c, err := svc.CreateClient(ctx, CreateClientRequest{FullName: "  Drita Berisha ", Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, "Drita Berisha", c.FullName)
	assert.Equal(t, "044 123 456", *c.Phone)

	_, err = svc.CreateClient(ctx, CreateClientRequest{FullName: "  "})
	assert.ErrorIs(t, err, ErrClientValidation)

	bad := "not-an-email"
	_, err = svc.CreateClient(ctx, CreateClientRequest{FullName: "X", Email: &bad})
	assert.ErrorIs(t, err, ErrClientValidation)
}

func TestClientService_UpdateAndDelete(t *testing.T) {
	svc, _ := newClientFixture()
	ctx := context.Background()

	name := "Arben K."
	c, err := svc.UpdateClient(ctx, 1, UpdateClientRequest{FullName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Arben K.", c.FullName)

	_, err = svc.UpdateClient(ctx, 9, UpdateClientRequest{FullName: &name})
	assert.ErrorIs(t, err, ErrClientNotFound)

	require.NoError(t, svc.DeleteClient(ctx, 1))
	assert.ErrorIs(t, svc.DeleteClient(ctx, 1), ErrClientNotFound)
}

func TestClientService_GetClientDetail(t *testing.T) {
	svc, orders := newClientFixture()
	ctx := context.Background()
	orders.put(models.Order{ClientID: 1, CarID: 1, IsPaid: true, CreatedAt: now0, Items: []models.OrderItem{line("100", "20")}})
	orders.put(models.Order{ClientID: 1, CarID: 2, CreatedAt: now0, Items: []models.OrderItem{line("40", "0")}})

	detail, err := svc.GetClientDetail(ctx, 1, nil)
	require.NoError(t, err)
	assert.Len(t, detail.Vehicles, 2)
	assert.Len(t, detail.Orders, 2)
	assert.Equal(t, 1, detail.Summary.PaidOrders)
	assertDec(t, "140", detail.Summary.TotalSpent)

	car := int64(2)
	detail, err = svc.GetClientDetail(ctx, 1, &car)
	require.NoError(t, err)
	assert.Equal(t, 1, detail.Summary.TotalOrders)
	assertDec(t, "40", detail.Summary.TotalSpent)

	_, err = svc.GetClientDetail(ctx, 5, nil)
	assert.ErrorIs(t, err, ErrClientNotFound)
}

func TestClientService_Vehicles(t *testing.T) {
	svc, _ := newClientFixture()
	ctx := context.Background()

	year := 2019
	v, err := svc.CreateVehicle(ctx, CreateVehicleRequest{ClientID: 1, Make: "Opel", Model: "Astra", Year: &year, LicensePlate: " 01-abc-12 "})
	require.NoError(t, err)
	assert.Equal(t, "01-ABC-12", v.LicensePlate)

	_, err = svc.CreateVehicle(ctx, CreateVehicleRequest{ClientID: 42, Make: "Opel"})
	assert.ErrorIs(t, err, ErrClientNotFound)

	old := 1800
	_, err = svc.CreateVehicle(ctx, CreateVehicleRequest{ClientID: 1, Make: "Ford", Year: &old})
	assert.ErrorIs(t, err, ErrClientValidation)

	clientID := int64(1)
	list, err := svc.GetVehicles(ctx, &clientID)
	require.NoError(t, err)
	assert.Len(t, list, 3)

	require.NoError(t, svc.DeleteVehicle(ctx, v.ID))
	assert.ErrorIs(t, svc.DeleteVehicle(ctx, v.ID), ErrVehicleNotFound)
}
