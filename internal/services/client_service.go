package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"auto_service_backend/internal/models"
	"auto_service_backend/internal/repositories"
	"auto_service_backend/pkg/utils"
)

var (
	ErrClientNotFound   = errors.New("client not found")
	ErrVehicleNotFound  = errors.New("vehicle not found")
	ErrClientValidation = errors.New("client data validation error")
)

// --- Client DTOs ---
type CreateClientRequest struct {
	FullName string  `json:"full_name" binding:"required"`
	Phone    *string `json:"phone"`
	Email    *string `json:"email"`
	Address  *string `json:"address"`
}

type UpdateClientRequest struct {
	FullName *string `json:"full_name"`
	Phone    *string `json:"phone"`
	Email    *string `json:"email"`
	Address  *string `json:"address"`
}

type CreateVehicleRequest struct {
	ClientID     int64   `json:"client_id" binding:"required"`
	Make         string  `json:"make" binding:"required"`
	Model        string  `json:"model"`
	Year         *int    `json:"year"`
	Color        *string `json:"color"`
	LicensePlate string  `json:"license_plate"`
	VIN          *string `json:"vin"`
}

// ClientDetail is a client with cars, orders and their totals.
type ClientDetail struct {
	Client   *models.Client       `json:"client"`
	Vehicles []models.Vehicle     `json:"vehicles"`
	Orders   []models.Order       `json:"orders"`
	Summary  models.ClientSummary `json:"summary"`
}

// --- ClientService Interface ---
type ClientService interface {
	CreateClient(ctx context.Context, req CreateClientRequest) (*models.Client, error)
	GetClientByID(ctx context.Context, clientID int64) (*models.Client, error)
	GetClients(ctx context.Context, page, pageSize int, searchTerm string) ([]models.Client, int, error)
	UpdateClient(ctx context.Context, clientID int64, req UpdateClientRequest) (*models.Client, error)
	DeleteClient(ctx context.Context, clientID int64) error
	GetClientDetail(ctx context.Context, clientID int64, carID *int64) (*ClientDetail, error)

	CreateVehicle(ctx context.Context, req CreateVehicleRequest) (*models.Vehicle, error)
	GetVehicles(ctx context.Context, clientID *int64) ([]models.Vehicle, error)
	DeleteVehicle(ctx context.Context, vehicleID int64) error
}

type clientService struct {
	clientRepo  repositories.ClientRepository
	vehicleRepo repositories.VehicleRepository
	orderRepo   repositories.OrderRepository
}

// NewClientService creates a new instance of ClientService.
func NewClientService(cr repositories.ClientRepository, vr repositories.VehicleRepository, or repositories.OrderRepository) ClientService {
	return &clientService{clientRepo: cr, vehicleRepo: vr, orderRepo: or}
}

func validateEmail(email *string) error {
	if email != nil && !utils.IsEmpty(*email) && !utils.IsValidEmail(*email) {
		return fmt.Errorf("%w: email format is invalid", ErrClientValidation)
	}
	return nil
}

func (s *clientService) CreateClient(ctx context.Context, req CreateClientRequest) (*models.Client, error) {
	if utils.IsEmpty(req.FullName) {
		return nil, fmt.Errorf("%w: full name cannot be empty", ErrClientValidation)
	}
	if err := validateEmail(req.Email); err != nil {
		return nil, err
	}

	client := &models.Client{
		FullName: strings.TrimSpace(req.FullName),
		Phone:    utils.TrimPtr(req.Phone),
		Email:    utils.TrimPtr(req.Email),
		Address:  utils.TrimPtr(req.Address),
	}
	if _, err := s.clientRepo.CreateClient(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to create client in repository: %w", err)
	}
	return client, nil
}

func (s *clientService) GetClientByID(ctx context.Context, clientID int64) (*models.Client, error) {
	client, err := s.clientRepo.GetClientByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to get client by ID: %w", err)
	}
	return client, nil
}

func (s *clientService) GetClients(ctx context.Context, page, pageSize int, searchTerm string) ([]models.Client, int, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	clients, totalCount, err := s.clientRepo.GetClients(ctx, page, pageSize, searchTerm)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get clients: %w", err)
	}
	return clients, totalCount, nil
}

func (s *clientService) UpdateClient(ctx context.Context, clientID int64, req UpdateClientRequest) (*models.Client, error) {
	client, err := s.GetClientByID(ctx, clientID)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		if utils.IsEmpty(*req.FullName) {
			return nil, fmt.Errorf("%w: full name cannot be empty if provided", ErrClientValidation)
		}
		client.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Phone != nil {
		client.Phone = utils.TrimPtr(req.Phone)
	}
	if req.Email != nil {
		if err := validateEmail(req.Email); err != nil {
			return nil, err
		}
		client.Email = utils.TrimPtr(req.Email)
	}
	if req.Address != nil {
		client.Address = utils.TrimPtr(req.Address)
	}

	if err := s.clientRepo.UpdateClient(ctx, client); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to update client: %w", err)
	}
	return client, nil
}

// DeleteClient removes the client; the database cascades to cars and orders.
func (s *clientService) DeleteClient(ctx context.Context, clientID int64) error {
	if err := s.clientRepo.DeleteClient(ctx, clientID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrClientNotFound
		}
		return fmt.Errorf("failed to delete client: %w", err)
	}
	return nil
}

func (s *clientService) GetClientDetail(ctx context.Context, clientID int64, carID *int64) (*ClientDetail, error) {
	client, err := s.GetClientByID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	vehicles, err := s.vehicleRepo.GetVehicles(ctx, &clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to get client vehicles: %w", err)
	}
	orders, err := s.orderRepo.GetOrders(ctx, models.OrderFilters{ClientID: &clientID, CarID: carID})
	if err != nil {
		return nil, fmt.Errorf("failed to get client orders: %w", err)
	}
	return &ClientDetail{
		Client:   client,
		Vehicles: vehicles,
		Orders:   orders,
		Summary:  SummarizeClientOrders(orders, carID),
	}, nil
}

func (s *clientService) CreateVehicle(ctx context.Context, req CreateVehicleRequest) (*models.Vehicle, error) {
	if utils.IsEmpty(req.Make) {
		return nil, fmt.Errorf("%w: make cannot be empty", ErrClientValidation)
	}
	if req.Year != nil && (*req.Year < 1900 || *req.Year > time.Now().Year()+1) {
		return nil, fmt.Errorf("%w: year %d is out of range", ErrClientValidation, *req.Year)
	}
	if _, err := s.GetClientByID(ctx, req.ClientID); err != nil {
		return nil, err
	}

	v := &models.Vehicle{
		ClientID:     req.ClientID,
		Make:         strings.TrimSpace(req.Make),
		Model:        strings.TrimSpace(req.Model),
		Year:         req.Year,
		Color:        utils.TrimPtr(req.Color),
		LicensePlate: strings.ToUpper(strings.TrimSpace(req.LicensePlate)),
		VIN:          utils.TrimPtr(req.VIN),
	}
	if _, err := s.vehicleRepo.CreateVehicle(ctx, v); err != nil {
		return nil, fmt.Errorf("failed to create vehicle: %w", err)
	}
	return v, nil
}

func (s *clientService) GetVehicles(ctx context.Context, clientID *int64) ([]models.Vehicle, error) {
	vehicles, err := s.vehicleRepo.GetVehicles(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to get vehicles: %w", err)
	}
	return vehicles, nil
}

func (s *clientService) DeleteVehicle(ctx context.Context, vehicleID int64) error {
	if err := s.vehicleRepo.DeleteVehicle(ctx, vehicleID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrVehicleNotFound
		}
		return fmt.Errorf("failed to delete vehicle: %w", err)
	}
	return nil
}
