package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"auto_service_backend/internal/models"
	"auto_service_backend/internal/repositories"
)

var (
	ErrCatalogEntryNotFound = errors.New("catalog entry not found")
	ErrCatalogEntryExists   = errors.New("catalog entry already exists")
)

type CreateCatalogEntryRequest struct {
	Name string `json:"name" binding:"required"`
}

// CatalogService manages service names and employee names.
type CatalogService interface {
	GetServices(ctx context.Context) ([]models.Service, error)
	CreateService(ctx context.Context, req CreateCatalogEntryRequest) (*models.Service, error)
	DeleteService(ctx context.Context, id int64) error

	GetEmployees(ctx context.Context) ([]models.Employee, error)
	CreateEmployee(ctx context.Context, req CreateCatalogEntryRequest) (*models.Employee, error)
	DeleteEmployee(ctx context.Context, id int64) error
}

type catalogService struct {
	repo repositories.CatalogRepository
}

func NewCatalogService(repo repositories.CatalogRepository) CatalogService {
	return &catalogService{repo: repo}
}

func catalogError(err error, action string) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return ErrCatalogEntryNotFound
	case errors.Is(err, repositories.ErrDuplicateKey):
		return ErrCatalogEntryExists
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: name cannot be empty", ErrValidation)
	}
	return name, nil
}

func (s *catalogService) GetServices(ctx context.Context) ([]models.Service, error) {
	services, err := s.repo.GetServices(ctx)
	if err != nil {
		return nil, catalogError(err, "get services")
	}
	return services, nil
}

func (s *catalogService) CreateService(ctx context.Context, req CreateCatalogEntryRequest) (*models.Service, error) {
	name, err := cleanName(req.Name)
	if err != nil {
		return nil, err
	}
	svc, err := s.repo.CreateService(ctx, name)
	if err != nil {
		return nil, catalogError(err, "create service")
	}
	return svc, nil
}

// DeleteService removes a catalog entry. Order lines keep their copied name.
func (s *catalogService) DeleteService(ctx context.Context, id int64) error {
	if err := s.repo.DeleteService(ctx, id); err != nil {
		return catalogError(err, "delete service")
	}
	return nil
}

func (s *catalogService) GetEmployees(ctx context.Context) ([]models.Employee, error) {
	employees, err := s.repo.GetEmployees(ctx)
	if err != nil {
		return nil, catalogError(err, "get employees")
	}
	return employees, nil
}

func (s *catalogService) CreateEmployee(ctx context.Context, req CreateCatalogEntryRequest) (*models.Employee, error) {
	name, err := cleanName(req.Name)
	if err != nil {
		return nil, err
	}
	emp, err := s.repo.CreateEmployee(ctx, name)
	if err != nil {
		return nil, catalogError(err, "create employee")
	}
	return emp, nil
}

func (s *catalogService) DeleteEmployee(ctx context.Context, id int64) error {
	if err := s.repo.DeleteEmployee(ctx, id); err != nil {
		return catalogError(err, "delete employee")
	}
	return nil
}
