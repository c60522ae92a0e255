package repositories

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"auto_service_backend/internal/models"
)

// CatalogRepository covers the two label tables: services and employees.
type CatalogRepository interface {
	GetServices(ctx context.Context) ([]models.Service, error)
	CreateService(ctx context.Context, name string) (*models.Service, error)
	DeleteService(ctx context.Context, id int64) error

	GetEmployees(ctx context.Context) ([]models.Employee, error)
	CreateEmployee(ctx context.Context, name string) (*models.Employee, error)
	DeleteEmployee(ctx context.Context, id int64) error
}

type catalogRepository struct {
	db *sqlx.DB
}

func NewCatalogRepository(db *sqlx.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) GetServices(ctx context.Context) ([]models.Service, error) {
	services := []models.Service{}
	if err := r.db.SelectContext(ctx, &services, `SELECT id, name, created_at FROM services ORDER BY name`); err != nil {
		return nil, wrapDBError(err, "querying services")
	}
	return services, nil
}

func (r *catalogRepository) CreateService(ctx context.Context, name string) (*models.Service, error) {
	svc := &models.Service{}
	err := r.db.GetContext(ctx, svc,
		`INSERT INTO services (name) VALUES ($1) RETURNING id, name, created_at`, name)
	if err != nil {
		return nil, wrapDBError(err, "creating service")
	}
	return svc, nil
}

func (r *catalogRepository) DeleteService(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM services WHERE id = $1`, id)
	if err != nil {
		return wrapDBError(err, fmt.Sprintf("deleting service ID %d", id))
	}
	return expectAffected(result, fmt.Sprintf("deleting service ID %d", id))
}

func (r *catalogRepository) GetEmployees(ctx context.Context) ([]models.Employee, error) {
	employees := []models.Employee{}
	if err := r.db.SelectContext(ctx, &employees, `SELECT id, name, created_at FROM employees ORDER BY name`); err != nil {
		return nil, wrapDBError(err, "querying employees")
	}
	return employees, nil
}

func (r *catalogRepository) CreateEmployee(ctx context.Context, name string) (*models.Employee, error) {
	emp := &models.Employee{}
	err := r.db.GetContext(ctx, emp,
		`INSERT INTO employees (name) VALUES ($1) RETURNING id, name, created_at`, name)
	if err != nil {
		return nil, wrapDBError(err, "creating employee")
	}
	return emp, nil
}

func (r *catalogRepository) DeleteEmployee(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return wrapDBError(err, fmt.Sprintf("deleting employee ID %d", id))
	}
	return expectAffected(result, fmt.Sprintf("deleting employee ID %d", id))
}
