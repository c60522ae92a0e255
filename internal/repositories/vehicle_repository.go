package repositories

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"auto_service_backend/internal/models"
)

// VehicleRepository stores client cars.
type VehicleRepository interface {
	CreateVehicle(ctx context.Context, v *models.Vehicle) (int64, error)
	GetVehicleByID(ctx context.Context, id int64) (*models.Vehicle, error)
	GetVehicles(ctx context.Context, clientID *int64) ([]models.Vehicle, error)
	UpdateVehicle(ctx context.Context, v *models.Vehicle) error
	DeleteVehicle(ctx context.Context, id int64) error
}

type vehicleRepository struct {
	db *sqlx.DB
}

func NewVehicleRepository(db *sqlx.DB) VehicleRepository {
	return &vehicleRepository{db: db}
}

const vehicleColumns = `id, client_id, make, model, year, color, license_plate, vin, created_at`

func (r *vehicleRepository) CreateVehicle(ctx context.Context, v *models.Vehicle) (int64, error) {
	query := `INSERT INTO cars (client_id, make, model, year, color, license_plate, vin)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING id, created_at`
	err := r.db.QueryRowxContext(ctx, query,
		v.ClientID, v.Make, v.Model, v.Year, v.Color, v.LicensePlate, v.VIN,
	).Scan(&v.ID, &v.CreatedAt)
	if err != nil {
		return 0, wrapDBError(err, "creating vehicle")
	}
	return v.ID, nil
}

func (r *vehicleRepository) GetVehicleByID(ctx context.Context, id int64) (*models.Vehicle, error) {
	v := &models.Vehicle{}
	if err := r.db.GetContext(ctx, v, `SELECT `+vehicleColumns+` FROM cars WHERE id = $1`, id); err != nil {
		return nil, wrapDBError(err, fmt.Sprintf("getting vehicle by ID %d", id))
	}
	return v, nil
}

// GetVehicles lists all cars, or only those of one client.
func (r *vehicleRepository) GetVehicles(ctx context.Context, clientID *int64) ([]models.Vehicle, error) {
	vehicles := []models.Vehicle{}
	var err error
	if clientID != nil {
		err = r.db.SelectContext(ctx, &vehicles,
			`SELECT `+vehicleColumns+` FROM cars WHERE client_id = $1 ORDER BY created_at DESC`, *clientID)
	} else {
		err = r.db.SelectContext(ctx, &vehicles,
			`SELECT `+vehicleColumns+` FROM cars ORDER BY created_at DESC`)
	}
	if err != nil {
		return nil, wrapDBError(err, "querying vehicles")
	}
	return vehicles, nil
}

func (r *vehicleRepository) UpdateVehicle(ctx context.Context, v *models.Vehicle) error {
	query := `UPDATE cars SET make = $1, model = $2, year = $3, color = $4, license_plate = $5, vin = $6
	          WHERE id = $7`
	result, err := r.db.ExecContext(ctx, query, v.Make, v.Model, v.Year, v.Color, v.LicensePlate, v.VIN, v.ID)
	if err != nil {
		return wrapDBError(err, fmt.Sprintf("updating vehicle ID %d", v.ID))
	}
	return expectAffected(result, fmt.Sprintf("updating vehicle ID %d", v.ID))
}

func (r *vehicleRepository) DeleteVehicle(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM cars WHERE id = $1`, id)
	if err != nil {
		return wrapDBError(err, fmt.Sprintf("deleting vehicle ID %d", id))
	}
	return expectAffected(result, fmt.Sprintf("deleting vehicle ID %d", id))
}
