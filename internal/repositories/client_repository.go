package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"auto_service_backend/internal/models"
)

// ClientRepository defines the interface for client-related database operations.
type ClientRepository interface {
	CreateClient(ctx context.Context, client *models.Client) (int64, error)
	GetClientByID(ctx context.Context, id int64) (*models.Client, error)
	GetClients(ctx context.Context, page, pageSize int, searchTerm string) ([]models.Client, int, error)
	UpdateClient(ctx context.Context, client *models.Client) error
	DeleteClient(ctx context.Context, id int64) error
}

type clientRepository struct {
	db *sqlx.DB
}

// NewClientRepository creates a new instance of ClientRepository.
func NewClientRepository(db *sqlx.DB) ClientRepository {
	return &clientRepository{db: db}
}

const clientColumns = `id, full_name, phone, email, address, created_at`

// CreateClient inserts a new client into the database.
func (r *clientRepository) CreateClient(ctx context.Context, client *models.Client) (int64, error) {
	query := `INSERT INTO clients (full_name, phone, email, address)
	          VALUES ($1, $2, $3, $4)
	          RETURNING id, created_at`

	err := r.db.QueryRowxContext(ctx, query,
		client.FullName, client.Phone, client.Email, client.Address,
	).Scan(&client.ID, &client.CreatedAt)
	if err != nil {
		return 0, wrapDBError(err, "creating client")
	}
	return client.ID, nil
}

// GetClientByID retrieves a client by their ID.
func (r *clientRepository) GetClientByID(ctx context.Context, id int64) (*models.Client, error) {
	client := &models.Client{}
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1`
	if err := r.db.GetContext(ctx, client, query, id); err != nil {
		return nil, wrapDBError(err, fmt.Sprintf("getting client by ID %d", id))
	}
	return client, nil
}

type clientWithCount struct {
	models.Client
	TotalCount int `db:"total_count"`
}

// GetClients retrieves a page of clients, optionally filtered by name, phone or email.
func (r *clientRepository) GetClients(ctx context.Context, page, pageSize int, searchTerm string) ([]models.Client, int, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + clientColumns + `, COUNT(*) OVER() AS total_count FROM clients`)

	var args []interface{}
	argCount := 1

	if term := strings.TrimSpace(searchTerm); term != "" {
		queryBuilder.WriteString(fmt.Sprintf(
			" WHERE (full_name ILIKE $%d OR phone ILIKE $%d OR email ILIKE $%d)", argCount, argCount, argCount))
		args = append(args, "%"+term+"%")
		argCount++
	}

	queryBuilder.WriteString(" ORDER BY full_name ASC")

	if pageSize > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d", argCount))
		args = append(args, pageSize)
		argCount++
		if page > 1 {
			queryBuilder.WriteString(fmt.Sprintf(" OFFSET $%d", argCount))
			args = append(args, (page-1)*pageSize)
		}
	}

	var rows []clientWithCount
	if err := r.db.SelectContext(ctx, &rows, queryBuilder.String(), args...); err != nil {
		return nil, 0, wrapDBError(err, "querying clients")
	}

	clients := make([]models.Client, 0, len(rows))
	totalCount := 0
	for _, row := range rows {
		clients = append(clients, row.Client)
		totalCount = row.TotalCount
	}
	return clients, totalCount, nil
}

// UpdateClient updates an existing client in the database.
func (r *clientRepository) UpdateClient(ctx context.Context, client *models.Client) error {
	query := `UPDATE clients SET full_name = $1, phone = $2, email = $3, address = $4 WHERE id = $5`
	result, err := r.db.ExecContext(ctx, query,
		client.FullName, client.Phone, client.Email, client.Address, client.ID,
	)
	if err != nil {
		return wrapDBError(err, fmt.Sprintf("updating client ID %d", client.ID))
	}
	return expectAffected(result, fmt.Sprintf("updating client ID %d", client.ID))
}

// DeleteClient removes a client. Vehicles and orders cascade.
func (r *clientRepository) DeleteClient(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM clients WHERE id = $1`, id)
	if err != nil {
		return wrapDBError(err, fmt.Sprintf("deleting client ID %d", id))
	}
	return expectAffected(result, fmt.Sprintf("deleting client ID %d", id))
}
