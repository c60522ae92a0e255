package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"auto_service_backend/internal/models"
)

// OrderRepository defines the interface for order-related database operations.
type OrderRepository interface {
	// CreateOrder writes the order and its items in one transaction.
	CreateOrder(ctx context.Context, order *models.Order) (int64, error)
	// ReplaceOrder updates scalar fields and swaps all items in one transaction.
	ReplaceOrder(ctx context.Context, order *models.Order) error
	GetOrderByID(ctx context.Context, orderID int64) (*models.Order, error)
	GetOrders(ctx context.Context, filters models.OrderFilters) ([]models.Order, error)
	DeleteOrder(ctx context.Context, orderID int64) error

	SetPaid(ctx context.Context, orderID int64, paid bool) error
	SetServiceDuration(ctx context.Context, orderID int64, seconds int64) error

	GetArchiveInfo(ctx context.Context) ([]models.ArchiveInfo, error)
	ArchiveOrders(ctx context.Context, orderIDs []int64, at time.Time) (int64, error)
	UnarchiveOrder(ctx context.Context, orderID int64) error
}

type orderRepository struct {
	db *sqlx.DB
}

// NewOrderRepository creates a new instance of OrderRepository.
func NewOrderRepository(db *sqlx.DB) OrderRepository {
	return &orderRepository{db: db}
}

// orderRow is one orders row joined with its client and car.
type orderRow struct {
	ID              int64          `db:"id"`
	ClientID        int64          `db:"client_id"`
	CarID           int64          `db:"car_id"`
	Km              sql.NullInt64  `db:"km"`
	EmployeeName    sql.NullString `db:"employee_name"`
	IsPaid          sql.NullBool   `db:"is_paid"`
	IsArchived      sql.NullBool   `db:"is_archived"`
	ArchivedAt      sql.NullTime   `db:"archived_at"`
	ServiceDuration sql.NullInt64  `db:"service_duration"`
	CreatedAt       time.Time      `db:"created_at"`

	ClientName    sql.NullString `db:"client_full_name"`
	ClientPhone   sql.NullString `db:"client_phone"`
	ClientEmail   sql.NullString `db:"client_email"`
	ClientAddress sql.NullString `db:"client_address"`

	CarMake  sql.NullString `db:"car_make"`
	CarModel sql.NullString `db:"car_model"`
	CarYear  sql.NullInt64  `db:"car_year"`
	CarColor sql.NullString `db:"car_color"`
	CarPlate sql.NullString `db:"car_license_plate"`
	CarVIN   sql.NullString `db:"car_vin"`
}

const orderSelect = `
	SELECT
		o.id, o.client_id, o.car_id, o.km, o.employee_name, o.is_paid, o.is_archived,
		o.archived_at, o.service_duration, o.created_at,
		c.full_name AS client_full_name, c.phone AS client_phone,
		c.email AS client_email, c.address AS client_address,
		v.make AS car_make, v.model AS car_model, v.year AS car_year, v.color AS car_color,
		v.license_plate AS car_license_plate, v.vin AS car_vin
	FROM orders o
	LEFT JOIN clients c ON o.client_id = c.id
	LEFT JOIN cars v ON o.car_id = v.id`

func nullStr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullInt(ni sql.NullInt64) *int64 {
	if !ni.Valid {
		return nil
	}
	n := ni.Int64
	return &n
}

func (row orderRow) toModel() models.Order {
	order := models.Order{
		ID:              row.ID,
		ClientID:        row.ClientID,
		CarID:           row.CarID,
		Km:              nullInt(row.Km),
		EmployeeName:    nullStr(row.EmployeeName),
		IsPaid:          row.IsPaid.Valid && row.IsPaid.Bool,
		ArchiveState:    models.ArchiveStateFromFlag(row.IsArchived),
		ServiceDuration: nullInt(row.ServiceDuration),
		CreatedAt:       row.CreatedAt,
		Items:           []models.OrderItem{},
	}
	if row.ArchivedAt.Valid {
		t := row.ArchivedAt.Time
		order.ArchivedAt = &t
	}
	if row.ClientName.Valid {
		order.Client = &models.Client{
			ID:       row.ClientID,
			FullName: row.ClientName.String,
			Phone:    nullStr(row.ClientPhone),
			Email:    nullStr(row.ClientEmail),
			Address:  nullStr(row.ClientAddress),
		}
	}
	if row.CarMake.Valid {
		v := &models.Vehicle{
			ID:           row.CarID,
			ClientID:     row.ClientID,
			Make:         row.CarMake.String,
			Model:        row.CarModel.String,
			Color:        nullStr(row.CarColor),
			LicensePlate: row.CarPlate.String,
			VIN:          nullStr(row.CarVIN),
		}
		if row.CarYear.Valid {
			y := int(row.CarYear.Int64)
			v.Year = &y
		}
		order.Vehicle = v
	}
	return order
}

func (r *orderRepository) CreateOrder(ctx context.Context, order *models.Order) (int64, error) {
	query := `INSERT INTO orders (client_id, car_id, km, employee_name, is_paid, is_archived)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING id, created_at`

	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		err := tx.QueryRowxContext(ctx, query,
			order.ClientID, order.CarID, order.Km, order.EmployeeName, order.IsPaid, order.ArchiveState.Flag(),
		).Scan(&order.ID, &order.CreatedAt)
		if err != nil {
			return wrapDBError(err, "creating order")
		}
		return insertItems(ctx, tx, order.ID, order.Items)
	})
	if err != nil {
		order.ID = 0
		return 0, err
	}
	return order.ID, nil
}

func (r *orderRepository) ReplaceOrder(ctx context.Context, order *models.Order) error {
	query := `UPDATE orders SET client_id = $1, car_id = $2, km = $3, employee_name = $4 WHERE id = $5`

	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, query, order.ClientID, order.CarID, order.Km, order.EmployeeName, order.ID)
		if err != nil {
			return wrapDBError(err, fmt.Sprintf("updating order ID %d", order.ID))
		}
		if err := expectAffected(result, fmt.Sprintf("updating order ID %d", order.ID)); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = $1`, order.ID); err != nil {
			return wrapDBError(err, fmt.Sprintf("deleting items of order ID %d", order.ID))
		}
		return insertItems(ctx, tx, order.ID, order.Items)
	})
}

// insertItems writes items for orderID, filling in their generated ids.
func insertItems(ctx context.Context, executor SQLExecutor, orderID int64, items []models.OrderItem) error {
	query := `INSERT INTO order_items
	            (order_id, service_name, description, quantity, unit_price, labor_cost, parts_cost, parts_json)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING id`
	for i := range items {
		item := &items[i]
		item.OrderID = orderID
		err := executor.QueryRowxContext(ctx, query,
			orderID, item.ServiceName, item.Description, item.Quantity,
			item.UnitPrice, item.LaborCost, item.PartsCost, item.Parts,
		).Scan(&item.ID)
		if err != nil {
			return wrapDBError(err, fmt.Sprintf("creating item %d of order ID %d", i+1, orderID))
		}
	}
	return nil
}

func (r *orderRepository) GetOrderByID(ctx context.Context, orderID int64) (*models.Order, error) {
	var row orderRow
	if err := r.db.GetContext(ctx, &row, orderSelect+` WHERE o.id = $1`, orderID); err != nil {
		return nil, wrapDBError(err, fmt.Sprintf("getting order by ID %d", orderID))
	}
	order := row.toModel()
	items, err := r.itemsByOrder(ctx, []int64{orderID})
	if err != nil {
		return nil, err
	}
	if list, ok := items[orderID]; ok {
		order.Items = list
	}
	return &order, nil
}

func (r *orderRepository) GetOrders(ctx context.Context, filters models.OrderFilters) ([]models.Order, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(orderSelect)

	var conditions []string
	var args []interface{}
	argCounter := 1

	if filters.ClientID != nil {
		conditions = append(conditions, fmt.Sprintf("o.client_id = $%d", argCounter))
		args = append(args, *filters.ClientID)
		argCounter++
	}
	if filters.CarID != nil {
		conditions = append(conditions, fmt.Sprintf("o.car_id = $%d", argCounter))
		args = append(args, *filters.CarID)
		argCounter++
	}
	if filters.From != nil {
		conditions = append(conditions, fmt.Sprintf("o.created_at >= $%d", argCounter))
		args = append(args, *filters.From)
		argCounter++
	}
	if filters.To != nil {
		conditions = append(conditions, fmt.Sprintf("o.created_at <= $%d", argCounter))
		args = append(args, *filters.To)
		argCounter++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY o.created_at DESC, o.id DESC")

	var rows []orderRow
	if err := r.db.SelectContext(ctx, &rows, queryBuilder.String(), args...); err != nil {
		return nil, wrapDBError(err, "querying orders")
	}

	orders := make([]models.Order, 0, len(rows))
	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		orders = append(orders, row.toModel())
		ids = append(ids, row.ID)
	}
	if len(ids) == 0 {
		return orders, nil
	}

	items, err := r.itemsByOrder(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if list, ok := items[orders[i].ID]; ok {
			orders[i].Items = list
		}
	}
	return orders, nil
}

func (r *orderRepository) itemsByOrder(ctx context.Context, orderIDs []int64) (map[int64][]models.OrderItem, error) {
	query := `SELECT id, order_id, service_name, description, quantity, unit_price, labor_cost, parts_cost, parts_json
	          FROM order_items
	          WHERE order_id = ANY($1)
	          ORDER BY order_id, id`
	var items []models.OrderItem
	if err := r.db.SelectContext(ctx, &items, query, pq.Array(orderIDs)); err != nil {
		return nil, wrapDBError(err, "querying order items")
	}
	grouped := make(map[int64][]models.OrderItem, len(orderIDs))
	for _, item := range items {
		grouped[item.OrderID] = append(grouped[item.OrderID], item)
	}
	return grouped, nil
}

func (r *orderRepository) DeleteOrder(ctx context.Context, orderID int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, orderID)
	if err != nil {
		return wrapDBError(err, fmt.Sprintf("deleting order ID %d", orderID))
	}
	return expectAffected(result, fmt.Sprintf("deleting order ID %d", orderID))
}

func (r *orderRepository) SetPaid(ctx context.Context, orderID int64, paid bool) error {
	result, err := r.db.ExecContext(ctx, `UPDATE orders SET is_paid = $1 WHERE id = $2`, paid, orderID)
	if err != nil {
		return wrapDBError(err, fmt.Sprintf("updating payment of order ID %d", orderID))
	}
	return expectAffected(result, fmt.Sprintf("updating payment of order ID %d", orderID))
}

func (r *orderRepository) SetServiceDuration(ctx context.Context, orderID int64, seconds int64) error {
	result, err := r.db.ExecContext(ctx, `UPDATE orders SET service_duration = $1 WHERE id = $2`, seconds, orderID)
	if err != nil {
		return wrapDBError(err, fmt.Sprintf("updating service duration of order ID %d", orderID))
	}
	return expectAffected(result, fmt.Sprintf("updating service duration of order ID %d", orderID))
}

func (r *orderRepository) GetArchiveInfo(ctx context.Context) ([]models.ArchiveInfo, error) {
	rows, err := r.db.QueryxContext(ctx, `SELECT id, created_at, is_archived FROM orders`)
	if err != nil {
		return nil, wrapDBError(err, "querying archive info")
	}
	defer rows.Close()

	infos := []models.ArchiveInfo{}
	for rows.Next() {
		var (
			info     models.ArchiveInfo
			archived sql.NullBool
		)
		if err := rows.Scan(&info.ID, &info.CreatedAt, &archived); err != nil {
			return nil, wrapDBError(err, "scanning archive info")
		}
		info.ArchiveState = models.ArchiveStateFromFlag(archived)
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBError(err, "iterating archive info")
	}
	return infos, nil
}

// ArchiveOrders flags the given orders archived. Already archived rows are left untouched.
func (r *orderRepository) ArchiveOrders(ctx context.Context, orderIDs []int64, at time.Time) (int64, error) {
	if len(orderIDs) == 0 {
		return 0, nil
	}
	result, err := r.db.ExecContext(ctx,
		`UPDATE orders SET is_archived = TRUE, archived_at = $1
		 WHERE id = ANY($2) AND is_archived IS DISTINCT FROM TRUE`,
		at, pq.Array(orderIDs))
	if err != nil {
		return 0, wrapDBError(err, "archiving orders")
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: getting rows affected for archiving orders: %v", ErrDatabaseError, err)
	}
	return n, nil
}

func (r *orderRepository) UnarchiveOrder(ctx context.Context, orderID int64) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE orders SET is_archived = FALSE, archived_at = NULL WHERE id = $1`, orderID)
	if err != nil {
		return wrapDBError(err, fmt.Sprintf("unarchiving order ID %d", orderID))
	}
	return expectAffected(result, fmt.Sprintf("unarchiving order ID %d", orderID))
}
