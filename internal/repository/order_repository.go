package repository

import (
	"context"
	"database/sql"
	"fmt"

	"floralys_back_end/internal/models"
)

type OrderRepository interface {
	InsertTx(ctx context.Context, tx *sql.Tx, order *models.Order) error
	InsertItemTx(ctx context.Context, tx *sql.Tx, item *models.OrderItem) error
	InsertHistoryTx(ctx context.Context, tx *sql.Tx, h *models.StatusHistory) error
	UpdateStatusTx(ctx context.Context, tx *sql.Tx, orderID string, status models.OrderStatus) error
	FindByID(ctx context.Context, id string) (*models.Order, error)
	LoadItems(ctx context.Context, orderID string) ([]models.OrderItem, error)
	LoadHistory(ctx context.Context, orderID string) ([]models.StatusHistory, error)
	ListByUser(ctx context.Context, userID string, page, limit int) ([]models.Order, int, error)
	ListAll(ctx context.Context, page, limit int, status string) ([]models.Order, int, error)
}

type orderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

const orderColumns = `id, order_number, user_id, guest_email, status, total_amount,
	shipping_address, billing_address, notes, delivery_date, created_at, updated_at`

func scanOrder(row interface{ Scan(...any) error }) (*models.Order, error) {
	o := &models.Order{}
	var userID, guestEmail sql.NullString
	var billing []byte
	var deliveryDate sql.NullTime

	err := row.Scan(
		&o.ID, &o.OrderNumber, &userID, &guestEmail, &o.Status, &o.TotalAmount,
		&o.ShippingAddress, &billing, &o.Notes, &deliveryDate, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if userID.Valid {
		o.UserID = &userID.String
	}
	if guestEmail.Valid {
		o.GuestEmail = &guestEmail.String
	}
	if billing != nil {
		o.BillingAddress = billing
	}
	if deliveryDate.Valid {
		o.DeliveryDate = &deliveryDate.Time
	}
	return o, nil
}

func (r *orderRepository) InsertTx(ctx context.Context, tx *sql.Tx, order *models.Order) error {
	query := `
		INSERT INTO orders (order_number, user_id, guest_email, status, total_amount,
			shipping_address, billing_address, notes, delivery_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`

	var billing any
	if len(order.BillingAddress) > 0 {
		billing = []byte(order.BillingAddress)
	}

	err := tx.QueryRowContext(ctx, query,
		order.OrderNumber, order.UserID, order.GuestEmail, order.Status, order.TotalAmount,
		[]byte(order.ShippingAddress), billing, order.Notes, order.DeliveryDate,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insertion commande: %w", err)
	}
	return nil
}

func (r *orderRepository) InsertItemTx(ctx context.Context, tx *sql.Tx, item *models.OrderItem) error {
	query := `
		INSERT INTO order_items (order_id, product_id, product_name, unit_price, quantity, total_price)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := tx.QueryRowContext(ctx, query,
		item.OrderID, item.ProductID, item.ProductName, item.UnitPrice, item.Quantity, item.TotalPrice,
	).Scan(&item.ID)
	if err != nil {
		return fmt.Errorf("insertion ligne de commande: %w", err)
	}
	return nil
}

func (r *orderRepository) InsertHistoryTx(ctx context.Context, tx *sql.Tx, h *models.StatusHistory) error {
	query := `
		INSERT INTO order_status_history (order_id, old_status, new_status, notes, changed_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := tx.QueryRowContext(ctx, query,
		h.OrderID, h.OldStatus, h.NewStatus, h.Notes, h.ChangedBy,
	).Scan(&h.ID, &h.CreatedAt)
	if err != nil {
		return fmt.Errorf("insertion historique: %w", err)
	}
	return nil
}

func (r *orderRepository) UpdateStatusTx(ctx context.Context, tx *sql.Tx, orderID string, status models.OrderStatus) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2`, status, orderID)
	if err != nil {
		return fmt.Errorf("mise à jour statut: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *orderRepository) FindByID(ctx context.Context, id string) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	o, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("recherche commande: %w", err)
	}
	return o, nil
}

func (r *orderRepository) LoadItems(ctx context.Context, orderID string) ([]models.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, product_name, unit_price, quantity, total_price
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("lecture lignes de commande: %w", err)
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var it models.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName,
			&it.UnitPrice, &it.Quantity, &it.TotalPrice); err != nil {
			return nil, fmt.Errorf("lecture ligne de commande: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *orderRepository) LoadHistory(ctx context.Context, orderID string) ([]models.StatusHistory, error) {
	query := `
		SELECT id, order_id, old_status, new_status, notes, changed_by, created_at
		FROM order_status_history
		WHERE order_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("lecture historique: %w", err)
	}
	defer rows.Close()

	var history []models.StatusHistory
	for rows.Next() {
		var h models.StatusHistory
		var oldStatus, changedBy sql.NullString
		if err := rows.Scan(&h.ID, &h.OrderID, &oldStatus, &h.NewStatus,
			&h.Notes, &changedBy, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("lecture historique: %w", err)
		}
		if oldStatus.Valid {
			s := models.OrderStatus(oldStatus.String)
			h.OldStatus = &s
		}
		if changedBy.Valid {
			h.ChangedBy = &changedBy.String
		}
		history = append(history, h)
	}
	return history, rows.Err()
}

func (r *orderRepository) ListByUser(ctx context.Context, userID string, page, limit int) ([]models.Order, int, error) {
	return r.list(ctx, `WHERE user_id = $1`, []any{userID}, page, limit)
}

func (r *orderRepository) ListAll(ctx context.Context, page, limit int, status string) ([]models.Order, int, error) {
	if status != "" {
		return r.list(ctx, `WHERE status = $1`, []any{status}, page, limit)
	}
	return r.list(ctx, ``, nil, page, limit)
}

func (r *orderRepository) list(ctx context.Context, where string, args []any, page, limit int) ([]models.Order, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("comptage commandes: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM orders %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		orderColumns, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("liste commandes: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("lecture commande: %w", err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("lecture commandes: %w", err)
	}

	return orders, total, nil
}
