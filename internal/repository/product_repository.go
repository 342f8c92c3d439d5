package repository

import (
	"context"
	"database/sql"
	"fmt"

	"floralys_back_end/internal/models"
)

type ProductRepository interface {
	FindByID(ctx context.Context, id string) (*models.Product, error)
	// FindByIDTx relit le produit dans la transaction en cours pour figer
	// le snapshot (nom, prix) au moment de l'achat.
	FindByIDTx(ctx context.Context, tx *sql.Tx, id string) (*models.Product, error)
	List(ctx context.Context, page, limit int, categoryID string) ([]models.Product, int, error)
	SearchLike(ctx context.Context, q string, limit int) ([]models.Product, error)
	Create(ctx context.Context, p *models.Product) error
	Update(ctx context.Context, p *models.Product) error
	SoftDelete(ctx context.Context, id string) error
	// DecrementStockTx décrémente le stock de façon conditionnelle et
	// atomique ; renvoie false si le stock est insuffisant (0 ligne touchée).
	DecrementStockTx(ctx context.Context, tx *sql.Tx, productID string, quantity int) (bool, error)
	SetStock(ctx context.Context, id string, stock int) error
}

type productRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `id, name, description, price, stock_quantity, category_id, image_url, is_active, created_at, updated_at`

func scanProduct(row interface{ Scan(...any) error }) (*models.Product, error) {
	p := &models.Product{}
	var categoryID sql.NullString
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.StockQuantity,
		&categoryID, &p.ImageURL, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if categoryID.Valid {
		p.CategoryID = &categoryID.String
	}
	return p, nil
}

func (r *productRepository) FindByID(ctx context.Context, id string) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	p, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("recherche produit: %w", err)
	}
	return p, nil
}

func (r *productRepository) FindByIDTx(ctx context.Context, tx *sql.Tx, id string) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	p, err := scanProduct(tx.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("recherche produit: %w", err)
	}
	return p, nil
}

func (r *productRepository) List(ctx context.Context, page, limit int, categoryID string) ([]models.Product, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	where := `WHERE is_active = TRUE`
	args := []any{}
	if categoryID != "" {
		where += ` AND category_id = $1`
		args = append(args, categoryID)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("comptage produits: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM products %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		productColumns, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("liste produits: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("lecture produit: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("lecture produits: %w", err)
	}

	return products, total, nil
}

// SearchLike est le fallback Postgres quand Elasticsearch est absent ou vide.
func (r *productRepository) SearchLike(ctx context.Context, q string, limit int) ([]models.Product, error) {
	if limit < 1 || limit > 50 {
		limit = 20
	}

	query := `SELECT ` + productColumns + `
		FROM products
		WHERE is_active = TRUE AND (name ILIKE '%' || $1 || '%' OR description ILIKE '%' || $1 || '%')
		ORDER BY name
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, q, limit)
	if err != nil {
		return nil, fmt.Errorf("recherche produits: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("lecture produit: %w", err)
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

func (r *productRepository) Create(ctx context.Context, p *models.Product) error {
	query := `
		INSERT INTO products (name, description, price, stock_quantity, category_id, image_url, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE)
		RETURNING id, is_active, created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		p.Name, p.Description, p.Price, p.StockQuantity, p.CategoryID, p.ImageURL,
	).Scan(&p.ID, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("création produit: %w", err)
	}
	return nil
}

func (r *productRepository) Update(ctx context.Context, p *models.Product) error {
	query := `
		UPDATE products
		SET name = $1, description = $2, price = $3, category_id = $4, image_url = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		p.Name, p.Description, p.Price, p.CategoryID, p.ImageURL, p.ID,
	).Scan(&p.UpdatedAt)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("mise à jour produit: %w", err)
	}
	return nil
}

// SoftDelete désactive le produit sans le supprimer : les commandes passées
// continuent de le référencer.
func (r *productRepository) SoftDelete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE products SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("désactivation produit: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *productRepository) DecrementStockTx(ctx context.Context, tx *sql.Tx, productID string, quantity int) (bool, error) {
	// Décrément conditionnel : la clause stock_quantity >= $1 garantit
	// qu'on ne passe jamais sous zéro, même sous commandes concurrentes.
	res, err := tx.ExecContext(ctx, `
		UPDATE products
		SET stock_quantity = stock_quantity - $1, updated_at = NOW()
		WHERE id = $2 AND stock_quantity >= $1
	`, quantity, productID)
	if err != nil {
		return false, fmt.Errorf("décrément stock: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("décrément stock: %w", err)
	}
	return n == 1, nil
}

func (r *productRepository) SetStock(ctx context.Context, id string, stock int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE products SET stock_quantity = $1, updated_at = NOW() WHERE id = $2`, stock, id)
	if err != nil {
		return fmt.Errorf("mise à jour stock: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
