package repository

import (
	"context"
	"database/sql"
	"fmt"

	"floralys_back_end/internal/models"
)

type CategoryRepository interface {
	List(ctx context.Context) ([]models.Category, error)
	Create(ctx context.Context, c *models.Category) error
}

type categoryRepository struct {
	db *sql.DB
}

func NewCategoryRepository(db *sql.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) List(ctx context.Context) ([]models.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, is_active FROM categories WHERE is_active = TRUE ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("liste catégories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.IsActive); err != nil {
			return nil, fmt.Errorf("lecture catégorie: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *categoryRepository) Create(ctx context.Context, c *models.Category) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO categories (name) VALUES ($1) RETURNING id, is_active`, c.Name,
	).Scan(&c.ID, &c.IsActive)
	if err != nil {
		return fmt.Errorf("création catégorie: %w", err)
	}
	return nil
}
