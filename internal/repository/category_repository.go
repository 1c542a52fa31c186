package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/legal_clinic_bot/internal/model"
	"github.com/Freeeeeet/legal_clinic_bot/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CategoryRepository struct {
	*base.Repository
}

func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{Repository: base.NewRepository(pool)}
}

// Create создает категорию
func (r *CategoryRepository) Create(ctx context.Context, category *model.Category) error {
	query := `
		INSERT INTO categories (name, hashtag)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	err := r.QueryRow(ctx, query, category.Name, category.Hashtag).
		Scan(&category.ID, &category.CreatedAt)

	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}

	return nil
}

// GetByID получает категорию по ID
func (r *CategoryRepository) GetByID(ctx context.Context, id int64) (*model.Category, error) {
	query := `SELECT id, name, hashtag, created_at FROM categories WHERE id = $1`
	return r.scanOne(r.QueryRow(ctx, query, id))
}

// GetByName получает категорию по названию
func (r *CategoryRepository) GetByName(ctx context.Context, name string) (*model.Category, error) {
	query := `SELECT id, name, hashtag, created_at FROM categories WHERE name = $1`
	return r.scanOne(r.QueryRow(ctx, query, name))
}

// GetByHashtag получает категорию по хештегу
func (r *CategoryRepository) GetByHashtag(ctx context.Context, hashtag string) (*model.Category, error) {
	query := `SELECT id, name, hashtag, created_at FROM categories WHERE hashtag = $1`
	return r.scanOne(r.QueryRow(ctx, query, hashtag))
}

// List получает все категории по алфавиту
func (r *CategoryRepository) List(ctx context.Context) ([]*model.Category, error) {
	query := `SELECT id, name, hashtag, created_at FROM categories ORDER BY name ASC`

	rows, err := r.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []*model.Category
	for rows.Next() {
		var category model.Category
		err := rows.Scan(&category.ID, &category.Name, &category.Hashtag, &category.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, &category)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}

	return categories, nil
}

// UpdateName изменяет название категории
func (r *CategoryRepository) UpdateName(ctx context.Context, id int64, name string) error {
	return r.update(ctx, id, "name", name)
}

// UpdateHashtag изменяет хештег категории
func (r *CategoryRepository) UpdateHashtag(ctx context.Context, id int64, hashtag string) error {
	return r.update(ctx, id, "hashtag", hashtag)
}

// Delete удаляет категорию
func (r *CategoryRepository) Delete(ctx context.Context, id int64) error {
	affected, err := r.ExecAffected(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("category not found")
	}

	return nil
}

func (r *CategoryRepository) update(ctx context.Context, id int64, column, value string) error {
	query := fmt.Sprintf(`UPDATE categories SET %s = $1 WHERE id = $2`, column)

	affected, err := r.ExecAffected(ctx, query, value, id)
	if err != nil {
		return fmt.Errorf("update category %s: %w", column, err)
	}

	if affected == 0 {
		return fmt.Errorf("category not found")
	}

	return nil
}

func (r *CategoryRepository) scanOne(row pgx.Row) (*model.Category, error) {
	var category model.Category
	err := row.Scan(&category.ID, &category.Name, &category.Hashtag, &category.CreatedAt)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get category: %w", err)
	}

	return &category, nil
}
