package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/legal_clinic_bot/internal/model"
	"github.com/Freeeeeet/legal_clinic_bot/internal/repository/base"
	"github.com/jackc/pgx/v5/pgxpool"
)

type FAQRepository struct {
	*base.Repository
}

func NewFAQRepository(pool *pgxpool.Pool) *FAQRepository {
	return &FAQRepository{Repository: base.NewRepository(pool)}
}

// Create создает вопрос FAQ
func (r *FAQRepository) Create(ctx context.Context, faq *model.FAQ) error {
	query := `
		INSERT INTO faq (category_id, question, answer)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.QueryRow(ctx, query, faq.CategoryID, faq.Question, faq.Answer).
		Scan(&faq.ID, &faq.CreatedAt)

	if err != nil {
		return fmt.Errorf("create faq: %w", err)
	}

	return nil
}

// GetByID получает вопрос по ID
func (r *FAQRepository) GetByID(ctx context.Context, id int64) (*model.FAQ, error) {
	query := `SELECT id, category_id, question, answer, created_at FROM faq WHERE id = $1`

	var faq model.FAQ
	err := r.QueryRow(ctx, query, id).Scan(
		&faq.ID,
		&faq.CategoryID,
		&faq.Question,
		&faq.Answer,
		&faq.CreatedAt,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get faq: %w", err)
	}

	return &faq, nil
}

// ListByCategory получает вопросы категории по алфавиту
func (r *FAQRepository) ListByCategory(ctx context.Context, categoryID int64) ([]*model.FAQ, error) {
	query := `
		SELECT id, category_id, question, answer, created_at
		FROM faq
		WHERE category_id = $1
		ORDER BY question ASC
	`

	rows, err := r.Query(ctx, query, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list faq by category: %w", err)
	}
	defer rows.Close()

	var faqs []*model.FAQ
	for rows.Next() {
		var faq model.FAQ
		err := rows.Scan(&faq.ID, &faq.CategoryID, &faq.Question, &faq.Answer, &faq.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan faq: %w", err)
		}
		faqs = append(faqs, &faq)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate faqs: %w", err)
	}

	return faqs, nil
}

// UpdateQuestion изменяет текст вопроса
func (r *FAQRepository) UpdateQuestion(ctx context.Context, id int64, question string) error {
	return r.update(ctx, id, `UPDATE faq SET question = $1 WHERE id = $2`, question)
}

// UpdateAnswer изменяет текст ответа
func (r *FAQRepository) UpdateAnswer(ctx context.Context, id int64, answer string) error {
	return r.update(ctx, id, `UPDATE faq SET answer = $1 WHERE id = $2`, answer)
}

// UpdateCategory переносит вопрос в другую категорию
func (r *FAQRepository) UpdateCategory(ctx context.Context, id, categoryID int64) error {
	query := `UPDATE faq SET category_id = $1 WHERE id = $2`

	affected, err := r.ExecAffected(ctx, query, categoryID, id)
	if err != nil {
		return fmt.Errorf("update faq category: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("faq not found")
	}

	return nil
}

// Delete удаляет вопрос
func (r *FAQRepository) Delete(ctx context.Context, id int64) error {
	affected, err := r.ExecAffected(ctx, `DELETE FROM faq WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete faq: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("faq not found")
	}

	return nil
}

// CountByCategory подсчитывает вопросы, ссылающиеся на категорию
func (r *FAQRepository) CountByCategory(ctx context.Context, categoryID int64) (int, error) {
	query := `SELECT COUNT(*) FROM faq WHERE category_id = $1`

	var count int
	err := r.QueryRow(ctx, query, categoryID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count faq by category: %w", err)
	}

	return count, nil
}

func (r *FAQRepository) update(ctx context.Context, id int64, query, value string) error {
	affected, err := r.ExecAffected(ctx, query, value, id)
	if err != nil {
		return fmt.Errorf("update faq: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("faq not found")
	}

	return nil
}
