package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/legal_clinic_bot/internal/model"
	"github.com/Freeeeeet/legal_clinic_bot/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RequestMutation описывает поля, которые нужно записать вместе со сменой
// статуса. Nil-поля не трогаются.
type RequestMutation struct {
	StudentID    *int64
	ClearStudent bool
	AnswerText   *string
	AdminComment *string
}

type RequestRepository struct {
	*base.Repository
}

func NewRequestRepository(pool *pgxpool.Pool) *RequestRepository {
	return &RequestRepository{Repository: base.NewRepository(pool)}
}

const requestColumns = `id, public_id, user_id, category_id, body, status, student_id, answer_text, admin_comment, created_at, updated_at`

// Create создает обращение
func (r *RequestRepository) Create(ctx context.Context, req *model.Request) error {
	query := `
		INSERT INTO requests (public_id, user_id, category_id, body, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.QueryRow(
		ctx, query,
		req.PublicID,
		req.UserID,
		req.CategoryID,
		req.Body,
		req.Status,
	).Scan(&req.ID, &req.CreatedAt)

	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	return nil
}

// GetByID получает обращение по ID
func (r *RequestRepository) GetByID(ctx context.Context, id int64) (*model.Request, error) {
	query := fmt.Sprintf(`SELECT %s FROM requests WHERE id = $1`, requestColumns)

	req, err := scanRequest(r.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("get request: %w", err)
	}

	return req, nil
}

// UpdateStatus переводит обращение в новый статус при условии, что текущий
// статус совпадает с ожидаемым. Возвращает false если статус разошёлся,
// то есть обращение уже обработал кто-то другой.
func (r *RequestRepository) UpdateStatus(ctx context.Context, id int64, expected, next model.RequestStatus, mut RequestMutation) (bool, error) {
	set := []string{"status = $1", "updated_at = $2"}
	args := []any{next, time.Now()}

	if mut.ClearStudent {
		set = append(set, "student_id = NULL")
	}
	if mut.StudentID != nil {
		args = append(args, *mut.StudentID)
		set = append(set, fmt.Sprintf("student_id = $%d", len(args)))
	}
	if mut.AnswerText != nil {
		args = append(args, *mut.AnswerText)
		set = append(set, fmt.Sprintf("answer_text = $%d", len(args)))
	}
	if mut.AdminComment != nil {
		args = append(args, *mut.AdminComment)
		set = append(set, fmt.Sprintf("admin_comment = $%d", len(args)))
	}

	args = append(args, id, expected)
	query := fmt.Sprintf(
		`UPDATE requests SET %s WHERE id = $%d AND status = $%d`,
		strings.Join(set, ", "), len(args)-1, len(args),
	)

	affected, err := r.ExecAffected(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("update request status: %w", err)
	}

	return affected > 0, nil
}

// ListByUser получает обращения заявителя, новые первыми
func (r *RequestRepository) ListByUser(ctx context.Context, userID int64) ([]*model.Request, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM requests
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, requestColumns)

	rows, err := r.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("get user requests: %w", err)
	}
	defer rows.Close()

	return collectRequests(rows)
}

// ListPage получает страницу обращений, новые первыми
func (r *RequestRepository) ListPage(ctx context.Context, offset, limit int) ([]*model.Request, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM requests
		ORDER BY created_at DESC
		OFFSET $1 LIMIT $2
	`, requestColumns)

	rows, err := r.Query(ctx, query, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("get requests page: %w", err)
	}
	defer rows.Close()

	return collectRequests(rows)
}

// CountByStatus подсчитывает обращения по статусам
func (r *RequestRepository) CountByStatus(ctx context.Context) (map[model.RequestStatus]int, error) {
	query := `
		SELECT status, COUNT(*)
		FROM requests
		GROUP BY status
	`

	rows, err := r.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("count requests by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[model.RequestStatus]int)
	for rows.Next() {
		var status model.RequestStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		counts[status] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status counts: %w", err)
	}

	return counts, nil
}

// CountByCategory подсчитывает обращения, ссылающиеся на категорию
func (r *RequestRepository) CountByCategory(ctx context.Context, categoryID int64) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM requests
		WHERE category_id = $1
	`

	var count int
	err := r.QueryRow(ctx, query, categoryID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count requests by category: %w", err)
	}

	return count, nil
}

func scanRequest(row pgx.Row) (*model.Request, error) {
	var req model.Request
	err := row.Scan(
		&req.ID,
		&req.PublicID,
		&req.UserID,
		&req.CategoryID,
		&req.Body,
		&req.Status,
		&req.StudentID,
		&req.AnswerText,
		&req.AdminComment,
		&req.CreatedAt,
		&req.UpdatedAt,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	return &req, nil
}

func collectRequests(rows pgx.Rows) ([]*model.Request, error) {
	var requests []*model.Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		requests = append(requests, req)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate requests: %w", err)
	}

	return requests, nil
}
