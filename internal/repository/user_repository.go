package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/legal_clinic_bot/internal/model"
	"github.com/Freeeeeet/legal_clinic_bot/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository struct {
	*base.Repository
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{Repository: base.NewRepository(pool)}
}

const userColumns = `id, telegram_id, username, first_name, last_name, role, current_assignment_id, created_at, updated_at`

// Create создает пользователя
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (telegram_id, username, first_name, last_name, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.QueryRow(
		ctx, query,
		user.TelegramID,
		user.Username,
		user.FirstName,
		user.LastName,
		user.Role,
	).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

// GetByTelegramID получает пользователя по Telegram ID
func (r *UserRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE telegram_id = $1`, userColumns)
	return r.scanOne(r.QueryRow(ctx, query, telegramID))
}

// GetByID получает пользователя по ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)
	return r.scanOne(r.QueryRow(ctx, query, id))
}

// Update обновляет профильные данные пользователя
func (r *UserRepository) Update(ctx context.Context, user *model.User) error {
	query := `
		UPDATE users
		SET username = $1, first_name = $2, last_name = $3, updated_at = $4
		WHERE id = $5
	`

	affected, err := r.ExecAffected(ctx, query, user.Username, user.FirstName, user.LastName, time.Now(), user.ID)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("user not found")
	}

	return nil
}

// UpdateRole изменяет роль пользователя
func (r *UserRepository) UpdateRole(ctx context.Context, id int64, role model.Role) error {
	query := `
		UPDATE users
		SET role = $1, updated_at = $2
		WHERE id = $3
	`

	affected, err := r.ExecAffected(ctx, query, role, time.Now(), id)
	if err != nil {
		return fmt.Errorf("update user role: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("user not found")
	}

	return nil
}

// AcquireAssignment занимает слот активного обращения студента.
// Условное обновление: срабатывает только если слот свободен.
func (r *UserRepository) AcquireAssignment(ctx context.Context, userID, requestID int64) (bool, error) {
	query := `
		UPDATE users
		SET current_assignment_id = $1, updated_at = $2
		WHERE id = $3 AND current_assignment_id IS NULL
	`

	affected, err := r.ExecAffected(ctx, query, requestID, time.Now(), userID)
	if err != nil {
		return false, fmt.Errorf("acquire assignment: %w", err)
	}

	return affected > 0, nil
}

// ReleaseAssignment освобождает слот активного обращения студента.
// Срабатывает только если слот занят именно этим обращением.
func (r *UserRepository) ReleaseAssignment(ctx context.Context, userID, requestID int64) (bool, error) {
	query := `
		UPDATE users
		SET current_assignment_id = NULL, updated_at = $1
		WHERE id = $2 AND current_assignment_id = $3
	`

	affected, err := r.ExecAffected(ctx, query, time.Now(), userID, requestID)
	if err != nil {
		return false, fmt.Errorf("release assignment: %w", err)
	}

	return affected > 0, nil
}

// CountByRole подсчитывает пользователей по ролям
func (r *UserRepository) CountByRole(ctx context.Context) (map[model.Role]int, error) {
	query := `
		SELECT role, COUNT(*)
		FROM users
		GROUP BY role
	`

	rows, err := r.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("count users by role: %w", err)
	}
	defer rows.Close()

	counts := make(map[model.Role]int)
	for rows.Next() {
		var role model.Role
		var count int
		if err := rows.Scan(&role, &count); err != nil {
			return nil, fmt.Errorf("scan role count: %w", err)
		}
		counts[role] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate role counts: %w", err)
	}

	return counts, nil
}

func (r *UserRepository) scanOne(row pgx.Row) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.TelegramID,
		&user.Username,
		&user.FirstName,
		&user.LastName,
		&user.Role,
		&user.CurrentAssignmentID,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user, nil
}
