package service

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/legal_clinic_bot/internal/model"
	"go.uber.org/zap"
)

// UserService регистрация пользователей и управление ролями
type UserService struct {
	users  UserStore
	audit  Recorder
	logger *zap.Logger
}

func NewUserService(users UserStore, audit Recorder, logger *zap.Logger) *UserService {
	return &UserService{users: users, audit: audit, logger: logger}
}

// GetOrCreate находит пользователя по telegram id или регистрирует нового.
// Изменившиеся данные профиля обновляются при каждом обращении.
func (s *UserService) GetOrCreate(ctx context.Context, telegramID int64, username, firstName, lastName string) (*model.User, error) {
	user, err := s.users.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	if user == nil {
		user = &model.User{
			TelegramID: telegramID,
			Username:   username,
			FirstName:  firstName,
			LastName:   lastName,
			Role:       model.RoleUser,
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		s.logger.Info("User registered",
			zap.Int64("user_id", user.ID),
			zap.Int64("telegram_id", telegramID),
		)
		return user, nil
	}

	if user.Username != username || user.FirstName != firstName || user.LastName != lastName {
		user.Username = username
		user.FirstName = firstName
		user.LastName = lastName
		if err := s.users.Update(ctx, user); err != nil {
			return nil, fmt.Errorf("update user: %w", err)
		}
	}

	return user, nil
}

// GetByID получает пользователя по внутреннему ID
func (s *UserService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	return user, nil
}

// PromoteToAdmin выдает пользователю роль администратора
func (s *UserService) PromoteToAdmin(ctx context.Context, user *model.User) error {
	if user.Role == model.RoleAdmin {
		return nil
	}

	if err := s.users.UpdateRole(ctx, user.ID, model.RoleAdmin); err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	user.Role = model.RoleAdmin

	s.logger.Info("User promoted to admin", zap.Int64("user_id", user.ID))
	s.audit.Record(ctx, "user_became_admin", map[string]any{"user_id": user.ID})

	return nil
}
