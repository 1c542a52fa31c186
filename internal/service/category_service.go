package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/legal_clinic_bot/internal/model"
	"go.uber.org/zap"
)

// CategoryService управление категориями обращений
type CategoryService struct {
	categories CategoryStore
	requests   RequestStore
	faq        FAQStore
	audit      Recorder
	logger     *zap.Logger
}

func NewCategoryService(
	categories CategoryStore,
	requests RequestStore,
	faq FAQStore,
	audit Recorder,
	logger *zap.Logger,
) *CategoryService {
	return &CategoryService{
		categories: categories,
		requests:   requests,
		faq:        faq,
		audit:      audit,
		logger:     logger,
	}
}

// NormalizeHashtag приводит хештег к виду "#тег"
func NormalizeHashtag(hashtag string) string {
	hashtag = strings.TrimSpace(hashtag)
	if hashtag == "" {
		return hashtag
	}
	if !strings.HasPrefix(hashtag, "#") {
		hashtag = "#" + hashtag
	}
	return hashtag
}

// Create создает категорию. Имя и хештег должны быть уникальны.
func (s *CategoryService) Create(ctx context.Context, admin *model.User, name, hashtag string) (*model.Category, error) {
	name = strings.TrimSpace(name)
	hashtag = NormalizeHashtag(hashtag)

	if name == "" {
		return nil, &ValidationError{Reason: "category name is empty"}
	}
	if hashtag == "" || hashtag == "#" {
		return nil, &ValidationError{Reason: "category hashtag is empty"}
	}

	existing, err := s.categories.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("check name: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("category %q already exists: %w", name, ErrConflict)
	}

	existing, err = s.categories.GetByHashtag(ctx, hashtag)
	if err != nil {
		return nil, fmt.Errorf("check hashtag: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("hashtag %q already in use: %w", hashtag, ErrConflict)
	}

	category := &model.Category{Name: name, Hashtag: hashtag}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}

	s.logger.Info("Category created",
		zap.Int64("category_id", category.ID),
		zap.String("name", name),
	)
	s.audit.Record(ctx, "admin_created_category", map[string]any{
		"admin_id":    admin.ID,
		"category_id": category.ID,
	})

	return category, nil
}

// Rename меняет название категории с проверкой уникальности
func (s *CategoryService) Rename(ctx context.Context, admin *model.User, id int64, name string) (*model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Reason: "category name is empty"}
	}

	category, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	existing, err := s.categories.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("check name: %w", err)
	}
	if existing != nil && existing.ID != id {
		return nil, fmt.Errorf("category %q already exists: %w", name, ErrConflict)
	}

	if err := s.categories.UpdateName(ctx, id, name); err != nil {
		return nil, fmt.Errorf("update name: %w", err)
	}
	category.Name = name

	s.audit.Record(ctx, "admin_renamed_category", map[string]any{
		"admin_id":    admin.ID,
		"category_id": id,
	})

	return category, nil
}

// Retag меняет хештег категории с проверкой уникальности
func (s *CategoryService) Retag(ctx context.Context, admin *model.User, id int64, hashtag string) (*model.Category, error) {
	hashtag = NormalizeHashtag(hashtag)
	if hashtag == "" || hashtag == "#" {
		return nil, &ValidationError{Reason: "category hashtag is empty"}
	}

	category, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	existing, err := s.categories.GetByHashtag(ctx, hashtag)
	if err != nil {
		return nil, fmt.Errorf("check hashtag: %w", err)
	}
	if existing != nil && existing.ID != id {
		return nil, fmt.Errorf("hashtag %q already in use: %w", hashtag, ErrConflict)
	}

	if err := s.categories.UpdateHashtag(ctx, id, hashtag); err != nil {
		return nil, fmt.Errorf("update hashtag: %w", err)
	}
	category.Hashtag = hashtag

	s.audit.Record(ctx, "admin_retagged_category", map[string]any{
		"admin_id":    admin.ID,
		"category_id": id,
	})

	return category, nil
}

// References считает, сколько обращений и записей FAQ ссылаются
// на категорию
func (s *CategoryService) References(ctx context.Context, id int64) (requests, faqEntries int, err error) {
	requests, err = s.requests.CountByCategory(ctx, id)
	if err != nil {
		return 0, 0, fmt.Errorf("count requests: %w", err)
	}

	faqEntries, err = s.faq.CountByCategory(ctx, id)
	if err != nil {
		return 0, 0, fmt.Errorf("count faq entries: %w", err)
	}

	return requests, faqEntries, nil
}

// Delete удаляет категорию. Категория с обращениями или записями FAQ
// удалению не подлежит.
func (s *CategoryService) Delete(ctx context.Context, admin *model.User, id int64) error {
	category, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	requests, faqEntries, err := s.References(ctx, id)
	if err != nil {
		return err
	}
	if requests > 0 || faqEntries > 0 {
		return fmt.Errorf("category %q is referenced by %d requests and %d faq entries: %w",
			category.Name, requests, faqEntries, ErrConflict)
	}

	if err := s.categories.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	s.logger.Info("Category deleted",
		zap.Int64("category_id", id),
		zap.String("name", category.Name),
	)
	s.audit.Record(ctx, "admin_deleted_category", map[string]any{
		"admin_id":    admin.ID,
		"category_id": id,
	})

	return nil
}

// List получает все категории в алфавитном порядке
func (s *CategoryService) List(ctx context.Context) ([]*model.Category, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// GetByID получает категорию по ID
func (s *CategoryService) GetByID(ctx context.Context, id int64) (*model.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	if category == nil {
		return nil, fmt.Errorf("category %d: %w", id, ErrNotFound)
	}
	return category, nil
}

// GetByName получает категорию по точному названию
func (s *CategoryService) GetByName(ctx context.Context, name string) (*model.Category, error) {
	category, err := s.categories.GetByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	if category == nil {
		return nil, fmt.Errorf("category %q: %w", name, ErrNotFound)
	}
	return category, nil
}
