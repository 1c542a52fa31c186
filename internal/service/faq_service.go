package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/legal_clinic_bot/internal/model"
	"go.uber.org/zap"
)

// FAQService управление базой часто задаваемых вопросов
type FAQService struct {
	faq        FAQStore
	categories CategoryStore
	audit      Recorder
	logger     *zap.Logger
}

func NewFAQService(faq FAQStore, categories CategoryStore, audit Recorder, logger *zap.Logger) *FAQService {
	return &FAQService{faq: faq, categories: categories, audit: audit, logger: logger}
}

// Create добавляет запись FAQ в существующую категорию
func (s *FAQService) Create(ctx context.Context, admin *model.User, categoryID int64, question, answer string) (*model.FAQ, error) {
	question = strings.TrimSpace(question)
	answer = strings.TrimSpace(answer)

	if question == "" {
		return nil, &ValidationError{Reason: "faq question is empty"}
	}
	if answer == "" {
		return nil, &ValidationError{Reason: "faq answer is empty"}
	}

	category, err := s.categories.GetByID(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	if category == nil {
		return nil, fmt.Errorf("category %d: %w", categoryID, ErrNotFound)
	}

	entry := &model.FAQ{CategoryID: categoryID, Question: question, Answer: answer}
	if err := s.faq.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("create faq entry: %w", err)
	}
	entry.Category = category

	s.logger.Info("FAQ entry created",
		zap.Int64("faq_id", entry.ID),
		zap.Int64("category_id", categoryID),
	)
	s.audit.Record(ctx, "admin_created_faq", map[string]any{
		"admin_id": admin.ID,
		"faq_id":   entry.ID,
	})

	return entry, nil
}

// UpdateQuestion меняет формулировку вопроса
func (s *FAQService) UpdateQuestion(ctx context.Context, admin *model.User, id int64, question string) (*model.FAQ, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, &ValidationError{Reason: "faq question is empty"}
	}

	entry, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.faq.UpdateQuestion(ctx, id, question); err != nil {
		return nil, fmt.Errorf("update question: %w", err)
	}
	entry.Question = question

	s.audit.Record(ctx, "admin_updated_faq", map[string]any{
		"admin_id": admin.ID,
		"faq_id":   id,
		"field":    "question",
	})

	return entry, nil
}

// UpdateAnswer меняет текст ответа
func (s *FAQService) UpdateAnswer(ctx context.Context, admin *model.User, id int64, answer string) (*model.FAQ, error) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return nil, &ValidationError{Reason: "faq answer is empty"}
	}

	entry, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.faq.UpdateAnswer(ctx, id, answer); err != nil {
		return nil, fmt.Errorf("update answer: %w", err)
	}
	entry.Answer = answer

	s.audit.Record(ctx, "admin_updated_faq", map[string]any{
		"admin_id": admin.ID,
		"faq_id":   id,
		"field":    "answer",
	})

	return entry, nil
}

// Reassign переносит запись FAQ в другую категорию
func (s *FAQService) Reassign(ctx context.Context, admin *model.User, id, categoryID int64) (*model.FAQ, error) {
	entry, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	category, err := s.categories.GetByID(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	if category == nil {
		return nil, fmt.Errorf("category %d: %w", categoryID, ErrNotFound)
	}

	if err := s.faq.UpdateCategory(ctx, id, categoryID); err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	entry.CategoryID = categoryID
	entry.Category = category

	s.audit.Record(ctx, "admin_updated_faq", map[string]any{
		"admin_id": admin.ID,
		"faq_id":   id,
		"field":    "category",
	})

	return entry, nil
}

// Delete удаляет запись FAQ
func (s *FAQService) Delete(ctx context.Context, admin *model.User, id int64) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	if err := s.faq.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete faq entry: %w", err)
	}

	s.logger.Info("FAQ entry deleted", zap.Int64("faq_id", id))
	s.audit.Record(ctx, "admin_deleted_faq", map[string]any{
		"admin_id": admin.ID,
		"faq_id":   id,
	})

	return nil
}

// ListByCategory получает записи FAQ категории
func (s *FAQService) ListByCategory(ctx context.Context, categoryID int64) ([]*model.FAQ, error) {
	entries, err := s.faq.ListByCategory(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list faq entries: %w", err)
	}
	return entries, nil
}

// GetByID получает запись FAQ по ID
func (s *FAQService) GetByID(ctx context.Context, id int64) (*model.FAQ, error) {
	entry, err := s.faq.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get faq entry: %w", err)
	}
	if entry == nil {
		return nil, fmt.Errorf("faq entry %d: %w", id, ErrNotFound)
	}
	return entry, nil
}
