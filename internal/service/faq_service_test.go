package service

import (
	"context"
	"testing"

	"github.com/Freeeeeet/legal_clinic_bot/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type faqFixture struct {
	svc      *FAQService
	category *model.Category
	admin    *model.User
}

func newFAQFixture(t *testing.T) *faqFixture {
	t.Helper()

	categories := newFakeCategoryStore()
	category := &model.Category{Name: "Жилищное право", Hashtag: "#жилищное_право"}
	require.NoError(t, categories.Create(context.Background(), category))

	return &faqFixture{
		svc:      NewFAQService(newFakeFAQStore(), categories, &fakeRecorder{}, zap.NewNop()),
		category: category,
		admin:    &model.User{ID: 1, TelegramID: 200, Role: model.RoleAdmin},
	}
}

func TestFAQService_Create(t *testing.T) {
	f := newFAQFixture(t)
	ctx := context.Background()

	entry, err := f.svc.Create(ctx, f.admin, f.category.ID,
		"Как выселить шумных соседей?", "Обратитесь с жалобой к участковому.")
	require.NoError(t, err)
	require.NotNil(t, entry.Category)
	assert.Equal(t, f.category.ID, entry.CategoryID)

	entries, err := f.svc.ListByCategory(ctx, f.category.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFAQService_CreateValidation(t *testing.T) {
	f := newFAQFixture(t)
	ctx := context.Background()

	var validationErr *ValidationError

	_, err := f.svc.Create(ctx, f.admin, f.category.ID, "  ", "ответ")
	require.ErrorAs(t, err, &validationErr)

	_, err = f.svc.Create(ctx, f.admin, f.category.ID, "вопрос", "")
	require.ErrorAs(t, err, &validationErr)

	_, err = f.svc.Create(ctx, f.admin, 999, "вопрос", "ответ")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFAQService_UpdateAndDelete(t *testing.T) {
	f := newFAQFixture(t)
	ctx := context.Background()

	entry, err := f.svc.Create(ctx, f.admin, f.category.ID, "вопрос", "ответ")
	require.NoError(t, err)

	updated, err := f.svc.UpdateQuestion(ctx, f.admin, entry.ID, "новый вопрос")
	require.NoError(t, err)
	assert.Equal(t, "новый вопрос", updated.Question)

	updated, err = f.svc.UpdateAnswer(ctx, f.admin, entry.ID, "новый ответ")
	require.NoError(t, err)
	assert.Equal(t, "новый ответ", updated.Answer)

	require.NoError(t, f.svc.Delete(ctx, f.admin, entry.ID))

	_, err = f.svc.GetByID(ctx, entry.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFAQService_ReassignToMissingCategory(t *testing.T) {
	f := newFAQFixture(t)
	ctx := context.Background()

	entry, err := f.svc.Create(ctx, f.admin, f.category.ID, "вопрос", "ответ")
	require.NoError(t, err)

	_, err = f.svc.Reassign(ctx, f.admin, entry.ID, 999)
	assert.ErrorIs(t, err, ErrNotFound)

	// Запись осталась в исходной категории
	stored, err := f.svc.GetByID(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, f.category.ID, stored.CategoryID)
}
