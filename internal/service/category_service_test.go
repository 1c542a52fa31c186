package service

import (
	"context"
	"testing"

	"github.com/Freeeeeet/legal_clinic_bot/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type categoryFixture struct {
	svc        *CategoryService
	categories *fakeCategoryStore
	requests   *fakeRequestStore
	faq        *fakeFAQStore
	admin      *model.User
}

func newCategoryFixture(t *testing.T) *categoryFixture {
	t.Helper()

	categories := newFakeCategoryStore()
	requests := newFakeRequestStore()
	faq := newFakeFAQStore()

	svc := NewCategoryService(categories, requests, faq, &fakeRecorder{}, zap.NewNop())

	return &categoryFixture{
		svc:        svc,
		categories: categories,
		requests:   requests,
		faq:        faq,
		admin:      &model.User{ID: 1, TelegramID: 200, Role: model.RoleAdmin},
	}
}

func TestCategoryService_CreateNormalizesHashtag(t *testing.T) {
	f := newCategoryFixture(t)

	category, err := f.svc.Create(context.Background(), f.admin, "Трудовое право", "трудовое_право")
	require.NoError(t, err)
	assert.Equal(t, "#трудовое_право", category.Hashtag)
}

func TestCategoryService_CreateValidation(t *testing.T) {
	f := newCategoryFixture(t)
	ctx := context.Background()

	var validationErr *ValidationError

	_, err := f.svc.Create(ctx, f.admin, "  ", "#тег")
	require.ErrorAs(t, err, &validationErr)

	_, err = f.svc.Create(ctx, f.admin, "Название", "  ")
	require.ErrorAs(t, err, &validationErr)
}

func TestCategoryService_CreateDuplicate(t *testing.T) {
	f := newCategoryFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.admin, "Трудовое право", "#трудовое_право")
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, f.admin, "Трудовое право", "#другой_тег")
	assert.ErrorIs(t, err, ErrConflict)

	_, err = f.svc.Create(ctx, f.admin, "Другое название", "#трудовое_право")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestCategoryService_RenameConflictExcludesSelf(t *testing.T) {
	f := newCategoryFixture(t)
	ctx := context.Background()

	category, err := f.svc.Create(ctx, f.admin, "Трудовое право", "#трудовое_право")
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, f.admin, "Семейное право", "#семейное_право")
	require.NoError(t, err)

	// Повторное сохранение того же имени не считается конфликтом
	_, err = f.svc.Rename(ctx, f.admin, category.ID, "Трудовое право")
	require.NoError(t, err)

	_, err = f.svc.Rename(ctx, f.admin, category.ID, "Семейное право")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestCategoryService_DeleteGuarded(t *testing.T) {
	f := newCategoryFixture(t)
	ctx := context.Background()

	category, err := f.svc.Create(ctx, f.admin, "Трудовое право", "#трудовое_право")
	require.NoError(t, err)

	require.NoError(t, f.faq.Create(ctx, &model.FAQ{
		CategoryID: category.ID,
		Question:   "Как оформить отпуск?",
		Answer:     "Подайте заявление за две недели.",
	}))

	err = f.svc.Delete(ctx, f.admin, category.ID)
	assert.ErrorIs(t, err, ErrConflict)

	// Категория без ссылок удаляется
	require.NoError(t, f.faq.Delete(ctx, 1))
	require.NoError(t, f.svc.Delete(ctx, f.admin, category.ID))

	_, err = f.svc.GetByID(ctx, category.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCategoryService_DeleteGuardedByRequests(t *testing.T) {
	f := newCategoryFixture(t)
	ctx := context.Background()

	category, err := f.svc.Create(ctx, f.admin, "Трудовое право", "#трудовое_право")
	require.NoError(t, err)

	require.NoError(t, f.requests.Create(ctx, &model.Request{
		UserID:     1,
		CategoryID: category.ID,
		Status:     model.RequestStatusClosed,
	}))

	err = f.svc.Delete(ctx, f.admin, category.ID)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestCategoryService_References(t *testing.T) {
	f := newCategoryFixture(t)
	ctx := context.Background()

	category, err := f.svc.Create(ctx, f.admin, "Трудовое право", "#трудовое_право")
	require.NoError(t, err)

	requests, faqEntries, err := f.svc.References(ctx, category.ID)
	require.NoError(t, err)
	assert.Zero(t, requests)
	assert.Zero(t, faqEntries)

	require.NoError(t, f.requests.Create(ctx, &model.Request{UserID: 1, CategoryID: category.ID, Status: model.RequestStatusPending}))
	require.NoError(t, f.faq.Create(ctx, &model.FAQ{CategoryID: category.ID, Question: "q", Answer: "a"}))

	requests, faqEntries, err = f.svc.References(ctx, category.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, requests)
	assert.Equal(t, 1, faqEntries)
}
