package callbacks

import (
	"context"
	"errors"
	"fmt"

	"github.com/Freeeeeet/legal_clinic_bot/internal/controller/state"
	"github.com/Freeeeeet/legal_clinic_bot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// HandleEditCategoryMenu показывает, что именно менять в категории
func (h *Handler) HandleEditCategoryMenu(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	categoryID, err := parseID(callback.Data)
	if err != nil {
		h.Logger.Error("Failed to parse category ID", zap.Error(err), zap.String("data", callback.Data))
		answerAlert(ctx, b, callback.ID, "❌ Неверный формат")
		return
	}

	if _, ok := h.requireAdmin(ctx, b, callback); !ok {
		return
	}

	category, err := h.CategoryService.GetByID(ctx, categoryID)
	if err != nil {
		answerAlert(ctx, b, callback.ID, "❌ Категория не найдена.")
		return
	}

	markup := &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: "✏️ Название", CallbackData: fmt.Sprintf("%s%d", EditCategoryName, categoryID)}},
			{{Text: "🏷 Хештег", CallbackData: fmt.Sprintf("%s%d", EditCategoryHashtag, categoryID)}},
			{{Text: "Отмена", CallbackData: CancelEditCategory}},
		},
	}

	h.editMessage(ctx, b, callback,
		fmt.Sprintf("📂 Категория «%s» %s\n\nЧто изменить?", category.Name, category.Hashtag), markup)
	answerCallback(ctx, b, callback.ID, "")
}

// HandleEditCategoryName начинает диалог переименования
func (h *Handler) HandleEditCategoryName(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	categoryID, err := parseID(callback.Data)
	if err != nil {
		h.Logger.Error("Failed to parse category ID", zap.Error(err), zap.String("data", callback.Data))
		answerAlert(ctx, b, callback.ID, "❌ Неверный формат")
		return
	}

	admin, ok := h.requireAdmin(ctx, b, callback)
	if !ok {
		return
	}

	h.StateManager.Set(admin.TelegramID, state.Dialog{
		Kind:       state.KindRenamingCategory,
		CategoryID: categoryID,
	})

	h.editMessage(ctx, b, callback, "✏️ Введите новое название категории:", nil)
	answerCallback(ctx, b, callback.ID, "")
}

// HandleEditCategoryHashtag начинает диалог смены хештега
func (h *Handler) HandleEditCategoryHashtag(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	categoryID, err := parseID(callback.Data)
	if err != nil {
		h.Logger.Error("Failed to parse category ID", zap.Error(err), zap.String("data", callback.Data))
		answerAlert(ctx, b, callback.ID, "❌ Неверный формат")
		return
	}

	admin, ok := h.requireAdmin(ctx, b, callback)
	if !ok {
		return
	}

	h.StateManager.Set(admin.TelegramID, state.Dialog{
		Kind:       state.KindRetaggingCategory,
		CategoryID: categoryID,
	})

	h.editMessage(ctx, b, callback, "🏷 Введите новый хештег категории:", nil)
	answerCallback(ctx, b, callback.ID, "")
}

// HandleDeleteCategoryConfirm показывает подтверждение удаления
// со счетчиками ссылок на категорию
func (h *Handler) HandleDeleteCategoryConfirm(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	categoryID, err := parseID(callback.Data)
	if err != nil {
		h.Logger.Error("Failed to parse category ID", zap.Error(err), zap.String("data", callback.Data))
		answerAlert(ctx, b, callback.ID, "❌ Неверный формат")
		return
	}

	if _, ok := h.requireAdmin(ctx, b, callback); !ok {
		return
	}

	category, err := h.CategoryService.GetByID(ctx, categoryID)
	if err != nil {
		answerAlert(ctx, b, callback.ID, "❌ Категория не найдена.")
		return
	}

	requests, faqEntries, err := h.CategoryService.References(ctx, categoryID)
	if err != nil {
		h.Logger.Error("Failed to count category references", zap.Error(err))
		answerAlert(ctx, b, callback.ID, "❌ Произошла ошибка. Попробуйте позже.")
		return
	}

	text := fmt.Sprintf("🗑 Удалить категорию «%s» %s?", category.Name, category.Hashtag)
	if requests > 0 || faqEntries > 0 {
		text += fmt.Sprintf(
			"\n\n⚠️ На категорию ссылаются обращения (%d) и записи FAQ (%d). Удаление будет отклонено.",
			requests, faqEntries)
	}

	markup := &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: "🗑 Удалить", CallbackData: fmt.Sprintf("%s%d", ConfirmDeleteCat, categoryID)}},
			{{Text: "Отмена", CallbackData: CancelDeleteCat}},
		},
	}

	h.editMessage(ctx, b, callback, text, markup)
	answerCallback(ctx, b, callback.ID, "")
}

// HandleConfirmDeleteCategory удаляет категорию без ссылок на неё
func (h *Handler) HandleConfirmDeleteCategory(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	categoryID, err := parseID(callback.Data)
	if err != nil {
		h.Logger.Error("Failed to parse category ID", zap.Error(err), zap.String("data", callback.Data))
		answerAlert(ctx, b, callback.ID, "❌ Неверный формат")
		return
	}

	admin, ok := h.requireAdmin(ctx, b, callback)
	if !ok {
		return
	}

	if err := h.CategoryService.Delete(ctx, admin, categoryID); err != nil {
		switch {
		case errors.Is(err, service.ErrConflict):
			answerAlert(ctx, b, callback.ID,
				"❌ Категория используется обращениями или записями FAQ и не может быть удалена.")
		case errors.Is(err, service.ErrNotFound):
			answerAlert(ctx, b, callback.ID, "❌ Категория не найдена.")
		default:
			h.Logger.Error("Failed to delete category", zap.Error(err), zap.Int64("category_id", categoryID))
			answerAlert(ctx, b, callback.ID, "❌ Не удалось удалить категорию.")
		}
		return
	}

	h.editMessage(ctx, b, callback, "✅ Категория удалена.", nil)
	answerCallback(ctx, b, callback.ID, "")
}
