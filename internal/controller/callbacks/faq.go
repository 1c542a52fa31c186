package callbacks

import (
	"context"
	"errors"
	"fmt"

	"github.com/Freeeeeet/legal_clinic_bot/internal/controller/state"
	"github.com/Freeeeeet/legal_clinic_bot/internal/model"
	"github.com/Freeeeeet/legal_clinic_bot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

const faqButtonLabelLimit = 40

// HandleSelectFAQCategory начинает диалог создания записи FAQ
// в выбранной категории
func (h *Handler) HandleSelectFAQCategory(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
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
		Kind:       state.KindEnteringFAQQuestion,
		CategoryID: categoryID,
	})

	h.editMessage(ctx, b, callback, "❓ Введите текст вопроса:", nil)
	answerCallback(ctx, b, callback.ID, "")
}

// HandleEditFAQSelectCategory показывает записи категории для редактирования
func (h *Handler) HandleEditFAQSelectCategory(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	h.sendFAQList(ctx, b, callback, EditFAQ, "📖 Выберите запись для редактирования:")
}

// HandleDeleteFAQSelectCategory показывает записи категории для удаления
func (h *Handler) HandleDeleteFAQSelectCategory(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	h.sendFAQList(ctx, b, callback, DeleteFAQ, "📖 Выберите запись для удаления:")
}

// HandleEditFAQMenu показывает, что именно менять в записи FAQ
func (h *Handler) HandleEditFAQMenu(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	faqID, err := parseID(callback.Data)
	if err != nil {
		h.Logger.Error("Failed to parse faq ID", zap.Error(err), zap.String("data", callback.Data))
		answerAlert(ctx, b, callback.ID, "❌ Неверный формат")
		return
	}

	if _, ok := h.requireAdmin(ctx, b, callback); !ok {
		return
	}

	entry, err := h.FAQService.GetByID(ctx, faqID)
	if err != nil {
		answerAlert(ctx, b, callback.ID, "❌ Запись не найдена.")
		return
	}

	markup := &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: "❓ Вопрос", CallbackData: fmt.Sprintf("%s%d", EditFAQQuestion, faqID)}},
			{{Text: "💡 Ответ", CallbackData: fmt.Sprintf("%s%d", EditFAQAnswer, faqID)}},
			{{Text: "📂 Категория", CallbackData: fmt.Sprintf("%s%d", EditFAQCategory, faqID)}},
			{{Text: "Отмена", CallbackData: CancelEditFAQ}},
		},
	}

	h.editMessage(ctx, b, callback,
		fmt.Sprintf("❓ %s\n💡 %s\n\nЧто изменить?", entry.Question, entry.Answer), markup)
	answerCallback(ctx, b, callback.ID, "")
}

// HandleEditFAQQuestion начинает диалог изменения вопроса
func (h *Handler) HandleEditFAQQuestion(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	h.startFAQTextEdit(ctx, b, callback, state.KindEditingFAQQuestion, "❓ Введите новый текст вопроса:")
}

// HandleEditFAQAnswer начинает диалог изменения ответа
func (h *Handler) HandleEditFAQAnswer(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	h.startFAQTextEdit(ctx, b, callback, state.KindEditingFAQAnswer, "💡 Введите новый текст ответа:")
}

// HandleEditFAQCategory показывает категории для переноса записи
func (h *Handler) HandleEditFAQCategory(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	faqID, err := parseID(callback.Data)
	if err != nil {
		h.Logger.Error("Failed to parse faq ID", zap.Error(err), zap.String("data", callback.Data))
		answerAlert(ctx, b, callback.ID, "❌ Неверный формат")
		return
	}

	if _, ok := h.requireAdmin(ctx, b, callback); !ok {
		return
	}

	categories, err := h.CategoryService.List(ctx)
	if err != nil {
		h.Logger.Error("Failed to list categories", zap.Error(err))
		answerAlert(ctx, b, callback.ID, "❌ Произошла ошибка. Попробуйте позже.")
		return
	}

	rows := make([][]models.InlineKeyboardButton, 0, len(categories)+1)
	for _, category := range categories {
		rows = append(rows, []models.InlineKeyboardButton{{
			Text:         category.Name,
			CallbackData: fmt.Sprintf("%s%d:%d", SetFAQCategory, faqID, category.ID),
		}})
	}
	rows = append(rows, []models.InlineKeyboardButton{{Text: "Отмена", CallbackData: CancelEditFAQ}})

	h.editMessage(ctx, b, callback, "📂 Выберите новую категорию записи:",
		&models.InlineKeyboardMarkup{InlineKeyboard: rows})
	answerCallback(ctx, b, callback.ID, "")
}

// HandleSetFAQCategory переносит запись FAQ в выбранную категорию
func (h *Handler) HandleSetFAQCategory(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	faqID, categoryID, err := parsePair(callback.Data)
	if err != nil {
		h.Logger.Error("Failed to parse faq callback", zap.Error(err), zap.String("data", callback.Data))
		answerAlert(ctx, b, callback.ID, "❌ Неверный формат")
		return
	}

	admin, ok := h.requireAdmin(ctx, b, callback)
	if !ok {
		return
	}

	entry, err := h.FAQService.Reassign(ctx, admin, faqID, categoryID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			answerAlert(ctx, b, callback.ID, "❌ Запись или категория не найдены.")
			return
		}
		h.Logger.Error("Failed to reassign faq entry", zap.Error(err), zap.Int64("faq_id", faqID))
		answerAlert(ctx, b, callback.ID, "❌ Не удалось перенести запись.")
		return
	}

	h.editMessage(ctx, b, callback,
		fmt.Sprintf("✅ Запись перенесена в категорию «%s».", entry.Category.Name), nil)
	answerCallback(ctx, b, callback.ID, "")
}

// HandleDeleteFAQConfirm показывает подтверждение удаления записи
func (h *Handler) HandleDeleteFAQConfirm(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	faqID, err := parseID(callback.Data)
	if err != nil {
		h.Logger.Error("Failed to parse faq ID", zap.Error(err), zap.String("data", callback.Data))
		answerAlert(ctx, b, callback.ID, "❌ Неверный формат")
		return
	}

	if _, ok := h.requireAdmin(ctx, b, callback); !ok {
		return
	}

	entry, err := h.FAQService.GetByID(ctx, faqID)
	if err != nil {
		answerAlert(ctx, b, callback.ID, "❌ Запись не найдена.")
		return
	}

	markup := &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: "🗑 Удалить", CallbackData: fmt.Sprintf("%s%d", ConfirmDeleteFAQ, faqID)}},
			{{Text: "Отмена", CallbackData: CancelDeleteFAQ}},
		},
	}

	h.editMessage(ctx, b, callback,
		fmt.Sprintf("🗑 Удалить запись FAQ?\n\n❓ %s\n💡 %s", entry.Question, entry.Answer), markup)
	answerCallback(ctx, b, callback.ID, "")
}

// HandleConfirmDeleteFAQ удаляет запись FAQ
func (h *Handler) HandleConfirmDeleteFAQ(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	faqID, err := parseID(callback.Data)
	if err != nil {
		h.Logger.Error("Failed to parse faq ID", zap.Error(err), zap.String("data", callback.Data))
		answerAlert(ctx, b, callback.ID, "❌ Неверный формат")
		return
	}

	admin, ok := h.requireAdmin(ctx, b, callback)
	if !ok {
		return
	}

	if err := h.FAQService.Delete(ctx, admin, faqID); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			answerAlert(ctx, b, callback.ID, "❌ Запись не найдена.")
			return
		}
		h.Logger.Error("Failed to delete faq entry", zap.Error(err), zap.Int64("faq_id", faqID))
		answerAlert(ctx, b, callback.ID, "❌ Не удалось удалить запись.")
		return
	}

	h.editMessage(ctx, b, callback, "✅ Запись FAQ удалена.", nil)
	answerCallback(ctx, b, callback.ID, "")
}

// sendFAQList показывает записи категории inline-списком,
// callback data собирается как "<actionPrefix><faq_id>"
func (h *Handler) sendFAQList(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, actionPrefix, title string) {
	categoryID, err := parseID(callback.Data)
	if err != nil {
		h.Logger.Error("Failed to parse category ID", zap.Error(err), zap.String("data", callback.Data))
		answerAlert(ctx, b, callback.ID, "❌ Неверный формат")
		return
	}

	if _, ok := h.requireAdmin(ctx, b, callback); !ok {
		return
	}

	entries, err := h.FAQService.ListByCategory(ctx, categoryID)
	if err != nil {
		h.Logger.Error("Failed to list faq entries", zap.Error(err), zap.Int64("category_id", categoryID))
		answerAlert(ctx, b, callback.ID, "❌ Произошла ошибка. Попробуйте позже.")
		return
	}
	if len(entries) == 0 {
		h.editMessage(ctx, b, callback, "В этой категории пока нет записей FAQ.", nil)
		answerCallback(ctx, b, callback.ID, "")
		return
	}

	h.editMessage(ctx, b, callback, title,
		&models.InlineKeyboardMarkup{InlineKeyboard: faqButtons(entries, actionPrefix)})
	answerCallback(ctx, b, callback.ID, "")
}

func faqButtons(entries []*model.FAQ, actionPrefix string) [][]models.InlineKeyboardButton {
	rows := make([][]models.InlineKeyboardButton, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, []models.InlineKeyboardButton{{
			Text:         truncate(entry.Question, faqButtonLabelLimit),
			CallbackData: fmt.Sprintf("%s%d", actionPrefix, entry.ID),
		}})
	}
	return rows
}

func (h *Handler) startFAQTextEdit(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, kind state.DialogKind, prompt string) {
	faqID, err := parseID(callback.Data)
	if err != nil {
		h.Logger.Error("Failed to parse faq ID", zap.Error(err), zap.String("data", callback.Data))
		answerAlert(ctx, b, callback.ID, "❌ Неверный формат")
		return
	}

	admin, ok := h.requireAdmin(ctx, b, callback)
	if !ok {
		return
	}

	h.StateManager.Set(admin.TelegramID, state.Dialog{
		Kind:  kind,
		FAQID: faqID,
	})

	h.editMessage(ctx, b, callback, prompt, nil)
	answerCallback(ctx, b, callback.ID, "")
}
