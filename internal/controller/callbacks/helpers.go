package callbacks

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Freeeeeet/legal_clinic_bot/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// answerCallback отвечает на callback query (без alert)
func answerCallback(ctx context.Context, b *bot.Bot, callbackID string, text string) {
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
		ShowAlert:       false,
	})
}

// answerAlert отвечает на callback query с alert (всплывающее окно)
func answerAlert(ctx context.Context, b *bot.Bot, callbackID string, text string) {
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
		ShowAlert:       true,
	})
}

// messageFrom извлекает сообщение из callback query
func messageFrom(callback *models.CallbackQuery) *models.Message {
	if callback.Message.Message != nil {
		return callback.Message.Message
	}
	return nil
}

// parseID извлекает ID из callback data вида "action:123"
func parseID(data string) (int64, error) {
	parts := strings.Split(data, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid callback data format: %q", data)
	}
	return strconv.ParseInt(parts[1], 10, 64)
}

// parsePair извлекает два ID из callback data вида "action:12:34"
func parsePair(data string) (int64, int64, error) {
	parts := strings.Split(data, ":")
	if len(parts) != 3 {
		return 0, 0, fmt.Errorf("invalid callback data format: %q", data)
	}
	first, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, 0, err
	}
	second, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return 0, 0, err
	}
	return first, second, nil
}

// resolveUser регистрирует или обновляет отправителя callback
func (h *Handler) resolveUser(ctx context.Context, from models.User) (*model.User, error) {
	return h.UserService.GetOrCreate(ctx, from.ID, from.Username, from.FirstName, from.LastName)
}

// requireAdmin проверяет роль отправителя, не-администратору
// показывается alert
func (h *Handler) requireAdmin(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) (*model.User, bool) {
	user, err := h.resolveUser(ctx, callback.From)
	if err != nil {
		h.Logger.Error("Failed to resolve user", zap.Error(err))
		answerAlert(ctx, b, callback.ID, "❌ Произошла ошибка. Попробуйте позже.")
		return nil, false
	}
	if !user.IsAdmin() {
		answerAlert(ctx, b, callback.ID, "❌ Действие доступно только администраторам.")
		return nil, false
	}
	return user, true
}

// editMessage заменяет текст сообщения, из которого пришел callback.
// Передача markup nil убирает inline-клавиатуру.
func (h *Handler) editMessage(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, text string, markup *models.InlineKeyboardMarkup) {
	msg := messageFrom(callback)
	if msg == nil {
		return
	}

	params := &bot.EditMessageTextParams{
		ChatID:    msg.Chat.ID,
		MessageID: msg.ID,
		Text:      text,
	}
	if markup != nil {
		params.ReplyMarkup = markup
	}

	if _, err := b.EditMessageText(ctx, params); err != nil {
		h.Logger.Error("Failed to edit message",
			zap.Int64("chat_id", msg.Chat.ID),
			zap.Int("message_id", msg.ID),
			zap.Error(err),
		)
	}
}

// send отправляет сообщение в чат, из которого пришел callback
func (h *Handler) send(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, text string) {
	msg := messageFrom(callback)
	if msg == nil {
		return
	}

	if _, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: msg.Chat.ID,
		Text:   text,
	}); err != nil {
		h.Logger.Error("Failed to send message",
			zap.Int64("chat_id", msg.Chat.ID),
			zap.Error(err),
		)
	}
}

// truncate обрезает строку для подписи inline-кнопки
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
