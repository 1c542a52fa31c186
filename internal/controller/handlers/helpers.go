package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/legal_clinic_bot/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// RequestStatusDisplay содержит emoji и текст для отображения статуса
type RequestStatusDisplay struct {
	Emoji string
	Text  string
}

var statusDisplay = map[model.RequestStatus]RequestStatusDisplay{
	model.RequestStatusPending:  {Emoji: "⏳", Text: "На рассмотрении"},
	model.RequestStatusApproved: {Emoji: "👨‍💼", Text: "Ожидает исполнителя"},
	model.RequestStatusDeclined: {Emoji: "❌", Text: "Отклонено"},
	model.RequestStatusAssigned: {Emoji: "🔄", Text: "В обработке"},
	model.RequestStatusAnswered: {Emoji: "✅", Text: "Ответ на проверке"},
	model.RequestStatusClosed:   {Emoji: "✅", Text: "Закрыто"},
}

// GetRequestStatusDisplay возвращает emoji и текст для статуса обращения
func GetRequestStatusDisplay(status model.RequestStatus) RequestStatusDisplay {
	if display, ok := statusDisplay[status]; ok {
		return display
	}
	return RequestStatusDisplay{Emoji: "❓", Text: string(status)}
}

// FormatRequest форматирует обращение для списка заявителя
func FormatRequest(req *model.Request) string {
	display := GetRequestStatusDisplay(req.Status)

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s Обращение %s\n", display.Emoji, req.Ref())
	if req.Category != nil {
		fmt.Fprintf(&sb, "📂 Категория: %s\n", req.Category.Name)
	}
	fmt.Fprintf(&sb, "📊 Статус: %s\n", display.Text)
	fmt.Fprintf(&sb, "📅 Создано: %s", req.CreatedAt.Format("02.01.2006 15:04"))

	if req.Status == model.RequestStatusDeclined && req.AdminComment != "" {
		fmt.Fprintf(&sb, "\n💬 Причина отклонения: %s", req.AdminComment)
	}
	if req.Status == model.RequestStatusClosed && req.AnswerText != "" {
		fmt.Fprintf(&sb, "\n📝 Ответ: %s", req.AnswerText)
	}

	return sb.String()
}

// resolveUser регистрирует или обновляет пользователя по данным Telegram
func (h *Handlers) resolveUser(ctx context.Context, from *models.User) (*model.User, error) {
	return h.userService.GetOrCreate(ctx, from.ID, from.Username, from.FirstName, from.LastName)
}

// send отправляет текст в чат, ошибка доставки только логируется
func (h *Handlers) send(ctx context.Context, b *bot.Bot, chatID int64, text string, markup models.ReplyMarkup) {
	params := &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	}
	if markup != nil {
		params.ReplyMarkup = markup
	}

	if _, err := b.SendMessage(ctx, params); err != nil {
		h.logger.Error("Failed to send message",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
	}
}

// sendError отправляет сообщение об ошибке без смены клавиатуры
func (h *Handlers) sendError(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	h.send(ctx, b, chatID, "❌ "+text, nil)
}
