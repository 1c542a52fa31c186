package notify

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/legal_clinic_bot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// TelegramNotifier доставляет уведомления участникам через Telegram.
// Общие рассылки уходят в чат студентов.
type TelegramNotifier struct {
	bot           *bot.Bot
	studentChatID int64
	logger        *zap.Logger
}

func NewTelegramNotifier(b *bot.Bot, studentChatID int64, logger *zap.Logger) *TelegramNotifier {
	return &TelegramNotifier{bot: b, studentChatID: studentChatID, logger: logger}
}

// Notify отправляет сообщение в указанный чат, кнопки действий
// прикрепляются inline-клавиатурой
func (n *TelegramNotifier) Notify(ctx context.Context, chatID int64, text string, controls ...service.Control) error {
	params := &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	}
	if markup := keyboard(controls); markup != nil {
		params.ReplyMarkup = markup
	}

	if _, err := n.bot.SendMessage(ctx, params); err != nil {
		return fmt.Errorf("send message to chat %d: %w", chatID, err)
	}
	return nil
}

// Broadcast публикует сообщение в чат студентов и возвращает id
// отправленного сообщения для последующего редактирования
func (n *TelegramNotifier) Broadcast(ctx context.Context, text string, controls ...service.Control) (int, error) {
	params := &bot.SendMessageParams{
		ChatID: n.studentChatID,
		Text:   text,
	}
	if markup := keyboard(controls); markup != nil {
		params.ReplyMarkup = markup
	}

	msg, err := n.bot.SendMessage(ctx, params)
	if err != nil {
		return 0, fmt.Errorf("send message to student chat: %w", err)
	}

	n.logger.Debug("Broadcast sent",
		zap.Int64("chat_id", n.studentChatID),
		zap.Int("message_id", msg.ID),
	)
	return msg.ID, nil
}

// EditBroadcast заменяет текст ранее опубликованного сообщения
// в чате студентов. Пустой набор кнопок убирает клавиатуру.
func (n *TelegramNotifier) EditBroadcast(ctx context.Context, messageID int, text string, controls ...service.Control) error {
	params := &bot.EditMessageTextParams{
		ChatID:    n.studentChatID,
		MessageID: messageID,
		Text:      text,
	}
	if markup := keyboard(controls); markup != nil {
		params.ReplyMarkup = markup
	}

	if _, err := n.bot.EditMessageText(ctx, params); err != nil {
		return fmt.Errorf("edit message %d: %w", messageID, err)
	}
	return nil
}

func keyboard(controls []service.Control) *models.InlineKeyboardMarkup {
	if len(controls) == 0 {
		return nil
	}

	row := make([]models.InlineKeyboardButton, 0, len(controls))
	for _, control := range controls {
		row = append(row, models.InlineKeyboardButton{
			Text:         control.Label,
			CallbackData: control.Action,
		})
	}

	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{row},
	}
}
