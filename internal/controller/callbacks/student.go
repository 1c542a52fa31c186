package callbacks

import (
	"context"
	"errors"

	"github.com/Freeeeeet/legal_clinic_bot/internal/controller/state"
	"github.com/Freeeeeet/legal_clinic_bot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// HandleTakeRequest закрепляет обращение за студентом. Кнопку может
// нажать любой участник чата студентов, первый захват делает его
// студентом.
func (h *Handler) HandleTakeRequest(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	requestID, err := parseID(callback.Data)
	if err != nil {
		h.Logger.Error("Failed to parse request ID", zap.Error(err), zap.String("data", callback.Data))
		answerAlert(ctx, b, callback.ID, "❌ Неверный формат")
		return
	}

	student, err := h.resolveUser(ctx, callback.From)
	if err != nil {
		h.Logger.Error("Failed to resolve user", zap.Error(err))
		answerAlert(ctx, b, callback.ID, "❌ Произошла ошибка. Попробуйте позже.")
		return
	}

	messageID := 0
	if msg := messageFrom(callback); msg != nil {
		messageID = msg.ID
	}

	req, err := h.RequestService.Claim(ctx, student, requestID, messageID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrConflict):
			answerAlert(ctx, b, callback.ID,
				"❌ У вас уже есть активное обращение. Завершите его, прежде чем брать новое.")
		case errors.Is(err, service.ErrInvalidState):
			answerAlert(ctx, b, callback.ID, "❌ Это обращение уже взял другой студент.")
		case errors.Is(err, service.ErrNotFound):
			answerAlert(ctx, b, callback.ID, "❌ Обращение не найдено.")
		default:
			h.Logger.Error("Failed to claim request", zap.Error(err), zap.Int64("request_id", requestID))
			answerAlert(ctx, b, callback.ID, "❌ Не удалось взять обращение. Попробуйте позже.")
		}
		return
	}

	answerCallback(ctx, b, callback.ID,
		"Обращение "+req.Ref()+" закреплено за вами. Подробности отправлены в личные сообщения.")
}

// HandleEditAnswer начинает диалог повторного ответа после отклонения
func (h *Handler) HandleEditAnswer(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	requestID, err := parseID(callback.Data)
	if err != nil {
		h.Logger.Error("Failed to parse request ID", zap.Error(err), zap.String("data", callback.Data))
		answerAlert(ctx, b, callback.ID, "❌ Неверный формат")
		return
	}

	student, err := h.resolveUser(ctx, callback.From)
	if err != nil {
		h.Logger.Error("Failed to resolve user", zap.Error(err))
		answerAlert(ctx, b, callback.ID, "❌ Произошла ошибка. Попробуйте позже.")
		return
	}

	if !student.HasAssignment() || *student.CurrentAssignmentID != requestID {
		answerAlert(ctx, b, callback.ID, "❌ Это обращение не закреплено за вами.")
		return
	}

	h.StateManager.Set(student.TelegramID, state.Dialog{
		Kind:      state.KindDraftingAnswer,
		RequestID: requestID,
	})

	answerCallback(ctx, b, callback.ID, "")
	h.send(ctx, b, callback, "✏️ Отправьте новый текст ответа:")
}

// HandleRejectAssignment возвращает обращение в общую очередь
func (h *Handler) HandleRejectAssignment(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	requestID, err := parseID(callback.Data)
	if err != nil {
		h.Logger.Error("Failed to parse request ID", zap.Error(err), zap.String("data", callback.Data))
		answerAlert(ctx, b, callback.ID, "❌ Неверный формат")
		return
	}

	student, err := h.resolveUser(ctx, callback.From)
	if err != nil {
		h.Logger.Error("Failed to resolve user", zap.Error(err))
		answerAlert(ctx, b, callback.ID, "❌ Произошла ошибка. Попробуйте позже.")
		return
	}

	_, err = h.RequestService.Release(ctx, student, requestID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrConflict):
			answerAlert(ctx, b, callback.ID, "❌ Это обращение не закреплено за вами.")
		case errors.Is(err, service.ErrInvalidState):
			answerAlert(ctx, b, callback.ID, "❌ Обращение уже в другом статусе.")
		case errors.Is(err, service.ErrNotFound):
			answerAlert(ctx, b, callback.ID, "❌ Обращение не найдено.")
		default:
			h.Logger.Error("Failed to release assignment", zap.Error(err), zap.Int64("request_id", requestID))
			answerAlert(ctx, b, callback.ID, "❌ Не удалось отказаться от обращения.")
		}
		return
	}

	h.StateManager.Clear(student.TelegramID)
	answerCallback(ctx, b, callback.ID, "")
	h.send(ctx, b, callback, "✅ Вы отказались от обращения. Оно возвращено в общую очередь.")
}
