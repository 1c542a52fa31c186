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

// HandleApproveRequest одобряет обращение и публикует его студентам
func (h *Handler) HandleApproveRequest(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	requestID, err := parseID(callback.Data)
	if err != nil {
		h.Logger.Error("Failed to parse request ID", zap.Error(err), zap.String("data", callback.Data))
		answerAlert(ctx, b, callback.ID, "❌ Неверный формат")
		return
	}

	admin, ok := h.requireAdmin(ctx, b, callback)
	if !ok {
		return
	}

	req, err := h.RequestService.Approve(ctx, admin, requestID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidState):
			answerAlert(ctx, b, callback.ID, "❌ Обращение уже обработано другим администратором.")
		case errors.Is(err, service.ErrNotFound):
			answerAlert(ctx, b, callback.ID, "❌ Обращение не найдено.")
		default:
			h.Logger.Error("Failed to approve request", zap.Error(err), zap.Int64("request_id", requestID))
			answerAlert(ctx, b, callback.ID, "❌ Не удалось одобрить обращение.")
		}
		return
	}

	if msg := messageFrom(callback); msg != nil {
		h.editMessage(ctx, b, callback,
			msg.Text+fmt.Sprintf("\n\n✅ Одобрено (%s)", admin.DisplayName()), nil)
	}
	answerCallback(ctx, b, callback.ID, fmt.Sprintf("Обращение %s одобрено", req.Ref()))
}

// HandleDeclineRequest запрашивает у администратора причину отклонения.
// Статус меняется после ввода причины.
func (h *Handler) HandleDeclineRequest(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	requestID, err := parseID(callback.Data)
	if err != nil {
		h.Logger.Error("Failed to parse request ID", zap.Error(err), zap.String("data", callback.Data))
		answerAlert(ctx, b, callback.ID, "❌ Неверный формат")
		return
	}

	admin, ok := h.requireAdmin(ctx, b, callback)
	if !ok {
		return
	}

	req, err := h.RequestService.BeginDecline(ctx, requestID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidState):
			answerAlert(ctx, b, callback.ID, "❌ Обращение уже обработано другим администратором.")
		case errors.Is(err, service.ErrNotFound):
			answerAlert(ctx, b, callback.ID, "❌ Обращение не найдено.")
		default:
			h.Logger.Error("Failed to begin decline", zap.Error(err), zap.Int64("request_id", requestID))
			answerAlert(ctx, b, callback.ID, "❌ Произошла ошибка. Попробуйте позже.")
		}
		return
	}

	h.StateManager.Set(admin.TelegramID, state.Dialog{
		Kind:      state.KindDecliningRequest,
		RequestID: requestID,
	})

	if msg := messageFrom(callback); msg != nil {
		h.editMessage(ctx, b, callback,
			msg.Text+fmt.Sprintf("\n\n⏳ Отклоняется администратором %s", admin.DisplayName()), nil)
	}
	answerCallback(ctx, b, callback.ID, "")
	h.send(ctx, b, callback,
		fmt.Sprintf("Введите причину отклонения обращения %s:", req.Ref()))
}

// HandleApproveAnswer одобряет ответ студента и закрывает обращение
func (h *Handler) HandleApproveAnswer(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	requestID, err := parseID(callback.Data)
	if err != nil {
		h.Logger.Error("Failed to parse request ID", zap.Error(err), zap.String("data", callback.Data))
		answerAlert(ctx, b, callback.ID, "❌ Неверный формат")
		return
	}

	admin, ok := h.requireAdmin(ctx, b, callback)
	if !ok {
		return
	}

	req, err := h.RequestService.ApproveAnswer(ctx, admin, requestID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidState):
			answerAlert(ctx, b, callback.ID, "❌ Ответ уже обработан другим администратором.")
		case errors.Is(err, service.ErrNotFound):
			answerAlert(ctx, b, callback.ID, "❌ Обращение не найдено.")
		default:
			h.Logger.Error("Failed to approve answer", zap.Error(err), zap.Int64("request_id", requestID))
			answerAlert(ctx, b, callback.ID, "❌ Не удалось одобрить ответ.")
		}
		return
	}

	if msg := messageFrom(callback); msg != nil {
		h.editMessage(ctx, b, callback,
			msg.Text+fmt.Sprintf("\n\n✅ Ответ одобрен (%s), обращение закрыто", admin.DisplayName()), nil)
	}
	answerCallback(ctx, b, callback.ID, fmt.Sprintf("Обращение %s закрыто", req.Ref()))
}

// HandleDeclineAnswer запрашивает комментарий к отклонению ответа
func (h *Handler) HandleDeclineAnswer(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	requestID, err := parseID(callback.Data)
	if err != nil {
		h.Logger.Error("Failed to parse request ID", zap.Error(err), zap.String("data", callback.Data))
		answerAlert(ctx, b, callback.ID, "❌ Неверный формат")
		return
	}

	admin, ok := h.requireAdmin(ctx, b, callback)
	if !ok {
		return
	}

	req, err := h.RequestService.BeginDeclineAnswer(ctx, requestID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidState):
			answerAlert(ctx, b, callback.ID, "❌ Ответ уже обработан другим администратором.")
		case errors.Is(err, service.ErrNotFound):
			answerAlert(ctx, b, callback.ID, "❌ Обращение не найдено.")
		default:
			h.Logger.Error("Failed to begin answer decline", zap.Error(err), zap.Int64("request_id", requestID))
			answerAlert(ctx, b, callback.ID, "❌ Произошла ошибка. Попробуйте позже.")
		}
		return
	}

	h.StateManager.Set(admin.TelegramID, state.Dialog{
		Kind:      state.KindDecliningAnswer,
		RequestID: requestID,
	})

	if msg := messageFrom(callback); msg != nil {
		h.editMessage(ctx, b, callback,
			msg.Text+fmt.Sprintf("\n\n⏳ Ответ отклоняется администратором %s", admin.DisplayName()), nil)
	}
	answerCallback(ctx, b, callback.ID, "")
	h.send(ctx, b, callback,
		fmt.Sprintf("Введите комментарий к отклонению ответа на обращение %s:", req.Ref()))
}

// HandleCancel отменяет текущее действие администратора
func (h *Handler) HandleCancel(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	h.StateManager.Clear(callback.From.ID)
	h.editMessage(ctx, b, callback, "Действие отменено.", nil)
	answerCallback(ctx, b, callback.ID, "")
}
