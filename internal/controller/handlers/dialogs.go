package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Freeeeeet/legal_clinic_bot/internal/controller/keyboard"
	"github.com/Freeeeeet/legal_clinic_bot/internal/controller/state"
	"github.com/Freeeeeet/legal_clinic_bot/internal/model"
	"github.com/Freeeeeet/legal_clinic_bot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// HandleTextMessage обрабатывает текстовые сообщения: кнопки меню
// и шаги многошаговых диалогов
func (h *Handlers) HandleTextMessage(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Text == "" {
		return
	}

	text := strings.TrimSpace(update.Message.Text)

	// Команды обрабатываются зарегистрированными handlers
	if strings.HasPrefix(text, "/") {
		return
	}

	user, err := h.resolveUser(ctx, update.Message.From)
	if err != nil {
		h.logger.Error("Failed to resolve user", zap.Error(err))
		return
	}

	chatID := update.Message.Chat.ID

	// Кнопки меню работают из любого шага диалога
	switch text {
	case keyboard.ButtonBack:
		h.stateManager.Clear(user.TelegramID)
		h.send(ctx, b, chatID, "Главное меню:", keyboard.MainMenu())
		return
	case keyboard.ButtonAsk:
		h.startAskDialog(ctx, b, chatID, user)
		return
	case keyboard.ButtonFAQ:
		h.startFAQDialog(ctx, b, chatID, user)
		return
	case keyboard.ButtonMyRequests:
		h.showMyRequests(ctx, b, chatID, user)
		return
	case keyboard.ButtonReject:
		h.handleReject(ctx, b, chatID, user)
		return
	}

	dialog := h.stateManager.Get(user.TelegramID)

	switch dialog.Kind {
	case state.KindChoosingCategory:
		h.handleCategoryChosen(ctx, b, chatID, user, text)
	case state.KindEnteringRequestBody:
		h.handleRequestBody(ctx, b, chatID, user, dialog, text)
	case state.KindConfirmingRequest:
		h.handleRequestConfirmation(ctx, b, chatID, user, dialog, text)
	case state.KindChoosingFAQCategory:
		h.handleFAQCategoryChosen(ctx, b, chatID, user, text)
	case state.KindDraftingAnswer:
		h.acceptAnswerDraft(ctx, b, chatID, user, dialog.RequestID, text)
	case state.KindConfirmingAnswer:
		h.handleAnswerConfirmation(ctx, b, chatID, user, dialog, text)
	case state.KindDecliningRequest:
		h.handleDeclineReason(ctx, b, chatID, user, dialog, text)
	case state.KindDecliningAnswer:
		h.handleDeclineAnswerComment(ctx, b, chatID, user, dialog, text)
	case state.KindEnteringCategoryName:
		h.stateManager.Set(user.TelegramID, state.Dialog{
			Kind: state.KindEnteringCategoryHashtag,
			Name: text,
		})
		h.send(ctx, b, chatID, "🏷 Введите хештег категории (например, #семейное_право):", nil)
	case state.KindEnteringCategoryHashtag:
		h.handleCategoryCreation(ctx, b, chatID, user, dialog, text)
	case state.KindRenamingCategory:
		h.handleCategoryRename(ctx, b, chatID, user, dialog, text)
	case state.KindRetaggingCategory:
		h.handleCategoryRetag(ctx, b, chatID, user, dialog, text)
	case state.KindEnteringFAQQuestion:
		h.stateManager.Set(user.TelegramID, state.Dialog{
			Kind:       state.KindEnteringFAQAnswer,
			CategoryID: dialog.CategoryID,
			Question:   text,
		})
		h.send(ctx, b, chatID, "💡 Введите ответ на этот вопрос:", nil)
	case state.KindEnteringFAQAnswer:
		h.handleFAQCreation(ctx, b, chatID, user, dialog, text)
	case state.KindEditingFAQQuestion:
		h.handleFAQQuestionEdit(ctx, b, chatID, user, dialog, text)
	case state.KindEditingFAQAnswer:
		h.handleFAQAnswerEdit(ctx, b, chatID, user, dialog, text)
	default:
		// Подсказка и черновики ответов только в личных чатах, обычные
		// сообщения в групповых чатах бот не комментирует
		if update.Message.Chat.Type != models.ChatTypePrivate {
			return
		}
		// Студент с активным обращением пишет ответ обычным сообщением
		if user.HasAssignment() {
			h.acceptAnswerDraft(ctx, b, chatID, user, *user.CurrentAssignmentID, text)
			return
		}
		h.send(ctx, b, chatID, "Выберите действие в меню ниже.", keyboard.MainMenu())
	}
}

// ===== Подача обращения =====

func (h *Handlers) startAskDialog(ctx context.Context, b *bot.Bot, chatID int64, user *model.User) {
	categories, err := h.categoryService.List(ctx)
	if err != nil {
		h.logger.Error("Failed to list categories", zap.Error(err))
		h.sendError(ctx, b, chatID, "Не удалось получить список категорий. Попробуйте позже.")
		return
	}
	if len(categories) == 0 {
		h.send(ctx, b, chatID, "Категории обращений пока не настроены. Попробуйте позже.", keyboard.MainMenu())
		return
	}

	names := make([]string, 0, len(categories))
	for _, category := range categories {
		names = append(names, category.Name)
	}

	h.stateManager.Set(user.TelegramID, state.Dialog{Kind: state.KindChoosingCategory})
	h.send(ctx, b, chatID, promptChooseCategory, keyboard.Categories(names))
}

func (h *Handlers) handleCategoryChosen(ctx context.Context, b *bot.Bot, chatID int64, user *model.User, text string) {
	category, err := h.categoryService.GetByName(ctx, text)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			h.send(ctx, b, chatID, "Выберите категорию кнопкой на клавиатуре.", nil)
			return
		}
		h.logger.Error("Failed to get category", zap.Error(err))
		h.sendError(ctx, b, chatID, "Произошла ошибка. Попробуйте позже.")
		return
	}

	h.stateManager.Set(user.TelegramID, state.Dialog{
		Kind:       state.KindEnteringRequestBody,
		CategoryID: category.ID,
	})
	h.send(ctx, b, chatID, promptRequestBody, keyboard.Back())
}

func (h *Handlers) handleRequestBody(ctx context.Context, b *bot.Bot, chatID int64, user *model.User, dialog state.Dialog, text string) {
	length := utf8.RuneCountInString(text)
	if length < service.RequestBodyMinLength {
		h.send(ctx, b, chatID, fmt.Sprintf(
			"❌ Текст обращения слишком короткий: %d из %d символов.\n\n"+
				"Опишите вашу проблему подробнее и отправьте текст ещё раз.",
			length, service.RequestBodyMinLength), nil)
		return
	}

	h.stateManager.Set(user.TelegramID, state.Dialog{
		Kind:       state.KindConfirmingRequest,
		CategoryID: dialog.CategoryID,
		Draft:      text,
	})
	h.send(ctx, b, chatID,
		fmt.Sprintf("📝 Ваше обращение:\n\n%s\n\n%s", text, promptConfirmRequest),
		keyboard.ConfirmRequest())
}

func (h *Handlers) handleRequestConfirmation(ctx context.Context, b *bot.Bot, chatID int64, user *model.User, dialog state.Dialog, text string) {
	switch text {
	case keyboard.ButtonConfirm:
		_, err := h.requestService.Submit(ctx, user, dialog.CategoryID, dialog.Draft)
		if err != nil {
			var validationErr *service.ValidationError
			if errors.As(err, &validationErr) {
				h.stateManager.Set(user.TelegramID, state.Dialog{
					Kind:       state.KindEnteringRequestBody,
					CategoryID: dialog.CategoryID,
				})
				h.send(ctx, b, chatID, promptRequestBody, keyboard.Back())
				return
			}
			h.logger.Error("Failed to submit request", zap.Error(err))
			h.sendError(ctx, b, chatID, "Не удалось отправить обращение. Попробуйте позже.")
			return
		}

		h.stateManager.Clear(user.TelegramID)
		h.send(ctx, b, chatID,
			"✅ Ваше обращение отправлено на рассмотрение. Мы сообщим вам о решении.",
			keyboard.MainMenu())
	case keyboard.ButtonEdit:
		h.stateManager.Set(user.TelegramID, state.Dialog{
			Kind:       state.KindEnteringRequestBody,
			CategoryID: dialog.CategoryID,
		})
		h.send(ctx, b, chatID, promptRequestBody, keyboard.Back())
	default:
		h.send(ctx, b, chatID, promptConfirmRequest, nil)
	}
}

// ===== FAQ =====

func (h *Handlers) startFAQDialog(ctx context.Context, b *bot.Bot, chatID int64, user *model.User) {
	categories, err := h.categoryService.List(ctx)
	if err != nil {
		h.logger.Error("Failed to list categories", zap.Error(err))
		h.sendError(ctx, b, chatID, "Не удалось получить список категорий. Попробуйте позже.")
		return
	}
	if len(categories) == 0 {
		h.send(ctx, b, chatID, "FAQ пока пуст.", keyboard.MainMenu())
		return
	}

	names := make([]string, 0, len(categories))
	for _, category := range categories {
		names = append(names, category.Name)
	}

	h.stateManager.Set(user.TelegramID, state.Dialog{Kind: state.KindChoosingFAQCategory})
	h.send(ctx, b, chatID, "📖 Выберите категорию FAQ:", keyboard.Categories(names))
}

func (h *Handlers) handleFAQCategoryChosen(ctx context.Context, b *bot.Bot, chatID int64, user *model.User, text string) {
	category, err := h.categoryService.GetByName(ctx, text)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			h.send(ctx, b, chatID, "Выберите категорию кнопкой на клавиатуре.", nil)
			return
		}
		h.logger.Error("Failed to get category", zap.Error(err))
		h.sendError(ctx, b, chatID, "Произошла ошибка. Попробуйте позже.")
		return
	}

	entries, err := h.faqService.ListByCategory(ctx, category.ID)
	if err != nil {
		h.logger.Error("Failed to list faq entries", zap.Error(err))
		h.sendError(ctx, b, chatID, "Произошла ошибка. Попробуйте позже.")
		return
	}

	h.stateManager.Clear(user.TelegramID)

	if len(entries) == 0 {
		h.send(ctx, b, chatID,
			fmt.Sprintf("В категории «%s» пока нет записей FAQ.", category.Name),
			keyboard.MainMenu())
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📖 FAQ, категория «%s»:\n", category.Name)
	for _, entry := range entries {
		fmt.Fprintf(&sb, "\n❓ %s\n💡 %s\n", entry.Question, entry.Answer)
	}

	h.send(ctx, b, chatID, sb.String(), keyboard.MainMenu())
}

// ===== Обращения заявителя =====

func (h *Handlers) showMyRequests(ctx context.Context, b *bot.Bot, chatID int64, user *model.User) {
	requests, err := h.requestService.ListByRequester(ctx, user.ID)
	if err != nil {
		h.logger.Error("Failed to list user requests", zap.Error(err))
		h.sendError(ctx, b, chatID, "Не удалось получить ваши обращения. Попробуйте позже.")
		return
	}
	if len(requests) == 0 {
		h.send(ctx, b, chatID, "У вас пока нет обращений.", keyboard.MainMenu())
		return
	}

	var sb strings.Builder
	sb.WriteString("📋 Ваши обращения:\n")
	for _, req := range requests {
		sb.WriteString("\n" + FormatRequest(req) + "\n")
	}

	h.send(ctx, b, chatID, sb.String(), keyboard.MainMenu())
}

// ===== Ответ студента =====

func (h *Handlers) acceptAnswerDraft(ctx context.Context, b *bot.Bot, chatID int64, user *model.User, requestID int64, text string) {
	h.stateManager.Set(user.TelegramID, state.Dialog{
		Kind:      state.KindConfirmingAnswer,
		RequestID: requestID,
		Draft:     text,
	})
	h.send(ctx, b, chatID,
		fmt.Sprintf("✏️ Ваш ответ:\n\n%s\n\n%s", text, promptAnswerReceived),
		keyboard.ConfirmAnswer())
}

func (h *Handlers) handleAnswerConfirmation(ctx context.Context, b *bot.Bot, chatID int64, user *model.User, dialog state.Dialog, text string) {
	switch text {
	case keyboard.ButtonConfirmAnswer:
		_, err := h.requestService.ConfirmAnswer(ctx, user, dialog.RequestID, dialog.Draft)
		if err != nil {
			h.stateManager.Clear(user.TelegramID)
			switch {
			case errors.Is(err, service.ErrConflict):
				h.send(ctx, b, chatID, "❌ Это обращение закреплено за другим студентом.", keyboard.MainMenu())
			case errors.Is(err, service.ErrInvalidState):
				h.send(ctx, b, chatID, "❌ Ответ на это обращение уже отправлен на проверку.", keyboard.MainMenu())
			default:
				h.logger.Error("Failed to confirm answer", zap.Error(err))
				h.send(ctx, b, chatID, "❌ Не удалось отправить ответ. Попробуйте позже.", keyboard.MainMenu())
			}
			return
		}

		h.stateManager.Clear(user.TelegramID)
		h.send(ctx, b, chatID,
			"✅ Ваш ответ отправлен на проверку администраторам.",
			keyboard.MainMenu())
	case keyboard.ButtonEditAnswer:
		h.stateManager.Set(user.TelegramID, state.Dialog{
			Kind:      state.KindDraftingAnswer,
			RequestID: dialog.RequestID,
		})
		h.send(ctx, b, chatID, "✏️ Отправьте новый текст ответа:", keyboard.Back())
	default:
		// Новое сообщение замещает черновик
		h.acceptAnswerDraft(ctx, b, chatID, user, dialog.RequestID, text)
	}
}

func (h *Handlers) handleReject(ctx context.Context, b *bot.Bot, chatID int64, user *model.User) {
	if !user.HasAssignment() {
		h.send(ctx, b, chatID, "У вас нет активного обращения.", keyboard.MainMenu())
		return
	}

	_, err := h.requestService.Release(ctx, user, *user.CurrentAssignmentID)
	if err != nil {
		h.logger.Error("Failed to release assignment", zap.Error(err))
		h.sendError(ctx, b, chatID, "Не удалось отказаться от обращения. Попробуйте позже.")
		return
	}

	h.stateManager.Clear(user.TelegramID)
	h.send(ctx, b, chatID,
		"✅ Вы отказались от обращения. Оно возвращено в общую очередь.",
		keyboard.MainMenu())
}

// ===== Решения администратора с вводом текста =====

func (h *Handlers) handleDeclineReason(ctx context.Context, b *bot.Bot, chatID int64, user *model.User, dialog state.Dialog, text string) {
	_, err := h.requestService.Decline(ctx, user, dialog.RequestID, text)
	if err != nil {
		h.stateManager.Clear(user.TelegramID)
		if errors.Is(err, service.ErrInvalidState) {
			h.sendError(ctx, b, chatID, "Это обращение уже обработано другим администратором.")
			return
		}
		h.logger.Error("Failed to decline request", zap.Error(err))
		h.sendError(ctx, b, chatID, "Не удалось отклонить обращение.")
		return
	}

	h.stateManager.Clear(user.TelegramID)
	h.send(ctx, b, chatID, "✅ Обращение отклонено, заявитель уведомлен.", nil)
}

func (h *Handlers) handleDeclineAnswerComment(ctx context.Context, b *bot.Bot, chatID int64, user *model.User, dialog state.Dialog, text string) {
	_, err := h.requestService.DeclineAnswer(ctx, user, dialog.RequestID, text)
	if err != nil {
		h.stateManager.Clear(user.TelegramID)
		if errors.Is(err, service.ErrInvalidState) {
			h.sendError(ctx, b, chatID, "Этот ответ уже обработан другим администратором.")
			return
		}
		h.logger.Error("Failed to decline answer", zap.Error(err))
		h.sendError(ctx, b, chatID, "Не удалось отклонить ответ.")
		return
	}

	h.stateManager.Clear(user.TelegramID)
	h.send(ctx, b, chatID, "✅ Ответ отклонен, студент уведомлен.", nil)
}

// ===== Управление категориями =====

func (h *Handlers) handleCategoryCreation(ctx context.Context, b *bot.Bot, chatID int64, user *model.User, dialog state.Dialog, text string) {
	category, err := h.categoryService.Create(ctx, user, dialog.Name, text)
	if err != nil {
		var validationErr *service.ValidationError
		switch {
		case errors.As(err, &validationErr):
			h.send(ctx, b, chatID, "❌ Хештег не может быть пустым. Введите хештег ещё раз:", nil)
		case errors.Is(err, service.ErrConflict):
			h.send(ctx, b, chatID, "❌ Такое название или хештег уже заняты. Введите другой хештег или /add_category заново:", nil)
		default:
			h.stateManager.Clear(user.TelegramID)
			h.logger.Error("Failed to create category", zap.Error(err))
			h.sendError(ctx, b, chatID, "Не удалось создать категорию.")
		}
		return
	}

	h.stateManager.Clear(user.TelegramID)
	h.send(ctx, b, chatID,
		fmt.Sprintf("✅ Категория «%s» %s создана.", category.Name, category.Hashtag), nil)
}

func (h *Handlers) handleCategoryRename(ctx context.Context, b *bot.Bot, chatID int64, user *model.User, dialog state.Dialog, text string) {
	category, err := h.categoryService.Rename(ctx, user, dialog.CategoryID, text)
	if err != nil {
		if errors.Is(err, service.ErrConflict) {
			h.send(ctx, b, chatID, "❌ Категория с таким названием уже существует. Введите другое название:", nil)
			return
		}
		h.stateManager.Clear(user.TelegramID)
		h.logger.Error("Failed to rename category", zap.Error(err))
		h.sendError(ctx, b, chatID, "Не удалось переименовать категорию.")
		return
	}

	h.stateManager.Clear(user.TelegramID)
	h.send(ctx, b, chatID, fmt.Sprintf("✅ Категория переименована в «%s».", category.Name), nil)
}

func (h *Handlers) handleCategoryRetag(ctx context.Context, b *bot.Bot, chatID int64, user *model.User, dialog state.Dialog, text string) {
	category, err := h.categoryService.Retag(ctx, user, dialog.CategoryID, text)
	if err != nil {
		if errors.Is(err, service.ErrConflict) {
			h.send(ctx, b, chatID, "❌ Этот хештег уже занят. Введите другой хештег:", nil)
			return
		}
		h.stateManager.Clear(user.TelegramID)
		h.logger.Error("Failed to retag category", zap.Error(err))
		h.sendError(ctx, b, chatID, "Не удалось изменить хештег.")
		return
	}

	h.stateManager.Clear(user.TelegramID)
	h.send(ctx, b, chatID,
		fmt.Sprintf("✅ Хештег категории «%s» изменен на %s.", category.Name, category.Hashtag), nil)
}

// ===== Управление FAQ =====

func (h *Handlers) handleFAQCreation(ctx context.Context, b *bot.Bot, chatID int64, user *model.User, dialog state.Dialog, text string) {
	_, err := h.faqService.Create(ctx, user, dialog.CategoryID, dialog.Question, text)
	if err != nil {
		h.stateManager.Clear(user.TelegramID)
		h.logger.Error("Failed to create faq entry", zap.Error(err))
		h.sendError(ctx, b, chatID, "Не удалось создать запись FAQ.")
		return
	}

	h.stateManager.Clear(user.TelegramID)
	h.send(ctx, b, chatID, "✅ Запись FAQ создана.", nil)
}

func (h *Handlers) handleFAQQuestionEdit(ctx context.Context, b *bot.Bot, chatID int64, user *model.User, dialog state.Dialog, text string) {
	_, err := h.faqService.UpdateQuestion(ctx, user, dialog.FAQID, text)
	if err != nil {
		h.stateManager.Clear(user.TelegramID)
		h.logger.Error("Failed to update faq question", zap.Error(err))
		h.sendError(ctx, b, chatID, "Не удалось обновить вопрос.")
		return
	}

	h.stateManager.Clear(user.TelegramID)
	h.send(ctx, b, chatID, "✅ Вопрос обновлен.", nil)
}

func (h *Handlers) handleFAQAnswerEdit(ctx context.Context, b *bot.Bot, chatID int64, user *model.User, dialog state.Dialog, text string) {
	_, err := h.faqService.UpdateAnswer(ctx, user, dialog.FAQID, text)
	if err != nil {
		h.stateManager.Clear(user.TelegramID)
		h.logger.Error("Failed to update faq answer", zap.Error(err))
		h.sendError(ctx, b, chatID, "Не удалось обновить ответ.")
		return
	}

	h.stateManager.Clear(user.TelegramID)
	h.send(ctx, b, chatID, "✅ Ответ обновлен.", nil)
}
