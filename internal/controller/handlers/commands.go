package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Freeeeeet/legal_clinic_bot/internal/controller/keyboard"
	"github.com/Freeeeeet/legal_clinic_bot/internal/controller/state"
	"github.com/Freeeeeet/legal_clinic_bot/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// HandleStart обрабатывает команду /start
func (h *Handlers) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	user, err := h.resolveUser(ctx, update.Message.From)
	if err != nil {
		h.logger.Error("Failed to register user", zap.Error(err))
		h.sendError(ctx, b, update.Message.Chat.ID, "Произошла ошибка при регистрации. Попробуйте позже.")
		return
	}

	h.stateManager.Clear(user.TelegramID)

	welcomeText := fmt.Sprintf(
		"👋 Привет, %s!\n\n"+
			"Это бот юридической клиники. Здесь вы можете задать юридический вопрос "+
			"и получить ответ от наших студентов под контролем администраторов.\n\n"+
			"Выберите действие в меню ниже.",
		user.FirstName,
	)

	h.send(ctx, b, update.Message.Chat.ID, welcomeText, keyboard.MainMenu())
}

// HandleGetAdmin выдает роль администратора. Команда срабатывает только
// в чате администраторов, членство в нём и есть проверка прав.
func (h *Handlers) HandleGetAdmin(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	if update.Message.Chat.ID != h.adminChatID {
		return
	}

	user, err := h.resolveUser(ctx, update.Message.From)
	if err != nil {
		h.logger.Error("Failed to resolve user", zap.Error(err))
		return
	}

	if user.IsAdmin() {
		h.send(ctx, b, update.Message.Chat.ID, "Вы уже администратор.", nil)
		return
	}

	if err := h.userService.PromoteToAdmin(ctx, user); err != nil {
		h.logger.Error("Failed to promote user to admin", zap.Error(err))
		h.sendError(ctx, b, update.Message.Chat.ID, "Не удалось выдать права администратора.")
		return
	}

	h.send(ctx, b, update.Message.Chat.ID,
		fmt.Sprintf("✅ %s теперь администратор.", user.DisplayName()), nil)
}

// requireAdmin проверяет роль отправителя перед админской командой
func (h *Handlers) requireAdmin(ctx context.Context, b *bot.Bot, update *models.Update) (*model.User, bool) {
	user, err := h.resolveUser(ctx, update.Message.From)
	if err != nil {
		h.logger.Error("Failed to resolve user", zap.Error(err))
		return nil, false
	}
	if !user.IsAdmin() {
		h.sendError(ctx, b, update.Message.Chat.ID, "Команда доступна только администраторам.")
		return nil, false
	}
	return user, true
}

// HandleAddCategory начинает диалог создания категории
func (h *Handlers) HandleAddCategory(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	user, ok := h.requireAdmin(ctx, b, update)
	if !ok {
		return
	}

	h.stateManager.Set(user.TelegramID, state.Dialog{Kind: state.KindEnteringCategoryName})
	h.send(ctx, b, update.Message.Chat.ID, "📂 Введите название новой категории:", nil)
}

// HandleEditCategory показывает список категорий для редактирования
func (h *Handlers) HandleEditCategory(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	if _, ok := h.requireAdmin(ctx, b, update); !ok {
		return
	}

	h.sendCategoryList(ctx, b, update.Message.Chat.ID,
		"📂 Выберите категорию для редактирования:", "edit_category")
}

// HandleDeleteCategory показывает список категорий для удаления
func (h *Handlers) HandleDeleteCategory(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	if _, ok := h.requireAdmin(ctx, b, update); !ok {
		return
	}

	h.sendCategoryList(ctx, b, update.Message.Chat.ID,
		"📂 Выберите категорию для удаления:", "delete_category")
}

// HandleAddFAQ начинает диалог создания записи FAQ
func (h *Handlers) HandleAddFAQ(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	if _, ok := h.requireAdmin(ctx, b, update); !ok {
		return
	}

	h.sendCategoryList(ctx, b, update.Message.Chat.ID,
		"📂 Выберите категорию для новой записи FAQ:", "select_faq_category")
}

// HandleEditFAQ начинает диалог редактирования записи FAQ
func (h *Handlers) HandleEditFAQ(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	if _, ok := h.requireAdmin(ctx, b, update); !ok {
		return
	}

	h.sendCategoryList(ctx, b, update.Message.Chat.ID,
		"📂 Выберите категорию записи:", "edit_faq_select_category")
}

// HandleDeleteFAQ начинает диалог удаления записи FAQ
func (h *Handlers) HandleDeleteFAQ(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	if _, ok := h.requireAdmin(ctx, b, update); !ok {
		return
	}

	h.sendCategoryList(ctx, b, update.Message.Chat.ID,
		"📂 Выберите категорию записи:", "delete_faq_select_category")
}

// HandleCategories показывает все категории
func (h *Handlers) HandleCategories(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	if _, ok := h.requireAdmin(ctx, b, update); !ok {
		return
	}

	categories, err := h.categoryService.List(ctx)
	if err != nil {
		h.logger.Error("Failed to list categories", zap.Error(err))
		h.sendError(ctx, b, update.Message.Chat.ID, "Не удалось получить список категорий.")
		return
	}
	if len(categories) == 0 {
		h.send(ctx, b, update.Message.Chat.ID, "Категорий пока нет. Создайте первую: /add_category", nil)
		return
	}

	var sb strings.Builder
	sb.WriteString("📂 Категории:\n")
	for _, category := range categories {
		fmt.Fprintf(&sb, "\n• %s %s", category.Name, category.Hashtag)
	}

	h.send(ctx, b, update.Message.Chat.ID, sb.String(), nil)
}

// HandleFAQs показывает все записи FAQ, сгруппированные по категориям
func (h *Handlers) HandleFAQs(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	if _, ok := h.requireAdmin(ctx, b, update); !ok {
		return
	}

	categories, err := h.categoryService.List(ctx)
	if err != nil {
		h.logger.Error("Failed to list categories", zap.Error(err))
		h.sendError(ctx, b, update.Message.Chat.ID, "Не удалось получить список категорий.")
		return
	}

	var sb strings.Builder
	total := 0
	for _, category := range categories {
		entries, err := h.faqService.ListByCategory(ctx, category.ID)
		if err != nil {
			h.logger.Error("Failed to list faq entries",
				zap.Int64("category_id", category.ID),
				zap.Error(err),
			)
			continue
		}
		if len(entries) == 0 {
			continue
		}

		fmt.Fprintf(&sb, "\n📂 %s\n", category.Name)
		for _, entry := range entries {
			fmt.Fprintf(&sb, "\n❓ %s\n💡 %s\n", entry.Question, entry.Answer)
			total++
		}
	}

	if total == 0 {
		h.send(ctx, b, update.Message.Chat.ID, "Записей FAQ пока нет. Создайте первую: /add_faq", nil)
		return
	}

	h.send(ctx, b, update.Message.Chat.ID, "📖 FAQ:\n"+sb.String(), nil)
}

// HandleRequests показывает страницу обращений: /requests [страница]
func (h *Handlers) HandleRequests(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	if _, ok := h.requireAdmin(ctx, b, update); !ok {
		return
	}

	page := 1
	fields := strings.Fields(update.Message.Text)
	if len(fields) > 1 {
		parsed, err := strconv.Atoi(fields[1])
		if err != nil || parsed < 1 {
			h.sendError(ctx, b, update.Message.Chat.ID, "Номер страницы должен быть положительным числом.")
			return
		}
		page = parsed
	}

	requests, err := h.requestService.ListPage(ctx, (page-1)*requestsPageSize, requestsPageSize)
	if err != nil {
		h.logger.Error("Failed to list requests", zap.Error(err))
		h.sendError(ctx, b, update.Message.Chat.ID, "Не удалось получить список обращений.")
		return
	}
	if len(requests) == 0 {
		h.send(ctx, b, update.Message.Chat.ID,
			fmt.Sprintf("На странице %d обращений нет.", page), nil)
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📋 Обращения, страница %d:\n", page)
	for _, req := range requests {
		display := GetRequestStatusDisplay(req.Status)
		fmt.Fprintf(&sb, "\n%s %s | %s", display.Emoji, req.Ref(), display.Text)
		if req.Category != nil {
			fmt.Fprintf(&sb, " | %s", req.Category.Name)
		}
		if req.User != nil {
			fmt.Fprintf(&sb, "\n   От: %s", req.User.DisplayName())
		}
		if req.Student != nil {
			fmt.Fprintf(&sb, "\n   Исполнитель: %s", req.Student.DisplayName())
		}
		sb.WriteString("\n")
	}

	h.send(ctx, b, update.Message.Chat.ID, sb.String(), nil)
}

// HandleStats показывает статистику обращений с диаграммой
func (h *Handlers) HandleStats(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	if _, ok := h.requireAdmin(ctx, b, update); !ok {
		return
	}

	stats, err := h.requestService.Stats(ctx)
	if err != nil {
		h.logger.Error("Failed to collect stats", zap.Error(err))
		h.sendError(ctx, b, update.Message.Chat.ID, "Не удалось собрать статистику.")
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 Статистика\n\nВсего обращений: %d\n", stats.Total)
	for _, status := range []model.RequestStatus{
		model.RequestStatusPending,
		model.RequestStatusApproved,
		model.RequestStatusAssigned,
		model.RequestStatusAnswered,
		model.RequestStatusClosed,
		model.RequestStatusDeclined,
	} {
		display := GetRequestStatusDisplay(status)
		fmt.Fprintf(&sb, "%s %s: %d\n", display.Emoji, display.Text, stats.ByStatus[status])
	}
	fmt.Fprintf(&sb, "\n👥 Пользователи: %d\n👨‍🎓 Студенты: %d\n👨‍💼 Администраторы: %d",
		stats.ByRole[model.RoleUser], stats.ByRole[model.RoleStudent], stats.ByRole[model.RoleAdmin])

	h.send(ctx, b, update.Message.Chat.ID, sb.String(), nil)
	h.sendStatsChart(ctx, b, update.Message.Chat.ID, stats)
}

// sendCategoryList отправляет inline-список категорий, callback data
// собирается как "<actionPrefix>:<id>"
func (h *Handlers) sendCategoryList(ctx context.Context, b *bot.Bot, chatID int64, title, actionPrefix string) {
	categories, err := h.categoryService.List(ctx)
	if err != nil {
		h.logger.Error("Failed to list categories", zap.Error(err))
		h.sendError(ctx, b, chatID, "Не удалось получить список категорий.")
		return
	}
	if len(categories) == 0 {
		h.send(ctx, b, chatID, "Категорий пока нет. Создайте первую: /add_category", nil)
		return
	}

	rows := make([][]models.InlineKeyboardButton, 0, len(categories))
	for _, category := range categories {
		rows = append(rows, []models.InlineKeyboardButton{{
			Text:         category.Name,
			CallbackData: fmt.Sprintf("%s:%d", actionPrefix, category.ID),
		}})
	}

	h.send(ctx, b, chatID, title, &models.InlineKeyboardMarkup{InlineKeyboard: rows})
}
