package controller

import (
	"context"

	"github.com/Freeeeeet/legal_clinic_bot/internal/controller/callbacks"
	"github.com/Freeeeeet/legal_clinic_bot/internal/controller/handlers"
	"github.com/Freeeeeet/legal_clinic_bot/internal/controller/state"
	"github.com/Freeeeeet/legal_clinic_bot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

type BotController struct {
	bot             *bot.Bot
	handlers        *handlers.Handlers
	callbackHandler *callbacks.Handler
	logger          *zap.Logger
}

func NewBotController(
	botInstance *bot.Bot,
	userService *service.UserService,
	requestService *service.RequestService,
	categoryService *service.CategoryService,
	faqService *service.FAQService,
	adminChatID int64,
	logger *zap.Logger,
) *BotController {
	// Менеджер состояний диалогов общий для сообщений и callbacks
	stateManager := state.NewManager()

	cmdHandlers := handlers.NewHandlers(
		userService,
		requestService,
		categoryService,
		faqService,
		stateManager,
		adminChatID,
		logger,
	)

	callbackHandler := callbacks.NewHandler(
		userService,
		requestService,
		categoryService,
		faqService,
		stateManager,
		logger,
	)

	return &BotController{
		bot:             botInstance,
		handlers:        cmdHandlers,
		callbackHandler: callbackHandler,
		logger:          logger,
	}
}

// RegisterHandlers регистрирует все обработчики команд
func (c *BotController) RegisterHandlers(ctx context.Context) error {
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, c.handlers.HandleStart)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/getadmin", bot.MatchTypeExact, c.handlers.HandleGetAdmin)

	// Команды администраторов
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/add_category", bot.MatchTypeExact, c.handlers.HandleAddCategory)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/edit_category", bot.MatchTypeExact, c.handlers.HandleEditCategory)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/delete_category", bot.MatchTypeExact, c.handlers.HandleDeleteCategory)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/add_faq", bot.MatchTypeExact, c.handlers.HandleAddFAQ)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/edit_faq", bot.MatchTypeExact, c.handlers.HandleEditFAQ)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/delete_faq", bot.MatchTypeExact, c.handlers.HandleDeleteFAQ)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/categories", bot.MatchTypeExact, c.handlers.HandleCategories)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/faqs", bot.MatchTypeExact, c.handlers.HandleFAQs)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/stats", bot.MatchTypeExact, c.handlers.HandleStats)

	// /requests принимает необязательный номер страницы
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/requests", bot.MatchTypePrefix, c.handlers.HandleRequests)

	// Обработчик текстовых сообщений (кнопки меню и шаги диалогов)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "", bot.MatchTypePrefix, c.handlers.HandleTextMessage)

	// Обработчик нажатий на inline кнопки
	c.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "", bot.MatchTypePrefix, c.callbackHandler.HandleCallbackQuery)

	return c.setCommands(ctx)
}

// setCommands устанавливает список команд в меню бота
func (c *BotController) setCommands(ctx context.Context) error {
	commands := []models.BotCommand{
		{Command: "start", Description: "🚀 Начать работу с ботом"},
		{Command: "categories", Description: "📂 Список категорий (админ)"},
		{Command: "add_category", Description: "➕ Создать категорию (админ)"},
		{Command: "edit_category", Description: "✏️ Изменить категорию (админ)"},
		{Command: "delete_category", Description: "🗑 Удалить категорию (админ)"},
		{Command: "faqs", Description: "📖 Все записи FAQ (админ)"},
		{Command: "add_faq", Description: "➕ Создать запись FAQ (админ)"},
		{Command: "edit_faq", Description: "✏️ Изменить запись FAQ (админ)"},
		{Command: "delete_faq", Description: "🗑 Удалить запись FAQ (админ)"},
		{Command: "requests", Description: "📋 Список обращений (админ)"},
		{Command: "stats", Description: "📊 Статистика (админ)"},
	}

	_, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: commands,
	})

	if err != nil {
		c.logger.Error("Failed to set bot commands", zap.Error(err))
		return err
	}

	c.logger.Info("✅ Bot commands menu set")
	return nil
}

// Start запускает бота
func (c *BotController) Start(ctx context.Context) error {
	c.logger.Info("Starting bot...")
	c.bot.Start(ctx)
	return nil
}
