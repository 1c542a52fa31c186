package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/Freeeeeet/legal_clinic_bot/internal/app"
	"github.com/Freeeeeet/legal_clinic_bot/internal/config"
	"github.com/Freeeeeet/legal_clinic_bot/internal/controller"
	"github.com/Freeeeeet/legal_clinic_bot/internal/notify"
	"github.com/Freeeeeet/legal_clinic_bot/internal/repository"
	"github.com/Freeeeeet/legal_clinic_bot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	logger.Info("Starting legal clinic bot",
		zap.String("environment", cfg.Environment),
		zap.Int64("admin_chat_id", cfg.AdminChatID),
		zap.Int64("student_chat_id", cfg.StudentChatID),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.GetDBDSN())
	if err != nil {
		logger.Fatal("Failed to create connection pool", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	logger.Info("✅ Connected to database")

	// Миграции применяются при старте
	migrator, err := app.NewMigrator(pool, cfg.MigrationsPath)
	if err != nil {
		logger.Fatal("Failed to create migrator", zap.Error(err))
	}
	if err := migrator.Run(ctx); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	if err := migrator.Close(); err != nil {
		logger.Error("Failed to close migrator", zap.Error(err))
	}

	// Репозитории
	userRepo := repository.NewUserRepository(pool)
	requestRepo := repository.NewRequestRepository(pool)
	categoryRepo := repository.NewCategoryRepository(pool)
	faqRepo := repository.NewFAQRepository(pool)
	auditRepo := repository.NewAuditRepository(pool)

	// Telegram бот
	b, err := bot.New(cfg.TelegramToken)
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}

	notifier := notify.NewTelegramNotifier(b, cfg.StudentChatID, logger)

	// Сервисы
	auditService := service.NewAuditService(auditRepo, logger)
	userService := service.NewUserService(userRepo, auditService, logger)
	requestService := service.NewRequestService(
		requestRepo, userRepo, categoryRepo, notifier, auditService, cfg.AdminChatID, logger)
	categoryService := service.NewCategoryService(categoryRepo, requestRepo, faqRepo, auditService, logger)
	faqService := service.NewFAQService(faqRepo, categoryRepo, auditService, logger)

	// Фоновые напоминания администраторам
	reminder := app.NewReminder(requestService, notifier, cfg.AdminChatID, logger)
	reminder.Start(ctx)
	defer reminder.Stop()

	botController := controller.NewBotController(
		b,
		userService,
		requestService,
		categoryService,
		faqService,
		cfg.AdminChatID,
		logger,
	)

	if err := botController.RegisterHandlers(ctx); err != nil {
		logger.Fatal("Failed to register handlers", zap.Error(err))
	}

	if err := botController.Start(ctx); err != nil {
		logger.Fatal("Bot stopped with error", zap.Error(err))
	}

	logger.Info("Bot shut down")
}
