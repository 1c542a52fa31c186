package app

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/legal_clinic_bot/internal/model"
	"github.com/Freeeeeet/legal_clinic_bot/internal/service"
	"go.uber.org/zap"
)

// Интервал напоминаний о необработанных обращениях
const reminderInterval = 6 * time.Hour

// Reminder периодически напоминает администраторам об обращениях,
// ожидающих их решения
type Reminder struct {
	requestService *service.RequestService
	notifier       service.Notifier
	adminChatID    int64
	logger         *zap.Logger
	stopChan       chan struct{}
}

// NewReminder создаёт новый планировщик напоминаний
func NewReminder(requestService *service.RequestService, notifier service.Notifier, adminChatID int64, logger *zap.Logger) *Reminder {
	return &Reminder{
		requestService: requestService,
		notifier:       notifier,
		adminChatID:    adminChatID,
		logger:         logger,
		stopChan:       make(chan struct{}),
	}
}

// Start запускает фоновую задачу напоминаний
func (r *Reminder) Start(ctx context.Context) {
	r.logger.Info("Starting reminder task")
	go r.run(ctx)
}

// Stop останавливает фоновую задачу
func (r *Reminder) Stop() {
	r.logger.Info("Stopping reminder task")
	close(r.stopChan)
}

func (r *Reminder) run(ctx context.Context) {
	ticker := time.NewTicker(reminderInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.remind(ctx)
		case <-r.stopChan:
			r.logger.Info("Reminder task stopped")
			return
		case <-ctx.Done():
			r.logger.Info("Reminder task cancelled")
			return
		}
	}
}

// remind отправляет сводку, если есть обращения, ожидающие решения
func (r *Reminder) remind(ctx context.Context) {
	stats, err := r.requestService.Stats(ctx)
	if err != nil {
		r.logger.Error("Failed to collect stats for reminder", zap.Error(err))
		return
	}

	pending := stats.ByStatus[model.RequestStatusPending]
	answered := stats.ByStatus[model.RequestStatusAnswered]
	if pending == 0 && answered == 0 {
		return
	}

	text := fmt.Sprintf(
		"⏰ Напоминание\n\n⏳ Новых обращений на рассмотрении: %d\n✅ Ответов на проверке: %d",
		pending, answered)

	if err := r.notifier.Notify(ctx, r.adminChatID, text); err != nil {
		r.logger.Error("Failed to send reminder", zap.Error(err))
		return
	}

	r.logger.Info("Reminder sent",
		zap.Int("pending", pending),
		zap.Int("answered", answered),
	)
}
