package service

import (
	"context"

	"go.uber.org/zap"
)

// AuditService пишет события в журнал действий. Сбой записи логируется,
// но не прерывает операцию, которая его породила.
type AuditService struct {
	store  AuditStore
	logger *zap.Logger
}

func NewAuditService(store AuditStore, logger *zap.Logger) *AuditService {
	return &AuditService{store: store, logger: logger}
}

// Record фиксирует событие в журнале
func (s *AuditService) Record(ctx context.Context, action string, details map[string]any) {
	if err := s.store.Insert(ctx, action, details); err != nil {
		s.logger.Error("Failed to record audit event",
			zap.String("action", action),
			zap.Error(err),
		)
	}
}
