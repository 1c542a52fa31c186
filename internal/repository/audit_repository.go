package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Freeeeeet/legal_clinic_bot/internal/repository/base"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AuditRepository struct {
	*base.Repository
}

func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{Repository: base.NewRepository(pool)}
}

// Insert пишет запись журнала действий
func (r *AuditRepository) Insert(ctx context.Context, action string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}

	payload, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("marshal audit details: %w", err)
	}

	_, err = r.ExecAffected(ctx,
		`INSERT INTO audit_log (action, details) VALUES ($1, $2)`,
		action, payload,
	)
	if err != nil {
		return fmt.Errorf("insert audit record: %w", err)
	}

	return nil
}
