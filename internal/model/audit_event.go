package model

import "time"

// AuditEvent запись журнала действий. Пишется best-effort: сбой записи
// никогда не прерывает операцию, которая её породила.
type AuditEvent struct {
	ID        int64          `json:"id"`
	Action    string         `json:"action"`
	Details   map[string]any `json:"details"`
	CreatedAt time.Time      `json:"created_at"`
}
