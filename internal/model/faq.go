package model

import "time"

type FAQ struct {
	ID         int64     `json:"id"`
	CategoryID int64     `json:"category_id"`
	Question   string    `json:"question"`
	Answer     string    `json:"answer"`
	CreatedAt  time.Time `json:"created_at"`

	Category *Category `json:"category,omitempty"`
}
