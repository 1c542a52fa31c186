package model

import "time"

// Category тематика юридических обращений и FAQ
type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Hashtag   string    `json:"hashtag"`
	CreatedAt time.Time `json:"created_at"`
}
