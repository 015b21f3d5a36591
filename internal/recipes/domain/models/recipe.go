package models

import (
	"time"
)

type Recipe struct {
	ID          int64        `json:"id"`
	UserID      int64        `json:"user_id"` //nolint:tagliatelle
	Title       string       `json:"title"`
	Description string       `json:"description"`
	TimeMinutes int          `json:"time_minutes"` //nolint:tagliatelle
	Price       string       `json:"price"`
	Link        string       `json:"link"`
	Image       string       `json:"image"`
	Tags        []Tag        `json:"tags"`
	Ingredients []Ingredient `json:"ingredients"`
	CreatedAt   time.Time    `json:"created_at"` //nolint:tagliatelle
	UpdatedAt   time.Time    `json:"updated_at"` //nolint:tagliatelle
}

type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Ingredient struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
