package models

import "time"

type Review struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	ProductID   int64     `json:"product_id"`
	RatingID    int64     `json:"rating_id"`
	Comment     string    `json:"comment"`
	CommentDate time.Time `json:"comment_date"`
	IsActive    bool      `json:"is_active"`

	// Grade is filled from the linked rating by per-product listings.
	Grade *int `json:"rating,omitempty"`
}
