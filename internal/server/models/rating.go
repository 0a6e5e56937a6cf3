package models

type Rating struct {
	ID        int64 `json:"id"`
	Grade     int   `json:"grade"`
	UserID    int64 `json:"user_id"`
	ProductID int64 `json:"product_id"`
	IsActive  bool  `json:"is_active"`
}
