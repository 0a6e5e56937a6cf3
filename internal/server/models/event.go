package models

import "time"

// Event is an append-only record of a user action. It lives outside the
// relational transaction; losing one never undoes the action it describes.
type Event struct {
	UserID    int64          `json:"user_id" bson:"user_id"`
	Action    string         `json:"action" bson:"action"`
	Data      map[string]any `json:"data" bson:"data"`
	Timestamp string         `json:"timestamp" bson:"timestamp"`
}

// NewEvent stamps an event with the current UTC time in RFC 3339 form.
func NewEvent(userID int64, action string, data map[string]any) Event {
	if data == nil {
		data = map[string]any{}
	}
	return Event{
		UserID:    userID,
		Action:    action,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	}
}
