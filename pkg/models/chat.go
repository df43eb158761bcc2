package models

// ActiveChat is a chat registered for photo counting.
// Presence of a row is the single switch that gates counting.
type ActiveChat struct {
	ChatID    int64  `db:"chat_id"`
	CreatedAt string `db:"created_at"` // YYYY-MM-DD
	City      string `db:"city"`
}
