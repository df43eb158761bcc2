package models

// ImageCount is a per chat/topic/day photo counter.
type ImageCount struct {
	ChatID  int64  `db:"chat_id"`
	TopicID int    `db:"topic_id"`
	Date    string `db:"date"` // YYYY-MM-DD
	Count   int    `db:"count"`
}
