package models

// TopicTitle holds the title and report type of a forum topic.
// Topic 0 (General) never gets a row; its title and type are defaulted
// in the read path.
type TopicTitle struct {
	ChatID  int64  `db:"chat_id"`
	TopicID int    `db:"topic_id"`
	Title   string `db:"title"`
	Type    string `db:"type"`
}
