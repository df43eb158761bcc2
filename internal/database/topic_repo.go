package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mixelka/photoreport/pkg/models"
)

const (
	// DefaultTopicType marks a topic as not yet classified. Topics with
	// this type are invisible to reporting.
	DefaultTopicType = "Не указан"

	// GeneralTopicTitle is the display title of the virtual topic 0.
	GeneralTopicTitle = "General"
)

// UpdateTopicTitle upserts the topic title, leaving the type untouched.
func (db *DB) UpdateTopicTitle(ctx context.Context, chatID int64, topicID int, title string) error {
	query := `
		INSERT INTO topic_titles (chat_id, topic_id, title, type) VALUES (?, ?, ?, ?)
		ON CONFLICT(chat_id, topic_id) DO UPDATE SET title = excluded.title
	`
	if _, err := db.ExecContext(ctx, query, chatID, topicID, title, DefaultTopicType); err != nil {
		return fmt.Errorf("failed to update topic title: %w", err)
	}
	return nil
}

// SetTopicType assigns the report type of a topic. If the topic row does
// not exist yet it is created with a placeholder title.
func (db *DB) SetTopicType(ctx context.Context, chatID int64, topicID int, topicType string) (bool, error) {
	placeholder := fmt.Sprintf("Topic %d", topicID)
	query := `
		INSERT INTO topic_titles (chat_id, topic_id, title, type) VALUES (?, ?, ?, ?)
		ON CONFLICT(chat_id, topic_id) DO UPDATE SET type = excluded.type
	`
	if _, err := db.ExecContext(ctx, query, chatID, topicID, placeholder, topicType); err != nil {
		return false, fmt.Errorf("failed to set topic type: %w", err)
	}
	return true, nil
}

// GetTopicType returns the type of a topic, DefaultTopicType when the
// topic has no row (including the virtual topic 0).
func (db *DB) GetTopicType(ctx context.Context, chatID int64, topicID int) (string, error) {
	var topicType string
	query := `SELECT type FROM topic_titles WHERE chat_id = ? AND topic_id = ?`
	err := db.GetContext(ctx, &topicType, query, chatID, topicID)
	if errors.Is(err, sql.ErrNoRows) {
		return DefaultTopicType, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get topic type: %w", err)
	}
	return topicType, nil
}

// GetTopicsForChat returns every known topic of a chat with its title
// and type.
func (db *DB) GetTopicsForChat(ctx context.Context, chatID int64) ([]*models.TopicTitle, error) {
	var topics []*models.TopicTitle
	query := `SELECT chat_id, topic_id, title, type FROM topic_titles WHERE chat_id = ? ORDER BY topic_id`
	if err := db.SelectContext(ctx, &topics, query, chatID); err != nil {
		return nil, fmt.Errorf("failed to get topics: %w", err)
	}
	return topics, nil
}

// SaveMessageTopic records which topic a counted message was posted in.
// Last write wins.
func (db *DB) SaveMessageTopic(ctx context.Context, chatID int64, messageID, topicID int) error {
	query := `
		INSERT INTO message_topics (chat_id, message_id, topic_id, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(chat_id, message_id) DO UPDATE SET topic_id = excluded.topic_id, created_at = excluded.created_at
	`
	if _, err := db.ExecContext(ctx, query, chatID, messageID, topicID, db.timestamp()); err != nil {
		return fmt.Errorf("failed to save message topic: %w", err)
	}
	return nil
}

// GetTopicByMessage resolves the topic a message was posted in.
// Returns ErrNotFound when the index has no entry, e.g. after retention
// cleanup.
func (db *DB) GetTopicByMessage(ctx context.Context, chatID int64, messageID int) (int, error) {
	var topicID int
	query := `SELECT topic_id FROM message_topics WHERE chat_id = ? AND message_id = ?`
	err := db.GetContext(ctx, &topicID, query, chatID, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get message topic: %w", err)
	}
	return topicID, nil
}

// CleanupOldMessageTopics deletes index entries older than maxAgeDays and
// returns the number of rows removed.
func (db *DB) CleanupOldMessageTopics(ctx context.Context, maxAgeDays int) (int64, error) {
	cutoff := time.Now().In(db.loc).AddDate(0, 0, -maxAgeDays).Format(time.DateTime)
	query := `DELETE FROM message_topics WHERE created_at < ?`
	result, err := db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup message topics: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return deleted, nil
}

// GetDisplayName formats "chat / topic" for logging. Falls back to the
// raw chat id and a synthesized "Topic N" label when titles are unknown;
// topic 0 always resolves to General.
func (db *DB) GetDisplayName(ctx context.Context, chatID int64, topicID int) string {
	chatName := fmt.Sprintf("%d", chatID)
	var title string
	err := db.GetContext(ctx, &title, `SELECT title FROM chat_titles WHERE chat_id = ?`, chatID)
	if err == nil && title != "" {
		chatName = title
	}

	topicName := GeneralTopicTitle
	if topicID != 0 {
		topicName = fmt.Sprintf("Topic %d", topicID)
		err := db.GetContext(ctx, &title, `SELECT title FROM topic_titles WHERE chat_id = ? AND topic_id = ?`, chatID, topicID)
		if err == nil && title != "" {
			topicName = title
		}
	}

	return fmt.Sprintf("%s / %s", chatName, topicName)
}
