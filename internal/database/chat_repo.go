package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mixelka/photoreport/pkg/models"
)

// ErrNotFound is returned when a record is not found
var ErrNotFound = errors.New("record not found")

// DefaultCity is assigned to a chat until /set_city is used.
const DefaultCity = "Не указан"

// AddActiveChat registers a chat for counting. Returns true if the chat
// was newly added, false if it was already registered.
func (db *DB) AddActiveChat(ctx context.Context, chatID int64) (bool, error) {
	query := `INSERT OR IGNORE INTO active_chats (chat_id, created_at, city) VALUES (?, ?, ?)`
	result, err := db.ExecContext(ctx, query, chatID, db.today(), DefaultCity)
	if err != nil {
		return false, fmt.Errorf("failed to add active chat: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// RemoveActiveChat unregisters a chat. Returns true if a row was removed.
func (db *DB) RemoveActiveChat(ctx context.Context, chatID int64) (bool, error) {
	query := `DELETE FROM active_chats WHERE chat_id = ?`
	result, err := db.ExecContext(ctx, query, chatID)
	if err != nil {
		return false, fmt.Errorf("failed to remove active chat: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// IsChatActive reports whether events for the chat are counted.
func (db *DB) IsChatActive(ctx context.Context, chatID int64) (bool, error) {
	var one int
	query := `SELECT 1 FROM active_chats WHERE chat_id = ?`
	err := db.GetContext(ctx, &one, query, chatID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check active chat: %w", err)
	}
	return true, nil
}

// GetAllActiveChats returns all registered chats.
func (db *DB) GetAllActiveChats(ctx context.Context) ([]*models.ActiveChat, error) {
	var chats []*models.ActiveChat
	query := `SELECT chat_id, created_at, city FROM active_chats ORDER BY chat_id`
	if err := db.SelectContext(ctx, &chats, query); err != nil {
		return nil, fmt.Errorf("failed to get active chats: %w", err)
	}
	return chats, nil
}

// SetChatCity assigns the report city for a chat. Returns false when the
// chat is not active.
func (db *DB) SetChatCity(ctx context.Context, chatID int64, city string) (bool, error) {
	query := `UPDATE active_chats SET city = ? WHERE chat_id = ?`
	result, err := db.ExecContext(ctx, query, city, chatID)
	if err != nil {
		return false, fmt.Errorf("failed to set chat city: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// UpdateChatTitle upserts the display title observed on an inbound event.
func (db *DB) UpdateChatTitle(ctx context.Context, chatID int64, title string) error {
	query := `
		INSERT INTO chat_titles (chat_id, title) VALUES (?, ?)
		ON CONFLICT(chat_id) DO UPDATE SET title = excluded.title
	`
	if _, err := db.ExecContext(ctx, query, chatID, title); err != nil {
		return fmt.Errorf("failed to update chat title: %w", err)
	}
	return nil
}
