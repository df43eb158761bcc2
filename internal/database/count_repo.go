package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mixelka/photoreport/pkg/models"
)

// ProductionTopicType is the reserved type whose topics contribute to the
// reaction columns of the report.
const ProductionTopicType = "Продукция"

// IncrementImageCount adds count photos to today's row for the chat/topic.
// The upsert is a single atomic statement, so concurrent increments never
// lose updates.
func (db *DB) IncrementImageCount(ctx context.Context, chatID int64, topicID, count int) error {
	query := `
		INSERT INTO image_counts (chat_id, topic_id, date, count) VALUES (?, ?, ?, ?)
		ON CONFLICT(chat_id, topic_id, date) DO UPDATE SET count = count + excluded.count
	`
	if _, err := db.ExecContext(ctx, query, chatID, topicID, db.today(), count); err != nil {
		return fmt.Errorf("failed to increment image count: %w", err)
	}
	return nil
}

// GetImageCount returns the photo count for a chat/topic/date, zero when
// no row exists.
func (db *DB) GetImageCount(ctx context.Context, chatID int64, topicID int, date string) (int, error) {
	var count int
	query := `SELECT count FROM image_counts WHERE chat_id = ? AND topic_id = ? AND date = ?`
	err := db.GetContext(ctx, &count, query, chatID, topicID, date)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get image count: %w", err)
	}
	return count, nil
}

// UpdateReactionCount applies signed deltas to today's reaction row.
// Reaction events are not ordered or deduplicated upstream, so both
// columns clamp at zero instead of going negative.
func (db *DB) UpdateReactionCount(ctx context.Context, chatID int64, topicID, positiveDelta, negativeDelta int) error {
	query := `
		INSERT INTO reaction_counts (chat_id, topic_id, date, positive_count, negative_count)
		VALUES (?, ?, ?, MAX(0, ?), MAX(0, ?))
		ON CONFLICT(chat_id, topic_id, date) DO UPDATE SET
			positive_count = MAX(0, positive_count + ?),
			negative_count = MAX(0, negative_count + ?)
	`
	_, err := db.ExecContext(ctx, query,
		chatID, topicID, db.today(),
		positiveDelta, negativeDelta,
		positiveDelta, negativeDelta,
	)
	if err != nil {
		return fmt.Errorf("failed to update reaction count: %w", err)
	}
	return nil
}

// GetReactionCount returns the reaction counters for a chat/topic/date.
func (db *DB) GetReactionCount(ctx context.Context, chatID int64, topicID int, date string) (positive, negative int, err error) {
	row := struct {
		Positive int `db:"positive_count"`
		Negative int `db:"negative_count"`
	}{}
	query := `SELECT positive_count, negative_count FROM reaction_counts WHERE chat_id = ? AND topic_id = ? AND date = ?`
	err = db.GetContext(ctx, &row, query, chatID, topicID, date)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, 0, nil
	}
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get reaction count: %w", err)
	}
	return row.Positive, row.Negative, nil
}

// GetAllImageCounts returns every counter row, ordered by date, chat
// and topic.
func (db *DB) GetAllImageCounts(ctx context.Context) ([]*models.ImageCount, error) {
	var counts []*models.ImageCount
	query := `SELECT chat_id, topic_id, date, count FROM image_counts ORDER BY date, chat_id, topic_id`
	if err := db.SelectContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("failed to get image counts: %w", err)
	}
	return counts, nil
}

// GetUniqueDates returns every date with at least one photo count,
// sorted ascending.
func (db *DB) GetUniqueDates(ctx context.Context) ([]string, error) {
	var dates []string
	query := `SELECT DISTINCT date FROM image_counts ORDER BY date`
	if err := db.SelectContext(ctx, &dates, query); err != nil {
		return nil, fmt.Errorf("failed to get unique dates: %w", err)
	}
	return dates, nil
}

// GetUniqueCities returns the distinct cities of registered chats.
func (db *DB) GetUniqueCities(ctx context.Context) ([]string, error) {
	var cities []string
	query := `SELECT DISTINCT city FROM active_chats ORDER BY city`
	if err := db.SelectContext(ctx, &cities, query); err != nil {
		return nil, fmt.Errorf("failed to get unique cities: %w", err)
	}
	return cities, nil
}

// GetCitiesWithDataForDate returns cities that have at least one photo
// count on the date in a topic whose type is set. Cities with only
// untyped activity are invisible to reporting.
func (db *DB) GetCitiesWithDataForDate(ctx context.Context, date string) ([]string, error) {
	var cities []string
	query := `
		SELECT DISTINCT ac.city
		FROM image_counts ic
		JOIN active_chats ac ON ac.chat_id = ic.chat_id
		JOIN topic_titles tt ON tt.chat_id = ic.chat_id AND tt.topic_id = ic.topic_id
		WHERE ic.date = ? AND tt.type != ?
		ORDER BY ac.city
	`
	if err := db.SelectContext(ctx, &cities, query, date, DefaultTopicType); err != nil {
		return nil, fmt.Errorf("failed to get cities for date: %w", err)
	}
	return cities, nil
}

// GetImageCountByCityTypeDate sums photo counts across every chat of the
// city and every topic of the type for the date.
func (db *DB) GetImageCountByCityTypeDate(ctx context.Context, city, topicType, date string) (int, error) {
	var total int
	query := `
		SELECT COALESCE(SUM(ic.count), 0)
		FROM image_counts ic
		JOIN active_chats ac ON ac.chat_id = ic.chat_id
		JOIN topic_titles tt ON tt.chat_id = ic.chat_id AND tt.topic_id = ic.topic_id
		WHERE ac.city = ? AND tt.type = ? AND ic.date = ?
	`
	if err := db.GetContext(ctx, &total, query, city, topicType, date); err != nil {
		return 0, fmt.Errorf("failed to sum image counts: %w", err)
	}
	return total, nil
}

// GetReactionCountByCityDate sums reactions for the city and date,
// restricted to topics of the reserved production type.
func (db *DB) GetReactionCountByCityDate(ctx context.Context, city, date string) (positive, negative int, err error) {
	row := struct {
		Positive int `db:"positive"`
		Negative int `db:"negative"`
	}{}
	query := `
		SELECT COALESCE(SUM(rc.positive_count), 0) AS positive,
		       COALESCE(SUM(rc.negative_count), 0) AS negative
		FROM reaction_counts rc
		JOIN active_chats ac ON ac.chat_id = rc.chat_id
		JOIN topic_titles tt ON tt.chat_id = rc.chat_id AND tt.topic_id = rc.topic_id
		WHERE ac.city = ? AND tt.type = ? AND rc.date = ?
	`
	if err := db.GetContext(ctx, &row, query, city, ProductionTopicType, date); err != nil {
		return 0, 0, fmt.Errorf("failed to sum reaction counts: %w", err)
	}
	return row.Positive, row.Negative, nil
}
