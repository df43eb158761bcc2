package database

import (
	"context"
	"fmt"
)

// migrations is the ordered list of schema versions. The position in the
// slice plus one is the version number recorded in PRAGMA user_version,
// so entries must only ever be appended.
var migrations = []string{
	// v1: core counting tables
	`
CREATE TABLE IF NOT EXISTS active_chats (
    chat_id INTEGER PRIMARY KEY,
    created_at TEXT NOT NULL,
    city TEXT NOT NULL DEFAULT 'Не указан'
);

CREATE TABLE IF NOT EXISTS chat_titles (
    chat_id INTEGER PRIMARY KEY,
    title TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS topic_titles (
    chat_id INTEGER NOT NULL,
    topic_id INTEGER NOT NULL,
    title TEXT NOT NULL,
    type TEXT NOT NULL DEFAULT 'Не указан',
    PRIMARY KEY (chat_id, topic_id)
);

CREATE TABLE IF NOT EXISTS image_counts (
    chat_id INTEGER NOT NULL,
    topic_id INTEGER NOT NULL DEFAULT 0,
    date TEXT NOT NULL,
    count INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (chat_id, topic_id, date)
);

CREATE INDEX IF NOT EXISTS idx_image_counts_date ON image_counts(date);
`,
	// v2: reaction counters and the message->topic index
	`
CREATE TABLE IF NOT EXISTS reaction_counts (
    chat_id INTEGER NOT NULL,
    topic_id INTEGER NOT NULL DEFAULT 0,
    date TEXT NOT NULL,
    positive_count INTEGER NOT NULL DEFAULT 0,
    negative_count INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (chat_id, topic_id, date)
);

CREATE TABLE IF NOT EXISTS message_topics (
    chat_id INTEGER NOT NULL,
    message_id INTEGER NOT NULL,
    topic_id INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL,
    PRIMARY KEY (chat_id, message_id)
);

CREATE INDEX IF NOT EXISTS idx_message_topics_created ON message_topics(created_at);
`,
}

// Migrate applies pending migrations in order. Each applied version is
// recorded in PRAGMA user_version inside the same transaction, so a
// restart never reapplies a completed step.
func (db *DB) Migrate(ctx context.Context) error {
	var version int
	if err := db.GetContext(ctx, &version, `PRAGMA user_version`); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	if version > len(migrations) {
		return fmt.Errorf("database schema version %d is newer than this binary supports (%d)", version, len(migrations))
	}

	for i := version; i < len(migrations); i++ {
		tx, err := db.BeginTxx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin migration %d: %w", i+1, err)
		}
		if _, err := tx.ExecContext(ctx, migrations[i]); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to apply migration %d: %w", i+1, err)
		}
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`PRAGMA user_version = %d`, i+1)); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", i+1, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", i+1, err)
		}
	}
	return nil
}
