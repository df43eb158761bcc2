package report

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mixelka/photoreport/internal/database"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"), time.UTC)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.Migrate(context.Background()))
	return db
}

func seedImageCount(t *testing.T, db *database.DB, chatID int64, topicID int, date string, count int) {
	t.Helper()
	_, err := db.Exec(
		`INSERT INTO image_counts (chat_id, topic_id, date, count) VALUES (?, ?, ?, ?)
		 ON CONFLICT(chat_id, topic_id, date) DO UPDATE SET count = count + excluded.count`,
		chatID, topicID, date, count,
	)
	require.NoError(t, err)
}

func registerChat(t *testing.T, db *database.DB, chatID int64, city string) {
	t.Helper()
	ctx := context.Background()
	_, err := db.AddActiveChat(ctx, chatID)
	require.NoError(t, err)
	_, err = db.SetChatCity(ctx, chatID, city)
	require.NoError(t, err)
}

func TestFormatDate(t *testing.T) {
	require.Equal(t, "20.08.2026", FormatDate("2026-08-20"))
	require.Equal(t, "01.01.2025", FormatDate("2025-01-01"))
	require.Equal(t, "not-a-date", FormatDate("not-a-date"))
}

func TestHeaders(t *testing.T) {
	headers := Headers()
	require.Equal(t, "Дата", headers[0])
	require.Equal(t, "Город", headers[1])
	require.Equal(t, "Дизлайки", headers[len(headers)-1])
	require.Equal(t, "Лайки", headers[len(headers)-2])
	// production column sits right before the reaction columns
	require.Equal(t, database.ProductionTopicType, headers[len(headers)-3])
	require.Len(t, headers, 2+len(TopicTypes)+len(ReactionColumns))
}

func TestValidTopicType(t *testing.T) {
	require.True(t, ValidTopicType("Чистота"))
	require.True(t, ValidTopicType(database.ProductionTopicType))
	require.False(t, ValidTopicType("Не указан"))
	require.False(t, ValidTopicType(""))
}

func TestBuildPivotsByCityAndType(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	registerChat(t, db, 100, "Москва")
	_, err := db.SetTopicType(ctx, 100, 5, "Чистота")
	require.NoError(t, err)
	seedImageCount(t, db, 100, 5, "2026-08-20", 2)

	table, err := NewBuilder(db).Build(ctx)
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)

	row := table.Rows[0]
	require.Len(t, row, len(table.Headers))
	require.Equal(t, "20.08.2026", row[0])
	require.Equal(t, "Москва", row[1])

	for i, topicType := range TopicTypes {
		want := 0
		if topicType == "Чистота" {
			want = 2
		}
		require.Equal(t, want, row[2+i], "column %s", topicType)
	}

	// reaction columns are zero-filled with no reaction data
	require.Equal(t, 0, row[len(row)-2])
	require.Equal(t, 0, row[len(row)-1])
}

func TestBuildExcludesUntypedOnlyCities(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	registerChat(t, db, 100, "Москва")
	registerChat(t, db, 200, "Казань")

	// Москва has only untyped activity, Казань has a typed topic
	require.NoError(t, db.UpdateTopicTitle(ctx, 100, 5, "Без типа"))
	seedImageCount(t, db, 100, 5, "2026-08-20", 3)

	_, err := db.SetTopicType(ctx, 200, 7, "Заготовки")
	require.NoError(t, err)
	seedImageCount(t, db, 200, 7, "2026-08-20", 1)

	table, err := NewBuilder(db).Build(ctx)
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	require.Equal(t, "Казань", table.Rows[0][1])
}

func TestBuildEmitsOneRowPerCityAndDate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	registerChat(t, db, 100, "Москва")
	registerChat(t, db, 200, "Казань")
	for _, chatID := range []int64{100, 200} {
		_, err := db.SetTopicType(ctx, chatID, 5, "Обсуждение")
		require.NoError(t, err)
	}

	seedImageCount(t, db, 100, 5, "2026-08-19", 1)
	seedImageCount(t, db, 100, 5, "2026-08-20", 2)
	seedImageCount(t, db, 200, 5, "2026-08-20", 3)

	table, err := NewBuilder(db).Build(ctx)
	require.NoError(t, err)
	require.Len(t, table.Rows, 3)

	// dates ascending, cities alphabetical within a date
	require.Equal(t, "19.08.2026", table.Rows[0][0])
	require.Equal(t, "Москва", table.Rows[0][1])
	require.Equal(t, "20.08.2026", table.Rows[1][0])
	require.Equal(t, "Казань", table.Rows[1][1])
	require.Equal(t, "20.08.2026", table.Rows[2][0])
	require.Equal(t, "Москва", table.Rows[2][1])
}

func TestBuildIncludesProductionReactions(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	registerChat(t, db, 100, "Москва")
	_, err := db.SetTopicType(ctx, 100, 5, database.ProductionTopicType)
	require.NoError(t, err)
	seedImageCount(t, db, 100, 5, "2026-08-20", 4)

	_, err = db.Exec(
		`INSERT INTO reaction_counts (chat_id, topic_id, date, positive_count, negative_count) VALUES (100, 5, '2026-08-20', 6, 2)`,
	)
	require.NoError(t, err)

	table, err := NewBuilder(db).Build(ctx)
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)

	row := table.Rows[0]
	require.Equal(t, 6, row[len(row)-2])
	require.Equal(t, 2, row[len(row)-1])
}

func TestBuildEmptyStore(t *testing.T) {
	db := newTestDB(t)

	table, err := NewBuilder(db).Build(context.Background())
	require.NoError(t, err)
	require.Empty(t, table.Rows)
	require.Equal(t, Headers(), table.Headers)
}
