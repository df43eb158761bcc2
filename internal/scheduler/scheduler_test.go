package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mixelka/photoreport/internal/database"
	"github.com/mixelka/photoreport/internal/report"
)

type fakeSink struct {
	mu        sync.Mutex
	published []*report.Table
	err       error
}

func (f *fakeSink) Publish(ctx context.Context, table *report.Table) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, table)
	return nil
}

func (f *fakeSink) publishCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.published)
}

func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"), time.UTC)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.Migrate(context.Background()))
	return db
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seedTypedCount(t *testing.T, db *database.DB) {
	t.Helper()
	ctx := context.Background()

	_, err := db.AddActiveChat(ctx, 100)
	require.NoError(t, err)
	_, err = db.SetChatCity(ctx, 100, "Москва")
	require.NoError(t, err)
	_, err = db.SetTopicType(ctx, 100, 5, "Чистота")
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO image_counts (chat_id, topic_id, date, count) VALUES (100, 5, '2026-08-20', 2)`)
	require.NoError(t, err)
}

func TestForceSyncPublishesReport(t *testing.T) {
	db := newTestDB(t)
	seedTypedCount(t, db)

	sink := &fakeSink{}
	s := New(db, sink, Config{SyncInterval: time.Hour, CleanupInterval: time.Hour, MessageTopicMaxAge: 30}, discardLogger())

	require.NoError(t, s.ForceSync(context.Background()))
	require.Equal(t, 1, sink.publishCount())
	require.Len(t, sink.published[0].Rows, 1)
}

func TestForceSyncSkipsEmptyReport(t *testing.T) {
	db := newTestDB(t)

	sink := &fakeSink{}
	s := New(db, sink, Config{SyncInterval: time.Hour, CleanupInterval: time.Hour, MessageTopicMaxAge: 30}, discardLogger())

	require.NoError(t, s.ForceSync(context.Background()))
	require.Zero(t, sink.publishCount(), "empty report must not be published")
}

func TestForceSyncReturnsSinkError(t *testing.T) {
	db := newTestDB(t)
	seedTypedCount(t, db)

	sink := &fakeSink{err: errors.New("quota exceeded")}
	s := New(db, sink, Config{SyncInterval: time.Hour, CleanupInterval: time.Hour, MessageTopicMaxAge: 30}, discardLogger())

	err := s.ForceSync(context.Background())
	require.ErrorContains(t, err, "quota exceeded")
}

func TestTimerSurvivesSinkFailures(t *testing.T) {
	db := newTestDB(t)
	seedTypedCount(t, db)

	sink := &fakeSink{}
	s := New(db, sink, Config{SyncInterval: 10 * time.Millisecond, CleanupInterval: time.Hour, MessageTopicMaxAge: 30}, discardLogger())

	sink.mu.Lock()
	sink.err = errors.New("transient")
	sink.mu.Unlock()

	s.Start(context.Background())

	// let a few failing cycles pass, then recover the sink
	time.Sleep(50 * time.Millisecond)
	sink.mu.Lock()
	sink.err = nil
	sink.mu.Unlock()

	require.Eventually(t, func() bool {
		return sink.publishCount() > 0
	}, 2*time.Second, 10*time.Millisecond, "timer must keep firing after failed cycles")

	s.Stop()
}

func TestStopWaitsForLoops(t *testing.T) {
	db := newTestDB(t)

	sink := &fakeSink{}
	s := New(db, sink, Config{SyncInterval: 5 * time.Millisecond, CleanupInterval: 5 * time.Millisecond, MessageTopicMaxAge: 30}, discardLogger())

	s.Start(context.Background())
	time.Sleep(20 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}
}

func TestCleanupCycleRemovesOldEntries(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	old := time.Now().UTC().AddDate(0, 0, -40).Format(time.DateTime)
	_, err := db.Exec(`INSERT INTO message_topics (chat_id, message_id, topic_id, created_at) VALUES (100, 1, 5, ?)`, old)
	require.NoError(t, err)
	require.NoError(t, db.SaveMessageTopic(ctx, 100, 2, 5))

	sink := &fakeSink{}
	s := New(db, sink, Config{SyncInterval: time.Hour, CleanupInterval: time.Hour, MessageTopicMaxAge: 30}, discardLogger())

	require.NoError(t, s.cleanupCycle(ctx))

	_, err = db.GetTopicByMessage(ctx, 100, 1)
	require.ErrorIs(t, err, database.ErrNotFound)

	topicID, err := db.GetTopicByMessage(ctx, 100, 2)
	require.NoError(t, err)
	require.Equal(t, 5, topicID)
}
