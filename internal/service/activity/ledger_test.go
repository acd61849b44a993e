package activity

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/sandevgo/warden/internal/config"
	"github.com/sandevgo/warden/internal/core"
	"github.com/sandevgo/warden/internal/storage/memstore"
	"github.com/sandevgo/warden/internal/storage/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	chatID = int64(-1001234)
	userID = int64(42)
)

var msk = config.FixedZone(3)

func newLedger(t *testing.T) (*Ledger, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	return NewLedger(store, msk), store
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, msk)
}

func TestRecordMessage_ScoreEqualsCallCount(t *testing.T) {
	l, store := newLedger(t)
	ctx := context.Background()

	for i := 0; i < 17; i++ {
		l.RecordMessage(ctx, chatID, userID)
	}

	rec, ok := l.Record(chatID, userID)
	require.True(t, ok)
	assert.Equal(t, 17, rec.Score)
	assert.Empty(t, rec.History)
	assert.Zero(t, rec.BaseScore)
	assert.Equal(t, 17, store.Saves(core.DatasetActivity), "every message is written through")
}

func TestRecordMessage_Concurrent(t *testing.T) {
	l, _ := newLedger(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				l.RecordMessage(ctx, chatID, userID)
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		l.SnapshotAll(ctx, time.Now())
	}()
	wg.Wait()

	rec, ok := l.Record(chatID, userID)
	require.True(t, ok)
	assert.Equal(t, 400, rec.Score)
}

func TestSnapshotAll_HistoryIsBounded(t *testing.T) {
	l, store := newLedger(t)
	ctx := context.Background()

	for i := 1; i <= 20; i++ {
		l.RecordMessage(ctx, chatID, userID)
		l.SnapshotAll(ctx, day(2025, 1, i))

		rec, _ := l.Record(chatID, userID)
		assert.LessOrEqual(t, len(rec.History), HistoryDepth)
	}

	rec, _ := l.Record(chatID, userID)
	assert.Equal(t, []int{14, 15, 16, 17, 18, 19, 20}, rec.History, "oldest entries are dropped first")
	assert.Equal(t, 40, store.Saves(core.DatasetActivity))
}

func TestSnapshotAll_NotIdempotent(t *testing.T) {
	l, _ := newLedger(t)
	ctx := context.Background()
	l.RecordMessage(ctx, chatID, userID)

	l.SnapshotAll(ctx, day(2025, 1, 7))
	l.SnapshotAll(ctx, day(2025, 1, 7))

	rec, _ := l.Record(chatID, userID)
	assert.Equal(t, []int{1, 1}, rec.History)
	_, ok := l.LastDailyRun()
	assert.False(t, ok, "manual snapshots do not touch the last daily run")
}

func TestDecay(t *testing.T) {
	tests := []struct {
		score int
		want  int
	}{
		{0, 0},
		{3, 0},
		{5, 0},
		{6, 1},
		{10, 5},
		{24, 19},
		{25, 20},
		{30, 24},
		{100, 80},
		{101, 81},
	}

	for _, tt := range tests {
		got := Decay(tt.score)
		assert.Equal(t, tt.want, got, "Decay(%d)", tt.score)

		expected := max(0, tt.score-max(5, tt.score/5))
		assert.Equal(t, expected, got)
		assert.GreaterOrEqual(t, got, 0)
	}
}

func TestDecayAll_SetsBaseline(t *testing.T) {
	l, store := newLedger(t)
	ctx := context.Background()

	for i := 0; i < 30; i++ {
		l.RecordMessage(ctx, chatID, userID)
	}
	for i := 0; i < 3; i++ {
		l.RecordMessage(ctx, chatID, 7)
	}
	before := store.Saves(core.DatasetActivity)

	l.DecayAll(ctx)

	rec, _ := l.Record(chatID, userID)
	assert.Equal(t, 24, rec.Score)
	assert.Equal(t, 24, rec.BaseScore)

	rec, _ = l.Record(chatID, 7)
	assert.Equal(t, 0, rec.Score)
	assert.Equal(t, 0, rec.BaseScore)

	assert.Equal(t, before+1, store.Saves(core.DatasetActivity), "decay persists once")
}

func TestDailyCycle_DecaysOnlyOnMonday(t *testing.T) {
	ctx := context.Background()

	for d := 5; d <= 11; d++ { // Sun 5 Jan .. Sat 11 Jan 2025
		now := day(2025, 1, d)
		t.Run(now.Weekday().String(), func(t *testing.T) {
			l, _ := newLedger(t)
			for i := 0; i < 30; i++ {
				l.RecordMessage(ctx, chatID, userID)
			}

			l.DailyCycle(ctx, now)

			rec, _ := l.Record(chatID, userID)
			if now.Weekday() == time.Monday {
				// decay happened before the snapshot
				assert.Equal(t, 24, rec.Score)
				assert.Equal(t, []int{24}, rec.History)
				assert.Equal(t, 24, rec.BaseScore)
			} else {
				assert.Equal(t, 30, rec.Score)
				assert.Equal(t, []int{30}, rec.History)
				assert.Equal(t, 0, rec.BaseScore)
			}

			last, ok := l.LastDailyRun()
			require.True(t, ok)
			assert.True(t, last.Equal(now))
		})
	}
}

func TestDailyCycle_WeekdayInFixedZone(t *testing.T) {
	l, _ := newLedger(t)
	ctx := context.Background()
	for i := 0; i < 10; i++ {
		l.RecordMessage(ctx, chatID, userID)
	}

	// Sunday 22:00 UTC is Monday 01:00 at UTC+3
	l.DailyCycle(ctx, time.Date(2025, 1, 5, 22, 0, 0, 0, time.UTC))

	rec, _ := l.Record(chatID, userID)
	assert.Equal(t, 5, rec.Score)
}

func TestPersist_FailureKeepsMemoryState(t *testing.T) {
	l, store := newLedger(t)
	ctx := context.Background()

	store.SetFailure(errors.New("disk full"))
	l.RecordMessage(ctx, chatID, userID)
	l.RecordMessage(ctx, chatID, userID)

	rec, _ := l.Record(chatID, userID)
	assert.Equal(t, 2, rec.Score)
	data, _ := store.Load(ctx, core.DatasetActivity)
	assert.Nil(t, data)

	store.SetFailure(nil)
	l.RecordMessage(ctx, chatID, userID)

	reloaded := NewLedger(store, msk)
	require.NoError(t, reloaded.Load(ctx))
	rec, _ = reloaded.Record(chatID, userID)
	assert.Equal(t, 3, rec.Score, "next successful write reconciles")
}

func TestLoad_LegacyDocument(t *testing.T) {
	doc := `{
  "-1001234": {
    "42": {"score": 12, "history": [2, 5, 9], "base_score": 9},
    "7": {"score": 3}
  },
  "last_daily": "2025-01-06T00:00:00.123456+03:00"
}`
	store := memstore.Seed(map[string][]byte{core.DatasetActivity: []byte(doc)})
	l := NewLedger(store, msk)
	require.NoError(t, l.Load(context.Background()))

	rec, ok := l.Record(chatID, userID)
	require.True(t, ok)
	assert.Equal(t, core.ActivityRecord{Score: 12, History: []int{2, 5, 9}, BaseScore: 9}, rec)

	rec, ok = l.Record(chatID, 7)
	require.True(t, ok)
	assert.Equal(t, []int{}, rec.History)

	last, ok := l.LastDailyRun()
	require.True(t, ok)
	assert.Equal(t, 2025, last.Year())
	assert.Equal(t, time.January, last.Month())
	assert.Equal(t, 6, last.Day())

	assert.Equal(t, []int64{chatID}, l.Chats(), "sentinel is not a chat")
}

func TestLoad_MalformedSentinelIsIgnored(t *testing.T) {
	store := memstore.Seed(map[string][]byte{
		core.DatasetActivity: []byte(`{"last_daily": "yesterday", "1": {}}`),
	})
	l := NewLedger(store, msk)
	require.NoError(t, l.Load(context.Background()))

	_, ok := l.LastDailyRun()
	assert.False(t, ok)
	assert.Equal(t, []int64{1}, l.Chats())
}

func TestLoad_ClampsInvariants(t *testing.T) {
	store := memstore.Seed(map[string][]byte{
		core.DatasetActivity: []byte(`{"1": {"2": {"score": -4, "history": [1,2,3,4,5,6,7,8,9], "base_score": -1}}}`),
	})
	l := NewLedger(store, msk)
	require.NoError(t, l.Load(context.Background()))

	rec, _ := l.Record(1, 2)
	assert.Equal(t, 0, rec.Score)
	assert.Equal(t, 0, rec.BaseScore)
	assert.Equal(t, []int{3, 4, 5, 6, 7, 8, 9}, rec.History)
}

func TestLoad_InvalidJSON(t *testing.T) {
	store := memstore.Seed(map[string][]byte{core.DatasetActivity: []byte(`{"1": [`)})
	assert.Error(t, NewLedger(store, msk).Load(context.Background()))
}

func TestEncode_Layout(t *testing.T) {
	l, store := newLedger(t)
	ctx := context.Background()
	l.RecordMessage(ctx, chatID, userID)
	l.DailyCycle(ctx, day(2025, 1, 7))

	data, err := store.Load(ctx, core.DatasetActivity)
	require.NoError(t, err)

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.JSONEq(t, `{"42": {"score": 1, "history": [1], "base_score": 0}}`, string(doc["-1001234"]))
	assert.JSONEq(t, `"2025-01-07T00:00:00+03:00"`, string(doc["last_daily"]))
}

func TestRecord_ReturnsCopy(t *testing.T) {
	l, _ := newLedger(t)
	ctx := context.Background()
	l.RecordMessage(ctx, chatID, userID)
	l.SnapshotAll(ctx, day(2025, 1, 7))

	rec, _ := l.Record(chatID, userID)
	rec.History[0] = 99

	again, _ := l.Record(chatID, userID)
	assert.Equal(t, []int{1}, again.History)
}

func TestEntries_SortedByScore(t *testing.T) {
	l, _ := newLedger(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		l.RecordMessage(ctx, chatID, 1)
	}
	l.RecordMessage(ctx, chatID, 2)
	for i := 0; i < 5; i++ {
		l.RecordMessage(ctx, chatID, 3)
	}

	entries := l.Entries(chatID)
	require.Len(t, entries, 3)
	assert.Equal(t, []int64{3, 1, 2}, []int64{entries[0].UserID, entries[1].UserID, entries[2].UserID})
	assert.Empty(t, l.Entries(999))
}

func TestLedger_PersistsAfterContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	db, err := sqlite.NewDB(ctx, filepath.Join(t.TempDir(), "warden.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	store := sqlite.NewSnapshotRepo(db)

	l := NewLedger(store, msk)
	l.RecordMessage(ctx, chatID, userID)

	// a cycle finishing while the process is shutting down
	cancel()
	l.DailyCycle(ctx, day(2025, 1, 7))

	fresh := NewLedger(store, msk)
	require.NoError(t, fresh.Load(context.Background()))

	last, ok := fresh.LastDailyRun()
	require.True(t, ok)
	assert.True(t, last.Equal(day(2025, 1, 7)))

	rec, ok := fresh.Record(chatID, userID)
	require.True(t, ok)
	assert.Equal(t, []int{1}, rec.History)
}
