package activity

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sandevgo/warden/internal/core"
	"github.com/sandevgo/warden/pkg/log"
)

const (
	// HistoryDepth is how many daily snapshots a record keeps.
	HistoryDepth = 7

	minDecayLoss = 5
)

// Ledger owns per chat×user activity. Every mutation runs under one mutex
// and ends with a write of the whole document.
type Ledger struct {
	mu           sync.Mutex
	store        core.SnapshotStore
	loc          *time.Location
	chats        map[int64]map[int64]*core.ActivityRecord
	lastDailyRun *time.Time
}

func NewLedger(store core.SnapshotStore, loc *time.Location) *Ledger {
	return &Ledger{
		store: store,
		loc:   loc,
		chats: make(map[int64]map[int64]*core.ActivityRecord),
	}
}

// Load replaces in-memory state with the stored document. A missing document is an empty ledger.
func (l *Ledger) Load(ctx context.Context) error {
	data, err := l.store.Load(ctx, core.DatasetActivity)
	if err != nil {
		return err
	}

	chats, last, err := decode(ctx, data)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.chats = chats
	l.lastDailyRun = last

	log.FromCtx(ctx).Info().Int("chats", len(chats)).Msg("activity ledger loaded")
	return nil
}

// RecordMessage counts one observed message.
func (l *Ledger) RecordMessage(ctx context.Context, chatID, userID int64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	users, ok := l.chats[chatID]
	if !ok {
		users = make(map[int64]*core.ActivityRecord)
		l.chats[chatID] = users
	}
	rec, ok := users[userID]
	if !ok {
		rec = &core.ActivityRecord{History: []int{}}
		users[userID] = rec
	}
	rec.Score++

	l.persist(ctx)
}

// SnapshotAll appends every score to its history. Running it twice on the
// same day appends twice.
func (l *Ledger) SnapshotAll(ctx context.Context, now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.snapshot()
	l.persist(ctx)
	log.FromCtx(ctx).Info().Time("at", now.In(l.loc)).Msg("daily activity snapshot saved")
}

// DecayAll applies the weekly decay and moves every baseline to the new score.
func (l *Ledger) DecayAll(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.decay()
	l.persist(ctx)
	log.FromCtx(ctx).Info().Msg("weekly activity decay applied")
}

// DailyCycle is the scheduled job: decay on Mondays, snapshot every day,
// then remember now as the last completed run.
func (l *Ledger) DailyCycle(ctx context.Context, now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	local := now.In(l.loc)
	logger := log.FromCtx(ctx).With().Time("at", local).Logger()

	if local.Weekday() == time.Monday {
		l.decay()
		logger.Info().Msg("weekly activity decay applied")
	}
	l.snapshot()
	l.lastDailyRun = &local
	l.persist(ctx)

	logger.Info().Msg("daily cycle completed")
}

func (l *Ledger) snapshot() {
	for _, users := range l.chats {
		for _, rec := range users {
			rec.History = append(rec.History, rec.Score)
			if n := len(rec.History); n > HistoryDepth {
				rec.History = append([]int(nil), rec.History[n-HistoryDepth:]...)
			}
		}
	}
}

func (l *Ledger) decay() {
	for _, users := range l.chats {
		for _, rec := range users {
			rec.Score = Decay(rec.Score)
			rec.BaseScore = rec.Score
		}
	}
}

// Decay returns score after one weekly decay: it loses a fifth, at least 5, never below zero.
func Decay(score int) int {
	loss := max(minDecayLoss, score/5)
	return max(0, score-loss)
}

// persist writes the whole ledger. Failures are logged and the in-memory
// state is kept; the next successful write reconciles it. The write outlives
// ctx cancellation so cycles finishing during shutdown still land.
func (l *Ledger) persist(ctx context.Context) {
	logger := log.FromCtx(ctx)

	data, err := encode(l.chats, l.lastDailyRun)
	if err != nil {
		logger.Error().Err(err).Msg("failed to encode activity ledger")
		return
	}
	if err := l.store.Save(context.WithoutCancel(ctx), core.DatasetActivity, data); err != nil {
		logger.Error().Err(err).Msg("failed to save activity ledger")
	}
}

// Record returns a copy of the record for chatID/userID.
func (l *Ledger) Record(chatID, userID int64) (core.ActivityRecord, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, ok := l.chats[chatID][userID]
	if !ok {
		return core.ActivityRecord{}, false
	}
	return rec.Clone(), true
}

func (l *Ledger) LastDailyRun() (time.Time, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.lastDailyRun == nil {
		return time.Time{}, false
	}
	return *l.lastDailyRun, true
}

func (l *Ledger) Location() *time.Location {
	return l.loc
}

// Entry is one user's record in a chat listing.
type Entry struct {
	UserID int64
	Record core.ActivityRecord
}

// Chats lists chat ids in ascending order.
func (l *Ledger) Chats() []int64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	ids := make([]int64, 0, len(l.chats))
	for id := range l.chats {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Entries lists a chat's records, highest score first.
func (l *Ledger) Entries(chatID int64) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	users := l.chats[chatID]
	entries := make([]Entry, 0, len(users))
	for id, rec := range users {
		entries = append(entries, Entry{UserID: id, Record: rec.Clone()})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Record.Score != entries[j].Record.Score {
			return entries[i].Record.Score > entries[j].Record.Score
		}
		return entries[i].UserID < entries[j].UserID
	})
	return entries
}
