package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/sandevgo/warden/internal/core"
	"github.com/sandevgo/warden/pkg/log"
)

// lastDailyKey is the reserved top-level key holding the last completed
// daily run. Every other key is a chat id.
const lastDailyKey = "last_daily"

func encode(chats map[int64]map[int64]*core.ActivityRecord, last *time.Time) ([]byte, error) {
	doc := make(map[string]any, len(chats)+1)
	for chatID, users := range chats {
		out := make(map[string]core.ActivityRecord, len(users))
		for userID, rec := range users {
			r := *rec
			if r.History == nil {
				r.History = []int{}
			}
			out[strconv.FormatInt(userID, 10)] = r
		}
		doc[strconv.FormatInt(chatID, 10)] = out
	}
	if last != nil {
		doc[lastDailyKey] = last.Format(time.RFC3339Nano)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal activity: %w", err)
	}
	return data, nil
}

// decode parses an activity document. Malformed chat keys and an unparseable
// sentinel are logged and skipped rather than failing the whole load.
func decode(ctx context.Context, data []byte) (map[int64]map[int64]*core.ActivityRecord, *time.Time, error) {
	chats := make(map[int64]map[int64]*core.ActivityRecord)
	if len(data) == 0 {
		return chats, nil, nil
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("failed to parse activity: %w", err)
	}

	logger := log.FromCtx(ctx)
	var last *time.Time

	for key, raw := range doc {
		if key == lastDailyKey {
			last = decodeLastDaily(ctx, raw)
			continue
		}

		chatID, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			logger.Warn().Str("key", key).Msg("skipping non-numeric chat key in activity")
			continue
		}

		var users map[string]core.ActivityRecord
		if err := json.Unmarshal(raw, &users); err != nil {
			return nil, nil, fmt.Errorf("failed to parse activity for chat %d: %w", chatID, err)
		}

		records := make(map[int64]*core.ActivityRecord, len(users))
		for uid, rec := range users {
			userID, err := strconv.ParseInt(uid, 10, 64)
			if err != nil {
				logger.Warn().Int64("chat", chatID).Str("user", uid).Msg("skipping non-numeric user key in activity")
				continue
			}
			r := normalize(rec)
			records[userID] = &r
		}
		chats[chatID] = records
	}

	return chats, last, nil
}

func decodeLastDaily(ctx context.Context, raw json.RawMessage) *time.Time {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil || s == "" {
		log.FromCtx(ctx).Warn().RawJSON("value", raw).Msg("ignoring malformed last daily run")
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Str("value", s).Msg("ignoring unparseable last daily run")
		return nil
	}
	return &t
}

// normalize enforces record invariants on data read from disk.
func normalize(r core.ActivityRecord) core.ActivityRecord {
	r.Score = max(0, r.Score)
	r.BaseScore = max(0, r.BaseScore)
	if r.History == nil {
		r.History = []int{}
	}
	if n := len(r.History); n > HistoryDepth {
		r.History = r.History[n-HistoryDepth:]
	}
	return r
}
