package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/sandevgo/warden/internal/core"
	"github.com/sandevgo/warden/pkg/log"
)

// UsedTitles is the append-only set of users who already changed their
// title, per chat.
type UsedTitles struct {
	mu    sync.Mutex
	store core.SnapshotStore
	chats map[int64]map[int64]struct{}
}

func NewUsedTitles(store core.SnapshotStore) *UsedTitles {
	return &UsedTitles{
		store: store,
		chats: make(map[int64]map[int64]struct{}),
	}
}

// Load reads the stored set. User ids may be stored as numbers or as
// numeric strings.
func (u *UsedTitles) Load(ctx context.Context) error {
	data, err := u.store.Load(ctx, core.DatasetUsedTitles)
	if err != nil {
		return err
	}

	chats := make(map[int64]map[int64]struct{})
	if len(bytes.TrimSpace(data)) > 0 {
		var raw map[string][]any
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("failed to decode used titles: %w", err)
		}

		for chatKey, users := range raw {
			chatID, err := strconv.ParseInt(chatKey, 10, 64)
			if err != nil {
				log.FromCtx(ctx).Warn().Str("key", chatKey).Msg("skipping non-numeric chat in used titles")
				continue
			}
			set := make(map[int64]struct{}, len(users))
			for _, v := range users {
				id, err := strconv.ParseInt(fmt.Sprint(v), 10, 64)
				if err != nil {
					log.FromCtx(ctx).Warn().Any("value", v).Msg("skipping malformed user id in used titles")
					continue
				}
				set[id] = struct{}{}
			}
			chats[chatID] = set
		}
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	u.chats = chats

	log.FromCtx(ctx).Info().Int("chats", len(chats)).Msg("used titles loaded")
	return nil
}

func (u *UsedTitles) Used(chatID, userID int64) bool {
	u.mu.Lock()
	defer u.mu.Unlock()

	_, ok := u.chats[chatID][userID]
	return ok
}

// Mark adds the user to the chat's set and persists it.
func (u *UsedTitles) Mark(ctx context.Context, chatID, userID int64) {
	u.mu.Lock()
	defer u.mu.Unlock()

	set, ok := u.chats[chatID]
	if !ok {
		set = make(map[int64]struct{})
		u.chats[chatID] = set
	}
	set[userID] = struct{}{}

	u.persist(ctx)
}

func (u *UsedTitles) persist(ctx context.Context) {
	doc := make(map[string][]int64, len(u.chats))
	for chatID, set := range u.chats {
		ids := make([]int64, 0, len(set))
		for id := range set {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		doc[strconv.FormatInt(chatID, 10)] = ids
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).Msg("failed to encode used titles")
		return
	}
	if err := u.store.Save(context.WithoutCancel(ctx), core.DatasetUsedTitles, data); err != nil {
		log.FromCtx(ctx).Error().Err(err).Msg("failed to save used titles")
	}
}
