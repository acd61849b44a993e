package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/sandevgo/warden/internal/core"
	"github.com/sandevgo/warden/pkg/log"
)

// HandleCache remembers which user id answered to a handle. Entries are
// never expired; a handle that changes owner keeps resolving to the last
// id observed for it.
type HandleCache struct {
	mu    sync.Mutex
	store core.SnapshotStore
	ids   map[string]int64
}

func NewHandleCache(store core.SnapshotStore) *HandleCache {
	return &HandleCache{
		store: store,
		ids:   make(map[string]int64),
	}
}

// NormalizeHandle lower-cases a handle and strips the leading @.
func NormalizeHandle(handle string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(handle), "@"))
}

func (c *HandleCache) Load(ctx context.Context) error {
	data, err := c.store.Load(ctx, core.DatasetHandles)
	if err != nil {
		return err
	}

	ids := make(map[string]int64)
	if len(data) > 0 {
		if err := json.Unmarshal(data, &ids); err != nil {
			return fmt.Errorf("failed to decode handle cache: %w", err)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.ids = ids

	log.FromCtx(ctx).Info().Int("handles", len(ids)).Msg("handle cache loaded")
	return nil
}

// Observe records handle → id. Nothing is written when the mapping is already known.
func (c *HandleCache) Observe(ctx context.Context, handle string, userID int64) {
	key := NormalizeHandle(handle)
	if key == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if id, ok := c.ids[key]; ok && id == userID {
		return
	}
	c.ids[key] = userID
	c.persist(ctx)

	log.FromCtx(ctx).Debug().Str("handle", key).Int64("user_id", userID).Msg("handle cached")
}

func (c *HandleCache) Lookup(handle string) (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id, ok := c.ids[NormalizeHandle(handle)]
	return id, ok
}

func (c *HandleCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.ids)
}

func (c *HandleCache) persist(ctx context.Context) {
	data, err := json.MarshalIndent(c.ids, "", "  ")
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).Msg("failed to encode handle cache")
		return
	}
	if err := c.store.Save(context.WithoutCancel(ctx), core.DatasetHandles, data); err != nil {
		log.FromCtx(ctx).Error().Err(err).Msg("failed to save handle cache")
	}
}
