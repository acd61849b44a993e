package identity

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/sandevgo/warden/internal/core"
	"github.com/sandevgo/warden/internal/storage/memstore"
	"github.com/sandevgo/warden/internal/storage/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDirectory struct {
	profiles map[string]core.Profile
	calls    int
}

func (d *fakeDirectory) LookupHandle(ctx context.Context, handle string) (core.Profile, error) {
	d.calls++
	p, ok := d.profiles[handle]
	if !ok {
		return core.Profile{}, fmt.Errorf("chat by username: %w", core.ErrNotFound)
	}
	return p, nil
}

func newResolver(t *testing.T, profiles map[string]core.Profile) (*Resolver, *HandleCache, *fakeDirectory, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	cache := NewHandleCache(store)
	dir := &fakeDirectory{profiles: profiles}
	return NewResolver(cache, dir), cache, dir, store
}

func TestResolve_ReplyOverridesArgument(t *testing.T) {
	r, _, dir, _ := newResolver(t, nil)

	id, err := r.Resolve(context.Background(), &core.Profile{ID: 7}, "12345")
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
	assert.Zero(t, dir.calls)
}

func TestResolve_NumericNeedsNoLookup(t *testing.T) {
	r, _, dir, _ := newResolver(t, nil)

	id, err := r.Resolve(context.Background(), nil, "12345")
	require.NoError(t, err)
	assert.Equal(t, int64(12345), id)
	assert.Zero(t, dir.calls)
}

func TestResolve_HandleFromCache(t *testing.T) {
	r, cache, dir, _ := newResolver(t, nil)
	ctx := context.Background()
	cache.Observe(ctx, "Alice", 11)

	id, err := r.Resolve(ctx, nil, "@ALICE")
	require.NoError(t, err)
	assert.Equal(t, int64(11), id)
	assert.Zero(t, dir.calls)
}

func TestResolve_HandleMissLooksUpAndCaches(t *testing.T) {
	r, cache, dir, store := newResolver(t, map[string]core.Profile{
		"bob": {ID: 22, Username: "bob"},
	})
	ctx := context.Background()

	id, err := r.Resolve(ctx, nil, "@Bob")
	require.NoError(t, err)
	assert.Equal(t, int64(22), id)
	assert.Equal(t, 1, dir.calls)

	cached, ok := cache.Lookup("bob")
	require.True(t, ok)
	assert.Equal(t, int64(22), cached)
	assert.Equal(t, 1, store.Saves(core.DatasetHandles))

	_, err = r.Resolve(ctx, nil, "@bob")
	require.NoError(t, err)
	assert.Equal(t, 1, dir.calls, "second resolution is served from the cache")
}

func TestResolve_LookupFailure(t *testing.T) {
	r, _, _, _ := newResolver(t, nil)

	_, err := r.Resolve(context.Background(), nil, "@ghost")
	require.Error(t, err)

	var uerr *core.UserError
	require.True(t, errors.As(err, &uerr))
	assert.Equal(t, core.KindResolution, uerr.Kind)
	assert.Contains(t, uerr.Msg, "@ghost")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestResolve_InvalidSpecifier(t *testing.T) {
	r, _, dir, _ := newResolver(t, nil)

	for _, arg := range []string{"", "bob", "@", "-5", "12a"} {
		t.Run(arg, func(t *testing.T) {
			_, err := r.Resolve(context.Background(), nil, arg)
			assert.ErrorIs(t, err, core.ErrInvalidTarget)
		})
	}
	assert.Zero(t, dir.calls)
}

func TestHandleCache_ObserveWritesOnlyOnChange(t *testing.T) {
	store := memstore.New()
	cache := NewHandleCache(store)
	ctx := context.Background()

	cache.Observe(ctx, "@Carol", 1)
	cache.Observe(ctx, "carol", 1)
	assert.Equal(t, 1, store.Saves(core.DatasetHandles))

	cache.Observe(ctx, "carol", 2)
	assert.Equal(t, 2, store.Saves(core.DatasetHandles))

	cache.Observe(ctx, "", 3)
	assert.Equal(t, 1, cache.Len())
}

func TestHandleCache_Load(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		doc     []byte
		want    int
		wantErr bool
	}{
		{name: "absent", doc: nil, want: 0},
		{name: "empty object", doc: []byte("{}"), want: 0},
		{name: "entries", doc: []byte(`{"dave": 4, "erin": 5}`), want: 2},
		{name: "malformed", doc: []byte(`[1,2]`), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memstore.New()
			if tt.doc != nil {
				store = memstore.Seed(map[string][]byte{core.DatasetHandles: tt.doc})
			}
			cache := NewHandleCache(store)

			err := cache.Load(ctx)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cache.Len())
		})
	}
}

func TestHandleCache_ObserveAfterContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	db, err := sqlite.NewDB(ctx, filepath.Join(t.TempDir(), "warden.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	store := sqlite.NewSnapshotRepo(db)

	cancel()
	NewHandleCache(store).Observe(ctx, "Bob", 77)

	fresh := NewHandleCache(store)
	require.NoError(t, fresh.Load(context.Background()))
	id, ok := fresh.Lookup("bob")
	require.True(t, ok)
	assert.Equal(t, int64(77), id)
}
