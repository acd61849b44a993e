package storage

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/sandevgo/warden/internal/config"
	"github.com/sandevgo/warden/internal/core"
	"github.com/sandevgo/warden/internal/storage/jsonfile"
	"github.com/sandevgo/warden/internal/storage/sqlite"
	"github.com/sandevgo/warden/pkg/log"
)

// Datasets lists every document the bot keeps.
var Datasets = []string{core.DatasetHandles, core.DatasetUsedTitles, core.DatasetActivity}

// Open returns the snapshot store for backend under runtimePath and a func
// that releases it.
func Open(ctx context.Context, backend, runtimePath string) (core.SnapshotStore, func() error, error) {
	switch backend {
	case config.StoreJSON:
		store, err := jsonfile.NewStore(runtimePath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() error { return nil }, nil

	case config.StoreSQLite:
		db, err := sqlite.NewDB(ctx, filepath.Join(runtimePath, "warden.db"))
		if err != nil {
			return nil, nil, err
		}
		return sqlite.NewSnapshotRepo(db), db.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", backend)
	}
}

// Ensure writes an empty document for each dataset that has none yet.
func Ensure(ctx context.Context, store core.SnapshotStore, datasets ...string) error {
	for _, ds := range datasets {
		data, err := store.Load(ctx, ds)
		if err != nil {
			return err
		}
		if data != nil {
			continue
		}
		if err := store.Save(ctx, ds, []byte("{}")); err != nil {
			return fmt.Errorf("failed to create empty %s: %w", ds, err)
		}
		log.FromCtx(ctx).Info().Str("dataset", ds).Msg("created empty snapshot")
	}
	return nil
}
