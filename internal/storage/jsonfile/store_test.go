package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_LoadMissing(t *testing.T) {
	t.Parallel()
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)

	data, err := s.Load(context.Background(), "activity")
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestStore_LoadEmptyFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "user_cache.json"), nil, 0644))

	s, err := NewStore(dir)
	require.NoError(t, err)

	data, err := s.Load(context.Background(), "user_cache")
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestStore_SaveAndLoad(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	s, err := NewStore(dir)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "used_name", []byte(`{"-100":[1]}`)))
	require.NoError(t, s.Save(ctx, "used_name", []byte(`{"-100":[1,2]}`)))

	data, err := s.Load(ctx, "used_name")
	require.NoError(t, err)
	assert.JSONEq(t, `{"-100":[1,2]}`, string(data))

	info, err := os.Stat(filepath.Join(dir, "used_name.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm())

	// no temp files left behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestStore_SaveReadOnlyDirectory(t *testing.T) {
	t.Parallel()
	if os.Getuid() == 0 {
		t.Skip("skipping permission test when running as root")
	}

	dir := t.TempDir()
	s, err := NewStore(dir)
	require.NoError(t, err)

	require.NoError(t, os.Chmod(dir, 0555))
	t.Cleanup(func() { os.Chmod(dir, 0755) })

	assert.Error(t, s.Save(context.Background(), "activity", []byte("{}")))
}
