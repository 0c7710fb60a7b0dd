package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// setupLocalEngine wires a storage path service over temp directories
// with a recordings tree to archive.
func setupLocalEngine(t *testing.T) (*LocalEngine, StoragePaths) {
	t.Helper()

	root := t.TempDir()
	paths := StoragePaths{
		"backups":    filepath.Join(root, "backups"),
		"recordings": filepath.Join(root, "recordings"),
		"voicemail":  filepath.Join(root, "voicemail"),
	}

	require.NoError(t, os.MkdirAll(filepath.Join(paths["recordings"], "2026-09"), 0o750))
	require.NoError(t, os.WriteFile(
		filepath.Join(paths["recordings"], "2026-09", "call-0001.wav"),
		[]byte("fake wav payload"), 0o640))
	require.NoError(t, os.WriteFile(
		filepath.Join(paths["recordings"], "greeting.wav"),
		[]byte("greeting"), 0o640))

	svc, err := NewStoragePathService(filepath.Join(root, "storage-paths.json"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })
	require.NoError(t, svc.Update(paths))

	return NewLocalEngine(svc, zap.NewNop()), paths
}

func TestLocalEngine_CreateListDetails(t *testing.T) {
	engine, _ := setupLocalEngine(t)
	ctx := context.Background()

	info, err := engine.Create(ctx, "pre-upgrade", []string{"recordings"})
	require.NoError(t, err)
	assert.Equal(t, "pre-upgrade", info.Name)
	assert.NotEmpty(t, info.ID)
	assert.NotEmpty(t, info.Checksum)
	assert.Positive(t, info.SizeBytes)

	backups, err := engine.List(ctx)
	require.NoError(t, err)
	require.Len(t, backups, 1)
	assert.Equal(t, info.ID, backups[0].ID)

	details, err := engine.GetDetails(ctx, info.ID)
	require.NoError(t, err)
	assert.Equal(t, info.Checksum, details.Checksum)
}

func TestLocalEngine_ComponentWithoutPathSkipped(t *testing.T) {
	engine, _ := setupLocalEngine(t)
	ctx := context.Background()

	// config has no storage path, the archive is still produced
	info, err := engine.Create(ctx, "config-only", []string{"config", "recordings"})
	require.NoError(t, err)
	assert.NotEmpty(t, info.ID)
}

func TestLocalEngine_RestoreRoundTrip(t *testing.T) {
	engine, paths := setupLocalEngine(t)
	ctx := context.Background()

	info, err := engine.Create(ctx, "roundtrip", []string{"recordings"})
	require.NoError(t, err)

	victim := filepath.Join(paths["recordings"], "2026-09", "call-0001.wav")
	require.NoError(t, os.WriteFile(victim, []byte("corrupted"), 0o640))

	require.NoError(t, engine.Restore(ctx, info.ID))

	restored, err := os.ReadFile(victim)
	require.NoError(t, err)
	assert.Equal(t, "fake wav payload", string(restored))
}

func TestLocalEngine_Verify(t *testing.T) {
	engine, paths := setupLocalEngine(t)
	ctx := context.Background()

	info, err := engine.Create(ctx, "verified", []string{"recordings"})
	require.NoError(t, err)

	ok, err := engine.Verify(ctx, info.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	// tamper with the archive
	archive := filepath.Join(paths["backups"], info.ID+".tar.gz")
	require.NoError(t, os.WriteFile(archive, []byte("tampered"), 0o640))

	ok, err = engine.Verify(ctx, info.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLocalEngine_Delete(t *testing.T) {
	engine, paths := setupLocalEngine(t)
	ctx := context.Background()

	info, err := engine.Create(ctx, "doomed", []string{"recordings"})
	require.NoError(t, err)

	require.NoError(t, engine.Delete(ctx, info.ID))

	_, err = engine.GetDetails(ctx, info.ID)
	assert.ErrorIs(t, err, ErrBackupNotFound)
	assert.NoFileExists(t, filepath.Join(paths["backups"], info.ID+".tar.gz"))

	assert.ErrorIs(t, engine.Delete(ctx, info.ID), ErrBackupNotFound)
	assert.ErrorIs(t, engine.Restore(ctx, info.ID), ErrBackupNotFound)
}

func TestLocalEngine_ListEmptyDirectory(t *testing.T) {
	engine, _ := setupLocalEngine(t)

	backups, err := engine.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, backups)
}

func TestRestoreTarget(t *testing.T) {
	paths := StoragePaths{"recordings": "/var/lib/flexpbx/recordings"}

	target, err := restoreTarget(paths, "recordings/2026-09/call.wav")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/var/lib/flexpbx/recordings", "2026-09", "call.wav"), target)

	_, err = restoreTarget(paths, "recordings/../../etc/passwd")
	assert.Error(t, err)

	_, err = restoreTarget(paths, "unknown/file.txt")
	assert.Error(t, err)

	_, err = restoreTarget(paths, "no-slash")
	assert.Error(t, err)
}
