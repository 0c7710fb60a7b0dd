package service

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newStoragePathService(t *testing.T) (*StoragePathService, string) {
	t.Helper()

	filePath := filepath.Join(t.TempDir(), "storage-paths.json")
	svc, err := NewStoragePathService(filePath, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })

	return svc, filePath
}

func TestStoragePathService_DefaultsWhenFileMissing(t *testing.T) {
	svc, _ := newStoragePathService(t)

	paths := svc.Get()
	assert.Equal(t, "/var/lib/flexpbx/recordings", paths["recordings"])
	assert.Equal(t, "/var/lib/flexpbx/backups", paths["backups"])
	assert.Equal(t, "/var/lib/flexpbx/voicemail", paths["voicemail"])
	assert.Equal(t, "/var/lib/flexpbx/moh", paths["moh"])
}

func TestStoragePathService_UpdateRoundTrip(t *testing.T) {
	svc, filePath := newStoragePathService(t)

	next := StoragePaths{
		"recordings": "/mnt/nas/recordings",
		"backups":    "/mnt/nas/backups",
	}
	require.NoError(t, svc.Update(next))

	got := svc.Get()
	assert.Equal(t, "/mnt/nas/recordings", got["recordings"])
	assert.Equal(t, "/mnt/nas/backups", got["backups"])

	// the file on disk matches what Get returns
	data, err := os.ReadFile(filePath)
	require.NoError(t, err)
	var onDisk StoragePaths
	require.NoError(t, json.Unmarshal(data, &onDisk))
	assert.Equal(t, got, onDisk)
}

func TestStoragePathService_GetReturnsCopy(t *testing.T) {
	svc, _ := newStoragePathService(t)

	paths := svc.Get()
	paths["recordings"] = "/tmp/tampered"

	assert.Equal(t, "/var/lib/flexpbx/recordings", svc.Get()["recordings"])
}

func TestStoragePathService_UpdateValidation(t *testing.T) {
	svc, _ := newStoragePathService(t)

	err := svc.Update(StoragePaths{"secrets": "/etc/shadow"})
	assert.ErrorIs(t, err, ErrInvalidStoragePath)

	err = svc.Update(StoragePaths{"recordings": "relative/path"})
	assert.ErrorIs(t, err, ErrInvalidStoragePath)

	err = svc.Update(StoragePaths{})
	assert.ErrorIs(t, err, ErrInvalidStoragePath)

	// rejected updates leave the current configuration intact
	assert.Equal(t, "/var/lib/flexpbx/recordings", svc.Get()["recordings"])
}

func TestStoragePathService_ExternalChangeReload(t *testing.T) {
	svc, filePath := newStoragePathService(t)

	// simulate an edit by another process: atomic tmp + rename
	data, err := json.Marshal(StoragePaths{"voicemail": "/srv/voicemail"})
	require.NoError(t, err)
	tmpPath := filePath + ".external"
	require.NoError(t, os.WriteFile(tmpPath, data, 0o600))
	require.NoError(t, os.Rename(tmpPath, filePath))

	require.Eventually(t, func() bool {
		return svc.Get()["voicemail"] == "/srv/voicemail"
	}, 3*time.Second, 50*time.Millisecond)
}

func TestStoragePathService_LoadsExistingFile(t *testing.T) {
	dir := t.TempDir()
	filePath := filepath.Join(dir, "storage-paths.json")

	data, err := json.Marshal(StoragePaths{"moh": "/srv/moh"})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filePath, data, 0o600))

	svc, err := NewStoragePathService(filePath, zap.NewNop())
	require.NoError(t, err)
	defer svc.Close()

	assert.Equal(t, "/srv/moh", svc.Get()["moh"])
}
