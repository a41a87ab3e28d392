package cachefile

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireReadRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.gob.lock")
	info := NewLockInfo()

	require.NoError(t, AcquireLock(path, info, 0o644))

	got, err := ReadLock(path)
	require.NoError(t, err)
	assert.Equal(t, info.Host, got.Host)
	assert.Equal(t, info.PID, got.PID)
	assert.Equal(t, info.SessionID, got.SessionID)
	assert.True(t, info.LockedAt.Equal(got.LockedAt))

	require.NoError(t, ReleaseLock(path))
	_, err = os.Stat(path)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestAcquireLockHeld(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.gob.lock")
	require.NoError(t, AcquireLock(path, NewLockInfo(), 0o644))

	err := AcquireLock(path, NewLockInfo(), 0o644)
	assert.ErrorIs(t, err, fs.ErrExist)
}

func TestReleaseLockMissing(t *testing.T) {
	err := ReleaseLock(filepath.Join(t.TempDir(), "absent.lock"))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestReadLockMissing(t *testing.T) {
	_, err := ReadLock(filepath.Join(t.TempDir(), "absent.lock"))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestDecodeLockInfoGarbage(t *testing.T) {
	_, err := DecodeLockInfo([]byte("{half json"))
	assert.Error(t, err)
}

func TestWriteAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "c.gob")

	require.NoError(t, WriteAtomic(path, []byte("first"), 0o644))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))

	require.NoError(t, WriteAtomic(path, []byte("second"), 0o644))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}
