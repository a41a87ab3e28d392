package xobjconf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchReloadsOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "simobj.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cache:\n  prefix: /a\n"), 0o644))

	cfg, err := New(path)
	require.NoError(t, err)

	reloaded := make(chan error, 4)
	w, err := Watch(cfg, func(_ Config, err error) {
		reloaded <- err
	}, WithDebounce(10*time.Millisecond))
	require.NoError(t, err)
	defer func() { _ = w.Stop() }()

	w.StartAsync()

	// 给 watcher 一点建立监视的时间
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("cache:\n  prefix: /b\n"), 0o644))

	select {
	case err := <-reloaded:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for reload callback")
	}
	assert.Equal(t, "/b", cfg.Spec().Cache.Prefix)
}

func TestWatchReportsInvalidReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "simobj.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cache:\n  prefix: /a\n"), 0o644))

	cfg, err := New(path)
	require.NoError(t, err)

	reloaded := make(chan error, 4)
	w, err := Watch(cfg, func(_ Config, err error) {
		reloaded <- err
	}, WithDebounce(10*time.Millisecond))
	require.NoError(t, err)
	defer func() { _ = w.Stop() }()

	w.StartAsync()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("masks:\n  bindings:\n    g: {}\n"), 0o644))

	select {
	case err := <-reloaded:
		require.ErrorIs(t, err, ErrInvalidSpec)
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for reload callback")
	}
	assert.Equal(t, "/a", cfg.Spec().Cache.Prefix, "invalid reload keeps old spec")
}

func TestWatchBytesConfigRejected(t *testing.T) {
	cfg, err := NewFromBytes([]byte("cache: {}\n"), FormatYAML)
	require.NoError(t, err)

	_, err = Watch(cfg, nil)
	assert.Error(t, err)
}

func TestWatcherStopIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "simobj.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cache: {}\n"), 0o644))

	cfg, err := New(path)
	require.NoError(t, err)

	w, err := Watch(cfg, nil)
	require.NoError(t, err)

	w.StartAsync()
	require.NoError(t, w.Stop())
	assert.NoError(t, w.Stop(), "second stop is a no-op")
}
