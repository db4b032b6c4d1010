package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestWatchDeliversReloadedConfig(t *testing.T) {
	for _, key := range []string{"GEMINI_API_KEY", "VISION_API_KEY", "FIRESTORE_PROJECT_ID", "FIRESTORE_API_KEY", "ENERGIA_BACKEND_URL", "ENERGIA_DATA_DIR", "ENERGIA_PORT", "ENERGIA_DEBUG"} {
		t.Setenv(key, "")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	initial := DefaultConfig()
	initial.DataDir = dir
	require.NoError(t, initial.Save(path))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *Config, 1)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(cfg *Config) {
			select {
			case reloaded <- cfg:
			default:
			}
		})
	}()

	// Give the watcher a moment to register before the write.
	time.Sleep(100 * time.Millisecond)

	updated := DefaultConfig()
	updated.DataDir = dir
	updated.Server.Port = 9999
	updated.Narrative.Model = "gemini-2.5-pro"
	require.NoError(t, updated.Save(path))

	select {
	case cfg := <-reloaded:
		if diff := cmp.Diff(updated, cfg); diff != "" {
			t.Fatalf("reloaded config mismatch (-want +got):\n%s", diff)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for config reload")
	}

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}

func TestWatchKeepsPreviousOnParseError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	initial := DefaultConfig()
	initial.DataDir = dir
	require.NoError(t, initial.Save(path))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *Config, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(cfg *Config) { reloaded <- cfg })
	}()
	time.Sleep(100 * time.Millisecond)

	// A malformed file must not reach onChange.
	require.NoError(t, writeFile(path, "{{not yaml"))

	select {
	case <-reloaded:
		t.Fatal("malformed config should not be delivered")
	case <-time.After(700 * time.Millisecond):
	}

	cancel()
	<-done
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0600)
}
