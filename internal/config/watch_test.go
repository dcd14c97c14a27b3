package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestWatchFiresOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("update_interval = 5\n"), 0600); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fired := make(chan struct{}, 8)
	if err := Watch(ctx, path, zerolog.Nop(), func() { fired <- struct{}{} }); err != nil {
		t.Fatalf("Watch() error: %v", err)
	}

	// Unrelated files in the same directory are ignored.
	if err := os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("update_interval = 7\n"), 0600); err != nil {
		t.Fatal(err)
	}

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("expected a change notification")
	}
}

func TestWatchMissingDir(t *testing.T) {
	err := Watch(context.Background(), "/nonexistent/dir/config.toml", zerolog.Nop(), func() {})
	if err == nil {
		t.Error("expected an error for a missing directory")
	}
}
