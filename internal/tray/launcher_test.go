package tray

import (
	"context"
	"os"
	"os/exec"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestHelperProcess is the child body; the entity id picks its behavior.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("HOMETRAY_HELPER_PROCESS") != "1" {
		return
	}
	mode := os.Args[len(os.Args)-1]
	switch {
	case strings.HasPrefix(mode, "quit"):
		time.Sleep(50 * time.Millisecond)
		os.Exit(ExitQuit)
	case strings.HasPrefix(mode, "config"):
		os.Exit(ExitConfig)
	case strings.HasPrefix(mode, "crash"):
		os.Exit(1)
	default:
		time.Sleep(30 * time.Second)
		os.Exit(ExitQuit)
	}
}

type startCounter struct {
	mu     sync.Mutex
	starts map[string]int
}

func (c *startCounter) command(ctx context.Context, entityID string) *exec.Cmd {
	c.mu.Lock()
	if c.starts == nil {
		c.starts = make(map[string]int)
	}
	c.starts[entityID]++
	c.mu.Unlock()

	cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess", "--", entityID)
	cmd.Env = append(os.Environ(), "HOMETRAY_HELPER_PROCESS=1")
	return cmd
}

func (c *startCounter) count(id string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.starts[id]
}

func runLauncher(t *testing.T, ctx context.Context, entities []string, c *startCounter) error {
	t.Helper()
	l := NewLauncher(LauncherConfig{
		Entities:    entities,
		Command:     c.command,
		Logger:      zerolog.Nop(),
		MaxRestarts: 2,
		Backoff:     time.Millisecond,
	})
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()
	select {
	case err := <-done:
		return err
	case <-time.After(20 * time.Second):
		t.Fatal("launcher did not return")
		return nil
	}
}

func TestLauncherQuitStopsSiblings(t *testing.T) {
	c := &startCounter{}
	start := time.Now()
	err := runLauncher(t, context.Background(), []string{"sleep.a", "quit.b"}, c)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 15*time.Second, "sleeping sibling should have been stopped")
	assert.Equal(t, 1, c.count("sleep.a"))
}

func TestLauncherConfigErrorIsNotRestarted(t *testing.T) {
	c := &startCounter{}
	err := runLauncher(t, context.Background(), []string{"config.a"}, c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config.a")
	assert.Equal(t, 1, c.count("config.a"))
}

func TestLauncherRestartsCrashedChild(t *testing.T) {
	c := &startCounter{}
	err := runLauncher(t, context.Background(), []string{"crash.a"}, c)
	require.Error(t, err)
	assert.Equal(t, 3, c.count("crash.a"))
}

func TestLauncherStopsOnCancel(t *testing.T) {
	c := &startCounter{}
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(200*time.Millisecond, cancel)

	err := runLauncher(t, ctx, []string{"sleep.a", "sleep.b"}, c)
	assert.NoError(t, err)
}

func TestLauncherNeedsEntities(t *testing.T) {
	l := NewLauncher(LauncherConfig{Logger: zerolog.Nop()})
	assert.Error(t, l.Run(context.Background()))
}
