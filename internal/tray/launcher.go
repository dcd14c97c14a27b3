package tray

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Child exit codes. Anything else is treated as a crash.
const (
	ExitQuit   = 0 // the user chose Quit
	ExitConfig = 2 // the child cannot start with the current config
)

const (
	defaultMaxRestarts = 3
	defaultBackoff     = time.Second
	stopGrace          = 3 * time.Second
)

// CommandFunc builds the command that shows one entity. The command must be
// created with exec.CommandContext.
type CommandFunc func(ctx context.Context, entityID string) *exec.Cmd

// SelfCommand re-executes the running binary as `item --entity ID`, adding
// env to the inherited environment and passing extra flags through.
func SelfCommand(env []string, extra ...string) (CommandFunc, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("locate executable: %w", err)
	}
	return func(ctx context.Context, entityID string) *exec.Cmd {
		args := append([]string{"item", "--entity", entityID}, extra...)
		cmd := exec.CommandContext(ctx, exe, args...)
		cmd.Env = append(os.Environ(), env...)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		return cmd
	}, nil
}

// LauncherConfig configures a Launcher.
type LauncherConfig struct {
	Entities    []string
	Command     CommandFunc
	Logger      zerolog.Logger
	MaxRestarts int
	Backoff     time.Duration
}

// Launcher runs one child process per entity, since a process can own only
// one tray icon. A child that quits normally shuts every sibling down; a
// crashed child is restarted a bounded number of times.
type Launcher struct {
	cfg LauncherConfig
	log zerolog.Logger
}

func NewLauncher(cfg LauncherConfig) *Launcher {
	if cfg.MaxRestarts <= 0 {
		cfg.MaxRestarts = defaultMaxRestarts
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = defaultBackoff
	}
	return &Launcher{cfg: cfg, log: cfg.Logger}
}

// Run starts every child and blocks until all of them have exited. It
// returns after ctx is cancelled or any child quits. Children that fail
// with ExitConfig are reported in the returned error.
func (l *Launcher) Run(ctx context.Context) error {
	if len(l.cfg.Entities) == 0 {
		return errors.New("no entities to show")
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, id := range l.cfg.Entities {
		wg.Add(1)
		go func() {
			defer wg.Done()
			quit, err := l.supervise(ctx, id)
			if err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", id, err))
				mu.Unlock()
			}
			if quit {
				l.log.Info().Str("entity", id).Msg("child quit, stopping all")
				cancel()
			}
		}()
	}
	wg.Wait()
	return errors.Join(errs...)
}

// supervise runs one entity's child until it quits, fails permanently or
// ctx ends. quit reports a normal exit requested by the user.
func (l *Launcher) supervise(ctx context.Context, entityID string) (quit bool, err error) {
	log := l.log.With().Str("entity", entityID).Logger()
	backoff := l.cfg.Backoff

	for attempt := 0; ; attempt++ {
		cmd := l.cfg.Command(ctx, entityID)
		cmd.Cancel = func() error { return interrupt(cmd.Process) }
		cmd.WaitDelay = stopGrace

		log.Info().Int("attempt", attempt).Msg("starting child")
		runErr := cmd.Run()
		if ctx.Err() != nil {
			return false, nil
		}

		code := exitCode(runErr)
		switch {
		case runErr == nil:
			return true, nil
		case code == ExitConfig:
			log.Error().Err(runErr).Msg("child cannot start")
			return false, fmt.Errorf("startup failed: %w", runErr)
		case attempt >= l.cfg.MaxRestarts:
			log.Error().Err(runErr).Int("restarts", attempt).Msg("child keeps failing, giving up")
			return false, fmt.Errorf("gave up after %d restarts: %w", attempt, runErr)
		}

		log.Warn().Err(runErr).Int("exit_code", code).Dur("backoff", backoff).Msg("child exited, restarting")
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return false, nil
		}
		backoff *= 2
	}
}

func exitCode(err error) int {
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return ee.ExitCode()
	}
	if err != nil {
		return -1
	}
	return 0
}
