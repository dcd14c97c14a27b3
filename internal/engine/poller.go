package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/tonhe/hometray/internal/icons"
	"github.com/tonhe/hometray/internal/metrics"
	"github.com/tonhe/hometray/internal/rgb"
)

const (
	// DefaultInterval is the refresh period when none is configured.
	DefaultInterval = 5 * time.Second

	// ToggleSettleDelay is how long Toggle waits before re-reading state so
	// the hub has applied the change.
	ToggleSettleDelay = 100 * time.Millisecond

	historySize = 60
)

// PollerConfig wires a Poller to its collaborators.
type PollerConfig struct {
	EntityID string
	Interval time.Duration
	Scheme   ColorScheme
	Hub      Hub
	Icons    IconSource
	Display  Display
	Logger   zerolog.Logger

	// SettleDelay overrides ToggleSettleDelay; zero keeps the default.
	SettleDelay time.Duration
}

// Poller keeps the displayed icon of a single entity up to date. Each
// poller owns its own ticker, so a slow or failing entity never delays
// another.
type Poller struct {
	entityID string
	interval time.Duration
	settle   time.Duration
	hub      Hub
	icons    IconSource
	display  Display
	log      zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	// refreshMu serializes fetches: the initial refresh, ticks and
	// post-command refreshes never overlap for one entity.
	refreshMu sync.Mutex

	mu          sync.RWMutex
	scheme      ColorScheme
	current     DisplayState
	hasCurrent  bool
	iconPath    string
	lastErr     error
	pollCount   int
	errorCount  int
	lastPoll    time.Time
	history     *History
	subscribers []chan EngineEvent
	handle      *Handle
	stopped     bool
}

// NewPoller creates a Poller. It does nothing until Refresh or Start.
func NewPoller(cfg PollerConfig) *Poller {
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	settle := cfg.SettleDelay
	if settle <= 0 {
		settle = ToggleSettleDelay
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Poller{
		entityID: cfg.EntityID,
		interval: interval,
		settle:   settle,
		hub:      cfg.Hub,
		icons:    cfg.Icons,
		display:  cfg.Display,
		log:      cfg.Logger.With().Str("entity", cfg.EntityID).Logger(),
		ctx:      ctx,
		cancel:   cancel,
		scheme:   cfg.Scheme,
		history:  NewHistory(historySize),
	}
}

// EntityID returns the entity this poller watches.
func (p *Poller) EntityID() string {
	return p.entityID
}

// ErrStopped is returned by Refresh once the poller has been stopped.
var ErrStopped = errors.New("poller stopped")

// Start schedules a refresh every interval. The first tick fires one
// interval from now; call Refresh beforehand to show an icon immediately.
func (p *Poller) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.handle != nil || p.stopped {
		return
	}
	p.handle = Every(p.interval, p.tick)
}

// Stop cancels the schedule and any in-flight hub request. Safe to call
// more than once, and before Start.
func (p *Poller) Stop() {
	p.mu.Lock()
	p.stopped = true
	h := p.handle
	p.mu.Unlock()

	h.Cancel()
	p.cancel()
}

// Wait blocks until the tick goroutine has exited after Stop and any
// refresh already in progress has finished. Once it returns the Display
// receives nothing more.
func (p *Poller) Wait() {
	p.mu.RLock()
	h := p.handle
	p.mu.RUnlock()
	h.Wait()

	p.refreshMu.Lock()
	p.refreshMu.Unlock()
}

func (p *Poller) tick() {
	// Errors are logged and counted inside Refresh; the previous icon stays.
	_ = p.Refresh(p.ctx)
}

// Refresh fetches the entity, derives its display state, renders the icon
// and hands it to the Display. On failure the previous icon is left alone.
func (p *Poller) Refresh(ctx context.Context) error {
	p.refreshMu.Lock()
	defer p.refreshMu.Unlock()
	if p.ctx.Err() != nil {
		return ErrStopped
	}

	ctx, cancel := mergeCancel(ctx, p.ctx)
	defer cancel()

	st, err := p.hub.GetState(ctx, p.entityID)
	if err != nil {
		return p.fail("fetch_error", err)
	}

	p.mu.RLock()
	scheme := p.scheme
	p.mu.RUnlock()

	ds, err := DeriveDisplayState(p.entityID, st, scheme)
	if err != nil {
		return p.fail("state_error", err)
	}

	icon, err := p.icons.Get(ds.IconID, ds.StateLabel, ds.Color)
	if err != nil {
		return p.fail("render_error", err)
	}

	if p.display != nil {
		p.display.Show(Update{EntityID: p.entityID, State: ds, Icon: icon})
	}

	now := time.Now()
	p.mu.Lock()
	p.current = ds
	p.hasCurrent = true
	p.iconPath = icon.Path
	p.lastErr = nil
	p.pollCount++
	p.lastPoll = now
	p.history.Add(StateSample{Timestamp: now, State: ds.StateLabel, Color: ds.Color})
	p.notifyLocked()
	p.mu.Unlock()

	metrics.Polls.WithLabelValues("ok").Inc()
	p.log.Debug().
		Str("state", ds.StateLabel).
		Str("icon", ds.IconID).
		Str("color", ds.Color.Hex()).
		Msg("refreshed")
	return nil
}

func (p *Poller) fail(result string, err error) error {
	if errors.Is(err, context.Canceled) && p.ctx.Err() != nil {
		// Stopped mid-request; nothing to report.
		return err
	}

	now := time.Now()
	p.mu.Lock()
	p.lastErr = err
	p.pollCount++
	p.errorCount++
	p.lastPoll = now
	p.history.Add(StateSample{Timestamp: now, State: "error", Err: true})
	p.notifyLocked()
	p.mu.Unlock()

	metrics.Polls.WithLabelValues(result).Inc()

	ev := p.log.Warn()
	if errors.Is(err, icons.ErrAssetMissing) {
		ev = p.log.Error()
	}
	ev.Err(err).Str("result", result).Msg("refresh failed")
	return err
}

// Toggle shows the current state, flips the entity, waits briefly for the
// hub to settle and shows the new state. A failed first read does not stop
// the toggle.
func (p *Poller) Toggle(ctx context.Context) error {
	if err := p.Refresh(ctx); errors.Is(err, ErrStopped) {
		return err
	}
	if err := p.hub.Toggle(ctx, p.entityID); err != nil {
		p.log.Warn().Err(err).Msg("toggle failed")
		return err
	}
	p.log.Info().Msg("toggled")

	select {
	case <-time.After(p.settle):
	case <-ctx.Done():
		return ctx.Err()
	}
	return p.Refresh(ctx)
}

// SetColor turns the entity on with c and shows the result.
func (p *Poller) SetColor(ctx context.Context, c rgb.Color) error {
	if err := p.hub.TurnOnColor(ctx, p.entityID, c); err != nil {
		p.log.Warn().Err(err).Str("color", c.Hex()).Msg("set color failed")
		return err
	}
	p.log.Info().Str("color", c.Hex()).Msg("color set")

	select {
	case <-time.After(p.settle):
	case <-ctx.Done():
		return ctx.Err()
	}
	return p.Refresh(ctx)
}

// SetScheme replaces the fallback colors used from the next refresh on.
func (p *Poller) SetScheme(s ColorScheme) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scheme = s
}

// Snapshot returns a point-in-time copy of the poller's state.
func (p *Poller) Snapshot() EntitySnapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snapshotLocked()
}

func (p *Poller) snapshotLocked() EntitySnapshot {
	changed, _ := p.history.LastChange()
	return EntitySnapshot{
		EntityID:   p.entityID,
		Display:    p.current,
		HasDisplay: p.hasCurrent,
		IconPath:   p.iconPath,
		LastPoll:   p.lastPoll,
		PollCount:  p.pollCount,
		ErrorCount: p.errorCount,
		LastError:  p.lastErr,
		History:    p.history.Samples(),
		Since:      changed,
	}
}

// Subscribe returns a channel that receives an event after each refresh.
func (p *Poller) Subscribe() <-chan EngineEvent {
	ch := make(chan EngineEvent, 1)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subscribers = append(p.subscribers, ch)
	return ch
}

// notifyLocked sends the current snapshot to all subscribers without
// blocking. The caller must hold the write lock.
func (p *Poller) notifyLocked() {
	event := EngineEvent{EntityID: p.entityID, Snapshot: p.snapshotLocked()}
	for _, ch := range p.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

// Info returns summary information about this poller.
func (p *Poller) Info() EngineInfo {
	p.mu.RLock()
	defer p.mu.RUnlock()
	state := EngineRunning
	switch {
	case p.stopped || p.handle == nil:
		state = EngineStopped
	case p.lastErr != nil:
		state = EngineError
	}
	return EngineInfo{
		EntityID:   p.entityID,
		State:      state,
		LastPoll:   p.lastPoll,
		PollCount:  p.pollCount,
		ErrorCount: p.errorCount,
	}
}

// mergeCancel returns a context derived from ctx that is also cancelled when
// stop is done.
func mergeCancel(ctx, stop context.Context) (context.Context, context.CancelFunc) {
	merged, cancel := context.WithCancel(ctx)
	unregister := context.AfterFunc(stop, cancel)
	return merged, func() {
		unregister()
		cancel()
	}
}
