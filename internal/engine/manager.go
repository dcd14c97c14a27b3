package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/tonhe/hometray/internal/hub"
	"github.com/tonhe/hometray/internal/icons"
)

// ManagerConfig holds what every Poller created by a Manager shares.
type ManagerConfig struct {
	Interval    time.Duration
	Scheme      ColorScheme
	Hub         Hub
	Icons       IconSource
	Logger      zerolog.Logger
	SettleDelay time.Duration

	// NewDisplay returns the Display for one entity. Nil means no display.
	NewDisplay func(entityID string) Display
}

// Manager coordinates multiple Pollers, one per entity.
type Manager struct {
	cfg ManagerConfig

	mu      sync.RWMutex
	engines map[string]*Poller
}

// NewManager creates an empty Manager.
func NewManager(cfg ManagerConfig) *Manager {
	return &Manager{
		cfg:     cfg,
		engines: make(map[string]*Poller),
	}
}

// Start creates a Poller for entityID, shows its icon once and schedules
// further refreshes. A missing icon asset or a rejected token aborts the
// start; any other initial failure is logged and retried on the schedule.
func (m *Manager) Start(ctx context.Context, entityID string) error {
	m.mu.Lock()
	if _, exists := m.engines[entityID]; exists {
		m.mu.Unlock()
		return fmt.Errorf("engine %q already running", entityID)
	}

	var display Display
	if m.cfg.NewDisplay != nil {
		display = m.cfg.NewDisplay(entityID)
	}
	p := NewPoller(PollerConfig{
		EntityID:    entityID,
		Interval:    m.cfg.Interval,
		Scheme:      m.cfg.Scheme,
		Hub:         m.cfg.Hub,
		Icons:       m.cfg.Icons,
		Display:     display,
		Logger:      m.cfg.Logger,
		SettleDelay: m.cfg.SettleDelay,
	})
	m.engines[entityID] = p
	m.mu.Unlock()

	if err := p.Refresh(ctx); err != nil {
		if errors.Is(err, icons.ErrAssetMissing) || !hub.IsTransient(err) {
			m.remove(entityID, p)
			return fmt.Errorf("start %s: %w", entityID, err)
		}
		m.cfg.Logger.Warn().Err(err).Str("entity", entityID).
			Msg("initial refresh failed, will retry")
	}

	p.Start()
	return nil
}

func (m *Manager) remove(entityID string, p *Poller) {
	p.Stop()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.engines[entityID] == p {
		delete(m.engines, entityID)
	}
}

// Stop halts the Poller for entityID and removes it.
func (m *Manager) Stop(entityID string) error {
	m.mu.Lock()
	p, ok := m.engines[entityID]
	if ok {
		delete(m.engines, entityID)
	}
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("engine %q not found", entityID)
	}
	p.Stop()
	p.Wait()
	return nil
}

// StopAll cancels every poller, then waits for their loops to exit.
func (m *Manager) StopAll() {
	m.mu.Lock()
	pollers := make([]*Poller, 0, len(m.engines))
	for id, p := range m.engines {
		pollers = append(pollers, p)
		delete(m.engines, id)
	}
	m.mu.Unlock()

	for _, p := range pollers {
		p.Stop()
	}
	for _, p := range pollers {
		p.Wait()
	}
}

// Get returns the Poller for entityID.
func (m *Manager) Get(entityID string) (*Poller, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.engines[entityID]
	return p, ok
}

// List returns the managed entity IDs in sorted order.
func (m *Manager) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.engines))
	for id := range m.engines {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Snapshot returns a point-in-time snapshot for entityID.
func (m *Manager) Snapshot(entityID string) (EntitySnapshot, error) {
	p, ok := m.Get(entityID)
	if !ok {
		return EntitySnapshot{}, fmt.Errorf("engine %q not found", entityID)
	}
	return p.Snapshot(), nil
}

// Subscribe returns a channel that receives events for entityID.
func (m *Manager) Subscribe(entityID string) (<-chan EngineEvent, error) {
	p, ok := m.Get(entityID)
	if !ok {
		return nil, fmt.Errorf("engine %q not found", entityID)
	}
	return p.Subscribe(), nil
}

// ListEngines returns summary info for all engines, sorted by entity.
func (m *Manager) ListEngines() []EngineInfo {
	m.mu.RLock()
	infos := make([]EngineInfo, 0, len(m.engines))
	for _, p := range m.engines {
		infos = append(infos, p.Info())
	}
	m.mu.RUnlock()

	sort.Slice(infos, func(i, j int) bool { return infos[i].EntityID < infos[j].EntityID })
	return infos
}

// SetScheme applies s to every running poller and to pollers started later.
func (m *Manager) SetScheme(s ColorScheme) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg.Scheme = s
	for _, p := range m.engines {
		p.SetScheme(s)
	}
}

// RefreshAll refreshes every poller concurrently and returns the joined
// errors.
func (m *Manager) RefreshAll(ctx context.Context) error {
	m.mu.RLock()
	pollers := make([]*Poller, 0, len(m.engines))
	for _, p := range m.engines {
		pollers = append(pollers, p)
	}
	m.mu.RUnlock()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, p := range pollers {
		wg.Add(1)
		go func(p *Poller) {
			defer wg.Done()
			if err := p.Refresh(ctx); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", p.EntityID(), err))
				mu.Unlock()
			}
		}(p)
	}
	wg.Wait()
	return errors.Join(errs...)
}
