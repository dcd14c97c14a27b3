// Package tray puts one entity's icon in the system notification area and
// runs the per-entity child processes when several entities are shown.
package tray

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/tonhe/hometray/internal/engine"
	"github.com/tonhe/hometray/internal/rgb"
)

// actionTimeout bounds one menu action, hub call and refresh included.
const actionTimeout = 15 * time.Second

// Controller is what the menu drives. *engine.Poller implements it.
type Controller interface {
	Toggle(ctx context.Context) error
	SetColor(ctx context.Context, c rgb.Color) error
	Refresh(ctx context.Context) error
}

// surface is the part of the tray toolkit an Item draws on.
type surface interface {
	SetIcon(data []byte)
	SetTooltip(text string)
	SetColorMenuVisible(visible bool)
}

// ItemConfig describes one tray icon.
type ItemConfig struct {
	EntityID string
	Palette  []rgb.Color
	Logger   zerolog.Logger

	// OpenConfig is called from the Open Config menu entry.
	OpenConfig func() error
}

// Item owns one tray icon. It implements engine.Display; updates that arrive
// before the tray is ready are held and applied once it is.
type Item struct {
	cfg  ItemConfig
	log  zerolog.Logger
	ctrl Controller

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	surface surface
	pending *engine.Update
	closed  bool
}

// NewItem creates an Item. Bind a Controller before the menu is used.
func NewItem(cfg ItemConfig) *Item {
	ctx, cancel := context.WithCancel(context.Background())
	return &Item{
		cfg:    cfg,
		log:    cfg.Logger.With().Str("entity", cfg.EntityID).Logger(),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Bind sets the controller the menu actions call.
func (it *Item) Bind(ctrl Controller) {
	it.mu.Lock()
	defer it.mu.Unlock()
	it.ctrl = ctrl
}

// Show implements engine.Display. It does nothing after Close.
func (it *Item) Show(u engine.Update) {
	it.mu.Lock()
	defer it.mu.Unlock()
	if it.closed {
		return
	}
	if it.surface == nil {
		it.pending = &u
		return
	}
	it.apply(u)
}

func (it *Item) apply(u engine.Update) {
	if u.Icon != nil {
		it.surface.SetIcon(u.Icon.Data)
	}
	it.surface.SetTooltip(u.State.Tooltip)
	it.surface.SetColorMenuVisible(u.State.NativeColor && len(it.cfg.Palette) > 0)
}

// attach connects the Item to a ready surface and flushes any held update.
func (it *Item) attach(s surface) {
	it.mu.Lock()
	defer it.mu.Unlock()
	if it.closed {
		return
	}
	it.surface = s
	if it.pending != nil {
		it.apply(*it.pending)
		it.pending = nil
	}
}

// dispatch runs fn on its own goroutine so toolkit callbacks never wait on
// the hub.
func (it *Item) dispatch(action string, fn func(ctx context.Context, c Controller) error) {
	it.mu.Lock()
	defer it.mu.Unlock()
	if it.closed {
		return
	}
	ctrl := it.ctrl
	if ctrl == nil {
		it.log.Warn().Str("action", action).Msg("menu used before the entity was bound")
		return
	}

	// Add under mu so Close never waits on a group that is still growing.
	it.wg.Add(1)
	go func() {
		defer it.wg.Done()
		ctx, cancel := context.WithTimeout(it.ctx, actionTimeout)
		defer cancel()
		if err := fn(ctx, ctrl); err != nil {
			it.log.Warn().Err(err).Str("action", action).Msg("menu action failed")
			return
		}
		it.log.Debug().Str("action", action).Msg("menu action done")
	}()
}

func (it *Item) toggle() {
	it.dispatch("toggle", func(ctx context.Context, c Controller) error { return c.Toggle(ctx) })
}

func (it *Item) refresh() {
	it.dispatch("refresh", func(ctx context.Context, c Controller) error { return c.Refresh(ctx) })
}

func (it *Item) setColor(col rgb.Color) {
	it.dispatch("set_color", func(ctx context.Context, c Controller) error { return c.SetColor(ctx, col) })
}

func (it *Item) openConfig() {
	if it.cfg.OpenConfig == nil {
		return
	}
	go func() {
		if err := it.cfg.OpenConfig(); err != nil {
			it.log.Warn().Err(err).Msg("open config failed")
		}
	}()
}

// Close detaches the surface, cancels in-flight menu actions and waits for
// them. Show and menu actions are no-ops afterwards.
func (it *Item) Close() {
	it.mu.Lock()
	it.closed = true
	it.surface = nil
	it.pending = nil
	it.cancel()
	it.mu.Unlock()
	it.wg.Wait()
}
