package tray

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tonhe/hometray/internal/engine"
	"github.com/tonhe/hometray/internal/icons"
	"github.com/tonhe/hometray/internal/rgb"
)

type fakeSurface struct {
	mu        sync.Mutex
	icon      []byte
	tooltip   string
	colorMenu bool
	sets      int
}

func (s *fakeSurface) SetIcon(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.icon = data
	s.sets++
}

func (s *fakeSurface) SetTooltip(t string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tooltip = t
}

func (s *fakeSurface) SetColorMenuVisible(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.colorMenu = v
}

type fakeController struct {
	mu     sync.Mutex
	colors []rgb.Color
	err    error
	calls  chan string
}

func newFakeController() *fakeController {
	return &fakeController{calls: make(chan string, 8)}
}

func (c *fakeController) Toggle(ctx context.Context) error {
	c.calls <- "toggle"
	return c.err
}

func (c *fakeController) SetColor(ctx context.Context, col rgb.Color) error {
	c.mu.Lock()
	c.colors = append(c.colors, col)
	c.mu.Unlock()
	c.calls <- "color"
	return c.err
}

func (c *fakeController) Refresh(ctx context.Context) error {
	c.calls <- "refresh"
	return c.err
}

func update(native bool) engine.Update {
	return engine.Update{
		EntityID: "light.desk",
		State:    engine.DisplayState{Tooltip: "Desk", NativeColor: native},
		Icon:     &icons.Icon{Data: []byte("png")},
	}
}

func newTestItem() *Item {
	return NewItem(ItemConfig{
		EntityID: "light.desk",
		Palette:  []rgb.Color{{255, 0, 0}},
		Logger:   zerolog.Nop(),
	})
}

func TestItemHoldsUpdateUntilAttached(t *testing.T) {
	it := newTestItem()
	it.Show(update(false))

	s := &fakeSurface{}
	it.attach(s)
	assert.Equal(t, []byte("png"), s.icon)
	assert.Equal(t, "Desk", s.tooltip)

	it.Show(update(false))
	assert.Equal(t, 2, s.sets)
}

func TestItemColorMenuFollowsNativeColor(t *testing.T) {
	it := newTestItem()
	s := &fakeSurface{}
	it.attach(s)

	it.Show(update(true))
	assert.True(t, s.colorMenu)
	it.Show(update(false))
	assert.False(t, s.colorMenu)
}

func TestItemColorMenuNeedsPalette(t *testing.T) {
	it := NewItem(ItemConfig{EntityID: "light.desk", Logger: zerolog.Nop()})
	s := &fakeSurface{}
	it.attach(s)
	it.Show(update(true))
	assert.False(t, s.colorMenu)
}

func waitCall(t *testing.T, c *fakeController) string {
	t.Helper()
	select {
	case call := <-c.calls:
		return call
	case <-time.After(time.Second):
		t.Fatal("expected a controller call")
		return ""
	}
}

func TestItemDispatchesActions(t *testing.T) {
	it := newTestItem()
	c := newFakeController()
	it.Bind(c)
	defer it.Close()

	it.toggle()
	assert.Equal(t, "toggle", waitCall(t, c))
	it.refresh()
	assert.Equal(t, "refresh", waitCall(t, c))
	it.setColor(rgb.Color{1, 2, 3})
	assert.Equal(t, "color", waitCall(t, c))

	it.Close()
	assert.Equal(t, []rgb.Color{{1, 2, 3}}, c.colors)
}

func TestItemActionErrorIsContained(t *testing.T) {
	it := newTestItem()
	c := newFakeController()
	c.err = errors.New("hub down")
	it.Bind(c)

	it.toggle()
	assert.Equal(t, "toggle", waitCall(t, c))
	assert.NotPanics(t, it.Close)
}

func TestItemUnboundActionIsIgnored(t *testing.T) {
	it := newTestItem()
	assert.NotPanics(t, func() {
		it.toggle()
		it.Close()
	})
}

func TestItemIgnoresUpdatesAfterClose(t *testing.T) {
	it := newTestItem()
	s := &fakeSurface{}
	it.attach(s)
	it.Show(update(false))
	require.Equal(t, 1, s.sets)

	it.Close()
	it.Show(update(true))
	it.attach(&fakeSurface{})
	it.Show(update(false))

	assert.Equal(t, 1, s.sets)
	assert.False(t, s.colorMenu)
}

func TestItemActionsAfterCloseAreDropped(t *testing.T) {
	it := newTestItem()
	c := newFakeController()
	it.Bind(c)
	it.Close()

	it.toggle()
	it.refresh()
	it.setColor(rgb.Color{1, 2, 3})

	select {
	case call := <-c.calls:
		t.Fatalf("unexpected %s after close", call)
	case <-time.After(20 * time.Millisecond):
	}
}

type blockingController struct {
	fakeController
	started chan struct{}
}

func (c *blockingController) Toggle(ctx context.Context) error {
	close(c.started)
	<-ctx.Done()
	return ctx.Err()
}

func TestItemCloseWaitsForInflightAction(t *testing.T) {
	it := newTestItem()
	c := &blockingController{started: make(chan struct{})}
	it.Bind(c)

	it.toggle()
	<-c.started

	closed := make(chan struct{})
	go func() {
		it.Close()
		close(closed)
	}()
	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("Close did not cancel the running action")
	}
}

func TestItemOpenConfig(t *testing.T) {
	opened := make(chan struct{}, 1)
	it := NewItem(ItemConfig{
		EntityID:   "light.desk",
		Logger:     zerolog.Nop(),
		OpenConfig: func() error { opened <- struct{}{}; return nil },
	})
	it.openConfig()
	select {
	case <-opened:
	case <-time.After(time.Second):
		t.Fatal("OpenConfig was not called")
	}
	require.NotPanics(t, it.Close)
}
