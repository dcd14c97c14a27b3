package engine

import (
	"context"
	"errors"
	"sync"

	"github.com/tonhe/hometray/internal/hub"
	"github.com/tonhe/hometray/internal/icons"
	"github.com/tonhe/hometray/internal/rgb"
)

type fakeHub struct {
	mu      sync.Mutex
	states  map[string]hub.EntityState
	errs    map[string]error
	gets    map[string]int
	toggles []string
	colors  map[string]rgb.Color
}

func newFakeHub() *fakeHub {
	return &fakeHub{
		states: make(map[string]hub.EntityState),
		errs:   make(map[string]error),
		gets:   make(map[string]int),
		colors: make(map[string]rgb.Color),
	}
}

func (h *fakeHub) set(id, state string, color []float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.states[id] = hub.EntityState{
		EntityID:   id,
		State:      state,
		Attributes: hub.Attributes{Icon: "bulb", RGBColor: color},
	}
}

func (h *fakeHub) fail(id string, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errs[id] = err
}

func (h *fakeHub) getCount(id string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.gets[id]
}

func (h *fakeHub) GetState(ctx context.Context, id string) (hub.EntityState, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.gets[id]++
	if err := h.errs[id]; err != nil {
		return hub.EntityState{}, err
	}
	st, ok := h.states[id]
	if !ok {
		return hub.EntityState{}, hub.ErrEntityNotFound
	}
	return st, nil
}

func (h *fakeHub) Toggle(ctx context.Context, id string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.toggles = append(h.toggles, id)
	st := h.states[id]
	if st.State == "on" {
		st.State = "off"
	} else {
		st.State = "on"
	}
	h.states[id] = st
	return nil
}

func (h *fakeHub) TurnOnColor(ctx context.Context, id string, c rgb.Color) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.colors[id] = c
	st := h.states[id]
	st.State = "on"
	st.Attributes.RGBColor = []float64{float64(c[0]), float64(c[1]), float64(c[2])}
	h.states[id] = st
	return nil
}

// fakeIcons renders nothing; it echoes the triple back as an Icon.
type fakeIcons struct {
	mu      sync.Mutex
	missing bool
	calls   []icons.CacheKey
}

func (f *fakeIcons) Get(iconID, state string, c rgb.Color) (*icons.Icon, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := icons.CacheKey{IconID: iconID, State: state, Color: c}
	f.calls = append(f.calls, key)
	if f.missing {
		return nil, icons.ErrAssetMissing
	}
	return &icons.Icon{Key: key, Path: iconID + "-" + state + ".svg", Data: []byte(key.String())}, nil
}

type recordingDisplay struct {
	mu      sync.Mutex
	updates []Update
}

func (d *recordingDisplay) Show(u Update) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.updates = append(d.updates, u)
}

func (d *recordingDisplay) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.updates)
}

func (d *recordingDisplay) last() Update {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.updates[len(d.updates)-1]
}

var errHubDown = errors.New("connection refused")
