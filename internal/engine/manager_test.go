package engine

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tonhe/hometray/internal/hub"
	"github.com/tonhe/hometray/internal/icons"
)

type displays struct {
	byID map[string]*recordingDisplay
}

func newTestManager(h *fakeHub, ic IconSource, interval time.Duration) (*Manager, *displays) {
	ds := &displays{byID: make(map[string]*recordingDisplay)}
	for _, id := range []string{"light.a", "light.b"} {
		ds.byID[id] = &recordingDisplay{}
	}
	m := NewManager(ManagerConfig{
		Interval:    interval,
		Scheme:      DefaultScheme,
		Hub:         h,
		Icons:       ic,
		Logger:      zerolog.Nop(),
		SettleDelay: time.Millisecond,
		NewDisplay: func(id string) Display {
			return ds.byID[id]
		},
	})
	return m, ds
}

func TestManagerStartShowsIconBeforeFirstTick(t *testing.T) {
	h := newFakeHub()
	h.set("light.a", "on", nil)
	m, ds := newTestManager(h, &fakeIcons{}, time.Hour)
	defer m.StopAll()

	require.NoError(t, m.Start(context.Background(), "light.a"))
	assert.Equal(t, 1, ds.byID["light.a"].count())
	assert.Equal(t, []string{"light.a"}, m.List())
}

func TestManagerStartDuplicate(t *testing.T) {
	h := newFakeHub()
	h.set("light.a", "on", nil)
	m, _ := newTestManager(h, &fakeIcons{}, time.Hour)
	defer m.StopAll()

	require.NoError(t, m.Start(context.Background(), "light.a"))
	assert.Error(t, m.Start(context.Background(), "light.a"))
}

func TestManagerStartMissingAssetFails(t *testing.T) {
	h := newFakeHub()
	h.set("light.a", "on", nil)
	m, _ := newTestManager(h, &fakeIcons{missing: true}, time.Hour)

	err := m.Start(context.Background(), "light.a")
	require.ErrorIs(t, err, icons.ErrAssetMissing)
	assert.Empty(t, m.List())
}

func TestManagerStartUnauthorizedFails(t *testing.T) {
	h := newFakeHub()
	h.fail("light.a", hub.ErrUnauthorized)
	m, _ := newTestManager(h, &fakeIcons{}, time.Hour)

	require.ErrorIs(t, m.Start(context.Background(), "light.a"), hub.ErrUnauthorized)
	assert.Empty(t, m.List())
}

func TestManagerStartTransientFailureStillSchedules(t *testing.T) {
	h := newFakeHub()
	h.fail("light.a", errHubDown)
	m, _ := newTestManager(h, &fakeIcons{}, 5*time.Millisecond)
	defer m.StopAll()

	require.NoError(t, m.Start(context.Background(), "light.a"))
	assert.Eventually(t, func() bool { return h.getCount("light.a") >= 3 }, time.Second, time.Millisecond)
}

func TestManagerIsolatesFailingEntity(t *testing.T) {
	h := newFakeHub()
	h.set("light.a", "on", nil)
	h.set("light.b", "on", nil)
	m, ds := newTestManager(h, &fakeIcons{}, 5*time.Millisecond)
	defer m.StopAll()

	require.NoError(t, m.Start(context.Background(), "light.a"))
	require.NoError(t, m.Start(context.Background(), "light.b"))
	h.fail("light.a", errHubDown)

	before := ds.byID["light.b"].count()
	assert.Eventually(t, func() bool {
		snap, err := m.Snapshot("light.a")
		return err == nil && snap.ErrorCount >= 3
	}, time.Second, time.Millisecond)
	assert.Greater(t, ds.byID["light.b"].count(), before)

	snap, err := m.Snapshot("light.b")
	require.NoError(t, err)
	assert.Equal(t, 0, snap.ErrorCount)

	infos := m.ListEngines()
	require.Len(t, infos, 2)
	assert.Equal(t, "light.a", infos[0].EntityID)
	assert.Equal(t, EngineError, infos[0].State)
	assert.Equal(t, EngineRunning, infos[1].State)
}

func TestManagerStopAllHaltsEveryPoller(t *testing.T) {
	h := newFakeHub()
	h.set("light.a", "on", nil)
	h.set("light.b", "off", nil)
	m, _ := newTestManager(h, &fakeIcons{}, 5*time.Millisecond)

	require.NoError(t, m.Start(context.Background(), "light.a"))
	require.NoError(t, m.Start(context.Background(), "light.b"))
	assert.Eventually(t, func() bool { return h.getCount("light.b") >= 2 }, time.Second, time.Millisecond)

	m.StopAll()
	a, b := h.getCount("light.a"), h.getCount("light.b")
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, a, h.getCount("light.a"))
	assert.Equal(t, b, h.getCount("light.b"))
	assert.Empty(t, m.List())

	assert.NotPanics(t, m.StopAll)
}

func TestManagerStopUnknown(t *testing.T) {
	m, _ := newTestManager(newFakeHub(), &fakeIcons{}, time.Hour)
	assert.Error(t, m.Stop("light.nope"))
	_, err := m.Snapshot("light.nope")
	assert.Error(t, err)
	_, err = m.Subscribe("light.nope")
	assert.Error(t, err)
}

func TestManagerRefreshAll(t *testing.T) {
	h := newFakeHub()
	h.set("light.a", "on", nil)
	h.set("light.b", "off", nil)
	m, ds := newTestManager(h, &fakeIcons{}, time.Hour)
	defer m.StopAll()

	require.NoError(t, m.Start(context.Background(), "light.a"))
	require.NoError(t, m.Start(context.Background(), "light.b"))
	h.fail("light.b", errHubDown)

	err := m.RefreshAll(context.Background())
	require.ErrorIs(t, err, errHubDown)
	assert.Equal(t, 2, ds.byID["light.a"].count())
	assert.Equal(t, 1, ds.byID["light.b"].count())
}

func TestStopAllSilencesDisplays(t *testing.T) {
	h := newFakeHub()
	h.set("light.a", "on", nil)
	h.set("light.b", "off", nil)
	m, ds := newTestManager(h, &fakeIcons{}, 2*time.Millisecond)

	require.NoError(t, m.Start(context.Background(), "light.a"))
	require.NoError(t, m.Start(context.Background(), "light.b"))
	require.Eventually(t, func() bool {
		return ds.byID["light.a"].count() >= 3 && ds.byID["light.b"].count() >= 3
	}, time.Second, time.Millisecond)

	m.StopAll()
	a, b := ds.byID["light.a"].count(), ds.byID["light.b"].count()
	time.Sleep(30 * time.Millisecond)

	assert.Equal(t, a, ds.byID["light.a"].count())
	assert.Equal(t, b, ds.byID["light.b"].count())
	assert.Empty(t, m.List())
	m.StopAll()
}
