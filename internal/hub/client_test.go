package hub

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tonhe/hometray/internal/rgb"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewClient(srv.URL, "secret")
	require.NoError(t, err)
	return c
}

func TestNewClientNormalizesBase(t *testing.T) {
	c, err := NewClient("http://hub.local:8123", "x")
	require.NoError(t, err)
	assert.Equal(t, "http://hub.local:8123/api", c.BaseURL())

	c, err = NewClient("http://hub.local:8123/api/", "x")
	require.NoError(t, err)
	assert.Equal(t, "http://hub.local:8123/api", c.BaseURL())

	_, err = NewClient("hub.local:8123", "x")
	assert.Error(t, err)
}

func TestGetState(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/states/light.desk", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.Write([]byte(`{"entity_id":"light.desk","state":"on","attributes":{"friendly_name":"Desk","icon":"mdi:desk-lamp","rgb_color":[10,20,30]}}`))
	})

	st, err := c.GetState(context.Background(), "light.desk")
	require.NoError(t, err)
	assert.Equal(t, "on", st.State)
	assert.Equal(t, "Desk", st.Attributes.NameOr("light.desk"))
	assert.Equal(t, "mdi:desk-lamp", st.Attributes.IconOr("default"))

	col, ok, err := st.Attributes.Color()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, rgb.Color{10, 20, 30}, col)
}

func TestGetStateMissingAttributes(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"entity_id":"switch.fan","state":"off","attributes":{}}`))
	})

	st, err := c.GetState(context.Background(), "switch.fan")
	require.NoError(t, err)
	assert.Equal(t, "default", st.Attributes.IconOr("default"))
	assert.Equal(t, "switch.fan", st.Attributes.NameOr("switch.fan"))
	_, ok, err := st.Attributes.Color()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetStateNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Entity not found."}`, http.StatusNotFound)
	})
	_, err := c.GetState(context.Background(), "light.nope")
	assert.True(t, errors.Is(err, ErrEntityNotFound))
	assert.True(t, IsTransient(err))
}

func TestGetStateUnauthorized(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	_, err := c.GetState(context.Background(), "light.desk")
	assert.True(t, errors.Is(err, ErrUnauthorized))
	assert.False(t, IsTransient(err))
}

func TestGetStateServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})
	_, err := c.GetState(context.Background(), "light.desk")
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadGateway, se.StatusCode)
}

func TestGetStateMalformed(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"entity_id":"light.desk","state":"on","attributes":{"rgb_color":"red"}}`))
	})
	_, err := c.GetState(context.Background(), "light.desk")
	assert.True(t, errors.Is(err, ErrMalformed))
}

func TestOversizedResponseIsRejected(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[`))
		io.CopyN(w, spaces{}, maxResponseBody)
	})
	_, err := c.ListEntities(context.Background(), "")
	assert.ErrorIs(t, err, ErrMalformed)
	assert.ErrorContains(t, err, "exceeds")
}

type spaces struct{}

func (spaces) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = ' '
	}
	return len(p), nil
}

func TestMalformedColorAttribute(t *testing.T) {
	a := Attributes{RGBColor: []float64{1, 2}}
	_, ok, err := a.Color()
	assert.False(t, ok)
	assert.True(t, errors.Is(err, ErrMalformed))
}

func TestToggle(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/services/homeassistant/toggle", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`[]`))
	})
	require.NoError(t, c.Toggle(context.Background(), "light.desk"))
	assert.Equal(t, "light.desk", got["entity_id"])
}

func TestTurnOnColor(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/services/light/turn_on", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`[]`))
	})
	require.NoError(t, c.TurnOnColor(context.Background(), "light.desk", rgb.Color{0, 255, 0}))
	assert.Equal(t, []any{float64(0), float64(255), float64(0)}, got["rgb_color"])
}

func TestListEntities(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/states", r.URL.Path)
		w.Write([]byte(`[
			{"entity_id":"light.b","state":"off","attributes":{}},
			{"entity_id":"switch.fan","state":"on","attributes":{}},
			{"entity_id":"light.a","state":"on","attributes":{}},
			{"entity_id":"lightning.x","state":"on","attributes":{}}
		]`))
	})
	got, err := c.ListEntities(context.Background(), "light")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "light.a", got[0].EntityID)
	assert.Equal(t, "light.b", got[1].EntityID)

	all, err := c.ListEntities(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "light.a", all[0].EntityID)
	assert.Equal(t, "switch.fan", all[3].EntityID)
}

func TestDomain(t *testing.T) {
	assert.Equal(t, "light", Domain("light.desk"))
	assert.Equal(t, "switch", Domain("switch.a.b"))
	assert.Equal(t, "noid", Domain("noid"))
}
