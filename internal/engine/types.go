package engine

import (
	"context"
	"time"

	"github.com/tonhe/hometray/internal/hub"
	"github.com/tonhe/hometray/internal/icons"
	"github.com/tonhe/hometray/internal/rgb"
)

// Hub is the part of the Home Assistant client a Poller needs.
type Hub interface {
	GetState(ctx context.Context, entityID string) (hub.EntityState, error)
	Toggle(ctx context.Context, entityID string) error
	TurnOnColor(ctx context.Context, entityID string, c rgb.Color) error
}

// IconSource turns a display triple into a rendered icon.
type IconSource interface {
	Get(iconID, state string, c rgb.Color) (*icons.Icon, error)
}

// Display receives every successful refresh. Implementations must not block
// for long; they run on the poller's goroutine.
type Display interface {
	Show(u Update)
}

// DisplayFunc adapts a function to Display.
type DisplayFunc func(u Update)

func (f DisplayFunc) Show(u Update) { f(u) }

// Update is pushed to the Display after each successful refresh.
type Update struct {
	EntityID string
	State    DisplayState
	Icon     *icons.Icon
}

// StateSample is one entry in an entity's history.
type StateSample struct {
	Timestamp time.Time
	State     string
	Color     rgb.Color
	Err       bool
}

// EntitySnapshot is a point-in-time copy of one poller's state.
type EntitySnapshot struct {
	EntityID   string
	Display    DisplayState
	HasDisplay bool
	IconPath   string
	LastPoll   time.Time
	PollCount  int
	ErrorCount int
	LastError  error
	History    []StateSample
	Since      time.Time // when the current state began; zero if unknown
}

// EngineState represents the lifecycle state of a poller.
type EngineState int

const (
	EngineStopped EngineState = iota
	EngineRunning
	EngineError
)

func (s EngineState) String() string {
	switch s {
	case EngineRunning:
		return "running"
	case EngineError:
		return "error"
	default:
		return "stopped"
	}
}

// EngineInfo provides summary information about a poller.
type EngineInfo struct {
	EntityID   string
	State      EngineState
	LastPoll   time.Time
	PollCount  int
	ErrorCount int
}

// EngineEvent is emitted to subscribers after each refresh, successful or not.
type EngineEvent struct {
	EntityID string
	Snapshot EntitySnapshot
}
