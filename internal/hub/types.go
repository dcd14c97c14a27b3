package hub

import (
	"fmt"

	"github.com/tonhe/hometray/internal/rgb"
)

// EntityState is the subset of a Home Assistant state object hometray reads.
type EntityState struct {
	EntityID    string     `json:"entity_id"`
	State       string     `json:"state"`
	Attributes  Attributes `json:"attributes"`
	LastChanged string     `json:"last_changed"`
	LastUpdated string     `json:"last_updated"`
}

// Attributes holds the optional entity attributes. Absent keys decode to
// their zero value; use the accessors for defaults.
type Attributes struct {
	FriendlyName string    `json:"friendly_name"`
	Icon         string    `json:"icon"`
	RGBColor     []float64 `json:"rgb_color"`
}

// Domain returns the part of an entity id before the first dot.
func Domain(entityID string) string {
	for i := 0; i < len(entityID); i++ {
		if entityID[i] == '.' {
			return entityID[:i]
		}
	}
	return entityID
}

// IconOr returns the entity icon, or def when none is set.
func (a Attributes) IconOr(def string) string {
	if a.Icon == "" {
		return def
	}
	return a.Icon
}

// NameOr returns the friendly name, or def when none is set.
func (a Attributes) NameOr(def string) string {
	if a.FriendlyName == "" {
		return def
	}
	return a.FriendlyName
}

// Color returns the entity's native color. ok is false when the entity does
// not report one. A present but unusable value is ErrMalformed.
func (a Attributes) Color() (c rgb.Color, ok bool, err error) {
	if a.RGBColor == nil {
		return rgb.Color{}, false, nil
	}
	c, err = rgb.FromFloats(a.RGBColor)
	if err != nil {
		return rgb.Color{}, false, fmt.Errorf("%w: rgb_color: %v", ErrMalformed, err)
	}
	return c, true, nil
}
