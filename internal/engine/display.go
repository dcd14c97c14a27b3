package engine

import (
	"github.com/tonhe/hometray/internal/hub"
	"github.com/tonhe/hometray/internal/rgb"
)

// DefaultIconID is used when the entity reports no icon.
const DefaultIconID = "default"

// ColorScheme holds the configured fallback colors.
type ColorScheme struct {
	UseRGBValue bool
	On          rgb.Color
	Off         rgb.Color
	Unknown     rgb.Color
}

// DefaultScheme matches the stock configuration.
var DefaultScheme = ColorScheme{
	UseRGBValue: true,
	On:          rgb.Color{253, 213, 27},
	Off:         rgb.Color{225, 225, 225},
	Unknown:     rgb.Color{100, 100, 100},
}

// DisplayState is what one refresh decided to show for an entity.
type DisplayState struct {
	EntityID   string
	IconID     string
	StateLabel string
	Color      rgb.Color
	Tooltip    string
	// NativeColor is set when the entity reported its own rgb_color.
	NativeColor bool
}

// DeriveDisplayState applies the color selection rule:
//
//	on, native color, use_rgb_value  -> entity color
//	on                               -> scheme.On
//	off                              -> scheme.Off
//	anything else                    -> scheme.Unknown
//
// A malformed rgb_color attribute is an error.
func DeriveDisplayState(entityID string, st hub.EntityState, scheme ColorScheme) (DisplayState, error) {
	native, hasNative, err := st.Attributes.Color()
	if err != nil {
		return DisplayState{}, err
	}

	ds := DisplayState{
		EntityID:    entityID,
		IconID:      st.Attributes.IconOr(DefaultIconID),
		StateLabel:  st.State,
		Tooltip:     st.Attributes.NameOr(entityID),
		NativeColor: hasNative,
	}

	switch {
	case st.State == "on" && hasNative && scheme.UseRGBValue:
		ds.Color = native
	case st.State == "on":
		ds.Color = scheme.On
	case st.State == "off":
		ds.Color = scheme.Off
	default:
		ds.Color = scheme.Unknown
	}
	return ds, nil
}
