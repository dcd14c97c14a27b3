package icons

import (
	"errors"
	"io/fs"
	"strings"
)

// ErrAssetMissing means the bundle has no file at any fallback level,
// including unknown.svg. The bundle is incomplete and nothing can be drawn.
var ErrAssetMissing = errors.New("icon bundle is missing unknown.svg")

const (
	defaultIcon = "default"
	unknownFile = "unknown.svg"
)

// fallbackStates are tried in order when no exact icon/state file exists.
var fallbackStates = []string{"on", "off", "unavailable"}

// Normalize maps a hub icon id and state onto bundle file-name parts:
// "mdi:Desk-Lamp", "ON" becomes "mdi-desk-lamp", "on".
func Normalize(iconID, state string) (string, string) {
	return strings.ReplaceAll(strings.ToLower(iconID), ":", "-"), strings.ToLower(state)
}

// ResolvePath returns the bundle file to draw for iconID in state. The
// search order is:
//
//	<icon>-<state>.svg
//	<icon>-on.svg, <icon>-off.svg, <icon>-unavailable.svg
//	default-<state>.svg
//	unknown.svg
func ResolvePath(fsys fs.FS, iconID, state string) (string, error) {
	icon, st := Normalize(iconID, state)

	if name := icon + "-" + st + ".svg"; exists(fsys, name) {
		return name, nil
	}
	for _, fallback := range fallbackStates {
		if name := icon + "-" + fallback + ".svg"; exists(fsys, name) {
			return name, nil
		}
	}
	if name := defaultIcon + "-" + st + ".svg"; exists(fsys, name) {
		return name, nil
	}
	if exists(fsys, unknownFile) {
		return unknownFile, nil
	}
	return "", ErrAssetMissing
}

// Validate reports ErrAssetMissing when the bundle lacks its final fallback.
func Validate(fsys fs.FS) error {
	if !exists(fsys, unknownFile) {
		return ErrAssetMissing
	}
	return nil
}

func exists(fsys fs.FS, name string) bool {
	if !fs.ValidPath(name) {
		return false
	}
	info, err := fs.Stat(fsys, name)
	return err == nil && !info.IsDir()
}
