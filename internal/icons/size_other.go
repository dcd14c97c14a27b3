//go:build !windows

package icons

// defaultTraySize matches the 22px status icons GNOME, KDE and the macOS
// menu bar draw at 1x.
const defaultTraySize = 22

// TrayIconSize returns the notification-area icon height in pixels.
func TrayIconSize() int {
	return defaultTraySize
}
