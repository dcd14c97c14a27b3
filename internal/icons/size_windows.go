//go:build windows

package icons

import (
	"golang.org/x/sys/windows"
)

const (
	smCySmIcon      = 50 // SM_CYSMICON
	defaultTraySize = 16
)

var procGetSystemMetrics = windows.NewLazySystemDLL("user32.dll").NewProc("GetSystemMetrics")

// TrayIconSize returns the notification-area icon height in pixels, as
// reported by GetSystemMetrics(SM_CYSMICON).
func TrayIconSize() int {
	if err := procGetSystemMetrics.Find(); err != nil {
		return defaultTraySize
	}
	r, _, _ := procGetSystemMetrics.Call(uintptr(smCySmIcon))
	if int(r) <= 0 {
		return defaultTraySize
	}
	return int(r)
}
