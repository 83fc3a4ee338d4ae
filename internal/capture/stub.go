//go:build !(linux || freebsd || openbsd || netbsd || dragonfly)

package capture

import (
	"fmt"
	"image"
)

func runningOnWayland() bool { return false }

func x11Screenshot() (*image.RGBA, error) {
	return nil, fmt.Errorf("screen capture is not supported on this platform")
}

func portalScreenshot(CaptureOptions) (*image.RGBA, error) {
	return nil, fmt.Errorf("screen capture is not supported on this platform")
}

func listMonitors() ([]MonitorInfo, error) {
	return nil, fmt.Errorf("monitor enumeration is not supported on this platform")
}
