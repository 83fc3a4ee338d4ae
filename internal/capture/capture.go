// Package capture freezes the desktop into an image the annotation overlay
// can draw on.
package capture

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"strconv"
	"strings"
)

// CaptureOptions adjust how the desktop frame is grabbed.
type CaptureOptions struct {
	IncludeCursor bool
}

var errNoMonitors = errors.New("no monitors available")

// Seams for tests; the real functions live in the platform files.
var (
	portalScreenshotFn = portalScreenshot
	x11ScreenshotFn    = x11Screenshot
	listMonitorsFn     = listMonitors
)

// MonitorInfo describes an individual monitor in the display layout.
type MonitorInfo struct {
	Index   int
	Name    string
	Rect    image.Rectangle
	Primary bool
}

// Frame captures the whole desktop. When a display selector is provided the
// result is cropped to the matching monitor. On Wayland the XDG portal is the
// only path; on X11 a direct root grab is preferred with the portal as
// fallback.
func Frame(display string, opts CaptureOptions) (*image.RGBA, error) {
	var img *image.RGBA
	var err error
	if runningOnWayland() {
		img, err = portalScreenshotFn(opts)
		if err != nil {
			return nil, err
		}
	} else {
		img, err = x11ScreenshotFn()
		if err != nil {
			var perr error
			img, perr = portalScreenshotFn(opts)
			if perr != nil {
				return nil, fmt.Errorf("x11 capture: %v; portal fallback failed: %w", err, perr)
			}
		}
	}
	if display == "" {
		return img, nil
	}
	monitors, err := ListMonitors()
	if err != nil {
		return nil, err
	}
	monitor, err := FindMonitor(monitors, display)
	if err != nil {
		return nil, err
	}
	return cropToRect(img, monitor.Rect)
}

// ListMonitors retrieves the display layout.
func ListMonitors() ([]MonitorInfo, error) {
	monitors, err := listMonitorsFn()
	if err != nil {
		return nil, err
	}
	if len(monitors) == 0 {
		return nil, errNoMonitors
	}
	return monitors, nil
}

// FindMonitor resolves a monitor selector against the provided list.
// Selectors: "primary", a zero-based index (optionally "#N"), or a
// case-insensitive name fragment.
func FindMonitor(monitors []MonitorInfo, selector string) (MonitorInfo, error) {
	if len(monitors) == 0 {
		return MonitorInfo{}, errNoMonitors
	}
	if selector == "" {
		return monitors[0], nil
	}
	sel := strings.TrimSpace(selector)
	lower := strings.ToLower(sel)
	if lower == "primary" {
		for _, mon := range monitors {
			if mon.Primary {
				return mon, nil
			}
		}
		return monitors[0], nil
	}
	if strings.HasPrefix(lower, "#") {
		lower = lower[1:]
	}
	if idx, err := strconv.Atoi(lower); err == nil {
		if idx < 0 || idx >= len(monitors) {
			return MonitorInfo{}, fmt.Errorf("monitor index %d out of range", idx)
		}
		return monitors[idx], nil
	}
	for _, mon := range monitors {
		if strings.Contains(strings.ToLower(mon.Name), lower) {
			return mon, nil
		}
	}
	return MonitorInfo{}, fmt.Errorf("monitor %q not found", selector)
}

func cropToRect(src *image.RGBA, rect image.Rectangle) (*image.RGBA, error) {
	rect = rect.Intersect(src.Bounds())
	if rect.Empty() {
		return nil, fmt.Errorf("requested region outside captured image")
	}
	dst := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(dst, dst.Bounds(), src, rect.Min, draw.Src)
	return dst, nil
}
