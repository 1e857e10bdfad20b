package renderer

import (
	"errors"
	"fmt"
	"strings"
)

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota
)

// ErrSurfaceUnavailable is returned by BeginFrame while the surface has a zero size,
// e.g. when the window is minimized.
var ErrSurfaceUnavailable = errors.New("renderer: surface has zero size")

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// ParsePresentMode converts a configuration value ("vsync" or "uncapped") into a PresentMode.
//
// Parameters:
//   - name: the configured present mode, case-insensitive
//
// Returns:
//   - PresentMode: the parsed mode
//   - error: an error if the name is not recognized
func ParsePresentMode(name string) (PresentMode, error) {
	switch strings.ToLower(name) {
	case "", "vsync":
		return PresentModeVSync, nil
	case "uncapped":
		return PresentModeUncapped, nil
	default:
		return PresentModeVSync, fmt.Errorf("renderer: unknown present mode %q", name)
	}
}

// MSAASampleCount controls the number of samples used for multisample anti-aliasing (MSAA).
// WebGPU guarantees support for 1 (off) and 4.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing (sample count 1). This is the default.
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4× multisample anti-aliasing.
	MSAA4x MSAASampleCount = 4
)

// ParseMSAA converts a configured sample count into an MSAASampleCount.
//
// Parameters:
//   - count: 1 or 4
//
// Returns:
//   - MSAASampleCount: the sample count
//   - error: an error for any other value
func ParseMSAA(count int) (MSAASampleCount, error) {
	switch count {
	case 0, 1:
		return MSAAOff, nil
	case 4:
		return MSAA4x, nil
	default:
		return MSAAOff, fmt.Errorf("renderer: unsupported msaa sample count %d", count)
	}
}

// RendererBackend is the top-level backend interface for the Renderer.
// It embeds the concrete backend interface for the selected GPU API.
type RendererBackend interface {
	wgpuRendererBackend
}
