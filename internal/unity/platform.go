package unity

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// Platform is the operating system a package targets.
type Platform int

// Supported platforms. PlatformNone is the invalid zero value and is
// rejected wherever a concrete platform is required.
const (
	PlatformNone Platform = iota
	PlatformMac
	PlatformWindows
	PlatformLinux
)

// ErrInvalidPlatform is returned when an accessor receives PlatformNone or
// an out-of-range value. This indicates a caller bug, not a data condition.
var ErrInvalidPlatform = errors.New("invalid platform")

// String returns the lowercase platform name.
func (p Platform) String() string {
	switch p {
	case PlatformMac:
		return "mac"
	case PlatformWindows:
		return "windows"
	case PlatformLinux:
		return "linux"
	default:
		return "none"
	}
}

// ParsePlatform converts a platform name or common alias into a Platform.
func ParsePlatform(s string) (Platform, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mac", "macos", "osx", "darwin":
		return PlatformMac, nil
	case "win", "windows":
		return PlatformWindows, nil
	case "linux":
		return PlatformLinux, nil
	default:
		return PlatformNone, fmt.Errorf("%w: %q", ErrInvalidPlatform, s)
	}
}

// CurrentPlatform returns the platform matching the running OS,
// defaulting to Linux for unrecognized systems.
func CurrentPlatform() Platform {
	switch runtime.GOOS {
	case "darwin":
		return PlatformMac
	case "windows":
		return PlatformWindows
	default:
		return PlatformLinux
	}
}
