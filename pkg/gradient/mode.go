package gradient

import (
	"errors"
	"fmt"
	"strings"
)

// InterpolationMode selects how the sampler resolves a continuous
// coordinate to a gradient sample.
type InterpolationMode int

const (
	// NearestNeighbor rounds the coordinate to the closest lattice point.
	NearestNeighbor InterpolationMode = iota

	// Linear blends the 8 surrounding lattice samples trilinearly.
	Linear

	// Cubic is accepted for compatibility with mode selectors but
	// resolves through the linear path; higher-order interpolation of a
	// gradient field is unnecessary.
	Cubic
)

// ErrInvalidMode reports an interpolation mode outside the known set.
// This is a configuration error and sampling fails fast on it instead
// of silently falling back to a default.
var ErrInvalidMode = errors.New("invalid interpolation mode")

// String returns the canonical name of the mode.
func (m InterpolationMode) String() string {
	switch m {
	case NearestNeighbor:
		return "nearest"
	case Linear:
		return "linear"
	case Cubic:
		return "cubic"
	default:
		return fmt.Sprintf("InterpolationMode(%d)", int(m))
	}
}

// ParseInterpolationMode converts a configuration string to a mode.
// Matching is case-insensitive and accepts the common spellings.
func ParseInterpolationMode(s string) (InterpolationMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "nearest", "nearestneighbor", "nearest-neighbor":
		return NearestNeighbor, nil
	case "linear", "trilinear":
		return Linear, nil
	case "cubic":
		return Cubic, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

// Mode returns the ambient interpolation mode used by Sample.
func (f *Field) Mode() InterpolationMode {
	return f.mode
}

// SetMode changes the ambient interpolation mode. The mode is the only
// mutable field state and is not synchronized; callers that change it
// while other goroutines sample must serialize externally, or use
// SampleMode with an explicit mode instead.
func (f *Field) SetMode(mode InterpolationMode) {
	f.mode = mode
}
