package gradient

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Sample resolves the gradient at a continuous coordinate using the
// field's ambient interpolation mode. Coordinates outside the volume
// (any component negative or >= the dimension on that axis) yield the
// zero sample, so edge rays in the caller need no special casing.
func (f *Field) Sample(coord r3.Vec) (Sample, error) {
	return f.SampleMode(coord, f.mode)
}

// SampleMode resolves the gradient at a continuous coordinate under an
// explicitly supplied interpolation mode, independent of the field's
// ambient mode. Safe for concurrent callers wanting different modes.
func (f *Field) SampleMode(coord r3.Vec, mode InterpolationMode) (Sample, error) {
	switch mode {
	case NearestNeighbor:
		return f.nearestNeighbor(coord), nil
	case Linear, Cubic:
		// Cubic degrades to trilinear, see the mode doc.
		return f.trilinear(coord), nil
	default:
		return Sample{}, fmt.Errorf("%w: %d", ErrInvalidMode, int(mode))
	}
}

// outOfBounds reports whether a continuous coordinate lies outside the
// sampleable region [0, dim) on any axis.
func (f *Field) outOfBounds(coord r3.Vec) bool {
	return coord.X < 0 || coord.Y < 0 || coord.Z < 0 ||
		coord.X >= float64(f.width) || coord.Y >= float64(f.height) || coord.Z >= float64(f.depth)
}

// nearestNeighbor rounds each component to the closest lattice point
// with round-half-up. floor(v+0.5) is only exact for non-negative
// values, which the bounds check guarantees. Components in the last
// half-voxel before the boundary round up to the dimension itself, so
// the result is clamped before the unchecked lookup.
func (f *Field) nearestNeighbor(coord r3.Vec) Sample {
	if f.outOfBounds(coord) {
		return Sample{}
	}

	x := clampIndex(int(math.Floor(coord.X+0.5)), f.width-1)
	y := clampIndex(int(math.Floor(coord.Y+0.5)), f.height-1)
	z := clampIndex(int(math.Floor(coord.Z+0.5)), f.depth-1)

	return f.At(x, y, z)
}

// trilinear blends the 8 lattice samples surrounding the coordinate,
// interpolating along x, then y, then z. At an exact lattice coordinate
// every fraction is zero and the stored sample is returned unchanged.
func (f *Field) trilinear(coord r3.Vec) Sample {
	if f.outOfBounds(coord) {
		return Sample{}
	}

	x0 := int(math.Floor(coord.X))
	y0 := int(math.Floor(coord.Y))
	z0 := int(math.Floor(coord.Z))

	// The upper corner is clamped so a coordinate in the last cell's
	// open edge never indexes past the lattice.
	x1 := clampIndex(x0+1, f.width-1)
	y1 := clampIndex(y0+1, f.height-1)
	z1 := clampIndex(z0+1, f.depth-1)

	tx := coord.X - float64(x0)
	ty := coord.Y - float64(y0)
	tz := coord.Z - float64(z0)

	c00 := lerp(f.At(x0, y0, z0), f.At(x1, y0, z0), tx)
	c10 := lerp(f.At(x0, y1, z0), f.At(x1, y1, z0), tx)
	c01 := lerp(f.At(x0, y0, z1), f.At(x1, y0, z1), tx)
	c11 := lerp(f.At(x0, y1, z1), f.At(x1, y1, z1), tx)

	c0 := lerp(c00, c10, ty)
	c1 := lerp(c01, c11, ty)

	return lerp(c0, c1, tz)
}

// lerp blends two samples component-wise: (1-t)*g0 + t*g1. The
// magnitude is recomputed from the blended vector, never blended
// itself, preserving the Sample invariant. t=0 yields exactly g0 and
// t=1 exactly g1.
func lerp(g0, g1 Sample, t float64) Sample {
	v := r3.Add(r3.Scale(1-t, g0.Vector), r3.Scale(t, g1.Vector))
	return Sample{Vector: v, Magnitude: r3.Norm(v)}
}

func clampIndex(i, max int) int {
	if i > max {
		return max
	}
	return i
}
