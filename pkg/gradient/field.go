// Package gradient derives a dense field of intensity gradients from a
// scalar volume via central finite differences and samples that field at
// continuous coordinates under a configurable interpolation mode. The
// field is built once and is immutable afterwards, so it can be sampled
// concurrently by a rendering pipeline without locking.
package gradient

import (
	"runtime"
	"sort"
	"sync"
	"sync/atomic"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"
)

// Source is the scalar volume a gradient field is derived from. The
// field keeps no reference to the source once construction finishes.
type Source interface {
	// Dims returns the volume dimensions in voxels.
	Dims() (width, height, depth int)

	// Voxel returns the scalar value at a lattice coordinate. It must be
	// defined for every coordinate with each component in [0, dim-1].
	Voxel(x, y, z int) float64
}

// Sample is a gradient vector together with its Euclidean norm.
// Magnitude always equals r3.Norm(Vector); operations that blend or
// recompute the vector re-derive the magnitude rather than blending it.
type Sample struct {
	Vector    r3.Vec
	Magnitude float64
}

// ProgressCallback reports builder progress as interior z-slices
// complete. It may be invoked concurrently from several workers.
type ProgressCallback func(completed, total int)

// Params holds the gradient field construction parameters.
type Params struct {
	// Workers is the number of goroutines used for the build pass.
	// Zero or negative means runtime.NumCPU().
	Workers int

	// Progress is an optional callback invoked as slices complete.
	Progress ProgressCallback
}

// Field is a dense gradient field over the lattice of a scalar volume.
//
// The samples live in a flat array indexed x + width*(y + height*z), with
// x fastest-varying. This ordering matches the source volume layout and
// is relied upon by consumers that walk the raw data. Voxels on the
// outermost shell of the volume are excluded from the central-difference
// pass and hold the zero sample.
//
// All state except the interpolation mode is immutable after New*. The
// mode is single-writer: concurrent SetMode calls require external
// synchronization, or callers can pass the mode explicitly via
// SampleMode and never touch the shared field.
type Field struct {
	width, height, depth int
	data                 []Sample
	minMagnitude         float64
	maxMagnitude         float64
	mode                 InterpolationMode
}

// NewField builds a gradient field from the scalar volume using all
// available CPU cores.
func NewField(src Source) *Field {
	return NewFieldWithParams(src, &Params{})
}

// NewFieldWithParams builds a gradient field with explicit parameters.
//
// Every interior lattice coordinate gets the central-difference gradient
// (f(x+1)-f(x-1))/2 along each axis; the magnitude range is then reduced
// over the whole array, boundary zeros included. A volume smaller than 3
// voxels on any axis has no interior, which yields a valid all-zero
// field with min = max = 0.
func NewFieldWithParams(src Source, params *Params) *Field {
	if params == nil {
		params = &Params{}
	}

	width, height, depth := src.Dims()
	f := &Field{
		width:  width,
		height: height,
		depth:  depth,
		data:   make([]Sample, width*height*depth),
		mode:   Linear,
	}

	workers := params.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	f.compute(src, workers, params.Progress)
	f.minMagnitude, f.maxMagnitude = magnitudeRange(f.data, workers)

	return f
}

// compute runs the central-difference pass over the interior of the
// volume, dividing the interior z-slices among workers. No voxel's
// result depends on another's, so the only synchronization is the join.
func (f *Field) compute(src Source, workers int, progress ProgressCallback) {
	if f.width < 3 || f.height < 3 || f.depth < 3 {
		// No interior voxels; the boundary policy leaves every sample zero.
		return
	}

	interior := f.depth - 2
	if workers > interior {
		workers = interior
	}
	slicesPerWorker := (interior + workers - 1) / workers

	var completed int64
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		zStart := 1 + w*slicesPerWorker
		zEnd := zStart + slicesPerWorker
		if zEnd > f.depth-1 {
			zEnd = f.depth - 1
		}
		if zStart >= zEnd {
			break
		}

		wg.Add(1)
		go func(zStart, zEnd int) {
			defer wg.Done()

			for z := zStart; z < zEnd; z++ {
				for y := 1; y < f.height-1; y++ {
					for x := 1; x < f.width-1; x++ {
						gx := (src.Voxel(x+1, y, z) - src.Voxel(x-1, y, z)) / 2
						gy := (src.Voxel(x, y+1, z) - src.Voxel(x, y-1, z)) / 2
						gz := (src.Voxel(x, y, z+1) - src.Voxel(x, y, z-1)) / 2

						v := r3.Vec{X: gx, Y: gy, Z: gz}
						f.data[x+f.width*(y+f.height*z)] = Sample{Vector: v, Magnitude: r3.Norm(v)}
					}
				}

				if progress != nil {
					progress(int(atomic.AddInt64(&completed, 1)), interior)
				}
			}
		}(zStart, zEnd)
	}

	wg.Wait()
}

// magnitudeRange reduces the minimum and maximum magnitude over the
// whole sample array. The reduction is associative and commutative, so
// each worker folds a contiguous chunk and the partial results are
// merged after the join.
func magnitudeRange(data []Sample, workers int) (min, max float64) {
	if len(data) == 0 {
		return 0, 0
	}
	if workers < 1 {
		workers = 1
	}
	if workers > len(data) {
		workers = len(data)
	}
	perWorker := (len(data) + workers - 1) / workers

	mins := make([]float64, workers)
	maxs := make([]float64, workers)
	launched := 0
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		lo := w * perWorker
		hi := lo + perWorker
		if hi > len(data) {
			hi = len(data)
		}
		if lo >= hi {
			break
		}

		launched++
		wg.Add(1)
		go func(w, lo, hi int) {
			defer wg.Done()

			mn := data[lo].Magnitude
			mx := mn
			for _, s := range data[lo+1 : hi] {
				if s.Magnitude < mn {
					mn = s.Magnitude
				}
				if s.Magnitude > mx {
					mx = s.Magnitude
				}
			}
			mins[w], maxs[w] = mn, mx
		}(w, lo, hi)
	}
	wg.Wait()

	return floats.Min(mins[:launched]), floats.Max(maxs[:launched])
}

// Dims returns the field dimensions in voxels, matching the source volume.
func (f *Field) Dims() (width, height, depth int) {
	return f.width, f.height, f.depth
}

// MinMagnitude returns the smallest gradient magnitude in the field,
// boundary zero samples included.
func (f *Field) MinMagnitude() float64 {
	return f.minMagnitude
}

// MaxMagnitude returns the largest gradient magnitude in the field.
func (f *Field) MaxMagnitude() float64 {
	return f.maxMagnitude
}

// At returns the stored sample at a lattice coordinate using the flat
// index x + width*(y + height*z). The lookup is unchecked; callers must
// supply in-range coordinates.
func (f *Field) At(x, y, z int) Sample {
	return f.data[x+f.width*(y+f.height*z)]
}

// MagnitudeStats summarizes the distribution of gradient magnitudes.
type MagnitudeStats struct {
	Mean   float64
	StdDev float64
	Median float64
	Min    float64
	Max    float64
}

// MagnitudeStats computes summary statistics over all gradient
// magnitudes, boundary samples included.
func (f *Field) MagnitudeStats() MagnitudeStats {
	if len(f.data) == 0 {
		return MagnitudeStats{}
	}

	mags := make([]float64, len(f.data))
	for i, s := range f.data {
		mags[i] = s.Magnitude
	}
	sort.Float64s(mags)

	return MagnitudeStats{
		Mean:   stat.Mean(mags, nil),
		StdDev: stat.StdDev(mags, nil),
		Median: stat.Quantile(0.5, stat.Empirical, mags, nil),
		Min:    floats.Min(mags),
		Max:    floats.Max(mags),
	}
}
