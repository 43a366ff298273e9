// Package volume provides the scalar 3D volume that gradient fields are
// derived from, along with loaders for raw volume files and stacks of
// 2D slice images.
package volume

import (
	"fmt"
)

// Volume is a scalar 3D volume stored as a flat array in x-fastest
// order: index = x + Width*(y + Height*z). The layout matches the
// gradient field derived from it.
type Volume struct {
	// Data holds the scalar values, one per voxel.
	Data []float64

	// Width, Height, Depth are the dimensions in voxels.
	Width  int
	Height int
	Depth  int

	// VoxelSize is the physical voxel spacing in mm. It is carried as
	// dataset metadata for consumers; gradient computation assumes unit
	// spacing between neighboring voxels.
	VoxelSize struct {
		X, Y, Z float64
	}
}

// New creates a zero-filled volume with the given dimensions and unit
// voxel spacing.
func New(width, height, depth int) *Volume {
	v := &Volume{
		Data:   make([]float64, width*height*depth),
		Width:  width,
		Height: height,
		Depth:  depth,
	}
	v.VoxelSize.X, v.VoxelSize.Y, v.VoxelSize.Z = 1, 1, 1
	return v
}

// FromData wraps an existing flat data array as a volume. The array
// length must match the dimensions exactly.
func FromData(data []float64, width, height, depth int) (*Volume, error) {
	if len(data) != width*height*depth {
		return nil, fmt.Errorf("data length %d does not match dimensions %dx%dx%d",
			len(data), width, height, depth)
	}

	v := New(width, height, depth)
	v.Data = data
	return v, nil
}

// Dims returns the volume dimensions in voxels.
func (v *Volume) Dims() (width, height, depth int) {
	return v.Width, v.Height, v.Depth
}

// Voxel returns the scalar value at a lattice coordinate. The lookup is
// unchecked; coordinates must be in [0, dim-1] on each axis.
func (v *Volume) Voxel(x, y, z int) float64 {
	return v.Data[x+v.Width*(y+v.Height*z)]
}

// SetVoxel stores a scalar value at a lattice coordinate.
func (v *Volume) SetVoxel(x, y, z int, value float64) {
	v.Data[x+v.Width*(y+v.Height*z)] = value
}
