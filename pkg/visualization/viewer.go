// Package visualization exports cross-sections of a gradient field as
// grayscale images, mapping gradient magnitude to intensity. It is a
// debugging aid for inspecting a field before it is handed to a
// renderer.
package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"math"
	"os"
	"path/filepath"

	"github.com/quintene/VolVis/pkg/gradient"
)

// Viewer renders gradient-magnitude slices of a field
type Viewer struct {
	// field is the gradient field being inspected
	field *gradient.Field

	// dimensions of the field
	width  int
	height int
	depth  int

	// scale maps the field's magnitude range onto [0,1]
	scale  float64
	offset float64
}

// NewViewer creates a viewer for a gradient field. Pixel intensities
// are normalized by the field's magnitude range, so the brightest pixel
// corresponds to the maximum magnitude in the whole field.
func NewViewer(field *gradient.Field) *Viewer {
	width, height, depth := field.Dims()

	v := &Viewer{
		field:  field,
		width:  width,
		height: height,
		depth:  depth,
		offset: field.MinMagnitude(),
	}

	if span := field.MaxMagnitude() - field.MinMagnitude(); span > 0 {
		v.scale = 1 / span
	}

	return v
}

// gray maps one lattice sample's magnitude to a 16-bit gray value.
func (v *Viewer) gray(x, y, z int) color.Gray16 {
	m := (v.field.At(x, y, z).Magnitude - v.offset) * v.scale
	return color.Gray16{Y: uint16(math.Max(0, math.Min(65535, m*65535)))}
}

// ExtractSlice renders a 2D magnitude cross-section of the field along
// the specified axis at the given position.
func (v *Viewer) ExtractSlice(axis string, position int) (image.Image, error) {
	if position < 0 {
		return nil, fmt.Errorf("position must be non-negative")
	}

	var img *image.Gray16

	switch axis {
	case "x", "X":
		// Slice along the YZ plane
		if position >= v.width {
			return nil, fmt.Errorf("position %d exceeds width %d", position, v.width)
		}

		img = image.NewGray16(image.Rect(0, 0, v.depth, v.height))
		for y := 0; y < v.height; y++ {
			for z := 0; z < v.depth; z++ {
				img.SetGray16(z, y, v.gray(position, y, z))
			}
		}

	case "y", "Y":
		// Slice along the XZ plane
		if position >= v.height {
			return nil, fmt.Errorf("position %d exceeds height %d", position, v.height)
		}

		img = image.NewGray16(image.Rect(0, 0, v.width, v.depth))
		for z := 0; z < v.depth; z++ {
			for x := 0; x < v.width; x++ {
				img.SetGray16(x, z, v.gray(x, position, z))
			}
		}

	case "z", "Z":
		// Slice along the XY plane
		if position >= v.depth {
			return nil, fmt.Errorf("position %d exceeds depth %d", position, v.depth)
		}

		img = image.NewGray16(image.Rect(0, 0, v.width, v.height))
		for y := 0; y < v.height; y++ {
			for x := 0; x < v.width; x++ {
				img.SetGray16(x, y, v.gray(x, y, position))
			}
		}

	default:
		return nil, fmt.Errorf("invalid axis: %s (must be x, y, or z)", axis)
	}

	return img, nil
}

// SaveSlice saves an extracted slice as a JPEG image
func (v *Viewer) SaveSlice(img image.Image, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return jpeg.Encode(file, img, &jpeg.Options{Quality: 90})
}

// SaveSliceSequence extracts and saves a sequence of slices along the specified axis
func (v *Viewer) SaveSliceSequence(axis string, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	var maxPos int
	switch axis {
	case "x", "X":
		maxPos = v.width
	case "y", "Y":
		maxPos = v.height
	case "z", "Z":
		maxPos = v.depth
	default:
		return fmt.Errorf("invalid axis: %s (must be x, y, or z)", axis)
	}

	for pos := 0; pos < maxPos; pos++ {
		img, err := v.ExtractSlice(axis, pos)
		if err != nil {
			return err
		}

		filename := filepath.Join(outputDir, fmt.Sprintf("gradient_%s_%03d.jpg", axis, pos))
		if err := v.SaveSlice(img, filename); err != nil {
			return err
		}
	}

	return nil
}
