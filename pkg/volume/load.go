package volume

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// SampleFormat identifies the per-voxel encoding of a raw volume file.
type SampleFormat string

const (
	// Uint8 is one byte per voxel, scaled to [0,1] on load.
	Uint8 SampleFormat = "uint8"

	// Uint16 is two little-endian bytes per voxel, scaled to [0,1] on load.
	Uint16 SampleFormat = "uint16"
)

// ParseSampleFormat converts a configuration string to a sample format.
func ParseSampleFormat(s string) (SampleFormat, error) {
	switch SampleFormat(strings.ToLower(strings.TrimSpace(s))) {
	case Uint8:
		return Uint8, nil
	case Uint16:
		return Uint16, nil
	default:
		return "", fmt.Errorf("unknown sample format %q", s)
	}
}

// LoadRaw reads a headerless raw volume file with the given dimensions
// and sample format. Values are stored x-fastest, matching the Volume
// layout, and are normalized to [0,1].
func LoadRaw(path string, width, height, depth int, format SampleFormat) (*Volume, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read volume file: %w", err)
	}

	n := width * height * depth
	v := New(width, height, depth)

	switch format {
	case Uint8:
		if len(raw) != n {
			return nil, fmt.Errorf("volume file %s holds %d bytes, expected %d for %dx%dx%d uint8",
				path, len(raw), n, width, height, depth)
		}
		for i, b := range raw {
			v.Data[i] = float64(b) / 255.0
		}

	case Uint16:
		if len(raw) != 2*n {
			return nil, fmt.Errorf("volume file %s holds %d bytes, expected %d for %dx%dx%d uint16",
				path, len(raw), 2*n, width, height, depth)
		}
		for i := 0; i < n; i++ {
			v.Data[i] = float64(binary.LittleEndian.Uint16(raw[2*i:])) / 65535.0
		}

	default:
		return nil, fmt.Errorf("unknown sample format %q", format)
	}

	return v, nil
}

// LoadSlices builds a volume from a directory of JPEG slice images,
// stacked along the z axis. Files are sorted by the numeric part of
// their filename so the anatomical slice order is preserved. All slices
// must share the same dimensions.
func LoadSlices(dir string) (*Volume, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read slice directory: %w", err)
	}

	var imageFiles []string
	for _, file := range files {
		ext := strings.ToLower(filepath.Ext(file.Name()))
		if ext == ".jpg" || ext == ".jpeg" {
			imageFiles = append(imageFiles, file.Name())
		}
	}
	if len(imageFiles) == 0 {
		return nil, fmt.Errorf("no JPG images found in %s", dir)
	}

	sort.Slice(imageFiles, func(i, j int) bool {
		return extractNumber(imageFiles[i]) < extractNumber(imageFiles[j])
	})

	var v *Volume
	for i, filename := range imageFiles {
		img, err := loadImage(filepath.Join(dir, filename))
		if err != nil {
			return nil, fmt.Errorf("failed to load slice %s: %w", filename, err)
		}

		bounds := img.Bounds()
		if v == nil {
			v = New(bounds.Dx(), bounds.Dy(), len(imageFiles))
		} else if bounds.Dx() != v.Width || bounds.Dy() != v.Height {
			return nil, fmt.Errorf("slice %s is %dx%d, expected %dx%d",
				filename, bounds.Dx(), bounds.Dy(), v.Width, v.Height)
		}

		sliceToFloat(img, v.Data[i*v.Width*v.Height:])
	}

	return v, nil
}

// extractNumber pulls the numeric part out of a slice filename so files
// sort in acquisition order rather than lexically.
func extractNumber(filename string) int {
	base := filepath.Base(filename)
	numStr := ""
	for _, c := range base {
		if c >= '0' && c <= '9' {
			numStr += string(c)
		}
	}

	if numStr != "" {
		if num, err := strconv.Atoi(numStr); err == nil {
			return num
		}
	}
	return 0
}

func loadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return jpeg.Decode(file)
}

// sliceToFloat converts one slice image to grayscale floats in [0,1],
// writing into the destination in row-major order.
func sliceToFloat(img image.Image, dst []float64) {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, _, _, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			dst[y*width+x] = float64(r) / 65535.0
		}
	}
}
