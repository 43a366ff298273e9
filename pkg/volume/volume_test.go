package volume

import (
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// TestNewVolume verifies a new volume is zero-filled with unit spacing
func TestNewVolume(t *testing.T) {
	v := New(4, 3, 2)

	if len(v.Data) != 24 {
		t.Errorf("Expected 24 voxels, got %d", len(v.Data))
	}
	for i, val := range v.Data {
		if val != 0 {
			t.Errorf("Expected zero voxel at index %d, got %f", i, val)
		}
	}
	if v.VoxelSize.X != 1 || v.VoxelSize.Y != 1 || v.VoxelSize.Z != 1 {
		t.Errorf("Expected unit voxel spacing, got %+v", v.VoxelSize)
	}
}

// TestVoxelIndexing verifies the flat layout is x fastest-varying
func TestVoxelIndexing(t *testing.T) {
	v := New(3, 4, 5)

	v.SetVoxel(1, 2, 3, 0.5)
	if got := v.Voxel(1, 2, 3); got != 0.5 {
		t.Errorf("Expected 0.5 at (1,2,3), got %f", got)
	}

	// index = x + width*(y + height*z)
	idx := 1 + 3*(2+4*3)
	if v.Data[idx] != 0.5 {
		t.Errorf("Expected flat index %d to hold 0.5, got %f", idx, v.Data[idx])
	}
}

// TestFromData verifies wrapping and the length check
func TestFromData(t *testing.T) {
	data := make([]float64, 12)
	v, err := FromData(data, 3, 2, 2)
	if err != nil {
		t.Fatalf("FromData failed: %v", err)
	}
	if v.Width != 3 || v.Height != 2 || v.Depth != 2 {
		t.Errorf("Expected dimensions 3x2x2, got %dx%dx%d", v.Width, v.Height, v.Depth)
	}

	if _, err := FromData(data, 3, 2, 3); err == nil {
		t.Error("Expected error for mismatched data length")
	}
}

// TestLoadRawUint8 verifies uint8 raw volumes load with [0,1] normalization
func TestLoadRawUint8(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.raw")
	raw := []byte{0, 51, 102, 153, 204, 255, 0, 255}
	if err := os.WriteFile(path, raw, 0644); err != nil {
		t.Fatalf("Failed to write test volume: %v", err)
	}

	v, err := LoadRaw(path, 2, 2, 2, Uint8)
	if err != nil {
		t.Fatalf("LoadRaw failed: %v", err)
	}

	for i, b := range raw {
		expected := float64(b) / 255.0
		if v.Data[i] != expected {
			t.Errorf("Expected voxel %d to be %f, got %f", i, expected, v.Data[i])
		}
	}
}

// TestLoadRawUint16 verifies little-endian uint16 decoding
func TestLoadRawUint16(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test16.raw")
	values := []uint16{0, 1024, 32768, 65535, 500, 60000, 1, 2}
	raw := make([]byte, 2*len(values))
	for i, val := range values {
		binary.LittleEndian.PutUint16(raw[2*i:], val)
	}
	if err := os.WriteFile(path, raw, 0644); err != nil {
		t.Fatalf("Failed to write test volume: %v", err)
	}

	v, err := LoadRaw(path, 2, 2, 2, Uint16)
	if err != nil {
		t.Fatalf("LoadRaw failed: %v", err)
	}

	for i, val := range values {
		expected := float64(val) / 65535.0
		if v.Data[i] != expected {
			t.Errorf("Expected voxel %d to be %f, got %f", i, expected, v.Data[i])
		}
	}
}

// TestLoadRawSizeMismatch verifies a truncated file is rejected
func TestLoadRawSizeMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.raw")
	if err := os.WriteFile(path, make([]byte, 7), 0644); err != nil {
		t.Fatalf("Failed to write test volume: %v", err)
	}

	if _, err := LoadRaw(path, 2, 2, 2, Uint8); err == nil {
		t.Error("Expected error for truncated uint8 volume")
	}
	if _, err := LoadRaw(path, 2, 2, 2, Uint16); err == nil {
		t.Error("Expected error for truncated uint16 volume")
	}
}

// TestParseSampleFormat verifies format parsing
func TestParseSampleFormat(t *testing.T) {
	cases := []struct {
		in   string
		want SampleFormat
		ok   bool
	}{
		{"uint8", Uint8, true},
		{"UINT16", Uint16, true},
		{" uint8 ", Uint8, true},
		{"float32", "", false},
		{"", "", false},
	}

	for _, tc := range cases {
		got, err := ParseSampleFormat(tc.in)
		if tc.ok {
			if err != nil {
				t.Errorf("ParseSampleFormat(%q) failed: %v", tc.in, err)
			} else if got != tc.want {
				t.Errorf("ParseSampleFormat(%q) = %q, expected %q", tc.in, got, tc.want)
			}
		} else if err == nil {
			t.Errorf("ParseSampleFormat(%q) expected an error", tc.in)
		}
	}
}

// writeTestSlice saves a uniform grayscale JPEG for slice-stack tests
func writeTestSlice(t *testing.T, path string, width, height int, value uint8) {
	t.Helper()

	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetGray(x, y, color.Gray{Y: value})
		}
	}

	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create slice file: %v", err)
	}
	defer file.Close()

	if err := jpeg.Encode(file, img, &jpeg.Options{Quality: 100}); err != nil {
		t.Fatalf("Failed to encode slice: %v", err)
	}
}

// TestLoadSlices verifies slices stack along z in numeric filename order
func TestLoadSlices(t *testing.T) {
	dir := t.TempDir()

	// Written out of order; numeric sorting must reorder 2 before 10
	writeTestSlice(t, filepath.Join(dir, "slice_10.jpg"), 8, 6, 240)
	writeTestSlice(t, filepath.Join(dir, "slice_2.jpg"), 8, 6, 40)

	v, err := LoadSlices(dir)
	if err != nil {
		t.Fatalf("LoadSlices failed: %v", err)
	}

	if v.Width != 8 || v.Height != 6 || v.Depth != 2 {
		t.Fatalf("Expected dimensions 8x6x2, got %dx%dx%d", v.Width, v.Height, v.Depth)
	}

	// JPEG is lossy, so compare with a tolerance
	if got := v.Voxel(4, 3, 0); math.Abs(got-40.0/255.0) > 0.05 {
		t.Errorf("Expected first slice value ~%f, got %f", 40.0/255.0, got)
	}
	if got := v.Voxel(4, 3, 1); math.Abs(got-240.0/255.0) > 0.05 {
		t.Errorf("Expected second slice value ~%f, got %f", 240.0/255.0, got)
	}
}

// TestLoadSlicesDimensionMismatch verifies inconsistent slices are rejected
func TestLoadSlicesDimensionMismatch(t *testing.T) {
	dir := t.TempDir()
	writeTestSlice(t, filepath.Join(dir, "slice_1.jpg"), 8, 6, 100)
	writeTestSlice(t, filepath.Join(dir, "slice_2.jpg"), 4, 6, 100)

	if _, err := LoadSlices(dir); err == nil {
		t.Error("Expected error for mismatched slice dimensions")
	}
}

// TestLoadSlicesEmptyDir verifies a directory with no images is rejected
func TestLoadSlicesEmptyDir(t *testing.T) {
	if _, err := LoadSlices(t.TempDir()); err == nil {
		t.Error("Expected error for directory without images")
	}
}
