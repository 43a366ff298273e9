package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/quintene/VolVis/pkg/config"
	"github.com/quintene/VolVis/pkg/gradient"
	"github.com/quintene/VolVis/pkg/visualization"
	"github.com/quintene/VolVis/pkg/volume"
)

func main() {
	// Parse command line arguments
	configPath := flag.String("config", "volvis.yaml", "Configuration file (YAML)")
	input := flag.String("input", "", "Raw volume file or directory of JPEG slices")
	width := flag.Int("width", 0, "Volume width in voxels (raw input)")
	height := flag.Int("height", 0, "Volume height in voxels (raw input)")
	depth := flag.Int("depth", 0, "Volume depth in voxels (raw input)")
	format := flag.String("format", "", "Raw sample format: uint8 or uint16")
	workers := flag.Int("workers", 0, "Number of goroutines for the gradient build (default: all cores)")
	mode := flag.String("mode", "", "Interpolation mode: nearest, linear or cubic")
	sampleAt := flag.String("sample", "", "Sample the field at a coordinate, e.g. \"12.5,40,7.25\"")
	extractSlices := flag.Bool("extract-slices", false, "Export gradient-magnitude slices along all axes")
	slicesDir := flag.String("slices-dir", "", "Directory for exported slices")
	flag.Parse()

	// Load configuration, then let flags override it
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *input != "" {
		cfg.Volume.Path = *input
	}
	if *width > 0 {
		cfg.Volume.Width = *width
	}
	if *height > 0 {
		cfg.Volume.Height = *height
	}
	if *depth > 0 {
		cfg.Volume.Depth = *depth
	}
	if *format != "" {
		cfg.Volume.Format = *format
	}
	if *workers > 0 {
		cfg.Processing.Workers = *workers
	}
	if *mode != "" {
		cfg.Processing.Interpolation = *mode
	}
	if *slicesDir != "" {
		cfg.Output.SlicesDir = *slicesDir
	}

	if cfg.Volume.Path == "" {
		flag.Usage()
		os.Exit(1)
	}

	interpolation, err := cfg.InterpolationMode()
	if err != nil {
		log.Fatalf("Invalid interpolation mode: %v", err)
	}

	// Load the scalar volume
	fmt.Println("Loading volume...")
	vol, err := loadVolume(cfg)
	if err != nil {
		log.Fatalf("Failed to load volume: %v", err)
	}
	vol.VoxelSize.X = cfg.Volume.VoxelSize.X
	vol.VoxelSize.Y = cfg.Volume.VoxelSize.Y
	vol.VoxelSize.Z = cfg.Volume.VoxelSize.Z
	fmt.Printf("Loaded volume with dimensions %dx%dx%d\n", vol.Width, vol.Height, vol.Depth)

	// Build the gradient field
	fmt.Printf("Computing gradient field with %d workers...\n", cfg.Processing.Workers)
	startTime := time.Now()
	field := gradient.NewFieldWithParams(vol, &gradient.Params{
		Workers: cfg.Processing.Workers,
		Progress: func(completed, total int) {
			if cfg.Output.Verbose && completed%32 == 0 {
				fmt.Printf("  %d/%d slices\n", completed, total)
			}
		},
	})
	field.SetMode(interpolation)
	buildTime := time.Since(startTime)

	fmt.Printf("\nGradient field built in %.3f seconds\n", buildTime.Seconds())
	fmt.Printf("Interpolation mode: %s\n", field.Mode())
	fmt.Printf("Magnitude range: [%.6f, %.6f]\n", field.MinMagnitude(), field.MaxMagnitude())

	stats := field.MagnitudeStats()
	fmt.Println("\nGradient magnitude statistics:")
	fmt.Println("==============================")
	fmt.Printf("Mean:    %.6f\n", stats.Mean)
	fmt.Printf("Std dev: %.6f\n", stats.StdDev)
	fmt.Printf("Median:  %.6f\n", stats.Median)
	fmt.Printf("Min:     %.6f\n", stats.Min)
	fmt.Printf("Max:     %.6f\n", stats.Max)

	// Sample a single coordinate if requested
	if *sampleAt != "" {
		coord, err := parseCoord(*sampleAt)
		if err != nil {
			log.Fatalf("Invalid sample coordinate: %v", err)
		}

		s, err := field.Sample(coord)
		if err != nil {
			log.Fatalf("Sampling failed: %v", err)
		}
		fmt.Printf("\nSample at (%.3f, %.3f, %.3f):\n", coord.X, coord.Y, coord.Z)
		fmt.Printf("  Gradient:  (%.6f, %.6f, %.6f)\n", s.Vector.X, s.Vector.Y, s.Vector.Z)
		fmt.Printf("  Magnitude: %.6f\n", s.Magnitude)
	}

	// Export magnitude slices if requested
	if *extractSlices {
		fmt.Println("\nExporting gradient-magnitude slices along all axes...")
		viewer := visualization.NewViewer(field)

		for _, axis := range []string{"x", "y", "z"} {
			axisDir := filepath.Join(cfg.Output.SlicesDir, axis)
			fmt.Printf("Saving %s-axis slices to: %s\n", axis, axisDir)

			if err := viewer.SaveSliceSequence(axis, axisDir); err != nil {
				log.Printf("Warning: Failed to save %s-axis slices: %v", axis, err)
			}
		}

		fmt.Println("Slice export completed!")
	}
}

// loadVolume loads the configured dataset, picking the loader from the
// path type: directories hold JPEG slice stacks, files hold raw volumes.
func loadVolume(cfg *config.Config) (*volume.Volume, error) {
	info, err := os.Stat(cfg.Volume.Path)
	if err != nil {
		return nil, err
	}

	if info.IsDir() {
		return volume.LoadSlices(cfg.Volume.Path)
	}

	if cfg.Volume.Width <= 0 || cfg.Volume.Height <= 0 || cfg.Volume.Depth <= 0 {
		return nil, fmt.Errorf("raw volume input requires -width, -height and -depth")
	}

	sampleFormat, err := cfg.SampleFormat()
	if err != nil {
		return nil, err
	}

	return volume.LoadRaw(cfg.Volume.Path, cfg.Volume.Width, cfg.Volume.Height, cfg.Volume.Depth, sampleFormat)
}

// parseCoord parses a "x,y,z" coordinate string.
func parseCoord(s string) (r3.Vec, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return r3.Vec{}, fmt.Errorf("expected three comma-separated components, got %q", s)
	}

	var comps [3]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return r3.Vec{}, fmt.Errorf("component %d: %w", i, err)
		}
		comps[i] = v
	}

	return r3.Vec{X: comps[0], Y: comps[1], Z: comps[2]}, nil
}
