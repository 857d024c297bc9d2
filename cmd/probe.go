package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/faceid/internal/embedding"
	"github.com/kozaktomas/faceid/internal/faceimage"
	"github.com/kozaktomas/faceid/internal/facematch"
	"github.com/kozaktomas/faceid/internal/recognition"
)

// parseLandmarks accepts either {"points": [...]} or a bare array of points.
func parseLandmarks(data []byte) (embedding.LandmarkSet, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New("landmarks file is empty")
	}

	if data[0] == '[' {
		var points embedding.LandmarkSet
		if err := json.Unmarshal(data, &points); err != nil {
			return nil, fmt.Errorf("parsing landmarks: %w", err)
		}
		return points, nil
	}

	var wrapper struct {
		Points embedding.LandmarkSet `json:"points"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("parsing landmarks: %w", err)
	}
	if wrapper.Points == nil {
		return nil, errors.New(`landmarks file has no "points"`)
	}
	return wrapper.Points, nil
}

// loadProbe reads a capture from disk. The image is cropped around the box, or
// around the landmarks when no box is given, with padding; the landmarks are
// re-projected into the crop.
func loadProbe(landmarksPath, imagePath, box string) (recognition.Probe, error) {
	data, err := os.ReadFile(landmarksPath)
	if err != nil {
		return recognition.Probe{}, fmt.Errorf("reading landmarks: %w", err)
	}
	points, err := parseLandmarks(data)
	if err != nil {
		return recognition.Probe{}, err
	}
	points = points.TrimIris()
	if err := points.Validate(); err != nil {
		return recognition.Probe{}, err
	}

	img, err := faceimage.Load(imagePath)
	if err != nil {
		return recognition.Probe{}, err
	}

	var b facematch.Box
	if box != "" {
		if b, err = facematch.ParseBox(box); err != nil {
			return recognition.Probe{}, err
		}
	} else {
		bounds := img.Bounds()
		b = facematch.LandmarkBounds(points, bounds.Dx(), bounds.Dy())
		if b.W <= 0 || b.H <= 0 {
			// Collapsed mesh: nothing to crop around.
			return recognition.Probe{Landmarks: points, Image: faceimage.ToFaceImage(img)}, nil
		}
	}

	face, projected, err := faceimage.CropFace(img, b, points)
	if err != nil {
		return recognition.Probe{}, err
	}
	return recognition.Probe{Landmarks: projected, Image: face}, nil
}

// probeFromFlags loads the capture named by the flags from addProbeFlags.
func probeFromFlags(cmd *cobra.Command) (recognition.Probe, error) {
	return loadProbe(
		mustGetString(cmd, "landmarks"),
		mustGetString(cmd, "image"),
		mustGetString(cmd, "box"),
	)
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	return nil
}
