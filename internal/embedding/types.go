// Package embedding turns a 468-point face mesh and the matching face crop into a
// fixed-length, L2-normalized identity signature.
//
// Feature layout (slot order is part of the stored format):
//   - geometry.go: anchor coordinates, distances, angles, ratios
//   - texture.go: per-region color statistics (64 reserved slots)
//   - embedding.go: composition, zero padding and normalization
package embedding

import (
	"errors"
	"fmt"
)

const (
	// MeshLandmarkCount is the number of points in a face mesh without iris refinement.
	MeshLandmarkCount = 468

	// Dim is the fixed embedding length.
	Dim = 512

	// TextureSlots is the capacity reserved for texture features.
	TextureSlots = 64

	// MaxImageDimension bounds the width and height of a face image.
	MaxImageDimension = 16384
)

var (
	// ErrInvalidLandmarkCount is returned when a landmark set does not have exactly 468 points.
	ErrInvalidLandmarkCount = errors.New("invalid landmark count")

	// ErrInsufficientLandmarks is returned when fewer than 468 points are supplied.
	ErrInsufficientLandmarks = fmt.Errorf("%w: insufficient landmarks", ErrInvalidLandmarkCount)

	// ErrInvalidImage is returned when the pixel buffer does not match width*height*4.
	ErrInvalidImage = errors.New("invalid face image")

	// ErrInvalidDimension is returned when a serialized embedding is not 512 floats long.
	ErrInvalidDimension = errors.New("invalid embedding dimension")
)

// Landmark is one normalized mesh point. Z is optional depth.
type Landmark struct {
	X float64  `json:"x"`
	Y float64  `json:"y"`
	Z *float64 `json:"z,omitempty"`
}

// Depth returns Z, or 0 when the point carries no depth.
func (l Landmark) Depth() float64 {
	if l.Z == nil {
		return 0
	}
	return *l.Z
}

// LandmarkSet is an ordered face mesh. Index i always denotes the same anatomical point.
type LandmarkSet []Landmark

// TrimIris drops points past the base mesh (e.g. the 10 iris points of a refined 478-point mesh).
func (s LandmarkSet) TrimIris() LandmarkSet {
	if len(s) > MeshLandmarkCount {
		return s[:MeshLandmarkCount]
	}
	return s
}

// Validate checks that the set has exactly MeshLandmarkCount points.
func (s LandmarkSet) Validate() error {
	switch {
	case len(s) < MeshLandmarkCount:
		return fmt.Errorf("%w: got %d, want %d", ErrInsufficientLandmarks, len(s), MeshLandmarkCount)
	case len(s) > MeshLandmarkCount:
		return fmt.Errorf("%w: got %d, want %d", ErrInvalidLandmarkCount, len(s), MeshLandmarkCount)
	}
	return nil
}

// FaceImage is a caller-owned RGBA8 buffer, row-major with a stride of Width*4.
// It shares the normalized coordinate space of the landmark set captured with it.
type FaceImage struct {
	Width  int
	Height int
	Pix    []uint8
}

// Validate checks that the buffer size matches the declared dimensions.
func (img FaceImage) Validate() error {
	if img.Width <= 0 || img.Height <= 0 || img.Width > MaxImageDimension || img.Height > MaxImageDimension {
		return fmt.Errorf("%w: dimensions %dx%d", ErrInvalidImage, img.Width, img.Height)
	}
	if len(img.Pix) != img.Width*img.Height*4 {
		return fmt.Errorf("%w: buffer has %d bytes, want %d", ErrInvalidImage, len(img.Pix), img.Width*img.Height*4)
	}
	return nil
}

// Embedding is a Dim-long identity signature.
type Embedding []float32
