package facematch

import (
	"errors"
	"fmt"
	"image"
	"math"
	"strconv"
	"strings"

	"github.com/kozaktomas/faceid/internal/embedding"
)

// CropPadding is the fraction of the face box added on every side before cropping.
const CropPadding = 0.2

// ErrInvalidBox is returned for boxes that cannot describe a face region.
var ErrInvalidBox = errors.New("invalid face box")

// Box is a face bounding box in source image pixels.
type Box struct {
	X, Y, W, H float64
}

// ParseBox parses "x,y,w,h" in pixels.
func ParseBox(s string) (Box, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return Box{}, fmt.Errorf("%w: expected x,y,w,h, got %q", ErrInvalidBox, s)
	}

	var values [4]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Box{}, fmt.Errorf("%w: %q: %w", ErrInvalidBox, p, err)
		}
		values[i] = v
	}

	box := Box{X: values[0], Y: values[1], W: values[2], H: values[3]}
	if box.W <= 0 || box.H <= 0 {
		return Box{}, fmt.Errorf("%w: width and height must be positive", ErrInvalidBox)
	}
	return box, nil
}

// PaddedRect grows the box by padding on every side and clamps it to the image bounds.
// Returns an empty rectangle when the box lies fully outside the image.
func (b Box) PaddedRect(padding float64, width, height int) image.Rectangle {
	padX := b.W * padding
	padY := b.H * padding

	x1 := max(0, int(math.Floor(b.X-padX)))
	y1 := max(0, int(math.Floor(b.Y-padY)))
	x2 := min(width, int(math.Ceil(b.X+b.W+padX)))
	y2 := min(height, int(math.Ceil(b.Y+b.H+padY)))

	if x2 <= x1 || y2 <= y1 {
		return image.Rectangle{}
	}
	return image.Rect(x1, y1, x2, y2)
}

// LandmarkBounds returns the pixel box spanned by landmarks normalized to a width x height image.
func LandmarkBounds(points embedding.LandmarkSet, width, height int) Box {
	if len(points) == 0 {
		return Box{}
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range points {
		minX = min(minX, p.X)
		minY = min(minY, p.Y)
		maxX = max(maxX, p.X)
		maxY = max(maxY, p.Y)
	}

	return Box{
		X: minX * float64(width),
		Y: minY * float64(height),
		W: (maxX - minX) * float64(width),
		H: (maxY - minY) * float64(height),
	}
}

// ProjectLandmarks maps landmarks normalized to a width x height source image into
// coordinates normalized to crop. Depth is scaled with x, matching the mesh convention
// that z shares the unit of the image width.
func ProjectLandmarks(points embedding.LandmarkSet, crop image.Rectangle, width, height int) embedding.LandmarkSet {
	cw, ch := float64(crop.Dx()), float64(crop.Dy())
	if cw <= 0 || ch <= 0 {
		return points
	}

	out := make(embedding.LandmarkSet, len(points))
	for i, p := range points {
		q := embedding.Landmark{
			X: (p.X*float64(width) - float64(crop.Min.X)) / cw,
			Y: (p.Y*float64(height) - float64(crop.Min.Y)) / ch,
		}
		if p.Z != nil {
			z := *p.Z * float64(width) / cw
			q.Z = &z
		}
		out[i] = q
	}
	return out
}
