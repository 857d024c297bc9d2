package embedding

import (
	"fmt"
	"math"
)

// Generate validates the inputs and builds the normalized identity signature.
// Nothing is computed unless the set has exactly 468 points and the image buffer is well formed.
func Generate(points LandmarkSet, img FaceImage) (Embedding, error) {
	if err := points.Validate(); err != nil {
		return nil, err
	}
	if err := img.Validate(); err != nil {
		return nil, err
	}

	geometry, err := ExtractGeometry(points)
	if err != nil {
		return nil, fmt.Errorf("extracting geometry: %w", err)
	}

	return Compose(geometry, ExtractTexture(img, points)), nil
}

// Compose lays geometry features first and the texture slots right after, zero-pads to Dim
// and L2-normalizes. Anything that would overflow Dim is dropped.
func Compose(geometry []float32, texture [TextureSlots]float32) Embedding {
	out := make(Embedding, Dim)
	idx := copy(out, geometry)
	for i := 0; i < len(texture) && idx < Dim; i++ {
		out[idx] = texture[i]
		idx++
	}
	normalizeInPlace(out)
	return out
}

// Norm returns the Euclidean norm of v.
func Norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func normalizeInPlace(v []float32) {
	norm := Norm(v)
	if norm == 0 {
		return
	}
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
}
