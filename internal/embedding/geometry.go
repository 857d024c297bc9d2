package embedding

import (
	"fmt"
	"math"
)

// ExtractGeometry computes the landmark-derived features in their fixed order:
// anchor coordinates, pairwise distances, angles, then scale-invariant ratios.
// Indices beyond the supplied set are skipped without a placeholder.
func ExtractGeometry(points LandmarkSet) ([]float32, error) {
	if len(points) < MeshLandmarkCount {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInsufficientLandmarks, len(points), MeshLandmarkCount)
	}

	n := len(points)
	features := make([]float32, 0, len(anchorPoints)*3+len(distancePairs)+len(angleTriples)+len(ratioPairs))

	for _, idx := range anchorPoints {
		if idx >= n {
			continue
		}
		p := points[idx]
		features = append(features, float32(p.X), float32(p.Y))
		if p.Z != nil {
			features = append(features, float32(*p.Z))
		}
	}

	for _, pair := range distancePairs {
		if pair[0] >= n || pair[1] >= n {
			continue
		}
		features = append(features, float32(distance(points[pair[0]], points[pair[1]])))
	}

	for _, t := range angleTriples {
		if t[0] >= n || t[1] >= n || t[2] >= n {
			continue
		}
		features = append(features, float32(angleAt(points[t[0]], points[t[1]], points[t[2]])))
	}

	for _, r := range ratioPairs {
		if r[0][0] >= n || r[0][1] >= n || r[1][0] >= n || r[1][1] >= n {
			continue
		}
		num := distance(points[r[0][0]], points[r[0][1]])
		den := distance(points[r[1][0]], points[r[1][1]])
		ratio := 0.0
		if den > 0 {
			ratio = num / den
		}
		features = append(features, float32(ratio))
	}

	return features, nil
}

// distance is the 3D Euclidean distance; missing depth counts as 0.
func distance(a, b Landmark) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Depth() - b.Depth()
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// angleAt returns the planar angle at p2 between p2->p1 and p2->p3, in radians.
func angleAt(p1, p2, p3 Landmark) float64 {
	v1x, v1y := p1.X-p2.X, p1.Y-p2.Y
	v2x, v2y := p3.X-p2.X, p3.Y-p2.Y

	mag1 := math.Sqrt(v1x*v1x + v1y*v1y)
	mag2 := math.Sqrt(v2x*v2x + v2y*v2y)
	if mag1 == 0 || mag2 == 0 {
		return 0
	}

	cos := (v1x*v2x + v1y*v2y) / (mag1 * mag2)
	return math.Acos(max(-1, min(1, cos)))
}
