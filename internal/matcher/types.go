// Package matcher scores a query embedding against an enrolled gallery and decides,
// conservatively, whether it identifies one person.
package matcher

import "errors"

var (
	// ErrLengthMismatch is returned when comparing vectors of different lengths,
	// which only happens across incompatible embedding layouts.
	ErrLengthMismatch = errors.New("vector length mismatch")

	// ErrInvalidThreshold is returned for a threshold outside (0, 1].
	ErrInvalidThreshold = errors.New("match threshold must be in (0, 1]")
)

// DefaultThreshold is the minimum similarity a candidate needs to be accepted.
const DefaultThreshold = 0.85

// Outcome is the decision for one identification attempt.
type Outcome string

const (
	OutcomeMatched      Outcome = "matched"       // Clear winner above threshold
	OutcomeNoMatch      Outcome = "no_match"      // Best candidate below threshold
	OutcomeAmbiguous    Outcome = "ambiguous"     // Above threshold but too close to the runner-up
	OutcomeEmptyGallery Outcome = "empty_gallery" // Nothing enrolled
)

// Template is one enrolled identity in the gallery.
type Template struct {
	ID        string
	Name      string
	Embedding []float32
}

// Options configures a single decision.
type Options struct {
	// Threshold overrides DefaultThreshold when non-zero.
	Threshold float64
}

// MatchResult is the outcome of comparing a query against the gallery.
// Candidate fields describe the top-scoring template whenever one exists, including
// ambiguous and below-threshold results; only Accepted() grants identity.
type MatchResult struct {
	CandidateID   string  `json:"candidate_id,omitempty"`
	CandidateName string  `json:"candidate_name,omitempty"`
	Similarity    float64 `json:"similarity"`
	Outcome       Outcome `json:"outcome"`

	SecondSimilarity float64 `json:"second_similarity"`
	Gap              float64 `json:"gap"`
	MinGap           float64 `json:"min_gap"`
	Threshold        float64 `json:"threshold"`
	GallerySize      int     `json:"gallery_size"`
}

// Accepted reports whether the result identifies the candidate.
// Ambiguous results are rejected exactly like no_match.
func (r MatchResult) Accepted() bool {
	return r.Outcome == OutcomeMatched
}
