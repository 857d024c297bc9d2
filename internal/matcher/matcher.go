package matcher

import "fmt"

// Score is the similarity of the query to one gallery template.
type Score struct {
	Template   *Template
	Similarity float64
}

// MinGap returns the separation the best score needs over the runner-up.
// Higher scores need less separation.
func MinGap(highest float64) float64 {
	switch {
	case highest >= 0.95:
		return 0.008
	case highest >= 0.90:
		return 0.015
	case highest >= 0.85:
		return 0.03
	default:
		return 0.05
	}
}

// ResolveThreshold applies the default and validates the range.
func (o Options) ResolveThreshold() (float64, error) {
	if o.Threshold == 0 {
		return DefaultThreshold, nil
	}
	if o.Threshold < 0 || o.Threshold > 1 {
		return 0, fmt.Errorf("%w: got %v", ErrInvalidThreshold, o.Threshold)
	}
	return o.Threshold, nil
}

// ScoreGallery computes the similarity of query to every template, in gallery order.
func ScoreGallery(query []float32, gallery []Template) ([]Score, error) {
	scores := make([]Score, len(gallery))
	for i := range gallery {
		similarity, err := CosineSimilarity(query, gallery[i].Embedding)
		if err != nil {
			return nil, fmt.Errorf("scoring template %s: %w", gallery[i].ID, err)
		}
		scores[i] = Score{Template: &gallery[i], Similarity: similarity}
	}
	return scores, nil
}

// FindBestMatch compares query against every template and applies the threshold and
// gap rules. Decision outcomes are values; only malformed input returns an error.
func FindBestMatch(query []float32, gallery []Template, opts Options) (MatchResult, error) {
	threshold, err := opts.ResolveThreshold()
	if err != nil {
		return MatchResult{}, err
	}

	scores, err := ScoreGallery(query, gallery)
	if err != nil {
		return MatchResult{}, err
	}

	return Decide(scores, threshold), nil
}

// Decide applies the decision policy to precomputed scores.
func Decide(scores []Score, threshold float64) MatchResult {
	result := MatchResult{Threshold: threshold, GallerySize: len(scores)}
	if len(scores) == 0 {
		result.Outcome = OutcomeEmptyGallery
		return result
	}

	var best *Template
	highest, second := 0.0, 0.0
	for _, s := range scores {
		if s.Similarity > highest {
			second = highest
			highest = s.Similarity
			best = s.Template
		} else if s.Similarity > second {
			second = s.Similarity
		}
	}

	result.Similarity = highest
	result.SecondSimilarity = second
	result.Gap = highest - second
	result.MinGap = MinGap(highest)
	if best != nil {
		result.CandidateID = best.ID
		result.CandidateName = best.Name
	}

	switch {
	case best == nil || highest < threshold:
		result.Outcome = OutcomeNoMatch
	case result.Gap >= result.MinGap:
		result.Outcome = OutcomeMatched
	default:
		result.Outcome = OutcomeAmbiguous
	}

	return result
}
