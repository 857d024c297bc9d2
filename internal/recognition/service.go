// Package recognition orchestrates enrollment and identification on top of the
// embedding engine, the matcher and a template store.
package recognition

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/kozaktomas/faceid/internal/database"
	"github.com/kozaktomas/faceid/internal/embedding"
	"github.com/kozaktomas/faceid/internal/matcher"
)

var (
	// ErrInvalidName is returned for an empty or overlong display name.
	ErrInvalidName = errors.New("invalid name")

	// ErrStoreUnavailable wraps template store failures that are not about the request itself.
	ErrStoreUnavailable = errors.New("template store unavailable")
)

// storeError marks infrastructure failures so callers can tell them from bad input.
func storeError(op string, err error) error {
	if errors.Is(err, database.ErrNotFound) || errors.Is(err, embedding.ErrInvalidDimension) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, op, err)
}

// Probe is one captured face: its mesh and the crop it was detected in.
type Probe struct {
	Landmarks embedding.LandmarkSet
	Image     embedding.FaceImage
}

// Service runs enrollment and identification. It is safe for concurrent use.
type Service struct {
	store     database.TemplateWriter
	pool      *Pool
	threshold float64

	newID func() string
	now   func() time.Time
}

// NewService creates a service. A zero threshold uses matcher.DefaultThreshold.
func NewService(store database.TemplateWriter, pool *Pool, threshold float64) *Service {
	if pool == nil {
		pool = NewPool(0)
	}
	return &Service{
		store:     store,
		pool:      pool,
		threshold: threshold,
		newID:     uuid.NewString,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Threshold returns the default match threshold of the service.
func (s *Service) Threshold() float64 {
	threshold, err := matcher.Options{Threshold: s.threshold}.ResolveThreshold()
	if err != nil {
		return matcher.DefaultThreshold
	}
	return threshold
}

// Embed computes the embedding of a probe on the worker pool.
// Meshes with iris refinement are trimmed to the base mesh first.
func (s *Service) Embed(ctx context.Context, probe Probe) (embedding.Embedding, error) {
	points := probe.Landmarks.TrimIris()

	var emb embedding.Embedding
	err := s.pool.Do(ctx, func() error {
		var err error
		emb, err = embedding.Generate(points, probe.Image)
		return err
	})
	if err != nil {
		return nil, err
	}
	return emb, nil
}

// Enroll computes the probe embedding and stores it under a new ID.
func (s *Service) Enroll(ctx context.Context, name string, probe Probe) (*database.EnrolledTemplate, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > database.MaxNameLength {
		return nil, fmt.Errorf("%w: must be 1-%d characters", ErrInvalidName, database.MaxNameLength)
	}

	emb, err := s.Embed(ctx, probe)
	if err != nil {
		return nil, err
	}

	tpl := &database.EnrolledTemplate{
		ID:        s.newID(),
		Name:      name,
		Embedding: emb,
		CreatedAt: s.now(),
	}
	if err := s.store.Save(ctx, tpl); err != nil {
		return nil, storeError("saving template", err)
	}

	log.WithFields(log.Fields{
		"id":   tpl.ID,
		"name": tpl.Name,
	}).Info("Enrolled face")

	return tpl, nil
}

// Identify computes the probe embedding and compares it against the whole gallery.
// A zero threshold uses the service default.
func (s *Service) Identify(ctx context.Context, probe Probe, threshold float64) (matcher.MatchResult, error) {
	emb, err := s.Embed(ctx, probe)
	if err != nil {
		return matcher.MatchResult{}, err
	}
	return s.IdentifyEmbedding(ctx, emb, threshold)
}

// IdentifyEmbedding compares a precomputed embedding against the gallery.
func (s *Service) IdentifyEmbedding(ctx context.Context, query []float32, threshold float64) (matcher.MatchResult, error) {
	if threshold == 0 {
		threshold = s.threshold
	}
	opts := matcher.Options{Threshold: threshold}
	resolved, err := opts.ResolveThreshold()
	if err != nil {
		return matcher.MatchResult{}, err
	}

	templates, err := s.store.List(ctx)
	if err != nil {
		return matcher.MatchResult{}, storeError("loading gallery", err)
	}
	gallery := Gallery(templates)

	scores, err := matcher.ScoreGallery(query, gallery)
	if err != nil {
		return matcher.MatchResult{}, err
	}

	if log.IsLevelEnabled(log.DebugLevel) {
		for _, sc := range scores {
			log.WithFields(log.Fields{
				"id":         sc.Template.ID,
				"name":       sc.Template.Name,
				"similarity": sc.Similarity,
			}).Debug("Scored template")
		}
	}

	result := matcher.Decide(scores, resolved)

	log.WithFields(log.Fields{
		"outcome":    result.Outcome,
		"candidate":  result.CandidateName,
		"similarity": result.Similarity,
		"second":     result.SecondSimilarity,
		"gap":        result.Gap,
		"min_gap":    result.MinGap,
		"threshold":  result.Threshold,
		"gallery":    result.GallerySize,
	}).Info("Identification decision")

	return result, nil
}

// List returns all enrolled templates.
func (s *Service) List(ctx context.Context) ([]database.EnrolledTemplate, error) {
	templates, err := s.store.List(ctx)
	if err != nil {
		return nil, storeError("listing templates", err)
	}
	return templates, nil
}

// Get returns one template.
func (s *Service) Get(ctx context.Context, id string) (*database.EnrolledTemplate, error) {
	tpl, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, storeError("loading template", err)
	}
	return tpl, nil
}

// Count returns the gallery size.
func (s *Service) Count(ctx context.Context) (int, error) {
	n, err := s.store.Count(ctx)
	if err != nil {
		return 0, storeError("counting templates", err)
	}
	return n, nil
}

// Delete removes one template.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return storeError("deleting template", err)
	}
	log.WithField("id", id).Info("Deleted face")
	return nil
}

// Gallery converts stored templates into matcher input, keeping store order.
func Gallery(templates []database.EnrolledTemplate) []matcher.Template {
	gallery := make([]matcher.Template, len(templates))
	for i, tpl := range templates {
		gallery[i] = matcher.Template{ID: tpl.ID, Name: tpl.Name, Embedding: tpl.Embedding}
	}
	return gallery
}
