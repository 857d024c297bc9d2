package database

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kozaktomas/faceid/internal/embedding"
	"github.com/kozaktomas/faceid/internal/facematch"
)

// MaxNameLength bounds enrolled display names.
const MaxNameLength = 128

// EnrolledTemplate is one enrolled person: a display name and the embedding captured at enrollment.
type EnrolledTemplate struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Embedding []float32 `json:"embedding"`
	CreatedAt time.Time `json:"createdAt"`
}

// NameKey returns the normalized name used for lookups (lowercase, no diacritics, spaces for dashes).
func (t *EnrolledTemplate) NameKey() string {
	return NameKey(t.Name)
}

// NameKey normalizes a display name for comparison, e.g. "Jan-Novák" and "jan novak" share a key.
func NameKey(name string) string {
	return strings.TrimSpace(facematch.NormalizePersonName(name))
}

// Validate checks the template before it is persisted.
func (t *EnrolledTemplate) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("template id is required")
	}
	name := strings.TrimSpace(t.Name)
	if name == "" {
		return fmt.Errorf("template %s: name is required", t.ID)
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return fmt.Errorf("template %s: name longer than %d characters", t.ID, MaxNameLength)
	}
	if len(t.Embedding) != embedding.Dim {
		return fmt.Errorf("template %s: %w: got %d values, want %d", t.ID, embedding.ErrInvalidDimension, len(t.Embedding), embedding.Dim)
	}
	return nil
}

// ExportData is the portable dump of all enrolled templates.
type ExportData struct {
	Version    int                `json:"version"`
	ExportedAt time.Time          `json:"exportedAt"`
	Templates  []EnrolledTemplate `json:"templates"`
}

// CurrentExportVersion is written by export and the only version import accepts.
const CurrentExportVersion = 1
