package database

import (
	"context"
)

// TemplateReader provides read-only access to enrolled templates
type TemplateReader interface {
	// Get retrieves a template by ID, returns ErrNotFound if missing
	Get(ctx context.Context, id string) (*EnrolledTemplate, error)
	// FindByName returns templates whose normalized name equals NameKey(name)
	FindByName(ctx context.Context, name string) ([]EnrolledTemplate, error)
	// List returns every template ordered by creation time, then ID.
	// This is the gallery handed to the matcher, so it includes embeddings.
	List(ctx context.Context) ([]EnrolledTemplate, error)
	// Count returns the number of enrolled templates
	Count(ctx context.Context) (int, error)
}

// TemplateWriter provides write access to enrolled templates
type TemplateWriter interface {
	TemplateReader

	// Save inserts the template, or replaces the one with the same ID
	Save(ctx context.Context, template *EnrolledTemplate) error

	// Delete removes a template, returns ErrNotFound if missing
	Delete(ctx context.Context, id string) error

	// DeleteAll removes every template and returns how many were removed
	DeleteAll(ctx context.Context) (int, error)
}
