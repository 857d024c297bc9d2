package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kozaktomas/faceid/internal/database"
	"github.com/kozaktomas/faceid/internal/embedding"
	"github.com/pgvector/pgvector-go"
)

// TemplateRepository provides PostgreSQL-backed template storage.
// Embeddings live in a vector(512) column; comparison stays in Go.
type TemplateRepository struct {
	pool *Pool
}

// NewTemplateRepository creates a new PostgreSQL template repository.
func NewTemplateRepository(pool *Pool) *TemplateRepository {
	return &TemplateRepository{pool: pool}
}

const templateColumns = `id, name, embedding, created_at`

// Get retrieves a template by ID.
func (r *TemplateRepository) Get(ctx context.Context, id string) (*database.EnrolledTemplate, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+templateColumns+` FROM templates WHERE id = $1`, id)

	tpl, err := scanTemplate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("template %s: %w", id, database.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &tpl, nil
}

// FindByName returns templates whose normalized name matches.
func (r *TemplateRepository) FindByName(ctx context.Context, name string) ([]database.EnrolledTemplate, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+templateColumns+` FROM templates WHERE name_key = $1 ORDER BY created_at, id`,
		database.NameKey(name),
	)
	if err != nil {
		return nil, fmt.Errorf("query templates by name: %w", err)
	}
	defer rows.Close()

	return scanTemplates(rows)
}

// List returns every template ordered by creation time.
func (r *TemplateRepository) List(ctx context.Context) ([]database.EnrolledTemplate, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+templateColumns+` FROM templates ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("query templates: %w", err)
	}
	defer rows.Close()

	return scanTemplates(rows)
}

// Count returns the number of enrolled templates.
func (r *TemplateRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM templates").Scan(&count); err != nil {
		return 0, fmt.Errorf("count templates: %w", err)
	}
	return count, nil
}

// Save inserts the template or replaces the one with the same ID.
func (r *TemplateRepository) Save(ctx context.Context, tpl *database.EnrolledTemplate) error {
	if err := tpl.Validate(); err != nil {
		return err
	}
	if tpl.CreatedAt.IsZero() {
		tpl.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO templates (id, name, name_key, embedding, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			name_key = EXCLUDED.name_key,
			embedding = EXCLUDED.embedding,
			created_at = EXCLUDED.created_at
	`
	_, err := r.pool.Exec(ctx, query,
		tpl.ID, tpl.Name, tpl.NameKey(), pgvector.NewVector(tpl.Embedding), tpl.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save template %s: %w", tpl.ID, err)
	}
	return nil
}

// Delete removes a template by ID.
func (r *TemplateRepository) Delete(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, "DELETE FROM templates WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete template %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete template %s: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("template %s: %w", id, database.ErrNotFound)
	}
	return nil
}

// DeleteAll removes every template.
func (r *TemplateRepository) DeleteAll(ctx context.Context) (int, error) {
	result, err := r.pool.Exec(ctx, "DELETE FROM templates")
	if err != nil {
		return 0, fmt.Errorf("delete templates: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete templates: %w", err)
	}
	return int(affected), nil
}

func scanTemplate(scanner interface{ Scan(...any) error }) (database.EnrolledTemplate, error) {
	var tpl database.EnrolledTemplate
	var vec pgvector.Vector

	if err := scanner.Scan(&tpl.ID, &tpl.Name, &vec, &tpl.CreatedAt); err != nil {
		return tpl, fmt.Errorf("scan template: %w", err)
	}

	emb, err := embedding.FromSlice(vec.Slice())
	if err != nil {
		return tpl, fmt.Errorf("template %s: %w", tpl.ID, err)
	}
	tpl.Embedding = emb
	tpl.CreatedAt = tpl.CreatedAt.UTC()
	return tpl, nil
}

func scanTemplates(rows *sql.Rows) ([]database.EnrolledTemplate, error) {
	var templates []database.EnrolledTemplate
	for rows.Next() {
		tpl, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, tpl)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate templates: %w", err)
	}

	return templates, nil
}
