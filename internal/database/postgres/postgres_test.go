//go:build integration

package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/kozaktomas/faceid/internal/config"
	"github.com/kozaktomas/faceid/internal/database"
	"github.com/kozaktomas/faceid/internal/embedding"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestContainer(t *testing.T) (*Pool, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "pgvector/pgvector:pg16",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("Docker not available or container failed to start, skipping integration test: %v", err)
		return nil, func() {}
	}
	if container == nil {
		t.Skip("Docker not available, skipping integration test")
		return nil, func() {}
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	dbURL := fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

	cfg := &config.DatabaseConfig{
		URL:          dbURL,
		MaxOpenConns: 5,
		MaxIdleConns: 2,
	}

	pool, err := NewPool(cfg)
	if err != nil {
		container.Terminate(ctx)
		t.Fatalf("Failed to create pool: %v", err)
	}

	// Run migrations
	if err := pool.Migrate(ctx); err != nil {
		pool.Close()
		container.Terminate(ctx)
		t.Fatalf("Failed to run migrations: %v", err)
	}

	cleanup := func() {
		pool.Close()
		container.Terminate(ctx)
	}

	return pool, cleanup
}

func testEmbedding(seed int) []float32 {
	v := make([]float32, embedding.Dim)
	for i := range v {
		v[i] = float32((i+seed)%17) / 17.0
	}
	return v
}

func TestTemplateRepository(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	if pool == nil {
		return
	}
	defer cleanup()

	ctx := context.Background()
	repo := NewTemplateRepository(pool)
	createdAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("SaveAndGet", func(t *testing.T) {
		tpl := &database.EnrolledTemplate{ID: "id-1", Name: "Jan Novák", Embedding: testEmbedding(1), CreatedAt: createdAt}
		if err := repo.Save(ctx, tpl); err != nil {
			t.Fatalf("Failed to save template: %v", err)
		}

		got, err := repo.Get(ctx, "id-1")
		if err != nil {
			t.Fatalf("Failed to get template: %v", err)
		}
		if got.Name != "Jan Novák" {
			t.Errorf("Expected name 'Jan Novák', got '%s'", got.Name)
		}
		if !got.CreatedAt.Equal(createdAt) {
			t.Errorf("Expected created_at %v, got %v", createdAt, got.CreatedAt)
		}
		if len(got.Embedding) != embedding.Dim {
			t.Fatalf("Expected %d dimensions, got %d", embedding.Dim, len(got.Embedding))
		}
		for i := range got.Embedding {
			if got.Embedding[i] != tpl.Embedding[i] {
				t.Fatalf("Embedding[%d] = %v, want %v", i, got.Embedding[i], tpl.Embedding[i])
			}
		}
	})

	t.Run("GetMissing", func(t *testing.T) {
		_, err := repo.Get(ctx, "missing")
		if !errors.Is(err, database.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("SaveRejectsWrongDimension", func(t *testing.T) {
		err := repo.Save(ctx, &database.EnrolledTemplate{ID: "bad", Name: "Bad", Embedding: make([]float32, 3)})
		if !errors.Is(err, embedding.ErrInvalidDimension) {
			t.Errorf("Expected ErrInvalidDimension, got %v", err)
		}
	})

	t.Run("FindByName", func(t *testing.T) {
		got, err := repo.FindByName(ctx, "jan-novak")
		if err != nil {
			t.Fatalf("Failed to find by name: %v", err)
		}
		if len(got) != 1 || got[0].ID != "id-1" {
			t.Errorf("Expected [id-1], got %+v", got)
		}
	})

	t.Run("ListAndCount", func(t *testing.T) {
		for i := 2; i <= 3; i++ {
			tpl := &database.EnrolledTemplate{
				ID:        fmt.Sprintf("id-%d", i),
				Name:      fmt.Sprintf("Person %d", i),
				Embedding: testEmbedding(i),
				CreatedAt: createdAt.Add(time.Duration(i) * time.Minute),
			}
			if err := repo.Save(ctx, tpl); err != nil {
				t.Fatalf("Failed to save template: %v", err)
			}
		}

		list, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("Failed to list: %v", err)
		}
		if len(list) != 3 {
			t.Fatalf("Expected 3 templates, got %d", len(list))
		}
		for i, want := range []string{"id-1", "id-2", "id-3"} {
			if list[i].ID != want {
				t.Errorf("list[%d].ID = %s, want %s", i, list[i].ID, want)
			}
		}

		count, err := repo.Count(ctx)
		if err != nil {
			t.Fatalf("Failed to count: %v", err)
		}
		if count != 3 {
			t.Errorf("Expected 3, got %d", count)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := repo.Delete(ctx, "id-2"); err != nil {
			t.Fatalf("Failed to delete: %v", err)
		}
		if err := repo.Delete(ctx, "id-2"); !errors.Is(err, database.ErrNotFound) {
			t.Errorf("Expected ErrNotFound on second delete, got %v", err)
		}
	})

	t.Run("DeleteAll", func(t *testing.T) {
		removed, err := repo.DeleteAll(ctx)
		if err != nil {
			t.Fatalf("Failed to delete all: %v", err)
		}
		if removed != 2 {
			t.Errorf("Expected 2 removed, got %d", removed)
		}
	})
}

func TestMigrationsApplied(t *testing.T) {
	pool, cleanup := setupTestContainer(t)
	if pool == nil {
		return
	}
	defer cleanup()

	versions, err := pool.MigrationsApplied(context.Background())
	if err != nil {
		t.Fatalf("Failed to list migrations: %v", err)
	}
	if len(versions) == 0 || versions[0] != "001_templates.sql" {
		t.Errorf("Expected 001_templates.sql applied, got %v", versions)
	}

	// A second run is a no-op.
	if err := pool.Migrate(context.Background()); err != nil {
		t.Errorf("Second migrate failed: %v", err)
	}
}
