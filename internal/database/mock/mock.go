// Package mock provides mock implementations of database interfaces for testing.
package mock

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/kozaktomas/faceid/internal/database"
)

// MockTemplateStore is an in-memory implementation of database.TemplateWriter
type MockTemplateStore struct {
	mu        sync.RWMutex
	templates map[string]*database.EnrolledTemplate

	// Error injection
	GetError        error
	FindByNameError error
	ListError       error
	CountError      error
	SaveError       error
	DeleteError     error
	DeleteAllError  error
}

// NewMockTemplateStore creates a new mock template store
func NewMockTemplateStore() *MockTemplateStore {
	return &MockTemplateStore{
		templates: make(map[string]*database.EnrolledTemplate),
	}
}

// AddTemplate adds a template to the mock store without validation
func (m *MockTemplateStore) AddTemplate(tpl database.EnrolledTemplate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.templates[tpl.ID] = &tpl
}

// Get retrieves a template by ID
func (m *MockTemplateStore) Get(ctx context.Context, id string) (*database.EnrolledTemplate, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	tpl, ok := m.templates[id]
	if !ok {
		return nil, fmt.Errorf("template %s: %w", id, database.ErrNotFound)
	}
	cp := *tpl
	return &cp, nil
}

// FindByName returns templates with the same normalized name
func (m *MockTemplateStore) FindByName(ctx context.Context, name string) ([]database.EnrolledTemplate, error) {
	if m.FindByNameError != nil {
		return nil, m.FindByNameError
	}
	key := database.NameKey(name)

	var result []database.EnrolledTemplate
	for _, tpl := range m.sorted() {
		if tpl.NameKey() == key {
			result = append(result, tpl)
		}
	}
	return result, nil
}

// List returns all templates ordered by creation time, then ID
func (m *MockTemplateStore) List(ctx context.Context) ([]database.EnrolledTemplate, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	return m.sorted(), nil
}

// Count returns the number of templates
func (m *MockTemplateStore) Count(ctx context.Context) (int, error) {
	if m.CountError != nil {
		return 0, m.CountError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.templates), nil
}

// Save stores a template, replacing any with the same ID
func (m *MockTemplateStore) Save(ctx context.Context, tpl *database.EnrolledTemplate) error {
	if m.SaveError != nil {
		return m.SaveError
	}
	if err := tpl.Validate(); err != nil {
		return err
	}
	if tpl.CreatedAt.IsZero() {
		tpl.CreatedAt = time.Now().UTC()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *tpl
	m.templates[tpl.ID] = &cp
	return nil
}

// Delete removes a template
func (m *MockTemplateStore) Delete(ctx context.Context, id string) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.templates[id]; !ok {
		return fmt.Errorf("template %s: %w", id, database.ErrNotFound)
	}
	delete(m.templates, id)
	return nil
}

// DeleteAll removes every template
func (m *MockTemplateStore) DeleteAll(ctx context.Context) (int, error) {
	if m.DeleteAllError != nil {
		return 0, m.DeleteAllError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.templates)
	m.templates = make(map[string]*database.EnrolledTemplate)
	return n, nil
}

func (m *MockTemplateStore) sorted() []database.EnrolledTemplate {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]database.EnrolledTemplate, 0, len(m.templates))
	for _, tpl := range m.templates {
		result = append(result, *tpl)
	}
	slices.SortFunc(result, func(a, b database.EnrolledTemplate) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
	return result
}

var _ database.TemplateWriter = (*MockTemplateStore)(nil)
