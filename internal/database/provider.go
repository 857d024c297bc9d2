package database

import (
	"context"
	"sync"
)

var (
	backendMu     sync.RWMutex
	backendName   string
	backendWriter func() TemplateWriter
)

// RegisterBackend registers the template store constructor of a backend.
// This is called by the backend packages to avoid import cycles.
// The last registration wins.
func RegisterBackend(name string, writer func() TemplateWriter) {
	backendMu.Lock()
	defer backendMu.Unlock()
	backendName = name
	backendWriter = writer
}

// ResetBackend forgets the registered backend.
func ResetBackend() {
	backendMu.Lock()
	defer backendMu.Unlock()
	backendName = ""
	backendWriter = nil
}

// IsInitialized returns whether a backend has been registered.
func IsInitialized() bool {
	backendMu.RLock()
	defer backendMu.RUnlock()
	return backendWriter != nil
}

// BackendName returns the name of the registered backend, or "" if none.
func BackendName() string {
	backendMu.RLock()
	defer backendMu.RUnlock()
	return backendName
}

// GetTemplateReader returns a TemplateReader from the registered backend
func GetTemplateReader(ctx context.Context) (TemplateReader, error) {
	return GetTemplateWriter(ctx)
}

// GetTemplateWriter returns a TemplateWriter from the registered backend
func GetTemplateWriter(ctx context.Context) (TemplateWriter, error) {
	backendMu.RLock()
	defer backendMu.RUnlock()
	if backendWriter == nil {
		return nil, ErrBackendNotInitialized
	}
	return backendWriter(), nil
}
