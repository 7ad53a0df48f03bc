package services

import (
	"fmt"
	"sort"
	"sync"

	"github.com/Tabrezhira/sobha-his-forms/internal/core/domain"
	"github.com/Tabrezhira/sobha-his-forms/internal/core/ports/driven"
	"github.com/Tabrezhira/sobha-his-forms/internal/core/ports/driving"
	"github.com/Tabrezhira/sobha-his-forms/internal/logger"
)

// Ensure FormService implements the interface.
var _ driving.FormService = (*FormService)(nil)

// FormService is the registry of form schemas and opens form sessions.
type FormService struct {
	mu      sync.RWMutex
	schemas map[string]*domain.Schema
	deps    FormDeps
	opts    FormOptions
}

// NewFormService loads and validates every schema of the source.
func NewFormService(source driven.SchemaSource, deps FormDeps, opts FormOptions) (*FormService, error) {
	if deps.Normalizer == nil {
		deps.Normalizer = NewNormalizer(NormalizerOptions{})
	}
	s := &FormService{
		schemas: make(map[string]*domain.Schema),
		deps:    deps,
		opts:    opts,
	}
	if err := s.Reload(source); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload replaces the registered schemas with those of source.
// On error the previous schemas are kept.
func (s *FormService) Reload(source driven.SchemaSource) error {
	schemas, err := source.Load()
	if err != nil {
		return fmt.Errorf("load schemas: %w", err)
	}

	loaded := make(map[string]*domain.Schema, len(schemas))
	for i := range schemas {
		schema := schemas[i]
		if err := schema.Validate(); err != nil {
			return err
		}
		loaded[schema.Name] = &schema
	}

	s.mu.Lock()
	s.schemas = loaded
	s.mu.Unlock()
	logger.Debug("registered %d form schemas", len(loaded))
	return nil
}

// Forms returns every registered schema, sorted by name.
func (s *FormService) Forms() []domain.Schema {
	s.mu.RLock()
	defer s.mu.RUnlock()

	forms := make([]domain.Schema, 0, len(s.schemas))
	for _, schema := range s.schemas {
		forms = append(forms, *schema)
	}
	sort.Slice(forms, func(i, j int) bool {
		return forms[i].Name < forms[j].Name
	})
	return forms
}

// Schema returns a schema by name.
func (s *FormService) Schema(name string) (*domain.Schema, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	schema, ok := s.schemas[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownForm, name)
	}
	return schema, nil
}

// Open starts a form session.
func (s *FormService) Open(name string, initial map[string]any, recordID string) (driving.FormHandle, error) {
	schema, err := s.Schema(name)
	if err != nil {
		return nil, err
	}
	c := NewFormController(schema, s.deps, s.opts)
	if initial != nil || recordID != "" {
		c.Seed(initial, recordID)
	}
	return c, nil
}

// Normalize produces the wire payload for a state without a session.
func (s *FormService) Normalize(name string, state *domain.FormState) (domain.Payload, error) {
	schema, err := s.Schema(name)
	if err != nil {
		return nil, err
	}
	return s.deps.Normalizer.Normalize(schema, state), nil
}
