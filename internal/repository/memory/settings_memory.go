// Package memory holds process-local repository implementations used when no database
// is configured.
package memory

import (
	"context"
	"encoding/json"
	"slices"
	"sync"

	"healthdash/internal/repository"
)

// SettingsMemory is an in-memory repository.SettingsRepository.
type SettingsMemory struct {
	mu     sync.RWMutex
	values map[string]json.RawMessage
}

// NewSettingsMemory creates an empty repository.
func NewSettingsMemory() *SettingsMemory {
	return &SettingsMemory{values: make(map[string]json.RawMessage)}
}

var _ repository.SettingsRepository = (*SettingsMemory)(nil)

func (r *SettingsMemory) Get(_ context.Context, key string) (json.RawMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.values[key]
	if !ok {
		return nil, repository.ErrSettingNotFound
	}
	return slices.Clone(v), nil
}

func (r *SettingsMemory) Put(_ context.Context, key string, value json.RawMessage) error {
	r.mu.Lock()
	r.values[key] = slices.Clone(value)
	r.mu.Unlock()
	return nil
}

func (r *SettingsMemory) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	delete(r.values, key)
	r.mu.Unlock()
	return nil
}
