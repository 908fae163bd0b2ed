// Package repository contains data access layer abstractions.
// Implementations live in subpackages (postgres, memory).
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Keys of the persisted user settings.
const (
	KeyNotificationsEnabled   = "notifications_enabled"
	KeyNotificationPermission = "notification_permission"
	KeyUser                   = "user"
)

// ErrSettingNotFound is returned when no value is stored under a key.
var ErrSettingNotFound = errors.New("setting not found")

// SettingsRepository persists small JSON values by key.
// No business logic here; strictly persistence operations.
type SettingsRepository interface {
	// Get returns the raw JSON stored under key or ErrSettingNotFound.
	Get(ctx context.Context, key string) (json.RawMessage, error)
	// Put inserts or replaces the value under key.
	Put(ctx context.Context, key string, value json.RawMessage) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// Load decodes the value under key into a T. A missing key yields def and no error.
func Load[T any](ctx context.Context, repo SettingsRepository, key string, def T) (T, error) {
	raw, err := repo.Get(ctx, key)
	if errors.Is(err, ErrSettingNotFound) {
		return def, nil
	}
	if err != nil {
		return def, err
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return def, fmt.Errorf("decode setting %s: %w", key, err)
	}
	return v, nil
}

// Save encodes v as JSON and stores it under key.
func Save[T any](ctx context.Context, repo SettingsRepository, key string, v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode setting %s: %w", key, err)
	}
	return repo.Put(ctx, key, raw)
}
