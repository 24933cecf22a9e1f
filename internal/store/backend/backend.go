// Package backend holds the storage media a config store can sit on. Every
// backend stores plain mappings under a key; typing the values is left to
// the store.
package backend

import (
	"context"

	json "github.com/json-iterator/go"
	"github.com/tansive/datasource-store/internal/common/apperrors"
	"github.com/tansive/datasource-store/internal/store/keys"
)

type Kind string

const (
	KindMemory   Kind = "memory"
	KindInline   Kind = "inline"
	KindDatabase Kind = "database"
	KindCloud    Kind = "cloud"
)

// Backend is the capability set a store is written against.
type Backend interface {
	Kind() Kind
	// Get returns the value stored under key, or ErrKeyNotFound.
	Get(ctx context.Context, key keys.Key) (map[string]any, apperrors.Error)
	// Set stores value under key and returns the value as read back from
	// the medium. Backends that assign identities accept a nil key.
	Set(ctx context.Context, key keys.Key, value map[string]any) (map[string]any, apperrors.Error)
	// Delete removes key, or returns ErrKeyNotFound.
	Delete(ctx context.Context, key keys.Key) apperrors.Error
	Has(ctx context.Context, key keys.Key) (bool, apperrors.Error)
	ListKeys(ctx context.Context) ([]keys.Key, apperrors.Error)
}

// copyValue returns a deep copy of v normalized to JSON values.
func copyValue(v map[string]any) (map[string]any, apperrors.Error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, ErrInvalidValue.Err(err)
	}
	m := make(map[string]any)
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, ErrInvalidValue.Err(err)
	}
	return m, nil
}

func requireKey(key keys.Key) apperrors.Error {
	if key == nil || key.String() == "" {
		return ErrMissingKey
	}
	return nil
}
