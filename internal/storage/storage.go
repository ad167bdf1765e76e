// Package storage provides the key-value repository the user record store
// persists through. Documents are opaque JSON blobs keyed by name; the
// concrete backend (memory, file, sqlite) is chosen by the composition root.
package storage

import (
	"context"
	"errors"
)

// Well-known document keys. One document per concern, mirroring the
// aggregate boundaries: the user record, the mission history, the
// notification log, the analytics event log, and the purchase history.
const (
	KeyUser          = "user"
	KeyMissions      = "completed_missions"
	KeyNotifications = "notifications"
	KeyEvents        = "events"
	KeyPurchases     = "purchases"
)

// ErrNotFound is returned by Load when no document exists under the key.
var ErrNotFound = errors.New("document not found")

// Repository is a durable key-value document store.
type Repository interface {
	// Load returns the document stored under key, or ErrNotFound.
	Load(ctx context.Context, key string) ([]byte, error)
	// Save durably stores data under key, replacing any prior document.
	Save(ctx context.Context, key string, data []byte) error
}
