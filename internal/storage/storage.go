// Package storage keeps the durable part of the storefront session: the credential pair,
// the signed-in username and the admin flags. It defines the Storage interface and
// implementations backed by memory, a local file, PostgreSQL and Redis.
// Missing data always loads as an empty session, never as an error.
package storage

//go:generate mockgen -source=storage.go -destination=mocks/mock_storage.go -package=mocks

import (
	"context"

	"food_store/internal/models"
)

// Storage defines the methods required to persist the session across restarts.
type Storage interface {
	// Load returns the stored session, or an empty one if nothing is stored.
	Load(ctx context.Context) (models.Session, error)
	// Save replaces the stored session.
	Save(ctx context.Context, session models.Session) error
	// Clear removes the stored session.
	Clear(ctx context.Context) error
	// Close releases the underlying connection, if any.
	Close()
}
