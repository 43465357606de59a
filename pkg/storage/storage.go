package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/fallhouse/pkg/state"
)

// Storage persists session records for the server-side session stores. The
// browser only holds the session ID; the record itself lives here.
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// SaveSession writes rec under id. A ttl of zero means no expiry.
	SaveSession(ctx context.Context, id uuid.UUID, rec *state.Record, ttl time.Duration) error
	// LoadSession returns nil, nil when no record exists or it has expired.
	LoadSession(ctx context.Context, id uuid.UUID) (*state.Record, error)
	DeleteSession(ctx context.Context, id uuid.UUID) error
}
