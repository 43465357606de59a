package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/fallhouse/pkg/state"
	"github.com/jwebster45206/fallhouse/pkg/storage"
	"go.etcd.io/bbolt"
)

const sessionBucket = "sessions"

// boltEntry wraps a record with its expiry, since bbolt has no native TTL.
type boltEntry struct {
	Record    state.Record `json:"record"`
	ExpiresAt time.Time    `json:"expires_at,omitzero"`
}

// BoltStorage implements the Storage interface on a single bbolt file.
type BoltStorage struct {
	db     *bbolt.DB
	logger *slog.Logger
	now    func() time.Time
}

var _ storage.Storage = (*BoltStorage)(nil)

// OpenBoltStorage opens (or creates) the database file at path.
func OpenBoltStorage(path string, logger *slog.Logger) (*BoltStorage, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("bolt path is required")
	}

	db, err := bbolt.Open(filepath.Clean(path), 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(sessionBucket))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create session bucket: %w", err)
	}

	return &BoltStorage{db: db, logger: logger, now: time.Now}, nil
}

func (b *BoltStorage) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket([]byte(sessionBucket)) == nil {
			return errors.New("session bucket is missing")
		}
		return nil
	})
}

func (b *BoltStorage) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	if err := b.db.Close(); err != nil {
		b.logger.Error("Failed to close bolt database", "error", err)
		return err
	}
	b.logger.Info("Bolt database closed")
	return nil
}

func (b *BoltStorage) SaveSession(ctx context.Context, id uuid.UUID, rec *state.Record, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if rec == nil {
		return errors.New("session record cannot be nil")
	}

	entry := boltEntry{Record: *rec}
	if ttl > 0 {
		entry.ExpiresAt = b.now().Add(ttl)
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	err = b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(sessionBucket)).Put(id[:], payload)
	})
	if err != nil {
		b.logger.Error("Failed to save session", "uuid", id, "error", err)
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (b *BoltStorage) LoadSession(ctx context.Context, id uuid.UUID) (*state.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entry *boltEntry
	err := b.db.View(func(tx *bbolt.Tx) error {
		payload := tx.Bucket([]byte(sessionBucket)).Get(id[:])
		if payload == nil {
			return nil
		}
		entry = &boltEntry{}
		return json.Unmarshal(payload, entry)
	})
	if err != nil {
		b.logger.Error("Failed to load session", "uuid", id, "error", err)
		return nil, fmt.Errorf("load session: %w", err)
	}
	if entry == nil {
		return nil, nil
	}

	if !entry.ExpiresAt.IsZero() && b.now().After(entry.ExpiresAt) {
		b.logger.Debug("Session expired", "uuid", id)
		if err := b.DeleteSession(ctx, id); err != nil {
			return nil, err
		}
		return nil, nil
	}

	return &entry.Record, nil
}

func (b *BoltStorage) DeleteSession(ctx context.Context, id uuid.UUID) error {
	err := b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(sessionBucket)).Delete(id[:])
	})
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// PurgeExpired removes every expired record and returns how many were removed.
func (b *BoltStorage) PurgeExpired(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	now := b.now()
	removed := 0
	err := b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(sessionBucket))
		var expired [][]byte
		err := bucket.ForEach(func(k, v []byte) error {
			var entry boltEntry
			if err := json.Unmarshal(v, &entry); err != nil {
				// Unreadable entries can never be loaded either.
				expired = append(expired, append([]byte{}, k...))
				return nil
			}
			if !entry.ExpiresAt.IsZero() && now.After(entry.ExpiresAt) {
				expired = append(expired, append([]byte{}, k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range expired {
			if err := bucket.Delete(k); err != nil {
				return err
			}
		}
		removed = len(expired)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("purge expired sessions: %w", err)
	}
	return removed, nil
}
