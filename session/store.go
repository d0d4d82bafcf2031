package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrMarkerNotFound is returned when no marker of the requested kind
	// exists for the session id.
	ErrMarkerNotFound = errors.New("session marker not found")
	// ErrBackend wraps Redis failures.
	ErrBackend = errors.New("session marker backend unavailable")
)

// Store persists session markers in Redis with the marker lifetime as the
// key TTL, so expiry needs no sweeper.
type Store struct {
	redis  redis.UniversalClient
	prefix string
}

// NewStore creates a marker store under the given key prefix.
func NewStore(client redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = "tgs"
	}
	return &Store{redis: client, prefix: prefix}
}

func (s *Store) key(kind uint8, sessionID string) string {
	if kind == KindVerified {
		return s.prefix + ":vs:" + sessionID
	}
	return s.prefix + ":id:" + sessionID
}

// Save persists m with the given lifetime.
func (s *Store) Save(ctx context.Context, m *Marker, ttl time.Duration) error {
	encoded, err := encodeMarker(m)
	if err != nil {
		return err
	}
	if err := s.redis.Set(ctx, s.key(m.Kind, m.SessionID), encoded, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrBackend, err)
	}
	return nil
}

// Get loads the marker of the given kind, treating a stale-but-present
// record as absent.
func (s *Store) Get(ctx context.Context, kind uint8, sessionID string) (*Marker, error) {
	data, err := s.redis.Get(ctx, s.key(kind, sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMarkerNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrBackend, err)
	}

	m, err := decodeMarker(data)
	if err != nil {
		return nil, err
	}
	if time.Now().Unix() > m.ExpiresAt {
		_, _ = s.redis.Del(ctx, s.key(kind, sessionID)).Result()
		return nil, ErrMarkerNotFound
	}
	return m, nil
}

// Delete removes both markers for sessionID. Deleting an absent session is
// not an error.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	if err := s.redis.Del(ctx, s.key(KindIdentity, sessionID), s.key(KindVerified, sessionID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrBackend, err)
	}
	return nil
}
