package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "session:"
	sessionTTL       = 24 * time.Hour

	fieldUserID   = "user_id"
	fieldReturnTo = "return_to"
)

// Store manages sessions in Redis. Each session is a hash holding the
// signed-in user id and, optionally, a return-to target remembered from a
// denied request.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewStore returns a new session store.
func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = sessionTTL
	}
	return &Store{rdb: rdb, ttl: ttl}
}

// Create stores a new signed-in session and returns its ID.
func (s *Store) Create(ctx context.Context, userID int64) (string, error) {
	id, err := newSessionID()
	if err != nil {
		return "", err
	}
	key := sessionKeyPrefix + id
	_, err = s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, key, fieldUserID, strconv.FormatInt(userID, 10))
		p.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// TTL reports the lifetime used for sessions stored here.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Delete removes a session by ID.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, sessionKeyPrefix+id).Err()
}

// UserID resolves the signed-in user for a session. ok is false for a
// missing, expired or anonymous session.
func (s *Store) UserID(ctx context.Context, id string) (int64, bool) {
	v, err := s.rdb.HGet(ctx, sessionKeyPrefix+id, fieldUserID).Result()
	if err != nil {
		return 0, false
	}
	userID, err := strconv.ParseInt(v, 10, 64)
	if err != nil || userID <= 0 {
		return 0, false
	}
	return userID, true
}

// StashReturnTo remembers the denied request's target on the session so the
// next successful sign-in can send the caller back. When id is empty an
// anonymous session is minted to carry it; the session id in use is
// returned either way.
func (s *Store) StashReturnTo(ctx context.Context, id, target string) (string, error) {
	if id == "" {
		newID, err := newSessionID()
		if err != nil {
			return "", err
		}
		id = newID
	}
	key := sessionKeyPrefix + id
	_, err := s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, key, fieldReturnTo, target)
		p.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// PopReturnTo reads and clears the stored return-to target in one shot.
// It is cleared whether or not the caller ends up using it; a second call
// returns "".
func (s *Store) PopReturnTo(ctx context.Context, id string) (string, error) {
	key := sessionKeyPrefix + id
	var get *redis.StringCmd
	_, err := s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		get = p.HGet(ctx, key, fieldReturnTo)
		p.HDel(ctx, key, fieldReturnTo)
		return nil
	})
	if err != nil && err != redis.Nil {
		return "", err
	}
	target, err := get.Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return target, nil
}

func newSessionID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("rand: %w", err)
	}
	return hex.EncodeToString(b), nil
}
