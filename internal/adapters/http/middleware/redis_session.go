package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "parlevrai:session:"
	accountKeyPrefix = "parlevrai:account_sessions:"
)

// RedisSessionStore keeps sessions in Redis so they survive restarts and are
// shared between instances. Each account keeps a set of its tokens so that
// DeleteForAccount does not scan the keyspace.
type RedisSessionStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

var _ SessionStore = (*RedisSessionStore)(nil)

// NewRedisSessionStore wraps client. A non-positive ttl selects SessionTTL.
func NewRedisSessionStore(client redis.UniversalClient, ttl time.Duration) *RedisSessionStore {
	if ttl <= 0 {
		ttl = SessionTTL
	}
	return &RedisSessionStore{client: client, ttl: ttl}
}

// NewRedisClient connects to addr and verifies the connection.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return client, nil
}

// Create stores a new session and returns the token.
// POST: session key expires after the store TTL
func (s *RedisSessionStore) Create(ctx context.Context, sess Session) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}
	sess.CreatedAt = time.Now()
	payload, err := json.Marshal(sess)
	if err != nil {
		return "", err
	}

	accountKey := accountKeyPrefix + sess.AccountID
	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, sessionKeyPrefix+token, payload, s.ttl)
		p.SAdd(ctx, accountKey, token)
		p.Expire(ctx, accountKey, s.ttl)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return token, nil
}

// Get retrieves a session by token.
func (s *RedisSessionStore) Get(ctx context.Context, token string) (Session, bool) {
	payload, err := s.client.Get(ctx, sessionKeyPrefix+token).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Error("session_lookup_failed", "error", err)
		}
		return Session{}, false
	}
	var sess Session
	if err := json.Unmarshal(payload, &sess); err != nil {
		slog.Error("session_decode_failed", "error", err)
		return Session{}, false
	}
	return sess, true
}

// Delete removes a session by token.
func (s *RedisSessionStore) Delete(ctx context.Context, token string) error {
	sess, ok := s.Get(ctx, token)
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, sessionKeyPrefix+token)
		if ok {
			p.SRem(ctx, accountKeyPrefix+sess.AccountID, token)
		}
		return nil
	})
	return err
}

// DeleteForAccount removes every session of accountID.
func (s *RedisSessionStore) DeleteForAccount(ctx context.Context, accountID string) error {
	accountKey := accountKeyPrefix + accountID
	tokens, err := s.client.SMembers(ctx, accountKey).Result()
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}
	keys := make([]string, 0, len(tokens)+1)
	for _, t := range tokens {
		keys = append(keys, sessionKeyPrefix+t)
	}
	keys = append(keys, accountKey)
	return s.client.Del(ctx, keys...).Err()
}
