// Copyright (c) 2026 Tribuna. All rights reserved.

// Redis implementation of the refresh-token session storage.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tribuna-io/tribuna/internal/platform/apperr"
	"github.com/tribuna-io/tribuna/internal/platform/constants"
)

// RedisSessionRepository implements the [SessionRepository] interface.
//
// # Key Layout
//
//   - auth:session:<token-hash>   → JSON session, TTL = token lifetime.
//   - auth:user_sessions:<userID> → SET of the user's token hashes, used to
//     fan out [RevokeAll] without scanning the keyspace.
type RedisSessionRepository struct {
	client *redis.Client
}

// NewSessionRepository creates a new Redis implementation of the [SessionRepository].
func NewSessionRepository(client *redis.Client) *RedisSessionRepository {
	return &RedisSessionRepository{client: client}
}

// sessionKey builds the primary key for a session.
func sessionKey(tokenHash string) string {
	return constants.RedisPrefixSession + tokenHash
}

// userSessionsKey builds the per-user index key.
func userSessionsKey(userID string) string {
	return constants.RedisPrefixUserSessions + userID
}

// Create stores the session under its token hash and indexes it per user.
func (repository *RedisSessionRepository) Create(ctx context.Context, session *Session) error {
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return apperr.Internal(err)
	}

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return apperr.Internal(errors.New("redis_session_repo_create_failed: session already expired"))
	}

	pipeline := repository.client.TxPipeline()
	pipeline.Set(ctx, sessionKey(session.TokenHash), payload, ttl)
	pipeline.SAdd(ctx, userSessionsKey(session.UserID), session.TokenHash)
	// The index outlives its members slightly; stale hashes are skipped on
	// revocation because their session keys are already gone.
	pipeline.Expire(ctx, userSessionsKey(session.UserID), ttl)

	if _, err := pipeline.Exec(ctx); err != nil {
		return apperr.Internal(err)
	}

	return nil
}

// FindByTokenHash returns the live session for the token hash.
//
// Expired sessions are gone from Redis by definition, so a missing key means
// the token is invalid, expired, or revoked — all the same to the caller.
func (repository *RedisSessionRepository) FindByTokenHash(ctx context.Context, tokenHash string) (*Session, error) {
	payload, err := repository.client.Get(ctx, sessionKey(tokenHash)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperr.NotFound("Session")
		}
		return nil, apperr.Internal(err)
	}

	session := &Session{}
	if err := json.Unmarshal(payload, session); err != nil {
		return nil, apperr.Internal(err)
	}
	session.TokenHash = tokenHash

	return session, nil
}

// Revoke removes a single session by its token hash.
func (repository *RedisSessionRepository) Revoke(ctx context.Context, tokenHash string) error {
	session, err := repository.FindByTokenHash(ctx, tokenHash)
	if err != nil {
		// Already gone: revocation is idempotent.
		return nil
	}

	pipeline := repository.client.TxPipeline()
	pipeline.Del(ctx, sessionKey(tokenHash))
	pipeline.SRem(ctx, userSessionsKey(session.UserID), tokenHash)

	if _, err := pipeline.Exec(ctx); err != nil {
		return apperr.Internal(err)
	}

	return nil
}

// RevokeAll removes every session belonging to the user.
func (repository *RedisSessionRepository) RevokeAll(ctx context.Context, userID string) error {
	indexKey := userSessionsKey(userID)

	tokenHashes, err := repository.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return apperr.Internal(err)
	}

	pipeline := repository.client.TxPipeline()
	for _, tokenHash := range tokenHashes {
		pipeline.Del(ctx, sessionKey(tokenHash))
	}
	pipeline.Del(ctx, indexKey)

	if _, err := pipeline.Exec(ctx); err != nil {
		return apperr.Internal(err)
	}

	return nil
}
