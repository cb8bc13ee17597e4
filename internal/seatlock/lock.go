// Package seatlock provides short-lived advisory locks on flight seats,
// held for the duration of a booking transaction. The database
// compare-and-set remains the source of truth; the lock only fails racing
// requests fast, before they open a transaction.
package seatlock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "seat_lock:"

// Locker acquires and releases per-seat advisory locks in Redis.
type Locker struct {
	client *redis.Client
	ttl    time.Duration
}

// New creates a Locker. TTL bounds how long a crashed holder can keep a
// seat locked.
func New(client *redis.Client, ttl time.Duration) *Locker {
	return &Locker{client: client, ttl: ttl}
}

// Lock acquires a lock on one seat for the given owner.
func (l *Locker) Lock(ctx context.Context, seatID, ownerID string) (bool, error) {
	ok, err := l.client.SetNX(ctx, keyPrefix+seatID, ownerID, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to lock seat %s: %w", seatID, err)
	}
	return ok, nil
}

// Unlock releases a seat lock if the owner still holds it. Releasing a
// lock that expired or belongs to someone else is a no-op.
func (l *Locker) Unlock(ctx context.Context, seatID, ownerID string) error {
	key := keyPrefix + seatID
	val, err := l.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read seat lock %s: %w", seatID, err)
	}
	if val != ownerID {
		return nil
	}
	if err := l.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to release seat lock %s: %w", seatID, err)
	}
	return nil
}

// LockAll acquires locks on every seat or none. On partial failure the
// already-acquired locks are released and ok is false.
func (l *Locker) LockAll(ctx context.Context, seatIDs []string, ownerID string) (bool, error) {
	var locked []string
	for _, seatID := range seatIDs {
		ok, err := l.Lock(ctx, seatID, ownerID)
		if err != nil || !ok {
			for _, held := range locked {
				_ = l.Unlock(ctx, held, ownerID)
			}
			return false, err
		}
		locked = append(locked, seatID)
	}
	return true, nil
}

// UnlockAll releases every seat lock held by the owner, returning the
// first error encountered.
func (l *Locker) UnlockAll(ctx context.Context, seatIDs []string, ownerID string) error {
	var firstErr error
	for _, seatID := range seatIDs {
		if err := l.Unlock(ctx, seatID, ownerID); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
