package services

import (
	"context"
	"errors"
	"time"

	"wms-audit/config"

	"github.com/bsm/redislock"
	"github.com/sirupsen/logrus"
)

// Locker serializes a critical section across processes.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

type noopLocker struct{}

func (noopLocker) Acquire(context.Context, string) (func(), error) {
	return func() {}, nil
}

// NoopLocker is used when Redis is not configured; the database unique indexes remain
// the only guard.
func NoopLocker() Locker {
	return noopLocker{}
}

type RedisLocker struct {
	client *redislock.Client
	ttl    time.Duration
	log    *logrus.Logger
}

func NewRedisLocker(client *redislock.Client, log *logrus.Logger) *RedisLocker {
	return &RedisLocker{client: client, ttl: 10 * time.Second, log: log}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	lock, err := l.client.Obtain(ctx, "wms-audit:lock:"+key, l.ttl, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(50*time.Millisecond), 60),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, newError(KindConflict, "%s is busy, please retry", key)
	}
	if err != nil {
		return nil, err
	}

	return func() {
		if err := lock.Release(context.Background()); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			config.LogError(l.log, "locker", "Release", key, nil, err)
		}
	}, nil
}
