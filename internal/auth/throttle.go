package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Throttle counts login attempts per username in redis and refuses further
// attempts once maxAttempts is exceeded inside window. A successful login
// resets the count. A nil Throttle, or one without a client, allows
// everything; so does a redis outage.
type Throttle struct {
	rdb         *redis.Client
	maxAttempts int
	window      time.Duration
}

func NewThrottle(rdb *redis.Client, maxAttempts int, window time.Duration) *Throttle {
	return &Throttle{rdb: rdb, maxAttempts: maxAttempts, window: window}
}

// throttleKey uses the username exactly as given. Usernames are case
// sensitive, so "alice" and "ALICE" are different accounts with separate
// counters.
func throttleKey(username string) string {
	return fmt.Sprintf("login_attempts:%s", username)
}

func (t *Throttle) enabled() bool {
	return t != nil && t.rdb != nil && t.maxAttempts > 0
}

// Attempt reserves one login attempt and reports whether it may proceed. The
// reservation is the INCR itself, so concurrent attempts can never get past
// maxAttempts. The window starts at the first attempt.
func (t *Throttle) Attempt(ctx context.Context, username string) bool {
	if !t.enabled() {
		return true
	}
	key := throttleKey(username)
	attempts, err := t.rdb.Incr(ctx, key).Result()
	if err != nil {
		log.WithError(err).Warn("login throttle unavailable")
		return true
	}
	if attempts == 1 {
		if err := t.rdb.Expire(ctx, key, t.window).Err(); err != nil {
			log.WithError(err).Warn("login throttle expire failed")
		}
	}
	return attempts <= int64(t.maxAttempts)
}

func (t *Throttle) Reset(ctx context.Context, username string) {
	if !t.enabled() {
		return
	}
	if err := t.rdb.Del(ctx, throttleKey(username)).Err(); err != nil {
		log.WithError(err).Warn("login throttle reset failed")
	}
}
