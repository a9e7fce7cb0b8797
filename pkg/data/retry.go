package data

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	retryAttempts  = 5
	retryBaseDelay = 50 * time.Millisecond
)

// ErrRetryExhausted is returned when a contended write keeps failing after
// all backoff attempts. Check with errors.Is.
var ErrRetryExhausted = errors.New("retry attempts exhausted")

// isBusy reports whether err is transient store contention worth retrying.
func isBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{
		"database is locked",
		"database table is locked",
		"sqlite_busy",
		"deadlock detected",
		"could not serialize access",
	} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

// withRetry runs fn, retrying busy/locked failures with exponential backoff
// and jitter. Non-transient errors return immediately.
func withRetry(ctx context.Context, op string, fn func() error) error {
	var last error
	delay := retryBaseDelay
	for i := 0; i < retryAttempts; i++ {
		last = fn()
		if last == nil {
			return nil
		}
		if !isBusy(last) {
			return last
		}
		log.Debugf("%s busy (attempt %d/%d), backing off %v", op, i+1, retryAttempts, delay)
		jitter := time.Duration(rand.Int63n(int64(delay)/2 + 1))
		select {
		case <-ctx.Done():
			return errors.Wrapf(ctx.Err(), "%s canceled during retry", op)
		case <-time.After(delay + jitter):
		}
		delay *= 2
	}
	return errors.Wrapf(ErrRetryExhausted, "%s: %v", op, last)
}
