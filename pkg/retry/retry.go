// Package retry holds the one retry policy shared by the persistence
// gateway and the startup connectivity check, instead of duplicating
// sleep loops at every call site.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type Policy struct {
	Attempts int
	Delay    time.Duration
}

// Do runs fn up to p.Attempts times, waiting p.Delay between attempts.
// It stops early on success, on context cancellation, or when fn returns
// an error that is not worth retrying. The last error is returned after
// the budget is exhausted.
func (p Policy) Do(ctx context.Context, fn func() error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for i := 0; i < attempts; i++ {
		err = fn()
		if err == nil {
			return nil
		}
		if !IsTransient(err) {
			return err
		}
		if i == attempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.Delay):
		}
	}

	return err
}

// IsTransient reports whether a persistence error may succeed on a
// subsequent attempt. SQL-level failures (constraint violations, bad
// statements) and missing rows are terminal; connectivity failures
// are not.
func IsTransient(err error) bool {
	// A deadline on one attempt (statement or health timeout) is worth a
	// fresh attempt; outright cancellation is not. Cancellation of the
	// surrounding context is caught between attempts by Do.
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// Class 08 is connection exceptions, class 57 covers admin
		// shutdown / crash shutdown. Everything else is a statement
		// problem a retry cannot fix.
		switch {
		case len(pgErr.Code) >= 2 && (pgErr.Code[:2] == "08" || pgErr.Code[:2] == "57"):
			return true
		default:
			return false
		}
	}

	return true
}
