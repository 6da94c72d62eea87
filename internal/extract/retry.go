package extract

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
	"github.com/openai/openai-go/v3"

	"casewall/internal/logger"
)

const (
	DefaultAttempts  = 3
	DefaultBaseDelay = 2 * time.Second
)

var ErrRateLimited = errors.New("extract: rate limited")

// IsRateLimited reports whether err is a quota or HTTP 429 failure.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrRateLimited) {
		return true
	}

	var oe *openai.Error
	if errors.As(err, &oe) && oe.StatusCode == http.StatusTooManyRequests {
		return true
	}
	var se api.StatusError
	if errors.As(err, &se) && se.StatusCode == http.StatusTooManyRequests {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "quota")
}

// Retry runs calls again after rate-limit failures, waiting BaseDelay,
// 2*BaseDelay, ... between attempts. Other errors are returned at once.
type Retry struct {
	Attempts  int
	BaseDelay time.Duration
	// Sleep waits for d or until ctx ends.
	Sleep func(ctx context.Context, d time.Duration) error
}

func DefaultRetry() Retry {
	return Retry{Attempts: DefaultAttempts, BaseDelay: DefaultBaseDelay, Sleep: sleep}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Do calls fn until it succeeds, fails with a non-rate-limit error, or the
// attempt budget runs out.
func (r Retry) Do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	attempts := max(r.Attempts, 1)
	wait := r.Sleep
	if wait == nil {
		wait = sleep
	}

	var err error
	for i := 0; i < attempts; i++ {
		err = fn(ctx)
		if err == nil {
			return nil
		}
		if !IsRateLimited(err) || i == attempts-1 {
			break
		}
		delay := r.BaseDelay << i
		logger.Warn("rate limited, retrying", "op", op, "attempt", i+1, "wait", delay)
		if werr := wait(ctx, delay); werr != nil {
			return werr
		}
	}
	if IsRateLimited(err) && !errors.Is(err, ErrRateLimited) {
		return fmt.Errorf("%w after %d attempts: %w", ErrRateLimited, attempts, err)
	}
	return err
}
