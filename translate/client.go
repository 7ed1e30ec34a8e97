package translate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/sony/gobreaker"
)

// ---------------------------------------------------------------------------
// Retry policy
// ---------------------------------------------------------------------------

const (
	BackoffConstant    = "constant"
	BackoffExponential = "exponential"
)

// Policy controls how hard the client tries before falling back.
type Policy struct {
	// MaxAttempts is the total number of attempts per string. Default: 4.
	MaxAttempts int
	// Delay is the wait between attempts (the base for exponential). Default: 1s.
	Delay time.Duration
	// Backoff is "constant" (default) or "exponential".
	Backoff string
	// AttemptTimeout bounds each attempt. Default: 30s.
	AttemptTimeout time.Duration
	// BreakerThreshold is the number of consecutive failed strings that
	// opens the circuit. 0 disables the breaker.
	BreakerThreshold int
	// BreakerCooldown is how long the circuit stays open. Default: 60s.
	BreakerCooldown time.Duration
}

// DefaultPolicy returns the stock retry policy.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:      4,
		Delay:            time.Second,
		Backoff:          BackoffConstant,
		AttemptTimeout:   30 * time.Second,
		BreakerThreshold: 5,
		BreakerCooldown:  60 * time.Second,
	}
}

func (p Policy) effectiveMaxAttempts() int {
	if p.MaxAttempts > 0 {
		return p.MaxAttempts
	}
	return 4
}

func (p Policy) effectiveDelay() time.Duration {
	if p.Delay > 0 {
		return p.Delay
	}
	// go-retry rejects non-positive durations.
	return time.Nanosecond
}

func (p Policy) effectiveAttemptTimeout() time.Duration {
	if p.AttemptTimeout > 0 {
		return p.AttemptTimeout
	}
	return 30 * time.Second
}

func (p Policy) backoff() retry.Backoff {
	var b retry.Backoff
	if p.Backoff == BackoffExponential {
		b = retry.NewExponential(p.effectiveDelay())
	} else {
		b = retry.NewConstant(p.effectiveDelay())
	}
	return retry.WithMaxRetries(uint64(p.effectiveMaxAttempts()-1), b)
}

// ---------------------------------------------------------------------------
// Client
// ---------------------------------------------------------------------------

// Result is the outcome of translating one string. Text is always usable:
// when Fallback is set it holds the source text and Err explains why.
type Result struct {
	Text     string
	Fallback bool
	Attempts int
	Err      error
}

// Client is a Translator with retry, deadlines and a circuit breaker.
type Client struct {
	tr      Translator
	policy  Policy
	breaker *gobreaker.CircuitBreaker

	// OnLog receives diagnostic messages (retries, breaker transitions).
	OnLog func(format string, args ...any)
}

// NewClient wraps tr with policy.
func NewClient(tr Translator, policy Policy) *Client {
	c := &Client{tr: tr, policy: policy}
	if policy.BreakerThreshold > 0 {
		cooldown := policy.BreakerCooldown
		if cooldown <= 0 {
			cooldown = 60 * time.Second
		}
		threshold := uint32(policy.BreakerThreshold)
		c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "translate",
			MaxRequests: 1,
			Timeout:     cooldown,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
			IsSuccessful: func(err error) bool {
				// Only exhausted transient failures count against the service.
				return err == nil || Classify(err) != Transient
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				c.log("circuit %s: %s -> %s", name, from, to)
			},
		})
	}
	return c
}

func (c *Client) log(format string, args ...any) {
	if c.OnLog != nil {
		c.OnLog(format, args...)
	}
}

// Translate returns the translation of req.Text, or the source text when
// every attempt failed, the error is not retryable or the circuit is open.
// It never returns an error.
func (c *Client) Translate(ctx context.Context, req Request) Result {
	attempts := 0
	call := func() (string, error) {
		var text string
		err := retry.Do(ctx, c.policy.backoff(), func(ctx context.Context) error {
			attempts++
			actx, cancel := context.WithTimeout(ctx, c.policy.effectiveAttemptTimeout())
			defer cancel()

			out, err := c.tr.Translate(actx, req)
			if err == nil {
				text = out
				return nil
			}
			// The attempt deadline fired, not the caller's.
			if ctx.Err() == nil && errors.Is(actx.Err(), context.DeadlineExceeded) {
				err = &TransportError{Err: fmt.Errorf("attempt timed out after %s: %w", c.policy.effectiveAttemptTimeout(), err)}
			}
			if Classify(err) == Transient && ctx.Err() == nil {
				c.log("attempt %d for %s failed: %v", attempts, req.TargetLang, err)
				return retry.RetryableError(err)
			}
			return err
		})
		return text, err
	}

	var (
		text string
		err  error
	)
	if c.breaker != nil {
		var out any
		out, err = c.breaker.Execute(func() (any, error) {
			return call()
		})
		if s, ok := out.(string); ok {
			text = s
		}
	} else {
		text, err = call()
	}

	if err != nil {
		return Result{Text: req.Text, Fallback: true, Attempts: attempts, Err: err}
	}
	return Result{Text: text, Attempts: attempts}
}

// State reports the circuit breaker state ("closed" without a breaker).
func (c *Client) State() string {
	if c.breaker == nil {
		return gobreaker.StateClosed.String()
	}
	return c.breaker.State().String()
}
