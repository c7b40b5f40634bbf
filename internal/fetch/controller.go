package fetch

import (
	"context"
	"math/rand/v2"
	"time"

	"joblens/internal/config"
	"joblens/internal/logging"
	"joblens/internal/logging/types"
	"joblens/pkg/models"
	"joblens/pkg/utils"
)

// SleepFunc pauses for the given duration or returns early with the
// context's error when it is cancelled.
type SleepFunc func(ctx context.Context, d time.Duration) error

func contextSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Controller drives pagination for a single query through a backend,
// applying jittered pacing between requests, exponential backoff on
// transient failures and a one-shot fallback backend when the primary
// refuses service.
type Controller struct {
	cfg      *config.Config
	primary  Backend
	fallback Backend
	limiter  *RateLimiter
	sleep    SleepFunc
	logger   types.Logger
}

// NewController creates a controller over the primary backend. The
// fallback may be nil, in which case refusals skip the query.
func NewController(cfg *config.Config, primary, fallback Backend, limiter *RateLimiter) *Controller {
	return &Controller{
		cfg:      cfg,
		primary:  primary,
		fallback: fallback,
		limiter:  limiter,
		sleep:    contextSleep,
		logger:   logging.GetGlobalLogger(),
	}
}

// SetSleep replaces the pacing function. Tests use this to observe and
// skip real delays.
func (c *Controller) SetSleep(fn SleepFunc) {
	c.sleep = fn
}

// RunQuery fetches every available page for the query, up to the
// configured page cap, and reports the outcome. Payloads gathered before
// a mid-query failure are kept.
func (c *Controller) RunQuery(ctx context.Context, q models.Query) ([]*models.RawPayload, models.QueryOutcome) {
	backend := c.primary
	usedFallback := false

	var payloads []*models.RawPayload

	outcome := models.QueryOutcome{
		Query:   q,
		Backend: backend.Name(),
	}

	maxPages := c.cfg.Fetch.MaxPages
	if maxPages <= 0 {
		maxPages = 1
	}

	for page := 0; page < maxPages; page++ {
		attempt := 0

		for {
			if err := c.pace(ctx, backend); err != nil {
				outcome.Status = models.QuerySkipped
				outcome.Reason = "run cancelled"
				return payloads, outcome
			}

			payload, exhausted, err := backend.FetchPage(ctx, q, page)
			if err == nil {
				if payload != nil {
					payloads = append(payloads, payload)
					outcome.PagesFetched++
				}
				if exhausted {
					outcome.Status = models.QueryCompleted
					return payloads, outcome
				}
				break
			}

			if ctx.Err() != nil {
				outcome.Status = models.QuerySkipped
				outcome.Reason = "run cancelled"
				return payloads, outcome
			}

			kind := utils.FailureKindOf(err)
			c.logger.Warn("Fetch attempt failed", map[string]interface{}{
				"query":   q.Key(),
				"backend": backend.Name(),
				"page":    page,
				"attempt": attempt,
				"kind":    string(kind),
				"error":   err.Error(),
			})

			switch {
			case utils.IsBackendRefusal(err):
				if c.fallback != nil && !usedFallback && c.fallback.Name() != backend.Name() {
					c.logger.Info("Switching to fallback backend", map[string]interface{}{
						"query": q.Key(),
						"from":  backend.Name(),
						"to":    c.fallback.Name(),
					})
					backend = c.fallback
					usedFallback = true
					outcome.Backend = backend.Name()
					attempt = 0
					continue
				}
				outcome.Status = models.QuerySkipped
				outcome.Reason = string(kind) + ": " + err.Error()
				return payloads, outcome

			case kind == utils.KindFatal:
				outcome.Status = models.QuerySkipped
				outcome.Reason = string(kind) + ": " + err.Error()
				return payloads, outcome

			default: // transient
				if attempt >= c.cfg.Fetch.MaxRetries {
					outcome.Status = models.QueryDegraded
					outcome.Reason = "retry budget exhausted: " + err.Error()
					return payloads, outcome
				}
				if err := c.sleep(ctx, c.backoffDelay(attempt)); err != nil {
					outcome.Status = models.QuerySkipped
					outcome.Reason = "run cancelled"
					return payloads, outcome
				}
				attempt++
			}
		}
	}

	outcome.Status = models.QueryCompleted
	return payloads, outcome
}

// pace applies the shared rate limit plus a uniform random delay so
// request timing does not form a detectable pattern.
func (c *Controller) pace(ctx context.Context, backend Backend) error {
	if err := c.limiter.Wait(ctx, backend.Name()); err != nil {
		return err
	}
	if d := c.jitterDelay(); d > 0 {
		return c.sleep(ctx, d)
	}
	return nil
}

func (c *Controller) jitterDelay() time.Duration {
	min := c.cfg.Fetch.MinDelay
	max := c.cfg.Fetch.MaxDelay
	if max <= min {
		return min
	}
	return min + rand.N(max-min)
}

func (c *Controller) backoffDelay(attempt int) time.Duration {
	base := c.cfg.Fetch.BackoffBase
	if base <= 0 {
		base = time.Second
	}
	d := base << uint(attempt)
	if ceil := c.cfg.Fetch.BackoffCap; ceil > 0 && d > ceil {
		d = ceil
	}
	return d
}
