// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

// Package retry classifies generative-API failures and retries the
// transient ones with exponential backoff. Daily quota exhaustion is never
// retried; it is surfaced so callers can record a distinct terminal state.
package retry

import (
	"context"
	"errors"
	"net"
	"regexp"
	"time"

	"github.com/cenkalti/backoff/v5"
)

var (
	reTransient = regexp.MustCompile(`(?i)\b(500|502|503|504)\b|timeout|timed out|ETIMEDOUT|ECONNRESET|ENOTFOUND|EAI_AGAIN|fetch failed|connection reset|no such host|aborted|AbortError|unavailable`)
	re429       = regexp.MustCompile(`(?i)(^| )429( |$)|code":\s*429|HTTP 429|RESOURCE_EXHAUSTED|quota|rate`)
	reDaily     = regexp.MustCompile(`(?i)predict_requests_per_model_per_day|PredictRequestsPerDay|per_day|PerDay|Quota exceeded for metric`)
	reQuota     = regexp.MustCompile(`(?i)HTTP 429|RESOURCE_EXHAUSTED|predict_requests_per_model_per_day|Quota exceeded`)
)

// IsQuota reports whether err looks like quota exhaustion of any kind,
// used to pick the quota terminal state over a generic error.
func IsQuota(err error) bool {
	return err != nil && reQuota.MatchString(err.Error())
}

// IsDailyQuota reports whether err is a per-day quota signal. These are
// pointless to retry within a request lifetime.
func IsDailyQuota(err error) bool {
	return err != nil && reDaily.MatchString(err.Error())
}

// IsTransient reports whether err is worth retrying: transport failures,
// 5xx, and rate limiting that is not a daily quota.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	msg := err.Error()
	if reTransient.MatchString(msg) {
		return true
	}
	return re429.MatchString(msg) && !reDaily.MatchString(msg)
}

// Config bounds a retried operation.
type Config struct {
	// Retries is the number of extra attempts after the first.
	Retries int
	// BaseDelay is the initial backoff delay, doubled per attempt.
	BaseDelay time.Duration
	// MaxDelay caps the backoff delay.
	MaxDelay time.Duration
}

// ModelCall is the budget for text and image model invocations.
var ModelCall = Config{Retries: 2, BaseDelay: 700 * time.Millisecond, MaxDelay: 30 * time.Second}

// Do runs op with exponential backoff per cfg. Non-transient errors abort
// immediately; once the budget is exhausted the last error is returned
// unchanged.
func Do[T any](ctx context.Context, cfg Config, op func() (T, error)) (T, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = cfg.BaseDelay
	b.MaxInterval = cfg.MaxDelay
	b.Multiplier = 2
	b.RandomizationFactor = 0

	return backoff.Retry(ctx, func() (T, error) {
		v, err := op()
		if err != nil && !IsTransient(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}, backoff.WithBackOff(b), backoff.WithMaxTries(uint(cfg.Retries+1)))
}
