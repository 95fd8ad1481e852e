// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across stages.
package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// maxErrorBody bounds how much of a failed response body is quoted in errors.
const maxErrorBody = 512

// StatusError reports a non-2xx HTTP response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// Limiter executes requests one attempt at a time under a request-rate cap.
// There is no retry: a transport error or non-2xx status is returned to the
// caller, which reports it and moves on.
type Limiter struct {
	client  *http.Client
	limiter *rate.Limiter
}

// NewLimiter wraps client with a limiter allowing perSecond requests per
// second. perSecond <= 0 disables the cap.
func NewLimiter(client *http.Client, perSecond float64) *Limiter {
	lim := rate.NewLimiter(rate.Inf, 1)
	if perSecond > 0 {
		lim = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
	return &Limiter{client: client, limiter: lim}
}

// Do waits for a rate-limit token, then sends req once. On a non-2xx status
// the body is drained and closed and a *StatusError is returned. If the
// context is cancelled while waiting, Do returns ctx.Err().
func (l *Limiter) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := l.client.Do(req.Clone(ctx))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return resp, nil
}

// Interval returns the minimum spacing between requests, or 0 when uncapped.
func (l *Limiter) Interval() time.Duration {
	if l.limiter.Limit() == rate.Inf {
		return 0
	}
	return time.Duration(float64(time.Second) / float64(l.limiter.Limit()))
}
