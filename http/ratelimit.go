package http

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiter applies per-domain token-bucket rate limiting. The are.na API
// and the image CDNs are separate origins with separate tolerances, so each
// domain gets its own limiter.
type RateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
	config   RateLimiterConfig
}

// RateLimiterConfig defines per-origin request rates.
type RateLimiterConfig struct {
	// APIRPS is requests per second against the listing API.
	APIRPS float64
	// ImageRPS is requests per second against image hosts (0 = unlimited).
	ImageRPS float64
	// CustomRates maps domain suffixes to RPS values, overriding the above.
	CustomRates map[string]float64
}

// DefaultRateLimiterConfig returns conservative rates that stay under the
// origin's bot filtering thresholds.
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		APIRPS:      2.0,
		ImageRPS:    0,
		CustomRates: make(map[string]float64),
	}
}

// NewRateLimiter creates a rate limiter with the given configuration.
func NewRateLimiter(cfg RateLimiterConfig) *RateLimiter {
	if cfg.APIRPS == 0 {
		cfg.APIRPS = DefaultRateLimiterConfig().APIRPS
	}
	if cfg.CustomRates == nil {
		cfg.CustomRates = make(map[string]float64)
	}
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		config:   cfg,
	}
}

// Wait blocks until the rate limit allows a request for the given URL, or the
// context is done.
func (rl *RateLimiter) Wait(ctx context.Context, urlStr string) error {
	if rl == nil {
		return nil
	}
	limiter := rl.getLimiter(urlStr)
	if limiter == nil {
		return nil
	}
	return limiter.Wait(ctx)
}

// getLimiter returns the limiter for the URL's domain, creating it on first
// use. Returns nil when the domain is unlimited.
func (rl *RateLimiter) getLimiter(urlStr string) *rate.Limiter {
	domain := extractDomain(urlStr)
	rps := rl.rpsFor(domain)
	if rps <= 0 {
		return nil
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if l, ok := rl.limiters[domain]; ok {
		return l
	}
	l := rate.NewLimiter(rate.Limit(rps), 1)
	rl.limiters[domain] = l
	return l
}

// rpsFor resolves the configured rate for a domain. Custom suffix rules win,
// then the listing API, then the image default.
func (rl *RateLimiter) rpsFor(domain string) float64 {
	for suffix, rps := range rl.config.CustomRates {
		if strings.HasSuffix(domain, suffix) {
			return rps
		}
	}
	if strings.HasSuffix(domain, "are.na") {
		return rl.config.APIRPS
	}
	return rl.config.ImageRPS
}

// extractDomain pulls the host out of a URL, dropping any port.
func extractDomain(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil {
		return urlStr
	}
	return u.Hostname()
}
