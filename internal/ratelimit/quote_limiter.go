package ratelimit

import (
	"context"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/tripshield/tripshield/internal/config"
)

const keyQuoteClient = "quote:client:%s"

// QuoteLimiter bounds how often one client can request quotes. A nil or
// disabled limiter allows everything, so environments without redis keep
// working.
type QuoteLimiter struct {
	enabled bool
	bucket  *TokenBucket
	rate    float64
	burst   int
}

func NewQuoteLimiter(cfg config.Config) (*QuoteLimiter, error) {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return nil, nil
	}
	if cfg.QuoteRatePerMin <= 0 || cfg.QuoteRateBurst <= 0 {
		return nil, fmt.Errorf("quote rate limit must be positive, got rate=%v burst=%d",
			cfg.QuoteRatePerMin, cfg.QuoteRateBurst)
	}

	client := redis.NewClient(&redis.Options{Addr: addr})

	return &QuoteLimiter{
		enabled: true,
		bucket:  NewTokenBucket(client),
		rate:    cfg.QuoteRatePerMin / 60,
		burst:   cfg.QuoteRateBurst,
	}, nil
}

func (l *QuoteLimiter) Enabled() bool {
	return l != nil && l.enabled
}

func (l *QuoteLimiter) Allow(ctx context.Context, clientKey string) (bool, error) {
	if !l.Enabled() {
		return true, nil
	}
	key := fmt.Sprintf(keyQuoteClient, strings.TrimSpace(clientKey))
	return l.bucket.Allow(ctx, key, l.rate, l.burst)
}
