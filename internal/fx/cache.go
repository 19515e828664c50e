package fx

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const cacheKeyPrefix = "fx:rate"

// CachedRateSource caches rates in redis in front of another source. Cache
// failures degrade to the inner source, never to a conversion failure.
type CachedRateSource struct {
	next  RateSource
	redis redis.Cmdable
	ttl   time.Duration
}

func NewCachedRateSource(next RateSource, redisClient redis.Cmdable, ttl time.Duration) *CachedRateSource {
	return &CachedRateSource{next: next, redis: redisClient, ttl: ttl}
}

func (s *CachedRateSource) GetExchangeRate(ctx context.Context, source, target string) (decimal.Decimal, error) {
	key := fmt.Sprintf("%s:%s:%s", cacheKeyPrefix, source, target)

	if s.redis != nil {
		val, err := s.redis.Get(ctx, key).Result()
		if err == nil {
			if rate, parseErr := decimal.NewFromString(val); parseErr == nil {
				return rate, nil
			}
		} else if err != redis.Nil {
			zap.L().Warn("fx rate cache lookup failed", zap.Error(err))
		}
	}

	rate, err := s.next.GetExchangeRate(ctx, source, target)
	if err != nil {
		return decimal.Zero, err
	}

	if s.redis != nil {
		if err := s.redis.Set(ctx, key, rate.String(), s.ttl).Err(); err != nil {
			zap.L().Warn("fx rate cache set failed", zap.Error(err))
		}
	}
	return rate, nil
}
