package marketdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/atharvakonge/paper-trader/internal/log"
	"github.com/atharvakonge/paper-trader/internal/metrics"
	"github.com/atharvakonge/paper-trader/internal/models"
)

// CachedGateway wraps a Gateway with a Redis read-through cache for history.
// Latest prices always go upstream; market orders must fill at a fresh quote.
type CachedGateway struct {
	upstream Gateway
	rdb      *redis.Client
	ttl      time.Duration
}

func NewCachedGateway(upstream Gateway, rdb *redis.Client, ttl time.Duration) *CachedGateway {
	return &CachedGateway{upstream: upstream, rdb: rdb, ttl: ttl}
}

func (g *CachedGateway) Latest(ctx context.Context, symbol string) (models.Quote, error) {
	return g.upstream.Latest(ctx, symbol)
}

func (g *CachedGateway) History(ctx context.Context, symbol string, from, to time.Time) ([]models.Bar, error) {
	key := historyKey(symbol, from, to)

	data, err := g.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var bars []models.Bar
		if json.Unmarshal(data, &bars) == nil {
			metrics.QuoteCacheTotal.WithLabelValues("hit").Inc()
			return bars, nil
		}
		metrics.QuoteCacheTotal.WithLabelValues("corrupt").Inc()
	case errors.Is(err, redis.Nil):
		metrics.QuoteCacheTotal.WithLabelValues("miss").Inc()
	default:
		// fall through to upstream
		metrics.QuoteCacheTotal.WithLabelValues("error").Inc()
		log.Warn("history cache read failed", zap.String("key", key), zap.Error(err))
	}

	bars, err := g.upstream.History(ctx, symbol, from, to)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(bars); err == nil {
		if err := g.rdb.Set(ctx, key, data, g.ttl).Err(); err != nil {
			log.Warn("history cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return bars, nil
}

func historyKey(symbol string, from, to time.Time) string {
	return fmt.Sprintf("paper:history:%s:%s:%s", symbol, from.Format(dateLayout), to.Format(dateLayout))
}
