package processor

//go:generate go run go.uber.org/mock/mockgen@latest -source=processor.go -destination=mocks_test.go -package=processor

import (
	"adledger-server/internal/clients/coingecko"
	"adledger-server/internal/clients/redis"
	"adledger-server/internal/observability"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"
)

const (
	cacheKey        = "price:ton"
	defaultTTL      = 30 * time.Second
	fallbackPrice   = 5.42
	upstreamTimeout = 5 * time.Second
)

// FallbackQuote is served when no quote has ever been fetched
var FallbackQuote = coingecko.Quote{Price: fallbackPrice, Change24h: 0}

// PriceSource fetches a fresh quote from upstream
type PriceSource interface {
	FetchTONPrice(ctx context.Context) (coingecko.Quote, error)
}

// PriceProcessor serves the display price for the web app. Quotes are cached
// for ttl in Redis when enabled, otherwise in process.
type PriceProcessor struct {
	source PriceSource
	redis  *redis.Client
	logger *observability.Logger
	ttl    time.Duration
	now    func() time.Time

	mu        sync.Mutex
	lastGood  *coingecko.Quote
	fetchedAt time.Time
}

// New creates a price processor
func New(source PriceSource, redis *redis.Client, ttl time.Duration, logger *observability.Logger) *PriceProcessor {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &PriceProcessor{
		source: source,
		redis:  redis,
		logger: logger,
		ttl:    ttl,
		now:    time.Now,
	}
}

// GetTONPrice returns a cached quote, a fresh one, the last good one, or
// FallbackQuote, in that order. It never fails.
func (p *PriceProcessor) GetTONPrice(ctx context.Context) coingecko.Quote {
	if quote, ok := p.cached(ctx); ok {
		return quote
	}

	fetchCtx, cancel := context.WithTimeout(ctx, upstreamTimeout)
	defer cancel()

	quote, err := p.source.FetchTONPrice(fetchCtx)
	if err != nil {
		p.logger.WarnWithError(ctx, "price feed unavailable, serving last known quote", err)
		return p.lastKnown()
	}

	p.store(ctx, quote)
	return quote
}

func (p *PriceProcessor) cached(ctx context.Context) (coingecko.Quote, bool) {
	if p.redis.IsEnabled() {
		raw, err := p.redis.Get(ctx, cacheKey)
		if err == nil {
			var quote coingecko.Quote
			if err := json.Unmarshal(raw, &quote); err == nil {
				return quote, true
			}
		} else if !errors.Is(err, redis.ErrCacheMiss) {
			p.logger.WarnWithError(ctx, "failed to read cached price", err)
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.lastGood != nil && p.now().Sub(p.fetchedAt) < p.ttl {
		return *p.lastGood, true
	}
	return coingecko.Quote{}, false
}

func (p *PriceProcessor) store(ctx context.Context, quote coingecko.Quote) {
	p.mu.Lock()
	p.lastGood = &quote
	p.fetchedAt = p.now()
	p.mu.Unlock()

	if !p.redis.IsEnabled() {
		return
	}
	raw, err := json.Marshal(quote)
	if err != nil {
		return
	}
	if err := p.redis.Set(ctx, cacheKey, raw, p.ttl); err != nil {
		p.logger.WarnWithError(ctx, "failed to cache price", err)
	}
}

func (p *PriceProcessor) lastKnown() coingecko.Quote {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.lastGood != nil {
		return *p.lastGood
	}
	return FallbackQuote
}
