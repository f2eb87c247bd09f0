package chain

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/wnt/pollhub/internal/metrics"
)

// endpointRateLimit keeps each endpoint under typical public-node free
// tier limits.
const endpointRateLimit = 2.0

// Pool manages a set of chain RPC endpoints with round-robin selection,
// per-endpoint rate limiting and health tracking.
type Pool struct {
	endpoints []*endpoint
	current   int
	mutex     sync.Mutex
	logger    zerolog.Logger
}

type endpoint struct {
	url           string
	client        *http.Client
	limiter       *rate.Limiter
	mutex         sync.RWMutex
	healthy       bool
	cooldownUntil time.Time
}

// NewPool creates a pool over the given endpoint URLs.
func NewPool(urls []string, logger zerolog.Logger) *Pool {
	endpoints := make([]*endpoint, len(urls))
	for i, url := range urls {
		endpoints[i] = &endpoint{
			url:     url,
			client:  &http.Client{Timeout: 30 * time.Second},
			limiter: rate.NewLimiter(rate.Limit(endpointRateLimit), 5),
			healthy: true,
		}
		metrics.SetChainEndpointHealth(url, true)
	}

	return &Pool{
		endpoints: endpoints,
		current:   rand.Intn(len(endpoints)),
		logger:    logger.With().Str("component", "chain_pool").Logger(),
	}
}

// Next returns an HTTP client and endpoint URL, skipping unhealthy or
// cooling-down endpoints and respecting per-endpoint rate limits. When
// every endpoint is saturated it waits on the first one's limiter.
func (p *Pool) Next(ctx context.Context) (*http.Client, string, error) {
	p.mutex.Lock()
	startIndex := p.current

	for attempts := 0; attempts < len(p.endpoints); attempts++ {
		ep := p.endpoints[p.current]
		p.current = (p.current + 1) % len(p.endpoints)

		if !ep.usable() {
			continue
		}
		if ep.limiter.Allow() {
			p.mutex.Unlock()
			return ep.client, ep.url, nil
		}
	}
	ep := p.endpoints[startIndex]
	p.mutex.Unlock()

	// Everything is rate limited or unhealthy; wait for the starting
	// endpoint's limiter rather than failing the request.
	p.logger.Debug().Str("endpoint", ep.url).Msg("All endpoints rate limited, waiting for availability")

	reservation := ep.limiter.Reserve()
	if !reservation.OK() {
		return nil, "", fmt.Errorf("rate limiter failed to make reservation")
	}
	if delay := reservation.Delay(); delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			reservation.Cancel()
			return nil, "", ctx.Err()
		}
	}
	return ep.client, ep.url, nil
}

func (e *endpoint) usable() bool {
	e.mutex.RLock()
	defer e.mutex.RUnlock()
	return e.healthy && time.Now().After(e.cooldownUntil)
}

// MarkHealthy flags an endpoint as healthy again and clears its cooldown.
func (p *Pool) MarkHealthy(url string) {
	p.setHealth(url, true)
}

// MarkUnhealthy flags an endpoint as unhealthy after a hard failure.
func (p *Pool) MarkUnhealthy(url string) {
	p.setHealth(url, false)
}

func (p *Pool) setHealth(url string, healthy bool) {
	for _, ep := range p.endpoints {
		if ep.url != url {
			continue
		}
		ep.mutex.Lock()
		ep.healthy = healthy
		if healthy {
			ep.cooldownUntil = time.Time{}
		}
		ep.mutex.Unlock()

		metrics.SetChainEndpointHealth(url, healthy)
		if !healthy {
			p.logger.Warn().Str("endpoint", url).Msg("Marked endpoint as unhealthy")
		}
		return
	}
}

// SetCooldown pauses an endpoint for the given duration, typically after
// a rate-limit response.
func (p *Pool) SetCooldown(url string, duration time.Duration) {
	for _, ep := range p.endpoints {
		if ep.url != url {
			continue
		}
		ep.mutex.Lock()
		ep.cooldownUntil = time.Now().Add(duration)
		ep.mutex.Unlock()

		p.logger.Warn().Str("endpoint", url).Dur("duration", duration).Msg("Set endpoint cooldown")
		return
	}
}

// HealthyCount returns the number of endpoints currently usable.
func (p *Pool) HealthyCount() int {
	count := 0
	for _, ep := range p.endpoints {
		if ep.usable() {
			count++
		}
	}
	return count
}
