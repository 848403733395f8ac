/*
provider.go - Rate fetching and staleness policy

PURPOSE:
  Fetches the rate table from a public exchange-rate endpoint and hands
  the current table to callers. The policy is best-effort throughout:

    - fetch at most once per MaxAge (default 24h)
    - on fetch failure, keep serving the last good table
    - before the first success (and with an empty cache), Current()
      returns nil and the engine converts pass-through

RESPONSE FORMAT:
  open.er-api.com style: {"base_code": "USD", "rates": {"EUR": 0.9, ...}}.
  The older "base" field name is accepted too.
*/
package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/stay-engine/engine"
)

// DefaultURL is a public, keyless endpoint serving USD-based rates.
const DefaultURL = "https://open.er-api.com/v6/latest/USD"

// DefaultMaxAge is how old a table may get before a refresh is
// attempted.
const DefaultMaxAge = 24 * time.Hour

// Provider fetches and serves the FX rate table. Safe for concurrent
// use.
type Provider struct {
	URL    string
	MaxAge time.Duration
	Cache  Cache
	Client *http.Client

	mu      sync.RWMutex
	current *engine.FxRates
}

// NewProvider creates a provider with the default URL, max age, and a
// 10s HTTP timeout. cache may be nil (no persistence across restarts).
func NewProvider(url string, cache Cache) *Provider {
	if url == "" {
		url = DefaultURL
	}
	return &Provider{
		URL:    url,
		MaxAge: DefaultMaxAge,
		Cache:  cache,
		Client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Current returns the latest known rate table, or nil before the first
// successful fetch or cache load. Callers pass the result straight to
// the engine, which fails open on nil.
func (p *Provider) Current() *engine.FxRates {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

// LoadCached primes the provider from the cache, so a restart serves
// the previous table without a network call. A miss or decode failure
// leaves the provider empty.
func (p *Provider) LoadCached(ctx context.Context) {
	if p.Cache == nil {
		return
	}
	doc, ok := p.Cache.Get(ctx)
	if !ok {
		return
	}
	fx, err := DecodeTable(doc)
	if err != nil {
		log.Printf("[Rates] Ignoring undecodable cached table: %v", err)
		return
	}
	p.mu.Lock()
	p.current = fx
	p.mu.Unlock()
	log.Printf("[Rates] Loaded cached table (base %s, %d rates, as of %s)",
		fx.Base, len(fx.Rates), fx.UpdatedAt.Format(time.RFC3339))
}

// RefreshIfStale fetches a new table when the current one is older than
// MaxAge (or absent). Failures keep the last good table.
func (p *Provider) RefreshIfStale(ctx context.Context) {
	p.mu.RLock()
	current := p.current
	p.mu.RUnlock()

	if current != nil && time.Since(current.UpdatedAt) < p.MaxAge {
		return
	}
	if err := p.Refresh(ctx); err != nil {
		log.Printf("[Rates] Refresh failed, keeping previous table: %v", err)
	}
}

// Refresh unconditionally fetches the endpoint, replaces the current
// table on success, and writes it through the cache.
func (p *Provider) Refresh(ctx context.Context) error {
	fx, err := p.fetch(ctx)
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.current = fx
	p.mu.Unlock()

	if p.Cache != nil {
		doc, err := EncodeTable(fx)
		if err == nil {
			if err := p.Cache.Set(ctx, doc); err != nil {
				log.Printf("[Rates] Failed to cache table: %v", err)
			}
		}
	}

	log.Printf("[Rates] Fetched table (base %s, %d rates)", fx.Base, len(fx.Rates))
	return nil
}

// responseJSON matches open.er-api.com-compatible endpoints.
type responseJSON struct {
	BaseCode   string             `json:"base_code"`
	LegacyBase string             `json:"base"`
	Rates      map[string]float64 `json:"rates"`
}

func (p *Provider) fetch(ctx context.Context) (*engine.FxRates, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build rates request: %w", err)
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rates fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rates endpoint returned %d", resp.StatusCode)
	}

	var body responseJSON
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode rates response: %w", err)
	}

	base := body.BaseCode
	if base == "" {
		base = body.LegacyBase
	}
	if base == "" || len(body.Rates) == 0 {
		return nil, fmt.Errorf("rates response missing base or rates")
	}

	fx := &engine.FxRates{
		Base:      engine.CurrencyCode(base),
		Rates:     make(map[engine.CurrencyCode]decimal.Decimal, len(body.Rates)),
		UpdatedAt: time.Now().UTC(),
	}
	for code, rate := range body.Rates {
		fx.Rates[engine.CurrencyCode(code)] = decimal.NewFromFloat(rate)
	}
	return fx, nil
}
