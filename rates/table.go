/*
Package rates owns fetching, caching, and refreshing the FX rate table.

PURPOSE:
  The valuation engine takes an optional *engine.FxRates and fails open
  without one; this package is the collaborator that tries to keep a
  table available. It fetches a public exchange-rate endpoint at most
  once per refresh window (24h by default), retains the last good table
  across fetch failures, and persists it through a pluggable Cache so a
  restart doesn't need the network.

COMPONENTS:
  table.go:     Serialized table document (cache payload)
  cache.go:     Cache interface + sqlite and redis implementations
  provider.go:  Fetch, staleness policy, retain-last-good
  refresher.go: Background refresh loop

SEE ALSO:
  - engine/fx.go: The consumer of the table
*/
package rates

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/stay-engine/engine"
)

// tableJSON is the cache payload for a rate table.
type tableJSON struct {
	Base      string             `json:"base"`
	Rates     map[string]float64 `json:"rates"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// EncodeTable serializes a rate table for caching.
func EncodeTable(fx *engine.FxRates) (string, error) {
	doc := tableJSON{
		Base:      string(fx.Base),
		Rates:     make(map[string]float64, len(fx.Rates)),
		UpdatedAt: fx.UpdatedAt,
	}
	for code, rate := range fx.Rates {
		f, _ := rate.Float64()
		doc.Rates[string(code)] = f
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to encode rate table: %w", err)
	}
	return string(b), nil
}

// DecodeTable deserializes a cached rate table.
func DecodeTable(doc string) (*engine.FxRates, error) {
	var tj tableJSON
	if err := json.Unmarshal([]byte(doc), &tj); err != nil {
		return nil, fmt.Errorf("failed to decode rate table: %w", err)
	}
	fx := &engine.FxRates{
		Base:      engine.CurrencyCode(tj.Base),
		Rates:     make(map[engine.CurrencyCode]decimal.Decimal, len(tj.Rates)),
		UpdatedAt: tj.UpdatedAt,
	}
	for code, rate := range tj.Rates {
		fx.Rates[engine.CurrencyCode(code)] = decimal.NewFromFloat(rate)
	}
	return fx, nil
}
