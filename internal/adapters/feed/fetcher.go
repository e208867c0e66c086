// Package feed fetches live index prices and feeds them to the sample queue.
package feed

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
)

// DefaultSymbols are DAX, Euro Stoxx 50 and S&P 500.
var DefaultSymbols = []string{"^GDAXI", "^STOXX50E", "^GSPC"}

// Fetcher returns the current price of one index symbol.
type Fetcher interface {
	Fetch(ctx context.Context, symbol string) (float64, error)
}

// Default random walk settings.
const (
	defaultSeed      = 42
	defaultStepRatio = 0.002
)

// basePrices seeds the random walk with plausible index levels.
var basePrices = map[string]float64{
	"^GDAXI":    18000,
	"^STOXX50E": 4900,
	"^GSPC":     5200,
}

// SimulatedFetcher walks each symbol's price randomly from a base level.
// With a fixed seed the sequence is reproducible.
type SimulatedFetcher struct {
	mu     sync.Mutex
	rng    *rand.Rand
	step   float64
	prices map[string]float64
}

// NewSimulatedFetcher creates a fetcher seeded with seed.
func NewSimulatedFetcher(seed int64) *SimulatedFetcher {
	if seed == 0 {
		seed = defaultSeed
	}
	prices := make(map[string]float64, len(basePrices))
	for s, p := range basePrices {
		prices[s] = p
	}
	return &SimulatedFetcher{
		rng:    rand.New(rand.NewSource(seed)), //nolint:gosec // deterministic simulation, not security relevant
		step:   defaultStepRatio,
		prices: prices,
	}
}

// Fetch moves the price by at most the step ratio and returns it.
func (f *SimulatedFetcher) Fetch(ctx context.Context, symbol string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("fetch %s: %w", symbol, err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.prices[symbol]
	if !ok {
		p = 1000
	}
	p *= 1 + (f.rng.Float64()*2-1)*f.step
	f.prices[symbol] = p
	return p, nil
}
