/*
refresher.go - Background refresh loop

PURPOSE:
  Periodically asks the provider to refresh when its table has aged
  past the provider's MaxAge. The check interval is much shorter than
  the max age so a failed fetch gets retried long before the next
  24-hour boundary.

USAGE:
  refresher := rates.NewRefresher(provider)
  refresher.Start()
  // ... on shutdown
  refresher.Stop()
*/
package rates

import (
	"context"
	"log"
	"sync"
	"time"
)

// Refresher runs RefreshIfStale on a ticker.
type Refresher struct {
	Provider      *Provider
	CheckInterval time.Duration

	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewRefresher creates a refresher checking hourly.
func NewRefresher(provider *Provider) *Refresher {
	return &Refresher{
		Provider:      provider,
		CheckInterval: 1 * time.Hour,
		stop:          make(chan bool),
	}
}

// Start begins the background loop. The first check runs immediately.
func (r *Refresher) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ticker = time.NewTicker(r.CheckInterval)
	r.wg.Add(1)

	go r.run()

	log.Printf("[Rates] Refresher started with check interval: %v", r.CheckInterval)
}

// Stop stops the loop and waits for it to exit.
func (r *Refresher) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ticker != nil {
		r.ticker.Stop()
		close(r.stop)
		r.wg.Wait()
		log.Println("[Rates] Refresher stopped")
	}
}

func (r *Refresher) run() {
	defer r.wg.Done()

	r.Provider.RefreshIfStale(context.Background())

	for {
		select {
		case <-r.ticker.C:
			r.Provider.RefreshIfStale(context.Background())
		case <-r.stop:
			return
		}
	}
}
