package monitor

import (
	"sync"
	"time"
)

// PricePoint is one observed cheapest-sale price for a player URL.
type PricePoint struct {
	Cheapest int
	At       time.Time
}

// History keeps the most recent price observation per player URL so each
// cycle can compare against the previous one. It is safe for concurrent use.
type History struct {
	mu    sync.RWMutex
	store map[string]PricePoint
}

func NewHistory() *History {
	return &History{store: make(map[string]PricePoint)}
}

// Record stores the new observation and returns the previous one, if any.
func (h *History) Record(url string, cheapest int) (PricePoint, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	prev, ok := h.store[url]
	h.store[url] = PricePoint{Cheapest: cheapest, At: time.Now()}
	return prev, ok
}

// Last returns the most recent observation for url, if any.
func (h *History) Last(url string) (PricePoint, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	p, ok := h.store[url]
	return p, ok
}

// Len returns the number of tracked URLs.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.store)
}
