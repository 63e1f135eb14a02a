package services

import (
	"sync"

	"alfredoptarigan/recruiter-assistant/internal/models"
)

const (
	DefaultDedupCapacity = 1000
	DefaultDedupRetain   = 500
)

// DeduplicationGuard remembers recently seen deliveries.
type DeduplicationGuard interface {
	// SeenOrRecord reports whether fp was already recorded; if not, it records it.
	SeenOrRecord(fp models.Fingerprint) bool
	// Forget releases fp so a redelivery of the same event is accepted again.
	Forget(fp models.Fingerprint)
	Len() int
}

type dedupGuard struct {
	mu       sync.Mutex
	seen     map[models.Fingerprint]struct{}
	order    []models.Fingerprint
	capacity int
	retain   int
}

// NewDeduplicationGuard holds at most capacity fingerprints. On overflow the oldest are
// evicted until only the most recent retain remain.
func NewDeduplicationGuard(capacity, retain int) DeduplicationGuard {
	if capacity <= 0 {
		capacity = DefaultDedupCapacity
	}
	if retain <= 0 || retain >= capacity {
		retain = capacity / 2
	}

	return &dedupGuard{
		seen:     make(map[models.Fingerprint]struct{}, capacity+1),
		order:    make([]models.Fingerprint, 0, capacity+1),
		capacity: capacity,
		retain:   retain,
	}
}

func (g *dedupGuard) SeenOrRecord(fp models.Fingerprint) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.seen[fp]; ok {
		return true
	}

	g.seen[fp] = struct{}{}
	g.order = append(g.order, fp)

	if len(g.order) > g.capacity {
		drop := len(g.order) - g.retain
		for _, old := range g.order[:drop] {
			delete(g.seen, old)
		}
		kept := make([]models.Fingerprint, g.retain, g.capacity+1)
		copy(kept, g.order[drop:])
		g.order = kept
	}

	return false
}

func (g *dedupGuard) Forget(fp models.Fingerprint) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.seen[fp]; !ok {
		return
	}
	delete(g.seen, fp)
	for i, recorded := range g.order {
		if recorded == fp {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
}

func (g *dedupGuard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.order)
}
