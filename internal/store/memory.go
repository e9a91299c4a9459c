package store

import (
	"errors"
	"sync"
	"time"

	"github.com/blueforce/skyshield/internal/airquality"
)

var (
	// ErrNotFound is returned before the first cycle has published, or
	// when a requested range holds no results.
	ErrNotFound = errors.New("no aggregation results available")
)

// MemoryStore is the concurrency-safe owner of the published "current
// result" plus a bounded history of past cycles. Publishing replaces the
// current handle atomically under the lock; reads hand out deep copies so
// a consumer can never observe a cycle being assembled.
type MemoryStore struct {
	mu sync.RWMutex

	results []airquality.Result

	// retention configuration
	maxHistory int           // max number of results kept (0 = unlimited)
	maxAge     time.Duration // optional max age for results
}

// NewMemoryStore creates a store with optional retention limits.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		maxHistory: maxHistory,
		maxAge:     maxAge,
	}
}

// Publish appends a cycle result and enforces retention. The newest entry
// becomes the current result in the same critical section.
func (s *MemoryStore) Publish(res airquality.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.results = append(s.results, res.Clone())

	// Enforce retention by count.
	if s.maxHistory > 0 && len(s.results) > s.maxHistory {
		over := len(s.results) - s.maxHistory
		s.results = s.results[over:]
	}

	// Enforce retention by age.
	if s.maxAge > 0 {
		cutoff := time.Now().Add(-s.maxAge)
		i := 0
		for ; i < len(s.results); i++ {
			if !s.results[i].Timestamp.Before(cutoff) {
				break
			}
		}
		if i > 0 && i < len(s.results) {
			s.results = s.results[i:]
		}
	}
}

// Latest returns a copy of the most recently published result.
func (s *MemoryStore) Latest() (airquality.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.results) == 0 {
		return airquality.Result{}, ErrNotFound
	}
	return s.results[len(s.results)-1].Clone(), nil
}

// Range returns copies of all results published between from and to,
// inclusive.
func (s *MemoryStore) Range(from, to time.Time) ([]airquality.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []airquality.Result
	for _, res := range s.results {
		if !res.Timestamp.Before(from) && !res.Timestamp.After(to) {
			out = append(out, res.Clone())
		}
	}

	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return out, nil
}

var _ airquality.Store = (*MemoryStore)(nil)
