package orders

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/swagatsuman/delivery-app-sub002/pkg/logger"
)

// newTestService builds a Service over src with a frozen clock.
func newTestService(src Source, now time.Time) *Service {
	s := NewService(src, logger.New(logger.Config{Level: "error", Format: "text", Output: "stderr"}))
	s.now = func() time.Time { return now }
	return s
}

// memorySource is an in-memory Source for tests. Failure modes are switched
// per tier so the resolver's fallback chain can be exercised against one
// fixture dataset.
type memorySource struct {
	mu   sync.Mutex
	raws []Raw

	hardErr   error // every query fails
	failSort  bool  // sorted queries fail with CapabilityError
	tier2Err  error // unsorted status-filtered queries fail
	updateErr error

	queries []Query
	watch   chan struct{}
	watchErr error
}

func newMemorySource() *memorySource {
	return &memorySource{watch: make(chan struct{}, 8)}
}

func (m *memorySource) add(id string, doc bson.M) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.raws = append(m.raws, Raw{ID: id, Doc: doc})
}

func (m *memorySource) Query(_ context.Context, q Query) ([]Raw, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, q)

	if m.hardErr != nil {
		return nil, m.hardErr
	}
	if q.SortDesc && m.failSort {
		return nil, &CapabilityError{Op: "find", Err: errors.New("no query execution plans")}
	}
	if !q.SortDesc && q.Status != "" && m.tier2Err != nil {
		return nil, m.tier2Err
	}

	var out []Raw
	for _, raw := range m.raws {
		if asString(raw.Doc["establishmentId"]) != q.EstablishmentID {
			continue
		}
		if q.Status != "" && asString(raw.Doc["status"]) != string(q.Status) {
			continue
		}
		out = append(out, raw)
	}
	if q.SortDesc {
		sort.SliceStable(out, func(i, j int) bool {
			ti, _ := ParseTimestamp(out[i].Doc["createdAt"])
			tj, _ := ParseTimestamp(out[j].Doc["createdAt"])
			return ti.After(tj)
		})
	}
	return out, nil
}

func (m *memorySource) Get(_ context.Context, id string) (Raw, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, raw := range m.raws {
		if raw.ID == id {
			return raw, nil
		}
	}
	return Raw{}, ErrOrderNotFound
}

func (m *memorySource) UpdateStatus(_ context.Context, id string, status Status, entry TimelineEntry, updatedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	for _, raw := range m.raws {
		if raw.ID != id {
			continue
		}
		raw.Doc["status"] = string(status)
		raw.Doc["updatedAt"] = updatedAt
		timeline := asSlice(raw.Doc["timeline"])
		raw.Doc["timeline"] = append(timeline, bson.M{
			"status":    string(entry.Status),
			"timestamp": entry.Timestamp,
			"note":      entry.Note,
		})
		return nil
	}
	return ErrOrderNotFound
}

func (m *memorySource) Watch(_ context.Context, _ string) (<-chan struct{}, error) {
	if m.watchErr != nil {
		return nil, m.watchErr
	}
	return m.watch, nil
}

func (m *memorySource) notify() {
	m.watch <- struct{}{}
}

func (m *memorySource) queryCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queries)
}
