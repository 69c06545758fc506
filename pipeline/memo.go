package pipeline

import (
	"container/list"
	"encoding/json"
	"strings"
	"sync"

	"github.com/lucasjlepore/ride-segments/segment"
)

// DefaultMemoSize is the number of segmentations a Memo keeps.
const DefaultMemoSize = 64

// Memo caches Segment results per ride and parameter set, evicting the least
// recently used entry once full. It is safe for concurrent use.
type Memo struct {
	mu       sync.Mutex
	capacity int
	order    *list.List
	entries  map[string]*list.Element
}

type memoEntry struct {
	key     string
	climbs  []ClimbReport
	sprints []segment.SprintSummary
}

// NewMemo returns a Memo holding at most capacity results.
func NewMemo(capacity int) *Memo {
	if capacity <= 0 {
		capacity = DefaultMemoSize
	}
	return &Memo{
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[string]*list.Element, capacity),
	}
}

// Segment returns the cached segmentation of rideID for p, computing it from
// points on a miss. Callers must not modify the returned slices.
func (m *Memo) Segment(rideID string, points []segment.Point, p Params) ([]ClimbReport, []segment.SprintSummary) {
	key := memoKey(rideID, p)

	m.mu.Lock()
	if el, ok := m.entries[key]; ok {
		m.order.MoveToFront(el)
		e := el.Value.(*memoEntry)
		m.mu.Unlock()
		return e.climbs, e.sprints
	}
	m.mu.Unlock()

	climbs, sprints := Segment(points, p)

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[key]; !ok {
		m.entries[key] = m.order.PushFront(&memoEntry{key: key, climbs: climbs, sprints: sprints})
		for m.order.Len() > m.capacity {
			oldest := m.order.Back()
			m.order.Remove(oldest)
			delete(m.entries, oldest.Value.(*memoEntry).key)
		}
	}
	return climbs, sprints
}

// Forget drops every cached result for rideID.
func (m *Memo) Forget(rideID string) {
	prefix := rideID + "|"
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, el := range m.entries {
		if strings.HasPrefix(key, prefix) {
			m.order.Remove(el)
			delete(m.entries, key)
		}
	}
}

// Len returns the number of cached results.
func (m *Memo) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.order.Len()
}

func memoKey(rideID string, p Params) string {
	// Params only holds numbers, so encoding cannot fail.
	b, _ := json.Marshal(p)
	return rideID + "|" + string(b)
}
