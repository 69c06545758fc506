package dashboard

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lucasjlepore/ride-segments/pipeline"
	"github.com/lucasjlepore/ride-segments/segment"
)

// Ride is one uploaded and analysed ride.
type Ride struct {
	ID         string           `json:"id"`
	FileName   string           `json:"file_name"`
	UploadedAt time.Time        `json:"uploaded_at"`
	Report     *pipeline.Report `json:"-"`
}

// RideStore keeps analysed rides in memory for the lifetime of the process.
type RideStore struct {
	mu    sync.RWMutex
	rides map[string]*Ride
	memo  *pipeline.Memo
}

// NewRideStore returns an empty store whose segmentation cache holds
// cacheSize results.
func NewRideStore(cacheSize int) *RideStore {
	return &RideStore{
		rides: make(map[string]*Ride),
		memo:  pipeline.NewMemo(cacheSize),
	}
}

// Add stores report under a new random id.
func (s *RideStore) Add(fileName string, report *pipeline.Report) *Ride {
	ride := &Ride{
		ID:         uuid.NewString(),
		FileName:   fileName,
		UploadedAt: time.Now().UTC(),
		Report:     report,
	}
	s.mu.Lock()
	s.rides[ride.ID] = ride
	s.mu.Unlock()
	return ride
}

// Get returns the ride stored under id.
func (s *RideStore) Get(id string) (*Ride, bool) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	ride, ok := s.rides[id]
	return ride, ok
}

// List returns all rides, oldest upload first.
func (s *RideStore) List() []*Ride {
	s.mu.RLock()
	out := make([]*Ride, 0, len(s.rides))
	for _, r := range s.rides {
		out = append(out, r)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].UploadedAt.Equal(out[j].UploadedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].UploadedAt.Before(out[j].UploadedAt)
	})
	return out
}

// Delete removes the ride and its cached segmentations.
func (s *RideStore) Delete(id string) bool {
	s.mu.Lock()
	_, ok := s.rides[id]
	delete(s.rides, id)
	s.mu.Unlock()
	if ok {
		s.memo.Forget(id)
	}
	return ok
}

// Segment returns the ride's climbs and sprints for p, reusing earlier
// results for the same thresholds.
func (s *RideStore) Segment(ride *Ride, p pipeline.Params) ([]pipeline.ClimbReport, []segment.SprintSummary) {
	return s.memo.Segment(ride.ID, ride.Report.Points, p)
}
