package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/chachabrian/busbooking-backend/internal/models"
	"github.com/chachabrian/busbooking-backend/internal/repository"
	"github.com/stretchr/testify/require"
)

var (
	travelDay = time.Date(2025, 1, 18, 0, 0, 0, 0, time.UTC)
	fixedNow  = time.Date(2025, 1, 10, 9, 30, 0, 0, time.UTC)
)

// countingStore records conflict queries made against the wrapped store.
type countingStore struct {
	*repository.MemoryStore
	mu              sync.Mutex
	conflictQueries int
}

func (s *countingStore) ConflictingBookings(ctx context.Context, routeID uint, from, to time.Time, seats []int64) ([]models.Booking, error) {
	s.mu.Lock()
	s.conflictQueries++
	s.mu.Unlock()
	return s.MemoryStore.ConflictingBookings(ctx, routeID, from, to, seats)
}

func (s *countingStore) queries() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conflictQueries
}

// staleStore answers the first blind conflict queries with nothing, as a
// read taken just before another request commits would.
type staleStore struct {
	*repository.MemoryStore
	mu      sync.Mutex
	blind   int
	queries int
}

func (s *staleStore) ConflictingBookings(ctx context.Context, routeID uint, from, to time.Time, seats []int64) ([]models.Booking, error) {
	s.mu.Lock()
	s.queries++
	stale := s.queries <= s.blind
	s.mu.Unlock()
	if stale {
		return nil, nil
	}
	return s.MemoryStore.ConflictingBookings(ctx, routeID, from, to, seats)
}

type recordingPublisher struct {
	mu      sync.Mutex
	updates []SeatUpdate
}

func (p *recordingPublisher) PublishSeatUpdate(_ context.Context, u SeatUpdate) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updates = append(p.updates, u)
	return nil
}

func (p *recordingPublisher) all() []SeatUpdate {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]SeatUpdate(nil), p.updates...)
}

func newRoute(t *testing.T, store RouteStore, number string, dep time.Time, seats int, price float64) *models.Route {
	t.Helper()
	r := &models.Route{
		RouteNumber:   number,
		Source:        "Mumbai",
		Destination:   "Pune",
		DepartureTime: dep,
		ArrivalTime:   dep.Add(4 * time.Hour),
		Price:         price,
		TotalSeats:    seats,
	}
	require.NoError(t, store.CreateRoute(context.Background(), r))
	return r
}

func newAdmission(store *countingStore, opts ...AdmissionOption) *BookingAdmission {
	opts = append([]AdmissionOption{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewBookingAdmission(store, store, time.UTC, opts...)
}
