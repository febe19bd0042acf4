package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/chachabrian/busbooking-backend/internal/models"
	"github.com/lib/pq"
)

type seatKey struct {
	routeID uint
	day     int64
	seat    int64
}

// MemoryStore is an in-process store with the same uniqueness rules as the
// PostgreSQL schema. It backs STORE=memory and the test suites.
type MemoryStore struct {
	mu           sync.Mutex
	nextID       uint
	routes       map[uint]models.Route
	deleted      map[uint]models.Route
	bookings     map[uint]models.Booking
	reservations map[seatKey]uint
	users        map[uint]models.User
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		routes:       make(map[uint]models.Route),
		deleted:      make(map[uint]models.Route),
		bookings:     make(map[uint]models.Booking),
		reservations: make(map[seatKey]uint),
		users:        make(map[uint]models.User),
	}
}

func (s *MemoryStore) id() uint {
	s.nextID++
	return s.nextID
}

func (s *MemoryStore) FindRoute(_ context.Context, id uint) (*models.Route, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	route, ok := s.routes[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneRoute(route), nil
}

func (s *MemoryStore) ListRoutes(_ context.Context, f RouteFilter) ([]models.Route, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	src := strings.ToLower(f.Source)
	dst := strings.ToLower(f.Destination)
	out := make([]models.Route, 0, len(s.routes))
	for _, r := range s.routes {
		if src != "" && !strings.Contains(strings.ToLower(r.Source), src) {
			continue
		}
		if dst != "" && !strings.Contains(strings.ToLower(r.Destination), dst) {
			continue
		}
		if f.DepartureFrom != nil && r.DepartureTime.Before(*f.DepartureFrom) {
			continue
		}
		if f.DepartureTo != nil && r.DepartureTime.After(*f.DepartureTo) {
			continue
		}
		out = append(out, *cloneRoute(r))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DepartureTime.Equal(out[j].DepartureTime) {
			return out[i].ID < out[j].ID
		}
		return out[i].DepartureTime.Before(out[j].DepartureTime)
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *MemoryStore) CreateRoute(_ context.Context, route *models.Route) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.routeNumberTaken(route.RouteNumber, 0) {
		return ErrDuplicate
	}
	now := time.Now()
	route.ID = s.id()
	route.CreatedAt, route.UpdatedAt = now, now
	s.routes[route.ID] = *cloneRoute(*route)
	return nil
}

func (s *MemoryStore) SaveRoute(_ context.Context, route *models.Route) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.routes[route.ID]; !ok {
		return ErrNotFound
	}
	if s.routeNumberTaken(route.RouteNumber, route.ID) {
		return ErrDuplicate
	}
	route.UpdatedAt = time.Now()
	s.routes[route.ID] = *cloneRoute(*route)
	return nil
}

func (s *MemoryStore) DeleteRoute(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	route, ok := s.routes[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.routes, id)
	s.deleted[id] = route
	return nil
}

// routeNumberTaken mirrors the unique index, which also covers soft-deleted rows.
func (s *MemoryStore) routeNumberTaken(number string, except uint) bool {
	for id, r := range s.routes {
		if id != except && r.RouteNumber == number {
			return true
		}
	}
	for id, r := range s.deleted {
		if id != except && r.RouteNumber == number {
			return true
		}
	}
	return false
}

func (s *MemoryStore) ConfirmedBookings(_ context.Context, routeIDs []uint, from, to time.Time) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wanted := make(map[uint]struct{}, len(routeIDs))
	for _, id := range routeIDs {
		wanted[id] = struct{}{}
	}
	var out []models.Booking
	for _, b := range s.sortedBookings() {
		if _, ok := wanted[b.RouteID]; !ok {
			continue
		}
		if b.Status == models.BookingStatusConfirmed && inWindow(b.TravelDate, from, to) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *MemoryStore) ConflictingBookings(_ context.Context, routeID uint, from, to time.Time, seats []int64) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	requested := make(map[int64]struct{}, len(seats))
	for _, seat := range seats {
		requested[seat] = struct{}{}
	}
	var out []models.Booking
	for _, b := range s.sortedBookings() {
		if b.RouteID != routeID || b.Status != models.BookingStatusConfirmed || !inWindow(b.TravelDate, from, to) {
			continue
		}
		for _, seat := range b.SeatNumbers {
			if _, ok := requested[seat]; ok {
				out = append(out, b)
				break
			}
		}
	}
	return out, nil
}

func (s *MemoryStore) CreateConfirmed(_ context.Context, booking *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	day := booking.TravelDate.UnixMilli()
	for _, seat := range booking.SeatNumbers {
		if _, taken := s.reservations[seatKey{booking.RouteID, day, seat}]; taken {
			return ErrSeatTaken
		}
	}
	now := time.Now()
	booking.ID = s.id()
	booking.CreatedAt, booking.UpdatedAt = now, now
	for _, seat := range booking.SeatNumbers {
		s.reservations[seatKey{booking.RouteID, day, seat}] = booking.ID
	}
	stored := *booking
	stored.Route = nil
	stored.SeatNumbers = append(pq.Int64Array(nil), booking.SeatNumbers...)
	s.bookings[booking.ID] = stored
	return nil
}

func (s *MemoryStore) FindBooking(_ context.Context, id uint) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := s.withRoute(b)
	return &out, nil
}

func (s *MemoryStore) ListUserBookings(_ context.Context, userID uint) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Booking
	for _, b := range s.sortedBookings() {
		if b.UserID == userID {
			out = append(out, s.withRoute(b))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].BookingDate.After(out[j].BookingDate)
	})
	return out, nil
}

func (s *MemoryStore) Cancel(_ context.Context, booking *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.bookings[booking.ID]
	if !ok {
		return ErrNotFound
	}
	if stored.Status != models.BookingStatusConfirmed {
		return ErrAlreadyCancelled
	}
	now := time.Now()
	stored.Status = models.BookingStatusCancelled
	stored.UpdatedAt = now
	s.bookings[booking.ID] = stored
	for key, owner := range s.reservations {
		if owner == booking.ID {
			delete(s.reservations, key)
		}
	}
	booking.Status = models.BookingStatusCancelled
	booking.UpdatedAt = now
	return nil
}

func (s *MemoryStore) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return ErrDuplicate
		}
	}
	now := time.Now()
	user.ID = s.id()
	user.CreatedAt, user.UpdatedAt = now, now
	s.users[user.ID] = *user
	return nil
}

func (s *MemoryStore) FindUser(_ context.Context, id uint) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *MemoryStore) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			out := u
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) SaveUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; !ok {
		return ErrNotFound
	}
	for id, u := range s.users {
		if id != user.ID && strings.EqualFold(u.Email, user.Email) {
			return ErrDuplicate
		}
	}
	user.UpdatedAt = time.Now()
	s.users[user.ID] = *user
	return nil
}

// sortedBookings returns bookings by ascending id; callers hold mu.
func (s *MemoryStore) sortedBookings() []models.Booking {
	out := make([]models.Booking, 0, len(s.bookings))
	for _, b := range s.bookings {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// withRoute attaches the route, including a deleted one; callers hold mu.
func (s *MemoryStore) withRoute(b models.Booking) models.Booking {
	b.SeatNumbers = append(pq.Int64Array(nil), b.SeatNumbers...)
	if r, ok := s.routes[b.RouteID]; ok {
		b.Route = cloneRoute(r)
	} else if r, ok := s.deleted[b.RouteID]; ok {
		b.Route = cloneRoute(r)
	}
	return b
}

func cloneRoute(r models.Route) *models.Route {
	r.Amenities = append(pq.StringArray(nil), r.Amenities...)
	return &r
}

func inWindow(t, from, to time.Time) bool {
	return !t.Before(from) && !t.After(to)
}
