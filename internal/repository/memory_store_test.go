package repository

import (
	"context"
	"testing"
	"time"

	"github.com/chachabrian/busbooking-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2025, 1, 18, 0, 0, 0, 0, time.UTC)

func seedRoute(t *testing.T, s *MemoryStore, number, source, destination string, dep time.Time) *models.Route {
	t.Helper()
	r := &models.Route{
		RouteNumber:   number,
		Source:        source,
		Destination:   destination,
		DepartureTime: dep,
		ArrivalTime:   dep.Add(4 * time.Hour),
		Price:         500,
		TotalSeats:    40,
	}
	require.NoError(t, s.CreateRoute(context.Background(), r))
	return r
}

func TestMemoryStoreRejectsSeatAlreadyReserved(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	r := seedRoute(t, s, "BUS201", "Mumbai", "Pune", day.Add(8*time.Hour))

	first := &models.Booking{UserID: 1, RouteID: r.ID, SeatNumbers: []int64{1, 2}, TravelDate: day, Status: models.BookingStatusConfirmed}
	require.NoError(t, s.CreateConfirmed(ctx, first))

	second := &models.Booking{UserID: 2, RouteID: r.ID, SeatNumbers: []int64{2, 5}, TravelDate: day, Status: models.BookingStatusConfirmed}
	assert.ErrorIs(t, s.CreateConfirmed(ctx, second), ErrSeatTaken)

	otherDay := &models.Booking{UserID: 2, RouteID: r.ID, SeatNumbers: []int64{2}, TravelDate: day.AddDate(0, 0, 1), Status: models.BookingStatusConfirmed}
	assert.NoError(t, s.CreateConfirmed(ctx, otherDay))
}

func TestMemoryStoreCancelReleasesSeats(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	r := seedRoute(t, s, "BUS201", "Mumbai", "Pune", day.Add(8*time.Hour))

	b := &models.Booking{UserID: 1, RouteID: r.ID, SeatNumbers: []int64{7}, TravelDate: day, Status: models.BookingStatusConfirmed}
	require.NoError(t, s.CreateConfirmed(ctx, b))
	require.NoError(t, s.Cancel(ctx, b))
	assert.Equal(t, models.BookingStatusCancelled, b.Status)
	assert.ErrorIs(t, s.Cancel(ctx, b), ErrAlreadyCancelled)

	again := &models.Booking{UserID: 2, RouteID: r.ID, SeatNumbers: []int64{7}, TravelDate: day, Status: models.BookingStatusConfirmed}
	assert.NoError(t, s.CreateConfirmed(ctx, again))

	confirmed, err := s.ConfirmedBookings(ctx, []uint{r.ID}, day, day.Add(24*time.Hour-time.Millisecond))
	require.NoError(t, err)
	require.Len(t, confirmed, 1)
	assert.Equal(t, again.ID, confirmed[0].ID)
}

func TestMemoryStoreListRoutesFilters(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	late := seedRoute(t, s, "BUS202", "Mumbai", "Delhi", day.Add(10*time.Hour))
	early := seedRoute(t, s, "BUS201", "Navi Mumbai", "Pune", day.Add(8*time.Hour))
	seedRoute(t, s, "BUS203", "Bangalore", "Chennai", day.Add(7*time.Hour))

	routes, err := s.ListRoutes(ctx, RouteFilter{Source: "mUmBaI"})
	require.NoError(t, err)
	require.Len(t, routes, 2)
	assert.Equal(t, early.ID, routes[0].ID)
	assert.Equal(t, late.ID, routes[1].ID)

	from := day.Add(9 * time.Hour)
	routes, err = s.ListRoutes(ctx, RouteFilter{DepartureFrom: &from})
	require.NoError(t, err)
	require.Len(t, routes, 1)
	assert.Equal(t, "BUS202", routes[0].RouteNumber)

	routes, err = s.ListRoutes(ctx, RouteFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, routes, 1)
}

func TestMemoryStoreRouteNumberUnique(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	r := seedRoute(t, s, "BUS201", "Mumbai", "Pune", day)

	dup := &models.Route{RouteNumber: "BUS201", Source: "A", Destination: "B", DepartureTime: day, ArrivalTime: day.Add(time.Hour), TotalSeats: 10}
	assert.ErrorIs(t, s.CreateRoute(ctx, dup), ErrDuplicate)

	require.NoError(t, s.DeleteRoute(ctx, r.ID))
	assert.ErrorIs(t, s.DeleteRoute(ctx, r.ID), ErrNotFound)
	assert.ErrorIs(t, s.CreateRoute(ctx, dup), ErrDuplicate)
}

func TestMemoryStoreBookingKeepsDeletedRoute(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	r := seedRoute(t, s, "BUS201", "Mumbai", "Pune", day)
	b := &models.Booking{UserID: 1, RouteID: r.ID, SeatNumbers: []int64{1}, TravelDate: day, BookingDate: time.Now(), Status: models.BookingStatusConfirmed}
	require.NoError(t, s.CreateConfirmed(ctx, b))
	require.NoError(t, s.DeleteRoute(ctx, r.ID))

	got, err := s.FindBooking(ctx, b.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Route)
	assert.Equal(t, "BUS201", got.Route.RouteNumber)
}

func TestMemoryStoreUsers(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	u := &models.User{Name: "Asha", Email: "asha@example.com", PasswordHash: "x"}
	require.NoError(t, s.CreateUser(ctx, u))
	assert.ErrorIs(t, s.CreateUser(ctx, &models.User{Email: "ASHA@example.com"}), ErrDuplicate)

	got, err := s.FindUserByEmail(ctx, "asha@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = s.FindUser(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}
