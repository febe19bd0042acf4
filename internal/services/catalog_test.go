package services

import (
	"context"
	"testing"
	"time"

	"github.com/chachabrian/busbooking-backend/internal/apperrors"
	"github.com/chachabrian/busbooking-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func newCatalog(store *countingStore) *RouteCatalog {
	c := NewRouteCatalog(store, NewAvailabilityCalculator(store, time.UTC), time.UTC)
	c.now = func() time.Time { return fixedNow }
	return c
}

func routeInput(number string, dep time.Time) RouteInput {
	return RouteInput{
		RouteNumber:   ptr(number),
		Source:        ptr("Mumbai"),
		Destination:   ptr("Pune"),
		DepartureTime: ptr(dep),
		ArrivalTime:   ptr(dep.Add(3 * time.Hour)),
		Price:         ptr(520.0),
	}
}

func TestCreateRouteDefaultsAndValidation(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{MemoryStore: repository.NewMemoryStore()}
	catalog := newCatalog(store)

	route, err := catalog.Create(ctx, routeInput("BUS201", travelDay.Add(8*time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, 40, route.TotalSeats)
	assert.Empty(t, route.Amenities)

	_, err = catalog.Create(ctx, routeInput("BUS201", travelDay.Add(9*time.Hour)))
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))

	bad := routeInput("BUS299", travelDay.Add(8*time.Hour))
	bad.ArrivalTime = ptr(travelDay.Add(8 * time.Hour))
	_, err = catalog.Create(ctx, bad)
	require.Error(t, err)
	assert.Equal(t, "Arrival time must be after departure time", err.Error())

	bad = routeInput("BUS299", travelDay.Add(8*time.Hour))
	bad.Price = ptr(-1.0)
	_, err = catalog.Create(ctx, bad)
	assert.True(t, apperrors.IsValidation(err))

	bad = routeInput("BUS299", travelDay.Add(8*time.Hour))
	bad.TotalSeats = ptr(0)
	_, err = catalog.Create(ctx, bad)
	assert.True(t, apperrors.IsValidation(err))

	_, err = catalog.Create(ctx, RouteInput{RouteNumber: ptr("BUS300")})
	assert.True(t, apperrors.IsValidation(err))
}

func TestUpdateRouteMergesAndRevalidates(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{MemoryStore: repository.NewMemoryStore()}
	catalog := newCatalog(store)
	route, err := catalog.Create(ctx, routeInput("BUS201", travelDay.Add(8*time.Hour)))
	require.NoError(t, err)

	updated, err := catalog.Update(ctx, route.ID, RouteInput{Price: ptr(600.0), Amenities: []string{"WiFi", "AC"}})
	require.NoError(t, err)
	assert.Equal(t, 600.0, updated.Price)
	assert.Equal(t, "Mumbai", updated.Source)
	assert.Equal(t, []string{"WiFi", "AC"}, []string(updated.Amenities))

	_, err = catalog.Update(ctx, route.ID, RouteInput{ArrivalTime: ptr(travelDay)})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	stored, err := catalog.Get(ctx, route.ID)
	require.NoError(t, err)
	assert.Equal(t, 600.0, stored.Price)

	_, err = catalog.Update(ctx, 999, RouteInput{Price: ptr(1.0)})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestDeleteRoute(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{MemoryStore: repository.NewMemoryStore()}
	catalog := newCatalog(store)
	route, err := catalog.Create(ctx, routeInput("BUS201", travelDay.Add(8*time.Hour)))
	require.NoError(t, err)

	require.NoError(t, catalog.Delete(ctx, route.ID))
	_, err = catalog.Get(ctx, route.ID)
	assert.True(t, apperrors.IsNotFound(err))
	assert.True(t, apperrors.IsNotFound(catalog.Delete(ctx, route.ID)))
}

func TestSearchMatchesSubstringAndDay(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{MemoryStore: repository.NewMemoryStore()}
	catalog := newCatalog(store)

	late, err := catalog.Create(ctx, routeInput("BUS202", travelDay.Add(20*time.Hour)))
	require.NoError(t, err)
	early, err := catalog.Create(ctx, routeInput("BUS201", travelDay.Add(6*time.Hour)))
	require.NoError(t, err)
	_, err = catalog.Create(ctx, routeInput("BUS203", travelDay.AddDate(0, 0, 1).Add(6*time.Hour)))
	require.NoError(t, err)

	_, err = newAdmission(store).Admit(ctx, 1, BookingRequest{RouteID: early.ID, SeatNumbers: []int64{1, 2}, TravelDate: "2025-01-18"})
	require.NoError(t, err)

	out, err := catalog.Search(ctx, "mum", "PUNE", "2025-01-18")
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, early.ID, out[0].ID)
	assert.Equal(t, late.ID, out[1].ID)
	assert.Equal(t, 38, *out[0].AvailableSeats)
	assert.Equal(t, 40, *out[1].AvailableSeats)

	all, err := catalog.Search(ctx, "", "", "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Nil(t, all[0].AvailableSeats)

	none, err := catalog.Search(ctx, "Delhi", "", "")
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = catalog.Search(ctx, "", "", "tomorrow")
	assert.True(t, apperrors.IsValidation(err))
}

func TestUpcomingExcludesPastAndBoundsLimit(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{MemoryStore: repository.NewMemoryStore()}
	catalog := newCatalog(store)

	_, err := catalog.Create(ctx, routeInput("OLD100", fixedNow.Add(-time.Hour)))
	require.NoError(t, err)
	for i := 0; i < 25; i++ {
		_, err := catalog.Create(ctx, routeInput("BUS"+string(rune('A'+i)), fixedNow.Add(time.Duration(25-i)*time.Hour)))
		require.NoError(t, err)
	}

	out, err := catalog.Upcoming(ctx, 0)
	require.NoError(t, err)
	require.Len(t, out, DefaultUpcomingLimit)
	for i, r := range out {
		assert.False(t, r.DepartureTime.Before(fixedNow))
		if i > 0 {
			assert.False(t, r.DepartureTime.Before(out[i-1].DepartureTime))
		}
		require.NotNil(t, r.AvailableSeats)
	}

	all, err := catalog.Upcoming(ctx, MaxUpcomingLimit)
	require.NoError(t, err)
	assert.Len(t, all, 25)

	_, err = catalog.Upcoming(ctx, MaxUpcomingLimit+1)
	assert.True(t, apperrors.IsValidation(err))
	_, err = catalog.Upcoming(ctx, -1)
	assert.True(t, apperrors.IsValidation(err))
}

func TestBookedSeatsRequiresDateBeforeQuery(t *testing.T) {
	store := &countingStore{MemoryStore: repository.NewMemoryStore()}
	catalog := NewRouteCatalog(store, NewAvailabilityCalculator(failingBookings{}, time.UTC), time.UTC)

	_, err := catalog.BookedSeats(context.Background(), 1, "")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	_, err = catalog.BookedSeats(context.Background(), 1, "not-a-date")
	assert.True(t, apperrors.IsValidation(err))
}
