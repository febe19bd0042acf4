package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingViewIncludesRouteProjection(t *testing.T) {
	dep := time.Date(2025, 1, 18, 8, 0, 0, 0, time.UTC)
	route := &Route{ID: 3, RouteNumber: "BUS201", Source: "Mumbai", Destination: "Pune",
		DepartureTime: dep, ArrivalTime: dep.Add(4 * time.Hour), Price: 520, TotalSeats: 40}
	b := Booking{ID: 1, RouteID: 3, Route: route, SeatNumbers: []int64{1, 2}, Status: BookingStatusConfirmed}

	v := b.View()
	require.NotNil(t, v.Route)
	assert.Equal(t, "BUS201", v.Route.RouteNumber)
	assert.Equal(t, 520.0, v.Route.Price)

	v = Booking{ID: 2}.View()
	assert.Nil(t, v.Route)
}

func TestUserPassword(t *testing.T) {
	u := User{Password: "secret123"}
	require.NoError(t, u.HashPassword())
	assert.Empty(t, u.Password)
	assert.NotEmpty(t, u.PasswordHash)
	assert.NoError(t, u.CheckPassword("secret123"))
	assert.Error(t, u.CheckPassword("wrong"))
}
