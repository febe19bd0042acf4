package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/chachabrian/busbooking-backend/internal/models"
	"github.com/chachabrian/busbooking-backend/internal/repository"
	"github.com/chachabrian/busbooking-backend/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserNotifierTextsBookingOwner(t *testing.T) {
	ctx := context.Background()
	messages := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		messages <- r.PostForm.Get("to") + "|" + r.PostForm.Get("message")
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	store := repository.NewMemoryStore()
	route := &models.Route{RouteNumber: "BUS201", Source: "Mumbai", Destination: "Pune", DepartureTime: travelDay.Add(8 * time.Hour), ArrivalTime: travelDay.Add(12 * time.Hour), Price: 520, TotalSeats: 40}
	require.NoError(t, store.CreateRoute(ctx, route))
	user := &models.User{Name: "Asha", Email: "asha@example.com", Phone: "+254700000000", PasswordHash: "x"}
	require.NoError(t, store.CreateUser(ctx, user))

	n := NewUserNotifier(store, store, utils.Mailer{}, utils.SMSSender{Username: "sandbox", APIKey: "key", Endpoint: srv.URL})
	n.BookingConfirmed(ctx, models.Booking{ID: 7, UserID: user.ID, RouteID: route.ID, SeatNumbers: []int64{1, 2}, TravelDate: travelDay, TotalAmount: 1040})

	select {
	case got := <-messages:
		assert.Contains(t, got, "+254700000000|Booking #7 confirmed")
		assert.Contains(t, got, "seats 1, 2")
	case <-time.After(time.Second):
		t.Fatal("sms not sent")
	}
}

func TestTripNoticeFor(t *testing.T) {
	route := models.Route{RouteNumber: "BUS201", Source: "Mumbai", Destination: "Pune", DepartureTime: travelDay.Add(8 * time.Hour)}
	n := TripNoticeFor(models.Booking{ID: 3, SeatNumbers: []int64{4, 9}, TravelDate: travelDay, TotalAmount: 99}, route, "Asha")

	assert.Equal(t, "4, 9", n.Seats)
	assert.Equal(t, "2025-01-18", n.TravelDate)
	assert.Equal(t, "Sat, 18 Jan 2025 08:00", n.Departure)
}
