package services

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/chachabrian/busbooking-backend/internal/apperrors"
	"github.com/chachabrian/busbooking-backend/internal/models"
	"github.com/chachabrian/busbooking-backend/internal/repository"
	"github.com/chachabrian/busbooking-backend/pkg/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderTicketPDF(t *testing.T) {
	pdf, err := RenderTicketPDF("BusLine", utils.TripNotice{BookingID: 4, Name: "Asha", RouteNumber: "BUS201", Seats: "1, 2"}, fixedNow)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
}

func TestIssueTicketStoresPDF(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{MemoryStore: repository.NewMemoryStore()}
	route := newRoute(t, store, "BUS201", travelDay.Add(8*time.Hour), 40, 520)
	user := &models.User{Name: "Asha", Email: "asha@example.com", PasswordHash: "x"}
	require.NoError(t, store.CreateUser(ctx, user))

	admission := newAdmission(store)
	booking, err := admission.Admit(ctx, user.ID, BookingRequest{RouteID: route.ID, SeatNumbers: []int64{5}, TravelDate: "2025-01-18"})
	require.NoError(t, err)

	dir := t.TempDir()
	storage, err := NewLocalStorage(dir)
	require.NoError(t, err)
	tickets := NewTicketService(admission, store, store, storage, "BusLine")

	ticket, err := tickets.Issue(ctx, user.ID, booking.ID)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(ticket.PDF, []byte("%PDF")))
	assert.Equal(t, filepath.Join(dir, "tickets"), filepath.Dir(ticket.Location))
	_, err = uuid.Parse(strings.TrimSuffix(filepath.Base(ticket.Location), ".pdf"))
	assert.NoError(t, err, "archive key must not be derived from the booking id")

	data, err := os.ReadFile(ticket.Location)
	require.NoError(t, err)
	assert.Equal(t, ticket.PDF, data)

	again, err := tickets.Issue(ctx, user.ID, booking.ID)
	require.NoError(t, err)
	assert.NotEqual(t, ticket.Location, again.Location)

	_, err = tickets.Issue(ctx, user.ID+100, booking.ID)
	assert.True(t, apperrors.IsForbidden(err))

	_, err = admission.Cancel(ctx, user.ID, booking.ID)
	require.NoError(t, err)
	_, err = tickets.Issue(ctx, user.ID, booking.ID)
	assert.True(t, apperrors.IsConflict(err))
}
