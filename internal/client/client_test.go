package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"zaimka/internal/api"
	"zaimka/internal/config"
	"zaimka/internal/database"
	"zaimka/internal/halfday"
	"zaimka/internal/models"
	"zaimka/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestBackend starts a real API server on an in-memory database and
// returns a client pointed at it.
func newTestBackend(t *testing.T) (*Client, *database.DB) {
	t.Helper()

	logger := zerolog.Nop()
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{}
	cfg.Auth.SessionTTLSeconds = 3600
	cfg.RateLimit.RPS = 1000
	cfg.RateLimit.Burst = 1000
	cfg.Booking.MaxBookingDays = models.MaxBookingDays

	sessions := repository.NewMemorySessionRepository(time.Hour)
	srv := api.NewHTTPServer(cfg, db, sessions, nil, &logger)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return New(ts.URL), db
}

func seedCabin(t *testing.T, db *database.DB, slug string, halfDay bool) *models.Cabin {
	t.Helper()
	cabin := &models.Cabin{
		Slug:           slug,
		Name:           "Cabin " + slug,
		CompanySlug:    "taiga",
		HalfDayEnabled: halfDay,
		IsActive:       true,
	}
	require.NoError(t, db.CreateCabin(context.Background(), cabin))
	return cabin
}

func futureDate(days int) models.Date {
	return models.DateOf(time.Now().UTC()).AddDays(days)
}

func TestGetCabin(t *testing.T) {
	c, db := newTestBackend(t)
	seedCabin(t, db, "kedr", true)

	cabin, err := c.GetCabin(context.Background(), "kedr")
	require.NoError(t, err)
	assert.Equal(t, "kedr", cabin.Slug)
	assert.True(t, cabin.HalfDayEnabled)

	_, err = c.GetCabin(context.Background(), "missing")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "cabin not found", apiErr.Message)
}

func TestGetCabinCached(t *testing.T) {
	c, db := newTestBackend(t)
	seedCabin(t, db, "kedr", true)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c.UseRedisCache(rdb, time.Minute)

	_, err := c.GetCabin(context.Background(), "kedr")
	require.NoError(t, err)
	assert.True(t, mr.Exists("cabin:kedr"))

	// A cached cabin is served even after the backend stops offering it.
	cabin, err := c.GetCabin(context.Background(), "kedr")
	require.NoError(t, err)
	cabin.IsActive = false
	require.NoError(t, db.UpdateCabin(context.Background(), cabin))

	cabin, err = c.GetCabin(context.Background(), "kedr")
	require.NoError(t, err)
	assert.Equal(t, "kedr", cabin.Slug)
}

func TestGetLegendsFallback(t *testing.T) {
	c, db := newTestBackend(t)
	_ = db

	legends, err := c.GetLegends(context.Background(), "taiga")
	require.NoError(t, err)

	// No custom legends: the built-in defaults are still there.
	assert.Contains(t, legends, models.StatusBooked)
	assert.Contains(t, legends, models.StatusMaintenance)

	// A dead server also yields the defaults.
	dead := New("http://127.0.0.1:1")
	legends, err = dead.GetLegends(context.Background(), "taiga")
	require.NoError(t, err)
	assert.Contains(t, legends, models.StatusBooked)
}

func TestGetCalendar(t *testing.T) {
	c, db := newTestBackend(t)
	seedCabin(t, db, "kedr", true)

	days, err := c.GetCalendar(context.Background(), "kedr", 2025, time.November)
	require.NoError(t, err)
	require.Len(t, days, 30)
	assert.Equal(t, models.StatusAvailable, days[0].Status)
}

func TestSubmitBookingPerSegment(t *testing.T) {
	c, db := newTestBackend(t)
	cabin := seedCabin(t, db, "kedr", true)
	ctx := context.Background()

	taken := futureDate(10)
	free := futureDate(20)

	existing, err := db.CreateBookingFromSegment(ctx, cabin, halfday.Segment{
		StartDate: taken, EndDate: taken, StartHalf: halfday.CodeAM, EndHalf: halfday.CodePM,
	}, database.GuestDetails{Name: "First", Phone: "+7 911"})
	require.NoError(t, err)
	require.NoError(t, db.ApproveBooking(ctx, existing.ID))

	req := halfday.BookingRequest{Segments: []halfday.Segment{
		{StartDate: taken, EndDate: taken, StartHalf: halfday.CodeAM, EndHalf: halfday.CodePM},
		{StartDate: free, EndDate: free, StartHalf: halfday.CodeAM, EndHalf: halfday.CodePM},
	}}

	report, err := c.SubmitBooking(ctx, "kedr", req, Guest{Name: "Ivan", Phone: "+7 900"})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Created)
	assert.Equal(t, 1, report.Failed)
	assert.False(t, report.AllCreated())
	assert.False(t, report.NoneCreated())

	require.Len(t, report.Outcomes, 2)
	assert.Equal(t, "unavailable", report.Outcomes[0].Status)
	assert.Equal(t, "created", report.Outcomes[1].Status)
	assert.NotZero(t, report.Outcomes[1].BookingID)

	// The accepted segment is really in the database.
	booking, err := db.GetBooking(ctx, report.Outcomes[1].BookingID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingPending, booking.Status)
}

func TestSubmitBookingEmptySelection(t *testing.T) {
	c, _ := newTestBackend(t)

	_, err := c.SubmitBooking(context.Background(), "kedr", halfday.BookingRequest{}, Guest{Name: "Ivan", Phone: "+7 900"})
	assert.ErrorIs(t, err, halfday.ErrEmptySelection)
}
