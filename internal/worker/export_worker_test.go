package worker

import (
	"context"
	"os"
	"testing"
	"time"

	"zaimka/internal/database"
	"zaimka/internal/halfday"
	"zaimka/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newTestWorker(t *testing.T, redisClient *redis.Client) (*ExportWorker, *database.DB) {
	t.Helper()
	logger := zerolog.Nop()
	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	w := NewExportWorker(db, redisClient, t.TempDir(), RetryPolicy{
		MaxRetries:   2,
		InitialDelay: time.Millisecond,
	}, &logger)
	return w, db
}

func seedCompany(t *testing.T, db *database.DB) *models.Cabin {
	t.Helper()
	ctx := context.Background()
	cabin := &models.Cabin{
		Slug:           "kedr",
		Name:           "Kedr",
		CompanySlug:    "taiga",
		HalfDayEnabled: true,
		IsActive:       true,
	}
	require.NoError(t, db.CreateCabin(ctx, cabin))

	date := models.DateOf(time.Now().UTC()).AddDays(7)
	booking, err := db.CreateBookingFromSegment(ctx, cabin, halfday.Segment{
		StartDate: date, EndDate: date, StartHalf: halfday.CodeAM, EndHalf: halfday.CodeAM,
	}, database.GuestDetails{Name: "Ivan", Phone: "+7 900"})
	require.NoError(t, err)
	require.NoError(t, db.ApproveBooking(ctx, booking.ID))
	return cabin
}

func TestRetryPolicyNextDelay(t *testing.T) {
	p := RetryPolicy{InitialDelay: time.Second, BackoffFactor: 2, MaxDelay: 5 * time.Second}

	assert.Equal(t, time.Second, p.NextDelay(1))
	assert.Equal(t, 2*time.Second, p.NextDelay(2))
	assert.Equal(t, 4*time.Second, p.NextDelay(3))
	assert.Equal(t, 5*time.Second, p.NextDelay(4))
	assert.Equal(t, time.Second, p.NextDelay(0))

	zero := RetryPolicy{}
	assert.Equal(t, time.Second, zero.NextDelay(1))

	def := DefaultExportRetry()
	assert.Equal(t, 3, def.MaxRetries)
	assert.Equal(t, 2*time.Second, def.NextDelay(1))
	assert.Equal(t, time.Minute, def.NextDelay(10))
}

func TestEnqueueExportValidation(t *testing.T) {
	w, _ := newTestWorker(t, nil)
	now := time.Now()

	_, err := w.EnqueueExport("", now, now)
	assert.Error(t, err)

	_, err = w.EnqueueExport("taiga", now, now.Add(-time.Hour))
	assert.Error(t, err)
}

func TestEnqueueExportMemoryQueue(t *testing.T) {
	w, _ := newTestWorker(t, nil)
	now := time.Now()

	id, err := w.EnqueueExport("taiga", now, now.AddDate(0, 1, 0))
	require.NoError(t, err)

	state, ok := w.TaskStatus(id)
	require.True(t, ok)
	assert.Equal(t, StateQueued, state.State)

	task, ok := w.tryLocalQueue()
	require.True(t, ok)
	assert.Equal(t, id, task.ID)
	assert.Equal(t, "taiga", task.CompanySlug)
}

func TestEnqueueExportRedisQueue(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	w, _ := newTestWorker(t, rdb)
	now := time.Now()

	id, err := w.EnqueueExport("taiga", now, now.AddDate(0, 1, 0))
	require.NoError(t, err)

	task, ok := w.tryRedis(context.Background())
	require.True(t, ok)
	assert.Equal(t, id, task.ID)

	// Redis down falls back to the memory queue.
	mr.Close()
	id, err = w.EnqueueExport("taiga", now, now.AddDate(0, 1, 0))
	require.NoError(t, err)
	task, ok = w.tryLocalQueue()
	require.True(t, ok)
	assert.Equal(t, id, task.ID)
}

func TestProcessTaskBuildsWorkbook(t *testing.T) {
	w, db := newTestWorker(t, nil)
	seedCompany(t, db)
	now := time.Now().UTC()

	id, err := w.EnqueueExport("taiga", now, now.AddDate(0, 1, 0))
	require.NoError(t, err)
	task, ok := w.tryLocalQueue()
	require.True(t, ok)

	w.processTask(context.Background(), task)

	state, ok := w.TaskStatus(id)
	require.True(t, ok)
	require.Equal(t, StateDone, state.State)
	require.NotEmpty(t, state.FilePath)

	_, err = os.Stat(state.FilePath)
	require.NoError(t, err)

	f, err := excelize.OpenFile(state.FilePath)
	require.NoError(t, err)
	defer f.Close()

	assert.Contains(t, f.GetSheetList(), gridSheet)
	assert.Contains(t, f.GetSheetList(), listSheet)

	// The cabin row and the guest are on the grid.
	cabinCell, err := f.GetCellValue(gridSheet, "A3")
	require.NoError(t, err)
	assert.Equal(t, "Kedr", cabinCell)

	rows, err := f.GetRows(listSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Ivan", rows[1][2])
	assert.Equal(t, models.BookingApproved, rows[1][7])
}

func TestProcessTaskFailure(t *testing.T) {
	w, db := newTestWorker(t, nil)
	db.Close()

	now := time.Now()
	id, err := w.EnqueueExport("taiga", now, now.AddDate(0, 1, 0))
	require.NoError(t, err)
	task, ok := w.tryLocalQueue()
	require.True(t, ok)

	w.processTask(context.Background(), task)

	state, ok := w.TaskStatus(id)
	require.True(t, ok)
	assert.Equal(t, StateFailed, state.State)
	assert.NotEmpty(t, state.Error)
}

func TestOccupancyLabel(t *testing.T) {
	date := models.NewDate(2025, time.September, 10)
	booking := models.Booking{GuestName: "Ivan"}

	booking.StartTime = date.Time
	booking.EndTime = date.Time.Add(24 * time.Hour)
	assert.Equal(t, "Ivan", occupancyLabel(booking, date))

	booking.EndTime = date.Time.Add(12 * time.Hour)
	assert.Equal(t, "Ivan (AM)", occupancyLabel(booking, date))

	booking.StartTime = date.Time.Add(12 * time.Hour)
	booking.EndTime = date.Time.Add(24 * time.Hour)
	assert.Equal(t, "Ivan (PM)", occupancyLabel(booking, date))

	assert.Empty(t, occupancyLabel(booking, date.AddDays(1)))
}
