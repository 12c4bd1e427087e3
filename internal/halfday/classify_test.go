package halfday

import (
	"testing"
	"time"

	"zaimka/internal/models"

	"github.com/stretchr/testify/assert"
)

var testToday = time.Date(2025, 9, 1, 15, 30, 0, 0, time.UTC)

func datetime(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, time.UTC)
}

func approvedBooking(start, end time.Time) models.CalendarItem {
	return models.CalendarItem{
		Kind:      models.ItemKindBooking,
		Status:    models.BookingApproved,
		StartTime: start,
		EndTime:   end,
	}
}

func TestClassify_PastDaysAlwaysUnavailable(t *testing.T) {
	legends := models.LegendIndex(models.DefaultLegends())

	statuses := []string{
		models.StatusAvailable,
		models.StatusBooked,
		models.StatusPartiallyBooked,
		models.StatusMaintenance,
	}

	date := models.NewDate(2025, 8, 31)
	for _, status := range statuses {
		day := &models.CalendarDay{Date: date, Status: status}
		c := Classify(date, day, legends, testToday)
		assert.Equal(t, models.StatusUnavailable, c.Status, "backend status %s", status)
		assert.False(t, c.Selectable(First))
		assert.False(t, c.Selectable(Second))
	}

	// Same-day comparison is date-only: today itself is not in the past even
	// when the clock is past noon.
	today := models.DateOf(testToday)
	c := Classify(today, nil, legends, testToday)
	assert.Equal(t, models.StatusAvailable, c.Status)
}

func TestClassify_MissingDayIsAvailable(t *testing.T) {
	legends := models.LegendIndex(models.DefaultLegends())
	c := Classify(models.NewDate(2025, 9, 10), nil, legends, testToday)
	assert.Equal(t, models.StatusAvailable, c.Status)
	assert.True(t, c.Selectable(First))
	assert.True(t, c.Selectable(Second))
}

func TestClassify_PendingBookingsNeverBlock(t *testing.T) {
	legends := models.LegendIndex(models.DefaultLegends())
	date := models.NewDate(2025, 9, 10)
	day := &models.CalendarDay{
		Date:   date,
		Status: models.StatusBooked,
		Items: []models.CalendarItem{
			{
				Kind:      models.ItemKindBooking,
				Status:    models.BookingPending,
				StartTime: datetime(2025, 9, 10, 0, 0),
				EndTime:   datetime(2025, 9, 11, 0, 0),
			},
		},
	}

	c := Classify(date, day, legends, testToday)
	assert.Equal(t, models.StatusAvailable, c.Status)
	assert.False(t, c.FirstBooked)
	assert.False(t, c.SecondBooked)
}

func TestClassify_ApprovedFullDay(t *testing.T) {
	legends := models.LegendIndex(models.DefaultLegends())
	date := models.NewDate(2025, 9, 10)
	day := &models.CalendarDay{
		Date:   date,
		Status: models.StatusBooked,
		Items: []models.CalendarItem{
			approvedBooking(datetime(2025, 9, 10, 0, 0), datetime(2025, 9, 11, 0, 0)),
		},
	}

	c := Classify(date, day, legends, testToday)
	assert.Equal(t, models.StatusBooked, c.Status)
	assert.True(t, c.FirstBooked)
	assert.True(t, c.SecondBooked)
}

func TestClassify_HalfCoverage(t *testing.T) {
	legends := models.LegendIndex(models.DefaultLegends())
	date := models.NewDate(2025, 9, 10)

	tests := []struct {
		name         string
		start, end   time.Time
		first, sec   bool
		wantStatus   string
	}{
		{
			name:       "morning only",
			start:      datetime(2025, 9, 10, 0, 0),
			end:        datetime(2025, 9, 10, 12, 0),
			first:      true,
			wantStatus: models.StatusPartiallyBooked,
		},
		{
			name:       "afternoon only",
			start:      datetime(2025, 9, 10, 12, 0),
			end:        datetime(2025, 9, 11, 0, 0),
			sec:        true,
			wantStatus: models.StatusPartiallyBooked,
		},
		{
			name:       "one minute past noon covers both",
			start:      datetime(2025, 9, 10, 0, 0),
			end:        datetime(2025, 9, 10, 12, 1),
			first:      true,
			sec:        true,
			wantStatus: models.StatusBooked,
		},
		{
			name:       "late start covers only afternoon",
			start:      datetime(2025, 9, 10, 14, 0),
			end:        datetime(2025, 9, 11, 0, 0),
			sec:        true,
			wantStatus: models.StatusPartiallyBooked,
		},
		{
			name:       "multi-day booking covers whole middle day",
			start:      datetime(2025, 9, 9, 12, 0),
			end:        datetime(2025, 9, 11, 12, 0),
			first:      true,
			sec:        true,
			wantStatus: models.StatusBooked,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			day := &models.CalendarDay{
				Date:   date,
				Status: models.StatusBooked,
				Items:  []models.CalendarItem{approvedBooking(tt.start, tt.end)},
			}
			c := Classify(date, day, legends, testToday)
			assert.Equal(t, tt.wantStatus, c.Status)
			assert.Equal(t, tt.first, c.FirstBooked, "first half")
			assert.Equal(t, tt.sec, c.SecondBooked, "second half")
		})
	}
}

func TestCoversHalf_NoonBoundary(t *testing.T) {
	date := models.NewDate(2025, 9, 10)

	// [00:00, 12:00) ends exactly at noon: first half only.
	assert.True(t, CoversHalf(datetime(2025, 9, 10, 0, 0), datetime(2025, 9, 10, 12, 0), date, First))
	assert.False(t, CoversHalf(datetime(2025, 9, 10, 0, 0), datetime(2025, 9, 10, 12, 0), date, Second))

	// [12:00, 24:00) starts exactly at noon: second half only.
	assert.False(t, CoversHalf(datetime(2025, 9, 10, 12, 0), datetime(2025, 9, 11, 0, 0), date, First))
	assert.True(t, CoversHalf(datetime(2025, 9, 10, 12, 0), datetime(2025, 9, 11, 0, 0), date, Second))

	// An adjacent-day booking does not leak into this date.
	assert.False(t, CoversHalf(datetime(2025, 9, 11, 0, 0), datetime(2025, 9, 12, 0, 0), date, Second))
	assert.False(t, CoversHalf(datetime(2025, 9, 9, 0, 0), datetime(2025, 9, 10, 0, 0), date, First))
}

func TestClassify_CustomLegendWinsOverBookings(t *testing.T) {
	legends := models.LegendIndex(models.DefaultLegends())
	legends["deep-clean"] = models.Legend{ID: "deep-clean", Name: "Deep clean", Color: "#123456", IsActive: true}

	date := models.NewDate(2025, 9, 10)
	day := &models.CalendarDay{
		Date:   date,
		Status: models.StatusBooked,
		Items: []models.CalendarItem{
			approvedBooking(datetime(2025, 9, 10, 0, 0), datetime(2025, 9, 11, 0, 0)),
			{Kind: models.ItemKindBlock, Reason: "deep-clean"},
		},
	}

	c := Classify(date, day, legends, testToday)
	assert.Equal(t, "deep-clean", c.Status)
	assert.False(t, c.Selectable(First))
	assert.False(t, c.Selectable(Second))
}

func TestClassify_UnknownBlockReasonFallsThrough(t *testing.T) {
	legends := models.LegendIndex(models.DefaultLegends())
	date := models.NewDate(2025, 9, 10)
	day := &models.CalendarDay{
		Date:   date,
		Status: models.StatusMaintenance,
		Items:  []models.CalendarItem{{Kind: models.ItemKindBlock, Reason: "nonexistent"}},
	}

	c := Classify(date, day, legends, testToday)
	assert.Equal(t, models.StatusMaintenance, c.Status)
	assert.False(t, c.Selectable(First))
}
