// Package halfday holds the half-day availability and selection engine shared
// by the calendar endpoint, the booking validator and the client: per-half
// classification of a day, the pointer-drag selection state machine, and the
// collapse of a selection set into a booking request.
package halfday

import (
	"time"

	"zaimka/internal/models"
)

// Half is one of the two fixed 12-hour windows of a calendar date.
type Half string

const (
	First  Half = "first"  // 00:00–12:00
	Second Half = "second" // 12:00–23:59
)

// Classification is the derived state of one calendar day.
type Classification struct {
	// Status is one of the built-in statuses or a custom legend id.
	Status       string
	FirstBooked  bool
	SecondBooked bool
}

// Selectable reports whether the given half may start or extend a selection.
func (c Classification) Selectable(h Half) bool {
	if c.Status != models.StatusAvailable && c.Status != models.StatusPartiallyBooked {
		return false
	}
	if h == First {
		return !c.FirstBooked
	}
	return !c.SecondBooked
}

// FullDaySelectable reports whether the whole day may be selected in
// full-day-only mode: a single booked half blocks the entire day.
func (c Classification) FullDaySelectable() bool {
	return c.Selectable(First) && c.Selectable(Second)
}

// Classify derives the displayed status of a date. day may be nil, meaning the
// backend returned no data for the date, which counts as available. The
// returned status is derived, never the backend's verbatim word for days with
// bookings: only approved bookings and blocks make a half unavailable, pending
// bookings never block selection.
func Classify(date models.Date, day *models.CalendarDay, legends map[string]models.Legend, today time.Time) Classification {
	// Past days are closed no matter what the backend reported.
	if date.Before(models.DateOf(today)) {
		return Classification{Status: models.StatusUnavailable, FirstBooked: true, SecondBooked: true}
	}

	if day == nil || day.Status == "" || day.Status == models.StatusAvailable {
		return Classification{Status: models.StatusAvailable}
	}

	// A block carrying a known custom legend wins over booking data.
	for _, item := range day.Items {
		if item.Kind != models.ItemKindBlock || item.Reason == "" {
			continue
		}
		if legend, ok := legends[item.Reason]; ok && !legend.IsDefault {
			return Classification{Status: legend.ID, FirstBooked: true, SecondBooked: true}
		}
	}

	switch day.Status {
	case models.StatusBooked, models.StatusPartiallyBooked:
		return classifyBookings(date, day.Items)
	default:
		// maintenance, unavailable, or a reason the server already resolved
		return Classification{Status: day.Status, FirstBooked: true, SecondBooked: true}
	}
}

func classifyBookings(date models.Date, items []models.CalendarItem) Classification {
	var first, second bool
	for _, item := range items {
		if item.Kind != models.ItemKindBooking || item.Status != models.BookingApproved {
			continue
		}
		if CoversHalf(item.StartTime, item.EndTime, date, First) {
			first = true
		}
		if CoversHalf(item.StartTime, item.EndTime, date, Second) {
			second = true
		}
	}

	c := Classification{FirstBooked: first, SecondBooked: second}
	switch {
	case first && second:
		c.Status = models.StatusBooked
	case first || second:
		c.Status = models.StatusPartiallyBooked
	default:
		// only pending bookings on the day
		c.Status = models.StatusAvailable
	}
	return c
}

// CoversHalf reports whether the occupied interval [start, end) intersects the
// given half's wall-clock window on date with non-zero duration. This is the
// canonical boundary rule: a booking ending exactly at noon does not occupy
// the second half, one starting exactly at noon does not occupy the first.
func CoversHalf(start, end time.Time, date models.Date, h Half) bool {
	winStart, winEnd := halfWindow(date, h)
	return start.Before(winEnd) && winStart.Before(end)
}

func halfWindow(date models.Date, h Half) (time.Time, time.Time) {
	noon := date.Time.Add(12 * time.Hour)
	if h == First {
		return date.Time, noon
	}
	return noon, date.Time.Add(24 * time.Hour)
}
