package database

import (
	"context"
	"time"

	"zaimka/internal/halfday"
	"zaimka/internal/models"
)

// GetMonthCalendar aggregates bookings and blocks into the per-day shape
// served by the calendar endpoint. The day status is derived: blocks win,
// then approved-booking half coverage; pending bookings appear in the item
// list but never affect the status.
func (db *DB) GetMonthCalendar(ctx context.Context, cabinID int64, year int, month time.Month) ([]models.CalendarDay, error) {
	monthStart := models.NewDate(year, month, 1)
	nextMonth := models.Date{Time: monthStart.AddDate(0, 1, 0)}
	lastDay := nextMonth.AddDays(-1)

	bookings, err := db.ListBookings(ctx, cabinID, monthStart.Time, nextMonth.Time)
	if err != nil {
		return nil, err
	}

	blocks, err := db.ListBlocks(ctx, cabinID, monthStart, lastDay)
	if err != nil {
		return nil, err
	}

	blocksByDate := make(map[string]models.Block, len(blocks))
	for _, b := range blocks {
		blocksByDate[b.Date.String()] = b
	}

	days := make([]models.CalendarDay, 0, lastDay.Day())
	for date := monthStart; date.Before(nextMonth); date = date.AddDays(1) {
		day := models.CalendarDay{Date: date, Status: models.StatusAvailable}

		for _, booking := range bookings {
			if booking.Status != models.BookingPending && booking.Status != models.BookingApproved {
				continue
			}
			if !intersectsDay(booking.StartTime, booking.EndTime, date) {
				continue
			}
			day.Items = append(day.Items, models.CalendarItem{
				Kind:      models.ItemKindBooking,
				Status:    booking.Status,
				StartTime: booking.StartTime,
				EndTime:   booking.EndTime,
			})
		}

		if block, ok := blocksByDate[date.String()]; ok {
			day.Items = append(day.Items, models.CalendarItem{
				Kind:   models.ItemKindBlock,
				Reason: block.Reason,
			})
			day.Status = blockStatus(block.Reason)
		} else {
			day.Status = bookedStatus(day.Items, date)
		}

		days = append(days, day)
	}
	return days, nil
}

func intersectsDay(start, end time.Time, date models.Date) bool {
	dayStart := date.Time
	dayEnd := date.AddDays(1).Time
	return start.Before(dayEnd) && dayStart.Before(end)
}

// blockStatus maps a block reason onto the day status: built-in reasons are
// served verbatim, custom legend ids pass through for the client to resolve.
func blockStatus(reason string) string {
	switch reason {
	case models.StatusMaintenance, models.StatusUnavailable:
		return reason
	case "":
		return models.StatusUnavailable
	}
	return reason
}

func bookedStatus(items []models.CalendarItem, date models.Date) string {
	var first, second bool
	for _, item := range items {
		if item.Kind != models.ItemKindBooking || item.Status != models.BookingApproved {
			continue
		}
		if halfday.CoversHalf(item.StartTime, item.EndTime, date, halfday.First) {
			first = true
		}
		if halfday.CoversHalf(item.StartTime, item.EndTime, date, halfday.Second) {
			second = true
		}
	}
	switch {
	case first && second:
		return models.StatusBooked
	case first || second:
		return models.StatusPartiallyBooked
	}
	return models.StatusAvailable
}
