package models

import (
	"fmt"
	"time"
)

// Date is a day-granularity calendar date marshalled as YYYY-MM-DD.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func DateOf(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return NewDate(y, m, d)
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return Date{t.UTC()}, nil
}

func (d Date) String() string {
	return d.Format("2006-01-02")
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid date literal: %s", s)
	}
	parsed, err := ParseDate(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) AddDays(n int) Date {
	return Date{d.AddDate(0, 0, n)}
}

// DaysSince returns the whole-day distance from other to d.
func (d Date) DaysSince(other Date) int {
	return int(d.Sub(other.Time) / (24 * time.Hour))
}

func (d Date) Before(other Date) bool {
	return d.Time.Before(other.Time)
}

func (d Date) Equal(other Date) bool {
	return d.Time.Equal(other.Time)
}

// CalendarDay is one date's aggregate state as served by the calendar endpoint.
// Its status is derived, not authoritative: only approved bookings and active
// blocks may render a half unavailable.
type CalendarDay struct {
	Date   Date           `json:"date"`
	Status string         `json:"status"`
	Items  []CalendarItem `json:"items,omitempty"`
}

// CalendarItem is either a booking or a block on a given day.
type CalendarItem struct {
	Kind      string    `json:"kind"`
	Status    string    `json:"status,omitempty"`     // booking only
	StartTime time.Time `json:"start_time,omitempty"` // booking only
	EndTime   time.Time `json:"end_time,omitempty"`   // booking only
	Reason    string    `json:"reason,omitempty"`     // block only
}
