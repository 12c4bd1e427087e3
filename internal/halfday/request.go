package halfday

import (
	"errors"
	"fmt"
	"time"

	"zaimka/internal/models"
)

// HalfCode is the wire representation of a day's selected coverage.
type HalfCode string

const (
	CodeAM   HalfCode = "AM"
	CodePM   HalfCode = "PM"
	CodeFull HalfCode = "FULL"
)

var ErrEmptySelection = errors.New("empty selection")

// Segment is one contiguous date range with uniform start/end halves.
type Segment struct {
	StartDate models.Date `json:"startDate"`
	EndDate   models.Date `json:"endDate"`
	StartHalf HalfCode    `json:"startHalf"`
	EndHalf   HalfCode    `json:"endHalf"`
}

// Interval returns the occupied half-open interval [start, end) of a segment
// in UTC.
func (s Segment) Interval() (time.Time, time.Time) {
	start := s.StartDate.Time
	if s.StartHalf == CodePM {
		start = start.Add(12 * time.Hour)
	}
	end := s.EndDate.Time.Add(24 * time.Hour)
	if s.EndHalf == CodeAM {
		end = s.EndDate.Time.Add(12 * time.Hour)
	}
	return start, end
}

// Slots expands a segment back into its half-day cells.
func (s Segment) Slots() []Slot {
	from := Slot{Date: s.StartDate, Half: First}
	if s.StartHalf == CodePM {
		from.Half = Second
	}
	to := Slot{Date: s.EndDate, Half: Second}
	if s.EndHalf == CodeAM {
		to.Half = First
	}
	return ExpandRange(from, to)
}

func (s Segment) Validate() error {
	if s.EndDate.Before(s.StartDate) {
		return fmt.Errorf("segment end %s before start %s", s.EndDate, s.StartDate)
	}
	if err := validHalf(s.StartHalf); err != nil {
		return err
	}
	if err := validHalf(s.EndHalf); err != nil {
		return err
	}
	if s.StartDate.Equal(s.EndDate) && s.StartHalf == CodePM && s.EndHalf == CodeAM {
		return fmt.Errorf("segment on %s selects no half", s.StartDate)
	}
	return nil
}

func validHalf(h HalfCode) error {
	switch h {
	case CodeAM, CodePM:
		return nil
	}
	return fmt.Errorf("invalid half %q", string(h))
}

// BookingRequest is the minimal representation of a finalized selection as
// submitted to the book endpoint. Exactly one of the three shapes is
// populated: single day (Date+Half), contiguous range (StartDate..EndHalf),
// or a list of discontinuous Segments.
type BookingRequest struct {
	Date *models.Date `json:"date,omitempty"`
	Half HalfCode     `json:"half,omitempty"`

	StartDate *models.Date `json:"startDate,omitempty"`
	EndDate   *models.Date `json:"endDate,omitempty"`
	StartHalf HalfCode     `json:"startHalf,omitempty"`
	EndHalf   HalfCode     `json:"endHalf,omitempty"`

	Segments []Segment `json:"segments,omitempty"`
}

// dayCoverage is the per-date half coverage of a selection.
type dayCoverage struct {
	date          models.Date
	first, second bool
}

func (d dayCoverage) code() HalfCode {
	switch {
	case d.first && d.second:
		return CodeFull
	case d.first:
		return CodeAM
	default:
		return CodePM
	}
}

func (d dayCoverage) segment() Segment {
	seg := Segment{StartDate: d.date, EndDate: d.date, StartHalf: CodeAM, EndHalf: CodePM}
	if !d.first {
		seg.StartHalf = CodePM
	}
	if !d.second {
		seg.EndHalf = CodeAM
	}
	return seg
}

// BuildRequest collapses a selection set into the minimal booking request.
// The mapping is lossless (every selected half lands in exactly one emitted
// shape) and deterministic (dates are processed in ascending order). An empty
// set yields ErrEmptySelection; the caller must block submission.
func BuildRequest(set SelectionSet) (*BookingRequest, error) {
	if len(set) == 0 {
		return nil, ErrEmptySelection
	}

	days := coverageByDate(set)

	if len(days) == 1 {
		d := days[0]
		date := d.date
		return &BookingRequest{Date: &date, Half: d.code()}, nil
	}

	if isContiguousRange(days) {
		first, last := days[0], days[len(days)-1]
		start, end := first.date, last.date
		req := &BookingRequest{StartDate: &start, EndDate: &end, StartHalf: CodeAM, EndHalf: CodePM}
		if !first.first {
			req.StartHalf = CodePM
		}
		if !last.second {
			req.EndHalf = CodeAM
		}
		return req, nil
	}

	segments := make([]Segment, 0, len(days))
	for _, d := range days {
		segments = append(segments, d.segment())
	}
	return &BookingRequest{Segments: segments}, nil
}

// NormalizedSegments renders any of the three request shapes as a flat list
// of segments, the form the storage layer validates and persists.
func (r *BookingRequest) NormalizedSegments() ([]Segment, error) {
	switch {
	case r.Date != nil:
		seg := Segment{StartDate: *r.Date, EndDate: *r.Date, StartHalf: CodeAM, EndHalf: CodePM}
		switch r.Half {
		case CodeFull:
		case CodeAM:
			seg.EndHalf = CodeAM
		case CodePM:
			seg.StartHalf = CodePM
		default:
			return nil, fmt.Errorf("invalid half %q", string(r.Half))
		}
		return []Segment{seg}, nil

	case r.StartDate != nil && r.EndDate != nil:
		seg := Segment{StartDate: *r.StartDate, EndDate: *r.EndDate, StartHalf: r.StartHalf, EndHalf: r.EndHalf}
		if err := seg.Validate(); err != nil {
			return nil, err
		}
		return []Segment{seg}, nil

	case len(r.Segments) > 0:
		for _, seg := range r.Segments {
			if err := seg.Validate(); err != nil {
				return nil, err
			}
		}
		return r.Segments, nil
	}

	return nil, ErrEmptySelection
}

func coverageByDate(set SelectionSet) []dayCoverage {
	var days []dayCoverage
	for _, slot := range set.Slots() {
		if n := len(days); n > 0 && days[n-1].date.Equal(slot.Date) {
			if slot.Half == First {
				days[n-1].first = true
			} else {
				days[n-1].second = true
			}
			continue
		}
		d := dayCoverage{date: slot.Date}
		if slot.Half == First {
			d.first = true
		} else {
			d.second = true
		}
		days = append(days, d)
	}
	return days
}

// isContiguousRange reports whether the per-date coverage forms one calendar
// run expressible as a single {startDate, endDate, startHalf, endHalf}: dates
// one day apart, interior days fully covered, and no gap at the inner halves
// of the boundary days.
func isContiguousRange(days []dayCoverage) bool {
	for i := 1; i < len(days); i++ {
		if days[i].date.DaysSince(days[i-1].date) != 1 {
			return false
		}
	}
	for i := 1; i < len(days)-1; i++ {
		if !days[i].first || !days[i].second {
			return false
		}
	}
	return days[0].second && days[len(days)-1].first
}
