package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"zaimka/internal/halfday"
	"zaimka/internal/models"
)

type monthKey struct {
	Year  int
	Month time.Month
}

// CalendarView is the state behind one cabin's calendar widget: fetched
// months, the company legend and the half-day selection in progress.
type CalendarView struct {
	client *Client
	cabin  *models.Cabin

	mu      sync.Mutex
	gen     map[monthKey]uint64
	months  map[monthKey]map[string]*models.CalendarDay
	legends map[string]models.Legend

	selector *halfday.Selector

	// now is swappable in tests
	now func() time.Time
}

// NewCalendarView resolves the cabin and its legend and prepares an empty
// selection. Cabins without half-day booking get a whole-day selector.
func NewCalendarView(ctx context.Context, c *Client, slug string) (*CalendarView, error) {
	cabin, err := c.GetCabin(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to load cabin: %w", err)
	}

	legends, err := c.GetLegends(ctx, cabin.CompanySlug)
	if err != nil {
		return nil, fmt.Errorf("failed to load legends: %w", err)
	}

	view := &CalendarView{
		client:  c,
		cabin:   cabin,
		gen:     make(map[monthKey]uint64),
		months:  make(map[monthKey]map[string]*models.CalendarDay),
		legends: legends,
		now:     time.Now,
	}
	view.selector = halfday.NewSelector(view.Classify, !cabin.HalfDayEnabled)
	return view, nil
}

func (v *CalendarView) Cabin() *models.Cabin { return v.cabin }

// LoadMonth fetches one month of availability. Each call bumps the month's
// generation and a response is dropped when a newer call started while it
// was in flight, so rapid month flipping cannot paint stale data.
func (v *CalendarView) LoadMonth(ctx context.Context, year int, month time.Month) error {
	key := monthKey{Year: year, Month: month}

	v.mu.Lock()
	v.gen[key]++
	gen := v.gen[key]
	v.mu.Unlock()

	days, err := v.client.GetCalendar(ctx, v.cabin.Slug, year, month)
	if err != nil {
		return err
	}

	byDate := make(map[string]*models.CalendarDay, len(days))
	for i := range days {
		byDate[days[i].Date.String()] = &days[i]
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.gen[key] != gen {
		// A newer fetch for this month is already running.
		return nil
	}
	v.months[key] = byDate
	return nil
}

// Day returns the loaded calendar day, nil when the month is not loaded or
// the server sent no entry for the date.
func (v *CalendarView) Day(date models.Date) *models.CalendarDay {
	v.mu.Lock()
	defer v.mu.Unlock()
	month := v.months[monthKey{Year: date.Year(), Month: date.Month()}]
	if month == nil {
		return nil
	}
	return month[date.String()]
}

// Classify maps a date to its half-day availability for rendering and for
// the selector.
func (v *CalendarView) Classify(date models.Date) halfday.Classification {
	return halfday.Classify(date, v.Day(date), v.legends, v.now())
}

// PointerDown, PointerEnter and PointerUp forward UI events to the
// selection state machine.
func (v *CalendarView) PointerDown(s halfday.Slot)  { v.selector.PointerDown(s) }
func (v *CalendarView) PointerEnter(s halfday.Slot) { v.selector.PointerEnter(s) }
func (v *CalendarView) PointerUp()                  { v.selector.PointerUp() }
func (v *CalendarView) ClearSelection()             { v.selector.Clear() }

func (v *CalendarView) Selection() []halfday.Slot { return v.selector.Selection().Slots() }

// Submit books the current selection and clears it when every segment was
// accepted. A partial outcome keeps the rejected slots selected so the
// guest sees what is left to pick again.
func (v *CalendarView) Submit(ctx context.Context, guest Guest) (*SubmitReport, error) {
	req, err := halfday.BuildRequest(v.selector.Selection())
	if err != nil {
		return nil, err
	}

	report, err := v.client.SubmitBooking(ctx, v.cabin.Slug, *req, guest)
	if err != nil {
		return nil, err
	}

	if report.AllCreated() {
		v.selector.Clear()
		return report, nil
	}

	v.retainFailed(report)
	return report, nil
}

func (v *CalendarView) retainFailed(report *SubmitReport) {
	v.selector.Clear()
	for _, outcome := range report.Outcomes {
		if outcome.Status == segmentCreated {
			continue
		}
		for _, slot := range outcome.Segment.Slots() {
			v.selector.Restore(slot)
		}
	}
}
