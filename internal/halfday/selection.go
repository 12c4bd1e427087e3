package halfday

import (
	"sort"

	"zaimka/internal/models"
)

// Slot is a single selectable half-day cell.
type Slot struct {
	Date models.Date
	Half Half
}

// index maps a slot onto a global half-slot number so ranges can be walked and
// compared chronologically.
func (s Slot) index() int {
	n := s.Date.DaysSince(models.NewDate(2000, 1, 1)) * 2
	if s.Half == Second {
		n++
	}
	return n
}

func slotAt(idx int) Slot {
	s := Slot{Date: models.NewDate(2000, 1, 1).AddDays(idx / 2), Half: First}
	if idx%2 == 1 {
		s.Half = Second
	}
	return s
}

// SelectionSet is the set of currently selected half-day cells. At most one
// entry exists per (date, half) pair.
type SelectionSet map[Slot]struct{}

func NewSelectionSet(slots ...Slot) SelectionSet {
	set := make(SelectionSet, len(slots))
	for _, s := range slots {
		set[s] = struct{}{}
	}
	return set
}

func (set SelectionSet) Contains(s Slot) bool {
	_, ok := set[s]
	return ok
}

func (set SelectionSet) Add(s Slot)    { set[s] = struct{}{} }
func (set SelectionSet) Remove(s Slot) { delete(set, s) }

// Slots returns the selection in chronological order.
func (set SelectionSet) Slots() []Slot {
	out := make([]Slot, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].index() < out[j].index() })
	return out
}

// ExpandRange returns the contiguous run of half-day cells between a and b
// inclusive, walking first→second→next day's first. The result does not
// depend on the order of the arguments.
func ExpandRange(a, b Slot) []Slot {
	lo, hi := a.index(), b.index()
	if lo > hi {
		lo, hi = hi, lo
	}
	out := make([]Slot, 0, hi-lo+1)
	for i := lo; i <= hi; i++ {
		out = append(out, slotAt(i))
	}
	return out
}

// ClassifyFunc resolves the classification of a date, usually a closure over
// the currently loaded month and legends.
type ClassifyFunc func(models.Date) Classification

// Selector is the pointer-drag selection state machine of one calendar
// surface. All transitions run synchronously inside pointer-event handlers;
// the selection set is owned exclusively by the surface.
type Selector struct {
	classify    ClassifyFunc
	fullDayOnly bool

	set      SelectionSet
	dragging bool
	anchor   Slot
}

func NewSelector(classify ClassifyFunc, fullDayOnly bool) *Selector {
	return &Selector{
		classify:    classify,
		fullDayOnly: fullDayOnly,
		set:         NewSelectionSet(),
	}
}

// Selection returns the live selection set.
func (sel *Selector) Selection() SelectionSet { return sel.set }

// Dragging reports whether a drag is in progress.
func (sel *Selector) Dragging() bool { return sel.dragging }

func (sel *Selector) Clear() {
	sel.set = NewSelectionSet()
	sel.dragging = false
}

// PointerDown starts a drag anchored at slot. Clicking a cell that is already
// fully selected deselects it but still anchors a drag there, so the user can
// extend from a freshly cleared cell. Clicking a non-selectable cell is a
// no-op.
func (sel *Selector) PointerDown(slot Slot) {
	cells := sel.cellsFor(slot)
	if cells == nil {
		return
	}

	allSelected := true
	for _, c := range cells {
		if !sel.set.Contains(c) {
			allSelected = false
			break
		}
	}

	if allSelected {
		for _, c := range cells {
			sel.set.Remove(c)
		}
	} else {
		for _, c := range cells {
			sel.set.Add(c)
		}
	}

	sel.dragging = true
	sel.anchor = slot
}

// PointerEnter extends an in-progress drag to slot, redefining the whole
// selection as the contiguous run from the anchor to slot. Entering a
// non-selectable cell leaves the drag and the selection untouched. Cells
// inside the run that cannot be selected are skipped.
func (sel *Selector) PointerEnter(slot Slot) {
	if !sel.dragging {
		return
	}
	if sel.cellsFor(slot) == nil {
		return
	}

	from, to := sel.anchor, slot
	if sel.fullDayOnly {
		// Whole-day granularity: the run always spans both halves of the
		// boundary days.
		lo, hi := from, to
		if lo.index() > hi.index() {
			lo, hi = hi, lo
		}
		from = Slot{Date: lo.Date, Half: First}
		to = Slot{Date: hi.Date, Half: Second}
	}

	next := NewSelectionSet()
	for _, c := range ExpandRange(from, to) {
		if sel.selectableCell(c) {
			next.Add(c)
		}
	}
	sel.set = next
}

// PointerUp ends the drag. Leaving the calendar grid counts as pointer-up.
func (sel *Selector) PointerUp() {
	sel.dragging = false
}

// Restore puts a slot back into the selection outside of a drag. Used after
// a partially accepted submission to keep the rejected slots selected.
func (sel *Selector) Restore(slot Slot) {
	sel.set.Add(slot)
}

// cellsFor returns the cells a pointer-down on slot operates on, or nil when
// the slot cannot be selected at all.
func (sel *Selector) cellsFor(slot Slot) []Slot {
	c := sel.classify(slot.Date)
	if sel.fullDayOnly {
		if !c.FullDaySelectable() {
			return nil
		}
		return []Slot{{Date: slot.Date, Half: First}, {Date: slot.Date, Half: Second}}
	}
	if !c.Selectable(slot.Half) {
		return nil
	}
	return []Slot{slot}
}

func (sel *Selector) selectableCell(s Slot) bool {
	c := sel.classify(s.Date)
	if sel.fullDayOnly && !c.FullDaySelectable() {
		return false
	}
	return c.Selectable(s.Half)
}
