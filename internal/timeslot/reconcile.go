package timeslot

// Day labels a selection as belonging to today's or tomorrow's slot set.
type Day string

const (
	DayToday    Day = "today"
	DayTomorrow Day = "tomorrow"
)

// Selection is the user's current slot choice. A zero Selection means
// nothing is chosen.
type Selection struct {
	Day    Day
	SlotID string
}

func (s Selection) Empty() bool { return s.SlotID == "" }

// Change reports what Reconcile did to a selection.
type Change int

const (
	// Unchanged: the selection was already consistent with the fresh sets.
	Unchanged Change = iota
	// Resynced: the slot still exists but under the other day label, so the
	// label was corrected without touching the slot.
	Resynced
	// RolledOver: a "tomorrow" selection became "today" at the same hour
	// because midnight passed.
	RolledOver
	// Cleared: the chosen slot is no longer bookable and the selection was
	// dropped.
	Cleared
)

// Reconcile re-derives sel against freshly generated slot sets. Slot ids
// embed the calendar date, so membership is decided on the exact id, never
// on the bare hour: today always contains some slot at the chosen hour
// while a tomorrow selection is pending, and only the date distinguishes
// them. It keeps the user's intended wall-clock hour stable across the
// midnight rollover, and clears the selection outright when today's cutoff
// passes the chosen hour rather than silently moving the delivery to the
// next day.
func Reconcile(sel Selection, today, tomorrow []Slot) (Selection, Change) {
	if sel.Empty() {
		return sel, Unchanged
	}

	if _, ok := FindID(today, sel.SlotID); ok {
		if sel.Day == DayTomorrow {
			// Midnight rollover: what was "tomorrow HH:00" is now in today's
			// set. Re-point the day label, keep the slot.
			return Selection{Day: DayToday, SlotID: sel.SlotID}, RolledOver
		}
		return sel, Unchanged
	}
	if _, ok := FindID(tomorrow, sel.SlotID); ok {
		if sel.Day == DayToday {
			return Selection{Day: DayTomorrow, SlotID: sel.SlotID}, Resynced
		}
		return sel, Unchanged
	}

	// Gone from both sets: the cutoff passed the hour, or more than one
	// midnight elapsed. Never advance to a different slot behind the
	// user's back.
	return Selection{}, Cleared
}
