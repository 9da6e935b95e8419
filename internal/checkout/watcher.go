package checkout

import (
	"context"
	"sync"
	"time"

	"github.com/j1vetr/EscapeTable/internal/timeslot"
)

// DefaultTickInterval is how often the slot sets are regenerated against a
// freshly sampled service-time clock.
const DefaultTickInterval = time.Minute

// Update is delivered to the watcher's callback after every regeneration.
type Update struct {
	Today     []timeslot.Slot
	Tomorrow  []timeslot.Slot
	Selection timeslot.Selection
	Change    timeslot.Change
}

// Watcher keeps the user's slot selection consistent with the passage of
// time: every tick it regenerates both slot sets and runs reconciliation,
// which handles the midnight rollover and the booking cutoff.
type Watcher struct {
	interval time.Duration
	clock    func() time.Time
	onUpdate func(Update)

	mu  sync.Mutex
	sel timeslot.Selection
}

// NewWatcher creates a watcher with the given callback. interval <= 0
// selects the default minute tick; a nil clock samples the service
// timezone's wall clock.
func NewWatcher(interval time.Duration, clock func() time.Time, onUpdate func(Update)) *Watcher {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	if clock == nil {
		clock = timeslot.ServiceNow
	}
	if onUpdate == nil {
		onUpdate = func(Update) {}
	}
	return &Watcher{interval: interval, clock: clock, onUpdate: onUpdate}
}

// Select records the user's choice and immediately reconciles it against
// fresh slot sets.
func (w *Watcher) Select(day timeslot.Day, slotID string) Update {
	w.mu.Lock()
	w.sel = timeslot.Selection{Day: day, SlotID: slotID}
	w.mu.Unlock()
	return w.Tick()
}

// Selection returns the current (possibly reconciled) selection.
func (w *Watcher) Selection() timeslot.Selection {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.sel
}

// Tick regenerates both slot sets from a fresh clock sample and reconciles
// the selection. It is called by Start's loop and may be called directly.
func (w *Watcher) Tick() Update {
	now := w.clock().In(timeslot.ServiceLocation())
	today := timeslot.Generate(now, now.Hour())
	tomorrow := timeslot.Generate(now.AddDate(0, 0, 1), timeslot.NoCutoff)

	w.mu.Lock()
	sel, change := timeslot.Reconcile(w.sel, today, tomorrow)
	w.sel = sel
	w.mu.Unlock()

	u := Update{Today: today, Tomorrow: tomorrow, Selection: sel, Change: change}
	w.onUpdate(u)
	return u
}

// Start runs the tick loop until ctx is cancelled. The ticker is always
// stopped on exit; leaking it across checkout sessions is a bug, not an
// option.
func (w *Watcher) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.Tick()
			}
		}
	}()
}
