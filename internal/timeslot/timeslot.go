// Package timeslot computes the delivery windows a customer can book for
// today or tomorrow. All cutoffs are evaluated against the service timezone
// (Europe/Istanbul), never against the machine's local timezone.
package timeslot

import (
	"fmt"
	"time"
)

const (
	// OpenHour is the first bookable hour of the service window.
	OpenHour = 8
	// CloseHour is the exclusive end of the service window. The last slot
	// is CloseHour-1:00 - CloseHour:00.
	CloseHour = 22
)

// ServiceTimezone is the fixed timezone all slot arithmetic runs in.
const ServiceTimezone = "Europe/Istanbul"

// NoCutoff is passed as currentHour when generating slots for a future day,
// so the full service window is produced.
const NoCutoff = -1

type Slot struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	StartTime string    `json:"startTime"`
	EndTime   string    `json:"endTime"`
	Date      time.Time `json:"date"`
}

// ServiceLocation returns the service timezone. The IANA name is compiled
// into every Go binary via the tzdata fallback on server images; if the
// zone cannot be loaded we fall back to a fixed UTC+3 offset, which is
// what Europe/Istanbul has been since 2016.
func ServiceLocation() *time.Location {
	loc, err := time.LoadLocation(ServiceTimezone)
	if err != nil {
		return time.FixedZone("Europe/Istanbul", 3*60*60)
	}
	return loc
}

// ServiceNow returns the current wall-clock time in the service timezone.
func ServiceNow() time.Time {
	return time.Now().In(ServiceLocation())
}

// Generate produces the ordered bookable slots for the calendar day of day.
// currentHour is the sampled service-time hour when generating for today,
// or NoCutoff for a future day. For today the first candidate hour is
// max(currentHour+1, OpenHour): the running hour and anything earlier are
// never bookable. An empty result means the day's window has closed; it is
// a normal terminal state, not an error.
func Generate(day time.Time, currentHour int) []Slot {
	start := OpenHour
	if currentHour != NoCutoff && currentHour+1 > start {
		start = currentHour + 1
	}
	if start >= CloseHour {
		return nil
	}

	dateKey := day.Format("2006-01-02")
	slots := make([]Slot, 0, CloseHour-start)
	for h := start; h < CloseHour; h++ {
		slots = append(slots, Slot{
			ID:        fmt.Sprintf("%s-%d", dateKey, h),
			Label:     fmt.Sprintf("%02d:00 - %02d:00", h, h+1),
			StartTime: fmt.Sprintf("%02d:00", h),
			EndTime:   fmt.Sprintf("%02d:00", h+1),
			Date:      day,
		})
	}
	return slots
}

// ForDay generates slots relative to now (service time). tomorrow selects
// the next calendar day with the full window; otherwise today's remaining
// window is produced using now's hour as the cutoff.
func ForDay(now time.Time, tomorrow bool) []Slot {
	now = now.In(ServiceLocation())
	if tomorrow {
		return Generate(now.AddDate(0, 0, 1), NoCutoff)
	}
	return Generate(now, now.Hour())
}

// Hour extracts the hour component from a slot id ("2025-01-02-14" -> 14).
// Returns -1 if the id does not parse.
func Hour(id string) int {
	var y, m, d, h int
	if _, err := fmt.Sscanf(id, "%d-%d-%d-%d", &y, &m, &d, &h); err != nil {
		return -1
	}
	return h
}

// FindID returns the slot with the given id, if present.
func FindID(slots []Slot, id string) (Slot, bool) {
	for _, s := range slots {
		if s.ID == id {
			return s, true
		}
	}
	return Slot{}, false
}

// FindHour returns the slot with the given start hour, if present.
func FindHour(slots []Slot, hour int) (Slot, bool) {
	for _, s := range slots {
		if Hour(s.ID) == hour {
			return s, true
		}
	}
	return Slot{}, false
}
