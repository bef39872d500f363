package routine

import "time"

// Day is the length of one numbered day.
const Day = 24 * time.Hour

// ElapsedDays returns the number of whole days between from and to, using
// floor division on milliseconds so that negative spans round down.
func ElapsedDays(from, to time.Time) int {
	ms := to.Sub(from).Milliseconds()
	day := Day.Milliseconds()
	q := ms / day
	if ms%day != 0 && ms < 0 {
		q--
	}
	return int(q)
}

// DayNumber returns the 1-based day index of an event relative to the
// baby's first event. Events timestamped before the epoch are clamped to
// day 1.
func DayNumber(firstEventAt, eventTime time.Time) int {
	n := ElapsedDays(firstEventAt, eventTime) + 1
	if n < 1 {
		return 1
	}
	return n
}

// ResolveEpoch returns the epoch used for numbering eventTime. When the baby
// has no first event yet, the event itself becomes the epoch and isFirst is
// true; the caller must persist it before storing the event.
func ResolveEpoch(firstEventAt *time.Time, eventTime time.Time) (epoch time.Time, isFirst bool) {
	if firstEventAt == nil || firstEventAt.IsZero() {
		return eventTime, true
	}
	return *firstEventAt, false
}
