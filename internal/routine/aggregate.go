package routine

import (
	"time"

	"github.com/Kerhoff/NochesTranquilas/internal/models"
)

// Stats are the numeric results of folding one day of events.
type Stats struct {
	TotalNaps         int
	NapDuration       time.Duration
	LongestNightSleep time.Duration
	NightWakeups      int
}

// NapMinutes returns the total nap time rounded to the nearest minute.
func (s Stats) NapMinutes() int {
	return minutes(s.NapDuration)
}

// LongestNightSleepMinutes returns the longest night stretch rounded to the
// nearest minute.
func (s Stats) LongestNightSleepMinutes() int {
	return minutes(s.LongestNightSleep)
}

func minutes(d time.Duration) int {
	return int(d.Round(time.Minute) / time.Minute)
}

// foldState is the accumulator threaded through Fold. A nil start means no
// unmatched start is pending.
type foldState struct {
	stats          Stats
	lastNapStart   *time.Time
	lastNightStart *time.Time
}

// Fold reduces a day's events, sorted ascending by time, into Stats.
//
// A nap start overwrites any earlier unmatched start and a nap end without a
// pending start is ignored. Each night waking measures the stretch since the
// previous sleep-relevant event (bedtime or the previous waking) and then
// becomes the start of the next stretch. Every other event type, the end of
// the night included, leaves the statistics untouched.
func Fold(events []models.SleepEvent) Stats {
	st := foldState{}
	for _, e := range events {
		st = step(st, e)
	}
	return st.stats
}

func step(st foldState, e models.SleepEvent) foldState {
	t := e.Time
	switch e.Type {
	case models.EventNapStart:
		st.lastNapStart = &t
	case models.EventNapEnd:
		if st.lastNapStart != nil {
			st.stats.TotalNaps++
			st.stats.NapDuration += t.Sub(*st.lastNapStart)
			st.lastNapStart = nil
		}
	case models.EventNightStart:
		st.lastNightStart = &t
	case models.EventWakeup:
		if st.lastNightStart != nil {
			st.stats.NightWakeups++
			st.stats.LongestNightSleep = maxDuration(st.stats.LongestNightSleep, t.Sub(*st.lastNightStart))
			st.lastNightStart = &t
		}
	}
	return st
}

func maxDuration(a, b time.Duration) time.Duration {
	if b > a {
		return b
	}
	return a
}
