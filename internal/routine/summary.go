package routine

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Kerhoff/NochesTranquilas/internal/models"
)

const (
	clockLayout = "15:04"
	eventLayout = "15:04:05"
)

// DetailedEvent is one line of the structured summary.
type DetailedEvent struct {
	Time     string           `json:"time"`
	Type     models.EventType `json:"type"`
	Comments string           `json:"comments,omitempty"`
}

// DetailedStats mirrors the numeric columns of the daily summary.
type DetailedStats struct {
	TotalNaps         int    `json:"totalNaps"`
	TotalNapDuration  int    `json:"totalNapDuration"`
	LongestNightSleep int    `json:"longestNightSleep"`
	NightWakeups      int    `json:"nightWakeups"`
	FinalWakeupTime   string `json:"finalWakeupTime"`
}

// Detailed is the structured rendering stored with each summary.
type Detailed struct {
	Events []DetailedEvent `json:"events"`
	Stats  DetailedStats   `json:"stats"`
}

// Summary is the result of closing a day.
type Summary struct {
	DayNumber       int
	Stats           Stats
	FinalWakeupTime string
	Detailed        Detailed
	Simple          string
}

// Summarize folds events and renders both summary forms. finishedAt is the
// moment the routine was ended; it is the final wake-up time regardless of
// what the events say. Times are rendered in loc.
func Summarize(dayNumber int, events []models.SleepEvent, finishedAt time.Time, loc *time.Location) Summary {
	if loc == nil {
		loc = time.Local
	}
	stats := Fold(events)
	final := finishedAt.In(loc).Format(clockLayout)

	detailed := Detailed{
		Events: make([]DetailedEvent, 0, len(events)),
		Stats: DetailedStats{
			TotalNaps:         stats.TotalNaps,
			TotalNapDuration:  stats.NapMinutes(),
			LongestNightSleep: stats.LongestNightSleepMinutes(),
			NightWakeups:      stats.NightWakeups,
			FinalWakeupTime:   final,
		},
	}
	for _, e := range events {
		detailed.Events = append(detailed.Events, DetailedEvent{
			Time:     e.Time.In(loc).Format(eventLayout),
			Type:     e.Type,
			Comments: e.Comments,
		})
	}

	return Summary{
		DayNumber:       dayNumber,
		Stats:           stats,
		FinalWakeupTime: final,
		Detailed:        detailed,
		Simple:          SimpleText(dayNumber, stats, final),
	}
}

// SimpleText renders the one-line narrative of a day.
func SimpleText(dayNumber int, stats Stats, finalWakeup string) string {
	return fmt.Sprintf("Día %d: %d siesta(s), %d min totales. Sueño nocturno más largo: %d min. Despertares: %d. Despertar final: %s",
		dayNumber, stats.TotalNaps, stats.NapMinutes(), stats.LongestNightSleepMinutes(), stats.NightWakeups, finalWakeup)
}

// DailySummary converts s into the persisted record for babyID.
func (s Summary) DailySummary(babyID string, summaryDate time.Time) (*models.DailySummary, error) {
	raw, err := json.Marshal(s.Detailed)
	if err != nil {
		return nil, fmt.Errorf("failed to encode detailed summary: %w", err)
	}
	return &models.DailySummary{
		BabyID:            babyID,
		DayNumber:         s.DayNumber,
		SummaryDate:       summaryDate,
		TotalNaps:         s.Stats.TotalNaps,
		TotalNapDuration:  s.Stats.NapMinutes(),
		LongestNightSleep: s.Stats.LongestNightSleepMinutes(),
		NightWakeups:      s.Stats.NightWakeups,
		FinalWakeupTime:   s.FinalWakeupTime,
		DetailedSummary:   string(raw),
		SimpleSummary:     s.Simple,
	}, nil
}
