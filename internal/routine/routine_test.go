package routine

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kerhoff/NochesTranquilas/internal/models"
)

func at(day, hour, min int) time.Time {
	return time.Date(2025, time.March, day, hour, min, 0, 0, time.UTC)
}

func ev(t models.EventType, when time.Time) models.SleepEvent {
	return models.SleepEvent{Type: t, Time: when}
}

func TestDayNumber(t *testing.T) {
	epoch := at(1, 20, 0)

	tests := []struct {
		name string
		when time.Time
		want int
	}{
		{"same instant", epoch, 1},
		{"same evening", at(1, 23, 59), 1},
		{"just under a day", epoch.Add(Day - time.Millisecond), 1},
		{"exactly one day", epoch.Add(Day), 2},
		{"calendar day two but under 24h", at(2, 19, 59), 1},
		{"ninth day", epoch.Add(8*Day + time.Hour), 9},
		{"before epoch is clamped", at(1, 8, 0), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DayNumber(epoch, tt.when))
		})
	}
}

func TestElapsedDaysFloorsNegativeSpans(t *testing.T) {
	epoch := at(10, 0, 0)
	assert.Equal(t, -1, ElapsedDays(epoch, epoch.Add(-time.Minute)))
	assert.Equal(t, -2, ElapsedDays(epoch, epoch.Add(-Day-time.Minute)))
	assert.Equal(t, 0, ElapsedDays(epoch, epoch.Add(time.Minute)))
}

func TestDayNumberIsMonotonic(t *testing.T) {
	epoch := at(1, 6, 30)
	prev := 0
	for i := 0; i < 2000; i++ {
		when := epoch.Add(time.Duration(i) * 7 * time.Minute * 3)
		n := DayNumber(epoch, when)
		require.GreaterOrEqual(t, n, prev, "day number decreased at step %d", i)
		prev = n
	}
}

func TestResolveEpoch(t *testing.T) {
	first := at(1, 9, 0)
	when := at(3, 10, 0)

	epoch, isFirst := ResolveEpoch(nil, when)
	assert.True(t, isFirst)
	assert.Equal(t, when, epoch)
	assert.Equal(t, 1, DayNumber(epoch, when))

	epoch, isFirst = ResolveEpoch(&first, when)
	assert.False(t, isFirst)
	assert.Equal(t, first, epoch)
	assert.Equal(t, 3, DayNumber(epoch, when))
}

func TestTrialExpired(t *testing.T) {
	first := at(1, 12, 0)
	active := func() *models.Baby {
		f := first
		return &models.Baby{AccountStatus: models.AccountStatusActive, FirstEventAt: &f}
	}

	assert.False(t, TrialExpired(active(), first.Add(9*Day-time.Second)))
	assert.True(t, TrialExpired(active(), first.Add(9*Day)))
	assert.True(t, TrialExpired(active(), first.Add(30*Day)))

	noEvents := &models.Baby{AccountStatus: models.AccountStatusActive}
	assert.False(t, TrialExpired(noEvents, first.Add(30*Day)))

	suspended := active()
	suspended.AccountStatus = models.AccountStatusSuspended
	assert.False(t, TrialExpired(suspended, first.Add(30*Day)))

	reactivated := active()
	reactivated.StatusOverride = true
	assert.False(t, TrialExpired(reactivated, first.Add(30*Day)))

	assert.False(t, TrialExpired(nil, first))
}

func TestAdminOverride(t *testing.T) {
	first := at(1, 12, 0)
	baby := &models.Baby{FirstEventAt: &first, AccountStatus: models.AccountStatusSuspended}

	assert.False(t, AdminOverride(baby, models.AccountStatusActive, first.Add(3*Day)))
	assert.True(t, AdminOverride(baby, models.AccountStatusActive, first.Add(TrialDays*Day)))
	assert.False(t, AdminOverride(baby, models.AccountStatusSuspended, first.Add(20*Day)))
	assert.False(t, AdminOverride(&models.Baby{}, models.AccountStatusActive, first.Add(20*Day)))
	assert.False(t, AdminOverride(nil, models.AccountStatusActive, first))
}

func TestTrialDaysLeft(t *testing.T) {
	first := at(1, 12, 0)
	baby := &models.Baby{FirstEventAt: &first}
	assert.Equal(t, TrialDays, TrialDaysLeft(&models.Baby{}, first))
	assert.Equal(t, 7, TrialDaysLeft(baby, first.Add(2*Day)))
	assert.Equal(t, 0, TrialDaysLeft(baby, first.Add(20*Day)))
}

func TestFold_SingleNap(t *testing.T) {
	stats := Fold([]models.SleepEvent{
		ev(models.EventNapStart, at(1, 9, 30)),
		ev(models.EventNapEnd, at(1, 10, 15)),
	})
	assert.Equal(t, 1, stats.TotalNaps)
	assert.Equal(t, 45, stats.NapMinutes())
	assert.Zero(t, stats.NightWakeups)
}

func TestFold_OrphanNapEventsAreDropped(t *testing.T) {
	stats := Fold([]models.SleepEvent{
		ev(models.EventNapEnd, at(1, 8, 0)),
		ev(models.EventNapStart, at(1, 9, 0)),
		ev(models.EventNapStart, at(1, 9, 30)),
		ev(models.EventNapEnd, at(1, 10, 0)),
		ev(models.EventNapEnd, at(1, 10, 30)),
	})
	assert.Equal(t, 1, stats.TotalNaps)
	assert.Equal(t, 30, stats.NapMinutes())
}

func TestFold_EndWithoutStartContributesNothing(t *testing.T) {
	stats := Fold([]models.SleepEvent{ev(models.EventNapEnd, at(1, 10, 0))})
	assert.Equal(t, Stats{}, stats)
}

func TestFold_NightWakeups(t *testing.T) {
	stats := Fold([]models.SleepEvent{
		ev(models.EventNightStart, at(1, 20, 0)),
		ev(models.EventWakeup, at(1, 23, 45)),
		ev(models.EventWakeup, at(2, 3, 20)),
		ev(models.EventNightEnd, at(2, 7, 0)),
	})
	assert.Equal(t, 2, stats.NightWakeups)
	// measured stretches: 20:00-23:45 = 225, 23:45-03:20 = 215
	assert.Equal(t, 225, stats.LongestNightSleepMinutes())
}

func TestFold_NightEndLeavesStatsUnchanged(t *testing.T) {
	withoutEnd := []models.SleepEvent{
		ev(models.EventNightStart, at(1, 20, 0)),
		ev(models.EventWakeup, at(1, 21, 0)),
	}
	stats := Fold(append(withoutEnd, ev(models.EventNightEnd, at(2, 7, 0))))
	assert.Equal(t, Fold(withoutEnd), stats)
	assert.Equal(t, 1, stats.NightWakeups)
	assert.Equal(t, 60, stats.LongestNightSleepMinutes())

	assert.Equal(t, Stats{}, Fold([]models.SleepEvent{
		ev(models.EventNightStart, at(1, 20, 0)),
		ev(models.EventNightEnd, at(2, 7, 0)),
	}))
}

func TestFold_WakeupWithoutBedtimeIsIgnored(t *testing.T) {
	stats := Fold([]models.SleepEvent{
		ev(models.EventWakeup, at(1, 2, 0)),
		ev(models.EventCrying, at(1, 2, 5)),
		ev(models.EventNightFeeding, at(1, 2, 10)),
	})
	assert.Equal(t, Stats{}, stats)
}

func TestFold_OtherEventsDoNotAffectStats(t *testing.T) {
	base := []models.SleepEvent{
		ev(models.EventNapStart, at(1, 13, 0)),
		ev(models.EventNapEnd, at(1, 14, 10)),
	}
	noisy := []models.SleepEvent{
		ev(models.EventFeeding, at(1, 12, 0)),
		ev(models.EventNapStart, at(1, 13, 0)),
		ev(models.EventDiaper, at(1, 13, 30)),
		ev(models.EventLulling, at(1, 13, 40)),
		ev(models.EventNapEnd, at(1, 14, 10)),
		ev(models.EventBath, at(1, 18, 0)),
	}
	assert.Equal(t, Fold(base), Fold(noisy))
}

func TestFold_RoundsToNearestMinute(t *testing.T) {
	start := at(1, 9, 0)
	stats := Fold([]models.SleepEvent{
		ev(models.EventNapStart, start),
		ev(models.EventNapEnd, start.Add(20*time.Minute+29*time.Second)),
		ev(models.EventNapStart, at(1, 15, 0)),
		ev(models.EventNapEnd, at(1, 15, 0).Add(10*time.Minute+40*time.Second)),
	})
	assert.Equal(t, 2, stats.TotalNaps)
	assert.Equal(t, 31, stats.NapMinutes())
}

func TestSummarize(t *testing.T) {
	loc := time.FixedZone("CST", -6*60*60)
	events := []models.SleepEvent{
		{Type: models.EventNapStart, Time: at(4, 15, 30), Comments: "en brazos"},
		{Type: models.EventNapEnd, Time: at(4, 16, 15)},
		{Type: models.EventNightStart, Time: at(5, 2, 0), Comments: "Rutina iniciada"},
		{Type: models.EventWakeup, Time: at(5, 5, 0)},
		{Type: models.EventNightEnd, Time: at(5, 13, 0)},
	}
	finished := at(5, 13, 5)

	s := Summarize(4, events, finished, loc)

	assert.Equal(t, 4, s.DayNumber)
	assert.Equal(t, "07:05", s.FinalWakeupTime)
	assert.Equal(t, 1, s.Stats.TotalNaps)
	assert.Equal(t, 1, s.Stats.NightWakeups)
	assert.Equal(t, 180, s.Stats.LongestNightSleepMinutes())
	assert.Equal(t,
		"Día 4: 1 siesta(s), 45 min totales. Sueño nocturno más largo: 180 min. Despertares: 1. Despertar final: 07:05",
		s.Simple)

	require.Len(t, s.Detailed.Events, len(events))
	assert.Equal(t, DetailedEvent{Time: "09:30:00", Type: models.EventNapStart, Comments: "en brazos"}, s.Detailed.Events[0])
	assert.Equal(t, "07:00:00", s.Detailed.Events[4].Time)
	assert.Equal(t, 45, s.Detailed.Stats.TotalNapDuration)
	assert.Equal(t, "07:05", s.Detailed.Stats.FinalWakeupTime)
}

func TestSummaryDailySummary(t *testing.T) {
	finished := at(2, 7, 0)
	s := Summarize(2, []models.SleepEvent{
		ev(models.EventNapStart, at(1, 9, 30)),
		ev(models.EventNapEnd, at(1, 10, 15)),
	}, finished, time.UTC)

	rec, err := s.DailySummary("baby-1", finished)
	require.NoError(t, err)
	assert.Equal(t, "baby-1", rec.BabyID)
	assert.Equal(t, 2, rec.DayNumber)
	assert.Equal(t, 45, rec.TotalNapDuration)
	assert.Equal(t, "07:00", rec.FinalWakeupTime)
	assert.Equal(t, s.Simple, rec.SimpleSummary)

	var decoded Detailed
	require.NoError(t, json.Unmarshal([]byte(rec.DetailedSummary), &decoded))
	assert.Len(t, decoded.Events, 2)
	assert.Equal(t, 1, decoded.Stats.TotalNaps)
}

func TestSummarizeEmptyDay(t *testing.T) {
	s := Summarize(1, nil, at(1, 7, 0), time.UTC)
	assert.Empty(t, s.Detailed.Events)
	assert.NotNil(t, s.Detailed.Events)
	assert.Equal(t, "Día 1: 0 siesta(s), 0 min totales. Sueño nocturno más largo: 0 min. Despertares: 0. Despertar final: 07:00", s.Simple)
}
