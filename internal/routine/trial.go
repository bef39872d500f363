package routine

import (
	"time"

	"github.com/Kerhoff/NochesTranquilas/internal/models"
)

// TrialDays is how long a baby account stays active after its first event.
const TrialDays = 9

// TrialExpired reports whether an active baby should be suspended at now.
// Accounts an administrator reactivated after the trial ran out are never
// suspended automatically.
func TrialExpired(baby *models.Baby, now time.Time) bool {
	if baby == nil || baby.AccountStatus != models.AccountStatusActive {
		return false
	}
	if baby.StatusOverride || baby.FirstEventAt == nil {
		return false
	}
	return ElapsedDays(*baby.FirstEventAt, now) >= TrialDays
}

// AdminOverride reports whether an administrator setting status at now
// takes the baby out of the trial rule. Only a reactivation once the trial
// period has run out does; earlier changes leave the trial in force.
func AdminOverride(baby *models.Baby, status models.AccountStatus, now time.Time) bool {
	if baby == nil || status != models.AccountStatusActive || baby.FirstEventAt == nil {
		return false
	}
	return ElapsedDays(*baby.FirstEventAt, now) >= TrialDays
}

// TrialDaysLeft returns the remaining whole days of the trial, never
// negative. A baby without events has the full trial ahead.
func TrialDaysLeft(baby *models.Baby, now time.Time) int {
	if baby == nil || baby.FirstEventAt == nil {
		return TrialDays
	}
	left := TrialDays - ElapsedDays(*baby.FirstEventAt, now)
	if left < 0 {
		return 0
	}
	return left
}
