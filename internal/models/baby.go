package models

import "time"

// AccountStatus is the trial state of a baby account
type AccountStatus string

const (
	AccountStatusActive    AccountStatus = "active"
	AccountStatusSuspended AccountStatus = "suspended"
)

// Valid reports whether s is a known status
func (s AccountStatus) Valid() bool {
	return s == AccountStatusActive || s == AccountStatusSuspended
}

// Toggle returns the opposite status
func (s AccountStatus) Toggle() AccountStatus {
	if s == AccountStatusActive {
		return AccountStatusSuspended
	}
	return AccountStatusActive
}

// Baby represents the child whose routine is being logged. Each baby belongs
// to exactly one parent user.
type Baby struct {
	ID               string        `json:"id" db:"id"`
	UserID           string        `json:"user_id" db:"user_id"`
	Name             string        `json:"name" db:"name"`
	BirthDate        *time.Time    `json:"birth_date,omitempty" db:"birth_date"`
	AgeMonths        *int          `json:"age_months,omitempty" db:"age_months"`
	WeightGrams      *int          `json:"weight_grams,omitempty" db:"weight_grams"`
	HeightCm         *int          `json:"height_cm,omitempty" db:"height_cm"`
	PhotoURL         string        `json:"photo_url,omitempty" db:"photo_url"`
	InitialRoutine   string        `json:"initial_routine,omitempty" db:"initial_routine"`
	RoutineStartTime string        `json:"routine_start_time,omitempty" db:"routine_start_time"`
	FirstEventAt     *time.Time    `json:"first_event_at,omitempty" db:"first_event_at"`
	AccountStatus    AccountStatus `json:"account_status" db:"account_status"`
	StatusOverride   bool          `json:"status_override" db:"status_override"` // admin reactivation after the trial; disables trial expiry
	CreatedAt        time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at" db:"updated_at"`
}

// IsSuspended returns true if new events must be rejected
func (b *Baby) IsSuspended() bool {
	return b.AccountStatus == AccountStatusSuspended
}

// WeightKg returns the weight in kilograms, or 0 when unknown
func (b *Baby) WeightKg() float64 {
	if b.WeightGrams == nil {
		return 0
	}
	return float64(*b.WeightGrams) / 1000
}
