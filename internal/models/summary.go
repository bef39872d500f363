package models

import "time"

// DailySummary is the statistics record generated when a routine ends
type DailySummary struct {
	ID                 string    `json:"id" db:"id"`
	BabyID             string    `json:"baby_id" db:"baby_id"`
	DayNumber          int       `json:"day_number" db:"day_number"`
	SummaryDate        time.Time `json:"summary_date" db:"summary_date"`
	TotalNaps          int       `json:"total_naps" db:"total_naps"`
	TotalNapDuration   int       `json:"total_nap_duration" db:"total_nap_duration"`   // minutes
	LongestNightSleep  int       `json:"longest_night_sleep" db:"longest_night_sleep"` // minutes
	NightWakeups       int       `json:"night_wakeups" db:"night_wakeups"`
	FinalWakeupTime    string    `json:"final_wakeup_time" db:"final_wakeup_time"` // HH:MM
	ParentObservations string    `json:"parent_observations,omitempty" db:"parent_observations"`
	DetailedSummary    string    `json:"detailed_summary" db:"detailed_summary"` // JSON
	SimpleSummary      string    `json:"simple_summary" db:"simple_summary"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
}

// NotificationType classifies admin notifications
type NotificationType string

const (
	NotificationRoutineFinalized NotificationType = "routine_finalized"
	NotificationAccountCreated   NotificationType = "account_created"
)

// AdminNotification is an inbox entry shown to the administrator
type AdminNotification struct {
	ID        string           `json:"id" db:"id"`
	BabyID    string           `json:"baby_id" db:"baby_id"`
	BabyName  string           `json:"baby_name" db:"baby_name"`
	Type      NotificationType `json:"notification_type" db:"notification_type"`
	Message   string           `json:"message" db:"message"`
	IsRead    bool             `json:"is_read" db:"is_read"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}
