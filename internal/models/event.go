package models

import (
	"fmt"
	"strings"
	"time"
)

// EventType is the kind of routine event a parent can register
type EventType string

const (
	EventNapStart     EventType = "siesta_inicio"
	EventNapEnd       EventType = "siesta_fin"
	EventNightStart   EventType = "noche_inicio"
	EventNightEnd     EventType = "noche_fin"
	EventWakeup       EventType = "despertar"
	EventFeeding      EventType = "alimento"
	EventBath         EventType = "baño"
	EventChange       EventType = "cambio"
	EventCrying       EventType = "llanto"
	EventPlay         EventType = "juego"
	EventNightFeeding EventType = "comida_nocturna"
	EventLulling      EventType = "arrullo"
	EventStimulation  EventType = "estimulacion"
	EventDiaper       EventType = "panal"
	EventOther        EventType = "otro"
)

// EventPhase tells whether an event is offered during the day or the night
type EventPhase string

const (
	PhaseDay     EventPhase = "day"
	PhaseNight   EventPhase = "night"
	PhaseRoutine EventPhase = "routine"
)

// EventTypeInfo is the display metadata shared by every client
type EventTypeInfo struct {
	Type     EventType  `json:"type"`
	Label    string     `json:"label"`
	Sublabel string     `json:"sublabel,omitempty"`
	Emoji    string     `json:"emoji"`
	Phase    EventPhase `json:"phase"`
}

// eventTypes is the single list of accepted event types, in display order.
var eventTypes = []EventTypeInfo{
	{Type: EventNapStart, Label: "Siesta", Sublabel: "Inicio", Emoji: "😴", Phase: PhaseDay},
	{Type: EventNapEnd, Label: "Despertar", Sublabel: "Siesta", Emoji: "🌤", Phase: PhaseDay},
	{Type: EventFeeding, Label: "Comida", Emoji: "🍼", Phase: PhaseDay},
	{Type: EventBath, Label: "Baño", Emoji: "🛁", Phase: PhaseDay},
	{Type: EventPlay, Label: "Juego", Sublabel: "Estimulación", Emoji: "🧸", Phase: PhaseDay},
	{Type: EventChange, Label: "Cambio", Emoji: "👕", Phase: PhaseDay},
	{Type: EventWakeup, Label: "Despertar", Sublabel: "Nocturno", Emoji: "👀", Phase: PhaseNight},
	{Type: EventCrying, Label: "Llanto", Emoji: "😢", Phase: PhaseNight},
	{Type: EventNightFeeding, Label: "Comida", Sublabel: "Nocturna", Emoji: "🍼", Phase: PhaseNight},
	{Type: EventLulling, Label: "Arrullo", Emoji: "💗", Phase: PhaseNight},
	{Type: EventStimulation, Label: "Estimulación", Emoji: "✨", Phase: PhaseNight},
	{Type: EventDiaper, Label: "Pañal", Emoji: "🧷", Phase: PhaseNight},
	{Type: EventOther, Label: "Otro", Emoji: "✋", Phase: PhaseNight},
	{Type: EventNightStart, Label: "Rutina Iniciada", Emoji: "🌙", Phase: PhaseRoutine},
	{Type: EventNightEnd, Label: "Rutina Finalizada", Emoji: "☀️", Phase: PhaseRoutine},
}

var eventTypeIndex = func() map[EventType]EventTypeInfo {
	idx := make(map[EventType]EventTypeInfo, len(eventTypes))
	for _, info := range eventTypes {
		idx[info.Type] = info
	}
	return idx
}()

// EventTypes returns the metadata of every accepted event type
func EventTypes() []EventTypeInfo {
	out := make([]EventTypeInfo, len(eventTypes))
	copy(out, eventTypes)
	return out
}

// ParseEventType validates a raw tag against the accepted event types. Case
// and surrounding spaces are ignored.
func ParseEventType(raw string) (EventType, error) {
	t := EventType(strings.ToLower(strings.TrimSpace(raw)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown event type %q", raw)
	}
	return t, nil
}

// Valid reports whether t is one of the accepted event types
func (t EventType) Valid() bool {
	_, ok := eventTypeIndex[t]
	return ok
}

// Info returns the display metadata for t
func (t EventType) Info() EventTypeInfo {
	if info, ok := eventTypeIndex[t]; ok {
		return info
	}
	return EventTypeInfo{Type: t, Label: string(t), Emoji: "❔"}
}

// SleepEvent is a single timestamped entry in a baby's log. Events are
// never updated or deleted once created.
type SleepEvent struct {
	ID              string    `json:"id" db:"id"`
	BabyID          string    `json:"baby_id" db:"baby_id"`
	Type            EventType `json:"event_type" db:"event_type"`
	Time            time.Time `json:"event_time" db:"event_time"`
	Comments        string    `json:"comments,omitempty" db:"comments"`
	DayNumber       int       `json:"day_number" db:"day_number"`
	WakeReason      string    `json:"wake_reason,omitempty" db:"wake_reason"`
	FoodType        string    `json:"food_type,omitempty" db:"food_type"`
	FoodAmount      string    `json:"food_amount,omitempty" db:"food_amount"`
	DurationMinutes *int      `json:"duration_minutes,omitempty" db:"duration_minutes"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}
