package domain

import "time"

// EventType distinguishes high and low water.
type EventType string

const (
	EventHigh EventType = "high"
	EventLow  EventType = "low"
)

// TideEvent is one turning point of the tidal curve.
type TideEvent struct {
	Time    time.Time `json:"time"`
	Type    EventType `json:"type"`
	LevelCm float64   `json:"level_cm"`
}

// TideState describes the instantaneous motion of the water column.
type TideState string

const (
	StateRising  TideState = "rising"
	StateFalling TideState = "falling"
	StateHigh    TideState = "high"
	StateLow     TideState = "low"
)

// Accuracy grades a result by the confidence of the regional correction that
// produced it: "high" when a high-quality region within its coverage radius
// was applied, "medium" for lower-quality or distant calibration, "low" when
// the harmonics went uncorrected.
type Accuracy string

const (
	AccuracyHigh   Accuracy = "high"
	AccuracyMedium Accuracy = "medium"
	AccuracyLow    Accuracy = "low"
)

// TideInfo is the sole output contract of the engine. It is immutable once
// produced; callers must treat every field as read-only.
type TideInfo struct {
	Location       Coordinates `json:"location"`
	Date           time.Time   `json:"date"`
	CurrentState   TideState   `json:"current_state"`
	CurrentLevelCm float64     `json:"current_level_cm"`
	TideType       TideType    `json:"tide_type"`
	TideStrength   float64     `json:"tide_strength"`
	Events         []TideEvent `json:"events"`
	NextEvent      *TideEvent  `json:"next_event,omitempty"`
	CalculatedAt   time.Time   `json:"calculated_at"`
	Accuracy       Accuracy    `json:"accuracy"`
}
