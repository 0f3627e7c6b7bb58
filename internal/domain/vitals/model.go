package vitals

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Thresholds outside which a reading is considered abnormal. Readings are
// abnormal when any one of them is breached.
const (
	MaxHeartRate   = 100
	MinOxygenLevel = 95
	MaxTemperature = 37.5
)

// VitalReading maps to the vital_records table. Readings are immutable once
// recorded; corrections are new readings.
type VitalReading struct {
	ID            uuid.UUID `db:"id" json:"id"`
	PatientID     uuid.UUID `db:"patient_id" json:"patient_id"`
	BloodPressure string    `db:"blood_pressure" json:"blood_pressure"`
	HeartRate     int       `db:"heart_rate" json:"heart_rate"`
	Temperature   float64   `db:"temperature" json:"temperature"`
	OxygenLevel   int       `db:"oxygen_level" json:"oxygen_level"`
	RecordedAt    time.Time `db:"recorded_at" json:"recorded_at"`
	IsSimulated   bool      `db:"is_simulated" json:"is_simulated"`
}

// Abnormal reports whether any vital sign breaches its threshold.
func (v *VitalReading) Abnormal() bool {
	return v.HeartRate > MaxHeartRate || v.OxygenLevel < MinOxygenLevel || v.Temperature > MaxTemperature
}

// BreachDescription renders the alert text for an abnormal reading. Only the
// breached signs appear, e.g.
// "Abnormal vital signs detected: Heart Rate: 115 bpm Temperature: 38.2°C".
func (v *VitalReading) BreachDescription() string {
	var parts []string
	if v.HeartRate > MaxHeartRate {
		parts = append(parts, fmt.Sprintf("Heart Rate: %d bpm", v.HeartRate))
	}
	if v.OxygenLevel < MinOxygenLevel {
		parts = append(parts, fmt.Sprintf("Oxygen Level: %d%%", v.OxygenLevel))
	}
	if v.Temperature > MaxTemperature {
		parts = append(parts, fmt.Sprintf("Temperature: %.1f°C", v.Temperature))
	}
	if len(parts) == 0 {
		return ""
	}
	return "Abnormal vital signs detected: " + strings.Join(parts, " ")
}
