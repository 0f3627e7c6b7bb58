package vitals

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// Generate produces a simulated reading in the normal ranges the patient
// dashboard expects: blood pressure 100-139/60-79, heart rate 60-99,
// temperature 36.0-37.5, oxygen level 95-99.
func Generate(patientID uuid.UUID) *VitalReading {
	return &VitalReading{
		PatientID:     patientID,
		BloodPressure: fmt.Sprintf("%d/%d", 100+rand.Intn(40), 60+rand.Intn(20)),
		HeartRate:     60 + rand.Intn(40),
		Temperature:   math.Round((36.0+rand.Float64()*1.5)*10) / 10,
		OxygenLevel:   95 + rand.Intn(5),
		RecordedAt:    time.Now(),
		IsSimulated:   true,
	}
}
