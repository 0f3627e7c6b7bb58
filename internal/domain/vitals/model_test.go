package vitals

import (
	"strconv"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestAbnormal(t *testing.T) {
	tests := []struct {
		name    string
		reading VitalReading
		want    bool
	}{
		{"all normal", VitalReading{HeartRate: 80, OxygenLevel: 98, Temperature: 36.5}, false},
		{"boundary values", VitalReading{HeartRate: 100, OxygenLevel: 95, Temperature: 37.5}, false},
		{"high heart rate", VitalReading{HeartRate: 101, OxygenLevel: 98, Temperature: 36.5}, true},
		{"low oxygen", VitalReading{HeartRate: 80, OxygenLevel: 94, Temperature: 36.5}, true},
		{"high temperature", VitalReading{HeartRate: 80, OxygenLevel: 98, Temperature: 37.6}, true},
		{"all breached", VitalReading{HeartRate: 120, OxygenLevel: 90, Temperature: 39.0}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.reading.Abnormal(); got != tt.want {
				t.Errorf("Abnormal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBreachDescription_SingleSign(t *testing.T) {
	v := VitalReading{HeartRate: 115, OxygenLevel: 98, Temperature: 36.5}
	want := "Abnormal vital signs detected: Heart Rate: 115 bpm"
	if got := v.BreachDescription(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestBreachDescription_AllSigns(t *testing.T) {
	v := VitalReading{HeartRate: 115, OxygenLevel: 93, Temperature: 38.2}
	want := "Abnormal vital signs detected: Heart Rate: 115 bpm Oxygen Level: 93% Temperature: 38.2°C"
	if got := v.BreachDescription(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestBreachDescription_SkipsNormalSigns(t *testing.T) {
	v := VitalReading{HeartRate: 115, OxygenLevel: 98, Temperature: 38.2}
	got := v.BreachDescription()
	if strings.Contains(got, "Oxygen") {
		t.Errorf("normal oxygen should not appear in %q", got)
	}
	if !strings.Contains(got, "Heart Rate: 115 bpm") || !strings.Contains(got, "Temperature: 38.2°C") {
		t.Errorf("missing breached signs in %q", got)
	}
}

func TestBreachDescription_Normal(t *testing.T) {
	v := VitalReading{HeartRate: 80, OxygenLevel: 98, Temperature: 36.5}
	if got := v.BreachDescription(); got != "" {
		t.Errorf("expected empty description for normal reading, got %q", got)
	}
}

func TestGenerate_Ranges(t *testing.T) {
	pid := uuid.New()
	for i := 0; i < 200; i++ {
		v := Generate(pid)
		if v.PatientID != pid {
			t.Fatal("wrong patient id")
		}
		if !v.IsSimulated {
			t.Fatal("generated readings must be marked simulated")
		}
		if v.Abnormal() {
			t.Fatalf("generated reading must be in normal ranges: %+v", v)
		}

		parts := strings.Split(v.BloodPressure, "/")
		if len(parts) != 2 {
			t.Fatalf("bad blood pressure format %q", v.BloodPressure)
		}
		sys, _ := strconv.Atoi(parts[0])
		dia, _ := strconv.Atoi(parts[1])
		if sys < 100 || sys > 139 {
			t.Fatalf("systolic %d out of range", sys)
		}
		if dia < 60 || dia > 79 {
			t.Fatalf("diastolic %d out of range", dia)
		}
		if v.HeartRate < 60 || v.HeartRate > 99 {
			t.Fatalf("heart rate %d out of range", v.HeartRate)
		}
		if v.Temperature < 36.0 || v.Temperature > 37.5 {
			t.Fatalf("temperature %.1f out of range", v.Temperature)
		}
		if v.OxygenLevel < 95 || v.OxygenLevel > 99 {
			t.Fatalf("oxygen level %d out of range", v.OxygenLevel)
		}
	}
}
