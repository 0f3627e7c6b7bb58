package vitals

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/360nurse/api/internal/domain/directory"
	"github.com/360nurse/api/internal/platform/auth"
	"github.com/360nurse/api/internal/platform/db"
	"github.com/360nurse/api/pkg/pagination"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
	ErrInvalid   = errors.New("invalid request")
)

// LatestLimit is how many readings the dashboard fetches per patient.
const LatestLimit = 10

// AlertRecorder creates an emergency alert for an abnormal reading. The
// alerts service implements it; the indirection keeps this package free of
// the alert state machine.
type AlertRecorder interface {
	RecordAbnormal(ctx context.Context, patientID, nurseID uuid.UUID, description string) error
}

type Service struct {
	readings    Repository
	patients    directory.PatientRepository
	nurses      directory.NurseRepository
	assignments directory.AssignmentRepository
	alerts      AlertRecorder
	runTx       db.TxRunner
}

func NewService(readings Repository, patients directory.PatientRepository,
	nurses directory.NurseRepository, assignments directory.AssignmentRepository,
	alerts AlertRecorder, runTx db.TxRunner) *Service {
	return &Service{
		readings:    readings,
		patients:    patients,
		nurses:      nurses,
		assignments: assignments,
		alerts:      alerts,
		runTx:       runTx,
	}
}

// resolvePatient maps the request onto a patient id: patients default to
// their own record, everyone else must name one.
func (s *Service) resolvePatient(ctx context.Context, viewerID, viewerRole, patientID string) (uuid.UUID, error) {
	if patientID == "" {
		if viewerRole != auth.RolePatient {
			return uuid.Nil, fmt.Errorf("%w: patient id is required", ErrInvalid)
		}
		viewer, err := uuid.Parse(viewerID)
		if err != nil {
			return uuid.Nil, fmt.Errorf("invalid session identity: %w", err)
		}
		patient, err := s.patients.GetByUserID(ctx, viewer)
		if err != nil {
			return uuid.Nil, fmt.Errorf("%w: patient record", ErrNotFound)
		}
		return patient.ID, nil
	}
	pid, err := uuid.Parse(patientID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid patient id", ErrInvalid)
	}
	return pid, nil
}

// authorize enforces the read gate: patients see only their own readings,
// nurses only assigned patients, admins anyone. Other roles are denied.
func (s *Service) authorize(ctx context.Context, viewerID, viewerRole string, patientID uuid.UUID) error {
	viewer, err := uuid.Parse(viewerID)
	if err != nil {
		return fmt.Errorf("invalid session identity: %w", err)
	}
	switch viewerRole {
	case auth.RolePatient:
		patient, err := s.patients.GetByUserID(ctx, viewer)
		if err != nil || patient.ID != patientID {
			return fmt.Errorf("%w: not your readings", ErrForbidden)
		}
	case auth.RoleNurse:
		nurse, err := s.nurses.GetByUserID(ctx, viewer)
		if err != nil {
			return fmt.Errorf("%w: nurse record", ErrNotFound)
		}
		assigned, err := s.assignments.IsAssigned(ctx, nurse.ID, patientID)
		if err != nil {
			return err
		}
		if !assigned {
			return fmt.Errorf("%w: patient not assigned to you", ErrForbidden)
		}
	case auth.RoleAdmin, auth.RoleFacilityAdmin:
	default:
		return fmt.Errorf("%w: role may not access vital signs", ErrForbidden)
	}
	return nil
}

// Latest returns the newest readings for a patient. When the patient has no
// history yet, one simulated reading is generated and stored so the
// dashboard always has data.
func (s *Service) Latest(ctx context.Context, viewerID, viewerRole, patientID string) ([]*VitalReading, error) {
	pid, err := s.resolvePatient(ctx, viewerID, viewerRole, patientID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, viewerID, viewerRole, pid); err != nil {
		return nil, err
	}

	readings, err := s.readings.Latest(ctx, pid, LatestLimit)
	if err != nil {
		return nil, err
	}
	if len(readings) == 0 {
		reading := Generate(pid)
		if err := s.readings.Create(ctx, reading); err != nil {
			return nil, err
		}
		readings = []*VitalReading{reading}
	}
	return readings, nil
}

// History returns a page of the patient's readings under the same read gate
// as Latest, plus the total count for the pagination envelope.
func (s *Service) History(ctx context.Context, viewerID, viewerRole, patientID string, p pagination.Params) ([]*VitalReading, int, error) {
	pid, err := s.resolvePatient(ctx, viewerID, viewerRole, patientID)
	if err != nil {
		return nil, 0, err
	}
	if err := s.authorize(ctx, viewerID, viewerRole, pid); err != nil {
		return nil, 0, err
	}
	readings, total, err := s.readings.History(ctx, pid, p.Limit, p.Offset)
	if err != nil {
		return nil, 0, err
	}
	if readings == nil {
		readings = []*VitalReading{}
	}
	return readings, total, nil
}

// RecordRequest is the payload for recording a reading. Zero-valued vitals
// are filled with simulated values.
type RecordRequest struct {
	PatientID     string  `json:"patientId"`
	BloodPressure string  `json:"bloodPressure"`
	HeartRate     int     `json:"heartRate"`
	Temperature   float64 `json:"temperature"`
	OxygenLevel   int     `json:"oxygenLevel"`
}

// Record stores a new reading and, when the reading is abnormal and the
// patient has an assigned nurse, raises a PENDING alert to that nurse. The
// reading insert, assignment lookup and alert insert run in one transaction
// so no abnormal reading can exist without its alert.
func (s *Service) Record(ctx context.Context, viewerID, viewerRole string, req RecordRequest) (*VitalReading, error) {
	pid, err := s.resolvePatient(ctx, viewerID, viewerRole, req.PatientID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, viewerID, viewerRole, pid); err != nil {
		return nil, err
	}

	reading := Generate(pid)
	reading.IsSimulated = req.BloodPressure == "" && req.HeartRate == 0 && req.Temperature == 0 && req.OxygenLevel == 0
	if req.BloodPressure != "" {
		reading.BloodPressure = req.BloodPressure
	}
	if req.HeartRate != 0 {
		reading.HeartRate = req.HeartRate
	}
	if req.Temperature != 0 {
		reading.Temperature = req.Temperature
	}
	if req.OxygenLevel != 0 {
		reading.OxygenLevel = req.OxygenLevel
	}
	reading.RecordedAt = time.Now()

	err = s.runTx(ctx, func(ctx context.Context) error {
		if err := s.readings.Create(ctx, reading); err != nil {
			return err
		}
		if !reading.Abnormal() {
			return nil
		}
		assignment, err := s.assignments.AssignedNurse(ctx, pid)
		if err != nil {
			return err
		}
		if assignment == nil {
			// No nurse to notify; the reading still stands.
			return nil
		}
		return s.alerts.RecordAbnormal(ctx, pid, assignment.NurseID, reading.BreachDescription())
	})
	if err != nil {
		return nil, err
	}
	return reading, nil
}
