package alerts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/360nurse/api/internal/domain/directory"
	"github.com/360nurse/api/internal/domain/emergency"
	"github.com/360nurse/api/internal/platform/auth"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
	ErrInvalid   = errors.New("invalid request")
)

type Service struct {
	repo        Repository
	patients    directory.PatientRepository
	nurses      directory.NurseRepository
	users       directory.UserRepository
	assignments directory.AssignmentRepository
	services    emergency.Repository
}

func NewService(repo Repository, patients directory.PatientRepository,
	nurses directory.NurseRepository, users directory.UserRepository,
	assignments directory.AssignmentRepository, services emergency.Repository) *Service {
	return &Service{
		repo:        repo,
		patients:    patients,
		nurses:      nurses,
		users:       users,
		assignments: assignments,
		services:    services,
	}
}

// List returns the alerts the caller may see, newest first. Patients see
// their own, nurses the ones routed to them, admins everything.
func (s *Service) List(ctx context.Context, viewerID, viewerRole, status, patientID string) ([]*Alert, error) {
	if status != "" && !ValidStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalid, status)
	}
	viewer, err := uuid.Parse(viewerID)
	if err != nil {
		return nil, fmt.Errorf("invalid session identity: %w", err)
	}

	f := Filter{Status: status}
	if patientID != "" {
		pid, err := uuid.Parse(patientID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid patient id", ErrInvalid)
		}
		f.PatientID = pid
	}

	switch viewerRole {
	case auth.RolePatient:
		patient, err := s.patients.GetByUserID(ctx, viewer)
		if err != nil {
			return nil, fmt.Errorf("%w: patient record", ErrNotFound)
		}
		f.PatientID = patient.ID
	case auth.RoleNurse:
		nurse, err := s.nurses.GetByUserID(ctx, viewer)
		if err != nil {
			return nil, fmt.Errorf("%w: nurse record", ErrNotFound)
		}
		f.NurseID = nurse.ID
	case auth.RoleAdmin, auth.RoleFacilityAdmin:
	default:
		return nil, fmt.Errorf("%w: role may not access alerts", ErrForbidden)
	}
	return s.repo.List(ctx, f)
}

// CreateRequest is the payload for raising an alert.
type CreateRequest struct {
	PatientID   string `json:"patientId"`
	Description string `json:"description"`
	Location    string `json:"location"`
}

// Create raises a PENDING alert for a patient and routes it to the
// patient's assigned nurse, when there is one. Patients may only raise
// alerts for themselves.
func (s *Service) Create(ctx context.Context, viewerID, viewerRole string, req CreateRequest) (*Alert, error) {
	if req.PatientID == "" {
		return nil, fmt.Errorf("%w: patient id is required", ErrInvalid)
	}
	pid, err := uuid.Parse(req.PatientID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid patient id", ErrInvalid)
	}
	viewer, err := uuid.Parse(viewerID)
	if err != nil {
		return nil, fmt.Errorf("invalid session identity: %w", err)
	}

	switch viewerRole {
	case auth.RolePatient:
		patient, err := s.patients.GetByUserID(ctx, viewer)
		if err != nil || patient.ID != pid {
			return nil, fmt.Errorf("%w: cannot raise an alert for another patient", ErrForbidden)
		}
	case auth.RoleNurse, auth.RoleAdmin, auth.RoleFacilityAdmin:
	default:
		return nil, fmt.Errorf("%w: role may not raise alerts", ErrForbidden)
	}

	alert := &Alert{
		PatientID:   pid,
		Status:      StatusPending,
		Description: req.Description,
		Location:    req.Location,
	}
	if alert.Description == "" {
		alert.Description = DefaultDescription
	}
	if alert.Location == "" {
		alert.Location = DefaultLocation
	}

	assignment, err := s.assignments.AssignedNurse(ctx, pid)
	if err != nil {
		return nil, err
	}
	if assignment != nil {
		alert.NurseID = &assignment.NurseID
	}

	if err := s.repo.Create(ctx, alert); err != nil {
		return nil, err
	}
	return alert, nil
}

// RecordAbnormal raises a PENDING alert from an abnormal vitals reading,
// already routed to the patient's nurse. It satisfies the vitals package's
// AlertRecorder.
func (s *Service) RecordAbnormal(ctx context.Context, patientID, nurseID uuid.UUID, description string) error {
	return s.repo.Create(ctx, &Alert{
		PatientID:   patientID,
		NurseID:     &nurseID,
		Status:      StatusPending,
		Description: description,
		Location:    DefaultLocation,
	})
}

// Get returns one alert with nested patient, nurse and emergency service
// records, enforcing the same visibility rules as List.
func (s *Service) Get(ctx context.Context, viewerID, viewerRole string, id uuid.UUID) (*AlertDetail, error) {
	alert, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: alert", ErrNotFound)
	}
	viewer, err := uuid.Parse(viewerID)
	if err != nil {
		return nil, fmt.Errorf("invalid session identity: %w", err)
	}

	switch viewerRole {
	case auth.RolePatient:
		patient, err := s.patients.GetByUserID(ctx, viewer)
		if err != nil || patient.ID != alert.PatientID {
			return nil, fmt.Errorf("%w: not your alert", ErrForbidden)
		}
	case auth.RoleNurse:
		nurse, err := s.nurses.GetByUserID(ctx, viewer)
		if err != nil || alert.NurseID == nil || nurse.ID != *alert.NurseID {
			return nil, fmt.Errorf("%w: alert not assigned to you", ErrForbidden)
		}
	case auth.RoleAdmin, auth.RoleFacilityAdmin:
	default:
		return nil, fmt.Errorf("%w: role may not view alerts", ErrForbidden)
	}

	return s.buildDetail(ctx, alert)
}

func (s *Service) buildDetail(ctx context.Context, alert *Alert) (*AlertDetail, error) {
	detail := &AlertDetail{Alert: *alert}

	patient, err := s.patients.GetByID(ctx, alert.PatientID)
	if err != nil {
		return nil, err
	}
	patientUser, err := s.users.GetByID(ctx, patient.UserID)
	if err != nil {
		return nil, err
	}
	detail.Patient = &directory.PatientSummary{ID: patient.ID, User: patientUser.Summary()}

	if alert.NurseID != nil {
		nurse, err := s.nurses.GetByID(ctx, *alert.NurseID)
		if err != nil {
			return nil, err
		}
		nurseUser, err := s.users.GetByID(ctx, nurse.UserID)
		if err != nil {
			return nil, err
		}
		detail.Nurse = &directory.NurseSummary{
			ID:             nurse.ID,
			Specialization: nurse.Specialization,
			User:           nurseUser.Summary(),
		}
	}

	if alert.EmergencyServiceID != nil {
		svc, err := s.services.GetByID(ctx, *alert.EmergencyServiceID)
		if err != nil {
			return nil, err
		}
		detail.EmergencyService = svc
	}
	return detail, nil
}

// UpdateRequest is the payload for moving an alert through the state
// machine.
type UpdateRequest struct {
	Status             string `json:"status"`
	EmergencyServiceID string `json:"emergencyServiceId"`
}

// UpdateStatus applies one transition of the state machine. Nurses may only
// update alerts routed to them; patients may not update at all. The
// transition table binds every role.
func (s *Service) UpdateStatus(ctx context.Context, viewerID, viewerRole string, id uuid.UUID, req UpdateRequest) (*Alert, error) {
	if req.Status == "" {
		return nil, fmt.Errorf("%w: status is required", ErrInvalid)
	}
	if !ValidStatus(req.Status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalid, req.Status)
	}

	alert, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: alert", ErrNotFound)
	}
	viewer, err := uuid.Parse(viewerID)
	if err != nil {
		return nil, fmt.Errorf("invalid session identity: %w", err)
	}

	switch viewerRole {
	case auth.RoleNurse:
		nurse, err := s.nurses.GetByUserID(ctx, viewer)
		if err != nil || alert.NurseID == nil || nurse.ID != *alert.NurseID {
			return nil, fmt.Errorf("%w: alert not assigned to you", ErrForbidden)
		}
	case auth.RoleAdmin, auth.RoleFacilityAdmin:
	default:
		return nil, fmt.Errorf("%w: role may not update alerts", ErrForbidden)
	}

	if !CanTransition(alert.Status, req.Status) {
		return nil, fmt.Errorf("%w: illegal transition from %s to %s", ErrInvalid, alert.Status, req.Status)
	}

	alert.Status = req.Status
	if req.Status == StatusResolved {
		now := time.Now()
		alert.ResolvedAt = &now
	}
	if req.EmergencyServiceID != "" {
		sid, err := uuid.Parse(req.EmergencyServiceID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid emergency service id", ErrInvalid)
		}
		alert.EmergencyServiceID = &sid
	}

	if err := s.repo.Update(ctx, alert); err != nil {
		return nil, err
	}
	return alert, nil
}
