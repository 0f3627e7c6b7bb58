package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/360nurse/api/internal/platform/auth"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
	ErrInvalid   = errors.New("invalid request")
)

type Service struct {
	users          UserRepository
	patients       PatientRepository
	nurses         NurseRepository
	facilities     FacilityRepository
	facilityAdmins FacilityAdminRepository
	assignments    AssignmentRepository
}

func NewService(users UserRepository, patients PatientRepository, nurses NurseRepository,
	facilities FacilityRepository, facilityAdmins FacilityAdminRepository,
	assignments AssignmentRepository) *Service {
	return &Service{
		users:          users,
		patients:       patients,
		nurses:         nurses,
		facilities:     facilities,
		facilityAdmins: facilityAdmins,
		assignments:    assignments,
	}
}

// Users exposes the user repository to sibling services that need user
// summaries without duplicating lookups.
func (s *Service) Users() UserRepository { return s.users }

// PatientProfile resolves the patient view for the calling identity.
// Patients see only their own profile, nurses only assigned patients, and
// admins any patient.
func (s *Service) PatientProfile(ctx context.Context, viewerID, viewerRole, patientID string) (*PatientProfile, error) {
	viewer, err := uuid.Parse(viewerID)
	if err != nil {
		return nil, fmt.Errorf("invalid session identity: %w", err)
	}

	var patient *Patient
	if patientID == "" {
		if viewerRole != auth.RolePatient {
			return nil, fmt.Errorf("%w: patient id is required", ErrInvalid)
		}
		patient, err = s.patients.GetByUserID(ctx, viewer)
		if err != nil {
			return nil, fmt.Errorf("%w: patient profile", ErrNotFound)
		}
	} else {
		pid, err := uuid.Parse(patientID)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid patient id", ErrInvalid)
		}
		if err := s.authorizePatientAccess(ctx, viewer, viewerRole, pid); err != nil {
			return nil, err
		}
		patient, err = s.patients.GetByID(ctx, pid)
		if err != nil {
			return nil, fmt.Errorf("%w: patient profile", ErrNotFound)
		}
	}

	return s.buildProfile(ctx, patient)
}

// authorizePatientAccess enforces the patient read gate: patients reach only
// their own record, nurses only assigned patients, admins anyone.
func (s *Service) authorizePatientAccess(ctx context.Context, viewer uuid.UUID, viewerRole string, patientID uuid.UUID) error {
	switch viewerRole {
	case auth.RolePatient:
		own, err := s.patients.GetByUserID(ctx, viewer)
		if err != nil || own.ID != patientID {
			return fmt.Errorf("%w: not your profile", ErrForbidden)
		}
	case auth.RoleNurse:
		nurse, err := s.nurses.GetByUserID(ctx, viewer)
		if err != nil {
			return fmt.Errorf("%w: nurse record not found", ErrNotFound)
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
		return fmt.Errorf("%w: role may not access patient profiles", ErrForbidden)
	}
	return nil
}

func (s *Service) buildProfile(ctx context.Context, patient *Patient) (*PatientProfile, error) {
	user, err := s.users.GetByID(ctx, patient.UserID)
	if err != nil {
		return nil, err
	}
	profile := &PatientProfile{Patient: *patient, User: user.Summary()}

	assignment, err := s.assignments.AssignedNurse(ctx, patient.ID)
	if err != nil {
		return nil, err
	}
	if assignment != nil {
		nurse, err := s.nurses.GetByID(ctx, assignment.NurseID)
		if err != nil {
			return nil, err
		}
		nurseUser, err := s.users.GetByID(ctx, nurse.UserID)
		if err != nil {
			return nil, err
		}
		profile.AssignedNurse = &NurseSummary{
			ID:             nurse.ID,
			Specialization: nurse.Specialization,
			User:           nurseUser.Summary(),
		}
	}
	return profile, nil
}

// UpdateProfileRequest carries the fields a patient may change on their own
// profile. Empty fields are left untouched.
type UpdateProfileRequest struct {
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

// UpdatePatientProfile applies a patient's own profile changes.
func (s *Service) UpdatePatientProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*PatientProfile, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid session identity: %w", err)
	}
	patient, err := s.patients.GetByUserID(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("%w: patient profile", ErrNotFound)
	}

	if req.Name != "" || req.Email != "" {
		user, err := s.users.GetByID(ctx, uid)
		if err != nil {
			return nil, err
		}
		if req.Name != "" {
			user.Name = req.Name
		}
		if req.Email != "" {
			user.Email = req.Email
		}
		if err := s.users.Update(ctx, user); err != nil {
			return nil, err
		}
	}

	if req.Phone != nil {
		patient.Phone = req.Phone
	}
	if req.Address != nil {
		patient.Address = req.Address
	}
	if err := s.patients.Update(ctx, patient); err != nil {
		return nil, err
	}
	return s.buildProfile(ctx, patient)
}

// AssignPatient puts a patient under a nurse's care. A newer assignment
// supersedes older ones for alert routing.
func (s *Service) AssignPatient(ctx context.Context, nurseID, patientID uuid.UUID) (*NursePatient, error) {
	if _, err := s.nurses.GetByID(ctx, nurseID); err != nil {
		return nil, fmt.Errorf("%w: nurse", ErrNotFound)
	}
	if _, err := s.patients.GetByID(ctx, patientID); err != nil {
		return nil, fmt.Errorf("%w: patient", ErrNotFound)
	}
	a := &NursePatient{NurseID: nurseID, PatientID: patientID}
	if err := s.assignments.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// NursePatients lists the patients assigned to a nurse, newest assignment
// first.
func (s *Service) NursePatients(ctx context.Context, nurseID uuid.UUID) ([]*PatientSummary, error) {
	assignments, err := s.assignments.ListByNurse(ctx, nurseID)
	if err != nil {
		return nil, err
	}
	summaries := make([]*PatientSummary, 0, len(assignments))
	for _, a := range assignments {
		patient, err := s.patients.GetByID(ctx, a.PatientID)
		if err != nil {
			return nil, err
		}
		user, err := s.users.GetByID(ctx, patient.UserID)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, &PatientSummary{ID: patient.ID, User: user.Summary()})
	}
	return summaries, nil
}

// PatientNurses lists the nurses caring for a patient, newest assignment
// first, under the same read gate as the profile.
func (s *Service) PatientNurses(ctx context.Context, viewerID, viewerRole string, patientID uuid.UUID) ([]*NurseSummary, error) {
	viewer, err := uuid.Parse(viewerID)
	if err != nil {
		return nil, fmt.Errorf("invalid session identity: %w", err)
	}
	if err := s.authorizePatientAccess(ctx, viewer, viewerRole, patientID); err != nil {
		return nil, err
	}
	if _, err := s.patients.GetByID(ctx, patientID); err != nil {
		return nil, fmt.Errorf("%w: patient", ErrNotFound)
	}

	assignments, err := s.assignments.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	summaries := make([]*NurseSummary, 0, len(assignments))
	for _, a := range assignments {
		nurse, err := s.nurses.GetByID(ctx, a.NurseID)
		if err != nil {
			return nil, err
		}
		user, err := s.users.GetByID(ctx, nurse.UserID)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, &NurseSummary{
			ID:             nurse.ID,
			Specialization: nurse.Specialization,
			User:           user.Summary(),
		})
	}
	return summaries, nil
}

// NurseByUserID resolves the nurse record behind a session identity.
func (s *Service) NurseByUserID(ctx context.Context, userID string) (*Nurse, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid session identity: %w", err)
	}
	nurse, err := s.nurses.GetByUserID(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("%w: nurse record", ErrNotFound)
	}
	return nurse, nil
}
