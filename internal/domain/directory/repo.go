package directory

import (
	"context"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	// GetByEmail returns (nil, nil) when no user has the email.
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, u *User) error
}

type PatientRepository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	// MostRecent returns the most recently registered patient, or (nil, nil)
	// when there are none.
	MostRecent(ctx context.Context) (*Patient, error)
}

type NurseRepository interface {
	Create(ctx context.Context, n *Nurse) error
	GetByID(ctx context.Context, id uuid.UUID) (*Nurse, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Nurse, error)
}

type FacilityRepository interface {
	Create(ctx context.Context, f *Facility) error
	GetByID(ctx context.Context, id uuid.UUID) (*Facility, error)
}

type FacilityAdminRepository interface {
	Create(ctx context.Context, fa *FacilityAdmin) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*FacilityAdmin, error)
}

type AssignmentRepository interface {
	Create(ctx context.Context, a *NursePatient) error
	// AssignedNurse returns the effective assignment for a patient, the most
	// recently created one, or (nil, nil) when the patient has no nurse.
	AssignedNurse(ctx context.Context, patientID uuid.UUID) (*NursePatient, error)
	IsAssigned(ctx context.Context, nurseID, patientID uuid.UUID) (bool, error)
	ListByNurse(ctx context.Context, nurseID uuid.UUID) ([]*NursePatient, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*NursePatient, error)
}
