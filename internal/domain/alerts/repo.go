package alerts

import (
	"context"

	"github.com/google/uuid"
)

// Filter narrows alert listings. Zero values mean no constraint.
type Filter struct {
	PatientID uuid.UUID
	NurseID   uuid.UUID
	Status    string
}

type Repository interface {
	Create(ctx context.Context, a *Alert) error
	GetByID(ctx context.Context, id uuid.UUID) (*Alert, error)
	Update(ctx context.Context, a *Alert) error
	// List returns alerts matching the filter, newest first.
	List(ctx context.Context, f Filter) ([]*Alert, error)
	// AdoptUnassigned attaches all unassigned alerts of a patient to a nurse.
	AdoptUnassigned(ctx context.Context, patientID, nurseID uuid.UUID) error
}
