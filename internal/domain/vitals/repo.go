package vitals

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, v *VitalReading) error
	// Latest returns up to limit readings for the patient, newest first.
	Latest(ctx context.Context, patientID uuid.UUID, limit int) ([]*VitalReading, error)
	// History returns a page of readings, newest first, plus the total count.
	History(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*VitalReading, int, error)
}
