package emergency

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, s *EmergencyService) error
	GetByID(ctx context.Context, id uuid.UUID) (*EmergencyService, error)
	// List returns services ordered by name, optionally filtered by type.
	List(ctx context.Context, serviceType string) ([]*EmergencyService, error)
}
