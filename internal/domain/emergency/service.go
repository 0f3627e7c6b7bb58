package emergency

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"
)

// ErrInvalid marks errors caused by a malformed request.
var ErrInvalid = errors.New("invalid request")

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns emergency services, optionally filtered by type, ordered by
// name.
func (s *Service) List(ctx context.Context, serviceType string) ([]*EmergencyService, error) {
	if serviceType != "" && !ValidType(serviceType) {
		return nil, fmt.Errorf("%w: unknown service type %q", ErrInvalid, serviceType)
	}
	return s.repo.List(ctx, serviceType)
}

// Nearest returns services with known coordinates ranked by planar distance
// from the given position, closest first. Services without coordinates are
// dropped.
func (s *Service) Nearest(ctx context.Context, serviceType string, lat, lng float64) ([]*RankedService, error) {
	services, err := s.List(ctx, serviceType)
	if err != nil {
		return nil, err
	}
	var ranked []*RankedService
	for _, svc := range services {
		if svc.Latitude == nil || svc.Longitude == nil {
			continue
		}
		d := math.Sqrt(math.Pow(*svc.Latitude-lat, 2) + math.Pow(*svc.Longitude-lng, 2))
		ranked = append(ranked, &RankedService{EmergencyService: svc, Distance: d})
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].Distance < ranked[j].Distance })
	return ranked, nil
}

// Create registers a new emergency service.
func (s *Service) Create(ctx context.Context, svc *EmergencyService) error {
	if svc.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if !ValidType(svc.Type) {
		return fmt.Errorf("%w: valid type is required", ErrInvalid)
	}
	return s.repo.Create(ctx, svc)
}

// GetByID returns one emergency service.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*EmergencyService, error) {
	return s.repo.GetByID(ctx, id)
}
