package emergency

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/360nurse/api/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const serviceCols = `id, name, type, address, phone, email, latitude, longitude,
	service_radius, operating_hours, facility_id, created_at, updated_at`

func scanService(row pgx.Row) (*EmergencyService, error) {
	var s EmergencyService
	err := row.Scan(&s.ID, &s.Name, &s.Type, &s.Address, &s.Phone, &s.Email,
		&s.Latitude, &s.Longitude, &s.ServiceRadius, &s.OperatingHours,
		&s.FacilityID, &s.CreatedAt, &s.UpdatedAt)
	return &s, err
}

func (r *repoPG) Create(ctx context.Context, s *EmergencyService) error {
	s.ID = uuid.New()
	_, err := db.Conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO emergency_services (id, name, type, address, phone, email,
			latitude, longitude, service_radius, operating_hours, facility_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		s.ID, s.Name, s.Type, s.Address, s.Phone, s.Email,
		s.Latitude, s.Longitude, s.ServiceRadius, s.OperatingHours, s.FacilityID)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*EmergencyService, error) {
	return scanService(db.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+serviceCols+` FROM emergency_services WHERE id = $1`, id))
}

func (r *repoPG) List(ctx context.Context, serviceType string) ([]*EmergencyService, error) {
	query := `SELECT ` + serviceCols + ` FROM emergency_services`
	var args []interface{}
	if serviceType != "" {
		query += ` WHERE type = $1`
		args = append(args, serviceType)
	}
	query += ` ORDER BY name ASC`

	rows, err := db.Conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*EmergencyService
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}
