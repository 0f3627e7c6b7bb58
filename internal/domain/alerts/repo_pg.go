package alerts

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/360nurse/api/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const alertCols = `id, patient_id, nurse_id, status, description, location, emergency_service_id, created_at, resolved_at`

func scanAlert(row pgx.Row) (*Alert, error) {
	var a Alert
	err := row.Scan(&a.ID, &a.PatientID, &a.NurseID, &a.Status, &a.Description,
		&a.Location, &a.EmergencyServiceID, &a.CreatedAt, &a.ResolvedAt)
	return &a, err
}

func (r *repoPG) Create(ctx context.Context, a *Alert) error {
	a.ID = uuid.New()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	_, err := db.Conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO emergency_alerts (id, patient_id, nurse_id, status, description, location, emergency_service_id, created_at, resolved_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		a.ID, a.PatientID, a.NurseID, a.Status, a.Description, a.Location,
		a.EmergencyServiceID, a.CreatedAt, a.ResolvedAt)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Alert, error) {
	return scanAlert(db.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+alertCols+` FROM emergency_alerts WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, a *Alert) error {
	_, err := db.Conn(ctx, r.pool).Exec(ctx, `
		UPDATE emergency_alerts SET nurse_id=$2, status=$3, emergency_service_id=$4, resolved_at=$5
		WHERE id = $1`,
		a.ID, a.NurseID, a.Status, a.EmergencyServiceID, a.ResolvedAt)
	return err
}

func (r *repoPG) List(ctx context.Context, f Filter) ([]*Alert, error) {
	query := `SELECT ` + alertCols + ` FROM emergency_alerts WHERE 1=1`
	var args []interface{}
	idx := 1

	if f.PatientID != uuid.Nil {
		query += fmt.Sprintf(` AND patient_id = $%d`, idx)
		args = append(args, f.PatientID)
		idx++
	}
	if f.NurseID != uuid.Nil {
		query += fmt.Sprintf(` AND nurse_id = $%d`, idx)
		args = append(args, f.NurseID)
		idx++
	}
	if f.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, idx)
		args = append(args, f.Status)
		idx++
	}
	query += ` ORDER BY created_at DESC`

	rows, err := db.Conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Alert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

func (r *repoPG) AdoptUnassigned(ctx context.Context, patientID, nurseID uuid.UUID) error {
	_, err := db.Conn(ctx, r.pool).Exec(ctx, `
		UPDATE emergency_alerts SET nurse_id = $2 WHERE patient_id = $1 AND nurse_id IS NULL`,
		patientID, nurseID)
	return err
}
