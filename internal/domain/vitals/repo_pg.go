package vitals

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/360nurse/api/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const vitalCols = `id, patient_id, blood_pressure, heart_rate, temperature, oxygen_level, recorded_at, is_simulated`

func (r *repoPG) Create(ctx context.Context, v *VitalReading) error {
	v.ID = uuid.New()
	_, err := db.Conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO vital_records (id, patient_id, blood_pressure, heart_rate, temperature, oxygen_level, recorded_at, is_simulated)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		v.ID, v.PatientID, v.BloodPressure, v.HeartRate, v.Temperature, v.OxygenLevel, v.RecordedAt, v.IsSimulated)
	return err
}

func (r *repoPG) Latest(ctx context.Context, patientID uuid.UUID, limit int) ([]*VitalReading, error) {
	rows, err := db.Conn(ctx, r.pool).Query(ctx, `
		SELECT `+vitalCols+` FROM vital_records
		WHERE patient_id = $1 ORDER BY recorded_at DESC LIMIT $2`, patientID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*VitalReading
	for rows.Next() {
		var v VitalReading
		if err := rows.Scan(&v.ID, &v.PatientID, &v.BloodPressure, &v.HeartRate,
			&v.Temperature, &v.OxygenLevel, &v.RecordedAt, &v.IsSimulated); err != nil {
			return nil, err
		}
		items = append(items, &v)
	}
	return items, rows.Err()
}

func (r *repoPG) History(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*VitalReading, int, error) {
	var total int
	if err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		SELECT COUNT(*) FROM vital_records WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := db.Conn(ctx, r.pool).Query(ctx, `
		SELECT `+vitalCols+` FROM vital_records
		WHERE patient_id = $1 ORDER BY recorded_at DESC LIMIT $2 OFFSET $3`, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*VitalReading
	for rows.Next() {
		var v VitalReading
		if err := rows.Scan(&v.ID, &v.PatientID, &v.BloodPressure, &v.HeartRate,
			&v.Temperature, &v.OxygenLevel, &v.RecordedAt, &v.IsSimulated); err != nil {
			return nil, 0, err
		}
		items = append(items, &v)
	}
	return items, total, rows.Err()
}
