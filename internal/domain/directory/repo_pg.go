package directory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/360nurse/api/internal/platform/db"
)

// =========== User Repository ===========

type userRepoPG struct{ pool *pgxpool.Pool }

func NewUserRepoPG(pool *pgxpool.Pool) UserRepository { return &userRepoPG{pool: pool} }

const userCols = `id, name, email, password_hash, role, image, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Image, &u.CreatedAt, &u.UpdatedAt)
	return &u, err
}

func (r *userRepoPG) Create(ctx context.Context, u *User) error {
	u.ID = uuid.New()
	_, err := db.Conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO users (id, name, email, password_hash, role, image)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Role, u.Image)
	return err
}

func (r *userRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return scanUser(db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE id = $1`, id))
}

func (r *userRepoPG) GetByEmail(ctx context.Context, email string) (*User, error) {
	u, err := scanUser(db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE email = $1`, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *userRepoPG) Update(ctx context.Context, u *User) error {
	_, err := db.Conn(ctx, r.pool).Exec(ctx, `
		UPDATE users SET name=$2, email=$3, image=$4, updated_at=NOW() WHERE id = $1`,
		u.ID, u.Name, u.Email, u.Image)
	return err
}

// =========== Patient Repository ===========

type patientRepoPG struct{ pool *pgxpool.Pool }

func NewPatientRepoPG(pool *pgxpool.Pool) PatientRepository { return &patientRepoPG{pool: pool} }

const patientCols = `id, user_id, phone, address, date_of_birth, created_at, updated_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.UserID, &p.Phone, &p.Address, &p.DateOfBirth, &p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *patientRepoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	_, err := db.Conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO patients (id, user_id, phone, address, date_of_birth)
		VALUES ($1,$2,$3,$4,$5)`,
		p.ID, p.UserID, p.Phone, p.Address, p.DateOfBirth)
	return err
}

func (r *patientRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return scanPatient(db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT `+patientCols+` FROM patients WHERE id = $1`, id))
}

func (r *patientRepoPG) GetByUserID(ctx context.Context, userID uuid.UUID) (*Patient, error) {
	return scanPatient(db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT `+patientCols+` FROM patients WHERE user_id = $1`, userID))
}

func (r *patientRepoPG) Update(ctx context.Context, p *Patient) error {
	_, err := db.Conn(ctx, r.pool).Exec(ctx, `
		UPDATE patients SET phone=$2, address=$3, date_of_birth=$4, updated_at=NOW() WHERE id = $1`,
		p.ID, p.Phone, p.Address, p.DateOfBirth)
	return err
}

func (r *patientRepoPG) MostRecent(ctx context.Context) (*Patient, error) {
	p, err := scanPatient(db.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patients ORDER BY created_at DESC LIMIT 1`))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// =========== Nurse Repository ===========

type nurseRepoPG struct{ pool *pgxpool.Pool }

func NewNurseRepoPG(pool *pgxpool.Pool) NurseRepository { return &nurseRepoPG{pool: pool} }

const nurseCols = `id, user_id, license_number, specialization, is_verified, is_independent, facility_id, created_at, updated_at`

func scanNurse(row pgx.Row) (*Nurse, error) {
	var n Nurse
	err := row.Scan(&n.ID, &n.UserID, &n.LicenseNumber, &n.Specialization,
		&n.IsVerified, &n.IsIndependent, &n.FacilityID, &n.CreatedAt, &n.UpdatedAt)
	return &n, err
}

func (r *nurseRepoPG) Create(ctx context.Context, n *Nurse) error {
	n.ID = uuid.New()
	_, err := db.Conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO nurses (id, user_id, license_number, specialization, is_verified, is_independent, facility_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		n.ID, n.UserID, n.LicenseNumber, n.Specialization, n.IsVerified, n.IsIndependent, n.FacilityID)
	return err
}

func (r *nurseRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Nurse, error) {
	return scanNurse(db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT `+nurseCols+` FROM nurses WHERE id = $1`, id))
}

func (r *nurseRepoPG) GetByUserID(ctx context.Context, userID uuid.UUID) (*Nurse, error) {
	return scanNurse(db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT `+nurseCols+` FROM nurses WHERE user_id = $1`, userID))
}

// =========== Facility Repository ===========

type facilityRepoPG struct{ pool *pgxpool.Pool }

func NewFacilityRepoPG(pool *pgxpool.Pool) FacilityRepository { return &facilityRepoPG{pool: pool} }

func (r *facilityRepoPG) Create(ctx context.Context, f *Facility) error {
	f.ID = uuid.New()
	_, err := db.Conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO facilities (id, name, address, phone, email)
		VALUES ($1,$2,$3,$4,$5)`,
		f.ID, f.Name, f.Address, f.Phone, f.Email)
	return err
}

func (r *facilityRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Facility, error) {
	var f Facility
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		SELECT id, name, address, phone, email, created_at, updated_at
		FROM facilities WHERE id = $1`, id).
		Scan(&f.ID, &f.Name, &f.Address, &f.Phone, &f.Email, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// =========== Facility Admin Repository ===========

type facilityAdminRepoPG struct{ pool *pgxpool.Pool }

func NewFacilityAdminRepoPG(pool *pgxpool.Pool) FacilityAdminRepository {
	return &facilityAdminRepoPG{pool: pool}
}

func (r *facilityAdminRepoPG) Create(ctx context.Context, fa *FacilityAdmin) error {
	fa.ID = uuid.New()
	_, err := db.Conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO facility_admins (id, user_id, facility_id) VALUES ($1,$2,$3)`,
		fa.ID, fa.UserID, fa.FacilityID)
	return err
}

func (r *facilityAdminRepoPG) GetByUserID(ctx context.Context, userID uuid.UUID) (*FacilityAdmin, error) {
	var fa FacilityAdmin
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		SELECT id, user_id, facility_id, created_at FROM facility_admins WHERE user_id = $1`, userID).
		Scan(&fa.ID, &fa.UserID, &fa.FacilityID, &fa.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &fa, nil
}

// =========== Assignment Repository ===========

type assignmentRepoPG struct{ pool *pgxpool.Pool }

func NewAssignmentRepoPG(pool *pgxpool.Pool) AssignmentRepository {
	return &assignmentRepoPG{pool: pool}
}

func (r *assignmentRepoPG) Create(ctx context.Context, a *NursePatient) error {
	a.ID = uuid.New()
	_, err := db.Conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO nurse_patients (id, nurse_id, patient_id) VALUES ($1,$2,$3)`,
		a.ID, a.NurseID, a.PatientID)
	return err
}

func (r *assignmentRepoPG) AssignedNurse(ctx context.Context, patientID uuid.UUID) (*NursePatient, error) {
	var a NursePatient
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		SELECT id, nurse_id, patient_id, created_at FROM nurse_patients
		WHERE patient_id = $1 ORDER BY created_at DESC LIMIT 1`, patientID).
		Scan(&a.ID, &a.NurseID, &a.PatientID, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *assignmentRepoPG) IsAssigned(ctx context.Context, nurseID, patientID uuid.UUID) (bool, error) {
	var exists bool
	err := db.Conn(ctx, r.pool).QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM nurse_patients WHERE nurse_id = $1 AND patient_id = $2)`,
		nurseID, patientID).Scan(&exists)
	return exists, err
}

func (r *assignmentRepoPG) ListByNurse(ctx context.Context, nurseID uuid.UUID) ([]*NursePatient, error) {
	return r.list(ctx, `WHERE nurse_id = $1`, nurseID)
}

func (r *assignmentRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*NursePatient, error) {
	return r.list(ctx, `WHERE patient_id = $1`, patientID)
}

func (r *assignmentRepoPG) list(ctx context.Context, where string, arg any) ([]*NursePatient, error) {
	rows, err := db.Conn(ctx, r.pool).Query(ctx, `
		SELECT id, nurse_id, patient_id, created_at FROM nurse_patients
		`+where+` ORDER BY created_at DESC`, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*NursePatient
	for rows.Next() {
		var a NursePatient
		if err := rows.Scan(&a.ID, &a.NurseID, &a.PatientID, &a.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &a)
	}
	return items, rows.Err()
}
