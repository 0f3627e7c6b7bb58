package directory

import (
	"time"

	"github.com/google/uuid"
)

// User maps to the users table. PasswordHash never leaves the API.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	Image        *string   `db:"image" json:"image,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// UserSummary is the subset of user fields embedded in related records.
type UserSummary struct {
	ID    uuid.UUID `json:"id,omitempty"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Image *string   `json:"image,omitempty"`
}

// Summary strips a user down to the fields safe to nest in responses.
func (u *User) Summary() *UserSummary {
	return &UserSummary{ID: u.ID, Name: u.Name, Email: u.Email, Image: u.Image}
}

// Patient maps to the patients table, one row per PATIENT user.
type Patient struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	UserID      uuid.UUID  `db:"user_id" json:"user_id"`
	Phone       *string    `db:"phone" json:"phone,omitempty"`
	Address     *string    `db:"address" json:"address,omitempty"`
	DateOfBirth *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// Nurse maps to the nurses table, one row per NURSE user.
type Nurse struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	UserID         uuid.UUID  `db:"user_id" json:"user_id"`
	LicenseNumber  *string    `db:"license_number" json:"license_number,omitempty"`
	Specialization *string    `db:"specialization" json:"specialization,omitempty"`
	IsVerified     bool       `db:"is_verified" json:"is_verified"`
	IsIndependent  bool       `db:"is_independent" json:"is_independent"`
	FacilityID     *uuid.UUID `db:"facility_id" json:"facility_id,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// Facility maps to the facilities table.
type Facility struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Address   *string   `db:"address" json:"address,omitempty"`
	Phone     *string   `db:"phone" json:"phone,omitempty"`
	Email     *string   `db:"email" json:"email,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// FacilityAdmin maps to the facility_admins table.
type FacilityAdmin struct {
	ID         uuid.UUID `db:"id" json:"id"`
	UserID     uuid.UUID `db:"user_id" json:"user_id"`
	FacilityID uuid.UUID `db:"facility_id" json:"facility_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// NursePatient maps to the nurse_patients table, one row per care
// assignment. The (nurse_id, patient_id) pair is unique; when a patient has
// assignments to several nurses, the most recently created one is the
// effective assignment.
type NursePatient struct {
	ID        uuid.UUID `db:"id" json:"id"`
	NurseID   uuid.UUID `db:"nurse_id" json:"nurse_id"`
	PatientID uuid.UUID `db:"patient_id" json:"patient_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// NurseSummary is a nurse with its user summary, as nested in patient
// profiles and alert detail responses.
type NurseSummary struct {
	ID             uuid.UUID    `json:"id"`
	Specialization *string      `json:"specialization,omitempty"`
	User           *UserSummary `json:"user,omitempty"`
}

// PatientSummary is a patient with its user summary.
type PatientSummary struct {
	ID   uuid.UUID    `json:"id"`
	User *UserSummary `json:"user,omitempty"`
}

// PatientProfile is the full patient view returned by the patients endpoint:
// the patient record, its user summary, and the currently assigned nurse.
type PatientProfile struct {
	Patient
	User          *UserSummary  `json:"user"`
	AssignedNurse *NurseSummary `json:"assigned_nurse,omitempty"`
}
