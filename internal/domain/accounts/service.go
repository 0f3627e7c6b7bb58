// Package accounts handles registration and login. Registration creates the
// role-specific record alongside the user and seeds demo data so a fresh
// account has something to look at.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"

	"github.com/360nurse/api/internal/domain/alerts"
	"github.com/360nurse/api/internal/domain/directory"
	"github.com/360nurse/api/internal/domain/emergency"
	"github.com/360nurse/api/internal/domain/vitals"
	"github.com/360nurse/api/internal/platform/auth"
	"github.com/360nurse/api/internal/platform/db"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalid            = errors.New("invalid request")
)

const defaultSpecialization = "General Care"

type Service struct {
	users          directory.UserRepository
	patients       directory.PatientRepository
	nurses         directory.NurseRepository
	facilities     directory.FacilityRepository
	facilityAdmins directory.FacilityAdminRepository
	assignments    directory.AssignmentRepository
	vitals         vitals.Repository
	alerts         alerts.Repository
	services       emergency.Repository
	session        auth.SessionConfig
	runTx          db.TxRunner
}

func NewService(users directory.UserRepository, patients directory.PatientRepository,
	nurses directory.NurseRepository, facilities directory.FacilityRepository,
	facilityAdmins directory.FacilityAdminRepository, assignments directory.AssignmentRepository,
	vitalRepo vitals.Repository, alertRepo alerts.Repository, services emergency.Repository,
	session auth.SessionConfig, runTx db.TxRunner) *Service {
	return &Service{
		users:          users,
		patients:       patients,
		nurses:         nurses,
		facilities:     facilities,
		facilityAdmins: facilityAdmins,
		assignments:    assignments,
		vitals:         vitalRepo,
		alerts:         alertRepo,
		services:       services,
		session:        session,
		runTx:          runTx,
	}
}

// RegisterRequest is the signup payload.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (r RegisterRequest) validate() error {
	if len(r.Name) < 2 {
		return fmt.Errorf("%w: name must be at least 2 characters", ErrInvalid)
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return fmt.Errorf("%w: invalid email address", ErrInvalid)
	}
	if len(r.Password) < 6 {
		return fmt.Errorf("%w: password must be at least 6 characters", ErrInvalid)
	}
	if !auth.ValidRole(r.Role) {
		return fmt.Errorf("%w: unknown role %q", ErrInvalid, r.Role)
	}
	return nil
}

// Register creates a user plus its role record in one transaction. New
// patients get a day of simulated vitals and a few demo alerts; new nurses
// are assigned the most recently registered patient and adopt that
// patient's unassigned alerts.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*directory.User, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	existing, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: user with this email already exists", ErrInvalid)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &directory.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
	}
	err = s.runTx(ctx, func(ctx context.Context) error {
		if err := s.users.Create(ctx, user); err != nil {
			return err
		}
		switch req.Role {
		case auth.RolePatient:
			return s.seedPatient(ctx, user)
		case auth.RoleNurse:
			return s.seedNurse(ctx, user)
		case auth.RoleFacilityAdmin:
			return s.seedFacilityAdmin(ctx, user)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) seedPatient(ctx context.Context, user *directory.User) error {
	patient := &directory.Patient{UserID: user.ID}
	if err := s.patients.Create(ctx, patient); err != nil {
		return err
	}

	now := time.Now()
	for i := 0; i < 10; i++ {
		reading := vitals.Generate(patient.ID)
		reading.RecordedAt = now.Add(-time.Duration(i) * time.Hour)
		if err := s.vitals.Create(ctx, reading); err != nil {
			return err
		}
	}

	resolvedAt := now.Add(-47 * time.Hour)
	demo := []*alerts.Alert{
		{
			Status:      alerts.StatusAcknowledged,
			Description: "High Heart Rate detected: 115 bpm",
			CreatedAt:   now.Add(-24 * time.Hour),
		},
		{
			Status:      alerts.StatusResolved,
			Description: "Low Oxygen Level: 93%",
			CreatedAt:   now.Add(-48 * time.Hour),
			ResolvedAt:  &resolvedAt,
		},
		{
			Status:      alerts.StatusPending,
			Description: "Elevated Temperature: 38.2°C",
			CreatedAt:   now.Add(-2 * time.Hour),
		},
	}
	for _, a := range demo {
		a.PatientID = patient.ID
		a.Location = "Home"
		if err := s.alerts.Create(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) seedNurse(ctx context.Context, user *directory.User) error {
	spec := defaultSpecialization
	nurse := &directory.Nurse{
		UserID:         user.ID,
		IsVerified:     true,
		IsIndependent:  true,
		Specialization: &spec,
	}
	if err := s.nurses.Create(ctx, nurse); err != nil {
		return err
	}

	patient, err := s.patients.MostRecent(ctx)
	if err != nil {
		return err
	}
	if patient == nil {
		return nil
	}
	if err := s.assignments.Create(ctx, &directory.NursePatient{
		NurseID:   nurse.ID,
		PatientID: patient.ID,
	}); err != nil {
		return err
	}
	return s.alerts.AdoptUnassigned(ctx, patient.ID, nurse.ID)
}

func (s *Service) seedFacilityAdmin(ctx context.Context, user *directory.User) error {
	address := "123 Healthcare Ave, Medical District"
	phone := "+1 (555) 123-4567"
	facility := &directory.Facility{
		Name:    user.Name + "'s Medical Center",
		Address: &address,
		Phone:   &phone,
		Email:   &user.Email,
	}
	if err := s.facilities.Create(ctx, facility); err != nil {
		return err
	}
	if err := s.facilityAdmins.Create(ctx, &directory.FacilityAdmin{
		UserID:     user.ID,
		FacilityID: facility.ID,
	}); err != nil {
		return err
	}

	svcAddress := "789 Emergency Blvd, City"
	svcPhone := "+1 (555) 911-1234"
	svcEmail := "emergency@citygeneral.com"
	radius := 10.0
	hours := "24/7"
	return s.services.Create(ctx, &emergency.EmergencyService{
		Name:           "City General Hospital",
		Type:           emergency.TypeHospital,
		Address:        &svcAddress,
		Phone:          &svcPhone,
		Email:          &svcEmail,
		ServiceRadius:  &radius,
		OperatingHours: &hours,
		FacilityID:     &facility.ID,
	})
}

// LoginRequest is the credentials payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the session token and the signed-in user.
type LoginResponse struct {
	Token string                 `json:"token"`
	User  *directory.UserSummary `json:"user"`
	Role  string                 `json:"role"`
}

// Login checks the credentials and issues a session token.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}

	token, err := auth.IssueToken(s.session, user.ID.String(), user.Role, user.Name, user.Email)
	if err != nil {
		return nil, err
	}
	return &LoginResponse{Token: token, User: user.Summary(), Role: user.Role}, nil
}

// UserByID returns a user by id, for session bootstrapping.
func (s *Service) UserByID(ctx context.Context, id uuid.UUID) (*directory.User, error) {
	return s.users.GetByID(ctx, id)
}
