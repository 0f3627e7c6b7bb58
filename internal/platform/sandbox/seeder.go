// Package sandbox seeds demo data for development and sandbox environments:
// a demo facility with one user per role, a day of simulated vitals, an
// emergency service, an acknowledged alert, and the subscription plans.
// Seeding is idempotent; existing records are left alone.
package sandbox

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/360nurse/api/internal/domain/alerts"
	"github.com/360nurse/api/internal/domain/billing"
	"github.com/360nurse/api/internal/domain/directory"
	"github.com/360nurse/api/internal/domain/emergency"
	"github.com/360nurse/api/internal/domain/vitals"
	"github.com/360nurse/api/internal/platform/auth"
	"github.com/360nurse/api/internal/platform/db"
)

// SeedResult summarizes what a seed run created.
type SeedResult struct {
	Users             int `json:"users"`
	Plans             int `json:"plans"`
	VitalReadings     int `json:"vitalReadings"`
	Alerts            int `json:"alerts"`
	EmergencyServices int `json:"emergencyServices"`
}

type Seeder struct {
	users          directory.UserRepository
	patients       directory.PatientRepository
	nurses         directory.NurseRepository
	facilities     directory.FacilityRepository
	facilityAdmins directory.FacilityAdminRepository
	assignments    directory.AssignmentRepository
	vitals         vitals.Repository
	alerts         alerts.Repository
	services       emergency.Repository
	plans          billing.PlanRepository
	runTx          db.TxRunner
	log            zerolog.Logger
}

func NewSeeder(users directory.UserRepository, patients directory.PatientRepository,
	nurses directory.NurseRepository, facilities directory.FacilityRepository,
	facilityAdmins directory.FacilityAdminRepository, assignments directory.AssignmentRepository,
	vitalRepo vitals.Repository, alertRepo alerts.Repository, services emergency.Repository,
	plans billing.PlanRepository, runTx db.TxRunner, log zerolog.Logger) *Seeder {
	return &Seeder{
		users:          users,
		patients:       patients,
		nurses:         nurses,
		facilities:     facilities,
		facilityAdmins: facilityAdmins,
		assignments:    assignments,
		vitals:         vitalRepo,
		alerts:         alertRepo,
		services:       services,
		plans:          plans,
		runTx:          runTx,
		log:            log,
	}
}

// Seed populates the demo dataset inside one transaction.
func (s *Seeder) Seed(ctx context.Context) (*SeedResult, error) {
	result := &SeedResult{}
	err := s.runTx(ctx, func(ctx context.Context) error {
		if err := s.seedPlans(ctx, result); err != nil {
			return err
		}
		return s.seedDemoFacility(ctx, result)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Int("users", result.Users).
		Int("plans", result.Plans).
		Int("vital_readings", result.VitalReadings).
		Msg("sandbox seed complete")
	return result, nil
}

func (s *Seeder) seedPlans(ctx context.Context, result *SeedResult) error {
	existing, err := s.plans.ListActive(ctx)
	if err != nil {
		return err
	}
	have := map[string]bool{}
	for _, p := range existing {
		have[p.Name] = true
	}

	want := []*billing.SubscriptionPlan{
		{
			Name:        "Basic Plan",
			Description: "Essential health monitoring for individuals",
			Price:       2500,
			Currency:    "NGN",
			Interval:    billing.IntervalMonthly,
			Features:    []string{"health_alerts", "vital_signs_monitoring", "emergency_alerts"},
			IsActive:    true,
		},
		{
			Name:        "Premium Plan",
			Description: "Complete healthcare solution with professional support",
			Price:       5000,
			Currency:    "NGN",
			Interval:    billing.IntervalMonthly,
			Features: []string{"health_alerts", "vital_signs_monitoring", "emergency_alerts",
				"nurse_consultations", "priority_support"},
			IsActive: true,
		},
	}
	for _, p := range want {
		if have[p.Name] {
			continue
		}
		if err := s.plans.Create(ctx, p); err != nil {
			return err
		}
		result.Plans++
	}
	return nil
}

func (s *Seeder) seedDemoFacility(ctx context.Context, result *SeedResult) error {
	admin, err := s.users.GetByEmail(ctx, "admin@360nurse.com")
	if err != nil {
		return err
	}
	if admin != nil {
		s.log.Debug().Msg("demo facility already seeded")
		return nil
	}

	address := "123 Healthcare Ave, Medical District"
	phone := "+1 (555) 123-4567"
	email := "info@demomedical.com"
	facility := &directory.Facility{
		Name:    "Demo Medical Center",
		Address: &address,
		Phone:   &phone,
		Email:   &email,
	}
	if err := s.facilities.Create(ctx, facility); err != nil {
		return err
	}

	if _, err := s.seedUser(ctx, result, "System Administrator", "admin@360nurse.com",
		"admin123", auth.RoleAdmin); err != nil {
		return err
	}

	patientUser, err := s.seedUser(ctx, result, "John Doe", "patient@example.com",
		"patient123", auth.RolePatient)
	if err != nil {
		return err
	}
	var patient *directory.Patient
	if patientUser != nil {
		patientAddress := "456 Patient St, City"
		patientPhone := "+1 (555) 987-6543"
		patient = &directory.Patient{
			UserID:  patientUser.ID,
			Address: &patientAddress,
			Phone:   &patientPhone,
		}
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
			result.VitalReadings++
		}
	}

	nurseUser, err := s.seedUser(ctx, result, "Sarah Johnson", "nurse@example.com",
		"nurse123", auth.RoleNurse)
	if err != nil {
		return err
	}
	var nurse *directory.Nurse
	if nurseUser != nil {
		license := "RN12345"
		specialization := "Cardiology"
		nurse = &directory.Nurse{
			UserID:         nurseUser.ID,
			LicenseNumber:  &license,
			Specialization: &specialization,
			IsVerified:     true,
			FacilityID:     &facility.ID,
		}
		if err := s.nurses.Create(ctx, nurse); err != nil {
			return err
		}
	}

	if nurse != nil && patient != nil {
		if err := s.assignments.Create(ctx, &directory.NursePatient{
			NurseID:   nurse.ID,
			PatientID: patient.ID,
		}); err != nil {
			return err
		}
	}

	adminUser, err := s.seedUser(ctx, result, "Michael Chen", "facilityadmin@example.com",
		"facilityadmin123", auth.RoleFacilityAdmin)
	if err != nil {
		return err
	}
	if adminUser != nil {
		if err := s.facilityAdmins.Create(ctx, &directory.FacilityAdmin{
			UserID:     adminUser.ID,
			FacilityID: facility.ID,
		}); err != nil {
			return err
		}
	}

	svcAddress := "789 Emergency Blvd, City"
	svcPhone := "+1 (555) 911-1234"
	svcEmail := "emergency@citygeneral.com"
	lat, lng := 37.7749, -122.4194
	radius := 10.0
	hours := "24/7"
	service := &emergency.EmergencyService{
		Name:           "City General Hospital",
		Type:           emergency.TypeHospital,
		Address:        &svcAddress,
		Phone:          &svcPhone,
		Email:          &svcEmail,
		Latitude:       &lat,
		Longitude:      &lng,
		ServiceRadius:  &radius,
		OperatingHours: &hours,
	}
	if err := s.services.Create(ctx, service); err != nil {
		return err
	}
	result.EmergencyServices++

	if nurse != nil && patient != nil {
		if err := s.alerts.Create(ctx, &alerts.Alert{
			PatientID:          patient.ID,
			NurseID:            &nurse.ID,
			Status:             alerts.StatusAcknowledged,
			Description:        "High heart rate detected",
			Location:           "Home",
			EmergencyServiceID: &service.ID,
		}); err != nil {
			return err
		}
		result.Alerts++
	}
	return nil
}

// seedUser creates a user unless the email is taken. It returns nil without
// an error when the user already exists.
func (s *Seeder) seedUser(ctx context.Context, result *SeedResult, name, email, password, role string) (*directory.User, error) {
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		s.log.Debug().Str("email", email).Msg("seed user already exists")
		return nil, nil
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}
	user := &directory.User{Name: name, Email: email, PasswordHash: hash, Role: role}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	result.Users++
	return user, nil
}
