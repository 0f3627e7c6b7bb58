package alerts

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/360nurse/api/internal/domain/directory"
	"github.com/360nurse/api/internal/domain/emergency"
	"github.com/360nurse/api/internal/platform/auth"
)

// -- Mocks --

type mockAlertRepo struct {
	alerts map[uuid.UUID]*Alert
}

func newMockAlertRepo() *mockAlertRepo {
	return &mockAlertRepo{alerts: make(map[uuid.UUID]*Alert)}
}

func (m *mockAlertRepo) Create(_ context.Context, a *Alert) error {
	a.ID = uuid.New()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	m.alerts[a.ID] = a
	return nil
}

func (m *mockAlertRepo) GetByID(_ context.Context, id uuid.UUID) (*Alert, error) {
	a, ok := m.alerts[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return a, nil
}

func (m *mockAlertRepo) Update(_ context.Context, a *Alert) error {
	m.alerts[a.ID] = a
	return nil
}

func (m *mockAlertRepo) List(_ context.Context, f Filter) ([]*Alert, error) {
	var result []*Alert
	for _, a := range m.alerts {
		if f.PatientID != uuid.Nil && a.PatientID != f.PatientID {
			continue
		}
		if f.NurseID != uuid.Nil && (a.NurseID == nil || *a.NurseID != f.NurseID) {
			continue
		}
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		result = append(result, a)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (m *mockAlertRepo) AdoptUnassigned(_ context.Context, patientID, nurseID uuid.UUID) error {
	for _, a := range m.alerts {
		if a.PatientID == patientID && a.NurseID == nil {
			nid := nurseID
			a.NurseID = &nid
		}
	}
	return nil
}

type mockUsers struct {
	users map[uuid.UUID]*directory.User
}

func (m *mockUsers) Create(_ context.Context, u *directory.User) error {
	u.ID = uuid.New()
	m.users[u.ID] = u
	return nil
}

func (m *mockUsers) GetByID(_ context.Context, id uuid.UUID) (*directory.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return u, nil
}

func (m *mockUsers) GetByEmail(_ context.Context, email string) (*directory.User, error) {
	return nil, nil
}

func (m *mockUsers) Update(_ context.Context, u *directory.User) error { return nil }

type mockPatients struct {
	byUser map[uuid.UUID]*directory.Patient
}

func (m *mockPatients) Create(_ context.Context, p *directory.Patient) error { return nil }

func (m *mockPatients) GetByID(_ context.Context, id uuid.UUID) (*directory.Patient, error) {
	for _, p := range m.byUser {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, fmt.Errorf("not found")
}

func (m *mockPatients) GetByUserID(_ context.Context, userID uuid.UUID) (*directory.Patient, error) {
	p, ok := m.byUser[userID]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return p, nil
}

func (m *mockPatients) Update(_ context.Context, p *directory.Patient) error { return nil }

func (m *mockPatients) MostRecent(_ context.Context) (*directory.Patient, error) { return nil, nil }

type mockNurses struct {
	byUser map[uuid.UUID]*directory.Nurse
}

func (m *mockNurses) Create(_ context.Context, n *directory.Nurse) error { return nil }

func (m *mockNurses) GetByID(_ context.Context, id uuid.UUID) (*directory.Nurse, error) {
	for _, n := range m.byUser {
		if n.ID == id {
			return n, nil
		}
	}
	return nil, fmt.Errorf("not found")
}

func (m *mockNurses) GetByUserID(_ context.Context, userID uuid.UUID) (*directory.Nurse, error) {
	n, ok := m.byUser[userID]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return n, nil
}

type mockAssignments struct {
	assignments []*directory.NursePatient
}

func (m *mockAssignments) Create(_ context.Context, a *directory.NursePatient) error {
	a.ID = uuid.New()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	m.assignments = append(m.assignments, a)
	return nil
}

func (m *mockAssignments) AssignedNurse(_ context.Context, patientID uuid.UUID) (*directory.NursePatient, error) {
	var latest *directory.NursePatient
	for _, a := range m.assignments {
		if a.PatientID != patientID {
			continue
		}
		if latest == nil || a.CreatedAt.After(latest.CreatedAt) {
			latest = a
		}
	}
	return latest, nil
}

func (m *mockAssignments) IsAssigned(_ context.Context, nurseID, patientID uuid.UUID) (bool, error) {
	for _, a := range m.assignments {
		if a.NurseID == nurseID && a.PatientID == patientID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockAssignments) ListByNurse(_ context.Context, nurseID uuid.UUID) ([]*directory.NursePatient, error) {
	return nil, nil
}

func (m *mockAssignments) ListByPatient(_ context.Context, patientID uuid.UUID) ([]*directory.NursePatient, error) {
	var out []*directory.NursePatient
	for _, a := range m.assignments {
		if a.PatientID == patientID {
			out = append(out, a)
		}
	}
	return out, nil
}

type mockServices struct {
	services map[uuid.UUID]*emergency.EmergencyService
}

func (m *mockServices) Create(_ context.Context, s *emergency.EmergencyService) error {
	s.ID = uuid.New()
	m.services[s.ID] = s
	return nil
}

func (m *mockServices) GetByID(_ context.Context, id uuid.UUID) (*emergency.EmergencyService, error) {
	s, ok := m.services[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return s, nil
}

func (m *mockServices) List(_ context.Context, serviceType string) ([]*emergency.EmergencyService, error) {
	return nil, nil
}

// -- Fixtures --

type alertsEnv struct {
	svc         *Service
	repo        *mockAlertRepo
	users       *mockUsers
	patients    *mockPatients
	nurses      *mockNurses
	assignments *mockAssignments
	services    *mockServices
}

func newAlertsEnv() *alertsEnv {
	env := &alertsEnv{
		repo:        newMockAlertRepo(),
		users:       &mockUsers{users: make(map[uuid.UUID]*directory.User)},
		patients:    &mockPatients{byUser: make(map[uuid.UUID]*directory.Patient)},
		nurses:      &mockNurses{byUser: make(map[uuid.UUID]*directory.Nurse)},
		assignments: &mockAssignments{},
		services:    &mockServices{services: make(map[uuid.UUID]*emergency.EmergencyService)},
	}
	env.svc = NewService(env.repo, env.patients, env.nurses, env.users, env.assignments, env.services)
	return env
}

func (env *alertsEnv) addPatient(name string) (userID uuid.UUID, patient *directory.Patient) {
	u := &directory.User{Name: name, Email: name + "@example.com", Role: auth.RolePatient}
	env.users.Create(context.Background(), u)
	patient = &directory.Patient{ID: uuid.New(), UserID: u.ID}
	env.patients.byUser[u.ID] = patient
	return u.ID, patient
}

func (env *alertsEnv) addNurse(name string) (userID uuid.UUID, nurse *directory.Nurse) {
	u := &directory.User{Name: name, Email: name + "@example.com", Role: auth.RoleNurse}
	env.users.Create(context.Background(), u)
	nurse = &directory.Nurse{ID: uuid.New(), UserID: u.ID}
	env.nurses.byUser[u.ID] = nurse
	return u.ID, nurse
}

func (env *alertsEnv) addAlert(patientID uuid.UUID, nurseID *uuid.UUID, status string) *Alert {
	a := &Alert{PatientID: patientID, NurseID: nurseID, Status: status,
		Description: DefaultDescription, Location: DefaultLocation}
	env.repo.Create(context.Background(), a)
	return a
}

// -- Create --

func TestCreate_Defaults(t *testing.T) {
	env := newAlertsEnv()
	userID, patient := env.addPatient("pat")

	alert, err := env.svc.Create(context.Background(), userID.String(), auth.RolePatient,
		CreateRequest{PatientID: patient.ID.String()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if alert.Status != StatusPending {
		t.Errorf("expected PENDING, got %s", alert.Status)
	}
	if alert.Description != DefaultDescription {
		t.Errorf("expected default description, got %q", alert.Description)
	}
	if alert.Location != DefaultLocation {
		t.Errorf("expected default location, got %q", alert.Location)
	}
	if alert.NurseID != nil {
		t.Error("no nurse assigned, nurse id must be nil")
	}
}

func TestCreate_RoutesToAssignedNurse(t *testing.T) {
	env := newAlertsEnv()
	userID, patient := env.addPatient("pat")
	_, n1 := env.addNurse("first")
	_, n2 := env.addNurse("second")

	now := time.Now()
	env.assignments.assignments = append(env.assignments.assignments,
		&directory.NursePatient{ID: uuid.New(), NurseID: n1.ID, PatientID: patient.ID, CreatedAt: now.Add(-time.Hour)},
		&directory.NursePatient{ID: uuid.New(), NurseID: n2.ID, PatientID: patient.ID, CreatedAt: now},
	)

	alert, err := env.svc.Create(context.Background(), userID.String(), auth.RolePatient,
		CreateRequest{PatientID: patient.ID.String(), Location: "Home"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if alert.NurseID == nil || *alert.NurseID != n2.ID {
		t.Error("alert must route to the most recently assigned nurse")
	}
	if alert.Location != "Home" {
		t.Errorf("expected location Home, got %q", alert.Location)
	}
}

func TestCreate_MissingPatientID(t *testing.T) {
	env := newAlertsEnv()
	_, err := env.svc.Create(context.Background(), uuid.New().String(), auth.RoleAdmin, CreateRequest{})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestCreate_PatientMismatch(t *testing.T) {
	env := newAlertsEnv()
	userID, _ := env.addPatient("pat")
	_, other := env.addPatient("other")

	_, err := env.svc.Create(context.Background(), userID.String(), auth.RolePatient,
		CreateRequest{PatientID: other.ID.String()})
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("expected forbidden, got %v", err)
	}
}

func TestCreate_UnknownRoleDenied(t *testing.T) {
	env := newAlertsEnv()
	_, patient := env.addPatient("pat")

	_, err := env.svc.Create(context.Background(), uuid.New().String(), "EMERGENCY_SERVICE",
		CreateRequest{PatientID: patient.ID.String()})
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("expected forbidden, got %v", err)
	}
}

// -- List --

func TestList_PatientSeesOwnOnly(t *testing.T) {
	env := newAlertsEnv()
	userID, patient := env.addPatient("pat")
	_, other := env.addPatient("other")
	env.addAlert(patient.ID, nil, StatusPending)
	env.addAlert(other.ID, nil, StatusPending)

	alerts, err := env.svc.List(context.Background(), userID.String(), auth.RolePatient, "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(alerts) != 1 || alerts[0].PatientID != patient.ID {
		t.Errorf("patient must see only their own alerts, got %d", len(alerts))
	}
}

func TestList_NurseSeesAssignedOnly(t *testing.T) {
	env := newAlertsEnv()
	nurseUserID, nurse := env.addNurse("nurse")
	_, p1 := env.addPatient("p1")
	_, p2 := env.addPatient("p2")
	env.addAlert(p1.ID, &nurse.ID, StatusPending)
	env.addAlert(p2.ID, nil, StatusPending)

	alerts, err := env.svc.List(context.Background(), nurseUserID.String(), auth.RoleNurse, "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(alerts) != 1 || alerts[0].NurseID == nil || *alerts[0].NurseID != nurse.ID {
		t.Errorf("nurse must see only alerts routed to them, got %d", len(alerts))
	}
}

func TestList_AdminSeesAll(t *testing.T) {
	env := newAlertsEnv()
	_, p1 := env.addPatient("p1")
	_, p2 := env.addPatient("p2")
	env.addAlert(p1.ID, nil, StatusPending)
	env.addAlert(p2.ID, nil, StatusResolved)

	alerts, err := env.svc.List(context.Background(), uuid.New().String(), auth.RoleFacilityAdmin, "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(alerts) != 2 {
		t.Errorf("expected 2 alerts, got %d", len(alerts))
	}
}

func TestList_StatusFilter(t *testing.T) {
	env := newAlertsEnv()
	_, p := env.addPatient("p")
	env.addAlert(p.ID, nil, StatusPending)
	env.addAlert(p.ID, nil, StatusResolved)

	alerts, err := env.svc.List(context.Background(), uuid.New().String(), auth.RoleAdmin, StatusPending, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(alerts) != 1 || alerts[0].Status != StatusPending {
		t.Errorf("expected only PENDING alerts, got %d", len(alerts))
	}

	if _, err := env.svc.List(context.Background(), uuid.New().String(), auth.RoleAdmin, "BOGUS", ""); err == nil {
		t.Error("expected error for unknown status filter")
	}
}

func TestList_NewestFirst(t *testing.T) {
	env := newAlertsEnv()
	_, p := env.addPatient("p")
	old := env.addAlert(p.ID, nil, StatusPending)
	old.CreatedAt = time.Now().Add(-time.Hour)
	env.addAlert(p.ID, nil, StatusPending)

	alerts, err := env.svc.List(context.Background(), uuid.New().String(), auth.RoleAdmin, "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(alerts) != 2 || alerts[1].ID != old.ID {
		t.Error("alerts must be ordered newest first")
	}
}

func TestList_UnknownRoleDenied(t *testing.T) {
	env := newAlertsEnv()
	_, err := env.svc.List(context.Background(), uuid.New().String(), "EMERGENCY_SERVICE", "", "")
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("expected forbidden, got %v", err)
	}
}

// -- Get --

func TestGet_Detail(t *testing.T) {
	env := newAlertsEnv()
	userID, patient := env.addPatient("pat")
	_, nurse := env.addNurse("nurse")
	svc := &emergency.EmergencyService{Name: "City Hospital", Type: emergency.TypeHospital}
	env.services.Create(context.Background(), svc)

	a := env.addAlert(patient.ID, &nurse.ID, StatusPending)
	a.EmergencyServiceID = &svc.ID

	detail, err := env.svc.Get(context.Background(), userID.String(), auth.RolePatient, a.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if detail.Patient == nil || detail.Patient.User == nil || detail.Patient.User.Name != "pat" {
		t.Error("expected nested patient summary")
	}
	if detail.Nurse == nil || detail.Nurse.User == nil || detail.Nurse.User.Name != "nurse" {
		t.Error("expected nested nurse summary")
	}
	if detail.EmergencyService == nil || detail.EmergencyService.Name != "City Hospital" {
		t.Error("expected nested emergency service")
	}
}

func TestGet_NotFound(t *testing.T) {
	env := newAlertsEnv()
	_, err := env.svc.Get(context.Background(), uuid.New().String(), auth.RoleAdmin, uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestGet_NurseNotAssignee(t *testing.T) {
	env := newAlertsEnv()
	nurseUserID, _ := env.addNurse("nurse")
	_, otherNurse := env.addNurse("other")
	_, patient := env.addPatient("pat")
	a := env.addAlert(patient.ID, &otherNurse.ID, StatusPending)

	_, err := env.svc.Get(context.Background(), nurseUserID.String(), auth.RoleNurse, a.ID)
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("expected forbidden, got %v", err)
	}
}

func TestGet_PatientNotOwner(t *testing.T) {
	env := newAlertsEnv()
	userID, _ := env.addPatient("pat")
	_, other := env.addPatient("other")
	a := env.addAlert(other.ID, nil, StatusPending)

	_, err := env.svc.Get(context.Background(), userID.String(), auth.RolePatient, a.ID)
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("expected forbidden, got %v", err)
	}
}

// -- UpdateStatus --

func TestUpdateStatus_LegalTransition(t *testing.T) {
	env := newAlertsEnv()
	nurseUserID, nurse := env.addNurse("nurse")
	_, patient := env.addPatient("pat")
	a := env.addAlert(patient.ID, &nurse.ID, StatusPending)

	updated, err := env.svc.UpdateStatus(context.Background(), nurseUserID.String(), auth.RoleNurse, a.ID,
		UpdateRequest{Status: StatusAcknowledged})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != StatusAcknowledged {
		t.Errorf("expected ACKNOWLEDGED, got %s", updated.Status)
	}
	if updated.ResolvedAt != nil {
		t.Error("resolved_at must only be stamped on RESOLVED")
	}
}

func TestUpdateStatus_ResolvedStampsTime(t *testing.T) {
	env := newAlertsEnv()
	_, patient := env.addPatient("pat")
	a := env.addAlert(patient.ID, nil, StatusDispatched)

	updated, err := env.svc.UpdateStatus(context.Background(), uuid.New().String(), auth.RoleAdmin, a.ID,
		UpdateRequest{Status: StatusResolved})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.ResolvedAt == nil {
		t.Error("expected resolved_at to be stamped")
	}
}

func TestUpdateStatus_IllegalTransition(t *testing.T) {
	env := newAlertsEnv()
	_, patient := env.addPatient("pat")

	cases := []struct{ from, to string }{
		{StatusResolved, StatusPending},
		{StatusCancelled, StatusAcknowledged},
		{StatusDispatched, StatusAcknowledged},
		{StatusAcknowledged, StatusPending},
	}
	for _, tc := range cases {
		a := env.addAlert(patient.ID, nil, tc.from)
		_, err := env.svc.UpdateStatus(context.Background(), uuid.New().String(), auth.RoleAdmin, a.ID,
			UpdateRequest{Status: tc.to})
		if err == nil {
			t.Errorf("%s -> %s: expected error", tc.from, tc.to)
		}
		if errors.Is(err, ErrForbidden) || errors.Is(err, ErrNotFound) {
			t.Errorf("%s -> %s: expected validation error, got %v", tc.from, tc.to, err)
		}
	}
}

func TestUpdateStatus_TableBindsAdmins(t *testing.T) {
	env := newAlertsEnv()
	_, patient := env.addPatient("pat")
	a := env.addAlert(patient.ID, nil, StatusResolved)

	_, err := env.svc.UpdateStatus(context.Background(), uuid.New().String(), auth.RoleAdmin, a.ID,
		UpdateRequest{Status: StatusPending})
	if err == nil {
		t.Error("terminal alerts must not be reopened, even by admins")
	}
}

func TestUpdateStatus_MissingStatus(t *testing.T) {
	env := newAlertsEnv()
	_, patient := env.addPatient("pat")
	a := env.addAlert(patient.ID, nil, StatusPending)

	_, err := env.svc.UpdateStatus(context.Background(), uuid.New().String(), auth.RoleAdmin, a.ID, UpdateRequest{})
	if err == nil {
		t.Error("expected error for missing status")
	}
}

func TestUpdateStatus_PatientDenied(t *testing.T) {
	env := newAlertsEnv()
	userID, patient := env.addPatient("pat")
	a := env.addAlert(patient.ID, nil, StatusPending)

	_, err := env.svc.UpdateStatus(context.Background(), userID.String(), auth.RolePatient, a.ID,
		UpdateRequest{Status: StatusAcknowledged})
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("expected forbidden, got %v", err)
	}
}

func TestUpdateStatus_NurseNotAssignee(t *testing.T) {
	env := newAlertsEnv()
	nurseUserID, _ := env.addNurse("nurse")
	_, other := env.addNurse("other")
	_, patient := env.addPatient("pat")
	a := env.addAlert(patient.ID, &other.ID, StatusPending)

	_, err := env.svc.UpdateStatus(context.Background(), nurseUserID.String(), auth.RoleNurse, a.ID,
		UpdateRequest{Status: StatusAcknowledged})
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("expected forbidden, got %v", err)
	}
}

func TestUpdateStatus_AttachesEmergencyService(t *testing.T) {
	env := newAlertsEnv()
	_, patient := env.addPatient("pat")
	svc := &emergency.EmergencyService{Name: "Metro Ambulance", Type: emergency.TypeAmbulance}
	env.services.Create(context.Background(), svc)
	a := env.addAlert(patient.ID, nil, StatusPending)

	updated, err := env.svc.UpdateStatus(context.Background(), uuid.New().String(), auth.RoleAdmin, a.ID,
		UpdateRequest{Status: StatusDispatched, EmergencyServiceID: svc.ID.String()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.EmergencyServiceID == nil || *updated.EmergencyServiceID != svc.ID {
		t.Error("expected emergency service to be attached")
	}
}

// -- RecordAbnormal --

func TestRecordAbnormal(t *testing.T) {
	env := newAlertsEnv()
	_, patient := env.addPatient("pat")
	_, nurse := env.addNurse("nurse")

	err := env.svc.RecordAbnormal(context.Background(), patient.ID, nurse.ID,
		"Abnormal vital signs detected: Heart Rate: 115 bpm")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	alerts, _ := env.repo.List(context.Background(), Filter{PatientID: patient.ID})
	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(alerts))
	}
	a := alerts[0]
	if a.Status != StatusPending || a.NurseID == nil || *a.NurseID != nurse.ID {
		t.Error("abnormal alert must be PENDING and routed to the nurse")
	}
	if a.Location != DefaultLocation {
		t.Errorf("expected default location, got %q", a.Location)
	}
}
