package alerts

import (
	"time"

	"github.com/google/uuid"

	"github.com/360nurse/api/internal/domain/directory"
	"github.com/360nurse/api/internal/domain/emergency"
)

// Alert statuses.
const (
	StatusPending      = "PENDING"
	StatusAcknowledged = "ACKNOWLEDGED"
	StatusDispatched   = "DISPATCHED"
	StatusResolved     = "RESOLVED"
	StatusCancelled    = "CANCELLED"
)

// Defaults applied when an alert is created without them.
const (
	DefaultDescription = "Emergency assistance requested"
	DefaultLocation    = "Unknown"
)

// transitions is the legal state machine. Statuses not present as keys are
// terminal. The table applies to every role, admins included.
var transitions = map[string]map[string]bool{
	StatusPending: {
		StatusAcknowledged: true,
		StatusDispatched:   true,
		StatusResolved:     true,
		StatusCancelled:    true,
	},
	StatusAcknowledged: {
		StatusDispatched: true,
		StatusResolved:   true,
		StatusCancelled:  true,
	},
	StatusDispatched: {
		StatusResolved:  true,
		StatusCancelled: true,
	},
}

// ValidStatus reports whether s is a known alert status.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusAcknowledged, StatusDispatched, StatusResolved, StatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether an alert may move from one status to
// another.
func CanTransition(from, to string) bool {
	return transitions[from][to]
}

// Terminal reports whether a status admits no further transitions.
func Terminal(s string) bool {
	return ValidStatus(s) && len(transitions[s]) == 0
}

// Alert maps to the emergency_alerts table. Alerts are never deleted; they
// move through the status machine until RESOLVED or CANCELLED.
type Alert struct {
	ID                 uuid.UUID  `db:"id" json:"id"`
	PatientID          uuid.UUID  `db:"patient_id" json:"patient_id"`
	NurseID            *uuid.UUID `db:"nurse_id" json:"nurse_id,omitempty"`
	Status             string     `db:"status" json:"status"`
	Description        string     `db:"description" json:"description"`
	Location           string     `db:"location" json:"location"`
	EmergencyServiceID *uuid.UUID `db:"emergency_service_id" json:"emergency_service_id,omitempty"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	ResolvedAt         *time.Time `db:"resolved_at" json:"resolved_at,omitempty"`
}

// AlertDetail is an alert with the related records a responder needs at a
// glance.
type AlertDetail struct {
	Alert
	Patient          *directory.PatientSummary   `json:"patient,omitempty"`
	Nurse            *directory.NurseSummary     `json:"nurse,omitempty"`
	EmergencyService *emergency.EmergencyService `json:"emergency_service,omitempty"`
}
