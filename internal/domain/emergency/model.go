package emergency

import (
	"time"

	"github.com/google/uuid"
)

// Service types.
const (
	TypeAmbulance = "AMBULANCE"
	TypeHospital  = "HOSPITAL"
	TypeFire      = "FIRE"
	TypePolice    = "POLICE"
	TypeOther     = "OTHER"
)

// ValidType reports whether t is a known emergency service type.
func ValidType(t string) bool {
	switch t {
	case TypeAmbulance, TypeHospital, TypeFire, TypePolice, TypeOther:
		return true
	}
	return false
}

// EmergencyService maps to the emergency_services table.
type EmergencyService struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	Name           string     `db:"name" json:"name"`
	Type           string     `db:"type" json:"type"`
	Address        *string    `db:"address" json:"address,omitempty"`
	Phone          *string    `db:"phone" json:"phone,omitempty"`
	Email          *string    `db:"email" json:"email,omitempty"`
	Latitude       *float64   `db:"latitude" json:"latitude,omitempty"`
	Longitude      *float64   `db:"longitude" json:"longitude,omitempty"`
	ServiceRadius  *float64   `db:"service_radius" json:"service_radius,omitempty"`
	OperatingHours *string    `db:"operating_hours" json:"operating_hours,omitempty"`
	FacilityID     *uuid.UUID `db:"facility_id" json:"facility_id,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// RankedService is an emergency service with its distance from a caller
// supplied position. Distance is in raw coordinate units; it only orders
// results.
type RankedService struct {
	*EmergencyService
	Distance float64 `json:"distance"`
}
