package models

import (
	"strings"
	"time"
)

// DriverStatus is the employment state of a driver.
type DriverStatus string

const (
	DriverActive   DriverStatus = "active"
	DriverOnLeave  DriverStatus = "on_leave"
	DriverInactive DriverStatus = "inactive"
)

var DriverStatuses = []DriverStatus{DriverActive, DriverOnLeave, DriverInactive}

var driverStatusLabels = map[DriverStatus]string{
	DriverActive:   "Attivo",
	DriverOnLeave:  "In Ferie",
	DriverInactive: "Inattivo",
}

func (s DriverStatus) IsValid() bool {
	_, ok := driverStatusLabels[s]
	return ok
}

func (s DriverStatus) Label() string {
	return driverStatusLabels[s]
}

// Driver represents an employed driver and their licences.
type Driver struct {
	Base              `bson:",inline"`
	FirstName         string       `json:"firstName" bson:"firstName"`
	LastName          string       `json:"lastName" bson:"lastName"`
	FiscalCode        string       `json:"fiscalCode" bson:"fiscalCode"`
	Phone             string       `json:"phone" bson:"phone"`
	Email             string       `json:"email,omitempty" bson:"email,omitempty"`
	LicenseNumber     string       `json:"licenseNumber" bson:"licenseNumber"`
	LicenseExpiry     time.Time    `json:"licenseExpiry" bson:"licenseExpiry"`
	CQCExpiry         time.Time    `json:"cqcExpiry" bson:"cqcExpiry"`
	ADRExpiry         *time.Time   `json:"adrExpiry,omitempty" bson:"adrExpiry,omitempty"`
	Status            DriverStatus `json:"status" bson:"status"`
	AssignedVehicleID string       `json:"assignedVehicleId,omitempty" bson:"assignedVehicleId,omitempty"`
	HireDate          time.Time    `json:"hireDate" bson:"hireDate"`
	Notes             string       `json:"notes,omitempty" bson:"notes,omitempty"`
}

// Validate implements Entity.
func (d *Driver) Validate() error {
	if err := d.Base.Validate(); err != nil {
		return err
	}
	if !d.Status.IsValid() {
		return enumError("status", d.Status)
	}
	return nil
}

// ApplyDefaults implements Defaulter.
func (d *Driver) ApplyDefaults() {
	if d.Status == "" {
		d.Status = DriverActive
	}
}

func (d *Driver) FullName() string {
	return d.FirstName + " " + d.LastName
}

// Initials returns the upper-case initials shown in avatars.
func (d *Driver) Initials() string {
	var out []rune
	for _, s := range []string{d.FirstName, d.LastName} {
		for _, r := range s {
			out = append(out, r)
			break
		}
	}
	return strings.ToUpper(string(out))
}
