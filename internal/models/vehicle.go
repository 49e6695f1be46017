package models

import "time"

// VehicleStatus is the operational state of a vehicle.
type VehicleStatus string

const (
	VehicleAvailable   VehicleStatus = "available"
	VehicleInTransit   VehicleStatus = "in_transit"
	VehicleMaintenance VehicleStatus = "maintenance"
	VehicleInactive    VehicleStatus = "inactive"
)

// VehicleStatuses lists every vehicle status in display order.
var VehicleStatuses = []VehicleStatus{VehicleAvailable, VehicleInTransit, VehicleMaintenance, VehicleInactive}

var vehicleStatusLabels = map[VehicleStatus]string{
	VehicleAvailable:   "Disponibile",
	VehicleInTransit:   "In Transito",
	VehicleMaintenance: "In Manutenzione",
	VehicleInactive:    "Inattivo",
}

func (s VehicleStatus) IsValid() bool {
	_, ok := vehicleStatusLabels[s]
	return ok
}

func (s VehicleStatus) Label() string {
	return vehicleStatusLabels[s]
}

// Vehicle represents a fleet vehicle.
type Vehicle struct {
	Base            `bson:",inline"`
	Plate           string        `json:"plate" bson:"plate"`
	Brand           string        `json:"brand" bson:"brand"`
	Model           string        `json:"model" bson:"model"`
	Year            int           `json:"year" bson:"year"`
	Status          VehicleStatus `json:"status" bson:"status"`
	CurrentDriverID string        `json:"currentDriverId,omitempty" bson:"currentDriverId,omitempty"`
	LastPosition    *GeoPosition  `json:"lastPosition,omitempty" bson:"lastPosition,omitempty"`
	KmTotal         int           `json:"kmTotal" bson:"kmTotal"`
	InsuranceExpiry *time.Time    `json:"insuranceExpiry,omitempty" bson:"insuranceExpiry,omitempty"`
	RevisionExpiry  *time.Time    `json:"revisionExpiry,omitempty" bson:"revisionExpiry,omitempty"`
	Notes           string        `json:"notes,omitempty" bson:"notes,omitempty"`
}

// Validate implements Entity.
func (v *Vehicle) Validate() error {
	if err := v.Base.Validate(); err != nil {
		return err
	}
	if !v.Status.IsValid() {
		return enumError("status", v.Status)
	}
	if v.KmTotal < 0 {
		return &ValidationError{Field: "kmTotal", Reason: "must not be negative"}
	}
	return nil
}

// ApplyDefaults implements Defaulter.
func (v *Vehicle) ApplyDefaults() {
	if v.Status == "" {
		v.Status = VehicleAvailable
	}
}

// Label is the short form used in lists and selects, e.g. "AB123CD - Iveco Daily".
func (v *Vehicle) Label() string {
	return v.Plate + " - " + v.Brand + " " + v.Model
}
