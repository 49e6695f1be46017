package models

import "time"

// TripStatus is the lifecycle state of a trip.
type TripStatus string

const (
	TripPlanned    TripStatus = "planned"
	TripInProgress TripStatus = "in_progress"
	TripCompleted  TripStatus = "completed"
	TripCancelled  TripStatus = "cancelled"
)

var TripStatuses = []TripStatus{TripPlanned, TripInProgress, TripCompleted, TripCancelled}

var tripStatusLabels = map[TripStatus]string{
	TripPlanned:    "Pianificato",
	TripInProgress: "In Corso",
	TripCompleted:  "Completato",
	TripCancelled:  "Annullato",
}

func (s TripStatus) IsValid() bool {
	_, ok := tripStatusLabels[s]
	return ok
}

func (s TripStatus) Label() string {
	return tripStatusLabels[s]
}

// Cargo describes the goods carried on a trip.
type Cargo struct {
	Description string   `json:"description" bson:"description"`
	Weight      float64  `json:"weight" bson:"weight"` // kg
	Volume      *float64 `json:"volume,omitempty" bson:"volume,omitempty"`
	Packages    *int     `json:"packages,omitempty" bson:"packages,omitempty"`
	IsADR       bool     `json:"isADR" bson:"isADR"`
	Temperature *float64 `json:"temperature,omitempty" bson:"temperature,omitempty"` // °C, refrigerated cargo only
}

// Trip represents a transport job from an origin to a destination.
type Trip struct {
	Base             `bson:",inline"`
	TripNumber       string     `json:"tripNumber" bson:"tripNumber"`
	VehicleID        string     `json:"vehicleId,omitempty" bson:"vehicleId,omitempty"`
	DriverID         string     `json:"driverId,omitempty" bson:"driverId,omitempty"`
	ClientID         string     `json:"clientId,omitempty" bson:"clientId,omitempty"`
	Origin           Address    `json:"origin" bson:"origin"`
	Destination      Address    `json:"destination" bson:"destination"`
	Cargo            Cargo      `json:"cargo" bson:"cargo"`
	Status           TripStatus `json:"status" bson:"status"`
	PlannedDeparture time.Time  `json:"plannedDeparture" bson:"plannedDeparture"`
	ActualDeparture  *time.Time `json:"actualDeparture,omitempty" bson:"actualDeparture,omitempty"`
	PlannedArrival   time.Time  `json:"plannedArrival" bson:"plannedArrival"`
	ActualArrival    *time.Time `json:"actualArrival,omitempty" bson:"actualArrival,omitempty"`
	KmPlanned        float64    `json:"kmPlanned" bson:"kmPlanned"`
	KmActual         *float64   `json:"kmActual,omitempty" bson:"kmActual,omitempty"`
	Price            float64    `json:"price" bson:"price"`
	Notes            string     `json:"notes,omitempty" bson:"notes,omitempty"`
}

// Validate implements Entity.
func (t *Trip) Validate() error {
	if err := t.Base.Validate(); err != nil {
		return err
	}
	if !t.Status.IsValid() {
		return enumError("status", t.Status)
	}
	if t.Price < 0 {
		return &ValidationError{Field: "price", Reason: "must not be negative"}
	}
	return nil
}

// ApplyDefaults implements Defaulter.
func (t *Trip) ApplyDefaults() {
	if t.Status == "" {
		t.Status = TripPlanned
	}
}

// Route is the "Origin → Destination" label used across the console.
func (t *Trip) Route() string {
	return t.Origin.City + " → " + t.Destination.City
}

// Km returns the actual distance when known, the planned one otherwise.
func (t *Trip) Km() float64 {
	if t.KmActual != nil {
		return *t.KmActual
	}
	return t.KmPlanned
}
