package models

import "time"

// FuelType is the kind of fuel or energy dispensed.
type FuelType string

const (
	FuelDiesel   FuelType = "diesel"
	FuelGasoline FuelType = "gasoline"
	FuelLPG      FuelType = "lpg"
	FuelMethane  FuelType = "methane"
	FuelElectric FuelType = "electric"
)

var FuelTypes = []FuelType{FuelDiesel, FuelGasoline, FuelLPG, FuelMethane, FuelElectric}

var fuelTypeLabels = map[FuelType]string{
	FuelDiesel:   "Diesel",
	FuelGasoline: "Benzina",
	FuelLPG:      "GPL",
	FuelMethane:  "Metano",
	FuelElectric: "Elettrico",
}

func (f FuelType) IsValid() bool {
	_, ok := fuelTypeLabels[f]
	return ok
}

func (f FuelType) Label() string {
	return fuelTypeLabels[f]
}

// Fuel represents a refuelling record.
type Fuel struct {
	Base          `bson:",inline"`
	VehicleID     string    `json:"vehicleId" bson:"vehicleId"`
	DriverID      string    `json:"driverId,omitempty" bson:"driverId,omitempty"`
	Date          time.Time `json:"date" bson:"date"`
	Liters        float64   `json:"liters" bson:"liters"`
	PricePerLiter float64   `json:"pricePerLiter" bson:"pricePerLiter"`
	TotalCost     float64   `json:"totalCost" bson:"totalCost"`
	FuelType      FuelType  `json:"fuelType" bson:"fuelType"`
	StationName   string    `json:"stationName,omitempty" bson:"stationName,omitempty"`
	Odometer      int       `json:"odometer" bson:"odometer"`
	FullTank      bool      `json:"fullTank" bson:"fullTank"`
	Notes         string    `json:"notes,omitempty" bson:"notes,omitempty"`
}

// Validate implements Entity.
func (f *Fuel) Validate() error {
	if err := f.Base.Validate(); err != nil {
		return err
	}
	if !f.FuelType.IsValid() {
		return enumError("fuelType", f.FuelType)
	}
	if f.Liters < 0 || f.PricePerLiter < 0 {
		return &ValidationError{Field: "liters", Reason: "quantities must not be negative"}
	}
	return nil
}

// ApplyDefaults implements Defaulter. TotalCost is always derived from
// liters and price.
func (f *Fuel) ApplyDefaults() {
	if f.FuelType == "" {
		f.FuelType = FuelDiesel
	}
	f.TotalCost = FuelTotal(f.Liters, f.PricePerLiter)
}

// FuelTotal is the cost of a refuelling, rounded to the cent.
func FuelTotal(liters, pricePerLiter float64) float64 {
	return Round2(liters * pricePerLiter)
}
