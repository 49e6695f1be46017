package forms

import (
	"time"

	"github.com/ukydev/fleet-console/internal/models"
)

// FuelForm holds the editable fields of a refuelling. The total cost is
// derived from liters and price and cannot be edited.
type FuelForm struct {
	VehicleID     string          `form:"vehicleId" validate:"required"`
	DriverID      string          `form:"driverId"`
	Date          time.Time       `form:"date" validate:"required"`
	Liters        float64         `form:"liters" validate:"min=0.1"`
	PricePerLiter float64         `form:"pricePerLiter" validate:"min=0.01"`
	FuelType      models.FuelType `form:"fuelType" validate:"required,oneof=diesel gasoline lpg methane electric"`
	StationName   string          `form:"stationName"`
	Odometer      int             `form:"odometer" validate:"min=0"`
	FullTank      bool            `form:"fullTank"`
	Notes         string          `form:"notes"`

	now func() time.Time
}

// NewFuelForm starts a blank form dated today, optionally for vehicleID.
func NewFuelForm(vehicleID string, now func() time.Time) *FuelForm {
	if now == nil {
		now = time.Now
	}
	f := &FuelForm{now: now}
	f.Reset()
	f.VehicleID = vehicleID
	return f
}

func (f *FuelForm) Reset() {
	*f = FuelForm{
		Date:     today(f.now),
		FuelType: models.FuelDiesel,
		FullTank: true,
		now:      f.now,
	}
}

// TotalCost is liters times price, rounded to the cent.
func (f *FuelForm) TotalCost() float64 {
	return models.FuelTotal(f.Liters, f.PricePerLiter)
}

func (f *FuelForm) Fill(r *models.Fuel) {
	f.VehicleID = r.VehicleID
	f.DriverID = r.DriverID
	f.Date = r.Date
	f.Liters = r.Liters
	f.PricePerLiter = r.PricePerLiter
	f.FuelType = r.FuelType
	f.StationName = r.StationName
	f.Odometer = r.Odometer
	f.FullTank = r.FullTank
	f.Notes = r.Notes
}

func (f *FuelForm) Build(prev *models.Fuel) *models.Fuel {
	r := &models.Fuel{}
	if prev != nil {
		*r = *prev
	}
	r.VehicleID = f.VehicleID
	r.DriverID = f.DriverID
	r.Date = f.Date
	r.Liters = f.Liters
	r.PricePerLiter = f.PricePerLiter
	r.TotalCost = f.TotalCost()
	r.FuelType = f.FuelType
	r.StationName = f.StationName
	r.Odometer = f.Odometer
	r.FullTank = f.FullTank
	r.Notes = f.Notes
	return r
}
