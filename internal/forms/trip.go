package forms

import (
	"strings"
	"time"

	"github.com/ukydev/fleet-console/internal/models"
)

// TripForm holds the editable fields of a trip, with origin, destination
// and cargo flattened the way the form lays them out.
type TripForm struct {
	TripNumber string            `form:"tripNumber" validate:"required"`
	VehicleID  string            `form:"vehicleId"`
	DriverID   string            `form:"driverId"`
	ClientID   string            `form:"clientId"`
	Status     models.TripStatus `form:"status" validate:"oneof=planned in_progress completed cancelled"`

	OriginCompanyName string `form:"originCompanyName"`
	OriginAddress     string `form:"originAddress" validate:"required"`
	OriginCity        string `form:"originCity" validate:"required"`
	OriginProvince    string `form:"originProvince" validate:"required,len=2"`
	OriginPostalCode  string `form:"originPostalCode" validate:"required,len=5,digits"`
	OriginCountry     string `form:"originCountry" validate:"required"`

	DestinationCompanyName string `form:"destinationCompanyName"`
	DestinationAddress     string `form:"destinationAddress" validate:"required"`
	DestinationCity        string `form:"destinationCity" validate:"required"`
	DestinationProvince    string `form:"destinationProvince" validate:"required,len=2"`
	DestinationPostalCode  string `form:"destinationPostalCode" validate:"required,len=5,digits"`
	DestinationCountry     string `form:"destinationCountry" validate:"required"`

	CargoDescription string   `form:"cargoDescription" validate:"required"`
	CargoWeight      float64  `form:"cargoWeight" validate:"min=0"`
	CargoVolume      *float64 `form:"cargoVolume" validate:"omitempty,min=0"`
	CargoPackages    *int     `form:"cargoPackages" validate:"omitempty,min=0"`
	CargoIsADR       bool     `form:"cargoIsADR"`
	CargoTemperature *float64 `form:"cargoTemperature"`

	PlannedDeparture time.Time `form:"plannedDeparture" validate:"required"`
	PlannedArrival   time.Time `form:"plannedArrival" validate:"required,gtefield=PlannedDeparture"`
	KmPlanned        float64   `form:"kmPlanned" validate:"min=0"`
	Price            float64   `form:"price" validate:"min=0"`
	Notes            string    `form:"notes"`
}

func NewTripForm() *TripForm {
	f := &TripForm{}
	f.Reset()
	return f
}

func (f *TripForm) Reset() {
	*f = TripForm{
		Status:             models.TripPlanned,
		OriginCountry:      models.DefaultCountry,
		DestinationCountry: models.DefaultCountry,
	}
}

// PrefillFromClient uses the client's address as the pickup point.
func (f *TripForm) PrefillFromClient(c *models.Client) {
	f.ClientID = c.ID
	f.OriginCompanyName = c.CompanyName
	f.OriginAddress = c.Address
	f.OriginCity = c.City
	f.OriginProvince = c.Province
	f.OriginPostalCode = c.PostalCode
	f.OriginCountry = c.Country
}

// PrefillFromDriver selects the driver and the vehicle assigned to them.
func (f *TripForm) PrefillFromDriver(d *models.Driver) {
	f.DriverID = d.ID
	if d.AssignedVehicleID != "" {
		f.VehicleID = d.AssignedVehicleID
	}
}

func (f *TripForm) Fill(t *models.Trip) {
	f.TripNumber = t.TripNumber
	f.VehicleID = t.VehicleID
	f.DriverID = t.DriverID
	f.ClientID = t.ClientID
	f.Status = t.Status

	f.OriginCompanyName = t.Origin.CompanyName
	f.OriginAddress = t.Origin.Address
	f.OriginCity = t.Origin.City
	f.OriginProvince = t.Origin.Province
	f.OriginPostalCode = t.Origin.PostalCode
	f.OriginCountry = t.Origin.Country

	f.DestinationCompanyName = t.Destination.CompanyName
	f.DestinationAddress = t.Destination.Address
	f.DestinationCity = t.Destination.City
	f.DestinationProvince = t.Destination.Province
	f.DestinationPostalCode = t.Destination.PostalCode
	f.DestinationCountry = t.Destination.Country

	f.CargoDescription = t.Cargo.Description
	f.CargoWeight = t.Cargo.Weight
	f.CargoVolume = t.Cargo.Volume
	f.CargoPackages = t.Cargo.Packages
	f.CargoIsADR = t.Cargo.IsADR
	f.CargoTemperature = t.Cargo.Temperature

	f.PlannedDeparture = t.PlannedDeparture
	f.PlannedArrival = t.PlannedArrival
	f.KmPlanned = t.KmPlanned
	f.Price = t.Price
	f.Notes = t.Notes
}

func (f *TripForm) Build(prev *models.Trip) *models.Trip {
	t := &models.Trip{}
	if prev != nil {
		*t = *prev
	}
	t.TripNumber = strings.TrimSpace(f.TripNumber)
	t.VehicleID = f.VehicleID
	t.DriverID = f.DriverID
	t.ClientID = f.ClientID
	t.Status = f.Status

	// Coordinates are not edited here; keep those already known.
	t.Origin = models.Address{
		CompanyName: f.OriginCompanyName,
		Address:     f.OriginAddress,
		City:        f.OriginCity,
		Province:    strings.ToUpper(f.OriginProvince),
		PostalCode:  f.OriginPostalCode,
		Country:     f.OriginCountry,
		Lat:         t.Origin.Lat,
		Lng:         t.Origin.Lng,
	}
	t.Destination = models.Address{
		CompanyName: f.DestinationCompanyName,
		Address:     f.DestinationAddress,
		City:        f.DestinationCity,
		Province:    strings.ToUpper(f.DestinationProvince),
		PostalCode:  f.DestinationPostalCode,
		Country:     f.DestinationCountry,
		Lat:         t.Destination.Lat,
		Lng:         t.Destination.Lng,
	}
	t.Cargo = models.Cargo{
		Description: f.CargoDescription,
		Weight:      f.CargoWeight,
		Volume:      f.CargoVolume,
		Packages:    f.CargoPackages,
		IsADR:       f.CargoIsADR,
		Temperature: f.CargoTemperature,
	}

	t.PlannedDeparture = f.PlannedDeparture
	t.PlannedArrival = f.PlannedArrival
	t.KmPlanned = f.KmPlanned
	t.Price = f.Price
	t.Notes = f.Notes
	return t
}
