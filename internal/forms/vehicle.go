package forms

import (
	"strings"
	"time"

	"github.com/ukydev/fleet-console/internal/models"
)

// VehicleForm holds the editable fields of a vehicle.
type VehicleForm struct {
	Plate           string               `form:"plate" validate:"required,min=5"`
	Brand           string               `form:"brand" validate:"required"`
	Model           string               `form:"model" validate:"required"`
	Year            int                  `form:"year" validate:"min=2000,notfutureyear"`
	Status          models.VehicleStatus `form:"status" validate:"oneof=available in_transit maintenance inactive"`
	KmTotal         int                  `form:"kmTotal" validate:"min=0"`
	CurrentDriverID string               `form:"currentDriverId"`
	InsuranceExpiry *time.Time           `form:"insuranceExpiry"`
	RevisionExpiry  *time.Time           `form:"revisionExpiry"`
	Notes           string               `form:"notes"`

	now func() time.Time
}

func NewVehicleForm(now func() time.Time) *VehicleForm {
	if now == nil {
		now = time.Now
	}
	f := &VehicleForm{now: now}
	f.Reset()
	return f
}

func (f *VehicleForm) Reset() {
	*f = VehicleForm{
		Year:   f.now().Year(),
		Status: models.VehicleAvailable,
		now:    f.now,
	}
}

func (f *VehicleForm) Fill(v *models.Vehicle) {
	f.Plate = v.Plate
	f.Brand = v.Brand
	f.Model = v.Model
	f.Year = v.Year
	f.Status = v.Status
	f.KmTotal = v.KmTotal
	f.CurrentDriverID = v.CurrentDriverID
	f.InsuranceExpiry = v.InsuranceExpiry
	f.RevisionExpiry = v.RevisionExpiry
	f.Notes = v.Notes
}

func (f *VehicleForm) Build(prev *models.Vehicle) *models.Vehicle {
	v := &models.Vehicle{}
	if prev != nil {
		*v = *prev
	}
	v.Plate = strings.ToUpper(strings.TrimSpace(f.Plate))
	v.Brand = f.Brand
	v.Model = f.Model
	v.Year = f.Year
	v.Status = f.Status
	v.KmTotal = f.KmTotal
	v.CurrentDriverID = f.CurrentDriverID
	v.InsuranceExpiry = f.InsuranceExpiry
	v.RevisionExpiry = f.RevisionExpiry
	v.Notes = f.Notes
	return v
}
