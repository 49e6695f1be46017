package forms

import (
	"strings"
	"time"

	"github.com/ukydev/fleet-console/internal/models"
)

// DriverForm holds the editable fields of a driver.
type DriverForm struct {
	FirstName         string              `form:"firstName" validate:"required,min=2"`
	LastName          string              `form:"lastName" validate:"required,min=2"`
	FiscalCode        string              `form:"fiscalCode" validate:"required,fiscalcode"`
	Phone             string              `form:"phone" validate:"required,phone_it"`
	Email             string              `form:"email" validate:"omitempty,email"`
	LicenseNumber     string              `form:"licenseNumber" validate:"required,min=5"`
	LicenseExpiry     time.Time           `form:"licenseExpiry" validate:"required"`
	CQCExpiry         time.Time           `form:"cqcExpiry" validate:"required"`
	ADRExpiry         *time.Time          `form:"adrExpiry"`
	Status            models.DriverStatus `form:"status" validate:"oneof=active on_leave inactive"`
	AssignedVehicleID string              `form:"assignedVehicleId"`
	HireDate          time.Time           `form:"hireDate" validate:"required"`
	Notes             string              `form:"notes"`
}

func NewDriverForm() *DriverForm {
	f := &DriverForm{}
	f.Reset()
	return f
}

func (f *DriverForm) Reset() {
	*f = DriverForm{Status: models.DriverActive}
}

func (f *DriverForm) Fill(d *models.Driver) {
	f.FirstName = d.FirstName
	f.LastName = d.LastName
	f.FiscalCode = d.FiscalCode
	f.Phone = d.Phone
	f.Email = d.Email
	f.LicenseNumber = d.LicenseNumber
	f.LicenseExpiry = d.LicenseExpiry
	f.CQCExpiry = d.CQCExpiry
	f.ADRExpiry = d.ADRExpiry
	f.Status = d.Status
	f.AssignedVehicleID = d.AssignedVehicleID
	f.HireDate = d.HireDate
	f.Notes = d.Notes
}

func (f *DriverForm) Build(prev *models.Driver) *models.Driver {
	d := &models.Driver{}
	if prev != nil {
		*d = *prev
	}
	d.FirstName = strings.TrimSpace(f.FirstName)
	d.LastName = strings.TrimSpace(f.LastName)
	d.FiscalCode = strings.ToUpper(f.FiscalCode)
	d.Phone = f.Phone
	d.Email = f.Email
	d.LicenseNumber = f.LicenseNumber
	d.LicenseExpiry = f.LicenseExpiry
	d.CQCExpiry = f.CQCExpiry
	d.ADRExpiry = f.ADRExpiry
	d.Status = f.Status
	d.AssignedVehicleID = f.AssignedVehicleID
	d.HireDate = f.HireDate
	d.Notes = f.Notes
	return d
}

// DisplayName previews the driver's name while typing.
func (f *DriverForm) DisplayName() string {
	name := strings.TrimSpace(strings.TrimSpace(f.FirstName) + " " + strings.TrimSpace(f.LastName))
	if name == "" {
		return "Nuovo Autista"
	}
	return name
}

// LicenseExpiringSoon flags the licence for the warning shown next to it.
func (f *DriverForm) LicenseExpiringSoon(now time.Time) bool {
	return models.IsExpiringSoon(f.LicenseExpiry, now)
}

// AvailableVehicles lists the vehicles the driver can be assigned: the
// available ones plus the one already assigned.
func (f *DriverForm) AvailableVehicles(vehicles []*models.Vehicle) []*models.Vehicle {
	out := make([]*models.Vehicle, 0, len(vehicles))
	for _, v := range vehicles {
		if v.Status == models.VehicleAvailable || (f.AssignedVehicleID != "" && v.ID == f.AssignedVehicleID) {
			out = append(out, v)
		}
	}
	return out
}
