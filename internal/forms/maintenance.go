package forms

import (
	"time"

	"github.com/ukydev/fleet-console/internal/models"
)

// MaintenanceForm holds the editable fields of a maintenance record.
type MaintenanceForm struct {
	VehicleID           string                   `form:"vehicleId" validate:"required"`
	Type                models.MaintenanceType   `form:"type" validate:"required,oneof=oil_change tires brakes filters revision repair other"`
	Description         string                   `form:"description" validate:"required"`
	Date                time.Time                `form:"date" validate:"required"`
	Odometer            int                      `form:"odometer" validate:"min=0"`
	Cost                float64                  `form:"cost" validate:"min=0"`
	Workshop            string                   `form:"workshop"`
	InvoiceNumber       string                   `form:"invoiceNumber"`
	NextMaintenanceDate *time.Time               `form:"nextMaintenanceDate"`
	NextMaintenanceKm   *int                     `form:"nextMaintenanceKm" validate:"omitempty,min=0"`
	Status              models.MaintenanceStatus `form:"status" validate:"required,oneof=scheduled in_progress completed cancelled"`
	Notes               string                   `form:"notes"`

	now func() time.Time
}

// NewMaintenanceForm starts a blank form dated today. A non-empty vehicleID
// preselects the vehicle, as when the form is opened from a vehicle page.
func NewMaintenanceForm(vehicleID string, now func() time.Time) *MaintenanceForm {
	if now == nil {
		now = time.Now
	}
	f := &MaintenanceForm{now: now}
	f.Reset()
	f.VehicleID = vehicleID
	return f
}

func (f *MaintenanceForm) Reset() {
	*f = MaintenanceForm{
		Type:   models.MaintenanceOilChange,
		Date:   today(f.now),
		Status: models.MaintenanceScheduled,
		now:    f.now,
	}
}

func (f *MaintenanceForm) Fill(m *models.Maintenance) {
	f.VehicleID = m.VehicleID
	f.Type = m.Type
	f.Description = m.Description
	f.Date = m.Date
	f.Odometer = m.Odometer
	f.Cost = m.Cost
	f.Workshop = m.Workshop
	f.InvoiceNumber = m.InvoiceNumber
	f.NextMaintenanceDate = m.NextMaintenanceDate
	f.NextMaintenanceKm = m.NextMaintenanceKm
	f.Status = m.Status
	f.Notes = m.Notes
}

func (f *MaintenanceForm) Build(prev *models.Maintenance) *models.Maintenance {
	m := &models.Maintenance{}
	if prev != nil {
		*m = *prev
	}
	m.VehicleID = f.VehicleID
	m.Type = f.Type
	m.Description = f.Description
	m.Date = f.Date
	m.Odometer = f.Odometer
	m.Cost = f.Cost
	m.Workshop = f.Workshop
	m.InvoiceNumber = f.InvoiceNumber
	m.NextMaintenanceDate = f.NextMaintenanceDate
	m.NextMaintenanceKm = f.NextMaintenanceKm
	m.Status = f.Status
	m.Notes = f.Notes
	return m
}

func today(now func() time.Time) time.Time {
	if now == nil {
		now = time.Now
	}
	y, m, d := now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
