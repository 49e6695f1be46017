package models

import "time"

// MaintenanceType is the kind of work performed on a vehicle.
type MaintenanceType string

const (
	MaintenanceOilChange MaintenanceType = "oil_change"
	MaintenanceTires     MaintenanceType = "tires"
	MaintenanceBrakes    MaintenanceType = "brakes"
	MaintenanceFilters   MaintenanceType = "filters"
	MaintenanceRevision  MaintenanceType = "revision"
	MaintenanceRepair    MaintenanceType = "repair"
	MaintenanceOther     MaintenanceType = "other"
)

var MaintenanceTypes = []MaintenanceType{
	MaintenanceOilChange, MaintenanceTires, MaintenanceBrakes, MaintenanceFilters,
	MaintenanceRevision, MaintenanceRepair, MaintenanceOther,
}

var maintenanceTypeLabels = map[MaintenanceType]string{
	MaintenanceOilChange: "Cambio Olio",
	MaintenanceTires:     "Pneumatici",
	MaintenanceBrakes:    "Freni",
	MaintenanceFilters:   "Filtri",
	MaintenanceRevision:  "Revisione",
	MaintenanceRepair:    "Riparazione",
	MaintenanceOther:     "Altro",
}

func (t MaintenanceType) IsValid() bool {
	_, ok := maintenanceTypeLabels[t]
	return ok
}

func (t MaintenanceType) Label() string {
	return maintenanceTypeLabels[t]
}

// MaintenanceStatus is the progress of a maintenance job.
type MaintenanceStatus string

const (
	MaintenanceScheduled  MaintenanceStatus = "scheduled"
	MaintenanceInProgress MaintenanceStatus = "in_progress"
	MaintenanceCompleted  MaintenanceStatus = "completed"
	MaintenanceCancelled  MaintenanceStatus = "cancelled"
)

var MaintenanceStatuses = []MaintenanceStatus{
	MaintenanceScheduled, MaintenanceInProgress, MaintenanceCompleted, MaintenanceCancelled,
}

var maintenanceStatusLabels = map[MaintenanceStatus]string{
	MaintenanceScheduled:  "Programmata",
	MaintenanceInProgress: "In Corso",
	MaintenanceCompleted:  "Completata",
	MaintenanceCancelled:  "Annullata",
}

func (s MaintenanceStatus) IsValid() bool {
	_, ok := maintenanceStatusLabels[s]
	return ok
}

func (s MaintenanceStatus) Label() string {
	return maintenanceStatusLabels[s]
}

// Maintenance represents a vehicle maintenance record.
type Maintenance struct {
	Base                `bson:",inline"`
	VehicleID           string            `json:"vehicleId" bson:"vehicleId"`
	Type                MaintenanceType   `json:"type" bson:"type"`
	Description         string            `json:"description" bson:"description"`
	Date                time.Time         `json:"date" bson:"date"`
	Odometer            int               `json:"odometer" bson:"odometer"` // km
	Cost                float64           `json:"cost" bson:"cost"`         // EUR
	Workshop            string            `json:"workshop,omitempty" bson:"workshop,omitempty"`
	InvoiceNumber       string            `json:"invoiceNumber,omitempty" bson:"invoiceNumber,omitempty"`
	NextMaintenanceDate *time.Time        `json:"nextMaintenanceDate,omitempty" bson:"nextMaintenanceDate,omitempty"`
	NextMaintenanceKm   *int              `json:"nextMaintenanceKm,omitempty" bson:"nextMaintenanceKm,omitempty"`
	Status              MaintenanceStatus `json:"status" bson:"status"`
	Notes               string            `json:"notes,omitempty" bson:"notes,omitempty"`
}

// Validate implements Entity.
func (m *Maintenance) Validate() error {
	if err := m.Base.Validate(); err != nil {
		return err
	}
	if !m.Type.IsValid() {
		return enumError("type", m.Type)
	}
	if !m.Status.IsValid() {
		return enumError("status", m.Status)
	}
	if m.Cost < 0 {
		return &ValidationError{Field: "cost", Reason: "must not be negative"}
	}
	return nil
}

// ApplyDefaults implements Defaulter.
func (m *Maintenance) ApplyDefaults() {
	if m.Status == "" {
		m.Status = MaintenanceScheduled
	}
}
