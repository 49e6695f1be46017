package search

import "github.com/ukydev/fleet-console/internal/models"

// VehicleFilter searches plate, brand and model.
type VehicleFilter struct {
	Query  string
	Status models.VehicleStatus
}

func (f VehicleFilter) Apply(items []*models.Vehicle) []*models.Vehicle {
	return Apply(items,
		Equals(f.Status, func(v *models.Vehicle) models.VehicleStatus { return v.Status }),
		Text(f.Query, func(v *models.Vehicle) []string {
			return []string{v.Plate, v.Brand, v.Model}
		}),
	)
}

// DriverFilter searches name, fiscal code and phone.
type DriverFilter struct {
	Query  string
	Status models.DriverStatus
}

func (f DriverFilter) Apply(items []*models.Driver) []*models.Driver {
	return Apply(items,
		Equals(f.Status, func(d *models.Driver) models.DriverStatus { return d.Status }),
		Text(f.Query, func(d *models.Driver) []string {
			return []string{d.FirstName, d.LastName, d.FullName(), d.FiscalCode, d.Phone}
		}),
	)
}

// ClientFilter searches company name, VAT number, city and email. A nil
// Active matches both active and inactive clients.
type ClientFilter struct {
	Query  string
	Active *bool
}

func (f ClientFilter) Apply(items []*models.Client) []*models.Client {
	var active Predicate[*models.Client]
	if f.Active != nil {
		want := *f.Active
		active = func(c *models.Client) bool { return c.IsActive == want }
	}
	return Apply(items,
		active,
		Text(f.Query, func(c *models.Client) []string {
			return []string{c.CompanyName, c.VatNumber, c.City, c.Email}
		}),
	)
}

// TripFilter searches the trip's own fields plus the plate, brand and
// model of its vehicle, its driver's name and its client's company.
type TripFilter struct {
	Query     string
	Status    models.TripStatus
	VehicleID string
	DriverID  string
	ClientID  string
}

func (f TripFilter) Apply(items []*models.Trip, refs Refs) []*models.Trip {
	return Apply(items,
		Equals(f.Status, func(t *models.Trip) models.TripStatus { return t.Status }),
		Equals(f.VehicleID, func(t *models.Trip) string { return t.VehicleID }),
		Equals(f.DriverID, func(t *models.Trip) string { return t.DriverID }),
		Equals(f.ClientID, func(t *models.Trip) string { return t.ClientID }),
		Text(f.Query, func(t *models.Trip) []string {
			fields := []string{
				t.TripNumber,
				t.Origin.City, t.Destination.City,
				t.Origin.CompanyName, t.Destination.CompanyName,
				t.Cargo.Description,
				refs.DriverName(t.DriverID),
				refs.ClientName(t.ClientID),
			}
			if v, ok := refs.Vehicle(t.VehicleID); ok {
				fields = append(fields, v.Plate, v.Brand, v.Model)
			}
			return fields
		}),
	)
}

// InvoiceFilter searches the invoice number and the client's company.
type InvoiceFilter struct {
	Query    string
	Status   models.InvoiceStatus
	ClientID string
}

func (f InvoiceFilter) Apply(items []*models.Invoice, refs Refs) []*models.Invoice {
	return Apply(items,
		Equals(f.Status, func(i *models.Invoice) models.InvoiceStatus { return i.Status }),
		Equals(f.ClientID, func(i *models.Invoice) string { return i.ClientID }),
		Text(f.Query, func(i *models.Invoice) []string {
			return []string{i.InvoiceNumber, refs.ClientName(i.ClientID)}
		}),
	)
}

// MaintenanceFilter searches description, workshop and the vehicle plate,
// falling back to the raw vehicle id when the vehicle is unknown.
type MaintenanceFilter struct {
	Query     string
	Status    models.MaintenanceStatus
	Type      models.MaintenanceType
	VehicleID string
}

func (f MaintenanceFilter) Apply(items []*models.Maintenance, refs Refs) []*models.Maintenance {
	return Apply(items,
		Equals(f.Status, func(m *models.Maintenance) models.MaintenanceStatus { return m.Status }),
		Equals(f.Type, func(m *models.Maintenance) models.MaintenanceType { return m.Type }),
		Equals(f.VehicleID, func(m *models.Maintenance) string { return m.VehicleID }),
		Text(f.Query, func(m *models.Maintenance) []string {
			plate := refs.VehiclePlate(m.VehicleID)
			if plate == "" {
				plate = m.VehicleID
			}
			return []string{m.Description, m.Workshop, plate}
		}),
	)
}

// FuelFilter searches station, fuel type, vehicle id and vehicle plate.
type FuelFilter struct {
	Query     string
	FuelType  models.FuelType
	VehicleID string
}

func (f FuelFilter) Apply(items []*models.Fuel, refs Refs) []*models.Fuel {
	return Apply(items,
		Equals(f.FuelType, func(r *models.Fuel) models.FuelType { return r.FuelType }),
		Equals(f.VehicleID, func(r *models.Fuel) string { return r.VehicleID }),
		Text(f.Query, func(r *models.Fuel) []string {
			return []string{r.StationName, string(r.FuelType), r.FuelType.Label(), r.VehicleID, refs.VehiclePlate(r.VehicleID)}
		}),
	)
}
