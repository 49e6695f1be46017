package store

import (
	"context"
	"sync"

	"github.com/ukydev/fleet-console/internal/client"
	"github.com/ukydev/fleet-console/internal/models"
)

// Vehicles is the vehicle collection with its aggregates.
type Vehicles struct {
	*Collection[*models.Vehicle]
}

func NewVehicles(b Backend[*models.Vehicle], opts ...Option) *Vehicles {
	return &Vehicles{NewCollection(models.VehicleResource, b, opts...)}
}

func (v *Vehicles) ByStatus() map[models.VehicleStatus][]*models.Vehicle {
	return GroupBy(v.Items(), func(e *models.Vehicle) models.VehicleStatus { return e.Status })
}

func (v *Vehicles) InTransitCount() int {
	return CountWhere(v.Items(), func(e *models.Vehicle) bool { return e.Status == models.VehicleInTransit })
}

func (v *Vehicles) AvailableCount() int {
	return CountWhere(v.Items(), func(e *models.Vehicle) bool { return e.Status == models.VehicleAvailable })
}

// Drivers is the driver collection with its aggregates.
type Drivers struct {
	*Collection[*models.Driver]
}

func NewDrivers(b Backend[*models.Driver], opts ...Option) *Drivers {
	return &Drivers{NewCollection(models.DriverResource, b, opts...)}
}

func (d *Drivers) ByStatus() map[models.DriverStatus][]*models.Driver {
	return GroupBy(d.Items(), func(e *models.Driver) models.DriverStatus { return e.Status })
}

func (d *Drivers) ActiveCount() int {
	return CountWhere(d.Items(), func(e *models.Driver) bool { return e.Status == models.DriverActive })
}

// Trips is the trip collection with its aggregates.
type Trips struct {
	*Collection[*models.Trip]
}

func NewTrips(b Backend[*models.Trip], opts ...Option) *Trips {
	return &Trips{NewCollection(models.TripResource, b, opts...)}
}

func (t *Trips) ByStatus() map[models.TripStatus][]*models.Trip {
	return GroupBy(t.Items(), func(e *models.Trip) models.TripStatus { return e.Status })
}

func (t *Trips) countStatus(s models.TripStatus) int {
	return CountWhere(t.Items(), func(e *models.Trip) bool { return e.Status == s })
}

func (t *Trips) PlannedCount() int    { return t.countStatus(models.TripPlanned) }
func (t *Trips) InProgressCount() int { return t.countStatus(models.TripInProgress) }
func (t *Trips) CompletedCount() int  { return t.countStatus(models.TripCompleted) }
func (t *Trips) CancelledCount() int  { return t.countStatus(models.TripCancelled) }

// Clients is the client collection with its aggregates.
type Clients struct {
	*Collection[*models.Client]
}

func NewClients(b Backend[*models.Client], opts ...Option) *Clients {
	return &Clients{NewCollection(models.ClientResource, b, opts...)}
}

func (c *Clients) ActiveCount() int {
	return CountWhere(c.Items(), func(e *models.Client) bool { return e.IsActive })
}

func (c *Clients) InactiveCount() int {
	return CountWhere(c.Items(), func(e *models.Client) bool { return !e.IsActive })
}

// Invoices is the invoice collection with its aggregates.
type Invoices struct {
	*Collection[*models.Invoice]
}

func NewInvoices(b Backend[*models.Invoice], opts ...Option) *Invoices {
	return &Invoices{NewCollection(models.InvoiceResource, b, opts...)}
}

// CountByStatus has an entry for every status, zero included.
func (i *Invoices) CountByStatus() map[models.InvoiceStatus]int {
	out := CountBy(i.Items(), func(e *models.Invoice) models.InvoiceStatus { return e.Status })
	for _, s := range models.InvoiceStatuses {
		if _, ok := out[s]; !ok {
			out[s] = 0
		}
	}
	return out
}

// TotalRevenue is the sum of paid invoice totals.
func (i *Invoices) TotalRevenue() float64 {
	return SumOf(i.Items(),
		func(e *models.Invoice) bool { return e.Status == models.InvoicePaid },
		func(e *models.Invoice) float64 { return e.Total })
}

// TotalPending is the sum of sent and overdue invoice totals.
func (i *Invoices) TotalPending() float64 {
	return SumOf(i.Items(),
		func(e *models.Invoice) bool {
			return e.Status == models.InvoiceSent || e.Status == models.InvoiceOverdue
		},
		func(e *models.Invoice) float64 { return e.Total })
}

// MaintenanceRecords is the maintenance collection with its aggregates.
type MaintenanceRecords struct {
	*Collection[*models.Maintenance]
}

func NewMaintenanceRecords(b Backend[*models.Maintenance], opts ...Option) *MaintenanceRecords {
	return &MaintenanceRecords{NewCollection(models.MaintenanceResource, b, opts...)}
}

func (m *MaintenanceRecords) ByStatus() map[models.MaintenanceStatus][]*models.Maintenance {
	return GroupBy(m.Items(), func(e *models.Maintenance) models.MaintenanceStatus { return e.Status })
}

func (m *MaintenanceRecords) ByType() map[models.MaintenanceType][]*models.Maintenance {
	return GroupBy(m.Items(), func(e *models.Maintenance) models.MaintenanceType { return e.Type })
}

// TotalCost only counts completed jobs.
func (m *MaintenanceRecords) TotalCost() float64 {
	return SumOf(m.Items(),
		func(e *models.Maintenance) bool { return e.Status == models.MaintenanceCompleted },
		func(e *models.Maintenance) float64 { return e.Cost })
}

func (m *MaintenanceRecords) ScheduledCount() int {
	return CountWhere(m.Items(), func(e *models.Maintenance) bool { return e.Status == models.MaintenanceScheduled })
}

func (m *MaintenanceRecords) CompletedCount() int {
	return CountWhere(m.Items(), func(e *models.Maintenance) bool { return e.Status == models.MaintenanceCompleted })
}

// FuelRecords is the refuelling collection with its aggregates.
type FuelRecords struct {
	*Collection[*models.Fuel]
}

func NewFuelRecords(b Backend[*models.Fuel], opts ...Option) *FuelRecords {
	return &FuelRecords{NewCollection(models.FuelResource, b, opts...)}
}

func (f *FuelRecords) ByType() map[models.FuelType][]*models.Fuel {
	return GroupBy(f.Items(), func(e *models.Fuel) models.FuelType { return e.FuelType })
}

func (f *FuelRecords) TotalLiters() float64 {
	return SumOf(f.Items(), nil, func(e *models.Fuel) float64 { return e.Liters })
}

func (f *FuelRecords) TotalCost() float64 {
	return SumOf(f.Items(), nil, func(e *models.Fuel) float64 { return e.TotalCost })
}

// AveragePricePerLiter is the plain mean of the recorded prices, 0 when empty.
func (f *FuelRecords) AveragePricePerLiter() float64 {
	return AverageOf(f.Items(), func(e *models.Fuel) float64 { return e.PricePerLiter })
}

// Fleet bundles the seven collections of the console.
type Fleet struct {
	Vehicles    *Vehicles
	Drivers     *Drivers
	Trips       *Trips
	Clients     *Clients
	Invoices    *Invoices
	Maintenance *MaintenanceRecords
	Fuel        *FuelRecords
}

// NewFleet wires every collection to its REST resource on c.
func NewFleet(c *client.Client, opts ...Option) *Fleet {
	return &Fleet{
		Vehicles:    NewVehicles(client.For[*models.Vehicle](c, models.VehicleResource), opts...),
		Drivers:     NewDrivers(client.For[*models.Driver](c, models.DriverResource), opts...),
		Trips:       NewTrips(client.For[*models.Trip](c, models.TripResource), opts...),
		Clients:     NewClients(client.For[*models.Client](c, models.ClientResource), opts...),
		Invoices:    NewInvoices(client.For[*models.Invoice](c, models.InvoiceResource), opts...),
		Maintenance: NewMaintenanceRecords(client.For[*models.Maintenance](c, models.MaintenanceResource), opts...),
		Fuel:        NewFuelRecords(client.For[*models.Fuel](c, models.FuelResource), opts...),
	}
}

// LoadAll refreshes every collection concurrently. Failures are recorded
// on the individual collections.
func (f *Fleet) LoadAll(ctx context.Context) {
	loaders := []func(context.Context){
		func(ctx context.Context) { f.Vehicles.LoadAll(ctx) },
		func(ctx context.Context) { f.Drivers.LoadAll(ctx) },
		func(ctx context.Context) { f.Trips.LoadAll(ctx) },
		func(ctx context.Context) { f.Clients.LoadAll(ctx) },
		func(ctx context.Context) { f.Invoices.LoadAll(ctx) },
		func(ctx context.Context) { f.Maintenance.LoadAll(ctx) },
		func(ctx context.Context) { f.Fuel.LoadAll(ctx) },
	}
	var wg sync.WaitGroup
	for _, load := range loaders {
		wg.Add(1)
		go func(load func(context.Context)) {
			defer wg.Done()
			load(ctx)
		}(load)
	}
	wg.Wait()
}

// Reload refreshes the collection served at path, as named in change
// events. It reports false for an unknown path.
func (f *Fleet) Reload(ctx context.Context, path string) bool {
	switch path {
	case models.VehicleResource.Path:
		f.Vehicles.LoadAll(ctx)
	case models.DriverResource.Path:
		f.Drivers.LoadAll(ctx)
	case models.TripResource.Path:
		f.Trips.LoadAll(ctx)
	case models.ClientResource.Path:
		f.Clients.LoadAll(ctx)
	case models.InvoiceResource.Path:
		f.Invoices.LoadAll(ctx)
	case models.MaintenanceResource.Path:
		f.Maintenance.LoadAll(ctx)
	case models.FuelResource.Path:
		f.Fuel.LoadAll(ctx)
	default:
		return false
	}
	return true
}

// Errors returns the load error of every collection that has one, keyed by
// resource path.
func (f *Fleet) Errors() map[string]string {
	out := make(map[string]string)
	for path, msg := range map[string]string{
		models.VehicleResource.Path:     f.Vehicles.LastError(),
		models.DriverResource.Path:      f.Drivers.LastError(),
		models.TripResource.Path:        f.Trips.LastError(),
		models.ClientResource.Path:      f.Clients.LastError(),
		models.InvoiceResource.Path:     f.Invoices.LastError(),
		models.MaintenanceResource.Path: f.Maintenance.LastError(),
		models.FuelResource.Path:        f.Fuel.LastError(),
	} {
		if msg != "" {
			out[path] = msg
		}
	}
	return out
}

// Snapshot is a point-in-time copy of every list.
type Snapshot struct {
	Vehicles    []*models.Vehicle
	Drivers     []*models.Driver
	Trips       []*models.Trip
	Clients     []*models.Client
	Invoices    []*models.Invoice
	Maintenance []*models.Maintenance
	Fuel        []*models.Fuel
}

func (f *Fleet) Snapshot() Snapshot {
	return Snapshot{
		Vehicles:    f.Vehicles.Items(),
		Drivers:     f.Drivers.Items(),
		Trips:       f.Trips.Items(),
		Clients:     f.Clients.Items(),
		Invoices:    f.Invoices.Items(),
		Maintenance: f.Maintenance.Items(),
		Fuel:        f.Fuel.Items(),
	}
}
