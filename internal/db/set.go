package db

import (
	"context"

	"github.com/pkg/errors"
	"github.com/ukydev/fleet-console/internal/models"
	"github.com/ukydev/fleet-console/internal/store"
	"go.mongodb.org/mongo-driver/mongo"
)

// Set groups the collection of every resource served by the API.
type Set struct {
	Vehicles    Collection[*models.Vehicle]
	Drivers     Collection[*models.Driver]
	Trips       Collection[*models.Trip]
	Clients     Collection[*models.Client]
	Invoices    Collection[*models.Invoice]
	Maintenance Collection[*models.Maintenance]
	Fuel        Collection[*models.Fuel]
}

func NewMemorySet() Set {
	return Set{
		Vehicles:    NewMemoryCollection[*models.Vehicle](),
		Drivers:     NewMemoryCollection[*models.Driver](),
		Trips:       NewMemoryCollection[*models.Trip](),
		Clients:     NewMemoryCollection[*models.Client](),
		Invoices:    NewMemoryCollection[*models.Invoice](),
		Maintenance: NewMemoryCollection[*models.Maintenance](),
		Fuel:        NewMemoryCollection[*models.Fuel](),
	}
}

func NewMongoSet(database *mongo.Database) Set {
	return Set{
		Vehicles:    NewMongoCollection[*models.Vehicle](database, models.VehicleResource),
		Drivers:     NewMongoCollection[*models.Driver](database, models.DriverResource),
		Trips:       NewMongoCollection[*models.Trip](database, models.TripResource),
		Clients:     NewMongoCollection[*models.Client](database, models.ClientResource),
		Invoices:    NewMongoCollection[*models.Invoice](database, models.InvoiceResource),
		Maintenance: NewMongoCollection[*models.Maintenance](database, models.MaintenanceResource),
		Fuel:        NewMongoCollection[*models.Fuel](database, models.FuelResource),
	}
}

// Snapshot reads every collection in full, in the shape the console
// stores expose.
func (s Set) Snapshot(ctx context.Context) (store.Snapshot, error) {
	var (
		out store.Snapshot
		err error
	)
	if out.Vehicles, err = s.Vehicles.FindAll(ctx); err != nil {
		return out, errors.Wrap(err, "vehicles")
	}
	if out.Drivers, err = s.Drivers.FindAll(ctx); err != nil {
		return out, errors.Wrap(err, "drivers")
	}
	if out.Trips, err = s.Trips.FindAll(ctx); err != nil {
		return out, errors.Wrap(err, "trips")
	}
	if out.Clients, err = s.Clients.FindAll(ctx); err != nil {
		return out, errors.Wrap(err, "clients")
	}
	if out.Invoices, err = s.Invoices.FindAll(ctx); err != nil {
		return out, errors.Wrap(err, "invoices")
	}
	if out.Maintenance, err = s.Maintenance.FindAll(ctx); err != nil {
		return out, errors.Wrap(err, "maintenance")
	}
	if out.Fuel, err = s.Fuel.FindAll(ctx); err != nil {
		return out, errors.Wrap(err, "fuel")
	}
	return out, nil
}
