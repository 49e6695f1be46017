package search

import (
	"github.com/ukydev/fleet-console/internal/models"
	"github.com/ukydev/fleet-console/internal/store"
)

// Refs resolves by-id references between entities. A missing id resolves
// to the zero value, never an error.
type Refs struct {
	vehicles map[string]*models.Vehicle
	drivers  map[string]*models.Driver
	clients  map[string]*models.Client
}

func NewRefs(vehicles []*models.Vehicle, drivers []*models.Driver, clients []*models.Client) Refs {
	r := Refs{
		vehicles: make(map[string]*models.Vehicle, len(vehicles)),
		drivers:  make(map[string]*models.Driver, len(drivers)),
		clients:  make(map[string]*models.Client, len(clients)),
	}
	for _, v := range vehicles {
		r.vehicles[v.ID] = v
	}
	for _, d := range drivers {
		r.drivers[d.ID] = d
	}
	for _, c := range clients {
		r.clients[c.ID] = c
	}
	return r
}

// RefsFrom indexes the lists of a fleet snapshot.
func RefsFrom(s store.Snapshot) Refs {
	return NewRefs(s.Vehicles, s.Drivers, s.Clients)
}

func (r Refs) Vehicle(id string) (*models.Vehicle, bool) {
	v, ok := r.vehicles[id]
	return v, ok
}

func (r Refs) Driver(id string) (*models.Driver, bool) {
	d, ok := r.drivers[id]
	return d, ok
}

func (r Refs) Client(id string) (*models.Client, bool) {
	c, ok := r.clients[id]
	return c, ok
}

// VehiclePlate returns the plate of id, or "" when unknown.
func (r Refs) VehiclePlate(id string) string {
	if v, ok := r.vehicles[id]; ok {
		return v.Plate
	}
	return ""
}

// DriverName returns the full name of id, or "" when unknown.
func (r Refs) DriverName(id string) string {
	if d, ok := r.drivers[id]; ok {
		return d.FullName()
	}
	return ""
}

// ClientName returns the company name of id, or "" when unknown.
func (r Refs) ClientName(id string) string {
	if c, ok := r.clients[id]; ok {
		return c.CompanyName
	}
	return ""
}
