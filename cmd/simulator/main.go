package main

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/fleet-console/internal/client"
	"github.com/ukydev/fleet-console/internal/config"
	"github.com/ukydev/fleet-console/internal/logging"
	"github.com/ukydev/fleet-console/internal/models"
	"github.com/ukydev/fleet-console/internal/store"
)

type Location struct {
	Lat float64
	Lon float64
}

type City struct {
	Name       string
	Province   string
	PostalCode string
	Location
}

var cities = []City{
	{"Milano", "MI", "20121", Location{45.4642, 9.1900}},
	{"Roma", "RM", "00184", Location{41.9028, 12.4964}},
	{"Torino", "TO", "10121", Location{45.0703, 7.6869}},
	{"Napoli", "NA", "80133", Location{40.8518, 14.2681}},
	{"Bologna", "BO", "40121", Location{44.4949, 11.3426}},
	{"Firenze", "FI", "50123", Location{43.7696, 11.2558}},
	{"Verona", "VR", "37121", Location{45.4384, 10.9916}},
	{"Genova", "GE", "16121", Location{44.4056, 8.9463}},
	{"Bari", "BA", "70121", Location{41.1171, 16.8719}},
	{"Padova", "PD", "35122", Location{45.4064, 11.8768}},
}

var makes = []struct {
	Brand  string
	Models []string
}{
	{"Iveco", []string{"Daily", "Eurocargo", "S-Way"}},
	{"Mercedes-Benz", []string{"Sprinter", "Actros"}},
	{"Volvo", []string{"FH", "FM"}},
	{"Scania", []string{"R450", "G410"}},
	{"Fiat", []string{"Ducato"}},
}

var (
	firstNames = []string{"Marco", "Luca", "Giuseppe", "Andrea", "Paolo", "Giulia", "Francesca", "Stefano"}
	lastNames  = []string{"Rossi", "Bianchi", "Esposito", "Romano", "Colombo", "Ricci", "Marino", "Greco"}
	companies  = []string{"Logistica", "Trasporti", "Alimentari", "Distribuzione", "Ricambi", "Edilizia"}
	workshops  = []string{"Officina Centrale", "AutoService Nord", "Truck Point", "Gommista Rapido"}
	stations   = []string{"Eni", "Q8", "IP", "Tamoil", "Esso"}
	cargoes    = []string{"Bancali alimentari", "Materiale edile", "Ricambi auto", "Elettrodomestici", "Carta e cartone"}
)

// roadFactor converts straight-line distance into an estimate of road km.
const roadFactor = 1.25

func haversineKm(a, b Location) float64 {
	R := 6371.0
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	s := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(s), math.Sqrt(1-s))
	return R * c
}

func lerp(a, b Location, t float64) Location {
	return Location{Lat: a.Lat + (b.Lat-a.Lat)*t, Lon: a.Lon + (b.Lon-a.Lon)*t}
}

// jitterLocation moves base by up to meters in a random direction.
func jitterLocation(rng *rand.Rand, base Location, meters float64) Location {
	const metersPerDegLat = 111_320.0
	metersPerDegLon := metersPerDegLat * math.Cos(base.Lat*math.Pi/180)
	angle := rng.Float64() * 2 * math.Pi
	dist := rng.Float64() * meters
	return Location{
		Lat: base.Lat + dist*math.Sin(angle)/metersPerDegLat,
		Lon: base.Lon + dist*math.Cos(angle)/metersPerDegLon,
	}
}

func pick[T any](rng *rand.Rand, items []T) T {
	return items[rng.Intn(len(items))]
}

// seeder fills an empty backend with a coherent demo fleet through the
// console stores.
type seeder struct {
	fleet *store.Fleet
	rng   *rand.Rand
	now   time.Time
	log   log.FieldLogger
}

func (s *seeder) day(offset int) time.Time {
	d := s.now.AddDate(0, 0, offset)
	return time.Date(d.Year(), d.Month(), d.Day(), 8, 0, 0, 0, time.UTC)
}

func (s *seeder) dayPtr(offset int) *time.Time {
	d := s.day(offset)
	return &d
}

func (s *seeder) createVehicle(ctx context.Context, n int) (*models.Vehicle, error) {
	mk := pick(s.rng, makes)
	brand, model := mk.Brand, pick(s.rng, mk.Models)

	v := &models.Vehicle{
		Plate:           fmt.Sprintf("%c%c%03d%c%c", 'A'+rune(s.rng.Intn(26)), 'A'+rune(s.rng.Intn(26)), n, 'A'+rune(s.rng.Intn(26)), 'A'+rune(s.rng.Intn(26))),
		Brand:           brand,
		Model:           model,
		Year:            2015 + s.rng.Intn(s.now.Year()-2015+1),
		Status:          models.VehicleAvailable,
		KmTotal:         20_000 + s.rng.Intn(400_000),
		InsuranceExpiry: s.dayPtr(s.rng.Intn(400) - 20),
		RevisionExpiry:  s.dayPtr(s.rng.Intn(400) - 20),
	}
	created, err := s.fleet.Vehicles.Create(ctx, v)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(log.Fields{
		"vehicle_id": created.ID,
		"plate":      created.Plate,
		"make":       brand,
		"model":      model,
	}).Info("Created vehicle")
	return created, nil
}

func (s *seeder) createDriver(ctx context.Context, n int, vehicleID string) (*models.Driver, error) {
	first, last := pick(s.rng, firstNames), pick(s.rng, lastNames)
	d := &models.Driver{
		FirstName:         first,
		LastName:          last,
		FiscalCode:        fmt.Sprintf("%.3s%.3s80A01F205%c", last+"XXX", first+"XXX", 'A'+rune(n%26)),
		Phone:             fmt.Sprintf("+39 3%02d %07d", s.rng.Intn(100), s.rng.Intn(10_000_000)),
		LicenseNumber:     fmt.Sprintf("MI%07dX", s.rng.Intn(10_000_000)),
		LicenseExpiry:     s.day(s.rng.Intn(900) - 10),
		CQCExpiry:         s.day(s.rng.Intn(900) - 10),
		Status:            models.DriverActive,
		AssignedVehicleID: vehicleID,
		HireDate:          s.day(-365 * (1 + s.rng.Intn(10))),
	}
	if s.rng.Intn(3) == 0 {
		d.ADRExpiry = s.dayPtr(s.rng.Intn(700))
	}
	created, err := s.fleet.Drivers.Create(ctx, d)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(log.Fields{"driver_id": created.ID, "name": created.FullName()}).Info("Created driver")
	return created, nil
}

func (s *seeder) createClient(ctx context.Context, n int) (*models.Client, error) {
	city := pick(s.rng, cities)
	name := fmt.Sprintf("%s %s S.r.l.", pick(s.rng, companies), city.Name)
	c := &models.Client{
		CompanyName: name,
		VatNumber:   fmt.Sprintf("%011d", 10_000_000_000+int64(n)*7_919),
		Address:     fmt.Sprintf("Via Roma %d", 1+s.rng.Intn(200)),
		City:        city.Name,
		Province:    city.Province,
		PostalCode:  city.PostalCode,
		Phone:       fmt.Sprintf("+39 0%d %07d", 2+s.rng.Intn(8), s.rng.Intn(10_000_000)),
		Email:       fmt.Sprintf("info@cliente%d.it", n),
		SDICode:     "0000000",
		IsActive:    s.rng.Intn(5) != 0,
	}
	created, err := s.fleet.Clients.Create(ctx, c)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(log.Fields{"client_id": created.ID, "company": created.CompanyName}).Info("Created client")
	return created, nil
}

func address(c City) models.Address {
	lat, lng := c.Lat, c.Lon
	return models.Address{
		Address:    "Zona Industriale",
		City:       c.Name,
		Province:   c.Province,
		PostalCode: c.PostalCode,
		Country:    models.DefaultCountry,
		Lat:        &lat,
		Lng:        &lng,
	}
}

// routeBetween picks two distinct cities.
func (s *seeder) routeBetween() (City, City) {
	from := pick(s.rng, cities)
	to := pick(s.rng, cities)
	for to.Name == from.Name {
		to = pick(s.rng, cities)
	}
	return from, to
}

// createTrip plans a trip departing dayOffset days from now. Past trips are
// completed, today's are in progress and future ones planned.
func (s *seeder) createTrip(ctx context.Context, n, dayOffset int, v *models.Vehicle, d *models.Driver, c *models.Client) (*models.Trip, error) {
	from, to := s.routeBetween()
	km := math.Round(haversineKm(from.Location, to.Location) * roadFactor)
	departure := s.day(dayOffset)
	arrival := departure.Add(time.Duration(km/70*float64(time.Hour)) + time.Hour)

	t := &models.Trip{
		TripNumber:       fmt.Sprintf("TR-%03d", n),
		VehicleID:        v.ID,
		DriverID:         d.ID,
		ClientID:         c.ID,
		Origin:           address(from),
		Destination:      address(to),
		Cargo:            models.Cargo{Description: pick(s.rng, cargoes), Weight: float64(500 + s.rng.Intn(20_000))},
		PlannedDeparture: departure,
		PlannedArrival:   arrival,
		KmPlanned:        km,
		Price:            models.Round2(km * (1.4 + s.rng.Float64())),
	}
	switch {
	case dayOffset < 0:
		t.Status = models.TripCompleted
		actual := math.Round(km * (0.95 + s.rng.Float64()*0.1))
		t.ActualDeparture = &departure
		t.ActualArrival = &arrival
		t.KmActual = &actual
	case dayOffset == 0:
		t.Status = models.TripInProgress
		t.ActualDeparture = &departure
	default:
		t.Status = models.TripPlanned
	}
	if s.rng.Intn(12) == 0 && t.Status == models.TripPlanned {
		t.Status = models.TripCancelled
	}
	created, err := s.fleet.Trips.Create(ctx, t)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(log.Fields{
		"trip_id": created.ID,
		"route":   created.Route(),
		"status":  created.Status,
	}).Info("Created trip")
	return created, nil
}

func (s *seeder) createInvoice(ctx context.Context, n int, c *models.Client, trips []*models.Trip) (*models.Invoice, error) {
	issue := s.day(-s.rng.Intn(60))
	inv := &models.Invoice{
		InvoiceNumber: fmt.Sprintf("%d/%04d", s.now.Year(), n),
		ClientID:      c.ID,
		IssueDate:     issue,
		DueDate:       issue.AddDate(0, 0, 30),
		Status:        pick(s.rng, []models.InvoiceStatus{models.InvoiceDraft, models.InvoiceSent, models.InvoiceSent, models.InvoicePaid}),
		VatRate:       models.DefaultVatRate,
	}
	for _, t := range trips {
		inv.Items = append(inv.Items, models.InvoiceItem{
			Description: fmt.Sprintf("Viaggio %s %s", t.TripNumber, t.Route()),
			Quantity:    1,
			UnitPrice:   t.Price,
			TripID:      t.ID,
		})
	}
	if inv.Status == models.InvoicePaid {
		inv.PaidDate = s.dayPtr(-s.rng.Intn(10))
		if inv.PaidDate.Before(issue) {
			inv.PaidDate = &issue
		}
	}
	inv.Recalculate()
	created, err := s.fleet.Invoices.Create(ctx, inv)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(log.Fields{"invoice_id": created.ID, "number": created.InvoiceNumber, "total": created.Total}).Info("Created invoice")
	return created, nil
}

func (s *seeder) createMaintenance(ctx context.Context, v *models.Vehicle) (*models.Maintenance, error) {
	typ := pick(s.rng, models.MaintenanceTypes)
	offset := s.rng.Intn(90) - 60
	m := &models.Maintenance{
		VehicleID:   v.ID,
		Type:        typ,
		Description: typ.Label() + " " + v.Brand + " " + v.Model,
		Date:        s.day(offset),
		Odometer:    v.KmTotal - s.rng.Intn(5_000),
		Cost:        models.Round2(80 + s.rng.Float64()*1_500),
		Workshop:    pick(s.rng, workshops),
		Status:      models.MaintenanceCompleted,
	}
	if offset > 0 {
		m.Status = models.MaintenanceScheduled
	}
	created, err := s.fleet.Maintenance.Create(ctx, m)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(log.Fields{"maintenance_id": created.ID, "vehicle_id": v.ID, "type": typ}).Info("Created maintenance")
	return created, nil
}

// createRefuels records count full-tank refuels at a steady consumption.
func (s *seeder) createRefuels(ctx context.Context, v *models.Vehicle, d *models.Driver, count int) error {
	odometer := v.KmTotal - count*900
	per100 := 25 + s.rng.Float64()*10
	for i := 0; i < count; i++ {
		km := 700 + s.rng.Intn(400)
		odometer += km
		liters := math.Round(float64(km)*per100/100*10) / 10
		f := &models.Fuel{
			VehicleID:     v.ID,
			DriverID:      d.ID,
			Date:          s.day(-(count - i) * 4),
			Liters:        liters,
			PricePerLiter: models.Round2(1.65 + s.rng.Float64()*0.2),
			FuelType:      models.FuelDiesel,
			StationName:   pick(s.rng, stations),
			Odometer:      odometer,
			FullTank:      true,
		}
		f.TotalCost = models.FuelTotal(f.Liters, f.PricePerLiter)
		if _, err := s.fleet.Fuel.Create(ctx, f); err != nil {
			return err
		}
	}
	s.log.WithFields(log.Fields{"vehicle_id": v.ID, "records": count}).Info("Created refuels")
	return nil
}

// seed creates size vehicles with a driver each, their trips, refuels and
// maintenance, a handful of clients and one invoice per client.
func (s *seeder) seed(ctx context.Context, size int) error {
	var clients []*models.Client
	for i := 1; i <= max(3, size/2); i++ {
		c, err := s.createClient(ctx, i)
		if err != nil {
			return errors.Wrap(err, "failed to create client")
		}
		clients = append(clients, c)
	}

	tripsByClient := make(map[string][]*models.Trip)
	tripNo := 0
	for i := 1; i <= size; i++ {
		v, err := s.createVehicle(ctx, i)
		if err != nil {
			return errors.Wrap(err, "failed to create vehicle")
		}
		d, err := s.createDriver(ctx, i, v.ID)
		if err != nil {
			return errors.Wrap(err, "failed to create driver")
		}
		if _, err := s.fleet.Vehicles.Update(ctx, v.ID, models.Patch{"currentDriverId": d.ID}); err != nil {
			return errors.Wrap(err, "failed to assign driver")
		}

		for _, offset := range []int{-40, -12, -3, 0, 2} {
			if offset == 0 && i%2 == 0 {
				continue
			}
			tripNo++
			c := clients[(i+tripNo)%len(clients)]
			t, err := s.createTrip(ctx, tripNo, offset, v, d, c)
			if err != nil {
				return errors.Wrap(err, "failed to create trip")
			}
			if t.Status == models.TripCompleted {
				tripsByClient[c.ID] = append(tripsByClient[c.ID], t)
			}
			if t.Status == models.TripInProgress {
				from := t.Origin
				pos := models.GeoPosition{Lat: *from.Lat, Lng: *from.Lng, Timestamp: s.now}
				if _, err := s.fleet.Vehicles.Update(ctx, v.ID, models.Patch{
					"status":       models.VehicleInTransit,
					"lastPosition": pos,
				}); err != nil {
					return errors.Wrap(err, "failed to mark vehicle in transit")
				}
			}
		}

		if err := s.createRefuels(ctx, v, d, 4); err != nil {
			return errors.Wrap(err, "failed to create refuel")
		}
		if _, err := s.createMaintenance(ctx, v); err != nil {
			return errors.Wrap(err, "failed to create maintenance")
		}
	}

	n := 0
	for _, c := range clients {
		trips := tripsByClient[c.ID]
		if len(trips) == 0 {
			continue
		}
		n++
		if _, err := s.createInvoice(ctx, n, c, trips); err != nil {
			return errors.Wrap(err, "failed to create invoice")
		}
	}
	return nil
}

// --- Movement ---

// VehicleState tracks a vehicle driving a trip from origin to destination.
type VehicleState struct {
	VehicleID string
	Position  Location
	Target    Location
	SpeedKmh  float64
}

// step advances s towards its target by tick at the current speed and
// reports whether the target was reached.
func (s *VehicleState) step(tick time.Duration) bool {
	remaining := haversineKm(s.Position, s.Target)
	km := s.SpeedKmh * tick.Hours()
	if remaining <= km || remaining == 0 {
		s.Position = s.Target
		return true
	}
	s.Position = lerp(s.Position, s.Target, km/remaining)
	return false
}

// inTransit builds a state per vehicle currently driving a trip.
func inTransit(rng *rand.Rand, snap store.Snapshot) []*VehicleState {
	trips := make(map[string]*models.Trip)
	for _, t := range snap.Trips {
		if t.Status == models.TripInProgress {
			trips[t.VehicleID] = t
		}
	}
	var states []*VehicleState
	for _, v := range snap.Vehicles {
		t, ok := trips[v.ID]
		if !ok || t.Destination.Lat == nil || t.Destination.Lng == nil {
			continue
		}
		st := &VehicleState{
			VehicleID: v.ID,
			Target:    Location{Lat: *t.Destination.Lat, Lon: *t.Destination.Lng},
			SpeedKmh:  60 + rng.Float64()*30,
		}
		switch {
		case v.LastPosition != nil:
			st.Position = Location{Lat: v.LastPosition.Lat, Lon: v.LastPosition.Lng}
		case t.Origin.Lat != nil && t.Origin.Lng != nil:
			st.Position = Location{Lat: *t.Origin.Lat, Lon: *t.Origin.Lng}
		default:
			st.Position = jitterLocation(rng, st.Target, 50_000)
		}
		states = append(states, st)
	}
	return states
}

// sendPosition reports the vehicle's position as a partial update.
func sendPosition(ctx context.Context, fleet *store.Fleet, s *VehicleState, at time.Time) error {
	pos := models.GeoPosition{Lat: s.Position.Lat, Lng: s.Position.Lon, Timestamp: at}
	_, err := fleet.Vehicles.Update(ctx, s.VehicleID, models.Patch{"lastPosition": pos})
	return err
}

// simulate moves every in-transit vehicle each interval until ctx ends.
// Vehicles that reach their destination are parked as available.
func simulate(ctx context.Context, fleet *store.Fleet, states []*VehicleState, interval time.Duration, logger log.FieldLogger) {
	tick := time.NewTicker(interval)
	defer tick.Stop()
	for len(states) > 0 {
		select {
		case <-ctx.Done():
			return
		case now := <-tick.C:
			active := states[:0]
			for _, s := range states {
				arrived := s.step(interval)
				if err := sendPosition(ctx, fleet, s, now); err != nil {
					logger.WithError(err).WithField("vehicle_id", s.VehicleID).Error("Failed to send position")
					continue
				}
				if !arrived {
					active = append(active, s)
					continue
				}
				if _, err := fleet.Vehicles.Update(ctx, s.VehicleID, models.Patch{"status": models.VehicleAvailable}); err != nil {
					logger.WithError(err).WithField("vehicle_id", s.VehicleID).Error("Failed to park vehicle")
				}
				logger.WithField("vehicle_id", s.VehicleID).Info("Vehicle reached destination")
			}
			states = active
		}
	}
}

func envInt(key string, def, minimum int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= minimum {
			return n
		}
	}
	return def
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.WithError(err).Fatal("Failed to configure logging")
	}

	fleetSize := envInt("FLEET_SIZE", 10, 1)
	interval := time.Duration(envInt("SIM_TICK_SECONDS", 2, 1)) * time.Second

	logger.WithFields(log.Fields{
		"fleet_size": fleetSize,
		"api_url":    cfg.API.BaseURL,
		"interval":   interval,
	}).Info("Starting fleet simulation")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fleet := store.NewFleet(client.New(cfg.API.BaseURL, cfg.APITimeout()), store.WithLogger(logger))
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	s := &seeder{fleet: fleet, rng: rng, now: time.Now().UTC(), log: logger}
	if err := s.seed(ctx, fleetSize); err != nil {
		logger.WithError(err).Fatal("Seeding failed. Ensure the API is reachable")
	}

	states := inTransit(rng, fleet.Snapshot())
	logger.WithField("vehicles_in_transit", len(states)).Info("Position simulation started")
	simulate(ctx, fleet, states, interval, logger)
	logger.Info("Simulation finished")
}
