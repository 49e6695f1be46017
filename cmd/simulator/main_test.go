package main

import (
	"context"
	"math/rand"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/fleet-console/internal/client"
	"github.com/ukydev/fleet-console/internal/db"
	"github.com/ukydev/fleet-console/internal/events"
	"github.com/ukydev/fleet-console/internal/handlers"
	"github.com/ukydev/fleet-console/internal/models"
	"github.com/ukydev/fleet-console/internal/store"
)

func newFleet(t *testing.T) *store.Fleet {
	t.Helper()
	logger, _ := test.NewNullLogger()
	srv := httptest.NewServer(handlers.NewRouter(db.NewMemorySet(), events.Nop{}, logger, handlers.RouterOptions{}))
	t.Cleanup(srv.Close)
	return store.NewFleet(client.New(srv.URL, 5*time.Second), store.WithLogger(logger))
}

func TestHaversineKm(t *testing.T) {
	milano := cities[0].Location
	roma := cities[1].Location
	assert.InDelta(t, 477, haversineKm(milano, roma), 5)
	assert.Zero(t, haversineKm(milano, milano))
}

func TestJitterLocation_StaysWithinRadius(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	base := cities[0].Location
	for i := 0; i < 100; i++ {
		loc := jitterLocation(rng, base, 500)
		assert.LessOrEqual(t, haversineKm(base, loc), 0.51)
	}
}

func TestVehicleState_Step(t *testing.T) {
	s := &VehicleState{
		Position: cities[0].Location,
		Target:   cities[1].Location,
		SpeedKmh: 60,
	}
	before := haversineKm(s.Position, s.Target)

	assert.False(t, s.step(time.Hour))
	assert.InDelta(t, before-60, haversineKm(s.Position, s.Target), 1)

	s.SpeedKmh = 10_000
	assert.True(t, s.step(time.Hour))
	assert.Equal(t, s.Target, s.Position)
}

func TestSeed_CreatesCoherentFleet(t *testing.T) {
	fleet := newFleet(t)
	logger, _ := test.NewNullLogger()
	s := &seeder{
		fleet: fleet,
		rng:   rand.New(rand.NewSource(1)),
		now:   time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC),
		log:   logger,
	}
	ctx := context.Background()
	require.NoError(t, s.seed(ctx, 4))

	fleet.LoadAll(ctx)
	assert.Empty(t, fleet.Errors())
	snap := fleet.Snapshot()

	assert.Len(t, snap.Vehicles, 4)
	assert.Len(t, snap.Drivers, 4)
	assert.Len(t, snap.Clients, 3)
	assert.Len(t, snap.Trips, 18)
	assert.Len(t, snap.Fuel, 16)
	assert.Len(t, snap.Maintenance, 4)
	assert.NotEmpty(t, snap.Invoices)

	for _, v := range snap.Vehicles {
		assert.NotEmpty(t, v.CurrentDriverID)
	}
	for _, inv := range snap.Invoices {
		assert.NotEmpty(t, inv.Items)
		assert.Greater(t, inv.Total, inv.Subtotal)
	}
	for _, f := range snap.Fuel {
		assert.Equal(t, models.FuelTotal(f.Liters, f.PricePerLiter), f.TotalCost)
	}

	assert.Equal(t, 2, fleet.Vehicles.InTransitCount())
	assert.Equal(t, 2, fleet.Trips.InProgressCount())
	for _, st := range inTransit(s.rng, snap) {
		assert.NotZero(t, st.Target.Lat)
		assert.NotEqual(t, st.Position, st.Target)
	}
}

func TestSimulate_ParksArrivedVehicles(t *testing.T) {
	fleet := newFleet(t)
	logger, _ := test.NewNullLogger()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	v, err := fleet.Vehicles.Create(ctx, &models.Vehicle{Plate: "AB123CD", Status: models.VehicleInTransit})
	require.NoError(t, err)

	target := cities[1].Location
	states := []*VehicleState{{
		VehicleID: v.ID,
		Position:  cities[0].Location,
		Target:    target,
		SpeedKmh:  1e9,
	}}
	simulate(ctx, fleet, states, 10*time.Millisecond, logger)
	require.NoError(t, ctx.Err())

	got, err := fleet.Vehicles.GetByID(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, models.VehicleAvailable, got.Status)
	require.NotNil(t, got.LastPosition)
	assert.InDelta(t, target.Lat, got.LastPosition.Lat, 1e-9)
	assert.InDelta(t, target.Lon, got.LastPosition.Lng, 1e-9)
}

func TestSimulate_StopsOnCancel(t *testing.T) {
	fleet := newFleet(t)
	logger, _ := test.NewNullLogger()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		simulate(ctx, fleet, []*VehicleState{{VehicleID: "v-x", SpeedKmh: 1}}, time.Hour, logger)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("simulate did not return after cancel")
	}
}
