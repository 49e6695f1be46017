package store

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/fleet-console/internal/client"
	"github.com/ukydev/fleet-console/internal/models"
)

var t0 = time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func quietLogger() *logrus.Logger {
	log, _ := test.NewNullLogger()
	return log
}

func vehicle(id, plate string, status models.VehicleStatus) *models.Vehicle {
	return &models.Vehicle{
		Base:   models.Base{ID: id, CreatedAt: t0, UpdatedAt: t0},
		Plate:  plate,
		Brand:  "Iveco",
		Model:  "Daily",
		Year:   2021,
		Status: status,
	}
}

func TestCollection_LoadAll(t *testing.T) {
	backend := newMemBackend(vehicle("v-1", "AB123CD", models.VehicleAvailable), vehicle("v-2", "EF456GH", models.VehicleInTransit))
	c := NewCollection(models.VehicleResource, backend, WithLogger(quietLogger()))

	items := c.LoadAll(context.Background())
	require.Len(t, items, 2)
	assert.Equal(t, 2, c.Count())
	assert.False(t, c.Loading())
	assert.Empty(t, c.LastError())
	assert.Equal(t, "AB123CD", c.Items()[0].Plate)
}

func TestCollection_LoadAllFailure(t *testing.T) {
	log, hook := test.NewNullLogger()
	backend := &mockBackend[*models.Vehicle]{}
	backend.On("List", mock.Anything).Return([]*models.Vehicle{vehicle("v-1", "AB123CD", models.VehicleAvailable)}, nil).Once()
	backend.On("List", mock.Anything).Return(nil, errors.New("connection refused")).Once()

	c := NewCollection(models.VehicleResource, backend, WithLogger(log))
	require.Len(t, c.LoadAll(context.Background()), 1)

	var items []*models.Vehicle
	require.NotPanics(t, func() { items = c.LoadAll(context.Background()) })
	assert.NotNil(t, items)
	assert.Empty(t, items)
	assert.Empty(t, c.Items())
	assert.False(t, c.Loading())
	assert.Equal(t, "Errore nel caricamento dei veicoli", c.LastError())
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
	backend.AssertExpectations(t)
}

func TestCollection_LoadAllClearsPreviousError(t *testing.T) {
	backend := newMemBackend[*models.Driver]()
	backend.failNext = errors.New("timeout")
	c := NewCollection(models.DriverResource, backend, WithLogger(quietLogger()))

	c.LoadAll(context.Background())
	assert.Equal(t, "Errore nel caricamento degli autisti", c.LastError())

	c.LoadAll(context.Background())
	assert.Empty(t, c.LastError())
}

func TestCollection_StaleLoadDiscarded(t *testing.T) {
	backend := newMemBackend(vehicle("v-1", "AB123CD", models.VehicleAvailable))
	started := make(chan struct{})
	release := make(chan struct{})
	backend.onList = func(call int) {
		if call == 1 {
			close(started)
			<-release
		}
	}
	c := NewCollection(models.VehicleResource, backend, WithLogger(quietLogger()))

	first := make(chan []*models.Vehicle)
	go func() { first <- c.LoadAll(context.Background()) }()
	<-started

	backend.mu.Lock()
	backend.items = append(backend.items, vehicle("v-2", "EF456GH", models.VehicleAvailable))
	backend.mu.Unlock()

	second := c.LoadAll(context.Background())
	require.Len(t, second, 2)

	close(release)
	stale := <-first
	assert.Len(t, stale, 2)
	assert.Equal(t, []string{"v-1", "v-2"}, ids(c.Items()))
	assert.False(t, c.Loading())
}

func TestCollection_GetByID(t *testing.T) {
	backend := newMemBackend(vehicle("v-1", "AB123CD", models.VehicleAvailable))
	c := NewCollection(models.VehicleResource, backend, WithLogger(quietLogger()))

	v, err := c.GetByID(context.Background(), "v-1")
	require.NoError(t, err)
	assert.Equal(t, "AB123CD", v.Plate)
	sel, ok := c.Selected()
	require.True(t, ok)
	assert.Equal(t, "v-1", sel.ID)

	_, err = c.GetByID(context.Background(), "v-404")
	require.Error(t, err)
	assert.True(t, errors.Is(err, client.ErrNotFound))
	assert.Equal(t, "Veicolo non trovato", c.LastError())
	assert.False(t, c.Loading())

	_, err = c.GetByID(context.Background(), "v-1")
	require.NoError(t, err)
	assert.Empty(t, c.LastError())
}

func TestCollection_GetByIDKeepsLoadError(t *testing.T) {
	backend := newMemBackend(vehicle("v-1", "AB123CD", models.VehicleAvailable))
	backend.failNext = errors.New("timeout")
	c := NewCollection(models.VehicleResource, backend, WithLogger(quietLogger()))

	c.LoadAll(context.Background())
	require.Equal(t, "Errore nel caricamento dei veicoli", c.LastError())

	_, err := c.GetByID(context.Background(), "v-1")
	require.NoError(t, err)
	assert.Equal(t, "Errore nel caricamento dei veicoli", c.LastError())
}

func TestCollection_GetByIDDuringLoad(t *testing.T) {
	backend := newMemBackend(vehicle("v-1", "AB123CD", models.VehicleAvailable))
	started := make(chan struct{})
	release := make(chan struct{})
	backend.onList = func(call int) {
		close(started)
		<-release
	}
	c := NewCollection(models.VehicleResource, backend, WithLogger(quietLogger()))

	done := make(chan []*models.Vehicle)
	go func() { done <- c.LoadAll(context.Background()) }()
	<-started

	_, err := c.GetByID(context.Background(), "v-1")
	require.NoError(t, err)
	assert.True(t, c.Loading())

	close(release)
	assert.Len(t, <-done, 1)
	assert.False(t, c.Loading())
}

func TestCollection_NilEntitiesRejected(t *testing.T) {
	backend := &mockBackend[*models.Vehicle]{}
	backend.On("List", mock.Anything).Return([]*models.Vehicle{vehicle("v-1", "AB123CD", models.VehicleAvailable), nil}, nil).Once()
	backend.On("Get", mock.Anything, "v-1").Return(nil, nil).Once()
	backend.On("Create", mock.Anything, mock.Anything).Return(nil, nil).Once()
	backend.On("Patch", mock.Anything, "v-1", mock.Anything).Return(nil, nil).Once()
	c := NewCollection(models.VehicleResource, backend, WithLogger(quietLogger()))
	ctx := context.Background()

	require.Len(t, c.LoadAll(ctx), 1)

	_, err := c.GetByID(ctx, "v-1")
	require.Error(t, err)
	assert.Equal(t, "Veicolo non trovato", c.LastError())
	_, ok := c.Selected()
	assert.False(t, ok)

	_, err = c.Create(ctx, vehicle("", "EF456GH", models.VehicleAvailable))
	require.Error(t, err)
	_, err = c.Update(ctx, "v-1", models.Patch{"notes": "x"})
	require.Error(t, err)

	assert.Equal(t, []string{"v-1"}, ids(c.Items()))
	assert.NotPanics(t, func() {
		for _, v := range c.Items() {
			_ = v.Meta().ID
		}
	})
	backend.AssertExpectations(t)
}

func TestCollection_CreateStampsIdentity(t *testing.T) {
	clk := &clock{now: t0}
	backend := newMemBackend[*models.Trip]()
	c := NewCollection(models.TripResource, backend, WithLogger(quietLogger()), WithClock(clk.Now))

	created, err := c.Create(context.Background(), &models.Trip{
		TripNumber:  "TR-001",
		Origin:      models.Address{City: "Milano"},
		Destination: models.Address{City: "Roma"},
		Price:       850,
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(created.ID, "t-"))
	assert.Equal(t, models.TripPlanned, created.Status)
	assert.Equal(t, t0, created.CreatedAt)
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)
	assert.Equal(t, 1, c.Count())
	assert.Equal(t, 850.0, c.Items()[0].Price)
}

func TestCollection_CreateUniqueIDs(t *testing.T) {
	backend := newMemBackend[*models.Client]()
	c := NewCollection(models.ClientResource, backend, WithLogger(quietLogger()))

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		created, err := c.Create(context.Background(), &models.Client{CompanyName: fmt.Sprintf("Cliente %d", i)})
		require.NoError(t, err)
		require.False(t, seen[created.ID], "duplicate id %s", created.ID)
		seen[created.ID] = true
	}
	assert.Equal(t, 20, c.Count())
}

func TestCollection_CreateFailureLeavesListUnchanged(t *testing.T) {
	backend := newMemBackend(vehicle("v-1", "AB123CD", models.VehicleAvailable))
	c := NewCollection(models.VehicleResource, backend, WithLogger(quietLogger()))
	c.LoadAll(context.Background())

	backend.failNext = errors.New("500")
	_, err := c.Create(context.Background(), &models.Vehicle{Plate: "ZZ999ZZ"})
	require.Error(t, err)
	assert.Equal(t, 1, c.Count())
}

func TestCollection_CreateRejectsUnknownEnum(t *testing.T) {
	backend := &mockBackend[*models.Vehicle]{}
	c := NewCollection(models.VehicleResource, backend, WithLogger(quietLogger()))

	_, err := c.Create(context.Background(), &models.Vehicle{Plate: "AB123CD", Status: "parked"})
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "status", verr.Field)
	backend.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCollection_UpdateIsMonotonic(t *testing.T) {
	clk := &clock{now: t0}
	backend := newMemBackend(
		vehicle("v-1", "AB123CD", models.VehicleAvailable),
		vehicle("v-2", "EF456GH", models.VehicleAvailable),
	)
	c := NewCollection(models.VehicleResource, backend, WithLogger(quietLogger()), WithClock(clk.Now))
	c.LoadAll(context.Background())
	_, err := c.GetByID(context.Background(), "v-1")
	require.NoError(t, err)
	other, _ := c.Find("v-2")

	clk.Advance(time.Hour)
	updated, err := c.Update(context.Background(), "v-1", models.Patch{"status": string(models.VehicleInTransit)})
	require.NoError(t, err)
	assert.Equal(t, models.VehicleInTransit, updated.Status)
	assert.True(t, updated.UpdatedAt.Equal(t0.Add(time.Hour)))
	assert.True(t, updated.CreatedAt.Equal(t0))

	got, _ := c.Find("v-1")
	assert.Equal(t, models.VehicleInTransit, got.Status)
	sel, _ := c.Selected()
	assert.Equal(t, models.VehicleInTransit, sel.Status)
	stillOther, _ := c.Find("v-2")
	assert.Same(t, other, stillOther)
	assert.Equal(t, []string{"v-1", "v-2"}, ids(c.Items()))
}

func TestCollection_UpdateNeverMovesUpdatedAtBackwards(t *testing.T) {
	clk := &clock{now: t0.Add(-time.Hour)}
	backend := newMemBackend(vehicle("v-1", "AB123CD", models.VehicleAvailable))
	c := NewCollection(models.VehicleResource, backend, WithLogger(quietLogger()), WithClock(clk.Now))
	c.LoadAll(context.Background())

	updated, err := c.Update(context.Background(), "v-1", models.Patch{"notes": "tagliando"})
	require.NoError(t, err)
	assert.False(t, updated.UpdatedAt.Before(t0))
	require.Len(t, backend.patches, 1)
	assert.Contains(t, backend.patches[0], "updatedAt")
}

func TestCollection_UpdateFailure(t *testing.T) {
	backend := newMemBackend(vehicle("v-1", "AB123CD", models.VehicleAvailable))
	c := NewCollection(models.VehicleResource, backend, WithLogger(quietLogger()))
	c.LoadAll(context.Background())

	backend.failNext = errors.New("503")
	_, err := c.Update(context.Background(), "v-1", models.Patch{"status": "inactive"})
	require.Error(t, err)
	got, _ := c.Find("v-1")
	assert.Equal(t, models.VehicleAvailable, got.Status)
}

func TestCollection_Delete(t *testing.T) {
	backend := newMemBackend(
		vehicle("v-1", "AB123CD", models.VehicleAvailable),
		vehicle("v-2", "EF456GH", models.VehicleAvailable),
		vehicle("v-3", "IL789MN", models.VehicleAvailable),
	)
	c := NewCollection(models.VehicleResource, backend, WithLogger(quietLogger()))
	c.LoadAll(context.Background())
	_, err := c.GetByID(context.Background(), "v-2")
	require.NoError(t, err)

	require.NoError(t, c.Delete(context.Background(), "v-2"))
	assert.Equal(t, []string{"v-1", "v-3"}, ids(c.Items()))
	_, ok := c.Selected()
	assert.False(t, ok)

	err = c.Delete(context.Background(), "v-404")
	require.Error(t, err)
	assert.Equal(t, []string{"v-1", "v-3"}, ids(c.Items()))
}

func TestCollection_DeleteKeepsUnrelatedSelection(t *testing.T) {
	backend := newMemBackend(vehicle("v-1", "AB123CD", models.VehicleAvailable), vehicle("v-2", "EF456GH", models.VehicleAvailable))
	c := NewCollection(models.VehicleResource, backend, WithLogger(quietLogger()))
	c.LoadAll(context.Background())
	_, _ = c.GetByID(context.Background(), "v-1")

	require.NoError(t, c.Delete(context.Background(), "v-2"))
	sel, ok := c.Selected()
	require.True(t, ok)
	assert.Equal(t, "v-1", sel.ID)

	c.ClearSelection()
	_, ok = c.Selected()
	assert.False(t, ok)
}

func TestCollection_Subscribe(t *testing.T) {
	backend := newMemBackend(vehicle("v-1", "AB123CD", models.VehicleAvailable))
	c := NewCollection(models.VehicleResource, backend, WithLogger(quietLogger()))

	var mu sync.Mutex
	calls := 0
	cancel := c.Subscribe(func() {
		mu.Lock()
		calls++
		mu.Unlock()
	})
	c.LoadAll(context.Background())
	c.ClearSelection()
	cancel()
	c.ClearSelection()

	mu.Lock()
	defer mu.Unlock()
	// loading start, loading end, clear selection
	assert.Equal(t, 3, calls)
}

func TestNewID(t *testing.T) {
	id := NewID("inv")
	assert.True(t, strings.HasPrefix(id, "inv-"))
	assert.NotEqual(t, id, NewID("inv"))
}

func ids[E models.Entity](items []E) []string {
	out := make([]string, 0, len(items))
	for _, e := range items {
		out = append(out, e.Meta().ID)
	}
	return out
}
