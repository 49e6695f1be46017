package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/fleet-console/internal/models"
)

func client(id, name string) *models.Client {
	return &models.Client{Base: models.Base{ID: id}, CompanyName: name}
}

func TestMemoryCollection_CRUD(t *testing.T) {
	ctx := context.Background()
	coll := NewMemoryCollection(client("c-1", "ACME"), client("c-2", "Beta"))

	require.NoError(t, coll.Insert(ctx, client("c-3", "Gamma")))
	assert.ErrorIs(t, coll.Insert(ctx, client("c-1", "Dup")), ErrDuplicateID)

	all, err := coll.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"c-1", "c-2", "c-3"}, []string{all[0].ID, all[1].ID, all[2].ID})

	require.NoError(t, coll.Replace(ctx, client("c-2", "Beta Srl")))
	got, err := coll.FindByID(ctx, "c-2")
	require.NoError(t, err)
	assert.Equal(t, "Beta Srl", got.CompanyName)
	assert.ErrorIs(t, coll.Replace(ctx, client("c-9", "Nope")), ErrNotFound)

	require.NoError(t, coll.Delete(ctx, "c-2"))
	assert.ErrorIs(t, coll.Delete(ctx, "c-2"), ErrNotFound)
	_, err = coll.FindByID(ctx, "c-2")
	assert.ErrorIs(t, err, ErrNotFound)

	all, err = coll.FindAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"c-1", "c-3"}, []string{all[0].ID, all[1].ID})
}

func TestMemoryCollection_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	coll := NewMemoryCollection[*models.Client]()

	assert.ErrorIs(t, coll.Insert(ctx, client("c-1", "ACME")), context.Canceled)
	_, err := coll.FindAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryCollection_EmptyListIsNotNil(t *testing.T) {
	all, err := NewMemoryCollection[*models.Fuel]().FindAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}

func TestSet_Snapshot(t *testing.T) {
	ctx := context.Background()
	set := NewMemorySet()
	require.NoError(t, set.Clients.Insert(ctx, client("c-1", "ACME")))
	require.NoError(t, set.Vehicles.Insert(ctx, &models.Vehicle{Base: models.Base{ID: "v-1"}, Plate: "AB123CD"}))

	snap, err := set.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Clients, 1)
	assert.Len(t, snap.Vehicles, 1)
	assert.Empty(t, snap.Trips)
}
