package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-ops/models"
)

func TestFloorLifecycle(t *testing.T) {
	f := newFixture(t)
	svc := NewFloorService(f.db, f.gate)
	tables := NewTableService(f.db, f.gate)

	t.Run("last floor cannot be removed", func(t *testing.T) {
		_, err := svc.Remove(f.ctx, f.floor.ID, f.restaurant.ID, f.owner.ID)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	patio, err := svc.Create(f.ctx, FloorInput{Name: ptr("Patio"), Type: ptr(models.FloorOutdoor)}, f.restaurant.ID, f.owner.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FloorOutdoor, patio.Type)
	assert.Equal(t, "#000000", patio.Color)

	_, err = svc.Create(f.ctx, FloorInput{Name: ptr("Patio")}, f.restaurant.ID, f.owner.ID)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = svc.Create(f.ctx, FloorInput{}, f.restaurant.ID, f.owner.ID)
	assert.ErrorIs(t, err, ErrBadRequest)

	renamed, err := svc.Update(f.ctx, patio.ID, FloorInput{Name: ptr("Garden"), Color: ptr("#00aa00")}, f.restaurant.ID, f.owner.ID)
	require.NoError(t, err)
	assert.Equal(t, "Garden", renamed.Name)

	table, err := tables.Create(f.ctx, CreateTableInput{Name: "G1", Capacity: 2, FloorID: &patio.ID}, f.restaurant.ID, f.owner.ID)
	require.NoError(t, err)

	_, err = svc.Remove(f.ctx, patio.ID, f.restaurant.ID, f.owner.ID)
	require.NoError(t, err)

	detached, err := tables.FindOne(f.ctx, table.ID, f.restaurant.ID, f.owner.ID)
	require.NoError(t, err)
	assert.Nil(t, detached.FloorID)

	floors, err := svc.FindAll(f.ctx, f.restaurant.ID, f.owner.ID)
	require.NoError(t, err)
	assert.Len(t, floors, 1)

	_, err = svc.FindAll(f.ctx, f.restaurant.ID, f.stranger.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestFloorTables(t *testing.T) {
	f := newFixture(t)
	svc := NewFloorService(f.db, f.gate)
	tables := NewTableService(f.db, f.gate)

	patio, err := svc.Create(f.ctx, FloorInput{Name: ptr("Patio")}, f.restaurant.ID, f.owner.ID)
	require.NoError(t, err)
	t1 := newTable(t, f, tables, "T1", 2, 0, 0)
	t2 := newTable(t, f, tables, "T2", 4, 100, 0)
	_, err = tables.Create(f.ctx, CreateTableInput{Name: "P1", Capacity: 2, FloorID: &patio.ID}, f.restaurant.ID, f.owner.ID)
	require.NoError(t, err)

	merged, err := tables.MergeTables(f.ctx, []string{t1.ID, t2.ID}, f.restaurant.ID, f.owner.ID)
	require.NoError(t, err)

	onMain, err := svc.Tables(f.ctx, f.floor.ID, f.restaurant.ID, f.owner.ID)
	require.NoError(t, err)
	ids := []string{}
	for _, tb := range onMain {
		ids = append(ids, tb.ID)
	}
	assert.ElementsMatch(t, []string{t1.ID, t2.ID, merged.ID}, ids)

	onPatio, err := svc.Tables(f.ctx, patio.ID, f.restaurant.ID, f.owner.ID)
	require.NoError(t, err)
	require.Len(t, onPatio, 1)
	assert.Equal(t, "P1", onPatio[0].Name)

	_, err = svc.Tables(f.ctx, "missing", f.restaurant.ID, f.owner.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Tables(f.ctx, patio.ID, f.restaurant.ID, f.stranger.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}
