package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuestLifecycle(t *testing.T) {
	f := newFixture(t)
	svc := NewGuestService(f.db, f.gate)

	ada, err := svc.Create(f.ctx, GuestInput{Name: ptr("Ada Lovelace"), Phone: ptr("+441234"), Email: ptr(" Ada@Example.com ")}, f.restaurant.ID, f.owner.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", ada.Email)

	_, err = svc.Create(f.ctx, GuestInput{Name: ptr("Grace Hopper"), Phone: ptr("+15550000")}, f.restaurant.ID, f.owner.ID)
	require.NoError(t, err)

	found, err := svc.FindAll(f.ctx, f.restaurant.ID, "lovelace", f.owner.ID)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, ada.ID, found[0].ID)

	found, err = svc.FindAll(f.ctx, f.restaurant.ID, "+1555", f.owner.ID)
	require.NoError(t, err)
	assert.Len(t, found, 1)

	_, err = svc.Update(f.ctx, ada.ID, GuestInput{Name: ptr("  ")}, f.restaurant.ID, f.owner.ID)
	assert.ErrorIs(t, err, ErrBadRequest)

	reservations := NewReservationService(f.db, f.gate, nil)
	r, err := reservations.Create(f.ctx, ReservationInput{
		GuestID:        &ada.ID,
		StartTime:      ptr("2026-03-01T19:00:00Z"),
		NumberOfGuests: ptr(2),
	}, f.restaurant.ID, f.owner.ID)
	require.NoError(t, err)

	_, err = svc.Remove(f.ctx, ada.ID, f.restaurant.ID, f.owner.ID)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = reservations.Remove(f.ctx, r.ID, f.restaurant.ID, f.owner.ID)
	require.NoError(t, err)
	_, err = svc.Remove(f.ctx, ada.ID, f.restaurant.ID, f.owner.ID)
	assert.NoError(t, err)
}

func TestRecordGuestVisit(t *testing.T) {
	f := newFixture(t)
	svc := NewGuestService(f.db, f.gate)
	ada, err := svc.Create(f.ctx, GuestInput{Name: ptr("Ada")}, f.restaurant.ID, f.owner.ID)
	require.NoError(t, err)
	assert.Zero(t, ada.VisitCount)
	assert.Nil(t, ada.LastVisit)

	_, err = svc.RecordVisit(f.ctx, ada.ID, f.restaurant.ID, f.owner.ID)
	require.NoError(t, err)
	visited, err := svc.RecordVisit(f.ctx, ada.ID, f.restaurant.ID, f.owner.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, visited.VisitCount)
	require.NotNil(t, visited.LastVisit)
	assert.WithinDuration(t, time.Now(), *visited.LastVisit, time.Minute)

	_, err = svc.RecordVisit(f.ctx, ada.ID, f.restaurant.ID, f.stranger.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.RecordVisit(f.ctx, "missing", f.restaurant.ID, f.owner.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
