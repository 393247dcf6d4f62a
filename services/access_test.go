package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckRestaurant(t *testing.T) {
	f := newFixture(t)

	t.Run("owner passes", func(t *testing.T) {
		r, err := f.gate.CheckRestaurant(f.ctx, f.restaurant.ID, f.owner.ID)
		require.NoError(t, err)
		assert.Equal(t, f.restaurant.ID, r.ID)
	})

	t.Run("admin passes", func(t *testing.T) {
		_, err := f.gate.CheckRestaurant(f.ctx, f.restaurant.ID, f.admin.ID)
		assert.NoError(t, err)
	})

	t.Run("stranger is forbidden", func(t *testing.T) {
		_, err := f.gate.CheckRestaurant(f.ctx, f.restaurant.ID, f.stranger.ID)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("unknown user is forbidden", func(t *testing.T) {
		_, err := f.gate.CheckRestaurant(f.ctx, f.restaurant.ID, "nobody")
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("missing restaurant is not found before ownership", func(t *testing.T) {
		_, err := f.gate.CheckRestaurant(f.ctx, "missing", f.stranger.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Contains(t, err.Error(), "missing")
	})
}
