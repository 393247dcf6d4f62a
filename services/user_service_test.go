package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-ops/models"
	"github.com/yeremiapane/restaurant-ops/utils"
)

func allow(t *testing.T, f *fixture, email string) {
	t.Helper()
	require.NoError(t, f.db.Create(&models.AllowedEmail{Email: email}).Error)
}

func TestAuthenticate(t *testing.T) {
	t.Run("allow-listed user passes", func(t *testing.T) {
		f := newFixture(t)
		allow(t, f, f.owner.Email)
		svc := NewUserService(f.db)

		user, err := svc.Authenticate(f.ctx, &utils.Principal{UID: f.owner.ExternalUID, Email: f.owner.Email})
		require.NoError(t, err)
		assert.Equal(t, f.owner.ID, user.ID)
	})

	t.Run("user outside the allow-list is pending", func(t *testing.T) {
		f := newFixture(t)
		svc := NewUserService(f.db)

		_, err := svc.Authenticate(f.ctx, &utils.Principal{UID: f.owner.ExternalUID, Email: f.owner.Email})
		assert.ErrorIs(t, err, ErrUserPendingApproval)
	})

	t.Run("admin skips the allow-list", func(t *testing.T) {
		f := newFixture(t)
		svc := NewUserService(f.db)

		user, err := svc.Authenticate(f.ctx, &utils.Principal{UID: f.admin.ExternalUID, Email: f.admin.Email})
		require.NoError(t, err)
		assert.True(t, user.IsAdmin())
	})

	t.Run("revoked user is deactivated", func(t *testing.T) {
		f := newFixture(t)
		allow(t, f, f.owner.Email)
		require.NoError(t, f.db.Model(&f.owner).Update("revoked", true).Error)
		svc := NewUserService(f.db)

		_, err := svc.Authenticate(f.ctx, &utils.Principal{UID: f.owner.ExternalUID, Email: f.owner.Email})
		assert.ErrorIs(t, err, ErrUserDeactivated)
	})

	t.Run("revoked admin is restored", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.db.Model(&f.admin).Update("revoked", true).Error)
		svc := NewUserService(f.db)

		user, err := svc.Authenticate(f.ctx, &utils.Principal{UID: f.admin.ExternalUID})
		require.NoError(t, err)
		assert.False(t, user.Revoked)

		var stored models.User
		require.NoError(t, f.db.First(&stored, "id = ?", f.admin.ID).Error)
		assert.False(t, stored.Revoked)
	})

	t.Run("unknown user with email is provisioned", func(t *testing.T) {
		f := newFixture(t)
		allow(t, f, "new@example.com")
		svc := NewUserService(f.db)

		user, err := svc.Authenticate(f.ctx, &utils.Principal{UID: "uid-new", Email: "New@Example.com", Name: "New"})
		require.NoError(t, err)
		assert.Equal(t, "new@example.com", user.Email)
		assert.Equal(t, models.RoleUser, user.Role)
		assert.NotEmpty(t, user.ID)
	})

	t.Run("unknown admin claim provisions an admin", func(t *testing.T) {
		f := newFixture(t)
		svc := NewUserService(f.db)

		user, err := svc.Authenticate(f.ctx, &utils.Principal{UID: "uid-boss", Email: "boss@example.com", Admin: true})
		require.NoError(t, err)
		assert.Equal(t, models.RoleAdmin, user.Role)
	})

	t.Run("unknown user without email is rejected", func(t *testing.T) {
		f := newFixture(t)
		svc := NewUserService(f.db)

		_, err := svc.Authenticate(f.ctx, &utils.Principal{UID: "uid-ghost"})
		assert.ErrorIs(t, err, ErrUserNotProvisioned)
	})

	t.Run("admin claim promotes existing user", func(t *testing.T) {
		f := newFixture(t)
		svc := NewUserService(f.db)

		user, err := svc.Authenticate(f.ctx, &utils.Principal{UID: f.owner.ExternalUID, Email: f.owner.Email, Admin: true})
		require.NoError(t, err)
		assert.True(t, user.IsAdmin())

		var stored models.User
		require.NoError(t, f.db.First(&stored, "id = ?", f.owner.ID).Error)
		assert.Equal(t, models.RoleAdmin, stored.Role)
	})
}

func TestUserAdministration(t *testing.T) {
	f := newFixture(t)
	svc := NewUserService(f.db)

	view, err := svc.SetAllowed(f.ctx, f.owner.ID, true, f.admin.ID)
	require.NoError(t, err)
	assert.True(t, view.Allowed)

	// idempotent
	_, err = svc.SetAllowed(f.ctx, f.owner.ID, true, f.admin.ID)
	require.NoError(t, err)

	users, total, err := svc.List(f.ctx, "", 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	for _, u := range users {
		assert.Equal(t, u.ID == f.owner.ID, u.Allowed, u.Email)
	}

	filtered, total, err := svc.List(f.ctx, "strang", 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, f.stranger.ID, filtered[0].ID)

	_, err = svc.SetAllowed(f.ctx, f.owner.ID, false, f.admin.ID)
	require.NoError(t, err)
	ok, err := svc.IsEmailAllowed(f.ctx, f.owner.Email)
	require.NoError(t, err)
	assert.False(t, ok)

	revoked, err := svc.SetRevoked(f.ctx, f.owner.ID, true)
	require.NoError(t, err)
	assert.True(t, revoked.Revoked)

	restored, err := svc.SetRevoked(f.ctx, f.owner.ID, false)
	require.NoError(t, err)
	assert.False(t, restored.Revoked)

	_, err = svc.SetRevoked(f.ctx, f.admin.ID, true)
	assert.ErrorIs(t, err, ErrBadRequest)

	_, err = svc.SetRevoked(f.ctx, "missing", true)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAllowedEmails(t *testing.T) {
	f := newFixture(t)
	svc := NewAllowedEmailService(f.db)

	entry, err := svc.Create(f.ctx, " Chef@Example.com", "kitchen lead", f.admin.ID)
	require.NoError(t, err)
	assert.Equal(t, "chef@example.com", entry.Email)

	_, err = svc.Create(f.ctx, "chef@example.com", "", f.admin.ID)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = svc.Create(f.ctx, "not-an-email", "", f.admin.ID)
	assert.ErrorIs(t, err, ErrBadRequest)

	other, err := svc.Create(f.ctx, "host@example.com", "", f.admin.ID)
	require.NoError(t, err)

	_, err = svc.Update(f.ctx, other.ID, ptr("chef@example.com"), nil)
	assert.ErrorIs(t, err, ErrConflict)

	updated, err := svc.Update(f.ctx, other.ID, nil, ptr("front of house"))
	require.NoError(t, err)
	assert.Equal(t, "front of house", updated.Description)

	entries, err := svc.FindAll(f.ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	_, err = svc.Remove(f.ctx, entry.ID)
	require.NoError(t, err)
	_, err = svc.Remove(f.ctx, entry.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
