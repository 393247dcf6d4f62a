package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/restaurant-ops/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a private in-memory SQLite database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

type fixture struct {
	ctx        context.Context
	db         *gorm.DB
	gate       *AccessGate
	owner      models.User
	admin      models.User
	stranger   models.User
	restaurant models.Restaurant
	floor      models.Floor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	f := &fixture{
		ctx:      context.Background(),
		db:       db,
		gate:     NewAccessGate(db),
		owner:    models.User{ExternalUID: "uid-owner", Email: "owner@example.com", Name: "Owner", Role: models.RoleUser},
		admin:    models.User{ExternalUID: "uid-admin", Email: "admin@example.com", Name: "Admin", Role: models.RoleAdmin},
		stranger: models.User{ExternalUID: "uid-stranger", Email: "stranger@example.com", Name: "Stranger", Role: models.RoleUser},
	}
	require.NoError(t, db.Create(&f.owner).Error)
	require.NoError(t, db.Create(&f.admin).Error)
	require.NoError(t, db.Create(&f.stranger).Error)

	f.restaurant = models.Restaurant{Name: "Bistro", Timezone: "UTC", OwnerID: f.owner.ID}
	require.NoError(t, db.Create(&f.restaurant).Error)
	f.floor = models.Floor{Name: "Main Floor", Type: models.FloorIndoor, Color: "#000000", RestaurantID: f.restaurant.ID}
	require.NoError(t, db.Create(&f.floor).Error)
	return f
}

// otherRestaurant creates a second restaurant owned by the stranger.
func (f *fixture) otherRestaurant(t *testing.T) models.Restaurant {
	t.Helper()
	r := models.Restaurant{Name: "Elsewhere", Timezone: "UTC", OwnerID: f.stranger.ID}
	require.NoError(t, f.db.Create(&r).Error)
	return r
}

func ptr[T any](v T) *T { return &v }
