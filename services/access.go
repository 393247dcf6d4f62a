package services

import (
	"context"
	"errors"

	"github.com/yeremiapane/restaurant-ops/models"
	"gorm.io/gorm"
)

// AccessGate authorizes restaurant-scoped operations: the owner and any admin
// pass, everyone else is rejected.
type AccessGate struct {
	DB *gorm.DB
}

func NewAccessGate(db *gorm.DB) *AccessGate {
	return &AccessGate{DB: db}
}

// CheckRestaurant returns the restaurant when userID may operate on it.
// A missing restaurant is reported before any ownership decision.
func (g *AccessGate) CheckRestaurant(ctx context.Context, restaurantID, userID string) (*models.Restaurant, error) {
	var restaurant models.Restaurant
	err := g.DB.WithContext(ctx).Where("id = ?", restaurantID).First(&restaurant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("Restaurant with ID %s not found", restaurantID)
	}
	if err != nil {
		return nil, err
	}

	if restaurant.OwnerID == userID {
		return &restaurant, nil
	}

	var user models.User
	err = g.DB.WithContext(ctx).Select("id", "role").Where("id = ?", userID).First(&user).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if err != nil || !user.IsAdmin() {
		return nil, forbidden("You don't have permission to access this restaurant")
	}
	return &restaurant, nil
}
