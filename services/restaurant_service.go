package services

import (
	"context"
	"strings"
	"time"

	"github.com/yeremiapane/restaurant-ops/models"
	"gorm.io/gorm"
)

const defaultFloorName = "Main Floor"

type RestaurantInput struct {
	Name     *string
	Address  *string
	Phone    *string
	Timezone *string
}

type SMSConfigInput struct {
	Enabled             *bool
	Username            *string
	Password            *string
	SenderID            *string
	ConfirmationEnabled *bool
	CancellationEnabled *bool
}

type RestaurantService struct {
	DB   *gorm.DB
	Gate *AccessGate
}

func NewRestaurantService(db *gorm.DB, gate *AccessGate) *RestaurantService {
	return &RestaurantService{DB: db, Gate: gate}
}

// Create registers a restaurant owned by userID together with its first floor.
func (s *RestaurantService) Create(ctx context.Context, in RestaurantInput, userID string) (*models.Restaurant, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, badRequest("Restaurant name is required")
	}
	restaurant := models.Restaurant{
		Name:                   strings.TrimSpace(*in.Name),
		Timezone:               "UTC",
		OwnerID:                userID,
		SMSConfirmationEnabled: true,
		SMSCancellationEnabled: true,
	}
	if err := applyRestaurant(&restaurant, in); err != nil {
		return nil, err
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&restaurant).Error; err != nil {
			return err
		}
		return tx.Create(&models.Floor{
			Name:         defaultFloorName,
			Type:         models.FloorIndoor,
			Color:        "#000000",
			RestaurantID: restaurant.ID,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &restaurant, nil
}

// FindAll returns every restaurant for admins and owned ones otherwise.
func (s *RestaurantService) FindAll(ctx context.Context, user *models.User) ([]models.Restaurant, error) {
	q := s.DB.WithContext(ctx).Order("created_at ASC")
	if !user.IsAdmin() {
		q = q.Where("owner_id = ?", user.ID)
	}
	restaurants := []models.Restaurant{}
	err := q.Find(&restaurants).Error
	return restaurants, err
}

// FindOwned returns only the restaurants userID owns, admins included.
func (s *RestaurantService) FindOwned(ctx context.Context, userID string) ([]models.Restaurant, error) {
	restaurants := []models.Restaurant{}
	err := s.DB.WithContext(ctx).
		Where("owner_id = ?", userID).
		Order("created_at ASC").
		Find(&restaurants).Error
	return restaurants, err
}

func (s *RestaurantService) FindOne(ctx context.Context, id, userID string) (*models.Restaurant, error) {
	return s.Gate.CheckRestaurant(ctx, id, userID)
}

func (s *RestaurantService) Update(ctx context.Context, id string, in RestaurantInput, userID string) (*models.Restaurant, error) {
	restaurant, err := s.Gate.CheckRestaurant(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, badRequest("Restaurant name cannot be empty")
	}
	if in.Name != nil {
		restaurant.Name = strings.TrimSpace(*in.Name)
	}
	if err := applyRestaurant(restaurant, in); err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Save(restaurant).Error; err != nil {
		return nil, err
	}
	return restaurant, nil
}

func (s *RestaurantService) UpdateSMSConfig(ctx context.Context, id string, in SMSConfigInput, userID string) (*models.Restaurant, error) {
	restaurant, err := s.Gate.CheckRestaurant(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if in.Enabled != nil {
		restaurant.SMSEnabled = *in.Enabled
	}
	if in.Username != nil {
		restaurant.SMSUsername = strings.TrimSpace(*in.Username)
	}
	if in.Password != nil {
		restaurant.SMSPassword = *in.Password
	}
	if in.SenderID != nil {
		restaurant.SMSSenderID = strings.TrimSpace(*in.SenderID)
	}
	if in.ConfirmationEnabled != nil {
		restaurant.SMSConfirmationEnabled = *in.ConfirmationEnabled
	}
	if in.CancellationEnabled != nil {
		restaurant.SMSCancellationEnabled = *in.CancellationEnabled
	}
	if restaurant.SMSEnabled && !restaurant.SMSConfigured() {
		return nil, badRequest("SMS cannot be enabled without username, password and sender ID")
	}
	if err := s.DB.WithContext(ctx).Save(restaurant).Error; err != nil {
		return nil, err
	}
	return restaurant, nil
}

// Remove deletes the restaurant and everything scoped to it.
func (s *RestaurantService) Remove(ctx context.Context, id, userID string) (*models.Restaurant, error) {
	restaurant, err := s.Gate.CheckRestaurant(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range []interface{}{&models.Reservation{}, &models.Guest{}, &models.Shift{}, &models.Table{}, &models.Floor{}} {
			if err := tx.Where("restaurant_id = ?", id).Delete(m).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Restaurant{}, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return restaurant, nil
}

func applyRestaurant(r *models.Restaurant, in RestaurantInput) error {
	if in.Address != nil {
		r.Address = strings.TrimSpace(*in.Address)
	}
	if in.Phone != nil {
		r.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Timezone != nil {
		if _, err := time.LoadLocation(*in.Timezone); err != nil {
			return badRequest("Unknown timezone %q", *in.Timezone)
		}
		r.Timezone = *in.Timezone
	}
	return nil
}
