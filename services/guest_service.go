package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/yeremiapane/restaurant-ops/models"
	"gorm.io/gorm"
)

type GuestInput struct {
	Name  *string
	Phone *string
	Email *string
	Notes *string
}

type GuestService struct {
	DB   *gorm.DB
	Gate *AccessGate
}

func NewGuestService(db *gorm.DB, gate *AccessGate) *GuestService {
	return &GuestService{DB: db, Gate: gate}
}

func (s *GuestService) Create(ctx context.Context, in GuestInput, restaurantID, userID string) (*models.Guest, error) {
	if _, err := s.Gate.CheckRestaurant(ctx, restaurantID, userID); err != nil {
		return nil, err
	}
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, badRequest("Guest name is required")
	}
	guest := models.Guest{RestaurantID: restaurantID, Name: strings.TrimSpace(*in.Name)}
	applyGuest(&guest, in)
	if err := s.DB.WithContext(ctx).Create(&guest).Error; err != nil {
		return nil, err
	}
	return &guest, nil
}

// FindAll lists guests, optionally filtered by a name or phone fragment.
func (s *GuestService) FindAll(ctx context.Context, restaurantID, query, userID string) ([]models.Guest, error) {
	if _, err := s.Gate.CheckRestaurant(ctx, restaurantID, userID); err != nil {
		return nil, err
	}
	q := s.DB.WithContext(ctx).Where("restaurant_id = ?", restaurantID)
	if query = strings.TrimSpace(query); query != "" {
		like := "%" + query + "%"
		q = q.Where("name LIKE ? OR phone LIKE ?", like, like)
	}
	guests := []models.Guest{}
	err := q.Order("name ASC").Find(&guests).Error
	return guests, err
}

func (s *GuestService) FindOne(ctx context.Context, id, restaurantID, userID string) (*models.Guest, error) {
	if _, err := s.Gate.CheckRestaurant(ctx, restaurantID, userID); err != nil {
		return nil, err
	}
	var guest models.Guest
	err := s.DB.WithContext(ctx).Where("id = ? AND restaurant_id = ?", id, restaurantID).First(&guest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("Guest with ID %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &guest, nil
}

func (s *GuestService) Update(ctx context.Context, id string, in GuestInput, restaurantID, userID string) (*models.Guest, error) {
	guest, err := s.FindOne(ctx, id, restaurantID, userID)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, badRequest("Guest name cannot be empty")
		}
		guest.Name = strings.TrimSpace(*in.Name)
	}
	applyGuest(guest, in)
	if err := s.DB.WithContext(ctx).Save(guest).Error; err != nil {
		return nil, err
	}
	return guest, nil
}

// Remove deletes a guest that has no reservations left.
func (s *GuestService) Remove(ctx context.Context, id, restaurantID, userID string) (*models.Guest, error) {
	guest, err := s.FindOne(ctx, id, restaurantID, userID)
	if err != nil {
		return nil, err
	}
	db := s.DB.WithContext(ctx)
	var count int64
	if err := db.Model(&models.Reservation{}).Where("guest_id = ?", id).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, conflict("Guest %s still has %d reservation(s)", id, count)
	}
	if err := db.Delete(&models.Guest{}, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return guest, nil
}

// RecordVisit bumps the guest's visit counter and stamps the visit time.
func (s *GuestService) RecordVisit(ctx context.Context, id, restaurantID, userID string) (*models.Guest, error) {
	if _, err := s.FindOne(ctx, id, restaurantID, userID); err != nil {
		return nil, err
	}
	db := s.DB.WithContext(ctx)
	if err := db.Model(&models.Guest{}).
		Where("id = ? AND restaurant_id = ?", id, restaurantID).
		Updates(map[string]interface{}{
			"visit_count": gorm.Expr("visit_count + ?", 1),
			"last_visit":  time.Now().UTC(),
		}).Error; err != nil {
		return nil, err
	}
	return s.FindOne(ctx, id, restaurantID, userID)
}

func applyGuest(g *models.Guest, in GuestInput) {
	if in.Phone != nil {
		g.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Email != nil {
		g.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.Notes != nil {
		g.Notes = *in.Notes
	}
}
