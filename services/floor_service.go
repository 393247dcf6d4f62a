package services

import (
	"context"
	"errors"

	"github.com/yeremiapane/restaurant-ops/models"
	"gorm.io/gorm"
)

type FloorInput struct {
	Name  *string
	Type  *models.FloorType
	Color *string
}

type FloorService struct {
	DB   *gorm.DB
	Gate *AccessGate
}

func NewFloorService(db *gorm.DB, gate *AccessGate) *FloorService {
	return &FloorService{DB: db, Gate: gate}
}

func (s *FloorService) Create(ctx context.Context, in FloorInput, restaurantID, userID string) (*models.Floor, error) {
	if _, err := s.Gate.CheckRestaurant(ctx, restaurantID, userID); err != nil {
		return nil, err
	}
	if in.Name == nil || *in.Name == "" {
		return nil, badRequest("Floor name is required")
	}
	db := s.DB.WithContext(ctx)
	if err := s.ensureNameFree(db, restaurantID, *in.Name, ""); err != nil {
		return nil, err
	}

	floor := models.Floor{
		Name:         *in.Name,
		Type:         models.FloorIndoor,
		Color:        "#000000",
		RestaurantID: restaurantID,
	}
	if in.Type != nil {
		floor.Type = *in.Type
	}
	if in.Color != nil {
		floor.Color = *in.Color
	}
	if err := db.Create(&floor).Error; err != nil {
		return nil, err
	}
	return &floor, nil
}

func (s *FloorService) FindAll(ctx context.Context, restaurantID, userID string) ([]models.Floor, error) {
	if _, err := s.Gate.CheckRestaurant(ctx, restaurantID, userID); err != nil {
		return nil, err
	}
	floors := []models.Floor{}
	err := s.DB.WithContext(ctx).
		Where("restaurant_id = ?", restaurantID).
		Order("created_at ASC").
		Find(&floors).Error
	return floors, err
}

func (s *FloorService) FindOne(ctx context.Context, id, restaurantID, userID string) (*models.Floor, error) {
	if _, err := s.Gate.CheckRestaurant(ctx, restaurantID, userID); err != nil {
		return nil, err
	}
	var floor models.Floor
	err := s.DB.WithContext(ctx).Where("id = ? AND restaurant_id = ?", id, restaurantID).First(&floor).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("Floor with ID %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &floor, nil
}

// Tables lists the tables placed on a floor, hidden merge components
// included.
func (s *FloorService) Tables(ctx context.Context, id, restaurantID, userID string) ([]models.Table, error) {
	if _, err := s.FindOne(ctx, id, restaurantID, userID); err != nil {
		return nil, err
	}
	tables := []models.Table{}
	err := s.DB.WithContext(ctx).
		Where("restaurant_id = ? AND floor_id = ?", restaurantID, id).
		Order("created_at ASC").
		Find(&tables).Error
	return tables, err
}

func (s *FloorService) Update(ctx context.Context, id string, in FloorInput, restaurantID, userID string) (*models.Floor, error) {
	floor, err := s.FindOne(ctx, id, restaurantID, userID)
	if err != nil {
		return nil, err
	}
	db := s.DB.WithContext(ctx)

	if in.Name != nil {
		if err := s.ensureNameFree(db, restaurantID, *in.Name, id); err != nil {
			return nil, err
		}
		floor.Name = *in.Name
	}
	if in.Type != nil {
		floor.Type = *in.Type
	}
	if in.Color != nil {
		floor.Color = *in.Color
	}
	if err := db.Save(floor).Error; err != nil {
		return nil, err
	}
	return floor, nil
}

// Remove deletes a floor and detaches its tables. The last floor of a
// restaurant cannot be removed.
func (s *FloorService) Remove(ctx context.Context, id, restaurantID, userID string) (*models.Floor, error) {
	floor, err := s.FindOne(ctx, id, restaurantID, userID)
	if err != nil {
		return nil, err
	}
	db := s.DB.WithContext(ctx)

	var count int64
	if err := db.Model(&models.Floor{}).Where("restaurant_id = ?", restaurantID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count <= 1 {
		return nil, forbidden("Cannot delete the only floor in a restaurant. Create another floor first.")
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Table{}).
			Where("floor_id = ?", id).
			Update("floor_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Floor{}, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return floor, nil
}

func (s *FloorService) ensureNameFree(db *gorm.DB, restaurantID, name, exceptID string) error {
	q := db.Model(&models.Floor{}).Where("restaurant_id = ? AND name = ?", restaurantID, name)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return conflict("A floor with the name %q already exists in this restaurant", name)
	}
	return nil
}
