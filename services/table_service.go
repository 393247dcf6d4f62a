package services

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-ops/models"
	"github.com/yeremiapane/restaurant-ops/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CreateTableInput struct {
	Name     string
	Capacity int
	X        float64
	Y        float64
	Status   models.TableStatus
	Color    *string
	FloorID  *string
}

// UpdateTableInput holds the fields to change; nil means "leave as is".
// An empty FloorID detaches the table from its floor.
// Merge bookkeeping (isMerged, mergedTableIds, parentTableId, isHidden) is
// owned by MergeTables/UnmergeTables and cannot be set here.
type UpdateTableInput struct {
	Name     *string
	Capacity *int
	X        *float64
	Y        *float64
	Status   *models.TableStatus
	Color    *string
	FloorID  *string
}

type TableService struct {
	DB   *gorm.DB
	Gate *AccessGate
}

func NewTableService(db *gorm.DB, gate *AccessGate) *TableService {
	return &TableService{DB: db, Gate: gate}
}

func (s *TableService) Create(ctx context.Context, in CreateTableInput, restaurantID, userID string) (*models.Table, error) {
	if _, err := s.Gate.CheckRestaurant(ctx, restaurantID, userID); err != nil {
		return nil, err
	}
	db := s.DB.WithContext(ctx)

	if err := s.ensureNameFree(db, restaurantID, in.Name, ""); err != nil {
		return nil, err
	}
	if in.FloorID != nil && *in.FloorID == "" {
		in.FloorID = nil
	}
	if in.FloorID != nil {
		if err := s.ensureFloor(db, restaurantID, *in.FloorID); err != nil {
			return nil, err
		}
	}

	table := models.Table{
		Name:         in.Name,
		Capacity:     in.Capacity,
		X:            in.X,
		Y:            in.Y,
		Status:       in.Status,
		Color:        in.Color,
		RestaurantID: restaurantID,
		FloorID:      in.FloorID,
	}
	if table.Status == "" {
		table.Status = models.TableAvailable
	}
	if err := db.Create(&table).Error; err != nil {
		return nil, err
	}
	return &table, nil
}

func (s *TableService) FindAll(ctx context.Context, restaurantID string, floorID *string, userID string) ([]models.Table, error) {
	if _, err := s.Gate.CheckRestaurant(ctx, restaurantID, userID); err != nil {
		return nil, err
	}

	q := s.DB.WithContext(ctx).Where("restaurant_id = ?", restaurantID)
	if floorID != nil && *floorID != "" {
		q = q.Where("floor_id = ?", *floorID)
	}

	tables := []models.Table{}
	if err := q.Order("created_at ASC").Find(&tables).Error; err != nil {
		return nil, err
	}
	return tables, nil
}

func (s *TableService) FindOne(ctx context.Context, id, restaurantID, userID string) (*models.Table, error) {
	if _, err := s.Gate.CheckRestaurant(ctx, restaurantID, userID); err != nil {
		return nil, err
	}
	return s.load(s.DB.WithContext(ctx), id, restaurantID)
}

func (s *TableService) Update(ctx context.Context, id string, in UpdateTableInput, restaurantID, userID string) (*models.Table, error) {
	current, err := s.FindOne(ctx, id, restaurantID, userID)
	if err != nil {
		return nil, err
	}
	db := s.DB.WithContext(ctx)

	changes := map[string]interface{}{}
	if in.Name != nil {
		if err := s.ensureNameFree(db, restaurantID, *in.Name, id); err != nil {
			return nil, err
		}
		changes["name"] = *in.Name
	}
	if in.FloorID != nil {
		if *in.FloorID == "" {
			changes["floor_id"] = nil
		} else {
			if err := s.ensureFloor(db, restaurantID, *in.FloorID); err != nil {
				return nil, err
			}
			changes["floor_id"] = *in.FloorID
		}
	}
	if in.Capacity != nil {
		changes["capacity"] = *in.Capacity
	}
	if in.X != nil {
		changes["x"] = *in.X
	}
	if in.Y != nil {
		changes["y"] = *in.Y
	}
	if in.Status != nil {
		changes["status"] = *in.Status
	}
	if in.Color != nil {
		changes["color"] = *in.Color
	}
	if len(changes) == 0 {
		return current, nil
	}

	return s.apply(db, id, restaurantID, changes)
}

func (s *TableService) UpdatePosition(ctx context.Context, id string, x, y float64, restaurantID, userID string) (*models.Table, error) {
	if _, err := s.FindOne(ctx, id, restaurantID, userID); err != nil {
		return nil, err
	}
	return s.apply(s.DB.WithContext(ctx), id, restaurantID, map[string]interface{}{"x": x, "y": y})
}

func (s *TableService) UpdateStatus(ctx context.Context, id string, status models.TableStatus, restaurantID, userID string) (*models.Table, error) {
	if _, err := s.FindOne(ctx, id, restaurantID, userID); err != nil {
		return nil, err
	}
	return s.apply(s.DB.WithContext(ctx), id, restaurantID, map[string]interface{}{"status": status})
}

// Remove hard-deletes a table. An active composite has to be unmerged first.
func (s *TableService) Remove(ctx context.Context, id, restaurantID, userID string) (*models.Table, error) {
	table, err := s.FindOne(ctx, id, restaurantID, userID)
	if err != nil {
		return nil, err
	}
	if table.IsMerged {
		return nil, badRequest("Table %s is a merged table, unmerge it before deleting", id)
	}

	res := s.DB.WithContext(ctx).Where("id = ? AND restaurant_id = ?", id, restaurantID).Delete(&models.Table{})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, notFound("Table with ID %s not found", id)
	}
	return table, nil
}

// MergeTables combines two or more unmerged tables into a composite. The
// composite takes name, color and floor from tableIDs[0], the top-left corner
// of the set as position and the summed capacity.
func (s *TableService) MergeTables(ctx context.Context, tableIDs []string, restaurantID, userID string) (*models.Table, error) {
	if _, err := s.Gate.CheckRestaurant(ctx, restaurantID, userID); err != nil {
		return nil, err
	}
	if len(tableIDs) < 2 {
		return nil, badRequest("At least 2 tables are required for merging")
	}
	seen := make(map[string]struct{}, len(tableIDs))
	for _, id := range tableIDs {
		if _, dup := seen[id]; dup {
			return nil, badRequest("Table %s is listed more than once", id)
		}
		seen[id] = struct{}{}
	}

	db := s.DB.WithContext(ctx)

	var tables []models.Table
	if err := db.Where("id IN ? AND restaurant_id = ?", tableIDs, restaurantID).Find(&tables).Error; err != nil {
		return nil, err
	}
	if len(tables) != len(tableIDs) {
		return nil, notFound("One or more tables not found or do not belong to this restaurant")
	}

	byID := make(map[string]models.Table, len(tables))
	for _, t := range tables {
		if t.InMerge() {
			return nil, badRequest("Cannot merge tables that are already part of a merged table")
		}
		byID[t.ID] = t
	}

	first := byID[tableIDs[0]]
	minX, minY := first.X, first.Y
	capacity := 0
	for _, t := range tables {
		if t.X < minX {
			minX = t.X
		}
		if t.Y < minY {
			minY = t.Y
		}
		capacity += t.Capacity
	}

	composite := models.Table{
		Name:           "Merged Table " + first.Name,
		Capacity:       capacity,
		X:              minX,
		Y:              minY,
		Status:         models.TableAvailable,
		Color:          first.Color,
		RestaurantID:   restaurantID,
		FloorID:        first.FloorID,
		IsMerged:       true,
		MergedTableIDs: datatypes.JSONSlice[string](append([]string(nil), tableIDs...)),
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := s.ensureNameFree(tx, restaurantID, composite.Name, ""); err != nil {
			return err
		}
		if err := tx.Create(&composite).Error; err != nil {
			return err
		}
		// The parent_table_id guard makes a concurrent merge of an overlapping
		// set update fewer rows and roll back instead of double-merging.
		res := tx.Model(&models.Table{}).
			Where("id IN ? AND restaurant_id = ? AND parent_table_id IS NULL", tableIDs, restaurantID).
			Updates(map[string]interface{}{"is_hidden": true, "parent_table_id": composite.ID})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != int64(len(tableIDs)) {
			return badRequest("Cannot merge tables that are already part of a merged table")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"restaurant_id": restaurantID,
		"composite_id":  composite.ID,
		"tables":        tableIDs,
		"capacity":      capacity,
	}).Info("tables merged")
	return &composite, nil
}

// UnmergeTables restores the components of a composite and deletes it. The
// restored tables are returned in the order they were merged.
func (s *TableService) UnmergeTables(ctx context.Context, id, restaurantID, userID string) ([]models.Table, error) {
	composite, err := s.FindOne(ctx, id, restaurantID, userID)
	if err != nil {
		return nil, err
	}
	if !composite.IsMerged || len(composite.MergedTableIDs) == 0 {
		return nil, badRequest("This is not a merged table")
	}
	ids := []string(composite.MergedTableIDs)

	var restored []models.Table
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Table{}).
			Where("id IN ? AND parent_table_id = ?", ids, composite.ID).
			Updates(map[string]interface{}{"parent_table_id": nil, "is_hidden": false}).Error; err != nil {
			return err
		}

		res := tx.Where("id = ? AND restaurant_id = ?", composite.ID, restaurantID).Delete(&models.Table{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return notFound("Table with ID %s not found", id)
		}

		return tx.Where("id IN ?", ids).Find(&restored).Error
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"restaurant_id": restaurantID,
		"composite_id":  composite.ID,
		"tables":        ids,
	}).Info("tables unmerged")
	return orderByIDs(restored, ids), nil
}

func (s *TableService) load(db *gorm.DB, id, restaurantID string) (*models.Table, error) {
	var table models.Table
	err := db.Where("id = ? AND restaurant_id = ?", id, restaurantID).First(&table).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("Table with ID %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &table, nil
}

// apply writes changes and re-reads the row; a row that disappeared in
// between is reported as not found.
func (s *TableService) apply(db *gorm.DB, id, restaurantID string, changes map[string]interface{}) (*models.Table, error) {
	if err := db.Model(&models.Table{}).
		Where("id = ? AND restaurant_id = ?", id, restaurantID).
		Updates(changes).Error; err != nil {
		return nil, err
	}
	return s.load(db, id, restaurantID)
}

func (s *TableService) ensureNameFree(db *gorm.DB, restaurantID, name, exceptID string) error {
	q := db.Model(&models.Table{}).Where("restaurant_id = ? AND name = ?", restaurantID, name)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return conflict("A table with the name %q already exists in this restaurant", name)
	}
	return nil
}

func (s *TableService) ensureFloor(db *gorm.DB, restaurantID, floorID string) error {
	var count int64
	if err := db.Model(&models.Floor{}).
		Where("id = ? AND restaurant_id = ?", floorID, restaurantID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return notFound("Floor with ID %s not found in this restaurant", floorID)
	}
	return nil
}

func orderByIDs(tables []models.Table, ids []string) []models.Table {
	pos := make(map[string]int, len(ids))
	for i, id := range ids {
		pos[id] = i
	}
	out := make([]models.Table, len(ids))
	n := 0
	for _, t := range tables {
		if i, ok := pos[t.ID]; ok {
			out[i] = t
			n++
		}
	}
	if n == len(ids) {
		return out
	}
	// some components were deleted while merged; keep the survivors in order
	compact := make([]models.Table, 0, n)
	for _, t := range out {
		if t.ID != "" {
			compact = append(compact, t)
		}
	}
	return compact
}
