package services

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-ops/models"
	"github.com/yeremiapane/restaurant-ops/utils"
	"gorm.io/gorm"
)

const defaultReservationLength = 2 * time.Hour

// ReservationNotifier is told about reservation lifecycle events. It must not
// block and has no way to fail the caller.
type ReservationNotifier interface {
	NotifyConfirmed(restaurant models.Restaurant, n ReservationNotice)
	NotifyCancelled(restaurant models.Restaurant, n ReservationNotice)
}

type ReservationInput struct {
	GuestID        *string
	TableID        *string
	ShiftID        *string
	StartTime      *string
	EndTime        *string
	NumberOfGuests *int
	Status         *models.ReservationStatus
	Source         *models.ReservationSource
	Note           *string
}

type ReservationFilter struct {
	Date    string
	Status  string
	TableID string
	ShiftID string
	Page    int
	Limit   int
}

type ReservationService struct {
	DB       *gorm.DB
	Gate     *AccessGate
	Notifier ReservationNotifier
}

func NewReservationService(db *gorm.DB, gate *AccessGate, notifier ReservationNotifier) *ReservationService {
	return &ReservationService{DB: db, Gate: gate, Notifier: notifier}
}

func (s *ReservationService) Create(ctx context.Context, in ReservationInput, restaurantID, userID string) (*models.Reservation, error) {
	restaurant, err := s.Gate.CheckRestaurant(ctx, restaurantID, userID)
	if err != nil {
		return nil, err
	}
	db := s.DB.WithContext(ctx)
	loc := utils.LoadLocation(restaurant.Timezone)

	if in.GuestID == nil || in.StartTime == nil || in.NumberOfGuests == nil {
		return nil, badRequest("guestId, startTime and numberOfGuests are required")
	}
	if *in.NumberOfGuests < 1 {
		return nil, badRequest("numberOfGuests must be at least 1")
	}
	guest, err := s.guest(db, *in.GuestID, restaurantID)
	if err != nil {
		return nil, err
	}

	start, end, err := resolveSlot(in.StartTime, in.EndTime, nil, nil, loc)
	if err != nil {
		return nil, err
	}

	reservation := models.Reservation{
		RestaurantID:   restaurantID,
		GuestID:        guest.ID,
		StartTime:      start,
		EndTime:        end,
		NumberOfGuests: *in.NumberOfGuests,
		Status:         models.ReservationPending,
		Source:         models.SourcePhone,
	}
	if in.Status != nil {
		reservation.Status = *in.Status
	}
	if in.Source != nil {
		reservation.Source = *in.Source
	}
	if in.Note != nil {
		reservation.Note = *in.Note
	}
	if in.TableID != nil && *in.TableID != "" {
		if err := s.ensureSeatable(db, *in.TableID, restaurantID); err != nil {
			return nil, err
		}
		reservation.TableID = in.TableID
	}
	if in.ShiftID != nil && *in.ShiftID != "" {
		if _, err := loadShift(db, *in.ShiftID, restaurantID); err != nil {
			return nil, err
		}
		reservation.ShiftID = in.ShiftID
	}

	if err := db.Create(&reservation).Error; err != nil {
		return nil, err
	}

	if reservation.Status != models.ReservationCancelled {
		s.notify(true, restaurant, guest, &reservation)
	}
	return s.FindOne(ctx, reservation.ID, restaurantID, userID)
}

func (s *ReservationService) FindAll(ctx context.Context, restaurantID string, f ReservationFilter, userID string) ([]models.Reservation, int64, error) {
	restaurant, err := s.Gate.CheckRestaurant(ctx, restaurantID, userID)
	if err != nil {
		return nil, 0, err
	}

	q := s.DB.WithContext(ctx).Model(&models.Reservation{}).Where("restaurant_id = ?", restaurantID)
	if f.Date != "" {
		day, err := time.ParseInLocation("2006-01-02", f.Date, utils.LoadLocation(restaurant.Timezone))
		if err != nil {
			return nil, 0, badRequest("date must be formatted as YYYY-MM-DD")
		}
		q = q.Where("start_time >= ? AND start_time < ?", day.UTC(), day.AddDate(0, 0, 1).UTC())
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.TableID != "" {
		q = q.Where("table_id = ?", f.TableID)
	}
	if f.ShiftID != "" {
		q = q.Where("shift_id = ?", f.ShiftID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, limit := normalizePage(f.Page, f.Limit)
	reservations := []models.Reservation{}
	err = q.Preload("Guest").Preload("Table").Preload("Shift").
		Order("start_time ASC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&reservations).Error
	return reservations, total, err
}

// FindByShift lists every reservation booked into a shift, optionally
// limited to one local date (YYYY-MM-DD).
func (s *ReservationService) FindByShift(ctx context.Context, shiftID, date, restaurantID, userID string) ([]models.Reservation, error) {
	restaurant, err := s.Gate.CheckRestaurant(ctx, restaurantID, userID)
	if err != nil {
		return nil, err
	}
	db := s.DB.WithContext(ctx)
	if _, err := loadShift(db, shiftID, restaurantID); err != nil {
		return nil, err
	}

	q := db.Where("restaurant_id = ? AND shift_id = ?", restaurantID, shiftID)
	if date != "" {
		day, err := time.ParseInLocation("2006-01-02", date, utils.LoadLocation(restaurant.Timezone))
		if err != nil {
			return nil, badRequest("date must be formatted as YYYY-MM-DD")
		}
		q = q.Where("start_time >= ? AND start_time < ?", day.UTC(), day.AddDate(0, 0, 1).UTC())
	}
	reservations := []models.Reservation{}
	err = q.Preload("Guest").Preload("Table").Order("start_time ASC").Find(&reservations).Error
	return reservations, err
}

func (s *ReservationService) FindOne(ctx context.Context, id, restaurantID, userID string) (*models.Reservation, error) {
	if _, err := s.Gate.CheckRestaurant(ctx, restaurantID, userID); err != nil {
		return nil, err
	}
	return s.load(s.DB.WithContext(ctx), id, restaurantID)
}

func (s *ReservationService) Update(ctx context.Context, id string, in ReservationInput, restaurantID, userID string) (*models.Reservation, error) {
	restaurant, err := s.Gate.CheckRestaurant(ctx, restaurantID, userID)
	if err != nil {
		return nil, err
	}
	db := s.DB.WithContext(ctx)
	current, err := s.load(db, id, restaurantID)
	if err != nil {
		return nil, err
	}

	changes := map[string]interface{}{}
	if in.GuestID != nil {
		if _, err := s.guest(db, *in.GuestID, restaurantID); err != nil {
			return nil, err
		}
		changes["guest_id"] = *in.GuestID
	}
	if in.StartTime != nil || in.EndTime != nil {
		start, end, err := resolveSlot(in.StartTime, in.EndTime, &current.StartTime, &current.EndTime, utils.LoadLocation(restaurant.Timezone))
		if err != nil {
			return nil, err
		}
		changes["start_time"] = start
		changes["end_time"] = end
	}
	if in.NumberOfGuests != nil {
		if *in.NumberOfGuests < 1 {
			return nil, badRequest("numberOfGuests must be at least 1")
		}
		changes["number_of_guests"] = *in.NumberOfGuests
	}
	if in.TableID != nil {
		if *in.TableID == "" {
			changes["table_id"] = nil
		} else {
			if err := s.ensureSeatable(db, *in.TableID, restaurantID); err != nil {
				return nil, err
			}
			changes["table_id"] = *in.TableID
		}
	}
	if in.ShiftID != nil {
		if *in.ShiftID == "" {
			changes["shift_id"] = nil
		} else {
			if _, err := loadShift(db, *in.ShiftID, restaurantID); err != nil {
				return nil, err
			}
			changes["shift_id"] = *in.ShiftID
		}
	}
	if in.Status != nil {
		changes["status"] = *in.Status
	}
	if in.Source != nil {
		changes["source"] = *in.Source
	}
	if in.Note != nil {
		changes["note"] = *in.Note
	}

	if len(changes) > 0 {
		if err := db.Model(&models.Reservation{}).Where("id = ?", id).Updates(changes).Error; err != nil {
			return nil, err
		}
	}
	updated, err := s.load(db, id, restaurantID)
	if err != nil {
		return nil, err
	}
	if current.Status != models.ReservationCancelled && updated.Status == models.ReservationCancelled {
		s.notify(false, restaurant, updated.Guest, updated)
	}
	return updated, nil
}

// AssignTable seats the reservation at tableID, or clears the assignment
// when tableID is empty.
func (s *ReservationService) AssignTable(ctx context.Context, id, tableID string, note *string, restaurantID, userID string) (*models.Reservation, error) {
	return s.Update(ctx, id, ReservationInput{TableID: &tableID, Note: note}, restaurantID, userID)
}

func (s *ReservationService) Cancel(ctx context.Context, id, restaurantID, userID string) (*models.Reservation, error) {
	status := models.ReservationCancelled
	return s.Update(ctx, id, ReservationInput{Status: &status}, restaurantID, userID)
}

func (s *ReservationService) Remove(ctx context.Context, id, restaurantID, userID string) (*models.Reservation, error) {
	restaurant, err := s.Gate.CheckRestaurant(ctx, restaurantID, userID)
	if err != nil {
		return nil, err
	}
	db := s.DB.WithContext(ctx)
	reservation, err := s.load(db, id, restaurantID)
	if err != nil {
		return nil, err
	}
	if err := db.Delete(&models.Reservation{}, "id = ?", id).Error; err != nil {
		return nil, err
	}
	if reservation.Status != models.ReservationCancelled && reservation.StartTime.After(time.Now()) {
		s.notify(false, restaurant, reservation.Guest, reservation)
	}
	return reservation, nil
}

func (s *ReservationService) notify(confirmed bool, restaurant *models.Restaurant, guest *models.Guest, r *models.Reservation) {
	if s.Notifier == nil || guest == nil || guest.Phone == "" {
		return
	}
	n := ReservationNotice{
		GuestName:      guest.Name,
		GuestPhone:     guest.Phone,
		StartTime:      r.StartTime,
		NumberOfGuests: r.NumberOfGuests,
	}
	utils.InfoLogger.WithFields(logrus.Fields{
		"reservation_id": r.ID,
		"confirmed":      confirmed,
	}).Debug("queueing reservation sms")
	if confirmed {
		s.Notifier.NotifyConfirmed(*restaurant, n)
	} else {
		s.Notifier.NotifyCancelled(*restaurant, n)
	}
}

func (s *ReservationService) load(db *gorm.DB, id, restaurantID string) (*models.Reservation, error) {
	var r models.Reservation
	err := db.Preload("Guest").Preload("Table").Preload("Shift").
		Where("id = ? AND restaurant_id = ?", id, restaurantID).
		First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("Reservation with ID %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *ReservationService) guest(db *gorm.DB, id, restaurantID string) (*models.Guest, error) {
	var g models.Guest
	err := db.Where("id = ? AND restaurant_id = ?", id, restaurantID).First(&g).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("Guest with ID %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *ReservationService) ensureSeatable(db *gorm.DB, tableID, restaurantID string) error {
	var t models.Table
	err := db.Where("id = ? AND restaurant_id = ?", tableID, restaurantID).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound("Table with ID %s not found", tableID)
	}
	if err != nil {
		return err
	}
	if t.IsHidden {
		return badRequest("Table %s is part of a merged table", tableID)
	}
	return nil
}

// resolveSlot parses start/end, keeping the current values for whichever is
// omitted. A missing end on a new reservation defaults to start + 2h.
func resolveSlot(startRaw, endRaw *string, curStart, curEnd *time.Time, loc *time.Location) (time.Time, time.Time, error) {
	var start, end time.Time
	switch {
	case startRaw != nil:
		t, err := utils.ParseLocalTime(*startRaw, loc)
		if err != nil {
			return start, end, badRequest("startTime: %v", err)
		}
		start = t
	case curStart != nil:
		start = *curStart
	}

	switch {
	case endRaw != nil && *endRaw != "":
		t, err := utils.ParseLocalTime(*endRaw, loc)
		if err != nil {
			return start, end, badRequest("endTime: %v", err)
		}
		end = t
	case curEnd != nil && curStart != nil:
		end = start.Add(curEnd.Sub(*curStart))
	default:
		end = start.Add(defaultReservationLength)
	}

	if !end.After(start) {
		return start, end, badRequest("endTime must be after startTime")
	}
	return start.UTC(), end.UTC(), nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	return page, limit
}
