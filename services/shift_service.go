package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-ops/models"
	"github.com/yeremiapane/restaurant-ops/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const defaultShiftColor = "#75CAA6"

var clockPattern = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):([0-5][0-9])$`)

var weekdays = map[string]string{
	"monday":    "Monday",
	"tuesday":   "Tuesday",
	"wednesday": "Wednesday",
	"thursday":  "Thursday",
	"friday":    "Friday",
	"saturday":  "Saturday",
	"sunday":    "Sunday",
}

type ShiftInput struct {
	Name      *string
	StartTime *string
	EndTime   *string
	Days      []string
	Color     *string
}

// ShiftReservationCount is the number of reservations booked into a shift on
// one local date.
type ShiftReservationCount struct {
	ShiftID string `json:"shiftId"`
	Date    string `json:"date"`
	Count   int    `json:"count"`
}

type ShiftService struct {
	DB   *gorm.DB
	Gate *AccessGate
}

func NewShiftService(db *gorm.DB, gate *AccessGate) *ShiftService {
	return &ShiftService{DB: db, Gate: gate}
}

func (s *ShiftService) Create(ctx context.Context, in ShiftInput, restaurantID, userID string) (*models.Shift, error) {
	if _, err := s.Gate.CheckRestaurant(ctx, restaurantID, userID); err != nil {
		return nil, err
	}
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, badRequest("Shift name is required")
	}
	if in.StartTime == nil || in.EndTime == nil {
		return nil, badRequest("startTime and endTime are required")
	}
	if in.Days == nil {
		return nil, badRequest("At least one day must be selected")
	}

	shift := models.Shift{
		RestaurantID: restaurantID,
		Name:         strings.TrimSpace(*in.Name),
		Color:        defaultShiftColor,
		Active:       true,
	}
	if err := applyShift(&shift, in); err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Create(&shift).Error; err != nil {
		return nil, err
	}
	return &shift, nil
}

func (s *ShiftService) FindAll(ctx context.Context, restaurantID, userID string) ([]models.Shift, error) {
	if _, err := s.Gate.CheckRestaurant(ctx, restaurantID, userID); err != nil {
		return nil, err
	}
	shifts := []models.Shift{}
	err := s.DB.WithContext(ctx).
		Where("restaurant_id = ?", restaurantID).
		Order("created_at ASC").
		Find(&shifts).Error
	return shifts, err
}

func (s *ShiftService) FindOne(ctx context.Context, id, restaurantID, userID string) (*models.Shift, error) {
	if _, err := s.Gate.CheckRestaurant(ctx, restaurantID, userID); err != nil {
		return nil, err
	}
	return loadShift(s.DB.WithContext(ctx), id, restaurantID)
}

func (s *ShiftService) Update(ctx context.Context, id string, in ShiftInput, restaurantID, userID string) (*models.Shift, error) {
	shift, err := s.FindOne(ctx, id, restaurantID, userID)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, badRequest("Shift name cannot be empty")
		}
		shift.Name = strings.TrimSpace(*in.Name)
	}
	if err := applyShift(shift, in); err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Save(shift).Error; err != nil {
		return nil, err
	}
	return shift, nil
}

// SetActive switches a shift on or off without touching its reservations.
func (s *ShiftService) SetActive(ctx context.Context, id string, active bool, restaurantID, userID string) (*models.Shift, error) {
	shift, err := s.FindOne(ctx, id, restaurantID, userID)
	if err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Model(shift).Update("active", active).Error; err != nil {
		return nil, err
	}
	shift.Active = active
	return shift, nil
}

// Remove deletes a shift; its reservations stay and lose the shift reference.
func (s *ShiftService) Remove(ctx context.Context, id, restaurantID, userID string) (*models.Shift, error) {
	shift, err := s.FindOne(ctx, id, restaurantID, userID)
	if err != nil {
		return nil, err
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Reservation{}).
			Where("shift_id = ?", id).
			Update("shift_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Shift{}, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return shift, nil
}

// ReservationCounts counts reservations per shift and local date between
// startDate and endDate (YYYY-MM-DD, both inclusive).
func (s *ShiftService) ReservationCounts(ctx context.Context, restaurantID, startDate, endDate, userID string) ([]ShiftReservationCount, error) {
	restaurant, err := s.Gate.CheckRestaurant(ctx, restaurantID, userID)
	if err != nil {
		return nil, err
	}
	loc := utils.LoadLocation(restaurant.Timezone)
	from, err := time.ParseInLocation("2006-01-02", startDate, loc)
	if err != nil {
		return nil, badRequest("startDate must be formatted as YYYY-MM-DD")
	}
	to, err := time.ParseInLocation("2006-01-02", endDate, loc)
	if err != nil {
		return nil, badRequest("endDate must be formatted as YYYY-MM-DD")
	}
	if to.Before(from) {
		return nil, badRequest("endDate must not be before startDate")
	}

	var rows []struct {
		ShiftID   string
		StartTime time.Time
	}
	err = s.DB.WithContext(ctx).Model(&models.Reservation{}).
		Select("shift_id, start_time").
		Where("restaurant_id = ? AND shift_id IS NOT NULL", restaurantID).
		Where("start_time >= ? AND start_time < ?", from.UTC(), to.AddDate(0, 0, 1).UTC()).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	type key struct{ shiftID, date string }
	counts := map[key]int{}
	for _, r := range rows {
		counts[key{r.ShiftID, r.StartTime.In(loc).Format("2006-01-02")}]++
	}
	out := make([]ShiftReservationCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, ShiftReservationCount{ShiftID: k.shiftID, Date: k.date, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].ShiftID < out[j].ShiftID
	})

	utils.InfoLogger.WithFields(logrus.Fields{
		"restaurant_id": restaurantID,
		"from":          startDate,
		"to":            endDate,
		"groups":        len(out),
	}).Debug("shift reservation counts")
	return out, nil
}

func loadShift(db *gorm.DB, id, restaurantID string) (*models.Shift, error) {
	var shift models.Shift
	err := db.Where("id = ? AND restaurant_id = ?", id, restaurantID).First(&shift).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("Shift with ID %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	return &shift, nil
}

func applyShift(shift *models.Shift, in ShiftInput) error {
	if in.StartTime != nil {
		v, err := normalizeClock(*in.StartTime)
		if err != nil {
			return badRequest("startTime must be in the format HH:MM (24-hour)")
		}
		shift.StartTime = v
	}
	if in.EndTime != nil {
		v, err := normalizeClock(*in.EndTime)
		if err != nil {
			return badRequest("endTime must be in the format HH:MM (24-hour)")
		}
		shift.EndTime = v
	}
	if in.Days != nil {
		days, err := normalizeDays(in.Days)
		if err != nil {
			return err
		}
		shift.Days = datatypes.JSONSlice[string](days)
	}
	if in.Color != nil && strings.TrimSpace(*in.Color) != "" {
		shift.Color = strings.TrimSpace(*in.Color)
	}
	return nil
}

// normalizeClock turns "9:05" into "09:05".
func normalizeClock(v string) (string, error) {
	m := clockPattern.FindStringSubmatch(strings.TrimSpace(v))
	if m == nil {
		return "", fmt.Errorf("invalid clock time %q", v)
	}
	h, _ := strconv.Atoi(m[1])
	return fmt.Sprintf("%02d:%s", h, m[2]), nil
}

func normalizeDays(in []string) ([]string, error) {
	if len(in) == 0 {
		return nil, badRequest("At least one day must be selected")
	}
	seen := map[string]bool{}
	days := make([]string, 0, len(in))
	for _, d := range in {
		name, ok := weekdays[strings.ToLower(strings.TrimSpace(d))]
		if !ok {
			return nil, badRequest("Unknown day %q", d)
		}
		if !seen[name] {
			seen[name] = true
			days = append(days, name)
		}
	}
	return days, nil
}
