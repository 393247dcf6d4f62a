package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-ops/models"
	"github.com/yeremiapane/restaurant-ops/services"
	"github.com/yeremiapane/restaurant-ops/utils"
)

type ReservationController struct {
	Service *services.ReservationService
}

func NewReservationController(service *services.ReservationService) *ReservationController {
	return &ReservationController{Service: service}
}

type reservationRequest struct {
	GuestID        *string                   `json:"guestId"`
	TableID        *string                   `json:"tableId"`
	StartTime      *string                   `json:"startTime"`
	EndTime        *string                   `json:"endTime"`
	NumberOfGuests *int                      `json:"numberOfGuests" binding:"omitempty,min=1"`
	Status         *models.ReservationStatus `json:"status" binding:"omitempty,oneof=PENDING CONFIRMED SEATED COMPLETED CANCELLED NO_SHOW"`
	Source         *models.ReservationSource `json:"source" binding:"omitempty,oneof=PHONE WALK_IN ONLINE OTHER"`
	Note           *string                   `json:"note"`
	ShiftID        *string                   `json:"shiftId"`
}

func (r reservationRequest) input() services.ReservationInput {
	return services.ReservationInput{
		GuestID:        r.GuestID,
		TableID:        r.TableID,
		StartTime:      r.StartTime,
		EndTime:        r.EndTime,
		NumberOfGuests: r.NumberOfGuests,
		Status:         r.Status,
		Source:         r.Source,
		Note:           r.Note,
		ShiftID:        r.ShiftID,
	}
}

type assignTableRequest struct {
	TableID *string `json:"tableId"`
	Note    *string `json:"note"`
}

func (rc *ReservationController) CreateReservation(c *gin.Context) {
	rid, ok := restaurantID(c)
	if !ok {
		return
	}
	var req reservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	reservation, err := rc.Service.Create(c.Request.Context(), req.input(), rid, currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Reservation created successfully", reservation)
}

// GetAllReservations -> GET /reservations?date=&status=&tableId=&shiftId=&page=&limit=
func (rc *ReservationController) GetAllReservations(c *gin.Context) {
	rid, ok := restaurantID(c)
	if !ok {
		return
	}
	filter := services.ReservationFilter{
		Date:    c.Query("date"),
		Status:  c.Query("status"),
		TableID: c.Query("tableId"),
		ShiftID: c.Query("shiftId"),
		Page:    queryInt(c, "page"),
		Limit:   queryInt(c, "limit"),
	}
	reservations, total, err := rc.Service.FindAll(c.Request.Context(), rid, filter, currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of reservations", gin.H{
		"items": reservations,
		"total": total,
	})
}

// GetReservationsByShift -> GET /reservations/by-shift/:shiftId[?date=]
func (rc *ReservationController) GetReservationsByShift(c *gin.Context) {
	rid, ok := restaurantID(c)
	if !ok {
		return
	}
	reservations, err := rc.Service.FindByShift(c.Request.Context(), c.Param("shiftId"), c.Query("date"), rid, currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservations for shift", reservations)
}

func (rc *ReservationController) GetReservationByID(c *gin.Context) {
	rid, ok := restaurantID(c)
	if !ok {
		return
	}
	reservation, err := rc.Service.FindOne(c.Request.Context(), c.Param("id"), rid, currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation detail", reservation)
}

func (rc *ReservationController) UpdateReservation(c *gin.Context) {
	rid, ok := restaurantID(c)
	if !ok {
		return
	}
	var req reservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	reservation, err := rc.Service.Update(c.Request.Context(), c.Param("id"), req.input(), rid, currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation updated", reservation)
}

// AssignTable -> PATCH /reservations/:id/table {tableId|null}
func (rc *ReservationController) AssignTable(c *gin.Context) {
	rid, ok := restaurantID(c)
	if !ok {
		return
	}
	var req assignTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	tableID := ""
	if req.TableID != nil {
		tableID = *req.TableID
	}
	reservation, err := rc.Service.AssignTable(c.Request.Context(), c.Param("id"), tableID, req.Note, rid, currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table assigned", reservation)
}

func (rc *ReservationController) CancelReservation(c *gin.Context) {
	rid, ok := restaurantID(c)
	if !ok {
		return
	}
	reservation, err := rc.Service.Cancel(c.Request.Context(), c.Param("id"), rid, currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation cancelled", reservation)
}

func (rc *ReservationController) DeleteReservation(c *gin.Context) {
	rid, ok := restaurantID(c)
	if !ok {
		return
	}
	reservation, err := rc.Service.Remove(c.Request.Context(), c.Param("id"), rid, currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation deleted", gin.H{"id": reservation.ID})
}
