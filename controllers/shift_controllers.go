package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-ops/services"
	"github.com/yeremiapane/restaurant-ops/utils"
)

type ShiftController struct {
	Service *services.ShiftService
}

func NewShiftController(service *services.ShiftService) *ShiftController {
	return &ShiftController{Service: service}
}

type shiftRequest struct {
	Name      *string  `json:"name" binding:"omitempty,min=1,max=100"`
	StartTime *string  `json:"startTime"`
	EndTime   *string  `json:"endTime"`
	Days      []string `json:"days"`
	Color     *string  `json:"color" binding:"omitempty,max=20"`
}

func (r shiftRequest) input() services.ShiftInput {
	return services.ShiftInput{
		Name:      r.Name,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		Days:      r.Days,
		Color:     r.Color,
	}
}

func (sc *ShiftController) CreateShift(c *gin.Context) {
	rid, ok := restaurantID(c)
	if !ok {
		return
	}
	var req shiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	shift, err := sc.Service.Create(c.Request.Context(), req.input(), rid, currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Shift created successfully", shift)
}

func (sc *ShiftController) GetAllShifts(c *gin.Context) {
	rid, ok := restaurantID(c)
	if !ok {
		return
	}
	shifts, err := sc.Service.FindAll(c.Request.Context(), rid, currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of shifts", shifts)
}

func (sc *ShiftController) GetShiftByID(c *gin.Context) {
	rid, ok := restaurantID(c)
	if !ok {
		return
	}
	shift, err := sc.Service.FindOne(c.Request.Context(), c.Param("id"), rid, currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Shift detail", shift)
}

func (sc *ShiftController) UpdateShift(c *gin.Context) {
	rid, ok := restaurantID(c)
	if !ok {
		return
	}
	var req shiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	shift, err := sc.Service.Update(c.Request.Context(), c.Param("id"), req.input(), rid, currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Shift updated", shift)
}

// SetShiftActive -> PATCH /shifts/:id/active {active}
func (sc *ShiftController) SetShiftActive(c *gin.Context) {
	rid, ok := restaurantID(c)
	if !ok {
		return
	}
	var req struct {
		Active *bool `json:"active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	shift, err := sc.Service.SetActive(c.Request.Context(), c.Param("id"), *req.Active, rid, currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Shift status updated", shift)
}

func (sc *ShiftController) DeleteShift(c *gin.Context) {
	rid, ok := restaurantID(c)
	if !ok {
		return
	}
	shift, err := sc.Service.Remove(c.Request.Context(), c.Param("id"), rid, currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Shift deleted", gin.H{"id": shift.ID})
}

// GetReservationCounts -> GET /shifts/reservation-counts?startDate=&endDate=
func (sc *ShiftController) GetReservationCounts(c *gin.Context) {
	rid, ok := restaurantID(c)
	if !ok {
		return
	}
	counts, err := sc.Service.ReservationCounts(c.Request.Context(), rid, c.Query("startDate"), c.Query("endDate"), currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation counts by shift", counts)
}
