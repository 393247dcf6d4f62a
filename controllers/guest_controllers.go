package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-ops/services"
	"github.com/yeremiapane/restaurant-ops/utils"
)

type GuestController struct {
	Service *services.GuestService
}

func NewGuestController(service *services.GuestService) *GuestController {
	return &GuestController{Service: service}
}

type guestRequest struct {
	Name  *string `json:"name" binding:"omitempty,min=1,max=255"`
	Phone *string `json:"phone" binding:"omitempty,max=50"`
	Email *string `json:"email" binding:"omitempty,email"`
	Notes *string `json:"notes"`
}

func (r guestRequest) input() services.GuestInput {
	return services.GuestInput{Name: r.Name, Phone: r.Phone, Email: r.Email, Notes: r.Notes}
}

func (gc *GuestController) CreateGuest(c *gin.Context) {
	rid, ok := restaurantID(c)
	if !ok {
		return
	}
	var req guestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	guest, err := gc.Service.Create(c.Request.Context(), req.input(), rid, currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Guest created successfully", guest)
}

// GetAllGuests -> GET /guests[?q=]
func (gc *GuestController) GetAllGuests(c *gin.Context) {
	rid, ok := restaurantID(c)
	if !ok {
		return
	}
	guests, err := gc.Service.FindAll(c.Request.Context(), rid, c.Query("q"), currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of guests", guests)
}

func (gc *GuestController) GetGuestByID(c *gin.Context) {
	rid, ok := restaurantID(c)
	if !ok {
		return
	}
	guest, err := gc.Service.FindOne(c.Request.Context(), c.Param("id"), rid, currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Guest detail", guest)
}

func (gc *GuestController) UpdateGuest(c *gin.Context) {
	rid, ok := restaurantID(c)
	if !ok {
		return
	}
	var req guestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	guest, err := gc.Service.Update(c.Request.Context(), c.Param("id"), req.input(), rid, currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Guest updated", guest)
}

func (gc *GuestController) DeleteGuest(c *gin.Context) {
	rid, ok := restaurantID(c)
	if !ok {
		return
	}
	guest, err := gc.Service.Remove(c.Request.Context(), c.Param("id"), rid, currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Guest deleted", guest)
}

// RecordVisit -> POST /guests/:id/record-visit
func (gc *GuestController) RecordVisit(c *gin.Context) {
	rid, ok := restaurantID(c)
	if !ok {
		return
	}
	guest, err := gc.Service.RecordVisit(c.Request.Context(), c.Param("id"), rid, currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Guest visit recorded", guest)
}
