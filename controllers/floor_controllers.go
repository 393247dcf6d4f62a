package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-ops/models"
	"github.com/yeremiapane/restaurant-ops/services"
	"github.com/yeremiapane/restaurant-ops/utils"
)

type FloorController struct {
	Service *services.FloorService
}

func NewFloorController(service *services.FloorService) *FloorController {
	return &FloorController{Service: service}
}

type floorRequest struct {
	Name  *string           `json:"name" binding:"omitempty,min=1,max=100"`
	Type  *models.FloorType `json:"type" binding:"omitempty,oneof=INDOOR OUTDOOR TERRACE PRIVATE"`
	Color *string           `json:"color" binding:"omitempty,max=20"`
}

func (r floorRequest) input() services.FloorInput {
	return services.FloorInput{Name: r.Name, Type: r.Type, Color: r.Color}
}

func (fc *FloorController) CreateFloor(c *gin.Context) {
	rid, ok := restaurantID(c)
	if !ok {
		return
	}
	var req floorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	floor, err := fc.Service.Create(c.Request.Context(), req.input(), rid, currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Floor created successfully", floor)
}

func (fc *FloorController) GetAllFloors(c *gin.Context) {
	rid, ok := restaurantID(c)
	if !ok {
		return
	}
	floors, err := fc.Service.FindAll(c.Request.Context(), rid, currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of floors", floors)
}

func (fc *FloorController) GetFloorByID(c *gin.Context) {
	rid, ok := restaurantID(c)
	if !ok {
		return
	}
	floor, err := fc.Service.FindOne(c.Request.Context(), c.Param("id"), rid, currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Floor detail", floor)
}

func (fc *FloorController) UpdateFloor(c *gin.Context) {
	rid, ok := restaurantID(c)
	if !ok {
		return
	}
	var req floorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	floor, err := fc.Service.Update(c.Request.Context(), c.Param("id"), req.input(), rid, currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Floor updated", floor)
}

func (fc *FloorController) DeleteFloor(c *gin.Context) {
	rid, ok := restaurantID(c)
	if !ok {
		return
	}
	floor, err := fc.Service.Remove(c.Request.Context(), c.Param("id"), rid, currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Floor deleted", floor)
}

// GetFloorTables -> GET /floors/:id/tables, merged components included
func (fc *FloorController) GetFloorTables(c *gin.Context) {
	rid, ok := restaurantID(c)
	if !ok {
		return
	}
	tables, err := fc.Service.Tables(c.Request.Context(), c.Param("id"), rid, currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables on floor", tables)
}
