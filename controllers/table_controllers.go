package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-ops/models"
	"github.com/yeremiapane/restaurant-ops/realtime"
	"github.com/yeremiapane/restaurant-ops/services"
	"github.com/yeremiapane/restaurant-ops/utils"
)

type TableController struct {
	Service *services.TableService
	Hub     *realtime.Hub
}

func NewTableController(service *services.TableService, hub *realtime.Hub) *TableController {
	return &TableController{Service: service, Hub: hub}
}

type createTableRequest struct {
	Name     string             `json:"name" binding:"required"`
	Capacity int                `json:"capacity" binding:"required,min=1"`
	X        *float64           `json:"x" binding:"required"`
	Y        *float64           `json:"y" binding:"required"`
	Status   models.TableStatus `json:"status" binding:"omitempty,oneof=AVAILABLE OCCUPIED RESERVED UNAVAILABLE"`
	Color    *string            `json:"color"`
	FloorID  *string            `json:"floorId"`
}

type updateTableRequest struct {
	Name     *string             `json:"name" binding:"omitempty,min=1"`
	Capacity *int                `json:"capacity" binding:"omitempty,min=1"`
	X        *float64            `json:"x"`
	Y        *float64            `json:"y"`
	Status   *models.TableStatus `json:"status" binding:"omitempty,oneof=AVAILABLE OCCUPIED RESERVED UNAVAILABLE"`
	Color    *string             `json:"color"`
	FloorID  *string             `json:"floorId"`
}

type positionRequest struct {
	X *float64 `json:"x" binding:"required"`
	Y *float64 `json:"y" binding:"required"`
}

type statusRequest struct {
	Status models.TableStatus `json:"status" binding:"required,oneof=AVAILABLE OCCUPIED RESERVED UNAVAILABLE"`
}

type mergeRequest struct {
	TableIDs []string `json:"tableIds" binding:"required,min=2,dive,required"`
}

// CreateTable -> POST /tables
func (tc *TableController) CreateTable(c *gin.Context) {
	rid, ok := restaurantID(c)
	if !ok {
		return
	}
	var req createTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	table, err := tc.Service.Create(c.Request.Context(), services.CreateTableInput{
		Name:     req.Name,
		Capacity: req.Capacity,
		X:        *req.X,
		Y:        *req.Y,
		Status:   req.Status,
		Color:    req.Color,
		FloorID:  req.FloorID,
	}, rid, currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	tc.Hub.Broadcast(rid, realtime.Message{Event: realtime.EventTableCreate, Data: table})
	utils.RespondJSON(c, http.StatusCreated, "Table created successfully", table)
}

// GetAllTables -> GET /tables[?floorId=]
func (tc *TableController) GetAllTables(c *gin.Context) {
	rid, ok := restaurantID(c)
	if !ok {
		return
	}
	var floorID *string
	if f := c.Query("floorId"); f != "" {
		floorID = &f
	}
	tables, err := tc.Service.FindAll(c.Request.Context(), rid, floorID, currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", tables)
}

func (tc *TableController) GetTableByID(c *gin.Context) {
	rid, ok := restaurantID(c)
	if !ok {
		return
	}
	table, err := tc.Service.FindOne(c.Request.Context(), c.Param("id"), rid, currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table detail", table)
}

func (tc *TableController) UpdateTable(c *gin.Context) {
	rid, ok := restaurantID(c)
	if !ok {
		return
	}
	var req updateTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	table, err := tc.Service.Update(c.Request.Context(), c.Param("id"), services.UpdateTableInput{
		Name:     req.Name,
		Capacity: req.Capacity,
		X:        req.X,
		Y:        req.Y,
		Status:   req.Status,
		Color:    req.Color,
		FloorID:  req.FloorID,
	}, rid, currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	tc.Hub.Broadcast(rid, realtime.Message{Event: realtime.EventTableUpdate, Data: table})
	utils.RespondJSON(c, http.StatusOK, "Table updated", table)
}

func (tc *TableController) UpdateTablePosition(c *gin.Context) {
	rid, ok := restaurantID(c)
	if !ok {
		return
	}
	var req positionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	table, err := tc.Service.UpdatePosition(c.Request.Context(), c.Param("id"), *req.X, *req.Y, rid, currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	tc.Hub.Broadcast(rid, realtime.Message{Event: realtime.EventTableUpdate, Data: table})
	utils.RespondJSON(c, http.StatusOK, "Table position updated", table)
}

func (tc *TableController) UpdateTableStatus(c *gin.Context) {
	rid, ok := restaurantID(c)
	if !ok {
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	table, err := tc.Service.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status, rid, currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	tc.Hub.Broadcast(rid, realtime.Message{Event: realtime.EventTableUpdate, Data: table})
	utils.InfoLogger.WithFields(logrus.Fields{"table_id": table.ID, "status": table.Status}).Info("table status changed")
	utils.RespondJSON(c, http.StatusOK, "Table status updated", table)
}

func (tc *TableController) DeleteTable(c *gin.Context) {
	rid, ok := restaurantID(c)
	if !ok {
		return
	}
	table, err := tc.Service.Remove(c.Request.Context(), c.Param("id"), rid, currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	tc.Hub.Broadcast(rid, realtime.Message{Event: realtime.EventTableDelete, Data: gin.H{"id": table.ID}})
	utils.RespondJSON(c, http.StatusOK, "Table deleted", table)
}

// MergeTables -> POST /tables/merge {tableIds}
func (tc *TableController) MergeTables(c *gin.Context) {
	rid, ok := restaurantID(c)
	if !ok {
		return
	}
	var req mergeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	composite, err := tc.Service.MergeTables(c.Request.Context(), req.TableIDs, rid, currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	tc.Hub.Broadcast(rid, realtime.Message{Event: realtime.EventTablesMerged, Data: composite})
	utils.RespondJSON(c, http.StatusCreated, "Tables merged", composite)
}

// UnmergeTables -> POST /tables/:id/unmerge
func (tc *TableController) UnmergeTables(c *gin.Context) {
	rid, ok := restaurantID(c)
	if !ok {
		return
	}
	id := c.Param("id")
	tables, err := tc.Service.UnmergeTables(c.Request.Context(), id, rid, currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	tc.Hub.Broadcast(rid, realtime.Message{Event: realtime.EventTablesUnmerged, Data: gin.H{
		"compositeId": id,
		"tables":      tables,
	}})
	utils.RespondJSON(c, http.StatusOK, "Tables unmerged", tables)
}
