package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-ops/services"
	"github.com/yeremiapane/restaurant-ops/utils"
)

type UserController struct {
	Service *services.UserService
}

func NewUserController(service *services.UserService) *UserController {
	return &UserController{Service: service}
}

// Me -> GET /auth/me
func (uc *UserController) Me(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "Current user", currentUser(c))
}

// GetAllUsers -> GET /users?search=&page=&limit=
func (uc *UserController) GetAllUsers(c *gin.Context) {
	users, total, err := uc.Service.List(c.Request.Context(), c.Query("search"), queryInt(c, "page"), queryInt(c, "limit"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of users", gin.H{
		"items": users,
		"total": total,
	})
}

func (uc *UserController) SetAllowed(c *gin.Context) {
	var req struct {
		Allowed *bool `json:"allowed" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	user, err := uc.Service.SetAllowed(c.Request.Context(), c.Param("id"), *req.Allowed, currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.InfoLogger.WithField("user_id", user.ID).Infof("allow-list access set to %v", *req.Allowed)
	utils.RespondJSON(c, http.StatusOK, "User access updated", user)
}

func (uc *UserController) RevokeUser(c *gin.Context) {
	uc.setRevoked(c, true, "User revoked")
}

func (uc *UserController) RestoreUser(c *gin.Context) {
	uc.setRevoked(c, false, "User restored")
}

func (uc *UserController) setRevoked(c *gin.Context, revoked bool, message string) {
	user, err := uc.Service.SetRevoked(c.Request.Context(), c.Param("id"), revoked)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.InfoLogger.WithField("user_id", user.ID).Info(message)
	utils.RespondJSON(c, http.StatusOK, message, user)
}
