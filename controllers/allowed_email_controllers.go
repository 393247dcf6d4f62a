package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-ops/services"
	"github.com/yeremiapane/restaurant-ops/utils"
)

type AllowedEmailController struct {
	Service *services.AllowedEmailService
}

func NewAllowedEmailController(service *services.AllowedEmailService) *AllowedEmailController {
	return &AllowedEmailController{Service: service}
}

func (ac *AllowedEmailController) GetAllowedEmails(c *gin.Context) {
	entries, err := ac.Service.FindAll(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of allowed emails", entries)
}

func (ac *AllowedEmailController) CreateAllowedEmail(c *gin.Context) {
	var req struct {
		Email       string `json:"email" binding:"required,email"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	entry, err := ac.Service.Create(c.Request.Context(), req.Email, req.Description, currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Email allowed", entry)
}

func (ac *AllowedEmailController) UpdateAllowedEmail(c *gin.Context) {
	var req struct {
		Email       *string `json:"email" binding:"omitempty,email"`
		Description *string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	entry, err := ac.Service.Update(c.Request.Context(), c.Param("id"), req.Email, req.Description)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Allowed email updated", entry)
}

func (ac *AllowedEmailController) DeleteAllowedEmail(c *gin.Context) {
	entry, err := ac.Service.Remove(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Allowed email removed", entry)
}
