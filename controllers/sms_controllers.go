package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-ops/services"
	"github.com/yeremiapane/restaurant-ops/utils"
)

type SMSController struct {
	SMS         *services.SMSService
	Restaurants *services.RestaurantService
	Gate        *services.AccessGate
}

func NewSMSController(sms *services.SMSService, restaurants *services.RestaurantService, gate *services.AccessGate) *SMSController {
	return &SMSController{SMS: sms, Restaurants: restaurants, Gate: gate}
}

// GetCredits -> GET /sms/credits?restaurantId=
func (sc *SMSController) GetCredits(c *gin.Context) {
	rid, ok := restaurantID(c)
	if !ok {
		return
	}
	if _, err := sc.Gate.CheckRestaurant(c.Request.Context(), rid, currentUserID(c)); err != nil {
		respondServiceError(c, err)
		return
	}
	credits, err := sc.SMS.Credits(c.Request.Context(), rid)
	if err != nil {
		var svcErr *services.ServiceError
		if errors.As(err, &svcErr) {
			respondServiceError(c, err)
			return
		}
		utils.ErrorLogger.WithField("restaurant_id", rid).Errorf("Failed to fetch SMS credits: %v", err)
		utils.RespondError(c, http.StatusBadGateway, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "SMS credits", gin.H{"credits": credits})
}

// UpdateConfig -> PATCH /sms/config?restaurantId=
func (sc *SMSController) UpdateConfig(c *gin.Context) {
	rid, ok := restaurantID(c)
	if !ok {
		return
	}
	var req struct {
		Enabled             *bool   `json:"smsEnabled"`
		Username            *string `json:"smsUsername"`
		Password            *string `json:"smsPassword"`
		SenderID            *string `json:"smsSenderId" binding:"omitempty,max=20"`
		ConfirmationEnabled *bool   `json:"smsConfirmationEnabled"`
		CancellationEnabled *bool   `json:"smsCancellationEnabled"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	restaurant, err := sc.Restaurants.UpdateSMSConfig(c.Request.Context(), rid, services.SMSConfigInput{
		Enabled:             req.Enabled,
		Username:            req.Username,
		Password:            req.Password,
		SenderID:            req.SenderID,
		ConfirmationEnabled: req.ConfirmationEnabled,
		CancellationEnabled: req.CancellationEnabled,
	}, currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "SMS configuration updated", restaurant)
}

// SendSMS -> POST /sms/send?restaurantId=
func (sc *SMSController) SendSMS(c *gin.Context) {
	rid, ok := restaurantID(c)
	if !ok {
		return
	}
	var req struct {
		Numbers       []string `json:"numbers" binding:"required,min=1,dive,required"`
		Message       string   `json:"message" binding:"required"`
		TextType      string   `json:"textType" binding:"omitempty,oneof=text unicode"`
		ScheduledTime *string  `json:"scheduledTime"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	restaurant, err := sc.Gate.CheckRestaurant(c.Request.Context(), rid, currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	opts := services.SendSMSOptions{Numbers: req.Numbers, Message: req.Message, TextType: req.TextType}
	if req.ScheduledTime != nil && *req.ScheduledTime != "" {
		at, err := utils.ParseLocalTime(*req.ScheduledTime, utils.LoadLocation(restaurant.Timezone))
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}
		opts.ScheduledTime = &at
	}

	res := sc.SMS.Send(c.Request.Context(), rid, opts)
	status := http.StatusOK
	if !res.Success {
		status = http.StatusBadGateway
	}
	c.JSON(status, utils.JSONResponse{Status: res.Success, Message: res.Message, Data: res})
}

// GetConfig -> GET /sms/config?restaurantId=
func (sc *SMSController) GetConfig(c *gin.Context) {
	rid, ok := restaurantID(c)
	if !ok {
		return
	}
	restaurant, err := sc.Gate.CheckRestaurant(c.Request.Context(), rid, currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "SMS configuration", services.SMSConfigOf(restaurant))
}

// GetSenderIDs -> GET /sms/sender-ids?restaurantId=
func (sc *SMSController) GetSenderIDs(c *gin.Context) {
	rid, ok := restaurantID(c)
	if !ok {
		return
	}
	if _, err := sc.Gate.CheckRestaurant(c.Request.Context(), rid, currentUserID(c)); err != nil {
		respondServiceError(c, err)
		return
	}
	ids, err := sc.SMS.SenderIDs(c.Request.Context(), rid)
	if err != nil {
		var svcErr *services.ServiceError
		if errors.As(err, &svcErr) {
			respondServiceError(c, err)
			return
		}
		utils.ErrorLogger.WithField("restaurant_id", rid).Errorf("Failed to fetch sender IDs: %v", err)
		utils.RespondError(c, http.StatusBadGateway, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "SMS sender IDs", gin.H{"senderIds": ids})
}

// RequestSenderID -> POST /sms/request-sender-id?restaurantId= {senderId, countryCode}
func (sc *SMSController) RequestSenderID(c *gin.Context) {
	rid, ok := restaurantID(c)
	if !ok {
		return
	}
	var req struct {
		SenderID    string `json:"senderId" binding:"required,max=20"`
		CountryCode string `json:"countryCode" binding:"omitempty,max=5"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if _, err := sc.Gate.CheckRestaurant(c.Request.Context(), rid, currentUserID(c)); err != nil {
		respondServiceError(c, err)
		return
	}

	res := sc.SMS.RequestSenderID(c.Request.Context(), rid, req.SenderID, req.CountryCode)
	status := http.StatusOK
	if !res.Success {
		status = http.StatusBadGateway
	}
	c.JSON(status, utils.JSONResponse{Status: res.Success, Message: res.Message, Data: res})
}
