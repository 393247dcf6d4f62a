package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-ops/models"
	"github.com/yeremiapane/restaurant-ops/services"
	"github.com/yeremiapane/restaurant-ops/utils"
)

var errRestaurantIDRequired = errors.New("restaurantId query parameter is required")

// respondServiceError maps typed service errors onto HTTP statuses.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		utils.RespondError(c, http.StatusNotFound, err)
	case errors.Is(err, services.ErrForbidden):
		utils.RespondError(c, http.StatusForbidden, err)
	case errors.Is(err, services.ErrConflict):
		utils.RespondError(c, http.StatusConflict, err)
	case errors.Is(err, services.ErrBadRequest):
		utils.RespondError(c, http.StatusBadRequest, err)
	default:
		utils.ErrorLogger.WithField("path", c.Request.URL.Path).Errorf("Unhandled error: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Internal server error"))
	}
}

// restaurantID reads the mandatory restaurantId query parameter and writes a
// 400 when it is absent.
func restaurantID(c *gin.Context) (string, bool) {
	id := c.Query("restaurantId")
	if id == "" {
		utils.RespondError(c, http.StatusBadRequest, errRestaurantIDRequired)
		return "", false
	}
	return id, true
}

func currentUserID(c *gin.Context) string {
	return c.GetString("user_id")
}

func currentUser(c *gin.Context) *models.User {
	v, _ := c.Get("user")
	user, _ := v.(*models.User)
	return user
}

func queryInt(c *gin.Context, key string) int {
	n, _ := strconv.Atoi(c.Query(key))
	return n
}
