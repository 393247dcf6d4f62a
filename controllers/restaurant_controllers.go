package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-ops/services"
	"github.com/yeremiapane/restaurant-ops/utils"
)

type RestaurantController struct {
	Service *services.RestaurantService
}

func NewRestaurantController(service *services.RestaurantService) *RestaurantController {
	return &RestaurantController{Service: service}
}

type restaurantRequest struct {
	Name     *string `json:"name" binding:"omitempty,min=1,max=255"`
	Address  *string `json:"address"`
	Phone    *string `json:"phone"`
	Timezone *string `json:"timezone"`
}

func (r restaurantRequest) input() services.RestaurantInput {
	return services.RestaurantInput{Name: r.Name, Address: r.Address, Phone: r.Phone, Timezone: r.Timezone}
}

func (rc *RestaurantController) CreateRestaurant(c *gin.Context) {
	var req restaurantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	restaurant, err := rc.Service.Create(c.Request.Context(), req.input(), currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.InfoLogger.WithField("restaurant_id", restaurant.ID).Info("restaurant created")
	utils.RespondJSON(c, http.StatusCreated, "Restaurant created successfully", restaurant)
}

func (rc *RestaurantController) GetAllRestaurants(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("unauthorized"))
		return
	}
	restaurants, err := rc.Service.FindAll(c.Request.Context(), user)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of restaurants", restaurants)
}

// GetMyRestaurants lists only restaurants the caller owns, admins included.
func (rc *RestaurantController) GetMyRestaurants(c *gin.Context) {
	restaurants, err := rc.Service.FindOwned(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of my restaurants", restaurants)
}

func (rc *RestaurantController) GetRestaurantByID(c *gin.Context) {
	restaurant, err := rc.Service.FindOne(c.Request.Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Restaurant detail", restaurant)
}

func (rc *RestaurantController) UpdateRestaurant(c *gin.Context) {
	var req restaurantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	restaurant, err := rc.Service.Update(c.Request.Context(), c.Param("id"), req.input(), currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Restaurant updated", restaurant)
}

func (rc *RestaurantController) DeleteRestaurant(c *gin.Context) {
	restaurant, err := rc.Service.Remove(c.Request.Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.InfoLogger.WithField("restaurant_id", restaurant.ID).Info("restaurant deleted")
	utils.RespondJSON(c, http.StatusOK, "Restaurant deleted", gin.H{"id": restaurant.ID})
}
