package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yeremiapane/restaurant-ops/realtime"
	"github.com/yeremiapane/restaurant-ops/services"
	"github.com/yeremiapane/restaurant-ops/utils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type FloorStreamController struct {
	Gate *services.AccessGate
	Hub  *realtime.Hub
}

func NewFloorStreamController(gate *services.AccessGate, hub *realtime.Hub) *FloorStreamController {
	return &FloorStreamController{Gate: gate, Hub: hub}
}

// Stream -> GET /ws/floor?restaurantId=&token=
func (fc *FloorStreamController) Stream(c *gin.Context) {
	if fc.Hub == nil {
		utils.RespondError(c, http.StatusServiceUnavailable, errors.New("realtime feed is not enabled"))
		return
	}
	rid, ok := restaurantID(c)
	if !ok {
		return
	}
	if _, err := fc.Gate.CheckRestaurant(c.Request.Context(), rid, currentUserID(c)); err != nil {
		respondServiceError(c, err)
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	fc.Hub.Register(ws, rid)

	// Clients only listen; reading detects the disconnect.
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}
	fc.Hub.Unregister(ws)
}
