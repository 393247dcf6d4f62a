package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-ops/utils"
)

// Event types
const (
	EventTableCreate    = "table_create"
	EventTableUpdate    = "table_update"
	EventTableDelete    = "table_delete"
	EventTablesMerged   = "tables_merged"
	EventTablesUnmerged = "tables_unmerged"
)

const writeWait = 10 * time.Second

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub fans floor events out to the websocket clients of one restaurant.
type Hub struct {
	clients map[*websocket.Conn]*client
	mutex   sync.Mutex
}

type client struct {
	conn         *websocket.Conn
	restaurantID string
	writeMu      sync.Mutex // one writer per conn
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]*client)}
}

func (h *Hub) Register(conn *websocket.Conn, restaurantID string) {
	if h == nil {
		return
	}
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.clients[conn] = &client{conn: conn, restaurantID: restaurantID}
}

func (h *Hub) Unregister(conn *websocket.Conn) {
	if h == nil {
		return
	}
	h.mutex.Lock()
	_, ok := h.clients[conn]
	delete(h.clients, conn)
	h.mutex.Unlock()
	if ok {
		conn.Close()
	}
}

// Subscribers returns how many clients listen to restaurantID.
func (h *Hub) Subscribers(restaurantID string) int {
	if h == nil {
		return 0
	}
	h.mutex.Lock()
	defer h.mutex.Unlock()
	n := 0
	for _, c := range h.clients {
		if c.restaurantID == restaurantID {
			n++
		}
	}
	return n
}

// Broadcast sends msg to the restaurant's subscribers. A nil hub is a no-op.
// Sockets are written outside the hub lock.
func (h *Hub) Broadcast(restaurantID string, msg Message) {
	if h == nil {
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.Errorf("Error marshaling message: %v", err)
		return
	}

	h.mutex.Lock()
	targets := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		if c.restaurantID == restaurantID {
			targets = append(targets, c)
		}
	}
	h.mutex.Unlock()

	sent := 0
	for _, c := range targets {
		if err := c.write(data); err != nil {
			utils.ErrorLogger.Errorf("Error sending message to client: %v", err)
			h.Unregister(c.conn)
			continue
		}
		sent++
	}
	utils.InfoLogger.WithFields(logrus.Fields{
		"restaurant_id": restaurantID,
		"event":         msg.Event,
		"clients":       sent,
	}).Debug("broadcast floor event")
}

func (c *client) write(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}
