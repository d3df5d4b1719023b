package services

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Trip event types pushed to live-feed subscribers.
const (
	EventLocationUpdate = "location_update"
	EventGeofence       = "geofence_entered"
	EventTripCompleted  = "trip_completed"
	EventFeedbackAdded  = "feedback_added"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins
	},
}

// TripEvent is the message sent to subscribers and published to Redis.
type TripEvent struct {
	Type      string      `json:"type"`
	TripID    uint        `json:"tripId"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// NewTripEvent stamps an event with the current time.
func NewTripEvent(eventType string, tripID uint, data interface{}) TripEvent {
	return TripEvent{Type: eventType, TripID: tripID, Data: data, Timestamp: time.Now().Unix()}
}

// Client is a live-feed subscriber of one trip.
type Client struct {
	TripID   uint
	Username string
	Conn     *websocket.Conn
	Send     chan []byte
	Hub      *Hub
}

type tripMessage struct {
	tripID uint
	data   []byte
}

// Hub maintains the set of active clients per trip and fans out events.
type Hub struct {
	trips      map[uint]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan tripMessage
	done       chan struct{}
	mutex      sync.RWMutex
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		trips:      make(map[uint]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan tripMessage, 256),
		done:       make(chan struct{}),
	}
}

// Run starts the hub. It returns after Stop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			if h.trips[client.TripID] == nil {
				h.trips[client.TripID] = make(map[*Client]bool)
			}
			h.trips[client.TripID][client] = true
			h.mutex.Unlock()
			log.Printf("Client %s subscribed to trip %d", client.Username, client.TripID)

		case client := <-h.unregister:
			h.mutex.Lock()
			h.remove(client)
			h.mutex.Unlock()
			log.Printf("Client %s left trip %d", client.Username, client.TripID)

		case msg := <-h.broadcast:
			h.mutex.Lock()
			for client := range h.trips[msg.tripID] {
				select {
				case client.Send <- msg.data:
				default:
					log.Printf("Warning: dropping slow client %s on trip %d", client.Username, client.TripID)
					h.remove(client)
				}
			}
			h.mutex.Unlock()

		case <-h.done:
			h.mutex.Lock()
			for _, clients := range h.trips {
				for client := range clients {
					h.remove(client)
				}
			}
			h.mutex.Unlock()
			return
		}
	}
}

// Stop shuts the hub down and disconnects every client.
func (h *Hub) Stop() {
	close(h.done)
}

// remove must be called with the mutex held.
func (h *Hub) remove(client *Client) {
	clients, ok := h.trips[client.TripID]
	if !ok {
		return
	}
	if _, ok := clients[client]; ok {
		delete(clients, client)
		close(client.Send)
	}
	if len(clients) == 0 {
		delete(h.trips, client.TripID)
	}
}

// BroadcastToTrip sends event to every subscriber of the trip.
func (h *Hub) BroadcastToTrip(tripID uint, event TripEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("Error marshaling trip event %s: %v", event.Type, err)
		return
	}

	select {
	case h.broadcast <- tripMessage{tripID: tripID, data: data}:
	case <-h.done:
	default:
		log.Printf("Warning: broadcast queue full, dropping %s for trip %d", event.Type, tripID)
	}
}

// Subscribers returns the number of clients following a trip.
func (h *Hub) Subscribers(tripID uint) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.trips[tripID])
}

// ServeTrip upgrades the request and subscribes the caller to a trip feed.
func ServeTrip(hub *Hub, w http.ResponseWriter, r *http.Request, tripID uint, username string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	client := &Client{
		TripID:   tripID,
		Username: username,
		Conn:     conn,
		Send:     make(chan []byte, 256),
		Hub:      hub,
	}

	select {
	case hub.register <- client:
	case <-hub.done:
		conn.Close()
		return
	}

	// Start goroutines for reading and writing
	go client.writePump()
	go client.readPump()
}

// readPump drains the connection so close and pong frames are processed.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.Hub.unregister <- c:
		case <-c.Hub.done:
		}
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			return
		}
	}
}

// writePump pumps messages from the hub to the websocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("WebSocket write error: %v", err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
