package services

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client is one seat-map subscriber for a single route/day topic.
type Client struct {
	Topic string
	Conn  *websocket.Conn
	Send  chan []byte
	Hub   *Hub
}

type topicMessage struct {
	topic string
	data  []byte
}

// Hub tracks subscribers per topic. Only Run mutates the client set.
// Once Run returns, done is closed and sends to the hub become no-ops.
type Hub struct {
	topics     map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan topicMessage
	done       chan struct{}
	mutex      sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		topics:     make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan topicMessage, 64),
		done:       make(chan struct{}),
	}
}

// Run serves registrations and broadcasts until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for topic, clients := range h.topics {
				for client := range clients {
					close(client.Send)
				}
				delete(h.topics, topic)
			}
			h.mutex.Unlock()
			return

		case client := <-h.register:
			h.mutex.Lock()
			if h.topics[client.Topic] == nil {
				h.topics[client.Topic] = make(map[*Client]bool)
			}
			h.topics[client.Topic][client] = true
			h.mutex.Unlock()
			logrus.WithField("topic", client.Topic).Debug("seat map client connected")

		case client := <-h.unregister:
			h.remove(client)
			logrus.WithField("topic", client.Topic).Debug("seat map client disconnected")

		case msg := <-h.broadcast:
			h.mutex.Lock()
			for client := range h.topics[msg.topic] {
				select {
				case client.Send <- msg.data:
				default:
					// Slow consumer; drop it rather than block the hub.
					close(client.Send)
					delete(h.topics[msg.topic], client)
				}
			}
			h.mutex.Unlock()
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	clients := h.topics[client.Topic]
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.Send)
	if len(clients) == 0 {
		delete(h.topics, client.Topic)
	}
}

// ConnectedClients returns the number of subscribers on topic.
func (h *Hub) ConnectedClients(topic string) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.topics[topic])
}

type WebSocketMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// SeatSnapshot is sent once when a client subscribes.
type SeatSnapshot struct {
	RouteID     uint    `json:"routeId"`
	TravelDate  string  `json:"travelDate"`
	TotalSeats  int     `json:"totalSeats"`
	BookedSeats []int64 `json:"bookedSeats"`
}

// SendSeatUpdate queues update for the subscribers of its topic.
func (h *Hub) SendSeatUpdate(update SeatUpdate) {
	data, err := json.Marshal(WebSocketMessage{Type: "seat_update", Data: update})
	if err != nil {
		logrus.WithError(err).Error("failed to marshal seat update")
		return
	}
	select {
	case h.broadcast <- topicMessage{topic: update.Topic(), data: data}:
	case <-h.done:
	}
}

// PublishSeatUpdate lets the hub stand in for Redis on a single instance.
func (h *Hub) PublishSeatUpdate(_ context.Context, update SeatUpdate) error {
	h.SendSeatUpdate(update)
	return nil
}

// HandleWebSocket upgrades the request and subscribes it to topic. The
// client is registered before snapshot is read, so an update committed in
// between is still delivered after the snapshot frame.
func HandleWebSocket(hub *Hub, w http.ResponseWriter, r *http.Request, topic string, snapshot func(context.Context) (SeatSnapshot, error)) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.WithError(err).Warn("websocket upgrade failed")
		return
	}

	client := &Client{
		Topic: topic,
		Conn:  conn,
		Send:  make(chan []byte, 256),
		Hub:   hub,
	}
	select {
	case hub.register <- client:
	case <-hub.done:
		conn.Close()
		return
	}

	snap, err := snapshot(r.Context())
	if err != nil {
		logrus.WithError(err).WithField("topic", topic).Error("failed to load seat snapshot")
		client.leave()
		conn.Close()
		return
	}
	// No pump is running yet, so this goroutine is the only writer.
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(WebSocketMessage{Type: "seat_snapshot", Data: snap}); err != nil {
		logrus.WithError(err).Debug("websocket write error")
		client.leave()
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

func (c *Client) leave() {
	select {
	case c.Hub.unregister <- c:
	case <-c.Hub.done:
	}
}

// readPump only watches for close and pong frames; clients do not send.
func (c *Client) readPump() {
	defer func() {
		c.leave()
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(512)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.WithError(err).Debug("websocket read error")
			}
			return
		}
	}
}

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
				logrus.WithError(err).Debug("websocket write error")
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
