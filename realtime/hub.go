// Package realtime pushes order events to connected websocket observers.
// Delivery is best-effort: a slow or gone observer is dropped, never
// blocking the REST mutation that triggered the event, and observers must
// not assume ordering between a socket event and a concurrent REST read.
package realtime

import (
	"encoding/json"
	"fmt"
	"sync"

	"food-ordering-api/models"

	"github.com/sirupsen/logrus"
)

// Event names on the real-time channel.
const (
	EventNewOrder          = "newOrder"
	EventOrderStatusUpdate = "orderStatusUpdate"
)

// Broadcaster is the mutation path's view of the fan-out. Implementations
// must never fail the originating mutation.
type Broadcaster interface {
	PublishOrder(event string, order *models.Order)
}

// UserTopic and RestaurantTopic address events to the parties entitled to
// them, rather than broadcasting every order to every socket.
func UserTopic(userID uint) string {
	return fmt.Sprintf("user:%d", userID)
}

func RestaurantTopic(restaurantID uint) string {
	return fmt.Sprintf("restaurant:%d", restaurantID)
}

type envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Hub tracks connected clients and their topic subscriptions. All shared
// state stays behind the mutex; nothing is held across a send.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*Client]struct{})}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	logrus.WithFields(logrus.Fields{"conn_id": c.id, "user_id": c.userID}).
		Info("realtime client connected")
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()
	if ok {
		// The send channel stays open: a concurrent publish may still hold
		// a reference to this client, and its non-blocking send is harmless.
		close(c.done)
		logrus.WithFields(logrus.Fields{"conn_id": c.id, "user_id": c.userID}).
			Info("realtime client disconnected")
	}
}

// PublishOrder fans an order event out to every client subscribed to the
// order's user or restaurant topic; admin connections receive everything.
// Sends are non-blocking: a client with a full buffer loses the event.
func (h *Hub) PublishOrder(event string, order *models.Order) {
	if order == nil {
		return
	}
	payload, err := json.Marshal(envelope{Event: event, Data: order})
	if err != nil {
		logrus.WithError(err).Warn("realtime: dropping unmarshalable event")
		return
	}
	topics := []string{UserTopic(order.UserID), RestaurantTopic(order.RestaurantID)}

	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		if c.admin || c.subscribedAny(topics) {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range targets {
		select {
		case c.send <- payload:
		default:
			logrus.WithFields(logrus.Fields{"conn_id": c.id, "event": event}).
				Warn("realtime: dropping event for slow client")
		}
	}
}

// ClientCount is used by tests and the health endpoint.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
