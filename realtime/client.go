package realtime

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"food-ordering-api/middleware"
	"food-ordering-api/models"
	"food-ordering-api/policy"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 32
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// REST already allows any origin; the upgrade itself is gated on a
	// resolved identity.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client is one connected observer socket.
type Client struct {
	id     string
	userID uint
	admin  bool

	mu     sync.RWMutex
	topics map[string]struct{}

	conn *websocket.Conn
	send chan []byte
	done chan struct{}
}

func (c *Client) subscribe(topic string) {
	c.mu.Lock()
	c.topics[topic] = struct{}{}
	c.mu.Unlock()
}

func (c *Client) subscribedAny(topics []string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, t := range topics {
		if _, ok := c.topics[t]; ok {
			return true
		}
	}
	return false
}

// subscribeRequest is the only inbound message type a client may send.
type subscribeRequest struct {
	Action string `json:"action"`
	Topic  string `json:"topic"`
}

// ServeWS upgrades an authenticated request to a websocket and joins it to
// the hub. The connection starts subscribed to the caller's own user topic;
// further restaurant topics are granted only when the policy engine's
// ownership rule passes.
func ServeWS(hub *Hub, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.CurrentUser(c)
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authorized, no token", "code": "NO_TOKEN"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logrus.WithError(err).Warn("realtime: websocket upgrade failed")
			return
		}

		client := &Client{
			id:     uuid.NewString(),
			userID: user.ID,
			admin:  user.Role == models.RoleAdmin,
			topics: map[string]struct{}{UserTopic(user.ID): {}},
			conn:   conn,
			send:   make(chan []byte, sendBuffer),
			done:   make(chan struct{}),
		}
		hub.register(client)

		go client.writePump()
		go client.readPump(hub, db, user)
	}
}

// readPump consumes subscribe requests until the peer goes away.
func (c *Client) readPump(hub *Hub, db *gorm.DB, user *models.User) {
	defer func() {
		hub.unregister(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var req subscribeRequest
		if err := c.conn.ReadJSON(&req); err != nil {
			return
		}
		if req.Action != "subscribe" {
			continue
		}
		if c.authorizeTopic(db, user, req.Topic) {
			c.subscribe(req.Topic)
		} else {
			logrus.WithFields(logrus.Fields{"conn_id": c.id, "topic": req.Topic}).
				Warn("realtime: subscription denied")
		}
	}
}

// authorizeTopic resolves the topic's ownership chain and asks the policy
// engine, so the socket surface and the REST surface agree on visibility.
func (c *Client) authorizeTopic(db *gorm.DB, user *models.User, topic string) bool {
	switch {
	case strings.HasPrefix(topic, "user:"):
		id, ok := parseTopicID(topic, "user:")
		return ok && policy.AllowTopic(user, id, 0, false) == nil
	case strings.HasPrefix(topic, "restaurant:"):
		id, ok := parseTopicID(topic, "restaurant:")
		if !ok {
			return false
		}
		var restaurant models.Restaurant
		if err := db.First(&restaurant, id).Error; err != nil {
			return false
		}
		return policy.AllowTopic(user, 0, restaurant.OwnerID, true) == nil
	}
	return false
}

func parseTopicID(topic, prefix string) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimPrefix(topic, prefix), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
