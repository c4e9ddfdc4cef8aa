package wallet

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// FeedEvent is the wire shape of a live wallet activity update
type FeedEvent struct {
	Type        string      `json:"type"`
	Transaction Transaction `json:"transaction"`
}

const feedChannel = "wallet:events"

type feedMessage struct {
	UserID           string    `json:"user_id"`
	Event            FeedEvent `json:"event"`
	SenderInstanceID string    `json:"sender_instance_id"`
}

// FeedConnection is one WebSocket subscriber
type FeedConnection struct {
	UserID uuid.UUID
	Conn   *websocket.Conn
	Send   chan []byte
}

// Feed fans recorded transactions out to the owning user's live WebSocket
// connections. Redis Pub/Sub carries events between instances so a user
// connected to one server still sees writes handled by another.
type Feed struct {
	connections map[uuid.UUID]map[*FeedConnection]bool
	redis       *redis.Client
	pubsub      *redis.PubSub

	mu sync.RWMutex

	register   chan *FeedConnection
	unregister chan *FeedConnection

	ctx        context.Context
	cancel     context.CancelFunc
	instanceID string
}

// NewFeed creates the activity feed hub. A nil Redis client keeps delivery
// local to this instance.
func NewFeed(redisClient *redis.Client) *Feed {
	ctx, cancel := context.WithCancel(context.Background())

	f := &Feed{
		connections: make(map[uuid.UUID]map[*FeedConnection]bool),
		redis:       redisClient,
		register:    make(chan *FeedConnection),
		unregister:  make(chan *FeedConnection),
		ctx:         ctx,
		cancel:      cancel,
		instanceID:  uuid.NewString(),
	}

	if redisClient != nil {
		f.pubsub = redisClient.Subscribe(ctx, feedChannel)
	}

	return f
}

// Run starts the hub (call in goroutine)
func (f *Feed) Run() {
	if f.pubsub != nil {
		go f.runRedisSubscriber()
	}

	for {
		select {
		case <-f.ctx.Done():
			return

		case conn := <-f.register:
			f.mu.Lock()
			if f.connections[conn.UserID] == nil {
				f.connections[conn.UserID] = make(map[*FeedConnection]bool)
			}
			f.connections[conn.UserID][conn] = true
			f.mu.Unlock()
			log.Debug().Str("user_id", conn.UserID.String()).Msg("Wallet feed subscriber connected")

		case conn := <-f.unregister:
			f.mu.Lock()
			if conns, ok := f.connections[conn.UserID]; ok {
				if _, exists := conns[conn]; exists {
					delete(conns, conn)
					close(conn.Send)
				}
				if len(conns) == 0 {
					delete(f.connections, conn.UserID)
				}
			}
			f.mu.Unlock()
			log.Debug().Str("user_id", conn.UserID.String()).Msg("Wallet feed subscriber disconnected")
		}
	}
}

func (f *Feed) runRedisSubscriber() {
	ch := f.pubsub.Channel()

	for {
		select {
		case <-f.ctx.Done():
			return

		case msg, ok := <-ch:
			if !ok {
				return
			}

			var m feedMessage
			if err := json.Unmarshal([]byte(msg.Payload), &m); err != nil {
				continue
			}
			if m.SenderInstanceID == f.instanceID {
				continue
			}
			userID, err := uuid.Parse(m.UserID)
			if err != nil {
				continue
			}
			f.sendLocal(userID, m.Event)
		}
	}
}

// Publish delivers a recorded transaction to the user's live subscribers
func (f *Feed) Publish(userID uuid.UUID, tx Transaction) {
	event := FeedEvent{Type: "transaction", Transaction: tx}

	f.sendLocal(userID, event)

	if f.redis == nil {
		return
	}

	payload, err := json.Marshal(feedMessage{
		UserID:           userID.String(),
		Event:            event,
		SenderInstanceID: f.instanceID,
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal feed event")
		return
	}
	if err := f.redis.Publish(f.ctx, feedChannel, payload).Err(); err != nil {
		log.Error().Err(err).Msg("Redis publish failed for feed event")
	}
}

func (f *Feed) sendLocal(userID uuid.UUID, event FeedEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	f.mu.RLock()
	conns := f.connections[userID]
	f.mu.RUnlock()

	for conn := range conns {
		select {
		case conn.Send <- data:
		default:
			log.Warn().Str("user_id", userID.String()).Msg("Wallet feed send buffer full")
		}
	}
}

// Register adds a subscriber connection
func (f *Feed) Register(conn *FeedConnection) {
	f.register <- conn
}

// Unregister removes a subscriber connection
func (f *Feed) Unregister(conn *FeedConnection) {
	f.unregister <- conn
}

// ConnectionCount returns number of local subscriber connections
func (f *Feed) ConnectionCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	total := 0
	for _, conns := range f.connections {
		total += len(conns)
	}
	return total
}

// Shutdown stops the hub and closes the Redis subscription
func (f *Feed) Shutdown() {
	f.cancel()
	if f.pubsub != nil {
		f.pubsub.Close()
	}
}

const (
	feedWriteWait  = 10 * time.Second
	feedPongWait   = 60 * time.Second
	feedPingPeriod = 54 * time.Second
)

// WritePump pumps queued events to the WebSocket connection
func (c *FeedConnection) WritePump() {
	ticker := time.NewTicker(feedPingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ReadPump drains the connection until the client closes it. The feed is
// one-way; inbound frames are discarded.
func (c *FeedConnection) ReadPump(unregister func(*FeedConnection)) {
	defer func() {
		unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(512)
	c.Conn.SetReadDeadline(time.Now().Add(feedPongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(feedPongWait))
		return nil
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			return
		}
	}
}
