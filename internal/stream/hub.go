package stream

import (
	"context"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	sendBuffer   = 64
	historyLimit = 512
)

// Hub fans UI commands out to the websocket clients of a session. Each
// session keeps a bounded backlog that is replayed to clients that connect
// late, so a page that opens its socket after the session started still
// sees the map and list commands. With redis configured, commands travel
// through redis pub/sub so every instance delivers them.
type Hub struct {
	redis  *redis.Client
	pubsub *redis.PubSub

	mu      sync.Mutex
	clients map[string]map[*Client]struct{}
	history map[string][][]byte
}

type Client struct {
	SessionID string
	Send      chan []byte
}

func NewHub(redisClient *redis.Client) *Hub {
	h := &Hub{
		clients: map[string]map[*Client]struct{}{},
		history: map[string][][]byte{},
	}

	if redisClient != nil {
		ctx := context.Background()
		ps := redisClient.PSubscribe(ctx, redisPattern)
		if _, err := ps.Receive(ctx); err != nil {
			log.Error().Err(err).Msg("redis subscribe failed, delivering locally")
			_ = ps.Close()
		} else {
			h.redis = redisClient
			h.pubsub = ps
			go h.forward(ps)
		}
	}
	return h
}

// Register attaches a client and queues the session backlog for it.
func (h *Hub) Register(sessionID string) *Client {
	h.mu.Lock()
	defer h.mu.Unlock()

	backlog := h.history[sessionID]
	client := &Client{
		SessionID: sessionID,
		Send:      make(chan []byte, len(backlog)+sendBuffer),
	}
	for _, msg := range backlog {
		client.Send <- msg
	}

	if h.clients[sessionID] == nil {
		h.clients[sessionID] = map[*Client]struct{}{}
	}
	h.clients[sessionID][client] = struct{}{}
	return client
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sessionClients, ok := h.clients[client.SessionID]
	if !ok {
		return
	}
	if _, ok := sessionClients[client]; !ok {
		return
	}
	delete(sessionClients, client)
	if len(sessionClients) == 0 {
		delete(h.clients, client.SessionID)
	}
	close(client.Send)
}

// Watched reports whether any client is connected to the session.
func (h *Hub) Watched(sessionID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[sessionID]) > 0
}

// Forget drops the backlog of a finished session.
func (h *Hub) Forget(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.history, sessionID)
}

func (h *Hub) Broadcast(sessionID string, payload []byte) {
	if h.redis != nil {
		err := h.redis.Publish(context.Background(), redisChannel(sessionID), payload).Err()
		if err == nil {
			return
		}
		log.Error().Err(err).Str("session_id", sessionID).Msg("redis publish failed, delivering locally")
	}
	h.deliver(sessionID, payload)
}

func (h *Hub) Close() error {
	if h.pubsub == nil {
		return nil
	}
	return h.pubsub.Close()
}

func (h *Hub) deliver(sessionID string, payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	backlog := append(h.history[sessionID], payload)
	if len(backlog) > historyLimit {
		backlog = backlog[len(backlog)-historyLimit:]
	}
	h.history[sessionID] = backlog

	for client := range h.clients[sessionID] {
		select {
		case client.Send <- payload:
		default:
			log.Warn().Str("session_id", sessionID).Msg("client too slow, command dropped")
		}
	}
}

func (h *Hub) forward(ps *redis.PubSub) {
	for msg := range ps.Channel() {
		sessionID := sessionIDFromChannel(msg.Channel)
		if sessionID == "" {
			continue
		}
		h.deliver(sessionID, []byte(msg.Payload))
	}
}

const (
	channelPrefix = "workoutmap:"
	channelSuffix = ":commands"
	redisPattern  = channelPrefix + "*" + channelSuffix
)

func redisChannel(sessionID string) string {
	return channelPrefix + sessionID + channelSuffix
}

func sessionIDFromChannel(ch string) string {
	if len(ch) <= len(channelPrefix)+len(channelSuffix) {
		return ""
	}
	if !strings.HasPrefix(ch, channelPrefix) || !strings.HasSuffix(ch, channelSuffix) {
		return ""
	}
	return ch[len(channelPrefix) : len(ch)-len(channelSuffix)]
}
