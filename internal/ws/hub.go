// Package ws holds live client sockets for the realtime gateway. It
// forwards pub/sub signals to matching connections: notification cues go
// to sockets by user identity, comment events go to post rooms.
package ws

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"notifyhub/internal/delivery"
	"notifyhub/pkg/util"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type client struct {
	conn *websocket.Conn
	uid  string

	// Guards writes; gorilla allows at most one concurrent writer.
	mu sync.Mutex
}

func (c *client) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

// clientMessage is what connected clients send: room membership changes.
type clientMessage struct {
	Action string `json:"action"` // join or leave
	PostID string `json:"postId"`
}

type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	rooms   map[string]map[*client]struct{}

	signalSecret string
	jwtSecret    string
	logger       *zap.Logger
}

func NewHub(signalSecret, jwtSecret string, logger *zap.Logger) *Hub {
	return &Hub{
		clients:      make(map[*client]struct{}),
		rooms:        make(map[string]map[*client]struct{}),
		signalSecret: signalSecret,
		jwtSecret:    jwtSecret,
		logger:       logger,
	}
}

// HandleWS upgrades the request and services the connection until it
// closes. Identity is established once at connect time from the token
// query parameter.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	uid, err := util.ParseJWT(r.URL.Query().Get("token"), h.jwtSecret)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("WebSocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{conn: conn, uid: uid}
	h.register(c)
	h.logger.Info("Client connected", zap.String("uid", uid))

	defer func() {
		h.unregister(c)
		conn.Close()
		h.logger.Info("Client disconnected", zap.String("uid", uid))
	}()

	for {
		var msg clientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		switch msg.Action {
		case "join":
			h.join(c, msg.PostID)
		case "leave":
			h.leave(c, msg.PostID)
		}
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c)
	for room, members := range h.rooms {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}

func (h *Hub) join(c *client, postID string) {
	if postID == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	room := roomName(postID)
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*client]struct{})
	}
	h.rooms[room][c] = struct{}{}
}

func (h *Hub) leave(c *client, postID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room := roomName(postID)
	if members, ok := h.rooms[room]; ok {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}

// HandleNotificationSignal cues every live connection of the listed
// users to re-fetch. Signals without the shared secret are dropped
// silently.
func (h *Hub) HandleNotificationSignal(signal delivery.NotificationSignal) {
	if signal.Token != h.signalSecret {
		return
	}

	uids := make(map[string]struct{}, len(signal.UIDs))
	for _, uid := range signal.UIDs {
		uids[uid] = struct{}{}
	}

	for _, c := range h.snapshotClients() {
		if _, ok := uids[c.uid]; !ok {
			continue
		}
		if err := c.writeJSON(map[string]any{
			"event": "new-notifications",
			"uid":   c.uid,
		}); err != nil {
			h.evict(c)
		}
	}
}

// HandlePostSignal broadcasts a comment event verbatim to the post's room.
func (h *Hub) HandlePostSignal(signal delivery.PostSignal) {
	if signal.Token != h.signalSecret {
		return
	}

	h.mu.Lock()
	members := make([]*client, 0, len(h.rooms[roomName(signal.PostID)]))
	for c := range h.rooms[roomName(signal.PostID)] {
		members = append(members, c)
	}
	h.mu.Unlock()

	for _, c := range members {
		if err := c.writeJSON(map[string]any{
			"event":     signal.Event,
			"postId":    signal.PostID,
			"commentId": signal.CommentID,
			"creatorId": signal.CreatorID,
		}); err != nil {
			h.evict(c)
		}
	}
}

func (h *Hub) snapshotClients() []*client {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		out = append(out, c)
	}
	return out
}

func (h *Hub) evict(c *client) {
	h.unregister(c)
	c.conn.Close()
}

func roomName(postID string) string {
	return "post:" + postID
}
