package handlers

import (
	"sync"

	"photomap-backend/internal/models"
	"photomap-backend/internal/utils"
)

// JSONWriter is the write surface of a websocket connection.
type JSONWriter interface {
	WriteJSON(v interface{}) error
}

// ClientConn serializes JSON writes to one websocket connection. The
// underlying conns do not support concurrent writers, and session replies
// and hub broadcasts run on different goroutines, so every write must take
// the connection's lock.
type ClientConn struct {
	mu   sync.Mutex
	conn JSONWriter
}

func (c *ClientConn) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

// FeedHub tracks the websocket sessions subscribed to gallery updates and
// pushes new-photo events to them.
type FeedHub struct {
	mu sync.RWMutex
	// connID -> subscriber
	subs map[string]subscriber
}

type subscriber struct {
	UserID int
	Conn   *ClientConn
}

func NewFeedHub() *FeedHub {
	return &FeedHub{subs: make(map[string]subscriber)}
}

// Subscribe registers a connection. It returns the write handle all session
// replies must go through, and the unsubscribe handle callers must invoke on
// teardown.
func (h *FeedHub) Subscribe(connID string, userID int, conn JSONWriter) (*ClientConn, func()) {
	cc := &ClientConn{conn: conn}

	h.mu.Lock()
	h.subs[connID] = subscriber{UserID: userID, Conn: cc}
	h.mu.Unlock()

	return cc, func() {
		h.mu.Lock()
		delete(h.subs, connID)
		h.mu.Unlock()
	}
}

// BroadcastPhotoAdded pushes a freshly uploaded photo to every subscriber.
// The subscriber snapshot is taken under the hub lock; the writes are not,
// each connection's own lock serializes them against session replies and
// other broadcasters. A failed write is left for the connection's read loop
// to clean up.
func (h *FeedHub) BroadcastPhotoAdded(p models.Photo) {
	h.mu.RLock()
	conns := make([]*ClientConn, 0, len(h.subs))
	for _, sub := range h.subs {
		conns = append(conns, sub.Conn)
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		if err := conn.WriteJSON(WSResponse{Event: "photo_added", Photo: &p}); err != nil {
			utils.LogError(err, "BroadcastPhotoAdded")
		}
	}
}

// SubscriberCount reports how many sessions are attached.
func (h *FeedHub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
