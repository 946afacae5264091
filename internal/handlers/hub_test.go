package handlers

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"photomap-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingConn counts writes and detects overlapping WriteJSON calls, which
// the real connections forbid.
type recordingConn struct {
	mu       sync.Mutex
	writes   []interface{}
	inFlight int32
	overlaps int32
}

func (r *recordingConn) WriteJSON(v interface{}) error {
	if atomic.AddInt32(&r.inFlight, 1) > 1 {
		atomic.AddInt32(&r.overlaps, 1)
	}
	time.Sleep(time.Millisecond)

	r.mu.Lock()
	r.writes = append(r.writes, v)
	r.mu.Unlock()

	atomic.AddInt32(&r.inFlight, -1)
	return nil
}

func (r *recordingConn) writeCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.writes)
}

func TestHubSubscribeAndUnsubscribe(t *testing.T) {
	hub := NewFeedHub()
	conn := &recordingConn{}

	_, unsubscribe := hub.Subscribe("conn-1", 1, conn)
	assert.Equal(t, 1, hub.SubscriberCount())

	hub.BroadcastPhotoAdded(models.Photo{ID: "p1"})
	require.Equal(t, 1, conn.writeCount())

	unsubscribe()
	assert.Equal(t, 0, hub.SubscriberCount())

	hub.BroadcastPhotoAdded(models.Photo{ID: "p2"})
	assert.Equal(t, 1, conn.writeCount())
}

func TestHubBroadcastReachesEverySubscriber(t *testing.T) {
	hub := NewFeedHub()
	a, b := &recordingConn{}, &recordingConn{}

	_, unsubA := hub.Subscribe("conn-a", 1, a)
	_, unsubB := hub.Subscribe("conn-b", 2, b)
	defer unsubA()
	defer unsubB()

	hub.BroadcastPhotoAdded(models.Photo{ID: "p1"})

	require.Equal(t, 1, a.writeCount())
	resp, ok := a.writes[0].(WSResponse)
	require.True(t, ok)
	assert.Equal(t, "photo_added", resp.Event)
	require.NotNil(t, resp.Photo)
	assert.Equal(t, "p1", resp.Photo.ID)
	assert.Equal(t, 1, b.writeCount())
}

// Broadcasts from upload requests and page replies from the session's read
// loop land on the same connection; its write handle must serialize them.
func TestHubSerializesWritesPerConnection(t *testing.T) {
	hub := NewFeedHub()
	conn := &recordingConn{}

	cc, unsubscribe := hub.Subscribe("conn-1", 1, conn)
	defer unsubscribe()

	const broadcasters, replies = 8, 8
	var wg sync.WaitGroup
	for i := 0; i < broadcasters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			hub.BroadcastPhotoAdded(models.Photo{ID: "p"})
		}()
	}
	for i := 0; i < replies; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = cc.WriteJSON(WSResponse{Event: "page"})
		}()
	}
	wg.Wait()

	assert.Equal(t, broadcasters+replies, conn.writeCount())
	assert.Zero(t, atomic.LoadInt32(&conn.overlaps), "overlapping writes on one connection")
}
