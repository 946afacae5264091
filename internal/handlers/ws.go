package handlers

import (
	"context"
	"log"

	"photomap-backend/internal/feed"
	"photomap-backend/internal/models"
	"photomap-backend/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// WSRequest is a client → server feed event.
type WSRequest struct {
	Event string `json:"event"` // "first", "more"
}

// WSResponse is a server → client feed event.
type WSResponse struct {
	Event     string         `json:"event"` // "connected", "page", "photo_added", "error"
	State     string         `json:"state,omitempty"`
	Photos    []models.Photo `json:"photos,omitempty"`
	Exhausted bool           `json:"exhausted"`
	Photo     *models.Photo  `json:"photo,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// FeedSocketHandler runs one personal-gallery session over a websocket. The
// client drives a per-connection paged feed with "first" and "more" events;
// the hub pushes photo_added broadcasts in between. All writes go through
// the hub's per-connection write handle. Results that resolve after the
// connection closed are dropped with the connection.
func FeedSocketHandler(pager feed.Pager, hub *FeedHub, pageSize int) fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		// Retrieve user info from locals (set by middleware)
		userID := c.Locals("user_id").(int)

		connID := uuid.New().String()
		f := feed.New(pager, pageSize)

		conn, unsubscribe := hub.Subscribe(connID, userID, c)
		defer func() {
			unsubscribe()
			c.Close()
		}()

		// Deliver current state immediately on subscribe
		utils.LogError(conn.WriteJSON(WSResponse{Event: "connected", State: f.State().String()}), "connected")

		for {
			msgType, msg, err := c.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Printf("error: %v", err)
				}
				break
			}
			if msgType != websocket.TextMessage {
				continue
			}

			var req WSRequest
			if err := utils.SafeJSONParse(msg, &req); err != nil {
				utils.LogError(err, "JSON Parse")
				continue
			}

			handleFeedEvent(conn, f, userID, req.Event)
		}
	})
}

func handleFeedEvent(conn *ClientConn, f *feed.Feed, userID int, event string) {
	ctx := context.Background()

	var (
		page []models.Photo
		err  error
	)
	switch event {
	case "first":
		page, err = f.LoadFirst(ctx, userID)
	case "more":
		page, err = f.LoadNext(ctx, userID)
	default:
		log.Printf("Unknown event: %s", event)
		return
	}

	if err != nil {
		// Retryable: feed state is unchanged, the client may re-send
		utils.LogError(conn.WriteJSON(WSResponse{Event: "error", State: f.State().String(), Error: err.Error()}), "feed error reply")
		return
	}
	if page == nil {
		page = []models.Photo{}
	}
	utils.LogError(conn.WriteJSON(WSResponse{
		Event:     "page",
		State:     f.State().String(),
		Photos:    page,
		Exhausted: f.Exhausted(),
	}), "feed page reply")
}

// WSUpgradeMiddleware upgrades the connection to WebSocket
func WSUpgradeMiddleware(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		c.Locals("allowed", true)
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}
