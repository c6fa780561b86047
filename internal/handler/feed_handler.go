package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stemsi/kumpul-tugas/internal/middleware"
	"github.com/stemsi/kumpul-tugas/internal/response"
	"github.com/stemsi/kumpul-tugas/internal/service"
	ws "github.com/stemsi/kumpul-tugas/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// FeedHandler pushes newly stored submissions to admin viewers.
type FeedHandler struct {
	feed     service.Feed
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewFeedHandler creates a new FeedHandler.
func NewFeedHandler(feed service.Feed, log zerolog.Logger, allowedOrigins []string) *FeedHandler {
	return &FeedHandler{
		feed:     feed,
		log:      log.With().Str("component", "feed_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// SubmissionFeed godoc
// WS /ws/v1/admin/submissions/feed?token=
// Sends a "submission" event for every new ledger row until the viewer
// disconnects or its session expires.
func (h *FeedHandler) SubmissionFeed(c *gin.Context) {
	sess := middleware.GetSession(c)
	if sess == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().Str("session_id", sess.ID).Logger()

	events, unsubscribe, err := h.feed.Subscribe(c.Request.Context())
	if err != nil {
		wsLog.Error().Err(err).Msg("feed subscribe failed")
		ws.WriteError(conn, "feed unavailable")
		return
	}
	defer unsubscribe()

	if err := ws.WriteTyped(conn, ws.ReadyResponse{Event: ws.EventReady, SessionID: sess.ID}); err != nil {
		return
	}
	wsLog.Info().Msg("Feed viewer connected")

	// Reader: answers pings and notices the close.
	closed := make(chan struct{})
	pongs := make(chan struct{}, 1)
	go func() {
		defer close(closed)
		ws.KeepAlive(conn)
		for {
			var msg ws.RequestEnvelope
			if err := ws.ReadJSON(conn, &msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					wsLog.Warn().Err(err).Msg("Unexpected close")
				}
				return
			}
			if msg.Action == ws.ActionPing {
				select {
				case pongs <- struct{}{}:
				default:
				}
			}
		}
	}()

	ticker := time.NewTicker(ws.PingPeriod)
	defer ticker.Stop()

	expiry := time.NewTimer(time.Until(sess.ExpiresAt))
	defer expiry.Stop()

	for {
		select {
		case <-closed:
			wsLog.Debug().Msg("Feed viewer disconnected")
			return
		case <-expiry.C:
			ws.WriteError(conn, "session expired")
			return
		case <-pongs:
			if err := ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong}); err != nil {
				return
			}
		case <-ticker.C:
			if err := ws.WritePing(conn); err != nil {
				return
			}
		case sub, ok := <-events:
			if !ok {
				return
			}
			if err := ws.WriteTyped(conn, ws.SubmissionEvent{Event: ws.EventSubmission, Submission: sub}); err != nil {
				wsLog.Debug().Err(err).Msg("feed write failed")
				return
			}
		}
	}
}
