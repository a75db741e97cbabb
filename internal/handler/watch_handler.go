package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/notetool/internal/remotestore"
	"github.com/xxxsen/notetool/internal/service"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// WatchHandler streams snapshots over websockets. The first message is the
// current state; every later one replaces it.
type WatchHandler struct {
	store    *service.StoreService
	upgrader websocket.Upgrader
}

func NewWatchHandler(store *service.StoreService, allowlist []string) *WatchHandler {
	allowed := make(map[string]struct{}, len(allowlist))
	for _, origin := range allowlist {
		if origin != "" {
			allowed[origin] = struct{}{}
		}
	}
	return &WatchHandler{
		store: store,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				if len(allowed) == 0 {
					return true
				}
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				_, ok := allowed[origin]
				return ok
			},
		},
	}
}

type subscribeFunc func(ctx context.Context, send func(interface{})) (remotestore.Subscription, error)

func (h *WatchHandler) Entries(c *gin.Context) {
	namespace := getNamespace(c)
	h.serve(c, func(ctx context.Context, send func(interface{})) (remotestore.Subscription, error) {
		return h.store.WatchList(ctx, namespace, func(entries []remotestore.Entry) {
			if entries == nil {
				entries = []remotestore.Entry{}
			}
			send(remotestore.ListMessage{Entries: entries})
		})
	})
}

func (h *WatchHandler) Scalar(c *gin.Context) {
	namespace, key := getNamespace(c), c.Param("key")
	h.serve(c, func(ctx context.Context, send func(interface{})) (remotestore.Subscription, error) {
		return h.store.WatchScalar(ctx, namespace, key, func(value json.RawMessage) {
			if value == nil {
				value = json.RawMessage("null")
			}
			send(remotestore.ScalarMessage{Value: value})
		})
	})
}

func (h *WatchHandler) serve(c *gin.Context, subscribe subscribeFunc) {
	logger := logutil.GetLogger(c.Request.Context()).With(zap.String("path", c.FullPath()))
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// outbox has room for one pending snapshot; a newer one replaces it.
	outbox := make(chan interface{}, 1)
	send := func(msg interface{}) {
		for {
			select {
			case outbox <- msg:
				return
			default:
			}
			select {
			case <-outbox:
			default:
			}
		}
	}
	sub, err := subscribe(ctx, send)
	if err != nil {
		logger.Warn("watch subscribe failed", zap.Error(err))
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, err.Error()),
			time.Now().Add(writeWait))
		return
	}
	defer sub.Unsubscribe()

	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		case msg := <-outbox:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				logger.Debug("watch write failed", zap.Error(err))
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
