// Package websocket exposes the relay over websocket connections.
// Binary frames carry encoded action requests, text frames are accepted and ignored.
package websocket

import (
	"action-relay/contract"
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/samber/lo"
)

type Options struct {
	ConnectionBufferSize int
	MaxMessageSize       int64
	WriteWait            time.Duration
	PongWait             time.Duration
	// AllowedOrigins lists accepted Origin hosts. Empty accepts every origin.
	AllowedOrigins []string
}

func DefaultOptions() Options {
	return Options{
		ConnectionBufferSize: 256,
		MaxMessageSize:       4096,
		WriteWait:            10 * time.Second,
		PongWait:             60 * time.Second,
	}
}

func (o Options) pingPeriod() time.Duration {
	return (o.PongWait * 9) / 10
}

// Handler upgrades HTTP requests on the relay endpoint.
// One Handler serves every connection; all state lives in the dispatcher's registry.
type Handler struct {
	log        *slog.Logger
	dispatcher contract.IDispatcher
	upgrader   websocket.Upgrader
	options    Options
}

func NewHandler(log *slog.Logger, dispatcher contract.IDispatcher, options Options) *Handler {
	h := &Handler{
		log:        log,
		dispatcher: dispatcher,
		options:    options,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// ServeHTTP blocks for the lifetime of the connection.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("Upgrade failed", "remote_addr", r.RemoteAddr, "error", err)
		return
	}

	conn := newConn(uuid.NewString(), ws, h.dispatcher, h.log, h.options)
	h.log.Debug("Websocket opened", "session_id", conn.ID(), "remote_addr", r.RemoteAddr)

	// Lifecycle callbacks must outlive the request: the leave broadcast runs after the client is gone.
	conn.serve(context.WithoutCancel(r.Context()))
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	if len(h.options.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return lo.ContainsBy(h.options.AllowedOrigins, func(allowed string) bool {
		return strings.EqualFold(allowed, u.Host)
	})
}
