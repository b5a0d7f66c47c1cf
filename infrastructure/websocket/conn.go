package websocket

import (
	"action-relay/contract"
	"action-relay/sink"
	"context"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
)

// Conn is one websocket client. It is the Session the dispatcher sees:
// envelopes are queued in the embedded sink and written by writePump.
type Conn struct {
	*sink.SessionSink
	ws         *websocket.Conn
	dispatcher contract.IDispatcher
	log        *slog.Logger
	options    Options
}

func newConn(id string, ws *websocket.Conn, dispatcher contract.IDispatcher, log *slog.Logger, options Options) *Conn {
	return &Conn{
		SessionSink: sink.NewSessionSink(id, options.ConnectionBufferSize),
		ws:          ws,
		dispatcher:  dispatcher,
		log:         log.With("session_id", id),
		options:     options,
	}
}

// serve runs the whole life of the connection and returns once it is closed.
// OnConnect fires before the first read and OnDisconnect exactly once after the last one.
func (c *Conn) serve(ctx context.Context) {
	go c.writePump()

	c.dispatcher.OnConnect(ctx, c)
	c.readPump(ctx)

	c.Close()
	c.dispatcher.OnDisconnect(ctx, c)
	_ = c.ws.Close()
}

func (c *Conn) readPump(ctx context.Context) {
	c.ws.SetReadLimit(c.options.MaxMessageSize)
	c.extendReadDeadline()
	c.ws.SetPongHandler(func(string) error {
		c.extendReadDeadline()
		return nil
	})

	for {
		messageType, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				c.log.Warn("Read error", "error", err)
			}
			return
		}
		c.extendReadDeadline()

		switch messageType {
		case websocket.BinaryMessage:
			c.dispatcher.OnBinary(ctx, c, data)
		case websocket.TextMessage:
			c.dispatcher.OnText(ctx, c, string(data))
		}
	}
}

func (c *Conn) extendReadDeadline() {
	_ = c.ws.SetReadDeadline(time.Now().Add(c.options.PongWait))
}

// writePump is the only goroutine writing to the socket.
func (c *Conn) writePump() {
	ticker := time.NewTicker(c.options.pingPeriod())
	defer func() {
		ticker.Stop()
		c.Close()
		_ = c.ws.Close()
	}()

	for {
		select {
		case <-c.Done():
			_ = c.ws.SetWriteDeadline(time.Now().Add(c.options.WriteWait))
			_ = c.ws.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case data := <-c.Outbound():
			_ = c.ws.SetWriteDeadline(time.Now().Add(c.options.WriteWait))
			if err := c.ws.WriteMessage(websocket.BinaryMessage, data); err != nil {
				c.log.Debug("Write error", "error", err)
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(c.options.WriteWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.log.Debug("Ping error", "error", err)
				return
			}
		}
	}
}
