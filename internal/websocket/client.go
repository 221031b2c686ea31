package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"bikepulse/internal/config"
	apierrors "bikepulse/internal/errors"
	"bikepulse/internal/infrastructure"
	"bikepulse/internal/validation"
	v1 "bikepulse/pkg/contracts/api/v1"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Maximum message size allowed from peer
	maxMessageSize = 4096

	// Outbound messages queued per session before new replies are dropped
	sendBufferSize = 16
)

// Metric directions
const (
	directionIn  = "in"
	directionOut = "out"
)

// Options holds session timing, normally taken from config.WebSocketConfig
type Options struct {
	PongWait   time.Duration
	PingPeriod time.Duration
}

// DefaultOptions mirror config.Default().WebSocket
func DefaultOptions() Options {
	return Options{
		PongWait:   config.WebSocketPongWait,
		PingPeriod: config.WebSocketPingPeriod,
	}
}

// Client is one live-filter session: it reads filter messages from the
// browser and answers each with a freshly computed dashboard
type Client struct {
	hub     *Hub
	conn    Connection
	service DashboardProvider

	// Buffered channel of outbound messages. Only the read pump sends on it
	// and only the hub closes it.
	send chan []byte

	id          string
	traceID     string
	remoteAddr  string
	connectedAt time.Time
	opts        Options

	ctx    context.Context
	cancel context.CancelFunc

	validator *validation.RequestValidator
	metrics   *infrastructure.BusinessMetrics
	logger    *slog.Logger

	messagesSent     atomic.Int64
	messagesReceived atomic.Int64
}

// NewClient creates a session over an established connection. traceID may
// be empty; metrics may be nil.
func NewClient(hub *Hub, conn Connection, service DashboardProvider, opts Options, traceID string, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *Client {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	if opts.PongWait <= 0 || opts.PingPeriod <= 0 || opts.PingPeriod >= opts.PongWait {
		opts = DefaultOptions()
	}

	id := uuid.New().String()
	logger = infrastructure.WithComponent(logger, "websocket.client").With(slog.String("client_id", id))
	if traceID != "" {
		logger = logger.With(slog.String("trace_id", traceID))
	}

	ctx := context.Background()
	if traceID != "" {
		ctx = infrastructure.WithTraceID(ctx, traceID)
	}
	ctx, cancel := context.WithCancel(ctx)

	return &Client{
		hub:         hub,
		conn:        conn,
		service:     service,
		send:        make(chan []byte, sendBufferSize),
		id:          id,
		traceID:     traceID,
		remoteAddr:  conn.RemoteAddr(),
		connectedAt: time.Now(),
		opts:        opts,
		ctx:         ctx,
		cancel:      cancel,
		validator:   validation.NewRequestValidator(),
		metrics:     metrics,
		logger:      logger,
	}
}

// ID returns the session id
func (c *Client) ID() string {
	return c.id
}

// ReadPump reads filter messages until the peer goes away, answering each
// one in order. It unregisters the session on exit.
func (c *Client) ReadPump() {
	defer func() {
		c.cancel()
		c.logger.InfoContext(c.ctx, "WebSocket client disconnected (readPump)",
			slog.Duration("connection_duration", time.Since(c.connectedAt)),
			slog.Int64("messages_received", c.messagesReceived.Load()))
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.ErrorContext(c.ctx, "Unexpected WebSocket close error",
					slog.String("error", err.Error()))
			}
			return
		}
		c.messagesReceived.Add(1)

		if reply := c.handleMessage(message); reply != nil {
			c.enqueue(reply)
		}
	}
}

// WritePump writes queued replies and keeps the connection alive with pings
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.opts.PingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		c.logger.DebugContext(c.ctx, "WebSocket write pump stopped",
			slog.Int64("messages_sent", c.messagesSent.Load()))
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.ErrorContext(c.ctx, "Error writing message to WebSocket",
					slog.String("error", err.Error()))
				return
			}
			c.messagesSent.Add(1)

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.DebugContext(c.ctx, "Failed to send ping message",
					slog.String("error", err.Error()))
				return
			}
		}
	}
}

// handleMessage turns one inbound frame into a reply. Heartbeats get none.
func (c *Client) handleMessage(raw []byte) *v1.ServerMessage {
	var msg v1.FilterMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		infrastructure.RecordWebSocketMessage(c.ctx, c.metrics, directionIn, "invalid")
		return errorMessage("malformed message: expected JSON")
	}

	infrastructure.RecordWebSocketMessage(c.ctx, c.metrics, directionIn, msg.Type)

	if err := c.validator.Struct(msg); err != nil {
		c.logger.DebugContext(c.ctx, "Rejected filter message",
			slog.String("error", err.Error()))
		return errorMessage(describe(err))
	}

	if msg.Type == v1.MessageTypeHeartbeat {
		return nil
	}

	bounds, err := c.service.Bounds()
	if err != nil {
		return errorMessage(err.Error())
	}
	rng, err := msg.DashboardRequest().Resolve(bounds)
	if err != nil {
		return errorMessage(err.Error())
	}

	dashboard, err := c.service.Dashboard(c.ctx, rng)
	if err != nil {
		c.logger.WarnContext(c.ctx, "Dashboard failed for filter message",
			slog.String("range", rng.String()),
			slog.String("error", err.Error()))
		return errorMessage(err.Error())
	}

	return &v1.ServerMessage{Type: v1.MessageTypeDashboard, Data: dashboard}
}

// enqueue hands a reply to the write pump. A session that cannot keep up
// loses the reply rather than stalling its reader.
func (c *Client) enqueue(msg *v1.ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.logger.ErrorContext(c.ctx, "Error marshaling message",
			slog.String("error", err.Error()),
			slog.String("message_type", msg.Type))
		return
	}

	select {
	case c.send <- data:
		infrastructure.RecordWebSocketMessage(c.ctx, c.metrics, directionOut, msg.Type)
	default:
		c.logger.WarnContext(c.ctx, "Client send buffer full, dropping message",
			slog.String("message_type", msg.Type))
	}
}

func errorMessage(text string) *v1.ServerMessage {
	return &v1.ServerMessage{Type: v1.MessageTypeError, Error: text}
}

// describe flattens a validation failure into one line for the client
func describe(err error) string {
	var apiErr *apierrors.APIError
	if errors.As(err, &apiErr) {
		if details, ok := apiErr.Details.(apierrors.ValidationErrors); ok {
			msgs := make([]string, 0, len(details.Errors))
			for _, fe := range details.Errors {
				msgs = append(msgs, fe.Message)
			}
			return fmt.Sprintf("invalid message: %s", strings.Join(msgs, "; "))
		}
	}
	return err.Error()
}
