package websocket

import (
	"log/slog"
	"net/http"
	"net/url"
	"slices"

	"github.com/gorilla/websocket"

	"bikepulse/internal/config"
	apierrors "bikepulse/internal/errors"
	"bikepulse/internal/infrastructure"
	"bikepulse/internal/middleware"
)

// HandlerConfig configures the upgrade endpoint
type HandlerConfig struct {
	ReadBufferSize  int
	WriteBufferSize int
	Options         Options

	// AllowedOrigins lists cross-origin pages allowed to connect. Same-origin
	// and Origin-less requests are always accepted.
	AllowedOrigins []string

	// AllowAnyOrigin disables the origin check, for development
	AllowAnyOrigin bool
}

// NewHandlerConfig maps the websocket and security config sections
func NewHandlerConfig(ws config.WebSocketConfig, security config.SecurityConfig, development bool) HandlerConfig {
	return HandlerConfig{
		ReadBufferSize:  ws.ReadBufferSize,
		WriteBufferSize: ws.WriteBufferSize,
		Options: Options{
			PongWait:   ws.PongWait,
			PingPeriod: ws.PingPeriod,
		},
		AllowedOrigins: security.AllowedOrigins,
		AllowAnyOrigin: development,
	}
}

// Handler upgrades GET /ws and runs one session per connection
type Handler struct {
	hub          *Hub
	service      DashboardProvider
	cfg          HandlerConfig
	upgrader     websocket.Upgrader
	metrics      *infrastructure.BusinessMetrics
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewHandler creates the upgrade handler. metrics may be nil.
func NewHandler(hub *Hub, service DashboardProvider, cfg HandlerConfig, metrics *infrastructure.BusinessMetrics, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *Handler {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	if errorHandler == nil {
		errorHandler = apierrors.NewErrorHandler(logger, false)
	}

	h := &Handler{
		hub:          hub,
		service:      service,
		cfg:          cfg,
		metrics:      metrics,
		logger:       infrastructure.WithComponent(logger, "websocket.handler"),
		errorHandler: errorHandler,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  cfg.ReadBufferSize,
		WriteBufferSize: cfg.WriteBufferSize,
		CheckOrigin:     h.checkOrigin,
		Error: func(w http.ResponseWriter, r *http.Request, status int, reason error) {
			h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
				status,
				apierrors.CodeWebSocketUpgrade,
				"WebSocket upgrade failed",
				reason.Error(),
			))
		},
	}
	return h
}

// ServeHTTP handles GET /ws
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	traceID := infrastructure.GetTraceID(r.Context())
	if traceID == "" {
		traceID = middleware.GetRequestID(r.Context())
	}

	h.logger.InfoContext(r.Context(), "WebSocket upgrade request",
		slog.String("remote_addr", r.RemoteAddr),
		slog.String("origin", r.Header.Get("Origin")),
		slog.String("user_agent", r.UserAgent()))

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader already wrote the problem response
		h.logger.WarnContext(r.Context(), "WebSocket upgrade failed",
			slog.String("error", err.Error()))
		return
	}

	client := NewClient(h.hub, NewConnectionWrapper(conn), h.service, h.cfg.Options, traceID, h.metrics, h.logger)
	h.hub.Register(client)

	go h.run("write", client, client.WritePump)
	go h.run("read", client, client.ReadPump)
}

// run keeps a panicking pump from taking the server down
func (h *Handler) run(pump string, client *Client, fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			h.logger.ErrorContext(client.ctx, "WebSocket pump panic",
				slog.String("pump", pump),
				slog.Any("panic", rec))
			client.conn.Close()
		}
	}()
	fn()
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || h.cfg.AllowAnyOrigin {
		return true
	}

	if u, err := url.Parse(origin); err == nil && u.Host == r.Host {
		return true
	}
	if slices.Contains(h.cfg.AllowedOrigins, origin) {
		return true
	}

	h.logger.WarnContext(r.Context(), "WebSocket origin check - origin not allowed",
		slog.String("origin", origin),
		slog.Any("allowed_origins", h.cfg.AllowedOrigins))
	return false
}
