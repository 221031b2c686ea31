package websocket

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"bikepulse/internal/infrastructure"
)

// metricsInterval is how often the hub logs its session counts
const metricsInterval = 30 * time.Second

// Hub tracks the open live-filter sessions. Sessions do not talk to each
// other; the hub only counts them and closes them on shutdown.
type Hub struct {
	clients map[*Client]struct{}
	mu      sync.RWMutex

	metrics *infrastructure.BusinessMetrics
	logger  *slog.Logger

	totalConnections int64

	quit    chan struct{}
	running bool
}

// NewHub creates a new Hub. metrics may be nil.
func NewHub(metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	return &Hub{
		clients: make(map[*Client]struct{}),
		metrics: metrics,
		logger:  infrastructure.WithComponent(logger, "websocket.hub"),
	}
}

// Start starts periodic session reporting. A stopped hub can be started
// again.
func (h *Hub) Start() {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return
	}
	h.running = true
	quit := make(chan struct{})
	h.quit = quit
	h.mu.Unlock()

	go h.reportMetrics(quit)
}

// Register adds a session
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.totalConnections++
	count := len(h.clients)
	h.mu.Unlock()

	infrastructure.RecordWebSocketConnection(client.ctx, h.metrics, 1)
	h.logger.InfoContext(client.ctx, "Client registered",
		slog.Int("total_clients", count),
		slog.String("client_id", client.id),
		slog.String("remote_addr", client.remoteAddr))
}

// Unregister removes a session and closes its send channel, which stops
// its write pump. Unknown or already removed sessions are ignored.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client)
	close(client.send)
	count := len(h.clients)
	h.mu.Unlock()

	infrastructure.RecordWebSocketConnection(client.ctx, h.metrics, -1)
	h.logger.InfoContext(client.ctx, "Client unregistered",
		slog.Int("total_clients", count),
		slog.String("client_id", client.id),
		slog.Duration("connection_duration", time.Since(client.connectedAt)))
}

// ActiveSessions returns the number of open sessions
func (h *Hub) ActiveSessions() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stop ends reporting and closes every session's connection. Each read pump
// then fails and unregisters its own session.
func (h *Hub) Stop() {
	h.mu.Lock()
	if h.running {
		h.running = false
		close(h.quit)
	}
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.Unlock()

	for _, client := range clients {
		client.cancel()
		client.conn.Close()
	}
	h.logger.Info("Hub stopped", slog.Int("closed_sessions", len(clients)))
}

// GetHubMetrics returns current hub counters
func (h *Hub) GetHubMetrics() map[string]interface{} {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return map[string]interface{}{
		"active_clients":    len(h.clients),
		"total_connections": h.totalConnections,
	}
}

func (h *Hub) reportMetrics(quit <-chan struct{}) {
	ticker := time.NewTicker(metricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-quit:
			h.logger.Debug("Metrics reporting shutting down")
			return
		case <-ticker.C:
			h.mu.RLock()
			active, total := len(h.clients), h.totalConnections
			h.mu.RUnlock()

			h.logger.LogAttrs(context.Background(), slog.LevelInfo, "WebSocket hub metrics",
				slog.Int("active_clients", active),
				slog.Int64("total_connections", total))
		}
	}
}
