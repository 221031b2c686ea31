package websocket

import (
	"context"
	"time"

	"bikepulse/pkg/contracts/domain"
)

// Connection defines the interface for WebSocket connections
// This allows for proper mocking in tests
type Connection interface {
	// WriteMessage writes a message with the given message type and payload
	WriteMessage(messageType int, data []byte) error

	// ReadMessage reads a message from the connection
	// Returns the message type and payload
	ReadMessage() (messageType int, p []byte, err error)

	// Close closes the connection
	Close() error

	// SetReadDeadline sets the read deadline on the connection
	SetReadDeadline(t time.Time) error

	// SetWriteDeadline sets the write deadline on the connection
	SetWriteDeadline(t time.Time) error

	// SetReadLimit sets the maximum size for a message read from the connection
	SetReadLimit(limit int64)

	// SetPongHandler sets the handler for pong messages
	SetPongHandler(h func(string) error)

	// RemoteAddr returns the remote network address
	RemoteAddr() string
}

// DashboardProvider answers filter messages. services.DashboardService
// implements it.
type DashboardProvider interface {
	Bounds() (domain.DateRange, error)
	Dashboard(ctx context.Context, rng domain.DateRange) (*domain.Dashboard, error)
}
