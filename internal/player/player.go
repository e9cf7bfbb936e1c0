package player

import (
	"encoding/json"
	"fmt"
	"sync"

	"ctchen222/tictactoe-engine/pkg/proto"

	"github.com/gorilla/websocket"
)

// Connection is an interface that abstracts the websocket connection.
type Connection interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (int, []byte, error)
	Close() error
}

// Client is one websocket viewer of a session.
// Writes are serialised so events, errors and pings can come from different goroutines.
type Client struct {
	ID        string
	SessionID string
	Conn      Connection

	mu sync.Mutex
}

func NewClient(id, sessionID string, conn Connection) *Client {
	return &Client{
		ID:        id,
		SessionID: sessionID,
		Conn:      conn,
	}
}

// Send writes message as a JSON text frame.
func (c *Client) Send(message *proto.ServerToClientMessage) error {
	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal %s message: %w", message.Type, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Conn.WriteMessage(websocket.TextMessage, data)
}

// Ping writes a websocket ping frame.
func (c *Client) Ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Conn.WriteMessage(websocket.PingMessage, nil)
}
