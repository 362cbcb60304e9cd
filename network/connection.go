// network/connection.go
package network

import (
	"encoding/json"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ErrMalformedMessage is returned for inbound frames that are not a JSON
// object with a "type" discriminator.
var ErrMalformedMessage = errors.New("malformed message")

// Envelope 入站消息的通用外壳，Raw 保留原始 JSON 供各 handler 自行解码
type Envelope struct {
	Type string
	Raw  json.RawMessage
}

type Connection interface {
	SendJSON(v interface{}) error
	ReadEnvelope() (*Envelope, error)
	Close() error
	RemoteAddr() net.Addr
	SetHeartbeat(interval time.Duration)
}

type WSConnection struct {
	conn      *websocket.Conn
	sendMutex sync.Mutex
	heartbeat time.Duration
}

func NewWSConnection(conn *websocket.Conn) *WSConnection {
	return &WSConnection{conn: conn}
}

// SendJSON writes one JSON text frame. Writes are serialized because the
// gorilla connection allows only one concurrent writer.
func (c *WSConnection) SendJSON(v interface{}) error {
	c.sendMutex.Lock()
	defer c.sendMutex.Unlock()

	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// ReadEnvelope blocks for the next frame and peels off the type
// discriminator. Transport errors are returned as-is so the caller can tell
// a closed socket from a bad payload.
func (c *WSConnection) ReadEnvelope() (*Envelope, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	return ParseEnvelope(data)
}

// ParseEnvelope decodes the outer JSON object of an inbound frame.
func ParseEnvelope(data []byte) (*Envelope, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, ErrMalformedMessage
	}
	return &Envelope{Type: head.Type, Raw: data}, nil
}

func (c *WSConnection) SetHeartbeat(interval time.Duration) {
	c.heartbeat = interval
	c.conn.SetReadDeadline(time.Now().Add(interval * 2))
}

func (c *WSConnection) Close() error {
	return c.conn.Close()
}

func (c *WSConnection) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}
