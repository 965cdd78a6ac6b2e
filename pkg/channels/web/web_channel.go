package web

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"spring/pkg/api"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for decoupled UI
	},
}

type WebConfig struct {
	Port int `json:"port"`
}

// IncomingMessage is the JSON frame a web client sends.
type IncomingMessage struct {
	Text  string `json:"text"`
	Photo *struct {
		Name string `json:"name"`
		Mime string `json:"mime"`
		Data string `json:"data"` // Base64 encoded
	} `json:"photo,omitempty"`
}

// SafeConn serializes writes to a websocket connection.
type SafeConn struct {
	*websocket.Conn
	mu sync.Mutex
}

func (sc *SafeConn) WriteMessage(messageType int, data []byte) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.Conn.WriteMessage(messageType, data)
}

// WebChannel exposes the bot over a websocket endpoint for browser clients.
// Outbound traffic is framed as JSON objects with a "type" discriminator.
type WebChannel struct {
	config      WebConfig
	server      *http.Server
	connections map[string]*SafeConn // Map UserID -> WS Connection
	mu          sync.RWMutex
}

func NewWebChannel(cfg WebConfig) *WebChannel {
	return &WebChannel{
		config:      cfg,
		connections: make(map[string]*SafeConn),
	}
}

func (c *WebChannel) ID() string {
	return "web"
}

func (c *WebChannel) Start(ctx api.ChannelContext) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		c.handleWebSocket(w, r, ctx)
	})

	addr := fmt.Sprintf(":%d", c.config.Port)
	c.server = &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	slog.Info("Web API listening", "port", c.config.Port)

	go func() {
		if err := c.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Web API server error", "error", err)
		}
	}()

	return nil
}

func (c *WebChannel) Stop() error {
	if c.server != nil {
		return c.server.Close()
	}
	return nil
}

func (c *WebChannel) conn(session api.SessionContext) (*SafeConn, error) {
	c.mu.RLock()
	conn, ok := c.connections[session.UserID]
	c.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("web user %s not connected", session.UserID)
	}
	return conn, nil
}

func (c *WebChannel) writeFrame(session api.SessionContext, frame map[string]any) error {
	conn, err := c.conn(session)
	if err != nil {
		return err
	}

	data, err := json.Marshal(frame)
	if err != nil {
		return fmt.Errorf("failed to marshal frame: %w", err)
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}

func (c *WebChannel) SendText(session api.SessionContext, text string) error {
	return c.writeFrame(session, map[string]any{
		"type": "text",
		"text": text,
	})
}

func (c *WebChannel) SendFile(session api.SessionContext, file api.OutgoingFile) error {
	return c.writeFrame(session, map[string]any{
		"type":    "file",
		"name":    file.Name,
		"caption": file.Caption,
		"data":    base64.StdEncoding.EncodeToString(file.Data),
	})
}

func (c *WebChannel) SendVoice(session api.SessionContext, audio []byte) error {
	return c.writeFrame(session, map[string]any{
		"type": "voice",
		"mime": "audio/ogg",
		"data": base64.StdEncoding.EncodeToString(audio),
	})
}

// Announce implements api.Announcer by broadcasting a text frame to every
// connected client.
func (c *WebChannel) Announce(text string) error {
	data, err := json.Marshal(map[string]any{
		"type": "text",
		"text": text,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal frame: %w", err)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	for userID, conn := range c.connections {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			slog.Warn("Failed to announce to web client", "user", userID, "error", err)
		}
	}
	return nil
}

// SendSignal implements the api.SignalingChannel interface.
func (c *WebChannel) SendSignal(session api.SessionContext, signal string) error {
	return c.writeFrame(session, map[string]any{
		"type":  "signal",
		"value": signal,
	})
}

func (c *WebChannel) handleWebSocket(w http.ResponseWriter, r *http.Request, ctx api.ChannelContext) {
	rawConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("WS Upgrade failed", "error", err)
		return
	}

	conn := &SafeConn{Conn: rawConn}
	userID := r.RemoteAddr

	c.mu.Lock()
	c.connections[userID] = conn
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.connections, userID)
		c.mu.Unlock()
		conn.Close()
	}()

	session := api.SessionContext{
		ChannelID: "web",
		UserID:    userID,
		ChatID:    "global",
		Username:  "WebUser",
	}

	for {
		_, msgBytes, err := conn.ReadMessage()
		if err != nil {
			break
		}

		msg := &api.UnifiedMessage{Session: session}

		var incoming IncomingMessage
		if err := json.Unmarshal(msgBytes, &incoming); err == nil {
			msg.Content = incoming.Text
			if incoming.Photo != nil {
				data, err := base64.StdEncoding.DecodeString(incoming.Photo.Data)
				if err != nil {
					slog.Error("Failed to decode base64 photo", "name", incoming.Photo.Name, "error", err)
				} else {
					msg.Photo = &api.FileAttachment{
						Filename: incoming.Photo.Name,
						MimeType: incoming.Photo.Mime,
						Data:     data,
					}
				}
			}
		} else {
			// Plain text frame
			msg.Content = string(msgBytes)
		}

		if msg.Content == "" && msg.Photo == nil {
			continue
		}

		ctx.OnMessage(c.ID(), msg)
	}
}
