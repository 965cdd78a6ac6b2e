package monitor

import "time"

// Message directions observed by the monitor.
const (
	MessageTypeUser      = "USER"
	MessageTypeAssistant = "ASSISTANT"
)

// MonitorMessage represents a single monitored conversation event.
type MonitorMessage struct {
	Timestamp   time.Time
	MessageType string
	ChannelID   string
	Username    string
	Content     string
}

// Monitor defines the behavior of a conversation monitor.
type Monitor interface {
	// Start starts the monitor.
	Start() error

	// Stop stops the monitor.
	Stop() error

	// OnMessage receives and displays a monitoring message.
	OnMessage(msg MonitorMessage)
}
