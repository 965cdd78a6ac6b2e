package gateway

import (
	"fmt"
	"log"
	"sync"
	"time"

	"spring/pkg/api"
	"spring/pkg/monitor"
)

// Manager owns all registered channels and routes traffic in both
// directions: inbound messages to the handler, outbound replies to the
// originating channel.
type Manager struct {
	channels   map[string]api.Channel
	msgHandler api.MessageHandler
	monitor    monitor.Monitor
	mu         sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		channels: make(map[string]api.Channel),
	}
}

// SetMessageHandler sets the core message processing logic.
func (g *Manager) SetMessageHandler(handler api.MessageHandler) {
	g.msgHandler = handler
}

// SetMonitor sets the monitor that observes message traffic.
func (g *Manager) SetMonitor(m monitor.Monitor) {
	g.monitor = m
}

// Register adds a channel.
func (g *Manager) Register(c api.Channel) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.channels[c.ID()] = c
}

// GetChannel returns a specific channel, usually for proactive sends.
func (g *Manager) GetChannel(id string) (api.Channel, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	c, ok := g.channels[id]
	return c, ok
}

// StartAll starts every registered channel and announces that the bot is
// awake on channels that support proactive notices.
func (g *Manager) StartAll() error {
	g.mu.RLock()
	defer g.mu.RUnlock()

	for id, c := range g.channels {
		log.Printf("Starting channel: %s", id)
		if err := c.Start(g); err != nil {
			return fmt.Errorf("failed to start channel %s: %w", id, err)
		}
	}

	g.announce("(awake)")
	return nil
}

// StopAll announces the shutdown, then stops every registered channel.
func (g *Manager) StopAll() {
	g.mu.RLock()
	defer g.mu.RUnlock()

	g.announce("(sleeping)")

	for id, c := range g.channels {
		log.Printf("Stopping channel: %s", id)
		if err := c.Stop(); err != nil {
			log.Printf("Error stopping channel %s: %v", id, err)
		}
	}
}

// announce pushes a lifecycle notice to every announcing channel. Failures
// are logged; a notice is never worth blocking startup or shutdown.
func (g *Manager) announce(text string) {
	for id, c := range g.channels {
		a, ok := c.(api.Announcer)
		if !ok {
			continue
		}
		if err := a.Announce(text); err != nil {
			log.Printf("Failed to announce on channel %s: %v", id, err)
		}
	}
}

// SendText routes a text reply to the session's channel and broadcasts it
// to the monitor.
func (g *Manager) SendText(session api.SessionContext, text string) error {
	log.Printf("[Gateway] -> Reply to %s (%s): %s", session.ChannelID, session.Username, text)

	if g.monitor != nil {
		g.monitor.OnMessage(monitor.MonitorMessage{
			Timestamp:   time.Now(),
			MessageType: monitor.MessageTypeAssistant,
			ChannelID:   session.ChannelID,
			Username:    session.Username,
			Content:     text,
		})
	}

	c, ok := g.GetChannel(session.ChannelID)
	if !ok {
		return fmt.Errorf("channel %s not found", session.ChannelID)
	}
	return c.SendText(session, text)
}

// SendFile routes a file to the session's channel.
func (g *Manager) SendFile(session api.SessionContext, file api.OutgoingFile) error {
	log.Printf("[Gateway] -> File to %s (%s): %s (%d bytes)", session.ChannelID, session.Username, file.Name, len(file.Data))

	c, ok := g.GetChannel(session.ChannelID)
	if !ok {
		return fmt.Errorf("channel %s not found", session.ChannelID)
	}
	return c.SendFile(session, file)
}

// SendVoice routes synthesized audio to the session's channel.
func (g *Manager) SendVoice(session api.SessionContext, audio []byte) error {
	log.Printf("[Gateway] -> Voice to %s (%s): %d bytes", session.ChannelID, session.Username, len(audio))

	c, ok := g.GetChannel(session.ChannelID)
	if !ok {
		return fmt.Errorf("channel %s not found", session.ChannelID)
	}
	return c.SendVoice(session, audio)
}

// SendSignal sends a control signal (e.g. typing) to the channel.
// Channels without signal support ignore it silently.
func (g *Manager) SendSignal(session api.SessionContext, signal string) error {
	c, ok := g.GetChannel(session.ChannelID)
	if !ok {
		return fmt.Errorf("channel %s not found", session.ChannelID)
	}

	if sc, ok := c.(api.SignalingChannel); ok {
		return sc.SendSignal(session, signal)
	}

	return nil
}

// OnMessage implements api.ChannelContext, receiving messages from channels.
func (g *Manager) OnMessage(channelID string, msg *api.UnifiedMessage) {
	log.Printf("[Gateway] <- Received from %s [%s(%s)]: %s",
		channelID, msg.Session.Username, msg.Session.UserID, msg.Content)

	if g.monitor != nil {
		g.monitor.OnMessage(monitor.MonitorMessage{
			Timestamp:   time.Now(),
			MessageType: monitor.MessageTypeUser,
			ChannelID:   channelID,
			Username:    msg.Session.Username,
			Content:     msg.Content,
		})
	}

	if g.msgHandler != nil {
		g.msgHandler(msg)
	} else {
		log.Println("[Gateway] Warning: No message handler set")
	}
}
