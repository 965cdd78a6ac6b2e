package gateway

import (
	"fmt"

	"spring/pkg/api"
	"spring/pkg/monitor"
)

// Builder provides a fluent interface for assembling and starting a Manager
// with all its dependencies.
//
// All components (channels, handler, monitor) are pre-built and injected as
// instances; the Builder simply wires and starts them.
type Builder struct {
	gw       *Manager
	monitor  monitor.Monitor
	channels []api.Channel
	handler  api.MessageProcessor
}

func NewBuilder() *Builder {
	return &Builder{
		gw: NewManager(),
	}
}

// WithMonitor injects a monitoring implementation. The monitor is started
// automatically during Build().
func (b *Builder) WithMonitor(m monitor.Monitor) *Builder {
	b.monitor = m
	return b
}

// WithChannel adds pre-built channel instances to the gateway.
func (b *Builder) WithChannel(channels ...api.Channel) *Builder {
	b.channels = append(b.channels, channels...)
	return b
}

// WithHandler injects the message handler. If the handler implements
// api.SenderAware, the gateway is injected as its sender.
func (b *Builder) WithHandler(h api.MessageProcessor) *Builder {
	b.handler = h
	return b
}

// Build finalizes the configuration, registers all channels and starts
// everything. Returns the operational Manager or an error if any stage fails.
func (b *Builder) Build() (*Manager, error) {
	if b.monitor != nil {
		b.gw.SetMonitor(b.monitor)
		if err := b.monitor.Start(); err != nil {
			return nil, fmt.Errorf("failed to start monitor: %w", err)
		}
	}

	for _, c := range b.channels {
		b.gw.Register(c)
	}

	if b.handler != nil {
		if setter, ok := b.handler.(api.SenderAware); ok {
			setter.SetSender(b.gw)
		}
		b.gw.SetMessageHandler(b.handler.OnMessage)
	}

	if err := b.gw.StartAll(); err != nil {
		return nil, fmt.Errorf("failed to start channels: %w", err)
	}

	return b.gw, nil
}
