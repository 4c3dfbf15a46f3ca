package server

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/kbukum/ingest/component"
)

const componentName = "http-server"

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// Component manages a Server's lifecycle.
type Component struct {
	server  *Server
	running atomic.Bool
}

// NewComponent returns a component backed by s.
func NewComponent(s *Server) *Component {
	return &Component{server: s}
}

// Name implements component.Component.
func (c *Component) Name() string { return componentName }

// Start implements component.Component.
func (c *Component) Start(ctx context.Context) error {
	if err := c.server.Start(ctx); err != nil {
		return err
	}
	c.running.Store(true)
	return nil
}

// Stop implements component.Component.
func (c *Component) Stop(ctx context.Context) error {
	c.running.Store(false)
	return c.server.Stop(ctx)
}

// Health implements component.Component.
func (c *Component) Health(context.Context) component.Health {
	if c.running.Load() {
		return component.Health{Name: componentName, Status: component.StatusHealthy}
	}
	return component.Health{Name: componentName, Status: component.StatusUnhealthy, Message: "not serving"}
}

// Describe implements component.Describable.
func (c *Component) Describe() component.Description {
	cfg := c.server.config
	return component.Description{
		Name:    "HTTP Server",
		Type:    "server",
		Details: fmt.Sprintf("%s routes=%d body<=%s", c.server.Addr(), len(c.server.engine.Routes()), cfg.MaxBodySize),
		Port:    cfg.Port,
	}
}
