// Package dws is the front door of the client: it owns the transport
// configuration and hands out single-use workflow builders.
package dws

import (
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/afero"

	"github.com/nutrient-dws/client-go/pkg/transport"
	"github.com/nutrient-dws/client-go/pkg/workflow"
)

// Client talks to one processor API deployment. It is safe for
// concurrent use; the builders it creates are not.
type Client struct {
	transport *transport.Client
	logger    hclog.Logger
	fsys      afero.Fs
}

// Option customizes a Client.
type Option func(*Client)

// WithLogger attaches a logger, propagated to builders and transport.
func WithLogger(logger hclog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithFS overrides the filesystem used to read path inputs.
func WithFS(fsys afero.Fs) Option {
	return func(c *Client) {
		if fsys != nil {
			c.fsys = fsys
		}
	}
}

// New creates a client from transport configuration.
func New(cfg transport.Config, opts ...Option) (*Client, error) {
	c := &Client{
		logger: hclog.NewNullLogger(),
		fsys:   afero.NewOsFs(),
	}
	for _, opt := range opts {
		opt(c)
	}
	t, err := transport.NewClient(cfg, transport.WithLogger(c.logger))
	if err != nil {
		return nil, err
	}
	c.transport = t
	return c, nil
}

// Workflow returns a fresh single-use workflow builder.
func (c *Client) Workflow() workflow.InitialStage {
	return workflow.New(c.transport,
		workflow.WithLogger(c.logger),
		workflow.WithFS(c.fsys),
	)
}
