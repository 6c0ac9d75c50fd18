// Package workflow implements the staged builder for build requests:
// parts are added, actions applied, a single output selected, and the
// workflow executed exactly once. Stage ordering is narrowed through
// the stage interfaces and enforced at runtime; a builder is single-use
// and rejects any mutation after its terminal call.
package workflow

import (
	"context"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/afero"

	"github.com/nutrient-dws/client-go/pkg/build"
	"github.com/nutrient-dws/client-go/pkg/inputs"
	"github.com/nutrient-dws/client-go/pkg/transport"
)

// Transport is the narrow collaborator the engine submits through. It
// is satisfied by *transport.Client.
type Transport interface {
	Build(ctx context.Context, req *transport.BuildRequest) (*transport.Response, error)
	Analyze(ctx context.Context, instructions *build.Instructions) (*transport.Response, error)
}

var _ Transport = (*transport.Client)(nil)

// StagedWorkflowBuilder is the single concrete type behind all stage
// interfaces. It exclusively owns its instruction document and asset
// registry, and is not safe for concurrent use.
type StagedWorkflowBuilder struct {
	transport Transport
	logger    hclog.Logger
	fsys      afero.Fs

	instructions build.Instructions
	assets       map[string]inputs.FileInput
	assetIndex   int

	outputSet bool
	executed  bool
	err       error
}

// Option customizes a builder.
type Option func(*StagedWorkflowBuilder)

// WithLogger attaches a logger to the builder.
func WithLogger(logger hclog.Logger) Option {
	return func(b *StagedWorkflowBuilder) {
		if logger != nil {
			b.logger = logger.Named("workflow")
		}
	}
}

// WithFS overrides the filesystem used to materialize path inputs.
func WithFS(fsys afero.Fs) Option {
	return func(b *StagedWorkflowBuilder) {
		if fsys != nil {
			b.fsys = fsys
		}
	}
}

// New creates a workflow builder in its initial stage.
func New(t Transport, opts ...Option) InitialStage {
	b := &StagedWorkflowBuilder{
		transport: t,
		logger:    hclog.NewNullLogger(),
		fsys:      afero.NewOsFs(),
		assets:    make(map[string]inputs.FileInput),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}
