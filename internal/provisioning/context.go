package provisioning

import (
	"context"

	"github.com/transcodarr/transcodarr/internal/config"
	"github.com/transcodarr/transcodarr/internal/state"
)

// Context wraps the dependencies and state every provisioning step needs.
type Context struct {
	context.Context
	Config     *config.Config
	State      *state.Store
	Worker     Executor
	Dispatcher Executor
	Observer   Observer
	Timeouts   *config.Timeouts
}

// NewContext creates a provisioning context with a console observer and
// environment-driven timeouts.
func NewContext(ctx context.Context, cfg *config.Config, st *state.Store, worker, dispatcher Executor) *Context {
	return &Context{
		Context:    ctx,
		Config:     cfg,
		State:      st,
		Worker:     worker,
		Dispatcher: dispatcher,
		Observer:   NewConsoleObserver(),
		Timeouts:   config.LoadTimeouts(),
	}
}
