package aws

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/photoflow/photoflow-api/internal/core/domain"
	"github.com/photoflow/photoflow-api/internal/core/port"
)

// Router sends each function to its registered transport, or to the default
// transport when none is registered.
type Router struct {
	routes   map[string]port.WorkerTransport
	fallback port.WorkerTransport
}

// NewRouter creates a router; fallback may be nil
func NewRouter(fallback port.WorkerTransport) *Router {
	return &Router{
		routes:   make(map[string]port.WorkerTransport),
		fallback: fallback,
	}
}

// Route registers a transport for a function name. Routes are set up before
// the router is shared.
func (r *Router) Route(function string, transport port.WorkerTransport) *Router {
	r.routes[function] = transport
	return r
}

// Invoke implements port.WorkerTransport
func (r *Router) Invoke(ctx context.Context, function string, payload []byte) (*port.InvokeResult, error) {
	if t, ok := r.routes[function]; ok {
		return t.Invoke(ctx, function, payload)
	}
	if r.fallback == nil {
		return nil, errors.Wrapf(domain.ErrWorkerUnavailable, "no transport for %q", function)
	}
	return r.fallback.Invoke(ctx, function, payload)
}
