package tensor

import (
	"github.com/born-ml/tensorcore/internal/backend"
	"github.com/born-ml/tensorcore/internal/device"
	"github.com/born-ml/tensorcore/internal/engine"
)

// Option configures tensor construction.
type Option func(*options)

type options struct {
	backend backend.Backend
	kind    *device.Kind
	engine  *engine.Engine
}

// WithBackend constructs the tensor on b, bypassing device selection.
func WithBackend(b backend.Backend) Option {
	return func(o *options) {
		o.backend = b
	}
}

// OnDevice requests a device family. An unavailable family falls back like
// default selection does.
func OnDevice(kind device.Kind) Option {
	return func(o *options) {
		o.kind = &kind
	}
}

// WithEngine resolves backends through e instead of the process engine.
func WithEngine(e *engine.Engine) Option {
	return func(o *options) {
		o.engine = e
	}
}

func resolve(opts []Option) (backend.Backend, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.backend != nil {
		return o.backend, nil
	}

	e := o.engine
	if e == nil {
		e = engine.Default()
	}
	if o.kind != nil {
		if !o.kind.Valid() {
			return nil, &InvalidBackendError{Backend: *o.kind}
		}
		return e.Open(*o.kind)
	}
	return e.Default()
}
