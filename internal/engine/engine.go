// Package engine turns device selection into backend handles: it constructs
// the selected family, falls back through the priority order when a
// constructor fails and shares one handle per family between all callers.
package engine

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/born-ml/tensorcore/internal/backend"
	"github.com/born-ml/tensorcore/internal/config"
	"github.com/born-ml/tensorcore/internal/device"
)

// Errors returned by Open.
var (
	ErrUnknownKind = errors.New("engine: unknown device kind")
	ErrClosed      = errors.New("engine: closed")
)

// Constructor builds the backend for one device family.
type Constructor func(config.Config) (backend.Backend, error)

// Option configures an Engine.
type Option func(*Engine)

// WithManager replaces the device manager built from the config.
func WithManager(m *device.Manager) Option {
	return func(e *Engine) {
		e.manager = m
	}
}

// WithConstructor overrides the constructor of one family.
func WithConstructor(kind device.Kind, fn Constructor) Option {
	return func(e *Engine) {
		e.ctors[kind] = fn
	}
}

// WithLogger sets the entry construction diagnostics are written to.
func WithLogger(log *logrus.Entry) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// Engine resolves and caches backend handles. It is safe for concurrent use.
type Engine struct {
	cfg     config.Config
	manager *device.Manager
	ctors   map[device.Kind]Constructor
	log     *logrus.Entry

	mu       sync.Mutex
	handles  map[device.Kind]backend.Backend
	failed   map[device.Kind]error
	resolved map[device.Kind]device.Kind
	closed   bool

	once   sync.Once
	def    backend.Backend
	defErr error
}

// New creates an engine for cfg.
func New(cfg config.Config, opts ...Option) *Engine {
	e := &Engine{
		cfg:      cfg,
		ctors:    DefaultConstructors(),
		log:      logrus.WithField("component", "engine"),
		handles:  make(map[device.Kind]backend.Backend),
		failed:   make(map[device.Kind]error),
		resolved: make(map[device.Kind]device.Kind),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.manager == nil {
		e.manager = NewManager(cfg, e.log)
	}
	return e
}

// NewManager builds the device manager cfg describes over the compiled-in probes.
func NewManager(cfg config.Config, log *logrus.Entry) *device.Manager {
	opts := []device.Option{
		device.WithDisabled(cfg.DisabledKinds()...),
		device.WithLogger(log),
	}
	if k, ok := cfg.PreferredKind(); ok {
		opts = append(opts, device.WithPreferred(k))
	}
	return device.NewManager(DefaultProbes(), opts...)
}

// Manager returns the device manager.
func (e *Engine) Manager() *device.Manager {
	return e.manager
}

// Default returns the backend of the selected device, resolved once.
func (e *Engine) Default() (backend.Backend, error) {
	e.once.Do(func() {
		e.def, e.defErr = e.Open(e.manager.SelectDefault())
	})
	return e.def, e.defErr
}

// Open returns the backend for kind. When kind is unusable or its
// constructor fails, the remaining families are tried in priority order,
// ending with CPU. A CPU construction failure is returned as is.
func (e *Engine) Open(kind device.Kind) (backend.Backend, error) {
	if !kind.Valid() {
		return nil, errors.Wrapf(ErrUnknownKind, "%v", kind)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, ErrClosed
	}
	if actual, ok := e.resolved[kind]; ok {
		return e.handles[actual], nil
	}

	for _, k := range e.candidates(kind) {
		b, err := e.construct(k)
		if err == nil {
			e.resolved[kind] = k
			if k != kind {
				e.log.WithFields(logrus.Fields{"requested": kind, "device": k}).Info("using fallback device")
			}
			return b, nil
		}
		if k == device.CPU {
			return nil, errors.Wrap(err, "engine: cpu backend")
		}
		e.log.WithFields(logrus.Fields{"device": k, "error": err}).Warn("backend construction failed, falling back")
	}
	// candidates always ends with CPU.
	panic("unreachable")
}

// candidates returns kind followed by the rest of the probing order.
func (e *Engine) candidates(kind device.Kind) []device.Kind {
	out := []device.Kind{kind}
	for _, k := range e.manager.Order() {
		if k != kind {
			out = append(out, k)
		}
	}
	return out
}

// construct builds and caches one family. Callers hold e.mu.
func (e *Engine) construct(kind device.Kind) (backend.Backend, error) {
	if b, ok := e.handles[kind]; ok {
		return b, nil
	}
	if err, ok := e.failed[kind]; ok {
		return nil, err
	}
	if kind != device.CPU && !e.manager.Usable(kind) {
		err := errors.Wrapf(backend.ErrUnavailable, "%v", kind)
		e.failed[kind] = err
		return nil, err
	}

	fn, ok := e.ctors[kind]
	if !ok {
		err := errors.Wrapf(backend.ErrUnavailable, "%v: no constructor", kind)
		e.failed[kind] = err
		return nil, err
	}
	b, err := fn(e.cfg)
	if err == nil && b == nil {
		err = errors.Errorf("%v: constructor returned no backend", kind)
	}
	if err != nil {
		e.failed[kind] = err
		return nil, err
	}

	e.log.WithFields(logrus.Fields{"device": kind, "backend": b.Name()}).Debug("backend constructed")
	e.handles[kind] = b
	return b, nil
}

// Close releases every cached backend that holds device resources.
// The engine cannot be used afterwards.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	for kind, b := range e.handles {
		if r, ok := b.(backend.Releaser); ok {
			r.Release()
		}
		delete(e.handles, kind)
	}
}
