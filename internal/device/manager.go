package device

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Probe reports whether one device family can be used.
//
// Compiled is false when the family's backend was left out of the build
// (build tags, no cgo, wrong OS). Available is only called for compiled
// families and may touch the driver, so it can be slow. Enumerate calls the
// Available funcs of different families concurrently, so each must be safe
// to run alongside the others and alongside itself.
type Probe struct {
	Kind      Kind
	Compiled  bool
	Available func() bool
}

// Status is the probing result for one family.
type Status struct {
	Kind      Kind
	Compiled  bool
	Available bool
	Selected  bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithPreferred moves kind to the front of the probing order.
func WithPreferred(kind Kind) Option {
	return func(m *Manager) {
		if !kind.Valid() {
			return
		}
		order := []Kind{kind}
		for _, k := range m.order {
			if k != kind {
				order = append(order, k)
			}
		}
		m.order = order
	}
}

// WithDisabled removes accelerated kinds from consideration. CPU cannot be disabled.
func WithDisabled(kinds ...Kind) Option {
	return func(m *Manager) {
		for _, k := range kinds {
			if k.Accelerated() {
				m.disabled[k] = true
			}
		}
	}
}

// WithLogger sets the entry selection diagnostics are written to.
func WithLogger(log *logrus.Entry) Option {
	return func(m *Manager) {
		m.log = log
	}
}

// Manager selects the default device once per process (or once per Manager,
// for tests that inject their own probes).
type Manager struct {
	probes   map[Kind]Probe
	order    []Kind
	disabled map[Kind]bool
	log      *logrus.Entry

	once     sync.Once
	selected Kind
}

// NewManager creates a manager over the given probes. Kinds without a probe
// are treated as not compiled in, except CPU which is always available.
func NewManager(probes []Probe, opts ...Option) *Manager {
	m := &Manager{
		probes:   make(map[Kind]Probe, len(probes)),
		order:    append([]Kind(nil), Priority...),
		disabled: make(map[Kind]bool),
		log:      logrus.WithField("component", "device"),
	}
	for _, p := range probes {
		m.probes[p.Kind] = p
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Order returns the effective probing order, CPU always last.
func (m *Manager) Order() []Kind {
	order := make([]Kind, 0, len(m.order))
	for _, k := range m.order {
		if k.Accelerated() && !m.disabled[k] {
			order = append(order, k)
		}
	}
	return append(order, CPU)
}

// SelectDefault returns the first compiled and available family in probing
// order, or CPU when there is none. The answer is computed on the first call
// and cached.
func (m *Manager) SelectDefault() Kind {
	m.once.Do(func() {
		m.selected = CPU
		for _, k := range m.Order() {
			if m.usable(k) {
				m.selected = k
				break
			}
		}
		m.log.WithField("device", m.selected).Debug("selected default device")
	})
	return m.selected
}

// Usable reports whether kind is compiled in, not disabled and available now.
// Unlike SelectDefault the answer is not cached.
func (m *Manager) Usable(kind Kind) bool {
	if kind == CPU {
		return true
	}
	if m.disabled[kind] {
		return false
	}
	return m.usable(kind)
}

// Enumerate probes every family concurrently and reports them in probing
// order. Disabled families are reported as not available.
func (m *Manager) Enumerate(ctx context.Context) ([]Status, error) {
	order := make([]Kind, 0, len(m.order))
	for _, k := range m.order {
		if k.Accelerated() {
			order = append(order, k)
		}
	}
	order = append(order, CPU)

	statuses := make([]Status, len(order))
	g, ctx := errgroup.WithContext(ctx)
	for i, k := range order {
		i, k := i, k
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			p, ok := m.probes[k]
			st := Status{Kind: k, Compiled: k == CPU || (ok && p.Compiled)}
			st.Available = k == CPU || (!m.disabled[k] && m.usable(k))
			statuses[i] = st
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	selected := m.SelectDefault()
	for i := range statuses {
		statuses[i].Selected = statuses[i].Kind == selected
	}
	return statuses, nil
}

func (m *Manager) usable(kind Kind) (ok bool) {
	if kind == CPU {
		return true
	}
	p, found := m.probes[kind]
	if !found || !p.Compiled || p.Available == nil {
		return false
	}
	defer func() {
		if r := recover(); r != nil {
			m.log.WithField("device", kind).Warnf("device probe panicked: %v", r)
			ok = false
		}
	}()
	return p.Available()
}
