package engine

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/born-ml/tensorcore/internal/config"
)

var (
	defaultOnce   sync.Once
	defaultEngine *Engine
)

// Default returns the process-wide engine, configured from the environment
// on first use. An invalid configuration is logged and replaced by
// config.Default.
func Default() *Engine {
	defaultOnce.Do(func() {
		cfg, err := config.FromEnv()

		logger := logrus.New()
		logger.SetLevel(cfg.Level())
		log := logger.WithField("component", "engine")
		if err != nil {
			log.WithError(err).Warn("invalid configuration, using defaults")
			cfg = config.Default()
		}
		defaultEngine = New(cfg, WithLogger(log))
	})
	return defaultEngine
}
