package engine

import (
	"github.com/born-ml/tensorcore/internal/backend"
	"github.com/born-ml/tensorcore/internal/backend/cpu"
	"github.com/born-ml/tensorcore/internal/backend/cuda"
	"github.com/born-ml/tensorcore/internal/backend/metal"
	"github.com/born-ml/tensorcore/internal/backend/webgpu"
	"github.com/born-ml/tensorcore/internal/config"
	"github.com/born-ml/tensorcore/internal/device"
)

// DefaultProbes reports the families compiled into this binary.
func DefaultProbes() []device.Probe {
	return []device.Probe{
		{Kind: device.CUDA, Compiled: cuda.Compiled, Available: cuda.Available},
		{Kind: device.WebGPU, Compiled: webgpu.Compiled, Available: webgpu.Available},
		{Kind: device.Metal, Compiled: metal.Compiled, Available: metal.Available},
	}
}

// DefaultConstructors maps each family to its package constructor.
func DefaultConstructors() map[device.Kind]Constructor {
	return map[device.Kind]Constructor{
		device.CPU: func(cfg config.Config) (backend.Backend, error) {
			return cpu.New(cfg.ParallelConfig()), nil
		},
		device.CUDA: func(config.Config) (backend.Backend, error) {
			b, err := cuda.New()
			if err != nil {
				return nil, err
			}
			return b, nil
		},
		device.WebGPU: func(config.Config) (backend.Backend, error) {
			b, err := webgpu.New()
			if err != nil {
				return nil, err
			}
			return b, nil
		},
		device.Metal: func(cfg config.Config) (backend.Backend, error) {
			b, err := metal.New(cfg.ArtifactsDir)
			if err != nil {
				return nil, err
			}
			return b, nil
		},
	}
}
