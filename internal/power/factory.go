package power

import (
	"fmt"
	"runtime"

	"ddogreen/internal/config"
	"ddogreen/internal/logging"
)

// Options carries the dependencies used to build a backend
type Options struct {
	Runner    Runner
	Logger    *logging.Logger
	SysfsRoot string
}

// New builds the backend named by the power.backend setting for this platform
func New(backend string, opts Options) (PowerManager, error) {
	return newForOS(runtime.GOOS, backend, opts)
}

func newForOS(goos, backend string, opts Options) (PowerManager, error) {
	if opts.SysfsRoot == "" {
		opts.SysfsRoot = DefaultCPUSysfsRoot
	}

	if backend == config.BackendAuto {
		backend = autoBackend(goos, opts)
		opts.Logger.Info("power.backend.selected", "Selected power backend", map[string]interface{}{
			"backend": backend,
			"os":      goos,
		})
	}

	if backend != config.BackendStub && opts.Runner == nil {
		return nil, fmt.Errorf("power backend %s requires a command runner", backend)
	}

	switch backend {
	case config.BackendStub:
		return NewStub(opts.Logger), nil
	case config.BackendTLP:
		if goos != "linux" {
			return nil, unsupported(backend, goos)
		}
		return NewTLP(opts.Runner, opts.Logger), nil
	case config.BackendGovernor:
		if goos != "linux" {
			return nil, unsupported(backend, goos)
		}
		return NewGovernor(opts.SysfsRoot, opts.Logger), nil
	case config.BackendPowercfg:
		if goos != "windows" {
			return nil, unsupported(backend, goos)
		}
		return NewPowercfg(opts.Runner, opts.Logger), nil
	case config.BackendPmset:
		if goos != "darwin" {
			return nil, unsupported(backend, goos)
		}
		return NewPmset(opts.Runner, opts.Logger), nil
	case "":
		return nil, fmt.Errorf("no power backend available for %s", goos)
	default:
		return nil, fmt.Errorf("unknown power backend %q", backend)
	}
}

// autoBackend prefers TLP on Linux when installed, else the cpufreq governor
func autoBackend(goos string, opts Options) string {
	switch goos {
	case "linux":
		if opts.Runner != nil {
			if _, err := opts.Runner.LookPath("tlp"); err == nil {
				return config.BackendTLP
			}
		}
		return config.BackendGovernor
	case "windows":
		return config.BackendPowercfg
	case "darwin":
		return config.BackendPmset
	default:
		return ""
	}
}

func unsupported(backend, goos string) error {
	return fmt.Errorf("power backend %s is not supported on %s", backend, goos)
}
