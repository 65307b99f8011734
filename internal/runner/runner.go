// Package runner implements the command-line runner (§4.7): a life-cycle
// state machine that loads FMUs or a config file onto the co-simulation
// bus, initializes each driver, runs them in parallel, and tears everything
// down.
package runner

import (
	"context"
	"os"
	"strings"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/norceresearch/helics-fmi/internal/bus"
	"github.com/norceresearch/helics-fmi/internal/config"
	"github.com/norceresearch/helics-fmi/internal/driver"
	"github.com/norceresearch/helics-fmi/internal/fmi"
)

// State is one of the runner's life-cycle states (§4.7.1).
type State int

const (
	StateCreated State = iota
	StateLoaded
	StateInitialized
	StateRunning
	StateClosed
	StateError
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateLoaded:
		return "loaded"
	case StateInitialized:
		return "initialized"
	case StateRunning:
		return "running"
	case StateClosed:
		return "closed"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

const disconnectDeadline = 2 * time.Second

// Runner drives the CREATED → LOADED → INITIALIZED → RUNNING → CLOSED
// life-cycle described in §4.7.1.
type Runner struct {
	opts   Options
	logger *charmlog.Logger

	factory bus.Factory
	manager *fmi.LibraryManager

	broker bus.Broker
	core   bus.Core

	drivers      []*driver.Driver
	driverConfig []driverConfig

	primaryInput string
	docStop      string
	captureFile  *os.File

	state State
	ran   bool
}

// driverConfig is the (step, startTime) pair load() resolved for a driver,
// applied once by Initialize via Driver.Configure (§4.6, §4.7.4). Deferring
// the actual Configure call to Initialize keeps it a single idempotent call
// site regardless of whether the driver came from a bare FMU or a config
// file entry.
type driverConfig struct {
	step      float64
	startTime float64
}

// New creates a runner bound to the given bus factory and options. The
// factory is typically bus/inprocess.NewFactory() or a production HELICS
// client adapter.
func New(opts Options, logger *charmlog.Logger, factory bus.Factory) *Runner {
	return &Runner{
		opts:    opts,
		logger:  logger,
		factory: factory,
		manager: fmi.NewLibraryManager(),
		state:   StateCreated,
	}
}

// State reports the runner's current life-cycle state.
func (r *Runner) State() State { return r.state }

// Drivers exposes the loaded drivers, e.g. for a CLI summary after Run.
func (r *Runner) Drivers() []*driver.Driver { return r.drivers }

// Parse validates the invocation surface without touching any external
// collaborator (§4.7.1 "parse"). Idempotent: safe to call repeatedly.
func (r *Runner) Parse() error {
	if r.state == StateError {
		return errors.New("runner: cannot parse, already in error state")
	}
	if err := r.parse(); err != nil {
		r.state = StateError
		return err
	}
	return nil
}

// Load brings the broker/core online and constructs every driver (§4.7.3).
// A no-op once the runner has already reached LOADED or further.
func (r *Runner) Load(ctx context.Context) error {
	if r.state == StateError {
		return errors.New("runner: cannot load, already in error state")
	}
	if r.state >= StateLoaded {
		return nil
	}
	if r.opts.CaptureFile != "" {
		f, err := os.Create(r.opts.CaptureFile)
		if err != nil {
			r.state = StateError
			return fail(ExitFileProcessingError, errors.Wrap(err, "create capture file"))
		}
		r.captureFile = f
	}
	if err := r.load(ctx); err != nil {
		r.state = StateError
		return err
	}
	return nil
}

// Initialize configures every driver and applies --set parameter
// assignments (§4.7.4). A no-op once the runner has already reached
// INITIALIZED or further.
func (r *Runner) Initialize() error {
	if r.state == StateError {
		return errors.New("runner: cannot initialize, already in error state")
	}
	if r.state < StateLoaded {
		return errors.New("runner: must load before initialize")
	}
	if r.state >= StateInitialized {
		return nil
	}

	for i, d := range r.drivers {
		cfg := r.driverConfig[i]
		if err := d.Configure(cfg.step, cfg.startTime); err != nil {
			r.state = StateError
			return fail(ExitFMUError, errors.Wrapf(err, "configure driver %s", d.Name()))
		}
	}

	applied := 0
	var assignments []string
	for _, entry := range r.opts.Set {
		assignments = append(assignments, strings.Split(entry, ";")...)
	}
	for _, kv := range assignments {
		key, value, ok := splitAssignment(kv)
		if !ok {
			continue
		}
		acceptedByAny := false
		for _, d := range r.drivers {
			ok, err := r.applyParameter(d.Instance(), key, value)
			if err != nil {
				r.state = StateError
				return fail(ExitDiscardedParameterError, errors.Wrapf(err, "set %s on driver %s", key, d.Name()))
			}
			if ok {
				acceptedByAny = true
				applied++
			}
		}
		if !acceptedByAny && r.logger != nil {
			r.logger.Warn("no driver accepted --set assignment", "assignment", kv)
		}
	}

	r.state = StateInitialized
	return nil
}

// Run spawns one worker per driver (via errgroup.Group), waits for all of
// them, and force-terminates the core (§4.7.5). A no-op if Run has already
// completed once.
func (r *Runner) Run(ctx context.Context) error {
	if r.state == StateError {
		return errors.New("runner: cannot run, already in error state")
	}
	if r.state < StateInitialized {
		return errors.New("runner: must initialize before run")
	}
	if r.ran {
		return nil
	}
	r.state = StateRunning

	stopSpec := r.opts.Stop
	if stopSpec == "" {
		stopSpec = r.docStop
	}
	stop, _ := config.ParseTime(stopSpec)

	group, gctx := errgroup.WithContext(ctx)
	for _, d := range r.drivers {
		d := d
		group.Go(func() error {
			return d.Run(gctx, stop)
		})
	}
	err := group.Wait()

	if r.core != nil {
		r.core.ForceTerminate()
	}

	r.ran = true
	if err != nil {
		r.state = StateError
		return fail(ExitFMUError, errors.Wrap(err, "driver run"))
	}
	return nil
}

// Close destroys every driver in reverse load order, then waits for the broker and core to disconnect before
// force-terminating (§4.7.6). Idempotent.
func (r *Runner) Close(ctx context.Context) error {
	if r.state == StateClosed {
		return nil
	}

	for i := len(r.drivers) - 1; i >= 0; i-- {
		r.drivers[i].Close()
	}

	deadlineCtx, cancel := context.WithTimeout(ctx, disconnectDeadline)
	defer cancel()

	if r.core != nil {
		if err := r.core.Disconnect(deadlineCtx); err != nil {
			r.core.ForceTerminate()
		}
	}
	if r.broker != nil {
		if err := r.broker.Disconnect(deadlineCtx); err != nil {
			r.broker.ForceTerminate()
		}
	}
	if r.captureFile != nil {
		r.captureFile.Close()
	}

	r.state = StateClosed
	return nil
}

func splitAssignment(kv string) (key, value string, ok bool) {
	for i := 0; i < len(kv); i++ {
		if kv[i] == '=' {
			return kv[:i], kv[i+1:], true
		}
	}
	return "", "", false
}

