// Package driver implements the co-simulation driver (§4.6): it owns one
// FMU instance and one bus federate handle, and bridges them every step.
package driver

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/pkg/errors"

	"github.com/norceresearch/helics-fmi/internal/bus"
	"github.com/norceresearch/helics-fmi/internal/fmi"
)

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}

// declaredNames returns the declaration-order variable names for category,
// the same index order the FMU instance's default active-I/O population
// uses (§4.4.1), so bus channel registration order always matches the
// bulk get/set order a driver pulls from PushOutputs/PullInputs.
func declaredNames(catalog *fmi.Catalog, category fmi.VariableCategory) []string {
	indices := catalog.GetVariableIndices(category)
	names := make([]string, len(indices))
	for i, idx := range indices {
		names[i] = catalog.GetVariableInfoByIndex(idx).Name
	}
	return names
}

const (
	defaultStep = 0.2
	defaultStop = 30.0
)

// Driver bridges one FMU instance to one bus federate, translating bus
// time advancement into FMU doStep calls and mirroring values both ways
// every step.
type Driver struct {
	name     string
	instance *fmi.Instance
	federate bus.ValueFederate

	inputs      []bus.Input
	outputs     []bus.Publication
	inputNames  []string
	outputNames []string

	captureFile *os.File
	logger      *charmlog.Logger

	startTimeBias float64
	effectiveStep float64
}

// New wires an FMU instance to a freshly created federate on core, naming
// it name (the declared federate name, or a generated default upstream).
func New(name string, instance *fmi.Instance, federate bus.ValueFederate, logger *charmlog.Logger) *Driver {
	return &Driver{name: name, instance: instance, federate: federate, logger: logger}
}

// Name returns the driver's federate/instance name.
func (d *Driver) Name() string { return d.name }

// Instance exposes the underlying FMU instance, e.g. for --set/--flags
// application from the runner.
func (d *Driver) Instance() *fmi.Instance { return d.instance }

// SetCaptureFile enables CSV output capture to f, written with a header
// row the first time Run starts (§6.6).
func (d *Driver) SetCaptureFile(f *os.File) { d.captureFile = f }

// Configure registers one bus subscription per declared FMU input and one
// bus publication per declared FMU output, then derives and applies the
// effective step size (§4.6 "configure(step, startTime)"). startTime
// becomes the driver's local start-time bias, added to currentTime on
// every doStep call in Run.
//
// Effective step precedence: caller's argument, then the FMU's declared
// default-experiment step size, then the bus's already-configured period,
// then the package default of 0.2.
func (d *Driver) Configure(step, startTime float64) error {
	d.startTimeBias = startTime
	catalog := d.instance.Catalog()
	inputNames := declaredNames(catalog, fmi.CategoryInput)
	outputNames := declaredNames(catalog, fmi.CategoryOutput)

	for _, name := range inputNames {
		in, err := d.federate.RegisterSubscription(name)
		if err != nil {
			return errors.Wrapf(err, "driver %s: register subscription %s", d.name, name)
		}
		d.inputs = append(d.inputs, in)
	}
	for _, name := range outputNames {
		pub, err := d.federate.RegisterPublication(name)
		if err != nil {
			return errors.Wrapf(err, "driver %s: register publication %s", d.name, name)
		}
		d.outputs = append(d.outputs, pub)
	}
	d.inputNames = inputNames
	d.outputNames = outputNames

	effective := step
	if effective <= 0 {
		experiment := d.instance.Catalog().Experiment()
		if experiment.StepSize > 0 {
			effective = experiment.StepSize
		}
	}
	if effective <= 0 {
		if period := d.federate.Period(); period > 0 {
			effective = period.Seconds()
		}
	}
	if effective <= 0 {
		effective = defaultStep
	}
	d.effectiveStep = effective
	d.federate.SetPeriod(secondsToDuration(effective))
	return nil
}

// Run executes the driver's full simulation sequence (§4.6 "run(stop)"):
// initialization handshake, the do-step loop, and federate finalization.
func (d *Driver) Run(ctx context.Context, stop float64) error {
	effectiveStop := stop
	if effectiveStop <= 0 {
		experiment := d.instance.Catalog().Experiment()
		if experiment.StopTime > 0 {
			effectiveStop = experiment.StopTime
		}
	}
	if effectiveStop <= 0 {
		effectiveStop = defaultStop
	}

	if d.captureFile != nil {
		if err := d.writeCaptureHeader(); err != nil {
			return err
		}
	}

	startTime := 0.0

	if err := d.federate.EnterInitializingMode(ctx); err != nil {
		return errors.Wrapf(err, "driver %s: enter initializing mode", d.name)
	}
	if err := d.instance.SetupExperiment(false, 0, startTime, true, startTime+effectiveStop); err != nil {
		return errors.Wrapf(err, "driver %s: setup experiment", d.name)
	}
	if err := d.instance.SetMode(fmi.ModeInitialization); err != nil {
		return errors.Wrapf(err, "driver %s: enter initialization mode", d.name)
	}

	if err := d.publishOutputs(); err != nil {
		return err
	}
	if err := d.defaultInputs(); err != nil {
		return err
	}

	result, err := d.federate.EnterExecutingMode(ctx, bus.IterationIfNeeded)
	if err != nil {
		return errors.Wrapf(err, "driver %s: enter executing mode", d.name)
	}
	if result == bus.IterationRequired {
		if err := d.pullInputs(); err != nil {
			return err
		}
		if _, err := d.federate.EnterExecutingMode(ctx, bus.IterationNone); err != nil {
			return errors.Wrapf(err, "driver %s: finish iteration", d.name)
		}
	}

	if err := d.instance.SetMode(fmi.ModeStep); err != nil {
		return errors.Wrapf(err, "driver %s: enter step mode", d.name)
	}

	// Capture rows are written at the post-advance time returned by
	// RequestNextStep, matching FmiCoSimFederate::run in the original: the
	// loop condition is checked against the pre-advance currentTime, so a
	// run from 0 with step 0.1 and stop 1.0 writes rows 0.1..1.1 (one step
	// past stop), not 0.0..1.0 — the same off-by-one-step overshoot the
	// original has, not unique to this port.
	currentTime := startTime
	if effectiveStop < d.effectiveStep && d.logger != nil {
		d.logger.Warn("stop time is shorter than one step; no steps will run",
			"driver", d.name, "stop", effectiveStop, "step", d.effectiveStep)
	}
	for effectiveStop >= d.effectiveStep && currentTime+d.startTimeBias <= effectiveStop {
		if err := d.instance.DoStep(currentTime+d.startTimeBias, d.effectiveStep, true); err != nil {
			return errors.Wrapf(err, "driver %s: doStep at t=%g", d.name, currentTime)
		}

		next, err := d.federate.RequestNextStep(ctx, secondsToDuration(currentTime))
		if err != nil {
			return errors.Wrapf(err, "driver %s: request next step", d.name)
		}
		currentTime = next.Seconds()

		values, err := d.readAndPublishOutputs()
		if err != nil {
			return err
		}
		if err := d.pullInputs(); err != nil {
			return err
		}
		if d.captureFile != nil {
			if err := d.writeCaptureRow(currentTime, values); err != nil {
				return err
			}
		}
	}

	return errors.Wrapf(d.federate.Finalize(ctx), "driver %s: finalize federate", d.name)
}

func (d *Driver) publishOutputs() error {
	_, err := d.readAndPublishOutputs()
	return err
}

func (d *Driver) readAndPublishOutputs() ([]float64, error) {
	values, err := d.instance.PushOutputs()
	if err != nil {
		return nil, errors.Wrapf(err, "driver %s: read outputs", d.name)
	}
	for i, pub := range d.outputs {
		if i >= len(values) {
			break
		}
		if err := pub.Publish(values[i]); err != nil {
			return nil, errors.Wrapf(err, "driver %s: publish %s", d.name, pub.Name())
		}
	}
	return values, nil
}

func (d *Driver) defaultInputs() error {
	values := make([]float64, len(d.inputs))
	current, err := d.currentInputValues()
	if err != nil {
		return err
	}
	for i := range d.inputs {
		if i < len(current) {
			values[i] = current[i]
		}
		d.inputs[i].SetDefault(values[i])
	}
	return nil
}

func (d *Driver) currentInputValues() ([]float64, error) {
	values := make([]float64, len(d.inputNames))
	for i, name := range d.inputNames {
		v, err := d.instance.GetReal(name)
		if err != nil {
			return nil, errors.Wrapf(err, "driver %s: read input default %s", d.name, name)
		}
		values[i] = v
	}
	return values, nil
}

func (d *Driver) pullInputs() error {
	values := make([]float64, len(d.inputs))
	for i, in := range d.inputs {
		values[i] = in.Value()
	}
	return errors.Wrapf(d.instance.PullInputs(values), "driver %s: push inputs", d.name)
}

func (d *Driver) writeCaptureHeader() error {
	header := make([]string, 0, len(d.outputs)+1)
	header = append(header, "time")
	for _, pub := range d.outputs {
		header = append(header, pub.Name())
	}
	_, err := fmt.Fprintln(d.captureFile, strings.Join(header, ","))
	return errors.Wrap(err, "write capture header")
}

func (d *Driver) writeCaptureRow(currentTime float64, values []float64) error {
	row := make([]string, 0, len(values)+1)
	row = append(row, fmt.Sprintf("%g", currentTime))
	for _, v := range values {
		row = append(row, fmt.Sprintf("%g", v))
	}
	_, err := fmt.Fprintln(d.captureFile, strings.Join(row, ","))
	return errors.Wrap(err, "write capture row")
}

// Close releases the underlying FMU instance. The runner calls this in
// dependency order across all drivers (§4.7.6).
func (d *Driver) Close() {
	d.instance.Close()
}
