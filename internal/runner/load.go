package runner

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/norceresearch/helics-fmi/internal/bus"
	"github.com/norceresearch/helics-fmi/internal/config"
	"github.com/norceresearch/helics-fmi/internal/driver"
	"github.com/norceresearch/helics-fmi/internal/fmi"
)

const (
	defaultBusPeriodSeconds = 0.001
	defaultBusStopSeconds   = 30.0
)

func durationOf(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}

// parse validates the invocation surface and resolves the first input path
// (§4.7.3 step 1). It does not touch any external collaborator, so it never
// advances the life-cycle state past CREATED.
func (r *Runner) parse() error {
	if len(r.opts.Inputs) == 0 {
		return fail(ExitMissingFile, errors.New("no input files given"))
	}
	resolved, err := r.resolveInputPath(r.opts.Inputs[0])
	if err != nil {
		return fail(ExitMissingFile, err)
	}
	r.primaryInput = resolved
	return nil
}

func (r *Runner) resolveInputPath(input string) (string, error) {
	if _, err := os.Stat(input); err == nil {
		return input, nil
	}
	for _, dir := range r.opts.FMUPath {
		candidate := filepath.Join(dir, input)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", errors.Errorf("input %q not found (searched %d --fmupath entries)", input, len(r.opts.FMUPath))
}

// load implements §4.7.3 in full: broker/core bring-up, FMU/config
// resolution, driver construction, cross-FMU wiring, and flag application.
func (r *Runner) load(ctx context.Context) error {
	if err := r.parse(); err != nil {
		return err
	}

	if r.opts.AutoBroker {
		b, err := r.factory.StartBroker(ctx, r.opts.BrokerInitString+" "+r.opts.BrokerArgs)
		if err != nil || !b.Connected() {
			return fail(ExitBrokerConnectFailure, errors.Wrap(errOrNew(err), "start broker"))
		}
		r.broker = b
	}

	core, err := r.factory.StartCore(ctx, r.federateInfo().CoreType, r.federateInfo().CoreInitString)
	if err != nil || !core.Connected() {
		return fail(ExitCoreConnectFailure, errors.Wrap(errOrNew(err), "start core"))
	}
	r.core = core

	switch strings.ToLower(filepath.Ext(r.primaryInput)) {
	case ".fmu":
		if err := r.loadSingleFMU(ctx); err != nil {
			return err
		}
	case ".json", ".toml", ".xml", ".yaml", ".yml":
		if err := r.loadConfigFile(ctx); err != nil {
			return err
		}
	default:
		return fail(ExitInvalidFile, errors.Errorf("input %q: unrecognized extension", r.primaryInput))
	}

	if err := r.applyFlags(); err != nil {
		return err
	}

	r.state = StateLoaded
	return nil
}

func errOrNew(err error) error {
	if err != nil {
		return err
	}
	return errors.New("not connected")
}

func (r *Runner) federateInfo() bus.FederateInfo {
	return bus.FederateInfo{
		Name:             r.opts.FederateName,
		CoreType:         r.opts.CoreType,
		BrokerAddress:    r.opts.BrokerAddress,
		AutoBroker:       r.opts.AutoBroker,
		BrokerInitString: r.opts.BrokerInitString,
	}
}

// loadSingleFMU handles a bare ".fmu" positional input (§4.7.3 step 5).
func (r *Runner) loadSingleFMU(ctx context.Context) error {
	info := r.federateInfo()
	if info.Name == "" {
		info.Name = "fmu_" + uuid.New().String()
	}
	fed, err := r.factory.CreateFederate(r.core, info)
	if err != nil {
		return fail(ExitFMUError, errors.Wrap(err, "create federate"))
	}

	step, _ := config.ParseTime(r.opts.Step)
	stop, _ := config.ParseTime(r.opts.Stop)
	if step <= 0 {
		step = defaultBusPeriodSeconds
	}
	if stop <= 0 {
		stop = defaultBusStopSeconds
	}
	fed.SetPeriod(durationOf(step))
	fed.SetStopTime(durationOf(stop))

	d, err := r.newDriverFromFMU(r.primaryInput, info.Name, fed)
	if err != nil {
		return err
	}
	r.drivers = append(r.drivers, d)
	r.driverConfig = append(r.driverConfig, driverConfig{step: step})

	for _, pair := range r.opts.Connections {
		from, to, ok := splitConnectionPair(pair)
		if !ok {
			continue
		}
		if err := r.core.DataLink(from, to); err != nil {
			return fail(ExitFMUError, errors.Wrapf(err, "data link %s -> %s", from, to))
		}
	}
	return nil
}

// splitConnectionPair parses a single "a,b" --connections token (§4.7.2).
func splitConnectionPair(pair string) (from, to string, ok bool) {
	idx := strings.IndexByte(pair, ',')
	if idx < 0 {
		return "", "", false
	}
	return pair[:idx], pair[idx+1:], true
}

// loadConfigFile handles a JSON/TOML/XML config input (§4.7.3 step 6).
func (r *Runner) loadConfigFile(ctx context.Context) error {
	doc, err := config.Load(r.primaryInput)
	if err != nil {
		return fail(ExitFileProcessingError, err)
	}

	for _, entry := range doc.FMUs {
		name := entry.Name
		if name == "" {
			name = "fmu_" + uuid.New().String()
		}
		fed, err := r.factory.CreateFederate(r.core, bus.FederateInfo{Name: name})
		if err != nil {
			return fail(ExitFMUError, errors.Wrapf(err, "create federate %s", name))
		}

		fmuPath := entry.FMU
		if !filepath.IsAbs(fmuPath) {
			if candidate := filepath.Join(filepath.Dir(r.primaryInput), fmuPath); fileExists(candidate) {
				fmuPath = candidate
			}
		}

		d, err := r.newDriverFromFMU(fmuPath, name, fed)
		if err != nil {
			return err
		}

		for _, p := range entry.Parameters {
			if _, err := r.applyParameter(d.Instance(), p.Field, p.Value); err != nil {
				return fail(ExitDiscardedParameterError, errors.Wrapf(err, "fmu %s parameter %s", name, p.Field))
			}
		}

		step, _ := config.ParseTime(entry.StepTime)
		if step <= 0 {
			step, _ = config.ParseTime(doc.Step)
		}
		startTime, _ := config.ParseTime(entry.StartTime)

		r.drivers = append(r.drivers, d)
		r.driverConfig = append(r.driverConfig, driverConfig{step: step, startTime: startTime})
	}

	for _, conn := range doc.Connections {
		if err := r.core.DataLink(conn.From, conn.To); err != nil {
			return fail(ExitFMUError, errors.Wrapf(err, "data link %s -> %s", conn.From, conn.To))
		}
	}

	r.docStop = doc.Stop
	return nil
}

func (r *Runner) newDriverFromFMU(path, name string, fed bus.ValueFederate) (*driver.Driver, error) {
	kind := fmi.KindCoSimulation
	if !r.opts.preferCoSimulation() {
		kind = fmi.KindModelExchange
	}

	lib, err := r.manager.GetLibrary(path, fmi.LoadOptions{ExtractPath: r.opts.ExtractPath, Kind: kind})
	if err != nil {
		return nil, fail(ExitInvalidFMU, errors.Wrapf(err, "load FMU %s", path))
	}

	instance, err := fmi.NewInstance(lib, name, r.logger)
	if err != nil {
		return nil, fail(ExitFMUError, errors.Wrapf(err, "instantiate %s", name))
	}

	if len(r.opts.InputVariables) > 0 {
		instance.SetInputVariables(r.opts.InputVariables)
	}
	if len(r.opts.OutputVariables) > 0 {
		instance.SetOutputVariables(r.opts.OutputVariables)
	}

	d := driver.New(name, instance, fed, r.logger)
	if r.captureFile != nil {
		d.SetCaptureFile(r.captureFile)
	}
	return d, nil
}

func (r *Runner) applyFlags() error {
	for _, token := range r.opts.Flags {
		value := true
		name := token
		switch {
		case strings.HasPrefix(token, "-"):
			value = false
			name = strings.TrimPrefix(token, "-")
		case strings.HasPrefix(token, "+"):
			name = strings.TrimPrefix(token, "+")
		}
		accepted := false
		for _, d := range r.drivers {
			if d.Instance().SetFlag(name, value) {
				accepted = true
			}
		}
		if !accepted && r.logger != nil {
			r.logger.Warn("no driver accepted flag", "flag", token)
		}
	}
	return nil
}

// applyParameter attempts a typed set on inst for a single --set/parameters
// entry, dispatching on the variable's declared type (§4.7.3, §4.7.4
// "typed set"). It reports applied=false (not an error) when inst has no
// variable by that name.
func (r *Runner) applyParameter(inst *fmi.Instance, key, value string) (bool, error) {
	v := inst.Catalog().GetVariableInfo(key)
	if v.Index < 0 {
		return false, nil
	}
	switch v.Type {
	case fmi.TypeReal:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return true, errors.Wrapf(err, "parse real value %q", value)
		}
		return true, inst.SetReal(key, f)
	case fmi.TypeInteger, fmi.TypeEnumeration:
		i, err := strconv.ParseInt(value, 10, 32)
		if err != nil {
			return true, errors.Wrapf(err, "parse integer value %q", value)
		}
		return true, inst.SetInteger(key, int32(i))
	case fmi.TypeBoolean:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return true, errors.Wrapf(err, "parse boolean value %q", value)
		}
		return true, inst.SetBoolean(key, b)
	case fmi.TypeString:
		return true, inst.SetString(key, value)
	default:
		return false, nil
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
