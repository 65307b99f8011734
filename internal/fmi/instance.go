package fmi

import (
	"strings"

	charmlog "github.com/charmbracelet/log"
)

// activeSet is a parallel value-reference + catalog-index vector (§3
// "Active I/O set": "parallel value-reference and index vectors for bulk
// ABI get/set, not an unordered set").
type activeSet struct {
	refs    []ValueReference
	indices []int
}

func (s *activeSet) add(idx int, ref ValueReference) {
	s.refs = append(s.refs, ref)
	s.indices = append(s.indices, idx)
}

func (s *activeSet) names(catalog *Catalog) []string {
	out := make([]string, len(s.indices))
	for i, idx := range s.indices {
		out[i] = catalog.GetVariableInfoByIndex(idx).Name
	}
	return out
}

// Instance is one instantiated FMU, bound to its owning library's function
// tables and catalog (§3 "Instances are created through the library's
// instantiate factory").
type Instance struct {
	name string
	comp Component
	kind FMUKind

	library *Library
	catalog *Catalog

	common *commonFunctions
	me     *modelExchangeFunctions
	cs     *coSimFunctions

	currentMode Mode

	exceptionOnDiscard bool
	exceptionOnWarning bool

	activeInputs  activeSet
	activeOutputs activeSet

	stepPending bool

	logger      *charmlog.Logger
	loggerToken uintptr
}

// NewInstance creates an FMU instance through the library's instantiate
// factory and starts it in the instantiated mode with the default policy
// flags (§3, §7: "exceptionOnDiscard default on, exceptionOnWarning
// default off").
func NewInstance(lib *Library, name string, logger *charmlog.Logger) (*Instance, error) {
	var token uintptr
	if logger != nil {
		token = registerLogger(logger, name)
	}
	callbacks := &CallbackFunctions{ComponentEnvironment: token}
	comp, err := lib.CreateInstance(name, callbacks, false, logger != nil)
	if err != nil {
		if logger != nil {
			unregisterLogger(token)
		}
		return nil, err
	}

	inst := &Instance{
		name:               name,
		comp:               comp,
		kind:               lib.kind,
		library:            lib,
		catalog:            lib.Catalog,
		common:             lib.common,
		me:                 lib.me,
		cs:                 lib.cs,
		currentMode:        ModeInstantiated,
		exceptionOnDiscard: true,
		exceptionOnWarning: false,
		logger:             logger,
		loggerToken:        token,
	}
	return inst, nil
}

// Close invokes the library's release path exactly once (§3 "Lifecycle").
func (inst *Instance) Close() {
	inst.library.ReleaseInstance(inst.comp)
	if inst.logger != nil {
		unregisterLogger(inst.loggerToken)
	}
}

// Name returns the instance's federate/object name.
func (inst *Instance) Name() string { return inst.name }

// Catalog exposes the instance's variable catalog, e.g. for a driver to
// read the FMU's declared default-experiment step/stop (§4.6).
func (inst *Instance) Catalog() *Catalog { return inst.catalog }

// SetupExperiment declares the simulation interval and tolerance upfront,
// as required before entering initialization mode (§4.6 step 1).
func (inst *Instance) SetupExperiment(toleranceDefined bool, tolerance, startTime float64, stopDefined bool, stopTime float64) error {
	status := callSetupExperiment(inst.common.setupExperiment, inst.comp, toleranceDefined, tolerance, startTime, stopDefined, stopTime)
	return inst.raise("fmi2SetupExperiment", status)
}

// CurrentMode returns the mode the instance is currently in.
func (inst *Instance) CurrentMode() Mode { return inst.currentMode }

// SetFlag toggles one of the instance's exception policy flags by name
// (§4.7.2 "--flags f1,f2,-f3 to toggle FMU instance flags"); unrecognized
// names report false rather than erroring, matching setFlag's bool return.
func (inst *Instance) SetFlag(name string, value bool) bool {
	switch name {
	case "exception_on_discard":
		inst.exceptionOnDiscard = value
	case "exception_on_warning":
		inst.exceptionOnWarning = value
	default:
		return false
	}
	return true
}

func (inst *Instance) raise(op string, status ABIStatus) error {
	err := classify(status, inst.exceptionOnDiscard, inst.exceptionOnWarning)
	if err == nil {
		return nil
	}
	if se, ok := err.(*StatusError); ok {
		se.Op = op
	}
	if inst.logger != nil && (status == StatusWarning || status == StatusDiscard) {
		inst.logger.Warn("fmi status", "op", op, "status", status.String(), "instance", inst.name)
	}
	return err
}

func (inst *Instance) setDefaultInputs() {
	inst.activeInputs = activeSet{}
	for _, idx := range inst.catalog.GetVariableIndices(CategoryInput) {
		v := inst.catalog.GetVariableInfoByIndex(idx)
		inst.activeInputs.add(idx, v.ValueReference)
	}
}

func (inst *Instance) setDefaultOutputs() {
	inst.activeOutputs = activeSet{}
	for _, idx := range inst.catalog.GetVariableIndices(CategoryOutput) {
		v := inst.catalog.GetVariableInfoByIndex(idx)
		inst.activeOutputs.add(idx, v.ValueReference)
	}
}

// --- §4.4.3 active I/O set management: real-typed only, direction-checked,
// unmatched names silently dropped at Warn (SPEC_FULL.md Open Question
// decision) ---

// qualifiesAsInput reports whether v is a real-typed input (§4.4.3).
func qualifiesAsInput(v Variable) bool {
	return v.Type == TypeReal && v.Causality == CausalityInput
}

// qualifiesAsOutput reports whether v is a real-typed output — causality
// `output` or `local`, the latter deliberately admitted to expose internal
// observables (§4.4.3).
func qualifiesAsOutput(v Variable) bool {
	return v.Type == TypeReal && (v.Causality == CausalityOutput || v.Causality == CausalityLocal)
}

func (inst *Instance) resolveNamed(names []string, qualifies func(Variable) bool) activeSet {
	var set activeSet
	for _, name := range names {
		v := inst.catalog.GetVariableInfo(name)
		if v.Index < 0 {
			if inst.logger != nil {
				inst.logger.Warn("dropping unknown variable", "name", name, "instance", inst.name)
			}
			continue
		}
		if !qualifies(v) {
			if inst.logger != nil {
				inst.logger.Warn("dropping variable: not real-typed or wrong direction", "name", name,
					"type", v.Type.String(), "causality", v.Causality.String(), "instance", inst.name)
			}
			continue
		}
		set.add(v.Index, v.ValueReference)
	}
	return set
}

func (inst *Instance) resolveIndexed(indices []int, qualifies func(Variable) bool) activeSet {
	var set activeSet
	for _, idx := range indices {
		v := inst.catalog.GetVariableInfoByIndex(idx)
		if v.Index < 0 {
			if inst.logger != nil {
				inst.logger.Warn("dropping out-of-range variable index", "index", idx, "instance", inst.name)
			}
			continue
		}
		if !qualifies(v) {
			if inst.logger != nil {
				inst.logger.Warn("dropping variable: not real-typed or wrong direction", "index", idx,
					"type", v.Type.String(), "causality", v.Causality.String(), "instance", inst.name)
			}
			continue
		}
		set.add(v.Index, v.ValueReference)
	}
	return set
}

// isAllSentinel reports whether names is the single literal "all" entry
// used to request the default population (§4.4.3).
func isAllSentinel(names []string) bool {
	return len(names) == 1 && names[0] == "all"
}

// SetInputVariables replaces the active input set with the named inputs.
// The single-entry literal "all" delegates to the default population.
func (inst *Instance) SetInputVariables(names []string) {
	if isAllSentinel(names) {
		inst.setDefaultInputs()
		return
	}
	inst.activeInputs = inst.resolveNamed(names, qualifiesAsInput)
}

// SetOutputVariables replaces the active output set with the named outputs.
func (inst *Instance) SetOutputVariables(names []string) {
	if isAllSentinel(names) {
		inst.setDefaultOutputs()
		return
	}
	inst.activeOutputs = inst.resolveNamed(names, qualifiesAsOutput)
}

// SetInputVariablesByIndex replaces the active input set by catalog index.
func (inst *Instance) SetInputVariablesByIndex(indices []int) {
	inst.activeInputs = inst.resolveIndexed(indices, qualifiesAsInput)
}

// SetOutputVariablesByIndex replaces the active output set by catalog index.
func (inst *Instance) SetOutputVariablesByIndex(indices []int) {
	inst.activeOutputs = inst.resolveIndexed(indices, qualifiesAsOutput)
}

// AddInputVariable appends one named input to the active set if it is
// real-typed and an input, returning its catalog entry (the empty sentinel
// otherwise).
func (inst *Instance) AddInputVariable(name string) Variable {
	v := inst.catalog.GetVariableInfo(name)
	if v.Index < 0 || !qualifiesAsInput(v) {
		if inst.logger != nil {
			inst.logger.Warn("dropping input variable: unknown, not real-typed, or wrong direction",
				"name", name, "instance", inst.name)
		}
		return emptyVariable
	}
	inst.activeInputs.add(v.Index, v.ValueReference)
	return v
}

// AddOutputVariable appends one named output to the active set if it is
// real-typed and an output or local.
func (inst *Instance) AddOutputVariable(name string) Variable {
	v := inst.catalog.GetVariableInfo(name)
	if v.Index < 0 || !qualifiesAsOutput(v) {
		if inst.logger != nil {
			inst.logger.Warn("dropping output variable: unknown, not real-typed, or wrong direction",
				"name", name, "instance", inst.name)
		}
		return emptyVariable
	}
	inst.activeOutputs.add(v.Index, v.ValueReference)
	return v
}

// InputNames and OutputNames report the active set's current members.
func (inst *Instance) InputNames() []string  { return inst.activeInputs.names(inst.catalog) }
func (inst *Instance) OutputNames() []string { return inst.activeOutputs.names(inst.catalog) }

// --- typed scalar get/set, by name ---
//
// A mismatch between the requested accessor and the variable's declared
// type is reported as "discard", the same as any other non-fatal ABI
// refusal, rather than dispatched to the wrong getter/setter (§4.4.2).

func (inst *Instance) GetReal(name string) (float64, error) {
	v := inst.catalog.GetVariableInfo(name)
	if v.Type != TypeReal {
		return 0, inst.raise("fmi2GetReal", StatusDiscard)
	}
	values, status := callGetReal(inst.common.getReal, inst.comp, []ValueReference{v.ValueReference})
	if err := inst.raise("fmi2GetReal", status); err != nil {
		return 0, err
	}
	if len(values) == 0 {
		return 0, nil
	}
	return values[0], nil
}

func (inst *Instance) SetReal(name string, value float64) error {
	v := inst.catalog.GetVariableInfo(name)
	if v.Type != TypeReal {
		return inst.raise("fmi2SetReal", StatusDiscard)
	}
	status := callSetReal(inst.common.setReal, inst.comp, []ValueReference{v.ValueReference}, []float64{value})
	return inst.raise("fmi2SetReal", status)
}

func (inst *Instance) GetInteger(name string) (int32, error) {
	v := inst.catalog.GetVariableInfo(name)
	if v.Type != TypeInteger && v.Type != TypeEnumeration {
		return 0, inst.raise("fmi2GetInteger", StatusDiscard)
	}
	values, status := callGetInteger(inst.common.getInteger, inst.comp, []ValueReference{v.ValueReference})
	if err := inst.raise("fmi2GetInteger", status); err != nil {
		return 0, err
	}
	if len(values) == 0 {
		return 0, nil
	}
	return values[0], nil
}

func (inst *Instance) SetInteger(name string, value int32) error {
	v := inst.catalog.GetVariableInfo(name)
	if v.Type != TypeInteger && v.Type != TypeEnumeration {
		return inst.raise("fmi2SetInteger", StatusDiscard)
	}
	status := callSetInteger(inst.common.setInteger, inst.comp, []ValueReference{v.ValueReference}, []int32{value})
	return inst.raise("fmi2SetInteger", status)
}

func (inst *Instance) GetBoolean(name string) (bool, error) {
	v := inst.catalog.GetVariableInfo(name)
	if v.Type != TypeBoolean {
		return false, inst.raise("fmi2GetBoolean", StatusDiscard)
	}
	values, status := callGetBoolean(inst.common.getBoolean, inst.comp, []ValueReference{v.ValueReference})
	if err := inst.raise("fmi2GetBoolean", status); err != nil {
		return false, err
	}
	if len(values) == 0 {
		return false, nil
	}
	return values[0], nil
}

func (inst *Instance) SetBoolean(name string, value bool) error {
	v := inst.catalog.GetVariableInfo(name)
	if v.Type != TypeBoolean {
		return inst.raise("fmi2SetBoolean", StatusDiscard)
	}
	status := callSetBoolean(inst.common.setBoolean, inst.comp, []ValueReference{v.ValueReference}, []bool{value})
	return inst.raise("fmi2SetBoolean", status)
}

func (inst *Instance) GetString(name string) (string, error) {
	v := inst.catalog.GetVariableInfo(name)
	if v.Type != TypeString {
		return "", inst.raise("fmi2GetString", StatusDiscard)
	}
	values, status := callGetString(inst.common.getString, inst.comp, []ValueReference{v.ValueReference})
	if err := inst.raise("fmi2GetString", status); err != nil {
		return "", err
	}
	if len(values) == 0 {
		return "", nil
	}
	return values[0], nil
}

func (inst *Instance) SetString(name, value string) error {
	v := inst.catalog.GetVariableInfo(name)
	if v.Type != TypeString {
		return inst.raise("fmi2SetString", StatusDiscard)
	}
	status := callSetString(inst.common.setString, inst.comp, []ValueReference{v.ValueReference}, []string{value})
	return inst.raise("fmi2SetString", status)
}

// --- bulk get/set against the active input/output sets ---

// PullInputs writes values into the active input set in declaration order.
func (inst *Instance) PullInputs(values []float64) error {
	status := callSetReal(inst.common.setReal, inst.comp, inst.activeInputs.refs, values)
	return inst.raise("fmi2SetReal(active inputs)", status)
}

// PushOutputs reads the active output set in declaration order.
func (inst *Instance) PushOutputs() ([]float64, error) {
	values, status := callGetReal(inst.common.getReal, inst.comp, inst.activeOutputs.refs)
	if err := inst.raise("fmi2GetReal(active outputs)", status); err != nil {
		return nil, err
	}
	return values, nil
}

// --- FMU state get/set/serialize (capability-gated) ---

func (inst *Instance) GetFMUState() (uintptr, error) {
	state, status := callGetFMUstate(inst.common.getFMUstate, inst.comp)
	return state, inst.raise("fmi2GetFMUstate", status)
}

func (inst *Instance) SetFMUState(state uintptr) error {
	status := callSetFMUstate(inst.common.setFMUstate, inst.comp, state)
	return inst.raise("fmi2SetFMUstate", status)
}

func (inst *Instance) FreeFMUState(state uintptr) {
	callFreeFMUstate(inst.common.freeFMUstate, inst.comp, state)
}

func (inst *Instance) SerializeState(state uintptr) ([]byte, error) {
	size, status := callSerializedStateSize(inst.common.serializedFMUstateSize, inst.comp, state)
	if err := inst.raise("fmi2SerializedFMUstateSize", status); err != nil {
		return nil, err
	}
	buf := make([]byte, size)
	status = callSerializeState(inst.common.serializeFMUstate, inst.comp, state, buf)
	if err := inst.raise("fmi2SerializeFMUstate", status); err != nil {
		return nil, err
	}
	return buf, nil
}

func (inst *Instance) DeserializeState(buf []byte) (uintptr, error) {
	state, status := callDeserializeState(inst.common.deSerializeFMUstate, inst.comp, buf)
	return state, inst.raise("fmi2DeSerializeFMUstate", status)
}

// GetDirectionalDerivative evaluates the FMU's Jacobian-vector product for
// the given unknown/known variable sets.
func (inst *Instance) GetDirectionalDerivative(vUnknown, vKnown []ValueReference, dvKnown []float64) ([]float64, error) {
	out, status := callDirectionalDerivative(inst.common.getDirectionalDerivative, inst.comp, vUnknown, vKnown, dvKnown)
	return out, inst.raise("fmi2GetDirectionalDerivative", status)
}

// --- model-exchange specific operations ---

func (inst *Instance) SetTime(t float64) error {
	status := callSetTime(inst.me.setTime, inst.comp, t)
	return inst.raise("fmi2SetTime", status)
}

func (inst *Instance) SetContinuousStates(values []float64) error {
	status := callSetContinuousStates(inst.me.setContinuousStates, inst.comp, values)
	return inst.raise("fmi2SetContinuousStates", status)
}

func (inst *Instance) GetDerivatives() ([]float64, error) {
	n := inst.catalog.GetCounts(CountStates)
	values, status := callRealArrayOut(inst.me.getDerivatives, inst.comp, n)
	return values, inst.raise("fmi2GetDerivatives", status)
}

func (inst *Instance) GetEventIndicators() ([]float64, error) {
	n := inst.catalog.eventIndicators
	values, status := callRealArrayOut(inst.me.getEventIndicators, inst.comp, n)
	return values, inst.raise("fmi2GetEventIndicators", status)
}

func (inst *Instance) GetContinuousStates() ([]float64, error) {
	n := inst.catalog.GetCounts(CountStates)
	values, status := callRealArrayOut(inst.me.getContinuousStates, inst.comp, n)
	return values, inst.raise("fmi2GetContinuousStates", status)
}

func (inst *Instance) GetNominalsOfContinuousStates() ([]float64, error) {
	n := inst.catalog.GetCounts(CountStates)
	values, status := callRealArrayOut(inst.me.getNominalsOfContinuousStates, inst.comp, n)
	return values, inst.raise("fmi2GetNominalsOfContinuousStates", status)
}

func (inst *Instance) CompletedIntegratorStep(noSetPrior bool) (enterEvent, terminate bool, err error) {
	enterEvent, terminate, status := callCompletedIntegratorStep(inst.me.completedIntegratorStep, inst.comp, noSetPrior)
	return enterEvent, terminate, inst.raise("fmi2CompletedIntegratorStep", status)
}

func (inst *Instance) NewDiscreteStates() (EventInfo, error) {
	info, status := callNewDiscreteStates(inst.me.newDiscreteStates, inst.comp)
	return info, inst.raise("fmi2NewDiscreteStates", status)
}

// --- co-simulation specific operations ---

func (inst *Instance) DoStep(currentTime, stepSize float64, noSetPrior bool) error {
	status := callDoStep(inst.cs.doStep, inst.comp, currentTime, stepSize, noSetPrior)
	if status == StatusPending {
		inst.stepPending = true
		return nil
	}
	inst.stepPending = false
	return inst.raise("fmi2DoStep", status)
}

func (inst *Instance) CancelStep() error {
	status := callCompStatus(inst.cs.cancelStep, inst.comp)
	inst.stepPending = false
	return inst.raise("fmi2CancelStep", status)
}

// IsPending reports whether an asynchronous DoStep is still in flight. It
// queries fmi2GetStatus(fmi2DoStepStatus) when the FMU exposes it (true
// asynchronous co-simulation FMUs), falling back to the cached flag DoStep
// last set when the symbol isn't bound.
func (inst *Instance) IsPending() bool {
	if !inst.cs.getStatus.bound() {
		return inst.stepPending
	}
	queried, callStatus := callStatusQuery(inst.cs.getStatus, inst.comp, StatusKindDoStep)
	if callStatus != StatusOK && callStatus != StatusPending {
		return inst.stepPending
	}
	inst.stepPending = queried == StatusPending
	return inst.stepPending
}

func (inst *Instance) GetLastStepTime() (float64, error) {
	t, status := callRealStatusQuery(inst.cs.getRealStatus, inst.comp, StatusKindLastSuccessfulTime)
	return t, inst.raise("fmi2GetRealStatus", status)
}

func (inst *Instance) GetStatus() (string, error) {
	s, status := callStringStatusQuery(inst.cs.getStringStatus, inst.comp, StatusKindDoStep)
	return strings.TrimSpace(s), inst.raise("fmi2GetStringStatus", status)
}

func (inst *Instance) SetInputDerivatives(order int32, values []float64) error {
	orders := make([]int32, len(inst.activeInputs.refs))
	for i := range orders {
		orders[i] = order
	}
	status := callRealDerivatives(inst.cs.setRealInputDerivatives, inst.comp, inst.activeInputs.refs, orders, values)
	return inst.raise("fmi2SetRealInputDerivatives", status)
}

func (inst *Instance) GetOutputDerivatives(order int32) ([]float64, error) {
	orders := make([]int32, len(inst.activeOutputs.refs))
	for i := range orders {
		orders[i] = order
	}
	values := make([]float64, len(inst.activeOutputs.refs))
	status := callRealDerivatives(inst.cs.getRealOutputDerivatives, inst.comp, inst.activeOutputs.refs, orders, values)
	return values, inst.raise("fmi2GetRealOutputDerivatives", status)
}
