package fmi

// Component is the opaque handle returned by the ABI's Instantiate entry
// point (§6.2 "every bound function takes the opaque component handle").
type Component uintptr

// EventInfo mirrors fmi2EventInfo, the fixed-size struct the ABI writes
// event-mode metadata into (model-exchange only).
type EventInfo struct {
	NewDiscreteStatesNeeded           bool
	TerminateSimulation               bool
	NominalsOfContinuousStatesChanged bool
	ValuesOfContinuousStatesChanged   bool
	NextEventTimeDefined              bool
	NextEventTime                     float64
}

// StatusKind selects which asynchronous status query to issue (§4.4.4,
// §6.2 "typed status queries").
type StatusKind int

const (
	StatusKindDoStep StatusKind = iota
	StatusKindPending
	StatusKindLastSuccessfulTime
	StatusKindTerminated
)

// CallbackFunctions is the caller-supplied part of fmi2CallbackFunctions
// (§4.3 "Logger trampoline"): the opaque component-environment pointer
// threaded back through every logger invocation. callInstantiate builds the
// C struct from it, adding calloc/free as allocators and, when logging is
// on, the logger shim; no step-finished hook is set.
type CallbackFunctions struct {
	ComponentEnvironment uintptr
}
