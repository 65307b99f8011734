//go:build !(cgo && (linux || darwin))

package fmi

// unixSharedLibrary's platform backend requires cgo plus a dlopen-capable
// OS. Everywhere else, loading a shared library fails cleanly rather than
// leaving the package unbuildable.

type unixSharedLibrary struct{}

func openSharedLibrary(path string) (*unixSharedLibrary, error) {
	return nil, newLoadError(LoadCodeMissingLibrary, "dlopen "+path,
		errMissingSymbol("shared library loading requires cgo on linux or darwin"))
}

func (l *unixSharedLibrary) Symbol(name string) (SymbolFunc, bool) { return 0, false }

func (l *unixSharedLibrary) close() error { return nil }

// --- call* stubs ---
//
// openSharedLibrary above never succeeds on this build, so no SymbolFunc
// here is ever bound and none of these are reachable from a loaded FMU.
// They exist only so internal/fmi compiles with CGO_ENABLED=0: every call
// site in instance.go/mode.go calls them unconditionally, and dl_unix.go's
// real bindings live behind a cgo build tag. Each mirrors dl_unix.go's own
// !fn.bound() fallback exactly.

func callGetTypesPlatform(fn SymbolFunc) string { return "default" }

func callGetVersion(fn SymbolFunc) string { return "" }

func callInstantiate(fn SymbolFunc, instanceName, guid, resourceLocation string, kind FMUKind,
	callbacks *CallbackFunctions, visible, loggingOn bool) (Component, error) {
	return 0, errMissingSymbol("fmi2Instantiate")
}

func callCompStatus(fn SymbolFunc, comp Component) ABIStatus { return StatusDiscard }

func callFreeInstance(fn SymbolFunc, comp Component) {}

func callSetupExperiment(fn SymbolFunc, comp Component, toleranceDefined bool, tolerance,
	startTime float64, stopDefined bool, stopTime float64) ABIStatus {
	return StatusDiscard
}

func callSetDebugLogging(fn SymbolFunc, comp Component, loggingOn bool, categories []string) ABIStatus {
	return StatusOK
}

func callGetReal(fn SymbolFunc, comp Component, vr []ValueReference) ([]float64, ABIStatus) {
	return nil, StatusDiscard
}

func callSetReal(fn SymbolFunc, comp Component, vr []ValueReference, values []float64) ABIStatus {
	return StatusDiscard
}

func callGetInteger(fn SymbolFunc, comp Component, vr []ValueReference) ([]int32, ABIStatus) {
	return nil, StatusDiscard
}

func callSetInteger(fn SymbolFunc, comp Component, vr []ValueReference, values []int32) ABIStatus {
	return StatusDiscard
}

func callGetBoolean(fn SymbolFunc, comp Component, vr []ValueReference) ([]bool, ABIStatus) {
	return nil, StatusDiscard
}

func callSetBoolean(fn SymbolFunc, comp Component, vr []ValueReference, values []bool) ABIStatus {
	return StatusDiscard
}

func callGetString(fn SymbolFunc, comp Component, vr []ValueReference) ([]string, ABIStatus) {
	return nil, StatusDiscard
}

func callSetString(fn SymbolFunc, comp Component, vr []ValueReference, values []string) ABIStatus {
	return StatusDiscard
}

func callDoStep(fn SymbolFunc, comp Component, t, h float64, noSetFMUStatePriorToCurrentPoint bool) ABIStatus {
	return StatusDiscard
}

func callSetTime(fn SymbolFunc, comp Component, t float64) ABIStatus { return StatusDiscard }

func callCompletedIntegratorStep(fn SymbolFunc, comp Component, noSetPrior bool) (enterEvent, terminate bool, status ABIStatus) {
	return false, false, StatusDiscard
}

func callNewDiscreteStates(fn SymbolFunc, comp Component) (EventInfo, ABIStatus) {
	return EventInfo{}, StatusDiscard
}

func callRealArrayOut(fn SymbolFunc, comp Component, n int) ([]float64, ABIStatus) {
	return nil, StatusDiscard
}

func callSetContinuousStates(fn SymbolFunc, comp Component, values []float64) ABIStatus {
	return StatusDiscard
}

func callRealDerivatives(fn SymbolFunc, comp Component, vr []ValueReference, order []int32, values []float64) ABIStatus {
	return StatusDiscard
}

func callDirectionalDerivative(fn SymbolFunc, comp Component, vUnknown, vKnown []ValueReference, dvKnown []float64) ([]float64, ABIStatus) {
	return nil, StatusDiscard
}

func callGetFMUstate(fn SymbolFunc, comp Component) (uintptr, ABIStatus) { return 0, StatusDiscard }

func callSetFMUstate(fn SymbolFunc, comp Component, state uintptr) ABIStatus { return StatusDiscard }

func callFreeFMUstate(fn SymbolFunc, comp Component, state uintptr) {}

func callSerializedStateSize(fn SymbolFunc, comp Component, state uintptr) (int, ABIStatus) {
	return 0, StatusDiscard
}

func callSerializeState(fn SymbolFunc, comp Component, state uintptr, buf []byte) ABIStatus {
	return StatusDiscard
}

func callDeserializeState(fn SymbolFunc, comp Component, buf []byte) (uintptr, ABIStatus) {
	return 0, StatusDiscard
}

func callStatusQuery(fn SymbolFunc, comp Component, kind StatusKind) (ABIStatus, ABIStatus) {
	return StatusDiscard, StatusDiscard
}

func callRealStatusQuery(fn SymbolFunc, comp Component, kind StatusKind) (float64, ABIStatus) {
	return 0, StatusDiscard
}

func callStringStatusQuery(fn SymbolFunc, comp Component, kind StatusKind) (string, ABIStatus) {
	return "", StatusDiscard
}
