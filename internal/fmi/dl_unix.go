//go:build cgo && (linux || darwin)

package fmi

/*
#cgo linux LDFLAGS: -ldl
#include <dlfcn.h>
#include <stdlib.h>
#include <stdint.h>
#include <stdarg.h>
#include <stdio.h>

// fmi2CallbackLogger is variadic (printf-style); Go cannot receive a
// variadic C call directly, so this shim formats the message server-side
// and forwards a fixed-arity call into the exported Go function below
// (mirrors the loggerFunc bridging in fmiImport.h).
extern void goFMILogger(void* env, char* instanceName, int status, char* category, char* message);

static void fmi_logger_shim(void* componentEnvironment, const char* instanceName, int status,
                            const char* category, const char* message, ...) {
    char buf[4096];
    va_list args;
    va_start(args, message);
    vsnprintf(buf, sizeof(buf), message, args);
    va_end(args);
    goFMILogger(componentEnvironment, (char*)instanceName, status, (char*)category, buf);
}

static void* fmi_logger_shim_ptr(void) { return (void*)fmi_logger_shim; }
static void* fmi_calloc_ptr(void) { return (void*)calloc; }
static void* fmi_free_ptr(void) { return (void*)free; }

// fmi2EventInfo mirrors the ABI struct exactly: fmi2 booleans are plain C
// int, not a narrower byte type.
typedef struct {
    int newDiscreteStatesNeeded;
    int terminateSimulation;
    int nominalsOfContinuousStatesChanged;
    int valuesOfContinuousStatesChanged;
    int nextEventTimeDefined;
    double nextEventTime;
} fmi2_event_info_t;

// fmi2CallbackFunctions. callInstantiate fills in calloc/free as the
// allocators, the logger shim above when logging is on, and the component
// environment; stepFinished stays NULL.
typedef struct {
    void* logger;
    void* allocateMemory;
    void* freeMemory;
    void* stepFinished;
    void* componentEnvironment;
} fmi2_callback_functions_t;

// --- call shapes, one static trampoline per distinct C signature ---

typedef const char* (*fmi_str0_fn)(void);
static const char* call_str0(void* fn) { return ((fmi_str0_fn)fn)(); }

typedef int (*fmi_comp_status_fn)(void*);
static int call_comp_status(void* fn, void* comp) { return ((fmi_comp_status_fn)fn)(comp); }

typedef void (*fmi_comp_void_fn)(void*);
static void call_comp_void(void* fn, void* comp) { ((fmi_comp_void_fn)fn)(comp); }

typedef int (*fmi_setup_fn)(void*, int, double, double, int, double);
static int call_setup_experiment(void* fn, void* comp, int tolDef, double tol,
                                 double start, int stopDef, double stop) {
    return ((fmi_setup_fn)fn)(comp, tolDef, tol, start, stopDef, stop);
}

typedef int (*fmi_real_array_fn)(void*, const uint32_t*, size_t, double*);
static int call_real_array(void* fn, void* comp, const uint32_t* vr, size_t n, double* values) {
    return ((fmi_real_array_fn)fn)(comp, vr, n, values);
}

typedef int (*fmi_int_array_fn)(void*, const uint32_t*, size_t, int32_t*);
static int call_int_array(void* fn, void* comp, const uint32_t* vr, size_t n, int32_t* values) {
    return ((fmi_int_array_fn)fn)(comp, vr, n, values);
}

// fmi2Boolean is typedef'd to int in fmi2TypesPlatform.h.
typedef int (*fmi_bool_array_fn)(void*, const uint32_t*, size_t, int*);
static int call_bool_array(void* fn, void* comp, const uint32_t* vr, size_t n, int* values) {
    return ((fmi_bool_array_fn)fn)(comp, vr, n, values);
}

typedef int (*fmi_get_string_array_fn)(void*, const uint32_t*, size_t, const char**);
static int call_get_string_array(void* fn, void* comp, const uint32_t* vr, size_t n, const char** values) {
    return ((fmi_get_string_array_fn)fn)(comp, vr, n, values);
}

typedef int (*fmi_set_string_array_fn)(void*, const uint32_t*, size_t, const char* const*);
static int call_set_string_array(void* fn, void* comp, const uint32_t* vr, size_t n, const char* const* values) {
    return ((fmi_set_string_array_fn)fn)(comp, vr, n, values);
}

typedef int (*fmi_dostep_fn)(void*, double, double, int);
static int call_do_step(void* fn, void* comp, double t, double h, int noSetPrior) {
    return ((fmi_dostep_fn)fn)(comp, t, h, noSetPrior);
}

typedef int (*fmi_set_time_fn)(void*, double);
static int call_set_time(void* fn, void* comp, double t) {
    return ((fmi_set_time_fn)fn)(comp, t);
}

typedef int (*fmi_completed_step_fn)(void*, int, int*, int*);
static int call_completed_step(void* fn, void* comp, int noSetPrior, int* enterEvent, int* terminate) {
    return ((fmi_completed_step_fn)fn)(comp, noSetPrior, enterEvent, terminate);
}

typedef int (*fmi_new_discrete_states_fn)(void*, fmi2_event_info_t*);
static int call_new_discrete_states(void* fn, void* comp, fmi2_event_info_t* info) {
    return ((fmi_new_discrete_states_fn)fn)(comp, info);
}

// fmi2SetRealInputDerivatives / fmi2GetRealOutputDerivatives share this shape.
typedef int (*fmi_real_deriv_fn)(void*, const uint32_t*, size_t, const int*, double*);
static int call_real_deriv(void* fn, void* comp, const uint32_t* vr, size_t n, const int* order, double* values) {
    return ((fmi_real_deriv_fn)fn)(comp, vr, n, order, values);
}

typedef int (*fmi_dirderiv_fn)(void*, const uint32_t*, size_t, const uint32_t*, size_t, const double*, double*);
static int call_directional_derivative(void* fn, void* comp, const uint32_t* vUnknown, size_t nUnknown,
                                       const uint32_t* vKnown, size_t nKnown,
                                       const double* dvKnown, double* dvUnknown) {
    return ((fmi_dirderiv_fn)fn)(comp, vUnknown, nUnknown, vKnown, nKnown, dvKnown, dvUnknown);
}

typedef int (*fmi_get_state_fn)(void*, void**);
static int call_get_state(void* fn, void* comp, void** state) {
    return ((fmi_get_state_fn)fn)(comp, state);
}
typedef int (*fmi_set_state_fn)(void*, void*);
static int call_set_state(void* fn, void* comp, void* state) {
    return ((fmi_set_state_fn)fn)(comp, state);
}
// fmi2FreeFMUstate takes the state handle by pointer-to-pointer so it can
// null it out after freeing.
typedef int (*fmi_free_state_fn)(void*, void**);
static int call_free_state(void* fn, void* comp, void** state) {
    return ((fmi_free_state_fn)fn)(comp, state);
}

typedef int (*fmi_state_size_fn)(void*, void*, size_t*);
static int call_state_size(void* fn, void* comp, void* state, size_t* size) {
    return ((fmi_state_size_fn)fn)(comp, state, size);
}
typedef int (*fmi_serialize_fn)(void*, void*, uint8_t*, size_t);
static int call_serialize(void* fn, void* comp, void* state, uint8_t* buf, size_t size) {
    return ((fmi_serialize_fn)fn)(comp, state, buf, size);
}
typedef int (*fmi_deserialize_fn)(void*, const uint8_t*, size_t, void**);
static int call_deserialize(void* fn, void* comp, const uint8_t* buf, size_t size, void** state) {
    return ((fmi_deserialize_fn)fn)(comp, buf, size, state);
}

// fmi2GetStatus and friends share the (comp, kind)->(out, status) shape;
// reuse call_comp_status for fmi2Terminated-style queries isn't accurate
// enough, so model the query explicitly.
typedef int (*fmi_status_query_fn)(void*, int, int*);
static int call_status_query(void* fn, void* comp, int kind, int* out) {
    return ((fmi_status_query_fn)fn)(comp, kind, out);
}
typedef int (*fmi_real_status_query_fn)(void*, int, double*);
static int call_real_status_query(void* fn, void* comp, int kind, double* out) {
    return ((fmi_real_status_query_fn)fn)(comp, kind, out);
}
typedef int (*fmi_string_status_query_fn)(void*, int, const char**);
static int call_string_status_query(void* fn, void* comp, int kind, const char** out) {
    return ((fmi_string_status_query_fn)fn)(comp, kind, out);
}

typedef void* (*fmi_instantiate_fn)(const char*, int, const char*, const char*,
                                    const fmi2_callback_functions_t*, int, int);
static void* call_instantiate(void* fn, const char* instanceName, int kind, const char* guid,
                              const char* resourceLocation, const fmi2_callback_functions_t* callbacks,
                              int visible, int loggingOn) {
    return ((fmi_instantiate_fn)fn)(instanceName, kind, guid, resourceLocation, callbacks, visible, loggingOn);
}

typedef int (*fmi_set_debug_logging_fn)(void*, int, size_t, const char* const*);
static int call_set_debug_logging(void* fn, void* comp, int loggingOn, size_t n, const char* const* categories) {
    return ((fmi_set_debug_logging_fn)fn)(comp, loggingOn, n, categories);
}
*/
import "C"

import (
	"runtime"
	"unsafe"
)

// unixSharedLibrary implements SymbolResolver over dlopen/dlsym (§4.3
// "loadSharedLibrary").
type unixSharedLibrary struct {
	handle unsafe.Pointer
}

func openSharedLibrary(path string) (*unixSharedLibrary, error) {
	cpath := C.CString(path)
	defer C.free(unsafe.Pointer(cpath))

	handle := C.dlopen(cpath, C.RTLD_NOW|C.RTLD_LOCAL)
	if handle == nil {
		return nil, newLoadError(LoadCodeMissingLibrary, "dlopen "+path, dlError())
	}
	lib := &unixSharedLibrary{handle: handle}
	runtime.SetFinalizer(lib, (*unixSharedLibrary).close)
	return lib, nil
}

func dlError() error {
	msg := C.dlerror()
	if msg == nil {
		return errMissingSymbol("dlopen failed, no further detail")
	}
	return errMissingSymbol(C.GoString(msg))
}

func (l *unixSharedLibrary) close() error {
	if l.handle == nil {
		return nil
	}
	C.dlclose(l.handle)
	l.handle = nil
	return nil
}

// Symbol implements SymbolResolver: it resolves the raw address and hands
// back the bare pointer value as a SymbolFunc. No call shape is assumed
// here — that is decided per ABI function by the call* helpers below.
func (l *unixSharedLibrary) Symbol(name string) (SymbolFunc, bool) {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	sym := C.dlsym(l.handle, cname)
	if sym == nil {
		return 0, false
	}
	return SymbolFunc(uintptr(sym)), true
}

func fnPtr(fn SymbolFunc) unsafe.Pointer { return unsafe.Pointer(uintptr(fn)) }
func compPtr(c Component) unsafe.Pointer { return unsafe.Pointer(uintptr(c)) }

func boolToC(b bool) C.int {
	if b {
		return 1
	}
	return 0
}

func cToBool(v C.int) bool { return v != 0 }

func vrPtr(vr []ValueReference) *C.uint32_t {
	if len(vr) == 0 {
		return nil
	}
	return (*C.uint32_t)(unsafe.Pointer(&vr[0]))
}

// --- typed call helpers, one per logical ABI operation family ---

func callGetTypesPlatform(fn SymbolFunc) string {
	if !fn.bound() {
		return "default"
	}
	return C.GoString(C.call_str0(fnPtr(fn)))
}

func callGetVersion(fn SymbolFunc) string {
	if !fn.bound() {
		return ""
	}
	return C.GoString(C.call_str0(fnPtr(fn)))
}

func callInstantiate(fn SymbolFunc, instanceName, guid, resourceLocation string, kind FMUKind,
	callbacks *CallbackFunctions, visible, loggingOn bool) (Component, error) {
	if !fn.bound() {
		return 0, errMissingSymbol("fmi2Instantiate")
	}
	cName := C.CString(instanceName)
	cGUID := C.CString(guid)
	cLoc := C.CString(resourceLocation)
	defer C.free(unsafe.Pointer(cName))
	defer C.free(unsafe.Pointer(cGUID))
	defer C.free(unsafe.Pointer(cLoc))

	cbs := C.fmi2_callback_functions_t{
		allocateMemory:       C.fmi_calloc_ptr(),
		freeMemory:           C.fmi_free_ptr(),
		componentEnvironment: compPtr(Component(callbacks.ComponentEnvironment)),
	}
	if loggingOn {
		cbs.logger = C.fmi_logger_shim_ptr()
	}

	// kind's numeric value is fmi2Type directly (FMUKind is declared in that
	// order for exactly this reason) — no remap needed here.
	comp := C.call_instantiate(fnPtr(fn), cName, C.int(kind), cGUID, cLoc, &cbs, boolToC(visible), boolToC(loggingOn))
	if comp == nil {
		return 0, errMissingSymbol("fmi2Instantiate returned null component")
	}
	return Component(uintptr(comp)), nil
}

func callCompStatus(fn SymbolFunc, comp Component) ABIStatus {
	if !fn.bound() {
		return StatusDiscard
	}
	return ABIStatus(C.call_comp_status(fnPtr(fn), compPtr(comp)))
}

func callFreeInstance(fn SymbolFunc, comp Component) {
	if !fn.bound() {
		return
	}
	C.call_comp_void(fnPtr(fn), compPtr(comp))
}

func callSetupExperiment(fn SymbolFunc, comp Component, toleranceDefined bool, tolerance,
	startTime float64, stopDefined bool, stopTime float64) ABIStatus {
	if !fn.bound() {
		return StatusDiscard
	}
	return ABIStatus(C.call_setup_experiment(fnPtr(fn), compPtr(comp),
		boolToC(toleranceDefined), C.double(tolerance), C.double(startTime),
		boolToC(stopDefined), C.double(stopTime)))
}

func callSetDebugLogging(fn SymbolFunc, comp Component, loggingOn bool, categories []string) ABIStatus {
	if !fn.bound() {
		return StatusOK
	}
	if len(categories) == 0 {
		return ABIStatus(C.call_set_debug_logging(fnPtr(fn), compPtr(comp), boolToC(loggingOn), 0, nil))
	}
	cCats := make([]*C.char, len(categories))
	for i, cat := range categories {
		cCats[i] = C.CString(cat)
	}
	defer func() {
		for _, p := range cCats {
			C.free(unsafe.Pointer(p))
		}
	}()
	return ABIStatus(C.call_set_debug_logging(fnPtr(fn), compPtr(comp), boolToC(loggingOn),
		C.size_t(len(cCats)), (**C.char)(unsafe.Pointer(&cCats[0]))))
}

func callGetReal(fn SymbolFunc, comp Component, vr []ValueReference) ([]float64, ABIStatus) {
	if !fn.bound() || len(vr) == 0 {
		return nil, StatusDiscard
	}
	out := make([]float64, len(vr))
	status := ABIStatus(C.call_real_array(fnPtr(fn), compPtr(comp), vrPtr(vr), C.size_t(len(vr)),
		(*C.double)(unsafe.Pointer(&out[0]))))
	return out, status
}

func callSetReal(fn SymbolFunc, comp Component, vr []ValueReference, values []float64) ABIStatus {
	if !fn.bound() || len(vr) == 0 {
		return StatusDiscard
	}
	return ABIStatus(C.call_real_array(fnPtr(fn), compPtr(comp), vrPtr(vr), C.size_t(len(vr)),
		(*C.double)(unsafe.Pointer(&values[0]))))
}

func callGetInteger(fn SymbolFunc, comp Component, vr []ValueReference) ([]int32, ABIStatus) {
	if !fn.bound() || len(vr) == 0 {
		return nil, StatusDiscard
	}
	out := make([]int32, len(vr))
	status := ABIStatus(C.call_int_array(fnPtr(fn), compPtr(comp), vrPtr(vr), C.size_t(len(vr)),
		(*C.int32_t)(unsafe.Pointer(&out[0]))))
	return out, status
}

func callSetInteger(fn SymbolFunc, comp Component, vr []ValueReference, values []int32) ABIStatus {
	if !fn.bound() || len(vr) == 0 {
		return StatusDiscard
	}
	return ABIStatus(C.call_int_array(fnPtr(fn), compPtr(comp), vrPtr(vr), C.size_t(len(vr)),
		(*C.int32_t)(unsafe.Pointer(&values[0]))))
}

func callGetBoolean(fn SymbolFunc, comp Component, vr []ValueReference) ([]bool, ABIStatus) {
	if !fn.bound() || len(vr) == 0 {
		return nil, StatusDiscard
	}
	raw := make([]C.int, len(vr))
	status := ABIStatus(C.call_bool_array(fnPtr(fn), compPtr(comp), vrPtr(vr), C.size_t(len(vr)), &raw[0]))
	out := make([]bool, len(vr))
	for i, v := range raw {
		out[i] = cToBool(v)
	}
	return out, status
}

func callSetBoolean(fn SymbolFunc, comp Component, vr []ValueReference, values []bool) ABIStatus {
	if !fn.bound() || len(vr) == 0 {
		return StatusDiscard
	}
	raw := make([]C.int, len(values))
	for i, v := range values {
		raw[i] = boolToC(v)
	}
	return ABIStatus(C.call_bool_array(fnPtr(fn), compPtr(comp), vrPtr(vr), C.size_t(len(vr)), &raw[0]))
}

func callGetString(fn SymbolFunc, comp Component, vr []ValueReference) ([]string, ABIStatus) {
	if !fn.bound() || len(vr) == 0 {
		return nil, StatusDiscard
	}
	raw := make([]*C.char, len(vr))
	status := ABIStatus(C.call_get_string_array(fnPtr(fn), compPtr(comp), vrPtr(vr), C.size_t(len(vr)),
		(**C.char)(unsafe.Pointer(&raw[0]))))
	out := make([]string, len(vr))
	for i, p := range raw {
		out[i] = C.GoString(p)
	}
	return out, status
}

func callSetString(fn SymbolFunc, comp Component, vr []ValueReference, values []string) ABIStatus {
	if !fn.bound() || len(vr) == 0 {
		return StatusDiscard
	}
	raw := make([]*C.char, len(values))
	for i, v := range values {
		raw[i] = C.CString(v)
	}
	defer func() {
		for _, p := range raw {
			C.free(unsafe.Pointer(p))
		}
	}()
	return ABIStatus(C.call_set_string_array(fnPtr(fn), compPtr(comp), vrPtr(vr), C.size_t(len(vr)),
		(**C.char)(unsafe.Pointer(&raw[0]))))
}

func callDoStep(fn SymbolFunc, comp Component, t, h float64, noSetFMUStatePriorToCurrentPoint bool) ABIStatus {
	if !fn.bound() {
		return StatusDiscard
	}
	return ABIStatus(C.call_do_step(fnPtr(fn), compPtr(comp), C.double(t), C.double(h),
		boolToC(noSetFMUStatePriorToCurrentPoint)))
}

func callSetTime(fn SymbolFunc, comp Component, t float64) ABIStatus {
	if !fn.bound() {
		return StatusDiscard
	}
	return ABIStatus(C.call_set_time(fnPtr(fn), compPtr(comp), C.double(t)))
}

func callCompletedIntegratorStep(fn SymbolFunc, comp Component, noSetPrior bool) (enterEvent, terminate bool, status ABIStatus) {
	if !fn.bound() {
		return false, false, StatusDiscard
	}
	var cEnter, cTerm C.int
	status = ABIStatus(C.call_completed_step(fnPtr(fn), compPtr(comp), boolToC(noSetPrior), &cEnter, &cTerm))
	return cToBool(cEnter), cToBool(cTerm), status
}

func callNewDiscreteStates(fn SymbolFunc, comp Component) (EventInfo, ABIStatus) {
	if !fn.bound() {
		return EventInfo{}, StatusDiscard
	}
	var info C.fmi2_event_info_t
	status := ABIStatus(C.call_new_discrete_states(fnPtr(fn), compPtr(comp), &info))
	return EventInfo{
		NewDiscreteStatesNeeded:           info.newDiscreteStatesNeeded != 0,
		TerminateSimulation:               info.terminateSimulation != 0,
		NominalsOfContinuousStatesChanged: info.nominalsOfContinuousStatesChanged != 0,
		ValuesOfContinuousStatesChanged:   info.valuesOfContinuousStatesChanged != 0,
		NextEventTimeDefined:              info.nextEventTimeDefined != 0,
		NextEventTime:                     float64(info.nextEventTime),
	}, status
}

func callRealArrayOut(fn SymbolFunc, comp Component, n int) ([]float64, ABIStatus) {
	if !fn.bound() || n == 0 {
		return nil, StatusDiscard
	}
	out := make([]float64, n)
	status := ABIStatus(C.call_real_array(fnPtr(fn), compPtr(comp), nil, C.size_t(n),
		(*C.double)(unsafe.Pointer(&out[0]))))
	return out, status
}

func callSetContinuousStates(fn SymbolFunc, comp Component, values []float64) ABIStatus {
	if !fn.bound() || len(values) == 0 {
		return StatusDiscard
	}
	return ABIStatus(C.call_real_array(fnPtr(fn), compPtr(comp), nil, C.size_t(len(values)),
		(*C.double)(unsafe.Pointer(&values[0]))))
}

func callRealDerivatives(fn SymbolFunc, comp Component, vr []ValueReference, order []int32, values []float64) ABIStatus {
	if !fn.bound() || len(vr) == 0 {
		return StatusDiscard
	}
	return ABIStatus(C.call_real_deriv(fnPtr(fn), compPtr(comp), vrPtr(vr), C.size_t(len(vr)),
		(*C.int)(unsafe.Pointer(&order[0])), (*C.double)(unsafe.Pointer(&values[0]))))
}

func callDirectionalDerivative(fn SymbolFunc, comp Component, vUnknown, vKnown []ValueReference, dvKnown []float64) ([]float64, ABIStatus) {
	if !fn.bound() || len(vUnknown) == 0 || len(vKnown) == 0 {
		return nil, StatusDiscard
	}
	out := make([]float64, len(vUnknown))
	status := ABIStatus(C.call_directional_derivative(fnPtr(fn), compPtr(comp),
		vrPtr(vUnknown), C.size_t(len(vUnknown)), vrPtr(vKnown), C.size_t(len(vKnown)),
		(*C.double)(unsafe.Pointer(&dvKnown[0])), (*C.double)(unsafe.Pointer(&out[0]))))
	return out, status
}

func callGetFMUstate(fn SymbolFunc, comp Component) (uintptr, ABIStatus) {
	if !fn.bound() {
		return 0, StatusDiscard
	}
	var state unsafe.Pointer
	status := ABIStatus(C.call_get_state(fnPtr(fn), compPtr(comp), &state))
	return uintptr(state), status
}

func callSetFMUstate(fn SymbolFunc, comp Component, state uintptr) ABIStatus {
	if !fn.bound() {
		return StatusDiscard
	}
	return ABIStatus(C.call_set_state(fnPtr(fn), compPtr(comp), unsafe.Pointer(state)))
}

func callFreeFMUstate(fn SymbolFunc, comp Component, state uintptr) {
	if !fn.bound() || state == 0 {
		return
	}
	s := unsafe.Pointer(state)
	C.call_free_state(fnPtr(fn), compPtr(comp), &s)
}

func callSerializedStateSize(fn SymbolFunc, comp Component, state uintptr) (int, ABIStatus) {
	if !fn.bound() {
		return 0, StatusDiscard
	}
	var size C.size_t
	status := ABIStatus(C.call_state_size(fnPtr(fn), compPtr(comp), unsafe.Pointer(state), &size))
	return int(size), status
}

func callSerializeState(fn SymbolFunc, comp Component, state uintptr, buf []byte) ABIStatus {
	if !fn.bound() || len(buf) == 0 {
		return StatusDiscard
	}
	return ABIStatus(C.call_serialize(fnPtr(fn), compPtr(comp), unsafe.Pointer(state),
		(*C.uint8_t)(unsafe.Pointer(&buf[0])), C.size_t(len(buf))))
}

func callDeserializeState(fn SymbolFunc, comp Component, buf []byte) (uintptr, ABIStatus) {
	if !fn.bound() || len(buf) == 0 {
		return 0, StatusDiscard
	}
	var state unsafe.Pointer
	status := ABIStatus(C.call_deserialize(fnPtr(fn), compPtr(comp),
		(*C.uint8_t)(unsafe.Pointer(&buf[0])), C.size_t(len(buf)), &state))
	return uintptr(state), status
}

func callStatusQuery(fn SymbolFunc, comp Component, kind StatusKind) (ABIStatus, ABIStatus) {
	if !fn.bound() {
		return StatusDiscard, StatusDiscard
	}
	var out C.int
	callStatus := ABIStatus(C.call_status_query(fnPtr(fn), compPtr(comp), C.int(kind), &out))
	return ABIStatus(out), callStatus
}

func callRealStatusQuery(fn SymbolFunc, comp Component, kind StatusKind) (float64, ABIStatus) {
	if !fn.bound() {
		return 0, StatusDiscard
	}
	var out C.double
	status := ABIStatus(C.call_real_status_query(fnPtr(fn), compPtr(comp), C.int(kind), &out))
	return float64(out), status
}

func callStringStatusQuery(fn SymbolFunc, comp Component, kind StatusKind) (string, ABIStatus) {
	if !fn.bound() {
		return "", StatusDiscard
	}
	var out *C.char
	status := ABIStatus(C.call_string_status_query(fnPtr(fn), compPtr(comp), C.int(kind), &out))
	return C.GoString(out), status
}

//export goFMILogger
func goFMILogger(env unsafe.Pointer, instanceName *C.char, status C.int, category, message *C.char) {
	dispatchLoggerCallback(uintptr(env), C.GoString(instanceName), ABIStatus(status),
		C.GoString(category), C.GoString(message))
}
