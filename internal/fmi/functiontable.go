package fmi

// SymbolResolver resolves an exported C symbol by name from a loaded
// shared library. It is the seam between the pure-Go function-table layer
// and the platform-specific dynamic-linker backend (§9 "Dynamic symbol
// binding": "represent each binding as an optional of a precisely typed
// function-pointer alias; missing required entries fail library
// construction").
type SymbolResolver interface {
	// Symbol returns true and a bound, callable invoker if name is exported
	// by the library; false if the symbol is absent.
	Symbol(name string) (SymbolFunc, bool)
}

// SymbolFunc is a raw, resolved ABI entry-point address. The zero value
// means unbound. Packing arguments and crossing into C is the platform
// backend's job (dl_unix.go's call* helpers); this package only tracks
// which entry points exist and groups them into the four function tables
// below, so it stays buildable without cgo.
type SymbolFunc uintptr

// bound reports whether fn was actually resolved.
func (fn SymbolFunc) bound() bool { return fn != 0 }

// baseFunctions holds the three symbols resolvable before any instance
// exists (§4.2 "base").
type baseFunctions struct {
	getTypesPlatform SymbolFunc
	getVersion       SymbolFunc
	instantiate      SymbolFunc
}

// commonFunctions holds the symbols shared by every FMU kind (§4.2
// "common").
type commonFunctions struct {
	setDebugLogging SymbolFunc
	freeInstance    SymbolFunc // bound conditionally; absence tolerated (§4.2)

	setupExperiment       SymbolFunc
	enterInitializationMode SymbolFunc
	exitInitializationMode  SymbolFunc
	terminate               SymbolFunc
	reset                   SymbolFunc

	getReal    SymbolFunc
	getInteger SymbolFunc
	getBoolean SymbolFunc
	getString  SymbolFunc

	setReal    SymbolFunc
	setInteger SymbolFunc
	setBoolean SymbolFunc
	setString  SymbolFunc

	getFMUstate            SymbolFunc
	setFMUstate             SymbolFunc
	freeFMUstate            SymbolFunc
	serializedFMUstateSize  SymbolFunc
	serializeFMUstate       SymbolFunc
	deSerializeFMUstate     SymbolFunc

	getDirectionalDerivative SymbolFunc
}

// modelExchangeFunctions holds the symbols specific to model-exchange
// FMUs (§4.2 "model-exchange specific").
type modelExchangeFunctions struct {
	enterEventMode           SymbolFunc
	newDiscreteStates        SymbolFunc
	enterContinuousTimeMode  SymbolFunc
	completedIntegratorStep  SymbolFunc
	setTime                  SymbolFunc
	setContinuousStates       SymbolFunc
	getDerivatives            SymbolFunc
	getEventIndicators        SymbolFunc
	getContinuousStates       SymbolFunc
	getNominalsOfContinuousStates SymbolFunc
}

// coSimFunctions holds the symbols specific to co-simulation FMUs (§4.2
// "co-simulation specific").
type coSimFunctions struct {
	setRealInputDerivatives  SymbolFunc
	getRealOutputDerivatives SymbolFunc
	doStep                   SymbolFunc
	cancelStep               SymbolFunc
	getStatus                SymbolFunc
	getRealStatus            SymbolFunc
	getIntegerStatus         SymbolFunc
	getBooleanStatus         SymbolFunc
	getStringStatus          SymbolFunc
}

// requiredBaseSymbols and requiredCommonSymbols are the ABI entry points
// that must resolve for a usable library (§4.2 "Contract").
var requiredBaseSymbols = []string{
	"fmi2GetTypesPlatform", "fmi2GetVersion", "fmi2Instantiate",
}

var requiredCommonSymbols = []string{
	"fmi2SetupExperiment", "fmi2EnterInitializationMode", "fmi2ExitInitializationMode",
	"fmi2Terminate", "fmi2Reset",
	"fmi2GetReal", "fmi2GetInteger", "fmi2GetBoolean", "fmi2GetString",
	"fmi2SetReal", "fmi2SetInteger", "fmi2SetBoolean", "fmi2SetString",
}

func bindRequired(resolver SymbolResolver, names []string) (map[string]SymbolFunc, error) {
	bound := make(map[string]SymbolFunc, len(names))
	for _, name := range names {
		fn, ok := resolver.Symbol(name)
		if !ok {
			return nil, newLoadError(LoadCodeMissingSymbol, "bind "+name, errMissingSymbol(name))
		}
		bound[name] = fn
	}
	return bound, nil
}

func bindOptional(resolver SymbolResolver, name string) SymbolFunc {
	fn, ok := resolver.Symbol(name)
	if !ok {
		return 0
	}
	return fn
}

// bindBase constructs the base function table; construction fails if any
// required symbol is missing (§4.2 "Contract").
func bindBase(resolver SymbolResolver) (*baseFunctions, error) {
	bound, err := bindRequired(resolver, requiredBaseSymbols)
	if err != nil {
		return nil, err
	}
	return &baseFunctions{
		getTypesPlatform: bound["fmi2GetTypesPlatform"],
		getVersion:       bound["fmi2GetVersion"],
		instantiate:      bound["fmi2Instantiate"],
	}, nil
}

// bindCommon constructs the common function table.
func bindCommon(resolver SymbolResolver) (*commonFunctions, error) {
	bound, err := bindRequired(resolver, requiredCommonSymbols)
	if err != nil {
		return nil, err
	}
	return &commonFunctions{
		setDebugLogging:         bindOptional(resolver, "fmi2SetDebugLogging"),
		freeInstance:            bindOptional(resolver, "fmi2FreeInstance"), // absence tolerated
		setupExperiment:         bound["fmi2SetupExperiment"],
		enterInitializationMode: bound["fmi2EnterInitializationMode"],
		exitInitializationMode:  bound["fmi2ExitInitializationMode"],
		terminate:               bound["fmi2Terminate"],
		reset:                   bound["fmi2Reset"],
		getReal:                 bound["fmi2GetReal"],
		getInteger:              bound["fmi2GetInteger"],
		getBoolean:              bound["fmi2GetBoolean"],
		getString:               bound["fmi2GetString"],
		setReal:                 bound["fmi2SetReal"],
		setInteger:              bound["fmi2SetInteger"],
		setBoolean:              bound["fmi2SetBoolean"],
		setString:               bound["fmi2SetString"],
		getFMUstate:             bindOptional(resolver, "fmi2GetFMUstate"),
		setFMUstate:             bindOptional(resolver, "fmi2SetFMUstate"),
		freeFMUstate:            bindOptional(resolver, "fmi2FreeFMUstate"),
		serializedFMUstateSize:  bindOptional(resolver, "fmi2SerializedFMUstateSize"),
		serializeFMUstate:       bindOptional(resolver, "fmi2SerializeFMUstate"),
		deSerializeFMUstate:     bindOptional(resolver, "fmi2DeSerializeFMUstate"),
		getDirectionalDerivative: bindOptional(resolver, "fmi2GetDirectionalDerivative"),
	}, nil
}

// bindModelExchange constructs the model-exchange function table.
func bindModelExchange(resolver SymbolResolver) *modelExchangeFunctions {
	return &modelExchangeFunctions{
		enterEventMode:                bindOptional(resolver, "fmi2EnterEventMode"),
		newDiscreteStates:             bindOptional(resolver, "fmi2NewDiscreteStates"),
		enterContinuousTimeMode:       bindOptional(resolver, "fmi2EnterContinuousTimeMode"),
		completedIntegratorStep:       bindOptional(resolver, "fmi2CompletedIntegratorStep"),
		setTime:                       bindOptional(resolver, "fmi2SetTime"),
		setContinuousStates:           bindOptional(resolver, "fmi2SetContinuousStates"),
		getDerivatives:                bindOptional(resolver, "fmi2GetDerivatives"),
		getEventIndicators:            bindOptional(resolver, "fmi2GetEventIndicators"),
		getContinuousStates:           bindOptional(resolver, "fmi2GetContinuousStates"),
		getNominalsOfContinuousStates: bindOptional(resolver, "fmi2GetNominalsOfContinuousStates"),
	}
}

// bindCoSimulation constructs the co-simulation function table.
func bindCoSimulation(resolver SymbolResolver) *coSimFunctions {
	return &coSimFunctions{
		setRealInputDerivatives:  bindOptional(resolver, "fmi2SetRealInputDerivatives"),
		getRealOutputDerivatives: bindOptional(resolver, "fmi2GetRealOutputDerivatives"),
		doStep:                   bindOptional(resolver, "fmi2DoStep"),
		cancelStep:               bindOptional(resolver, "fmi2CancelStep"),
		getStatus:                bindOptional(resolver, "fmi2GetStatus"),
		getRealStatus:            bindOptional(resolver, "fmi2GetRealStatus"),
		getIntegerStatus:         bindOptional(resolver, "fmi2GetIntegerStatus"),
		getBooleanStatus:         bindOptional(resolver, "fmi2GetBooleanStatus"),
		getStringStatus:          bindOptional(resolver, "fmi2GetStringStatus"),
	}
}

type missingSymbolError string

func (e missingSymbolError) Error() string { return "missing required ABI symbol " + string(e) }

func errMissingSymbol(name string) error { return missingSymbolError(name) }
