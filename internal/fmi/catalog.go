package fmi

import (
	"encoding/xml"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Variable is every catalog entry declared by the FMU's XML model
// description (§3 "Variable").
type Variable struct {
	Index            int
	Name             string
	ValueReference   ValueReference
	Type             VariableType
	Causality        Causality
	Variability      Variability
	Description      string
	Unit             string
	Initial          string
	Start            float64
	Min              float64
	Max              float64
	IsDerivative     bool
	DerivativeIndex  int
}

// DefaultExperiment is the FMU-declared default simulation interval (§3).
type DefaultExperiment struct {
	StartTime float64
	StopTime  float64
	StepSize  float64
	Tolerance float64
}

var emptyVariable = Variable{Index: -1}

// Catalog is the parsed, queryable representation of everything declared in
// the FMU's modelDescription.xml (C1). Catalogs are created once per
// archive when the library is loaded and shared by reference across every
// instance created from it (§3 "Lifecycle").
type Catalog struct {
	FMIVersion   string
	ModelName    string
	GUID         string
	MEIdentifier string
	CSIdentifier string
	MaxOutputDerivativeOrder int

	capabilities [capabilityCount]bool

	variables []Variable
	byName    map[string]int
	byFoldedName map[string]int

	units []Unit

	experiment DefaultExperiment

	inputs     []int
	outputs    []int
	parameters []int
	locals     []int
	states     []int
	deriv      []int
	initUnknown []int
	eventIndicators int

	outputDep  *DependencyMatrix
	derivDep   *DependencyMatrix
	unknownDep *DependencyMatrix
}

// NewCatalog returns an empty catalog, matching FmiInfo's default
// constructor; LoadFile populates it.
func NewCatalog() *Catalog {
	return &Catalog{
		byName:       make(map[string]int),
		byFoldedName: make(map[string]int),
		outputDep:    newDependencyMatrix(),
		derivDep:     newDependencyMatrix(),
		unknownDep:   newDependencyMatrix(),
	}
}

// LoadCatalogFile parses the XML at path into a new Catalog (§4.1 loadFile).
func LoadCatalogFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, newLoadError(LoadCodeInvalidXML, "read model description", err)
	}
	var raw rawModelDescription
	if err := xml.Unmarshal(data, &raw); err != nil {
		return nil, newLoadError(LoadCodeInvalidXML, "parse model description", err)
	}

	c := NewCatalog()
	c.loadHeader(&raw)
	c.loadUnits(&raw)
	c.loadVariables(&raw)
	c.loadStructure(&raw)
	return c, nil
}

var capabilityFlagNames = map[string]CapabilityFlag{
	"canGetAndSetFMUstate":                    CapabilityGetSetState,
	"canSerializeFMUstate":                    CapabilitySerializeState,
	"canHandleVariableCommunicationStepSize":   CapabilityVariableStep,
	"canRunAsynchronously":                     CapabilityAsynchronous,
	"canBeInstantiatedOnlyOncePerProcess":      CapabilitySingleInstance,
}

func (c *Catalog) loadHeader(raw *rawModelDescription) {
	for _, a := range raw.Attrs {
		if a.Name.Local == "fmiVersion" {
			c.FMIVersion = a.Value
		}
		if a.Name.Local == "modelName" {
			c.ModelName = a.Value
		}
		if a.Name.Local == "guid" {
			c.GUID = a.Value
		}
	}

	if raw.ModelExchange != nil {
		c.capabilities[CapabilityModelExchange] = true
		if id, ok := raw.ModelExchange.attr("modelIdentifier"); ok {
			c.MEIdentifier = id
		}
		c.applyCapabilityFlags(raw.ModelExchange)
	}
	if raw.CoSimulation != nil {
		c.capabilities[CapabilityCoSimulation] = true
		if id, ok := raw.CoSimulation.attr("modelIdentifier"); ok {
			c.CSIdentifier = id
		}
		if order, ok := raw.CoSimulation.attr("maxOutputDerivativeOrder"); ok {
			if n, err := strconv.Atoi(order); err == nil {
				c.MaxOutputDerivativeOrder = n
			}
		}
		c.applyCapabilityFlags(raw.CoSimulation)
	}

	if raw.DefaultExperiment != nil {
		de := raw.DefaultExperiment
		if de.StartTime != nil {
			c.experiment.StartTime = *de.StartTime
		}
		if de.StopTime != nil {
			c.experiment.StopTime = *de.StopTime
		}
		if de.StepSize != nil {
			c.experiment.StepSize = *de.StepSize
		}
		if de.Tolerance != nil {
			c.experiment.Tolerance = *de.Tolerance
		} else {
			c.experiment.Tolerance = 1e-8
		}
	}
}

func (c *Catalog) applyCapabilityFlags(section *rawCapabilitySection) {
	for _, a := range section.Attrs {
		if flag, ok := capabilityFlagNames[a.Name.Local]; ok {
			c.capabilities[flag] = a.Value == "true"
		}
	}
}

func (c *Catalog) loadUnits(raw *rawModelDescription) {
	if raw.UnitDefinitions == nil {
		return
	}
	for _, ru := range raw.UnitDefinitions.Units {
		u := Unit{Name: ru.Name}
		if ru.BaseUnit != nil {
			for _, a := range ru.BaseUnit.Attrs {
				factor, offset := 1.0, 0.0
				if v, err := strconv.ParseFloat(a.Value, 64); err == nil {
					factor = v
				}
				switch a.Name.Local {
				case "factor":
					u.BaseUnits = append(u.BaseUnits, UnitDef{Name: "factor", Factor: factor, Offset: offset})
				case "offset":
					u.BaseUnits = append(u.BaseUnits, UnitDef{Name: "offset", Factor: factor, Offset: offset})
				default:
					u.BaseUnits = append(u.BaseUnits, UnitDef{Name: a.Name.Local, Factor: factor})
				}
			}
		}
		for _, rd := range ru.DisplayUnit {
			u.DisplayUnits = append(u.DisplayUnits, UnitDef{Name: rd.Name, Factor: rd.Factor, Offset: rd.Offset})
		}
		c.units = append(c.units, u)
	}
}

func parseCausality(s string) Causality {
	switch s {
	case "parameter":
		return CausalityParameter
	case "calculatedParameter":
		return CausalityCalculatedParameter
	case "input":
		return CausalityInput
	case "output":
		return CausalityOutput
	case "local":
		return CausalityLocal
	case "independent":
		return CausalityIndependent
	default:
		return CausalityUnknown
	}
}

func parseVariability(s string) Variability {
	switch s {
	case "constant":
		return VariabilityConstant
	case "fixed":
		return VariabilityFixed
	case "tunable":
		return VariabilityTunable
	case "discrete":
		return VariabilityDiscrete
	case "continuous":
		return VariabilityContinuous
	default:
		return VariabilityUnknown
	}
}

func (c *Catalog) loadVariables(raw *rawModelDescription) {
	if raw.ModelVariables == nil {
		return
	}
	c.variables = make([]Variable, len(raw.ModelVariables.Variables))
	for i, rv := range raw.ModelVariables.Variables {
		v := Variable{
			Index:          i,
			Name:           rv.Name,
			ValueReference: ValueReference(rv.ValueReference),
			Description:    rv.Description,
			Causality:      parseCausality(rv.Causality),
			Variability:    parseVariability(rv.Variability),
			Initial:        rv.Initial,
			Min:            -1e48,
			Max:            1e48,
		}

		switch {
		case rv.Real != nil:
			v.Type = TypeReal
			v.Unit = rv.Real.Unit
			if rv.Real.Start != nil {
				v.Start = *rv.Real.Start
			}
			if rv.Real.Derivative != nil {
				v.IsDerivative = true
				v.DerivativeIndex = *rv.Real.Derivative - 1
			}
			if rv.Real.Min != nil {
				v.Min = *rv.Real.Min
			}
			if rv.Real.Max != nil {
				v.Max = *rv.Real.Max
			}
			if v.Variability == VariabilityUnknown {
				v.Variability = VariabilityContinuous
			}
		case rv.Boolean != nil:
			v.Type = TypeBoolean
			if rv.Boolean.Start != nil && *rv.Boolean.Start {
				v.Start = 1
			}
			if v.Variability == VariabilityUnknown {
				v.Variability = VariabilityDiscrete
			}
		case rv.String != nil:
			v.Type = TypeString
			v.Initial = rv.String.Start
		case rv.Integer != nil:
			v.Type = TypeInteger
			if rv.Integer.Start != nil {
				v.Start = float64(*rv.Integer.Start)
			}
			if rv.Integer.Min != nil {
				v.Min = float64(*rv.Integer.Min)
			}
			if rv.Integer.Max != nil {
				v.Max = float64(*rv.Integer.Max)
			}
			if v.Variability == VariabilityUnknown {
				v.Variability = VariabilityDiscrete
			}
		case rv.Enumeration != nil:
			v.Type = TypeEnumeration
			if rv.Enumeration.Start != nil {
				v.Start = float64(*rv.Enumeration.Start)
			}
			if v.Variability == VariabilityUnknown {
				v.Variability = VariabilityDiscrete
			}
		}

		c.variables[i] = v

		// Index equals position in the variable list (§3 invariant i); name
		// is the exact-case key, a case-folded alias loses to it on conflict
		// (§3 invariant ii).
		c.byName[v.Name] = i
		folded := strings.ToLower(v.Name)
		if _, exists := c.byFoldedName[folded]; !exists {
			c.byFoldedName[folded] = i
		}

		switch v.Causality {
		case CausalityParameter:
			c.parameters = append(c.parameters, i)
		case CausalityLocal:
			c.locals = append(c.locals, i)
		case CausalityInput:
			c.inputs = append(c.inputs, i)
		}
	}
}

func depKind(s string) DependencyKind {
	switch s {
	case "dependent":
		return DependencyDependent
	case "fixed":
		return DependencyFixed
	case "constant":
		return DependencyConstant
	case "tunable":
		return DependencyTunable
	case "discrete":
		return DependencyDiscrete
	default:
		return DependencyIndependent
	}
}

func (c *Catalog) loadDependencySection(section *rawDependencySection, store *[]int, matrix *DependencyMatrix) {
	if section == nil {
		return
	}
	for _, u := range section.Unknowns {
		row := u.Index - 1 // the XML's dependency rows are 1-indexed (§4.1)
		*store = append(*store, row)
		kinds := strings.Fields(u.DependenciesKind)
		deps := strings.Fields(u.Dependencies)
		for i, depStr := range deps {
			dep, err := strconv.Atoi(depStr)
			if err != nil || dep <= 0 {
				continue
			}
			kind := DependencyDependent
			if i < len(kinds) {
				kind = depKind(kinds[i])
			}
			matrix.add(row, DependencyEntry{Index: dep - 1, Kind: kind})
		}
	}
}

func (c *Catalog) loadStructure(raw *rawModelDescription) {
	if raw.ModelStructure == nil {
		return
	}
	c.loadDependencySection(raw.ModelStructure.Outputs, &c.outputs, c.outputDep)
	c.loadDependencySection(raw.ModelStructure.Derivatives, &c.deriv, c.derivDep)
	for _, derivIdx := range c.deriv {
		if derivIdx >= 0 && derivIdx < len(c.variables) {
			c.states = append(c.states, c.variables[derivIdx].DerivativeIndex)
		}
	}
	c.loadDependencySection(raw.ModelStructure.InitialUnknowns, &c.initUnknown, c.unknownDep)
}

// CheckFlag reports whether the given capability flag is set (§3).
func (c *Catalog) CheckFlag(flag CapabilityFlag) bool {
	return c.capabilities[flag]
}

// Experiment returns the FMU's declared default experiment.
func (c *Catalog) Experiment() DefaultExperiment { return c.experiment }

// GetVariableInfo looks a variable up by exact name, then case-folded name,
// falling back to the empty sentinel (index -1) on a miss — it never
// panics or errors (§4.1).
func (c *Catalog) GetVariableInfo(name string) Variable {
	if idx, ok := c.byName[name]; ok {
		return c.variables[idx]
	}
	if idx, ok := c.byFoldedName[strings.ToLower(name)]; ok {
		return c.variables[idx]
	}
	return emptyVariable
}

// GetVariableInfoByIndex looks a variable up by its bounds-checked declared
// index, returning the empty sentinel on an out-of-range index.
func (c *Catalog) GetVariableInfoByIndex(index int) Variable {
	if index < 0 || index >= len(c.variables) {
		return emptyVariable
	}
	return c.variables[index]
}

// Variables returns every declared variable in declaration order.
func (c *Catalog) Variables() []Variable { return c.variables }

// Units returns every declared unit.
func (c *Catalog) Units() []Unit { return c.units }

// GetCounts derives the requested count from the catalog (§4.1).
func (c *Catalog) GetCounts(kind CountKind) int {
	switch kind {
	case CountInputs:
		return len(c.inputs)
	case CountOutputs:
		return len(c.outputs)
	case CountParameters:
		return len(c.parameters)
	case CountLocals:
		return len(c.locals)
	case CountStates:
		return len(c.states)
	case CountDerivatives:
		return len(c.deriv)
	case CountUnits:
		return len(c.units)
	case CountEvents:
		return c.eventIndicators
	case CountModelExchange:
		if c.CheckFlag(CapabilityModelExchange) {
			return 1
		}
		return 0
	case CountCoSimulation:
		if c.CheckFlag(CapabilityCoSimulation) {
			return 1
		}
		return 0
	case CountAny:
		return len(c.variables)
	default:
		return -1
	}
}

// GetVariableNames returns the names of every variable with the given
// causality (or CausalityAny for every variable), in declaration order.
func (c *Catalog) GetVariableNames(causality Causality) []string {
	var names []string
	for _, v := range c.variables {
		if causality == CausalityAny || v.Causality == causality {
			names = append(names, v.Name)
		}
	}
	return names
}

// VariableCategory selects one of the catalog's precomputed index lists.
type VariableCategory int

const (
	CategoryState VariableCategory = iota
	CategoryDerivative
	CategoryParameter
	CategoryInput
	CategoryOutput
	CategoryLocal
	CategoryUnknown
)

// GetVariableIndices returns the declaration-ordered index list for the
// given category.
func (c *Catalog) GetVariableIndices(category VariableCategory) []int {
	switch category {
	case CategoryState:
		return c.states
	case CategoryDerivative:
		return c.deriv
	case CategoryParameter:
		return c.parameters
	case CategoryInput:
		return c.inputs
	case CategoryOutput:
		return c.outputs
	case CategoryLocal:
		return c.locals
	case CategoryUnknown:
		return c.initUnknown
	default:
		return nil
	}
}

// GetReferenceSet collects the value references for the named variables,
// silently dropping names whose value reference is 0 (§4.1).
func (c *Catalog) GetReferenceSet(names []string) []ValueReference {
	refs := make([]ValueReference, 0, len(names))
	for _, name := range names {
		v := c.GetVariableInfo(name)
		if v.ValueReference > 0 {
			refs = append(refs, v.ValueReference)
		}
	}
	return refs
}

// GetOutputReference returns the value references of the declared outputs.
func (c *Catalog) GetOutputReference() []ValueReference {
	refs := make([]ValueReference, 0, len(c.outputs))
	for _, idx := range c.outputs {
		refs = append(refs, c.variables[idx].ValueReference)
	}
	return refs
}

// GetInputReference returns the value references of the declared inputs.
func (c *Catalog) GetInputReference() []ValueReference {
	refs := make([]ValueReference, 0, len(c.inputs))
	for _, idx := range c.inputs {
		refs = append(refs, c.variables[idx].ValueReference)
	}
	return refs
}

// DerivDependencies, OutputDependencies, UnknownDependencies expose the
// three sparse dependency matrices row-indexed by variable index (§3).
func (c *Catalog) DerivDependencies(variableIndex int) []DependencyEntry {
	return c.derivDep.Row(variableIndex)
}

func (c *Catalog) OutputDependencies(variableIndex int) []DependencyEntry {
	return c.outputDep.Row(variableIndex)
}

func (c *Catalog) UnknownDependencies(variableIndex int) []DependencyEntry {
	return c.unknownDep.Row(variableIndex)
}

// CheckType reports whether a variable matches the expected type/causality,
// allowing an input to also satisfy a "parameter" request (original
// source's checkType quirk, preserved for fidelity).
func CheckType(v Variable, wantType VariableType, wantCausality Causality) bool {
	if v.Causality != wantCausality {
		if !(v.Causality == CausalityInput && wantCausality == CausalityParameter) {
			return false
		}
	}
	return v.Type == wantType
}

// sortedKeys is a small helper used by callers that need deterministic
// iteration over name-keyed maps (e.g. parameter assignment application).
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
