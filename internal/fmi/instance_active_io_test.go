package fmi

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQualifiesAsInputRequiresRealAndInputCausality(t *testing.T) {
	require.True(t, qualifiesAsInput(Variable{Type: TypeReal, Causality: CausalityInput}))
	require.False(t, qualifiesAsInput(Variable{Type: TypeInteger, Causality: CausalityInput}))
	require.False(t, qualifiesAsInput(Variable{Type: TypeReal, Causality: CausalityOutput}))
}

func TestQualifiesAsOutputAdmitsOutputAndLocal(t *testing.T) {
	require.True(t, qualifiesAsOutput(Variable{Type: TypeReal, Causality: CausalityOutput}))
	require.True(t, qualifiesAsOutput(Variable{Type: TypeReal, Causality: CausalityLocal}))
	require.False(t, qualifiesAsOutput(Variable{Type: TypeReal, Causality: CausalityInput}))
	require.False(t, qualifiesAsOutput(Variable{Type: TypeString, Causality: CausalityOutput}))
}

func TestIsAllSentinel(t *testing.T) {
	require.True(t, isAllSentinel([]string{"all"}))
	require.False(t, isAllSentinel([]string{"all", "x"}))
	require.False(t, isAllSentinel([]string{"h"}))
	require.False(t, isAllSentinel(nil))
}

func TestSetInputVariablesDropsWrongDirectionAndUnknownNames(t *testing.T) {
	catalog := writeSampleCatalog(t)
	inst := &Instance{catalog: catalog, name: "bouncer"}

	inst.SetInputVariables([]string{"g", "h", "does-not-exist"})
	require.Equal(t, []string{"g"}, inst.activeInputs.names(catalog))
}

func TestSetOutputVariablesKeepsOutputsDropsInputs(t *testing.T) {
	catalog := writeSampleCatalog(t)
	inst := &Instance{catalog: catalog, name: "bouncer"}

	inst.SetOutputVariables([]string{"h", "v", "g"})
	require.ElementsMatch(t, []string{"h", "v"}, inst.activeOutputs.names(catalog))
}

func TestSetInputVariablesAllSentinelPopulatesDefault(t *testing.T) {
	catalog := writeSampleCatalog(t)
	inst := &Instance{catalog: catalog, name: "bouncer"}

	inst.SetInputVariables([]string{"all"})
	require.Equal(t, catalog.GetVariableIndices(CategoryInput), inst.activeInputs.indices)
}

func TestAddInputVariableRejectsNonInput(t *testing.T) {
	catalog := writeSampleCatalog(t)
	inst := &Instance{catalog: catalog, name: "bouncer"}

	v := inst.AddInputVariable("h")
	require.Less(t, v.Index, 0)
	require.Empty(t, inst.activeInputs.refs)

	v = inst.AddInputVariable("g")
	require.GreaterOrEqual(t, v.Index, 0)
	require.Len(t, inst.activeInputs.refs, 1)
}
