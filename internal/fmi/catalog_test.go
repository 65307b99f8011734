package fmi

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleModelDescription = `<?xml version="1.0" encoding="UTF-8"?>
<fmiModelDescription fmiVersion="2.0" modelName="Bouncer" guid="{00000000-0000-0000-0000-000000000001}">
  <CoSimulation modelIdentifier="bouncer" canHandleVariableCommunicationStepSize="true"/>
  <DefaultExperiment startTime="0" stopTime="1" stepSize="0.1"/>
  <ModelVariables>
    <ScalarVariable name="h" valueReference="0" causality="output">
      <Real start="1.0"/>
    </ScalarVariable>
    <ScalarVariable name="v" valueReference="1" causality="output">
      <Real start="0.0"/>
    </ScalarVariable>
    <ScalarVariable name="g" valueReference="2" causality="input">
      <Real start="-9.81"/>
    </ScalarVariable>
    <ScalarVariable name="bounces" valueReference="3" causality="local" variability="discrete">
      <Integer start="0"/>
    </ScalarVariable>
  </ModelVariables>
  <ModelStructure>
    <Outputs>
      <Unknown index="1"/>
      <Unknown index="2"/>
    </Outputs>
  </ModelStructure>
</fmiModelDescription>`

func writeSampleCatalog(t *testing.T) *Catalog {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "modelDescription.xml")
	require.NoError(t, os.WriteFile(path, []byte(sampleModelDescription), 0o644))
	catalog, err := LoadCatalogFile(path)
	require.NoError(t, err)
	return catalog
}

func TestLoadCatalogFileParsesHeaderAndVariables(t *testing.T) {
	catalog := writeSampleCatalog(t)

	require.Equal(t, "2.0", catalog.FMIVersion)
	require.Equal(t, "Bouncer", catalog.ModelName)
	require.Len(t, catalog.Variables(), 4)
	require.True(t, catalog.CheckFlag(CapabilityCoSimulation))
	require.False(t, catalog.CheckFlag(CapabilityModelExchange))

	experiment := catalog.Experiment()
	require.Equal(t, 1.0, experiment.StopTime)
	require.Equal(t, 0.1, experiment.StepSize)
}

func TestGetVariableInfoByNameAndIndexAgree(t *testing.T) {
	catalog := writeSampleCatalog(t)

	byName := catalog.GetVariableInfo("h")
	require.GreaterOrEqual(t, byName.Index, 0)

	byIndex := catalog.GetVariableInfoByIndex(byName.Index)
	require.Equal(t, byName.Name, byIndex.Name)
	require.Equal(t, byName.ValueReference, byIndex.ValueReference)
}

func TestGetVariableInfoUnknownNameReturnsEmptySentinel(t *testing.T) {
	catalog := writeSampleCatalog(t)

	v := catalog.GetVariableInfo("does-not-exist")
	require.Less(t, v.Index, 0)
}

func TestVariablesAppearInTheirCausalityCategory(t *testing.T) {
	catalog := writeSampleCatalog(t)
	for _, v := range catalog.Variables() {
		require.Contains(t, []VariableType{TypeReal, TypeInteger, TypeBoolean, TypeString, TypeEnumeration}, v.Type)
		if v.Causality != CausalityUnknown {
			found := false
			for _, idx := range catalog.GetVariableIndices(causalityCategory(v.Causality)) {
				if idx == v.Index {
					found = true
					break
				}
			}
			require.True(t, found, "variable %s not present in its own causality's index list", v.Name)
		}
	}
}

func causalityCategory(c Causality) VariableCategory {
	switch c {
	case CausalityInput:
		return CategoryInput
	case CausalityOutput:
		return CategoryOutput
	case CausalityLocal:
		return CategoryLocal
	case CausalityParameter, CausalityCalculatedParameter:
		return CategoryParameter
	default:
		return CategoryUnknown
	}
}

func TestGetOutputReferenceContainsDeclaredOutputs(t *testing.T) {
	catalog := writeSampleCatalog(t)
	h := catalog.GetVariableInfo("h")
	refs := catalog.GetOutputReference()
	require.Contains(t, refs, h.ValueReference)
}
