package fmi

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetModeCoSimulationCoercesContinuousTimeAndEventToStep(t *testing.T) {
	inst := &Instance{kind: KindCoSimulation, currentMode: ModeStep, catalog: NewCatalog()}

	require.NoError(t, inst.SetMode(ModeContinuousTime))
	require.Equal(t, ModeStep, inst.currentMode)

	require.NoError(t, inst.SetMode(ModeEvent))
	require.Equal(t, ModeStep, inst.currentMode)
}

func TestSetModeSameModeIsNoOp(t *testing.T) {
	inst := &Instance{kind: KindModelExchange, currentMode: ModeEvent, catalog: NewCatalog()}
	require.NoError(t, inst.SetMode(ModeEvent))
	require.Equal(t, ModeEvent, inst.currentMode)
}

func TestSetModeExplicitErrorTransition(t *testing.T) {
	inst := &Instance{kind: KindModelExchange, currentMode: ModeStep, catalog: NewCatalog()}
	err := inst.SetMode(ModeError)
	require.Error(t, err)
	require.Equal(t, ModeError, inst.currentMode)
}

func TestSetModeFromErrorOnlyAllowsTerminated(t *testing.T) {
	inst := &Instance{kind: KindModelExchange, currentMode: ModeError, catalog: NewCatalog()}

	err := inst.SetMode(ModeStep)
	require.Error(t, err)
	require.Equal(t, ModeError, inst.currentMode)

	require.NoError(t, inst.SetMode(ModeTerminated))
	require.Equal(t, ModeTerminated, inst.currentMode)
}

func TestEnterContinuousTimeIfStatelessSkipsABICall(t *testing.T) {
	inst := &Instance{kind: KindModelExchange, currentMode: ModeEvent, catalog: NewCatalog()}
	require.NoError(t, inst.enterContinuousTimeIfStateful())
	require.Equal(t, ModeContinuousTime, inst.currentMode)
}

func TestFromStepOnlyAllowsTerminatedOrError(t *testing.T) {
	inst := &Instance{kind: KindModelExchange, currentMode: ModeStep}
	err := inst.fromStep(ModeEvent)
	require.Error(t, err)
}
