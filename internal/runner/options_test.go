package runner

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPreferCoSimulationDefaultsTrue(t *testing.T) {
	var o Options
	require.True(t, o.preferCoSimulation())
}

func TestPreferCoSimulationModelExchangeOnly(t *testing.T) {
	o := Options{ModelExchange: true}
	require.False(t, o.preferCoSimulation())
}

func TestPreferCoSimulationBothFlagsFavorsCoSim(t *testing.T) {
	o := Options{ModelExchange: true, CoSimulation: true}
	require.True(t, o.preferCoSimulation())
}
