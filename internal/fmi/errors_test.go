package fmi

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassifyOkAndPendingNeverRaise(t *testing.T) {
	require.NoError(t, classify(StatusOK, true, true))
	require.NoError(t, classify(StatusPending, true, true))
}

func TestClassifyDiscardHonorsPolicy(t *testing.T) {
	require.NoError(t, classify(StatusDiscard, false, true))

	err := classify(StatusDiscard, true, true)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrDiscard))
}

func TestClassifyWarningHonorsPolicy(t *testing.T) {
	require.NoError(t, classify(StatusWarning, true, false))

	err := classify(StatusWarning, true, true)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrWarning))
}

func TestClassifyErrorAndFatalAlwaysRaise(t *testing.T) {
	err := classify(StatusError, false, false)
	require.True(t, errors.Is(err, ErrFMUError))

	err = classify(StatusFatal, false, false)
	require.True(t, errors.Is(err, ErrFatal))
}

func TestRaiseSetsOpOnStatusError(t *testing.T) {
	inst := &Instance{exceptionOnDiscard: true}
	err := inst.raise("fmi2SetReal", StatusDiscard)
	require.Error(t, err)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	require.Equal(t, "fmi2SetReal", se.Op)
}

func TestTypedAccessorsDiscardOnTypeMismatch(t *testing.T) {
	catalog := writeSampleCatalog(t)
	inst := &Instance{catalog: catalog, exceptionOnDiscard: true}

	// "g" is declared real; asking for it as an integer must discard
	// rather than dispatch to the wrong-shaped ABI call.
	_, err := inst.GetInteger("g")
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrDiscard))

	err = inst.SetBoolean("g", true)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrDiscard))
}
