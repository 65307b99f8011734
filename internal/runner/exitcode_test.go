package runner

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFailReturnsNilForNilErr(t *testing.T) {
	require.NoError(t, fail(ExitFMUError, nil))
}

func TestFailWrapsWithExitCode(t *testing.T) {
	cause := errors.New("boom")
	err := fail(ExitDiscardedParameterError, cause)

	var runErr *RunError
	require.True(t, errors.As(err, &runErr))
	require.Equal(t, ExitDiscardedParameterError, runErr.Code)
	require.Equal(t, cause, errors.Unwrap(runErr))
	require.Contains(t, runErr.Error(), "DISCARDED_PARAMETER_ERROR")
	require.Contains(t, runErr.Error(), "boom")
}

func TestExitCodeStringCoversAllValues(t *testing.T) {
	cases := map[ExitCode]string{
		ExitSuccess:                 "SUCCESS",
		ExitMissingFile:             "MISSING_FILE",
		ExitInvalidFile:             "INVALID_FILE",
		ExitInvalidFMU:              "INVALID_FMU",
		ExitFMUError:                "FMU_ERROR",
		ExitFileProcessingError:     "FILE_PROCESSING_ERROR",
		ExitBrokerConnectFailure:    "BROKER_CONNECT_FAILURE",
		ExitCoreConnectFailure:      "CORE_CONNECT_FAILURE",
		ExitDiscardedParameterError: "DISCARDED_PARAMETER_ERROR",
	}
	for code, want := range cases {
		require.Equal(t, want, code.String())
	}
	require.Equal(t, "UNKNOWN", ExitCode(999).String())
}
