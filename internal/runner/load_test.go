package runner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveInputPathDirect(t *testing.T) {
	dir := t.TempDir()
	fmuPath := filepath.Join(dir, "model.fmu")
	require.NoError(t, os.WriteFile(fmuPath, []byte("x"), 0o644))

	r := &Runner{opts: Options{Inputs: []string{fmuPath}}}
	resolved, err := r.resolveInputPath(fmuPath)
	require.NoError(t, err)
	require.Equal(t, fmuPath, resolved)
}

func TestResolveInputPathSearchesFMUPath(t *testing.T) {
	dir := t.TempDir()
	fmuPath := filepath.Join(dir, "model.fmu")
	require.NoError(t, os.WriteFile(fmuPath, []byte("x"), 0o644))

	r := &Runner{opts: Options{FMUPath: []string{dir}}}
	resolved, err := r.resolveInputPath("model.fmu")
	require.NoError(t, err)
	require.Equal(t, fmuPath, resolved)
}

func TestResolveInputPathMissing(t *testing.T) {
	r := &Runner{opts: Options{FMUPath: []string{t.TempDir()}}}
	_, err := r.resolveInputPath("does-not-exist.fmu")
	require.Error(t, err)
}

func TestParseRejectsEmptyInputs(t *testing.T) {
	r := &Runner{}
	err := r.parse()
	require.Error(t, err)

	var runErr *RunError
	require.ErrorAs(t, err, &runErr)
	require.Equal(t, ExitMissingFile, runErr.Code)
}

func TestSplitConnectionPair(t *testing.T) {
	from, to, ok := splitConnectionPair("pub0,fthru.in")
	require.True(t, ok)
	require.Equal(t, "pub0", from)
	require.Equal(t, "fthru.in", to)

	_, _, ok = splitConnectionPair("no-comma-here")
	require.False(t, ok)
}

func TestSplitAssignment(t *testing.T) {
	key, value, ok := splitAssignment("g=9.81")
	require.True(t, ok)
	require.Equal(t, "g", key)
	require.Equal(t, "9.81", value)

	// Only the first '=' is the delimiter, so values may contain '='.
	key, value, ok = splitAssignment("expr=a=b")
	require.True(t, ok)
	require.Equal(t, "expr", key)
	require.Equal(t, "a=b", value)

	_, _, ok = splitAssignment("no-equals-sign")
	require.False(t, ok)
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	present := filepath.Join(dir, "present.txt")
	require.NoError(t, os.WriteFile(present, []byte("x"), 0o644))

	require.True(t, fileExists(present))
	require.False(t, fileExists(filepath.Join(dir, "absent.txt")))
}
