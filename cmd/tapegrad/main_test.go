package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGradcheck_Catalog(t *testing.T) {
	require.NoError(t, runGradcheck(nil, discard()))
}

func TestGradcheck_Filter(t *testing.T) {
	require.NoError(t, runGradcheck([]string{"-run", "softmax"}, discard()))
}

func TestGradcheck_ZeroToleranceFails(t *testing.T) {
	err := runGradcheck([]string{"-run", "exp", "-tol", "0"}, discard())
	assert.ErrorIs(t, err, errGradcheckFailed)
}

func TestTrain_SaveAndReload(t *testing.T) {
	dir := t.TempDir()

	err := runTrain([]string{"-steps", "5", "-workers", "2", "-out", dir, "-solver", "sgd"}, discard())
	require.NoError(t, err)

	for _, name := range []string{"param_0.npy", "param_1.npy", "MANIFEST"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}

	err = runTrain([]string{"-steps", "1", "-in", dir}, discard())
	assert.NoError(t, err)
}

func TestTrain_UnknownSolver(t *testing.T) {
	err := runTrain([]string{"-solver", "lbfgs"}, discard())
	assert.ErrorContains(t, err, "unknown solver")
}
