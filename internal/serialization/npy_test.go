package serialization

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/born-ml/tapegrad/internal/matrix"
	"github.com/sbinet/npyio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// rawNpy builds a version 1.0 .npy stream with float64 payload.
func rawNpy(t *testing.T, fortran bool, shape string, data []float64) []byte {
	t.Helper()
	order := "False"
	if fortran {
		order = "True"
	}
	header := fmt.Sprintf("{'descr': '<f8', 'fortran_order': %s, 'shape': %s, }", order, shape)
	// magic(6) + version(2) + header length(2) + header + '\n' is 64-byte aligned.
	pad := 64 - (10+len(header)+1)%64
	header += strings.Repeat(" ", pad%64) + "\n"

	var buf bytes.Buffer
	buf.WriteString("\x93NUMPY")
	buf.Write([]byte{1, 0})
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint16(len(header))))
	buf.WriteString(header)
	for _, v := range data {
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, math.Float64bits(v)))
	}
	return buf.Bytes()
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	m, err := matrix.New(3, 4, matrix.Uniform(-1, 1))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Save(&buf, m))

	loaded, err := Load(&buf)
	require.NoError(t, err)
	assert.Equal(t, m.Shape(), loaded.Shape())
	assert.True(t, mat.Equal(m.W(), loaded.W()))
	assert.NotEqual(t, m.ID(), loaded.ID())
	assert.True(t, mat.Equal(loaded.DW(), mat.NewDense(3, 4, nil)))
}

func TestLoad_Float32Vector(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, npyio.Write(&buf, []float32{1.5, -2, 0.25}))

	loaded, err := Load(&buf)
	require.NoError(t, err)
	assert.Equal(t, matrix.Shape{Rows: 3, Cols: 1}, loaded.Shape())
	assert.Equal(t, -2.0, loaded.At(1, 0))
	assert.Equal(t, 0.25, loaded.At(2, 0))
}

func TestLoad_FortranOrder(t *testing.T) {
	// [[1, 2, 3], [4, 5, 6]] stored column by column.
	raw := rawNpy(t, true, "(2, 3)", []float64{1, 4, 2, 5, 3, 6})

	loaded, err := Load(bytes.NewReader(raw))
	require.NoError(t, err)
	want := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})
	assert.True(t, mat.Equal(want, loaded.W()))
}

func TestLoad_Rejects(t *testing.T) {
	var ints bytes.Buffer
	require.NoError(t, npyio.Write(&ints, []int64{1, 2}))
	_, err := Load(&ints)
	assert.ErrorIs(t, err, ErrUnsupportedDType)

	_, err = Load(bytes.NewReader(rawNpy(t, false, "(1, 1, 2)", []float64{1, 2})))
	assert.ErrorIs(t, err, ErrUnsupportedRank)

	_, err = Load(bytes.NewReader(rawNpy(t, false, "(0, 3)", nil)))
	assert.ErrorIs(t, err, matrix.ErrInvalidShape)

	_, err = Load(strings.NewReader("not an array"))
	assert.Error(t, err)
}

func newParams(t *testing.T) []*matrix.Mat {
	t.Helper()
	a, err := matrix.New(2, 3, matrix.Gaussian(0, 1))
	require.NoError(t, err)
	b, err := matrix.New(4, 1, matrix.Uniform(-1, 1))
	require.NoError(t, err)
	return []*matrix.Mat{a, b}
}

func TestSaveAllLoadAll(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "checkpoint")
	params := newParams(t)
	require.NoError(t, SaveAll(dir, params))

	for _, name := range []string{"param_0.npy", "param_1.npy", ManifestName} {
		assert.FileExists(t, filepath.Join(dir, name))
	}

	restored := []*matrix.Mat{}
	for _, p := range params {
		z := matrix.ZerosLike(p)
		z.DW().Set(0, 0, 7)
		restored = append(restored, z)
	}
	require.NoError(t, LoadAll(dir, restored))
	for i := range params {
		assert.True(t, mat.Equal(params[i].W(), restored[i].W()))
		assert.Equal(t, 7.0, restored[i].GradAt(0, 0), "gradients are untouched")
	}
}

func TestLoadAll_Failures(t *testing.T) {
	t.Run("checksum mismatch", func(t *testing.T) {
		dir := t.TempDir()
		params := newParams(t)
		require.NoError(t, SaveAll(dir, params))

		other, err := matrix.New(2, 3, matrix.Uniform(5, 6))
		require.NoError(t, err)
		require.NoError(t, SaveFile(filepath.Join(dir, ParamFileName(0)), other))

		err = LoadAll(dir, params)
		assert.ErrorIs(t, err, ErrChecksumMismatch)
	})

	t.Run("missing file", func(t *testing.T) {
		dir := t.TempDir()
		params := newParams(t)
		require.NoError(t, SaveAll(dir, params[:1]))

		err := LoadAll(dir, params)
		assert.ErrorIs(t, err, ErrMissingParameter)
	})

	t.Run("shape mismatch", func(t *testing.T) {
		dir := t.TempDir()
		params := newParams(t)
		require.NoError(t, SaveAll(dir, params))

		wrong, err := matrix.Zeros(3, 2)
		require.NoError(t, err)
		err = LoadAll(dir, []*matrix.Mat{wrong})
		assert.ErrorIs(t, err, matrix.ErrDimensionMismatch)
	})

	t.Run("without manifest", func(t *testing.T) {
		dir := t.TempDir()
		params := newParams(t)
		require.NoError(t, SaveAll(dir, params))
		require.NoError(t, os.Remove(filepath.Join(dir, ManifestName)))

		restored := []*matrix.Mat{matrix.ZerosLike(params[0])}
		require.NoError(t, LoadAll(dir, restored))
		assert.True(t, mat.Equal(params[0].W(), restored[0].W()))
	})

	t.Run("malformed manifest", func(t *testing.T) {
		dir := t.TempDir()
		params := newParams(t)
		require.NoError(t, SaveAll(dir, params))
		require.NoError(t, os.WriteFile(filepath.Join(dir, ManifestName), []byte("zz  param_0.npy\n"), 0o600))

		err := LoadAll(dir, params)
		assert.ErrorIs(t, err, ErrMalformedManifest)
	})
}

func TestChecksum(t *testing.T) {
	data := []byte("test data")
	sum := ComputeChecksum(data)
	assert.Equal(t, sum, ComputeChecksum(data))
	assert.NotEqual(t, sum, ComputeChecksum([]byte("different data")))

	fromReader, err := ComputeChecksumReader(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, sum, fromReader)

	assert.NoError(t, ValidateChecksum(sum, sum))
	assert.ErrorIs(t, ValidateChecksum(sum, ComputeChecksum(nil)), ErrChecksumMismatch)
}

func TestManifest_RoundTrip(t *testing.T) {
	sums := map[string][32]byte{
		"param_1.npy": ComputeChecksum([]byte("b")),
		"param_0.npy": ComputeChecksum([]byte("a")),
	}
	var buf bytes.Buffer
	require.NoError(t, writeManifest(&buf, sums))
	assert.True(t, strings.HasSuffix(strings.SplitN(buf.String(), "\n", 2)[0], "  param_0.npy"))

	parsed, err := readManifest(&buf)
	require.NoError(t, err)
	assert.Equal(t, sums, parsed)
}
