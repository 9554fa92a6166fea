package export

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodePadsShortColumns(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, [][]float32{
		{1, 2, 3, 4, 5},
		{0.5, -1, 2.25},
	}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 6, "header plus 5 rows")
	assert.Equal(t, "graph_1,graph_2", lines[0])
	assert.Equal(t, "1,0.5", lines[1])
	assert.Equal(t, "3,2.25", lines[3])
	assert.Equal(t, "4,", lines[4])
	assert.Equal(t, "5,", lines[5])
	assert.NotContains(t, lines[4], "0.0")
}

func TestWriteThenReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph1.csv")
	first := []float32{0.1, 1e-7, -3.4028235e38, 12345.679, 0, float32(math.Inf(-1))}
	second := []float32{float32(math.Pi), 2}

	require.NoError(t, Write(path, [][]float32{first, second}))

	columns, err := ReadColumns(path)
	require.NoError(t, err)
	require.Len(t, columns, 2)
	assert.Equal(t, first, columns[0])
	assert.Equal(t, second, columns[1])
}

func TestRoundTripNaN(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, [][]float32{{float32(math.NaN()), 1}}))
	columns, err := Decode(&buf)
	require.NoError(t, err)
	require.Len(t, columns[0], 2)
	assert.True(t, math.IsNaN(float64(columns[0][0])))
}

func TestDecodeWithoutHeader(t *testing.T) {
	columns, err := Decode(strings.NewReader("1,2\n3,\n"))
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 3}, {2}}, columns)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode(strings.NewReader("graph_1\n1\nbanana\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")
}

func TestWriteReplacesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, os.WriteFile(path, []byte("old contents that are longer than the new ones\n"), 0o644))

	require.NoError(t, Write(path, [][]float32{{1}}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "graph_1\n1\n", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestWriteFailureKeepsExistingFile(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "missing-dir", "out.csv")
	err := Write(target, [][]float32{{1}})
	require.Error(t, err)

	// renaming a file over a directory fails after the temp file was written
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.Mkdir(blocker, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(blocker, "keep"), []byte("x"), 0o644))
	require.Error(t, Write(blocker, [][]float32{{1}}))

	data, err := os.ReadFile(filepath.Join(blocker, "keep"))
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file removed after failure")
}

func TestWriteNothing(t *testing.T) {
	require.ErrorIs(t, Write(filepath.Join(t.TempDir(), "x.csv"), nil), ErrNoColumns)
}

func TestWriteKeepsFileMode(t *testing.T) {
	dir := t.TempDir()

	fresh := filepath.Join(dir, "fresh.csv")
	require.NoError(t, Write(fresh, [][]float32{{1}}))
	info, err := os.Stat(fresh)
	require.NoError(t, err)
	assert.Equal(t, FILE_MODE, info.Mode().Perm())

	shared := filepath.Join(dir, "shared.csv")
	require.NoError(t, os.WriteFile(shared, []byte("graph_1\n0\n"), 0o600))
	require.NoError(t, os.Chmod(shared, 0o640))
	require.NoError(t, Write(shared, [][]float32{{2}}))
	info, err = os.Stat(shared)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())
}
