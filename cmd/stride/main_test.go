package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/stride/internal/storage"
	"github.com/born-ml/stride/internal/view"
)

func TestRunPrintsGeometry(t *testing.T) {
	var out bytes.Buffer
	err := run(&out, view.DefaultConfig(), false, []string{"resize", "4,3", "unsqueeze", "1", "squeeze", "1", "transpose", "0,1"})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "[4 3] stride [3 1]")
	assert.Contains(t, lines[0], "capacity=12")
	assert.Contains(t, lines[1], "[4 1 3] stride [3 3 1]")
	assert.Contains(t, lines[1], "contiguous=true")
	assert.Contains(t, lines[2], "[4 3] stride [3 1]")
	assert.Contains(t, lines[3], "[3 4] stride [1 3]")
	assert.Contains(t, lines[3], "contiguous=false")
}

func TestRunExplicitStridesAndSlicing(t *testing.T) {
	var out bytes.Buffer
	err := run(&out, view.DefaultConfig(), false, []string{"resize", "2,3:-1,2", "narrow", "1,1,2", "select", "0,1"})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "[2 3] stride [6 2] offset 0")
	assert.Contains(t, lines[0], "capacity=11")
	assert.Contains(t, lines[1], "[2 2] stride [6 2] offset 2")
	assert.Contains(t, lines[2], "[2] stride [2] offset 8")
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing argument", []string{"resize"}, "missing its argument"},
		{"unknown op", []string{"flip", "0"}, "unknown operation"},
		{"bad integer", []string{"resize", "4,x"}, "parse"},
		{"wrong arity", []string{"resize", "4", "narrow", "0,1"}, "expected 3"},
		{"stride count", []string{"resize", "4,3:1"}, "bad argument #2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(&bytes.Buffer{}, view.DefaultConfig(), false, tt.args)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	err := run(&bytes.Buffer{}, view.DefaultConfig(), false, []string{"resize", "4", "squeeze", "3"})
	assert.True(t, errors.Is(err, view.ErrInvalidArgument))
}

func TestBuildConfig(t *testing.T) {
	cfg, cleanup, err := buildConfig("int16", "metal", true)
	require.NoError(t, err)
	defer cleanup()

	assert.Equal(t, storage.Int16, cfg.ScalarType)
	assert.Equal(t, storage.Metal, cfg.Device)
	assert.IsType(t, &storage.PooledAllocator{}, cfg.Allocator)

	var out bytes.Buffer
	require.NoError(t, run(&out, cfg, false, []string{"resize", "8"}))
	assert.Contains(t, out.String(), "View[int16][8] stride [1] offset 0 on Metal")

	_, _, err = buildConfig("complex64", "cpu", false)
	assert.Error(t, err)
	_, _, err = buildConfig("float32", "tpu", false)
	assert.Error(t, err)
}

func TestRunFillAndValues(t *testing.T) {
	cfg := view.DefaultConfig()
	cfg.ScalarType = storage.Float64

	var out bytes.Buffer
	err := run(&out, cfg, true, []string{"resize", "3,3", "fill", "1", "narrow", "1,1,2", "transpose", "0,1"})
	require.NoError(t, err)

	sections := strings.Split(out.String(), "fill ")
	require.Len(t, sections, 2)
	filled := sections[1]
	assert.Contains(t, filled, "1  2  3")
	assert.Contains(t, filled, "4  5  6")
	assert.Contains(t, filled, "7  8  9")

	narrowed := strings.Split(filled, "narrow ")[1]
	narrowed = strings.Split(narrowed, "transpose ")[0]
	assert.Contains(t, narrowed, "2  3")
	assert.Contains(t, narrowed, "5  6")
	assert.Contains(t, narrowed, "8  9")
	assert.NotContains(t, narrowed, "1  2")

	transposed := strings.Split(out.String(), "transpose ")[1]
	assert.Contains(t, transposed, "values: column stride 3: view layout not representable")
}

func TestRunFillVector(t *testing.T) {
	cfg := view.DefaultConfig()
	cfg.ScalarType = storage.Float64

	var out bytes.Buffer
	require.NoError(t, run(&out, cfg, true, []string{"resize", "2,3", "fill", "0", "select", "1,2"}))
	selected := strings.Split(out.String(), "select ")[1]
	assert.Contains(t, selected, "[2] stride [3] offset 2")
	assert.Contains(t, selected, "2")
	assert.Contains(t, selected, "5")
}

func TestRunFillErrors(t *testing.T) {
	err := run(&bytes.Buffer{}, view.DefaultConfig(), false, []string{"resize", "2,2", "fill", "0"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not float64")

	cfg := view.DefaultConfig()
	cfg.ScalarType = storage.Float64
	err = run(&bytes.Buffer{}, cfg, false, []string{"resize", "2,2,2", "fill", "0"})
	assert.Contains(t, err.Error(), "1-d or 2-d")

	err = run(&bytes.Buffer{}, cfg, false, []string{"resize", "2", "fill", "x"})
	assert.Contains(t, err.Error(), "parse")
}

func TestRunValuesSkipsOtherTypes(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(&out, view.DefaultConfig(), true, []string{"resize", "2,2"}))
	assert.Equal(t, 1, strings.Count(out.String(), "\n"))
}
