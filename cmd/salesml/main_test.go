package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/salesml/core/model"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func dataCSV(n int) string {
	var b strings.Builder
	b.WriteString("day,visitors,viewed,holiday,sold\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "%d,%d,%d,%d,%d\n", 9600+10*i, 900+11*i+(i%4)*3, 400+6*i, i%2, 40+4*i+(i%3))
	}
	return b.String()
}

func execute(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	var out, errb bytes.Buffer
	code = run(args, &out, &errb)
	return code, out.String(), errb.String()
}

func TestPredict_PrintsOneFloat(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "Data1.csv", dataCSV(10))

	code, out, errOut := execute(t, "predict", "--input-path", input)
	require.Equal(t, 0, code, errOut)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 1)
	_, err := strconv.ParseFloat(lines[0], 64)
	assert.NoError(t, err)

	_, again, _ := execute(t, "predict", "--input-path", input)
	assert.Equal(t, out, again)
}

func TestPredict_JSONWithArtifacts(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "Data1.csv", dataCSV(30))
	plotPath := filepath.Join(dir, "svr.png")
	modelPath := filepath.Join(dir, "svr.json")

	code, out, errOut := execute(t, "predict",
		"--input-path", input,
		"--scaling", "none",
		"--cv", "3",
		"--output", "json",
		"--plot-out", plotPath,
		"--export-model", modelPath,
	)
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, `"scaling": "none"`)
	assert.Contains(t, out, `"cv_scores"`)

	_, err := os.Stat(plotPath)
	assert.NoError(t, err)
	w, err := model.LoadWeights(modelPath)
	require.NoError(t, err)
	assert.Equal(t, "SVR", w.ModelType)
	assert.Nil(t, w.Scaler)
}

func TestPredict_ThreeColumnsFailsAtLoad(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "bad.csv", "a,b,c\n1,2,3\n")

	code, out, errOut := execute(t, "predict", "--input-path", input)
	assert.Equal(t, 1, code)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "✗ Error: load:")
}

func TestPredict_InvalidFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"scaling", []string{"--scaling", "robust"}},
		{"output", []string{"--output", "xml"}},
		{"query length", []string{"--query", "1,2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, errOut := execute(t, append([]string{"predict"}, tt.args...)...)
			assert.Equal(t, 1, code)
			assert.Contains(t, errOut, "✗ Error:")
		})
	}
}

func TestPredict_TestSizeOutOfRangeNamesSplitStage(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "Data1.csv", dataCSV(10))

	for _, size := range []string{"1.5", "0"} {
		code, out, errOut := execute(t, "predict", "--input-path", input, "--test-size", size)
		assert.Equal(t, 1, code)
		assert.Empty(t, out)
		assert.Contains(t, errOut, "✗ Error: split:")
	}
}

func TestPredict_EnvConfig(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "Data1.csv", dataCSV(12))
	t.Setenv("SALESML_INPUT_PATH", input)
	t.Setenv("SALESML_OUTPUT", "json")

	code, out, errOut := execute(t, "predict")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, `"train_size": 9`)
}

func TestSuggest(t *testing.T) {
	dir := t.TempDir()
	bills := writeFile(t, dir, "DummyBills.csv", "Pen,Notebook,Eraser\n2,1,0\n1,0,1\n0,3,1\n")
	chart := filepath.Join(dir, "sales.html")

	code, out, errOut := execute(t, "suggest", "--sales-path", bills, "--chart-out", chart)
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, "[Pen Notebook]\nNotebook\n", out)

	_, err := os.Stat(chart)
	assert.NoError(t, err)
}

func TestSuggest_NoCoOccurrence(t *testing.T) {
	dir := t.TempDir()
	bills := writeFile(t, dir, "DummyBills.csv", "A,B\n1,0\n2,0\n")

	code, _, errOut := execute(t, "suggest", "--sales-path", bills)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "✗ Error: suggest:")
}

func TestConfigInitAndShow(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "salesml.yaml")

	code, out, errOut := execute(t, "config", "init", "--config", cfgPath)
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, cfgPath)

	code, out, errOut = execute(t, "config", "show", "--config", cfgPath)
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "input_path: data/Data1.csv")
	assert.Contains(t, out, "scaling: standard")
}

func TestVersion(t *testing.T) {
	code, out, _ := execute(t, "version")
	assert.Equal(t, 0, code)
	assert.True(t, strings.HasPrefix(out, "salesml dev"))
}

func TestFormatError(t *testing.T) {
	assert.Equal(t, "✗ Error: boom", formatError(fmt.Errorf("boom")))
}
