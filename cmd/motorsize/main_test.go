package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"Motorsize/internal/calc/motor"
	"Motorsize/internal/calc/sizing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSizeJSON(t *testing.T) {
	out, err := run(t, "", "size", "-t", "IM", "--torque", "120", "--json")
	require.NoError(t, err)
	var res motor.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, sizing.IM, res.Topology)
	assert.Equal(t, 120.0, res.Input.MaxTorque)
}

func TestSizeTable(t *testing.T) {
	out, err := run(t, "", "size", "--topology", "x-motor")
	require.NoError(t, err)
	assert.Contains(t, out, "x-motor (x-motor)")
	assert.Contains(t, out, "Ferrite")
	assert.Contains(t, out, "Climate change")
}

func TestSizeRejectsBadInput(t *testing.T) {
	_, err := run(t, "", "size", "-t", "SRM")
	assert.ErrorIs(t, err, sizing.ErrInvalidConfiguration)
	_, err = run(t, "", "size", "--torque", "0")
	assert.ErrorIs(t, err, sizing.ErrInvalidConfiguration)
}

func TestImpactFromStdin(t *testing.T) {
	out, err := run(t, `{"copper_kg":1}`, "impact")
	require.NoError(t, err)
	assert.Contains(t, out, "Climate change")

	_, err = run(t, `{"copper_kg":-1}`, "impact")
	assert.Error(t, err)
}

func TestImportAndReport(t *testing.T) {
	dir := t.TempDir()
	tmpl := filepath.Join(dir, "inputs.xlsx")
	results := filepath.Join(dir, "results.xlsx")
	pdf := filepath.Join(dir, "motor.pdf")

	_, err := run(t, "", "import", "--template", tmpl)
	require.NoError(t, err)

	out, err := run(t, "", "import", tmpl, "-o", results)
	require.NoError(t, err)
	assert.Contains(t, out, "IPM")
	info, err := os.Stat(results)
	require.NoError(t, err)
	assert.NotZero(t, info.Size())

	_, err = run(t, "", "report", "-t", "PMaSynREL", "-o", pdf, "--project", "Drive")
	require.NoError(t, err)
	data, err := os.ReadFile(pdf)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}
