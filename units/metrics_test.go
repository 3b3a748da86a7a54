package units

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMetricTable = `Source: unit tests
Species,TESTGWP100
OpenSCM base unit,kg CO2 / kg
CH4,10
N2O,100
`

func newStandardRegistry(t *testing.T) *Registry {
	t.Helper()
	reg := NewRegistry()
	require.NoError(t, reg.AddStandards())
	return reg
}

func TestLoadMetricTable(t *testing.T) {
	reg := newStandardRegistry(t)
	require.NoError(t, reg.LoadMetricTable("test_metrics", strings.NewReader(testMetricTable)))

	c, err := reg.NewConverterWithContext("CH4", "CO2", "TESTGWP100")
	require.NoError(t, err)
	assert.InDelta(t, 10.0, c.ConvertFrom(1), 1e-9)

	// The bundled metrics are unaffected.
	c, err = reg.NewConverterWithContext("CH4", "CO2", "AR4GWP100")
	require.NoError(t, err)
	assert.InDelta(t, 25.0, c.ConvertFrom(1), 1e-9)

	names, err := reg.Contexts()
	require.NoError(t, err)
	assert.Contains(t, names, "TESTGWP100")
}

func TestLoadMetricTableAfterFirstUse(t *testing.T) {
	reg := newStandardRegistry(t)

	// Force the lazy load before registering the extra table.
	_, err := reg.NewConverterWithContext("CH4", "CO2", "AR4GWP100")
	require.NoError(t, err)

	require.NoError(t, reg.LoadMetricTable("test_metrics", strings.NewReader(testMetricTable)))

	c, err := reg.NewConverterWithContext("N2O", "CO2", "TESTGWP100")
	require.NoError(t, err)
	assert.InDelta(t, 100.0, c.ConvertFrom(1), 1e-9)
}

func TestLoadMetricTableOverridesFactors(t *testing.T) {
	reg := newStandardRegistry(t)

	override := `Source: unit tests
Species,AR4GWP100
OpenSCM base unit,kg CO2 / kg
CH4,999
`
	require.NoError(t, reg.LoadMetricTable("override", strings.NewReader(override)))

	c, err := reg.NewConverterWithContext("CH4", "CO2", "AR4GWP100")
	require.NoError(t, err)
	assert.InDelta(t, 999.0, c.ConvertFrom(1), 1e-9)

	// Species the override does not mention keep their bundled factors.
	c, err = reg.NewConverterWithContext("N2O", "CO2", "AR4GWP100")
	require.NoError(t, err)
	assert.InDelta(t, 298.0, c.ConvertFrom(1), 1e-9)
}

func TestLoadMetricTableMalformed(t *testing.T) {
	tests := []struct {
		name  string
		table string
	}{
		{
			name: "non numeric factor",
			table: "Source: x\nSpecies,BAD\nOpenSCM base unit,u\nCH4,abc\n",
		},
		{
			name: "unknown species",
			table: "Source: x\nSpecies,BAD\nOpenSCM base unit,u\nXYZ99,5\n",
		},
		{
			name: "empty species",
			table: "Source: x\nSpecies,BAD\nOpenSCM base unit,u\n,5\n",
		},
		{
			name: "empty column name",
			table: "Source: x\nSpecies, \nOpenSCM base unit,u\nCH4,5\n",
		},
		{
			name:  "too few rows",
			table: "Source: x\nSpecies,BAD\n",
		},
		{
			name:  "missing header",
			table: "just one line",
		},
		{
			name: "ragged row",
			table: "Source: x\nSpecies,BAD\nOpenSCM base unit,u\nCH4,5,6\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := newStandardRegistry(t)
			err := reg.LoadMetricTable("bad_table", strings.NewReader(tt.table))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrContextLoad)
		})
	}
}

func TestResetContexts(t *testing.T) {
	reg := newStandardRegistry(t)

	_, err := reg.NewConverterWithContext("CH4", "C", "CH4_conversions")
	require.NoError(t, err)

	reg.ResetContexts()

	// Contexts are rebuilt transparently on next use.
	c, err := reg.NewConverterWithContext("CH4", "C", "CH4_conversions")
	require.NoError(t, err)
	assert.InDelta(t, 0.75, c.ConvertFrom(1), 1e-9)
}

func TestDisableBuiltinMetrics(t *testing.T) {
	reg := newStandardRegistry(t)
	reg.DisableBuiltinMetrics()

	names, err := reg.Contexts()
	require.NoError(t, err)
	assert.Equal(t, []string{"CH4_conversions", "NOx_conversions"}, names)

	_, err = reg.NewConverterWithContext("CH4", "CO2", "AR4GWP100")
	assert.ErrorIs(t, err, ErrUnknownContext)

	// Registered tables still load.
	require.NoError(t, reg.LoadMetricTable("test_metrics", strings.NewReader(testMetricTable)))
	c, err := reg.NewConverterWithContext("CH4", "CO2", "TESTGWP100")
	require.NoError(t, err)
	assert.InDelta(t, 10.0, c.ConvertFrom(1), 1e-9)
}

func TestDisableBuiltinMetricsAfterLoad(t *testing.T) {
	reg := newStandardRegistry(t)

	_, err := reg.NewConverterWithContext("CH4", "CO2", "AR4GWP100")
	require.NoError(t, err)

	reg.DisableBuiltinMetrics()

	names, err := reg.Contexts()
	require.NoError(t, err)
	assert.Equal(t, []string{"CH4_conversions", "NOx_conversions"}, names)
}

func TestContextsSorted(t *testing.T) {
	reg := newStandardRegistry(t)
	names, err := reg.Contexts()
	require.NoError(t, err)
	assert.Equal(t, []string{
		"AR4GWP100",
		"AR5GWP100",
		"CH4_conversions",
		"NOx_conversions",
		"SARGWP100",
	}, names)
}
