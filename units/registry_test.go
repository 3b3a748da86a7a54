package units

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryDefine(t *testing.T) {
	reg := NewRegistry()

	require.NoError(t, reg.Define("C = [carbon]"))
	require.NoError(t, reg.Define("CO2 = 12/44 * C = carbon_dioxide"))

	q, err := reg.Dimensionality("CO2")
	require.NoError(t, err)
	assert.Equal(t, Dimensionality{"carbon": 1}, q)

	alias, err := reg.Dimensionality("carbon_dioxide")
	require.NoError(t, err)
	assert.Equal(t, Dimensionality{"carbon": 1}, alias)

	t.Run("identical redefinition is a no-op", func(t *testing.T) {
		assert.NoError(t, reg.Define("CO2 = 12/44 * C"))
	})

	t.Run("conflicting redefinition fails", func(t *testing.T) {
		err := reg.Define("CO2 = 13/44 * C")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrRedefinition)
	})

	t.Run("missing value fails", func(t *testing.T) {
		err := reg.Define("lonely")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrExpression)
	})

	t.Run("unknown reference fails", func(t *testing.T) {
		err := reg.Define("X = 2 * missingunit")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUndefinedUnit)
	})
}

func TestRegistryIsolation(t *testing.T) {
	bare := NewRegistry()
	assert.False(t, bare.Defined("CH4"), "fresh registry must not know species")
	assert.True(t, bare.Defined("kg"))

	require.NoError(t, bare.Define("Xe133 = [xenon]"))
	assert.True(t, bare.Defined("Xe133"))
	assert.False(t, Default().Defined("Xe133"), "custom units must not leak into the default registry")

	assert.True(t, Default().Defined("CH4"))
}

func TestAddStandardsIdempotent(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.AddStandards())
	require.NoError(t, reg.AddStandards())
	assert.True(t, reg.Defined("CH4"))
}

func TestRegistryLookupNormalization(t *testing.T) {
	reg := Default()

	tests := []struct {
		name string
		unit string
	}{
		{name: "plain symbol", unit: "CH4"},
		{name: "hyphenated", unit: "HFC-134a"},
		{name: "underscored", unit: "metric_ton"},
		{name: "uppercase alias", unit: "HALON1201"},
		{name: "joint uppercase mass", unit: "tHFC4310MEE"},
		{name: "prefixed joint", unit: "GtC"},
		{name: "prefixed species mass", unit: "MtCO2"},
		{name: "spelled out prefix", unit: "gigametric_ton"},
		{name: "whitespace", unit: "  kg  "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, reg.Defined(tt.unit), "expected %q to resolve", tt.unit)
		})
	}

	assert.False(t, reg.Defined("ch4"), "species names are case sensitive")
	assert.False(t, reg.Defined("Junk"))
}

func TestRegistryDimensionality(t *testing.T) {
	reg := Default()

	tests := []struct {
		unit string
		want Dimensionality
	}{
		{unit: "Mt CO2 / yr", want: Dimensionality{"mass": 1, "carbon": 1, "time": -1}},
		{unit: "tCH4", want: Dimensionality{"mass": 1, "methane": 1}},
		{unit: "W / m^2", want: Dimensionality{"mass": 1, "time": -3}},
		{unit: "ppm", want: Dimensionality{"concentrations": 1}},
		{unit: "degF", want: Dimensionality{"temperature": 1}},
	}
	for _, tt := range tests {
		t.Run(tt.unit, func(t *testing.T) {
			got, err := reg.Dimensionality(tt.unit)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}

	_, err := reg.Dimensionality("bogus")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUndefinedUnit)
}

func TestDimensionalityStrings(t *testing.T) {
	d := Dimensionality{"mass": 1, "methane": 1, "time": -1}
	assert.Equal(t, "[mass] * [methane] / [time]", d.String())
	assert.Equal(t, "mass^1*methane^1*time^-1", d.Key())

	assert.Equal(t, "dimensionless", Dimensionality{}.String())
	assert.Equal(t, "1", Dimensionality{}.Key())

	area := Dimensionality{"length": 2}
	assert.Equal(t, "[length]^2", area.String())

	perArea := Dimensionality{"length": -2}
	assert.Equal(t, "1 / [length]^2", perArea.String())
}
