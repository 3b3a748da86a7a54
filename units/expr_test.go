package units

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvalUnitExpr(t *testing.T) {
	reg := Default()

	tests := []struct {
		name      string
		expr      string
		wantScale float64
		wantDims  Dimensionality
	}{
		{name: "bare number", expr: "12/44", wantScale: 12.0 / 44.0, wantDims: Dimensionality{}},
		{name: "scaled unit", expr: "1000 * t", wantScale: 1e9, wantDims: Dimensionality{"mass": 1}},
		{name: "juxtaposition", expr: "t CO2", wantScale: 1e6 * 12.0 / 44.0, wantDims: Dimensionality{"mass": 1, "carbon": 1}},
		{name: "division chain", expr: "Mt CH4 / yr", wantScale: 1e12 / 31557600.0, wantDims: Dimensionality{"mass": 1, "methane": 1, "time": -1}},
		{name: "power", expr: "m^2", wantScale: 1, wantDims: Dimensionality{"length": 2}},
		{name: "negative power", expr: "m^-2", wantScale: 1, wantDims: Dimensionality{"length": -2}},
		{name: "double star power", expr: "m**3", wantScale: 1, wantDims: Dimensionality{"length": 3}},
		{name: "parentheses", expr: "W / (m * m)", wantScale: 1000, wantDims: Dimensionality{"mass": 1, "time": -3}},
		{name: "scientific notation", expr: "1e6 * g", wantScale: 1e6, wantDims: Dimensionality{"mass": 1}},
		{name: "explicit multiply", expr: "g * CH4 / s", wantScale: 1, wantDims: Dimensionality{"mass": 1, "methane": 1, "time": -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := reg.evalUnitExpr(tt.expr)
			require.NoError(t, err)
			assert.InDelta(t, tt.wantScale, q.scale, tt.wantScale*1e-12)
			assert.True(t, tt.wantDims.Equal(q.dims), "want %s, got %s", tt.wantDims, q.dims)
		})
	}
}

func TestEvalUnitExprErrors(t *testing.T) {
	reg := Default()

	tests := []struct {
		name    string
		expr    string
		wantErr error
	}{
		{name: "empty", expr: "   ", wantErr: ErrExpression},
		{name: "unknown name", expr: "wibble", wantErr: ErrUndefinedUnit},
		{name: "unknown in product", expr: "t * wibble", wantErr: ErrUndefinedUnit},
		{name: "dangling operator", expr: "t *", wantErr: ErrExpression},
		{name: "unbalanced paren", expr: "(t * CO2", wantErr: ErrExpression},
		{name: "stray character", expr: "t @ CO2", wantErr: ErrExpression},
		{name: "fractional exponent", expr: "m^2.5", wantErr: ErrExpression},
		{name: "bare minus", expr: "t - s", wantErr: ErrExpression},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := reg.evalUnitExpr(tt.expr)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestEvalUnitExprOffsetHandling(t *testing.T) {
	reg := Default()

	// A bare offset unit keeps its offset.
	q, err := reg.evalUnitExpr("degC")
	require.NoError(t, err)
	assert.InDelta(t, 273.15, q.offset, 1e-12)

	// Arithmetic drops offsets, leaving difference semantics.
	q, err = reg.evalUnitExpr("degC / a")
	require.NoError(t, err)
	assert.Zero(t, q.offset)
}
