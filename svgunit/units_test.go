package svgunit

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLength(t *testing.T) {
	tests := map[string]Length{
		"12":     {12, UnitNone},
		"12px":   {12, UnitPx},
		" -10% ": {-10, UnitPercent},
		"120%":   {120, UnitPercent},
		"1.5em":  {1.5, UnitEm},
		"2ex":    {2, UnitEx},
		"3pt":    {3, UnitPt},
		"1pc":    {1, UnitPc},
		".5in":   {0.5, UnitIn},
		"10mm":   {10, UnitMm},
		"1cm":    {1, UnitCm},
		"1e2PX":  {100, UnitPx},
		"+4":     {4, UnitNone},
	}
	for input, exp := range tests {
		got, err := ParseLength(input)
		require.NoError(t, err, input)
		assert.Equal(t, exp.Unit, got.Unit, input)
		assert.InDelta(t, exp.Value, got.Value, 1e-9, input)
	}
}

func TestParseLengthInvalid(t *testing.T) {
	for _, input := range []string{"", "px", "12furlongs", "10 px", "1e", "%", "1e400", "-1e400px"} {
		_, err := ParseLength(input)
		assert.True(t, errors.Is(err, ErrInvalidUnit), "%q: %v", input, err)
	}
}

func TestAbsoluteTable(t *testing.T) {
	// no reference frame is needed for absolute units
	var zero Frame
	tests := []struct {
		l   Length
		exp float64
	}{
		{Px(10), 10},
		{Number(10), 10},
		{Length{1, UnitIn}, 96},
		{Length{72, UnitPt}, 96},
		{Length{6, UnitPc}, 96},
		{Length{2.54, UnitCm}, 96},
		{Length{25.4, UnitMm}, 96},
	}
	for _, tt := range tests {
		got, err := tt.l.Resolve(Horizontal, zero)
		require.NoError(t, err)
		assert.InDelta(t, tt.exp, got, 1e-9, tt.l.String())
	}
}

func TestPercentIsLinear(t *testing.T) {
	frame := Frame{Width: 300, Height: 200}
	diag := math.Sqrt((300*300 + 200*200) / 2.)
	for _, v := range []float64{-10, 0, 12.5, 50, 100, 120} {
		for axis, ref := range map[Axis]float64{Horizontal: 300, Vertical: 200, Diagonal: diag} {
			got, err := Percent(v).Resolve(axis, frame)
			require.NoError(t, err)
			assert.InDelta(t, v/100*ref, got, 1e-9, "%g%% on %s", v, axis)
		}
	}
}

func TestFontRelative(t *testing.T) {
	got, err := Length{2, UnitEm}.Resolve(Vertical, Frame{FontSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 20., got)

	got, err = Length{2, UnitEx}.Resolve(Vertical, Frame{})
	require.NoError(t, err)
	assert.Equal(t, DefaultFontSize, got)
}

func TestResolveInvalidTag(t *testing.T) {
	_, err := Length{1, Unit(42)}.Resolve(Horizontal, Frame{})
	assert.ErrorIs(t, err, ErrInvalidUnit)
}

func TestFractionAndString(t *testing.T) {
	f, err := Percent(-10).Fraction()
	require.NoError(t, err)
	assert.Equal(t, -0.1, f)
	f, err = Number(0.25).Fraction()
	require.NoError(t, err)
	assert.Equal(t, 0.25, f)

	assert.Equal(t, "-10%", Percent(-10).String())
	assert.Equal(t, "12px", Px(12).String())
	assert.Equal(t, "3", Number(3).String())
}

func TestParseNumbers(t *testing.T) {
	nbs, err := ParseNumbers(" 0,0 10 -5.5,1e2\n3")
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 10, -5.5, 100, 3}, nbs)

	nbs, err = ParseNumbers("")
	require.NoError(t, err)
	assert.Empty(t, nbs)

	_, err = ParseNumbers("1 2 x")
	assert.ErrorIs(t, err, ErrInvalidNumber)

	_, err = ParseNumbers("0 0 1e400 1")
	assert.ErrorIs(t, err, ErrInvalidNumber)
}
