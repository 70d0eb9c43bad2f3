package encode

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noir-xpath/testgen/xpath"
)

func TestParseInteger(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"42", "42"},
		{"-17", "-17"},
		{`xs:integer("12")`, "12"},
		{"xs:integer('-5')", "-5"},
		{"xs:integer(7)", "7"},
		{"99999999999999999999", "99999999999999999999"},
	}
	for _, tc := range tests {
		t.Run(tc.text, func(t *testing.T) {
			got, err := ParseInteger(tc.text)
			require.NoError(t, err)
			want, _ := new(big.Int).SetString(tc.want, 10)
			assert.Zero(t, want.Cmp(got))
		})
	}

	for _, bad := range []string{"", "abc", "1.5", "xs:integer()"} {
		t.Run("invalid_"+bad, func(t *testing.T) {
			_, err := ParseInteger(bad)
			assert.Error(t, err)
		})
	}
}

func TestParseBoolean(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"true", true},
		{"False", false},
		{"true()", true},
		{"fn:false()", false},
		{"xs:boolean('true')", true},
		{"xs:boolean(\"0\")", false},
	}
	for _, tc := range tests {
		t.Run(tc.text, func(t *testing.T) {
			got, err := ParseBoolean(tc.text)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err := ParseBoolean("maybe")
	assert.Error(t, err)
}

func TestParseFloat(t *testing.T) {
	got, err := ParseFloat("1.5")
	require.NoError(t, err)
	assert.Equal(t, 1.5, got)

	got, err = ParseFloat("xs:float('-2.5E1')")
	require.NoError(t, err)
	assert.Equal(t, -25.0, got)

	got, err = ParseFloat("NaN")
	require.NoError(t, err)
	assert.True(t, math.IsNaN(got))

	got, err = ParseFloat("-INF")
	require.NoError(t, err)
	assert.True(t, math.IsInf(got, -1))

	_, err = ParseFloat("zero")
	assert.Error(t, err)
}

func TestBitPatterns(t *testing.T) {
	assert.Equal(t, uint32(0x3fc00000), FloatBits(1.5))
	assert.Equal(t, uint32(0x80000000), FloatBits(math.Copysign(0, -1)))
	assert.Equal(t, uint64(0x3ff8000000000000), DoubleBits(1.5))
	assert.Equal(t, uint64(0x7ff0000000000000), DoubleBits(math.Inf(1)))
}

func TestInt64(t *testing.T) {
	v, err := Int64(big.NewInt(-9000))
	require.NoError(t, err)
	assert.Equal(t, int64(-9000), v)

	max := new(big.Int).SetUint64(math.MaxInt64)
	v, err = Int64(max)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), v)

	over := new(big.Int).Add(max, big.NewInt(1))
	_, err = Int64(over)
	assert.Error(t, err)
}

func TestInt8(t *testing.T) {
	v, err := Int8(big.NewInt(127))
	require.NoError(t, err)
	assert.Equal(t, int64(127), v)

	_, err = Int8(big.NewInt(128))
	assert.Error(t, err)
	_, err = Int8(big.NewInt(-129))
	assert.Error(t, err)
}

func TestDatetimeEpoch(t *testing.T) {
	dt, err := xpath.ParseDateTime("1999-05-31T13:20:00-05:00")
	require.NoError(t, err)
	micros, tz, err := DatetimeEpoch(dt)
	require.NoError(t, err)
	assert.Equal(t, int64(928174800000000), micros)
	assert.Equal(t, -300, tz)

	dt, err = xpath.ParseDateTime("1969-12-31T23:59:59Z")
	require.NoError(t, err)
	_, _, err = DatetimeEpoch(dt)
	assert.Error(t, err)
}
