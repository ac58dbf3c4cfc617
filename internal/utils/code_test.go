package utils

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCode(t *testing.T) {
	code, err := GenerateCode(DefaultCodeLength)
	require.NoError(t, err)
	assert.Len(t, code, DefaultCodeLength)
	for _, r := range code {
		assert.True(t, strings.ContainsRune(CodeAlphabet, r), "unexpected character %q", r)
	}

	_, err = GenerateCode(0)
	assert.Error(t, err)
}

func TestNormalizeCode(t *testing.T) {
	code, err := NormalizeCode("  ab12cd34 ")
	require.NoError(t, err)
	assert.Equal(t, "AB12CD34", code)

	for _, blank := range []string{"", "   ", "\t\n"} {
		_, err := NormalizeCode(blank)
		assert.ErrorIs(t, err, ErrEmptyCode, "input %q", blank)
	}
	for _, bad := range []string{"AB12-CD34", "AB 12", "ÄB12CD34", "NOPE-000"} {
		_, err := NormalizeCode(bad)
		assert.ErrorIs(t, err, ErrInvalidCode, "input %q", bad)
	}
}

func TestParseReward(t *testing.T) {
	valid := []struct {
		in   interface{}
		want int64
	}{
		{float64(100), 100},
		{100.0, 100},
		{"250", 250},
		{" 7 ", 7},
		{json.Number("42"), 42},
		{int64(1), 1},
	}
	for _, tc := range valid {
		got, err := ParseReward(tc.in)
		require.NoError(t, err, "input %#v", tc.in)
		assert.Equal(t, tc.want, got)
	}

	invalid := []interface{}{
		float64(-5), "-5", "abc", "", float64(0), 2.5, "2.5",
		nil, true, []interface{}{1}, math.NaN(), math.Inf(1), float64(1 << 40),
	}
	for _, in := range invalid {
		_, err := ParseReward(in)
		assert.ErrorIs(t, err, ErrInvalidReward, "input %#v", in)
	}
}
