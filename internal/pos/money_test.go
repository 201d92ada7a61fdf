package pos

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"150", 15000},
		{"150.5", 15050},
		{"150.50", 15050},
		{"0.05", 5},
		{".50", 50},
		{"0", 0},
		{" 250.00 ", 25000},
		{"-12.34", -1234},
	}

	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}

func TestParseAmountRejectsBadInput(t *testing.T) {
	for _, in := range []string{"", "abc", "1.234", "1.2.3", "12,50", "1.-5", "1.+5", "--1", "-+1.5", "+1.50"} {
		_, err := ParseAmount(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "250.00", FormatAmount(25000))
	assert.Equal(t, "0.05", FormatAmount(5))
	assert.Equal(t, "-12.34", FormatAmount(-1234))
}

func TestParseFormatRoundTrip(t *testing.T) {
	for _, v := range []int64{0, 1, 99, 100, 15050, 1234567} {
		got, err := ParseAmount(FormatAmount(v))
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}
