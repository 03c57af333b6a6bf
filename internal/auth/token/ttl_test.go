package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTTL(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
	}{
		{"", 15 * time.Minute},
		{"900", 900 * time.Second},
		{"1", time.Second},
		{"30s", 30 * time.Second},
		{"15m", 15 * time.Minute},
		{"2h", 2 * time.Hour},
		{"7d", 7 * 24 * time.Hour},
		{"15M", 15 * time.Minute},
		{" 10m ", 10 * time.Minute},
	}
	for _, tc := range cases {
		got, err := ParseTTL(tc.in)
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}

func TestParseTTLInvalid(t *testing.T) {
	for _, in := range []string{"abc", "-5", "1.5h", "10w", "m", "0", "0s", "15 m"} {
		_, err := ParseTTL(in)
		assert.Error(t, err, "input %q", in)
	}
}
