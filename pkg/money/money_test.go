package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRoundHalfUp(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"29.99":   "29.99",
		"10.005":  "10.01",
		"10.004":  "10",
		"0":       "0",
		"1.995":   "2",
		"1234.56": "1234.56",
	}
	for in, want := range cases {
		v := decimal.RequireFromString(in)
		assert.True(t, RoundHalfUp(v).Equal(decimal.RequireFromString(want)), "round %s", in)
	}
}

func TestCentsRoundTrip(t *testing.T) {
	t.Parallel()

	v := decimal.RequireFromString("59.98")
	assert.Equal(t, int64(5998), ToCents(v))
	assert.True(t, FromCents(5998).Equal(v))
}
