package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestValidPrice(t *testing.T) {
	cases := map[string]bool{
		"0":            true,
		"12.50":        true,
		"99999999.99":  true,
		"0.005":        false,
		"12.501":       false,
		"-0.01":        false,
		"100000000.00": false,
	}
	for in, want := range cases {
		require.Equal(t, want, ValidPrice(decimal.RequireFromString(in)), in)
	}
}
