package wallet

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToBaseUnits(t *testing.T) {
	tests := []struct {
		amount string
		want   uint64
	}{
		{amount: "1.5", want: 1500000000},
		{amount: "1", want: 1000000000},
		{amount: "0.000000001", want: 1},
		{amount: "0.1", want: 100000000},
		{amount: "123.456789012", want: 123456789012},
		{amount: "5", want: 5000000000},
		// precision beyond 9 places is truncated, not rounded
		{amount: "1.0000000009", want: 1000000000},
		{amount: "0.0000000001", want: 0},
		{amount: "18446744073.709551615", want: 18446744073709551615},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			got, err := ToBaseUnits(decimal.RequireFromString(tt.amount))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToBaseUnits_MatchesScaledValue(t *testing.T) {
	// For amounts with at most 9 decimal places truncation and rounding agree.
	for _, s := range []string{"0.25", "2.000000002", "1000", "42.42", "0.999999999"} {
		amount := decimal.RequireFromString(s)
		got, err := ToBaseUnits(amount)
		require.NoError(t, err)

		want := amount.Mul(decimal.New(1, BaseUnitExponent)).Round(0)
		assert.Equal(t, want.BigInt().Uint64(), got, s)
	}
}

func TestToBaseUnits_OutOfRange(t *testing.T) {
	_, err := ToBaseUnits(decimal.RequireFromString("-1"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")

	_, err = ToBaseUnits(decimal.RequireFromString("18446744073.709551616"))
	require.Error(t, err)
}

func TestToBaseUnits_ExtremeExponents(t *testing.T) {
	tests := []struct {
		amount  string
		want    uint64
		wantErr bool
	}{
		{amount: "1e10000000", wantErr: true},
		{amount: "1e11", wantErr: true},
		{amount: "-1e10000000", wantErr: true},
		{amount: "1e10", want: 10000000000000000000},
		{amount: "1e-10000000", want: 0},
		{amount: "1e-9", want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			start := time.Now()
			got, err := ToBaseUnits(decimal.RequireFromString(tt.amount))
			assert.Less(t, time.Since(start), time.Second)

			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, "amount out of range for base units", err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
