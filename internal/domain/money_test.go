package domain

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAmount(t *testing.T) {
	a, err := NewAmount(500)
	require.NoError(t, err)
	assert.Equal(t, Amount(500), a)

	_, err = NewAmount(-1)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestAmount_Sub(t *testing.T) {
	cases := []struct {
		name    string
		a, b    Amount
		want    Amount
		wantErr error
	}{
		{name: "positive result", a: 500, b: 100, want: 400},
		{name: "zero result", a: 100, b: 100, want: 0},
		{name: "underflow", a: 5, b: 6, wantErr: ErrInvalidArgument},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := c.a.Sub(c.b)
			if c.wantErr != nil {
				require.ErrorIs(t, err, c.wantErr)
				require.ErrorIs(t, err, ErrAmountUnderflow)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, c.want, got)
		})
	}
}

func TestAmount_Add(t *testing.T) {
	got, err := Amount(10).Add(15)
	require.NoError(t, err)
	assert.Equal(t, Amount(25), got)

	_, err = Amount(math.MaxInt64).Add(1)
	require.ErrorIs(t, err, ErrAmountOverflow)
}

func TestMerchant_PointsEarned(t *testing.T) {
	cases := []struct {
		name    string
		pct     string
		net     Amount
		want    Amount
		wantErr error
	}{
		{name: "two percent of 500", pct: "0.02", net: 500, want: 10},
		{name: "truncates fraction", pct: "0.05", net: 99, want: 4},
		{name: "exact decimal multiplication", pct: "0.29", net: 100, want: 29},
		{name: "zero percentage", pct: "0", net: 1000, want: 0},
		{name: "more than hundred percent", pct: "1.5", net: 10, want: 15},
		{name: "zero net", pct: "0.1", net: 0, want: 0},
		{name: "negative percentage", pct: "-0.1", net: 100, wantErr: ErrInvalidArgument},
		{name: "overflow", pct: "2", net: math.MaxInt64, wantErr: ErrAmountOverflow},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			m := Merchant{PointsPercentage: decimal.RequireFromString(c.pct)}
			got, err := m.PointsEarned(c.net)
			if c.wantErr != nil {
				require.ErrorIs(t, err, c.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, c.want, got)
		})
	}
}

func TestPage_Offset(t *testing.T) {
	p := Page{Size: 8, Number: 2}
	offset, err := p.Offset()
	require.NoError(t, err)
	assert.Equal(t, uint(16), offset)
	assert.Equal(t, uint(8), p.Limit())

	offset, err = Page{Size: 8}.Offset()
	require.NoError(t, err)
	assert.Equal(t, uint(0), offset)
}

func TestPage_OffsetOutOfRange(t *testing.T) {
	cases := []Page{
		{Size: 100, Number: 1 << 62},
		{Size: 2, Number: math.MaxInt64/2 + 1},
		{Size: math.MaxUint, Number: math.MaxUint},
	}
	for _, p := range cases {
		_, err := p.Offset()
		require.ErrorIs(t, err, ErrPageOutOfRange)
		require.ErrorIs(t, err, ErrInvalidArgument)
	}

	offset, err := Page{Size: 1, Number: math.MaxInt64}.Offset()
	require.NoError(t, err)
	assert.Equal(t, uint(math.MaxInt64), offset)
}

func TestReasonError(t *testing.T) {
	cause := ErrUnknown
	err := NewStorageError("saving transaction", cause)

	require.ErrorIs(t, err, ErrStorage)
	require.ErrorIs(t, err, ErrUnknown)
	assert.Equal(t, "saving transaction: unknown error", err.Error())

	// уже типизированная ошибка не оборачивается повторно.
	assert.Same(t, ErrInsufficientPoints, NewStorageError("saving", ErrInsufficientPoints))
}
