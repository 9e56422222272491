package currency

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/the-cash-must-flow/internal/model"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		want string
		in   model.Milliunits
	}{
		{in: 0, want: "$0.00"},
		{in: 100000, want: "$100.00"},
		{in: 549880, want: "$549.88"},
		{in: 1234567890, want: "$1,234,567.89"},
		{in: -2500, want: "-$2.50"},
		{in: 5, want: "$0.01"},
		{in: 4, want: "$0.00"},
		{in: 11000000, want: "$11,000.00"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.in))
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    model.Milliunits
		wantErr bool
	}{
		{in: "$100.00", want: 100000},
		{in: "$1,234,567.89", want: 1234567890},
		{in: "-$2.50", want: -2500},
		{in: "($2.50)", want: -2500},
		{in: "11000", want: 11000000},
		{in: " 0.125 ", want: 125},
		{in: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatParseRoundTrip(t *testing.T) {
	// Whole cents survive exactly; anything finer is lost to two decimals.
	for _, m := range []model.Milliunits{0, 10, 990, 100000, -123450, 987654320} {
		got, err := Parse(Format(m))
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}

	got, err := Parse(Format(1234))
	require.NoError(t, err)
	assert.Equal(t, model.Milliunits(1230), got)
}

func TestFromUnits(t *testing.T) {
	assert.Equal(t, model.Milliunits(11000000), FromUnits(11000.0))
	assert.Equal(t, model.Milliunits(1235), FromUnits(1.2345))
	assert.Equal(t, model.Milliunits(-500), FromUnits(-0.5))
	assert.Equal(t, "1.5", Units(1500).String())
}
