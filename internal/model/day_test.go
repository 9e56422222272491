package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		a, b time.Time
		name string
		want int
	}{
		{name: "same day", a: Date(2024, 1, 1), b: Date(2024, 1, 1), want: 0},
		{name: "forward", a: Date(2024, 1, 1), b: Date(2024, 1, 3), want: 2},
		{name: "backward", a: Date(2024, 1, 3), b: Date(2024, 1, 1), want: -2},
		{name: "leap year february", a: Date(2024, 2, 28), b: Date(2024, 3, 1), want: 2},
		{name: "ignores time of day", a: time.Date(2024, 1, 1, 23, 0, 0, 0, time.UTC), b: Date(2024, 1, 2), want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DaysBetween(tt.a, tt.b))
		})
	}
}

func TestParseDay(t *testing.T) {
	d, err := ParseDay("2024-03-15")
	require.NoError(t, err)
	assert.Equal(t, Date(2024, time.March, 15), d)
	assert.Equal(t, "2024-03-15", DayKey(d))

	_, err = ParseDay("03/15/2024")
	assert.Error(t, err)
}

func TestParseAccountType(t *testing.T) {
	assert.Equal(t, AccountTypeChecking, ParseAccountType("checking"))
	assert.Equal(t, AccountTypeCash, ParseAccountType("cash"))
	assert.Equal(t, AccountTypeCreditCard, ParseAccountType("creditCard"))
	assert.Equal(t, AccountTypeOther, ParseAccountType("savings"))
	assert.Equal(t, AccountTypeOther, ParseAccountType("lineOfCredit"))
}

func TestAccountType_PaysImmediately(t *testing.T) {
	assert.True(t, AccountType("").PaysImmediately())
	assert.True(t, AccountTypeChecking.PaysImmediately())
	assert.True(t, AccountTypeCash.PaysImmediately())
	assert.False(t, AccountTypeCreditCard.PaysImmediately())
	assert.False(t, AccountTypeOther.PaysImmediately())
	assert.Equal(t, "none", AccountType("").String())
}
