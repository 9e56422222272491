package balance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/the-cash-must-flow/internal/common"
	"github.com/Veraticus/the-cash-must-flow/internal/model"
)

func jan(d int) time.Time {
	return model.Date(2024, time.January, d)
}

func tx(date time.Time, amount model.Milliunits) model.Transaction {
	return model.Transaction{ID: model.DayKey(date), AccountID: "acct", Date: date, Amount: amount}
}

func balances(r *Result) []model.Milliunits {
	out := make([]model.Milliunits, len(r.Buckets))
	for i, b := range r.Buckets {
		out[i] = b.Balance
	}
	return out
}

func TestWalk_ThreeDayExample(t *testing.T) {
	net := NetChangeByDay([]model.Transaction{
		tx(jan(1), 500),
		tx(jan(3), 300),
	})

	result, err := Walk(net, 1000, jan(1), jan(3))
	require.NoError(t, err)

	assert.Equal(t, []model.Milliunits{1500, 1500, 1800}, balances(result))
	assert.Equal(t, int64(4800), result.Total)
	assert.Equal(t, 3, result.Days)
	assert.Equal(t, model.Milliunits(1600), result.Average)
}

func TestAverageDailyBalance_SingleDayWindow(t *testing.T) {
	const starting, amount = model.Milliunits(2500), model.Milliunits(-700)
	history := []model.Transaction{
		tx(jan(1), starting),
		tx(jan(10), amount),
	}

	result, err := AverageDailyBalance(history, jan(10), jan(10))
	require.NoError(t, err)

	assert.Equal(t, starting, result.StartingBalance)
	assert.Equal(t, 1, result.Days)
	assert.Equal(t, starting+amount, result.Average)
}

func TestAverageDailyBalance_NoTransactionsInWindow(t *testing.T) {
	history := []model.Transaction{
		tx(jan(1), 40000),
		tx(jan(2), -15000),
	}

	result, err := AverageDailyBalance(history, jan(10), jan(20))
	require.NoError(t, err)

	assert.Equal(t, 11, result.Days)
	assert.Equal(t, model.Milliunits(25000), result.Average)
	for _, b := range result.Buckets {
		assert.Equal(t, model.Milliunits(25000), b.Balance)
		assert.Zero(t, b.Net)
	}
}

func TestAverageDailyBalance_SameDayTransactionsCountThatDay(t *testing.T) {
	history := []model.Transaction{
		tx(jan(5), 1000),
		tx(jan(5), 2000),
		tx(jan(6), -3000),
	}

	result, err := AverageDailyBalance(history, jan(5), jan(6))
	require.NoError(t, err)

	assert.Equal(t, []model.Milliunits{3000, 0}, balances(result))
	assert.Equal(t, model.Milliunits(1500), result.Average)
}

func TestAverageDailyBalance_InvalidWindow(t *testing.T) {
	_, err := AverageDailyBalance(nil, jan(5), jan(4))
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidWindow)

	var windowErr *common.InvalidWindowError
	require.ErrorAs(t, err, &windowErr)
	assert.Equal(t, jan(5), windowErr.Start)
}

func TestAverageDailyBalance_RoundsToNearestMilliunit(t *testing.T) {
	history := []model.Transaction{tx(jan(3), 1)}

	result, err := AverageDailyBalance(history, jan(1), jan(3))
	require.NoError(t, err)

	// 0 + 0 + 1 over three days
	assert.Equal(t, int64(1), result.Total)
	assert.Equal(t, model.Milliunits(0), result.Average)
}

func TestStartingBalance(t *testing.T) {
	history := []model.Transaction{
		tx(jan(1), 100),
		tx(jan(8), 20), // strictly before the day preceding the window
		tx(jan(9), 3),  // the day preceding the window is not carried
		tx(jan(10), 7), // inside the window
	}

	assert.Equal(t, model.Milliunits(120), StartingBalance(history, jan(10)))
	assert.Zero(t, StartingBalance(nil, jan(10)))
}

func TestNetChangeByDay(t *testing.T) {
	net := NetChangeByDay([]model.Transaction{
		tx(jan(1), 100),
		tx(time.Date(2024, time.January, 1, 18, 30, 0, 0, time.UTC), 50),
		tx(jan(2), -25),
	})

	assert.Equal(t, map[string]model.Milliunits{
		"2024-01-01": 150,
		"2024-01-02": -25,
	}, net)
}
