package balance

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/the-cash-must-flow/internal/common"
	"github.com/Veraticus/the-cash-must-flow/internal/model"
)

// Result is an average daily balance over a window of days.
type Result struct {
	Start           time.Time
	End             time.Time
	Buckets         []model.DayBucket // one per day of the window
	StartingBalance model.Milliunits
	Average         model.Milliunits // rounded to the nearest milliunit
	Total           int64            // sum of end-of-day balances
	Days            int
}

// StartingBalance sums every transaction dated strictly before the day
// preceding start.
func StartingBalance(transactions []model.Transaction, start time.Time) model.Milliunits {
	cutoff := model.Day(start).AddDate(0, 0, -1)

	var balance model.Milliunits
	for _, tx := range transactions {
		if model.Day(tx.Date).Before(cutoff) {
			balance += tx.Amount
		}
	}
	return balance
}

// NetChangeByDay sums transaction amounts per ISO date.
func NetChangeByDay(transactions []model.Transaction) map[string]model.Milliunits {
	net := make(map[string]model.Milliunits)
	for _, tx := range transactions {
		net[tx.DayKey()] += tx.Amount
	}
	return net
}

// Walk steps through every day from start to end inclusive. Each day's net
// change lands before that day's balance is counted.
func Walk(net map[string]model.Milliunits, starting model.Milliunits, start, end time.Time) (*Result, error) {
	start, end = model.Day(start), model.Day(end)
	if start.After(end) {
		return nil, &common.InvalidWindowError{Start: start, End: end}
	}

	result := &Result{
		Start:           start,
		End:             end,
		StartingBalance: starting,
	}

	current := starting
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		change := net[model.DayKey(day)]
		current += change

		result.Buckets = append(result.Buckets, model.DayBucket{
			Date:    day,
			Net:     change,
			Balance: current,
		})
		result.Total += int64(current)
		result.Days++
	}

	if result.Days == 0 {
		return nil, &common.DivisionByZeroError{What: "statement window balance"}
	}

	result.Average = roundedAverage(result.Total, result.Days)

	return result, nil
}

// AverageDailyBalance computes the average daily balance of an account over
// [start, end] from its full transaction history.
func AverageDailyBalance(transactions []model.Transaction, start, end time.Time) (*Result, error) {
	return Walk(NetChangeByDay(transactions), StartingBalance(transactions, start), start, end)
}

func roundedAverage(total int64, days int) model.Milliunits {
	avg := decimal.NewFromInt(total).Div(decimal.NewFromInt(int64(days)))
	return model.Milliunits(avg.Round(0).IntPart())
}
