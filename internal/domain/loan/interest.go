package loan

import (
	"time"

	"github.com/shopspring/decimal"
)

const bpsDenominator = 10000

// ElapsedDays counts whole days since creation, clamped to [0, DurationDays].
func ElapsedDays(l *Loan, at time.Time) int64 {
	secs := at.Unix() - l.CreatedAt.Unix()
	if secs <= 0 {
		return 0
	}
	days := secs / SecondsPerDay
	if days > int64(l.DurationDays) {
		return int64(l.DurationDays)
	}
	return days
}

// CalculateInterest returns simple interest accrued at `at`:
// principal * bps * elapsed / (10000 * duration), floored. Accrual stops at term end.
func CalculateInterest(l *Loan, at time.Time) decimal.Decimal {
	if l.DurationDays == 0 || l.InterestRateBps == 0 {
		return decimal.Zero
	}
	elapsed := ElapsedDays(l, at)
	if elapsed == 0 {
		return decimal.Zero
	}
	num := l.Principal.
		Mul(decimal.NewFromInt(int64(l.InterestRateBps))).
		Mul(decimal.NewFromInt(elapsed))
	den := decimal.NewFromInt(bpsDenominator * int64(l.DurationDays))
	q, _ := num.QuoRem(den, 0)
	return q
}
