package loan

import "github.com/shopspring/decimal"

// MaxAmount is the largest value a signed 128-bit amount can hold.
var MaxAmount = decimal.RequireFromString("170141183460469231731687303715884105727")

// ValidAmount accepts positive whole amounts that fit in 128 bits.
func ValidAmount(d decimal.Decimal) bool {
	return d.IsPositive() && d.IsInteger() && d.LessThanOrEqual(MaxAmount)
}

// MaxDurationDays keeps expiry timestamps inside what SQL datetime columns hold.
const MaxDurationDays = 36500

func ValidDuration(days uint32) bool { return days > 0 && days <= MaxDurationDays }
