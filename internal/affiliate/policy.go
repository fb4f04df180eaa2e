package affiliate

import "github.com/shopspring/decimal"

const SettingCommissionRate = "default_commission_rate"

// DefaultCommissionRate is the hard-coded fallback when the settings row is
// absent or unparsable.
var DefaultCommissionRate = decimal.RequireFromString("0.10")

// ParseRate parses a stored rate value. A rate must be a decimal in [0, 1];
// anything else reports false and the caller falls back to the default.
func ParseRate(raw string) (decimal.Decimal, bool) {
	rate, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, false
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.Decimal{}, false
	}
	return rate, true
}
