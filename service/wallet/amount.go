package wallet

import (
	"errors"

	"github.com/shopspring/decimal"
)

// BaseUnitExponent is the number of decimal places between a display unit and
// its smallest on-chain unit (1 SOL = 10^9 lamports).
const BaseUnitExponent = 9

// maxBaseUnitDigits is the number of decimal digits in math.MaxUint64.
const maxBaseUnitDigits = 20

var errAmountRange = errors.New("amount out of range for base units")

// ToBaseUnits converts a display amount into integer base units, truncating
// any precision beyond BaseUnitExponent. It does not check the sign; values
// that do not fit in a uint64 (including negatives) are an error.
//
// The magnitude is bounded from the coefficient and exponent before any
// rescaling, so an input like 1e10000000 is rejected without expanding it.
func ToBaseUnits(amount decimal.Decimal) (uint64, error) {
	if amount.IsZero() {
		return 0, nil
	}

	// integer digits of amount × 10^9
	digits := amount.NumDigits() + int(amount.Exponent()) + BaseUnitExponent
	if digits > maxBaseUnitDigits {
		return 0, errAmountRange
	}
	if digits <= 0 {
		if amount.IsNegative() {
			return 0, errAmountRange
		}
		return 0, nil
	}

	units := amount.Shift(BaseUnitExponent).Truncate(0).BigInt()
	if !units.IsUint64() {
		return 0, errAmountRange
	}
	return units.Uint64(), nil
}
