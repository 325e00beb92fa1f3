package forecast

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidInput 基准价格非正数
var ErrInvalidInput = errors.New("invalid input")

var hundred = decimal.NewFromInt(100)

// PercentChange 计算 (price-base)/base*100
func PercentChange(price, base decimal.Decimal) (decimal.Decimal, error) {
	if base.Sign() <= 0 {
		return decimal.Zero, fmt.Errorf("%w: base price %s must be positive", ErrInvalidInput, base)
	}
	return price.Sub(base).Div(base).Mul(hundred), nil
}
