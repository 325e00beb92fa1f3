package forecast

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"stock-forecast-dashboard/internal/model"
)

// BuildLedger 生成表格行：预测行按天数倒序在前，历史行按日期倒序在后。
// 每行的涨跌幅相对其时间上的前一个点；第1天预测以最新收盘价为基准，
// 窗口内最早的历史行没有前值。基准价格非正的行会被剔除，
// 返回的错误包装了 ErrInvalidInput。
func BuildLedger(history []model.HistoricalPoint, window int, predictions []model.ForecastPoint) ([]model.LedgerRow, error) {
	recent := trailing(history, window)
	rows := make([]model.LedgerRow, 0, len(predictions)+len(recent))
	var errs []error

	ordered := make([]model.ForecastPoint, len(predictions))
	copy(ordered, predictions)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Day < ordered[j].Day })

	var lastClose *decimal.Decimal
	if len(history) > 0 {
		lastClose = &history[len(history)-1].Close
	}

	for i := len(ordered) - 1; i >= 0; i-- {
		p := ordered[i]
		base := lastClose
		if i > 0 {
			base = &ordered[i-1].Price
		}
		row, err := ledgerRow(DayLabel(p.Day), model.OriginPrediction, p.Price, base)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		rows = append(rows, row)
	}

	for i := len(recent) - 1; i >= 0; i-- {
		h := recent[i]
		var base *decimal.Decimal
		if i > 0 {
			base = &recent[i-1].Close
		}
		row, err := ledgerRow(h.Date, model.OriginHistorical, h.Close, base)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		rows = append(rows, row)
	}

	return rows, errors.Join(errs...)
}

func ledgerRow(date string, origin model.Origin, price decimal.Decimal, base *decimal.Decimal) (model.LedgerRow, error) {
	row := model.LedgerRow{
		Date:   date,
		Origin: origin,
		Price:  price,
	}
	if base == nil {
		return row, nil
	}

	pct, err := PercentChange(price, *base)
	if err != nil {
		return model.LedgerRow{}, fmt.Errorf("%s: %w", date, err)
	}
	row.Change = decimal.NewNullDecimal(pct)
	row.Delta = decimal.NewNullDecimal(price.Sub(*base))
	return row, nil
}
