package dashboard

import (
	"github.com/shopspring/decimal"

	"stock-forecast-dashboard/internal/model"
)

// FormatPrice 价格保留4位小数
func FormatPrice(p decimal.Decimal) string {
	return p.StringFixed(4)
}

// FormatPercent 带符号的百分比，保留2位小数，如 "+1.25%"
func FormatPercent(p decimal.Decimal) string {
	if p.Sign() >= 0 {
		return "+" + p.StringFixed(2) + "%"
	}
	return p.StringFixed(2) + "%"
}

// FormatChange 涨跌幅，无前值时为 "-"
func FormatChange(change decimal.NullDecimal) string {
	if !change.Valid {
		return "-"
	}
	return FormatPercent(change.Decimal)
}

// Direction 涨跌方向，用于前端着色
func Direction(change decimal.NullDecimal) string {
	switch {
	case !change.Valid:
		return ""
	case change.Decimal.Sign() >= 0:
		return "positive"
	default:
		return "negative"
	}
}

// LedgerDisplay 表格行的展示文本
type LedgerDisplay struct {
	Date      string `json:"date"`
	Type      string `json:"type"`
	Price     string `json:"price"`
	Change    string `json:"change"`
	Direction string `json:"direction,omitempty"`
}

// DisplayLedger 将表格行转为展示文本
func DisplayLedger(rows []model.LedgerRow) []LedgerDisplay {
	out := make([]LedgerDisplay, len(rows))
	for i, r := range rows {
		typ := "Historical"
		if r.Origin == model.OriginPrediction {
			typ = "Predicted"
		}
		out[i] = LedgerDisplay{
			Date:      r.Date,
			Type:      typ,
			Price:     FormatPrice(r.Price),
			Change:    FormatChange(r.Change),
			Direction: Direction(r.Change),
		}
	}
	return out
}

// SummaryDisplay 价格摘要的展示文本
type SummaryDisplay struct {
	CurrentPrice string `json:"currentPrice"`
	Change       string `json:"change"`
	Percent      string `json:"percent"`
	Direction    string `json:"direction"`
}

// DisplaySummary 价格摘要转为展示文本，如 "+0.0125 (+1.25%)"
func DisplaySummary(s model.PriceSummary) SummaryDisplay {
	direction := "positive"
	if s.Change.Percent.Sign() < 0 {
		direction = "negative"
	}
	change := s.Change.Absolute.StringFixed(4)
	if s.Change.Absolute.Sign() >= 0 {
		change = "+" + change
	}
	return SummaryDisplay{
		CurrentPrice: FormatPrice(s.CurrentPrice),
		Change:       change,
		Percent:      FormatPercent(s.Change.Percent),
		Direction:    direction,
	}
}
