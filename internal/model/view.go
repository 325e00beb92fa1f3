package model

import "github.com/shopspring/decimal"

// Origin 数据点来源
type Origin string

const (
	OriginHistorical Origin = "historical"
	OriginPrediction Origin = "prediction"
)

// ChartPoint 折线图数据点，Actual 与 Predicted 只会有一个非空
type ChartPoint struct {
	Index     int              `json:"index"`
	Date      string           `json:"date"`
	Actual    *decimal.Decimal `json:"actual,omitempty"`
	Predicted *decimal.Decimal `json:"predicted,omitempty"`
	Origin    Origin           `json:"type"`
}

// LedgerRow 表格行，Change 为相对前一交易日的涨跌幅(%)，无前值时为 null
type LedgerRow struct {
	Date   string              `json:"date"`
	Origin Origin              `json:"type"`
	Price  decimal.Decimal     `json:"price"`
	Change decimal.NullDecimal `json:"change"`
	Delta  decimal.NullDecimal `json:"delta"`
}

// PriceChange 涨跌额与涨跌幅
type PriceChange struct {
	Absolute decimal.Decimal `json:"value"`
	Percent  decimal.Decimal `json:"percent"`
}

// PriceSummary 当前价格及相对最新收盘价的变化
type PriceSummary struct {
	Instrument   string          `json:"instrument"`
	CurrentPrice decimal.Decimal `json:"currentPrice"`
	Change       PriceChange     `json:"priceChange"`
}
