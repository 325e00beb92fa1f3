package model

import "github.com/shopspring/decimal"

// ModelInfo 预测服务中的一个模型及其覆盖的股票
type ModelInfo struct {
	Name         string   `json:"name"`
	Stocks       []string `json:"stocks"`
	TimeStep     int      `json:"timeStep,omitempty"`
	OutputLength int      `json:"outputLength,omitempty"`
	Features     []string `json:"features,omitempty"`
	Status       string   `json:"status,omitempty"`
}

// Instrument 可选股票，归属于第一个列出它的模型
type Instrument struct {
	Name      string `json:"name"`
	ModelName string `json:"modelName"`
}

// HistoricalPoint 历史收盘价
type HistoricalPoint struct {
	Date  string          `json:"date"`
	Close decimal.Decimal `json:"close"`
}

// HistoricalResponse 历史数据响应
type HistoricalResponse struct {
	Stock string            `json:"stock"`
	Data  []HistoricalPoint `json:"data"`
}
