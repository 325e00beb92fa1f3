package model

import "github.com/shopspring/decimal"

// ForecastPoint 预测价格，Day 为距今天数（从1开始）
type ForecastPoint struct {
	Day   int             `json:"day"`
	Price decimal.Decimal `json:"price"`
}

// PredictRequest 预测请求
type PredictRequest struct {
	ModelName string   `json:"modelName"`
	Stocks    []string `json:"stocks"`
	Days      int      `json:"days"`
}

// StockPrediction 单只股票的预测结果
type StockPrediction struct {
	Stock         string          `json:"stock"`
	CurrentPrice  decimal.Decimal `json:"currentPrice"`
	PriceChange   decimal.Decimal `json:"priceChange"`
	PercentChange decimal.Decimal `json:"percentChange"`
	Predictions   []ForecastPoint `json:"predictions"`
}

// PredictResponse 预测响应
type PredictResponse struct {
	ModelName   string            `json:"modelName"`
	Predictions []StockPrediction `json:"predictions"`
	Timestamp   string            `json:"timestamp,omitempty"`
	ModelInfo   map[string]any    `json:"modelInfo,omitempty"`
}

// ForecastCycle 同一次拉取得到的历史数据与预测结果，二者总是成对使用
type ForecastCycle struct {
	History    []HistoricalPoint `json:"history"`
	Prediction StockPrediction   `json:"prediction"`
}
