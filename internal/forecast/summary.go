package forecast

import "stock-forecast-dashboard/internal/model"

// Summarize 从预测结果中提取当前价格与涨跌信息
func Summarize(instrument string, p model.StockPrediction) model.PriceSummary {
	return model.PriceSummary{
		Instrument:   instrument,
		CurrentPrice: p.CurrentPrice,
		Change: model.PriceChange{
			Absolute: p.PriceChange,
			Percent:  p.PercentChange,
		},
	}
}
