package forecast

import (
	"fmt"

	"stock-forecast-dashboard/internal/model"
)

// trailing 返回最后 window 个历史点，window<=0 表示全部
func trailing(history []model.HistoricalPoint, window int) []model.HistoricalPoint {
	if window <= 0 || len(history) <= window {
		return history
	}
	return history[len(history)-window:]
}

// DayLabel 预测点的日期标签
func DayLabel(day int) string {
	return fmt.Sprintf("Day +%d", day)
}

// MergeTimeline 合并最近 window 个历史点与全部预测点，索引从0连续递增
func MergeTimeline(history []model.HistoricalPoint, window int, predictions []model.ForecastPoint) []model.ChartPoint {
	recent := trailing(history, window)
	points := make([]model.ChartPoint, 0, len(recent)+len(predictions))

	for i, h := range recent {
		actual := h.Close
		points = append(points, model.ChartPoint{
			Index:  i,
			Date:   h.Date,
			Actual: &actual,
			Origin: model.OriginHistorical,
		})
	}

	for i, p := range predictions {
		predicted := p.Price
		points = append(points, model.ChartPoint{
			Index:     len(recent) + i,
			Date:      DayLabel(p.Day),
			Predicted: &predicted,
			Origin:    model.OriginPrediction,
		})
	}

	return points
}
