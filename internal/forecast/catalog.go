// Package forecast 将历史价格与预测结果整理为图表和表格所需的数据结构。
// 包内函数均为纯函数，不做任何 I/O。
package forecast

import "stock-forecast-dashboard/internal/model"

// BuildCatalog 展开模型列表为去重后的股票列表，同名股票归属第一个列出它的模型
func BuildCatalog(models []model.ModelInfo) []model.Instrument {
	seen := make(map[string]bool)
	result := make([]model.Instrument, 0)
	for _, m := range models {
		for _, stock := range m.Stocks {
			if seen[stock] {
				continue
			}
			seen[stock] = true
			result = append(result, model.Instrument{
				Name:      stock,
				ModelName: m.Name,
			})
		}
	}
	return result
}
