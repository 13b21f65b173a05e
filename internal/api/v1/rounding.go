package v1

import (
	"github.com/wtpceo/dashbord-wiple/internal/calculator"
	"github.com/wtpceo/dashbord-wiple/internal/model"
)

// 百分比只在响应中保留一位小数，内部计算保持全精度

func roundComparisons(rows []model.MonthlyComparison) []model.MonthlyComparison {
	out := make([]model.MonthlyComparison, len(rows))
	for i, r := range rows {
		r.AchievementRate = calculator.RoundPercent(r.AchievementRate)
		r.RenewalRate = calculator.RoundPercent(r.RenewalRate)
		out[i] = r
	}
	return out
}

func roundAESeries(series []model.AEMonthlyPerformance) []model.AEMonthlyPerformance {
	out := make([]model.AEMonthlyPerformance, len(series))
	for i, s := range series {
		points := make([]model.AEMonthPoint, len(s.Points))
		for j, p := range s.Points {
			p.RenewalRate = calculator.RoundPercent(p.RenewalRate)
			points[j] = p
		}
		out[i] = model.AEMonthlyPerformance{Name: s.Name, Points: points}
	}
	return out
}

func roundChannelSeries(series []model.ChannelGrowth) []model.ChannelGrowth {
	out := make([]model.ChannelGrowth, len(series))
	for i, s := range series {
		points := make([]model.ChannelMonthPoint, len(s.Points))
		for j, p := range s.Points {
			p.GrowthRate = calculator.RoundPercent(p.GrowthRate)
			points[j] = p
		}
		out[i] = model.ChannelGrowth{Channel: s.Channel, Points: points}
	}
	return out
}
