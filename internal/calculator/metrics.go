package calculator

import "math"

// SafeDiv 除法，分母为 0 或结果非有限数时返回 0
func SafeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	v := a / b
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// RenewalRate 续约率 = 续约数 / 到期数 × 100
func RenewalRate(renewed, expiring int) float64 {
	if expiring <= 0 {
		return 0
	}
	return SafeDiv(float64(renewed), float64(expiring)) * 100
}

// AchievementRate 目标达成率 = 实际 / 目标 × 100
func AchievementRate(actual, target float64) float64 {
	if target <= 0 {
		return 0
	}
	return SafeDiv(actual, target) * 100
}

// GrowthRate 环比 = (本期 - 上期) / 上期 × 100，保留符号
func GrowthRate(current, previous float64) float64 {
	return SafeDiv(current-previous, previous) * 100
}

// TotalRevenue 总收入 = 新签 + 续约
func TotalRevenue(newRevenue, renewalRevenue float64) float64 {
	return newRevenue + renewalRevenue
}

// RoundPercent 百分比保留一位小数（仅用于展示）
func RoundPercent(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Round(v*10) / 10
}
