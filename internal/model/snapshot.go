package model

// Snapshot 月度快照（每月至多一份，同月覆盖）
type Snapshot struct {
	ID           string   `json:"id"` // "YYYY-MM"
	Year         int      `json:"year"`
	Month        int      `json:"month"`
	SnapshotDate string   `json:"snapshotDate"` // RFC3339
	Data         Document `json:"data"`
}

// MonthlyComparison 月度对比行（由快照实时推导，不落库）
type MonthlyComparison struct {
	Month           string  `json:"month"`
	TargetRevenue   float64 `json:"targetRevenue"`
	ActualRevenue   float64 `json:"actualRevenue"`
	AchievementRate float64 `json:"achievementRate"`
	NewRevenue      float64 `json:"newRevenue"`
	RenewalRevenue  float64 `json:"renewalRevenue"`
	TotalClients    int     `json:"totalClients"`
	NewClients      int     `json:"newClients"`
	RenewedClients  int     `json:"renewedClients"`
	RenewalRate     float64 `json:"renewalRate"`
}

// AEMonthPoint AE 单月表现
type AEMonthPoint struct {
	Month          string  `json:"month"`
	ClientCount    int     `json:"clientCount"`
	RenewalRevenue float64 `json:"renewalRevenue"`
	RenewalRate    float64 `json:"renewalRate"`
}

// AEMonthlyPerformance AE 月度表现序列
type AEMonthlyPerformance struct {
	Name   string         `json:"aeName"`
	Points []AEMonthPoint `json:"monthlyData"`
}

// SalesMonthPoint 销售单月表现
type SalesMonthPoint struct {
	Month      string  `json:"month"`
	NewClients int     `json:"newClients"`
	NewRevenue float64 `json:"newRevenue"`
}

// SalesMonthlyPerformance 销售月度表现序列
type SalesMonthlyPerformance struct {
	Name   string            `json:"salesName"`
	Points []SalesMonthPoint `json:"monthlyData"`
}

// ChannelMonthPoint 渠道单月数据
type ChannelMonthPoint struct {
	Month      string  `json:"month"`
	Revenue    float64 `json:"revenue"`
	Clients    int     `json:"clients"`
	GrowthRate float64 `json:"growthRate"` // 环比
}

// ChannelGrowth 渠道月度增长序列
type ChannelGrowth struct {
	Channel Channel             `json:"channel"`
	Points  []ChannelMonthPoint `json:"monthlyData"`
}
