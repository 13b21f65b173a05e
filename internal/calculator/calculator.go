package calculator

import (
	"math"
	"sort"
	"time"

	"github.com/wtpceo/dashbord-wiple/internal/model"
	"github.com/wtpceo/dashbord-wiple/internal/period"
)

// Indicator 指标定义
type Indicator struct {
	ID    string  `json:"id"`    // 指标ID
	Name  string  `json:"name"`  // 指标名称
	Value float64 `json:"value"` // 指标值
	Unit  string  `json:"unit"`  // 单位 (원、명、%)
}

// IndicatorGroup 指标分组
type IndicatorGroup struct {
	Name       string      `json:"name"`       // 分组名称
	Indicators []Indicator `json:"indicators"` // 指标列表
}

// RevenueSummary 本月收入概览
type RevenueSummary struct {
	NewRevenue       float64 `json:"newRevenue"`
	RenewalRevenue   float64 `json:"renewalRevenue"`
	TotalRevenue     float64 `json:"totalRevenue"`     // 新签 + 续约（实时）
	LastMonthRevenue float64 `json:"lastMonthRevenue"` // 上月基线
	AchievementRate  float64 `json:"achievementRate"`
	GrowthRate       float64 `json:"growthRate"`
}

// AEPerformance AE 周期表现
type AEPerformance struct {
	Name     string `json:"name"`
	Reported bool   `json:"reported"`
	RenewalTotals
	ClientCount int     `json:"clientCount"`
	RenewalRate float64 `json:"renewalRate"`
}

// SalesPerformance 销售周期表现
type SalesPerformance struct {
	Name     string `json:"name"`
	Reported bool   `json:"reported"`
	NewBusinessTotals
}

// ChannelRow 渠道明细行
type ChannelRow struct {
	Channel          model.Channel `json:"channel"`
	NewRevenue       float64       `json:"newRevenue"`
	RenewalRevenue   float64       `json:"renewalRevenue"`
	Revenue          float64       `json:"revenue"`
	LastMonthRevenue float64       `json:"lastMonthRevenue"`
	GrowthRate       float64       `json:"growthRate"`
	NewClients       int           `json:"newClients"`
	RenewedClients   int           `json:"renewedClients"`
	ExpiringClients  int           `json:"expiringClients"`
	RenewalRate      float64       `json:"renewalRate"`
}

// DashboardView 看板视图（每次读取时实时推导）
type DashboardView struct {
	Week          string  `json:"week"`
	Month         string  `json:"month"`
	TargetRevenue float64 `json:"targetRevenue"`

	Revenue RevenueSummary `json:"revenue"`

	WeekRenewal      AETotals    `json:"weekRenewal"`
	WeekRenewalRate  float64     `json:"weekRenewalRate"`
	MonthRenewal     AETotals    `json:"monthRenewal"`
	MonthRenewalRate float64     `json:"monthRenewalRate"`
	WeekNew          SalesTotals `json:"weekNew"`
	MonthNew         SalesTotals `json:"monthNew"`

	AEPerformance    []AEPerformance    `json:"aePerformance"`
	SalesPerformance []SalesPerformance `json:"salesPerformance"`
	Channels         []ChannelRow       `json:"channels"`

	ManagedClients int `json:"managedClients"` // AE 负责客户数之和

	Baselines  Baselines        `json:"baselines"`
	Indicators []IndicatorGroup `json:"indicators"`
}

// Baselines 手工录入的基线（原样回显）
type Baselines struct {
	LastMonthRevenue       model.ChannelBreakdown `json:"lastMonthRevenue"`
	CurrentMonthRevenue    model.ChannelBreakdown `json:"currentMonthRevenue"`
	TotalClients           model.ChannelBreakdown `json:"totalClients"`
	NextMonthExpiring      model.ChannelBreakdown `json:"nextMonthExpiring"`
	CurrentMonthExpiring   model.ChannelBreakdown `json:"currentMonthExpiring"`
	LastMonthRenewal       model.RenewalBaseline  `json:"lastMonthRenewal"`
	CurrentMonthRenewal    model.RenewalBaseline  `json:"currentMonthRenewal"`
	LastMonthNewClients    model.ChannelBreakdown `json:"lastMonthNewClients"`
	CurrentMonthNewClients model.ChannelBreakdown `json:"currentMonthNewClients"`
}

// BuildDashboard 按 now 所在的 ISO 周与自然月推导看板
func BuildDashboard(doc *model.Document, now time.Time) DashboardView {
	return BuildDashboardFor(doc, period.ISOWeek(now), period.CurrentMonth(now))
}

// BuildDashboardFor 按指定周与月推导看板
func BuildDashboardFor(doc *model.Document, week, month string) DashboardView {
	if doc == nil {
		doc = &model.Document{}
	}
	weekSel, monthSel := period.Exact(week), period.SameMonth(month)

	v := DashboardView{
		Week:          week,
		Month:         month,
		TargetRevenue: doc.TargetRevenue,
		WeekRenewal:   AggregateAE(doc.AEData, weekSel),
		MonthRenewal:  AggregateAE(doc.AEData, monthSel),
		WeekNew:       AggregateSales(doc.SalesData, weekSel),
		MonthNew:      AggregateSales(doc.SalesData, monthSel),
		Baselines: Baselines{
			LastMonthRevenue:       doc.LastMonthRevenue,
			CurrentMonthRevenue:    doc.CurrentMonthRevenue,
			TotalClients:           doc.TotalClients,
			NextMonthExpiring:      doc.NextMonthExpiring,
			CurrentMonthExpiring:   doc.CurrentMonthExpiring,
			LastMonthRenewal:       doc.LastMonthRenewal,
			CurrentMonthRenewal:    doc.CurrentMonthRenewal,
			LastMonthNewClients:    doc.LastMonthNewClients,
			CurrentMonthNewClients: doc.CurrentMonthNewClients,
		},
	}
	v.WeekRenewalRate = v.WeekRenewal.RenewalRate()
	v.MonthRenewalRate = v.MonthRenewal.RenewalRate()

	v.Revenue = RevenueSummary{
		NewRevenue:       v.MonthNew.NewRevenue,
		RenewalRevenue:   v.MonthRenewal.RenewalRevenue,
		TotalRevenue:     TotalRevenue(v.MonthNew.NewRevenue, v.MonthRenewal.RenewalRevenue),
		LastMonthRevenue: doc.LastMonthRevenue.Total,
	}
	v.Revenue.AchievementRate = AchievementRate(v.Revenue.TotalRevenue, doc.TargetRevenue)
	v.Revenue.GrowthRate = GrowthRate(v.Revenue.TotalRevenue, v.Revenue.LastMonthRevenue)

	for _, ae := range doc.AEData {
		v.ManagedClients += ae.ClientCount
		t := AEOf(ae, weekSel)
		v.AEPerformance = append(v.AEPerformance, AEPerformance{
			Name:          ae.Name,
			Reported:      t.ReportedCount > 0,
			RenewalTotals: t.RenewalTotals,
			ClientCount:   ae.ClientCount,
			RenewalRate:   t.RenewalRate(),
		})
	}
	sortAEPerformance(v.AEPerformance)

	for _, s := range doc.SalesData {
		t := SalesOf(s, weekSel)
		v.SalesPerformance = append(v.SalesPerformance, SalesPerformance{
			Name:              s.Name,
			Reported:          t.ReportedCount > 0,
			NewBusinessTotals: t.NewBusinessTotals,
		})
	}

	v.Channels = channelRows(doc, v.MonthRenewal, v.MonthNew)
	v.Indicators = indicatorGroups(&v, doc)
	return v
}

// sortAEPerformance 已提交在前，按续约率降序；未提交保持原顺序
func sortAEPerformance(rows []AEPerformance) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Reported != b.Reported {
			return a.Reported
		}
		if !a.Reported {
			return false
		}
		return a.RenewalRate > b.RenewalRate
	})
}

// channelRows 已知渠道按固定顺序输出，未知渠道按标签追加
func channelRows(doc *model.Document, renewal AETotals, newBiz SalesTotals) []ChannelRow {
	channels := model.KnownChannels()
	seen := map[model.Channel]bool{}
	for _, ch := range channels {
		seen[ch] = true
	}
	var extra []model.Channel
	for ch := range renewal.ByChannel {
		if !seen[ch] {
			seen[ch] = true
			extra = append(extra, ch)
		}
	}
	for ch := range newBiz.ByChannel {
		if !seen[ch] {
			seen[ch] = true
			extra = append(extra, ch)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	channels = append(channels, extra...)

	rows := make([]ChannelRow, 0, len(channels))
	for _, ch := range channels {
		row := ChannelRow{
			Channel:          ch,
			LastMonthRevenue: doc.LastMonthRevenue.ValueOf(ch),
		}
		if r, ok := renewal.ByChannel[ch]; ok {
			row.RenewalRevenue = r.RenewalRevenue
			row.RenewedClients = r.RenewedClients
			row.ExpiringClients = r.ExpiringClients
			row.RenewalRate = r.RenewalRate()
		}
		if n, ok := newBiz.ByChannel[ch]; ok {
			row.NewRevenue = n.NewRevenue
			row.NewClients = n.NewClients
		}
		row.Revenue = TotalRevenue(row.NewRevenue, row.RenewalRevenue)
		row.GrowthRate = GrowthRate(row.Revenue, row.LastMonthRevenue)
		rows = append(rows, row)
	}
	return rows
}

func indicatorGroups(v *DashboardView, doc *model.Document) []IndicatorGroup {
	return []IndicatorGroup{
		{
			Name: "매출",
			Indicators: []Indicator{
				{ID: "target_revenue", Name: "목표 매출", Value: doc.TargetRevenue, Unit: "원"},
				{ID: "total_revenue", Name: "이번달 매출", Value: v.Revenue.TotalRevenue, Unit: "원"},
				{ID: "new_revenue", Name: "신규 매출", Value: v.Revenue.NewRevenue, Unit: "원"},
				{ID: "renewal_revenue", Name: "연장 매출", Value: v.Revenue.RenewalRevenue, Unit: "원"},
				{ID: "achievement_rate", Name: "목표 달성률", Value: v.Revenue.AchievementRate, Unit: "%"},
				{ID: "growth_rate", Name: "전월 대비", Value: v.Revenue.GrowthRate, Unit: "%"},
			},
		},
		{
			Name: "광고주",
			Indicators: []Indicator{
				{ID: "total_clients", Name: "총 광고주", Value: doc.TotalClients.Total, Unit: "명"},
				{ID: "managed_clients", Name: "AE 관리 광고주", Value: float64(v.ManagedClients), Unit: "명"},
				{ID: "next_month_expiring", Name: "다음달 종료 예정", Value: doc.NextMonthExpiring.Total, Unit: "명"},
				{ID: "month_new_clients", Name: "이번달 신규", Value: float64(v.MonthNew.NewClients), Unit: "명"},
			},
		},
		{
			Name: "연장",
			Indicators: []Indicator{
				{ID: "week_renewal_rate", Name: "이번주 연장율", Value: v.WeekRenewalRate, Unit: "%"},
				{ID: "month_renewal_rate", Name: "이번달 연장율", Value: v.MonthRenewalRate, Unit: "%"},
				{ID: "month_renewed", Name: "이번달 연장", Value: float64(v.MonthRenewal.RenewedClients), Unit: "명"},
				{ID: "week_reported_ae", Name: "이번주 보고 AE", Value: float64(v.WeekRenewal.ReportedCount), Unit: "명"},
			},
		},
	}
}

// RoundView 返回百分比保留一位小数的副本（仅用于展示层）
func RoundView(v DashboardView) DashboardView {
	out := v
	out.Revenue.AchievementRate = RoundPercent(v.Revenue.AchievementRate)
	out.Revenue.GrowthRate = RoundPercent(v.Revenue.GrowthRate)
	out.WeekRenewalRate = RoundPercent(v.WeekRenewalRate)
	out.MonthRenewalRate = RoundPercent(v.MonthRenewalRate)

	out.AEPerformance = append([]AEPerformance(nil), v.AEPerformance...)
	for i := range out.AEPerformance {
		out.AEPerformance[i].RenewalRate = RoundPercent(out.AEPerformance[i].RenewalRate)
	}
	out.Channels = append([]ChannelRow(nil), v.Channels...)
	for i := range out.Channels {
		out.Channels[i].GrowthRate = RoundPercent(out.Channels[i].GrowthRate)
		out.Channels[i].RenewalRate = RoundPercent(out.Channels[i].RenewalRate)
	}
	out.Indicators = RoundIndicatorGroups(v.Indicators)
	return out
}

// RoundIndicatorGroups 百分比指标保留一位小数，其余取整
func RoundIndicatorGroups(groups []IndicatorGroup) []IndicatorGroup {
	out := make([]IndicatorGroup, len(groups))
	for gi, g := range groups {
		out[gi] = IndicatorGroup{Name: g.Name, Indicators: append([]Indicator(nil), g.Indicators...)}
		for ii := range out[gi].Indicators {
			ind := &out[gi].Indicators[ii]
			if ind.Unit == "%" {
				ind.Value = RoundPercent(ind.Value)
			} else {
				ind.Value = math.Round(ind.Value)
			}
		}
	}
	return out
}
