package history

import (
	"sort"

	"github.com/wtpceo/dashbord-wiple/internal/calculator"
	"github.com/wtpceo/dashbord-wiple/internal/model"
	"github.com/wtpceo/dashbord-wiple/internal/period"
	"github.com/wtpceo/dashbord-wiple/internal/store"
)

// BuildComparisonSeries 每份快照一行对比数据，顺序与入参一致
// 收入由快照当月报告实时汇总；当月无报告时客户数类字段回落到基线
func BuildComparisonSeries(snaps []model.Snapshot) []model.MonthlyComparison {
	rows := make([]model.MonthlyComparison, 0, len(snaps))
	for i := range snaps {
		rows = append(rows, Compare(&snaps[i]))
	}
	return rows
}

// Compare 单份快照的对比行
func Compare(snap *model.Snapshot) model.MonthlyComparison {
	doc := &snap.Data
	sel := period.SameMonth(snap.ID)
	ae := calculator.AggregateAE(doc.AEData, sel)
	sales := calculator.AggregateSales(doc.SalesData, sel)

	row := model.MonthlyComparison{
		Month:          snap.ID,
		TargetRevenue:  doc.TargetRevenue,
		NewRevenue:     sales.NewRevenue,
		RenewalRevenue: ae.RenewalRevenue,
		ActualRevenue:  calculator.TotalRevenue(sales.NewRevenue, ae.RenewalRevenue),
	}
	row.AchievementRate = calculator.AchievementRate(row.ActualRevenue, row.TargetRevenue)

	if ae.ReportedCount > 0 {
		row.TotalClients = ae.TotalClients
		row.RenewedClients = ae.RenewedClients
		row.RenewalRate = ae.RenewalRate()
	} else {
		row.TotalClients = int(doc.TotalClients.Total)
		row.RenewedClients = doc.CurrentMonthRenewal.Count
		row.RenewalRate = doc.CurrentMonthRenewal.Rate
	}
	if sales.ReportedCount > 0 {
		row.NewClients = sales.NewClients
	} else {
		row.NewClients = int(doc.CurrentMonthNewClients.Total)
	}
	return row
}

// SortComparisons 按月份排序（原地）
func SortComparisons(rows []model.MonthlyComparison, order store.Order) {
	sort.SliceStable(rows, func(i, j int) bool {
		if order == store.Ascending {
			return rows[i].Month < rows[j].Month
		}
		return rows[i].Month > rows[j].Month
	})
}

// ascending 返回按月份升序的副本
func ascending(snaps []model.Snapshot) []model.Snapshot {
	out := append([]model.Snapshot(nil), snaps...)
	store.SortSnapshots(out, store.Ascending)
	return out
}

// AEPerformanceSeries 每个 AE 的月度续约表现（按月份升序）
func AEPerformanceSeries(snaps []model.Snapshot) []model.AEMonthlyPerformance {
	snaps = ascending(snaps)
	var (
		names []string
		index = map[string]int{}
		out   []model.AEMonthlyPerformance
	)
	for _, snap := range snaps {
		for _, ae := range snap.Data.AEData {
			if _, ok := index[ae.Name]; !ok {
				index[ae.Name] = len(names)
				names = append(names, ae.Name)
				out = append(out, model.AEMonthlyPerformance{Name: ae.Name, Points: []model.AEMonthPoint{}})
			}
		}
	}
	for _, snap := range snaps {
		sel := period.SameMonth(snap.ID)
		for _, ae := range snap.Data.AEData {
			t := calculator.AEOf(ae, sel)
			clients := ae.ClientCount
			if t.ReportedCount > 0 {
				clients = t.TotalClients
			}
			i := index[ae.Name]
			out[i].Points = append(out[i].Points, model.AEMonthPoint{
				Month:          snap.ID,
				ClientCount:    clients,
				RenewalRevenue: t.RenewalRevenue,
				RenewalRate:    t.RenewalRate(),
			})
		}
	}
	return out
}

// SalesPerformanceSeries 每个销售的月度新签表现（按月份升序）
func SalesPerformanceSeries(snaps []model.Snapshot) []model.SalesMonthlyPerformance {
	snaps = ascending(snaps)
	index := map[string]int{}
	var out []model.SalesMonthlyPerformance
	for _, snap := range snaps {
		sel := period.SameMonth(snap.ID)
		for _, s := range snap.Data.SalesData {
			i, ok := index[s.Name]
			if !ok {
				i = len(out)
				index[s.Name] = i
				out = append(out, model.SalesMonthlyPerformance{Name: s.Name, Points: []model.SalesMonthPoint{}})
			}
			t := calculator.SalesOf(s, sel)
			out[i].Points = append(out[i].Points, model.SalesMonthPoint{
				Month:      snap.ID,
				NewClients: t.NewClients,
				NewRevenue: t.NewRevenue,
			})
		}
	}
	return out
}

// ChannelGrowthSeries 各渠道月度收入（新签 + 续约）与环比（按月份升序）
func ChannelGrowthSeries(snaps []model.Snapshot) []model.ChannelGrowth {
	snaps = ascending(snaps)
	type monthTotals struct {
		ae    calculator.AETotals
		sales calculator.SalesTotals
	}
	months := make([]monthTotals, len(snaps))
	seen := map[model.Channel]bool{}
	channels := model.KnownChannels()
	for _, ch := range channels {
		seen[ch] = true
	}
	var extra []model.Channel
	for i, snap := range snaps {
		sel := period.SameMonth(snap.ID)
		months[i] = monthTotals{
			ae:    calculator.AggregateAE(snap.Data.AEData, sel),
			sales: calculator.AggregateSales(snap.Data.SalesData, sel),
		}
		for ch := range months[i].ae.ByChannel {
			if !seen[ch] {
				seen[ch] = true
				extra = append(extra, ch)
			}
		}
		for ch := range months[i].sales.ByChannel {
			if !seen[ch] {
				seen[ch] = true
				extra = append(extra, ch)
			}
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	channels = append(channels, extra...)

	out := make([]model.ChannelGrowth, 0, len(channels))
	for _, ch := range channels {
		g := model.ChannelGrowth{Channel: ch, Points: make([]model.ChannelMonthPoint, 0, len(snaps))}
		for i, snap := range snaps {
			p := model.ChannelMonthPoint{Month: snap.ID}
			if r, ok := months[i].ae.ByChannel[ch]; ok {
				p.Revenue += r.RenewalRevenue
				p.Clients += r.RenewedClients
			}
			if n, ok := months[i].sales.ByChannel[ch]; ok {
				p.Revenue += n.NewRevenue
				p.Clients += n.NewClients
			}
			if i > 0 {
				p.GrowthRate = calculator.GrowthRate(p.Revenue, g.Points[i-1].Revenue)
			}
			g.Points = append(g.Points, p)
		}
		out = append(out, g)
	}
	return out
}
