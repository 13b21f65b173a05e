package calculator

import (
	"math"
	"testing"
	"time"

	"github.com/wtpceo/dashbord-wiple/internal/model"
	"github.com/wtpceo/dashbord-wiple/internal/period"
)

func aeReport(p string, total, expiring, renewed int, revenue float64) model.AEReport {
	return model.AEReport{
		Period: p,
		ByChannel: []model.RenewalChannelReport{{
			Channel:         model.ChannelPerformance,
			TotalClients:    total,
			ExpiringClients: expiring,
			RenewedClients:  renewed,
			RenewalRevenue:  revenue,
		}},
	}
}

// TestRenewalRate 测试续约率边界
func TestRenewalRate(t *testing.T) {
	tests := []struct {
		name              string
		renewed, expiring int
		want              float64
	}{
		{"零到期", 0, 0, 0},
		{"一半", 5, 10, 50},
		{"全部续约", 10, 10, 100},
		{"无续约", 0, 7, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RenewalRate(tt.renewed, tt.expiring)
			if got != tt.want {
				t.Errorf("RenewalRate(%d, %d) = %v, want %v", tt.renewed, tt.expiring, got, tt.want)
			}
		})
	}
	for e := 0; e <= 50; e++ {
		for r := 0; r <= e; r++ {
			v := RenewalRate(r, e)
			if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > 100 {
				t.Fatalf("RenewalRate(%d, %d) = %v", r, e, v)
			}
		}
	}
}

// TestGrowthAndAchievement 测试增长率与达成率
func TestGrowthAndAchievement(t *testing.T) {
	if got := GrowthRate(120, 100); got != 20 {
		t.Errorf("GrowthRate 增长 = %v", got)
	}
	if got := GrowthRate(80, 100); got != -20 {
		t.Errorf("GrowthRate 下降 = %v", got)
	}
	if got := GrowthRate(80, 0); got != 0 {
		t.Errorf("GrowthRate 上期为0 = %v", got)
	}
	if got := AchievementRate(150, 0); got != 0 {
		t.Errorf("AchievementRate 目标为0 = %v", got)
	}
	if got := RoundPercent(8.3333); got != 8.3 {
		t.Errorf("RoundPercent = %v", got)
	}
	if got := RoundPercent(math.NaN()); got != 0 {
		t.Errorf("RoundPercent(NaN) = %v", got)
	}
}

// TestAggregateAEGaugeVsCounter 测试存量取最新、流量累加
func TestAggregateAEGaugeVsCounter(t *testing.T) {
	ae := model.AEContributor{
		Name: "AE-B",
		Reports: []model.AEReport{
			aeReport("2025-W19", 32, 4, 3, 3000000),
			aeReport("2025-W18", 30, 3, 2, 2000000),
			aeReport("2025-W17", 99, 9, 9, 9000000), // 4月
		},
	}

	got := AggregateAE([]model.AEContributor{ae}, period.SameMonth("2025-05"))
	if got.TotalClients != 32 {
		t.Errorf("TotalClients = %d, want 32", got.TotalClients)
	}
	if got.RenewedClients != 5 {
		t.Errorf("RenewedClients = %d, want 5", got.RenewedClients)
	}
	if got.ExpiringClients != 7 {
		t.Errorf("ExpiringClients = %d, want 7", got.ExpiringClients)
	}
	if got.RenewalRevenue != 5000000 {
		t.Errorf("RenewalRevenue = %v", got.RenewalRevenue)
	}
	if got.ReportedCount != 1 {
		t.Errorf("ReportedCount = %d", got.ReportedCount)
	}
	if ch := got.ByChannel[model.ChannelPerformance]; ch == nil || ch.TotalClients != 32 {
		t.Errorf("ByChannel gauge mismatch: %+v", ch)
	}

	// 报告顺序打乱后结果不变
	ae.Reports[0], ae.Reports[1] = ae.Reports[1], ae.Reports[0]
	again := AggregateAE([]model.AEContributor{ae}, period.SameMonth("2025-05"))
	if again.TotalClients != 32 {
		t.Errorf("乱序后 TotalClients = %d, want 32", again.TotalClients)
	}
}

// TestAggregateEmpty 测试空输入
func TestAggregateEmpty(t *testing.T) {
	ae := AggregateAE(nil, period.Exact("2025-W03"))
	if ae.ReportedCount != 0 || ae.TotalClients != 0 || ae.RenewalRevenue != 0 {
		t.Errorf("AggregateAE(nil) = %+v", ae)
	}
	s := AggregateSales([]model.SalesContributor{{Name: "x"}}, period.SameMonth("2025-01"))
	if s.ReportedCount != 0 || s.NewRevenue != 0 {
		t.Errorf("AggregateSales 无报告 = %+v", s)
	}
}

// TestAggregateUnknownChannel 测试未知渠道按标签归类
func TestAggregateUnknownChannel(t *testing.T) {
	sales := []model.SalesContributor{{
		Name: "S",
		Reports: []model.SalesReport{{
			Period: "2025-W03",
			ByChannel: []model.NewBusinessChannelReport{
				{Channel: "신규매체", NewClients: 1, NewRevenue: 1000},
				{Channel: model.ChannelMedia, NewClients: 2, NewRevenue: 2000},
			},
		}},
	}}
	got := AggregateSales(sales, period.Exact("2025-W03"))
	if got.NewRevenue != 3000 || got.NewClients != 3 {
		t.Errorf("totals = %+v", got.NewBusinessTotals)
	}
	if b := got.ByChannel["신규매체"]; b == nil || b.NewRevenue != 1000 {
		t.Errorf("unknown channel bucket = %+v", b)
	}

	view := BuildDashboardFor(&model.Document{SalesData: sales}, "2025-W03", "2025-01")
	last := view.Channels[len(view.Channels)-1]
	if last.Channel != "신규매체" || last.Revenue != 1000 {
		t.Errorf("unknown channel row = %+v", last)
	}
}

// TestEndToEndScenario 测试提交后当周汇总
func TestEndToEndScenario(t *testing.T) {
	doc := model.DefaultDocument()
	doc.SalesData = append(doc.SalesData, model.SalesContributor{
		Name: "Sales-A",
		Reports: []model.SalesReport{{
			Period: "2025-W03",
			ByChannel: []model.NewBusinessChannelReport{
				{Channel: model.ChannelPerformance, NewClients: 2, NewRevenue: 20000000},
			},
		}},
	})
	doc.AEData = append(doc.AEData, model.AEContributor{
		Name:    "AE-B",
		Reports: []model.AEReport{aeReport("2025-W03", 10, 2, 1, 5000000)},
	})

	now := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	v := BuildDashboard(doc, now)

	if v.Week != "2025-W03" || v.Month != "2025-01" {
		t.Fatalf("window = %s / %s", v.Week, v.Month)
	}
	if v.WeekNew.NewRevenue != 20000000 {
		t.Errorf("NewRevenue = %v", v.WeekNew.NewRevenue)
	}
	if v.WeekRenewal.RenewalRevenue != 5000000 {
		t.Errorf("RenewalRevenue = %v", v.WeekRenewal.RenewalRevenue)
	}
	if v.Revenue.TotalRevenue != 25000000 {
		t.Errorf("TotalRevenue = %v", v.Revenue.TotalRevenue)
	}
	if v.Revenue.TotalRevenue != v.Revenue.NewRevenue+v.Revenue.RenewalRevenue {
		t.Error("TotalRevenue 应等于新签 + 续约")
	}
	if math.Abs(v.Revenue.AchievementRate-8.3333) > 0.001 {
		t.Errorf("AchievementRate = %v", v.Revenue.AchievementRate)
	}
	if v.WeekRenewalRate != 50 {
		t.Errorf("WeekRenewalRate = %v", v.WeekRenewalRate)
	}

	rounded := RoundView(v)
	if rounded.Revenue.AchievementRate != 8.3 {
		t.Errorf("rounded AchievementRate = %v", rounded.Revenue.AchievementRate)
	}
	if v.Revenue.AchievementRate == rounded.Revenue.AchievementRate {
		t.Error("RoundView 不应修改原视图")
	}

	// 已提交的 AE 排在最前
	if first := v.AEPerformance[0]; first.Name != "AE-B" || !first.Reported || first.RenewalRate != 50 {
		t.Errorf("AEPerformance[0] = %+v", first)
	}
	for _, p := range v.AEPerformance[1:] {
		if p.Reported {
			t.Errorf("%s 不应标记为已提交", p.Name)
		}
	}
}

// TestSortAEPerformance 测试 AE 排序
func TestSortAEPerformance(t *testing.T) {
	rows := []AEPerformance{
		{Name: "a"},
		{Name: "b", Reported: true, RenewalRate: 40},
		{Name: "c"},
		{Name: "d", Reported: true, RenewalRate: 90},
	}
	sortAEPerformance(rows)
	want := []string{"d", "b", "a", "c"}
	for i, name := range want {
		if rows[i].Name != name {
			t.Fatalf("rows[%d] = %s, want %s", i, rows[i].Name, name)
		}
	}
}
