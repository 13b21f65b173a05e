// Package report 合并提交人的周期报告
package report

import (
	"sort"

	"github.com/wtpceo/dashbord-wiple/internal/calculator"
	"github.com/wtpceo/dashbord-wiple/internal/model"
)

// Upsert 按周期替换或追加报告，并按周期倒序排列
// 返回新切片，不修改入参
func Upsert[R model.PeriodicReport](reports []R, r R) []R {
	out := make([]R, 0, len(reports)+1)
	replaced := false
	for _, existing := range reports {
		if existing.PeriodKey() == r.PeriodKey() {
			if !replaced {
				out = append(out, r)
				replaced = true
			}
			continue
		}
		out = append(out, existing)
	}
	if !replaced {
		out = append(out, r)
	}
	// 周期补零定长，字典序即时间序
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PeriodKey() > out[j].PeriodKey()
	})
	return out
}

// SubmitAE 合并 AE 报告；ClientCount 以本次提交的负责客户数之和覆盖
func SubmitAE(c model.AEContributor, r model.AEReport) model.AEContributor {
	r.ByChannel = append([]model.RenewalChannelReport(nil), r.ByChannel...)
	for i := range r.ByChannel {
		ch := &r.ByChannel[i]
		ch.RenewalRate = calculator.RenewalRate(ch.RenewedClients, ch.ExpiringClients)
	}
	c.Reports = Upsert(c.Reports, r)
	c.ClientCount = r.TotalClients()
	return c
}

// SubmitSales 合并销售报告
func SubmitSales(c model.SalesContributor, r model.SalesReport) model.SalesContributor {
	r.ByChannel = append([]model.NewBusinessChannelReport(nil), r.ByChannel...)
	c.Reports = Upsert(c.Reports, r)
	return c
}
