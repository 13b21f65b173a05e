package calculator

import (
	"github.com/wtpceo/dashbord-wiple/internal/model"
	"github.com/wtpceo/dashbord-wiple/internal/period"
)

// RenewalTotals 续约汇总
type RenewalTotals struct {
	TotalClients    int     `json:"totalClients"` // 存量，取最新周期值
	ExpiringClients int     `json:"expiringClients"`
	RenewedClients  int     `json:"renewedClients"`
	RenewalRevenue  float64 `json:"renewalRevenue"`
}

// RenewalRate 续约率
func (t RenewalTotals) RenewalRate() float64 {
	return RenewalRate(t.RenewedClients, t.ExpiringClients)
}

func (t *RenewalTotals) add(o RenewalTotals) {
	t.TotalClients += o.TotalClients
	t.ExpiringClients += o.ExpiringClients
	t.RenewedClients += o.RenewedClients
	t.RenewalRevenue += o.RenewalRevenue
}

// AETotals AE 报告汇总
type AETotals struct {
	RenewalTotals
	ReportedCount int                              `json:"reportedCount"` // 有报告的 AE 数
	ByChannel     map[model.Channel]*RenewalTotals `json:"byChannel"`
}

// NewBusinessTotals 新签汇总
type NewBusinessTotals struct {
	NewClients int     `json:"newClients"`
	NewRevenue float64 `json:"newRevenue"`
}

// SalesTotals 销售报告汇总
type SalesTotals struct {
	NewBusinessTotals
	ReportedCount int                                  `json:"reportedCount"`
	ByChannel     map[model.Channel]*NewBusinessTotals `json:"byChannel"`
}

// gauge 记录某渠道存量值及其所属周期
type gauge struct {
	period string
	value  int
}

// AggregateAE 汇总 AE 在筛选周期内的报告
// totalClients 按（AE, 渠道）取最新周期的值，其余字段累加
func AggregateAE(contributors []model.AEContributor, sel period.Selector) AETotals {
	out := AETotals{ByChannel: map[model.Channel]*RenewalTotals{}}

	for _, c := range contributors {
		latest := map[model.Channel]gauge{}
		matched := false

		for _, r := range c.Reports {
			if !sel.Match(r.Period) {
				continue
			}
			matched = true
			for _, ch := range r.ByChannel {
				bucket := out.channel(ch.Channel)
				bucket.ExpiringClients += ch.ExpiringClients
				bucket.RenewedClients += ch.RenewedClients
				bucket.RenewalRevenue += ch.RenewalRevenue

				if g, ok := latest[ch.Channel]; !ok || r.Period > g.period {
					latest[ch.Channel] = gauge{period: r.Period, value: ch.TotalClients}
				}
			}
			if sel.Exclusive() {
				break
			}
		}

		if !matched {
			continue
		}
		out.ReportedCount++
		for ch, g := range latest {
			out.channel(ch).TotalClients += g.value
		}
	}

	for _, bucket := range out.ByChannel {
		out.RenewalTotals.add(*bucket)
	}
	return out
}

func (t *AETotals) channel(ch model.Channel) *RenewalTotals {
	b, ok := t.ByChannel[ch]
	if !ok {
		b = &RenewalTotals{}
		t.ByChannel[ch] = b
	}
	return b
}

// AggregateSales 汇总销售在筛选周期内的报告（全部累加）
func AggregateSales(contributors []model.SalesContributor, sel period.Selector) SalesTotals {
	out := SalesTotals{ByChannel: map[model.Channel]*NewBusinessTotals{}}

	for _, c := range contributors {
		matched := false
		for _, r := range c.Reports {
			if !sel.Match(r.Period) {
				continue
			}
			matched = true
			for _, ch := range r.ByChannel {
				b, ok := out.ByChannel[ch.Channel]
				if !ok {
					b = &NewBusinessTotals{}
					out.ByChannel[ch.Channel] = b
				}
				b.NewClients += ch.NewClients
				b.NewRevenue += ch.NewRevenue
				out.NewClients += ch.NewClients
				out.NewRevenue += ch.NewRevenue
			}
			if sel.Exclusive() {
				break
			}
		}
		if matched {
			out.ReportedCount++
		}
	}
	return out
}

// AEOf 单个 AE 的汇总
func AEOf(c model.AEContributor, sel period.Selector) AETotals {
	return AggregateAE([]model.AEContributor{c}, sel)
}

// SalesOf 单个销售的汇总
func SalesOf(c model.SalesContributor, sel period.Selector) SalesTotals {
	return AggregateSales([]model.SalesContributor{c}, sel)
}
