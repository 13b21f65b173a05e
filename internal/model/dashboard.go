package model

import "time"

// ChannelValue 渠道数值（金额或客户数）
type ChannelValue struct {
	Channel Channel `json:"channel"`
	Value   float64 `json:"value"`
}

// ChannelBreakdown 总量 + 渠道明细（手工录入的基线）
type ChannelBreakdown struct {
	Total     float64        `json:"total"`
	ByChannel []ChannelValue `json:"byChannel"`
}

// ValueOf 返回指定渠道的数值，不存在时为 0
func (b ChannelBreakdown) ValueOf(ch Channel) float64 {
	for _, v := range b.ByChannel {
		if v.Channel == ch {
			return v.Value
		}
	}
	return 0
}

// ChannelRenewal 渠道续约基线
type ChannelRenewal struct {
	Channel Channel `json:"channel"`
	Count   int     `json:"count"`
	Revenue float64 `json:"revenue"`
	Rate    float64 `json:"rate"`
}

// RenewalBaseline 续约基线
type RenewalBaseline struct {
	Count     int              `json:"count"`
	Revenue   float64          `json:"revenue"`
	Rate      float64          `json:"rate"`
	ByChannel []ChannelRenewal `json:"byChannel"`
}

// Document 看板共享文档（唯一持久化单元）
type Document struct {
	TargetRevenue float64 `json:"targetRevenue"` // 本月目标金额

	LastMonthRevenue    ChannelBreakdown `json:"lastMonthRevenue"`
	CurrentMonthRevenue ChannelBreakdown `json:"currentMonthRevenue"`

	TotalClients ChannelBreakdown `json:"totalClients"`

	NextMonthExpiring    ChannelBreakdown `json:"nextMonthExpiring"`
	CurrentMonthExpiring ChannelBreakdown `json:"currentMonthExpiring"`

	LastMonthRenewal    RenewalBaseline `json:"lastMonthRenewal"`
	CurrentMonthRenewal RenewalBaseline `json:"currentMonthRenewal"`

	LastMonthNewClients    ChannelBreakdown `json:"lastMonthNewClients"`
	CurrentMonthNewClients ChannelBreakdown `json:"currentMonthNewClients"`

	AEData    []AEContributor    `json:"aeData"`
	SalesData []SalesContributor `json:"salesData"`

	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}

// FindAE 按名称查找 AE 下标
func (d *Document) FindAE(name string) int {
	for i := range d.AEData {
		if d.AEData[i].Name == name {
			return i
		}
	}
	return -1
}

// FindSales 按名称查找销售下标
func (d *Document) FindSales(name string) int {
	for i := range d.SalesData {
		if d.SalesData[i].Name == name {
			return i
		}
	}
	return -1
}

// ReportCount 所有报告数量（AE, 销售）
func (d *Document) ReportCount() (ae, sales int) {
	for _, c := range d.AEData {
		ae += len(c.Reports)
	}
	for _, c := range d.SalesData {
		sales += len(c.Reports)
	}
	return ae, sales
}

// ClearReports 清空所有报告，保留基线与人员
func (d *Document) ClearReports() {
	for i := range d.AEData {
		d.AEData[i].Reports = []AEReport{}
	}
	for i := range d.SalesData {
		d.SalesData[i].Reports = []SalesReport{}
	}
}
