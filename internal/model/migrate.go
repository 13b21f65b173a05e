package model

import (
	"bytes"
	"encoding/json"
)

// Migrate 修复旧版本或残缺文档，返回是否有改动
// 规则：目标金额为 0 时取默认值；基线渠道列表补空；缺失的默认人员按名单补齐；报告列表补空
func Migrate(doc, defaults *Document) bool {
	if doc == nil {
		return false
	}
	if defaults == nil {
		defaults = DefaultDocument()
	}
	changed := false

	if doc.TargetRevenue == 0 {
		doc.TargetRevenue = defaults.TargetRevenue
		changed = true
	}

	for _, b := range []*ChannelBreakdown{
		&doc.LastMonthRevenue, &doc.CurrentMonthRevenue, &doc.TotalClients,
		&doc.NextMonthExpiring, &doc.CurrentMonthExpiring,
		&doc.LastMonthNewClients, &doc.CurrentMonthNewClients,
	} {
		if b.ByChannel == nil {
			b.ByChannel = []ChannelValue{}
			changed = true
		}
	}
	for _, r := range []*RenewalBaseline{&doc.LastMonthRenewal, &doc.CurrentMonthRenewal} {
		if r.ByChannel == nil {
			r.ByChannel = []ChannelRenewal{}
			changed = true
		}
	}

	for _, ae := range defaults.AEData {
		if doc.FindAE(ae.Name) < 0 {
			doc.AEData = append(doc.AEData, AEContributor{Name: ae.Name, ClientCount: ae.ClientCount, Reports: []AEReport{}})
			changed = true
		}
	}
	for _, s := range defaults.SalesData {
		if doc.FindSales(s.Name) < 0 {
			doc.SalesData = append(doc.SalesData, SalesContributor{Name: s.Name, Reports: []SalesReport{}})
			changed = true
		}
	}
	for i := range doc.AEData {
		if doc.AEData[i].Reports == nil {
			doc.AEData[i].Reports = []AEReport{}
			changed = true
		}
	}
	for i := range doc.SalesData {
		if doc.SalesData[i].Reports == nil {
			doc.SalesData[i].Reports = []SalesReport{}
			changed = true
		}
	}
	return changed
}

// Clone 深拷贝文档
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	raw, err := json.Marshal(d)
	if err != nil {
		return nil
	}
	var out Document
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return &out
}

// SameAs 两份文档保存时间与内容均一致
func (d *Document) SameAs(o *Document) bool {
	if d == nil || o == nil {
		return d == o
	}
	if !d.UpdatedAt.Equal(o.UpdatedAt) {
		return false
	}
	a, err := json.Marshal(d)
	if err != nil {
		return false
	}
	b, err := json.Marshal(o)
	if err != nil {
		return false
	}
	return bytes.Equal(a, b)
}
