package model

// DefaultTargetRevenue 默认月度目标金额
const DefaultTargetRevenue = 300000000

func breakdown(total float64, values ...float64) ChannelBreakdown {
	channels := BaselineChannels()
	out := ChannelBreakdown{Total: total, ByChannel: make([]ChannelValue, 0, len(values))}
	for i, v := range values {
		out.ByChannel = append(out.ByChannel, ChannelValue{Channel: channels[i], Value: v})
	}
	return out
}

func renewal(count int, revenue, rate float64, rows ...ChannelRenewal) RenewalBaseline {
	channels := BaselineChannels()
	for i := range rows {
		rows[i].Channel = channels[i]
	}
	return RenewalBaseline{Count: count, Revenue: revenue, Rate: rate, ByChannel: rows}
}

// DefaultAENames 默认 AE 名单（按展示顺序）
var DefaultAENames = []struct {
	Name        string
	ClientCount int
}{
	{"이수빈", 35},
	{"최호천", 32},
	{"조아라", 31},
	{"정우진", 30},
	{"김민우", 28},
	{"양주미", 27},
}

// DefaultSalesNames 默认销售名单
var DefaultSalesNames = []string{"박현수", "박은수"}

// DefaultDocument 生成初始看板文档（Bootstrapped 状态）
func DefaultDocument() *Document {
	doc := &Document{
		TargetRevenue:        DefaultTargetRevenue,
		LastMonthRevenue:     breakdown(245000000, 95000000, 80000000, 45000000, 25000000),
		CurrentMonthRevenue:  breakdown(268000000, 105000000, 88000000, 48000000, 27000000),
		TotalClients:         breakdown(156, 48, 52, 35, 21),
		NextMonthExpiring:    breakdown(23, 8, 7, 5, 3),
		CurrentMonthExpiring: breakdown(18, 6, 5, 4, 3),
		LastMonthRenewal: renewal(32, 89000000, 78.5,
			ChannelRenewal{Count: 12, Revenue: 35000000, Rate: 80.0},
			ChannelRenewal{Count: 10, Revenue: 28000000, Rate: 76.9},
			ChannelRenewal{Count: 7, Revenue: 18000000, Rate: 77.8},
			ChannelRenewal{Count: 3, Revenue: 8000000, Rate: 75.0},
		),
		CurrentMonthRenewal: renewal(28, 76000000, 82.4,
			ChannelRenewal{Count: 10, Revenue: 30000000, Rate: 83.3},
			ChannelRenewal{Count: 9, Revenue: 25000000, Rate: 81.8},
			ChannelRenewal{Count: 6, Revenue: 15000000, Rate: 85.7},
			ChannelRenewal{Count: 3, Revenue: 6000000, Rate: 75.0},
		),
		LastMonthNewClients:    breakdown(18, 6, 7, 3, 2),
		CurrentMonthNewClients: breakdown(22, 8, 8, 4, 2),
	}
	for _, ae := range DefaultAENames {
		doc.AEData = append(doc.AEData, AEContributor{Name: ae.Name, ClientCount: ae.ClientCount, Reports: []AEReport{}})
	}
	for _, name := range DefaultSalesNames {
		doc.SalesData = append(doc.SalesData, SalesContributor{Name: name, Reports: []SalesReport{}})
	}
	return doc
}
