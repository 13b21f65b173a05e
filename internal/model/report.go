package model

// PeriodicReport 按周期提交的报告（周 "YYYY-Www" 或月 "YYYY-MM"）
type PeriodicReport interface {
	PeriodKey() string
}

// RenewalChannelReport AE 单渠道续约数据
type RenewalChannelReport struct {
	Channel         Channel `json:"channel" validate:"required"`
	TotalClients    int     `json:"totalClients" validate:"gte=0"`                            // 负责客户数（存量，取最新值）
	ExpiringClients int     `json:"expiringClients" validate:"gte=0"`                         // 到期客户数
	RenewedClients  int     `json:"renewedClients" validate:"gte=0,ltefield=ExpiringClients"` // 续约成功数
	RenewalRevenue  float64 `json:"renewalRevenue" validate:"gte=0"`                          // 续约金额
	RenewalRate     float64 `json:"renewalRate"`                                              // 续约率（自动计算）
}

// NewBusinessChannelReport 销售单渠道新签数据
type NewBusinessChannelReport struct {
	Channel    Channel `json:"channel" validate:"required"`
	NewClients int     `json:"newClients" validate:"gte=0"` // 新签客户数
	NewRevenue float64 `json:"newRevenue" validate:"gte=0"` // 新签金额
}

// AEReport AE 周期报告
type AEReport struct {
	Period        string                 `json:"week" validate:"required,period"` // 沿用历史文档字段名
	SubmittedDate string                 `json:"date"`
	ByChannel     []RenewalChannelReport `json:"byChannel" validate:"required,min=1,dive"`
	Note          string                 `json:"note,omitempty" validate:"max=2000"`
}

// PeriodKey 实现 PeriodicReport
func (r AEReport) PeriodKey() string { return r.Period }

// TotalClients 报告内各渠道负责客户数之和
func (r AEReport) TotalClients() int {
	total := 0
	for _, ch := range r.ByChannel {
		total += ch.TotalClients
	}
	return total
}

// SalesReport 销售周期报告
type SalesReport struct {
	Period        string                     `json:"week" validate:"required,period"`
	SubmittedDate string                     `json:"date"`
	ByChannel     []NewBusinessChannelReport `json:"byChannel" validate:"required,min=1,dive"`
	Note          string                     `json:"note,omitempty" validate:"max=2000"`
}

// PeriodKey 实现 PeriodicReport
func (r SalesReport) PeriodKey() string { return r.Period }

// AEContributor AE 及其报告列表（按周期倒序）
type AEContributor struct {
	Name        string     `json:"name"`
	ClientCount int        `json:"clientCount"`
	Reports     []AEReport `json:"weeklyReports"`
}

// FindReport 查找指定周期的报告
func (c *AEContributor) FindReport(period string) (AEReport, bool) {
	for _, r := range c.Reports {
		if r.Period == period {
			return r, true
		}
	}
	return AEReport{}, false
}

// SalesContributor 销售及其报告列表（按周期倒序）
type SalesContributor struct {
	Name    string        `json:"name"`
	Reports []SalesReport `json:"weeklyReports"`
}

// FindReport 查找指定周期的报告
func (c *SalesContributor) FindReport(period string) (SalesReport, bool) {
	for _, r := range c.Reports {
		if r.Period == period {
			return r, true
		}
	}
	return SalesReport{}, false
}
