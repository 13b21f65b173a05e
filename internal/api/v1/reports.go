package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wtpceo/dashbord-wiple/internal/calculator"
	"github.com/wtpceo/dashbord-wiple/internal/model"
	"github.com/wtpceo/dashbord-wiple/internal/period"
	"github.com/wtpceo/dashbord-wiple/internal/report"
	"github.com/wtpceo/dashbord-wiple/internal/service/dashboard"
)

// AEDetail AE 页面数据：人员记录与本周、本月汇总
type AEDetail struct {
	Contributor      model.AEContributor `json:"contributor"`
	Week             string              `json:"week"`
	Month            string              `json:"month"`
	WeekTotals       calculator.AETotals `json:"weekTotals"`
	WeekRenewalRate  float64             `json:"weekRenewalRate"`
	MonthTotals      calculator.AETotals `json:"monthTotals"`
	MonthRenewalRate float64             `json:"monthRenewalRate"`
}

// SalesDetail 销售页面数据
type SalesDetail struct {
	Contributor model.SalesContributor `json:"contributor"`
	Week        string                 `json:"week"`
	Month       string                 `json:"month"`
	WeekTotals  calculator.SalesTotals `json:"weekTotals"`
	MonthTotals calculator.SalesTotals `json:"monthTotals"`
}

// GetAE 获取 AE 记录
// GET /api/ae/:name
func (h *Handler) GetAE(c *gin.Context) {
	name := c.Param("name")
	doc, err := h.mgr.Load(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	i := doc.FindAE(name)
	if i < 0 {
		writeError(c, dashboard.ErrContributorNotFound)
		return
	}

	now := h.now()
	week, month := period.ISOWeek(now), period.CurrentMonth(now)
	ae := doc.AEData[i]
	weekTotals := calculator.AEOf(ae, period.Exact(week))
	monthTotals := calculator.AEOf(ae, period.SameMonth(month))
	c.JSON(http.StatusOK, AEDetail{
		Contributor:      ae,
		Week:             week,
		Month:            month,
		WeekTotals:       weekTotals,
		WeekRenewalRate:  calculator.RoundPercent(weekTotals.RenewalRate()),
		MonthTotals:      monthTotals,
		MonthRenewalRate: calculator.RoundPercent(monthTotals.RenewalRate()),
	})
}

// SubmitAE 提交 AE 周期报告（同周期覆盖）
// POST /api/ae/:name/reports
func (h *Handler) SubmitAE(c *gin.Context) {
	var r model.AEReport
	if err := c.ShouldBindJSON(&r); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report: " + err.Error()})
		return
	}
	if err := report.ValidateAE(r); err != nil {
		writeError(c, err)
		return
	}
	r.Note = report.SanitizeNote(r.Note)

	name := c.Param("name")
	doc, err := h.mgr.SubmitAE(c.Request.Context(), name, r)
	if err != nil {
		writeError(c, err)
		return
	}
	i := doc.FindAE(name)
	if i < 0 {
		writeError(c, dashboard.ErrContributorNotFound)
		return
	}
	c.JSON(http.StatusOK, doc.AEData[i])
}

// GetSales 获取销售记录
// GET /api/sales/:name
func (h *Handler) GetSales(c *gin.Context) {
	name := c.Param("name")
	doc, err := h.mgr.Load(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	i := doc.FindSales(name)
	if i < 0 {
		writeError(c, dashboard.ErrContributorNotFound)
		return
	}

	now := h.now()
	week, month := period.ISOWeek(now), period.CurrentMonth(now)
	s := doc.SalesData[i]
	c.JSON(http.StatusOK, SalesDetail{
		Contributor: s,
		Week:        week,
		Month:       month,
		WeekTotals:  calculator.SalesOf(s, period.Exact(week)),
		MonthTotals: calculator.SalesOf(s, period.SameMonth(month)),
	})
}

// SubmitSales 提交销售周期报告
// POST /api/sales/:name/reports
func (h *Handler) SubmitSales(c *gin.Context) {
	var r model.SalesReport
	if err := c.ShouldBindJSON(&r); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report: " + err.Error()})
		return
	}
	if err := report.ValidateSales(r); err != nil {
		writeError(c, err)
		return
	}
	r.Note = report.SanitizeNote(r.Note)

	name := c.Param("name")
	doc, err := h.mgr.SubmitSales(c.Request.Context(), name, r)
	if err != nil {
		writeError(c, err)
		return
	}
	i := doc.FindSales(name)
	if i < 0 {
		writeError(c, dashboard.ErrContributorNotFound)
		return
	}
	c.JSON(http.StatusOK, doc.SalesData[i])
}

// ResetReports 清空所有报告，保留基线
// POST /api/admin/reset-reports
func (h *Handler) ResetReports(c *gin.Context) {
	if !requireConfirm(c) {
		return
	}
	doc, err := h.mgr.ResetReports(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	h.log.WithField("client_ip", c.ClientIP()).Warn("reports reset via api")
	c.JSON(http.StatusOK, doc)
}

// Wipe 重置为默认文档
// POST /api/admin/wipe
func (h *Handler) Wipe(c *gin.Context) {
	if !requireConfirm(c) {
		return
	}
	doc, err := h.mgr.Wipe(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	h.log.WithField("client_ip", c.ClientIP()).Warn("document wiped via api")
	c.JSON(http.StatusOK, doc)
}
