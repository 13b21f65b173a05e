package v1

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wtpceo/dashbord-wiple/internal/calculator"
	"github.com/wtpceo/dashbord-wiple/internal/model"
	"github.com/wtpceo/dashbord-wiple/internal/period"
)

// GetDocument 获取看板文档（每次读取都重新加载并迁移）
// GET /api/dashboard
func (h *Handler) GetDocument(c *gin.Context) {
	doc, err := h.mgr.Load(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// PutDocument 管理端整份保存基线与人员
// PUT /api/dashboard
func (h *Handler) PutDocument(c *gin.Context) {
	var doc model.Document
	if err := c.ShouldBindJSON(&doc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid document: " + err.Error()})
		return
	}
	saved, err := h.mgr.UpdateBaselines(c.Request.Context(), &doc)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

// GetSummary 看板指标；week/month 缺省为当前周与当前月
// GET /api/dashboard/summary?week=&month=
func (h *Handler) GetSummary(c *gin.Context) {
	now := h.now()
	week := c.DefaultQuery("week", period.ISOWeek(now))
	month := c.DefaultQuery("month", period.CurrentMonth(now))
	if !period.IsWeek(week) {
		writeError(c, fmt.Errorf("%w: week %q", period.ErrInvalidPeriod, week))
		return
	}
	if !period.IsMonth(month) {
		writeError(c, fmt.Errorf("%w: month %q", period.ErrInvalidPeriod, month))
		return
	}

	doc, err := h.mgr.Load(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	view := calculator.BuildDashboardFor(doc, week, month)
	c.JSON(http.StatusOK, calculator.RoundView(view))
}
