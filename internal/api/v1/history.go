package v1

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/wtpceo/dashbord-wiple/internal/exporter"
	"github.com/wtpceo/dashbord-wiple/internal/history"
	"github.com/wtpceo/dashbord-wiple/internal/period"
	"github.com/wtpceo/dashbord-wiple/internal/store"
)

// GetComparisons 月度对比（由快照实时推导）
// GET /api/history/comparisons?order=asc|desc
func (h *Handler) GetComparisons(c *gin.Context) {
	order := store.ParseOrder(c.Query("order"))
	snaps, err := h.mgr.ListSnapshots(c.Request.Context(), order)
	if err != nil {
		writeError(c, err)
		return
	}
	rows := history.BuildComparisonSeries(snaps)
	history.SortComparisons(rows, order)
	c.JSON(http.StatusOK, roundComparisons(rows))
}

// GetAEHistory AE 月度表现
// GET /api/history/ae
func (h *Handler) GetAEHistory(c *gin.Context) {
	snaps, err := h.mgr.ListSnapshots(c.Request.Context(), store.Ascending)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, roundAESeries(history.AEPerformanceSeries(snaps)))
}

// GetSalesHistory 销售月度表现
// GET /api/history/sales
func (h *Handler) GetSalesHistory(c *gin.Context) {
	snaps, err := h.mgr.ListSnapshots(c.Request.Context(), store.Ascending)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, history.SalesPerformanceSeries(snaps))
}

// GetChannelHistory 渠道月度增长
// GET /api/history/channels
func (h *Handler) GetChannelHistory(c *gin.Context) {
	snaps, err := h.mgr.ListSnapshots(c.Request.Context(), store.Ascending)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, roundChannelSeries(history.ChannelGrowthSeries(snaps)))
}

// ExportHistory 导出历史报表 xlsx
// GET /api/history/export
func (h *Handler) ExportHistory(c *gin.Context) {
	snaps, err := h.mgr.ListSnapshots(c.Request.Context(), store.Ascending)
	if err != nil {
		writeError(c, err)
		return
	}

	log := h.log.WithField("snapshots", len(snaps))
	file, err := exporter.ExportHistory(exporter.FromSnapshots(snaps), func(p exporter.ProgressEvent) {
		log.WithField("percent", p.Percent).Debug(p.Stage)
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed: " + err.Error()})
		return
	}
	defer file.Close()

	c.Header("Content-Disposition", buildExportContentDisposition(period.CurrentMonth(h.now())))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := file.Write(c.Writer); err != nil {
		log.WithError(err).Error("write export failed")
	}
}

// buildExportContentDisposition ASCII 文件名 + RFC 5987 韩文文件名
func buildExportContentDisposition(month string) string {
	ascii := fmt.Sprintf("wiple-history-%s.xlsx", month)
	utf8Name := fmt.Sprintf("월별실적-%s.xlsx", month)
	return fmt.Sprintf("attachment; filename=%q; filename*=UTF-8''%s", ascii, url.PathEscape(utf8Name))
}
