package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wtpceo/dashbord-wiple/internal/period"
)

// StatusResponse 系统状态响应
type StatusResponse struct {
	RemoteConfigured bool      `json:"remoteConfigured"` // 是否配置远端存储
	State            string    `json:"state"`            // bootstrapped | live
	DocumentKey      string    `json:"documentKey"`
	AEReports        int       `json:"aeReports"`
	SalesReports     int       `json:"salesReports"`
	CurrentWeek      string    `json:"currentWeek"`
	CurrentMonth     string    `json:"currentMonth"`
	UpdatedAt        time.Time `json:"updatedAt,omitzero"`
}

// GetStatus 获取系统状态
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	doc, err := h.mgr.Document(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	ae, sales := doc.ReportCount()
	now := h.now()
	c.JSON(http.StatusOK, StatusResponse{
		RemoteConfigured: h.mgr.RemoteConfigured(),
		State:            string(h.mgr.State()),
		DocumentKey:      h.mgr.Key(),
		AEReports:        ae,
		SalesReports:     sales,
		CurrentWeek:      period.ISOWeek(now),
		CurrentMonth:     period.CurrentMonth(now),
		UpdatedAt:        doc.UpdatedAt,
	})
}
