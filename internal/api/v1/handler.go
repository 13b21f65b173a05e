package v1

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/wtpceo/dashbord-wiple/internal/service/dashboard"
)

// Handler V1 API 处理器
type Handler struct {
	mgr *dashboard.Manager
	hub *Hub
	log *logrus.Entry
	now func() time.Time
}

// NewHandler 创建 V1 API 处理器；文档变更通过 hub 推送到 websocket 客户端
func NewHandler(mgr *dashboard.Manager, log *logrus.Entry) *Handler {
	h := &Handler{
		mgr: mgr,
		hub: NewHub(log),
		log: log,
		now: time.Now,
	}
	h.hub.attach(mgr)
	return h
}

// Close 断开所有 websocket 连接并取消订阅
func (h *Handler) Close() {
	h.hub.Close()
}

// RegisterRoutes 注册 V1 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 系统状态
	router.GET("/status", h.GetStatus)

	// 看板文档
	router.GET("/dashboard", h.GetDocument)
	router.PUT("/dashboard", h.PutDocument)
	router.GET("/dashboard/summary", h.GetSummary)

	// 报告提交
	router.GET("/ae/:name", h.GetAE)
	router.POST("/ae/:name/reports", h.SubmitAE)
	router.GET("/sales/:name", h.GetSales)
	router.POST("/sales/:name/reports", h.SubmitSales)

	// 管理操作（需确认）
	router.POST("/admin/reset-reports", h.ResetReports)
	router.POST("/admin/wipe", h.Wipe)

	// 月度快照
	router.GET("/snapshots", h.ListSnapshots)
	router.POST("/snapshots", h.SaveSnapshot)
	router.GET("/snapshots/:id", h.GetSnapshot)
	router.DELETE("/snapshots/:id", h.DeleteSnapshot)
	router.GET("/snapshots/:id/diff", h.DiffSnapshot)
	router.POST("/snapshots/:id/restore", h.RestoreSnapshot)

	// 历史对比
	router.GET("/history/comparisons", h.GetComparisons)
	router.GET("/history/ae", h.GetAEHistory)
	router.GET("/history/sales", h.GetSalesHistory)
	router.GET("/history/channels", h.GetChannelHistory)
	router.GET("/history/export", h.ExportHistory)

	// 变更推送
	router.GET("/ws", h.hub.Serve)
}
