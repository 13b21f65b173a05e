package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/wtpceo/dashbord-wiple/internal/store"
)

// ListSnapshots 列出月度快照
// GET /api/snapshots?order=asc|desc
func (h *Handler) ListSnapshots(c *gin.Context) {
	snaps, err := h.mgr.ListSnapshots(c.Request.Context(), store.ParseOrder(c.Query("order")))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snaps)
}

// SaveSnapshot 手动保存本月快照（同月覆盖）
// POST /api/snapshots
func (h *Handler) SaveSnapshot(c *gin.Context) {
	snap, err := h.mgr.SaveSnapshot(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// GetSnapshot 获取快照
// GET /api/snapshots/:id
func (h *Handler) GetSnapshot(c *gin.Context) {
	snap, err := h.mgr.GetSnapshot(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// DeleteSnapshot 删除快照
// DELETE /api/snapshots/:id
func (h *Handler) DeleteSnapshot(c *gin.Context) {
	if err := h.mgr.DeleteSnapshot(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DiffSnapshot 当前文档与快照的 unified diff（恢复前预览）
// GET /api/snapshots/:id/diff
func (h *Handler) DiffSnapshot(c *gin.Context) {
	diff, err := h.mgr.DiffSnapshot(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.String(http.StatusOK, diff)
}

// RestoreSnapshot 用快照整份替换当前文档
// POST /api/snapshots/:id/restore
func (h *Handler) RestoreSnapshot(c *gin.Context) {
	if !requireConfirm(c) {
		return
	}
	id := c.Param("id")
	doc, err := h.mgr.RestoreSnapshot(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	h.log.WithFields(logrus.Fields{"snapshot": id, "client_ip": c.ClientIP()}).Warn("snapshot restored via api")
	c.JSON(http.StatusOK, doc)
}
