package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wtpceo/dashbord-wiple/internal/period"
	"github.com/wtpceo/dashbord-wiple/internal/report"
	"github.com/wtpceo/dashbord-wiple/internal/service/dashboard"
	"github.com/wtpceo/dashbord-wiple/internal/store"
)

// errConfirmRequired 破坏性操作缺少确认
var errConfirmRequired = errors.New(`confirmation required: send {"confirm": true}`)

// confirmRequest 破坏性操作的确认请求体
type confirmRequest struct {
	Confirm bool `json:"confirm"`
}

// requireConfirm 请求体必须为 {"confirm": true}
func requireConfirm(c *gin.Context) bool {
	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil || !req.Confirm {
		c.JSON(http.StatusBadRequest, gin.H{"error": errConfirmRequired.Error()})
		return false
	}
	return true
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, report.ErrInvalidReport), errors.Is(err, period.ErrInvalidPeriod):
		return http.StatusBadRequest
	case errors.Is(err, dashboard.ErrContributorNotFound), errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, dashboard.ErrStoreUnavailable):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError 按错误类型返回 400/404/409/500
func writeError(c *gin.Context, err error) {
	status := statusOf(err)
	_ = c.Error(err)
	msg := err.Error()
	if errors.Is(err, dashboard.ErrSaveFailed) {
		msg = dashboard.ErrSaveFailed.Error()
	}
	c.JSON(status, gin.H{"error": msg})
}
