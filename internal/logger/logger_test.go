package logger

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wtpceo/dashbord-wiple/internal/config"
)

// TestGetReturnsSameLogger 测试同名 logger 复用
func TestGetReturnsSameLogger(t *testing.T) {
	a := Get("store")
	b := Get("store")
	assert.Same(t, a, b)
	assert.Equal(t, "store", a.Data["logger"])
}

// TestInitFileOutput 测试文件输出
func TestInitFileOutput(t *testing.T) {
	dir := t.TempDir()
	c := config.DefaultConfig().Log
	c.Output = "file"
	c.Dir = dir
	c.Format = "json"
	require.NoError(t, Init(c))
	t.Cleanup(func() { _ = Init(config.DefaultConfig().Log) })

	Get("app").Info("hello")

	data, err := os.ReadFile(filepath.Join(dir, "app.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"hello"`)
}

// TestGinMiddleware 测试请求日志字段
func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	l, hook := test.NewNullLogger()
	l.SetLevel(logrus.DebugLevel)

	r := gin.New()
	r.Use(GinMiddleware(logrus.NewEntry(l)))
	r.GET("/boom", func(c *gin.Context) { c.JSON(http.StatusInternalServerError, gin.H{"error": "x"}) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set(RequestIDHeader, "rid-1")
	r.ServeHTTP(w, req)

	assert.Equal(t, "rid-1", w.Header().Get(RequestIDHeader))
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
	assert.Equal(t, "rid-1", hook.LastEntry().Data["request_id"])
	assert.Equal(t, 500, hook.LastEntry().Data["status"])
}
