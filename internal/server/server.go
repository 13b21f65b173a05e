package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	v1 "github.com/wtpceo/dashbord-wiple/internal/api/v1"
	"github.com/wtpceo/dashbord-wiple/internal/config"
	"github.com/wtpceo/dashbord-wiple/internal/logger"
	"github.com/wtpceo/dashbord-wiple/internal/service/dashboard"
)

// frontendDevURL 开发模式下前端开发服务器地址
const frontendDevURL = "http://localhost:3000"

// Server HTTP 服务器
type Server struct {
	router *gin.Engine
	http   *http.Server
	mgr    *dashboard.Manager
	v1     *v1.Handler
	log    *logrus.Entry
}

// NewServer 创建服务器
func NewServer(cfg *config.AppConfig, mgr *dashboard.Manager, log *logrus.Entry) *Server {
	devMode := cfg.Server.DevMode
	if !devMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery(), logger.GinMiddleware(log))

	s := &Server{
		router: router,
		mgr:    mgr,
		v1:     v1.NewHandler(mgr, log),
		log:    log,
	}
	s.http = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.setupRoutes(devMode)
	return s
}

// setupRoutes 设置路由
func (s *Server) setupRoutes(devMode bool) {
	// CORS
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, "+logger.RequestIDHeader)
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	api := s.router.Group("/api")
	{
		s.v1.RegisterRoutes(api)
	}

	if devMode {
		// 开发模式：页面请求转到前端开发服务器
		s.router.NoRoute(func(c *gin.Context) {
			c.Redirect(http.StatusTemporaryRedirect, frontendDevURL+c.Request.URL.Path)
		})
	} else {
		s.router.NoRoute(func(c *gin.Context) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		})
	}
}

// Handler 路由（用于测试）
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr 监听地址
func (s *Server) Addr() string {
	return s.http.Addr
}

// Run 启动服务器，阻塞直到关闭
func (s *Server) Run() error {
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown 停止接收请求并断开 websocket
func (s *Server) Shutdown(ctx context.Context) error {
	s.v1.Close()
	return s.http.Shutdown(ctx)
}
