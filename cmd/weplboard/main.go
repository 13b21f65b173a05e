package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wtpceo/dashbord-wiple/internal/config"
	"github.com/wtpceo/dashbord-wiple/internal/logger"
	"github.com/wtpceo/dashbord-wiple/internal/server"
	"github.com/wtpceo/dashbord-wiple/internal/service/dashboard"
)

var (
	port       = flag.Int("port", 0, "服务端口 (config.toml 优先；仅当未显式配置 port 时生效)")
	devMode    = flag.Bool("dev", false, "开发模式")
	configPath = flag.String("config", "", "配置文件路径 (默认可执行文件同目录 config.toml)")
)

func main() {
	flag.Parse()

	fmt.Println("==========================================")
	fmt.Println("  Wiple - 마케팅 운영 대시보드")
	fmt.Println("==========================================")

	// 加载配置
	cfg, info, err := config.LoadConfigWithInfo(*configPath)
	if err != nil {
		log.Printf("加载配置失败，使用默认配置: %v", err)
		cfg = config.DefaultConfig()
		info = config.LoadConfigInfo{}
	}

	// 命令行参数覆盖配置
	if *port > 0 && !info.PortSpecified {
		cfg.Server.Port = *port
	}
	if *devMode {
		cfg.Server.DevMode = true
	}

	if err := logger.Init(cfg.Log); err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	appLog := logger.Get("app")
	appLog.WithField("config", info.Path).WithField("found", info.FileFound).Info("config loaded")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mgr, closeStore, err := dashboard.Open(ctx, cfg, logger.Get("store"))
	if err != nil {
		appLog.WithError(err).Fatal("初始化文档存储失败")
	}
	defer closeStore()

	if _, err := mgr.Load(ctx); err != nil {
		appLog.WithError(err).Warn("initial load failed")
	}
	go mgr.Run(ctx)

	srv := server.NewServer(cfg, mgr, logger.Get("http"))
	go func() {
		appLog.WithField("addr", srv.Addr()).Info("服务启动")
		if err := srv.Run(); err != nil {
			appLog.WithError(err).Error("服务异常退出")
			stop()
		}
	}()

	if cfg.Server.DevMode {
		fmt.Printf("开发模式: API http://localhost:%d/api\n", cfg.Server.Port)
	}
	fmt.Println("\n按 Ctrl+C 停止服务...")

	<-ctx.Done()
	fmt.Println("\n正在关闭服务...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.WithError(err).Error("关闭服务失败")
		os.Exit(1)
	}
}
