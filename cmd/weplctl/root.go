package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wtpceo/dashbord-wiple/internal/config"
	"github.com/wtpceo/dashbord-wiple/internal/logger"
	"github.com/wtpceo/dashbord-wiple/internal/service/dashboard"
)

var errNotConfirmed = errors.New("destructive operation, re-run with --yes")

type app struct {
	configPath string
}

// withManager 加载配置并打开管理器，执行 fn 后释放连接
func (a *app) withManager(ctx context.Context, fn func(*dashboard.Manager) error) error {
	cfg, _, err := config.LoadConfigWithInfo(a.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	// 命令输出走 stdout，日志改到 stderr
	if cfg.Log.Output == "stdout" {
		cfg.Log.Output = "stderr"
	}
	if err := logger.Init(cfg.Log); err != nil {
		return err
	}
	mgr, closeFn, err := dashboard.Open(ctx, cfg, logger.Get("cli"))
	if err != nil {
		return err
	}
	defer closeFn()
	return fn(mgr)
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "weplctl",
		Short:         "Wiple dashboard admin tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config.toml path")

	root.AddCommand(
		newCheckCmd(a),
		newResetReportsCmd(a),
		newWipeCmd(a),
		newSnapshotCmd(a),
		newExportCmd(a),
	)
	return root
}

func confirmed(cmd *cobra.Command) error {
	yes, err := cmd.Flags().GetBool("yes")
	if err != nil {
		return err
	}
	if !yes {
		return errNotConfirmed
	}
	return nil
}
