package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wtpceo/dashbord-wiple/internal/config"
)

// ErrUnreachable 已配置的远端存储在启动时无法连接
var ErrUnreachable = errors.New("document store unreachable")

const connectTimeout = 10 * time.Second

// Open 按配置创建远端存储；未配置时返回 (nil, nil)，调用方进入兜底模式
// 已配置但无法连接时返回包装了 ErrUnreachable 的错误，调用方同样可以进入兜底模式
func Open(ctx context.Context, cfg *config.AppConfig, log *logrus.Entry) (DocumentStore, error) {
	switch cfg.Store.Driver {
	case "", "sqlite", "mongo", "memory":
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
	if !cfg.Store.Configured() {
		return nil, nil
	}

	var (
		s   DocumentStore
		err error
	)
	switch cfg.Store.Driver {
	case "sqlite":
		s, err = NewSQLite(config.ResolvePath(cfg.Store.SQLitePath))
	case "mongo":
		connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
		s, err = NewMongo(connectCtx, cfg.Store.MongoURI, cfg.Store.MongoDB)
		cancel()
	case "memory":
		s = NewMemoryStore()
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreachable, cfg.Store.Driver, err)
	}

	log.WithField("driver", cfg.Store.Driver).Info("document store opened")

	if cfg.Redis.URL == "" {
		return s, nil
	}
	n, err := NewRedisNotifier(ctx, s, cfg.Redis.URL, log)
	if err != nil {
		// 通知不可用不影响读写
		log.WithError(err).Warn("redis notifier disabled")
		return s, nil
	}
	log.Info("redis change notifications enabled")
	return n, nil
}
