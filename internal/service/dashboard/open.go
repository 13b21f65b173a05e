package dashboard

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/wtpceo/dashbord-wiple/internal/config"
	"github.com/wtpceo/dashbord-wiple/internal/store"
)

// Open 按配置组装管理器：初始文档、远端存储（可缺省）与本地缓存
// 返回的 close 函数释放远端连接
func Open(ctx context.Context, cfg *config.AppConfig, log *logrus.Entry) (*Manager, func(), error) {
	defaults, err := LoadSeed(config.ResolvePath(cfg.Bootstrap.SeedFile))
	if err != nil {
		return nil, nil, err
	}

	// 远端连不上时与未配置相同，读写走本地缓存
	remote, err := store.Open(ctx, cfg, log)
	var remoteErr error
	switch {
	case errors.Is(err, store.ErrUnreachable):
		remote, remoteErr = nil, err
	case err != nil:
		return nil, nil, err
	}

	mgr := NewManager(Options{
		Key:       cfg.Store.DocumentKey,
		Remote:    remote,
		Cache:     store.NewFileCache(config.ResolvePath(cfg.Cache.Path)),
		Defaults:  defaults,
		Interval:  cfg.Refresh.Interval(),
		Log:       log,
		RemoteErr: remoteErr,
	})

	closeFn := func() {
		if remote == nil {
			return
		}
		if err := remote.Close(); err != nil {
			log.WithError(err).Warn("close document store failed")
		}
	}
	return mgr, closeFn, nil
}
