// Package logger 基于 logrus 的具名日志，文件输出由 lumberjack 轮转
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/wtpceo/dashbord-wiple/internal/config"
)

var (
	loggers   = make(map[string]*logrus.Entry)
	loggersMu sync.Mutex

	cfg = config.DefaultConfig().Log
)

// Init 设置日志配置，已创建的 logger 会被重建
func Init(c config.LogConfig) error {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	if c.Output == "file" || c.Output == "both" {
		if err := os.MkdirAll(c.Dir, 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
	}
	cfg = c
	loggers = make(map[string]*logrus.Entry)
	return nil
}

// Get 按名称获取 logger（app, store, http ...）
func Get(name string) *logrus.Entry {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	if l, ok := loggers[name]; ok {
		return l
	}
	l := newLogger(name, cfg)
	loggers[name] = l
	return l
}

// Discard 丢弃所有输出的 logger（测试用）
func Discard() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func newLogger(name string, c config.LogConfig) *logrus.Entry {
	l := logrus.New()

	level, err := logrus.ParseLevel(c.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	if c.Format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05.000",
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime: "timestamp",
				logrus.FieldKeyMsg:  "message",
			},
		})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05.000",
		})
	}

	var writers []io.Writer
	if c.Output == "file" || c.Output == "both" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   filepath.Join(c.Dir, name+".log"),
			MaxSize:    c.MaxSizeMB,
			MaxBackups: c.MaxBackups,
			MaxAge:     c.MaxAgeDays,
			Compress:   true,
		})
	}
	switch c.Output {
	case "file":
	case "stderr":
		writers = append(writers, os.Stderr)
	default:
		writers = append(writers, os.Stdout)
	}
	l.SetOutput(io.MultiWriter(writers...))

	return l.WithField("logger", name)
}
