package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// AppConfig 应用配置
type AppConfig struct {
	Server    ServerConfig    `toml:"server"`
	Store     StoreConfig     `toml:"store"`
	Cache     CacheConfig     `toml:"cache"`
	Redis     RedisConfig     `toml:"redis"`
	Refresh   RefreshConfig   `toml:"refresh"`
	Log       LogConfig       `toml:"log"`
	Bootstrap BootstrapConfig `toml:"bootstrap"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port    int  `toml:"port" env:"WIPLE_PORT"`
	DevMode bool `toml:"dev_mode" env:"WIPLE_DEV"`
}

// StoreConfig 远端文档存储配置
type StoreConfig struct {
	Driver      string `toml:"driver" env:"WIPLE_STORE_DRIVER"` // sqlite | mongo | memory，空表示未配置
	DocumentKey string `toml:"document_key" env:"WIPLE_DOCUMENT_KEY"`
	SQLitePath  string `toml:"sqlite_path" env:"WIPLE_SQLITE_PATH"`
	MongoURI    string `toml:"mongo_uri" env:"WIPLE_MONGO_URI"`
	MongoDB     string `toml:"mongo_db" env:"WIPLE_MONGO_DB"`
}

// Configured 远端存储是否具备连接参数
func (c StoreConfig) Configured() bool {
	switch c.Driver {
	case "sqlite":
		return c.SQLitePath != ""
	case "mongo":
		return c.MongoURI != "" && c.MongoDB != ""
	case "memory":
		return true
	default:
		return false
	}
}

// CacheConfig 本地兜底缓存
type CacheConfig struct {
	Path string `toml:"path" env:"WIPLE_CACHE_PATH"`
}

// RedisConfig 变更通知（可选）
type RedisConfig struct {
	URL string `toml:"url" env:"WIPLE_REDIS_URL"`
}

// RefreshConfig 轮询刷新
type RefreshConfig struct {
	IntervalSeconds int `toml:"interval_seconds" env:"WIPLE_REFRESH_SECONDS"` // <=0 关闭轮询
}

// Interval 轮询间隔
func (c RefreshConfig) Interval() time.Duration {
	if c.IntervalSeconds <= 0 {
		return 0
	}
	return time.Duration(c.IntervalSeconds) * time.Second
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `toml:"level" env:"WIPLE_LOG_LEVEL"`
	Format     string `toml:"format" env:"WIPLE_LOG_FORMAT"` // text | json
	Output     string `toml:"output" env:"WIPLE_LOG_OUTPUT"` // stdout | stderr | file | both
	Dir        string `toml:"dir" env:"WIPLE_LOG_DIR"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
}

// BootstrapConfig 初始文档
type BootstrapConfig struct {
	SeedFile string `toml:"seed_file" env:"WIPLE_SEED_FILE"` // YAML，覆盖默认基线
}

// LoadConfigInfo 配置加载元信息
type LoadConfigInfo struct {
	Path          string
	FileFound     bool
	PortSpecified bool
}

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:    20262,
			DevMode: false,
		},
		Store: StoreConfig{
			Driver:      "sqlite",
			DocumentKey: "default",
			SQLitePath:  "data/dashboard.db",
			MongoDB:     "wiple",
		},
		Cache: CacheConfig{
			Path: "data/cache/dashboard.json",
		},
		Refresh: RefreshConfig{
			IntervalSeconds: 30,
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "text",
			Output:     "stdout",
			Dir:        "logs",
			MaxSizeMB:  100,
			MaxBackups: 5,
			MaxAgeDays: 30,
		},
	}
}

func isPortSpecifiedInToml(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}

	serverAny, ok := raw["server"]
	if !ok {
		return false
	}

	serverMap, ok := serverAny.(map[string]any)
	if !ok {
		return false
	}

	_, ok = serverMap["port"]
	return ok
}

// GetExeDir 获取可执行文件所在目录
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// DefaultPath config.toml 默认位置（可执行文件同目录）
func DefaultPath() string {
	exeDir, err := GetExeDir()
	if err != nil {
		// 无法获取可执行文件目录，使用当前目录
		exeDir = "."
	}
	return filepath.Join(exeDir, "config.toml")
}

// LoadConfigWithInfo 加载配置：默认值 → config.toml → .env → 环境变量
func LoadConfigWithInfo(path string) (*AppConfig, LoadConfigInfo, error) {
	if path == "" {
		path = DefaultPath()
	}
	info := LoadConfigInfo{Path: path}
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		info.FileFound = true
		info.PortSpecified = isPortSpecifiedInToml(data)
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, info, err
		}
	case os.IsNotExist(err):
		// 配置文件不存在，使用默认配置
	default:
		return nil, info, err
	}

	if err := ApplyEnv(config); err != nil {
		return nil, info, err
	}
	return config, info, nil
}

// ApplyEnv 读取 .env（不存在则忽略）并用 WIPLE_* 环境变量覆盖
func ApplyEnv(config *AppConfig) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return env.Parse(config)
}

// LoadConfig 从默认位置加载配置
func LoadConfig() (*AppConfig, error) {
	config, _, err := LoadConfigWithInfo("")
	return config, err
}

// SaveConfig 保存配置到 path（为空时写入默认位置）
func SaveConfig(config *AppConfig, path string) error {
	if path == "" {
		path = DefaultPath()
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ResolvePath 相对路径按可执行文件目录解析
func ResolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}
	return filepath.Join(exeDir, p)
}
