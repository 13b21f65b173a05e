package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/wtpceo/dashbord-wiple/internal/model"
)

// FileCache 本地兜底缓存：最近一次成功读写的文档
type FileCache struct {
	path string
	mu   sync.Mutex
}

// NewFileCache 创建文件缓存
func NewFileCache(path string) *FileCache {
	return &FileCache{path: path}
}

// Path 缓存文件路径
func (c *FileCache) Path() string {
	return c.path
}

// Load 读取缓存；文件不存在时返回 ErrNotFound
func (c *FileCache) Load() (*model.Document, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var doc model.Document
	if err := readJSON(c.path, &doc); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read cache %s: %w", c.path, err)
	}
	return &doc, nil
}

// Save 原子写入缓存
func (c *FileCache) Save(doc *model.Document) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := writeJSONAtomic(c.path, doc); err != nil {
		return fmt.Errorf("failed to write cache %s: %w", c.path, err)
	}
	return nil
}

func readJSON(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

func writeJSONAtomic(path string, v interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
