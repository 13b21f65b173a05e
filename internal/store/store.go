// Package store 看板共享文档与月度快照的持久化
package store

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/wtpceo/dashbord-wiple/internal/model"
)

// ErrNotFound 记录不存在
var ErrNotFound = errors.New("not found")

// Order 快照排序方向
type Order int

const (
	Descending Order = iota // 新 → 旧
	Ascending               // 旧 → 新
)

// ParseOrder "asc" 为升序，其余为降序
func ParseOrder(s string) Order {
	if strings.EqualFold(s, "asc") {
		return Ascending
	}
	return Descending
}

// SnapshotStore 月度快照表（按 "YYYY-MM" 寻址）
type SnapshotStore interface {
	GetSnapshot(ctx context.Context, id string) (*model.Snapshot, error)
	PutSnapshot(ctx context.Context, snap *model.Snapshot) error
	ListSnapshots(ctx context.Context, order Order) ([]model.Snapshot, error)
	DeleteSnapshot(ctx context.Context, id string) error
}

// DocumentStore 共享文档存储：整份文档后写覆盖，无锁
type DocumentStore interface {
	GetDocument(ctx context.Context, key string) (*model.Document, time.Time, error)
	PutDocument(ctx context.Context, key string, doc *model.Document) error
	SnapshotStore
	Close() error
}

// Watcher 订阅指定 key 的文档变更，阻塞直到 ctx 结束
type Watcher interface {
	Watch(ctx context.Context, key string, onChange func(*model.Document)) error
}

// SortSnapshots 按月份排序（原地）
func SortSnapshots(snaps []model.Snapshot, order Order) {
	sort.Slice(snaps, func(i, j int) bool {
		if order == Ascending {
			return snaps[i].ID < snaps[j].ID
		}
		return snaps[i].ID > snaps[j].ID
	})
}
