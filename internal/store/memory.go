package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/wtpceo/dashbord-wiple/internal/model"
)

type memoryDocument struct {
	doc       *model.Document
	updatedAt time.Time
}

// MemoryStore 内存文档存储（测试与本地运行）
type MemoryStore struct {
	docs      map[string]memoryDocument
	snapshots map[string]model.Snapshot
	mu        sync.RWMutex
	events    *Broadcaster

	failReads  bool
	failWrites bool
}

var errSimulated = errors.New("simulated store failure")

// NewMemoryStore 创建内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs:      make(map[string]memoryDocument),
		snapshots: make(map[string]model.Snapshot),
		events:    NewBroadcaster(),
	}
}

// GetDocument 读取文档副本
func (s *MemoryStore) GetDocument(_ context.Context, key string) (*model.Document, time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.failReads {
		return nil, time.Time{}, errSimulated
	}
	d, ok := s.docs[key]
	if !ok {
		return nil, time.Time{}, ErrNotFound
	}
	return d.doc.Clone(), d.updatedAt, nil
}

// PutDocument 写入文档副本
func (s *MemoryStore) PutDocument(_ context.Context, key string, doc *model.Document) error {
	s.mu.Lock()
	if s.failWrites {
		s.mu.Unlock()
		return errSimulated
	}
	s.docs[key] = memoryDocument{doc: doc.Clone(), updatedAt: time.Now().UTC()}
	s.mu.Unlock()

	s.events.Publish(key)
	return nil
}

// GetSnapshot 读取快照
func (s *MemoryStore) GetSnapshot(_ context.Context, id string) (*model.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.failReads {
		return nil, errSimulated
	}
	snap, ok := s.snapshots[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneSnapshot(snap), nil
}

// PutSnapshot 写入快照，同月覆盖
func (s *MemoryStore) PutSnapshot(_ context.Context, snap *model.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failWrites {
		return errSimulated
	}
	s.snapshots[snap.ID] = *cloneSnapshot(*snap)
	return nil
}

// ListSnapshots 列出快照
func (s *MemoryStore) ListSnapshots(_ context.Context, order Order) ([]model.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.failReads {
		return nil, errSimulated
	}
	out := make([]model.Snapshot, 0, len(s.snapshots))
	for _, snap := range s.snapshots {
		out = append(out, *cloneSnapshot(snap))
	}
	SortSnapshots(out, order)
	return out, nil
}

// DeleteSnapshot 删除快照
func (s *MemoryStore) DeleteSnapshot(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failWrites {
		return errSimulated
	}
	if _, ok := s.snapshots[id]; !ok {
		return ErrNotFound
	}
	delete(s.snapshots, id)
	return nil
}

// SetFailures 模拟远端读写故障
func (s *MemoryStore) SetFailures(reads, writes bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failReads = reads
	s.failWrites = writes
}

// Count 快照数量
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.snapshots)
}

// Watch 订阅本进程内的写入
func (s *MemoryStore) Watch(ctx context.Context, key string, onChange func(*model.Document)) error {
	return watchBroadcast(ctx, s.events, s, key, onChange)
}

// Close 关闭订阅
func (s *MemoryStore) Close() error {
	s.events.Close()
	return nil
}

func cloneSnapshot(snap model.Snapshot) *model.Snapshot {
	out := snap
	if doc := snap.Data.Clone(); doc != nil {
		out.Data = *doc
	}
	return &out
}
