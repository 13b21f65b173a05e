package store

import (
	"context"
	"sync"
	"time"

	"github.com/wtpceo/dashbord-wiple/internal/model"
)

// Broadcaster 进程内变更广播，推送被写入的 key
type Broadcaster struct {
	mu   sync.Mutex
	subs map[chan string]struct{}
}

// NewBroadcaster 创建广播器
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[chan string]struct{})}
}

// Subscribe 订阅变更；返回的 cancel 可重复调用
func (b *Broadcaster) Subscribe() (<-chan string, func()) {
	ch := make(chan string, 8)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subs[ch]; ok {
			delete(b.subs, ch)
			close(ch)
		}
	}
	return ch, cancel
}

// Publish 通知所有订阅者；订阅者缓冲已满时丢弃
func (b *Broadcaster) Publish(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- key:
		default:
		}
	}
}

// Close 关闭所有订阅
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		delete(b.subs, ch)
		close(ch)
	}
}

type documentGetter interface {
	GetDocument(ctx context.Context, key string) (*model.Document, time.Time, error)
}

// watchBroadcast 收到 key 的变更后重新读取并回调
func watchBroadcast(ctx context.Context, b *Broadcaster, get documentGetter, key string, onChange func(*model.Document)) error {
	ch, cancel := b.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case k, ok := <-ch:
			if !ok {
				return nil
			}
			if k != key {
				continue
			}
			doc, _, err := get.GetDocument(ctx, key)
			if err != nil {
				continue
			}
			onChange(doc)
		}
	}
}
