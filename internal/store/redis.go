package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/wtpceo/dashbord-wiple/internal/model"
)

// ChannelName 文档变更通知频道
func ChannelName(key string) string {
	return "wiple:dashboard:" + key
}

// ChangeEvent 变更通知内容
type ChangeEvent struct {
	Key       string    `json:"key"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RedisNotifier 包装任意 DocumentStore，写入后经 Redis 发布变更，跨进程订阅
type RedisNotifier struct {
	DocumentStore
	client *redis.Client
	log    *logrus.Entry
}

// NewRedisNotifier 连接 Redis 并包装 inner
func NewRedisNotifier(ctx context.Context, inner DocumentStore, url string, log *logrus.Entry) (*RedisNotifier, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return &RedisNotifier{DocumentStore: inner, client: client, log: log}, nil
}

// PutDocument 写入后发布变更；发布失败只记录日志
func (n *RedisNotifier) PutDocument(ctx context.Context, key string, doc *model.Document) error {
	if err := n.DocumentStore.PutDocument(ctx, key, doc); err != nil {
		return err
	}
	payload, _ := json.Marshal(ChangeEvent{Key: key, UpdatedAt: time.Now().UTC()})
	if err := n.client.Publish(ctx, ChannelName(key), payload).Err(); err != nil {
		n.log.WithError(err).WithField("key", key).Warn("publish change failed")
	}
	return nil
}

// Watch 订阅 Redis 频道，收到通知后重新读取文档
func (n *RedisNotifier) Watch(ctx context.Context, key string, onChange func(*model.Document)) error {
	sub := n.client.Subscribe(ctx, ChannelName(key))
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe %s: %w", ChannelName(key), err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return errors.New("redis subscription closed")
			}
			var ev ChangeEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil || ev.Key != key {
				continue
			}
			doc, _, err := n.DocumentStore.GetDocument(ctx, key)
			if err != nil {
				n.log.WithError(err).WithField("key", key).Warn("reload after change failed")
				continue
			}
			onChange(doc)
		}
	}
}

// Close 关闭 Redis 与底层存储
func (n *RedisNotifier) Close() error {
	return errors.Join(n.client.Close(), n.DocumentStore.Close())
}
