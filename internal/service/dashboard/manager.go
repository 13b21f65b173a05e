package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wtpceo/dashbord-wiple/internal/history"
	"github.com/wtpceo/dashbord-wiple/internal/model"
	"github.com/wtpceo/dashbord-wiple/internal/report"
	"github.com/wtpceo/dashbord-wiple/internal/store"
)

var (
	// ErrSaveFailed 远端与本地缓存均写入失败
	ErrSaveFailed = errors.New("save failed, retry")
	// ErrContributorNotFound 提交人不存在
	ErrContributorNotFound = errors.New("contributor not found")
	// ErrStoreUnavailable 快照操作需要远端存储
	ErrStoreUnavailable = errors.New("document store not configured")
)

const (
	watchRetryDelay = 5 * time.Second
	listenerBuffer  = 8
)

// State 文档生命周期状态
type State string

const (
	StateBootstrapped State = "bootstrapped" // 默认基线，尚无显式保存
	StateLive         State = "live"
)

// Options Manager 构造参数
type Options struct {
	Key      string              // 文档固定 key
	Remote   store.DocumentStore // nil 表示未配置，只使用本地缓存
	Cache    *store.FileCache
	Defaults func() *model.Document
	Interval time.Duration // 轮询间隔，<=0 关闭
	Now      func() time.Time
	Log      *logrus.Entry

	RemoteErr error // 远端已配置但启动时不可用的原因，仅用于日志
}

// Manager 看板文档管理器：读取、迁移、保存、快照与变更推送
// 文档整份后写覆盖，不做并发控制
type Manager struct {
	key      string
	remote   store.DocumentStore
	watcher  store.Watcher
	cache    *store.FileCache
	defaults func() *model.Document
	interval time.Duration
	now      func() time.Time
	log      *logrus.Entry

	mu        sync.RWMutex
	doc       *model.Document
	pending   *model.Document // 最近一次本地写入，用于识别远端回声
	written   time.Time       // 最近一次本地保存时间
	listeners map[int]chan *model.Document
	nextID    int
}

// NewManager 创建管理器；远端未配置或不可用时只记录一次日志
func NewManager(opts Options) *Manager {
	m := &Manager{
		key:       opts.Key,
		remote:    opts.Remote,
		cache:     opts.Cache,
		defaults:  opts.Defaults,
		interval:  opts.Interval,
		now:       opts.Now,
		log:       opts.Log,
		listeners: make(map[int]chan *model.Document),
	}
	if m.key == "" {
		m.key = "default"
	}
	if m.defaults == nil {
		m.defaults = model.DefaultDocument
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.log == nil {
		m.log = logrus.NewEntry(logrus.StandardLogger())
	}
	if w, ok := m.remote.(store.Watcher); ok {
		m.watcher = w
	}
	switch {
	case m.remote == nil && opts.RemoteErr != nil:
		m.log.WithError(opts.RemoteErr).WithField("cache", m.cachePath()).Error("document store unavailable, reads and writes use local cache only")
	case m.remote == nil:
		m.log.WithField("cache", m.cachePath()).Warn("document store not configured, reads and writes use local cache only")
	}
	return m
}

// Key 文档 key
func (m *Manager) Key() string {
	return m.key
}

// RemoteConfigured 是否配置了远端存储
func (m *Manager) RemoteConfigured() bool {
	return m.remote != nil
}

func (m *Manager) cachePath() string {
	if m.cache == nil {
		return ""
	}
	return m.cache.Path()
}

// Load 读取远端文档并迁移；读取失败时本次使用本地缓存（或默认文档）
func (m *Manager) Load(ctx context.Context) (*model.Document, error) {
	if m.remote == nil {
		doc := m.fallback()
		m.set(doc, false)
		return doc.Clone(), nil
	}

	doc, _, err := m.remote.GetDocument(ctx, m.key)
	switch {
	case errors.Is(err, store.ErrNotFound):
		doc = m.defaults()
		if err := m.remote.PutDocument(ctx, m.key, doc); err != nil {
			m.log.WithError(err).WithField("key", m.key).Warn("bootstrap document write failed")
		} else {
			m.log.WithField("key", m.key).Info("bootstrap document created")
		}
	case err != nil:
		m.log.WithError(err).WithField("key", m.key).Warn("document read failed, using fallback")
		doc = m.fallback()
		m.set(doc, false)
		return doc.Clone(), nil
	default:
		if model.Migrate(doc, m.defaults()) {
			m.log.WithField("key", m.key).Info("document migrated")
		}
	}

	m.writeCache(doc)
	m.set(doc, false)
	return doc.Clone(), nil
}

// fallback 本地缓存，缺失时为默认文档
func (m *Manager) fallback() *model.Document {
	if m.cache != nil {
		doc, err := m.cache.Load()
		if err == nil {
			model.Migrate(doc, m.defaults())
			return doc
		}
		if !errors.Is(err, store.ErrNotFound) {
			m.log.WithError(err).Warn("local cache unreadable, using defaults")
		}
	}
	return m.defaults()
}

func (m *Manager) writeCache(doc *model.Document) error {
	if m.cache == nil {
		return errors.New("no local cache")
	}
	if err := m.cache.Save(doc); err != nil {
		m.log.WithError(err).Warn("local cache write failed")
		return err
	}
	return nil
}

// Current 内存中的文档副本；尚未加载时返回 nil
func (m *Manager) Current() *model.Document {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.doc.Clone()
}

// Document 返回内存文档，尚未加载时先加载
func (m *Manager) Document(ctx context.Context) (*model.Document, error) {
	if doc := m.Current(); doc != nil {
		return doc, nil
	}
	return m.Load(ctx)
}

// State 文档状态：显式保存过为 Live
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.doc == nil || m.doc.UpdatedAt.IsZero() {
		return StateBootstrapped
	}
	return StateLive
}

// Save 显式保存：写远端（失败记录日志）、写本地缓存、更新当月快照并通知订阅者
// 仅当远端与缓存都失败时返回 ErrSaveFailed
func (m *Manager) Save(ctx context.Context, doc *model.Document) error {
	_, err := m.save(ctx, doc)
	return err
}

// save 同 Save，返回实际写入的文档副本
func (m *Manager) save(ctx context.Context, doc *model.Document) (*model.Document, error) {
	doc = doc.Clone()
	doc.UpdatedAt = m.stamp()
	remoteOK, err := m.persist(ctx, doc)
	if err != nil {
		return nil, err
	}
	if remoteOK {
		snap := history.BuildSnapshot(doc, m.now())
		if err := history.UpsertSnapshot(ctx, m.remote, snap); err != nil {
			m.log.WithError(err).WithField("snapshot", snap.ID).Warn("auto snapshot failed")
		}
	}
	return doc.Clone(), nil
}

// stamp 保存时间，截断到毫秒以便经远端往返后仍可比较
func (m *Manager) stamp() time.Time {
	t := m.now().UTC().Truncate(time.Millisecond)
	m.mu.Lock()
	m.written = t
	m.mu.Unlock()
	return t
}

// persist 写远端与缓存，更新内存并通知；返回远端是否写入成功
func (m *Manager) persist(ctx context.Context, doc *model.Document) (bool, error) {
	m.mu.Lock()
	m.pending = doc.Clone()
	m.mu.Unlock()

	var remoteErr error
	if m.remote == nil {
		remoteErr = ErrStoreUnavailable
	} else if remoteErr = m.remote.PutDocument(ctx, m.key, doc); remoteErr != nil {
		m.log.WithError(remoteErr).WithField("key", m.key).Warn("document write failed, keeping local copy")
	}
	cacheErr := m.writeCache(doc)

	if remoteErr != nil && cacheErr != nil {
		m.log.WithFields(logrus.Fields{"remote": remoteErr, "cache": cacheErr}).Error("document not persisted")
		return false, fmt.Errorf("%w: %v", ErrSaveFailed, cacheErr)
	}
	m.set(doc, true)
	return remoteErr == nil, nil
}

// SubmitAE 合并 AE 报告后保存（读-改-写，后写覆盖），返回写入的文档
func (m *Manager) SubmitAE(ctx context.Context, name string, r model.AEReport) (*model.Document, error) {
	doc, err := m.Load(ctx)
	if err != nil {
		return nil, err
	}
	i := doc.FindAE(name)
	if i < 0 {
		return nil, fmt.Errorf("%w: ae %q", ErrContributorNotFound, name)
	}
	if r.SubmittedDate == "" {
		r.SubmittedDate = m.now().Format("2006-01-02")
	}
	doc.AEData[i] = report.SubmitAE(doc.AEData[i], r)
	saved, err := m.save(ctx, doc)
	if err != nil {
		return nil, err
	}
	m.log.WithFields(logrus.Fields{"ae": name, "period": r.Period}).Info("ae report submitted")
	return saved, nil
}

// SubmitSales 合并销售报告后保存
func (m *Manager) SubmitSales(ctx context.Context, name string, r model.SalesReport) (*model.Document, error) {
	doc, err := m.Load(ctx)
	if err != nil {
		return nil, err
	}
	i := doc.FindSales(name)
	if i < 0 {
		return nil, fmt.Errorf("%w: sales %q", ErrContributorNotFound, name)
	}
	if r.SubmittedDate == "" {
		r.SubmittedDate = m.now().Format("2006-01-02")
	}
	doc.SalesData[i] = report.SubmitSales(doc.SalesData[i], r)
	saved, err := m.save(ctx, doc)
	if err != nil {
		return nil, err
	}
	m.log.WithFields(logrus.Fields{"sales": name, "period": r.Period}).Info("sales report submitted")
	return saved, nil
}

// UpdateBaselines 管理端整份保存（基线与人员）
func (m *Manager) UpdateBaselines(ctx context.Context, doc *model.Document) (*model.Document, error) {
	doc = doc.Clone()
	model.Migrate(doc, m.defaults())
	return m.save(ctx, doc)
}

// ResetReports 清空所有报告，保留基线（Live → Live）
func (m *Manager) ResetReports(ctx context.Context) (*model.Document, error) {
	doc, err := m.Load(ctx)
	if err != nil {
		return nil, err
	}
	doc.ClearReports()
	doc.UpdatedAt = m.stamp()
	if _, err := m.persist(ctx, doc); err != nil {
		return nil, err
	}
	m.log.Warn("all reports cleared")
	return m.Current(), nil
}

// Wipe 重新生成默认文档（→ Bootstrapped）
func (m *Manager) Wipe(ctx context.Context) (*model.Document, error) {
	if _, err := m.persist(ctx, m.defaults()); err != nil {
		return nil, err
	}
	m.log.Warn("document wiped to defaults")
	return m.Current(), nil
}

// set 替换内存文档；notify 为假时仅在 UpdatedAt 变化时通知
// 通知投递到各订阅者的缓冲队列，不阻塞调用方
func (m *Manager) set(doc *model.Document, notify bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	changed := notify || m.doc == nil || !m.doc.UpdatedAt.Equal(doc.UpdatedAt)
	m.doc = doc.Clone()
	if !changed {
		return
	}
	for _, ch := range m.listeners {
		offer(ch, doc.Clone())
	}
}

// offer 非阻塞投递；队列满时丢弃最旧的一份，订阅者只关心最新文档
func offer(ch chan *model.Document, doc *model.Document) {
	select {
	case ch <- doc:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- doc:
	default:
	}
}

// Subscribe 注册变更回调，回调在独立 goroutine 中按顺序执行；返回取消函数
func (m *Manager) Subscribe(fn func(*model.Document)) func() {
	ch := make(chan *model.Document, listenerBuffer)
	go func() {
		for doc := range ch {
			fn(doc)
		}
	}()

	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = ch
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.listeners, id)
			close(ch)
			m.mu.Unlock()
		})
	}
}

// Run 轮询刷新并订阅远端推送，阻塞直到 ctx 结束
func (m *Manager) Run(ctx context.Context) {
	if m.watcher != nil {
		go m.watch(ctx)
	}
	if m.interval <= 0 {
		<-ctx.Done()
		return
	}

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := m.Load(ctx); err != nil && ctx.Err() == nil {
				m.log.WithError(err).Warn("refresh failed")
			}
		}
	}
}

func (m *Manager) watch(ctx context.Context) {
	for {
		err := m.watcher.Watch(ctx, m.key, m.applyRemote)
		if ctx.Err() != nil {
			return
		}
		m.log.WithError(err).Warn("change subscription interrupted, retrying")
		select {
		case <-ctx.Done():
			return
		case <-time.After(watchRetryDelay):
		}
	}
}

// applyRemote 远端推送的文档直接替换内存文档；本进程自身写入的回声被忽略
func (m *Manager) applyRemote(doc *model.Document) {
	model.Migrate(doc, m.defaults())
	m.mu.RLock()
	echo := m.doc.SameAs(doc) || m.pending.SameAs(doc) ||
		(!doc.UpdatedAt.IsZero() && doc.UpdatedAt.Equal(m.written))
	m.mu.RUnlock()
	if echo {
		return
	}
	m.writeCache(doc)
	m.set(doc, true)
}
