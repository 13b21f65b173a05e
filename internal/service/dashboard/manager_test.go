package dashboard

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wtpceo/dashbord-wiple/internal/config"
	"github.com/wtpceo/dashbord-wiple/internal/logger"
	"github.com/wtpceo/dashbord-wiple/internal/model"
	"github.com/wtpceo/dashbord-wiple/internal/store"
)

var fixedNow = time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)

func newTestManager(t *testing.T, remote store.DocumentStore) (*Manager, *store.FileCache) {
	t.Helper()
	cache := store.NewFileCache(filepath.Join(t.TempDir(), "cache", "dashboard.json"))
	m := NewManager(Options{
		Key:    "default",
		Remote: remote,
		Cache:  cache,
		Now:    func() time.Time { return fixedNow },
		Log:    logger.Discard(),
	})
	return m, cache
}

func aeReport(period string, total, expiring, renewed int, revenue float64) model.AEReport {
	return model.AEReport{
		Period: period,
		ByChannel: []model.RenewalChannelReport{{
			Channel:         model.ChannelPerformance,
			TotalClients:    total,
			ExpiringClients: expiring,
			RenewedClients:  renewed,
			RenewalRevenue:  revenue,
		}},
	}
}

func salesReport(period string, clients int, revenue float64) model.SalesReport {
	return model.SalesReport{
		Period:    period,
		ByChannel: []model.NewBusinessChannelReport{{Channel: model.ChannelDelivery, NewClients: clients, NewRevenue: revenue}},
	}
}

// TestLoadBootstrap 测试远端无记录时生成默认文档并写入
func TestLoadBootstrap(t *testing.T) {
	ctx := context.Background()
	remote := store.NewMemoryStore()
	m, cache := newTestManager(t, remote)

	doc, err := m.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, float64(model.DefaultTargetRevenue), doc.TargetRevenue)
	assert.Len(t, doc.AEData, len(model.DefaultAENames))
	assert.Equal(t, StateBootstrapped, m.State())

	stored, _, err := remote.GetDocument(ctx, "default")
	require.NoError(t, err)
	assert.Len(t, stored.SalesData, len(model.DefaultSalesNames))

	cached, err := cache.Load()
	require.NoError(t, err)
	assert.Equal(t, doc.TargetRevenue, cached.TargetRevenue)
}

// TestLoadMigrates 测试读取时补齐目标金额与缺失人员
func TestLoadMigrates(t *testing.T) {
	ctx := context.Background()
	remote := store.NewMemoryStore()
	old := model.DefaultDocument()
	old.TargetRevenue = 0
	old.AEData = old.AEData[:5]
	old.SalesData[0].Reports = nil
	require.NoError(t, remote.PutDocument(ctx, "default", old))

	m, _ := newTestManager(t, remote)
	doc, err := m.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, float64(model.DefaultTargetRevenue), doc.TargetRevenue)
	assert.Len(t, doc.AEData, 6)
	assert.NotNil(t, doc.SalesData[0].Reports)
}

// TestLoadFallback 测试远端读取失败时使用本地缓存
func TestLoadFallback(t *testing.T) {
	ctx := context.Background()
	remote := store.NewMemoryStore()
	m, cache := newTestManager(t, remote)

	cached := model.DefaultDocument()
	cached.TargetRevenue = 123
	require.NoError(t, cache.Save(cached))

	remote.SetFailures(true, false)
	doc, err := m.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, float64(123), doc.TargetRevenue)
}

// TestUnconfiguredStore 测试未配置远端时只读写本地缓存
func TestUnconfiguredStore(t *testing.T) {
	ctx := context.Background()
	m, cache := newTestManager(t, nil)
	assert.False(t, m.RemoteConfigured())

	doc, err := m.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, float64(model.DefaultTargetRevenue), doc.TargetRevenue)

	doc.TargetRevenue = 5
	require.NoError(t, m.Save(ctx, doc))
	cached, err := cache.Load()
	require.NoError(t, err)
	assert.Equal(t, float64(5), cached.TargetRevenue)

	_, err = m.SaveSnapshot(ctx)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	snaps, err := m.ListSnapshots(ctx, store.Descending)
	require.NoError(t, err)
	assert.Empty(t, snaps)
}

// TestSaveFailure 测试保存失败只在远端与缓存都失败时上报
func TestSaveFailure(t *testing.T) {
	ctx := context.Background()

	t.Run("remote fails, cache ok", func(t *testing.T) {
		remote := store.NewMemoryStore()
		m, cache := newTestManager(t, remote)
		remote.SetFailures(false, true)

		doc := model.DefaultDocument()
		doc.TargetRevenue = 42
		require.NoError(t, m.Save(ctx, doc))
		cached, err := cache.Load()
		require.NoError(t, err)
		assert.Equal(t, float64(42), cached.TargetRevenue)
		assert.Equal(t, float64(42), m.Current().TargetRevenue)
		assert.Equal(t, 0, remote.Count())
	})

	t.Run("both fail", func(t *testing.T) {
		blocker := filepath.Join(t.TempDir(), "blocker")
		require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

		remote := store.NewMemoryStore()
		remote.SetFailures(false, true)
		m := NewManager(Options{
			Remote: remote,
			Cache:  store.NewFileCache(filepath.Join(blocker, "dashboard.json")),
			Log:    logger.Discard(),
		})
		err := m.Save(ctx, model.DefaultDocument())
		assert.ErrorIs(t, err, ErrSaveFailed)
		assert.Nil(t, m.Current())
	})
}

// TestSubmitAE 测试 AE 提交：合并、客户数、自动快照与状态
func TestSubmitAE(t *testing.T) {
	ctx := context.Background()
	remote := store.NewMemoryStore()
	m, _ := newTestManager(t, remote)
	name := model.DefaultAENames[0].Name

	doc, err := m.SubmitAE(ctx, name, aeReport("2025-W03", 30, 10, 8, 1_000_000))
	require.NoError(t, err)
	ae := doc.AEData[doc.FindAE(name)]
	require.Len(t, ae.Reports, 1)
	assert.Equal(t, 30, ae.ClientCount)
	assert.InDelta(t, 80, ae.Reports[0].ByChannel[0].RenewalRate, 1e-9)
	assert.Equal(t, "2025-01-15", ae.Reports[0].SubmittedDate)
	assert.Equal(t, StateLive, m.State())

	// 同周期再次提交为替换
	doc, err = m.SubmitAE(ctx, name, aeReport("2025-W03", 31, 10, 9, 1_100_000))
	require.NoError(t, err)
	ae = doc.AEData[doc.FindAE(name)]
	require.Len(t, ae.Reports, 1)
	assert.Equal(t, 9, ae.Reports[0].ByChannel[0].RenewedClients)

	snap, err := remote.GetSnapshot(ctx, "2025-01")
	require.NoError(t, err)
	assert.Equal(t, 1, remote.Count())
	assert.Equal(t, 9, snap.Data.AEData[0].Reports[0].ByChannel[0].RenewedClients)

	_, err = m.SubmitAE(ctx, "nobody", aeReport("2025-W03", 1, 1, 1, 1))
	assert.ErrorIs(t, err, ErrContributorNotFound)
}

// TestSubmitSales 测试销售提交
func TestSubmitSales(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t, store.NewMemoryStore())
	name := model.DefaultSalesNames[0]

	r := model.SalesReport{
		Period:    "2025-01",
		ByChannel: []model.NewBusinessChannelReport{{Channel: model.ChannelDelivery, NewClients: 3, NewRevenue: 900_000}},
	}
	doc, err := m.SubmitSales(ctx, name, r)
	require.NoError(t, err)
	s := doc.SalesData[doc.FindSales(name)]
	require.Len(t, s.Reports, 1)
	assert.Equal(t, "2025-01", s.Reports[0].Period)

	_, err = m.SubmitSales(ctx, "nobody", r)
	assert.True(t, errors.Is(err, ErrContributorNotFound))
}

// TestResetAndWipe 测试清空报告与重置文档
func TestResetAndWipe(t *testing.T) {
	ctx := context.Background()
	remote := store.NewMemoryStore()
	m, _ := newTestManager(t, remote)

	doc, err := m.Load(ctx)
	require.NoError(t, err)
	doc.TargetRevenue = 999
	_, err = m.UpdateBaselines(ctx, doc)
	require.NoError(t, err)
	_, err = m.SubmitAE(ctx, model.DefaultAENames[1].Name, aeReport("2025-W02", 10, 5, 5, 100))
	require.NoError(t, err)

	doc, err = m.ResetReports(ctx)
	require.NoError(t, err)
	ae, sales := doc.ReportCount()
	assert.Zero(t, ae)
	assert.Zero(t, sales)
	assert.Equal(t, float64(999), doc.TargetRevenue)
	assert.Equal(t, StateLive, m.State())

	doc, err = m.Wipe(ctx)
	require.NoError(t, err)
	assert.Equal(t, float64(model.DefaultTargetRevenue), doc.TargetRevenue)
	assert.Equal(t, StateBootstrapped, m.State())
}

// TestRestoreSnapshot 测试快照恢复与差异预览
func TestRestoreSnapshot(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t, store.NewMemoryStore())
	name := model.DefaultAENames[0].Name

	_, err := m.SubmitAE(ctx, name, aeReport("2025-W03", 30, 10, 8, 1_000_000))
	require.NoError(t, err)
	_, err = m.ResetReports(ctx)
	require.NoError(t, err)

	diff, err := m.DiffSnapshot(ctx, "2025-01")
	require.NoError(t, err)
	assert.Contains(t, diff, "2025-W03")

	later := fixedNow.Add(2 * time.Hour)
	m.now = func() time.Time { return later }
	doc, err := m.RestoreSnapshot(ctx, "2025-01")
	require.NoError(t, err)
	ae, _ := doc.ReportCount()
	assert.Equal(t, 1, ae)
	assert.True(t, doc.UpdatedAt.Equal(later), "恢复记为新的保存时间")
	assert.Equal(t, StateLive, m.State())

	_, err = m.RestoreSnapshot(ctx, "2024-12")
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, m.DeleteSnapshot(ctx, "2025-01"))
	assert.ErrorIs(t, m.DeleteSnapshot(ctx, "2025-01"), store.ErrNotFound)
}

// TestSubscribe 测试订阅与取消
func TestSubscribe(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t, nil)

	got := make(chan float64, 4)
	cancel := m.Subscribe(func(doc *model.Document) {
		got <- doc.TargetRevenue
	})

	doc := model.DefaultDocument()
	doc.TargetRevenue = 1
	require.NoError(t, m.Save(ctx, doc))
	select {
	case v := <-got:
		assert.Equal(t, float64(1), v)
	case <-time.After(2 * time.Second):
		t.Fatal("订阅者未收到变更")
	}

	cancel()
	cancel()
	doc.TargetRevenue = 2
	require.NoError(t, m.Save(ctx, doc))
	select {
	case v := <-got:
		t.Fatalf("取消后仍收到变更: %v", v)
	case <-time.After(100 * time.Millisecond):
	}
}

// TestSlowSubscriber 测试慢订阅者不阻塞保存
func TestSlowSubscriber(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t, store.NewMemoryStore())

	release := make(chan struct{})
	defer close(release)
	cancel := m.Subscribe(func(*model.Document) {
		<-release
	})
	defer cancel()

	start := time.Now()
	for i := 0; i < 3*listenerBuffer; i++ {
		_, err := m.SubmitSales(ctx, model.DefaultSalesNames[0], salesReport("2025-W03", i+1, 100))
		require.NoError(t, err)
	}
	assert.Less(t, time.Since(start), time.Second)
}

// TestRunWatch 测试其他写入方的变更被推送到内存文档
func TestRunWatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	remote := store.NewMemoryStore()
	m, _ := newTestManager(t, remote)
	_, err := m.Load(ctx)
	require.NoError(t, err)

	go m.Run(ctx)

	other := model.DefaultDocument()
	other.TargetRevenue = 777
	require.Eventually(t, func() bool {
		_ = remote.PutDocument(ctx, "default", other)
		return m.Current().TargetRevenue == 777
	}, 2*time.Second, 20*time.Millisecond)
}

// TestRunWatchIgnoresOwnWrites 测试本进程写入经远端回传时不重复通知
func TestRunWatchIgnoresOwnWrites(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m, _ := newTestManager(t, store.NewMemoryStore())
	_, err := m.Load(ctx)
	require.NoError(t, err)
	go m.Run(ctx)

	var mu sync.Mutex
	calls := 0
	unsubscribe := m.Subscribe(func(*model.Document) {
		mu.Lock()
		calls++
		mu.Unlock()
	})
	defer unsubscribe()
	count := func() int {
		mu.Lock()
		defer mu.Unlock()
		return calls
	}

	// 等待 watch 订阅就绪：外部写入应被推送
	other := model.DefaultDocument()
	other.TargetRevenue = 777
	require.Eventually(t, func() bool {
		_ = m.remote.PutDocument(ctx, "default", other)
		return m.Current().TargetRevenue == 777
	}, 2*time.Second, 20*time.Millisecond)
	require.Eventually(t, func() bool { return count() >= 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	before := count()

	_, err = m.SubmitSales(ctx, model.DefaultSalesNames[0], salesReport("2025-W03", 1, 100))
	require.NoError(t, err)
	require.Eventually(t, func() bool { return count() == before+1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, before+1, count())
}

// TestParseSeed 测试 YAML 初始文档覆盖默认值
func TestParseSeed(t *testing.T) {
	data := []byte(`
targetRevenue: 500000000
salesData:
  - name: 신규영업
`)
	doc, err := ParseSeed(data)
	require.NoError(t, err)
	assert.Equal(t, float64(500000000), doc.TargetRevenue)
	require.Len(t, doc.SalesData, 1)
	assert.Equal(t, "신규영업", doc.SalesData[0].Name)
	assert.NotNil(t, doc.SalesData[0].Reports)
	assert.Len(t, doc.AEData, len(model.DefaultAENames))
	assert.True(t, doc.UpdatedAt.IsZero())

	_, err = ParseSeed([]byte("targetRevenue: [1"))
	assert.Error(t, err)

	defaults, err := LoadSeed("")
	require.NoError(t, err)
	assert.Equal(t, float64(model.DefaultTargetRevenue), defaults().TargetRevenue)
}

// TestOpen 测试按配置组装管理器
func TestOpen(t *testing.T) {
	dir := t.TempDir()
	seed := filepath.Join(dir, "seed.yaml")
	require.NoError(t, os.WriteFile(seed, []byte("targetRevenue: 100\n"), 0644))

	cfg := config.DefaultConfig()
	cfg.Store.Driver = "memory"
	cfg.Cache.Path = filepath.Join(dir, "cache.json")
	cfg.Bootstrap.SeedFile = seed

	m, closeFn, err := Open(context.Background(), cfg, logger.Discard())
	require.NoError(t, err)
	defer closeFn()
	assert.True(t, m.RemoteConfigured())

	doc, err := m.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, float64(100), doc.TargetRevenue)

	cfg.Store.Driver = "postgres"
	_, _, err = Open(context.Background(), cfg, logger.Discard())
	assert.Error(t, err)

	cfg.Store.Driver = ""
	m, closeFn, err = Open(context.Background(), cfg, logger.Discard())
	require.NoError(t, err)
	defer closeFn()
	assert.False(t, m.RemoteConfigured())
}

// TestOpenUnreachableStore 测试远端不可用时以本地缓存启动
func TestOpenUnreachableStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	cfg := config.DefaultConfig()
	cfg.Store.Driver = "sqlite"
	cfg.Store.SQLitePath = filepath.Join(blocker, "data", "dashboard.db")
	cfg.Cache.Path = filepath.Join(dir, "cache.json")

	m, closeFn, err := Open(ctx, cfg, logger.Discard())
	require.NoError(t, err)
	defer closeFn()
	assert.False(t, m.RemoteConfigured())

	doc, err := m.Load(ctx)
	require.NoError(t, err)
	doc.TargetRevenue = 123
	require.NoError(t, m.Save(ctx, doc))

	cached, err := store.NewFileCache(cfg.Cache.Path).Load()
	require.NoError(t, err)
	assert.Equal(t, float64(123), cached.TargetRevenue)

	_, err = m.SaveSnapshot(ctx)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

// snapshotHookStore 在写快照后执行回调，模拟保存期间的并发替换
type snapshotHookStore struct {
	*store.MemoryStore
	after func()
}

func (s *snapshotHookStore) PutSnapshot(ctx context.Context, snap *model.Snapshot) error {
	err := s.MemoryStore.PutSnapshot(ctx, snap)
	if s.after != nil {
		s.after()
	}
	return err
}

// TestSubmitReturnsSavedDocument 测试提交返回实际写入的文档，不受随后的替换影响
func TestSubmitReturnsSavedDocument(t *testing.T) {
	ctx := context.Background()
	remote := &snapshotHookStore{MemoryStore: store.NewMemoryStore()}
	m, _ := newTestManager(t, remote)
	name := model.DefaultAENames[0].Name

	remote.after = func() {
		replaced := model.DefaultDocument()
		replaced.AEData = nil
		m.set(replaced, true)
	}
	doc, err := m.SubmitAE(ctx, name, aeReport("2025-W03", 30, 10, 8, 1_000_000))
	require.NoError(t, err)
	i := doc.FindAE(name)
	require.GreaterOrEqual(t, i, 0)
	assert.Len(t, doc.AEData[i].Reports, 1)
	assert.Equal(t, -1, m.Current().FindAE(name))
}
