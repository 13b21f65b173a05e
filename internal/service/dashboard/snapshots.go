package dashboard

import (
	"context"

	"github.com/wtpceo/dashbord-wiple/internal/history"
	"github.com/wtpceo/dashbord-wiple/internal/model"
	"github.com/wtpceo/dashbord-wiple/internal/store"
)

// SaveSnapshot 以当前文档保存本月快照（同月覆盖）
func (m *Manager) SaveSnapshot(ctx context.Context) (*model.Snapshot, error) {
	if m.remote == nil {
		return nil, ErrStoreUnavailable
	}
	doc, err := m.Document(ctx)
	if err != nil {
		return nil, err
	}
	snap := history.BuildSnapshot(doc, m.now())
	if err := history.UpsertSnapshot(ctx, m.remote, snap); err != nil {
		return nil, err
	}
	m.log.WithField("snapshot", snap.ID).Info("snapshot saved")
	return &snap, nil
}

// ListSnapshots 列出快照
func (m *Manager) ListSnapshots(ctx context.Context, order store.Order) ([]model.Snapshot, error) {
	if m.remote == nil {
		return []model.Snapshot{}, nil
	}
	return m.remote.ListSnapshots(ctx, order)
}

// GetSnapshot 读取快照
func (m *Manager) GetSnapshot(ctx context.Context, id string) (*model.Snapshot, error) {
	if m.remote == nil {
		return nil, ErrStoreUnavailable
	}
	return m.remote.GetSnapshot(ctx, id)
}

// DeleteSnapshot 删除快照
func (m *Manager) DeleteSnapshot(ctx context.Context, id string) error {
	if m.remote == nil {
		return ErrStoreUnavailable
	}
	if err := m.remote.DeleteSnapshot(ctx, id); err != nil {
		return err
	}
	m.log.WithField("snapshot", id).Warn("snapshot deleted")
	return nil
}

// RestoreSnapshot 用快照整份替换当前文档
func (m *Manager) RestoreSnapshot(ctx context.Context, id string) (*model.Document, error) {
	if m.remote == nil {
		return nil, ErrStoreUnavailable
	}
	doc, err := history.Restore(ctx, m.remote, m.key, id, m.stamp())
	if err != nil {
		return nil, err
	}
	model.Migrate(doc, m.defaults())
	m.writeCache(doc)
	m.set(doc, true)
	m.log.WithField("snapshot", id).Warn("document restored from snapshot")
	return m.Current(), nil
}

// DiffSnapshot 当前文档与快照的差异
func (m *Manager) DiffSnapshot(ctx context.Context, id string) (string, error) {
	snap, err := m.GetSnapshot(ctx, id)
	if err != nil {
		return "", err
	}
	doc, err := m.Document(ctx)
	if err != nil {
		return "", err
	}
	return history.Diff(doc, &snap.Data, "current", "snapshot "+id)
}
