// Package history 月度快照与历史对比序列
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/wtpceo/dashbord-wiple/internal/model"
	"github.com/wtpceo/dashbord-wiple/internal/period"
	"github.com/wtpceo/dashbord-wiple/internal/store"
)

// BuildSnapshot 以 now 所在月份生成快照（文档深拷贝）
func BuildSnapshot(doc *model.Document, now time.Time) model.Snapshot {
	snap := model.Snapshot{
		ID:           period.CurrentMonth(now),
		Year:         now.Year(),
		Month:        int(now.Month()),
		SnapshotDate: now.UTC().Format(time.RFC3339),
	}
	if c := doc.Clone(); c != nil {
		snap.Data = *c
	}
	return snap
}

// UpsertSnapshot 写入快照，同月整份覆盖
func UpsertSnapshot(ctx context.Context, s store.SnapshotStore, snap model.Snapshot) error {
	if err := s.PutSnapshot(ctx, &snap); err != nil {
		return fmt.Errorf("upsert snapshot %s: %w", snap.ID, err)
	}
	return nil
}

// Restore 用快照中的文档整份替换当前文档，保存时间记为 at
// 不可逆，确认由调用方负责
func Restore(ctx context.Context, s store.DocumentStore, key, id string, at time.Time) (*model.Document, error) {
	snap, err := s.GetSnapshot(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get snapshot %s: %w", id, err)
	}
	doc := snap.Data
	doc.UpdatedAt = at
	if err := s.PutDocument(ctx, key, &doc); err != nil {
		return nil, fmt.Errorf("restore snapshot %s: %w", id, err)
	}
	return &doc, nil
}

// Diff 两份文档缩进 JSON 的 unified diff
func Diff(from, to *model.Document, fromName, toName string) (string, error) {
	a, err := json.MarshalIndent(from, "", "  ")
	if err != nil {
		return "", err
	}
	b, err := json.MarshalIndent(to, "", "  ")
	if err != nil {
		return "", err
	}
	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(a) + "\n"),
		B:        difflib.SplitLines(string(b) + "\n"),
		FromFile: fromName,
		ToFile:   toName,
		Context:  3,
	}
	return difflib.GetUnifiedDiffString(ud)
}
