package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/wtpceo/dashbord-wiple/internal/model"
)

//go:embed schema.sql
var schemaFS embed.FS

// SQLiteStore SQLite 文档存储
type SQLiteStore struct {
	db     *sql.DB
	events *Broadcaster
}

// NewSQLite 创建 SQLite 存储
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	// 确保目录存在
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite 建议单连接
	db.SetMaxIdleConns(1)

	s := &SQLiteStore{db: db, events: NewBroadcaster()}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

// initSchema 初始化数据库结构
func (s *SQLiteStore) initSchema() error {
	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("failed to read schema.sql: %w", err)
	}
	if _, err := s.db.Exec(string(schemaSQL)); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

// Close 关闭数据库连接
func (s *SQLiteStore) Close() error {
	s.events.Close()
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// GetDocument 读取共享文档
func (s *SQLiteStore) GetDocument(ctx context.Context, key string) (*model.Document, time.Time, error) {
	var (
		raw       string
		updatedAt time.Time
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT data, updated_at FROM dashboard_data WHERE id = ?", key,
	).Scan(&raw, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, ErrNotFound
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to query dashboard_data: %w", err)
	}

	var doc model.Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to decode dashboard_data %s: %w", key, err)
	}
	return &doc, updatedAt, nil
}

// PutDocument 写入共享文档（整份覆盖）
func (s *SQLiteStore) PutDocument(ctx context.Context, key string, doc *model.Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO dashboard_data (id, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at
	`, key, string(raw), now)
	if err != nil {
		return fmt.Errorf("failed to upsert dashboard_data: %w", err)
	}
	s.events.Publish(key)
	return nil
}

// GetSnapshot 读取月度快照
func (s *SQLiteStore) GetSnapshot(ctx context.Context, id string) (*model.Snapshot, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, year, month, snapshot_date, data FROM monthly_snapshots WHERE id = ?", id)
	snap, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// PutSnapshot 写入月度快照，同月覆盖
func (s *SQLiteStore) PutSnapshot(ctx context.Context, snap *model.Snapshot) error {
	raw, err := json.Marshal(snap.Data)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO monthly_snapshots (id, year, month, snapshot_date, data)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			year = excluded.year,
			month = excluded.month,
			snapshot_date = excluded.snapshot_date,
			data = excluded.data,
			updated_at = CURRENT_TIMESTAMP
	`, snap.ID, snap.Year, snap.Month, snap.SnapshotDate, string(raw))
	if err != nil {
		return fmt.Errorf("failed to upsert monthly_snapshots %s: %w", snap.ID, err)
	}
	return nil
}

// ListSnapshots 按月份排序列出快照
func (s *SQLiteStore) ListSnapshots(ctx context.Context, order Order) ([]model.Snapshot, error) {
	query := "SELECT id, year, month, snapshot_date, data FROM monthly_snapshots ORDER BY year DESC, month DESC"
	if order == Ascending {
		query = "SELECT id, year, month, snapshot_date, data FROM monthly_snapshots ORDER BY year ASC, month ASC"
	}
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query monthly_snapshots: %w", err)
	}
	defer rows.Close()

	snaps := []model.Snapshot{}
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, *snap)
	}
	return snaps, rows.Err()
}

// DeleteSnapshot 删除月度快照
func (s *SQLiteStore) DeleteSnapshot(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM monthly_snapshots WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete monthly_snapshots %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// Watch 订阅本进程内的写入
func (s *SQLiteStore) Watch(ctx context.Context, key string, onChange func(*model.Document)) error {
	return watchBroadcast(ctx, s.events, s, key, onChange)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row rowScanner) (*model.Snapshot, error) {
	var (
		snap model.Snapshot
		raw  string
	)
	if err := row.Scan(&snap.ID, &snap.Year, &snap.Month, &snap.SnapshotDate, &raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan snapshot: %w", err)
	}
	if err := json.Unmarshal([]byte(raw), &snap.Data); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot %s: %w", snap.ID, err)
	}
	return &snap, nil
}
