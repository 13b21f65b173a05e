package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/wtpceo/dashbord-wiple/internal/model"
)

const (
	documentCollection = "dashboard_data"
	snapshotCollection = "monthly_snapshots"
)

type documentRow struct {
	ID        string         `bson:"_id"`
	Data      model.Document `bson:"data"`
	UpdatedAt time.Time      `bson:"updated_at"`
}

type snapshotRow struct {
	ID           string         `bson:"_id"`
	Year         int            `bson:"year"`
	Month        int            `bson:"month"`
	SnapshotDate string         `bson:"snapshot_date"`
	Data         model.Document `bson:"data"`
	UpdatedAt    time.Time      `bson:"updated_at"`
}

func (r snapshotRow) snapshot() model.Snapshot {
	return model.Snapshot{ID: r.ID, Year: r.Year, Month: r.Month, SnapshotDate: r.SnapshotDate, Data: r.Data}
}

// MongoStore MongoDB 文档存储
type MongoStore struct {
	client    *mongo.Client
	docs      *mongo.Collection
	snapshots *mongo.Collection
}

// NewMongo 连接 MongoDB
func NewMongo(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}
	db := client.Database(database)
	return &MongoStore{
		client:    client,
		docs:      db.Collection(documentCollection),
		snapshots: db.Collection(snapshotCollection),
	}, nil
}

// Close 断开连接
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// GetDocument 读取共享文档
func (s *MongoStore) GetDocument(ctx context.Context, key string) (*model.Document, time.Time, error) {
	var row documentRow
	err := s.docs.FindOne(ctx, bson.M{"_id": key}).Decode(&row)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, time.Time{}, ErrNotFound
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to find %s: %w", documentCollection, err)
	}
	return &row.Data, row.UpdatedAt, nil
}

// PutDocument 整份覆盖写入
func (s *MongoStore) PutDocument(ctx context.Context, key string, doc *model.Document) error {
	row := documentRow{ID: key, Data: *doc, UpdatedAt: time.Now().UTC()}
	_, err := s.docs.ReplaceOne(ctx, bson.M{"_id": key}, row, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert %s: %w", documentCollection, err)
	}
	return nil
}

// GetSnapshot 读取月度快照
func (s *MongoStore) GetSnapshot(ctx context.Context, id string) (*model.Snapshot, error) {
	var row snapshotRow
	err := s.snapshots.FindOne(ctx, bson.M{"_id": id}).Decode(&row)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find %s: %w", snapshotCollection, err)
	}
	snap := row.snapshot()
	return &snap, nil
}

// PutSnapshot 写入月度快照，同月覆盖
func (s *MongoStore) PutSnapshot(ctx context.Context, snap *model.Snapshot) error {
	row := snapshotRow{
		ID:           snap.ID,
		Year:         snap.Year,
		Month:        snap.Month,
		SnapshotDate: snap.SnapshotDate,
		Data:         snap.Data,
		UpdatedAt:    time.Now().UTC(),
	}
	_, err := s.snapshots.ReplaceOne(ctx, bson.M{"_id": snap.ID}, row, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert %s: %w", snapshotCollection, err)
	}
	return nil
}

// ListSnapshots 按月份排序列出快照
func (s *MongoStore) ListSnapshots(ctx context.Context, order Order) ([]model.Snapshot, error) {
	dir := -1
	if order == Ascending {
		dir = 1
	}
	opts := options.Find().SetSort(bson.D{{Key: "year", Value: dir}, {Key: "month", Value: dir}})
	cursor, err := s.snapshots.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", snapshotCollection, err)
	}
	defer cursor.Close(ctx)

	var rows []snapshotRow
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", snapshotCollection, err)
	}
	out := make([]model.Snapshot, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.snapshot())
	}
	return out, nil
}

// DeleteSnapshot 删除月度快照
func (s *MongoStore) DeleteSnapshot(ctx context.Context, id string) error {
	res, err := s.snapshots.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete %s %s: %w", snapshotCollection, id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Watch 通过 change stream 订阅文档变更（需副本集）
func (s *MongoStore) Watch(ctx context.Context, key string, onChange func(*model.Document)) error {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "documentKey._id", Value: key}}}},
	}
	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)
	stream, err := s.docs.Watch(ctx, pipeline, opts)
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", documentCollection, err)
	}
	defer stream.Close(context.Background())

	for stream.Next(ctx) {
		var event struct {
			FullDocument *documentRow `bson:"fullDocument"`
		}
		if err := stream.Decode(&event); err != nil || event.FullDocument == nil {
			continue
		}
		onChange(&event.FullDocument.Data)
	}
	if err := stream.Err(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("change stream closed: %w", err)
	}
	return ctx.Err()
}
