package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/99minutos/customs-tracking/internal/core/domain"
	"github.com/99minutos/customs-tracking/internal/core/ports"
)

const collectionSummaries = "customs_summaries"

// TrackingRepository stores one customs projection per tracking number.
type TrackingRepository struct {
	col *mongo.Collection
}

func NewTrackingRepository(db *mongo.Database) *TrackingRepository {
	return &TrackingRepository{col: db.Collection(collectionSummaries)}
}

func (r *TrackingRepository) FindByTrackingNumber(ctx context.Context, trackingNumber string) (*domain.CustomsRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var rec domain.CustomsRecord
	err := r.col.FindOne(ctx, bson.M{"tracking_number": trackingNumber}).Decode(&rec)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTrackingNotFound
		}
		return nil, err
	}
	normalizeRecord(&rec)
	return &rec, nil
}

// Upsert replaces the whole projection of rec.TrackingNumber.
func (r *TrackingRepository) Upsert(ctx context.Context, rec *domain.CustomsRecord) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.ReplaceOne(ctx,
		bson.M{"tracking_number": rec.TrackingNumber},
		rec,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert summary: %w", err)
	}
	return nil
}

// CreatePending inserts an UNKNOWN record for each number not stored yet.
func (r *TrackingRepository) CreatePending(ctx context.Context, numbers []string, source string) (int, error) {
	if len(numbers) == 0 {
		return 0, nil
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := time.Now().UTC()
	models := make([]mongo.WriteModel, 0, len(numbers))
	for _, n := range numbers {
		rec := domain.CustomsRecord{
			TrackingNumber: n,
			Summary:        domain.Summary{Status: domain.StatusUnknown, Delays: []domain.Delay{}},
			Source:         source,
			RegisteredAt:   now,
			UpdatedAt:      now,
		}
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"tracking_number": n}).
			SetUpdate(bson.M{"$setOnInsert": rec}).
			SetUpsert(true))
	}

	res, err := r.col.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return 0, fmt.Errorf("create pending: %w", err)
	}
	return int(res.UpsertedCount), nil
}

// List returns a page of records, most recently updated first.
func (r *TrackingRepository) List(ctx context.Context, f ports.ListTrackingsFilter) ([]*domain.CustomsRecord, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if f.Status != "" {
		filter["summary.status"] = f.Status
	}
	if f.Search != "" {
		filter["tracking_number"] = bson.M{"$regex": "^" + regexp.QuoteMeta(f.Search)}
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count summaries: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: -1}}).
		SetSkip(int64((f.Page - 1) * f.Limit)).
		SetLimit(int64(f.Limit))

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find summaries: %w", err)
	}
	defer cur.Close(ctx)

	var items []*domain.CustomsRecord
	if err := cur.All(ctx, &items); err != nil {
		return nil, 0, fmt.Errorf("decode summaries: %w", err)
	}
	for _, rec := range items {
		normalizeRecord(rec)
	}
	if items == nil {
		items = []*domain.CustomsRecord{}
	}
	return items, total, nil
}

// ListOpen returns numbers whose summary is not CLEARED, stalest first.
func (r *TrackingRepository) ListOpen(ctx context.Context, limit int) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: 1}}).
		SetLimit(int64(limit)).
		SetProjection(bson.M{"tracking_number": 1})

	cur, err := r.col.Find(ctx, bson.M{"summary.status": bson.M{"$ne": domain.StatusCleared}}, opts)
	if err != nil {
		return nil, fmt.Errorf("find open: %w", err)
	}
	defer cur.Close(ctx)

	var out []string
	for cur.Next(ctx) {
		var doc struct {
			TrackingNumber string `bson:"tracking_number"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode open: %w", err)
		}
		out = append(out, doc.TrackingNumber)
	}
	return out, cur.Err()
}

// EnsureIndexes creates necessary indexes on the summaries collection.
func (r *TrackingRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "tracking_number", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "summary.status", Value: 1}, {Key: "updated_at", Value: 1}}},
		{Keys: bson.D{{Key: "updated_at", Value: -1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

// normalizeRecord restores what BSON cannot round-trip: UTC locations and
// empty (rather than nil) delay lists.
func normalizeRecord(rec *domain.CustomsRecord) {
	rec.RegisteredAt = rec.RegisteredAt.UTC()
	rec.UpdatedAt = rec.UpdatedAt.UTC()
	if rec.Summary.Delays == nil {
		rec.Summary.Delays = []domain.Delay{}
	}
	for i := range rec.Summary.Delays {
		rec.Summary.Delays[i].At = rec.Summary.Delays[i].At.UTC()
	}
	for _, p := range []*time.Time{rec.Summary.InProgressAt, rec.Summary.ClearedAt} {
		if p != nil {
			*p = p.UTC()
		}
	}
}
