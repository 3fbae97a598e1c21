package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/99minutos/customs-tracking/internal/core/domain"
)

const eventCollection = "customs_events"

// EventRepository implements ports.EventRepository using MongoDB. Each
// classified event is one document, unique on (tracking_number, dedup_key).
type EventRepository struct {
	coll *mongo.Collection
}

// NewEventRepository creates a new EventRepository.
func NewEventRepository(db *mongo.Database) *EventRepository {
	return &EventRepository{coll: db.Collection(eventCollection)}
}

type eventDoc struct {
	TrackingNumber string       `bson:"tracking_number"`
	DedupKey       string       `bson:"dedup_key"`
	Timestamp      time.Time    `bson:"ts"`
	Stage          domain.Stage `bson:"stage"`
	Leg            domain.Leg   `bson:"leg,omitempty"`
	Description    string       `bson:"description"`
	Location       string       `bson:"location,omitempty"`
	InsertedAt     time.Time    `bson:"inserted_at"`
}

// InsertEvents upserts with $setOnInsert so that an event already stored is
// left untouched. It returns the number of new documents.
func (r *EventRepository) InsertEvents(ctx context.Context, trackingNumber string, events []domain.ClassifiedEvent) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := time.Now().UTC()
	models := make([]mongo.WriteModel, 0, len(events))
	for _, e := range events {
		doc := eventDoc{
			TrackingNumber: trackingNumber,
			DedupKey:       e.DedupKey(),
			Timestamp:      e.Timestamp.UTC(),
			Stage:          e.Stage,
			Leg:            e.Leg,
			Description:    e.Description,
			Location:       e.Location,
			InsertedAt:     now,
		}
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"tracking_number": trackingNumber, "dedup_key": doc.DedupKey}).
			SetUpdate(bson.M{"$setOnInsert": doc}).
			SetUpsert(true))
	}

	res, err := r.coll.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return 0, fmt.Errorf("insert events: %w", err)
	}
	return int(res.UpsertedCount), nil
}

// Timeline returns the stored events of the shipment ordered by timestamp.
func (r *EventRepository) Timeline(ctx context.Context, trackingNumber string) ([]domain.ClassifiedEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "ts", Value: 1}})
	cur, err := r.coll.Find(ctx, bson.M{"tracking_number": trackingNumber}, opts)
	if err != nil {
		return nil, fmt.Errorf("find events: %w", err)
	}
	defer cur.Close(ctx)

	var docs []eventDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}

	out := make([]domain.ClassifiedEvent, 0, len(docs))
	for _, d := range docs {
		out = append(out, domain.ClassifiedEvent{
			Timestamp:   d.Timestamp.UTC(),
			Stage:       d.Stage,
			Leg:         d.Leg,
			Description: d.Description,
			Location:    d.Location,
		})
	}
	return out, nil
}

func (r *EventRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "tracking_number", Value: 1}, {Key: "dedup_key", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "tracking_number", Value: 1}, {Key: "ts", Value: 1}}},
	})
	return err
}
