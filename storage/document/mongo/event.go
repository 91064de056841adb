// Package mongorepos stores events as documents in a MongoDB collection.
package mongorepos

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trezcool/agenda/core"
	"github.com/trezcool/agenda/core/event"
)

const collectionName = "events"

var NowFunc = time.Now // mockable

type eventDoc struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	event.Document `bson:",inline"`
}

type eventRepository struct {
	coll  *mongo.Collection
	codec event.Codec
}

var _ event.Repository = (*eventRepository)(nil) // interface compliance check

// Connect opens a client and checks the server is reachable.
func Connect(ctx context.Context, conf *core.Config) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(conf.Mongo.URI))
	if err != nil {
		return nil, errors.Wrap(err, "connecting to mongo")
	}
	if err = client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(err, "pinging mongo")
	}
	return client, nil
}

func NewEventRepository(db *mongo.Database, conf *core.Config) event.Repository {
	return &eventRepository{
		coll:  db.Collection(collectionName),
		codec: event.NewCodec(conf.Calendar.Location()),
	}
}

// EnsureIndexes creates the indexes the queries rely on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(collectionName).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "date", Value: 1}, {Key: "start_time", Value: 1}}},
		{Keys: bson.D{{Key: "created_by", Value: 1}}},
	})
	return errors.Wrap(err, "creating event indexes")
}

func (repo *eventRepository) decode(doc eventDoc) event.Event {
	doc.Document.ID = doc.ID.Hex()
	return repo.codec.Decode(doc.Document)
}

func now() time.Time {
	// bson dates keep milliseconds
	return NowFunc().UTC().Truncate(time.Millisecond)
}

func (repo *eventRepository) CreateEvent(ctx context.Context, ev event.Event) (event.Event, error) {
	ev.CreatedAt = now()
	ev.UpdatedAt = ev.CreatedAt
	doc := eventDoc{ID: primitive.NewObjectID(), Document: repo.codec.Encode(ev)}

	if _, err := repo.coll.InsertOne(ctx, doc); err != nil {
		return event.Event{}, errors.Wrap(err, "inserting event")
	}
	return repo.decode(doc), nil
}

func (repo *eventRepository) filter(qf event.QueryFilter) bson.M {
	f := bson.M{}

	from, to := repo.codec.EncodeRange(qf)
	if !from.IsZero() || !to.IsZero() {
		date := bson.M{}
		if !from.IsZero() {
			date["$gte"] = from
		}
		if !to.IsZero() {
			date["$lt"] = to
		}
		f["date"] = date
	}
	if qf.CreatedBy != "" {
		f["created_by"] = qf.CreatedBy
	}
	if qf.Type != "" {
		f["type"] = string(qf.Type)
	}
	if qf.IsPublic != nil {
		f["is_public"] = *qf.IsPublic
	}
	return f
}

func (repo *eventRepository) QueryEvents(ctx context.Context, qf event.QueryFilter) ([]event.Event, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "start_time", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := repo.coll.Find(ctx, repo.filter(qf), opts)
	if err != nil {
		return nil, errors.Wrap(err, "querying events")
	}
	defer func() { _ = cur.Close(ctx) }()

	events := make([]event.Event, 0)
	for cur.Next(ctx) {
		var doc eventDoc
		if err = cur.Decode(&doc); err != nil {
			return nil, errors.Wrap(err, "decoding event")
		}
		events = append(events, repo.decode(doc))
	}
	if err = cur.Err(); err != nil {
		return nil, errors.Wrap(err, "querying events")
	}
	return events, nil
}

func (repo *eventRepository) GetEvent(ctx context.Context, id string) (event.Event, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return event.Event{}, event.ErrNotFound
	}

	var doc eventDoc
	if err = repo.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return event.Event{}, event.ErrNotFound
		}
		return event.Event{}, errors.Wrap(err, "finding event by ID")
	}
	return repo.decode(doc), nil
}

// UpdateEvent never writes the author or the creation time.
func (repo *eventRepository) UpdateEvent(ctx context.Context, ev event.Event) (event.Event, error) {
	oid, err := primitive.ObjectIDFromHex(ev.ID)
	if err != nil {
		return event.Event{}, event.ErrNotFound
	}
	ev.UpdatedAt = now()
	doc := repo.codec.Encode(ev)

	set := bson.M{
		"title":            doc.Title,
		"description":      doc.Description,
		"type":             doc.Type,
		"date":             doc.Date,
		"start_time":       doc.StartTime,
		"end_time":         doc.EndTime,
		"location":         doc.Location,
		"subject":          doc.Subject,
		"is_public":        doc.IsPublic,
		"color":            doc.Color,
		"reminder_minutes": doc.ReminderMinutes,
		"updated_at":       doc.UpdatedAt,
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated eventDoc
	err = repo.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return event.Event{}, event.ErrNotFound
		}
		return event.Event{}, errors.Wrap(err, "updating event")
	}
	return repo.decode(updated), nil
}

func (repo *eventRepository) DeleteEvent(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil
	}
	if _, err = repo.coll.DeleteOne(ctx, bson.M{"_id": oid}); err != nil {
		return errors.Wrap(err, "deleting event")
	}
	return nil
}
