package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Mongo implements Store over a MongoDB database. Ids are stored as string
// "_id" values; documents imported with ObjectID ids are still addressable by
// their hex form.
type Mongo struct {
	db *mongo.Database
}

func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{db: db}
}

func idFilter(id string) bson.M {
	if objectID, err := primitive.ObjectIDFromHex(id); err == nil {
		return bson.M{"_id": bson.M{"$in": bson.A{id, objectID}}}
	}
	return bson.M{"_id": id}
}

func idString(value any) string {
	switch typed := value.(type) {
	case string:
		return typed
	case primitive.ObjectID:
		return typed.Hex()
	case nil:
		return ""
	default:
		return fmt.Sprint(typed)
	}
}

func recordFromDocument(raw bson.M) Record {
	id := idString(raw["_id"])
	delete(raw, "_id")
	return Record{ID: id, Fields: map[string]any(raw)}
}

func decodeRecords(ctx context.Context, cursor *mongo.Cursor) ([]Record, error) {
	records := make([]Record, 0)

	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, err
		}
		records = append(records, recordFromDocument(raw))
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func (m *Mongo) All(ctx context.Context, collection string) ([]Record, error) {
	cursor, err := m.db.Collection(collection).Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	return decodeRecords(ctx, cursor)
}

func (m *Mongo) Where(ctx context.Context, collection, field string, value any) ([]Record, error) {
	cursor, err := m.db.Collection(collection).Find(ctx, bson.M{field: value})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	return decodeRecords(ctx, cursor)
}

func (m *Mongo) Get(ctx context.Context, collection, id string) (Record, error) {
	var raw bson.M
	err := m.db.Collection(collection).FindOne(ctx, idFilter(id)).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, err
	}
	return recordFromDocument(raw), nil
}

func (m *Mongo) Set(ctx context.Context, collection, id string, fields map[string]any) error {
	doc := make(bson.M, len(fields)+1)
	for key, value := range fields {
		doc[key] = value
	}
	doc["_id"] = id

	_, err := m.db.Collection(collection).ReplaceOne(
		ctx,
		bson.M{"_id": id},
		doc,
		options.Replace().SetUpsert(true),
	)
	return err
}

func (m *Mongo) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	if len(fields) == 0 {
		_, err := m.Get(ctx, collection, id)
		return err
	}

	result, err := m.db.Collection(collection).UpdateOne(ctx, idFilter(id), bson.M{"$set": bson.M(fields)})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *Mongo) Delete(ctx context.Context, collection, id string) error {
	result, err := m.db.Collection(collection).DeleteOne(ctx, idFilter(id))
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *Mongo) Ping(ctx context.Context) error {
	return m.db.Client().Ping(ctx, readpref.Primary())
}
