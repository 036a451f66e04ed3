package orders

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo server codes for queries the store cannot plan or execute without an
// index. Checked before any message matching.
const (
	codeNoQueryExecutionPlans = 291
	codeSortExceededMemory    = 292
)

// MongoSource is the Source implementation over the producer's orders
// collection.
type MongoSource struct {
	coll *mongo.Collection
}

// NewMongoSource returns a Source reading the "orders" collection of db.
func NewMongoSource(db *mongo.Database) *MongoSource {
	return &MongoSource{coll: db.Collection("orders")}
}

func (s *MongoSource) Query(ctx context.Context, q Query) ([]Raw, error) {
	filter := bson.M{"establishmentId": q.EstablishmentID}
	if q.Status != "" {
		filter["status"] = string(q.Status)
	}

	opts := options.Find()
	if q.SortDesc {
		opts.SetSort(bson.D{{Key: "createdAt", Value: -1}})
	}

	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, classifyQueryError("find", err)
	}
	defer cursor.Close(ctx)

	var raws []Raw
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		raws = append(raws, Raw{ID: docID(doc), Doc: doc})
	}
	if err := cursor.Err(); err != nil {
		return nil, classifyQueryError("cursor", err)
	}
	return raws, nil
}

func (s *MongoSource) Get(ctx context.Context, id string) (Raw, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return Raw{}, ErrOrderNotFound
	}

	var doc bson.M
	err = s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Raw{}, ErrOrderNotFound
	}
	if err != nil {
		return Raw{}, err
	}
	return Raw{ID: id, Doc: doc}, nil
}

func (s *MongoSource) UpdateStatus(ctx context.Context, id string, status Status, entry TimelineEntry, updatedAt time.Time) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrOrderNotFound
	}

	res, err := s.coll.UpdateByID(ctx, oid, bson.M{
		"$set": bson.M{
			"status":    string(status),
			"updatedAt": updatedAt,
		},
		"$push": bson.M{"timeline": entry},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (s *MongoSource) Watch(ctx context.Context, establishmentID string) (<-chan struct{}, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"fullDocument.establishmentId": establishmentID}}},
	}
	stream, err := s.coll.Watch(ctx, pipeline,
		options.ChangeStream().SetFullDocument(options.UpdateLookup))
	if err != nil {
		return nil, err
	}

	changes := make(chan struct{}, 1)
	go func() {
		defer close(changes)
		defer stream.Close(context.Background())
		for stream.Next(ctx) {
			select {
			case changes <- struct{}{}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return changes, nil
}

func docID(doc bson.M) string {
	if oid, ok := doc["_id"].(primitive.ObjectID); ok {
		return oid.Hex()
	}
	return asString(doc["_id"])
}

// classifyQueryError wraps index-capability failures in CapabilityError so
// the resolver can degrade instead of failing. Structured server codes are
// checked first; message substrings are a last resort for older servers that
// report the condition without a distinct code.
func classifyQueryError(op string, err error) error {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		switch cmdErr.Code {
		case codeNoQueryExecutionPlans, codeSortExceededMemory:
			return &CapabilityError{Op: op, Err: err}
		}
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "no query execution plans") ||
		strings.Contains(msg, "sort exceeded memory limit") ||
		strings.Contains(msg, "requires an index") {
		return &CapabilityError{Op: op, Err: err}
	}
	return err
}
