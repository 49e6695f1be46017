package db

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/ukydev/fleet-console/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const connectTimeout = 10 * time.Second

var errNilCollection = errors.New("mongo collection is nil")

// ConnectMongo connects to uri and pings the server before returning.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(err, "mongo.Connect")
	}
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(err, "mongo.Ping")
	}
	return client, nil
}

// MongoCollection stores one entity type in a MongoDB collection keyed by
// the entity id.
type MongoCollection[E models.Entity] struct {
	Collection *mongo.Collection
}

func NewMongoCollection[E models.Entity](db *mongo.Database, res models.Resource) *MongoCollection[E] {
	return &MongoCollection[E]{Collection: db.Collection(res.Path)}
}

func (c *MongoCollection[E]) Insert(ctx context.Context, e E) error {
	if c.Collection == nil {
		return errNilCollection
	}
	_, err := c.Collection.InsertOne(ctx, e)
	if mongo.IsDuplicateKeyError(err) {
		return errors.Wrapf(ErrDuplicateID, "insert %s", e.Meta().ID)
	}
	return errors.Wrap(err, "insert")
}

func (c *MongoCollection[E]) FindAll(ctx context.Context) ([]E, error) {
	if c.Collection == nil {
		return nil, errNilCollection
	}
	cursor, err := c.Collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(err, "find")
	}
	return decodeAll[E](ctx, cursor)
}

func decodeAll[E models.Entity](ctx context.Context, cursor Cursor) ([]E, error) {
	defer cursor.Close(ctx)
	out := []E{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, errors.Wrap(err, "decode")
	}
	return out, nil
}

func (c *MongoCollection[E]) FindByID(ctx context.Context, id string) (E, error) {
	var e E
	if c.Collection == nil {
		return e, errNilCollection
	}
	err := c.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return e, errors.Wrapf(ErrNotFound, "find %s", id)
	}
	if err != nil {
		return e, errors.Wrapf(err, "find %s", id)
	}
	return e, nil
}

func (c *MongoCollection[E]) Replace(ctx context.Context, e E) error {
	if c.Collection == nil {
		return errNilCollection
	}
	id := e.Meta().ID
	res, err := c.Collection.ReplaceOne(ctx, bson.M{"_id": id}, e)
	if err != nil {
		return errors.Wrapf(err, "replace %s", id)
	}
	if res.MatchedCount == 0 {
		return errors.Wrapf(ErrNotFound, "replace %s", id)
	}
	return nil
}

func (c *MongoCollection[E]) Delete(ctx context.Context, id string) error {
	if c.Collection == nil {
		return errNilCollection
	}
	res, err := c.Collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrapf(err, "delete %s", id)
	}
	if res.DeletedCount == 0 {
		return errors.Wrapf(ErrNotFound, "delete %s", id)
	}
	return nil
}

// DeleteAll empties the collection.
func (c *MongoCollection[E]) DeleteAll(ctx context.Context) error {
	if c.Collection == nil {
		return errNilCollection
	}
	_, err := c.Collection.DeleteMany(ctx, bson.M{})
	return errors.Wrap(err, "delete all")
}
