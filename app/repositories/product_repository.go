package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
)

const productCounter = "products"

// ProductRepository handles database operations for Product.
type ProductRepository struct {
	products *mongo.Collection
	counters *mongo.Collection
}

func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{
		products: db.Collection("products"),
		counters: db.Collection("counters"),
	}
}

// EnsureIndexes creates the indexes the catalog queries rely on.
func (r *ProductRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.products.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "id", Value: 1}}},
		{Keys: bson.D{{Key: "date", Value: -1}, {Key: "id", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("products: ensure indexes: %w", err)
	}
	return nil
}

// SyncCounter raises the id counter to the highest stored id so documents
// written before the counter existed never collide with new ones.
func (r *ProductRepository) SyncCounter(ctx context.Context) error {
	defer metrics.ObserveDBQuery("products.sync_counter", time.Now())

	var last models.Product
	err := r.products.FindOne(ctx, bson.M{},
		options.FindOne().SetSort(bson.D{{Key: "id", Value: -1}}).SetProjection(bson.M{"id": 1}),
	).Decode(&last)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("products: highest id: %w", err)
	}

	_, err = r.counters.UpdateOne(ctx,
		bson.M{"_id": productCounter},
		bson.M{"$max": bson.M{"seq": last.ID}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("products: sync counter: %w", err)
	}
	return nil
}

// NextID atomically reserves the next product id.
func (r *ProductRepository) NextID(ctx context.Context) (int64, error) {
	defer metrics.ObserveDBQuery("products.next_id", time.Now())

	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": productCounter},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("products: next id: %w", err)
	}
	return counter.Seq, nil
}

// Insert persists p and fills in its ObjectID.
func (r *ProductRepository) Insert(ctx context.Context, p *models.Product) error {
	defer metrics.ObserveDBQuery("products.insert", time.Now())

	res, err := r.products.InsertOne(ctx, p)
	if err != nil {
		return fmt.Errorf("products: insert %d: %w", p.ID, err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		p.ObjectID = oid
	}
	return nil
}

// DeleteByID removes the product with the given public id and returns it.
// A missing product yields (nil, nil).
func (r *ProductRepository) DeleteByID(ctx context.Context, id int64) (*models.Product, error) {
	defer metrics.ObserveDBQuery("products.delete", time.Now())

	var p models.Product
	err := r.products.FindOneAndDelete(ctx, bson.M{"id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("products: delete %d: %w", id, err)
	}
	return &p, nil
}

// All returns every product in creation order.
func (r *ProductRepository) All(ctx context.Context) ([]models.Product, error) {
	defer metrics.ObserveDBQuery("products.all", time.Now())
	return r.find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "id", Value: 1}}))
}

// Latest returns the n most recently dated products, newest first.
func (r *ProductRepository) Latest(ctx context.Context, n int) ([]models.Product, error) {
	defer metrics.ObserveDBQuery("products.latest", time.Now())
	return r.find(ctx, bson.M{}, options.Find().
		SetSort(bson.D{{Key: "date", Value: -1}, {Key: "id", Value: -1}}).
		SetLimit(int64(n)))
}

// ByCategory returns the first n products of category in creation order.
func (r *ProductRepository) ByCategory(ctx context.Context, category string, n int) ([]models.Product, error) {
	defer metrics.ObserveDBQuery("products.by_category", time.Now())
	return r.find(ctx, bson.M{"category": category}, options.Find().
		SetSort(bson.D{{Key: "id", Value: 1}}).
		SetLimit(int64(n)))
}

// Exists reports whether a product with the given public id is stored.
func (r *ProductRepository) Exists(ctx context.Context, id int64) (bool, error) {
	defer metrics.ObserveDBQuery("products.exists", time.Now())

	n, err := r.products.CountDocuments(ctx, bson.M{"id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("products: exists %d: %w", id, err)
	}
	return n > 0, nil
}

func (r *ProductRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Product, error) {
	cur, err := r.products.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("products: find: %w", err)
	}

	products := make([]models.Product, 0)
	if err := cur.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("products: decode: %w", err)
	}
	return products, nil
}
