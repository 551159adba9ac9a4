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

var (
	// ErrUserNotFound is returned when no user matches the lookup.
	ErrUserNotFound = errors.New("user not found")

	// ErrDuplicateEmail is returned by Create when the email is registered.
	ErrDuplicateEmail = errors.New("email already registered")
)

// UserRepository handles database operations for User.
type UserRepository struct {
	users *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{users: db.Collection("users")}
}

// EnsureIndexes makes email unique.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("users: ensure indexes: %w", err)
	}
	return nil
}

// FindByEmail looks up a user by their email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	defer metrics.ObserveDBQuery("users.find_by_email", time.Now())

	var u models.User
	err := r.users.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("users: find by email: %w", err)
	}
	return &u, nil
}

// FindByID looks up a user by the hex form of its ObjectID.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	defer metrics.ObserveDBQuery("users.find_by_id", time.Now())

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrUserNotFound
	}

	var u models.User
	err = r.users.FindOne(ctx, bson.M{"_id": oid}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("users: find by id: %w", err)
	}
	return &u, nil
}

// Create persists a new user record and fills in its ID.
func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	defer metrics.ObserveDBQuery("users.create", time.Now())

	if u.CartData == nil {
		u.CartData = models.Cart{}
	}
	res, err := r.users.InsertOne(ctx, u)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateEmail
	}
	if err != nil {
		return fmt.Errorf("users: create: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		u.ID = oid
	}
	return nil
}

// UpdatePassword replaces the stored password hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	defer metrics.ObserveDBQuery("users.update_password", time.Now())

	_, err := r.users.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"password": hash}})
	if err != nil {
		return fmt.Errorf("users: update password: %w", err)
	}
	return nil
}

// IncrementCartItem adds one unit of item to the user's cart.
func (r *UserRepository) IncrementCartItem(ctx context.Context, userID string, item int64) error {
	defer metrics.ObserveDBQuery("users.cart_increment", time.Now())

	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return ErrUserNotFound
	}

	res, err := r.users.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$inc": bson.M{cartField(item): 1}},
	)
	if err != nil {
		return fmt.Errorf("users: cart increment: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

// DecrementCartItem removes one unit of item when the quantity is positive.
// It reports whether a unit was removed.
func (r *UserRepository) DecrementCartItem(ctx context.Context, userID string, item int64) (bool, error) {
	defer metrics.ObserveDBQuery("users.cart_decrement", time.Now())

	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return false, ErrUserNotFound
	}

	res, err := r.users.UpdateOne(ctx,
		bson.M{"_id": oid, cartField(item): bson.M{"$gt": 0}},
		bson.M{"$inc": bson.M{cartField(item): -1}},
	)
	if err != nil {
		return false, fmt.Errorf("users: cart decrement: %w", err)
	}
	if res.MatchedCount > 0 {
		return true, nil
	}

	n, err := r.users.CountDocuments(ctx, bson.M{"_id": oid}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("users: cart decrement: %w", err)
	}
	if n == 0 {
		return false, ErrUserNotFound
	}
	return false, nil
}

// Cart returns the stored cart entries for the user.
func (r *UserRepository) Cart(ctx context.Context, userID string) (models.Cart, error) {
	defer metrics.ObserveDBQuery("users.cart", time.Now())

	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	var u models.User
	err = r.users.FindOne(ctx, bson.M{"_id": oid},
		options.FindOne().SetProjection(bson.M{"cartData": 1}),
	).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("users: cart: %w", err)
	}
	if u.CartData == nil {
		u.CartData = models.Cart{}
	}
	return u.CartData, nil
}

func cartField(item int64) string {
	return "cartData." + models.CartKey(item)
}
