// internal/infrastructure/database/mongodb/order_repository.go
package mongodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/Lizasatasiya/Zelie-web/internal/domain/order"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// OrderRepository is the append-only order collection. Every document
// carries the owner's user_id; reads are always scoped to one user.
type OrderRepository struct {
	collection *mongo.Collection
}

// NewOrderRepository creates an order repository over collection
func NewOrderRepository(collection *mongo.Collection) *OrderRepository {
	return &OrderRepository{collection: collection}
}

// Append inserts a new order. Appending the same checkout twice returns
// the id of the first insert.
func (r *OrderRepository) Append(ctx context.Context, rec *order.Record) (string, error) {
	doc := *rec
	doc.ID = ""

	res, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) && rec.CheckoutID != "" {
			return r.idForCheckout(ctx, rec.UserID, rec.CheckoutID)
		}
		return "", fmt.Errorf("failed to insert order: %w", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return oid.Hex(), nil
}

// List returns the user's orders in insertion order. Documents that fail to
// decode are reported separately and do not fail the read.
func (r *OrderRepository) List(ctx context.Context, userID string) ([]order.Record, []error, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find orders: %w", err)
	}
	defer cursor.Close(ctx)

	var (
		records    []order.Record
		decodeErrs []error
	)
	for cursor.Next(ctx) {
		var rec order.Record
		if err := cursor.Decode(&rec); err != nil {
			decodeErrs = append(decodeErrs, &order.DecodeError{
				OrderID: rawID(cursor.Current),
				Reason:  err.Error(),
			})
			continue
		}
		records = append(records, rec)
	}
	if err := cursor.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to read orders: %w", err)
	}
	return records, decodeErrs, nil
}

// Get returns one of the user's orders
func (r *OrderRepository) Get(ctx context.Context, userID, orderID string) (*order.Record, error) {
	oid, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return nil, order.ErrNotFound
	}

	var raw bson.Raw
	err = r.collection.FindOne(ctx, bson.M{"_id": oid, "user_id": userID}).Decode(&raw)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	var rec order.Record
	if err := bson.Unmarshal(raw, &rec); err != nil {
		return nil, &order.DecodeError{OrderID: orderID, Reason: err.Error()}
	}
	return &rec, nil
}

func (r *OrderRepository) idForCheckout(ctx context.Context, userID, checkoutID string) (string, error) {
	var existing struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	filter := bson.M{"checkoutId": checkoutID, "user_id": userID}
	if err := r.collection.FindOne(ctx, filter).Decode(&existing); err != nil {
		return "", fmt.Errorf("failed to find order for checkout %s: %w", checkoutID, err)
	}
	return existing.ID.Hex(), nil
}

func rawID(doc bson.Raw) string {
	v, err := doc.LookupErr("_id")
	if err != nil {
		return ""
	}
	if oid, ok := v.ObjectIDOK(); ok {
		return oid.Hex()
	}
	return v.String()
}
