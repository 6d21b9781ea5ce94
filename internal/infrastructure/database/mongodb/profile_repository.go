// internal/infrastructure/database/mongodb/profile_repository.go
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Lizasatasiya/Zelie-web/internal/domain/wishlist"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ProfileRepository stores one profile document per user, keyed by user id
type ProfileRepository struct {
	collection *mongo.Collection
}

// NewProfileRepository creates a profile repository over collection
func NewProfileRepository(collection *mongo.Collection) *ProfileRepository {
	return &ProfileRepository{collection: collection}
}

// CreateProfile inserts {email, wishlist: [], orders: []} if the user has
// no profile yet. Existing profiles are left untouched.
func (r *ProfileRepository) CreateProfile(ctx context.Context, userID, email string) error {
	filter := bson.M{"_id": userID}
	update := bson.M{
		"$setOnInsert": bson.M{
			"email":      email,
			"wishlist":   []string{},
			"orders":     []string{},
			"created_at": time.Now().UTC(),
		},
	}
	opts := options.Update().SetUpsert(true)

	if _, err := r.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

// Wishlist reads the wishlist field of a profile
func (r *ProfileRepository) Wishlist(ctx context.Context, userID string) ([]string, error) {
	var profile wishlist.Profile

	opts := options.FindOne().SetProjection(bson.M{"wishlist": 1})
	err := r.collection.FindOne(ctx, bson.M{"_id": userID}, opts).Decode(&profile)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, wishlist.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get wishlist: %w", err)
	}
	if profile.Wishlist == nil {
		return []string{}, nil
	}
	return profile.Wishlist, nil
}

// SaveWishlist overwrites the wishlist field of an existing profile
func (r *ProfileRepository) SaveWishlist(ctx context.Context, userID string, ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	update := bson.M{"$set": bson.M{"wishlist": ids, "updated_at": time.Now().UTC()}}

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err != nil {
		return fmt.Errorf("failed to save wishlist: %w", err)
	}
	if res.MatchedCount == 0 {
		return wishlist.ErrProfileNotFound
	}
	return nil
}
