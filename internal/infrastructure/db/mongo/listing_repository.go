package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bidhaus/auction-api/internal/core/domain"
)

const collectionListings = "listings"

// ListingRepository persists listings as one document per listing, keyed by
// listing_id. Writes are guarded by the document's version field so that a
// concurrent writer in another process cannot silently clobber a mutation.
type ListingRepository struct {
	col *mongo.Collection
}

func NewListingRepository(db *mongo.Database) *ListingRepository {
	return &ListingRepository{col: db.Collection(collectionListings)}
}

// Insert stores a new listing document at version 0.
func (r *ListingRepository) Insert(ctx context.Context, l *domain.Listing) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	l.Version = 0
	_, err := r.col.InsertOne(ctx, l)
	return err
}

// FindByID retrieves a listing by its identifier.
func (r *ListingRepository) FindByID(ctx context.Context, listingID string) (*domain.Listing, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var l domain.Listing
	err := r.col.FindOne(ctx, bson.M{"listing_id": listingID}).Decode(&l)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrListingNotFound
		}
		return nil, err
	}
	return &l, nil
}

// Update writes the listing's mutable fields iff the stored version still
// equals expectedVersion (compare-and-swap), bumping the version on success.
// A zero match with the listing still present means a concurrent writer won.
func (r *ListingRepository) Update(ctx context.Context, l *domain.Listing, expectedVersion int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"listing_id": l.ID, "version": expectedVersion}
	update := bson.M{
		"$set": bson.M{
			"bids":       l.Bids,
			"status":     l.Status,
			"sold_to":    l.SoldTo,
			"sold_price": l.SoldPrice,
		},
		"$inc": bson.M{"version": 1},
	}

	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return r.missReason(ctx, l.ID)
	}
	l.Version = expectedVersion + 1
	return nil
}

// Delete removes the listing iff the stored version still equals
// expectedVersion.
func (r *ListingRepository) Delete(ctx context.Context, listingID string, expectedVersion int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"listing_id": listingID, "version": expectedVersion})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return r.missReason(ctx, listingID)
	}
	return nil
}

// ListAll returns the global feed, newest first.
func (r *ListingRepository) ListAll(ctx context.Context) ([]*domain.Listing, error) {
	return r.find(ctx, bson.M{})
}

// ListByOwner returns every listing owned by owner.
func (r *ListingRepository) ListByOwner(ctx context.Context, owner string) ([]*domain.Listing, error) {
	return r.find(ctx, bson.M{"owner": owner})
}

// ListSoldTo returns sold listings won by bidder.
func (r *ListingRepository) ListSoldTo(ctx context.Context, bidder string) ([]*domain.Listing, error) {
	return r.find(ctx, bson.M{"status": domain.StatusSold, "sold_to": bidder})
}

// ListSoldBy returns sold listings settled by owner.
func (r *ListingRepository) ListSoldBy(ctx context.Context, owner string) ([]*domain.Listing, error) {
	return r.find(ctx, bson.M{"status": domain.StatusSold, "owner": owner})
}

func (r *ListingRepository) find(ctx context.Context, filter bson.M) ([]*domain.Listing, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	listings := make([]*domain.Listing, 0)
	for cur.Next(ctx) {
		var l domain.Listing
		if err := cur.Decode(&l); err != nil {
			return nil, err
		}
		listings = append(listings, &l)
	}
	return listings, cur.Err()
}

// missReason disambiguates a CAS miss: the listing is either gone entirely
// or was modified by a concurrent writer.
func (r *ListingRepository) missReason(ctx context.Context, listingID string) error {
	n, err := r.col.CountDocuments(ctx, bson.M{"listing_id": listingID})
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrListingNotFound
	}
	return domain.ErrVersionConflict
}

// EnsureIndexes creates the indexes backing lookups and feed queries.
func (r *ListingRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "listing_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "owner", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "sold_to", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
