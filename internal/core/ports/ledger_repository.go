package ports

import (
	"context"

	"github.com/bidhaus/auction-api/internal/core/domain"
)

// ListingRepository defines persistence operations for listings. All
// mutating writes are guarded by the listing's version so a lost race
// surfaces as domain.ErrVersionConflict instead of a silent overwrite.
type ListingRepository interface {
	Insert(ctx context.Context, l *domain.Listing) error
	// FindByID retrieves a listing by its identifier.
	FindByID(ctx context.Context, listingID string) (*domain.Listing, error)
	// Update replaces the listing's mutable fields iff the stored version
	// still equals expectedVersion, then increments the version.
	Update(ctx context.Context, l *domain.Listing, expectedVersion int64) error
	// Delete removes the listing iff the stored version still equals
	// expectedVersion.
	Delete(ctx context.Context, listingID string, expectedVersion int64) error

	ListAll(ctx context.Context) ([]*domain.Listing, error)
	ListByOwner(ctx context.Context, owner string) ([]*domain.Listing, error)
	// ListSoldTo returns sold listings won by the given bidder.
	ListSoldTo(ctx context.Context, bidder string) ([]*domain.Listing, error)
	// ListSoldBy returns sold listings settled by the given owner.
	ListSoldBy(ctx context.Context, owner string) ([]*domain.Listing, error)
}

// BlobStore abstracts binary image storage. Put returns an opaque reference
// that can later be passed to Get.
type BlobStore interface {
	Put(ctx context.Context, name string, data []byte) (string, error)
	Get(ctx context.Context, ref string) ([]byte, error)
	Delete(ctx context.Context, ref string) error
}
