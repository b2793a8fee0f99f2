package ports

import (
	"context"
	"time"

	"github.com/bidhaus/auction-api/internal/core/domain"
)

// CreateListingInput carries all data needed to post a new listing.
type CreateListingInput struct {
	Owner       string
	Title       string
	Description string
	MinBid      float64
	// Image is the raw decoded image payload; empty means no image.
	Image []byte
}

// ListingResult is returned after creating a listing.
type ListingResult struct {
	ID        string
	Owner     string
	Title     string
	MinBid    float64
	ImageRef  string
	Status    string
	CreatedAt time.Time
}

// BidResult is returned after a bid is accepted.
type BidResult struct {
	ListingID string
	Bidder    string
	Amount    float64
	PlacedAt  time.Time
}

// SaleResult is returned when an auction is settled.
type SaleResult struct {
	ListingID string
	Winner    string
	Price     float64
}

// LedgerService owns all listing and bid state transitions and enforces the
// bidding and settlement rules.
type LedgerService interface {
	CreateListing(ctx context.Context, input CreateListingInput) (*ListingResult, error)
	PlaceBid(ctx context.Context, listingID, bidder string, amount float64) (*BidResult, error)
	CloseAuction(ctx context.Context, listingID, requester string) (*SaleResult, error)
	RemoveListing(ctx context.Context, listingID, requester string) error

	ListAll(ctx context.Context) ([]*domain.Listing, error)
	ListByOwner(ctx context.Context, owner string) ([]*domain.Listing, error)
	BoughtBy(ctx context.Context, bidder string) ([]*domain.Listing, error)
	SoldBy(ctx context.Context, owner string) ([]*domain.Listing, error)
}
