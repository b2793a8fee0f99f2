package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bidhaus/auction-api/internal/core/domain"
	"github.com/bidhaus/auction-api/internal/core/ports"
)

// casRetries bounds how often a mutation is replayed after losing a version
// race to a writer in another process.
const casRetries = 3

// FeedCache abstracts the listing-feed cache (Redis). A nil implementation
// is allowed; the service treats cache failures as misses.
type FeedCache interface {
	GetFeed(ctx context.Context) ([]*domain.Listing, bool)
	SetFeed(ctx context.Context, listings []*domain.Listing)
	Invalidate(ctx context.Context)
}

// LedgerService holds listings and their bids and enforces all bidding and
// settlement rules. Mutations of the same listing are serialized in-process
// by a striped key lock and cross-process by a version check in the
// repository.
type LedgerService struct {
	listings ports.ListingRepository
	users    ports.AuthRepository
	blobs    ports.BlobStore
	cache    FeedCache
	locks    *keyLock
	logger   zerolog.Logger
}

func NewLedgerService(
	listings ports.ListingRepository,
	users ports.AuthRepository,
	blobs ports.BlobStore,
	cache FeedCache,
	logger zerolog.Logger,
) *LedgerService {
	return &LedgerService{
		listings: listings,
		users:    users,
		blobs:    blobs,
		cache:    cache,
		locks:    newKeyLock(0),
		logger:   logger,
	}
}

// CreateListing posts a new open listing for owner. The image payload, when
// present, is stored first and only its reference is kept on the listing.
func (s *LedgerService) CreateListing(ctx context.Context, input ports.CreateListingInput) (*ports.ListingResult, error) {
	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.Description) == "" {
		return nil, fmt.Errorf("%w: title and description are required", domain.ErrInvalidInput)
	}
	if input.MinBid <= 0 {
		return nil, fmt.Errorf("%w: minimum bid must be greater than 0", domain.ErrInvalidInput)
	}

	if _, err := s.users.FindByUsername(ctx, input.Owner); err != nil {
		return nil, fmt.Errorf("create listing: %w", err)
	}

	listing := &domain.Listing{
		ID:          uuid.NewString(),
		Owner:       input.Owner,
		Title:       input.Title,
		Description: input.Description,
		MinBid:      input.MinBid,
		Bids:        []domain.Bid{},
		Status:      domain.StatusOpen,
		CreatedAt:   time.Now().UTC(),
	}

	if len(input.Image) > 0 {
		ref, err := s.blobs.Put(ctx, listing.ID, input.Image)
		if err != nil {
			return nil, fmt.Errorf("create listing: store image: %w", err)
		}
		listing.ImageRef = ref
	}

	if err := s.listings.Insert(ctx, listing); err != nil {
		s.logger.Error().Err(err).Str("owner", input.Owner).Msg("failed to insert listing")
		return nil, err
	}

	s.invalidateFeed(ctx)
	s.logger.Info().
		Str("listing_id", listing.ID).
		Str("owner", listing.Owner).
		Float64("min_bid", listing.MinBid).
		Msg("listing created")

	return &ports.ListingResult{
		ID:        listing.ID,
		Owner:     listing.Owner,
		Title:     listing.Title,
		MinBid:    listing.MinBid,
		ImageRef:  listing.ImageRef,
		Status:    string(listing.Status),
		CreatedAt: listing.CreatedAt,
	}, nil
}

// PlaceBid validates and appends a bid. A first bid must strictly exceed the
// listing minimum; later bids must strictly exceed the current highest bid.
// Duplicate submissions create duplicate bids; callers dedupe if they need
// exactly-once.
func (s *LedgerService) PlaceBid(ctx context.Context, listingID, bidder string, amount float64) (*ports.BidResult, error) {
	if amount <= 0 {
		return nil, domain.ErrBidNotPositive
	}
	if _, err := s.users.FindByUsername(ctx, bidder); err != nil {
		return nil, fmt.Errorf("place bid: %w", err)
	}

	unlock := s.locks.Lock(listingID)
	defer unlock()

	var placed domain.Bid
	err := s.withCASRetry(ctx, listingID, func(listing *domain.Listing) error {
		if !listing.IsOpen() {
			return domain.ErrListingSold
		}
		if listing.Owner == bidder {
			return domain.ErrSelfBid
		}
		if !listing.AcceptsBid(amount) {
			if len(listing.Bids) == 0 {
				return fmt.Errorf("%w (minimum is %.2f)", domain.ErrBidBelowMinimum, listing.MinBid)
			}
			return fmt.Errorf("%w (current highest is %.2f)", domain.ErrBidTooLow, listing.RequiredThreshold())
		}
		placed = domain.Bid{Bidder: bidder, Amount: amount, PlacedAt: time.Now().UTC()}
		listing.Bids = append(listing.Bids, placed)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateFeed(ctx)
	s.logger.Info().
		Str("listing_id", listingID).
		Str("bidder", bidder).
		Float64("amount", amount).
		Msg("bid accepted")

	return &ports.BidResult{
		ListingID: listingID,
		Bidder:    bidder,
		Amount:    placed.Amount,
		PlacedAt:  placed.PlacedAt,
	}, nil
}

// CloseAuction settles the listing to its highest bidder. The settlement is
// terminal: a sold listing accepts no further mutation.
func (s *LedgerService) CloseAuction(ctx context.Context, listingID, requester string) (*ports.SaleResult, error) {
	unlock := s.locks.Lock(listingID)
	defer unlock()

	var result ports.SaleResult
	err := s.withCASRetry(ctx, listingID, func(listing *domain.Listing) error {
		if listing.Owner != requester {
			return domain.ErrNotOwner
		}
		if !listing.IsOpen() {
			return domain.ErrListingSold
		}
		winner, ok := listing.HighestBid()
		if !ok {
			return domain.ErrNoBids
		}
		listing.MarkSold(winner.Bidder, winner.Amount)
		result = ports.SaleResult{ListingID: listingID, Winner: winner.Bidder, Price: winner.Amount}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateFeed(ctx)
	s.logger.Info().
		Str("listing_id", listingID).
		Str("winner", result.Winner).
		Float64("price", result.Price).
		Msg("auction settled")

	return &result, nil
}

// RemoveListing deletes the listing and all its bids. The policy is
// deliberately permissive: removal is allowed regardless of existing bids or
// sold status.
func (s *LedgerService) RemoveListing(ctx context.Context, listingID, requester string) error {
	unlock := s.locks.Lock(listingID)
	defer unlock()

	var imageRef string
	for attempt := 0; ; attempt++ {
		listing, err := s.listings.FindByID(ctx, listingID)
		if err != nil {
			return err
		}
		if listing.Owner != requester {
			return domain.ErrNotOwner
		}
		imageRef = listing.ImageRef

		err = s.listings.Delete(ctx, listingID, listing.Version)
		if err == nil {
			break
		}
		if !errors.Is(err, domain.ErrVersionConflict) || attempt >= casRetries {
			return err
		}
	}

	// Best-effort cleanup; an orphaned blob is not worth failing the delete.
	if imageRef != "" {
		if err := s.blobs.Delete(ctx, imageRef); err != nil {
			s.logger.Warn().Err(err).Str("image_ref", imageRef).Msg("failed to delete listing image")
		}
	}

	s.invalidateFeed(ctx)
	s.logger.Info().Str("listing_id", listingID).Str("owner", requester).Msg("listing removed")
	return nil
}

// ListAll returns the global listing feed, served from the cache when warm.
func (s *LedgerService) ListAll(ctx context.Context) ([]*domain.Listing, error) {
	if s.cache != nil {
		if feed, ok := s.cache.GetFeed(ctx); ok {
			return feed, nil
		}
	}
	listings, err := s.listings.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.SetFeed(ctx, listings)
	}
	return listings, nil
}

// ListByOwner returns all listings posted by owner.
func (s *LedgerService) ListByOwner(ctx context.Context, owner string) ([]*domain.Listing, error) {
	if _, err := s.users.FindByUsername(ctx, owner); err != nil {
		return nil, err
	}
	return s.listings.ListByOwner(ctx, owner)
}

// BoughtBy returns sold listings won by bidder.
func (s *LedgerService) BoughtBy(ctx context.Context, bidder string) ([]*domain.Listing, error) {
	if _, err := s.users.FindByUsername(ctx, bidder); err != nil {
		return nil, err
	}
	return s.listings.ListSoldTo(ctx, bidder)
}

// SoldBy returns listings owner has already settled.
func (s *LedgerService) SoldBy(ctx context.Context, owner string) ([]*domain.Listing, error) {
	if _, err := s.users.FindByUsername(ctx, owner); err != nil {
		return nil, err
	}
	return s.listings.ListSoldBy(ctx, owner)
}

// withCASRetry loads the listing, applies mutate, and writes it back guarded
// by the loaded version. A version conflict means another process won the
// race; the whole read-mutate-write cycle is replayed against fresh state up
// to casRetries times. A failed mutate leaves the stored listing untouched.
func (s *LedgerService) withCASRetry(ctx context.Context, listingID string, mutate func(*domain.Listing) error) error {
	for attempt := 0; ; attempt++ {
		listing, err := s.listings.FindByID(ctx, listingID)
		if err != nil {
			return err
		}
		expected := listing.Version

		if err := mutate(listing); err != nil {
			return err
		}

		err = s.listings.Update(ctx, listing, expected)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrVersionConflict) || attempt >= casRetries {
			return err
		}
		s.logger.Debug().Str("listing_id", listingID).Int("attempt", attempt+1).Msg("version conflict, retrying")
	}
}

func (s *LedgerService) invalidateFeed(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}
