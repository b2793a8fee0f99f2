package handler

import (
	"time"

	"github.com/bidhaus/auction-api/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request types ---

type createListingRequest struct {
	Username    string  `json:"username"    validate:"required"`
	Title       string  `json:"title"       validate:"required"`
	Description string  `json:"description" validate:"required"`
	MinBid      float64 `json:"minBid"      validate:"required,gt=0"`
	// Image is an optional base64-encoded payload, matching the upload
	// format the web client sends.
	Image string `json:"image,omitempty"`
}

type deleteListingRequest struct {
	Username  string `json:"username"  validate:"required"`
	ListingID string `json:"listingId" validate:"required"`
}

type postBidRequest struct {
	Username  string  `json:"username"  validate:"required"`
	ListingID string  `json:"listingId" validate:"required"`
	BidValue  float64 `json:"bidValue"  validate:"required,gt=0"`
}

type sellItemRequest struct {
	SellerUsername string `json:"sellerUsername" validate:"required"`
	ListingID      string `json:"listingId"      validate:"required"`
}

// --- Response types ---
// Response-only types owned by the transport layer, deliberately decoupled
// from the domain structs.

type bidResponse struct {
	Bidder   string    `json:"bidder"`
	Amount   float64   `json:"amount"`
	PlacedAt time.Time `json:"placed_at"`
}

type listingResponse struct {
	ID          string        `json:"id"`
	Owner       string        `json:"owner"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	ImageRef    string        `json:"image_ref,omitempty"`
	MinBid      float64       `json:"min_bid"`
	Bids        []bidResponse `json:"bids"`
	Status      string        `json:"status"`
	SoldTo      string        `json:"sold_to,omitempty"`
	SoldPrice   float64       `json:"sold_price,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

type createListingResponse struct {
	ID        string    `json:"id"`
	Owner     string    `json:"owner"`
	Title     string    `json:"title"`
	MinBid    float64   `json:"min_bid"`
	ImageRef  string    `json:"image_ref,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type placeBidResponse struct {
	ListingID string    `json:"listing_id"`
	Bidder    string    `json:"bidder"`
	Amount    float64   `json:"amount"`
	PlacedAt  time.Time `json:"placed_at"`
}

type sellItemResponse struct {
	ListingID string  `json:"listing_id"`
	Winner    string  `json:"winner"`
	Price     float64 `json:"price"`
}

type statusResponse struct {
	Status string `json:"status"`
}

// toListingResponse maps a domain listing to its transport shape.
func toListingResponse(l *domain.Listing) listingResponse {
	bids := make([]bidResponse, 0, len(l.Bids))
	for _, b := range l.Bids {
		bids = append(bids, bidResponse{Bidder: b.Bidder, Amount: b.Amount, PlacedAt: b.PlacedAt})
	}
	return listingResponse{
		ID:          l.ID,
		Owner:       l.Owner,
		Title:       l.Title,
		Description: l.Description,
		ImageRef:    l.ImageRef,
		MinBid:      l.MinBid,
		Bids:        bids,
		Status:      string(l.Status),
		SoldTo:      l.SoldTo,
		SoldPrice:   l.SoldPrice,
		CreatedAt:   l.CreatedAt,
	}
}

func toListingResponses(listings []*domain.Listing) []listingResponse {
	out := make([]listingResponse, 0, len(listings))
	for _, l := range listings {
		out = append(out, toListingResponse(l))
	}
	return out
}
