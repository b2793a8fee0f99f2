package domain

import "time"

// ListingStatus represents the lifecycle state of a listing.
type ListingStatus string

const (
	StatusOpen ListingStatus = "open"
	StatusSold ListingStatus = "sold"
)

// Bid is a single accepted offer against a listing. Bids are append-only:
// once accepted they are never mutated or removed.
type Bid struct {
	Bidder   string    `json:"bidder" bson:"bidder"`
	Amount   float64   `json:"amount" bson:"amount"`
	PlacedAt time.Time `json:"placed_at" bson:"placed_at"`
}

// Listing is the core aggregate root. The Bids slice is kept in insertion
// order, which by the strict-increase rule is also ascending by amount.
type Listing struct {
	ID          string        `json:"id" bson:"listing_id"`
	Owner       string        `json:"owner" bson:"owner"`
	Title       string        `json:"title" bson:"title"`
	Description string        `json:"description" bson:"description"`
	ImageRef    string        `json:"image_ref,omitempty" bson:"image_ref,omitempty"`
	MinBid      float64       `json:"min_bid" bson:"min_bid"`
	Bids        []Bid         `json:"bids" bson:"bids"`
	Status      ListingStatus `json:"status" bson:"status"`
	SoldTo      string        `json:"sold_to,omitempty" bson:"sold_to,omitempty"`
	SoldPrice   float64       `json:"sold_price,omitempty" bson:"sold_price,omitempty"`
	CreatedAt   time.Time     `json:"created_at" bson:"created_at"`
	// Version is the optimistic concurrency token; every persisted mutation
	// increments it.
	Version int64 `json:"-" bson:"version"`
}

// IsOpen reports whether the listing still accepts mutations.
func (l *Listing) IsOpen() bool {
	return l.Status == StatusOpen
}

// HighestBid returns the current maximum accepted bid. ok is false when the
// bid sequence is empty.
func (l *Listing) HighestBid() (Bid, bool) {
	if len(l.Bids) == 0 {
		return Bid{}, false
	}
	// Ties go to the earliest submission; with strictly increasing amounts
	// this always resolves to the last appended bid.
	winning := l.Bids[0]
	for _, b := range l.Bids[1:] {
		if b.Amount > winning.Amount {
			winning = b
		}
	}
	return winning, true
}

// RequiredThreshold returns the amount a new bid must strictly exceed.
func (l *Listing) RequiredThreshold() float64 {
	if top, ok := l.HighestBid(); ok {
		return top.Amount
	}
	return l.MinBid
}

// AcceptsBid checks a candidate amount against the bidding rules: a first
// bid must strictly exceed the minimum, later bids must strictly exceed the
// current maximum (ties rejected in both cases).
func (l *Listing) AcceptsBid(amount float64) bool {
	return amount > l.RequiredThreshold()
}

// MarkSold transitions the listing to its terminal sold state.
func (l *Listing) MarkSold(winner string, price float64) {
	l.Status = StatusSold
	l.SoldTo = winner
	l.SoldPrice = price
}
