package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bidhaus/auction-api/internal/core/domain"
	"github.com/bidhaus/auction-api/internal/core/ports"
)

// stubLedger implements ports.LedgerService with pluggable behaviour.
type stubLedger struct {
	placeBidFn  func(ctx context.Context, listingID, bidder string, amount float64) (*ports.BidResult, error)
	closeFn     func(ctx context.Context, listingID, requester string) (*ports.SaleResult, error)
	removeFn    func(ctx context.Context, listingID, requester string) error
	createFn    func(ctx context.Context, input ports.CreateListingInput) (*ports.ListingResult, error)
	listAllFn   func(ctx context.Context) ([]*domain.Listing, error)
	byOwnerFn   func(ctx context.Context, owner string) ([]*domain.Listing, error)
	boughtByFn  func(ctx context.Context, bidder string) ([]*domain.Listing, error)
	soldByFn    func(ctx context.Context, owner string) ([]*domain.Listing, error)
}

func (s *stubLedger) CreateListing(ctx context.Context, input ports.CreateListingInput) (*ports.ListingResult, error) {
	return s.createFn(ctx, input)
}

func (s *stubLedger) PlaceBid(ctx context.Context, listingID, bidder string, amount float64) (*ports.BidResult, error) {
	return s.placeBidFn(ctx, listingID, bidder, amount)
}

func (s *stubLedger) CloseAuction(ctx context.Context, listingID, requester string) (*ports.SaleResult, error) {
	return s.closeFn(ctx, listingID, requester)
}

func (s *stubLedger) RemoveListing(ctx context.Context, listingID, requester string) error {
	return s.removeFn(ctx, listingID, requester)
}

func (s *stubLedger) ListAll(ctx context.Context) ([]*domain.Listing, error) {
	return s.listAllFn(ctx)
}

func (s *stubLedger) ListByOwner(ctx context.Context, owner string) ([]*domain.Listing, error) {
	return s.byOwnerFn(ctx, owner)
}

func (s *stubLedger) BoughtBy(ctx context.Context, bidder string) ([]*domain.Listing, error) {
	return s.boughtByFn(ctx, bidder)
}

func (s *stubLedger) SoldBy(ctx context.Context, owner string) ([]*domain.Listing, error) {
	return s.soldByFn(ctx, owner)
}

func asActor(c echo.Context, username string) {
	c.Set("username", username)
}

func TestBidHandler_PlaceBid_Success(t *testing.T) {
	stub := &stubLedger{
		placeBidFn: func(ctx context.Context, listingID, bidder string, amount float64) (*ports.BidResult, error) {
			if listingID != "l1" || bidder != "bob" || amount != 15 {
				t.Fatalf("unexpected args: %s %s %v", listingID, bidder, amount)
			}
			return &ports.BidResult{ListingID: listingID, Bidder: bidder, Amount: amount, PlacedAt: time.Now()}, nil
		},
	}
	handler := NewBidHandler(stub)

	c, rec := newTestContext(t, http.MethodPost, "/post-bid", `{"username":"bob","listingId":"l1","bidValue":15}`)
	asActor(c, "bob")

	if err := handler.PlaceBid(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["bidder"] != "bob" || resp["amount"] != float64(15) {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestBidHandler_PlaceBid_SelfBid(t *testing.T) {
	stub := &stubLedger{
		placeBidFn: func(ctx context.Context, listingID, bidder string, amount float64) (*ports.BidResult, error) {
			return nil, domain.ErrSelfBid
		},
	}
	handler := NewBidHandler(stub)

	c, _ := newTestContext(t, http.MethodPost, "/post-bid", `{"username":"alice","listingId":"l1","bidValue":100}`)
	asActor(c, "alice")

	if err := handler.PlaceBid(c); !errors.Is(err, domain.ErrSelfBid) {
		t.Fatalf("expected ErrSelfBid, got %v", err)
	}
}

func TestBidHandler_PlaceBid_ActorMismatch(t *testing.T) {
	stub := &stubLedger{
		placeBidFn: func(ctx context.Context, listingID, bidder string, amount float64) (*ports.BidResult, error) {
			t.Fatalf("service must not be called")
			return nil, nil
		},
	}
	handler := NewBidHandler(stub)

	c, _ := newTestContext(t, http.MethodPost, "/post-bid", `{"username":"bob","listingId":"l1","bidValue":15}`)
	asActor(c, "mallory")

	err := handler.PlaceBid(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusForbidden {
		t.Fatalf("expected 403 HTTPError, got %v", err)
	}
}

func TestBidHandler_PlaceBid_MissingClaims(t *testing.T) {
	stub := &stubLedger{
		placeBidFn: func(ctx context.Context, listingID, bidder string, amount float64) (*ports.BidResult, error) {
			t.Fatalf("service must not be called")
			return nil, nil
		},
	}
	handler := NewBidHandler(stub)

	c, _ := newTestContext(t, http.MethodPost, "/post-bid", `{"username":"bob","listingId":"l1","bidValue":15}`)

	err := handler.PlaceBid(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 HTTPError, got %v", err)
	}
}

func TestBidHandler_PlaceBid_RejectsNonPositiveValue(t *testing.T) {
	stub := &stubLedger{
		placeBidFn: func(ctx context.Context, listingID, bidder string, amount float64) (*ports.BidResult, error) {
			t.Fatalf("service must not be called")
			return nil, nil
		},
	}
	handler := NewBidHandler(stub)

	c, _ := newTestContext(t, http.MethodPost, "/post-bid", `{"username":"bob","listingId":"l1","bidValue":0}`)
	asActor(c, "bob")

	err := handler.PlaceBid(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestBidHandler_SellItem_Success(t *testing.T) {
	stub := &stubLedger{
		closeFn: func(ctx context.Context, listingID, requester string) (*ports.SaleResult, error) {
			if listingID != "l1" || requester != "alice" {
				t.Fatalf("unexpected args: %s %s", listingID, requester)
			}
			return &ports.SaleResult{ListingID: listingID, Winner: "bob", Price: 42}, nil
		},
	}
	handler := NewBidHandler(stub)

	c, rec := newTestContext(t, http.MethodPost, "/sell-item", `{"sellerUsername":"alice","listingId":"l1"}`)
	asActor(c, "alice")

	if err := handler.SellItem(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["winner"] != "bob" || resp["price"] != float64(42) {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestBidHandler_SellItem_NoBids(t *testing.T) {
	stub := &stubLedger{
		closeFn: func(ctx context.Context, listingID, requester string) (*ports.SaleResult, error) {
			return nil, domain.ErrNoBids
		},
	}
	handler := NewBidHandler(stub)

	c, _ := newTestContext(t, http.MethodPost, "/sell-item", `{"sellerUsername":"alice","listingId":"l1"}`)
	asActor(c, "alice")

	if err := handler.SellItem(c); !errors.Is(err, domain.ErrNoBids) {
		t.Fatalf("expected ErrNoBids, got %v", err)
	}
}

func TestBidHandler_BoughtByMe_RequiresUsername(t *testing.T) {
	handler := NewBidHandler(&stubLedger{})

	c, _ := newTestContext(t, http.MethodGet, "/bought-by-me", "")
	err := handler.BoughtByMe(c)

	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestBidHandler_SoldByMe_Success(t *testing.T) {
	stub := &stubLedger{
		soldByFn: func(ctx context.Context, owner string) ([]*domain.Listing, error) {
			return []*domain.Listing{{
				ID:        "l1",
				Owner:     owner,
				Status:    domain.StatusSold,
				SoldTo:    "bob",
				SoldPrice: 42,
			}}, nil
		},
	}
	handler := NewBidHandler(stub)

	c, rec := newTestContext(t, http.MethodGet, "/sold-by-me?username=alice", "")
	if err := handler.SoldByMe(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp) != 1 || resp[0]["sold_to"] != "bob" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}
