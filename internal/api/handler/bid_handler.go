package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bidhaus/auction-api/internal/api/metrics"
	"github.com/bidhaus/auction-api/internal/core/domain"
	"github.com/bidhaus/auction-api/internal/core/ports"
)

// BidHandler handles bid placement, settlement, and trade history queries.
type BidHandler struct {
	ledger ports.LedgerService
}

func NewBidHandler(ledger ports.LedgerService) *BidHandler {
	return &BidHandler{ledger: ledger}
}

// PlaceBid handles POST /post-bid.
//
// @Summary      Place a bid on a listing
// @Tags         bids
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      postBidRequest  true  "Bid details"
// @Success      200   {object}  placeBidResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /post-bid [post]
func (h *BidHandler) PlaceBid(c echo.Context) error {
	var req postBidRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := requireActor(c, req.Username); err != nil {
		return err
	}

	start := time.Now()
	result, err := h.ledger.PlaceBid(c.Request().Context(), req.ListingID, req.Username, req.BidValue)
	if err != nil {
		metrics.BidsRejectedTotal.WithLabelValues(rejectReason(err)).Inc()
		metrics.BidProcessingDuration.WithLabelValues("rejected").Observe(time.Since(start).Seconds())
		return err
	}

	metrics.BidsPlacedTotal.Inc()
	metrics.BidProcessingDuration.WithLabelValues("accepted").Observe(time.Since(start).Seconds())

	return c.JSON(http.StatusOK, placeBidResponse{
		ListingID: result.ListingID,
		Bidder:    result.Bidder,
		Amount:    result.Amount,
		PlacedAt:  result.PlacedAt,
	})
}

// SellItem handles POST /sell-item.
//
// @Summary      Close an auction to its highest bidder
// @Tags         bids
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      sellItemRequest  true  "Listing to settle"
// @Success      200   {object}  sellItemResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /sell-item [post]
func (h *BidHandler) SellItem(c echo.Context) error {
	var req sellItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := requireActor(c, req.SellerUsername); err != nil {
		return err
	}

	result, err := h.ledger.CloseAuction(c.Request().Context(), req.ListingID, req.SellerUsername)
	if err != nil {
		return err
	}

	metrics.AuctionsClosedTotal.Inc()

	return c.JSON(http.StatusOK, sellItemResponse{
		ListingID: result.ListingID,
		Winner:    result.Winner,
		Price:     result.Price,
	})
}

// BoughtByMe handles GET /bought-by-me?username=.
//
// @Summary      Listings won by one user
// @Tags         bids
// @Produce      json
// @Param        username  query     string  true  "Buyer username"
// @Success      200       {array}   listingResponse
// @Failure      400       {object}  errorResponse
// @Failure      404       {object}  errorResponse
// @Router       /bought-by-me [get]
func (h *BidHandler) BoughtByMe(c echo.Context) error {
	username := c.QueryParam("username")
	if username == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username is required")
	}

	listings, err := h.ledger.BoughtBy(c.Request().Context(), username)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toListingResponses(listings))
}

// SoldByMe handles GET /sold-by-me?username=.
//
// @Summary      Listings settled by one user
// @Tags         bids
// @Produce      json
// @Param        username  query     string  true  "Seller username"
// @Success      200       {array}   listingResponse
// @Failure      400       {object}  errorResponse
// @Failure      404       {object}  errorResponse
// @Router       /sold-by-me [get]
func (h *BidHandler) SoldByMe(c echo.Context) error {
	username := c.QueryParam("username")
	if username == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username is required")
	}

	listings, err := h.ledger.SoldBy(c.Request().Context(), username)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toListingResponses(listings))
}

// rejectReason buckets a bid failure for the rejection counter.
func rejectReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrBidBelowMinimum), errors.Is(err, domain.ErrBidTooLow):
		return "below_threshold"
	case errors.Is(err, domain.ErrSelfBid):
		return "self_bid"
	case errors.Is(err, domain.ErrListingSold):
		return "already_sold"
	case errors.Is(err, domain.ErrListingNotFound), errors.Is(err, domain.ErrUserNotFound):
		return "not_found"
	default:
		return "invalid"
	}
}
