package handler

import (
	"encoding/base64"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bidhaus/auction-api/internal/api/metrics"
	"github.com/bidhaus/auction-api/internal/core/ports"
)

// ListingHandler handles HTTP requests for listing lifecycle operations.
type ListingHandler struct {
	ledger ports.LedgerService
	images ports.BlobStore
}

func NewListingHandler(ledger ports.LedgerService, images ports.BlobStore) *ListingHandler {
	return &ListingHandler{ledger: ledger, images: images}
}

// Create handles POST /new-listing.
//
// @Summary      Post a new listing
// @Tags         listings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createListingRequest  true  "Listing details"
// @Success      201   {object}  createListingResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /new-listing [post]
func (h *ListingHandler) Create(c echo.Context) error {
	var req createListingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := requireActor(c, req.Username); err != nil {
		return err
	}

	var image []byte
	if req.Image != "" {
		decoded, err := base64.StdEncoding.DecodeString(req.Image)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "image must be base64 encoded")
		}
		image = decoded
	}

	result, err := h.ledger.CreateListing(c.Request().Context(), ports.CreateListingInput{
		Owner:       req.Username,
		Title:       req.Title,
		Description: req.Description,
		MinBid:      req.MinBid,
		Image:       image,
	})
	if err != nil {
		return err
	}

	metrics.ListingsCreatedTotal.Inc()

	return c.JSON(http.StatusCreated, createListingResponse{
		ID:        result.ID,
		Owner:     result.Owner,
		Title:     result.Title,
		MinBid:    result.MinBid,
		ImageRef:  result.ImageRef,
		Status:    result.Status,
		CreatedAt: result.CreatedAt,
	})
}

// ListAll handles GET /all-listings.
//
// @Summary      Global listing feed
// @Tags         listings
// @Produce      json
// @Success      200  {array}   listingResponse
// @Failure      500  {object}  errorResponse
// @Router       /all-listings [get]
func (h *ListingHandler) ListAll(c echo.Context) error {
	listings, err := h.ledger.ListAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toListingResponses(listings))
}

// ListMine handles GET /my-listings?username=.
//
// @Summary      Listings posted by one user
// @Tags         listings
// @Produce      json
// @Param        username  query     string  true  "Owner username"
// @Success      200       {array}   listingResponse
// @Failure      400       {object}  errorResponse
// @Failure      404       {object}  errorResponse
// @Router       /my-listings [get]
func (h *ListingHandler) ListMine(c echo.Context) error {
	username := c.QueryParam("username")
	if username == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username is required")
	}

	listings, err := h.ledger.ListByOwner(c.Request().Context(), username)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toListingResponses(listings))
}

// Delete handles DELETE /delete-listing.
//
// @Summary      Remove a listing
// @Tags         listings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      deleteListingRequest  true  "Listing to remove"
// @Success      200   {object}  statusResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /delete-listing [delete]
func (h *ListingHandler) Delete(c echo.Context) error {
	var req deleteListingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := requireActor(c, req.Username); err != nil {
		return err
	}

	if err := h.ledger.RemoveListing(c.Request().Context(), req.ListingID, req.Username); err != nil {
		return err
	}

	metrics.ListingsRemovedTotal.Inc()
	return c.JSON(http.StatusOK, statusResponse{Status: "deleted"})
}

// Image handles GET /images/:ref — serves a stored listing image.
//
// @Summary      Fetch a listing image
// @Tags         listings
// @Produce      octet-stream
// @Param        ref  path      string  true  "Image reference"
// @Success      200  {file}    binary
// @Failure      404  {object}  errorResponse
// @Router       /images/{ref} [get]
func (h *ListingHandler) Image(c echo.Context) error {
	data, err := h.images.Get(c.Request().Context(), c.Param("ref"))
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, http.DetectContentType(data), data)
}
