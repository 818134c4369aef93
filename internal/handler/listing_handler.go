package handler

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/mangaswap/mangaswap-backend/internal/model"
	"github.com/mangaswap/mangaswap-backend/internal/service"
)

type ListingHandler struct {
	svc service.ListingService
}

func NewListingHandler(svc service.ListingService) *ListingHandler {
	return &ListingHandler{svc: svc}
}

type ListingResponse struct {
	ID        uint64  `json:"id"`
	Title     string  `json:"title"`
	Author    string  `json:"author"`
	Volume    uint    `json:"volume"`
	Condition int     `json:"condition"`
	ImageURL  string  `json:"imageUrl"`
	OwnerUID  string  `json:"ownerUid"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	// DistanceKm is null when the viewer supplied no coordinate, so a
	// client can render "Calculating..." instead of a misleading 0.
	DistanceKm *float64 `json:"distanceKm,omitempty"`
	CreatedAt  string   `json:"createdAt"`
	UpdatedAt  string   `json:"updatedAt"`
}

type ListingListResponse struct {
	Listings []ListingResponse `json:"listings"`
	Ranked   bool              `json:"ranked"`
}

type UpdateListingRequest struct {
	Title     string   `json:"title" validate:"required,max=120"`
	Author    string   `json:"author" validate:"required,max=120"`
	Volume    uint     `json:"volume"`
	Condition int      `json:"condition" validate:"required,min=1,max=5"`
	Latitude  *float64 `json:"latitude" validate:"required"`
	Longitude *float64 `json:"longitude" validate:"required"`
}

func toListingResponse(l *model.Listing, distanceKm *float64) ListingResponse {
	return ListingResponse{
		ID:         l.ID,
		Title:      l.Title,
		Author:     l.Author,
		Volume:     l.Volume,
		Condition:  l.Condition,
		ImageURL:   l.ImageURL,
		OwnerUID:   l.OwnerUID,
		Latitude:   l.Latitude,
		Longitude:  l.Longitude,
		DistanceKm: distanceKm,
		CreatedAt:  l.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  l.UpdatedAt.Format(time.RFC3339),
	}
}

// Create accepts multipart/form-data: title, author, volume, condition,
// latitude, longitude and an "image" file part. The record is only written
// after the image upload succeeds.
func (h *ListingHandler) Create(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}

	volume, err := strconv.ParseUint(c.FormValue("volume"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("validation_failed", "invalid volume"))
	}
	condition, err := strconv.Atoi(c.FormValue("condition"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("validation_failed", "invalid condition"))
	}

	in := service.CreateListingInput{
		Title:     c.FormValue("title"),
		Author:    c.FormValue("author"),
		Volume:    uint(volume),
		Condition: condition,
	}
	latStr, lonStr := c.FormValue("latitude"), c.FormValue("longitude")
	if latStr != "" && lonStr != "" {
		lat, latErr := strconv.ParseFloat(latStr, 64)
		lon, lonErr := strconv.ParseFloat(lonStr, 64)
		if latErr != nil || lonErr != nil {
			return c.JSON(http.StatusBadRequest, NewErrorResponse("validation_failed", "invalid coordinate"))
		}
		in.Latitude, in.Longitude, in.HasLocation = lat, lon, true
	}

	fh, err := c.FormFile("image")
	if err == nil {
		f, openErr := fh.Open()
		if openErr != nil {
			return c.JSON(http.StatusBadRequest, NewErrorResponse("validation_failed", "unreadable image"))
		}
		defer f.Close()
		data, readErr := io.ReadAll(f)
		if readErr != nil {
			return c.JSON(http.StatusBadRequest, NewErrorResponse("validation_failed", "unreadable image"))
		}
		in.ImageData = data
		in.ImageType = fh.Header.Get("Content-Type")
	}

	listing, err := h.svc.Create(c.Request().Context(), uid, in)
	if err != nil {
		return serviceError(c, err, "failed to create listing")
	}
	return c.JSON(http.StatusCreated, toListingResponse(listing, nil))
}

func (h *ListingHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid id"))
	}
	listing, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return serviceError(c, err, "failed to fetch listing")
	}
	return c.JSON(http.StatusOK, toListingResponse(listing, nil))
}

// List returns listings filtered by ?q= and, when both ?lat= and ?lon= are
// present, ranked ascending by distance from that coordinate.
func (h *ListingHandler) List(c echo.Context) error {
	var viewer *service.Coordinate
	latStr, lonStr := c.QueryParam("lat"), c.QueryParam("lon")
	if latStr != "" && lonStr != "" {
		lat, latErr := strconv.ParseFloat(latStr, 64)
		lon, lonErr := strconv.ParseFloat(lonStr, 64)
		if latErr != nil || lonErr != nil {
			return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid viewer coordinate"))
		}
		viewer = &service.Coordinate{Latitude: lat, Longitude: lon}
	}

	results, err := h.svc.List(c.Request().Context(), c.QueryParam("q"), viewer)
	if err != nil {
		return serviceError(c, err, "failed to fetch listings")
	}
	resp := ListingListResponse{
		Listings: make([]ListingResponse, 0, len(results)),
		Ranked:   viewer != nil,
	}
	for i := range results {
		resp.Listings = append(resp.Listings, toListingResponse(&results[i].Listing, results[i].DistanceKm))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ListingHandler) ListMine(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	listings, err := h.svc.ListMine(c.Request().Context(), uid)
	if err != nil {
		return serviceError(c, err, "failed to fetch listings")
	}
	resp := make([]ListingResponse, 0, len(listings))
	for i := range listings {
		resp = append(resp, toListingResponse(&listings[i], nil))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ListingHandler) Update(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid id"))
	}
	var req UpdateListingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("validation_failed", err.Error()))
	}
	listing, err := h.svc.Update(c.Request().Context(), id, uid, service.UpdateListingInput{
		Title:       req.Title,
		Author:      req.Author,
		Volume:      req.Volume,
		Condition:   req.Condition,
		Latitude:    *req.Latitude,
		Longitude:   *req.Longitude,
		HasLocation: true,
	})
	if err != nil {
		return serviceError(c, err, "failed to update listing")
	}
	return c.JSON(http.StatusOK, toListingResponse(listing, nil))
}

func (h *ListingHandler) Delete(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid id"))
	}
	if err := h.svc.Delete(c.Request().Context(), id, uid); err != nil {
		return serviceError(c, err, "failed to delete listing")
	}
	return c.NoContent(http.StatusNoContent)
}
