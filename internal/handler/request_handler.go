package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/mangaswap/mangaswap-backend/internal/model"
	"github.com/mangaswap/mangaswap-backend/internal/service"
)

type RequestHandler struct {
	svc service.RequestService
}

func NewRequestHandler(svc service.RequestService) *RequestHandler {
	return &RequestHandler{svc: svc}
}

type RequestResponse struct {
	ID           uint64 `json:"id"`
	ListingID    uint64 `json:"listingId"`
	RequesterUID string `json:"requesterUid"`
	OwnerUID     string `json:"ownerUid"`
	Status       string `json:"status"`
	CreatedAt    string `json:"createdAt"`
}

func toRequestResponse(r *model.ExchangeRequest) RequestResponse {
	return RequestResponse{
		ID:           r.ID,
		ListingID:    r.ListingID,
		RequesterUID: r.RequesterUID,
		OwnerUID:     r.OwnerUID,
		Status:       string(r.Status),
		CreatedAt:    r.CreatedAt.Format(time.RFC3339),
	}
}

func (h *RequestHandler) Submit(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	listingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid listing id"))
	}
	req, err := h.svc.Submit(c.Request().Context(), listingID, uid)
	if err != nil {
		return serviceError(c, err, "failed to submit request")
	}
	return c.JSON(http.StatusCreated, toRequestResponse(req))
}

// ListMine returns the caller's requests; ?direction=incoming selects
// requests against the caller's listings, anything else the outgoing ones.
func (h *RequestHandler) ListMine(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	var (
		reqs []model.ExchangeRequest
		err  error
	)
	if c.QueryParam("direction") == "incoming" {
		reqs, err = h.svc.ListIncoming(c.Request().Context(), uid)
	} else {
		reqs, err = h.svc.ListOutgoing(c.Request().Context(), uid)
	}
	if err != nil {
		return serviceError(c, err, "failed to fetch requests")
	}
	resp := make([]RequestResponse, 0, len(reqs))
	for i := range reqs {
		resp = append(resp, toRequestResponse(&reqs[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *RequestHandler) Accept(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	requestID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid request id"))
	}
	chat, err := h.svc.Accept(c.Request().Context(), requestID, uid)
	if err != nil {
		return serviceError(c, err, "failed to accept request")
	}
	return c.JSON(http.StatusCreated, chat)
}

func (h *RequestHandler) Reject(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	requestID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid request id"))
	}
	if err := h.svc.Reject(c.Request().Context(), requestID, uid); err != nil {
		return serviceError(c, err, "failed to reject request")
	}
	return c.NoContent(http.StatusNoContent)
}
