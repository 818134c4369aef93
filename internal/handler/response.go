package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mangaswap/mangaswap-backend/internal/service"
)

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error errorPayload `json:"error"`
}

func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{
		Error: errorPayload{
			Code:    code,
			Message: message,
		},
	}
}

// serviceError maps service sentinels onto the wire taxonomy. fallback is
// the message used for unexpected (transient) failures.
func serviceError(c echo.Context, err error, fallback string) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "not found"))
	case errors.Is(err, service.ErrForbidden):
		return c.JSON(http.StatusForbidden, NewErrorResponse("forbidden", "not allowed"))
	case errors.Is(err, service.ErrSelfRequest):
		return c.JSON(http.StatusForbidden, NewErrorResponse("forbidden", "cannot request your own listing"))
	case errors.Is(err, service.ErrNotSender):
		return c.JSON(http.StatusForbidden, NewErrorResponse("forbidden", "only the sender can unsend a message"))
	case errors.Is(err, service.ErrAlreadyRequested):
		return c.JSON(http.StatusConflict, NewErrorResponse("conflict", "request already pending"))
	case errors.Is(err, service.ErrChatAlreadyExists):
		return c.JSON(http.StatusConflict, NewErrorResponse("conflict", "chat already exists for this listing"))
	case errors.Is(err, service.ErrDuplicateChannel):
		return c.JSON(http.StatusConflict, NewErrorResponse("conflict", "duplicate chat channel"))
	case errors.Is(err, service.ErrEmptyBody):
		return c.JSON(http.StatusBadRequest, NewErrorResponse("validation_failed", "body must not be blank"))
	case errors.Is(err, service.ErrValidation):
		return c.JSON(http.StatusBadRequest, NewErrorResponse("validation_failed", err.Error()))
	default:
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", fallback))
	}
}
