package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/mangaswap/mangaswap-backend/internal/model"
	"github.com/mangaswap/mangaswap-backend/internal/service"
)

type UserHandler struct {
	svc service.UserService
}

func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

type UserResponse struct {
	UID        string  `json:"uid"`
	Name       string  `json:"name"`
	Email      string  `json:"email,omitempty"`
	PictureURL *string `json:"pictureUrl"`
	CreatedAt  string  `json:"createdAt"`
}

type PublicUserResponse struct {
	UID        string  `json:"uid"`
	Name       string  `json:"name"`
	PictureURL *string `json:"pictureUrl"`
}

type UpdateProfileRequest struct {
	Name       string  `json:"name" validate:"required,max=120"`
	PictureURL *string `json:"pictureUrl" validate:"omitempty,url"`
}

func toUserResponse(u *model.User) UserResponse {
	return UserResponse{
		UID:        u.UID,
		Name:       u.Name,
		Email:      u.Email,
		PictureURL: u.PictureURL,
		CreatedAt:  u.CreatedAt.Format(time.RFC3339),
	}
}

// Ensure creates the caller's user record on first sign-in; calling it
// again returns the existing record untouched.
func (h *UserHandler) Ensure(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	u, err := h.svc.Ensure(c.Request().Context(), uid)
	if err != nil {
		return serviceError(c, err, "failed to ensure user")
	}
	return c.JSON(http.StatusOK, toUserResponse(u))
}

func (h *UserHandler) Me(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	u, err := h.svc.Get(c.Request().Context(), uid)
	if err != nil {
		return serviceError(c, err, "failed to fetch user")
	}
	return c.JSON(http.StatusOK, toUserResponse(u))
}

func (h *UserHandler) UpdateMe(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("validation_failed", err.Error()))
	}
	u, err := h.svc.UpdateProfile(c.Request().Context(), uid, req.Name, req.PictureURL)
	if err != nil {
		return serviceError(c, err, "failed to update profile")
	}
	return c.JSON(http.StatusOK, toUserResponse(u))
}

func (h *UserHandler) DeleteMe(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	if err := h.svc.DeleteAccount(c.Request().Context(), uid); err != nil {
		return serviceError(c, err, "failed to delete account")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *UserHandler) GetPublic(c echo.Context) error {
	uid := c.Param("uid")
	if uid == "" {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid uid"))
	}
	u, err := h.svc.Get(c.Request().Context(), uid)
	if err != nil {
		return serviceError(c, err, "failed to fetch user")
	}
	return c.JSON(http.StatusOK, PublicUserResponse{
		UID:        u.UID,
		Name:       u.Name,
		PictureURL: u.PictureURL,
	})
}
