package middleware

import (
	"context"
	"net/http"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type AuthMiddleware struct {
	authClient *auth.Client
	log        *zap.Logger
}

func NewAuthMiddleware(ctx context.Context, projectID string, log *zap.Logger) (*AuthMiddleware, error) {
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID})
	if err != nil {
		return nil, err
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, err
	}
	return &AuthMiddleware{authClient: client, log: log}, nil
}

type authError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func unauthorized(c echo.Context, message string) error {
	var body authError
	body.Error.Code = "unauthorized"
	body.Error.Message = message
	return c.JSON(http.StatusUnauthorized, body)
}

// bearerToken pulls the ID token from the Authorization header, falling
// back to the access_token query param for WebSocket clients that cannot
// set headers.
func bearerToken(c echo.Context) string {
	authz := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(authz, "Bearer ") {
		return strings.TrimPrefix(authz, "Bearer ")
	}
	return c.QueryParam("access_token")
}

// RequireAuth verifies the caller's ID token and stores the verified UID in
// the echo context under "uid".
func (m *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		tokenStr := bearerToken(c)
		if tokenStr == "" {
			return unauthorized(c, "missing credentials")
		}
		token, err := m.authClient.VerifyIDToken(c.Request().Context(), tokenStr)
		if err != nil {
			m.log.Debug("token verification failed",
				zap.String("path", c.Request().URL.Path), zap.Error(err))
			return unauthorized(c, "invalid token")
		}
		c.Set("uid", token.UID)
		return next(c)
	}
}

func (m *AuthMiddleware) Client() *auth.Client {
	return m.authClient
}
