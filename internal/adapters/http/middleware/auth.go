package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/xirothedev/facebook-clone-backend/internal/domain"
	res "github.com/xirothedev/facebook-clone-backend/pkg/http"
)

// Validator is the session-aware token gate protected routes run behind.
type Validator interface {
	Validate(ctx context.Context, accessToken string) (*domain.User, error)
}

type AuthMiddleware struct {
	validator Validator
}

func NewAuthMiddleware(validator Validator) *AuthMiddleware {
	return &AuthMiddleware{validator: validator}
}

// Handler accepts the access token from the Authorization header or the
// access_token cookie and rejects with 401 on any validation failure.
func (m *AuthMiddleware) Handler(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := bearerToken(c)
		if token == "" {
			if cookie, err := c.Cookie("access_token"); err == nil {
				token = cookie.Value
			}
		}
		if token == "" {
			return res.ErrorJSON(c, http.StatusUnauthorized, "unauthorized", "missing token", requestIDFromCtx(c), nil)
		}

		user, err := m.validator.Validate(c.Request().Context(), token)
		if err != nil {
			return res.ErrorJSON(c, http.StatusUnauthorized, "unauthorized", "invalid token", requestIDFromCtx(c), nil)
		}

		c.Set("user_id", user.ID)
		c.Set("user", user)
		return next(c)
	}
}

func bearerToken(c echo.Context) string {
	authz := c.Request().Header.Get(echo.HeaderAuthorization)
	if authz == "" {
		return ""
	}
	parts := strings.SplitN(authz, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

func requestIDFromCtx(c echo.Context) string {
	if reqID := c.Response().Header().Get(echo.HeaderXRequestID); reqID != "" {
		return reqID
	}
	return c.Request().Header.Get(echo.HeaderXRequestID)
}
