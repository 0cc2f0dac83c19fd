package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/xirothedev/facebook-clone-backend/internal/domain"
	"github.com/xirothedev/facebook-clone-backend/internal/usecase"
	res "github.com/xirothedev/facebook-clone-backend/pkg/http"
)

// Cookie lifetimes are part of the frontend contract and are kept exactly
// as deployed: refresh_token at one hour, access_token at seven days.
const (
	sessionCookieTTL = 10 * 365 * 24 * time.Hour
	refreshCookieTTL = time.Hour
	accessCookieTTL  = 7 * 24 * time.Hour
)

type AuthHandler struct {
	service usecase.Service
}

func NewAuthHandler(s usecase.Service) *AuthHandler { return &AuthHandler{service: s} }

type registerRequest struct {
	Email       string     `json:"email"`
	Password    string     `json:"password"`
	DisplayName string     `json:"display_name"`
	Birthday    *time.Time `json:"birthday"`
	Gender      string     `json:"gender"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type logoutRequest struct {
	SessionID string `json:"session_id"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type recoveryStartRequest struct {
	Email string `json:"email"`
}

type recoveryConfirmRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}

type forgotVerifyRequest struct {
	UserID      string `json:"user_id"`
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
	Email       string `json:"email"`
}

func (h *AuthHandler) Register(c echo.Context) error {
	req := new(registerRequest)
	if err := c.Bind(req); err != nil {
		return res.ErrorJSON(c, http.StatusBadRequest, "bad_request", "invalid payload", requestIDFromCtx(c), nil)
	}
	user, err := h.service.Register(c.Request().Context(), requestIDFromCtx(c), usecase.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		Birthday:    req.Birthday,
		Gender:      req.Gender,
	})
	if err != nil {
		return mapError(c, err, "register_failed")
	}
	// the service hands back the full record; strip the hash before it
	// leaves the process
	return res.JSON(c, http.StatusCreated, user.Redacted())
}

func (h *AuthHandler) Login(c echo.Context) error {
	req := new(loginRequest)
	if err := c.Bind(req); err != nil {
		return res.ErrorJSON(c, http.StatusBadRequest, "bad_request", "invalid payload", requestIDFromCtx(c), nil)
	}
	result, err := h.service.Login(
		c.Request().Context(),
		requestIDFromCtx(c),
		req.Email,
		req.Password,
		c.RealIP(),
		c.Request().UserAgent(),
	)
	if err != nil {
		return mapError(c, err, "login_failed")
	}

	setSessionCookies(c, result.Session, result.Tokens)
	return res.JSON(c, http.StatusOK, map[string]interface{}{
		"user":   result.User,
		"tokens": result.Tokens,
	})
}

// Logout resolves the session from the explicit payload first, then the
// persisted cookie.
func (h *AuthHandler) Logout(c echo.Context) error {
	req := new(logoutRequest)
	_ = c.Bind(req)
	sessionID := req.SessionID
	if sessionID == "" {
		if cookie, err := c.Cookie("session_id"); err == nil {
			sessionID = cookie.Value
		}
	}
	if err := h.service.Logout(c.Request().Context(), requestIDFromCtx(c), sessionID); err != nil {
		return mapError(c, err, "logout_failed")
	}
	clearSessionCookies(c)
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHandler) Refresh(c echo.Context) error {
	req := new(refreshRequest)
	_ = c.Bind(req)
	token := req.RefreshToken
	if token == "" {
		if cookie, err := c.Cookie("refresh_token"); err == nil {
			token = cookie.Value
		}
	}
	tokens, err := h.service.Refresh(c.Request().Context(), requestIDFromCtx(c), token)
	if err != nil {
		return mapError(c, err, "refresh_failed")
	}
	return res.JSON(c, http.StatusOK, tokens)
}

func (h *AuthHandler) ChangePassword(c echo.Context) error {
	req := new(changePasswordRequest)
	if err := c.Bind(req); err != nil {
		return res.ErrorJSON(c, http.StatusBadRequest, "bad_request", "invalid payload", requestIDFromCtx(c), nil)
	}
	userID := c.Get("user_id").(string)
	user, err := h.service.ChangePassword(c.Request().Context(), requestIDFromCtx(c), userID, req.OldPassword, req.NewPassword)
	if err != nil {
		return mapError(c, err, "password_change_failed")
	}
	return res.JSON(c, http.StatusOK, user)
}

func (h *AuthHandler) RecoveryStart(c echo.Context) error {
	req := new(recoveryStartRequest)
	if err := c.Bind(req); err != nil {
		return res.ErrorJSON(c, http.StatusBadRequest, "bad_request", "invalid payload", requestIDFromCtx(c), nil)
	}
	if err := h.service.RecoveryAccount(c.Request().Context(), requestIDFromCtx(c), req.Email); err != nil {
		return mapError(c, err, "recovery_failed")
	}
	return c.JSON(http.StatusAccepted, map[string]string{"message": "recovery code sent"})
}

func (h *AuthHandler) RecoveryConfirm(c echo.Context) error {
	req := new(recoveryConfirmRequest)
	if err := c.Bind(req); err != nil {
		return res.ErrorJSON(c, http.StatusBadRequest, "bad_request", "invalid payload", requestIDFromCtx(c), nil)
	}
	if err := h.service.ConfirmRecoveryAccount(c.Request().Context(), requestIDFromCtx(c), req.Email, req.Code, req.NewPassword); err != nil {
		return mapError(c, err, "recovery_failed")
	}
	return res.JSON(c, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *AuthHandler) ForgotStart(c echo.Context) error {
	req := new(recoveryStartRequest)
	if err := c.Bind(req); err != nil {
		return res.ErrorJSON(c, http.StatusBadRequest, "bad_request", "invalid payload", requestIDFromCtx(c), nil)
	}
	if err := h.service.ForgotPassword(c.Request().Context(), requestIDFromCtx(c), req.Email); err != nil {
		return mapError(c, err, "forgot_password_failed")
	}
	return c.JSON(http.StatusAccepted, map[string]string{"message": "verification code sent"})
}

func (h *AuthHandler) ForgotVerify(c echo.Context) error {
	req := new(forgotVerifyRequest)
	if err := c.Bind(req); err != nil {
		return res.ErrorJSON(c, http.StatusBadRequest, "bad_request", "invalid payload", requestIDFromCtx(c), nil)
	}
	if err := h.service.VerifyTokenForgotPassword(c.Request().Context(), requestIDFromCtx(c), req.UserID, req.Token, req.NewPassword, req.Email); err != nil {
		return mapError(c, err, "forgot_password_failed")
	}
	return res.JSON(c, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *AuthHandler) GetMe(c echo.Context) error {
	userID := c.Get("user_id").(string)
	user, err := h.service.GetMe(c.Request().Context(), requestIDFromCtx(c), userID)
	if err != nil {
		return mapError(c, err, "not_found")
	}
	return res.JSON(c, http.StatusOK, user)
}

func setSessionCookies(c echo.Context, session *domain.Session, tokens *usecase.Tokens) {
	now := time.Now()
	c.SetCookie(&http.Cookie{
		Name:    "session_id",
		Value:   session.ID,
		Path:    "/",
		Expires: now.Add(sessionCookieTTL),
	})
	c.SetCookie(&http.Cookie{
		Name:     "refresh_token",
		Value:    tokens.RefreshToken,
		Path:     "/",
		Expires:  now.Add(refreshCookieTTL),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	c.SetCookie(&http.Cookie{
		Name:     "access_token",
		Value:    tokens.AccessToken,
		Path:     "/",
		Expires:  now.Add(accessCookieTTL),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookies(c echo.Context) {
	for _, name := range []string{"refresh_token", "access_token"} {
		c.SetCookie(&http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

func mapError(c echo.Context, err error, code string) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, usecase.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, usecase.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, usecase.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, usecase.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, usecase.ErrInvalidInput):
		status = http.StatusBadRequest
	}
	return res.ErrorJSON(c, status, code, err.Error(), requestIDFromCtx(c), nil)
}

func requestIDFromCtx(c echo.Context) string {
	if reqID := c.Response().Header().Get(echo.HeaderXRequestID); reqID != "" {
		return reqID
	}
	return c.Request().Header.Get(echo.HeaderXRequestID)
}
