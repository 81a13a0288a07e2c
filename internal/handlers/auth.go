package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"microblog/internal/auth"
	dom "microblog/internal/domain"
	"microblog/internal/dto"
	"microblog/internal/service"

	"github.com/gin-gonic/gin"
)

// UserAuthService is the slice of UserService the auth handler needs.
type UserAuthService interface {
	Signup(ctx context.Context, name, email, password, confirmation string) (dom.User, error)
	Authenticate(ctx context.Context, email, password string) (dom.User, error)
}

// SessionStore is the slice of auth.Store the auth handler needs.
type SessionStore interface {
	Create(ctx context.Context, userID int64) (string, error)
	Delete(ctx context.Context, id string) error
	PopReturnTo(ctx context.Context, id string) (string, error)
}

// AuthHandler handles signup, login and logout.
type AuthHandler struct {
	sessions SessionStore
	users    UserAuthService
	maxAge   int
}

// NewAuthHandler returns a new AuthHandler. maxAge is the cookie lifetime
// in seconds.
func NewAuthHandler(sessions SessionStore, users UserAuthService, maxAge int) *AuthHandler {
	return &AuthHandler{sessions: sessions, users: users, maxAge: maxAge}
}

// Register godoc
// @Summary      Sign up
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SignupRequest  true  "Signup attributes"
// @Success      201   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      422   {object}  map[string]interface{}
// @Failure      500   {object}  map[string]string
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := h.users.Signup(c.Request.Context(), req.Name, req.Email, req.Password, req.PasswordConfirmation)
	if err != nil {
		var ve *service.ValidationError
		if errors.As(err, &ve) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "signup failed", "fields": ve.Fields})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		return
	}
	sessionID, err := h.sessions.Create(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}
	c.SetCookie(auth.SessionCookieName, sessionID, h.maxAge, "/", "", false, true)
	c.JSON(http.StatusCreated, gin.H{
		"ok":       true,
		"message":  "welcome to the sample app",
		"user":     userToResponse(user),
		"redirect": userPath(user.ID),
	})
}

// Login godoc
// @Summary      Sign in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "Credentials"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	// A denied request may have stashed its target on the caller's
	// anonymous session. It is consumed here exactly once.
	redirect := userPath(user.ID)
	if prev, err := c.Cookie(auth.SessionCookieName); err == nil && prev != "" {
		if target, err := h.sessions.PopReturnTo(c.Request.Context(), prev); err == nil && target != "" {
			redirect = target
		}
		_ = h.sessions.Delete(c.Request.Context(), prev)
	}

	sessionID, err := h.sessions.Create(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}
	c.SetCookie(auth.SessionCookieName, sessionID, h.maxAge, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{
		"ok":       true,
		"message":  "welcome back",
		"user":     userToResponse(user),
		"redirect": redirect,
	})
}

// Logout godoc
// @Summary      Sign out
// @Tags         auth
// @Success      200  {object}  map[string]interface{}
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	sessionID, err := c.Cookie(auth.SessionCookieName)
	if err == nil && sessionID != "" {
		_ = h.sessions.Delete(c.Request.Context(), sessionID)
	}
	c.SetCookie(auth.SessionCookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"ok": true, "redirect": "/"})
}

func userPath(id int64) string {
	return fmt.Sprintf("/users/%d", id)
}
