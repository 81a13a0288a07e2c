package auth

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	dom "microblog/internal/domain"
	"microblog/internal/service"

	"github.com/gin-gonic/gin"
)

// SessionCookieName is the cookie carrying the opaque session id.
const SessionCookieName = "session_id"

const contextKeyUserID = "user_id"

const signInPath = "/signin"

// Sessions is the subset of Store the guards need.
type Sessions interface {
	UserID(ctx context.Context, sessionID string) (int64, bool)
	StashReturnTo(ctx context.Context, sessionID, target string) (string, error)
	TTL() time.Duration
}

// UserResolver loads a user record for the admin gate.
type UserResolver interface {
	Get(ctx context.Context, id int64) (dom.User, error)
}

// UserIDFromContext returns the current user ID set by RequireUser. 0 if not set.
func UserIDFromContext(c *gin.Context) int64 {
	v, ok := c.Get(contextKeyUserID)
	if !ok {
		return 0
	}
	id, ok := v.(int64)
	if !ok {
		return 0
	}
	return id
}

// RequireUser returns a guard that resolves the current user from the
// session cookie and sets the user ID in context. A signed-out caller is
// denied with a sign-in notice; the denied target is stashed on the session
// so sign-in can forward the caller back.
func RequireUser(sessions Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(SessionCookieName)
		if err != nil {
			sessionID = ""
		}
		if sessionID != "" {
			if userID, ok := sessions.UserID(c.Request.Context(), sessionID); ok {
				c.Set(contextKeyUserID, userID)
				c.Next()
				return
			}
		}
		if id, err := sessions.StashReturnTo(c.Request.Context(), sessionID, c.Request.URL.RequestURI()); err == nil && id != sessionID {
			c.SetCookie(SessionCookieName, id, int(sessions.TTL().Seconds()), "/", "", false, true)
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error":    "please sign in",
			"redirect": signInPath,
		})
	}
}

// RequireSelf returns a guard letting an operation through only when the
// path id names the signed-in user. Identity is compared by id, never by
// record equality. Must run after RequireUser.
func RequireSelf(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		targetID, err := strconv.ParseInt(c.Param(param), 10, 64)
		if err != nil || targetID <= 0 || targetID != UserIDFromContext(c) {
			// no notice on this path, just send the caller home
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"redirect": "/"})
			return
		}
		c.Next()
	}
}

// RequireAdmin returns a guard letting only admins through. Must run after
// RequireUser.
func RequireAdmin(users UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := UserIDFromContext(c)
		if id == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":    "please sign in",
				"redirect": signInPath,
			})
			return
		}
		u, err := users.Get(c.Request.Context(), id)
		if err != nil {
			// a vanished user is a denial; anything else is ours
			if errors.Is(err, service.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"redirect": "/"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		if !u.Admin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"redirect": "/"})
			return
		}
		c.Next()
	}
}
