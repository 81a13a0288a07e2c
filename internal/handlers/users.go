package handlers

import (
	"context"
	"errors"
	"net/http"

	"microblog/internal/auth"
	dom "microblog/internal/domain"
	"microblog/internal/dto"
	"microblog/internal/service"

	"github.com/gin-gonic/gin"
)

// UserDirectory is the slice of UserService the users handler needs.
type UserDirectory interface {
	Get(ctx context.Context, id int64) (dom.User, error)
	List(ctx context.Context, page, perPage int) ([]dom.User, error)
	Update(ctx context.Context, id int64, name, email, password, confirmation string) (dom.User, error)
	Destroy(ctx context.Context, requesterID, targetID int64) error
}

// UserHandler handles the users resource.
type UserHandler struct {
	svc     UserDirectory
	perPage int
}

// NewUserHandler returns a new UserHandler.
func NewUserHandler(svc UserDirectory, perPage int) *UserHandler {
	return &UserHandler{svc: svc, perPage: perPage}
}

// Show godoc
// @Summary      Get a user profile
// @Tags         users
// @Produce      json
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  dto.UserResponse
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /users/{id} [get]
func (h *UserHandler) Show(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	u, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, userToResponse(u))
}

// Index godoc
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     CookieAuth
// @Param        page  query     int  false  "Page number"
// @Success      200   {object}  dto.ListUsersResponse
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /users [get]
func (h *UserHandler) Index(c *gin.Context) {
	page := parsePage(c)
	list, err := h.svc.List(c.Request.Context(), page, h.perPage)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	items := make([]dto.UserResponse, 0, len(list))
	for _, u := range list {
		items = append(items, userToResponse(u))
	}
	c.JSON(http.StatusOK, dto.ListUsersResponse{Items: items, Page: page})
}

// Update godoc
// @Summary      Edit own profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        id    path  int                    true  "User ID"
// @Param        body  body  dto.UpdateUserRequest  true  "Profile attributes"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      422   {object}  map[string]interface{}
// @Router       /users/{id} [patch]
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, err := h.svc.Update(c.Request.Context(), id, req.Name, req.Email, req.Password, req.PasswordConfirmation)
	if err != nil {
		var ve *service.ValidationError
		if errors.As(err, &ve) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "update failed", "fields": ve.Fields})
			return
		}
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":       true,
		"message":  "profile updated",
		"user":     userToResponse(u),
		"redirect": userPath(u.ID),
	})
}

// Destroy godoc
// @Summary      Delete a user (admin only)
// @Tags         users
// @Produce      json
// @Security     CookieAuth
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Router       /users/{id} [delete]
func (h *UserHandler) Destroy(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	requesterID := auth.UserIDFromContext(c)
	err := h.svc.Destroy(c.Request.Context(), requesterID, id)
	if err != nil {
		if errors.Is(err, service.ErrSelfDestroy) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "cannot destroy own admin account"})
			return
		}
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "message": "user deleted", "redirect": "/users"})
}

func userToResponse(u dom.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Admin:     u.Admin,
		CreatedAt: u.CreatedAt,
	}
}
