package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"microblog/internal/auth"
	dom "microblog/internal/domain"
	"microblog/internal/dto"
	"microblog/internal/service"

	"github.com/gin-gonic/gin"
)

// MicropostOps is the slice of MicropostService the handler needs.
type MicropostOps interface {
	Create(ctx context.Context, userID int64, content string) (dom.Micropost, error)
	Destroy(ctx context.Context, requesterID, postID int64) error
	ListFor(ctx context.Context, userID int64, page, perPage int) ([]dom.Micropost, error)
}

// MicropostHandler handles the microposts resource.
type MicropostHandler struct {
	svc     MicropostOps
	perPage int
}

// NewMicropostHandler returns a new MicropostHandler.
func NewMicropostHandler(svc MicropostOps, perPage int) *MicropostHandler {
	return &MicropostHandler{svc: svc, perPage: perPage}
}

// Create godoc
// @Summary      Create a micropost
// @Tags         microposts
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body      dto.CreateMicropostRequest  true  "Micropost body"
// @Success      201   {object}  dto.MicropostResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      422   {object}  map[string]interface{}
// @Router       /microposts [post]
func (h *MicropostHandler) Create(c *gin.Context) {
	var req dto.CreateMicropostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID := auth.UserIDFromContext(c)
	m, err := h.svc.Create(c.Request.Context(), userID, req.Content)
	if err != nil {
		var ve *service.ValidationError
		if errors.As(err, &ve) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "micropost rejected", "fields": ve.Fields})
			return
		}
		if errors.Is(err, service.ErrNotFound) {
			// owner vanished between session check and insert
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, micropostToResponse(m))
}

// Destroy godoc
// @Summary      Delete an own micropost
// @Tags         microposts
// @Produce      json
// @Security     CookieAuth
// @Param        id   path      int  true  "Micropost ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /microposts/{id} [delete]
func (h *MicropostHandler) Destroy(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	requesterID := auth.UserIDFromContext(c)
	err := h.svc.Destroy(c.Request.Context(), requesterID, id)
	if err != nil {
		if errors.Is(err, service.ErrNotOwner) {
			c.JSON(http.StatusForbidden, gin.H{"redirect": "/"})
			return
		}
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "message": "micropost deleted"})
}

// ListByUser godoc
// @Summary      List a user's microposts, newest first
// @Tags         microposts
// @Produce      json
// @Param        id    path      int  true   "User ID"
// @Param        page  query     int  false  "Page number"
// @Success      200   {object}  dto.ListMicropostsResponse
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /users/{id}/microposts [get]
func (h *MicropostHandler) ListByUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	page := parsePage(c)
	list, err := h.svc.ListFor(c.Request.Context(), id, page, h.perPage)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	items := make([]dto.MicropostResponse, 0, len(list))
	for _, m := range list {
		items = append(items, micropostToResponse(m))
	}
	c.JSON(http.StatusOK, dto.ListMicropostsResponse{Items: items, Page: page})
}

func micropostToResponse(m dom.Micropost) dto.MicropostResponse {
	return dto.MicropostResponse{
		ID:        m.ID,
		Content:   m.Content,
		UserID:    m.UserID,
		CreatedAt: m.CreatedAt,
	}
}

func parseID(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func parsePage(c *gin.Context) int {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
