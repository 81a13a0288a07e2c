package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	dom "microblog/internal/domain"
	"microblog/internal/repo"
	"microblog/internal/utils"

	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/singleflight"
)

const maxContentLen = 140

// FeedCache caches pages of a user's feed. *cache.FeedCache implements it.
type FeedCache interface {
	Get(ctx context.Context, userID int64, limit, offset int) ([]dom.Micropost, error)
	Set(ctx context.Context, userID int64, limit, offset int, list []dom.Micropost) error
	Invalidate(ctx context.Context, userID int64) error
}

// MicropostService handles posts and the ownership checks around them.
type MicropostService struct {
	repo  repo.MicropostRepo
	cache FeedCache
	sf    singleflight.Group
}

// NewMicropostService creates a MicropostService. If c is nil, caching is
// disabled.
func NewMicropostService(r repo.MicropostRepo, c FeedCache) *MicropostService {
	return &MicropostService{repo: r, cache: c}
}

// Create stamps the owner and stores the post. If the owner was deleted
// concurrently the insert hits the foreign key and the post is rejected.
func (s *MicropostService) Create(ctx context.Context, userID int64, content string) (dom.Micropost, error) {
	content = strings.TrimSpace(content)

	ve := &ValidationError{}
	if content == "" {
		ve.add("content", "can't be blank")
	} else if len([]rune(content)) > maxContentLen {
		ve.add("content", fmt.Sprintf("is too long (maximum is %d characters)", maxContentLen))
	}
	if err := ve.orNil(); err != nil {
		return dom.Micropost{}, err
	}

	m, err := s.repo.Create(ctx, dom.Micropost{UserID: userID, Content: content})
	if err != nil {
		if utils.IsPGForeignKeyViolation(err) {
			return dom.Micropost{}, ErrNotFound
		}
		return dom.Micropost{}, err
	}
	s.invalidate(ctx, userID)
	return m, nil
}

// Destroy deletes a post. Only its owner may; the gate compares the post's
// owner to the requester, not anything from the request path.
func (s *MicropostService) Destroy(ctx context.Context, requesterID, postID int64) error {
	m, err := s.repo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if m.UserID != requesterID {
		return ErrNotOwner
	}
	if err := s.repo.Delete(ctx, postID); err != nil {
		return err
	}
	s.invalidate(ctx, m.UserID)
	return nil
}

// ListFor returns one page of a user's posts, newest first.
func (s *MicropostService) ListFor(ctx context.Context, userID int64, page, perPage int) ([]dom.Micropost, error) {
	limit, offset := pageWindow(page, perPage)
	if s.cache != nil {
		key := "feed:" + strconv.FormatInt(userID, 10) + ":" + strconv.Itoa(limit) + ":" + strconv.Itoa(offset)
		v, err, _ := s.sf.Do(key, func() (interface{}, error) {
			if list, err := s.cache.Get(ctx, userID, limit, offset); err == nil && list != nil {
				return list, nil
			}
			list, err := s.repo.ListByUser(ctx, userID, limit, offset)
			if err != nil {
				return nil, err
			}
			_ = s.cache.Set(ctx, userID, limit, offset, list)
			return list, nil
		})
		if err != nil {
			return nil, err
		}
		return v.([]dom.Micropost), nil
	}
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

func (s *MicropostService) invalidate(ctx context.Context, userID int64) {
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, userID)
	}
}
