package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	dom "microblog/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakeUserRepo mimics the Postgres repo: case-insensitive uniqueness on
// email surfaces as a 23505 PgError, deletes cascade into the post repo the
// way the FK does, and Update never touches salt or admin.
type fakeUserRepo struct {
	seq     int64
	users   map[int64]dom.User
	cascade *fakeMicropostRepo
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]dom.User)}
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int64) (dom.User, error) {
	u, ok := r.users[id]
	if !ok {
		return dom.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (dom.User, error) {
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return dom.User{}, pgx.ErrNoRows
}

func (r *fakeUserRepo) List(_ context.Context, limit, offset int) ([]dom.User, error) {
	ids := make([]int64, 0, len(r.users))
	for id := range r.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	var out []dom.User
	for i := offset; i < len(ids) && len(out) < limit; i++ {
		out = append(out, r.users[ids[i]])
	}
	return out, nil
}

func (r *fakeUserRepo) Create(_ context.Context, u dom.User) (dom.User, error) {
	for _, existing := range r.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return dom.User{}, &pgconn.PgError{Code: "23505"}
		}
	}
	r.seq++
	u.ID = r.seq
	u.CreatedAt = time.Now().UTC()
	r.users[u.ID] = u
	return u, nil
}

func (r *fakeUserRepo) Update(_ context.Context, u dom.User) (dom.User, error) {
	existing, ok := r.users[u.ID]
	if !ok {
		return dom.User{}, pgx.ErrNoRows
	}
	for id, other := range r.users {
		if id != u.ID && strings.EqualFold(other.Email, u.Email) {
			return dom.User{}, &pgconn.PgError{Code: "23505"}
		}
	}
	existing.Name = u.Name
	existing.Email = u.Email
	existing.EncryptedPassword = u.EncryptedPassword
	r.users[u.ID] = existing
	return existing, nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.users[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.users, id)
	if r.cascade != nil {
		r.cascade.deleteByUser(id)
	}
	return nil
}

// fakeMicropostRepo keeps posts in memory and lists them newest first, the
// order the real query guarantees.
type fakeMicropostRepo struct {
	seq   int64
	posts map[int64]dom.Micropost
	// owners simulates the FK: inserts for absent owners are rejected
	// with a 23503 PgError. nil disables the check.
	owners *fakeUserRepo

	now time.Time
}

func newFakeMicropostRepo() *fakeMicropostRepo {
	return &fakeMicropostRepo{posts: make(map[int64]dom.Micropost), now: time.Now().UTC()}
}

func (r *fakeMicropostRepo) Create(_ context.Context, m dom.Micropost) (dom.Micropost, error) {
	if r.owners != nil {
		if _, ok := r.owners.users[m.UserID]; !ok {
			return dom.Micropost{}, &pgconn.PgError{Code: "23503"}
		}
	}
	r.seq++
	m.ID = r.seq
	if m.CreatedAt.IsZero() {
		r.now = r.now.Add(time.Second)
		m.CreatedAt = r.now
	}
	r.posts[m.ID] = m
	return m, nil
}

func (r *fakeMicropostRepo) GetByID(_ context.Context, id int64) (dom.Micropost, error) {
	m, ok := r.posts[id]
	if !ok {
		return dom.Micropost{}, pgx.ErrNoRows
	}
	return m, nil
}

func (r *fakeMicropostRepo) ListByUser(_ context.Context, userID int64, limit, offset int) ([]dom.Micropost, error) {
	var all []dom.Micropost
	for _, m := range r.posts {
		if m.UserID == userID {
			all = append(all, m)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})
	var out []dom.Micropost
	for i := offset; i < len(all) && len(out) < limit; i++ {
		out = append(out, all[i])
	}
	return out, nil
}

func (r *fakeMicropostRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.posts[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.posts, id)
	return nil
}

func (r *fakeMicropostRepo) deleteByUser(userID int64) {
	for id, m := range r.posts {
		if m.UserID == userID {
			delete(r.posts, id)
		}
	}
}

// fakeFeedCache is an in-memory stand-in for cache.FeedCache with the same
// per-user invalidation semantics.
type fakeFeedCache struct {
	pages map[string][]dom.Micropost
}

func newFakeFeedCache() *fakeFeedCache {
	return &fakeFeedCache{pages: make(map[string][]dom.Micropost)}
}

func (c *fakeFeedCache) Get(_ context.Context, userID int64, limit, offset int) ([]dom.Micropost, error) {
	return c.pages[feedPageKey(userID, limit, offset)], nil
}

func (c *fakeFeedCache) Set(_ context.Context, userID int64, limit, offset int, list []dom.Micropost) error {
	c.pages[feedPageKey(userID, limit, offset)] = list
	return nil
}

func (c *fakeFeedCache) Invalidate(_ context.Context, userID int64) error {
	prefix := fmt.Sprintf("%d:", userID)
	for key := range c.pages {
		if strings.HasPrefix(key, prefix) {
			delete(c.pages, key)
		}
	}
	return nil
}

func feedPageKey(userID int64, limit, offset int) string {
	return fmt.Sprintf("%d:%d:%d", userID, limit, offset)
}
