package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	dom "microblog/internal/domain"
	"microblog/internal/repo"
	"microblog/internal/utils"

	"github.com/jackc/pgx/v5"
)

const (
	maxNameLen     = 50
	minPasswordLen = 6
	maxPasswordLen = 40
)

var emailRe = regexp.MustCompile(`^[\w.\-]+@[\w.\-]+\.\w+$`)

// UserService handles signup, credential checks and profile changes.
type UserService struct {
	repo  repo.UserRepo
	cache FeedCache
}

// NewUserService returns a new UserService. If c is nil, no feed cache is
// maintained on user deletion.
func NewUserService(repo repo.UserRepo, c FeedCache) *UserService {
	return &UserService{repo: repo, cache: c}
}

// Signup validates the attributes, derives the salt and password digest and
// creates the user. Admin is always false on this path.
func (s *UserService) Signup(ctx context.Context, name, email, password, confirmation string) (dom.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	ve := &ValidationError{}
	validateProfile(ve, name, email)
	if password == "" {
		ve.add("password", "can't be blank")
	} else {
		validatePassword(ve, password, confirmation)
	}
	if err := ve.orNil(); err != nil {
		return dom.User{}, err
	}

	salt := NewSalt(password)
	u := dom.User{
		Name:              name,
		Email:             email,
		Salt:              salt,
		EncryptedPassword: PasswordDigest(salt, password),
	}
	created, err := s.repo.Create(ctx, u)
	if err != nil {
		if utils.IsPGUniqueViolation(err) {
			ve.add("email", "has already been taken")
			return dom.User{}, ve
		}
		return dom.User{}, err
	}
	return created, nil
}

// Authenticate returns the user for the email/password pair. An unknown
// email and a wrong password both come back as ErrInvalidCredentials.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (dom.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return dom.User{}, ErrInvalidCredentials
	}
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.User{}, ErrInvalidCredentials
		}
		return dom.User{}, err
	}
	if !CheckPassword(u, password) {
		return dom.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// Get returns the user by id.
func (s *UserService) Get(ctx context.Context, id int64) (dom.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.User{}, ErrNotFound
		}
		return dom.User{}, err
	}
	return u, nil
}

// List returns one page of users, oldest first. page starts at 1.
func (s *UserService) List(ctx context.Context, page, perPage int) ([]dom.User, error) {
	limit, offset := pageWindow(page, perPage)
	return s.repo.List(ctx, limit, offset)
}

// Update applies a profile edit. Only name, email and the password pair are
// settable here. A blank password leaves the salt and digest untouched; a
// non-blank one is re-validated and re-digested with the existing salt.
func (s *UserService) Update(ctx context.Context, id int64, name, email, password, confirmation string) (dom.User, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.User{}, ErrNotFound
		}
		return dom.User{}, err
	}

	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	ve := &ValidationError{}
	validateProfile(ve, name, email)
	if password != "" || confirmation != "" {
		validatePassword(ve, password, confirmation)
	}
	if err := ve.orNil(); err != nil {
		return dom.User{}, err
	}

	u := existing
	u.Name = name
	u.Email = email
	if password != "" {
		u.EncryptedPassword = PasswordDigest(u.Salt, password)
	}
	updated, err := s.repo.Update(ctx, u)
	if err != nil {
		if utils.IsPGUniqueViolation(err) {
			ve.add("email", "has already been taken")
			return dom.User{}, ve
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.User{}, ErrNotFound
		}
		return dom.User{}, err
	}
	return updated, nil
}

// Destroy deletes the target user and, through the store's cascade, every
// micropost it owns. The target's cached feed pages are dropped with it so
// the cascade is observable immediately. An admin deleting their own
// account is refused.
func (s *UserService) Destroy(ctx context.Context, requesterID, targetID int64) error {
	if requesterID == targetID {
		return ErrSelfDestroy
	}
	err := s.repo.Delete(ctx, targetID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, targetID)
	}
	return nil
}

func validateProfile(ve *ValidationError, name, email string) {
	if name == "" {
		ve.add("name", "can't be blank")
	} else if len([]rune(name)) > maxNameLen {
		ve.add("name", fmt.Sprintf("is too long (maximum is %d characters)", maxNameLen))
	}
	if email == "" {
		ve.add("email", "can't be blank")
	} else if !emailRe.MatchString(email) {
		ve.add("email", "is invalid")
	}
}

func validatePassword(ve *ValidationError, password, confirmation string) {
	if password != confirmation {
		ve.add("password_confirmation", "doesn't match password")
	}
	if n := len([]rune(password)); n < minPasswordLen {
		ve.add("password", fmt.Sprintf("is too short (minimum is %d characters)", minPasswordLen))
	} else if n > maxPasswordLen {
		ve.add("password", fmt.Sprintf("is too long (maximum is %d characters)", maxPasswordLen))
	}
}

func pageWindow(page, perPage int) (limit, offset int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 30
	}
	return perPage, (page - 1) * perPage
}
