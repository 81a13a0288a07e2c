package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"microblog/internal/auth"
	dom "microblog/internal/domain"
	"microblog/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeUserAuth struct {
	SignupFunc       func(ctx context.Context, name, email, password, confirmation string) (dom.User, error)
	AuthenticateFunc func(ctx context.Context, email, password string) (dom.User, error)
}

func (f *fakeUserAuth) Signup(ctx context.Context, name, email, password, confirmation string) (dom.User, error) {
	return f.SignupFunc(ctx, name, email, password, confirmation)
}

func (f *fakeUserAuth) Authenticate(ctx context.Context, email, password string) (dom.User, error) {
	return f.AuthenticateFunc(ctx, email, password)
}

// fakeSessionStore keeps return-to state so the read-once property can be
// exercised end to end.
type fakeSessionStore struct {
	created  []int64
	deleted  []string
	returnTo map[string]string
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{returnTo: make(map[string]string)}
}

func (f *fakeSessionStore) Create(_ context.Context, userID int64) (string, error) {
	f.created = append(f.created, userID)
	return "new-session", nil
}

func (f *fakeSessionStore) Delete(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeSessionStore) PopReturnTo(_ context.Context, id string) (string, error) {
	target := f.returnTo[id]
	delete(f.returnTo, id)
	return target, nil
}

func loginRouter(h *AuthHandler) *gin.Engine {
	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.POST("/auth/register", h.Register)
	r.POST("/auth/logout", h.Logout)
	return r
}

func TestLoginInvalidCredentials(t *testing.T) {
	users := &fakeUserAuth{
		AuthenticateFunc: func(_ context.Context, _, _ string) (dom.User, error) {
			return dom.User{}, service.ErrInvalidCredentials
		},
	}
	h := NewAuthHandler(newFakeSessionStore(), users, 3600)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/login", bytes.NewBufferString(`{"email":"a@b.com","password":"nope123"}`))
	loginRouter(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid email or password")
}

func TestLoginRedirectsToStashedTargetOnce(t *testing.T) {
	users := &fakeUserAuth{
		AuthenticateFunc: func(_ context.Context, _, _ string) (dom.User, error) {
			return dom.User{ID: 7, Name: "Example", Email: "a@b.com"}, nil
		},
	}
	sessions := newFakeSessionStore()
	sessions.returnTo["anon-session"] = "/users?page=2"
	h := NewAuthHandler(sessions, users, 3600)
	r := loginRouter(h)

	body := `{"email":"a@b.com","password":"password"}`
	req := httptest.NewRequest("POST", "/auth/login", bytes.NewBufferString(body))
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: "anon-session"})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "/users?page=2", resp["redirect"], "first sign-in goes back to the denied target")
	assert.Equal(t, []int64{7}, sessions.created)
	assert.Contains(t, sessions.deleted, "anon-session", "the anonymous session is replaced")

	// the target was consumed: a second sign-in lands on the default page
	req = httptest.NewRequest("POST", "/auth/login", bytes.NewBufferString(body))
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: "anon-session"})
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp = map[string]interface{}{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "/users/7", resp["redirect"])
}

func TestLoginWithoutStashedTarget(t *testing.T) {
	users := &fakeUserAuth{
		AuthenticateFunc: func(_ context.Context, _, _ string) (dom.User, error) {
			return dom.User{ID: 7}, nil
		},
	}
	h := NewAuthHandler(newFakeSessionStore(), users, 3600)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/login", bytes.NewBufferString(`{"email":"a@b.com","password":"password"}`))
	loginRouter(h).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"redirect":"/users/7"`)

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, auth.SessionCookieName, cookies[0].Name)
	assert.Equal(t, "new-session", cookies[0].Value)
}

func TestRegisterValidationFailure(t *testing.T) {
	users := &fakeUserAuth{
		SignupFunc: func(_ context.Context, _, _, _, _ string) (dom.User, error) {
			return dom.User{}, &service.ValidationError{Fields: map[string]string{"email": "is invalid"}}
		},
	}
	sessions := newFakeSessionStore()
	h := NewAuthHandler(sessions, users, 3600)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/register", bytes.NewBufferString(`{"name":"x","email":"bad"}`))
	loginRouter(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "is invalid")
	assert.Empty(t, sessions.created, "no session on a failed signup")
}

func TestRegisterSignsIn(t *testing.T) {
	users := &fakeUserAuth{
		SignupFunc: func(_ context.Context, name, email, _, _ string) (dom.User, error) {
			return dom.User{ID: 3, Name: name, Email: email}, nil
		},
	}
	sessions := newFakeSessionStore()
	h := NewAuthHandler(sessions, users, 3600)

	rec := httptest.NewRecorder()
	body := `{"name":"Example","email":"user@example.com","password":"password","password_confirmation":"password"}`
	req := httptest.NewRequest("POST", "/auth/register", bytes.NewBufferString(body))
	loginRouter(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"redirect":"/users/3"`)
	assert.Equal(t, []int64{3}, sessions.created)
}

func TestLogout(t *testing.T) {
	sessions := newFakeSessionStore()
	h := NewAuthHandler(sessions, &fakeUserAuth{}, 3600)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: "current"})
	loginRouter(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"current"}, sessions.deleted)

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, auth.SessionCookieName, cookies[0].Name)
	assert.True(t, cookies[0].MaxAge < 0, "cookie must be expired")
}
