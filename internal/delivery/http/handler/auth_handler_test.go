package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"bizsite-backend/internal/config"
	"bizsite-backend/internal/delivery/http/handler"
	domainUser "bizsite-backend/internal/domain/user"
	"bizsite-backend/internal/logger"
	"bizsite-backend/internal/middleware"
	"bizsite-backend/internal/usecase/auth"
	appErrors "bizsite-backend/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	_ = logger.Init("development")
}

func testConfig() *config.Config {
	return &config.Config{
		JWT:     config.JWTConfig{Secret: "test-secret", ExpiryHours: 168},
		Reset:   config.ResetConfig{TokenTTLMinutes: 15},
		Client:  config.ClientConfig{URL: "http://localhost:5173"},
		Contact: config.ContactConfig{Recipient: "owner@bizsite.test"},
	}
}

func setupRouter(m *fakeMailer) (*gin.Engine, *memoryUserRepo) {
	cfg := testConfig()
	repo := newMemoryUserRepo()
	svc := auth.NewService(repo, m, cfg)
	authHandler := handler.NewAuthHandler(svc, cfg)
	contactHandler := handler.NewContactHandler(m, cfg)

	router := gin.New()
	v1 := router.Group("/api/v1")
	authHandler.RegisterRoutes(v1)
	contactHandler.RegisterRoutes(v1)

	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(cfg))
	authHandler.RegisterProfileRoutes(protected)

	return router, repo
}

func performJSON(router *gin.Engine, method, path string, body interface{}, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func findCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	t.Fatalf("cookie %q not set", name)
	return nil
}

func registerBody(email string) gin.H {
	return gin.H{"name": "A", "email": email, "password": "password-1"}
}

func TestRegisterSetsCookieAndOmitsPassword(t *testing.T) {
	router, _ := setupRouter(&fakeMailer{})

	rec := performJSON(router, http.MethodPost, "/api/v1/auth/new", registerBody("a@x.com"))
	require.Equal(t, http.StatusCreated, rec.Code)

	cookie := findCookie(t, rec, "token")
	assert.NotEmpty(t, cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteNoneMode, cookie.SameSite)
	assert.Equal(t, 168*3600, cookie.MaxAge)
	assert.False(t, cookie.Secure) // secure only in production

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			User map[string]interface{} `json:"user"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "a@x.com", resp.Data.User["email"])
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestRegisterDuplicateEmail(t *testing.T) {
	router, repo := setupRouter(&fakeMailer{})

	rec := performJSON(router, http.MethodPost, "/api/v1/auth/new", registerBody("a@x.com"))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = performJSON(router, http.MethodPost, "/api/v1/auth/new", registerBody("a@x.com"))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "User with the provided email already exist")
	assert.Contains(t, rec.Body.String(), `"success":false`)
	assert.Equal(t, 1, repo.count())
}

func TestLoginIndistinguishableFailures(t *testing.T) {
	router, _ := setupRouter(&fakeMailer{})

	performJSON(router, http.MethodPost, "/api/v1/auth/new", registerBody("a@x.com"))

	unknown := performJSON(router, http.MethodPost, "/api/v1/auth/login",
		gin.H{"email": "nobody@x.com", "password": "password-1"})
	wrongPass := performJSON(router, http.MethodPost, "/api/v1/auth/login",
		gin.H{"email": "a@x.com", "password": "wrong-password"})

	require.Equal(t, http.StatusBadRequest, unknown.Code)
	require.Equal(t, http.StatusBadRequest, wrongPass.Code)
	assert.Equal(t, unknown.Body.String(), wrongPass.Body.String())
	assert.Contains(t, unknown.Body.String(), "Invalid user credentials provided")
}

func TestLoginSuccessReturnsTokenAndCookie(t *testing.T) {
	router, _ := setupRouter(&fakeMailer{})

	performJSON(router, http.MethodPost, "/api/v1/auth/new", registerBody("a@x.com"))

	rec := performJSON(router, http.MethodPost, "/api/v1/auth/login",
		gin.H{"email": "a@x.com", "password": "password-1"})
	require.Equal(t, http.StatusOK, rec.Code)

	cookie := findCookie(t, rec, "token")
	assert.NotEmpty(t, cookie.Value)
	assert.Contains(t, rec.Body.String(), "access_token")
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestLogoutClearsCookie(t *testing.T) {
	router, _ := setupRouter(&fakeMailer{})

	rec := performJSON(router, http.MethodPost, "/api/v1/auth/logout", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	cookie := findCookie(t, rec, "token")
	assert.Empty(t, cookie.Value)
	assert.LessOrEqual(t, cookie.MaxAge, 0)
	assert.Contains(t, rec.Body.String(), "User logout successfully")
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	router, _ := setupRouter(&fakeMailer{})

	rec := performJSON(router, http.MethodPost, "/api/v1/auth/reset", gin.H{"email": "nobody@x.com"})
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "User not found, Please register")
}

func TestForgotPasswordEmailFailure(t *testing.T) {
	router, repo := setupRouter(&fakeMailer{err: assert.AnError})

	performJSON(router, http.MethodPost, "/api/v1/auth/new", registerBody("a@x.com"))

	rec := performJSON(router, http.MethodPost, "/api/v1/auth/reset", gin.H{"email": "a@x.com"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	stored := repo.byEmail("a@x.com")
	assert.Nil(t, stored.ResetPasswordToken)
	assert.Nil(t, stored.ResetPasswordTokenExpiry)
}

func TestResetPasswordInvalidToken(t *testing.T) {
	router, _ := setupRouter(&fakeMailer{})

	rec := performJSON(router, http.MethodPost, "/api/v1/auth/reset/bogus-token",
		gin.H{"password": "brand-new-pass"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Reset password token is invalid or expired, please try again.")
}

func TestProfileRequiresAuth(t *testing.T) {
	router, _ := setupRouter(&fakeMailer{})

	rec := performJSON(router, http.MethodGet, "/api/v1/user/me", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProfileWithCookie(t *testing.T) {
	router, _ := setupRouter(&fakeMailer{})

	reg := performJSON(router, http.MethodPost, "/api/v1/auth/new", registerBody("a@x.com"))
	cookie := findCookie(t, reg, "token")

	rec := performJSON(router, http.MethodGet, "/api/v1/user/me", nil,
		&http.Cookie{Name: cookie.Name, Value: cookie.Value})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "a@x.com")
}

func TestContactSendsEmail(t *testing.T) {
	m := &fakeMailer{}
	router, _ := setupRouter(m)

	rec := performJSON(router, http.MethodPost, "/api/v1/contact",
		gin.H{"name": "A", "email": "a@x.com", "message": "Hello there"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, m.sent)
	assert.Equal(t, "owner@bizsite.test", m.lastTo)
}

// ---- fakes ----

type memoryUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domainUser.User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[uuid.UUID]*domainUser.User)}
}

func (r *memoryUserRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

func (r *memoryUserRepo) byEmail(email string) *domainUser.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return u
		}
	}
	return nil
}

func (r *memoryUserRepo) Create(ctx context.Context, user *domainUser.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return appErrors.ErrUserAlreadyExists
		}
	}
	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	r.users[user.ID] = user
	return nil
}

func (r *memoryUserRepo) GetByEmail(ctx context.Context, email string) (*domainUser.User, error) {
	if u := r.byEmail(email); u != nil {
		return u, nil
	}
	return nil, appErrors.ErrUserNotFound
}

func (r *memoryUserRepo) GetByID(ctx context.Context, userID uuid.UUID) (*domainUser.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[userID]; ok {
		return u, nil
	}
	return nil, appErrors.ErrUserNotFound
}

func (r *memoryUserRepo) SetResetPasswordToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return appErrors.ErrUserNotFound
	}
	u.ResetPasswordToken = &tokenHash
	expiry := expiresAt
	u.ResetPasswordTokenExpiry = &expiry
	return nil
}

func (r *memoryUserRepo) ClearResetPasswordToken(ctx context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[userID]; ok {
		u.ResetPasswordToken = nil
		u.ResetPasswordTokenExpiry = nil
	}
	return nil
}

func (r *memoryUserRepo) GetByResetPasswordToken(ctx context.Context, tokenHash string, now time.Time) (*domainUser.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ResetPasswordToken != nil && *u.ResetPasswordToken == tokenHash &&
			u.ResetPasswordTokenExpiry != nil && u.ResetPasswordTokenExpiry.After(now) {
			return u, nil
		}
	}
	return nil, appErrors.ErrResetTokenInvalid
}

func (r *memoryUserRepo) UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return appErrors.ErrUserNotFound
	}
	u.PasswordHashed = passwordHash
	u.ResetPasswordToken = nil
	u.ResetPasswordTokenExpiry = nil
	return nil
}

type fakeMailer struct {
	mu     sync.Mutex
	err    error
	lastTo string
	sent   int
}

func (m *fakeMailer) Send(to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.lastTo = to
	m.sent++
	return nil
}
