package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	uuid "github.com/satori/go.uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safetube/web-ui/models"
)

type mockStore struct {
	guardians map[string]*models.Guardian
}

func (m *mockStore) GetGuardianByEmail(_ context.Context, email string) (*models.Guardian, error) {
	return m.guardians[models.NormalizeEmail(email)], nil
}

func (m *mockStore) CreateGuardian(_ context.Context, email string, hash string) (*models.Guardian, error) {
	g := &models.Guardian{GuardianID: uuid.NewV4(), Email: models.NormalizeEmail(email), Password: hash}
	m.guardians[g.Email] = g
	return g, nil
}

func TestRegisterAuthenticate(t *testing.T) {
	a := New(&mockStore{guardians: map[string]*models.Guardian{}})
	ctx := context.Background()

	_, err := a.Register(ctx, "parent@example.com", "short")
	assert.ErrorIs(t, err, ErrWeakPassword)

	g, err := a.Register(ctx, " Parent@Example.com ", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "parent@example.com", g.Email)
	assert.NotEqual(t, "correct horse", g.Password)

	got, err := a.Authenticate(ctx, "PARENT@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, g.GuardianID, got.GuardianID)

	_, err = a.Authenticate(ctx, "parent@example.com", "wrong password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = a.Authenticate(ctx, "nobody@example.com", "correct horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestHasAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	g := &models.Guardian{GuardianID: uuid.NewV4(), Email: "parent@example.com"}
	r := gin.New()
	r.Use(sessions.Sessions("session", cookie.NewStore([]byte("secret"))))
	r.Use(Middleware)
	r.POST("/login", func(c *gin.Context) {
		require.NoError(t, SignIn(c, g))
		c.Status(http.StatusNoContent)
	})
	r.GET("/admin", HasAuth, func(c *gin.Context) {
		c.String(http.StatusOK, GetGuardianFromContext(c).Email)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin?tab=1", nil))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login?return-url=%2Fadmin%3Ftab%3D1", w.Header().Get("Location"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	for _, ck := range w.Result().Cookies() {
		req.AddCookie(ck)
	}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "parent@example.com", w.Body.String())
}
