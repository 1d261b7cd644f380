package device

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	uuid "github.com/satori/go.uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokens_IssueVerify(t *testing.T) {
	tk := NewTokensWithSecret("s3cret", 15*time.Minute)
	gID := uuid.NewV4()

	str, exp, err := tk.Issue(gID)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), exp, time.Minute)

	got, err := tk.Verify(str)
	require.NoError(t, err)
	assert.Equal(t, gID, got)
}

func TestTokens_Rejects(t *testing.T) {
	tk := NewTokensWithSecret("s3cret", 15*time.Minute)
	gID := uuid.NewV4()

	t.Run("garbage", func(t *testing.T) {
		_, err := tk.Verify("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
	t.Run("other secret", func(t *testing.T) {
		str, _, err := NewTokensWithSecret("other", time.Minute).Issue(gID)
		require.NoError(t, err)
		_, err = tk.Verify(str)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
	t.Run("expired", func(t *testing.T) {
		old := NewTokensWithSecret("s3cret", 15*time.Minute)
		old.now = func() time.Time { return time.Now().Add(-time.Hour) }
		str, _, err := old.Issue(gID)
		require.NoError(t, err)
		_, err = tk.Verify(str)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
	t.Run("without expiry", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"gid": gID.String()})
		str, err := token.SignedString([]byte("s3cret"))
		require.NoError(t, err)
		_, err = tk.Verify(str)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
	t.Run("bad guardian id", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"gid": "nope",
			"exp": time.Now().Add(time.Minute).Unix(),
		})
		str, err := token.SignedString([]byte("s3cret"))
		require.NoError(t, err)
		_, err = tk.Verify(str)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func newTestEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(sessions.Sessions("session", cookie.NewStore([]byte("secret"))))
	r.Use(Middleware)
	return r
}

func TestLinkUnlink(t *testing.T) {
	gID := uuid.NewV4()
	r := newTestEngine()
	r.POST("/link", func(c *gin.Context) {
		require.NoError(t, Link(c, gID))
		c.Status(http.StatusNoContent)
	})
	r.POST("/unlink", func(c *gin.Context) {
		require.NoError(t, Unlink(c))
		c.Status(http.StatusNoContent)
	})
	r.GET("/lib", RequireLinked, func(c *gin.Context) {
		c.String(http.StatusOK, GetDeviceFromContext(c).GuardianID.String())
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/lib", nil))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, LinkPath, w.Header().Get("Location"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/link", nil))
	require.Equal(t, http.StatusNoContent, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodGet, "/lib", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, gID.String(), w.Body.String())

	req = httptest.NewRequest(http.MethodPost, "/unlink", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	cookies = w.Result().Cookies()

	req = httptest.NewRequest(http.MethodGet, "/lib", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusFound, w.Code)
}

func TestDevice_Linked(t *testing.T) {
	var d *Device
	assert.False(t, d.Linked())
	assert.False(t, (&Device{}).Linked())
	assert.True(t, (&Device{GuardianID: uuid.NewV4()}).Linked())
}
