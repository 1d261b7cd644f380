package link

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-contrib/multitemplate"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	uuid "github.com/satori/go.uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safetube/web-ui/models"
	"github.com/safetube/web-ui/services/auth"
	"github.com/safetube/web-ui/services/device"
	"github.com/safetube/web-ui/services/template"
	"github.com/safetube/web-ui/services/web"
)

func setup(t *testing.T, tokens *device.Tokens) *gin.Engine {
	return setupWithGuardian(t, tokens, nil)
}

func setupWithGuardian(t *testing.T, tokens *device.Tokens, g *models.Guardian) *gin.Engine {
	gin.SetMode(gin.TestMode)
	re := multitemplate.NewRenderer()
	tm := template.NewManager[*web.Context](re).
		WithDir("../../templates").
		WithHelper(web.NewHelperWithDomain("http://localhost:8080"))
	r := gin.New()
	r.HTMLRender = re
	r.Use(sessions.Sessions("session", cookie.NewStore([]byte("secret"))))
	r.Use(auth.Middleware, device.Middleware)
	r.GET("/whoami", func(c *gin.Context) {
		c.String(http.StatusOK, device.GetDeviceFromContext(c).GuardianID.String())
	})
	if g != nil {
		r.POST("/test/login", func(c *gin.Context) {
			require.NoError(t, auth.SignIn(c, g))
			c.Status(http.StatusNoContent)
		})
	}
	RegisterHandler(r, tm, tokens)
	require.NoError(t, tm.Init())
	return r
}

func do(r *gin.Engine, method, path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLink(t *testing.T) {
	tokens := device.NewTokensWithSecret("secret", 15*time.Minute)
	g := &models.Guardian{GuardianID: uuid.NewV4(), Email: "parent@example.com"}
	r := setupWithGuardian(t, tokens, g)
	gID := g.GuardianID

	w := do(r, http.MethodGet, device.LinkPath, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Link a device")

	w = do(r, http.MethodGet, device.LinkPath+"?token=garbage", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), device.ErrInvalidToken.Error())

	token, _, err := tokens.Issue(gID)
	require.NoError(t, err)
	w = do(r, http.MethodGet, device.LinkPath+"?token="+token, nil)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	cookies := w.Result().Cookies()

	w = do(r, http.MethodGet, "/whoami", cookies)
	assert.Equal(t, gID.String(), w.Body.String())

	w = do(r, http.MethodPost, UnlinkPath, cookies)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login?return-url=%2Funlink-device", w.Header().Get("Location"), "children cannot unlink")
	w = do(r, http.MethodGet, "/whoami", cookies)
	assert.Equal(t, gID.String(), w.Body.String())

	w = do(r, http.MethodPost, "/test/login", cookies)
	require.Equal(t, http.StatusNoContent, w.Code)
	cookies = w.Result().Cookies()

	w = do(r, http.MethodPost, UnlinkPath, cookies)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, device.LinkPath, w.Header().Get("Location"))
	w = do(r, http.MethodGet, "/whoami", w.Result().Cookies())
	assert.Equal(t, uuid.Nil.String(), w.Body.String())
}

func TestUnlink_OtherGuardian(t *testing.T) {
	tokens := device.NewTokensWithSecret("secret", 15*time.Minute)
	g := &models.Guardian{GuardianID: uuid.NewV4(), Email: "parent@example.com"}
	r := setupWithGuardian(t, tokens, g)

	token, _, err := tokens.Issue(uuid.NewV4())
	require.NoError(t, err)
	w := do(r, http.MethodGet, device.LinkPath+"?token="+token, nil)
	require.Equal(t, http.StatusFound, w.Code)
	w = do(r, http.MethodPost, "/test/login", w.Result().Cookies())
	cookies := w.Result().Cookies()

	w = do(r, http.MethodPost, UnlinkPath, cookies)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestLink_ExpiredToken(t *testing.T) {
	tokens := device.NewTokensWithSecret("secret", -time.Minute)
	r := setup(t, tokens)
	token, _, err := tokens.Issue(uuid.NewV4())
	require.NoError(t, err)
	w := do(r, http.MethodGet, device.LinkPath+"?token="+token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
