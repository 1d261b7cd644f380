package session

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	csrf "github.com/utrack/gin-csrf"

	"github.com/safetube/web-ui/services/common"
	"github.com/safetube/web-ui/services/web"
)

const (
	sessionName       = "safetube-session"
	sessionSecureFlag = "session-secure"
	sessionMaxAge     = 365 * 24 * 60 * 60
)

func RegisterFlags(f []cli.Flag) []cli.Flag {
	return append(f,
		cli.BoolFlag{
			Name:   sessionSecureFlag,
			Usage:  "send session cookie over https only",
			EnvVar: "SESSION_SECURE",
		},
	)
}

// RegisterHandler sets up cookie sessions and CSRF protection. Requests under
// the skip prefixes are not CSRF checked.
func RegisterHandler(c *cli.Context, r *gin.Engine, skip []string) error {
	secret := c.String(common.SessionSecretFlag)
	if secret == "" {
		return errors.New("session secret is not set")
	}
	store := cookie.NewStore([]byte(secret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		Secure:   c.Bool(sessionSecureFlag),
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))
	r.Use(CSRF(secret, skip))
	return nil
}

func CSRF(secret string, skip []string) gin.HandlerFunc {
	mw := csrf.Middleware(csrf.Options{
		Secret: secret,
		ErrorFunc: func(c *gin.Context) {
			log.WithField("path", c.Request.URL.Path).Warn("csrf token mismatch")
			c.String(http.StatusBadRequest, "CSRF token mismatch")
			c.Abort()
		},
	})
	return func(c *gin.Context) {
		for _, p := range skip {
			if strings.HasPrefix(c.Request.URL.Path, p) {
				c.Next()
				return
			}
		}
		c.Set(web.CSRFKey, true)
		mw(c)
	}
}
