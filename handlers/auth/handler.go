package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/safetube/web-ui/services/auth"
	"github.com/safetube/web-ui/services/template"
	"github.com/safetube/web-ui/services/web"
)

type LoginData struct {
	Email     string
	ReturnURL string
}

type Handler struct {
	tb   template.Builder[*web.Context]
	auth *auth.Auth
}

func RegisterHandler(r *gin.Engine, tm *template.Manager[*web.Context], a *auth.Auth) {
	h := &Handler{
		tb:   tm.MustRegisterViews("auth/*").WithLayout("main"),
		auth: a,
	}
	r.GET("/login", h.login)
	r.POST("/login", h.processLogin)
	r.POST("/logout", h.logout)
}

func returnURL(c *gin.Context) string {
	if c.PostForm(web.ReturnURLField) == "" && c.Query(web.ReturnURLField) == "" {
		return "/admin"
	}
	return web.ReturnURL(c)
}

func (s *Handler) login(c *gin.Context) {
	if auth.GetGuardianFromContext(c).HasAuth() {
		c.Redirect(http.StatusFound, returnURL(c))
		return
	}
	s.tb.Build("auth/login").HTML(http.StatusOK, web.NewContext(c).WithData(&LoginData{
		ReturnURL: returnURL(c),
	}))
}

func (s *Handler) processLogin(c *gin.Context) {
	email := c.PostForm("email")
	g, err := s.auth.Authenticate(c.Request.Context(), email, c.PostForm("password"))
	if errors.Is(err, auth.ErrInvalidCredentials) {
		log.WithField("email", email).Warn("failed login")
		s.tb.Build("auth/login").HTML(http.StatusUnauthorized, web.NewContext(c).WithErr(err).WithData(&LoginData{
			Email:     email,
			ReturnURL: returnURL(c),
		}))
		return
	}
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	if err = auth.SignIn(c, g); err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	c.Redirect(http.StatusFound, returnURL(c))
}

func (s *Handler) logout(c *gin.Context) {
	if err := auth.SignOut(c); err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	c.Redirect(http.StatusFound, "/login")
}
