package web

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	csrf "github.com/utrack/gin-csrf"

	"github.com/safetube/web-ui/services/auth"
	"github.com/safetube/web-ui/services/device"
)

const (
	errorFlashKey   = "error"
	messageFlashKey = "message"
	ReturnURLField  = "return-url"
	// CSRFKey marks requests that passed through the CSRF middleware.
	CSRFKey = "csrf-enabled"
)

// Context is the view model of every rendered page.
type Context struct {
	Data     any
	Err      error
	Message  string
	Guardian *auth.Guardian
	Device   *device.Device
	Path     string
	c        *gin.Context
}

func NewContext(c *gin.Context) *Context {
	ctx := &Context{
		Guardian: auth.GetGuardianFromContext(c),
		Device:   device.GetDeviceFromContext(c),
		Path:     c.Request.URL.Path,
		c:        c,
	}
	ctx.popFlashes()
	return ctx
}

func (s *Context) GinContext() *gin.Context {
	return s.c
}

func (s *Context) WithData(d any) *Context {
	s.Data = d
	return s
}

func (s *Context) WithErr(err error) *Context {
	s.Err = err
	return s
}

// CSRF returns the form token of the request, empty when the request is not
// CSRF checked.
func (s *Context) CSRF() string {
	if !s.c.GetBool(CSRFKey) {
		return ""
	}
	return csrf.GetToken(s.c)
}

func (s *Context) popFlashes() {
	sess := sessions.Default(s.c)
	errs := sess.Flashes(errorFlashKey)
	msgs := sess.Flashes(messageFlashKey)
	if len(errs) == 0 && len(msgs) == 0 {
		return
	}
	if len(errs) > 0 {
		if e, ok := errs[0].(string); ok {
			s.Err = flashError(e)
		}
	}
	if len(msgs) > 0 {
		s.Message, _ = msgs[0].(string)
	}
	if err := sess.Save(); err != nil {
		log.WithError(err).Warn("failed to save session")
	}
}

type flashError string

func (s flashError) Error() string {
	return string(s)
}

// ReturnURL is where a form post goes back to: the X-Return-Url header, the
// return-url field, then the referer. Only local paths are accepted.
func ReturnURL(c *gin.Context) string {
	for _, u := range []string{
		c.GetHeader("X-Return-Url"),
		c.PostForm(ReturnURLField),
		c.Query(ReturnURLField),
		c.Request.Referer(),
	} {
		if l := localPath(u); l != "" {
			return l
		}
	}
	return "/"
}

func localPath(u string) string {
	if u == "" {
		return ""
	}
	if i := strings.Index(u, "://"); i >= 0 {
		rest := u[i+3:]
		j := strings.Index(rest, "/")
		if j < 0 {
			return ""
		}
		u = rest[j:]
	}
	if !strings.HasPrefix(u, "/") || strings.HasPrefix(u, "//") || strings.HasPrefix(u, "/\\") {
		return ""
	}
	return u
}

func RedirectWithError(c *gin.Context, err error) {
	log.WithError(err).Warn("request failed")
	flash(c, errorFlashKey, err.Error())
	c.Redirect(http.StatusFound, ReturnURL(c))
}

func RedirectWithSuccessAndMessage(c *gin.Context, msg string) {
	flash(c, messageFlashKey, msg)
	c.Redirect(http.StatusFound, ReturnURL(c))
}

func RedirectWithSuccess(c *gin.Context) {
	c.Redirect(http.StatusFound, ReturnURL(c))
}

func flash(c *gin.Context, key string, v string) {
	sess := sessions.Default(c)
	sess.AddFlash(v, key)
	if err := sess.Save(); err != nil {
		log.WithError(err).Warn("failed to save session")
	}
}
