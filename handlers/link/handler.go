package link

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"
	log "github.com/sirupsen/logrus"

	"github.com/safetube/web-ui/services/auth"
	"github.com/safetube/web-ui/services/device"
	"github.com/safetube/web-ui/services/template"
	"github.com/safetube/web-ui/services/web"
)

// UnlinkPath is only open to the guardian the device is linked to.
const UnlinkPath = "/unlink-device"

type Handler struct {
	tb     template.Builder[*web.Context]
	tokens *device.Tokens
}

func RegisterHandler(r *gin.Engine, tm *template.Manager[*web.Context], tokens *device.Tokens) {
	h := &Handler{
		tb:     tm.MustRegisterViews("link/*").WithLayout("main"),
		tokens: tokens,
	}
	r.GET(device.LinkPath, h.link)
	r.POST(UnlinkPath, auth.HasAuth, h.unlink)
}

// link binds the device to the guardian named by the token, without a token
// it explains how to get one.
func (s *Handler) link(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		s.tb.Build("link/index").HTML(http.StatusOK, web.NewContext(c))
		return
	}
	gID, err := s.tokens.Verify(token)
	if err != nil {
		log.WithError(err).Warn("device link refused")
		s.tb.Build("link/index").HTML(http.StatusBadRequest, web.NewContext(c).WithErr(err))
		return
	}
	if err = device.Link(c, gID); err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	log.WithField("guardian_id", gID).Info("device linked")
	c.Request.Header.Set("X-Return-Url", "/")
	web.RedirectWithSuccessAndMessage(c, "This device is now linked")
}

func (s *Handler) unlink(c *gin.Context) {
	d := device.GetDeviceFromContext(c)
	g := auth.GetGuardianFromContext(c)
	if d.Linked() && !uuid.Equal(d.GuardianID, g.ID) {
		_ = c.AbortWithError(http.StatusForbidden, errors.New("device is linked to another guardian"))
		return
	}
	if err := device.Unlink(c); err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	log.WithField("guardian_id", g.ID).Info("device unlinked")
	c.Request.Header.Set("X-Return-Url", device.LinkPath)
	web.RedirectWithSuccessAndMessage(c, "This device is no longer linked")
}
