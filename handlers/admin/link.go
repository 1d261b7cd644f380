package admin

import (
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/safetube/web-ui/services/auth"
	"github.com/safetube/web-ui/services/device"
	"github.com/safetube/web-ui/services/web"
)

type LinkData struct {
	URL       string
	ExpiresAt time.Time
}

// link issues a device link token and shows the URL to open on the child's
// device.
func (s *Handler) link(c *gin.Context) {
	g := auth.GetGuardianFromContext(c)
	token, exp, err := s.tokens.Issue(g.ID)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	u := s.domain + device.LinkPath + "?token=" + url.QueryEscape(token)
	s.tb.Build("admin/link").HTML(http.StatusOK, web.NewContext(c).WithData(&LinkData{
		URL:       u,
		ExpiresAt: exp,
	}))
}
