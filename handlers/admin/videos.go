package admin

import (
	"fmt"
	"net/http"

	"github.com/dustin/go-humanize/english"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"

	"github.com/safetube/web-ui/models"
	"github.com/safetube/web-ui/services/auth"
	"github.com/safetube/web-ui/services/catalog"
	"github.com/safetube/web-ui/services/curation"
	"github.com/safetube/web-ui/services/web"
	"github.com/safetube/web-ui/services/youtube"
)

type ConfirmAddData struct {
	URL     string
	Warning *curation.Warning
}

type ConfirmDeleteData struct {
	Video *models.Video
}

type ConfirmBulkDeleteData struct {
	IDs []string
}

func isProviderError(err error) bool {
	var fe *youtube.FetchError
	return errors.Is(err, youtube.ErrInvalidURL) ||
		errors.Is(err, youtube.ErrNotFound) ||
		errors.As(err, &fe)
}

func (s *Handler) add(c *gin.Context) {
	g := auth.GetGuardianFromContext(c)
	u := c.PostForm("url")
	confirmed := c.PostForm("confirmed") == "true"
	v, w, err := s.cur.AddSingle(c.Request.Context(), g.ID, u, confirmed)
	if err != nil {
		redirectWithError(c, err)
		return
	}
	if w != nil {
		s.tb.Build("admin/confirm_add").HTML(http.StatusOK, web.NewContext(c).WithData(&ConfirmAddData{
			URL:     u,
			Warning: w,
		}))
		return
	}
	web.RedirectWithSuccessAndMessage(c, fmt.Sprintf("Added %q", v.Title))
}

func (s *Handler) video(c *gin.Context) (*models.Video, error) {
	id, err := uuid.FromString(c.Param("id"))
	if err != nil {
		return nil, catalog.ErrNotFound
	}
	g := auth.GetGuardianFromContext(c)
	return s.store.Get(c.Request.Context(), g.ID, id)
}

func (s *Handler) confirmDelete(c *gin.Context) {
	v, err := s.video(c)
	if errors.Is(err, catalog.ErrNotFound) {
		_ = c.AbortWithError(http.StatusNotFound, err)
		return
	}
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	s.tb.Build("admin/confirm_delete").HTML(http.StatusOK, web.NewContext(c).WithData(&ConfirmDeleteData{
		Video: v,
	}))
}

func (s *Handler) delete(c *gin.Context) {
	v, err := s.video(c)
	if err != nil {
		redirectWithError(c, err)
		return
	}
	if err = s.cur.Delete(c.Request.Context(), v.GuardianID, v.VideoID); err != nil {
		redirectWithError(c, err)
		return
	}
	web.RedirectWithSuccessAndMessage(c, fmt.Sprintf("Removed %q", v.Title))
}

// bulkDelete asks for confirmation first, the confirm page posts back with
// confirmed set.
func (s *Handler) bulkDelete(c *gin.Context) {
	raw := c.PostFormArray("ids")
	ids := make([]uuid.UUID, 0, len(raw))
	for _, r := range raw {
		id, err := uuid.FromString(r)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		web.RedirectWithError(c, &curation.InputError{Message: "Select at least one video"})
		return
	}
	if c.PostForm("confirmed") != "true" {
		s.tb.Build("admin/confirm_bulk_delete").HTML(http.StatusOK, web.NewContext(c).WithData(&ConfirmBulkDeleteData{
			IDs: raw,
		}))
		return
	}
	g := auth.GetGuardianFromContext(c)
	res := s.cur.BulkDelete(c.Request.Context(), g.ID, ids)
	web.RedirectWithSuccessAndMessage(c, resultMessage("Removed", res))
}

func resultMessage(verb string, res *curation.Result) string {
	msg := fmt.Sprintf("%v %v", verb, english.Plural(res.Succeeded, "video", ""))
	if res.Failed > 0 {
		msg += fmt.Sprintf(", %v failed", res.Failed)
	}
	return msg
}
