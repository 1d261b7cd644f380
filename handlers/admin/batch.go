package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"

	"github.com/safetube/web-ui/services/auth"
	"github.com/safetube/web-ui/services/curation"
	"github.com/safetube/web-ui/services/web"
)

const batchPath = "/admin/batch"

type BatchData struct {
	Draft *curation.Draft
	Max   int
}

func (s *Handler) batch(c *gin.Context) {
	g := auth.GetGuardianFromContext(c)
	d, err := s.cur.Draft(c.Request.Context(), g.ID)
	if errors.Is(err, curation.ErrNoDraft) {
		c.Redirect(http.StatusFound, "/admin")
		return
	}
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	s.tb.Build("admin/batch").HTML(http.StatusOK, web.NewContext(c).WithData(&BatchData{
		Draft: d,
		Max:   curation.MaxPreviews,
	}))
}

func (s *Handler) preview(c *gin.Context) {
	g := auth.GetGuardianFromContext(c)
	if _, err := s.cur.Preview(c.Request.Context(), g.ID, c.PostForm("url")); err != nil {
		redirectWithError(c, err)
		return
	}
	c.Redirect(http.StatusFound, batchPath)
}

// saveSelection stores the checkbox state of the batch form when the request
// carries it.
func (s *Handler) saveSelection(c *gin.Context, gID uuid.UUID) error {
	if c.PostForm("selection") == "" {
		return nil
	}
	_, err := s.cur.SetSelection(c.Request.Context(), gID, c.PostFormArray("ids"))
	return err
}

// draftAction saves the posted selection, applies fn to the guardian's
// draft and goes back to the batch page.
func (s *Handler) draftAction(c *gin.Context, fn func(gID uuid.UUID) error) {
	g := auth.GetGuardianFromContext(c)
	if err := s.saveSelection(c, g.ID); err != nil {
		redirectWithError(c, err)
		return
	}
	if err := fn(g.ID); err != nil {
		redirectWithError(c, err)
		return
	}
	c.Redirect(http.StatusFound, batchPath)
}

// toggle flips one preview. The batch page posts here on every checkbox
// change so ticks survive a reload.
func (s *Handler) toggle(c *gin.Context) {
	g := auth.GetGuardianFromContext(c)
	d, err := s.cur.Toggle(c.Request.Context(), g.ID, c.PostForm("id"))
	if err != nil && !isAsync(c) {
		redirectWithError(c, err)
		return
	}
	if errors.Is(err, curation.ErrNoDraft) {
		c.Status(http.StatusNotFound)
		return
	}
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	if isAsync(c) {
		c.JSON(http.StatusOK, gin.H{
			"selected": d.SelectedCount(),
			"total":    len(d.Previews),
		})
		return
	}
	c.Redirect(http.StatusFound, batchPath)
}

func isAsync(c *gin.Context) bool {
	return c.GetHeader("X-Requested-With") == "fetch"
}

func (s *Handler) selectAll(c *gin.Context) {
	s.draftAction(c, func(gID uuid.UUID) error {
		_, err := s.cur.SelectAll(c.Request.Context(), gID)
		return err
	})
}

func (s *Handler) selectNone(c *gin.Context) {
	s.draftAction(c, func(gID uuid.UUID) error {
		_, err := s.cur.SelectNone(c.Request.Context(), gID)
		return err
	})
}

func (s *Handler) loadMore(c *gin.Context) {
	s.draftAction(c, func(gID uuid.UUID) error {
		_, err := s.cur.LoadMore(c.Request.Context(), gID)
		return err
	})
}

func (s *Handler) cancel(c *gin.Context) {
	g := auth.GetGuardianFromContext(c)
	if err := s.cur.Cancel(c.Request.Context(), g.ID); err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	c.Redirect(http.StatusFound, "/admin")
}

func (s *Handler) commit(c *gin.Context) {
	g := auth.GetGuardianFromContext(c)
	if err := s.saveSelection(c, g.ID); err != nil {
		redirectWithError(c, err)
		return
	}
	res, err := s.cur.Commit(c.Request.Context(), g.ID)
	if err != nil {
		redirectWithError(c, err)
		return
	}
	flashAndRedirect(c, resultMessage("Added", res), "/admin")
}

func flashAndRedirect(c *gin.Context, msg string, to string) {
	c.Request.Header.Set("X-Return-Url", to)
	web.RedirectWithSuccessAndMessage(c, msg)
}
