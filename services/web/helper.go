package web

import (
	"html/template"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/urfave/cli"

	"github.com/safetube/web-ui/services/common"
	"github.com/safetube/web-ui/services/youtube"
)

type Helper struct {
	domain string
}

func NewHelper(c *cli.Context) *Helper {
	return NewHelperWithDomain(c.String(common.DomainFlag))
}

func NewHelperWithDomain(domain string) *Helper {
	return &Helper{
		domain: domain,
	}
}

func (s *Helper) Funcs() template.FuncMap {
	return template.FuncMap{
		"domain":      s.Domain,
		"ago":         s.Ago,
		"count":       s.Count,
		"plural":      s.Plural,
		"isoDuration": youtube.FormatISODuration,
	}
}

func (s *Helper) Domain() string {
	return s.domain
}

func (s *Helper) Ago(t time.Time) string {
	return humanize.Time(t)
}

func (s *Helper) Count(n int) string {
	return humanize.Comma(int64(n))
}

// Plural renders "1 video", "3 videos".
func (s *Helper) Plural(n int, singular string) string {
	return english.Plural(n, singular, "")
}
