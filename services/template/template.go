package template

import (
	"html/template"
	"path/filepath"
	"strings"

	"github.com/gin-contrib/multitemplate"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/yargevad/filepathx"
)

const defaultDir = "templates"

// Context is the view model handed to templates.
type Context interface {
	GinContext() *gin.Context
}

type Helper interface {
	Funcs() template.FuncMap
}

type Builder[T Context] interface {
	Build(name string) *Template[T]
}

type Manager[T Context] struct {
	re       multitemplate.Renderer
	dir      string
	funcs    template.FuncMap
	builders []*BuilderWithLayout[T]
}

func NewManager[T Context](re multitemplate.Renderer) *Manager[T] {
	return &Manager[T]{
		re:    re,
		dir:   defaultDir,
		funcs: template.FuncMap{},
	}
}

func (s *Manager[T]) WithDir(dir string) *Manager[T] {
	s.dir = dir
	return s
}

func (s *Manager[T]) WithHelper(h Helper) *Manager[T] {
	for k, v := range h.Funcs() {
		s.funcs[k] = v
	}
	return s
}

// MustRegisterViews registers views/<pattern>.html. Views are parsed on Init.
func (s *Manager[T]) MustRegisterViews(pattern string) *BuilderWithLayout[T] {
	if _, err := filepath.Match(pattern, ""); err != nil {
		panic(errors.Wrapf(err, "bad views pattern %v", pattern))
	}
	b := &BuilderWithLayout[T]{
		pattern: pattern,
	}
	s.builders = append(s.builders, b)
	return b
}

// Init parses every registered view together with its layout and the
// shared partials, nested partial directories included.
func (s *Manager[T]) Init() error {
	partials, err := filepathx.Glob(filepath.Join(s.dir, "partials", "**", "*.html"))
	if err != nil {
		return errors.Wrap(err, "failed to list partials")
	}
	viewsDir := filepath.Join(s.dir, "views")
	for _, b := range s.builders {
		files, err := filepath.Glob(filepath.Join(viewsDir, b.pattern+".html"))
		if err != nil {
			return errors.Wrapf(err, "failed to list views %v", b.pattern)
		}
		if len(files) == 0 {
			return errors.Errorf("no views found for %v", b.pattern)
		}
		for _, f := range files {
			rel, err := filepath.Rel(viewsDir, f)
			if err != nil {
				return err
			}
			name := strings.TrimSuffix(filepath.ToSlash(rel), ".html")
			var list []string
			if b.layout != "" {
				list = append(list, filepath.Join(s.dir, "layouts", b.layout+".html"))
			}
			list = append(list, f)
			list = append(list, partials...)
			s.re.AddFromFilesFuncs(name, s.funcs, list...)
			log.WithField("view", name).Debug("view registered")
		}
	}
	return nil
}

type BuilderWithLayout[T Context] struct {
	pattern string
	layout  string
}

func (s *BuilderWithLayout[T]) WithLayout(name string) *BuilderWithLayout[T] {
	s.layout = name
	return s
}

func (s *BuilderWithLayout[T]) Build(name string) *Template[T] {
	return &Template[T]{name: name}
}

type Template[T Context] struct {
	name string
}

func (s *Template[T]) HTML(code int, ctx T) {
	ctx.GinContext().HTML(code, s.name, ctx)
}
