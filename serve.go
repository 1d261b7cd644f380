package main

import (
	"github.com/gin-contrib/multitemplate"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	cs "github.com/webtor-io/common-services"

	wad "github.com/safetube/web-ui/handlers/admin"
	wapi "github.com/safetube/web-ui/handlers/api"
	wau "github.com/safetube/web-ui/handlers/auth"
	"github.com/safetube/web-ui/handlers/library"
	"github.com/safetube/web-ui/handlers/link"
	sess "github.com/safetube/web-ui/handlers/session"
	"github.com/safetube/web-ui/handlers/watch"
	"github.com/safetube/web-ui/services/auth"
	"github.com/safetube/web-ui/services/catalog"
	"github.com/safetube/web-ui/services/common"
	"github.com/safetube/web-ui/services/curation"
	"github.com/safetube/web-ui/services/device"
	"github.com/safetube/web-ui/services/migration"
	"github.com/safetube/web-ui/services/template"
	w "github.com/safetube/web-ui/services/web"
	"github.com/safetube/web-ui/services/youtube"
)

func makeServeCMD() cli.Command {
	serveCMD := cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Serves web server",
		Action:  serve,
	}
	configureServe(&serveCMD)
	return serveCMD
}

func configureServe(c *cli.Command) {
	c.Flags = cs.RegisterPGFlags(c.Flags)
	c.Flags = cs.RegisterProbeFlags(c.Flags)
	c.Flags = cs.RegisterRedisClientFlags(c.Flags)
	c.Flags = migration.RegisterFlags(c.Flags)
	c.Flags = w.RegisterFlags(c.Flags)
	c.Flags = common.RegisterFlags(c.Flags)
	c.Flags = sess.RegisterFlags(c.Flags)
	c.Flags = youtube.RegisterFlags(c.Flags)
	c.Flags = device.RegisterFlags(c.Flags)
}

func serve(c *cli.Context) error {
	// Setting DB
	pg := cs.NewPG(c)
	defer pg.Close()

	// Setting Migrations
	err := pgMigrate(c)
	if err != nil {
		return err
	}

	// Setting template renderer
	re := multitemplate.NewRenderer()

	// Setting TemplateManager
	tm := template.NewManager[*w.Context](re).
		WithHelper(w.NewHelper(c))

	var servers []cs.Servable
	// Setting Probe
	probe := cs.NewProbe(c)
	if probe != nil {
		servers = append(servers, probe)
		defer probe.Close()
	}

	// Setting Gin
	r := gin.Default()
	r.RedirectTrailingSlash = false
	r.HTMLRender = re
	r.Static("/assets", "./assets")

	// Setting Web
	web, err := w.New(c, r)
	if err != nil {
		return err
	}
	servers = append(servers, web)
	defer web.Close()

	// Setting Session
	err = sess.RegisterHandler(c, r, []string{
		"/api/",
	})
	if err != nil {
		return err
	}

	// Setting Guardian and Device context
	r.Use(auth.Middleware, device.Middleware)

	// Setting Redis
	redis := cs.NewRedisClient(c)
	defer redis.Close()

	// Setting YouTube
	yt, err := youtube.New(c)
	if err != nil {
		return err
	}

	// Setting Catalog
	store := catalog.New(pg)

	// Setting Curation
	cur := curation.New(yt, store, curation.NewRedisDraftStore(redis.Get()))

	// Setting Link Tokens
	tokens := device.NewTokens(c)

	// Setting AuthHandler
	wau.RegisterHandler(r, tm, auth.New(auth.NewPGStore(pg)))

	// Setting ApiHandler
	wapi.RegisterHandler(r, c.String(common.DomainFlag), store, cur, yt)

	// Setting AdminHandler
	wad.RegisterHandler(r, tm, c.String(common.DomainFlag), store, cur, tokens)

	// Setting LinkHandler
	link.RegisterHandler(r, tm, tokens)

	// Setting Library
	library.RegisterHandler(r, tm, store)

	// Setting WatchHandler
	watch.RegisterHandler(r, tm, store)

	// Render templates
	err = tm.Init()
	if err != nil {
		return err
	}

	// Setting Serve
	serve := cs.NewServe(servers...)

	// And SERVE!
	err = serve.Serve()
	if err != nil {
		log.WithError(err).Error("got server error")
	}
	return err
}
