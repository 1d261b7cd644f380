package migration

import (
	"github.com/go-pg/migrations/v8"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	cs "github.com/webtor-io/common-services"
)

const migrationsDirFlag = "migrations-dir"

func RegisterFlags(f []cli.Flag) []cli.Flag {
	return append(f,
		cli.StringFlag{
			Name:   migrationsDirFlag,
			Usage:  "directory of sql migrations",
			Value:  "migrations",
			EnvVar: "MIGRATIONS_DIR",
		},
	)
}

// Runner is the part of a migration collection PGMigration drives.
type Runner interface {
	DiscoverSQLMigrations(dir string) error
	Run(db migrations.DB, a ...string) (oldVersion, newVersion int64, err error)
}

type PGMigration struct {
	db  *cs.PG
	col Runner
	dir string
}

func NewPGMigration(c *cli.Context, db *cs.PG, col Runner) *PGMigration {
	return &PGMigration{
		db:  db,
		col: col,
		dir: c.String(migrationsDirFlag),
	}
}

// Run applies the sql migrations of the catalog schema. A missing database is
// not an error, the service then runs without persistence.
func (s *PGMigration) Run(a ...string) error {
	db := s.db.Get()
	if db == nil {
		log.Info("DB not initialized, skipping migration")
		return nil
	}
	return run(db, s.col, s.dir, a...)
}

func run(db migrations.DB, col Runner, dir string, a ...string) error {
	if err := col.DiscoverSQLMigrations(dir); err != nil {
		return errors.Wrapf(err, "failed to discover migrations in %v", dir)
	}
	if _, _, err := col.Run(db, "init"); err != nil {
		return errors.Wrap(err, "failed to init DB PGMigrations")
	}
	oldVersion, newVersion, err := col.Run(db, a...)
	if err != nil {
		return errors.Wrapf(err, "failed to perform PGMigration from %v to %v", oldVersion, newVersion)
	}
	l := log.WithFields(log.Fields{
		"from": oldVersion,
		"to":   newVersion,
	})
	if newVersion != oldVersion {
		l.Info("DB migrated")
	} else {
		l.Info("DB is up to date")
	}
	return nil
}
