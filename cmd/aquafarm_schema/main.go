package main

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/youta-t/flarc"
	"go.uber.org/zap"

	kpg "github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/db/postgres"
	kpgschema "github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/db/postgres/schema"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/utils/logutil"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/utils/try"
)

type Flag struct {
	Host     string `flag:"host" help:"The host of the database."`
	Port     int    `flag:"port" help:"The port of the database."`
	User     string `flag:"user" help:"The user of the database. It should own the tables."`
	Password string `flag:"pass" help:"The password of the database."`
	Database string `flag:"database" help:"The name of the database."`

	Schema string `flag:"schema" help:"The path to a schema repository directory. Without this, the built-in schema is used."`
	DryRun bool   `flag:"dry-run" help:"Print the current and the latest schema versions, and do not upgrade."`
}

// dsn builds a connection url from flags.
func dsn(f Flag) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(f.User, f.Password),
		Host:   fmt.Sprintf("%s:%d", f.Host, f.Port),
		Path:   "/" + f.Database,
	}
	return u.String()
}

func repository(f Flag) fs.FS {
	if f.Schema == "" {
		return kpgschema.Repository()
	}
	return os.DirFS(f.Schema)
}

func main() {
	logger := try.To(logutil.New(os.Getenv("AQUAFARM_LOGLEVEL"))).OrFatal(log.Default())
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	port := 5432
	if sp := os.Getenv("DB_PORT"); sp != "" {
		if p, err := strconv.Atoi(sp); err == nil {
			port = p
		}
	}

	cmd := try.To(flarc.NewCommand(
		"database schema upgrader for aquafarmd",
		Flag{
			Host:     os.Getenv("DB_HOST"),
			Port:     port,
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			Database: os.Getenv("DB_NAME"),
			Schema:   os.Getenv("AQUAFARM_SCHEMA"),
		},
		flarc.Args{},
		func(ctx context.Context, c flarc.Commandline[Flag], _ []any) error {
			flags := c.Flags()
			repo := repository(flags)

			latest, err := kpgschema.Latest(repo)
			if err != nil {
				return err
			}

			// the owner applies DDL and policies, so no role is switched to.
			db, err := kpg.New(ctx, dsn(flags), kpg.WithRole(""), kpg.WithSchemaRepository(repo))
			if err != nil {
				return err
			}
			defer db.Close()

			current, err := db.Schema().Version(ctx)
			if err != nil {
				return err
			}
			logger.Info("schema versions", zap.Int("current", current), zap.Int("latest", latest))
			if flags.DryRun {
				fmt.Fprintf(c.Stdout(), "current: %d\nlatest: %d\n", current, latest)
				return nil
			}

			if err := db.Schema().Upgrade(ctx); err != nil {
				return err
			}
			logger.Info("schema is upgraded", zap.Int("version", latest))
			return nil
		},
	)).OrFatal(logger.Sugar())

	os.Exit(flarc.Run(ctx, cmd))
}
