package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/goliatone/go-formsession/internal/server"
	"github.com/goliatone/go-formsession/internal/store"
	"github.com/goliatone/go-formsession/pkg/formdef"
)

func (a *app) serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the reference CRUD backend",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "addr",
				Usage:   "listen address",
				Value:   ":8080",
				Sources: cli.EnvVars(envPrefix + "ADDR"),
			},
			&cli.StringFlag{
				Name:    "driver",
				Usage:   "database driver: sqlite or pgx",
				Value:   "sqlite",
				Sources: cli.EnvVars(envPrefix + "DRIVER"),
			},
			&cli.StringFlag{
				Name:    "dsn",
				Usage:   "database connection string",
				Value:   "file:formsession.db",
				Sources: cli.EnvVars(envPrefix + "DSN"),
			},
			&cli.StringFlag{
				Name:    "forms",
				Usage:   "directory of form definitions used to check incoming values",
				Sources: cli.EnvVars(envPrefix + "FORMS"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return a.serve(ctx, cmd.String("addr"), cmd.String("driver"), cmd.String("dsn"), cmd.String("forms"))
		},
	}
}

func (a *app) serve(ctx context.Context, addr, driver, dsn, formsDir string) error {
	records, err := store.Open(ctx, driver, dsn, store.WithLogger(a.log.Named("store")))
	if err != nil {
		return err
	}
	defer records.Close()

	opts := []server.Option{server.WithLogger(a.log.Named("http"))}
	if formsDir != "" {
		forms, err := formdef.LoadFS(os.DirFS(formsDir))
		if err != nil {
			return err
		}
		a.log.Info("form definitions loaded", zap.Strings("forms", forms.Names()))
		opts = append(opts, server.WithForms(forms))
	}

	srv, err := server.New(records, opts...)
	if err != nil {
		return err
	}
	return srv.Run(ctx, addr)
}
