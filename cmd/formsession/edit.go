package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/goliatone/go-formsession/pkg/crud"
	"github.com/goliatone/go-formsession/pkg/form"
	"github.com/goliatone/go-formsession/pkg/formdef"
	"github.com/goliatone/go-formsession/pkg/i18n"
	"github.com/goliatone/go-formsession/pkg/model"
	"github.com/goliatone/go-formsession/pkg/notify"
	"github.com/goliatone/go-formsession/pkg/schema"
)

func (a *app) editCommand() *cli.Command {
	return &cli.Command{
		Name:  "edit",
		Usage: "edit a record, or create one, in an interactive form session",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server",
				Usage:   "backend base URL",
				Value:   "http://localhost:8080",
				Sources: cli.EnvVars(envPrefix + "SERVER"),
			},
			&cli.StringFlag{
				Name:    "forms",
				Usage:   "directory of form definitions",
				Sources: cli.EnvVars(envPrefix + "FORMS"),
			},
			&cli.StringFlag{
				Name:    "openapi",
				Usage:   "OpenAPI document (path or URL) to derive the form from instead of --forms",
				Sources: cli.EnvVars(envPrefix + "OPENAPI"),
			},
			&cli.StringFlag{
				Name:     "form",
				Usage:    "form name, or component schema name with --openapi",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "id",
				Usage: "identifier of the record to edit; empty starts a new record",
			},
			&cli.StringFlag{
				Name:    "locale",
				Usage:   "message locale",
				Value:   "en",
				Sources: cli.EnvVars(envPrefix + "LOCALE"),
			},
			&cli.StringFlag{
				Name:    "locales",
				Usage:   "directory of locale catalogs",
				Sources: cli.EnvVars(envPrefix + "LOCALES"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return a.edit(ctx, editConfig{
				server:   cmd.String("server"),
				formsDir: cmd.String("forms"),
				openapi:  cmd.String("openapi"),
				form:     cmd.String("form"),
				id:       cmd.String("id"),
				locale:   cmd.String("locale"),
				locales:  cmd.String("locales"),
			})
		},
	}
}

type editConfig struct {
	server   string
	formsDir string
	openapi  string
	form     string
	id       string
	locale   string
	locales  string
}

func (a *app) edit(ctx context.Context, cfg editConfig) error {
	def, err := loadDefinition(ctx, cfg)
	if err != nil {
		return err
	}

	catalog := i18n.NewCatalog("en")
	if cfg.locales != "" {
		if catalog, err = i18n.LoadCatalogFS(os.DirFS(cfg.locales), "en"); err != nil {
			return err
		}
	}

	transport := crud.NewHTTPTransport(cfg.server, crud.WithLogger(a.log.Named("crud")))
	terminal := notify.NewTerminal()

	opts := []form.Option{
		form.WithNotifier(terminal),
		form.WithLocalizer(i18n.NewLocalizer(catalog, cfg.locale)),
		form.WithLogger(a.log.Named("form")),
	}
	if id := parseRecordID(cfg.id); id != nil {
		values, err := readRecord(ctx, transport, def.Entity, id)
		if err != nil {
			return err
		}
		opts = append(opts, form.WithRecord(id, values))
	}

	ctrl, err := form.New(def, transport, opts...)
	if err != nil {
		return err
	}
	if err := ctrl.LoadFieldStores(ctx); err != nil {
		a.log.Warn("some option lists could not be loaded", zap.Error(err))
	}

	return newEditor(ctrl, terminal.Prompter(), a.log).run(ctx)
}

func loadDefinition(ctx context.Context, cfg editConfig) (model.FormModel, error) {
	if cfg.openapi != "" {
		src, err := schema.ParseSource(cfg.openapi)
		if err != nil {
			return model.FormModel{}, err
		}
		def, err := schema.Load(ctx, src, cfg.form)
		if err != nil {
			return model.FormModel{}, err
		}
		return formdef.Normalize(cfg.form, def)
	}
	if cfg.formsDir == "" {
		return model.FormModel{}, errors.New("either --forms or --openapi is required")
	}

	forms, err := formdef.LoadFS(os.DirFS(cfg.formsDir))
	if err != nil {
		return model.FormModel{}, err
	}
	def, ok := forms.Form(cfg.form)
	if !ok {
		return model.FormModel{}, fmt.Errorf("unknown form %q (available: %s)", cfg.form, strings.Join(forms.Names(), ", "))
	}
	return def, nil
}

func readRecord(ctx context.Context, transport crud.Transport, entity string, id any) (map[string]any, error) {
	resp, err := transport.Do(ctx, crud.Read(entity, id))
	if err != nil {
		if msg := crud.MessageOf(err); msg != "" {
			return nil, fmt.Errorf("read %s %v: %s", entity, id, msg)
		}
		return nil, fmt.Errorf("read %s %v: %w", entity, id, err)
	}
	values, ok := resp.Data.(map[string]any)
	if !ok {
		return nil, errors.New("read response carries no record")
	}
	return values, nil
}

// parseRecordID keeps numeric identifiers numeric so they match what the
// backend returns.
func parseRecordID(raw string) any {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	return raw
}
