package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const envPrefix = "FORMSESSION_"

type app struct {
	log *zap.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "formsession: %v\n", err)
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	a := &app{log: zap.NewNop()}
	return &cli.Command{
		Name:  "formsession",
		Usage: "edit entity records through form sessions",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "debug, info, warn or error",
				Value:   "info",
				Sources: cli.EnvVars(envPrefix + "LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "console or json",
				Value:   "console",
				Sources: cli.EnvVars(envPrefix + "LOG_FORMAT"),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			logger, err := newLogger(cmd.String("log-level"), cmd.String("log-format"))
			if err != nil {
				return ctx, err
			}
			a.log = logger
			return ctx, nil
		},
		After: func(context.Context, *cli.Command) error {
			_ = a.log.Sync()
			return nil
		},
		Commands: []*cli.Command{
			a.serveCommand(),
			a.editCommand(),
		},
	}
}

// newLogger builds a development logger for console output and a production
// logger for json output.
func newLogger(level, format string) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(level)))); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var cfg zap.Config
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "console":
		cfg = zap.NewDevelopmentConfig()
	case "json":
		cfg = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}
