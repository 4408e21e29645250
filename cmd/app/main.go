package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/quill/internal"
	pkgconfig "github.com/starford/quill/pkg/config"
)

// options loads the config file and turns the global flags into application options.
// logToStderr keeps stdout free for command output and the MCP protocol.
func options(cmd *cli.Command, logToStderr bool) ([]internal.Option, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	if _, err := pkgconfig.LoadOptional(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
		internal.WithNotebook(cmd.String("notebook")),
	}
	if logToStderr {
		opts = append(opts, internal.WithLogger(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: cfg.App.LogLevel,
		}))))
	}
	return opts, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	opts, err := options(cmd, false)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	opts, err := options(cmd, true)
	if err != nil {
		return err
	}
	return internal.RunMCP(ctx, opts...)
}

// newApp builds the root command; command output goes to w.
func newApp(w io.Writer) *cli.Command {
	return &cli.Command{
		Name:   "quill",
		Usage:  "Notebook of titled notes with code snippets, stored as one JSON document",
		Action: serve,
		Writer: w,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "notebook",
				Aliases: []string{"n"},
				Usage:   "Path to a notebook .json file (overrides config)",
				Sources: cli.EnvVars("QUILL_NOTEBOOK"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the HTTP API with live events",
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Serve MCP tools on stdin/stdout",
				Action: serveMCP,
			},
			notebooksCommand(),
			listCommand(),
			showCommand(),
			newCommand(),
			editCommand(),
			deleteCommand(),
		},
	}
}

func main() {
	cmd := newApp(os.Stdout)
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
