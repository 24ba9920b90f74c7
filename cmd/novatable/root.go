package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/tuannm99/novatable/internal"
	"github.com/tuannm99/novatable/internal/engine"
	"github.com/tuannm99/novatable/internal/sql/executor"
	"github.com/tuannm99/novatable/internal/sql/parser"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	stdin          io.Reader
	stdout, stderr io.Writer

	cfg *internal.NovaTableConfig
}

func NewRootCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}

	rc := &cobra.Command{
		Use:   "novatable",
		Short: "In-memory tables with concurrent, per-table scheduled queries.",
		Long: `novatable keeps tables in memory and runs queries against them
concurrently. Readers of a table run side by side, writers run alone,
and results are reported in the order the queries were issued.

Statements end with ';':
  LOAD <path>;  DUMP <table> <path>;  DROP <table>;  LIST;  QUIT;
  UPDATE ( <field> <value> ) FROM <table> [WHERE ( <field> <op> <value> ) ...];
  COUNT ( ) FROM <table> [WHERE ...];
`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			path, err := cmd.Flags().GetString("config")
			if err != nil {
				return err
			}
			cfg, err := internal.LoadConfig(path, cmd.Flags())
			if err != nil {
				return err
			}
			a.cfg = cfg

			lvl, _ := cfg.SlogLevel()
			slog.SetDefault(slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: lvl})))
			return nil
		},
	}

	flags := rc.PersistentFlags()
	flags.StringP("config", "c", "", "Configuration file to read from.")
	flags.Int("workers", 8, "Number of dispatcher workers.")
	flags.Int("chunk", 0, "Rows per task; 0 runs one task per query.")
	flags.String("log-level", "info", "Log level: debug, info, warn or error.")
	flags.StringSlice("preload", nil, "Table files to LOAD before anything else.")

	rc.AddCommand(newShellCommand(a))
	rc.AddCommand(newExecCommand(a))

	rc.SetIn(stdin)
	rc.SetOut(stdout)
	rc.SetErr(stderr)
	return rc
}

// open starts a catalog and loads the configured tables into it.
func (a *app) open(ctx context.Context) (*engine.Catalog, *executor.Executor, error) {
	cat := engine.New(engine.Options{
		Workers: a.cfg.Engine.Workers,
		Chunk:   a.cfg.Engine.Chunk,
	})
	ex := executor.NewExecutor(cat, a.stdout)
	for _, path := range a.cfg.Preload {
		if err := ex.ExecStmt(ctx, &parser.LoadStmt{Path: path}); err != nil {
			_ = cat.Close()
			return nil, nil, err
		}
	}
	return cat, ex, nil
}
