package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/tuannm99/novatable/internal/sql/executor"
)

func newExecCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "exec [script ...]",
		Short: "Run statement scripts, or standard input when none are given",
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cat, ex, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := cat.Close(); err == nil {
					err = cerr
				}
			}()

			if len(args) == 0 {
				if err := ex.ExecScript(ctx, a.stdin); !errors.Is(err, executor.ErrQuit) {
					return err
				}
				return nil
			}
			for _, path := range args {
				f, err := os.Open(path)
				if err != nil {
					return errors.Wrap(err, "open script")
				}
				err = ex.ExecScript(ctx, f)
				_ = f.Close()
				if errors.Is(err, executor.ErrQuit) {
					return nil
				}
				if err != nil {
					return errors.Wrapf(err, "script %q", path)
				}
			}
			return nil
		},
	}
}
