package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/tuannm99/novatable/internal/engine"
	"github.com/tuannm99/novatable/internal/sql/executor"
	"github.com/tuannm99/novatable/internal/sql/parser"
)

const (
	prompt         = "novatable> "
	continuePrompt = "...> "
)

const helpText = `meta commands:
  \q | quit | exit       quit
  \history               print history
  \list                  table overview
  \metrics               engine counters
  \help                  show help

statements:
  end every statement with ';'
  multiline is supported (the shell waits until ';')`

func newShellCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Interactive statement shell",
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			cat, ex, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				if cerr := cat.Close(); err == nil {
					err = cerr
				}
			}()

			path := a.cfg.Shell.History
			if path == "" {
				path = defaultHistoryPath()
			}
			h := NewHistory(path)
			_ = h.Load(a.cfg.Shell.HistoryMax)

			return runShell(cmd.Context(), &session{cat: cat, ex: ex, hist: h, out: a.stdout})
		},
	}
	cmd.Flags().String("history", "", "History file path (default ~/.novatable_history).")
	cmd.Flags().Int("history-max", 1000, "Max history lines loaded into memory.")
	return cmd
}

func runShell(ctx context.Context, s *session) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return errors.Wrap(err, "getting readline")
	}
	defer func() { _ = rl.Close() }()

	// preload history into readline so the arrow keys work immediately
	for _, line := range s.hist.Lines() {
		_ = rl.SaveHistory(line)
	}

	fmt.Fprintln(s.out, "type \\help for help")
	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			// Ctrl+C clears the current buffer
			if s.buf.Len() > 0 {
				s.buf.Reset()
				rl.SetPrompt(prompt)
				continue
			}
			fmt.Fprintln(s.out, "^C")
			continue
		}
		if err != nil {
			// EOF
			fmt.Fprintln(s.out)
			return s.ex.Flush(ctx)
		}

		quit, stmts := s.handle(ctx, line)
		for _, stmt := range stmts {
			_ = rl.SaveHistory(compactOneLine(stmt))
		}
		if quit {
			return nil
		}
		if s.buf.Len() > 0 {
			rl.SetPrompt(continuePrompt)
		} else {
			rl.SetPrompt(prompt)
		}
	}
}

// session is the REPL state behind the readline loop.
type session struct {
	cat  *engine.Catalog
	ex   *executor.Executor
	hist *History
	out  io.Writer

	buf strings.Builder
}

// handle consumes one input line. It returns the statements it ran and
// whether the shell should exit.
func (s *session) handle(ctx context.Context, line string) (quit bool, ran []string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false, nil
	}

	if s.buf.Len() == 0 && isMetaCommand(line) {
		return s.meta(line), nil
	}

	if s.buf.Len() > 0 {
		s.buf.WriteByte(' ')
	}
	s.buf.WriteString(line)

	stmts, rest := parser.Split(s.buf.String())
	if len(stmts) == 0 {
		return false, nil
	}
	s.buf.Reset()
	s.buf.WriteString(rest)

	for _, stmt := range stmts {
		_ = s.hist.Append(stmt)
		err := s.ex.Exec(ctx, stmt)
		if errors.Is(err, executor.ErrQuit) {
			return true, append(ran, stmt)
		}
		if err != nil {
			fmt.Fprintf(s.out, "error: %v\n", err)
		}
		ran = append(ran, stmt)
	}
	if err := s.ex.Flush(ctx); err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
	}
	return false, ran
}

func (s *session) meta(line string) (quit bool) {
	switch line {
	case "\\q", "quit", "exit":
		return true
	case "\\help":
		fmt.Fprintln(s.out, helpText)
		fmt.Fprintf(s.out, "\nkeywords: %s\n", strings.Join(executor.Kinds(), " "))
	case "\\history":
		s.hist.Print(s.out, 50)
	case "\\list":
		s.cat.Overview(s.out)
	case "\\metrics":
		if err := s.cat.Metrics().Render(s.out); err != nil {
			fmt.Fprintf(s.out, "error: %v\n", err)
		}
	default:
		fmt.Fprintf(s.out, "unknown command: %s\n", line)
	}
	return false
}

func isMetaCommand(line string) bool {
	return strings.HasPrefix(line, "\\") || line == "quit" || line == "exit"
}
