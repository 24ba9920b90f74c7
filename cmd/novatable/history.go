package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// History is the shell's statement history, kept in its own file so it
// survives between sessions.
type History struct {
	path  string
	lines []string
}

func NewHistory(path string) *History {
	return &History{path: path}
}

// Load reads the saved history, normalising each entry the way Append
// does, and keeps only the newest max entries when max > 0.
func (h *History) Load(max int) error {
	if h.path == "" {
		return nil
	}
	raw, err := os.ReadFile(h.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}

	var loaded []string
	for _, line := range strings.Split(string(raw), "\n") {
		if stmt := compactOneLine(line); stmt != "" {
			loaded = append(loaded, stmt)
		}
	}
	if max > 0 && len(loaded) > max {
		loaded = loaded[len(loaded)-max:]
	}
	h.lines = append(h.lines, loaded...)
	return nil
}

// Append records stmt in memory and, when a path is set, on disk.
func (h *History) Append(stmt string) error {
	stmt = compactOneLine(stmt)
	if stmt == "" {
		return nil
	}
	h.lines = append(h.lines, stmt)
	if h.path == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(h.path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(h.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	_, err = fmt.Fprintln(f, stmt)
	return err
}

func (h *History) Lines() []string { return h.lines }

// Print writes the last n entries, numbered; n <= 0 prints all.
func (h *History) Print(w io.Writer, last int) {
	if last <= 0 || last > len(h.lines) {
		last = len(h.lines)
	}
	for i := len(h.lines) - last; i < len(h.lines); i++ {
		fmt.Fprintf(w, "%5d  %s\n", i+1, h.lines[i])
	}
}

// compactOneLine folds a multi-line statement into one line.
func compactOneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".novatable_history"
	}
	return filepath.Join(home, ".novatable_history")
}
