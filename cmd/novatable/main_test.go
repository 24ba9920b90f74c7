package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuannm99/novatable/internal/engine"
	"github.com/tuannm99/novatable/internal/sql/executor"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestHistory_AppendLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "history")
	h := NewHistory(path)

	require.NoError(t, h.Append("COUNT ( )\n  FROM T;"))
	require.NoError(t, h.Append("   "))
	require.NoError(t, h.Append("LIST;"))

	again := NewHistory(path)
	require.NoError(t, again.Load(0))
	assert.Equal(t, []string{"COUNT ( ) FROM T;", "LIST;"}, again.Lines())

	capped := NewHistory(path)
	require.NoError(t, capped.Load(1))
	assert.Equal(t, []string{"LIST;"}, capped.Lines())

	var buf bytes.Buffer
	again.Print(&buf, 1)
	assert.Equal(t, "    2  LIST;\n", buf.String())
}

func TestHistory_LoadNormalisesEditedFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "history", "LIST;\r\n\n  COUNT   ( )  FROM T;\t\nDROP T;")

	h := NewHistory(path)
	require.NoError(t, h.Load(2))
	assert.Equal(t, []string{"COUNT ( ) FROM T;", "DROP T;"}, h.Lines())
}

func TestHistory_MissingFile(t *testing.T) {
	h := NewHistory(filepath.Join(t.TempDir(), "none"))
	require.NoError(t, h.Load(10))
	assert.Empty(t, h.Lines())
}

func newSession(t *testing.T) (*session, *bytes.Buffer) {
	t.Helper()
	cat := engine.New(engine.Options{Workers: 2})
	t.Cleanup(func() { require.NoError(t, cat.Close()) })

	var out bytes.Buffer
	return &session{
		cat:  cat,
		ex:   executor.NewExecutor(cat, &out),
		hist: NewHistory(""),
		out:  &out,
	}, &out
}

func TestSession_MultilineStatement(t *testing.T) {
	s, out := newSession(t)
	ctx := context.Background()

	quit, ran := s.handle(ctx, "COUNT ( )")
	require.False(t, quit)
	require.Empty(t, ran)
	require.Empty(t, out.String())

	quit, ran = s.handle(ctx, "FROM T; COUNT")
	require.False(t, quit)
	require.Equal(t, []string{"COUNT ( ) FROM T;"}, ran)
	require.Equal(t, "1\nANSWER = 0\n", out.String())
	require.Equal(t, "COUNT", s.buf.String())
	require.Equal(t, []string{"COUNT ( ) FROM T;"}, s.hist.Lines())
}

func TestSession_ParseErrorIsPrinted(t *testing.T) {
	s, out := newSession(t)
	quit, _ := s.handle(context.Background(), "FROB;")
	require.False(t, quit)
	require.Contains(t, out.String(), "error: unsupported statement")
}

func TestSession_MetaCommands(t *testing.T) {
	s, out := newSession(t)
	ctx := context.Background()

	s.handle(ctx, "COUNT ( ) FROM T;")
	out.Reset()

	quit, _ := s.handle(ctx, "\\list")
	require.False(t, quit)
	require.Contains(t, out.String(), "Database overview")

	out.Reset()
	s.handle(ctx, "\\metrics")
	require.Contains(t, out.String(), "query_results_total")

	out.Reset()
	s.handle(ctx, "\\help")
	require.Contains(t, out.String(), "UPDATE")

	out.Reset()
	s.handle(ctx, "\\nope")
	require.Contains(t, out.String(), "unknown command")

	quit, _ = s.handle(ctx, "\\q")
	require.True(t, quit)
}

func TestSession_QuitStatement(t *testing.T) {
	s, out := newSession(t)
	quit, ran := s.handle(context.Background(), "COUNT ( ) FROM T; QUIT; COUNT ( ) FROM T;")
	require.True(t, quit)
	require.Len(t, ran, 2)
	require.Equal(t, "1\nANSWER = 0\n", out.String())
}

func TestExecCommand_ScriptFile(t *testing.T) {
	dir := t.TempDir()
	tbl := writeFile(t, dir, "t.tbl", "T 3\nKEY A B\nk1 2 3\nk2 4 5\n")
	script := writeFile(t, dir, "s.sql", "UPDATE ( B 0 ) FROM T WHERE ( A > 2 );\nCOUNT ( ) FROM T WHERE ( B = 0 );\n")

	var stdout, stderr bytes.Buffer
	rc := NewRootCommand(strings.NewReader(""), &stdout, &stderr)
	rc.SetArgs([]string{"exec", "--workers", "2", "--log-level", "warn", "--preload", tbl, script})
	require.NoError(t, rc.Execute(), stderr.String())

	assert.Equal(t, "1\nSuccess.\n2\nAffected 1 rows.\n3\nANSWER = 1\n", stdout.String())
}

func TestExecCommand_QuitSkipsLaterScripts(t *testing.T) {
	dir := t.TempDir()
	first := writeFile(t, dir, "a.sql", "COUNT ( ) FROM T;\nQUIT;\n")
	second := writeFile(t, dir, "b.sql", "COUNT ( ) FROM U;\n")

	var stdout, stderr bytes.Buffer
	rc := NewRootCommand(strings.NewReader(""), &stdout, &stderr)
	rc.SetArgs([]string{"exec", first, second})
	require.NoError(t, rc.Execute(), stderr.String())

	assert.Equal(t, "1\nANSWER = 0\n", stdout.String())
}

func TestExecCommand_Stdin(t *testing.T) {
	var stdout, stderr bytes.Buffer
	rc := NewRootCommand(strings.NewReader("COUNT ( ) FROM T;\nLIST;\n"), &stdout, &stderr)
	rc.SetArgs([]string{"exec"})
	require.NoError(t, rc.Execute(), stderr.String())

	out := stdout.String()
	assert.True(t, strings.HasPrefix(out, "1\nANSWER = 0\n2\nDatabase overview:\n"), out)
}

func TestExecCommand_BadConfig(t *testing.T) {
	var stdout, stderr bytes.Buffer
	rc := NewRootCommand(strings.NewReader(""), &stdout, &stderr)
	rc.SetArgs([]string{"exec", "--workers", "0"})
	require.Error(t, rc.Execute())
}

func TestExecCommand_MissingScript(t *testing.T) {
	var stdout, stderr bytes.Buffer
	rc := NewRootCommand(strings.NewReader(""), &stdout, &stderr)
	rc.SetArgs([]string{"exec", filepath.Join(t.TempDir(), "none.sql")})
	require.Error(t, rc.Execute())
}
