package novatable

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestFacade_UpdateThenCount(t *testing.T) {
	c := New(Options{Workers: 2})
	defer func() { require.NoError(t, c.Close()) }()

	tbl, err := LoadTable(strings.NewReader("T 3\nKEY A B\nk1 2 3\nk2 4 5\n"), "inline")
	require.NoError(t, err)
	require.NoError(t, c.Register(tbl))
	require.True(t, errors.Is(c.Register(tbl), ErrDuplicateTableName))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	upd := NewUpdate("T", []string{"A", "7"}, nil)
	cnt := NewCount("T", Conditions{{Field: "A", Op: "=", Value: "7"}})
	require.NoError(t, c.Submit(upd))
	require.NoError(t, c.Submit(cnt))

	res, err := Wait(ctx, upd)
	require.NoError(t, err)
	require.Equal(t, "Affected 2 rows.", res.String())

	res, err = Wait(ctx, cnt)
	require.NoError(t, err)
	require.Equal(t, "ANSWER = 2", res.String())

	var buf bytes.Buffer
	require.NoError(t, DumpTable(&buf, tbl))
	require.True(t, strings.HasPrefix(buf.String(), "T\t3\n"))
}
