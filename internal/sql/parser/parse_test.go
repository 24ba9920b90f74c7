package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_RequireSemicolon(t *testing.T) {
	_, err := Parse("LIST")
	require.Error(t, err)
	require.Contains(t, err.Error(), "missing ';'")
}

func TestParse_Empty(t *testing.T) {
	_, err := Parse("   ")
	require.Error(t, err)

	_, err = Parse(" ; ")
	require.Error(t, err)
}

func TestParse_Load(t *testing.T) {
	stmt, err := Parse("LOAD data/users.tbl;")
	require.NoError(t, err)

	s, ok := stmt.(*LoadStmt)
	require.True(t, ok, "want *LoadStmt, got %T", stmt)
	assert.Equal(t, "data/users.tbl", s.Path)
}

func TestParse_Load_QuotedPath(t *testing.T) {
	stmt, err := Parse("load 'my tables/a;b.tbl';")
	require.NoError(t, err)
	assert.Equal(t, "my tables/a;b.tbl", stmt.(*LoadStmt).Path)
}

func TestParse_Load_Invalid(t *testing.T) {
	_, err := Parse("LOAD;")
	require.Error(t, err)

	_, err = Parse("LOAD a b;")
	require.Error(t, err)

	_, err = Parse("LOAD 'open;")
	require.Error(t, err)
}

func TestParse_Dump(t *testing.T) {
	stmt, err := Parse("DUMP users /tmp/users.out;")
	require.NoError(t, err)

	s, ok := stmt.(*DumpStmt)
	require.True(t, ok, "want *DumpStmt, got %T", stmt)
	assert.Equal(t, "users", s.TableName)
	assert.Equal(t, "/tmp/users.out", s.Path)

	_, err = Parse("DUMP users;")
	require.Error(t, err)
}

func TestParse_Drop(t *testing.T) {
	for _, src := range []string{"DROP users;", "drop table users;"} {
		stmt, err := Parse(src)
		require.NoError(t, err, src)

		s, ok := stmt.(*DropStmt)
		require.True(t, ok, "want *DropStmt, got %T", stmt)
		assert.Equal(t, "users", s.TableName)
	}

	_, err := Parse("DROP 123abc;")
	require.Error(t, err)
}

func TestParse_ListQuit(t *testing.T) {
	stmt, err := Parse("LIST;")
	require.NoError(t, err)
	require.IsType(t, &ListStmt{}, stmt)

	stmt, err = Parse("quit ;")
	require.NoError(t, err)
	require.IsType(t, &QuitStmt{}, stmt)

	_, err = Parse("LIST all;")
	require.Error(t, err)
}

func TestParse_Update(t *testing.T) {
	stmt, err := Parse("UPDATE ( A 9 ) FROM T WHERE ( KEY = k1 );")
	require.NoError(t, err)

	s, ok := stmt.(*QueryStmt)
	require.True(t, ok, "want *QueryStmt, got %T", stmt)
	assert.Equal(t, "UPDATE", s.Kind)
	assert.Equal(t, []string{"A", "9"}, s.Operands)
	assert.Equal(t, "T", s.TableName)
	assert.Equal(t, []Cond{{Field: "KEY", Op: "=", Value: "k1"}}, s.Where)
}

func TestParse_Update_TightParens(t *testing.T) {
	stmt, err := Parse("update (KEY k9) from T where (A >= 2) (B != 3);")
	require.NoError(t, err)

	s := stmt.(*QueryStmt)
	assert.Equal(t, "UPDATE", s.Kind)
	assert.Equal(t, []string{"KEY", "k9"}, s.Operands)
	assert.Equal(t, []Cond{
		{Field: "A", Op: ">=", Value: "2"},
		{Field: "B", Op: "!=", Value: "3"},
	}, s.Where)
}

// Operand arity is left to the query; the parser only shapes it.
func TestParse_Update_OperandCountNotChecked(t *testing.T) {
	stmt, err := Parse("UPDATE ( A ) FROM T;")
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, stmt.(*QueryStmt).Operands)
}

func TestParse_Count(t *testing.T) {
	stmt, err := Parse("COUNT ( ) FROM T;")
	require.NoError(t, err)

	s := stmt.(*QueryStmt)
	assert.Equal(t, "COUNT", s.Kind)
	assert.Empty(t, s.Operands)
	assert.Empty(t, s.Where)
}

func TestParse_Query_Invalid(t *testing.T) {
	cases := []string{
		"UPDATE A 9 FROM T;",
		"UPDATE ( A 9 FROM T;",
		"UPDATE ( A 9 ) T;",
		"UPDATE ( A 9 ) FROM;",
		"UPDATE ( A 9 ) FROM T WHERE;",
		"UPDATE ( A 9 ) FROM T WHERE A = 1;",
		"UPDATE ( A 9 ) FROM T WHERE ( A == 1 );",
		"UPDATE ( A 9 ) FROM T WHERE ( A = );",
		"UPDATE ( A 9 ) FROM T LIMIT 3;",
		"COUNT ( ( ) ) FROM T;",
	}
	for _, src := range cases {
		_, err := Parse(src)
		require.Error(t, err, src)
	}
}

func TestParse_Unsupported(t *testing.T) {
	_, err := Parse("SELECT * FROM users;")
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported statement")
}

func TestParseIdent(t *testing.T) {
	id, err := parseIdent("  users_2 ")
	require.NoError(t, err)
	assert.Equal(t, "users_2", id)

	for _, bad := range []string{"", "1abc", "a-b", "a b"} {
		_, err := parseIdent(bad)
		assert.Error(t, err, bad)
	}
}

func TestSplit(t *testing.T) {
	stmts, rest := Split("LIST; LOAD 'a;b';\nUPDATE ( A 1 )\n FROM T; ; COUNT ( ) FROM")
	assert.Equal(t, []string{
		"LIST;",
		"LOAD 'a;b';",
		"UPDATE ( A 1 )\n FROM T;",
	}, stmts)
	assert.Equal(t, "COUNT ( ) FROM", rest)

	assert.True(t, Complete("LIST;"))
	assert.False(t, Complete("LIST"))
	assert.False(t, Complete("LOAD 'x;"))
}
