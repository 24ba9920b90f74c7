package parser

import (
	"fmt"
	"strings"
	"unicode"
)

// QueryKinds lists the query keywords Parse accepts in the generic form.
var QueryKinds = map[string]bool{
	"UPDATE": true,
	"COUNT":  true,
}

var compareOps = map[string]bool{
	"=": true, "!=": true, "<": true, ">": true, "<=": true, ">=": true,
}

// parseIdent validates a table or field name.
// Rules:
//   - exactly one token
//   - first char: letter or '_'
//   - rest: letter/digit/'_'
func parseIdent(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("missing identifier")
	}

	parts := strings.Fields(s)
	if len(parts) != 1 {
		return "", fmt.Errorf("invalid identifier %q", s)
	}
	id := parts[0]

	for i, r := range id {
		if i == 0 {
			if !unicode.IsLetter(r) && r != '_' {
				return "", fmt.Errorf("invalid identifier %q", id)
			}
			continue
		}

		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return "", fmt.Errorf("invalid identifier %q", id)
		}
	}

	return id, nil
}

// Parse parses a single statement into an AST.
// Policy: statement MUST end with ';'
func Parse(src string) (Statement, error) {
	s := strings.TrimSpace(src)
	if s == "" {
		return nil, fmt.Errorf("empty statement")
	}

	if !strings.HasSuffix(s, ";") {
		return nil, fmt.Errorf("missing ';' terminator")
	}

	s = strings.TrimSpace(strings.TrimSuffix(s, ";"))
	if s == "" {
		return nil, fmt.Errorf("empty statement")
	}

	toks, err := tokenize(s)
	if err != nil {
		return nil, err
	}

	head := strings.ToUpper(toks[0])
	args := toks[1:]
	switch {
	case head == "LOAD":
		return parseLoad(args)
	case head == "DUMP":
		return parseDump(args)
	case head == "DROP":
		return parseDrop(args)
	case head == "LIST":
		if len(args) != 0 {
			return nil, fmt.Errorf("invalid LIST syntax: unexpected %q", args[0])
		}
		return &ListStmt{}, nil
	case head == "QUIT":
		if len(args) != 0 {
			return nil, fmt.Errorf("invalid QUIT syntax: unexpected %q", args[0])
		}
		return &QuitStmt{}, nil
	case QueryKinds[head]:
		return parseQuery(head, args)
	default:
		return nil, fmt.Errorf("unsupported statement: %q", src)
	}
}

func parseLoad(args []string) (Statement, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("invalid LOAD syntax: want LOAD <path>")
	}
	return &LoadStmt{Path: args[0]}, nil
}

func parseDump(args []string) (Statement, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("invalid DUMP syntax: want DUMP <table> <path>")
	}
	name, err := parseIdent(args[0])
	if err != nil {
		return nil, fmt.Errorf("invalid DUMP syntax: %w", err)
	}
	return &DumpStmt{TableName: name, Path: args[1]}, nil
}

func parseDrop(args []string) (Statement, error) {
	// DROP TABLE t is accepted as well as DROP t.
	if len(args) == 2 && strings.EqualFold(args[0], "TABLE") {
		args = args[1:]
	}
	if len(args) != 1 {
		return nil, fmt.Errorf("invalid DROP syntax: want DROP <table>")
	}
	name, err := parseIdent(args[0])
	if err != nil {
		return nil, fmt.Errorf("invalid DROP syntax: %w", err)
	}
	return &DropStmt{TableName: name}, nil
}

// parseQuery handles: KIND ( operand ... ) FROM table [WHERE ( f op v ) ...]
func parseQuery(kind string, toks []string) (Statement, error) {
	operands, rest, err := parseGroup(toks)
	if err != nil {
		return nil, fmt.Errorf("invalid %s syntax: operands: %w", kind, err)
	}

	if len(rest) < 2 || !strings.EqualFold(rest[0], "FROM") {
		return nil, fmt.Errorf("invalid %s syntax: missing FROM <table>", kind)
	}
	name, err := parseIdent(rest[1])
	if err != nil {
		return nil, fmt.Errorf("invalid %s syntax: %w", kind, err)
	}
	rest = rest[2:]

	stmt := &QueryStmt{Kind: kind, Operands: operands, TableName: name}
	if len(rest) == 0 {
		return stmt, nil
	}
	if !strings.EqualFold(rest[0], "WHERE") {
		return nil, fmt.Errorf("invalid %s syntax: unexpected %q", kind, rest[0])
	}
	rest = rest[1:]
	if len(rest) == 0 {
		return nil, fmt.Errorf("invalid %s syntax: empty WHERE", kind)
	}

	for len(rest) > 0 {
		var group []string
		group, rest, err = parseGroup(rest)
		if err != nil {
			return nil, fmt.Errorf("invalid WHERE clause: %w", err)
		}
		cond, err := parseCond(group)
		if err != nil {
			return nil, err
		}
		stmt.Where = append(stmt.Where, cond)
	}
	return stmt, nil
}

// parseGroup reads "( tok ... )" from the front of toks.
func parseGroup(toks []string) (group, rest []string, err error) {
	if len(toks) == 0 || toks[0] != "(" {
		return nil, nil, fmt.Errorf("expected '('")
	}
	for i := 1; i < len(toks); i++ {
		switch toks[i] {
		case ")":
			return append([]string{}, toks[1:i]...), toks[i+1:], nil
		case "(":
			return nil, nil, fmt.Errorf("nested '('")
		}
	}
	return nil, nil, fmt.Errorf("missing ')'")
}

func parseCond(group []string) (Cond, error) {
	if len(group) != 3 {
		return Cond{}, fmt.Errorf("invalid WHERE clause: want ( <field> <op> <value> ), got %d tokens", len(group))
	}
	field, err := parseIdent(group[0])
	if err != nil {
		return Cond{}, fmt.Errorf("invalid WHERE field: %w", err)
	}
	if !compareOps[group[1]] {
		return Cond{}, fmt.Errorf("invalid WHERE operator %q", group[1])
	}
	return Cond{Field: field, Op: group[1], Value: group[2]}, nil
}

// tokenize splits on whitespace, makes '(' and ')' tokens of their own and
// keeps single-quoted text together (quotes stripped).
func tokenize(s string) ([]string, error) {
	var (
		toks    []string
		cur     strings.Builder
		inQuote bool
		quoted  bool
	)
	flush := func() {
		if cur.Len() > 0 || quoted {
			toks = append(toks, cur.String())
			cur.Reset()
			quoted = false
		}
	}

	for _, r := range s {
		switch {
		case inQuote:
			if r == '\'' {
				inQuote = false
				continue
			}
			cur.WriteRune(r)
		case r == '\'':
			inQuote = true
			quoted = true
		case r == '(' || r == ')':
			flush()
			toks = append(toks, string(r))
		case unicode.IsSpace(r):
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	if inQuote {
		return nil, fmt.Errorf("unterminated quote")
	}
	flush()
	if len(toks) == 0 {
		return nil, fmt.Errorf("empty statement")
	}
	return toks, nil
}
