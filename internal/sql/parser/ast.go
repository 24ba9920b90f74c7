package parser

// Statement is the root interface for all statements.
type Statement interface {
	stmtNode()
}

// ----- catalog statements -----

// LoadStmt reads a table file and registers the table.
type LoadStmt struct {
	Path string
}

func (*LoadStmt) stmtNode() {}

type DropStmt struct {
	TableName string
}

func (*DropStmt) stmtNode() {}

type ListStmt struct{}

func (*ListStmt) stmtNode() {}

type QuitStmt struct{}

func (*QuitStmt) stmtNode() {}

// ----- queries -----

// DumpStmt writes a table to a file. It runs as a reader query.
type DumpStmt struct {
	TableName string
	Path      string
}

func (*DumpStmt) stmtNode() {}

// QueryStmt is the generic "KIND ( operands ) FROM table [WHERE ...]" form.
type QueryStmt struct {
	Kind      string // upper-cased, e.g. "UPDATE"
	Operands  []string
	TableName string
	Where     []Cond
}

func (*QueryStmt) stmtNode() {}

// Cond is one "( field op value )" clause. Clauses are ANDed.
type Cond struct {
	Field string
	Op    string
	Value string
}
