package table

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// columnWidth is the fixed width of every dumped column.
const columnWidth = 10

// Load reads one table from r.
//
// Format:
//
//	<name> <field count including KEY>
//	KEY <field> ...
//	<key> <value> ...
//
// Rows are read until a blank line or EOF. source only decorates errors.
func Load(r io.Reader, source string) (*Table, error) {
	sc := bufio.NewScanner(r)

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, errors.Wrapf(err, "load %q", source)
		}
		return nil, &LoadError{Source: source, Line: 1, Err: ErrLoadMetadata}
	}
	meta := strings.Fields(sc.Text())
	if len(meta) != 2 {
		return nil, &LoadError{Source: source, Line: 1, Err: ErrLoadMetadata}
	}
	name := meta[0]
	count, err := strconv.Atoi(meta[1])
	if err != nil || count < 1 {
		return nil, &LoadError{Source: source, Line: 1, Err: ErrLoadMetadata}
	}

	if !sc.Scan() {
		return nil, &LoadError{Source: source, Line: 2, Err: ErrLoadFields}
	}
	fields := strings.Fields(sc.Text())
	if len(fields) != count {
		return nil, &LoadError{Source: source, Line: 2, Err: ErrLoadFields}
	}
	if fields[0] != KeyField {
		return nil, &LoadError{Source: source, Line: 2, Err: ErrLoadMissingKey}
	}

	t, err := New(name, fields[1:])
	if err != nil {
		return nil, &LoadError{Source: source, Line: 2, Err: errors.Wrap(ErrLoadFields, err.Error())}
	}

	line := 2
	values := make([]int, count-1)
	for sc.Scan() {
		line++
		toks := strings.Fields(sc.Text())
		if len(toks) == 0 {
			break
		}
		if len(toks) != count {
			return nil, &LoadError{Source: source, Line: line, Err: ErrLoadRowArity}
		}
		for i, tok := range toks[1:] {
			v, err := strconv.Atoi(tok)
			if err != nil {
				return nil, &LoadError{Source: source, Line: line, Err: errors.Wrapf(ErrLoadValue, "%q", tok)}
			}
			values[i] = v
		}
		if err := t.Insert(toks[0], values); err != nil {
			return nil, &LoadError{Source: source, Line: line, Err: err}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrapf(err, "load %q", source)
	}
	return t, nil
}

// Dump writes t in the format Load reads, with fixed-width columns.
func Dump(w io.Writer, t View) error {
	bw := bufio.NewWriter(w)
	fields := t.Fields()

	fmt.Fprintf(bw, "%s\t%d\n", t.Name(), len(fields)+1)
	writeColumns(bw, append([]string{KeyField}, fields...))

	cols := make([]string, len(fields)+1)
	err := t.Scan(func(_ int, row Row) error {
		cols[0] = row.Key
		for i, v := range row.Values {
			cols[i+1] = strconv.Itoa(v)
		}
		writeColumns(bw, cols)
		return nil
	})
	if err != nil {
		return err
	}
	return bw.Flush()
}

func writeColumns(w io.Writer, cols []string) {
	for i, c := range cols {
		if i > 0 {
			fmt.Fprint(w, " ")
		}
		fmt.Fprintf(w, "%*s", columnWidth, c)
	}
	fmt.Fprintln(w)
}
