package engine

import "github.com/pkg/errors"

var (
	ErrDuplicateTableName = errors.New("novatable: duplicate table name")
	ErrTableNotFound      = errors.New("novatable: table not found")
	ErrClosed             = errors.New("novatable: catalog is closed")
)
