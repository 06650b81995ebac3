package sqldb

import "github.com/pkg/errors"

var (
	// ErrNilDB is returned when the provided database handle is nil.
	ErrNilDB = errors.New("db is nil")
	// ErrUnknownDialect is returned when a dialect name is not recognized.
	ErrUnknownDialect = errors.New("unknown dialect")
)
