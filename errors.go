package sqlt

import (
	"database/sql"
	"fmt"

	"github.com/pkg/errors"
)

// ErrCode classifies an Err. Prefer comparing with the blank Err
// variables through errors.Is.
type ErrCode string

// Error codes.
const (
	ErrCodeUnknown    ErrCode = ""
	ErrCodeResolution ErrCode = "ErrResolution"
	ErrCodeSQLGen     ErrCode = "ErrSQLGen"
	ErrCodeExecution  ErrCode = "ErrExecution"
	ErrCodeRowDecode  ErrCode = "ErrRowDecode"
	ErrCodeNoRows     ErrCode = "ErrNoRows"
)

// Blank errors for use with errors.Is:
//
//	if errors.Is(err, sqlt.ErrResolution) {
//		// the accessor does not reference a tagged field
//	}
//
// Errors returned by this package carry details and cannot be compared
// with ==. errors.Is matches them by Code.
var (
	ErrResolution = Err{Code: ErrCodeResolution, Cause: errors.New("field accessor cannot be resolved")}
	ErrSQLGen     = Err{Code: ErrCodeSQLGen, Cause: errors.New("SQL generation failed")}
	ErrExecution  = Err{Code: ErrCodeExecution, Cause: errors.New("execution failed")}
	ErrRowDecode  = Err{Code: ErrCodeRowDecode, Cause: errors.New("row decoding failed")}
	ErrNoRows     = Err{Code: ErrCodeNoRows, Cause: sql.ErrNoRows}
)

// Err describes an error returned by sqlt.
type Err struct {
	Code  ErrCode
	While string
	Cause error
}

// Error implements error.
func (e Err) Error() string {
	msg := "sqlt"
	if e.Code != ErrCodeUnknown {
		msg += fmt.Sprintf(" %s", e.Code)
	}
	if e.While != "" {
		msg += fmt.Sprintf(" while %s", e.While)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Is reports whether other is an Err of the same code, or matches the cause.
func (e Err) Is(other error) bool {
	if err, ok := other.(Err); ok {
		return err.Code == e.Code
	}
	return e.Cause != nil && errors.Is(e.Cause, other)
}

// Unwrap returns the cause.
func (e Err) Unwrap() error {
	return e.Cause
}

func (e Err) while(while string) Err {
	e.While = while
	return e
}

func (e Err) because(cause error) Err {
	e.Cause = cause
	return e
}

func (e Err) becausef(format string, args ...any) Err {
	e.Cause = errors.Errorf(format, args...)
	return e
}

// whileErr sets the While of an Err that has none.
func whileErr(err error, while string) error {
	if e, ok := err.(Err); ok && e.While == "" {
		return e.while(while)
	}
	return err
}
