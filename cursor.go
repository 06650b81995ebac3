package sqlt

import (
	"context"
	"reflect"
)

// Cursor iterates the root rows of a query.
//
//	c, err := q.Select(ctx)
//	if err != nil {
//		return err
//	}
//	defer c.Close()
//	for c.Next() {
//		user, err := c.Decode()
//		...
//	}
//	return c.Err()
type Cursor[T any] struct {
	ctx    context.Context
	master ExeDelegate
	asm    *assembler
	dbg    *debugger

	row  Row
	err  error
	done bool
}

// Next advances to the next row. It returns false when the rows are
// exhausted or reading failed, see Err.
func (c *Cursor[T]) Next() bool {
	c.row = nil
	if c.done {
		return false
	}
	ok, err := c.master.HasNext()
	if err != nil {
		c.finish(ErrExecution.while("reading rows").because(err))
		return false
	}
	if !ok {
		c.finish(nil)
		return false
	}
	row, err := c.master.Next()
	if err != nil {
		c.finish(ErrExecution.while("reading rows").because(err))
		return false
	}
	if row == nil {
		c.finish(nil)
		return false
	}
	c.row = row
	return true
}

// Row returns the current raw row.
func (c *Cursor[T]) Row() Row {
	return c.row
}

// Decode decodes the current row, filling relation fields from the joined
// rows. A failure concerns the current row only; the cursor can advance.
func (c *Cursor[T]) Decode() (T, error) {
	var zero T
	if c.row == nil {
		return zero, ErrRowDecode.while("decoding row").becausef("no current row")
	}
	dst := reflect.New(c.asm.root.info.Type)
	if err := c.asm.decode(c.row, dst); err != nil {
		return zero, err
	}
	return *dst.Interface().(*T), nil
}

// Err returns the error that stopped the iteration, if any.
func (c *Cursor[T]) Err() error {
	return c.err
}

// Close releases the rows of the cursor. It is safe to call more than once.
func (c *Cursor[T]) Close() error {
	if c.done {
		return nil
	}
	c.done = true
	c.row = nil
	err := closeDelegate(c.master)
	c.dbg.onDone(c.ctx, err)
	if err != nil {
		return ErrExecution.while("closing rows").because(err)
	}
	return nil
}

func (c *Cursor[T]) finish(err error) {
	c.err = err
	c.done = true
	closeErr := closeDelegate(c.master)
	if c.err == nil && closeErr != nil {
		c.err = ErrExecution.while("closing rows").because(closeErr)
	}
	c.dbg.onDone(c.ctx, c.err)
}

// All decodes the remaining rows and closes the cursor.
func (c *Cursor[T]) All() ([]T, error) {
	defer c.Close()
	var out []T
	for c.Next() {
		v, err := c.Decode()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := c.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
