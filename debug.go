package sqlt

import (
	"context"
	"log/slog"
	"time"
)

type debugger struct {
	logger *slog.Logger
	name   string
	start  time.Time
}

func (db *DB) newDebugger(name string) *debugger {
	if !db.opts.debug {
		return nil
	}
	return &debugger{
		logger: db.opts.logger,
		name:   name,
		start:  time.Now(),
	}
}

func (d *debugger) onQuery(ctx context.Context, index int, st Statement) {
	if d == nil {
		return
	}
	d.logger.LogAttrs(ctx, slog.LevelDebug, "sqlt query",
		slog.String("op", d.name),
		slog.Int("statement", index),
		slog.String("sql", st.SQL),
		slog.Any("bindings", st.Bindings),
	)
}

func (d *debugger) onDone(ctx context.Context, err error) {
	if d == nil {
		return
	}
	attrs := []slog.Attr{
		slog.String("op", d.name),
		slog.Duration("elapsed", time.Since(d.start)),
	}
	if err != nil {
		d.logger.LogAttrs(ctx, slog.LevelError, "sqlt query failed", append(attrs, slog.String("error", err.Error()))...)
		return
	}
	d.logger.LogAttrs(ctx, slog.LevelDebug, "sqlt query done", attrs...)
}
