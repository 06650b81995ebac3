package sqlt

import (
	"log/slog"

	"github.com/pkg/errors"
)

// DB binds a Configuration with query options.
type DB struct {
	config Configuration
	opts   *Options
}

// Options defines options for a DB.
type Options struct {
	debug  bool
	logger *slog.Logger
}

// Option defines a function type for setting Options.
type Option func(*Options)

// WithDebug logs every generated statement with its bindings at
// slog.LevelDebug. Failed commands are logged at slog.LevelError.
func WithDebug() Option {
	return func(o *Options) {
		o.debug = true
	}
}

// WithLogger sets the logger of debug records. It defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.logger = logger
	}
}

func mergeOptions(opts ...Option) *Options {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}
	return options
}

// New returns a DB using config.
func New(config Configuration, opts ...Option) (*DB, error) {
	if config == nil {
		return nil, errors.New("sqlt: nil configuration")
	}
	return &DB{
		config: config,
		opts:   mergeOptions(opts...),
	}, nil
}

// Configuration returns the configuration of db.
func (db *DB) Configuration() Configuration {
	return db.config
}
