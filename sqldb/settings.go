package sqldb

import (
	"database/sql"
	"os"

	"github.com/pkg/errors"
	sqlfdialect "github.com/qjebbs/go-sqlf/v4/dialect"
	"gopkg.in/yaml.v3"

	"github.com/qjebbs/go-sqlt"
	"github.com/qjebbs/go-sqlt/dialect"
)

// Settings describes a database connection.
//
//	driver: sqlite3
//	dsn: file:app.db
//	dialect: sqlite
//	bind_var: question_numbered
//	debug: true
type Settings struct {
	// Driver is the registered database/sql driver name.
	Driver string `yaml:"driver"`
	// DSN is the data source name passed to the driver.
	DSN string `yaml:"dsn"`
	// Dialect names the SQL dialect. It defaults to Driver.
	Dialect string `yaml:"dialect,omitempty"`
	// BindVar overrides the bind variable style of the dialect: "question",
	// "dollar", "question_numbered", "colon_numbered", "colon_named" or
	// "at_named".
	BindVar string `yaml:"bind_var,omitempty"`
	// Debug logs every statement.
	Debug bool `yaml:"debug,omitempty"`
}

// ParseSettings decodes YAML settings.
func ParseSettings(data []byte) (*Settings, error) {
	s := &Settings{}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, errors.Wrap(err, "parse settings")
	}
	if s.Driver == "" {
		return nil, errors.New("settings: driver is required")
	}
	return s, nil
}

// LoadSettings reads YAML settings from a file.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "load settings")
	}
	return ParseSettings(data)
}

// ResolveDialect returns the dialect of s.
func (s *Settings) ResolveDialect() (dialect.Dialect, error) {
	name := s.Dialect
	if name == "" {
		name = s.Driver
	}
	style, ok := bindVarStyles[s.BindVar]
	if !ok {
		return nil, errors.Errorf("settings: unknown bind_var %q", s.BindVar)
	}
	base, ok := dialect.Base(name, style)
	if !ok {
		return nil, errors.Wrapf(ErrUnknownDialect, "%q", name)
	}
	d, err := dialect.Upgrade(base)
	if err != nil {
		return nil, errors.WithMessage(ErrUnknownDialect, err.Error())
	}
	return d, nil
}

var bindVarStyles = map[string]sqlfdialect.BindVarStyle{
	"":                  sqlfdialect.BindVarStyleDefault,
	"question":          sqlfdialect.BindVarStyleQuestion,
	"dollar":            sqlfdialect.BindVarStyleDollarNumbered,
	"question_numbered": sqlfdialect.BindVarStyleQuestionNumbered,
	"colon_numbered":    sqlfdialect.BindVarStyleColonNumbered,
	"colon_named":       sqlfdialect.BindVarStyleColonNamed,
	"at_named":          sqlfdialect.BindVarStyleAtNamed,
}

// Open opens the database of s. The caller closes the returned *sql.DB.
func Open(s *Settings, opts ...sqlt.Option) (*sqlt.DB, *sql.DB, error) {
	d, err := s.ResolveDialect()
	if err != nil {
		return nil, nil, err
	}
	conn, err := sql.Open(s.Driver, s.DSN)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "open %s", s.Driver)
	}
	if s.Debug {
		opts = append([]sqlt.Option{sqlt.WithDebug()}, opts...)
	}
	db, err := New(conn, d, opts...)
	if err != nil {
		conn.Close()
		return nil, nil, err
	}
	return db, conn, nil
}
