package sqldb_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	sqlfdialect "github.com/qjebbs/go-sqlf/v4/dialect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qjebbs/go-sqlt"
	"github.com/qjebbs/go-sqlt/dialect"
	"github.com/qjebbs/go-sqlt/sqldb"
)

func TestParseSettings(t *testing.T) {
	s, err := sqldb.ParseSettings([]byte("driver: postgres\ndsn: postgres://localhost/app\ndebug: true\n"))
	require.NoError(t, err)
	assert.Equal(t, &sqldb.Settings{
		Driver: "postgres",
		DSN:    "postgres://localhost/app",
		Debug:  true,
	}, s)
	d, err := s.ResolveDialect()
	require.NoError(t, err)
	assert.Equal(t, dialect.PostgreSQL{}, d)

	_, err = sqldb.ParseSettings([]byte("dsn: x\n"))
	assert.Error(t, err)

	s = &sqldb.Settings{Driver: "odbc"}
	_, err = s.ResolveDialect()
	assert.ErrorIs(t, err, sqldb.ErrUnknownDialect)
}

func TestSettingsBindVar(t *testing.T) {
	s, err := sqldb.ParseSettings([]byte("driver: sqlite3\ndsn: x.db\nbind_var: dollar\n"))
	require.NoError(t, err)
	assert.Equal(t, "dollar", s.BindVar)
	d, err := s.ResolveDialect()
	require.NoError(t, err)
	assert.Equal(t, sqlfdialect.BindVarStyleDollarNumbered, d.BindVarStyle())
	p, err := dialect.NewGenerator(d).Binding(1)
	require.NoError(t, err)
	assert.Equal(t, "$1", p)

	s.BindVar = "percent"
	_, err = s.ResolveDialect()
	assert.Error(t, err)
}

func TestOpenFromSettingsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "db.yaml")
	content := "driver: sqlite3\ndsn: " + filepath.Join(dir, "app.db") + "\ndialect: sqlite\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	s, err := sqldb.LoadSettings(path)
	require.NoError(t, err)
	db, conn, err := sqldb.Open(s)
	require.NoError(t, err)
	defer conn.Close()

	seed(t, db)
	n, err := sqlt.From[member](db).Count(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	_, err = sqldb.LoadSettings(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
