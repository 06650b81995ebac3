package sqlt

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) (*DB, *MemConfig) {
	t.Helper()
	config := NewMemConfig()
	db, err := New(config)
	require.NoError(t, err)
	return db, config
}

func formatStatements(statements ...Statement) []byte {
	var b strings.Builder
	for i, st := range statements {
		fmt.Fprintf(&b, "-- %d\n%s\n-- bindings: %v\n", i, st.SQL, st.Bindings)
	}
	return []byte(b.String())
}

func assertGolden(t *testing.T, name string, statements ...Statement) {
	t.Helper()
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, formatStatements(statements...))
}

func TestGenerateSelectRoot(t *testing.T) {
	db, _ := newTestDB(t)
	q := From[User](db).
		Where(Or(
			And(Eq(userID, 1), Like(userName, "a%")),
			In(userID, 4, 5),
			Not(IsNotNull(userAge)),
		)).
		Where(NotIn(userID)).
		OrderBy(userName).
		OrderByDesc(userID).
		Limit(10, 0)
	statements, err := q.Statements()
	require.NoError(t, err)
	assertGolden(t, "select_root", statements...)
}

func TestGenerateSkipWithoutMaximum(t *testing.T) {
	db, _ := newTestDB(t)
	skipOnly, err := From[User](db).Limit(0, 2).Statements()
	require.NoError(t, err)
	none, err := From[User](db).Limit(0, 0).Statements()
	require.NoError(t, err)
	assertGolden(t, "select_skip", append(skipOnly, none...)...)
}

func TestGenerateSelectJoin(t *testing.T) {
	db, _ := newTestDB(t)
	q := From[User](db).Where(Eq(userName, "bob"))
	q = Join(q, userPets, userID, petOwnerID)
	q = Join(q, petToys, petID, toyPetID)
	statements, err := q.Statements()
	require.NoError(t, err)
	assertGolden(t, "select_join", statements...)
}

func TestGenerateWrites(t *testing.T) {
	db, _ := newTestDB(t)
	var statements []Statement

	s, err := From[User](db).Where(Eq(userName, "bob")).state(cmdDelete)
	require.NoError(t, err)
	st, err := s.deleteSQL()
	require.NoError(t, err)
	statements = append(statements, st)

	byID := From[User](db).Where(Eq(userID, 1))
	for _, columns := range [][]accessor{nil, {userName}} {
		s, err = byID.state(cmdUpdate)
		require.NoError(t, err)
		s.values = valuesOf(User{ID: 1, Name: "ann"})
		s.columns = columns
		st, err = s.updateSQL()
		require.NoError(t, err)
		statements = append(statements, st)
	}

	s, err = From[User](db).state(cmdInsert)
	require.NoError(t, err)
	s.values = valuesOf(User{ID: 1, Name: "ann"}, User{ID: 2, Name: "bob"})
	st, err = s.insertSQL()
	require.NoError(t, err)
	statements = append(statements, st)

	assertGolden(t, "writes", statements...)
}

func TestGenerateWriteErrors(t *testing.T) {
	db, _ := newTestDB(t)

	s, err := From[User](db).Limit(1, 0).state(cmdDelete)
	require.NoError(t, err)
	_, err = s.deleteSQL()
	assert.True(t, errors.Is(err, ErrSQLGen), "limit on delete: %v", err)

	s, err = From[User](db).state(cmdInsert)
	require.NoError(t, err)
	_, err = s.insertSQL()
	assert.True(t, errors.Is(err, ErrSQLGen), "empty insert: %v", err)

	s, err = From[User](db).state(cmdUpdate)
	require.NoError(t, err)
	s.values = valuesOf(User{})
	s.columns = []accessor{userPets}
	_, err = s.updateSQL()
	assert.True(t, errors.Is(err, ErrSQLGen), "update of a relation: %v", err)

	s, err = From[User](db).Where(Eq(userName, "x")).state(cmdInsert)
	require.NoError(t, err)
	s.values = valuesOf(User{})
	_, err = s.insertSQL()
	assert.True(t, errors.Is(err, ErrSQLGen), "where on insert: %v", err)
}

func TestGenerateUnsupportedBinding(t *testing.T) {
	db, _ := newTestDB(t)
	type withMap struct {
		ID    int            `sqlt:"col:id"`
		Attrs map[string]int `sqlt:"col:attrs"`
	}
	attrs := F(func(w *withMap) *map[string]int { return &w.Attrs })
	_, err := From[withMap](db).Where(Eq(attrs, map[string]int{})).Statements()
	assert.True(t, errors.Is(err, ErrSQLGen), "%v", err)
}
