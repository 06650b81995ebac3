package sqlt

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int {
	return &v
}

func joinedUsers(db *DB) Query[User] {
	q := From[User](db).Where(Gt(userID, 0))
	q = Join(q, userPets, userID, petOwnerID)
	return Join(q, petToys, petID, toyPetID)
}

func TestSelectAssemblesJoins(t *testing.T) {
	db, config := newTestDB(t)
	q := joinedUsers(db)
	statements, err := q.Statements()
	require.NoError(t, err)
	config.On(statements[0].SQL,
		Row{"id": int64(1), "name": "ann", "age": nil},
		Row{"id": int64(2), "name": "bob", "age": int64(30)},
	)
	config.On(statements[1].SQL,
		Row{"id": int64(10), "owner_id": int64(1), "name": "rex"},
		Row{"id": int64(11), "owner_id": int64(2), "name": "tom"},
		Row{"id": int64(12), "owner_id": int64(1), "name": "kit"},
	)
	config.On(statements[2].SQL,
		Row{"id": int64(100), "pet_id": int64(12), "label": "ball"},
		Row{"id": int64(101), "pet_id": int64(10), "label": "bone"},
		Row{"id": int64(102), "pet_id": int64(12), "label": "rope"},
	)

	users, err := q.All(context.Background())
	require.NoError(t, err)
	want := []User{
		{ID: 1, Name: "ann", Pets: []Pet{
			{ID: 10, OwnerID: 1, Name: "rex", Toys: []Toy{{ID: 101, PetID: 10, Label: "bone"}}},
			{ID: 12, OwnerID: 1, Name: "kit", Toys: []Toy{
				{ID: 100, PetID: 12, Label: "ball"},
				{ID: 102, PetID: 12, Label: "rope"},
			}},
		}},
		{ID: 2, Name: "bob", Age: intPtr(30), Pets: []Pet{
			{ID: 11, OwnerID: 2, Name: "tom", Toys: []Toy{}},
		}},
	}
	assert.Equal(t, want, users, spew.Sdump(users))

	require.Len(t, config.Executed, 3)
	for i, st := range config.Executed {
		assert.Equal(t, statements[i].SQL, st.SQL)
		assert.Equal(t, []any{0}, st.Bindings)
	}
	assert.Equal(t, 3, config.Closed)
}

func TestSelectWithoutJoinLeavesRelationNil(t *testing.T) {
	db, config := newTestDB(t)
	q := From[User](db)
	statements, err := q.Statements()
	require.NoError(t, err)
	config.On(statements[0].SQL, Row{"id": int64(1), "name": "ann", "age": nil})

	users, err := q.All(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Nil(t, users[0].Pets)
}

func TestSelectJoinWithoutChildren(t *testing.T) {
	db, config := newTestDB(t)
	q := Join(From[User](db), userPets, userID, petOwnerID)
	statements, err := q.Statements()
	require.NoError(t, err)
	config.On(statements[0].SQL, Row{"id": int64(1), "name": "ann", "age": nil})

	users, err := q.All(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.NotNil(t, users[0].Pets)
	assert.Empty(t, users[0].Pets)
}

func TestCursorRowDecodeError(t *testing.T) {
	db, config := newTestDB(t)
	q := From[User](db)
	statements, err := q.Statements()
	require.NoError(t, err)
	config.On(statements[0].SQL,
		Row{"id": "not a number", "name": "ann", "age": nil},
		Row{"id": int64(2), "name": nil, "age": nil},
		Row{"id": int64(3), "age": nil},
		Row{"id": int64(4), "name": "dan", "age": nil},
	)

	c, err := q.Select(context.Background())
	require.NoError(t, err)
	defer c.Close()
	var decoded []int
	var failures int
	for c.Next() {
		u, err := c.Decode()
		if err != nil {
			assert.True(t, errors.Is(err, ErrRowDecode), "%v", err)
			failures++
			continue
		}
		decoded = append(decoded, u.ID)
	}
	require.NoError(t, c.Err())
	assert.Equal(t, 3, failures)
	assert.Equal(t, []int{4}, decoded)

	_, err = c.Decode()
	assert.True(t, errors.Is(err, ErrRowDecode))
}

func TestExecuteErrors(t *testing.T) {
	ctx := context.Background()
	db, config := newTestDB(t)

	_, err := execute[User](ctx, db, newGenState(config, cmdSelect), nil)
	assert.True(t, errors.Is(err, ErrExecution), "no statements: %v", err)

	q := joinedUsers(db)
	statements, err := q.Statements()
	require.NoError(t, err)
	config.FailOn = statements[2].SQL
	_, err = q.Select(ctx)
	assert.True(t, errors.Is(err, ErrExecution), "backend failure: %v", err)
	assert.Equal(t, 2, config.Closed, "master and first join are closed")

	config.FailOn = ""
	config.On(statements[1].SQL, Row{"id": int64(10), "name": "rex"})
	_, err = q.Select(ctx)
	assert.True(t, errors.Is(err, ErrRowDecode), "child row without key column: %v", err)
}

func TestExecuteUnresolvedJoinKey(t *testing.T) {
	s := newTestState(t, cmdSelect)
	require.NoError(t, s.addJoin(userPets, userID, petOwnerID))
	_, err := s.generate()
	require.NoError(t, err)
	s.tables[1].join.onKey = userOutside

	db, err := New(s.config)
	require.NoError(t, err)
	_, err = execute[User](context.Background(), db, s, nil)
	assert.True(t, errors.Is(err, ErrExecution), "%v", err)
}

type account struct {
	ID    uuid.UUID `sqlt:"col:id;pk"`
	Email string    `sqlt:"col:email"`
	Keys  []apiKey  `sqlt:"rel"`
}

type apiKey struct {
	AccountID uuid.UUID `sqlt:"col:account_id"`
	Token     string    `sqlt:"col:token"`
}

func TestSelectJoinUUIDKeys(t *testing.T) {
	db, config := newTestDB(t)
	accountID := F(func(a *account) *uuid.UUID { return &a.ID })
	accountKeys := F(func(a *account) *[]apiKey { return &a.Keys })
	keyAccountID := F(func(k *apiKey) *uuid.UUID { return &k.AccountID })

	first, second := uuid.New(), uuid.New()
	q := Join(From[account](db), accountKeys, accountID, keyAccountID)
	statements, err := q.Statements()
	require.NoError(t, err)
	config.On(statements[0].SQL,
		Row{"id": first.String(), "email": "a@example.com"},
		Row{"id": []byte(second.String()), "email": "b@example.com"},
	)
	config.On(statements[1].SQL,
		Row{"account_id": second.String(), "token": "t1"},
		Row{"account_id": first.String(), "token": "t2"},
		Row{"account_id": second.String(), "token": "t3"},
	)

	accounts, err := q.All(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, []apiKey{{AccountID: first, Token: "t2"}}, accounts[0].Keys)
	assert.Equal(t, []apiKey{{AccountID: second, Token: "t1"}, {AccountID: second, Token: "t3"}}, accounts[1].Keys)
}

type dept struct {
	ID    int           `sqlt:"col:id;pk"`
	Code  sql.NullInt64 `sqlt:"col:code"`
	Staff []staff       `sqlt:"rel"`
}

type staff struct {
	ID   int           `sqlt:"col:id;pk"`
	Code sql.NullInt64 `sqlt:"col:code"`
}

func TestSelectJoinNullValuerKeys(t *testing.T) {
	db, config := newTestDB(t)
	deptCode := F(func(d *dept) *sql.NullInt64 { return &d.Code })
	deptStaff := F(func(d *dept) *[]staff { return &d.Staff })
	staffCode := F(func(s *staff) *sql.NullInt64 { return &s.Code })

	q := Join(From[dept](db), deptStaff, deptCode, staffCode)
	statements, err := q.Statements()
	require.NoError(t, err)
	config.On(statements[0].SQL,
		Row{"id": int64(1), "code": nil},
		Row{"id": int64(2), "code": int64(5)},
	)
	config.On(statements[1].SQL,
		Row{"id": int64(7), "code": nil},
		Row{"id": int64(8), "code": int64(5)},
	)

	depts, err := q.All(context.Background())
	require.NoError(t, err)
	require.Len(t, depts, 2)
	assert.Equal(t, []staff{}, depts[0].Staff, spew.Sdump(depts))
	assert.Equal(t, []staff{{ID: 8, Code: sql.NullInt64{Int64: 5, Valid: true}}}, depts[1].Staff)
}

func TestCommands(t *testing.T) {
	ctx := context.Background()
	db, config := newTestDB(t)
	config.Affected = 2

	config.On(`SELECT COUNT(*) AS "count" FROM "User" AS "t0" WHERE "t0"."name" = $1`, Row{"count": int64(7)})
	n, err := From[User](db).Where(Eq(userName, "ann")).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)

	_, err = joinedUsers(db).Count(ctx)
	assert.True(t, errors.Is(err, ErrSQLGen))

	config.On(`SELECT "t0"."id", "t0"."name", "t0"."age" FROM "User" AS "t0" ORDER BY "t0"."id" LIMIT 1 OFFSET 3`,
		Row{"id": int64(4), "name": "dan", "age": nil},
	)
	u, err := From[User](db).OrderBy(userID).Limit(10, 3).First(ctx)
	require.NoError(t, err)
	assert.Equal(t, User{ID: 4, Name: "dan"}, u)

	_, err = From[User](db).Where(Eq(userID, 99)).First(ctx)
	assert.True(t, errors.Is(err, ErrNoRows))

	affected, err := From[User](db).Where(Eq(userID, 1)).Delete(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)

	affected, err = From[User](db).Where(Eq(userID, 1)).Update(ctx, User{Name: "eve"}, userName)
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)

	affected, err = Insert(ctx, db, User{ID: 5, Name: "fay"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)

	executed := config.Executed[len(config.Executed)-3:]
	assert.Equal(t, Statement{SQL: `DELETE FROM "User" WHERE "id" = $1`, Bindings: []any{1}}, executed[0])
	assert.Equal(t, Statement{SQL: `UPDATE "User" SET "name" = $1 WHERE "id" = $2`, Bindings: []any{"eve", 1}}, executed[1])
	assert.Equal(t, `INSERT INTO "User" ("id", "name", "age") VALUES ($1, $2, $3)`, executed[2].SQL)
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	db, config := newTestDB(t)

	require.NoError(t, Create[User](ctx, db, DropTable))
	require.NoError(t, Create[User](ctx, db, Shallow))
	require.NoError(t, CreateIndex(ctx, db, petOwnerID))

	var sqls []string
	for _, st := range config.Executed {
		sqls = append(sqls, st.SQL)
	}
	assert.Equal(t, []string{
		"DROP User",
		"CREATE User (id, name, age)",
		"DROP Pet",
		"CREATE Pet (id, owner_id, name)",
		"DROP Toy",
		"CREATE Toy (id, pet_id, label)",
		"CREATE User (id, name, age)",
		"INDEX Pet (owner_id)",
	}, sqls)

	err := CreateIndex(ctx, db, userPets)
	assert.True(t, errors.Is(err, ErrSQLGen), "%v", err)
}

type nilGenConfig struct{ *MemConfig }

func (nilGenConfig) GenDelegate() GenDelegate { return nil }

func TestCreateIndexNilGenDelegate(t *testing.T) {
	config := nilGenConfig{NewMemConfig()}
	db, err := New(config)
	require.NoError(t, err)

	err = CreateIndex(context.Background(), db, petOwnerID)
	assert.True(t, errors.Is(err, ErrSQLGen), "%v", err)
	assert.Empty(t, config.Executed)
}

func TestDebugLogging(t *testing.T) {
	var buf bytes.Buffer
	config := NewMemConfig()
	handler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	db, err := New(config, WithDebug(), WithLogger(slog.New(handler)))
	require.NoError(t, err)

	_, err = From[User](db).Where(Eq(userName, "ann")).All(context.Background())
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "level=DEBUG msg=\"sqlt query\"")
	assert.Contains(t, out, "op=select")
	assert.Contains(t, out, "level=DEBUG msg=\"sqlt query done\"")
}

func TestDebugLoggingQuietAtInfo(t *testing.T) {
	var buf bytes.Buffer
	db, err := New(NewMemConfig(), WithDebug(), WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))
	require.NoError(t, err)

	_, err = From[User](db).All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, buf.String())
}

func TestNew(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)

	var q Query[User]
	_, err = q.All(context.Background())
	assert.True(t, errors.Is(err, ErrSQLGen))
}
