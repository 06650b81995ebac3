package sqlt

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/pkg/errors"
)

// User, Pet and Toy are the tables shared by the tests.
type User struct {
	ID   int    `sqlt:"col:id;pk"`
	Name string `sqlt:"col:name"`
	Age  *int   `sqlt:"col:age"`
	Pets []Pet  `sqlt:"rel"`
}

type Pet struct {
	ID      int    `sqlt:"col:id;pk"`
	OwnerID int    `sqlt:"col:owner_id;index"`
	Name    string `sqlt:"col:name"`
	Toys    []Toy  `sqlt:"rel"`
}

type Toy struct {
	ID    int    `sqlt:"col:id;pk"`
	PetID int    `sqlt:"col:pet_id"`
	Label string `sqlt:"col:label"`
}

var (
	userID      = F(func(u *User) *int { return &u.ID })
	userName    = F(func(u *User) *string { return &u.Name })
	userAge     = F(func(u *User) **int { return &u.Age })
	userPets    = F(func(u *User) *[]Pet { return &u.Pets })
	petID       = F(func(p *Pet) *int { return &p.ID })
	petOwnerID  = F(func(p *Pet) *int { return &p.OwnerID })
	petToys     = F(func(p *Pet) *[]Toy { return &p.Toys })
	toyPetID    = F(func(t *Toy) *int { return &t.PetID })
	userOutside = F(func(u *User) *int {
		v := u.ID
		return &v
	})
)

// MemConfig is an in-memory Configuration. It quotes identifiers with
// double quotes, renders $n placeholders and answers statements with the
// rows registered for their SQL text.
type MemConfig struct {
	Results  map[string][]Row
	Affected int64
	Executed []Statement
	FailOn   string
	Closed   int
}

// NewMemConfig returns an empty MemConfig.
func NewMemConfig() *MemConfig {
	return &MemConfig{Results: make(map[string][]Row)}
}

// On registers the rows returned for sql.
func (c *MemConfig) On(sql string, rows ...Row) *MemConfig {
	c.Results[sql] = rows
	return c
}

// GenDelegate implements Configuration.
func (c *MemConfig) GenDelegate() GenDelegate {
	return &memGen{}
}

// ExeDelegate implements Configuration.
func (c *MemConfig) ExeDelegate(_ context.Context, sql string) (ExeDelegate, error) {
	if c.FailOn != "" && c.FailOn == sql {
		return nil, errors.New("backend unavailable")
	}
	return &memExe{config: c, sql: sql, rows: c.Results[sql]}, nil
}

type memGen struct {
	bindings []any
}

func (g *memGen) Quote(identifier string) (string, error) {
	return `"` + strings.ReplaceAll(identifier, `"`, `""`) + `"`, nil
}

func (g *memGen) Binding(value any) (string, error) {
	switch reflect.ValueOf(value).Kind() {
	case reflect.Func, reflect.Chan, reflect.Map:
		return "", errors.Errorf("unsupported binding %T", value)
	}
	g.bindings = append(g.bindings, value)
	return fmt.Sprintf("$%d", len(g.bindings)), nil
}

func (g *memGen) Bindings() []any {
	return g.bindings
}

func (g *memGen) CreateTableSQL(ts *TableStructure, policy CreatePolicy) ([]string, error) {
	var out []string
	if policy.Has(DropTable) {
		out = append(out, "DROP "+ts.Name)
	}
	cols := make([]string, len(ts.Columns))
	for i, c := range ts.Columns {
		cols[i] = c.Name
	}
	out = append(out, "CREATE "+ts.Name+" ("+strings.Join(cols, ", ")+")")
	if !policy.Has(Shallow) {
		for _, sub := range ts.SubTables {
			stmts, err := g.CreateTableSQL(sub, policy)
			if err != nil {
				return nil, err
			}
			out = append(out, stmts...)
		}
	}
	return out, nil
}

func (g *memGen) CreateIndexSQL(table, column string) ([]string, error) {
	return []string{"INDEX " + table + " (" + column + ")"}, nil
}

type memExe struct {
	config *MemConfig
	sql    string
	rows   []Row
	pos    int
}

func (e *memExe) Bind(bindings []any, skip int) error {
	e.config.Executed = append(e.config.Executed, Statement{SQL: e.sql, Bindings: bindings[skip:]})
	return nil
}

func (e *memExe) HasNext() (bool, error) {
	return e.pos < len(e.rows), nil
}

func (e *memExe) Next() (Row, error) {
	if e.pos >= len(e.rows) {
		return nil, nil
	}
	row := e.rows[e.pos]
	e.pos++
	return row, nil
}

func (e *memExe) Exec() (int64, error) {
	return e.config.Affected, nil
}

func (e *memExe) Close() error {
	e.config.Closed++
	return nil
}

func valuesOf[T any](values ...T) []reflect.Value {
	out := make([]reflect.Value, len(values))
	for i := range values {
		out[i] = reflect.ValueOf(&values[i])
	}
	return out
}
