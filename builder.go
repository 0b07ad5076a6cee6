package dbop

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Querier is implemented by anything that renders to command text and
// driver arguments.
type Querier interface {
	Query() (string, []any)
}

// A Statement is generated command text with the parameters its placeholders
// refer to. Statements are built per call and never cached.
type Statement struct {
	Text   string
	Params []Param
}

// Query returns the text and the parameters as database/sql named arguments.
func (s *Statement) Query() (string, []any) {
	return s.Text, NamedArgs(s.Params)
}

// Param looks up a parameter by its placeholder name, e.g. "@Id".
func (s *Statement) Param(name string) (Param, bool) {
	for _, p := range s.Params {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

func (s *Statement) String() string {
	return s.Text
}

// Builder accumulates command text and parameters. Identifiers are written
// verbatim: they come from compiled model types, never from input values.
type Builder struct {
	sb      *strings.Builder
	dialect Dialect
	params  []Param
	errs    []error
}

func (b *Builder) Ident(s string) *Builder {
	return b.WriteString(s)
}

// IdentComma writes identifiers separated by bare commas.
func (b *Builder) IdentComma(s ...string) *Builder {
	for i := range s {
		if i > 0 {
			b.WriteByte(',')
		}
		b.Ident(s[i])
	}
	return b
}

// Placeholder writes @name without binding a value.
func (b *Builder) Placeholder(name string) *Builder {
	return b.WriteString(placeholder(name))
}

// Arg writes @name and binds v to it.
func (b *Builder) Arg(name string, v any) *Builder {
	return b.Bind(Param{Name: placeholder(name), Value: v}).Placeholder(name)
}

// Bind appends parameters whose placeholders were written separately.
// A name is bound once; later parameters with the same name are dropped,
// so an UPDATE whose WHERE reuses a SET placeholder declares it once.
func (b *Builder) Bind(params ...Param) *Builder {
	for _, p := range params {
		if !b.bound(p.Name) {
			b.params = append(b.params, p)
		}
	}
	return b
}

func (b *Builder) bound(name string) bool {
	for i := range b.params {
		if b.params[i].Name == name {
			return true
		}
	}
	return false
}

func (b *Builder) Comma() *Builder {
	return b.WriteString(", ")
}

func (b *Builder) Pad() *Builder {
	return b.WriteByte(' ')
}

func (b *Builder) WriteString(s string) *Builder {
	if b.sb == nil {
		b.sb = &strings.Builder{}
	}
	b.sb.WriteString(s)
	return b
}

func (b *Builder) WriteByte(c byte) *Builder {
	if b.sb == nil {
		b.sb = &strings.Builder{}
	}
	b.sb.WriteByte(c)
	return b
}

func (b *Builder) String() string {
	if b.sb == nil {
		return ""
	}
	return b.sb.String()
}

// An Op represents a predicate operator.
type Op int

const (
	OpEQ Op = iota // =
	OpLT           // <
	OpGT           // >
)

var ops = [...]string{
	OpEQ: "=",
	OpLT: "<",
	OpGT: ">",
}

// WriteOp writes op. Equality is written tight (a=@a), comparisons padded
// (a < @aMAX).
func (b *Builder) WriteOp(op Op) *Builder {
	switch op {
	case OpEQ:
		b.WriteString(ops[op])
	case OpLT, OpGT:
		b.Pad().WriteString(ops[op]).Pad()
	default:
		panic(fmt.Sprintf("invalid op %d", op))
	}
	return b
}

// Select writes the SELECT keyword followed by TOP n for dialects that limit
// rows that way.
func (b *Builder) Select(top int) *Builder {
	b.WriteString("SELECT ")
	if top > 0 && b.dialect.top() {
		b.WriteString("TOP ").WriteString(strconv.Itoa(top)).Pad()
	}
	return b
}

// Limit appends LIMIT n for dialects without TOP.
func (b *Builder) Limit(top int) *Builder {
	if top > 0 && !b.dialect.top() {
		b.WriteString(" LIMIT ").WriteString(strconv.Itoa(top))
	}
	return b
}

// Join writes fragments separated by sep.
func (b *Builder) Join(frags []string, sep string) *Builder {
	return b.WriteString(strings.Join(frags, sep))
}

func (b *Builder) AddError(err error) *Builder {
	if err != nil {
		b.errs = append(b.errs, err)
	}
	return b
}

func (b *Builder) Err() error {
	switch len(b.errs) {
	case 0:
		return nil
	case 1:
		return b.errs[0]
	}
	return errors.Join(b.errs...)
}

func (b *Builder) Dialect() Dialect {
	return b.dialect
}

// Statement returns the accumulated text and parameters, or the first
// recorded error.
func (b *Builder) Statement() (*Statement, error) {
	if err := b.Err(); err != nil {
		return nil, err
	}
	return &Statement{Text: b.String(), Params: b.params}, nil
}

// Query implements Querier.
func (b *Builder) Query() (string, []any) {
	return b.String(), NamedArgs(b.params)
}
