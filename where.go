package dbop

// A Predicate selects rows for UPDATE, DELETE and SELECT statements. It is
// either an Equal or a Range, never both.
type Predicate interface {
	predicate()
}

// Equal matches rows whose named columns equal the model's current values.
type Equal []string

// Range matches rows whose columns fall inside open bounds.
type Range []Bound

func (Equal) predicate() {}
func (Range) predicate() {}

// A Bound constrains one column. Max and Min are each optional; a nil value
// or nil pointer leaves that side open.
type Bound struct {
	Field string
	Max   any
	Min   any
}

// Below bounds field from above.
func Below(field string, max any) Bound {
	return Bound{Field: field, Max: max}
}

// Above bounds field from below.
func Above(field string, min any) Bound {
	return Bound{Field: field, Min: min}
}

// Between bounds field on both sides.
func Between(field string, min, max any) Bound {
	return Bound{Field: field, Max: max, Min: min}
}

// Match builds a predicate from an equality list and a range list of which
// exactly one must be non-empty.
func Match(keys []string, ranges []Bound) (Predicate, error) {
	switch {
	case len(keys) > 0 && len(ranges) > 0:
		return nil, conflictErr("where", "equality keys and range bounds can't be supplied together")
	case len(keys) > 0:
		return Equal(keys), nil
	case len(ranges) > 0:
		return Range(ranges), nil
	}
	return nil, conflictErr("where", "either equality keys or range bounds must be supplied")
}

// Where returns the WHERE clause (without the keyword) that pred builds over
// model, with its parameters.
func Where(model any, pred Predicate) (*Statement, error) {
	fields, err := Fields(model)
	if err != nil {
		return nil, err
	}
	b := &Builder{}
	b.where(fields, pred)
	return b.Statement()
}

// where writes the predicate clause. Fragments follow the model's field
// order, not the order selectors were given in.
func (b *Builder) where(fields []Field, pred Predicate) *Builder {
	var (
		frags  []string
		params []Param
		err    error
	)
	switch p := pred.(type) {
	case Equal:
		frags, params, err = equalClause(fields, p)
	case Range:
		frags, params, err = rangeClause(fields, p)
	case nil:
		err = conflictErr("where", "either equality keys or range bounds must be supplied")
	default:
		err = conflictErr("where", "unsupported predicate")
	}
	if err == nil && len(frags) == 0 {
		err = reflectErr("where", "no clause matched the model fields")
	}
	if err != nil {
		return b.AddError(err)
	}
	return b.Join(frags, " AND ").Bind(params...)
}

func equalClause(fields []Field, keys Equal) ([]string, []Param, error) {
	if len(keys) == 0 {
		return nil, nil, configErr("where", "no equality keys")
	}
	want := make(map[string]bool, len(keys))
	for _, k := range keys {
		if k == "" {
			return nil, nil, configErr("where", "empty equality key")
		}
		want[k] = false
	}

	var (
		frags   []string
		matched []Field
	)
	for _, f := range fields {
		if _, ok := want[f.Name]; !ok {
			continue
		}
		want[f.Name] = true
		fb := &Builder{}
		fb.Ident(f.Name).WriteOp(OpEQ).Placeholder(f.Name)
		frags = append(frags, fb.String())
		matched = append(matched, f)
	}
	for _, k := range keys {
		if !want[k] {
			return nil, nil, reflectErr("where", "equality key "+k+" matches no model field")
		}
	}
	if len(matched) == 0 {
		return nil, nil, nil
	}

	params, err := BindModel(matched)
	if err != nil {
		return nil, nil, err
	}
	return frags, params, nil
}

func rangeClause(fields []Field, bounds Range) ([]string, []Param, error) {
	if len(bounds) == 0 {
		return nil, nil, configErr("where", "no range bounds")
	}
	known := make(map[string]bool, len(fields))
	for _, f := range fields {
		known[f.Name] = true
	}
	seen := make(map[string]bool, len(bounds))
	for _, r := range bounds {
		switch {
		case r.Field == "":
			return nil, nil, configErr("where", "range bound without a field")
		case !present(r.Max) && !present(r.Min):
			return nil, nil, configErr("where", "range on "+r.Field+" has neither a max nor a min")
		case seen[r.Field]:
			return nil, nil, configErr("where", "duplicate range on "+r.Field)
		case !known[r.Field]:
			return nil, nil, reflectErr("where", "range field "+r.Field+" matches no model field")
		}
		seen[r.Field] = true
	}

	var frags []string
	for _, f := range fields {
		for _, r := range bounds {
			if r.Field != f.Name {
				continue
			}
			if present(r.Max) {
				fb := &Builder{}
				fb.Ident(f.Name).WriteOp(OpLT).Placeholder(r.Field + maxSuffix)
				frags = append(frags, fb.String())
			}
			if present(r.Min) {
				fb := &Builder{}
				fb.Ident(f.Name).WriteOp(OpGT).Placeholder(r.Field + minSuffix)
				frags = append(frags, fb.String())
			}
		}
	}

	params, err := BindRange(bounds)
	if err != nil {
		return nil, nil, err
	}
	return frags, params, nil
}
