package store

import "fmt"

// Condition matches one column against one value (equality) or several
// (set membership)
type Condition struct {
	Column string
	Values []interface{}
}

// Eq builds an equality condition
func Eq(column string, value interface{}) Condition {
	return Condition{Column: column, Values: []interface{}{value}}
}

// In builds a set-membership condition
func In(column string, values ...interface{}) Condition {
	return Condition{Column: column, Values: values}
}

// Clause is a conjunction of conditions
type Clause []Condition

// Filter is a disjunction of clauses; nil matches every row
type Filter []Clause

// Where builds a single-clause filter
func Where(conditions ...Condition) Filter {
	return Filter{Clause(conditions)}
}

// Either unions filters into one disjunction
func Either(filters ...Filter) Filter {
	var combined Filter
	for _, filter := range filters {
		combined = append(combined, filter...)
	}
	return combined
}

// Matches reports whether the row satisfies the condition
func (c Condition) Matches(row Row) bool {
	value, ok := row[c.Column]
	if !ok {
		return false
	}
	for _, candidate := range c.Values {
		if looseEqual(value, candidate) {
			return true
		}
	}
	return false
}

// Matches reports whether the row satisfies every condition of the clause
func (cl Clause) Matches(row Row) bool {
	for _, condition := range cl {
		if !condition.Matches(row) {
			return false
		}
	}
	return true
}

// Matches reports whether the row satisfies any clause of the filter
func (f Filter) Matches(row Row) bool {
	if len(f) == 0 {
		return true
	}
	for _, clause := range f {
		if clause.Matches(row) {
			return true
		}
	}
	return false
}

// looseEqual compares column values across the representations the
// adapters produce (string ids, int64 vs float64 timestamps)
func looseEqual(a interface{}, b interface{}) bool {
	if as, ok := a.(string); ok {
		bs, ok := b.(string)
		return ok && as == bs
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}
