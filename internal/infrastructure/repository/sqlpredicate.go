package repository

import "strings"

// predicate is a parenthesized SQL condition with its bound arguments.
type predicate struct {
	sql  string
	args []any
}

func expr(sql string, args ...any) predicate {
	return predicate{sql: "(" + sql + ")", args: args}
}

func (p predicate) empty() bool {
	return p.sql == ""
}

func joinPredicates(op string, preds []predicate) predicate {
	parts := make([]string, 0, len(preds))
	var args []any
	for _, p := range preds {
		if p.empty() {
			continue
		}
		parts = append(parts, p.sql)
		args = append(args, p.args...)
	}
	switch len(parts) {
	case 0:
		return predicate{}
	case 1:
		return predicate{sql: parts[0], args: args}
	}
	return predicate{sql: "(" + strings.Join(parts, " "+op+" ") + ")", args: args}
}

func and(preds ...predicate) predicate {
	return joinPredicates("AND", preds)
}

func or(preds ...predicate) predicate {
	return joinPredicates("OR", preds)
}

func not(p predicate) predicate {
	if p.empty() {
		return p
	}
	return predicate{sql: "(NOT " + p.sql + ")", args: p.args}
}

// inBlocks ORs column IN (...) over IN-list sized blocks of values.
func inBlocks(column string, values []string, blockSize int) predicate {
	var preds []predicate
	for start := 0; start < len(values); start += blockSize {
		end := min(start+blockSize, len(values))
		preds = append(preds, expr(column+" IN ?", values[start:end]))
	}
	return or(preds...)
}
