package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPredicates(t *testing.T) {
	p := and(expr("a = ?", 1), or(expr("b = ?", 2), expr("c = ?", 3)), predicate{})
	assert.Equal(t, "((a = ?) AND ((b = ?) OR (c = ?)))", p.sql)
	assert.Equal(t, []any{1, 2, 3}, p.args)

	assert.True(t, or().empty())
	assert.True(t, not(predicate{}).empty())
	assert.Equal(t, "(NOT (x IS NULL))", not(expr("x IS NULL")).sql)

	single := and(expr("a = ?", 1))
	assert.Equal(t, "(a = ?)", single.sql)
}

func TestInBlocks(t *testing.T) {
	p := inBlocks("id", []string{"1", "2", "3"}, 2)
	assert.Equal(t, "((id IN ?) OR (id IN ?))", p.sql)
	assert.Equal(t, []any{[]string{"1", "2"}, []string{"3"}}, p.args)

	assert.True(t, inBlocks("id", nil, 2).empty())
}
