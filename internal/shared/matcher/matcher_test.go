package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		output string
	}{
		{"wildcards", "RHEL*Server?", "RHEL%Server_"},
		{"reserved characters escaped", "100%_done", "100!%!_done"},
		{"escape character escaped", "wow!", "wow!!"},
		{"escaped star is literal", `a\*b`, "a*b"},
		{"escaped question mark is literal", `\?`, "?"},
		{"doubled backslash", `a\\b`, `a\b`},
		{"dangling backslash dropped", `abc\`, "abc"},
		{"escape only affects next rune", `\a*`, "a%"},
		{"empty", "", ""},
		{"unicode passes through", "Réd Hät*", "Réd Hät%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.output, Sanitize(tt.input))
		})
	}
}

func TestSanitize_Deterministic(t *testing.T) {
	in := `x\*y?%_!\`
	assert.Equal(t, Sanitize(in), Sanitize(in))
}

func TestMatch(t *testing.T) {
	tests := []struct {
		name    string
		filter  string
		value   string
		matches bool
	}{
		{"star matches any run", "RHEL*Server?", "rhel 9 server1", true},
		{"question mark requires one rune", "RHEL*Server?", "RHEL Server", false},
		{"literal percent is not a wildcard", "100%_done", "100X_done", false},
		{"literal percent matches itself", "100%_done", "100%_done", true},
		{"literal underscore is not a wildcard", "a_b", "axb", false},
		{"case insensitive", "premium", "PREMIUM", true},
		{"escaped star is literal", `a\*b`, "a*b", true},
		{"escaped star does not expand", `a\*b`, "axxb", false},
		{"star matches empty", "*", "", true},
		{"empty matches only empty", "", "x", false},
		{"leading and trailing stars", "*mid*", "a middle b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.matches, MatchFilter(tt.filter, tt.value))
		})
	}
}

func TestLike(t *testing.T) {
	assert.Equal(t, "LOWER(pools.contract_number) LIKE LOWER(?) ESCAPE '!'", Like("pools.contract_number"))
}
