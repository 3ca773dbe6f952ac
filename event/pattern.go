package event

import "strings"

// Wildcard is the pattern character matching any run of characters, dots included
const Wildcard = "*"

// IsPattern reports whether s contains a wildcard
func IsPattern(s string) bool {
	return strings.Contains(s, Wildcard)
}

// Match reports whether name matches pattern
// Exact names match themselves; "*" matches everything; "enemy.*" matches any name
// with the "enemy." prefix; "*.destroyed" any name with the suffix; wildcards may
// appear anywhere and any number of times
func Match(pattern, name string) bool {
	if !IsPattern(pattern) {
		return pattern == name
	}
	return compilePattern(pattern).match(name)
}

// compiled is a pattern split on wildcards, reused for every dispatch
type compiled struct {
	raw   string
	exact bool
	parts []string // literal segments between wildcards
}

func compilePattern(pattern string) compiled {
	if !IsPattern(pattern) {
		return compiled{raw: pattern, exact: true}
	}
	return compiled{raw: pattern, parts: strings.Split(pattern, Wildcard)}
}

func (c compiled) match(name string) bool {
	if c.exact {
		return c.raw == name
	}

	// parts[0] is the prefix, parts[len-1] the suffix; middle parts in order
	last := len(c.parts) - 1
	prefix, suffix := c.parts[0], c.parts[last]
	if len(name) < len(prefix)+len(suffix) {
		return false
	}
	if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, suffix) {
		return false
	}

	rest := name[len(prefix) : len(name)-len(suffix)]
	for _, part := range c.parts[1:last] {
		if part == "" {
			continue
		}
		idx := strings.Index(rest, part)
		if idx < 0 {
			return false
		}
		rest = rest[idx+len(part):]
	}
	return true
}
