package state

import (
	"fmt"
	"sort"
)

// Kind is the expected value type of a schema rule
type Kind int

const (
	KindAny Kind = iota
	KindNumber
	KindInt
	KindString
	KindBool
	KindMap
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindInt:
		return "int"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindMap:
		return "map"
	case KindList:
		return "list"
	default:
		return "any"
	}
}

// Rule constrains the value at one path
// Min/Max are inclusive and apply to numeric kinds only
type Rule struct {
	Type     Kind
	Enum     []any
	Min      *float64
	Max      *float64
	Required bool
}

// Range is a convenience for building Min/Max pairs
func Range(min, max float64) (*float64, *float64) {
	return &min, &max
}

// AtLeast returns a Min bound
func AtLeast(min float64) *float64 {
	return &min
}

// Schema maps dot paths to rules; a "*" segment matches any single key
type Schema map[string]Rule

// ValidationError reports the first violated rule
type ValidationError struct {
	Path   string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("state: invalid value at %q: %s", e.Path, e.Reason)
}

// Check validates v against the rule alone
func (r Rule) Check(path string, v any) error {
	if v == nil {
		if r.Required {
			return &ValidationError{Path: path, Reason: "value is required"}
		}
		return nil
	}

	switch r.Type {
	case KindNumber:
		if _, ok := toFloat(v); !ok {
			return &ValidationError{Path: path, Reason: fmt.Sprintf("expected number, got %T", v)}
		}
	case KindInt:
		if !isInteger(v) {
			return &ValidationError{Path: path, Reason: fmt.Sprintf("expected int, got %v (%T)", v, v)}
		}
	case KindString:
		if _, ok := v.(string); !ok {
			return &ValidationError{Path: path, Reason: fmt.Sprintf("expected string, got %T", v)}
		}
	case KindBool:
		if _, ok := v.(bool); !ok {
			return &ValidationError{Path: path, Reason: fmt.Sprintf("expected bool, got %T", v)}
		}
	case KindMap:
		if _, ok := v.(map[string]any); !ok {
			return &ValidationError{Path: path, Reason: fmt.Sprintf("expected map, got %T", v)}
		}
	case KindList:
		if _, ok := v.([]any); !ok {
			return &ValidationError{Path: path, Reason: fmt.Sprintf("expected list, got %T", v)}
		}
	}

	if len(r.Enum) > 0 {
		found := false
		for _, allowed := range r.Enum {
			if Equal(allowed, v) {
				found = true
				break
			}
		}
		if !found {
			return &ValidationError{Path: path, Reason: fmt.Sprintf("%v not in %v", v, r.Enum)}
		}
	}

	if r.Min != nil || r.Max != nil {
		f, ok := toFloat(v)
		if !ok {
			return &ValidationError{Path: path, Reason: fmt.Sprintf("range check on non-number %T", v)}
		}
		if r.Min != nil && f < *r.Min {
			return &ValidationError{Path: path, Reason: fmt.Sprintf("%v below minimum %v", f, *r.Min)}
		}
		if r.Max != nil && f > *r.Max {
			return &ValidationError{Path: path, Reason: fmt.Sprintf("%v above maximum %v", f, *r.Max)}
		}
	}
	return nil
}

type compiledRule struct {
	path string
	segs []string
	rule Rule
}

// compiledSchema keeps rules in a stable order so error reporting is deterministic
type compiledSchema []compiledRule

func compileSchema(s Schema) compiledSchema {
	out := make(compiledSchema, 0, len(s))
	for path, rule := range s {
		out = append(out, compiledRule{path: path, segs: splitPath(path), rule: rule})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].path < out[j].path })
	return out
}

// segsMatch compares a rule prefix against concrete path segments, honouring "*"
func segsMatch(rule, path []string) bool {
	if len(rule) != len(path) {
		return false
	}
	for i := range rule {
		if rule[i] != "*" && rule[i] != path[i] {
			return false
		}
	}
	return true
}

// validate checks value written at segs against every rule at or below segs
func (cs compiledSchema) validate(segs []string, value any) error {
	for _, cr := range cs {
		if len(cr.segs) < len(segs) || !segsMatch(cr.segs[:len(segs)], segs) {
			continue
		}
		rest := cr.segs[len(segs):]
		if len(rest) == 0 {
			if err := cr.rule.Check(joinPath(segs), value); err != nil {
				return err
			}
			continue
		}
		if err := checkBelow(cr, segs, rest, value); err != nil {
			return err
		}
	}
	return nil
}

// checkBelow expands "*" over map keys while walking into a written value
func checkBelow(cr compiledRule, base, rest []string, node any) error {
	if len(rest) == 0 {
		return cr.rule.Check(joinPath(base), node)
	}
	seg := rest[0]
	m, isMap := node.(map[string]any)

	if seg == "*" {
		if !isMap {
			return nil
		}
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if err := checkBelow(cr, append(append([]string(nil), base...), k), rest[1:], m[k]); err != nil {
				return err
			}
		}
		return nil
	}

	var child any
	if isMap {
		child = m[seg]
	}
	next := append(append([]string(nil), base...), seg)
	if child == nil {
		if cr.rule.Required {
			return &ValidationError{Path: cr.path, Reason: "value is required"}
		}
		return nil
	}
	return checkBelow(cr, next, rest[1:], child)
}

// requiredUnder returns the first required rule at or below segs
func (cs compiledSchema) requiredUnder(segs []string) (string, bool) {
	for _, cr := range cs {
		if !cr.rule.Required || len(cr.segs) < len(segs) {
			continue
		}
		if segsMatch(cr.segs[:len(segs)], segs) {
			return cr.path, true
		}
	}
	return "", false
}
