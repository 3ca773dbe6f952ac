package state

import (
	"fmt"
	"strconv"
	"strings"
)

// splitPath turns "player.stats.kills" into segments; "" is the root
func splitPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, ".")
}

func joinPath(segs []string) string {
	return strings.Join(segs, ".")
}

// isPrefix reports whether a is an ancestor of, or equal to, b
func isPrefix(a, b []string) bool {
	if len(a) > len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// getIn walks maps by key and lists by decimal index
func getIn(node any, segs []string) (any, bool) {
	cur := node
	for _, seg := range segs {
		switch n := cur.(type) {
		case map[string]any:
			v, ok := n[seg]
			if !ok {
				return nil, false
			}
			cur = v
		case []any:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(n) {
				return nil, false
			}
			cur = n[idx]
		default:
			return nil, false
		}
	}
	return cur, true
}

// setIn returns a new tree with value at segs, copying only the containers on the path
// Missing intermediate maps are created; list indices must already exist
func setIn(node any, segs []string, value any) (any, error) {
	if len(segs) == 0 {
		return value, nil
	}
	seg := segs[0]

	switch n := node.(type) {
	case nil:
		child, err := setIn(nil, segs[1:], value)
		if err != nil {
			return nil, err
		}
		return map[string]any{seg: child}, nil

	case map[string]any:
		child, err := setIn(n[seg], segs[1:], value)
		if err != nil {
			return nil, err
		}
		out := make(map[string]any, len(n)+1)
		for k, v := range n {
			out[k] = v
		}
		out[seg] = child
		return out, nil

	case []any:
		idx, err := strconv.Atoi(seg)
		if err != nil || idx < 0 || idx >= len(n) {
			return nil, fmt.Errorf("list index %q out of range", seg)
		}
		child, err := setIn(n[idx], segs[1:], value)
		if err != nil {
			return nil, err
		}
		out := make([]any, len(n))
		copy(out, n)
		out[idx] = child
		return out, nil

	default:
		return nil, fmt.Errorf("segment %q: cannot descend into %T", seg, node)
	}
}

// deleteIn returns a new tree without segs; reports false when nothing was there
func deleteIn(node any, segs []string) (any, bool) {
	if len(segs) == 0 {
		return nil, false
	}
	m, ok := node.(map[string]any)
	if !ok {
		return node, false
	}
	seg := segs[0]
	child, exists := m[seg]
	if !exists {
		return node, false
	}

	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	if len(segs) == 1 {
		delete(out, seg)
		return out, true
	}
	newChild, removed := deleteIn(child, segs[1:])
	if !removed {
		return node, false
	}
	out[seg] = newChild
	return out, true
}
