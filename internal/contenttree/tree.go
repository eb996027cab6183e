package contenttree

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Delimiter separates the keys of a path such as "about.story.highlightBox.text".
const Delimiter = "."

var ErrInvalidPath = errors.New("invalid content path")

// Tree is the site-wide content document. Values are either strings or nested Trees.
//
// A Tree handed out by this package is a snapshot: it is never modified in place,
// so snapshots may share branches. Callers must not write into a Tree directly;
// use Set to derive a new one.
type Tree map[string]any

// ParsePath splits a dot path into its keys. Empty paths and empty keys are rejected.
func ParsePath(path string) ([]string, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidPath)
	}
	keys := strings.Split(path, Delimiter)
	for _, k := range keys {
		if k == "" {
			return nil, fmt.Errorf("%w: %q has an empty key", ErrInvalidPath, path)
		}
	}
	return keys, nil
}

// Get returns the string stored at path, or "" when any key along the path is
// missing, when an intermediate value is not a sub-tree, or when the leaf is itself
// a sub-tree.
func Get(t Tree, path string) string {
	v, ok := Lookup(t, path)
	if !ok {
		return ""
	}
	return scalarString(v)
}

// GetOr is Get with a fallback for empty values.
func GetOr(t Tree, path, fallback string) string {
	if v := Get(t, path); v != "" {
		return v
	}
	return fallback
}

// Lookup returns the raw value at path, which may be a string or a Tree.
func Lookup(t Tree, path string) (any, bool) {
	keys, err := ParsePath(path)
	if err != nil {
		return nil, false
	}
	var cur any = t
	for _, k := range keys {
		node, ok := asTree(cur)
		if !ok {
			return nil, false
		}
		cur, ok = node[k]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Set returns a new Tree with value written at path. Every node from the root to
// the written leaf is a fresh map; all other branches are shared with t, which is
// left untouched. Missing intermediates are created, and a scalar sitting where an
// intermediate is needed is replaced by a sub-tree. An invalid path returns t.
func Set(t Tree, path, value string) Tree {
	out, err := set(t, path, value)
	if err != nil {
		return t
	}
	return out
}

// SetNode is Set for a whole sub-tree.
func SetNode(t Tree, path string, node Tree) Tree {
	out, err := set(t, path, node)
	if err != nil {
		return t
	}
	return out
}

// Write is Set with the path error reported instead of ignored.
func Write(t Tree, path string, value any) (Tree, error) {
	switch value.(type) {
	case string, Tree:
	default:
		return t, fmt.Errorf("unsupported content value %T", value)
	}
	return set(t, path, value)
}

func set(t Tree, path string, value any) (Tree, error) {
	keys, err := ParsePath(path)
	if err != nil {
		return t, err
	}
	root := shallowCopy(t)
	parent := root
	for _, k := range keys[:len(keys)-1] {
		child, ok := asTree(parent[k])
		if !ok {
			child = nil
		}
		fresh := shallowCopy(child)
		parent[k] = fresh
		parent = fresh
	}
	parent[keys[len(keys)-1]] = value
	return root, nil
}

// Clone returns a deep structural copy of t.
func Clone(t Tree) Tree {
	out := make(Tree, len(t))
	for k, v := range t {
		if sub, ok := asTree(v); ok {
			out[k] = Clone(sub)
			continue
		}
		out[k] = v
	}
	return out
}

// Equal reports whether two trees hold the same keys and values.
func Equal(a, b Tree) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok {
			return false
		}
		at, aIsTree := asTree(av)
		bt, bIsTree := asTree(bv)
		switch {
		case aIsTree && bIsTree:
			if !Equal(at, bt) {
				return false
			}
		case aIsTree || bIsTree:
			return false
		default:
			if scalarString(av) != scalarString(bv) {
				return false
			}
		}
	}
	return true
}

// Leaf is one addressable string value of a tree.
type Leaf struct {
	Path  string
	Value string
}

// Leaves flattens t into its string leaves, sorted by path.
func Leaves(t Tree) []Leaf {
	var out []Leaf
	var walk func(prefix string, node Tree)
	walk = func(prefix string, node Tree) {
		for k, v := range node {
			p := k
			if prefix != "" {
				p = prefix + Delimiter + k
			}
			if sub, ok := asTree(v); ok {
				walk(p, sub)
				continue
			}
			out = append(out, Leaf{Path: p, Value: scalarString(v)})
		}
	}
	walk("", t)
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Decode parses a JSON object into a Tree. Nested objects become Trees; strings,
// numbers and booleans are kept as scalars. Empty input decodes to an empty tree.
func Decode(data []byte) (Tree, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return Tree{}, nil
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return Normalize(raw), nil
}

// Normalize converts decoded JSON maps into Trees, recursively. Arrays and nulls
// have no place in a content tree and are dropped.
func Normalize(m map[string]any) Tree {
	out := make(Tree, len(m))
	for k, v := range m {
		switch val := v.(type) {
		case map[string]any:
			out[k] = Normalize(val)
		case Tree:
			out[k] = Normalize(val)
		case string, float64, bool, json.Number:
			out[k] = val
		}
	}
	return out
}

func asTree(v any) (Tree, bool) {
	switch node := v.(type) {
	case Tree:
		return node, true
	case map[string]any:
		return Tree(node), true
	}
	return nil, false
}

func shallowCopy(t Tree) Tree {
	out := make(Tree, len(t)+1)
	for k, v := range t {
		out[k] = v
	}
	return out
}

func scalarString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64, bool, json.Number:
		return fmt.Sprint(val)
	}
	return ""
}
