package jsonpath

import "regexp"

// Entry is one step of a document walk.
type Entry struct {
	Path string
	Node *Node
	Leaf bool
}

// Walk visits every node of doc depth-first in document order, calling fn
// with its path. The root is visited first with an empty path. Returning
// false stops the walk; the walk can be restarted at any time since it
// carries no state. Recursion depth is bounded by the document's nesting.
func Walk(doc *Node, fn func(Entry) bool) {
	if doc == nil {
		return
	}
	walk(doc, "", fn)
}

func walk(n *Node, path string, fn func(Entry) bool) bool {
	if !fn(Entry{Path: path, Node: n, Leaf: n.Leaf()}) {
		return false
	}
	switch n.kind {
	case KindObject:
		for _, f := range n.fields {
			if !walk(f.Value, appendKey(path, f.Key), fn) {
				return false
			}
		}
	case KindArray:
		for i, e := range n.elems {
			if !walk(e, appendIndex(path, i), fn) {
				return false
			}
		}
	}
	return true
}

// Leaves collects every selectable leaf of doc in document order.
func Leaves(doc *Node) []Entry {
	var out []Entry
	Walk(doc, func(e Entry) bool {
		if e.Leaf {
			out = append(out, e)
		}
		return true
	})
	return out
}

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// DateKeyed reports whether any key segment of path is a literal calendar
// date. Such bindings stop resolving when the provider's most-recent entry
// rolls to a new date.
func DateKeyed(path string) bool {
	segs, err := parsePath(path)
	if err != nil {
		return false
	}
	for _, s := range segs {
		if !s.isIndex && datePattern.MatchString(s.key) {
			return true
		}
	}
	return false
}
