// Package jsonpath models an arbitrary JSON document as a tagged union and
// binds leaves of it to flat path strings. Paths are produced by Walk and
// evaluated later by Resolve against freshly fetched documents of the same
// shape; the rest of the system treats them as opaque strings.
package jsonpath

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type Kind int

const (
	KindObject Kind = iota
	KindArray
	KindString
	KindNumber
	KindBool
	KindNull
)

// Node is one value of a decoded document. Object fields keep the order
// they appeared in the source text, so walks are deterministic across
// structurally identical responses.
type Node struct {
	kind   Kind
	fields []Field
	elems  []*Node
	str    string
	num    json.Number
	b      bool
}

// Field is one key/value pair of an object node.
type Field struct {
	Key   string
	Value *Node
}

func (n *Node) Kind() Kind      { return n.kind }
func (n *Node) Fields() []Field { return n.fields }
func (n *Node) Elems() []*Node  { return n.elems }

// Leaf reports whether n is selectable as a terminal value: any scalar, or
// an empty object/array.
func (n *Node) Leaf() bool {
	switch n.kind {
	case KindObject:
		return len(n.fields) == 0
	case KindArray:
		return len(n.elems) == 0
	default:
		return true
	}
}

// Float returns the node's numeric value. ok is false for non-numbers.
func (n *Node) Float() (float64, bool) {
	if n.kind != KindNumber {
		return 0, false
	}
	f, err := n.num.Float64()
	if err != nil {
		return 0, false
	}
	return f, true
}

// Display renders the node for presentation: scalars as their natural text,
// containers as compact JSON.
func (n *Node) Display() string {
	switch n.kind {
	case KindString:
		return n.str
	case KindNumber:
		return n.num.String()
	case KindBool:
		if n.b {
			return "true"
		}
		return "false"
	case KindNull:
		return "null"
	default:
		b, err := json.Marshal(n.Value())
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// Value converts the node back to plain Go data.
func (n *Node) Value() any {
	switch n.kind {
	case KindObject:
		m := make(map[string]any, len(n.fields))
		for _, f := range n.fields {
			m[f.Key] = f.Value.Value()
		}
		return m
	case KindArray:
		s := make([]any, len(n.elems))
		for i, e := range n.elems {
			s[i] = e.Value()
		}
		return s
	case KindString:
		return n.str
	case KindNumber:
		f, err := n.num.Float64()
		if err != nil {
			return n.num.String()
		}
		return f
	case KindBool:
		return n.b
	default:
		return nil
	}
}

// Decode parses raw JSON into a document tree, preserving object key order.
func Decode(raw []byte) (*Node, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	n, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("trailing data after JSON document")
	}
	return n, nil
}

func decodeValue(dec *json.Decoder) (*Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			n := &Node{kind: KindObject}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("object key is not a string: %v", keyTok)
				}
				val, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				n.fields = append(n.fields, Field{Key: key, Value: val})
			}
			// consume '}'
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return n, nil
		case '[':
			n := &Node{kind: KindArray}
			for dec.More() {
				val, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				n.elems = append(n.elems, val)
			}
			// consume ']'
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return n, nil
		default:
			return nil, fmt.Errorf("unexpected delimiter %q", t)
		}
	case string:
		return &Node{kind: KindString, str: t}, nil
	case json.Number:
		return &Node{kind: KindNumber, num: t}, nil
	case bool:
		return &Node{kind: KindBool, b: t}, nil
	case nil:
		return &Node{kind: KindNull}, nil
	default:
		return nil, fmt.Errorf("unexpected token %v", tok)
	}
}
