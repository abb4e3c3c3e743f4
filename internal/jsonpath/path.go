package jsonpath

import (
	"strconv"
	"strings"
)

// Path grammar: object key access appends ".key", or `["key"]` when the key
// contains characters that would be ambiguous in the dotted form; array
// index access appends "[i]". The leading dot is omitted for the first
// segment. Keys like `4. close` (Alpha Vantage) therefore round-trip:
//
//	Time Series (Daily).2024-01-01["4. close"]

type segment struct {
	key     string
	index   int
	isIndex bool
}

func appendKey(path, key string) string {
	if plainKey(key) {
		if path == "" {
			return key
		}
		return path + "." + key
	}
	return path + "[" + strconv.Quote(key) + "]"
}

func appendIndex(path string, i int) string {
	return path + "[" + strconv.Itoa(i) + "]"
}

// plainKey reports whether key can be emitted in dotted form without
// breaking the round-trip law.
func plainKey(key string) bool {
	if key == "" {
		return false
	}
	return !strings.ContainsAny(key, `.["]\`)
}

// Resolve evaluates a path produced by Walk against doc. ok is false when
// the path is malformed, any segment is missing, or a segment addresses the
// wrong container kind. It never panics: absent bindings are a normal state
// that callers render as unavailable.
func Resolve(doc *Node, path string) (*Node, bool) {
	if doc == nil {
		return nil, false
	}
	if path == "" {
		return doc, true
	}
	segs, err := parsePath(path)
	if err != nil {
		return nil, false
	}
	n := doc
	for _, s := range segs {
		if s.isIndex {
			if n.kind != KindArray || s.index < 0 || s.index >= len(n.elems) {
				return nil, false
			}
			n = n.elems[s.index]
			continue
		}
		if n.kind != KindObject {
			return nil, false
		}
		var found *Node
		for _, f := range n.fields {
			if f.Key == s.key {
				found = f.Value
				break
			}
		}
		if found == nil {
			return nil, false
		}
		n = found
	}
	return n, true
}

func parsePath(path string) ([]segment, error) {
	var segs []segment
	i := 0
	for i < len(path) {
		switch path[i] {
		case '[':
			seg, next, err := parseBracket(path, i)
			if err != nil {
				return nil, err
			}
			segs = append(segs, seg)
			i = next
		case '.':
			if len(segs) == 0 {
				return nil, errMalformed
			}
			key, next, err := parseKey(path, i+1)
			if err != nil {
				return nil, err
			}
			segs = append(segs, segment{key: key})
			i = next
		default:
			if len(segs) > 0 {
				return nil, errMalformed
			}
			key, next, err := parseKey(path, i)
			if err != nil {
				return nil, err
			}
			segs = append(segs, segment{key: key})
			i = next
		}
	}
	return segs, nil
}

// parseKey scans a dotted key starting at i, ending at the next '.' or '['.
func parseKey(path string, i int) (string, int, error) {
	start := i
	for i < len(path) && path[i] != '.' && path[i] != '[' {
		i++
	}
	if i == start {
		return "", 0, errMalformed
	}
	return path[start:i], i, nil
}

// parseBracket scans either a quoted key `["k"]` or a numeric index `[3]`
// starting at the '[' at position i.
func parseBracket(path string, i int) (segment, int, error) {
	i++ // past '['
	if i >= len(path) {
		return segment{}, 0, errMalformed
	}
	if path[i] == '"' {
		end := closingQuote(path, i)
		if end < 0 || end+1 >= len(path) || path[end+1] != ']' {
			return segment{}, 0, errMalformed
		}
		key, err := strconv.Unquote(path[i : end+1])
		if err != nil {
			return segment{}, 0, errMalformed
		}
		return segment{key: key}, end + 2, nil
	}
	end := strings.IndexByte(path[i:], ']')
	if end < 0 {
		return segment{}, 0, errMalformed
	}
	idx, err := strconv.Atoi(path[i : i+end])
	if err != nil {
		return segment{}, 0, errMalformed
	}
	return segment{index: idx, isIndex: true}, i + end + 1, nil
}

// closingQuote returns the index of the quote closing the string that opens
// at position i, skipping escaped characters, or -1.
func closingQuote(path string, i int) int {
	for j := i + 1; j < len(path); j++ {
		switch path[j] {
		case '\\':
			j++
		case '"':
			return j
		}
	}
	return -1
}

type pathError string

func (e pathError) Error() string { return string(e) }

const errMalformed = pathError("malformed path")
