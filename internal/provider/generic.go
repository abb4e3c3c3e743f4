package provider

import (
	"github.com/ewhitfield/stockdeck-backend/internal/dto"
	"github.com/ewhitfield/stockdeck-backend/internal/errs"
	"github.com/ewhitfield/stockdeck-backend/internal/jsonpath"
)

// ExtractMapping resolves a user's field bindings against a freshly fetched
// document. A bound path that no longer resolves renders the unavailable
// sentinel rather than failing the widget; the document itself being
// malformed JSON is the only error case.
func ExtractMapping(raw []byte, mapping map[string]string) (dto.GenericData, error) {
	doc, err := jsonpath.Decode(raw)
	if err != nil {
		return dto.GenericData{}, errs.NewParseError("response is not valid JSON")
	}

	var out dto.GenericData
	if path, ok := mapping[dto.FieldPrimary]; ok {
		out.Primary = displayAt(doc, path)
	}
	if path, ok := mapping[dto.FieldSecondary]; ok {
		out.Secondary = displayAt(doc, path)
	}
	if path, ok := mapping[dto.FieldSeries]; ok {
		out.Series = seriesAt(doc, path)
	}
	return out, nil
}

func displayAt(doc *jsonpath.Node, path string) string {
	n, ok := jsonpath.Resolve(doc, path)
	if !ok {
		return dto.Unavailable
	}
	return n.Display()
}

// seriesAt renders a series binding. An array node yields one entry per
// element; an object node yields one entry per field value in document
// order; a scalar yields a single-entry series.
func seriesAt(doc *jsonpath.Node, path string) []string {
	n, ok := jsonpath.Resolve(doc, path)
	if !ok {
		return []string{dto.Unavailable}
	}
	switch n.Kind() {
	case jsonpath.KindArray:
		out := make([]string, 0, len(n.Elems()))
		for _, e := range n.Elems() {
			out = append(out, e.Display())
		}
		return out
	case jsonpath.KindObject:
		out := make([]string, 0, len(n.Fields()))
		for _, f := range n.Fields() {
			out = append(out, f.Value.Display())
		}
		return out
	default:
		return []string{n.Display()}
	}
}
