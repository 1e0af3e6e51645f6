package eval

import (
	"strconv"
	"strings"

	"yachtsql/value"
	"yachtsql/yqerr"
)

// funcJSONExtract walks a JSONPath expression (the `$.a.b[0]` subset:
// dot-keys and bracketed indices, no wildcards or filters) through a
// JSON value. Scalar mode renders the leaf as a STRING and returns NULL
// for non-scalar leaves.
func funcJSONExtract(args []value.Value, scalar bool) (value.Value, error) {
	v, pathVal := arg(args, 0), arg(args, 1)
	if v.IsNull() || pathVal.IsNull() {
		return value.Null, nil
	}
	doc, ok := v.AsJSON()
	if !ok {
		return value.Null, yqerr.NewInvalidQuery("JSON_EXTRACT requires a JSON first argument")
	}
	path, ok := pathVal.AsString()
	if !ok {
		return value.Null, yqerr.NewInvalidQuery("JSON_EXTRACT requires a STRING path")
	}
	steps, err := parseJSONPath(path)
	if err != nil {
		return value.Null, err
	}

	cur := doc
	for _, step := range steps {
		if step.isKey {
			obj, ok := cur.(map[string]any)
			if !ok {
				return value.Null, nil
			}
			next, ok := obj[step.key]
			if !ok {
				return value.Null, nil
			}
			cur = next
			continue
		}
		arr, ok := cur.([]any)
		if !ok || step.index < 0 || step.index >= len(arr) {
			return value.Null, nil
		}
		cur = arr[step.index]
	}

	if !scalar {
		return value.JSON(cur), nil
	}
	switch leaf := cur.(type) {
	case string:
		return value.String(leaf), nil
	case float64:
		return value.String(strconv.FormatFloat(leaf, 'f', -1, 64)), nil
	case bool:
		return value.String(strconv.FormatBool(leaf)), nil
	default:
		// Objects, arrays, and null have no scalar rendering.
		return value.Null, nil
	}
}

type jsonPathStep struct {
	key   string
	index int
	isKey bool
}

func parseJSONPath(path string) ([]jsonPathStep, error) {
	s := strings.TrimSpace(path)
	if !strings.HasPrefix(s, "$") {
		return nil, &yqerr.InvalidQueryError{Msg: "JSONPath must start with $"}
	}
	s = s[1:]
	var steps []jsonPathStep
	for len(s) > 0 {
		switch s[0] {
		case '.':
			s = s[1:]
			end := strings.IndexAny(s, ".[")
			if end < 0 {
				end = len(s)
			}
			if end == 0 {
				return nil, &yqerr.InvalidQueryError{Msg: "empty JSONPath key"}
			}
			steps = append(steps, jsonPathStep{key: s[:end], isKey: true})
			s = s[end:]
		case '[':
			end := strings.IndexByte(s, ']')
			if end < 0 {
				return nil, &yqerr.InvalidQueryError{Msg: "unterminated JSONPath index"}
			}
			inner := strings.Trim(s[1:end], "'\"")
			if idx, err := strconv.Atoi(inner); err == nil {
				steps = append(steps, jsonPathStep{index: idx})
			} else {
				steps = append(steps, jsonPathStep{key: inner, isKey: true})
			}
			s = s[end+1:]
		default:
			return nil, &yqerr.InvalidQueryError{Msg: "malformed JSONPath: " + path}
		}
	}
	return steps, nil
}
