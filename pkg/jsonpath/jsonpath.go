// Package jsonpath extracts values from JSON response bodies with a small
// JSONPath dialect ($.a.b, $.list[0], $['key'], $.list[*].name) evaluated
// by gjson.
package jsonpath

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	// ErrEmptyDocument is returned for an empty body.
	ErrEmptyDocument = errors.New("jsonpath: empty document")
	// ErrInvalidDocument is returned when the body is not valid JSON.
	ErrInvalidDocument = errors.New("jsonpath: document is not valid JSON")
	// ErrInvalidPath is returned for an expression that cannot be parsed.
	ErrInvalidPath = errors.New("jsonpath: invalid expression")
	// ErrNotFound is returned when the expression matches nothing.
	ErrNotFound = errors.New("jsonpath: path not found")
)

// Extract evaluates path against a JSON document and returns the matched
// value as a string. Strings are returned unquoted, null as "null", and
// objects or arrays as their raw JSON.
func Extract(doc []byte, path string) (string, error) {
	if len(doc) == 0 {
		return "", ErrEmptyDocument
	}
	if !gjson.ValidBytes(doc) {
		return "", ErrInvalidDocument
	}
	gpath, err := toGjsonPath(path)
	if err != nil {
		return "", err
	}

	result := gjson.GetBytes(doc, gpath)
	if !result.Exists() {
		return "", fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if result.Type == gjson.Null {
		return "null", nil
	}
	return result.String(), nil
}

// ExtractMultiple evaluates every named expression. Values that could be
// extracted are returned even when others fail; the error then lists each
// failure by name.
func ExtractMultiple(doc []byte, paths map[string]string) (map[string]string, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no expressions given", ErrInvalidPath)
	}

	names := make([]string, 0, len(paths))
	for name := range paths {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make(map[string]string, len(paths))
	var errs []error
	for _, name := range names {
		value, err := Extract(doc, paths[name])
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		results[name] = value
	}
	return results, errors.Join(errs...)
}

// toGjsonPath converts a JSONPath expression into gjson syntax:
//
//	$.users[0].name  -> users.0.name
//	$['a.b']         -> a\.b
//	$.users[*].name  -> users.#.name
func toGjsonPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", fmt.Errorf("%w: empty expression", ErrInvalidPath)
	}
	rest, ok := strings.CutPrefix(path, "$")
	if !ok {
		return "", fmt.Errorf("%w: %q must start with $", ErrInvalidPath, path)
	}
	if rest == "" {
		return "@this", nil
	}

	var segments []string
	for rest != "" {
		switch rest[0] {
		case '.':
			rest = rest[1:]
			end := strings.IndexAny(rest, ".[")
			if end < 0 {
				end = len(rest)
			}
			name := rest[:end]
			if name == "" {
				return "", fmt.Errorf("%w: empty member name in %q", ErrInvalidPath, path)
			}
			if name == "*" {
				segments = append(segments, "#")
			} else {
				segments = append(segments, escape(name))
			}
			rest = rest[end:]
		case '[':
			end := strings.IndexByte(rest, ']')
			if end < 0 {
				return "", fmt.Errorf("%w: unterminated bracket in %q", ErrInvalidPath, path)
			}
			seg, err := bracketSegment(rest[1:end])
			if err != nil {
				return "", fmt.Errorf("%w in %q", err, path)
			}
			segments = append(segments, seg)
			rest = rest[end+1:]
		default:
			return "", fmt.Errorf("%w: unexpected %q in %q", ErrInvalidPath, rest[0], path)
		}
	}
	return strings.Join(segments, "."), nil
}

func bracketSegment(inner string) (string, error) {
	inner = strings.TrimSpace(inner)
	switch {
	case inner == "*":
		return "#", nil
	case len(inner) >= 2 && (inner[0] == '\'' || inner[0] == '"') && inner[len(inner)-1] == inner[0]:
		return escape(inner[1 : len(inner)-1]), nil
	case inner != "" && strings.Trim(inner, "0123456789") == "":
		return inner, nil
	}
	return "", fmt.Errorf("%w: unsupported index [%s]", ErrInvalidPath, inner)
}

// escape protects characters gjson treats as path syntax.
func escape(name string) string {
	var b strings.Builder
	for i := 0; i < len(name); i++ {
		switch name[i] {
		case '.', '*', '?', '|', '#', '@', '\\':
			b.WriteByte('\\')
		}
		b.WriteByte(name[i])
	}
	return b.String()
}
