package rules

import (
	"reflect"
	"strconv"
	"strings"
)

// resolveField navigates formData using a dot-path (e.g. "contact.email").
// Missing segments are treated as absent, not an error: found is false and
// value is nil. Map keys are matched first; a reflection fallback handles
// struct-typed leaves that occasionally appear in evaluator_output
// snapshots.
func resolveField(formData map[string]any, path string) (value any, found bool) {
	if path == "" {
		return nil, false
	}

	var cur any = formData
	for _, segment := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]any:
			v, ok := node[segment]
			if !ok {
				return nil, false
			}
			cur = v
		case []any:
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			cur = node[idx]
		case nil:
			return nil, false
		default:
			v, ok := resolveFieldReflect(node, segment)
			if !ok {
				return nil, false
			}
			cur = v
		}
	}
	return cur, true
}

// resolveFieldReflect is a fallback for non-map/slice leaves (structs) —
// field resolution stays purely data-driven for the common case but
// tolerates richer shapes without erroring.
func resolveFieldReflect(obj any, fieldName string) (any, bool) {
	if obj == nil {
		return nil, false
	}
	v := reflect.ValueOf(obj)
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil, false
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, false
	}
	f := v.FieldByNameFunc(func(name string) bool {
		return strings.EqualFold(name, fieldName)
	})
	if !f.IsValid() || !f.CanInterface() {
		return nil, false
	}
	return f.Interface(), true
}

// resolveFirst tries each candidate dot-path in order and returns the
// first that resolves. This implements field aliasing (spec.md §4.2): a
// rule probes a small ordered list of equivalent field names and passes
// if any resolves.
func resolveFirst(formData map[string]any, candidates []string) (value any, found bool) {
	for _, c := range candidates {
		if v, ok := resolveField(formData, c); ok {
			return v, true
		}
	}
	return nil, false
}

// asNonEmptyString converts value to a trimmed string, reporting ok=false
// for nil, any non-string value, or an all-whitespace result.
func asNonEmptyString(value any) (s string, ok bool) {
	switch v := value.(type) {
	case string:
		s = strings.TrimSpace(v)
	case nil:
		return "", false
	default:
		return "", false
	}
	return s, s != ""
}
