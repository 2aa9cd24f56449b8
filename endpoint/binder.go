package endpoint

import (
	"fmt"
	"sort"
	"strings"

	"github.com/oapi-codegen/runtime"

	"github.com/DrewBradfordXYZ/alertcenter-go/core"
)

// Bound is the result of binding arguments to a template.
type Bound struct {
	// Path is the expanded, percent-encoded path relative to the base URL.
	Path string
	// Query holds encoded "name=value" fragments in template order.
	Query []string
	// names records which query parameters were bound.
	names map[string]bool
}

// HasQuery reports whether the query parameter name was bound.
func (b *Bound) HasQuery(name string) bool {
	return b.names[name]
}

// RawQuery joins the bound query fragments.
func (b *Bound) RawQuery() string {
	return strings.Join(b.Query, "&")
}

// Bind validates args against t and produces the encoded path and query.
//
// Absent optional arguments are omitted entirely. Query fragments follow the
// template's parameter order, not map iteration order, so equal arguments
// always produce an identical query string. Body parameters are ignored here;
// the request body is attached to the command separately.
func Bind(t *Template, args Args) (*Bound, error) {
	for _, name := range sortedKeys(args) {
		if _, ok := t.Param(name); !ok {
			return nil, &core.InvalidParameterError{
				Operation: t.name,
				Parameter: name,
				Reason:    "unknown parameter",
			}
		}
	}

	b := &Bound{Path: t.path, names: map[string]bool{}}

	for _, p := range t.params {
		value, present := lookup(args, p.Name)

		switch p.Location {
		case LocationPath:
			if !present {
				return nil, &core.MissingRequiredParameterError{Operation: t.name, Parameter: p.Name}
			}
			segment, err := bindPath(t.name, p.Name, value)
			if err != nil {
				return nil, err
			}
			b.Path = strings.Replace(b.Path, "{"+p.Name+"}", segment, 1)

		case LocationQuery:
			if !present {
				if p.Required {
					return nil, &core.MissingRequiredParameterError{Operation: t.name, Parameter: p.Name}
				}
				continue
			}
			fragment, err := runtime.StyleParamWithLocation("form", true, p.Name, runtime.ParamLocationQuery, value)
			if err != nil {
				return nil, &core.InvalidParameterError{
					Operation: t.name,
					Parameter: p.Name,
					Reason:    "cannot encode query value",
					Cause:     err,
				}
			}
			b.Query = append(b.Query, fragment)
			b.names[p.Name] = true
		}
	}

	return b, nil
}

// bindPath renders one path segment. Values that would add, remove or
// collapse path segments are rejected.
func bindPath(op, name string, value any) (string, error) {
	raw := fmt.Sprint(value)
	switch {
	case raw == "":
		return "", &core.InvalidParameterError{Operation: op, Parameter: name, Reason: "empty path segment"}
	case raw == "." || raw == "..":
		return "", &core.InvalidParameterError{Operation: op, Parameter: name, Reason: "dot segment"}
	case strings.Contains(raw, "/"):
		return "", &core.InvalidParameterError{Operation: op, Parameter: name, Reason: "contains path separator"}
	}

	segment, err := runtime.StyleParamWithLocation("simple", false, name, runtime.ParamLocationPath, value)
	if err != nil {
		return "", &core.InvalidParameterError{Operation: op, Parameter: name, Reason: "cannot encode path value", Cause: err}
	}
	return segment, nil
}

func lookup(args Args, name string) (any, bool) {
	arg, ok := args[name]
	if !ok || arg == nil {
		return nil, false
	}
	return arg.Lookup()
}

func sortedKeys(args Args) []string {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
