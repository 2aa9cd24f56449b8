// Package endpoint describes API operations as data and binds caller
// arguments onto them.
//
// A Template is the immutable shape of one remote operation: HTTP method,
// path pattern with {name} placeholders, parameter placement, and the names
// of the request and response representations. Templates are collected in a
// Registry and bound with Bind, which produces the encoded path and an
// ordered query string for one call.
package endpoint

import (
	"fmt"
	"net/http"
	"regexp"
	"slices"
)

// Location is where a parameter travels in the HTTP request.
type Location string

const (
	LocationPath  Location = "path"
	LocationQuery Location = "query"
	LocationBody  Location = "body"
)

// ParameterSpec describes one parameter of an operation.
type ParameterSpec struct {
	Name     string
	Location Location
	Required bool
}

// Template is the immutable description of one API operation.
type Template struct {
	name          string
	id            string
	method        string
	path          string
	params        []ParameterSpec
	requestShape  string
	responseShape string
}

// TemplateConfig holds the fields used to build a Template.
type TemplateConfig struct {
	// Name is the registry key, e.g. "getAlert".
	Name string
	// ID is the service-qualified identifier, e.g. "alertcenter.alerts.get".
	ID     string
	Method string
	// Path is relative to the service base URL, e.g. "v1beta1/alerts/{alertId}".
	Path          string
	Params        []ParameterSpec
	RequestShape  string
	ResponseShape string
}

var placeholderPattern = regexp.MustCompile(`\{([^{}/]+)\}`)

var knownMethods = map[string]bool{
	http.MethodGet:    true,
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodPatch:  true,
	http.MethodDelete: true,
}

// NewTemplate validates cfg and returns a Template.
//
// Every {name} placeholder in the path must have exactly one path parameter
// and every path parameter must have a placeholder. Path parameters are
// always required. A body parameter is only allowed when RequestShape is set.
func NewTemplate(cfg TemplateConfig) (*Template, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("template: name is required")
	}
	if !knownMethods[cfg.Method] {
		return nil, fmt.Errorf("template %s: unsupported HTTP method %q", cfg.Name, cfg.Method)
	}

	placeholders := map[string]int{}
	for _, m := range placeholderPattern.FindAllStringSubmatch(cfg.Path, -1) {
		placeholders[m[1]]++
	}

	seen := map[string]bool{}
	bodies := 0
	for _, p := range cfg.Params {
		if p.Name == "" {
			return nil, fmt.Errorf("template %s: parameter with empty name", cfg.Name)
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("template %s: duplicate parameter %q", cfg.Name, p.Name)
		}
		seen[p.Name] = true

		switch p.Location {
		case LocationPath:
			if placeholders[p.Name] != 1 {
				return nil, fmt.Errorf("template %s: path parameter %q must appear exactly once in %q", cfg.Name, p.Name, cfg.Path)
			}
			if !p.Required {
				return nil, fmt.Errorf("template %s: path parameter %q must be required", cfg.Name, p.Name)
			}
		case LocationQuery:
		case LocationBody:
			bodies++
			if cfg.RequestShape == "" {
				return nil, fmt.Errorf("template %s: body parameter %q without a request shape", cfg.Name, p.Name)
			}
		default:
			return nil, fmt.Errorf("template %s: parameter %q has unknown location %q", cfg.Name, p.Name, p.Location)
		}
	}
	if bodies > 1 {
		return nil, fmt.Errorf("template %s: more than one body parameter", cfg.Name)
	}

	for name := range placeholders {
		if !slices.ContainsFunc(cfg.Params, func(p ParameterSpec) bool {
			return p.Name == name && p.Location == LocationPath
		}) {
			return nil, fmt.Errorf("template %s: placeholder {%s} has no path parameter", cfg.Name, name)
		}
	}

	return &Template{
		name:          cfg.Name,
		id:            cfg.ID,
		method:        cfg.Method,
		path:          cfg.Path,
		params:        slices.Clone(cfg.Params),
		requestShape:  cfg.RequestShape,
		responseShape: cfg.ResponseShape,
	}, nil
}

// MustTemplate is like NewTemplate but panics on error.
func MustTemplate(cfg TemplateConfig) *Template {
	t, err := NewTemplate(cfg)
	if err != nil {
		panic(err)
	}
	return t
}

// Name returns the registry key.
func (t *Template) Name() string { return t.name }

// ID returns the service-qualified identifier, or the name if none was set.
func (t *Template) ID() string {
	if t.id == "" {
		return t.name
	}
	return t.id
}

// Method returns the HTTP method.
func (t *Template) Method() string { return t.method }

// Path returns the unexpanded path pattern.
func (t *Template) Path() string { return t.path }

// Params returns a copy of the parameter specs in template order.
func (t *Template) Params() []ParameterSpec { return slices.Clone(t.params) }

// Param returns the parameter named name.
func (t *Template) Param(name string) (ParameterSpec, bool) {
	for _, p := range t.params {
		if p.Name == name {
			return p, true
		}
	}
	return ParameterSpec{}, false
}

// RequestShape returns the request representation name, or "" if the
// operation takes no body.
func (t *Template) RequestShape() string { return t.requestShape }

// ResponseShape returns the response representation name.
func (t *Template) ResponseShape() string { return t.responseShape }

func (t *Template) String() string {
	return t.method + " " + t.path
}
