// Package main generates the operation templates in generated/ from the
// service's Discovery document.
//
// Usage (from the repository root):
//
//	go run ./cmd/generate-operations
//	go run ./cmd/generate-operations --spec spec/alertcenter_v1beta1.json --out generated/operations_gen.go
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"go/format"
	"os"
	"sort"
	"strings"
	"text/template"
	"unicode"
	"unicode/utf8"

	"github.com/alecthomas/kong"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Discovery document structures
type Discovery struct {
	RootURL     string               `json:"rootUrl"`
	ServicePath string               `json:"servicePath"`
	BatchPath   string               `json:"batchPath"`
	Parameters  map[string]Parameter `json:"parameters"`
	Resources   map[string]Resource  `json:"resources"`
}

type Resource struct {
	Methods   map[string]Method   `json:"methods"`
	Resources map[string]Resource `json:"resources"`
}

type Method struct {
	ID             string               `json:"id"`
	Path           string               `json:"path"`
	HTTPMethod     string               `json:"httpMethod"`
	Description    string               `json:"description"`
	Parameters     map[string]Parameter `json:"parameters"`
	ParameterOrder []string             `json:"parameterOrder"`
	Request        *Ref                 `json:"request"`
	Response       *Ref                 `json:"response"`
}

type Parameter struct {
	Type     string `json:"type"`
	Location string `json:"location"`
	Required bool   `json:"required"`
}

type Ref struct {
	Ref string `json:"$ref"`
}

// Operation is one template to generate.
type Operation struct {
	Name          string
	VarName       string
	Doc           string
	ID            string
	Method        string
	Path          string
	Params        []Param
	RequestShape  string
	ResponseShape string
}

type Param struct {
	Name     string
	Location string
	Required bool
}

// Global parameters every operation accepts as template parameters. The
// API key is applied by the client instead.
var globalParams = []string{"fields", "quotaUser"}

var title = cases.Title(language.Und, cases.NoLower)

func singular(s string) string {
	return strings.TrimSuffix(s, "s")
}

func plural(s string) string {
	if strings.HasSuffix(s, "s") {
		return s
	}
	return s + "s"
}

// operationName builds the method name from the resource chain, e.g.
// alerts.feedback.list becomes listAlertFeedbacks.
func operationName(resources []string, verb string) string {
	var b strings.Builder
	b.WriteString(verb)
	for i, r := range resources {
		part := singular(r)
		if i == len(resources)-1 && verb == "list" {
			part = plural(part)
		}
		b.WriteString(title.String(part))
	}
	return b.String()
}

// firstSentence returns the first sentence of desc with its first letter
// lowered, ready to follow a Go identifier in a doc comment.
func firstSentence(desc string) string {
	desc = strings.Join(strings.Fields(desc), " ")
	if i := strings.Index(desc, ". "); i >= 0 {
		desc = desc[:i+1]
	}
	r, size := utf8.DecodeRuneInString(desc)
	if r == utf8.RuneError {
		return desc
	}
	return string(unicode.ToLower(r)) + desc[size:]
}

// orderParams lists path parameters in parameterOrder, then query
// parameters alphabetically, then the global parameters.
func orderParams(m Method) []Param {
	var params []Param
	seen := map[string]bool{}
	for _, name := range m.ParameterOrder {
		p, ok := m.Parameters[name]
		if !ok || p.Location != "path" {
			continue
		}
		params = append(params, Param{Name: name, Location: "LocationPath", Required: true})
		seen[name] = true
	}
	for _, name := range sortedKeys(m.Parameters) {
		p := m.Parameters[name]
		if seen[name] {
			continue
		}
		loc := "LocationQuery"
		if p.Location == "path" {
			loc = "LocationPath"
		}
		params = append(params, Param{Name: name, Location: loc, Required: p.Required || p.Location == "path"})
	}
	for _, name := range globalParams {
		params = append(params, Param{Name: name, Location: "LocationQuery"})
	}
	return params
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// collect walks resources depth first: a resource's methods come before
// its sub-resources, both in name order.
func collect(resources map[string]Resource, chain []string) ([]Operation, error) {
	var ops []Operation
	for _, rname := range sortedKeys(resources) {
		res := resources[rname]
		path := append(append([]string(nil), chain...), rname)
		for _, verb := range sortedKeys(res.Methods) {
			m := res.Methods[verb]
			if m.Response == nil {
				return nil, fmt.Errorf("%s: no response type", m.ID)
			}
			name := operationName(path, verb)
			op := Operation{
				Name:          name,
				VarName:       title.String(name),
				Doc:           firstSentence(m.Description),
				ID:            m.ID,
				Method:        m.HTTPMethod,
				Path:          m.Path,
				Params:        orderParams(m),
				ResponseShape: m.Response.Ref,
			}
			if m.Request != nil {
				op.RequestShape = m.Request.Ref
			}
			ops = append(ops, op)
		}
		sub, err := collect(res.Resources, path)
		if err != nil {
			return nil, err
		}
		ops = append(ops, sub...)
	}
	return ops, nil
}

// generate renders the Go source for doc.
func generate(data []byte) ([]byte, error) {
	var doc Discovery
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing discovery document: %w", err)
	}
	ops, err := collect(doc.Resources, nil)
	if err != nil {
		return nil, err
	}
	names := map[string]string{}
	for _, op := range ops {
		if prev, ok := names[op.Name]; ok {
			return nil, fmt.Errorf("%s and %s both map to %s", prev, op.ID, op.Name)
		}
		names[op.Name] = op.ID
	}

	var buf bytes.Buffer
	err = operationsTemplate.Execute(&buf, struct {
		BaseURL   string
		BatchPath string
		Ops       []Operation
	}{
		BaseURL:   doc.RootURL + doc.ServicePath,
		BatchPath: doc.BatchPath,
		Ops:       ops,
	})
	if err != nil {
		return nil, err
	}
	return format.Source(buf.Bytes())
}

type CLI struct {
	Spec string `default:"spec/alertcenter_v1beta1.json" help:"Discovery document to read."`
	Out  string `default:"generated/operations_gen.go" help:"Go file to write."`
}

func main() {
	var cli CLI
	kong.Parse(&cli, kong.Name("generate-operations"), kong.Description("Generate operation templates."))

	data, err := os.ReadFile(cli.Spec)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading discovery document: %v\n", err)
		os.Exit(1)
	}
	src, err := generate(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating code: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(cli.Out, src, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", cli.Out, err)
		os.Exit(1)
	}
}

var operationsTemplate = template.Must(template.New("operations").Parse(`// Code generated by cmd/generate-operations. DO NOT EDIT.

package generated

import (
	"github.com/DrewBradfordXYZ/alertcenter-go/endpoint"
)

const (
	// BaseURL is the root URL of the service.
	BaseURL = {{printf "%q" .BaseURL}}
	// BatchPath is the batch endpoint, relative to BaseURL.
	BatchPath = {{printf "%q" .BatchPath}}
)

// Operation names.
const (
{{- range .Ops}}
	Op{{.VarName}} = {{printf "%q" .Name}}
{{- end}}
)
{{range .Ops}}
// {{.VarName}} {{.Doc}}
var {{.VarName}} = endpoint.MustTemplate(endpoint.TemplateConfig{
	Name: Op{{.VarName}},
	ID: {{printf "%q" .ID}},
	Method: {{printf "%q" .Method}},
	Path: {{printf "%q" .Path}},
	Params: []endpoint.ParameterSpec{
{{- range .Params}}
		{Name: {{printf "%q" .Name}}, Location: endpoint.{{.Location}}{{if .Required}}, Required: true{{end}}},
{{- end}}
	},
{{- if .RequestShape}}
	RequestShape: {{printf "%q" .RequestShape}},
{{- end}}
	ResponseShape: {{printf "%q" .ResponseShape}},
})
{{end}}
// Registry holds every operation of the service.
var Registry = endpoint.MustRegistry(
{{- range .Ops}}
	{{.VarName}},
{{- end}}
)
`))
