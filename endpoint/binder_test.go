package endpoint

import (
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/DrewBradfordXYZ/alertcenter-go/core"
)

func listTemplate(t *testing.T) *Template {
	t.Helper()
	return MustTemplate(TemplateConfig{
		Name:   "listThings",
		Method: "GET",
		Path:   "v1/things",
		Params: []ParameterSpec{
			{Name: "customerId", Location: LocationQuery},
			{Name: "filter", Location: LocationQuery},
			{Name: "pageSize", Location: LocationQuery},
			{Name: "pageToken", Location: LocationQuery},
		},
		ResponseShape: "ListThingsResponse",
	})
}

func getTemplate(t *testing.T) *Template {
	t.Helper()
	return MustTemplate(TemplateConfig{
		Name:   "getThing",
		Method: "GET",
		Path:   "v1/things/{thingId}/parts",
		Params: []ParameterSpec{
			{Name: "thingId", Location: LocationPath, Required: true},
			{Name: "fields", Location: LocationQuery},
		},
		ResponseShape: "Thing",
	})
}

func TestBindQuery(t *testing.T) {
	tmpl := listTemplate(t)

	tests := []struct {
		name     string
		args     Args
		expected []string
	}{
		{
			name:     "no arguments",
			args:     nil,
			expected: nil,
		},
		{
			name:     "absent optionals are omitted",
			args:     Args{"filter": None[string](), "pageSize": Some(50)},
			expected: []string{"pageSize=50"},
		},
		{
			name:     "template order, not argument order",
			args:     Args{"pageToken": Some("tok"), "pageSize": Some(50), "customerId": Some("C01")},
			expected: []string{"customerId=C01", "pageSize=50", "pageToken=tok"},
		},
		{
			name:     "empty string is present",
			args:     Args{"filter": Some("")},
			expected: []string{"filter="},
		},
		{
			name:     "values are query escaped",
			args:     Args{"filter": Some(`type="Suspicious login" AND x&y`)},
			expected: []string{"filter=type%3D%22Suspicious+login%22+AND+x%26y"},
		},
		{
			name:     "nil arg is absent",
			args:     Args{"filter": nil},
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bound, err := Bind(tmpl, tt.args)
			if err != nil {
				t.Fatalf("Bind() error = %v", err)
			}
			if diff := cmp.Diff(tt.expected, bound.Query); diff != "" {
				t.Errorf("Bind() query mismatch (-want +got):\n%s", diff)
			}
			if bound.Path != "v1/things" {
				t.Errorf("Bind() path = %q, want %q", bound.Path, "v1/things")
			}
		})
	}
}

func TestBindQueryDeterministic(t *testing.T) {
	tmpl := listTemplate(t)

	var first string
	for i := 0; i < 50; i++ {
		args := Args{
			"pageToken":  Some("tok"),
			"pageSize":   Some(50),
			"filter":     Some("a b"),
			"customerId": Some("C01"),
		}
		bound, err := Bind(tmpl, args)
		if err != nil {
			t.Fatalf("Bind() error = %v", err)
		}
		if i == 0 {
			first = bound.RawQuery()
			continue
		}
		if got := bound.RawQuery(); got != first {
			t.Fatalf("iteration %d: RawQuery() = %q, want %q", i, got, first)
		}
	}
}

func TestBindPath(t *testing.T) {
	tmpl := getTemplate(t)

	t.Run("substitutes placeholder", func(t *testing.T) {
		bound, err := Bind(tmpl, Args{"thingId": Some("abc123")})
		if err != nil {
			t.Fatalf("Bind() error = %v", err)
		}
		if bound.Path != "v1/things/abc123/parts" {
			t.Errorf("Path = %q, want %q", bound.Path, "v1/things/abc123/parts")
		}
		if len(bound.Query) != 0 {
			t.Errorf("Query = %v, want empty", bound.Query)
		}
	})

	t.Run("wildcard is an ordinary value", func(t *testing.T) {
		bound, err := Bind(tmpl, Args{"thingId": Some("-")})
		if err != nil {
			t.Fatalf("Bind() error = %v", err)
		}
		if bound.Path != "v1/things/-/parts" {
			t.Errorf("Path = %q, want %q", bound.Path, "v1/things/-/parts")
		}
	})

	t.Run("missing required path parameter", func(t *testing.T) {
		_, err := Bind(tmpl, Args{"fields": Some("name")})
		var missing *core.MissingRequiredParameterError
		if !errors.As(err, &missing) {
			t.Fatalf("Bind() error = %v, want MissingRequiredParameterError", err)
		}
		if missing.Parameter != "thingId" || missing.Operation != "getThing" {
			t.Errorf("error = %+v", missing)
		}
	})

	t.Run("None counts as missing", func(t *testing.T) {
		_, err := Bind(tmpl, Args{"thingId": None[string]()})
		var missing *core.MissingRequiredParameterError
		if !errors.As(err, &missing) {
			t.Fatalf("Bind() error = %v, want MissingRequiredParameterError", err)
		}
	})

	invalid := []struct {
		name  string
		value string
	}{
		{name: "separator", value: "a/b"},
		{name: "leading separator", value: "/abc"},
		{name: "empty", value: ""},
		{name: "dot", value: "."},
		{name: "dot dot", value: ".."},
	}
	for _, tt := range invalid {
		t.Run("rejects "+tt.name, func(t *testing.T) {
			_, err := Bind(tmpl, Args{"thingId": Some(tt.value)})
			var invalidErr *core.InvalidParameterError
			if !errors.As(err, &invalidErr) {
				t.Fatalf("Bind(%q) error = %v, want InvalidParameterError", tt.value, err)
			}
			if !core.IsBindingError(err) {
				t.Errorf("IsBindingError() = false, want true")
			}
		})
	}
}

func TestBindPathRoundTrip(t *testing.T) {
	tmpl := getTemplate(t)

	values := []string{
		"abc123",
		"with space",
		"percent%41",
		"query?mark",
		"hash#tag",
		"ünïcødé",
		"plus+sign",
		"semi;colon",
		"a.b",
		"...",
		"-",
	}

	for _, v := range values {
		t.Run(v, func(t *testing.T) {
			bound, err := Bind(tmpl, Args{"thingId": Some(v)})
			if err != nil {
				t.Fatalf("Bind(%q) error = %v", v, err)
			}
			segment := strings.TrimSuffix(strings.TrimPrefix(bound.Path, "v1/things/"), "/parts")
			if strings.ContainsAny(segment, "/?#") {
				t.Fatalf("segment %q contains reserved characters", segment)
			}
			decoded, err := url.PathUnescape(segment)
			if err != nil {
				t.Fatalf("PathUnescape(%q) error = %v", segment, err)
			}
			if decoded != v {
				t.Errorf("round trip = %q, want %q", decoded, v)
			}
		})
	}
}

func TestBindUnknownParameter(t *testing.T) {
	_, err := Bind(getTemplate(t), Args{"thingId": Some("a"), "colour": Some("red")})
	var invalid *core.InvalidParameterError
	if !errors.As(err, &invalid) {
		t.Fatalf("Bind() error = %v, want InvalidParameterError", err)
	}
	if invalid.Parameter != "colour" {
		t.Errorf("Parameter = %q, want %q", invalid.Parameter, "colour")
	}
}

func TestBindRequiredQuery(t *testing.T) {
	tmpl := MustTemplate(TemplateConfig{
		Name:   "search",
		Method: "GET",
		Path:   "v1/search",
		Params: []ParameterSpec{{Name: "q", Location: LocationQuery, Required: true}},
	})

	if _, err := Bind(tmpl, nil); !core.IsBindingError(err) {
		t.Fatalf("Bind() error = %v, want binding error", err)
	}

	bound, err := Bind(tmpl, Args{"q": Some("x")})
	if err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	if !bound.HasQuery("q") {
		t.Errorf("HasQuery(q) = false, want true")
	}
}
