package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/DrewBradfordXYZ/alertcenter-go/core"
	"github.com/DrewBradfordXYZ/alertcenter-go/endpoint"
)

// Encoder serializes a request payload.
type Encoder func(payload any) (contentType string, body []byte, err error)

// Decoder deserializes a successful response body.
type Decoder func(body []byte) (any, error)

// JSONEncoder validates struct payloads against their `validate` tags and
// encodes them as JSON.
func JSONEncoder(payload any) (string, []byte, error) {
	if isStruct(payload) {
		if err := validate.Struct(payload); err != nil {
			return "", nil, err
		}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", nil, err
	}
	return "application/json", body, nil
}

func isStruct(v any) bool {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return false
		}
		rv = rv.Elem()
	}
	return rv.Kind() == reflect.Struct
}

// DecodeJSON returns a Decoder producing *T. An empty body decodes to the
// zero value.
func DecodeJSON[T any]() Decoder {
	return func(body []byte) (any, error) {
		out := new(T)
		if len(bytes.TrimSpace(body)) == 0 {
			return out, nil
		}
		if err := json.Unmarshal(body, out); err != nil {
			return nil, fmt.Errorf("decoding response: %w", err)
		}
		return out, nil
	}
}

// Command is one invocation of an operation: a template plus bound
// parameters, an optional request payload and a response decoder.
//
// A command is executed once, either immediately or as part of a batch.
type Command struct {
	template *endpoint.Template
	bound    *endpoint.Bound
	payload  any
	hasBody  bool
	encoder  Encoder
	decoder  Decoder
	consumed bool
}

// NewCommand binds args to t. Binding failures are returned before any
// request is built.
func NewCommand(t *endpoint.Template, args endpoint.Args) (*Command, error) {
	bound, err := endpoint.Bind(t, args)
	if err != nil {
		return nil, err
	}
	return &Command{template: t, bound: bound}, nil
}

// Template returns the command's operation template.
func (c *Command) Template() *endpoint.Template { return c.template }

// Path returns the bound, escaped request path.
func (c *Command) Path() string { return c.bound.Path }

// Query returns the bound query fragments in emission order.
func (c *Command) Query() []string { return append([]string(nil), c.bound.Query...) }

// AttachRequestBody sets the payload sent as the request body. The
// template must declare a request shape.
func (c *Command) AttachRequestBody(payload any, enc Encoder) error {
	if c.template.RequestShape() == "" {
		return &core.UnsupportedOperationError{
			Operation: c.template.Name(),
			Reason:    "operation does not accept a request body",
		}
	}
	if c.consumed {
		return &core.UnsupportedOperationError{
			Operation: c.template.Name(),
			Reason:    "command already executed",
		}
	}
	if enc == nil {
		enc = JSONEncoder
	}
	c.payload = payload
	c.encoder = enc
	c.hasBody = true
	return nil
}

// SetResponseDecoder sets how a successful response body is decoded.
func (c *Command) SetResponseDecoder(dec Decoder) {
	c.decoder = dec
}

// Validate checks the command is complete enough to send.
func (c *Command) Validate() error {
	if c.template.RequestShape() != "" && !c.hasBody {
		return &core.UnsupportedOperationError{
			Operation: c.template.Name(),
			Reason:    fmt.Sprintf("request body of type %s is required", c.template.RequestShape()),
		}
	}
	if c.template.ResponseShape() != "" && c.decoder == nil {
		return &core.UnsupportedOperationError{
			Operation: c.template.Name(),
			Reason:    "no response decoder set",
		}
	}
	return nil
}

// encodeBody serializes the payload, if any.
func (c *Command) encodeBody() (contentType string, body []byte, err error) {
	if !c.hasBody {
		return "", nil, nil
	}
	contentType, body, err = c.encoder(c.payload)
	if err != nil {
		return "", nil, &core.InvalidParameterError{
			Operation: c.template.Name(),
			Parameter: "body",
			Reason:    err.Error(),
			Cause:     err,
		}
	}
	return contentType, body, nil
}

// consume marks the command as sent.
func (c *Command) consume() error {
	if c.consumed {
		return &core.UnsupportedOperationError{
			Operation: c.template.Name(),
			Reason:    "command already executed",
		}
	}
	c.consumed = true
	return nil
}

// decode turns a successful response body into the command's result.
func (c *Command) decode(body []byte) (any, error) {
	if c.decoder == nil {
		return nil, nil
	}
	return c.decoder(body)
}
