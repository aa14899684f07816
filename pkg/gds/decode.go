package gds

import (
	"encoding/json"
	"errors"
	"fmt"
)

// decodeObject decodes a JSON object. An empty body or a JSON null yields an
// empty Object.
func decodeObject(op string, code int, body []byte) (Object, error) {
	if len(body) == 0 {
		return Object{}, nil
	}
	var obj Object
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, &ParseError{Op: op, StatusCode: code, Err: err}
	}
	if obj == nil {
		obj = Object{}
	}
	return obj, nil
}

// decodeNames accepts the shapes the list endpoint is known to return:
// {"graphs": [...]}, an Envelope whose result.data is the list, or a bare
// array. Elements may be names or objects carrying a "name" field.
func decodeNames(op string, code int, body []byte) ([]string, error) {
	if len(body) == 0 {
		return nil, &ParseError{Op: op, StatusCode: code, Err: errors.New("empty body")}
	}

	var list json.RawMessage
	if body[0] == '[' {
		list = body
	} else {
		var probe struct {
			Graphs json.RawMessage `json:"graphs"`
			Result *struct {
				Data json.RawMessage `json:"data"`
			} `json:"result"`
		}
		if err := json.Unmarshal(body, &probe); err != nil {
			return nil, &ParseError{Op: op, StatusCode: code, Err: err}
		}
		switch {
		case probe.Graphs != nil:
			list = probe.Graphs
		case probe.Result != nil:
			list = probe.Result.Data
		default:
			return nil, &ParseError{Op: op, StatusCode: code, Err: errors.New(`response has neither "graphs" nor "result"`)}
		}
	}

	var items []json.RawMessage
	if err := json.Unmarshal(list, &items); err != nil {
		return nil, &ParseError{Op: op, StatusCode: code, Err: err}
	}
	names := make([]string, 0, len(items))
	for i, item := range items {
		name, err := nameOf(item)
		if err != nil {
			return nil, &ParseError{Op: op, StatusCode: code, Err: fmt.Errorf("item %d: %w", i, err)}
		}
		names = append(names, name)
	}
	return names, nil
}

func nameOf(item json.RawMessage) (string, error) {
	var name string
	if err := json.Unmarshal(item, &name); err == nil {
		return name, nil
	}
	var named struct {
		Name *string `json:"name"`
	}
	if err := json.Unmarshal(item, &named); err != nil {
		return "", err
	}
	if named.Name == nil {
		return "", errors.New(`object has no "name"`)
	}
	return *named.Name, nil
}

// decodeSchemaEnvelope decodes the schema endpoints' Envelope.
func decodeSchemaEnvelope(op string, code int, body []byte) (*SchemaEnvelope, error) {
	if len(body) == 0 {
		return nil, &ParseError{Op: op, StatusCode: code, Err: errors.New("empty body")}
	}
	var env SchemaEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &ParseError{Op: op, StatusCode: code, Err: err}
	}
	if env.Result.Data == nil {
		env.Result.Data = []SchemaDefinition{}
	}
	return &env, nil
}
